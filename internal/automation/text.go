package automation

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// encodeText converts s to UTF-16 without a terminator. Invalid UTF-8 yields
// empty text, and anything after an embedded NUL is dropped.
func encodeText(s string) []uint16 {
	if !utf8.ValidString(s) {
		return nil
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return utf16.Encode([]rune(s))
}

// terminated returns s encoded with a trailing NUL.
func terminated(s string) []uint16 {
	return append(encodeText(s), 0)
}

func decodeText(units []uint16) string {
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}
