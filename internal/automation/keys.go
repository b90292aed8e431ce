package automation

import (
	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// KeystrokeKind selects a fixed key-down/key-up sequence.
type KeystrokeKind int

const (
	// KeystrokeEnter is Return down then Return up.
	KeystrokeEnter KeystrokeKind = 0
	// KeystrokeCtrlV is Control down, V down, V up, Control up.
	KeystrokeCtrlV KeystrokeKind = 1
)

// ParseKeystrokeKind maps "enter" and "ctrlv" to their kinds.
func ParseKeystrokeKind(name string) (KeystrokeKind, bool) {
	switch name {
	case "enter":
		return KeystrokeEnter, true
	case "ctrlv", "ctrl+v", "paste":
		return KeystrokeCtrlV, true
	}
	return 0, false
}

// ResultCode is the status of the single-message operations SendChar,
// PostChar, SendKeyDown and SendKeyUp.
//
// The convention is inverted: CodeOK (0) means the window system reported
// success and CodeFailed (1) means it did not. External callers rely on these
// exact numbers, so they must not change.
type ResultCode int

const (
	CodeOK     ResultCode = 0
	CodeFailed ResultCode = 1
)

func resultCode(delivered bool) ResultCode {
	if delivered {
		return CodeOK
	}
	return CodeFailed
}

type keyMessage struct {
	msg uint32
	vk  uint32
}

var keystrokeSequences = map[KeystrokeKind][]keyMessage{
	KeystrokeEnter: {
		{platform.MsgKeyDown, platform.VKReturn},
		{platform.MsgKeyUp, platform.VKReturn},
	},
	KeystrokeCtrlV: {
		{platform.MsgKeyDown, platform.VKControl},
		{platform.MsgKeyDown, platform.VKKeyV},
		{platform.MsgKeyUp, platform.VKKeyV},
		{platform.MsgKeyUp, platform.VKControl},
	},
}

// SendKeystrokes delivers the sequence for kind synchronously. An unknown
// kind is an argument error and sends nothing.
func (f *Facade) SendKeystrokes(h platform.WindowHandle, kind KeystrokeKind) (bool, error) {
	seq, ok := keystrokeSequences[kind]
	if !ok {
		return false, &ArgumentError{Err: ErrUnknownKeystroke}
	}
	f.sendSequence(h, seq)
	return true, nil
}

// SendPaste sends Ctrl+V and always reports true; delivery is not checked.
func (f *Facade) SendPaste(h platform.WindowHandle) bool {
	f.sendSequence(h, keystrokeSequences[KeystrokeCtrlV])
	return true
}

// SendEnter sends the Return key sequence.
func (f *Facade) SendEnter(h platform.WindowHandle) bool {
	ok, _ := f.SendKeystrokes(h, KeystrokeEnter)
	return ok
}

// SendEscape sends Escape down and up. Both messages are always sent; the
// result is true only if both were delivered.
func (f *Facade) SendEscape(h platform.WindowHandle) bool {
	down := f.SendKeyDown(h, platform.VKEscape)
	up := f.SendKeyUp(h, platform.VKEscape)
	return down == CodeOK && up == CodeOK
}

func (f *Facade) sendSequence(h platform.WindowHandle, seq []keyMessage) {
	for _, km := range seq {
		f.os.SendMessage(h, km.msg, uintptr(km.vk), 0)
	}
}

// SendChar delivers the first UTF-16 unit of text as a character message and
// waits for the target to process it. Remaining text is ignored.
func (f *Facade) SendChar(h platform.WindowHandle, text string) (ResultCode, error) {
	unit, err := firstUnit(text)
	if err != nil {
		return CodeFailed, err
	}
	return f.charUnit(h, unit, false), nil
}

// PostChar is SendChar without waiting for the target.
func (f *Facade) PostChar(h platform.WindowHandle, text string) (ResultCode, error) {
	unit, err := firstUnit(text)
	if err != nil {
		return CodeFailed, err
	}
	return f.charUnit(h, unit, true), nil
}

func (f *Facade) charUnit(h platform.WindowHandle, unit uint16, post bool) ResultCode {
	if post {
		return resultCode(f.os.PostMessage(h, platform.MsgChar, uintptr(unit), 0))
	}
	return resultCode(f.os.SendMessage(h, platform.MsgChar, uintptr(unit), 0) != 0)
}

func firstUnit(text string) (uint16, error) {
	units := encodeText(text)
	if len(units) == 0 {
		return 0, &ArgumentError{Err: ErrEmptyCharacter}
	}
	return units[0], nil
}

// SendKeyDown delivers one key-down message carrying vk. The code is not
// checked against any key table.
func (f *Facade) SendKeyDown(h platform.WindowHandle, vk uint32) ResultCode {
	return resultCode(f.os.SendMessage(h, platform.MsgKeyDown, uintptr(vk), 0) != 0)
}

// SendKeyUp delivers one key-up message carrying vk.
func (f *Facade) SendKeyUp(h platform.WindowHandle, vk uint32) ResultCode {
	return resultCode(f.os.SendMessage(h, platform.MsgKeyUp, uintptr(vk), 0) != 0)
}

// CharToVirtualKey maps letters to their upper-case key code and digits to
// themselves. Any other character maps to its own code point.
func CharToVirtualKey(r rune) uint32 {
	switch {
	case r >= 'a' && r <= 'z':
		return uint32(r - 32)
	default:
		return uint32(r)
	}
}
