package platform

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// WindowHandle is an opaque reference to a native top-level window.
//
// The raw value is owned by the window system and is only meaningful while
// the window exists. Handles support equality and nothing else.
type WindowHandle struct {
	raw uintptr
}

// HandleFromRaw wraps a raw window-system identifier.
func HandleFromRaw(raw uintptr) WindowHandle {
	return WindowHandle{raw: raw}
}

// Raw returns the identifier to pass back to the window system.
func (h WindowHandle) Raw() uintptr {
	return h.raw
}

// IsZero reports whether h is the null handle.
func (h WindowHandle) IsZero() bool {
	return h.raw == 0
}

func (h WindowHandle) String() string {
	return "0x" + strconv.FormatUint(uint64(h.raw), 16)
}

// MarshalJSON encodes the handle as a plain JSON number.
func (h WindowHandle) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(h.raw), 10)), nil
}

// UnmarshalJSON accepts a non-negative integral JSON number.
func (h *WindowHandle) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("window handle must be a number")
	}
	v, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return errors.Errorf("invalid window handle %s", n.String())
	}
	h.raw = uintptr(v)
	return nil
}

// MemHandle identifies a movable global memory block.
type MemHandle uintptr

// Rect is a window rectangle in screen coordinates, edges inclusive-exclusive.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}
