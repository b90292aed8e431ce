package platform

import (
	"io"

	"github.com/pkg/errors"
)

// Window messages understood by every backend.
const (
	MsgSetText uint32 = 0x000C
	MsgKeyDown uint32 = 0x0100
	MsgKeyUp   uint32 = 0x0101
	MsgChar    uint32 = 0x0102
	MsgPaste   uint32 = 0x0302
)

// Virtual-key codes used by the automation layer.
const (
	VKReturn  uint32 = 0x0D
	VKControl uint32 = 0x11
	VKEscape  uint32 = 0x1B
	VKKeyV    uint32 = 0x56
)

// CFUnicodeText is the clipboard format for NUL-terminated UTF-16 text.
const CFUnicodeText uint32 = 13

// ErrUnsupported is returned by Open on platforms without a backend.
var ErrUnsupported = errors.New("desktop automation is not supported on this platform")

// Windows queries the window manager.
type Windows interface {
	// ForegroundWindow returns the window receiving keyboard input, or the
	// zero handle when there is none.
	ForegroundWindow() WindowHandle
	// EnumWindows calls fn for each top-level window in window-system order
	// until fn returns false.
	EnumWindows(fn func(WindowHandle) bool) error
	// WindowText reads at most maxUnits-1 UTF-16 units of the window title.
	WindowText(h WindowHandle, maxUnits int) []uint16
	WindowRect(h WindowHandle) (Rect, bool)
	IsWindowVisible(h WindowHandle) bool
}

// Messenger delivers window messages.
type Messenger interface {
	// SendMessage delivers synchronously and returns the target's result.
	SendMessage(h WindowHandle, msg uint32, wparam, lparam uintptr) uintptr
	// PostMessage enqueues without waiting and reports whether it was queued.
	PostMessage(h WindowHandle, msg uint32, wparam, lparam uintptr) bool
	// SendTextMessage sends msg with a pointer to NUL-terminated text as lparam.
	SendTextMessage(h WindowHandle, msg uint32, text []uint16) uintptr
}

// ClipboardHost exposes the clipboard and global memory primitives.
type ClipboardHost interface {
	OpenClipboard() bool
	EmptyClipboard() bool
	CloseClipboard() bool
	// GlobalAllocText allocates movable memory sized for text and copies text
	// into it under lock. text must already carry its terminator.
	GlobalAllocText(text []uint16) (MemHandle, bool)
	// SetClipboardData hands mem to the clipboard. On success the clipboard
	// owns mem.
	SetClipboardData(format uint32, mem MemHandle) bool
	GlobalFree(mem MemHandle)
}

// Backend is the full set of OS primitives the automation facade needs.
type Backend interface {
	Windows
	Messenger
	ClipboardHost
	io.Closer
}
