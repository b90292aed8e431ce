// Package automation is the desktop automation facade: a flat set of
// independent, synchronous operations over the window manager, keyboard
// messages, and the clipboard.
//
// Nothing here caches state between calls. Window handles are borrowed from
// the window system and passed straight back to it without a liveness check,
// so operations on a stale handle fail or do nothing as the OS decides.
package automation

import (
	"context"
	"time"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// titleCapacity is the title buffer size in UTF-16 units, terminator
// included. Longer titles are truncated.
const titleCapacity = 256

// WindowInfo describes the foreground window at the moment of the query.
type WindowInfo struct {
	Title  string `json:"title"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// WindowEntry is one enumerated top-level window.
type WindowEntry struct {
	Title  string                `json:"title"`
	Handle platform.WindowHandle `json:"handle"`
}

// Facade forwards each operation to a platform backend.
type Facade struct {
	os platform.Backend

	// sleep waits between characters in SendString and PostString.
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a facade over backend.
func New(backend platform.Backend) *Facade {
	return &Facade{
		os:    backend,
		sleep: sleepContext,
	}
}

// ForegroundWindowInfo returns the window currently receiving keyboard input.
// ok is false when there is no foreground window. Width and height are taken
// directly from the rectangle edges and are not validated.
func (f *Facade) ForegroundWindowInfo() (info WindowInfo, ok bool) {
	h := f.os.ForegroundWindow()
	if h.IsZero() {
		return WindowInfo{}, false
	}

	rect, _ := f.os.WindowRect(h)
	return WindowInfo{
		Title:  f.title(h),
		X:      rect.Left,
		Y:      rect.Top,
		Width:  rect.Right - rect.Left,
		Height: rect.Bottom - rect.Top,
	}, true
}

// VisibleWindows lists top-level windows that are visible and have a
// non-empty title, in the order the window system enumerates them.
func (f *Facade) VisibleWindows() []WindowEntry {
	entries := []WindowEntry{}
	_ = f.os.EnumWindows(func(h platform.WindowHandle) bool {
		if !f.os.IsWindowVisible(h) {
			return true
		}
		title := f.title(h)
		if title == "" {
			return true
		}
		entries = append(entries, WindowEntry{Title: title, Handle: h})
		return true
	})
	return entries
}

// SetWindowText replaces the text of the target window or control. The
// result is the window system's own success report.
func (f *Facade) SetWindowText(h platform.WindowHandle, text string) bool {
	return f.os.SendTextMessage(h, platform.MsgSetText, terminated(text)) != 0
}

// PasteClipboard asks the target control to paste from the clipboard itself.
func (f *Facade) PasteClipboard(h platform.WindowHandle) bool {
	return f.os.SendMessage(h, platform.MsgPaste, 0, 0) != 0
}

func (f *Facade) title(h platform.WindowHandle) string {
	units := f.os.WindowText(h, titleCapacity)
	if len(units) > titleCapacity-1 {
		units = units[:titleCapacity-1]
	}
	return decodeText(units)
}
