// Package platformtest provides an in-memory platform.Backend that records
// every message and clipboard call, for tests of code above the backend.
package platformtest

import (
	"sync"
	"unicode/utf16"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/platform"
)

// Message is one recorded SendMessage, PostMessage or SendTextMessage call.
type Message struct {
	Handle platform.WindowHandle
	Msg    uint32
	WParam uintptr
	Posted bool
	Text   string
}

// Window is a fake top-level window.
type Window struct {
	Handle platform.WindowHandle
	Title  string
	Rect   platform.Rect
	Hidden bool
}

// Fake is a scriptable backend. Zero-value failure flags mean success.
type Fake struct {
	mu sync.Mutex

	Windows    []Window
	Foreground platform.WindowHandle

	// SendReturn is what SendMessage and SendTextMessage return.
	SendReturn uintptr
	// SendReturns, when non-empty, supplies SendMessage results in order
	// before falling back to SendReturn.
	SendReturns []uintptr
	// PostFails makes PostMessage report that nothing was queued.
	PostFails bool

	OpenFails    bool
	AllocFails   bool
	SetDataFails bool

	Messages []Message

	ClipboardOpen bool
	OpenCalls     int
	CloseCalls    int
	EmptyCalls    int
	Allocated     map[platform.MemHandle][]uint16
	Freed         []platform.MemHandle
	Clipboard     string
	ClipboardMem  platform.MemHandle

	Closed bool

	nextMem platform.MemHandle
}

var _ platform.Backend = (*Fake)(nil)

// New returns a fake whose message sends succeed.
func New(windows ...Window) *Fake {
	return &Fake{
		Windows:    windows,
		SendReturn: 1,
		Allocated:  make(map[platform.MemHandle][]uint16),
	}
}

// Sent returns a copy of the recorded messages.
func (f *Fake) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.Messages...)
}

func (f *Fake) ForegroundWindow() platform.WindowHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Foreground
}

func (f *Fake) EnumWindows(fn func(platform.WindowHandle) bool) error {
	f.mu.Lock()
	windows := append([]Window(nil), f.Windows...)
	f.mu.Unlock()

	for _, w := range windows {
		if !fn(w.Handle) {
			break
		}
	}
	return nil
}

func (f *Fake) WindowText(h platform.WindowHandle, maxUnits int) []uint16 {
	w, ok := f.window(h)
	if !ok || maxUnits <= 0 {
		return nil
	}
	units := utf16.Encode([]rune(w.Title))
	if len(units) > maxUnits-1 {
		units = units[:maxUnits-1]
	}
	return units
}

func (f *Fake) WindowRect(h platform.WindowHandle) (platform.Rect, bool) {
	w, ok := f.window(h)
	return w.Rect, ok
}

func (f *Fake) IsWindowVisible(h platform.WindowHandle) bool {
	w, ok := f.window(h)
	return ok && !w.Hidden
}

func (f *Fake) window(h platform.WindowHandle) (Window, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.Windows {
		if w.Handle == h {
			return w, true
		}
	}
	return Window{}, false
}

func (f *Fake) SendMessage(h platform.WindowHandle, msg uint32, wparam, _ uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{Handle: h, Msg: msg, WParam: wparam})
	if len(f.SendReturns) > 0 {
		ret := f.SendReturns[0]
		f.SendReturns = f.SendReturns[1:]
		return ret
	}
	return f.SendReturn
}

func (f *Fake) PostMessage(h platform.WindowHandle, msg uint32, wparam, _ uintptr) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{Handle: h, Msg: msg, WParam: wparam, Posted: true})
	return !f.PostFails
}

func (f *Fake) SendTextMessage(h platform.WindowHandle, msg uint32, text []uint16) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{Handle: h, Msg: msg, Text: decode(text)})
	return f.SendReturn
}

func (f *Fake) OpenClipboard() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OpenCalls++
	if f.OpenFails || f.ClipboardOpen {
		return false
	}
	f.ClipboardOpen = true
	return true
}

func (f *Fake) EmptyClipboard() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EmptyCalls++
	f.Clipboard = ""
	return f.ClipboardOpen
}

func (f *Fake) CloseClipboard() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalls++
	wasOpen := f.ClipboardOpen
	f.ClipboardOpen = false
	return wasOpen
}

func (f *Fake) GlobalAllocText(text []uint16) (platform.MemHandle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AllocFails {
		return 0, false
	}
	f.nextMem++
	f.Allocated[f.nextMem] = append([]uint16(nil), text...)
	return f.nextMem, true
}

func (f *Fake) SetClipboardData(format uint32, mem platform.MemHandle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.Allocated[mem]
	if f.SetDataFails || !ok || format != platform.CFUnicodeText {
		return false
	}
	delete(f.Allocated, mem)
	f.Clipboard = decode(text)
	f.ClipboardMem = mem
	return true
}

func (f *Fake) GlobalFree(mem platform.MemHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Freed = append(f.Freed, mem)
	delete(f.Allocated, mem)
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func decode(units []uint16) string {
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}
