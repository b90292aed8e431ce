//go:build linux

package platform

import (
	"sync"
	"unicode"
	"unicode/utf16"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/atotto/clipboard"
	"github.com/pkg/errors"

	"github.com/LinearBoundedAutomaton/ApexModelingIDE/internal/x11"
)

// X11Backend maps the Win32 message model onto an X11 session.
//
// Key messages become synthetic key events addressed to the window, the
// title is the window's name property, and clipboard hand-off is performed
// through the system clipboard tool.
type X11Backend struct {
	conn *x11.Connection

	mu       sync.Mutex
	modState uint16

	clipOpen bool
	nextMem  MemHandle
	staged   map[MemHandle][]uint16
}

var _ Backend = (*X11Backend)(nil)

// Open connects to the X server named by $DISPLAY.
func Open() (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	return NewX11Backend(conn), nil
}

// NewX11Backend wraps an existing X11 connection.
func NewX11Backend(conn *x11.Connection) *X11Backend {
	return &X11Backend{
		conn:   conn,
		staged: make(map[MemHandle][]uint16),
	}
}

// Close disconnects from the X server.
func (b *X11Backend) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	b.conn.Close()
	return nil
}

func (b *X11Backend) ForegroundWindow() WindowHandle {
	return HandleFromRaw(uintptr(b.conn.ActiveWindow()))
}

func (b *X11Backend) EnumWindows(fn func(WindowHandle) bool) error {
	clients, err := b.conn.ClientList()
	if err != nil {
		return errors.Wrap(err, "failed to read client list")
	}
	for _, win := range clients {
		if !fn(HandleFromRaw(uintptr(win))) {
			break
		}
	}
	return nil
}

func (b *X11Backend) WindowText(h WindowHandle, maxUnits int) []uint16 {
	if maxUnits <= 0 {
		return nil
	}
	units := utf16.Encode([]rune(b.conn.WindowTitle(xproto.Window(h.Raw()))))
	if len(units) > maxUnits-1 {
		units = units[:maxUnits-1]
	}
	return units
}

func (b *X11Backend) WindowRect(h WindowHandle) (Rect, bool) {
	g, ok := b.conn.WindowGeometry(xproto.Window(h.Raw()))
	if !ok {
		return Rect{}, false
	}
	return Rect{Left: g.X, Top: g.Y, Right: g.X + g.Width, Bottom: g.Y + g.Height}, true
}

func (b *X11Backend) IsWindowVisible(h WindowHandle) bool {
	return !b.conn.IsHidden(xproto.Window(h.Raw()))
}

func (b *X11Backend) SendMessage(h WindowHandle, msg uint32, wparam, _ uintptr) uintptr {
	if b.deliver(h, msg, wparam, true) {
		return 1
	}
	return 0
}

func (b *X11Backend) PostMessage(h WindowHandle, msg uint32, wparam, _ uintptr) bool {
	return b.deliver(h, msg, wparam, false)
}

func (b *X11Backend) SendTextMessage(h WindowHandle, msg uint32, text []uint16) uintptr {
	if msg != MsgSetText {
		return 0
	}
	if n := len(text); n > 0 && text[n-1] == 0 {
		text = text[:n-1]
	}
	if err := b.conn.SetWindowTitle(xproto.Window(h.Raw()), string(utf16.Decode(text))); err != nil {
		return 0
	}
	return 1
}

func (b *X11Backend) deliver(h WindowHandle, msg uint32, wparam uintptr, wait bool) bool {
	win := xproto.Window(h.Raw())

	b.mu.Lock()
	defer b.mu.Unlock()

	switch msg {
	case MsgKeyDown, MsgKeyUp:
		press := msg == MsgKeyDown
		keysym, ok := vkKeysyms[uint32(wparam)]
		if !ok {
			keysym, ok = vkAlnumKeysym(uint32(wparam))
		}
		if !ok {
			return false
		}
		code, ok := b.conn.Keycode(keysym)
		if !ok {
			return false
		}
		// Track held modifiers so that a later 'V' arrives as Ctrl+V.
		mask := vkModifierMask[uint32(wparam)]
		state := b.modState
		if press {
			b.modState |= mask
		} else {
			b.modState &^= mask
		}
		return b.conn.SendKey(win, code, state, press, wait) == nil

	case MsgChar:
		keysym, shift, ok := charKeysym(rune(wparam))
		if !ok {
			return false
		}
		code, ok := b.conn.Keycode(keysym)
		if !ok {
			return false
		}
		state := b.modState
		if shift {
			state |= xproto.ModMaskShift
		}
		if err := b.conn.SendKey(win, code, state, true, wait); err != nil {
			return false
		}
		return b.conn.SendKey(win, code, state, false, wait) == nil
	}

	// WM_PASTE and other messages have no X11 equivalent.
	return false
}

func (b *X11Backend) OpenClipboard() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clipOpen {
		return false
	}
	b.clipOpen = true
	return true
}

func (b *X11Backend) EmptyClipboard() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clipOpen
}

func (b *X11Backend) CloseClipboard() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	wasOpen := b.clipOpen
	b.clipOpen = false
	return wasOpen
}

func (b *X11Backend) GlobalAllocText(text []uint16) (MemHandle, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextMem++
	b.staged[b.nextMem] = append([]uint16(nil), text...)
	return b.nextMem, true
}

func (b *X11Backend) SetClipboardData(format uint32, mem MemHandle) bool {
	b.mu.Lock()
	text, ok := b.staged[mem]
	open := b.clipOpen
	b.mu.Unlock()

	if !ok || !open || format != CFUnicodeText {
		return false
	}
	if n := len(text); n > 0 && text[n-1] == 0 {
		text = text[:n-1]
	}
	if err := clipboard.WriteAll(string(utf16.Decode(text))); err != nil {
		return false
	}

	b.mu.Lock()
	delete(b.staged, mem)
	b.mu.Unlock()
	return true
}

func (b *X11Backend) GlobalFree(mem MemHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.staged, mem)
}

var vkKeysyms = map[uint32]string{
	0x08: "BackSpace",
	0x09: "Tab",
	0x0D: "Return",
	0x10: "Shift_L",
	0x11: "Control_L",
	0x12: "Alt_L",
	0x1B: "Escape",
	0x20: "space",
	0x21: "Prior",
	0x22: "Next",
	0x23: "End",
	0x24: "Home",
	0x25: "Left",
	0x26: "Up",
	0x27: "Right",
	0x28: "Down",
	0x2D: "Insert",
	0x2E: "Delete",
	0x70: "F1",
	0x71: "F2",
	0x72: "F3",
	0x73: "F4",
	0x74: "F5",
	0x75: "F6",
	0x76: "F7",
	0x77: "F8",
	0x78: "F9",
	0x79: "F10",
	0x7A: "F11",
	0x7B: "F12",
}

var vkModifierMask = map[uint32]uint16{
	0x10: xproto.ModMaskShift,
	0x11: xproto.ModMaskControl,
	0x12: xproto.ModMask1,
}

// vkAlnumKeysym covers VK 0-9 and A-Z, which share their ASCII codes.
func vkAlnumKeysym(vk uint32) (string, bool) {
	switch {
	case vk >= '0' && vk <= '9':
		return string(rune(vk)), true
	case vk >= 'A' && vk <= 'Z':
		return string(unicode.ToLower(rune(vk))), true
	}
	return "", false
}

var punctKeysyms = map[rune]string{
	' ':  "space",
	'\r': "Return",
	'\n': "Return",
	'\t': "Tab",
	'.':  "period",
	',':  "comma",
	'-':  "minus",
	'=':  "equal",
	'/':  "slash",
	';':  "semicolon",
	'\'': "apostrophe",
	'[':  "bracketleft",
	']':  "bracketright",
	'\\': "backslash",
	'`':  "grave",
}

// charKeysym resolves a typed character to an unshifted keysym plus whether
// Shift must be held.
func charKeysym(r rune) (string, bool, bool) {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return string(r), false, true
	case r >= 'A' && r <= 'Z':
		return string(unicode.ToLower(r)), true, true
	}
	if name, ok := punctKeysyms[r]; ok {
		return name, false, true
	}
	return "", false, false
}
