package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Keycode resolves a keysym name such as "Return" or "v" to the first
// keycode that produces it.
func (c *Connection) Keycode(keysym string) (xproto.Keycode, bool) {
	codes := keybind.StrToKeycodes(c.XUtil, keysym)
	if len(codes) == 0 {
		return 0, false
	}
	return codes[0], true
}

// SendKey delivers a synthetic KeyPress or KeyRelease to win. When wait is
// set the request is checked, which blocks until the server has handled it.
func (c *Connection) SendKey(win xproto.Window, code xproto.Keycode, state uint16, press, wait bool) error {
	ev := xproto.KeyPressEvent{
		Detail:     code,
		Time:       xproto.TimeCurrentTime,
		Root:       c.Root,
		Event:      win,
		Child:      xproto.WindowNone,
		RootX:      1,
		RootY:      1,
		EventX:     1,
		EventY:     1,
		State:      state,
		SameScreen: true,
	}

	var payload string
	var mask uint32
	if press {
		payload = string(ev.Bytes())
		mask = xproto.EventMaskKeyPress
	} else {
		release := xproto.KeyReleaseEvent(ev)
		payload = string(release.Bytes())
		mask = xproto.EventMaskKeyRelease
	}

	if wait {
		return xproto.SendEventChecked(c.XUtil.Conn(), true, win, mask, payload).Check()
	}
	xproto.SendEvent(c.XUtil.Conn(), true, win, mask, payload)
	return nil
}
