package x11

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// Geometry is a window frame in root coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// ActiveWindow returns _NET_ACTIVE_WINDOW, or 0 when the WM reports none.
func (c *Connection) ActiveWindow() xproto.Window {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil {
		return 0
	}
	return win
}

// ClientList returns the managed top-level windows in mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	return ewmh.ClientListGet(c.XUtil)
}

// IsHidden reports whether the window is minimized or otherwise not shown.
func (c *Connection) IsHidden(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil || attrs.MapState != xproto.MapStateViewable {
		return true
	}

	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(win xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, win)
	if err == nil && strings.TrimSpace(title) != "" {
		return title
	}

	title, err = icccm.WmNameGet(c.XUtil, win)
	if err == nil {
		return title
	}
	return ""
}

// SetWindowTitle writes both the EWMH and ICCCM name properties.
func (c *Connection) SetWindowTitle(win xproto.Window, title string) error {
	if err := ewmh.WmNameSet(c.XUtil, win, title); err != nil {
		return err
	}
	return icccm.WmNameSet(c.XUtil, win, title)
}

// WindowGeometry returns the window's frame translated to root coordinates.
func (c *Connection) WindowGeometry(win xproto.Window) (Geometry, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Geometry{}, false
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, false
	}

	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, true
}
