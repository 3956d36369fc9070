package xwm

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// MinSize is the smallest window edge in device pixels.
const MinSize = 75

const eventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPropertyChange

// Placement is the initial window geometry on a screen.
type Placement struct {
	X, Y          int16
	Width, Height uint16
}

// Place centers the window horizontally one third from the top.
func Place(screenWidth, screenHeight uint16, width, height uint32) Placement {
	w := uint16(min(max(width, MinSize), 0xffff))
	h := uint16(min(max(height, MinSize), 0xffff))
	return Placement{
		X:      int16((int(screenWidth) - int(w)) / 2),
		Y:      int16((int(screenHeight) - int(h)) / 3),
		Width:  w,
		Height: h,
	}
}

// CreateWindow creates an unmapped top level window.
func CreateWindow(conn *xgb.Conn, screen *xproto.ScreenInfo, pl Placement, cursor xproto.Cursor) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	if err := xproto.CreateWindowChecked(conn, screen.RootDepth,
		wid, screen.Root,
		pl.X, pl.Y, pl.Width, pl.Height, 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			screen.BlackPixel, // 1
			eventMask,         // 2
			uint32(cursor),    // 3
		}).Check(); err != nil {
		return 0, err
	}

	return wid, nil
}

func intern(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}

type atoms struct {
	wmProtocols   xproto.Atom
	wmDelete      xproto.Atom
	netWmName     xproto.Atom
	utf8String    xproto.Atom
	netWmState    xproto.Atom
	netFullscreen xproto.Atom
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	var a atoms
	for _, v := range []struct {
		name string
		atom *xproto.Atom
	}{
		{"WM_PROTOCOLS", &a.wmProtocols},
		{"WM_DELETE_WINDOW", &a.wmDelete},
		{"_NET_WM_NAME", &a.netWmName},
		{"UTF8_STRING", &a.utf8String},
		{"_NET_WM_STATE", &a.netWmState},
		{"_NET_WM_STATE_FULLSCREEN", &a.netFullscreen},
	} {
		atom, err := intern(conn, v.name)
		if err != nil {
			return atoms{}, err
		}
		*v.atom = atom
	}
	return a, nil
}

// setDeleteProtocol asks the window manager for WM_DELETE_WINDOW messages
// instead of killing the connection.
func setDeleteProtocol(conn *xgb.Conn, wid xproto.Window, a atoms) error {
	data := make([]byte, 4)
	xgb.Put32(data, uint32(a.wmDelete))
	return xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		a.wmProtocols, xproto.AtomAtom, 32, 1, data).Check()
}

func setTitle(conn *xgb.Conn, wid xproto.Window, a atoms, title string) error {
	if err := xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		xproto.AtomWmName, xproto.AtomString, 8, uint32(len(title)), []byte(title)).Check(); err != nil {
		return err
	}
	return xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
		a.netWmName, a.utf8String, 8, uint32(len(title)), []byte(title)).Check()
}
