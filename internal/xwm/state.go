package xwm

import (
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	netWmStateRemove = 0
	netWmStateAdd    = 1
)

// requestFullscreen asks the window manager to change _NET_WM_STATE. An
// unmapped window sets the property itself so the window manager reads it
// on map.
func requestFullscreen(conn *xgb.Conn, root, wid xproto.Window, a atoms, mapped, fullscreen bool) error {
	if !mapped {
		var data []byte
		if fullscreen {
			data = make([]byte, 4)
			xgb.Put32(data, uint32(a.netFullscreen))
		}
		return xproto.ChangePropertyChecked(conn, xproto.PropModeReplace, wid,
			a.netWmState, xproto.AtomAtom, 32, uint32(len(data)/4), data).Check()
	}

	action := uint32(netWmStateRemove)
	if fullscreen {
		action = netWmStateAdd
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wid,
		Type:   a.netWmState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{action, uint32(a.netFullscreen), 0, 1, 0}),
	}
	return xproto.SendEventChecked(conn, false, root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes())).Check()
}

// queryFullscreen reads _NET_WM_STATE as the window manager left it.
func queryFullscreen(conn *xgb.Conn, wid xproto.Window, a atoms) (bool, error) {
	reply, err := xproto.GetProperty(conn, false, wid, a.netWmState, xproto.AtomAtom, 0, 64).Reply()
	if err != nil {
		return false, err
	}
	return hasAtom(reply.Value, a.netFullscreen), nil
}

func hasAtom(value []byte, atom xproto.Atom) bool {
	for i := 0; i+4 <= len(value); i += 4 {
		if xproto.Atom(xgb.Get32(value[i:])) == atom {
			return true
		}
	}
	return false
}
