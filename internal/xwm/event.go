package xwm

import (
	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

type keymap struct {
	min     xproto.Keycode
	perCode int
	keysyms []xproto.Keysym
}

func loadKeymap(conn *xgb.Conn) (keymap, error) {
	setup := xproto.Setup(conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return keymap{}, err
	}
	return keymap{
		min:     setup.MinKeycode,
		perCode: int(reply.KeysymsPerKeycode),
		keysyms: reply.Keysyms,
	}, nil
}

// lookup returns the keysym in column col, falling back to column 0.
func (k keymap) lookup(code xproto.Keycode, col int) xproto.Keysym {
	if code < k.min || k.perCode == 0 {
		return 0
	}
	i := int(code-k.min) * k.perCode
	if i+k.perCode > len(k.keysyms) {
		return 0
	}
	if col < k.perCode {
		if ks := k.keysyms[i+col]; ks != 0 {
			return ks
		}
	}
	return k.keysyms[i]
}

// translator turns X events into input events for one window.
type translator struct {
	wid      xproto.Window
	wmDelete xproto.Atom
	keymap   keymap

	mods          input.Modifiers
	x, y          int16
	width, height uint16
	configured    bool
}

func modifiers(state uint16) input.Modifiers {
	return input.Modifiers{
		Alt:   state&xproto.ModMask1 != 0,
		Ctrl:  state&xproto.ModMaskControl != 0,
		Meta:  state&xproto.ModMask4 != 0,
		Shift: state&xproto.ModMaskShift != 0,
	}
}

// isRepeat reports whether a release and the press right behind it were
// generated by the server's auto-repeat.
func isRepeat(release xproto.KeyReleaseEvent, press xproto.KeyPressEvent) bool {
	return release.Detail == press.Detail && release.Time == press.Time
}

func (t *translator) syncModifiers(out []input.Event, state uint16) []input.Event {
	if mods := modifiers(state); mods != t.mods {
		t.mods = mods
		out = append(out, input.ModifiersChanged{Modifiers: mods})
	}
	return out
}

func (t *translator) key(state input.ElementState, code xproto.Keycode, modState uint16) []input.Event {
	out := t.syncModifiers(nil, modState)

	name, ok := KeyName(t.keymap.lookup(code, 0))
	if !ok {
		name = "Unlabeled"
	}
	out = append(out, input.Keyboard{State: state, Key: name, Code: uint32(code)})

	if state == input.Pressed && !t.mods.Ctrl {
		col := 0
		if t.mods.Shift {
			col = 1
		}
		if r, ok := KeyRune(t.keymap.lookup(code, col)); ok {
			out = append(out, input.Character{Char: r})
		}
	}
	return out
}

func (t *translator) translate(ev xgb.Event) []input.Event {
	switch ev := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if ev.Window != t.wid {
			return nil
		}
		var out []input.Event
		if !t.configured || ev.Width != t.width || ev.Height != t.height {
			t.width, t.height = ev.Width, ev.Height
			out = append(out, input.Resized{Width: uint32(ev.Width), Height: uint32(ev.Height)})
		}
		if !t.configured || ev.X != t.x || ev.Y != t.y {
			t.x, t.y = ev.X, ev.Y
			out = append(out, input.Moved{X: int32(ev.X), Y: int32(ev.Y)})
		}
		t.configured = true
		return out
	case xproto.KeyPressEvent:
		return t.key(input.Pressed, ev.Detail, ev.State)
	case xproto.KeyReleaseEvent:
		return t.key(input.Released, ev.Detail, ev.State)
	case xproto.ButtonPressEvent:
		out := t.syncModifiers(nil, ev.State)
		out = append(out, input.PointerMoved{X: float64(ev.EventX), Y: float64(ev.EventY)})
		return append(out, t.button(input.Pressed, ev.Detail)...)
	case xproto.ButtonReleaseEvent:
		out := t.syncModifiers(nil, ev.State)
		return append(out, t.button(input.Released, ev.Detail)...)
	case xproto.MotionNotifyEvent:
		out := t.syncModifiers(nil, ev.State)
		return append(out, input.PointerMoved{X: float64(ev.EventX), Y: float64(ev.EventY)})
	case xproto.EnterNotifyEvent:
		return []input.Event{input.PointerEntered{}, input.PointerMoved{X: float64(ev.EventX), Y: float64(ev.EventY)}}
	case xproto.LeaveNotifyEvent:
		return []input.Event{input.PointerLeft{}}
	case xproto.ClientMessageEvent:
		if ev.Format == 32 && len(ev.Data.Data32) > 0 && xproto.Atom(ev.Data.Data32[0]) == t.wmDelete {
			return []input.Event{input.CloseRequested{}}
		}
	case xproto.DestroyNotifyEvent:
		if ev.Window == t.wid {
			return []input.Event{input.Destroyed{}}
		}
	}
	return nil
}

// button maps core buttons. 4 to 7 are wheel clicks and only count on press.
func (t *translator) button(state input.ElementState, detail xproto.Button) []input.Event {
	switch detail {
	case 1:
		return []input.Event{input.MouseInput{State: state, Button: input.ButtonLeft}}
	case 2:
		return []input.Event{input.MouseInput{State: state, Button: input.ButtonMiddle}}
	case 3:
		return []input.Event{input.MouseInput{State: state, Button: input.ButtonRight}}
	}
	if state != input.Pressed {
		return nil
	}
	switch detail {
	case 4:
		return []input.Event{input.Wheel{DY: 1, Lines: true}}
	case 5:
		return []input.Event{input.Wheel{DY: -1, Lines: true}}
	case 6:
		return []input.Event{input.Wheel{DX: 1, Lines: true}}
	case 7:
		return []input.Event{input.Wheel{DX: -1, Lines: true}}
	}
	return nil
}
