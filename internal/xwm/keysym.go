package xwm

import (
	"strconv"

	"github.com/jezek/xgb/xproto"
)

var keyNames = map[xproto.Keysym]string{
	0xff1b: "Escape",
	0xff08: "Backspace",
	0xff09: "Tab",
	0xff0d: "Return",
	0x0020: "Space",
	0xff13: "Pause",
	0xff14: "Scroll",
	0xff61: "Snapshot",
	0xff63: "Insert",
	0xffff: "Delete",
	0xff50: "Home",
	0xff57: "End",
	0xff55: "PageUp",
	0xff56: "PageDown",
	0xff51: "Left",
	0xff52: "Up",
	0xff53: "Right",
	0xff54: "Down",
	0xff20: "Compose",
	0xff67: "Apps",
	0xff7f: "Numlock",
	0xffe5: "Capital",
	0xffe1: "LShift",
	0xffe2: "RShift",
	0xffe3: "LControl",
	0xffe4: "RControl",
	0xffe9: "LAlt",
	0xffea: "RAlt",
	0xffe7: "LMeta",
	0xffe8: "RMeta",
	0xffeb: "LMeta",
	0xffec: "RMeta",
	0xff8d: "NumpadEnter",
	0xffaa: "NumpadMultiply",
	0xffab: "NumpadAdd",
	0xffac: "NumpadComma",
	0xffad: "NumpadSubtract",
	0xffae: "NumpadDecimal",
	0xffaf: "NumpadDivide",
	0xffbd: "NumpadEquals",
	0x0027: "Apostrophe",
	0x002c: "Comma",
	0x002d: "Minus",
	0x002e: "Period",
	0x002f: "Slash",
	0x003b: "Semicolon",
	0x003d: "Equals",
	0x005b: "LBracket",
	0x005c: "Backslash",
	0x005d: "RBracket",
	0x0060: "Grave",
}

// KeyName names the key that produces keysym when no modifier is held.
func KeyName(keysym xproto.Keysym) (string, bool) {
	switch {
	case keysym >= 'a' && keysym <= 'z':
		return string(rune(keysym - 'a' + 'A')), true
	case keysym >= 'A' && keysym <= 'Z', keysym >= '0' && keysym <= '9':
		return string(rune(keysym)), true
	case keysym >= 0xffbe && keysym <= 0xffd5:
		return "F" + strconv.Itoa(int(keysym-0xffbe)+1), true
	case keysym >= 0xffb0 && keysym <= 0xffb9:
		return "Numpad" + strconv.Itoa(int(keysym-0xffb0)), true
	}
	name, ok := keyNames[keysym]
	return name, ok
}

// KeyRune is the character a keysym types, if any.
func KeyRune(keysym xproto.Keysym) (rune, bool) {
	switch {
	case keysym >= 0x20 && keysym <= 0x7e, keysym >= 0xa0 && keysym <= 0xff:
		return rune(keysym), true
	case keysym >= 0x01000100 && keysym <= 0x0110ffff:
		return rune(keysym & 0x00ffffff), true
	case keysym >= 0xffb0 && keysym <= 0xffb9:
		return rune('0' + keysym - 0xffb0), true
	}
	return 0, false
}
