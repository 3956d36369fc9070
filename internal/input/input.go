// Package input is the raw window-system event vocabulary shared by the
// platform backends, the sieve and the window controller.
package input

// Event is a raw window-system event.
type Event interface {
	isEvent()
}

type ElementState int

const (
	Pressed ElementState = iota
	Released
)

func (s ElementState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Modifiers is the set of held modifier keys.
type Modifiers struct {
	Alt   bool
	Ctrl  bool
	Meta  bool
	Shift bool
}

// MouseButton index as reported to the host (0 left, 1 middle, 2 right, ...).
type MouseButton uint16

const (
	ButtonLeft   MouseButton = 0
	ButtonMiddle MouseButton = 1
	ButtonRight  MouseButton = 2
)

type (
	// Moved is the window's outer position in device pixels.
	Moved struct {
		X, Y int32
	}
	// Resized is the window's client area in device pixels.
	Resized struct {
		Width, Height uint32
	}
	ModifiersChanged struct {
		Modifiers Modifiers
	}
	Character struct {
		Char rune
	}
	PointerEntered struct{}
	PointerLeft    struct{}
	// PointerMoved is the pointer position in device pixels.
	PointerMoved struct {
		X, Y float64
	}
	// Wheel carries either a pixel delta (device pixels) or a line delta.
	Wheel struct {
		DX, DY float64
		Lines  bool
	}
	MouseInput struct {
		State  ElementState
		Button MouseButton
	}
	// Keyboard is a key press or release. Code is the physical scancode and
	// identifies the key for repeat tracking; Key is the logical name.
	Keyboard struct {
		State ElementState
		Key   string
		Code  uint32
	}
	CloseRequested struct{}
	// Destroyed is sent when the native window disappeared underneath us.
	Destroyed struct{}
)

func (Moved) isEvent()            {}
func (Resized) isEvent()          {}
func (ModifiersChanged) isEvent() {}
func (Character) isEvent()        {}
func (PointerEntered) isEvent()   {}
func (PointerLeft) isEvent()      {}
func (PointerMoved) isEvent()     {}
func (Wheel) isEvent()            {}
func (MouseInput) isEvent()       {}
func (Keyboard) isEvent()         {}
func (CloseRequested) isEvent()   {}
func (Destroyed) isEvent()        {}
