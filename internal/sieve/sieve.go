// Package sieve accumulates raw input for one tick and serializes it into
// a fixed-shape batch for the host.
package sieve

import (
	"math"

	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/gogpu/gg"
)

// MaxTrackedKeys bounds the repeat table. Hitting it resets the table.
const MaxTrackedKeys = 256

const (
	MouseEnter = "mouseenter"
	MouseLeave = "mouseleave"
	MouseMove  = "mousemove"
	MouseDown  = "mousedown"
	MouseUp    = "mouseup"

	KeyDown = "keydown"
	KeyUp   = "keyup"
)

type entry interface {
	isEntry()
}

type (
	positionEntry   struct{ Point }
	sizeEntry       struct{ Size }
	fullscreenEntry struct{ Fullscreen bool }
	inputEntry      struct{ Char rune }
	keyEntry        struct{ Key }
	mouseEntry      struct{ Kind string }
	wheelEntry      struct{ Delta }
)

func (positionEntry) isEntry()   {}
func (sizeEntry) isEntry()       {}
func (fullscreenEntry) isEntry() {}
func (inputEntry) isEntry()      {}
func (keyEntry) isEntry()        {}
func (mouseEntry) isEntry()      {}
func (wheelEntry) isEntry()      {}

func New() *Sieve {
	return &Sieve{
		repeats: make(map[uint32]int),
	}
}

// Sieve is owned by the window controller and is not safe for concurrent use.
type Sieve struct {
	queue     []entry
	modifiers input.Modifiers
	repeats   map[uint32]int
	position  Point
	size      Size
	pointer   Point
	button    *uint16
	transform *gg.Matrix
}

func (s *Sieve) IsEmpty() bool {
	return len(s.queue) == 0
}

// Len is the number of pending entries.
func (s *Sieve) Len() int {
	return len(s.queue)
}

// Position is the last captured window position in logical units.
func (s *Sieve) Position() Point {
	return s.position
}

// Size is the last captured client size in logical units.
func (s *Sieve) Size() Size {
	return s.size
}

// Pointer is the last captured pointer position.
func (s *Sieve) Pointer() Point {
	return s.pointer
}

func (s *Sieve) Modifiers() input.Modifiers {
	return s.modifiers
}

// UseTransform maps subsequent pointer positions from device pixels through
// m, which should be the inverse of the view's fitting matrix.
func (s *Sieve) UseTransform(m gg.Matrix) {
	s.transform = &m
}

// WentFullscreen records a fullscreen transition the OS made on its own.
func (s *Sieve) WentFullscreen(fullscreen bool) {
	s.queue = append(s.queue, fullscreenEntry{Fullscreen: fullscreen})
	s.ResetRepeats()
}

// ResetRepeats forgets every held key. Key-up events are not reliably
// delivered across a fullscreen transition.
func (s *Sieve) ResetRepeats() {
	clear(s.repeats)
}

// Capture folds ev into the pending batch. scale is the window's device
// pixels per logical unit.
func (s *Sieve) Capture(ev input.Event, scale float64) {
	if scale <= 0 {
		scale = 1
	}

	switch ev := ev.(type) {
	case input.Moved:
		s.position = Point{
			X: int32(math.Round(float64(ev.X) / scale)),
			Y: int32(math.Round(float64(ev.Y) / scale)),
		}
		s.queue = append(s.queue, positionEntry{s.position})
	case input.Resized:
		s.size = Size{
			Width:  uint32(math.Round(float64(ev.Width) / scale)),
			Height: uint32(math.Round(float64(ev.Height) / scale)),
		}
		s.queue = append(s.queue, sizeEntry{s.size})
	case input.ModifiersChanged:
		s.modifiers = ev.Modifiers
	case input.Character:
		s.queue = append(s.queue, inputEntry{Char: ev.Char})
	case input.PointerEntered:
		s.queue = append(s.queue, mouseEntry{Kind: MouseEnter})
	case input.PointerLeft:
		s.queue = append(s.queue, mouseEntry{Kind: MouseLeave})
	case input.PointerMoved:
		s.pointer = s.mapPointer(ev.X, ev.Y, scale)
		s.queue = append(s.queue, mouseEntry{Kind: MouseMove})
	case input.Wheel:
		delta := Delta{X: ev.DX, Y: ev.DY}
		if !ev.Lines {
			delta = Delta{X: ev.DX / scale, Y: ev.DY / scale}
		}
		s.queue = append(s.queue, wheelEntry{delta})
	case input.MouseInput:
		kind := MouseDown
		if ev.State == input.Released {
			kind = MouseUp
		}
		button := uint16(ev.Button)
		s.button = &button
		s.queue = append(s.queue, mouseEntry{Kind: kind})
	case input.Keyboard:
		s.captureKey(ev)
	}
}

func (s *Sieve) captureKey(ev input.Keyboard) {
	if ev.State == input.Released {
		delete(s.repeats, ev.Code)
		s.queue = append(s.queue, keyEntry{Key{Event: KeyUp, Key: ev.Key, Code: ev.Code}})
		return
	}

	count, held := s.repeats[ev.Code]
	if held {
		count++
	} else if len(s.repeats) >= MaxTrackedKeys {
		s.ResetRepeats()
	}
	s.repeats[ev.Code] = count

	// the first auto-repeat is reported, later ones are dropped at the source
	if count < 2 {
		s.queue = append(s.queue, keyEntry{Key{Event: KeyDown, Key: ev.Key, Code: ev.Code, Repeat: count > 0}})
	}
}

func (s *Sieve) mapPointer(x, y, scale float64) Point {
	if s.transform != nil {
		p := s.transform.TransformPoint(gg.Pt(x, y))
		return Point{X: int32(math.Round(p.X)), Y: int32(math.Round(p.Y))}
	}
	return Point{X: int32(math.Round(x / scale)), Y: int32(math.Round(y / scale))}
}

// Digest serializes every pending entry and empties the sieve. Entries of
// the same kind collapse to the latest one, except mouse event kinds which
// are all kept in order.
func (s *Sieve) Digest() Batch {
	var (
		batch       Batch
		includeMods bool
		mouseEvents []string
	)

	for _, e := range s.queue {
		switch e := e.(type) {
		case positionEntry:
			p := e.Point
			batch.Position = &p
		case sizeEntry:
			sz := e.Size
			batch.Size = &sz
		case fullscreenEntry:
			f := e.Fullscreen
			batch.Fullscreen = &f
		case inputEntry:
			includeMods = true
			str := string(e.Char)
			batch.Input = &str
		case keyEntry:
			includeMods = true
			k := e.Key
			batch.Key = &k
		case mouseEntry:
			includeMods = true
			mouseEvents = append(mouseEvents, e.Kind)
		case wheelEntry:
			d := e.Delta
			batch.Wheel = &d
		}
	}

	if len(mouseEvents) > 0 {
		batch.Mouse = &Mouse{
			Events: mouseEvents,
			X:      s.pointer.X,
			Y:      s.pointer.Y,
			Button: s.button,
		}
		s.button = nil
	}

	if includeMods {
		mods := s.modifiers
		batch.Modifiers = &mods
	}

	s.queue = s.queue[:0]
	return batch
}
