package sieve

import "github.com/ItsNotGoodName/x-canvasview/internal/input"

// BatchLen is the number of positional slots in a serialized batch.
//
//	 0–5: x, y, width, height, fullscreen, [alt, ctrl, meta, shift]
//	6–10: input, keyEvent, key, code, repeat
//	11–14: [mouseEvents], mouseX, mouseY, button
//	15–16: wheelX, wheelY
const BatchLen = 17

type Point struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

type Size struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

type Key struct {
	Event  string `json:"event"` // keydown | keyup
	Key    string `json:"key"`
	Code   uint32 `json:"code"`
	Repeat bool   `json:"repeat"`
}

type Mouse struct {
	Events []string `json:"events"`
	X      int32    `json:"x"`
	Y      int32    `json:"y"`
	Button *uint16  `json:"button,omitempty"`
}

type Delta struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Batch is one tick worth of coalesced input. A nil field was not touched
// during the tick.
type Batch struct {
	Position   *Point           `json:"position,omitempty"`
	Size       *Size            `json:"size,omitempty"`
	Fullscreen *bool            `json:"fullscreen,omitempty"`
	Modifiers  *input.Modifiers `json:"modifiers,omitempty"`
	Input      *string          `json:"input,omitempty"`
	Key        *Key             `json:"key,omitempty"`
	Mouse      *Mouse           `json:"mouse,omitempty"`
	Wheel      *Delta           `json:"wheel,omitempty"`
}

// Empty reports whether nothing was captured.
func (b Batch) Empty() bool {
	return b.Position == nil && b.Size == nil && b.Fullscreen == nil && b.Modifiers == nil &&
		b.Input == nil && b.Key == nil && b.Mouse == nil && b.Wheel == nil
}

// Values returns the positional form of the batch. Unset slots are nil.
func (b Batch) Values() []any {
	v := make([]any, BatchLen)
	if b.Position != nil {
		v[0], v[1] = b.Position.X, b.Position.Y
	}
	if b.Size != nil {
		v[2], v[3] = b.Size.Width, b.Size.Height
	}
	if b.Fullscreen != nil {
		v[4] = *b.Fullscreen
	}
	if b.Modifiers != nil {
		v[5] = []bool{b.Modifiers.Alt, b.Modifiers.Ctrl, b.Modifiers.Meta, b.Modifiers.Shift}
	}
	if b.Input != nil {
		v[6] = *b.Input
	}
	if b.Key != nil {
		v[7], v[8], v[9], v[10] = b.Key.Event, b.Key.Key, b.Key.Code, b.Key.Repeat
	}
	if b.Mouse != nil {
		v[11], v[12], v[13] = b.Mouse.Events, b.Mouse.X, b.Mouse.Y
		if b.Mouse.Button != nil {
			v[14] = *b.Mouse.Button
		}
	}
	if b.Wheel != nil {
		v[15], v[16] = b.Wheel.X, b.Wheel.Y
	}
	return v
}
