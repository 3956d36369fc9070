package window

import (
	"encoding/json"
	"math"

	"github.com/ItsNotGoodName/x-canvasview/internal/frame"
)

// Reply slots. A slot that is missing or fails to parse requests no change.
const (
	SlotFrame = iota
	SlotTitle
	SlotKeepRunning
	SlotFullscreen
	SlotFrameRate
	SlotWidth
	SlotHeight
	SlotX
	SlotY
	SlotCursor
	SlotFit
	SlotVisible

	ReplyLen
)

// Reply is the positional record a host returns from a round trip.
type Reply []any

func (r Reply) slot(i int) any {
	if i < 0 || i >= len(r) {
		return nil
	}
	return r[i]
}

func (r Reply) Frame() (frame.Frame, bool) {
	f, ok := r.slot(SlotFrame).(frame.Frame)
	return f, ok && f != nil
}

func (r Reply) String(i int) (string, bool) {
	s, ok := r.slot(i).(string)
	return s, ok
}

func (r Reply) Bool(i int) (bool, bool) {
	b, ok := r.slot(i).(bool)
	return b, ok
}

// Uint accepts any non-negative finite number, truncating fractions.
func (r Reply) Uint(i int) (uint, bool) {
	f, ok := number(r.slot(i))
	if !ok || f < 0 || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}

func (r Reply) Int32(i int) (int32, bool) {
	f, ok := number(r.slot(i))
	if !ok || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int32(f), true
}

func number(v any) (float64, bool) {
	var f float64
	switch v := v.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
