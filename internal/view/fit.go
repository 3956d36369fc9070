package view

import (
	"math"
	"strings"

	"github.com/gogpu/gg"
)

type Mode int

const (
	Contain Mode = iota
	Cover
	Fill
	ScaleDown
)

// Fit maps a frame's logical size onto the window. X and Y only apply to
// Contain and select the axes that constrain the scale.
type Fit struct {
	Mode Mode
	X, Y bool
}

// FitNone is the name that selects raw, unscaled drawing.
const FitNone = "none"

// ParseFit resolves a fit name. A nil fit with ok set means raw drawing.
func ParseFit(name string) (fit *Fit, ok bool) {
	switch strings.ToLower(name) {
	case "contain":
		return &Fit{Mode: Contain, X: true, Y: true}, true
	case "contain-x":
		return &Fit{Mode: Contain, X: true}, true
	case "contain-y":
		return &Fit{Mode: Contain, Y: true}, true
	case "cover":
		return &Fit{Mode: Cover}, true
	case "fill":
		return &Fit{Mode: Fill}, true
	case "scale-down":
		return &Fit{Mode: ScaleDown}, true
	case FitNone:
		return nil, true
	default:
		return nil, false
	}
}

func (f *Fit) String() string {
	if f == nil {
		return FitNone
	}
	switch f.Mode {
	case Contain:
		switch {
		case f.X && !f.Y:
			return "contain-x"
		case f.Y && !f.X:
			return "contain-y"
		}
		return "contain"
	case Cover:
		return "cover"
	case Fill:
		return "fill"
	case ScaleDown:
		return "scale-down"
	default:
		return "unknown"
	}
}

// Equal compares two possibly nil fits.
func (f *Fit) Equal(o *Fit) bool {
	if f == nil || o == nil {
		return f == o
	}
	return *f == *o
}

type Size struct {
	Width, Height float64
}

// FittingMatrix maps frame coordinates to window pixels, centering the
// scaled frame. A nil fit or an empty frame yields the identity.
func FittingMatrix(fit *Fit, window, frame Size) gg.Matrix {
	if fit == nil || frame.Width <= 0 || frame.Height <= 0 {
		return gg.Identity()
	}

	sx := window.Width / frame.Width
	sy := window.Height / frame.Height

	switch fit.Mode {
	case Contain:
		var s float64
		switch {
		case fit.X && fit.Y:
			s = math.Min(sx, sy)
		case fit.X:
			s = sx
		case fit.Y:
			s = sy
		default:
			s = 1
		}
		sx, sy = s, s
	case Cover:
		s := math.Max(sx, sy)
		sx, sy = s, s
	case Fill:
	case ScaleDown:
		s := math.Min(1, math.Min(sx, sy))
		sx, sy = s, s
	}

	return gg.Matrix{
		A: sx, C: (window.Width - frame.Width*sx) / 2,
		E: sy, F: (window.Height - frame.Height*sy) / 2,
	}
}
