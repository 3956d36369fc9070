package view

import (
	"math"
	"testing"

	"github.com/gogpu/gg"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseFit(t *testing.T) {
	tests := []struct {
		name string
		want *Fit
		ok   bool
	}{
		{"contain", &Fit{Mode: Contain, X: true, Y: true}, true},
		{"Contain-X", &Fit{Mode: Contain, X: true}, true},
		{"contain-y", &Fit{Mode: Contain, Y: true}, true},
		{"cover", &Fit{Mode: Cover}, true},
		{"fill", &Fit{Mode: Fill}, true},
		{"scale-down", &Fit{Mode: ScaleDown}, true},
		{"none", nil, true},
		{"stretch", nil, false},
		{"", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFit(tt.name)
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("ParseFit(%q) = %v, %v, want %v, %v", tt.name, got, ok, tt.want, tt.ok)
			}
			if tt.ok && tt.want != nil {
				if again, _ := ParseFit(got.String()); !again.Equal(got) {
					t.Errorf("String() = %q does not parse back", got.String())
				}
			}
		})
	}
}

func TestFittingMatrix(t *testing.T) {
	frame := Size{Width: 100, Height: 50}
	window := Size{Width: 400, Height: 100}

	tests := []struct {
		name   string
		fit    *Fit
		sx, sy float64
		tx, ty float64
	}{
		{"contain", &Fit{Mode: Contain, X: true, Y: true}, 2, 2, 100, 0},
		{"contain-x", &Fit{Mode: Contain, X: true}, 4, 4, 0, -50},
		{"contain-y", &Fit{Mode: Contain, Y: true}, 2, 2, 100, 0},
		{"cover", &Fit{Mode: Cover}, 4, 4, 0, -50},
		{"fill", &Fit{Mode: Fill}, 4, 2, 0, 0},
		{"scale-down", &Fit{Mode: ScaleDown}, 1, 1, 150, 25},
		{"raw", nil, 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FittingMatrix(tt.fit, window, frame)
			if !near(m.A, tt.sx) || !near(m.E, tt.sy) || !near(m.C, tt.tx) || !near(m.F, tt.ty) {
				t.Errorf("FittingMatrix() = %+v, want scale (%v, %v) translate (%v, %v)", m, tt.sx, tt.sy, tt.tx, tt.ty)
			}
			if m.B != 0 || m.D != 0 {
				t.Errorf("FittingMatrix() has shear: %+v", m)
			}
		})
	}
}

func TestFittingMatrixScaleDownShrinks(t *testing.T) {
	m := FittingMatrix(&Fit{Mode: ScaleDown}, Size{Width: 50, Height: 50}, Size{Width: 100, Height: 50})
	if !near(m.A, 0.5) || !near(m.F, 12.5) {
		t.Errorf("FittingMatrix() = %+v, want scale 0.5 centered vertically", m)
	}
}

func TestFittingMatrixEmptyFrame(t *testing.T) {
	m := FittingMatrix(&Fit{Mode: Cover}, Size{Width: 10, Height: 10}, Size{})
	if m != gg.Identity() {
		t.Errorf("FittingMatrix() = %+v, want identity", m)
	}
}

func TestFittingMatrixInverse(t *testing.T) {
	m := FittingMatrix(&Fit{Mode: Contain, X: true, Y: true}, Size{Width: 400, Height: 100}, Size{Width: 100, Height: 50})
	p := m.Invert().TransformPoint(gg.Pt(300, 100))
	if !near(p.X, 100) || !near(p.Y, 50) {
		t.Errorf("inverse maps the frame corner to %+v, want (100, 50)", p)
	}
}
