// Package window keeps one native window in step with the state a host
// returns for it.
package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/sieve"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
)

var (
	ErrStopRequested  = errors.New("host stopped the window")
	ErrCloseRequested = errors.New("window close requested")
	ErrHost           = errors.New("host failed")
)

type Phase int

const (
	Starting Phase = iota
	Running
	Closing
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Closing:
		return "closing"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// State is the canonical window state. Geometry is in logical units.
type State struct {
	Title    string
	Position sieve.Point
	Size     sieve.Size
	// Cursor is nil while the pointer is hidden.
	Cursor     *string
	Fit        *view.Fit
	Fullscreen bool
	Visible    bool
	FrameRate  uint
}

// Host owns the desired window state. Calls are never concurrent.
type Host interface {
	Dispatch(ctx context.Context, batch sieve.Batch) (Reply, error)
	Animate(ctx context.Context) (Reply, error)
}

// Platform mutates OS level window properties. Geometry is in device pixels.
type Platform interface {
	view.SurfaceFactory
	ScaleFactor() float64
	SetTitle(title string) error
	SetPosition(x, y int32) error
	SetSize(width, height uint32) error
	ShowCursor(name string) error
	HideCursor() error
	SetVisible(visible bool) error
	SetFullscreen(fullscreen bool) error
	// Fullscreen reports what the window manager currently shows.
	Fullscreen() bool
}

// Pacer is re-armed whenever the frame rate changes.
type Pacer interface {
	SetRate(fps uint) bool
}

// Snapshot is a copy of the canonical state published after every change.
type Snapshot struct {
	ID         string    `json:"id"`
	Phase      string    `json:"phase"`
	Title      string    `json:"title"`
	X          int32     `json:"x"`
	Y          int32     `json:"y"`
	Width      uint32    `json:"width"`
	Height     uint32    `json:"height"`
	Cursor     string    `json:"cursor"`
	Fit        string    `json:"fit"`
	Fullscreen bool      `json:"fullscreen"`
	Visible    bool      `json:"visible"`
	FrameRate  uint      `json:"frame_rate"`
	FrameID    string    `json:"frame_id"`
	Revision   uint64    `json:"revision"`
	UpdatedAt  time.Time `json:"updated_at"`
}
