// Package view owns the drawable surface and the frame currently shown on it.
package view

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ItsNotGoodName/x-canvasview/internal/frame"
	"github.com/gogpu/gg"
)

var ErrSurfaceLost = errors.New("surface lost")

// Surface is a presentable drawable bound to a window.
type Surface interface {
	Present(img image.Image) error
	Close() error
}

type SurfaceFactory interface {
	NewSurface(width, height int) (Surface, error)
}

func New(factory SurfaceFactory, width, height int, backdrop gg.RGBA, fit *Fit) (*View, error) {
	width, height = max(width, 1), max(height, 1)

	surface, err := factory.NewSurface(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}

	return &View{
		factory:  factory,
		surface:  surface,
		dc:       gg.NewContext(width, height),
		queue:    NewQueue(),
		backdrop: backdrop,
		fit:      fit,
		width:    width,
		height:   height,
		dirty:    true,
	}, nil
}

// View must only be used from the thread that drives the run loop. Other
// components reach it through Queue.
type View struct {
	factory  SurfaceFactory
	surface  Surface
	dc       *gg.Context
	queue    *Queue
	backdrop gg.RGBA

	frame      frame.Frame
	fit        *Fit
	width      int
	height     int
	fullscreen bool
	visible    bool
	dirty      bool
}

func (v *View) Queue() *Queue {
	return v.queue
}

// Drain applies every queued command.
func (v *View) Drain() error {
	var errs error
	for _, cmd := range v.queue.Drain() {
		if err := v.Handle(cmd); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (v *View) Handle(cmd Command) error {
	switch cmd := cmd.(type) {
	case AdoptFrame:
		v.AdoptFrame(cmd.Frame)
	case SetFit:
		if !v.fit.Equal(cmd.Fit) {
			v.fit = cmd.Fit
			v.dirty = true
		}
	case SetFullscreen:
		if v.fullscreen != cmd.Fullscreen {
			v.fullscreen = cmd.Fullscreen
			v.dirty = true
		}
	case SetVisible:
		v.visible = cmd.Visible
		v.dirty = v.dirty || cmd.Visible
	case Resize:
		return v.Resize(cmd.Width, cmd.Height)
	default:
		return fmt.Errorf("unknown view command %T", cmd)
	}
	return nil
}

// AdoptFrame swaps in f unless it carries the content already shown.
func (v *View) AdoptFrame(f frame.Frame) bool {
	if f == nil || (v.frame != nil && v.frame.ID() == f.ID()) {
		return false
	}
	v.frame = f
	v.dirty = true
	return true
}

// Resize binds a surface of the new pixel size. The old surface is closed
// only after the new one exists.
func (v *View) Resize(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	if width == v.width && height == v.height && v.surface != nil {
		return nil
	}

	if err := v.replaceSurface(width, height); err != nil {
		return err
	}
	if err := v.dc.Resize(width, height); err != nil {
		return err
	}

	v.width, v.height = width, height
	v.dirty = true
	return nil
}

// Rebuild recreates the surface at the current size after it was lost.
func (v *View) Rebuild() error {
	if err := v.replaceSurface(v.width, v.height); err != nil {
		return err
	}
	v.dirty = true
	return nil
}

func (v *View) replaceSurface(width, height int) error {
	surface, err := v.factory.NewSurface(width, height)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}

	old := v.surface
	v.surface = surface
	if old != nil {
		if err := old.Close(); err != nil {
			slog.Warn("Failed to close surface", "package", "view", "error", err)
		}
	}
	return nil
}

// Redraw composites the current frame and presents it. Hidden views draw
// but do not present.
func (v *View) Redraw() error {
	v.dc.ClearWithColor(v.backdrop)

	if v.frame != nil {
		fw, fh := v.frame.Size()
		v.dc.Push()
		v.dc.SetTransform(v.FittingMatrix())
		v.dc.ClipRect(0, 0, fw, fh)
		err := v.frame.Draw(v.dc)
		v.dc.Pop()
		if err != nil {
			return err
		}
	}
	v.dirty = false

	if !v.visible {
		return nil
	}
	if v.surface == nil {
		return ErrSurfaceLost
	}
	if err := v.surface.Present(v.dc.Image()); err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceLost, err)
	}
	return nil
}

// FittingMatrix maps frame coordinates to surface pixels.
func (v *View) FittingMatrix() gg.Matrix {
	if v.frame == nil {
		return gg.Identity()
	}
	fw, fh := v.frame.Size()
	return FittingMatrix(v.fit, Size{Width: float64(v.width), Height: float64(v.height)}, Size{Width: fw, Height: fh})
}

func (v *View) NeedsRedraw() bool {
	return v.dirty
}

func (v *View) Frame() frame.Frame {
	return v.frame
}

func (v *View) Fit() *Fit {
	return v.fit
}

func (v *View) Visible() bool {
	return v.visible
}

func (v *View) Fullscreen() bool {
	return v.fullscreen
}

// Size is the surface size in device pixels.
func (v *View) Size() (int, int) {
	return v.width, v.height
}

func (v *View) Close() error {
	var err error
	if v.surface != nil {
		err = v.surface.Close()
		v.surface = nil
	}
	return errors.Join(err, v.dc.Close())
}
