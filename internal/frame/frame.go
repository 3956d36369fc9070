// Package frame holds the immutable drawables a view composites.
package frame

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/recording/backends/raster"
)

// Frame is an immutable snapshot produced outside the view. Two frames with
// the same ID are treated as the same content.
type Frame interface {
	ID() string
	// Size is the logical width and height of the frame.
	Size() (float64, float64)
	// Draw composites the frame at the origin of dc under its current transform.
	Draw(dc *gg.Context) error
}

// Image is a frame backed by a raster image. Its logical size may differ
// from the pixel size of the buffer, as for high density frames.
type Image struct {
	id  string
	buf *gg.ImageBuf
	w   float64
	h   float64
}

// NewImage returns a frame whose logical size is the pixel size of img.
func NewImage(id string, img image.Image) *Image {
	b := img.Bounds()
	return &Image{
		id:  id,
		buf: gg.ImageBufFromImage(img),
		w:   float64(b.Dx()),
		h:   float64(b.Dy()),
	}
}

// DecodePNG reads a PNG encoded frame.
func DecodePNG(id string, r io.Reader) (*Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %q: %w", id, err)
	}
	return NewImage(id, img), nil
}

// WithSize declares the logical size of the frame. The buffer is scaled to
// it when drawn. Non-positive values keep the current size.
func (f *Image) WithSize(width, height float64) *Image {
	if width > 0 {
		f.w = width
	}
	if height > 0 {
		f.h = height
	}
	return f
}

func (f *Image) ID() string {
	return f.id
}

func (f *Image) Size() (float64, float64) {
	return f.w, f.h
}

func (f *Image) Draw(dc *gg.Context) error {
	if f.w <= 0 || f.h <= 0 {
		return nil
	}
	dc.DrawImageEx(f.buf, gg.DrawImageOptions{
		DstWidth:  f.w,
		DstHeight: f.h,
	})
	return nil
}

// Recording is a frame backed by recorded drawing commands. The commands are
// rasterized once on first draw.
type Recording struct {
	id  string
	rec *recording.Recording
	img *Image
}

func NewRecording(id string, rec *recording.Recording) *Recording {
	return &Recording{id: id, rec: rec}
}

// NewSolid records a frame filled with c.
func NewSolid(id string, width, height int, c gg.RGBA) *Recording {
	rec := recording.NewRecorder(width, height)
	rec.ClearWithColor(c)
	return NewRecording(id, rec.FinishRecording())
}

func (f *Recording) ID() string {
	return f.id
}

func (f *Recording) Size() (float64, float64) {
	return float64(f.rec.Width()), float64(f.rec.Height())
}

func (f *Recording) Draw(dc *gg.Context) error {
	if f.img == nil {
		if f.rec.Width() <= 0 || f.rec.Height() <= 0 {
			return nil
		}

		backend := raster.NewBackend()
		if err := f.rec.Playback(backend); err != nil {
			return fmt.Errorf("failed to play back frame %q: %w", f.id, err)
		}
		f.img = NewImage(f.id, backend.Image())
	}
	return f.img.Draw(dc)
}
