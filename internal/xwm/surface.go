package xwm

import (
	"errors"
	"image"
	"image/draw"
	"sync"

	"github.com/jezek/xgb/xproto"
)

var ErrSurfaceClosed = errors.New("surface closed")

// putImageHeader is the fixed size of a PutImage request.
const putImageHeader = 24

// Surface presents images into the window with core PutImage requests.
type Surface struct {
	platform *Platform
	width    int
	height   int

	mu     sync.Mutex
	closed bool
	buf    []byte
}

func (s *Surface) Present(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSurfaceClosed
	}
	s.buf = toBGRX(s.buf, img, s.width, s.height)
	return s.put()
}

// repaint puts the last presented image again after an expose.
func (s *Surface) repaint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.buf == nil {
		return nil
	}
	return s.put()
}

func (s *Surface) put() error {
	p := s.platform
	stride := s.width * 4
	rows := max(1, (p.maxRequest-putImageHeader)/stride)

	for y := 0; y < s.height; y += rows {
		n := min(rows, s.height-y)
		data := s.buf[y*stride : (y+n)*stride]
		if err := xproto.PutImageChecked(p.conn, xproto.ImageFormatZPixmap,
			xproto.Drawable(p.wid), p.gc,
			uint16(s.width), uint16(n), 0, int16(y), 0, p.screen.RootDepth, data).Check(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Surface) Close() error {
	s.mu.Lock()
	s.closed = true
	s.buf = nil
	s.mu.Unlock()
	return nil
}

// toBGRX converts img into the little endian 32 bpp layout of a 24 bit
// TrueColor visual.
func toBGRX(buf []byte, img image.Image, width, height int) []byte {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	size := width * height * 4
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]
	clear(buf)

	b := rgba.Bounds()
	for y := 0; y < min(height, b.Dy()); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		dst := buf[y*width*4:]
		for x := 0; x < min(width, b.Dx()); x++ {
			i := x * 4
			dst[i+0] = src[i+2]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+0]
			dst[i+3] = 0
		}
	}
	return buf
}
