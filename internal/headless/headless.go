// Package headless is an in-memory window platform. It behaves like a
// cooperative window manager that applies every request immediately.
package headless

import (
	"errors"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/gogpu/gg"
)

// EventBuffer is the capacity of the event channel.
const EventBuffer = 256

var ErrNoFrame = errors.New("nothing presented yet")

type Config struct {
	ScaleFactor  float64
	ScreenWidth  uint32
	ScreenHeight uint32
}

// Screen size used when Config leaves it out.
const (
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

func New(cfg Config) *Platform {
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = 1
	}
	if cfg.ScreenWidth == 0 || cfg.ScreenHeight == 0 {
		cfg.ScreenWidth, cfg.ScreenHeight = DefaultScreenWidth, DefaultScreenHeight
	}
	return &Platform{
		cfg:           cfg,
		events:        make(chan input.Event, EventBuffer),
		cursorVisible: true,
		cursor:        "default",
	}
}

// Platform may be driven from tests on another goroutine.
type Platform struct {
	cfg    Config
	events chan input.Event

	mu            sync.Mutex
	closed        bool
	title         string
	x, y          int32
	width         uint32
	height        uint32
	restore       [2]uint32
	cursor        string
	cursorVisible bool
	visible       bool
	fullscreen    bool
	surfaces      int
	presents      int
	last          *image.RGBA
	failPresent   error
}

func (p *Platform) Events() <-chan input.Event {
	return p.events
}

// Post delivers an event as if the OS produced it.
func (p *Platform) Post(ev input.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.post(ev)
}

func (p *Platform) post(ev input.Event) bool {
	if p.closed {
		return false
	}
	select {
	case p.events <- ev:
		return true
	default:
		slog.Warn("Dropped event", "package", "headless")
		return false
	}
}

func (p *Platform) ScaleFactor() float64 {
	return p.cfg.ScaleFactor
}

func (p *Platform) SetTitle(title string) error {
	p.mu.Lock()
	p.title = title
	p.mu.Unlock()
	return nil
}

func (p *Platform) SetPosition(x, y int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.x, p.y = x, y
	p.post(input.Moved{X: x, Y: y})
	return nil
}

func (p *Platform) SetSize(width, height uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fullscreen {
		p.restore = [2]uint32{width, height}
		return nil
	}
	p.resize(width, height)
	return nil
}

func (p *Platform) resize(width, height uint32) {
	p.width, p.height = width, height
	p.post(input.Resized{Width: width, Height: height})
}

func (p *Platform) ShowCursor(name string) error {
	p.mu.Lock()
	p.cursor, p.cursorVisible = name, true
	p.mu.Unlock()
	return nil
}

func (p *Platform) HideCursor() error {
	p.mu.Lock()
	p.cursorVisible = false
	p.mu.Unlock()
	return nil
}

func (p *Platform) SetVisible(visible bool) error {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
	return nil
}

func (p *Platform) SetFullscreen(fullscreen bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setFullscreen(fullscreen)
	return nil
}

// ToggleFullscreen flips fullscreen the way a window manager control would,
// without the host asking for it.
func (p *Platform) ToggleFullscreen() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setFullscreen(!p.fullscreen)
}

func (p *Platform) setFullscreen(fullscreen bool) {
	if fullscreen == p.fullscreen {
		return
	}
	p.fullscreen = fullscreen
	if fullscreen {
		p.restore = [2]uint32{p.width, p.height}
		p.resize(p.cfg.ScreenWidth, p.cfg.ScreenHeight)
	} else {
		p.resize(p.restore[0], p.restore[1])
	}
}

func (p *Platform) Fullscreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fullscreen
}

// Close ends the event stream.
func (p *Platform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	return nil
}

// FailPresent makes every following present fail with err until cleared
// with nil.
func (p *Platform) FailPresent(err error) {
	p.mu.Lock()
	p.failPresent = err
	p.mu.Unlock()
}

func (p *Platform) NewSurface(width, height int) (view.Surface, error) {
	p.mu.Lock()
	p.surfaces++
	p.mu.Unlock()
	return &Surface{platform: p, width: width, height: height}, nil
}

// Surface keeps a copy of the last presented image on its platform.
type Surface struct {
	platform *Platform
	width    int
	height   int
	closed   bool
}

func (s *Surface) Present(img image.Image) error {
	p := s.platform
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.closed {
		return errors.New("surface closed")
	}
	if p.failPresent != nil {
		return p.failPresent
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	p.last = rgba
	p.presents++
	return nil
}

func (s *Surface) Close() error {
	s.closed = true
	return nil
}

// Window is a copy of the platform's window properties.
type Window struct {
	Title         string
	X, Y          int32
	Width, Height uint32
	Cursor        string
	CursorVisible bool
	Visible       bool
	Fullscreen    bool
	Surfaces      int
	Presents      int
}

func (p *Platform) Window() Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Window{
		Title:         p.title,
		X:             p.x,
		Y:             p.y,
		Width:         p.width,
		Height:        p.height,
		Cursor:        p.cursor,
		CursorVisible: p.cursorVisible,
		Visible:       p.visible,
		Fullscreen:    p.fullscreen,
		Surfaces:      p.surfaces,
		Presents:      p.presents,
	}
}

// Last returns the last presented image.
func (p *Platform) Last() (*image.RGBA, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.last != nil
}

func (p *Platform) SavePNG(path string) error {
	img, ok := p.Last()
	if !ok {
		return ErrNoFrame
	}
	return gg.FromImage(img).SavePNG(path)
}
