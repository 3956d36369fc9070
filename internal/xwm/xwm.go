// Package xwm is the X11 window platform.
package xwm

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/ItsNotGoodName/x-canvasview/internal/xcursor"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// EventBuffer is the capacity of the event channel.
const EventBuffer = 256

var ErrUnsupportedVisual = errors.New("unsupported visual")

type Config struct {
	Title       string
	Width       uint32
	Height      uint32
	ScaleFactor float64
}

// Platform owns one X connection and one top level window.
type Platform struct {
	conn       *xgb.Conn
	screen     *xproto.ScreenInfo
	wid        xproto.Window
	gc         xproto.Gcontext
	atoms      atoms
	cursors    *xcursor.Cache
	scale      float64
	maxRequest int

	events chan input.Event
	done   chan struct{}
	once   sync.Once
	log    *slog.Logger

	mu      sync.Mutex
	mapped  bool
	surface *Surface
}

// Open connects to the display and creates the window unmapped.
func Open(cfg Config) (*Platform, error) {
	if cfg.ScaleFactor <= 0 {
		cfg.ScaleFactor = 1
	}

	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	p, err := open(conn, cfg)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func open(conn *xgb.Conn, cfg Config) (*Platform, error) {
	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if screen.RootDepth != 24 && screen.RootDepth != 32 {
		return nil, fmt.Errorf("%w: depth %d", ErrUnsupportedVisual, screen.RootDepth)
	}

	a, err := internAtoms(conn)
	if err != nil {
		return nil, err
	}

	cursors := xcursor.NewCache(conn, xproto.Drawable(screen.Root))
	cursor, err := cursors.Named("default")
	if err != nil {
		return nil, err
	}

	pl := Place(screen.WidthInPixels, screen.HeightInPixels,
		device(cfg.Width, cfg.ScaleFactor), device(cfg.Height, cfg.ScaleFactor))
	wid, err := CreateWindow(conn, screen, pl, cursor)
	if err != nil {
		return nil, err
	}

	if err := setDeleteProtocol(conn, wid, a); err != nil {
		return nil, err
	}
	if err := setTitle(conn, wid, a, cfg.Title); err != nil {
		return nil, err
	}

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateGCChecked(conn, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		return nil, err
	}

	km, err := loadKeymap(conn)
	if err != nil {
		return nil, err
	}

	p := &Platform{
		conn:       conn,
		screen:     screen,
		wid:        wid,
		gc:         gc,
		atoms:      a,
		cursors:    cursors,
		scale:      cfg.ScaleFactor,
		maxRequest: int(setup.MaximumRequestLength) * 4,
		events:     make(chan input.Event, EventBuffer),
		done:       make(chan struct{}),
		log:        slog.With("package", "xwm", "wid", wid),
	}
	go p.readEvents(&translator{wid: wid, wmDelete: a.wmDelete, keymap: km})
	return p, nil
}

func device(v uint32, scale float64) uint32 {
	return uint32(float64(v)*scale + 0.5)
}

func (p *Platform) Events() <-chan input.Event {
	return p.events
}

func (p *Platform) readEvents(t *translator) {
	defer close(p.events)

	var pending xgb.Event
	for {
		ev := pending
		pending = nil
		if ev == nil {
			var err xgb.Error
			ev, err = p.conn.WaitForEvent()
			if ev == nil && err == nil {
				p.log.Debug("Connection closed")
				return
			}
			if err != nil {
				p.log.Error("Failed to read event", "error", err)
				continue
			}
		}

		switch e := ev.(type) {
		case xproto.KeyReleaseEvent:
			next, _ := p.conn.PollForEvent()
			if press, ok := next.(xproto.KeyPressEvent); ok && isRepeat(e, press) {
				if !p.emit(t.key(input.Pressed, press.Detail, press.State)) {
					return
				}
				continue
			}
			pending = next
		case xproto.ExposeEvent:
			if e.Count == 0 {
				p.repaint()
			}
			continue
		}

		if !p.emit(t.translate(ev)) {
			return
		}
	}
}

func (p *Platform) emit(events []input.Event) bool {
	for _, ev := range events {
		select {
		case <-p.done:
			return false
		case p.events <- ev:
		}
	}
	return true
}

func (p *Platform) repaint() {
	p.mu.Lock()
	s := p.surface
	p.mu.Unlock()
	if s == nil {
		return
	}
	if err := s.repaint(); err != nil {
		p.log.Error("Failed to repaint", "error", err)
	}
}

func (p *Platform) NewSurface(width, height int) (view.Surface, error) {
	if width > 0xffff || height > 0xffff {
		return nil, fmt.Errorf("surface too large: %dx%d", width, height)
	}
	s := &Surface{platform: p, width: width, height: height}
	p.mu.Lock()
	p.surface = s
	p.mu.Unlock()
	return s, nil
}

// ScaleFactor is fixed per display on X11.
func (p *Platform) ScaleFactor() float64 {
	return p.scale
}

func (p *Platform) SetTitle(title string) error {
	return setTitle(p.conn, p.wid, p.atoms, title)
}

func (p *Platform) SetPosition(x, y int32) error {
	return xproto.ConfigureWindowChecked(p.conn, p.wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(x), uint32(y)}).Check()
}

func (p *Platform) SetSize(width, height uint32) error {
	return xproto.ConfigureWindowChecked(p.conn, p.wid,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{max(width, 1), max(height, 1)}).Check()
}

func (p *Platform) ShowCursor(name string) error {
	cursor, err := p.cursors.Named(name)
	if err != nil {
		return err
	}
	return p.setCursor(cursor)
}

func (p *Platform) HideCursor() error {
	cursor, err := p.cursors.Invisible()
	if err != nil {
		return err
	}
	return p.setCursor(cursor)
}

func (p *Platform) setCursor(cursor xproto.Cursor) error {
	return xproto.ChangeWindowAttributesChecked(p.conn, p.wid,
		xproto.CwCursor, []uint32{uint32(cursor)}).Check()
}

func (p *Platform) SetVisible(visible bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if visible == p.mapped {
		return nil
	}
	var err error
	if visible {
		err = xproto.MapWindowChecked(p.conn, p.wid).Check()
	} else {
		err = xproto.UnmapWindowChecked(p.conn, p.wid).Check()
	}
	if err != nil {
		return err
	}
	p.mapped = visible
	return nil
}

func (p *Platform) SetFullscreen(fullscreen bool) error {
	p.mu.Lock()
	mapped := p.mapped
	p.mu.Unlock()
	return requestFullscreen(p.conn, p.screen.Root, p.wid, p.atoms, mapped, fullscreen)
}

func (p *Platform) Fullscreen() bool {
	fullscreen, err := queryFullscreen(p.conn, p.wid, p.atoms)
	if err != nil {
		p.log.Error("Failed to query fullscreen", "error", err)
		return false
	}
	return fullscreen
}

// Close destroys the window and the connection. The event channel closes
// once the reader notices.
func (p *Platform) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		p.cursors.Free()
		xproto.FreeGC(p.conn, p.gc)
		err = xproto.DestroyWindowChecked(p.conn, p.wid).Check()
		p.conn.Close()
	})
	return err
}
