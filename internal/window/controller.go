package window

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/bus"
	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/sieve"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/google/uuid"
)

// DefaultCursorIdle is how long the pointer may rest in fullscreen before it
// is hidden.
const DefaultCursorIdle = time.Second

type Config struct {
	Title      string
	Width      uint32
	Height     uint32
	Cursor     string
	Fit        *view.Fit
	CursorIdle time.Duration
	Clock      func() time.Time
}

func New(cfg Config, host Host, platform Platform, queue *view.Queue, pacer Pacer) *Controller {
	if cfg.CursorIdle <= 0 {
		cfg.CursorIdle = DefaultCursorIdle
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	cursor, ok := ParseCursor(cfg.Cursor)
	if !ok {
		def := Cursors[0]
		cursor = &def
	}

	id := uuid.NewString()
	c := &Controller{
		id:       id,
		log:      slog.With("package", "window", "id", id),
		host:     host,
		platform: platform,
		queue:    queue,
		pacer:    pacer,
		sieve:    sieve.New(),
		idle:     cfg.CursorIdle,
		clock:    cfg.Clock,
		state: State{
			Title:  cfg.Title,
			Size:   sieve.Size{Width: cfg.Width, Height: cfg.Height},
			Cursor: cursor,
			Fit:    cfg.Fit,
		},
	}
	c.lastMotion = c.clock()
	return c
}

// Controller is the only writer of OS level window properties. It must be
// driven from a single goroutine.
type Controller struct {
	id       string
	log      *slog.Logger
	host     Host
	platform Platform
	queue    *view.Queue
	pacer    Pacer
	sieve    *sieve.Sieve
	idle     time.Duration
	clock    func() time.Time

	state     State
	phase     Phase
	err       error
	stop      error
	frameID   string
	frameSize view.Size
	revision  uint64

	lastMotion time.Time
	autoHidden bool
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// Err is the reason the window is closing.
func (c *Controller) Err() error {
	return c.err
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) Sieve() *sieve.Sieve {
	return c.sieve
}

// Animating reports whether the host asked for periodic frames.
func (c *Controller) Animating() bool {
	return c.phase == Running && c.state.FrameRate > 0
}

// Advance acts on stop and close requests made during the previous tick.
// It returns false once the window is closing.
func (c *Controller) Advance() bool {
	if c.phase != Closing && c.stop != nil {
		c.close(c.stop)
	}
	return c.phase != Closing
}

// Stop asks for the window to close at the top of the next tick.
func (c *Controller) Stop(err error) {
	if c.stop == nil {
		c.stop = err
	}
}

// Stopping reports whether a stop is waiting for the next tick.
func (c *Controller) Stopping() bool {
	return c.stop != nil && c.phase != Closing
}

// Close moves the window to Closing with err as the cause.
func (c *Controller) Close(err error) {
	c.close(err)
}

func (c *Controller) close(err error) {
	if c.phase == Closing {
		return
	}
	c.log.Debug("Closing window", "error", err)
	c.phase = Closing
	c.err = err
	c.publish()
}

// Start performs the initial round trip with an empty batch. Input captured
// before it stays queued for Communicate. The window stays hidden unless the
// host asks for it to be shown.
func (c *Controller) Start(ctx context.Context) error {
	if c.phase != Starting {
		return nil
	}

	reply, err := c.host.Dispatch(ctx, sieve.Batch{})
	if err != nil {
		return c.hostFailed(err)
	}

	c.phase = Running
	c.apply(reply)
	return nil
}

// Communicate sends pending input to the host and applies its reply.
func (c *Controller) Communicate(ctx context.Context) error {
	if c.phase != Running || c.sieve.IsEmpty() {
		return nil
	}

	reply, err := c.host.Dispatch(ctx, c.sieve.Digest())
	if err != nil {
		return c.hostFailed(err)
	}

	c.apply(reply)
	return nil
}

// Animate asks the host for the next frame of an animation.
func (c *Controller) Animate(ctx context.Context) error {
	if !c.Animating() {
		return nil
	}

	reply, err := c.host.Animate(ctx)
	if err != nil {
		return c.hostFailed(err)
	}

	c.apply(reply)
	return nil
}

func (c *Controller) hostFailed(err error) error {
	err = fmt.Errorf("%w: %w", ErrHost, err)
	c.close(err)
	return err
}

func (c *Controller) apply(r Reply) {
	refit := false

	if f, ok := r.Frame(); ok && f.ID() != c.frameID {
		w, h := f.Size()
		c.frameID = f.ID()
		c.frameSize = view.Size{Width: w, Height: h}
		c.queue.Send(view.AdoptFrame{Frame: f})
		refit = true
	}

	if title, ok := r.String(SlotTitle); ok && title != c.state.Title {
		c.state.Title = title
		c.check("title", c.platform.SetTitle(title))
	}

	if keepRunning, ok := r.Bool(SlotKeepRunning); ok && !keepRunning {
		c.Stop(ErrStopRequested)
	}

	if fullscreen, ok := r.Bool(SlotFullscreen); ok && fullscreen != c.state.Fullscreen {
		c.state.Fullscreen = fullscreen
		c.check("fullscreen", c.platform.SetFullscreen(fullscreen))
		c.queue.Send(view.SetFullscreen{Fullscreen: fullscreen})
		c.sieve.ResetRepeats()
	}

	if fps, ok := r.Uint(SlotFrameRate); ok && fps != c.state.FrameRate {
		c.state.FrameRate = fps
		c.pacer.SetRate(fps)
	}

	width, wok := r.Uint(SlotWidth)
	height, hok := r.Uint(SlotHeight)
	if size := (sieve.Size{Width: uint32(width), Height: uint32(height)}); wok && hok && size != c.state.Size {
		c.state.Size = size
		c.check("size", c.platform.SetSize(c.device(size.Width), c.device(size.Height)))
		refit = true
	}

	x, xok := r.Int32(SlotX)
	y, yok := r.Int32(SlotY)
	if pos := (sieve.Point{X: x, Y: y}); xok && yok && pos != c.state.Position {
		c.state.Position = pos
		c.check("position", c.platform.SetPosition(c.devicePos(x), c.devicePos(y)))
	}

	if name, ok := r.String(SlotCursor); ok {
		if cursor, ok := ParseCursor(name); ok && !sameCursor(cursor, c.state.Cursor) {
			c.state.Cursor = cursor
			c.autoHidden = false
			c.syncCursor()
		}
	}

	if name, ok := r.String(SlotFit); ok {
		if fit, ok := view.ParseFit(name); ok && !fit.Equal(c.state.Fit) {
			c.state.Fit = fit
			c.queue.Send(view.SetFit{Fit: fit})
			refit = true
		}
	}

	if visible, ok := r.Bool(SlotVisible); ok && visible != c.state.Visible {
		c.state.Visible = visible
		c.check("visible", c.platform.SetVisible(visible))
		c.queue.Send(view.SetVisible{Visible: visible})
	}

	if refit {
		c.refit()
	}
	c.publish()
}

// HandleEvent captures OS input and mirrors OS driven changes into the
// canonical state until the host reports otherwise.
func (c *Controller) HandleEvent(ev input.Event) {
	scale := c.platform.ScaleFactor()

	switch ev := ev.(type) {
	case input.CloseRequested, input.Destroyed:
		c.Stop(ErrCloseRequested)
		return
	case input.Resized:
		c.sieve.Capture(ev, scale)
		c.state.Size = c.sieve.Size()
		c.queue.Send(view.Resize{Width: int(ev.Width), Height: int(ev.Height)})

		// the window manager may have changed fullscreen on its own
		if fullscreen := c.platform.Fullscreen(); fullscreen != c.state.Fullscreen {
			c.log.Debug("Detected fullscreen change", "fullscreen", fullscreen)
			c.state.Fullscreen = fullscreen
			c.sieve.WentFullscreen(fullscreen)
			c.queue.Send(view.SetFullscreen{Fullscreen: fullscreen})
		}
		c.refit()
	case input.Moved:
		c.sieve.Capture(ev, scale)
		c.state.Position = c.sieve.Position()
	case input.PointerMoved:
		c.sieve.Capture(ev, scale)
		c.lastMotion = c.clock()
		if c.autoHidden {
			c.autoHidden = false
			c.syncCursor()
		}
	default:
		c.sieve.Capture(ev, scale)
	}
}

// Heartbeat hides the pointer after it rested in a fullscreen window.
func (c *Controller) Heartbeat() {
	if c.autoHidden || !c.state.Fullscreen || c.state.Cursor == nil {
		return
	}
	if c.clock().Sub(c.lastMotion) < c.idle {
		return
	}
	c.log.Debug("Hiding idle cursor")
	c.autoHidden = true
	c.check("cursor", c.platform.HideCursor())
}

func (c *Controller) syncCursor() {
	if c.state.Cursor == nil || c.autoHidden {
		c.check("cursor", c.platform.HideCursor())
		return
	}
	c.check("cursor", c.platform.ShowCursor(*c.state.Cursor))
}

// refit points the sieve at frame coordinates for the current geometry.
func (c *Controller) refit() {
	if c.frameID == "" {
		return
	}
	window := view.Size{
		Width:  float64(c.device(c.state.Size.Width)),
		Height: float64(c.device(c.state.Size.Height)),
	}
	m := view.FittingMatrix(c.state.Fit, window, c.frameSize)
	c.sieve.UseTransform(m.Invert())
}

func (c *Controller) device(v uint32) uint32 {
	return uint32(math.Round(float64(v) * c.scale()))
}

func (c *Controller) devicePos(v int32) int32 {
	return int32(math.Round(float64(v) * c.scale()))
}

func (c *Controller) scale() float64 {
	if s := c.platform.ScaleFactor(); s > 0 {
		return s
	}
	return 1
}

func (c *Controller) check(property string, err error) {
	if err != nil {
		c.log.Error("Failed to update window", "property", property, "error", err)
	}
}

// Snapshot copies the canonical state.
func (c *Controller) Snapshot() Snapshot {
	s := c.state
	snap := Snapshot{
		ID:         c.id,
		Phase:      c.phase.String(),
		Title:      s.Title,
		X:          s.Position.X,
		Y:          s.Position.Y,
		Width:      s.Size.Width,
		Height:     s.Size.Height,
		Cursor:     CursorNone,
		Fit:        s.Fit.String(),
		Fullscreen: s.Fullscreen,
		Visible:    s.Visible,
		FrameRate:  s.FrameRate,
		FrameID:    c.frameID,
		Revision:   c.revision,
		UpdatedAt:  c.clock(),
	}
	if s.Cursor != nil {
		snap.Cursor = *s.Cursor
	}
	return snap
}

func (c *Controller) publish() {
	c.revision++
	bus.Publish(c.Snapshot())
}

func sameCursor(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
