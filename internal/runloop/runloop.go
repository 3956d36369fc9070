// Package runloop drives one window on a single locked OS thread.
package runloop

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/cadence"
	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
)

// MaxDispatch bounds how many ready messages one tick consumes.
const MaxDispatch = 4096

type Pacer interface {
	NextAction(now time.Time) (cadence.Directive, bool)
}

func New(ctrl *window.Controller, v *view.View, pacer Pacer, events <-chan input.Event, proxy *Proxy) *Driver {
	return &Driver{
		ctrl:   ctrl,
		view:   v,
		pacer:  pacer,
		events: events,
		proxy:  proxy,
		clock:  time.Now,
		log:    slog.With("package", "runloop", "id", ctrl.ID()),
	}
}

type Driver struct {
	ctrl   *window.Controller
	view   *view.View
	pacer  Pacer
	events <-chan input.Event
	proxy  *Proxy
	clock  func() time.Time
	log    *slog.Logger
}

// Run blocks until the window closes. A close requested by the user or the
// host is not an error.
func (d *Driver) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for d.Tick(ctx) {
	}

	err := d.ctrl.Err()
	if errors.Is(err, window.ErrStopRequested) || errors.Is(err, window.ErrCloseRequested) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Tick runs one iteration of the loop and reports whether another should
// follow.
func (d *Driver) Tick(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		d.ctrl.Close(err)
	}
	if !d.ctrl.Advance() {
		return false
	}

	// input that arrived before the first round trip goes out with the
	// first Communicate
	if d.ctrl.Phase() == window.Starting {
		if err := d.ctrl.Start(ctx); err != nil {
			d.log.Error("Failed initial round trip", "error", err)
			return false
		}
	}

	d.dispatch()
	if err := d.ctrl.Communicate(ctx); err != nil {
		d.log.Error("Failed round trip", "error", err)
		return false
	}

	if err := d.view.Drain(); err != nil {
		d.ctrl.Close(err)
		return false
	}

	directive, due := d.pacer.NextAction(d.clock())
	if due || (!d.ctrl.Animating() && d.view.NeedsRedraw()) {
		d.redraw()
	}
	if due {
		if err := d.ctrl.Animate(ctx); err != nil {
			d.log.Error("Failed animation frame", "error", err)
			return false
		}
	}

	if d.ctrl.Stopping() || d.ctrl.Phase() == window.Closing {
		return true
	}
	d.wait(ctx, directive)
	return true
}

func (d *Driver) redraw() {
	err := d.view.Redraw()
	if err == nil {
		return
	}
	if !errors.Is(err, view.ErrSurfaceLost) {
		d.log.Error("Failed to draw frame", "error", err)
		return
	}

	d.log.Warn("Rebuilding lost surface", "error", err)
	if err := d.view.Rebuild(); err != nil {
		d.ctrl.Close(err)
		return
	}
	if err := d.view.Redraw(); err != nil {
		d.ctrl.Close(err)
	}
}

// wait honors the pacer directive. Any OS event or proxy message ends it.
func (d *Driver) wait(ctx context.Context, directive cadence.Directive) {
	var timeout <-chan time.Time
	switch directive.Kind {
	case cadence.Poll:
		return
	case cadence.SleepUntil:
		delay := directive.Deadline.Sub(d.clock())
		if delay <= 0 {
			return
		}
		t := time.NewTimer(delay)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-ctx.Done():
	case <-timeout:
	case ev, ok := <-d.events:
		d.handleEvent(ev, ok)
	case msg := <-d.proxy.C():
		d.handleMessage(msg)
	}
}

// dispatch consumes every message that is ready without blocking.
func (d *Driver) dispatch() {
	for i := 0; i < MaxDispatch; i++ {
		select {
		case ev, ok := <-d.events:
			d.handleEvent(ev, ok)
		case msg := <-d.proxy.C():
			d.handleMessage(msg)
		default:
			return
		}
	}
}

func (d *Driver) handleEvent(ev input.Event, ok bool) {
	if !ok {
		d.events = nil
		d.ctrl.HandleEvent(input.Destroyed{})
		return
	}
	d.ctrl.HandleEvent(ev)
}

func (d *Driver) handleMessage(msg Message) {
	switch msg := msg.(type) {
	case Wake:
		d.ctrl.Heartbeat()
	case Stop:
		err := msg.Err
		if err == nil {
			err = window.ErrStopRequested
		}
		d.ctrl.Stop(err)
	}
}
