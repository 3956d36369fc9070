// Package cadence paces periodic redraws for an animating window.
package cadence

import (
	"fmt"
	"time"
)

const minWakeupLead = time.Millisecond

type Kind int

const (
	// Block until an external event arrives.
	Block Kind = iota
	// SleepUntil the directive's deadline unless an event arrives first.
	SleepUntil
	// Poll for events and come straight back.
	Poll
)

func (k Kind) String() string {
	switch k {
	case Block:
		return "block"
	case SleepUntil:
		return "sleep-until"
	case Poll:
		return "poll"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Directive tells the run loop how to wait for the next tick.
type Directive struct {
	Kind     Kind
	Deadline time.Time
}

func NewCadence(now time.Time) *Cadence {
	return &Cadence{last: now}
}

// Cadence is the frame pacer state. It is not safe for concurrent use.
type Cadence struct {
	rate   uint
	last   time.Time
	render time.Duration
	wakeup time.Duration
}

// SetRate arms the pacer for fps frames per second. Zero disables animation.
func (c *Cadence) SetRate(fps uint) bool {
	c.rate = fps
	if fps == 0 {
		c.render, c.wakeup = 0, 0
		return false
	}

	c.render = time.Second / time.Duration(fps)
	lead := max(minWakeupLead, c.render/10)
	c.wakeup = c.render - lead
	if c.wakeup <= 0 {
		// rates above 1000fps leave no room for a lead, so wake up on every poll
		c.wakeup = 0
	}
	return true
}

// NextAction decides how the loop should wait and whether a redraw is due.
// last_render is advanced by whole intervals so that an oversleeping loop
// does not drift further behind.
func (c *Cadence) NextAction(now time.Time) (Directive, bool) {
	if c.rate == 0 {
		return Directive{Kind: Block}, false
	}

	redraw := false
	if elapsed := now.Sub(c.last); elapsed >= c.render {
		c.last = c.last.Add(c.render * (elapsed / c.render))
		redraw = true
	}

	if now.Sub(c.last) < c.wakeup {
		return Directive{Kind: SleepUntil, Deadline: c.last.Add(c.wakeup)}, redraw
	}
	return Directive{Kind: Poll}, redraw
}

func (c *Cadence) Active() bool {
	return c.rate > 0
}

func (c *Cadence) Rate() uint {
	return c.rate
}

func (c *Cadence) RenderInterval() time.Duration {
	return c.render
}

func (c *Cadence) WakeupInterval() time.Duration {
	return c.wakeup
}

// LastRender is the start of the current frame interval.
func (c *Cadence) LastRender() time.Time {
	return c.last
}
