package runloop

import (
	"context"
	"time"
)

// ProxySize bounds the number of undelivered messages.
const ProxySize = 64

type Message interface {
	isMessage()
}

type (
	// Wake is posted by the heartbeat.
	Wake struct{}
	// Stop asks the loop to close the window.
	Stop struct {
		Err error
	}
)

func (Wake) isMessage() {}
func (Stop) isMessage() {}

func NewProxy() *Proxy {
	return &Proxy{c: make(chan Message, ProxySize)}
}

// Proxy posts messages into the run loop from any goroutine.
type Proxy struct {
	c chan Message
}

// Send never blocks. It reports false when the loop is too far behind to
// take the message.
func (p *Proxy) Send(msg Message) bool {
	select {
	case p.c <- msg:
		return true
	default:
		return false
	}
}

func (p *Proxy) C() <-chan Message {
	return p.c
}

// DefaultHeartbeat is the heartbeat interval.
const DefaultHeartbeat = 500 * time.Millisecond

func NewHeartbeat(proxy *Proxy, interval time.Duration) Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	return Heartbeat{proxy: proxy, interval: interval}
}

// Heartbeat wakes the run loop at a fixed interval. It holds no window state.
type Heartbeat struct {
	proxy    *Proxy
	interval time.Duration
}

func (Heartbeat) String() string {
	return "runloop.Heartbeat"
}

func (h Heartbeat) Serve(ctx context.Context) error {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			// a full proxy already guarantees a wakeup
			h.proxy.Send(Wake{})
		}
	}
}
