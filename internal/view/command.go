package view

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-canvasview/internal/frame"
)

// QueueSize bounds the number of commands that may be pending between drains.
const QueueSize = 256

type Command interface {
	isCommand()
}

type (
	AdoptFrame struct {
		Frame frame.Frame
	}
	SetFit struct {
		Fit *Fit
	}
	SetFullscreen struct {
		Fullscreen bool
	}
	SetVisible struct {
		Visible bool
	}
	// Resize carries the new client size in device pixels.
	Resize struct {
		Width, Height int
	}
)

func (AdoptFrame) isCommand()    {}
func (SetFit) isCommand()        {}
func (SetFullscreen) isCommand() {}
func (SetVisible) isCommand()    {}
func (Resize) isCommand()        {}

func NewQueue() *Queue {
	return &Queue{
		c: make(chan Command, QueueSize),
	}
}

// Queue is a multi-producer, single-consumer command queue. Send never blocks.
type Queue struct {
	c chan Command
}

func (q *Queue) Send(cmds ...Command) {
	for _, cmd := range cmds {
		select {
		case q.c <- cmd:
		default:
			slog.Warn("Dropped view command", "package", "view", "command", fmt.Sprintf("%T", cmd))
		}
	}
}

// Drain returns every pending command in the order it was sent.
func (q *Queue) Drain() []Command {
	var cmds []Command
	for {
		select {
		case cmd := <-q.c:
			cmds = append(cmds, cmd)
		default:
			return cmds
		}
	}
}
