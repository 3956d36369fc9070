package hostproc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ItsNotGoodName/x-canvasview/internal/frame"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
	"github.com/gogpu/gg"
)

var ErrMalformedReply = errors.New("malformed reply")

// Request types.
const (
	TypeDispatch = "dispatch"
	TypeAnimate  = "animate"
)

// Request is one line written to the host.
type Request struct {
	Type string `json:"type"`
	Args []any  `json:"args,omitempty"`
}

// FrameMessage is the wire form of reply slot 0. Width and Height are the
// logical size and default to the pixel size of PNG. Fill, a hex color,
// replaces PNG with a solid frame of the declared size. Both may be left out
// when ID names the frame sent last.
type FrameMessage struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	PNG    string  `json:"png,omitempty"`
	Fill   string  `json:"fill,omitempty"`
}

// decoder turns reply lines into replies, reusing the last frame while the
// host keeps sending the same id.
type decoder struct {
	log  *slog.Logger
	last frame.Frame
}

func (d *decoder) decode(line []byte) (window.Reply, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var slots []json.RawMessage
	if err := dec.Decode(&slots); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	reply := make(window.Reply, len(slots))
	for i, raw := range slots {
		if i == window.SlotFrame {
			f, err := d.frame(raw)
			if err != nil {
				// a bad frame only drops the slot
				d.log.Warn("Ignoring frame", "error", err)
				continue
			}
			if f != nil {
				reply[i] = f
			}
			continue
		}

		var v any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err == nil {
			reply[i] = v
		}
	}
	return reply, nil
}

func (d *decoder) frame(raw json.RawMessage) (frame.Frame, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var msg FrameMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, errors.New("frame without id")
	}
	if d.last != nil && d.last.ID() == msg.ID {
		return d.last, nil
	}

	var f frame.Frame
	switch {
	case msg.PNG != "":
		data, err := base64.StdEncoding.DecodeString(msg.PNG)
		if err != nil {
			return nil, err
		}
		img, err := frame.DecodePNG(msg.ID, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		f = img.WithSize(msg.Width, msg.Height)
	case msg.Fill != "":
		if msg.Width <= 0 || msg.Height <= 0 {
			return nil, fmt.Errorf("solid frame %q without size", msg.ID)
		}
		f = frame.NewSolid(msg.ID, int(math.Ceil(msg.Width)), int(math.Ceil(msg.Height)), gg.Hex(msg.Fill))
	default:
		return nil, fmt.Errorf("frame %q without data", msg.ID)
	}
	d.last = f
	return f, nil
}
