package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
	"github.com/gogpu/gg"
)

var defaultConfig = Config{
	Window: Window{
		Title:    "x-canvasview",
		Width:    512,
		Height:   512,
		Backdrop: "#000000",
		Fit:      "contain-y",
		Cursor:   "default",
	},
	Timing: Timing{
		HeartbeatMS:  500,
		CursorIdleMS: 1000,
	},
	Host: Host{
		Command: []string{},
	},
}

func Default() Config {
	cfg := defaultConfig
	cfg.Host.Command = append([]string{}, defaultConfig.Host.Command...)
	return cfg
}

type Config struct {
	Window  Window  `json:"window" yaml:"window" toml:"window"`
	Timing  Timing  `json:"timing" yaml:"timing" toml:"timing"`
	Host    Host    `json:"host" yaml:"host" toml:"host"`
	Inspect Inspect `json:"inspect" yaml:"inspect" toml:"inspect"`
}

type Window struct {
	Title       string  `json:"title" yaml:"title" toml:"title"`
	Width       uint32  `json:"width" yaml:"width" toml:"width"`
	Height      uint32  `json:"height" yaml:"height" toml:"height"`
	Backdrop    string  `json:"backdrop" yaml:"backdrop" toml:"backdrop"`
	Fit         string  `json:"fit" yaml:"fit" toml:"fit"`
	Cursor      string  `json:"cursor" yaml:"cursor" toml:"cursor"`
	ScaleFactor float64 `json:"scale_factor" yaml:"scale_factor" toml:"scale_factor"`
}

type Timing struct {
	HeartbeatMS  int `json:"heartbeat_ms" yaml:"heartbeat_ms" toml:"heartbeat_ms"`
	CursorIdleMS int `json:"cursor_idle_ms" yaml:"cursor_idle_ms" toml:"cursor_idle_ms"`
	// TimeoutMS bounds a single host round trip. Zero waits forever.
	TimeoutMS int `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms"`
}

type Host struct {
	Command []string `json:"command" yaml:"command" toml:"command"`
	Dir     string   `json:"dir" yaml:"dir" toml:"dir"`
}

type Inspect struct {
	Address string `json:"address" yaml:"address" toml:"address"`
}

func (t Timing) Heartbeat() time.Duration {
	return time.Duration(t.HeartbeatMS) * time.Millisecond
}

func (t Timing) CursorIdle() time.Duration {
	return time.Duration(t.CursorIdleMS) * time.Millisecond
}

func (t Timing) Timeout() time.Duration {
	return time.Duration(t.TimeoutMS) * time.Millisecond
}

// BackdropColor parses the backdrop as hex.
func (w Window) BackdropColor() gg.RGBA {
	return gg.Hex(w.Backdrop)
}

// ParsedFit resolves the fit name. Nil means raw.
func (w Window) ParsedFit() *view.Fit {
	fit, _ := view.ParseFit(w.Fit)
	return fit
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if _, ok := view.ParseFit(c.Window.Fit); !ok {
		errs = append(errs, fmt.Errorf("window.fit: unknown fit %q", c.Window.Fit))
	}
	if _, ok := window.ParseCursor(c.Window.Cursor); !ok {
		errs = append(errs, fmt.Errorf("window.cursor: unknown cursor %q", c.Window.Cursor))
	}
	if c.Window.ScaleFactor < 0 {
		errs = append(errs, errors.New("window.scale_factor: must not be negative"))
	}
	if c.Timing.HeartbeatMS < 0 || c.Timing.CursorIdleMS < 0 || c.Timing.TimeoutMS < 0 {
		errs = append(errs, errors.New("timing: durations must not be negative"))
	}
	return errors.Join(errs...)
}
