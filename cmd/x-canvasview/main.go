package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/build"
	"github.com/ItsNotGoodName/x-canvasview/internal/bus"
	"github.com/ItsNotGoodName/x-canvasview/internal/cadence"
	"github.com/ItsNotGoodName/x-canvasview/internal/config"
	"github.com/ItsNotGoodName/x-canvasview/internal/core"
	"github.com/ItsNotGoodName/x-canvasview/internal/headless"
	"github.com/ItsNotGoodName/x-canvasview/internal/hostproc"
	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/inspect"
	"github.com/ItsNotGoodName/x-canvasview/internal/runloop"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
	"github.com/ItsNotGoodName/x-canvasview/internal/xwm"
	"github.com/ItsNotGoodName/x-canvasview/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/gogpu/gg"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug    bool   `doc:"enable debug"`
	Config   string `doc:"config file" default:".x-canvasview.yaml"`
	Host     string `doc:"host command, overrides the config file"`
	Inspect  string `doc:"inspector address, overrides the config file"`
	Headless bool   `doc:"run without a display"`
	Snapshot string `doc:"save the last headless frame as PNG on exit"`
}

// Platform is what the run loop needs from a display backend.
type Platform interface {
	window.Platform
	Events() <-chan input.Event
	Close() error
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}
		gg.SetLogger(slog.Default())

		OnServe(hooks, func(ctx context.Context) error {
			bus.SetContext(ctx)
			return serve(ctx, options)
		})
	})

	cli.Root().Version = build.Current.Version

	cli.Run()
}

func serve(ctx context.Context, options *Options) error {
	configFilePath, err := filepath.Abs(options.Config)
	if err != nil {
		return err
	}

	driver, err := config.NewDriver(configFilePath)
	if err != nil {
		return err
	}

	store, err := config.NewStore(driver)
	if err != nil {
		return err
	}

	cfg, err := store.GetConfig()
	if err != nil {
		return err
	}
	if options.Host != "" {
		cfg.Host.Command = strings.Fields(options.Host)
	}
	if options.Inspect != "" {
		cfg.Inspect.Address = options.Inspect
	}
	if len(cfg.Host.Command) == 0 {
		return errors.New("no host command configured")
	}

	var closers core.Closers
	defer func() {
		if err := closers.Close(); err != nil {
			slog.Error("Failed to close", "error", err)
		}
	}()

	hub := bus.NewHub[window.Snapshot]().Register()

	var platform Platform
	if options.Headless {
		p := headless.New(headless.Config{ScaleFactor: cfg.Window.ScaleFactor})
		if options.Snapshot != "" {
			closers.Add(func() error {
				if err := p.SavePNG(options.Snapshot); err != nil && !errors.Is(err, headless.ErrNoFrame) {
					return err
				}
				return nil
			})
		}
		platform = p
	} else {
		p, err := xwm.Open(xwm.Config{
			Title:       cfg.Window.Title,
			Width:       cfg.Window.Width,
			Height:      cfg.Window.Height,
			ScaleFactor: cfg.Window.ScaleFactor,
		})
		if err != nil {
			return err
		}
		platform = p
	}
	closers.Add(platform.Close)

	scale := platform.ScaleFactor()
	v, err := view.New(platform,
		int(float64(cfg.Window.Width)*scale+0.5),
		int(float64(cfg.Window.Height)*scale+0.5),
		cfg.Window.BackdropColor(),
		cfg.Window.ParsedFit())
	if err != nil {
		return err
	}
	closers.Add(v.Close)

	host, err := hostproc.Start(hostproc.Config{
		Command: cfg.Host.Command,
		Dir:     cfg.Host.Dir,
		Timeout: cfg.Timing.Timeout(),
	})
	if err != nil {
		return err
	}
	closers.Add(host.Close)

	pacer := cadence.NewCadence(time.Now())
	ctrl := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Cursor:     cfg.Window.Cursor,
		Fit:        cfg.Window.ParsedFit(),
		CursorIdle: cfg.Timing.CursorIdle(),
	}, host, platform, v.Queue(), pacer)

	proxy := runloop.NewProxy()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	super := sutureext.NewSimple("root")
	sutureext.Add(super, runloop.NewHeartbeat(proxy, cfg.Timing.Heartbeat()))
	if cfg.Inspect.Address != "" {
		sutureext.Add(super, inspect.New(cfg.Inspect.Address, hub))
	}
	wait := sutureext.Background(ctx, super)

	slog.Info("Window starting", "id", ctrl.ID(), "host", cfg.Host.Command, "headless", options.Headless)

	runErr := runloop.New(ctrl, v, pacer, platform.Events(), proxy).Run(ctx)

	cancel()
	if err := wait(); err != nil {
		slog.Error("Supervisor stopped", "error", err)
	}

	return runErr
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
