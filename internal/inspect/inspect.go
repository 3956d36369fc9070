// Package inspect serves published window snapshots over HTTP.
package inspect

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/build"
	"github.com/ItsNotGoodName/x-canvasview/internal/bus"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
	"github.com/ItsNotGoodName/x-canvasview/pkg/chiext"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds a graceful shutdown.
const ShutdownTimeout = 5 * time.Second

type WindowOutput struct {
	Body window.Snapshot
}

type NextInput struct {
	After   uint64 `query:"after" doc:"return the first snapshot with a newer revision"`
	Timeout int    `query:"timeout" default:"30" minimum:"1" maximum:"300" doc:"seconds to wait"`
}

type BuildOutput struct {
	Body build.Build
}

func New(addr string, hub *bus.Hub[window.Snapshot]) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chiext.Logger())
	r.Use(middleware.Recoverer)

	api := humachi.New(r, huma.DefaultConfig("x-canvasview", build.Current.Version))
	s := &Server{addr: addr, hub: hub, handler: r}
	s.register(api)
	return s
}

// Server never touches window state. It only reads snapshots the window
// controller already published.
type Server struct {
	addr    string
	hub     *bus.Hub[window.Snapshot]
	handler http.Handler
}

func (s *Server) String() string {
	return "inspect.Server"
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-window",
		Method:      http.MethodGet,
		Path:        "/api/window",
		Summary:     "Get the latest window snapshot",
	}, func(ctx context.Context, input *struct{}) (*WindowOutput, error) {
		snap, ok := s.hub.Latest()
		if !ok {
			return nil, huma.Error404NotFound("no window published yet")
		}
		return &WindowOutput{Body: snap}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "next-window",
		Method:      http.MethodGet,
		Path:        "/api/window/next",
		Summary:     "Wait for a newer window snapshot",
	}, func(ctx context.Context, input *NextInput) (*WindowOutput, error) {
		snap, err := s.next(ctx, input.After, time.Duration(input.Timeout)*time.Second)
		if err != nil {
			return nil, err
		}
		return &WindowOutput{Body: snap}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-build",
		Method:      http.MethodGet,
		Path:        "/api/build",
		Summary:     "Get build information",
	}, func(ctx context.Context, input *struct{}) (*BuildOutput, error) {
		return &BuildOutput{Body: build.Current}, nil
	})
}

// next waits for a snapshot newer than after. On timeout it returns the
// latest snapshot as is.
func (s *Server) next(ctx context.Context, after uint64, timeout time.Duration) (window.Snapshot, error) {
	c, unsubscribe := s.hub.Subscribe(ctx)
	defer unsubscribe()

	latest, ok := s.hub.Latest()
	if ok && latest.Revision > after {
		return latest, nil
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return window.Snapshot{}, ctx.Err()
		case <-t.C:
			if latest, ok := s.hub.Latest(); ok {
				return latest, nil
			}
			return window.Snapshot{}, huma.Error404NotFound("no window published yet")
		case snap := <-c:
			if snap.Revision > after {
				return snap, nil
			}
		}
	}
}

func (s *Server) Serve(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:     s.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errC := make(chan error, 1)
	go func() { errC <- srv.Serve(l) }()
	slog.Info("Inspector listening", "package", "inspect", "address", l.Addr().String())

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
