package sutureext

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/thejerf/suture/v4"
)

func NewSimple(name string) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook: EventHook(slog.With("package", "suture")),
	})
}

func EventHook(log *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			log.Info("Service failed to terminate in a timely manner", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			log.Error("Caught a service panic", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			log.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			log.Error("Service failed", "error", e.Err, "supervisor", e.SupervisorName, "service", e.ServiceName, "restarting", e.Restarting)
		case suture.EventBackoff:
			log.Debug("Too many service failures - entering the backoff state", "supervisor", e.SupervisorName)
		case suture.EventResume:
			log.Debug("Exiting backoff state", "supervisor", e.SupervisorName)
		default:
			b, _ := json.Marshal(e)
			log.Warn("Unknown suture supervisor event type", "type", int(e.Type()), "event", string(b))
		}
	}
}

// Background serves super until ctx is done. The returned function waits
// for the supervisor to stop.
func Background(ctx context.Context, super *suture.Supervisor) func() error {
	errC := super.ServeBackground(ctx)
	return func() error {
		err := <-errC
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// Service forces the use of the String method
type Service interface {
	String() string
	suture.Service
}

func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError prevents the error from being interpreted as a context error unless it
// really is a context error because suture kills the service when it sees a context error.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var newErrs [3]error

	if errors.Is(err, suture.ErrDoNotRestart) {
		newErrs[0] = suture.ErrDoNotRestart
	}

	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		newErrs[1] = suture.ErrTerminateSupervisorTree
	}

	newErrs[2] = errors.New(err.Error())

	return errors.Join(newErrs[:]...)
}
