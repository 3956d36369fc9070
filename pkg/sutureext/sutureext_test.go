package sutureext

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func TestSanitizeError(t *testing.T) {
	live := context.Background()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	other := errors.New("boom")

	tests := []struct {
		name      string
		ctx       context.Context
		err       error
		isContext bool
		isOther   bool
	}{
		{"nil", live, nil, false, false},
		{"plain error passes through", live, other, false, true},
		{"stray context error is hidden", live, context.Canceled, false, false},
		{"done context wins", canceled, other, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeError(tt.ctx, tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("SanitizeError() = %v", got)
				}
				return
			}
			if errors.Is(got, context.Canceled) != tt.isContext {
				t.Errorf("SanitizeError() = %v, context error = %v", got, !tt.isContext)
			}
			if errors.Is(got, other) != tt.isOther {
				t.Errorf("SanitizeError() = %v, want other = %v", got, tt.isOther)
			}
		})
	}
}

func TestSanitizeKeepsDoNotRestart(t *testing.T) {
	err := SanitizeError(context.Background(), errors.Join(context.Canceled, suture.ErrDoNotRestart))
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("SanitizeError() = %v, want ErrDoNotRestart kept", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Errorf("SanitizeError() = %v, still a context error", err)
	}
}

type tickService struct {
	ran chan struct{}
}

func (tickService) String() string { return "tickService" }

func (s tickService) Serve(ctx context.Context) error {
	close(s.ran)
	<-ctx.Done()
	return ctx.Err()
}

func TestBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	super := NewSimple("test")
	svc := tickService{ran: make(chan struct{})}
	Add(super, svc)

	wait := Background(ctx, super)
	select {
	case <-svc.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("service did not start")
	}

	cancel()
	if err := wait(); err != nil {
		t.Errorf("wait() = %v", err)
	}
}
