package bus

import (
	"context"
	"errors"
	"testing"
)

type ping struct{ N int }

func TestPublishSubscribe(t *testing.T) {
	t.Cleanup(Reset)

	var got []int
	Subscribe("test", func(ctx context.Context, event ping) error {
		got = append(got, event.N)
		return nil
	})
	Subscribe("failing", func(ctx context.Context, event ping) error {
		return errors.New("ignored")
	})

	Publish(ping{N: 1})
	Publish(ping{N: 2})
	Publish("other topic")

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("got %v, want [1 2]", got)
	}
}

func TestHubKeepsNewest(t *testing.T) {
	t.Cleanup(Reset)

	hub := NewHub[ping]().Register()
	if _, ok := hub.Latest(); ok {
		t.Fatal("Latest() before any event")
	}

	c, unsubscribe := hub.Subscribe(context.Background())
	defer unsubscribe()

	for i := 1; i <= 3; i++ {
		Publish(ping{N: i})
	}

	if ev := <-c; ev.N != 3 {
		t.Errorf("subscriber received %d, want the newest event 3", ev.N)
	}
	if ev, ok := hub.Latest(); !ok || ev.N != 3 {
		t.Errorf("Latest() = %v, %v", ev, ok)
	}

	unsubscribe()
	Publish(ping{N: 4})
	select {
	case ev := <-c:
		t.Errorf("unsubscribed channel received %v", ev)
	default:
	}
}
