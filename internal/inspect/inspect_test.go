package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/bus"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
)

func get(t *testing.T, srv *httptest.Server, path string) (int, window.Snapshot) {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var snap window.Snapshot
	if res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(&snap); err != nil {
			t.Fatal(err)
		}
	}
	return res.StatusCode, snap
}

func TestGetWindow(t *testing.T) {
	hub := bus.NewHub[window.Snapshot]()
	srv := httptest.NewServer(New("", hub).Handler())
	defer srv.Close()

	if code, _ := get(t, srv, "/api/window"); code != http.StatusNotFound {
		t.Fatalf("status before publish = %d", code)
	}

	hub.Broadcast(context.Background(), window.Snapshot{ID: "w", Title: "hello", Revision: 3})

	code, snap := get(t, srv, "/api/window")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if snap.Title != "hello" || snap.Revision != 3 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestNextWindow(t *testing.T) {
	hub := bus.NewHub[window.Snapshot]()
	srv := httptest.NewServer(New("", hub).Handler())
	defer srv.Close()

	hub.Broadcast(context.Background(), window.Snapshot{Revision: 1})

	t.Run("already newer", func(t *testing.T) {
		_, snap := get(t, srv, "/api/window/next?after=0")
		if snap.Revision != 1 {
			t.Errorf("revision = %d", snap.Revision)
		}
	})

	t.Run("waits for publish", func(t *testing.T) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			hub.Broadcast(context.Background(), window.Snapshot{Revision: 2})
		}()

		code, snap := get(t, srv, "/api/window/next?after=1&timeout=5")
		if code != http.StatusOK || snap.Revision != 2 {
			t.Errorf("status = %d, revision = %d", code, snap.Revision)
		}
	})

	t.Run("timeout returns latest", func(t *testing.T) {
		code, snap := get(t, srv, "/api/window/next?after=9&timeout=1")
		if code != http.StatusOK || snap.Revision != 2 {
			t.Errorf("status = %d, revision = %d", code, snap.Revision)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		if code, _ := get(t, srv, "/api/window/next?timeout=0"); code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d", code)
		}
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New("127.0.0.1:0", bus.NewHub[window.Snapshot]())

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
