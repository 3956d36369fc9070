package headless

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ItsNotGoodName/x-canvasview/internal/input"
)

func next(t *testing.T, p *Platform) input.Event {
	t.Helper()
	select {
	case ev := <-p.Events():
		return ev
	default:
		t.Fatal("no event pending")
		return nil
	}
}

func TestFullscreenResizes(t *testing.T) {
	p := New(Config{ScreenWidth: 1920, ScreenHeight: 1080})
	p.SetSize(640, 480)
	if ev := next(t, p); ev != (input.Resized{Width: 640, Height: 480}) {
		t.Fatalf("event = %#v", ev)
	}

	p.ToggleFullscreen()
	if ev := next(t, p); ev != (input.Resized{Width: 1920, Height: 1080}) {
		t.Fatalf("event = %#v, want screen sized resize", ev)
	}
	if !p.Fullscreen() {
		t.Fatal("Fullscreen() = false")
	}

	// size requests while fullscreen apply on restore
	p.SetSize(800, 600)
	p.SetFullscreen(false)
	if ev := next(t, p); ev != (input.Resized{Width: 800, Height: 600}) {
		t.Errorf("event = %#v, want restored size", ev)
	}
}

func TestFullscreenDefaultScreen(t *testing.T) {
	p := New(Config{})
	p.SetFullscreen(true)
	want := input.Resized{Width: DefaultScreenWidth, Height: DefaultScreenHeight}
	if ev := next(t, p); ev != want {
		t.Errorf("event = %#v, want %#v", ev, want)
	}
}

func TestPresent(t *testing.T) {
	p := New(Config{})
	if _, ok := p.Last(); ok {
		t.Fatal("Last() before any present")
	}
	if err := p.SavePNG(filepath.Join(t.TempDir(), "none.png")); !errors.Is(err, ErrNoFrame) {
		t.Errorf("SavePNG() = %v, want ErrNoFrame", err)
	}

	s, err := p.NewSurface(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Present(image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	if w := p.Window(); w.Surfaces != 1 || w.Presents != 1 {
		t.Errorf("Window() = %+v", w)
	}

	path := filepath.Join(t.TempDir(), "last.png")
	if err := p.SavePNG(path); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}

	lost := errors.New("lost")
	p.FailPresent(lost)
	if err := s.Present(image.NewRGBA(image.Rect(0, 0, 4, 4))); !errors.Is(err, lost) {
		t.Errorf("Present() = %v, want injected failure", err)
	}

	s.Close()
	p.FailPresent(nil)
	if err := s.Present(image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("closed surface presented")
	}
}

func TestClose(t *testing.T) {
	p := New(Config{})
	p.Close()
	p.Close()
	if p.Post(input.PointerEntered{}) {
		t.Error("Post succeeded after Close")
	}
	if _, ok := <-p.Events(); ok {
		t.Error("event channel still open")
	}
}
