package runloop

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/ItsNotGoodName/x-canvasview/internal/cadence"
	"github.com/ItsNotGoodName/x-canvasview/internal/frame"
	"github.com/ItsNotGoodName/x-canvasview/internal/headless"
	"github.com/ItsNotGoodName/x-canvasview/internal/input"
	"github.com/ItsNotGoodName/x-canvasview/internal/sieve"
	"github.com/ItsNotGoodName/x-canvasview/internal/view"
	"github.com/ItsNotGoodName/x-canvasview/internal/window"
	"github.com/gogpu/gg"
)

type fakeHost struct {
	replies   []window.Reply
	err       error
	batches   []sieve.Batch
	animates  int
	onAnimate func(n int)
}

func (h *fakeHost) next() (window.Reply, error) {
	if h.err != nil {
		return nil, h.err
	}
	if len(h.replies) == 0 {
		return window.Reply{}, nil
	}
	r := h.replies[0]
	h.replies = h.replies[1:]
	return r, nil
}

func (h *fakeHost) Dispatch(ctx context.Context, batch sieve.Batch) (window.Reply, error) {
	h.batches = append(h.batches, batch)
	return h.next()
}

func (h *fakeHost) Animate(ctx context.Context) (window.Reply, error) {
	h.animates++
	if h.onAnimate != nil {
		h.onAnimate(h.animates)
	}
	return h.next()
}

// failingFactory hands out surfaces whose first fails presents are lost.
type failingFactory struct {
	*headless.Platform
	fails int
}

func (f *failingFactory) NewSurface(width, height int) (view.Surface, error) {
	s, err := f.Platform.NewSurface(width, height)
	if err != nil {
		return nil, err
	}
	return &failingSurface{Surface: s, factory: f}, nil
}

type failingSurface struct {
	view.Surface
	factory *failingFactory
}

func (s *failingSurface) Present(img image.Image) error {
	if s.factory.fails > 0 {
		s.factory.fails--
		return errors.New("device lost")
	}
	return s.Surface.Present(img)
}

func reply(slots map[int]any) window.Reply {
	r := make(window.Reply, window.ReplyLen)
	for i, v := range slots {
		r[i] = v
	}
	return r
}

func testFrame(id string) frame.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	return frame.NewImage(id, img)
}

type fixture struct {
	platform *headless.Platform
	host     *fakeHost
	view     *view.View
	ctrl     *window.Controller
	proxy    *Proxy
	driver   *Driver
}

func newFixture(t *testing.T, factory view.SurfaceFactory, platform *headless.Platform, replies ...window.Reply) *fixture {
	t.Helper()
	if platform == nil {
		platform = headless.New(headless.Config{ScreenWidth: 1920, ScreenHeight: 1080})
	}
	if factory == nil {
		factory = platform
	}

	v, err := view.New(factory, 40, 20, gg.RGBA{A: 1}, &view.Fit{Mode: view.Contain, Y: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { v.Close() })

	pacer := cadence.NewCadence(time.Now())
	host := &fakeHost{replies: replies}
	ctrl := window.New(window.Config{Title: "test", Width: 40, Height: 20}, host, platform, v.Queue(), pacer)
	proxy := NewProxy()

	return &fixture{
		platform: platform,
		host:     host,
		view:     v,
		ctrl:     ctrl,
		proxy:    proxy,
		driver:   New(ctrl, v, pacer, platform.Events(), proxy),
	}
}

func TestRunKeepsWindowHiddenUntilAsked(t *testing.T) {
	f := newFixture(t, nil, nil, reply(map[int]any{
		window.SlotFrame:       testFrame("a"),
		window.SlotKeepRunning: false,
	}))

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if w := f.platform.Window(); w.Visible || w.Presents != 0 {
		t.Errorf("window = %+v, want hidden without presents", w)
	}
	if !errors.Is(f.ctrl.Err(), window.ErrStopRequested) {
		t.Errorf("Err() = %v", f.ctrl.Err())
	}
}

func TestRunStartupBatchEmpty(t *testing.T) {
	f := newFixture(t, nil, nil,
		window.Reply{},
		reply(map[int]any{window.SlotKeepRunning: false}),
	)
	f.platform.Post(input.PointerMoved{X: 3, Y: 4})
	f.platform.Post(input.Keyboard{State: input.Pressed, Key: "a", Code: 38})

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if len(f.host.batches) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(f.host.batches))
	}
	if !f.host.batches[0].Empty() {
		t.Errorf("startup batch = %+v, want empty", f.host.batches[0])
	}
	early := f.host.batches[1]
	if early.Key == nil || early.Key.Key != "a" || early.Key.Event != "keydown" {
		t.Errorf("key = %+v, want early keydown", early.Key)
	}
	if early.Mouse == nil || len(early.Mouse.Events) == 0 {
		t.Errorf("mouse = %+v, want early mousemove", early.Mouse)
	}
}

func TestRunPresentsVisibleFrame(t *testing.T) {
	f := newFixture(t, nil, nil, reply(map[int]any{
		window.SlotFrame:       testFrame("a"),
		window.SlotVisible:     true,
		window.SlotKeepRunning: false,
	}))

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if w := f.platform.Window(); !w.Visible || w.Presents != 1 {
		t.Fatalf("window = %+v, want one present", w)
	}

	img, _ := f.platform.Last()
	// contain-y of 10x10 in 40x20 is scale 2 centered at x=10
	if got := img.RGBAAt(15, 10); got.R != 255 {
		t.Errorf("frame pixel = %v", got)
	}
	if got := img.RGBAAt(2, 10); got.R != 0 {
		t.Errorf("backdrop pixel = %v", got)
	}
}

func TestRunRebuildsLostSurface(t *testing.T) {
	platform := headless.New(headless.Config{})
	factory := &failingFactory{Platform: platform}
	f := newFixture(t, factory, platform, reply(map[int]any{
		window.SlotFrame:       testFrame("a"),
		window.SlotVisible:     true,
		window.SlotKeepRunning: false,
	}))
	factory.fails = 1

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if w := platform.Window(); w.Surfaces != 2 || w.Presents != 1 {
		t.Errorf("window = %+v, want one rebuild and one present", w)
	}
}

func TestRunClosesWhenRebuildFails(t *testing.T) {
	platform := headless.New(headless.Config{})
	factory := &failingFactory{Platform: platform}
	f := newFixture(t, factory, platform, reply(map[int]any{
		window.SlotFrame:   testFrame("a"),
		window.SlotVisible: true,
	}))
	factory.fails = 2

	err := f.driver.Run(context.Background())
	if !errors.Is(err, view.ErrSurfaceLost) {
		t.Fatalf("Run() = %v, want ErrSurfaceLost", err)
	}
}

func TestRunCloseRequest(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.platform.Post(input.CloseRequested{})

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !errors.Is(f.ctrl.Err(), window.ErrCloseRequested) {
		t.Errorf("Err() = %v", f.ctrl.Err())
	}
	if len(f.host.batches) != 1 {
		t.Errorf("dispatches = %d, want the initial round trip only", len(f.host.batches))
	}
}

func TestRunClosedEventStream(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.platform.Close()

	if err := f.driver.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !errors.Is(f.ctrl.Err(), window.ErrCloseRequested) {
		t.Errorf("Err() = %v", f.ctrl.Err())
	}
}

func TestRunHostError(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.host.err = errors.New("broken pipe")

	err := f.driver.Run(context.Background())
	if !errors.Is(err, window.ErrHost) {
		t.Fatalf("Run() = %v, want ErrHost", err)
	}
	if f.ctrl.Phase() != window.Closing {
		t.Errorf("Phase() = %v", f.ctrl.Phase())
	}
}

func TestRunStopMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  Stop
		want error
	}{
		{"graceful", Stop{}, nil},
		{"with cause", Stop{Err: errors.New("shutdown")}, errors.New("shutdown")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			if !f.proxy.Send(tt.msg) {
				t.Fatal("Send failed")
			}

			err := f.driver.Run(context.Background())
			if (err == nil) != (tt.want == nil) || (err != nil && err.Error() != tt.want.Error()) {
				t.Errorf("Run() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.driver.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !errors.Is(f.ctrl.Err(), context.Canceled) {
		t.Errorf("Err() = %v", f.ctrl.Err())
	}
}

func TestRunAnimates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFixture(t, nil, nil, reply(map[int]any{
		window.SlotFrame:     testFrame("a"),
		window.SlotVisible:   true,
		window.SlotFrameRate: 200,
	}))
	f.host.onAnimate = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	done := make(chan error, 1)
	go func() { done <- f.driver.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("animation did not advance")
	}

	if f.host.animates < 3 {
		t.Errorf("animates = %d", f.host.animates)
	}
	if w := f.platform.Window(); w.Presents < 3 {
		t.Errorf("presents = %d, want one per paced frame", w.Presents)
	}
}

func TestHeartbeat(t *testing.T) {
	proxy := NewProxy()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hb := NewHeartbeat(proxy, time.Millisecond)
	go hb.Serve(ctx)

	select {
	case msg := <-proxy.C():
		if _, ok := msg.(Wake); !ok {
			t.Errorf("message = %#v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no wakeup")
	}
}

func TestProxyNeverBlocks(t *testing.T) {
	proxy := NewProxy()
	for i := 0; i < ProxySize; i++ {
		if !proxy.Send(Wake{}) {
			t.Fatalf("Send %d failed", i)
		}
	}
	if proxy.Send(Wake{}) {
		t.Error("Send succeeded on a full proxy")
	}
}
