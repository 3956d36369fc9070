package frame

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func pixel(t *testing.T, dc *gg.Context, x, y int) color.RGBA {
	t.Helper()
	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		t.Fatal("expected *image.RGBA")
	}
	return rgba.RGBAAt(x, y)
}

func TestImageFrame(t *testing.T) {
	f := NewImage("a", solid(20, 10, color.RGBA{R: 255, A: 255}))
	if f.ID() != "a" {
		t.Errorf("ID() = %q", f.ID())
	}
	if w, h := f.Size(); w != 20 || h != 10 {
		t.Errorf("Size() = %vx%v, want 20x10", w, h)
	}

	dc := gg.NewContext(40, 40)
	dc.SetTransform(gg.Scale(2, 2))
	if err := f.Draw(dc); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if p := pixel(t, dc, 20, 10); p.R < 200 || p.G > 50 {
		t.Errorf("pixel inside the scaled frame = %v, want red", p)
	}
	if p := pixel(t, dc, 20, 30); p.A != 0 {
		t.Errorf("pixel below the scaled frame = %v, want transparent", p)
	}
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(3, 4, color.RGBA{B: 255, A: 255})); err != nil {
		t.Fatal(err)
	}

	f, err := DecodePNG("p", &buf)
	if err != nil {
		t.Fatalf("DecodePNG failed: %v", err)
	}
	if w, h := f.Size(); w != 3 || h != 4 {
		t.Errorf("Size() = %vx%v, want 3x4", w, h)
	}

	if _, err := DecodePNG("bad", bytes.NewBufferString("not a png")); err == nil {
		t.Error("DecodePNG accepted garbage")
	}
}

func TestRecordingFrame(t *testing.T) {
	rec := recording.NewRecorder(16, 16)
	rec.ClearWithColor(gg.Red)
	f := NewRecording("r", rec.FinishRecording())

	if w, h := f.Size(); w != 16 || h != 16 {
		t.Errorf("Size() = %vx%v, want 16x16", w, h)
	}

	dc := gg.NewContext(16, 16)
	for i := 0; i < 2; i++ {
		if err := f.Draw(dc); err != nil {
			t.Fatalf("Draw #%d failed: %v", i, err)
		}
	}
	if f.img == nil {
		t.Fatal("rasterized image was not cached")
	}
	if p := pixel(t, dc, 8, 8); p.R < 200 || p.G > 50 || p.B > 50 {
		t.Errorf("pixel = %v, want red", p)
	}
}

func TestImageDeclaredSize(t *testing.T) {
	f := NewImage("hd", solid(20, 10, color.RGBA{G: 255, A: 255})).WithSize(10, 5)
	if w, h := f.Size(); w != 10 || h != 5 {
		t.Fatalf("Size() = %vx%v, want 10x5", w, h)
	}

	dc := gg.NewContext(20, 20)
	if err := f.Draw(dc); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if p := pixel(t, dc, 5, 2); p.G < 200 {
		t.Errorf("pixel inside the logical frame = %v, want green", p)
	}
	if p := pixel(t, dc, 15, 2); p.A != 0 {
		t.Errorf("pixel past the logical width = %v, want transparent", p)
	}

	if w, h := NewImage("px", solid(4, 3, color.RGBA{A: 255})).WithSize(0, 0).Size(); w != 4 || h != 3 {
		t.Errorf("Size() = %vx%v, want pixel size kept", w, h)
	}
}

func TestSolidFrame(t *testing.T) {
	f := NewSolid("s", 8, 8, gg.Hex("#0000ff"))
	if w, h := f.Size(); w != 8 || h != 8 {
		t.Errorf("Size() = %vx%v, want 8x8", w, h)
	}

	dc := gg.NewContext(8, 8)
	if err := f.Draw(dc); err != nil {
		t.Fatal(err)
	}
	if p := pixel(t, dc, 4, 4); p.B < 200 || p.R > 50 {
		t.Errorf("pixel = %v, want blue", p)
	}
}
