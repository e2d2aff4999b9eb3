package overlay

import (
	"image"
	"testing"

	"github.com/subtide/subtide/internal/caption"
)

func TestComputeLayout(t *testing.T) {
	style := caption.Style{
		FontSizePercent:    5,
		StrokeWidthPercent: 10,
	}

	l := Compute(style, 1920, 1080)

	if l.FontPx != 54 {
		t.Errorf("expected font size 54px (5%% of 1080), got %v", l.FontPx)
	}
	if l.StrokePx != 5.4 {
		t.Errorf("expected stroke 5.4px (10%% of font), got %v", l.StrokePx)
	}
	if l.CenterX != 960 {
		t.Errorf("expected center 960, got %v", l.CenterX)
	}
	if l.BottomY >= 1080 || l.BottomY <= 1000 {
		t.Errorf("expected bottom anchor just above the frame edge, got %v", l.BottomY)
	}
}

func TestComputeZeroStroke(t *testing.T) {
	style := caption.Style{FontSizePercent: 5, StrokeWidthPercent: 0}
	if l := Compute(style, 640, 480); l.StrokePx != 0 {
		t.Errorf("expected zero stroke, got %v", l.StrokePx)
	}
}

// the preview spec and the raster layout must agree, so live preview
// and burned output stay in parity
func TestPreviewMatchesLayout(t *testing.T) {
	style := caption.DefaultStyle()
	w, h := 1280, 720

	l := Compute(style, w, h)
	p := PreviewFor(style, w, h)

	if p.FontPx != l.FontPx {
		t.Errorf("font mismatch: preview %v, layout %v", p.FontPx, l.FontPx)
	}
	if p.StrokePx != l.StrokePx {
		t.Errorf("stroke mismatch: preview %v, layout %v", p.StrokePx, l.StrokePx)
	}
	if p.BottomPx != float64(h)-l.BottomY {
		t.Errorf("margin mismatch: preview %v, layout bottom %v", p.BottomPx, l.BottomY)
	}
	if p.Color != style.Color || p.Weight != style.Weight {
		t.Error("preview must carry the style's color and weight unchanged")
	}
}

func countNonZero(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestRasterRenderDrawsPixels(t *testing.T) {
	r := NewRaster()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))

	if err := r.Render(img, "Hello", caption.DefaultStyle()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if countNonZero(img) == 0 {
		t.Error("expected rendered text to touch some pixels")
	}
}

func TestRasterRenderEmptyTextIsNoop(t *testing.T) {
	r := NewRaster()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))

	if err := r.Render(img, "", caption.DefaultStyle()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if countNonZero(img) != 0 {
		t.Error("empty text must not draw")
	}
}

func TestRasterRenderZeroStrokeSkipsOutline(t *testing.T) {
	style := caption.DefaultStyle()
	style.StrokeWidthPercent = 0
	style.Color = "#FF0000"

	r := NewRaster()
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	if err := r.Render(img, "Hi", style); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// with no outline pass, nothing black should be drawn
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			c := img.RGBAAt(x, y)
			if c.A > 0 && c.R == 0 && c.G == 0 && c.B == 0 {
				t.Fatalf("found outline pixel at (%d, %d) with stroke disabled", x, y)
			}
		}
	}
}

func TestRasterRenderWeights(t *testing.T) {
	for _, w := range []caption.Weight{
		caption.WeightNormal,
		caption.WeightBold,
		caption.WeightHeavy,
	} {
		t.Run(string(w), func(t *testing.T) {
			style := caption.DefaultStyle()
			style.Weight = w

			r := NewRaster()
			img := image.NewRGBA(image.Rect(0, 0, 320, 240))
			if err := r.Render(img, "Weighty", style); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if countNonZero(img) == 0 {
				t.Error("expected rendered text to touch some pixels")
			}
		})
	}
}

func TestRasterRenderRejectsZeroFont(t *testing.T) {
	style := caption.DefaultStyle()
	style.FontSizePercent = 0

	r := NewRaster()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	if err := r.Render(img, "x", style); err == nil {
		t.Error("expected an error for a zero font size")
	}
}
