package overlay

import (
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/subtide/subtide/internal/caption"
)

// points around the glyph used to approximate a round-joined outline
const strokeSteps = 16

// Raster burns caption text into pixel data. This is the export-path
// implementation of Renderer.
type Raster struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	weight caption.Weight
	sizePx int
}

func NewRaster() *Raster {
	return &Raster{faces: make(map[faceKey]font.Face)}
}

// Render draws the stroked outline (skipped when the stroke width
// resolves to zero) and then the filled text, centered horizontally
// and bottom-anchored.
func (r *Raster) Render(dst *image.RGBA, text string, style caption.Style) error {
	if text == "" {
		return nil
	}

	bounds := dst.Bounds()
	layout := Compute(style, bounds.Dx(), bounds.Dy())
	if layout.FontPx <= 0 {
		return fmt.Errorf("font size resolves to %v px", layout.FontPx)
	}

	face, err := r.faceFor(style.Weight, layout.FontPx)
	if err != nil {
		return err
	}

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(face)

	lines := strings.Split(text, "\n")
	lineH := layout.FontPx * lineSpacing

	for i, line := range lines {
		bottom := layout.BottomY - float64(len(lines)-1-i)*lineH

		if layout.StrokePx > 0 {
			dc.SetHexColor("#000000")
			for s := 0; s < strokeSteps; s++ {
				angle := 2 * math.Pi * float64(s) / strokeSteps
				dx := layout.StrokePx * math.Cos(angle)
				dy := layout.StrokePx * math.Sin(angle)
				dc.DrawStringAnchored(line, layout.CenterX+dx, bottom+dy, 0.5, 1)
			}
		}

		dc.SetHexColor(style.Color)
		dc.DrawStringAnchored(line, layout.CenterX, bottom, 0.5, 1)
		if style.Weight == caption.WeightHeavy {
			// gofont has no black cut; a half-pixel double pass
			// thickens the bold face
			dc.DrawStringAnchored(line, layout.CenterX+0.5, bottom, 0.5, 1)
		}
	}

	return nil
}

func (r *Raster) faceFor(weight caption.Weight, sizePx float64) (font.Face, error) {
	key := faceKey{weight: weight, sizePx: int(math.Round(sizePx))}

	r.mu.Lock()
	defer r.mu.Unlock()
	if face, ok := r.faces[key]; ok {
		return face, nil
	}

	ttf := goregular.TTF
	if weight == caption.WeightBold || weight == caption.WeightHeavy {
		ttf = gobold.TTF
	}

	ft, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    float64(key.sizePx),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build caption face: %w", err)
	}

	r.faces[key] = face
	return face, nil
}
