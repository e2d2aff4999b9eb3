// Package overlay renders caption text for a given style and frame
// geometry. The layout math is shared by every renderer so that the
// live preview and the burned-in export stay visually in parity.
package overlay

import (
	"image"

	"github.com/subtide/subtide/internal/caption"
)

// fixed margin between the text block and the bottom of the frame, as
// a fraction of frame height
const bottomMarginFrac = 0.04

// line spacing as a multiple of the font size
const lineSpacing = 1.2

// Layout is the resolved pixel geometry for caption text on one frame.
type Layout struct {
	FontPx   float64
	StrokePx float64
	CenterX  float64
	BottomY  float64 // bottom edge of the lowest text line
}

// Compute resolves a style against a frame size. Font size is a
// percentage of frame height; stroke width is a percentage of the
// computed font size.
func Compute(style caption.Style, frameW, frameH int) Layout {
	fontPx := float64(frameH) * style.FontSizePercent / 100
	return Layout{
		FontPx:   fontPx,
		StrokePx: fontPx * style.StrokeWidthPercent / 100,
		CenterX:  float64(frameW) / 2,
		BottomY:  float64(frameH) * (1 - bottomMarginFrac),
	}
}

// Renderer is the contract both caption renderers implement: draw the
// text for one frame given the shared style model.
type Renderer interface {
	Render(dst *image.RGBA, text string, style caption.Style) error
}

// PreviewSpec mirrors Layout in the terms a DOM-style overlay host
// needs, so a live preview can match the burned output exactly.
type PreviewSpec struct {
	FontFamily string
	FontPx     float64
	StrokePx   float64
	Weight     caption.Weight
	Color      string
	BottomPx   float64 // distance from the frame's bottom edge
}

// PreviewFor derives the preview spec from the same layout math the
// raster renderer uses.
func PreviewFor(style caption.Style, frameW, frameH int) PreviewSpec {
	l := Compute(style, frameW, frameH)
	return PreviewSpec{
		FontFamily: style.FontFamily,
		FontPx:     l.FontPx,
		StrokePx:   l.StrokePx,
		Weight:     style.Weight,
		Color:      style.Color,
		BottomPx:   float64(frameH) - l.BottomY,
	}
}
