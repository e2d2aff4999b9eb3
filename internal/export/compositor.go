package export

import (
	"image"

	"github.com/subtide/subtide/internal/caption"
	"github.com/subtide/subtide/internal/overlay"
)

// ActiveCaption returns the caption whose interval contains t,
// inclusive on both ends. When captions overlap, the first match in
// collection order wins; no further precedence is defined.
func ActiveCaption(track caption.Track, t float64) (caption.Caption, bool) {
	for _, c := range track {
		if c.Contains(t) {
			return c, true
		}
	}
	return caption.Caption{}, false
}

// Compositor burns the active caption, if any, onto decoded frames.
// Style and captions are fixed for the duration of one export pass.
type Compositor struct {
	track  caption.Track
	style  caption.Style
	raster *overlay.Raster
}

func NewCompositor(track caption.Track, style caption.Style) *Compositor {
	return &Compositor{
		track:  track,
		style:  style,
		raster: overlay.NewRaster(),
	}
}

// Composite draws onto the frame in place. Frames with no active
// caption pass through untouched.
func (c *Compositor) Composite(frame *image.RGBA, t float64) error {
	active, ok := ActiveCaption(c.track, t)
	if !ok {
		return nil
	}
	return c.raster.Render(frame, active.Text, c.style)
}
