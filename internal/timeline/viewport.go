package timeline

// Viewport is the time-centered, zoom-scaled mapping between media time
// and screen pixels. CenterTime tracks the playback position; the view
// is always centered on "now".
type Viewport struct {
	CenterTime  float64 // seconds
	Zoom        float64 // pixels per second, always > 0
	PixelWidth  int
	PixelHeight int
}

// TimeToX maps an absolute media time to a horizontal pixel position.
func (v Viewport) TimeToX(t float64) float64 {
	return float64(v.PixelWidth)/2 + (t-v.CenterTime)*v.Zoom
}

// XToTime is the exact inverse of TimeToX.
func (v Viewport) XToTime(x float64) float64 {
	return v.CenterTime + (x-float64(v.PixelWidth)/2)/v.Zoom
}

// WithZoom returns the viewport at the requested zoom, clamped to
// [lo, hi]. Zoom is clamped here, at the mutation boundary, so the
// mapper never sees a non-positive value.
func (v Viewport) WithZoom(zoom, lo, hi float64) Viewport {
	if zoom < lo {
		zoom = lo
	}
	if zoom > hi {
		zoom = hi
	}
	v.Zoom = zoom
	return v
}
