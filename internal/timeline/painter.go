package timeline

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/subtide/subtide/internal/config"
)

// Theme holds the timeline's colors as hex strings.
type Theme struct {
	Background    string
	Wave          string
	Grid          string
	Label         string
	Block         string
	BlockBorder   string
	BlockSelected string
	BlockText     string
	Handle        string
	Playhead      string
}

func DefaultTheme() Theme {
	return Theme{
		Background:    "#14161C",
		Wave:          "#3D7BD9",
		Grid:          "#2A2E38",
		Label:         "#8A90A0",
		Block:         "#E8B33B55",
		BlockBorder:   "#E8B33B",
		BlockSelected: "#FFFFFF",
		BlockText:     "#F0F0F0",
		Handle:        "#FFFFFF",
		Playhead:      "#FF4A4A",
	}
}

// Painter draws one timeline frame from a state snapshot. Pure
// rendering; it mutates nothing but the destination image.
type Painter struct {
	cfg   config.Timeline
	theme Theme
	face  font.Face
}

func NewPainter(cfg config.Timeline, theme Theme) (*Painter, error) {
	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    11,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build label face: %w", err)
	}
	return &Painter{cfg: cfg, theme: theme, face: face}, nil
}

// Render allocates an image of the viewport's size and paints into it.
func (p *Painter) Render(st State) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, st.Viewport.PixelWidth, st.Viewport.PixelHeight))
	p.Paint(img, st)
	return img
}

// Paint draws, in z-order: background, waveform, second grid, caption
// blocks, resize handles on the selected caption, center playhead.
func (p *Painter) Paint(dst *image.RGBA, st State) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(p.face)

	vp := st.Viewport
	w := float64(vp.PixelWidth)
	h := float64(vp.PixelHeight)

	dc.SetHexColor(p.theme.Background)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	p.paintWaveform(dc, st)
	p.paintGrid(dc, vp)
	p.paintCaptions(dc, st)

	// fixed playhead: the viewport centers on the playback position
	dc.SetHexColor(p.theme.Playhead)
	dc.DrawRectangle(math.Floor(w/2)-1, 0, 2, h)
	dc.Fill()
}

func (p *Painter) paintWaveform(dc *gg.Context, st State) {
	if st.Waveform == nil {
		return
	}

	vp := st.Viewport
	mid := float64(vp.PixelHeight) / 2
	half := mid * p.cfg.WaveformFraction

	dc.SetHexColor(p.theme.Wave)
	for _, b := range Rasterize(st.Waveform, vp) {
		if b.Max-b.Min < p.cfg.NoiseFloor {
			// silence: a flat line instead of a degenerate bar
			dc.DrawRectangle(float64(b.X), math.Floor(mid), float64(b.Width), 1)
			continue
		}
		top := mid - b.Max*half
		bottom := mid - b.Min*half
		y := math.Floor(top)
		bh := math.Ceil(bottom) - y
		if bh < 1 {
			bh = 1
		}
		dc.DrawRectangle(float64(b.X), y, float64(b.Width), bh)
	}
	dc.Fill()
}

// grid lines every second; labels thin out as zoom decreases
func (p *Painter) paintGrid(dc *gg.Context, vp Viewport) {
	firstSec := int(math.Floor(vp.XToTime(0)))
	lastSec := int(math.Ceil(vp.XToTime(float64(vp.PixelWidth))))
	if firstSec < 0 {
		firstSec = 0
	}

	h := float64(vp.PixelHeight)
	for s := firstSec; s <= lastSec; s++ {
		x := math.Floor(vp.TimeToX(float64(s)))
		if x < 0 || x > float64(vp.PixelWidth) {
			continue
		}

		dc.SetHexColor(p.theme.Grid)
		dc.DrawRectangle(x, 0, 1, h)
		dc.Fill()

		if s%5 == 0 || vp.Zoom >= p.cfg.LabelEveryZoom {
			dc.SetHexColor(p.theme.Label)
			dc.DrawString(fmt.Sprintf("%d:%02d", s/60, s%60), x+3, 12)
		}
	}
}

func (p *Painter) paintCaptions(dc *gg.Context, st State) {
	vp := st.Viewport
	h := float64(vp.PixelHeight)

	for _, c := range st.Captions {
		x0 := vp.TimeToX(c.Start)
		x1 := vp.TimeToX(c.End)
		if x1 < 0 || x0 > float64(vp.PixelWidth) {
			continue
		}

		bw := x1 - x0
		dc.SetHexColor(p.theme.Block)
		dc.DrawRectangle(x0, 0, bw, h)
		dc.Fill()

		if c.ID == st.SelectedID {
			dc.SetHexColor(p.theme.BlockSelected)
			dc.SetLineWidth(2)
		} else {
			dc.SetHexColor(p.theme.BlockBorder)
			dc.SetLineWidth(1)
		}
		dc.DrawRectangle(x0, 0, bw, h)
		dc.Stroke()

		// text clipped to the block, never wrapped or ellipsized
		dc.DrawRectangle(x0, 0, bw, h)
		dc.Clip()
		dc.SetHexColor(p.theme.BlockText)
		dc.DrawString(c.Text, x0+4, 24)
		dc.ResetClip()

		if c.ID == st.SelectedID {
			hw := p.cfg.HandlePixelWidth
			dc.SetHexColor(p.theme.Handle)
			dc.DrawRectangle(x0, 0, hw, h)
			dc.DrawRectangle(x1-hw, 0, hw, h)
			dc.Fill()
		}
	}
}
