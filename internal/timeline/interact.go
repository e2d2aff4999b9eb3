package timeline

import (
	"math"

	"github.com/subtide/subtide/internal/caption"
)

// drag mode
type Mode int

const (
	ModeIdle Mode = iota
	ModeScrub
	ModeMove
	ModeResizeLeft
	ModeResizeRight
)

// Transport is the live playback source the machine pauses, resumes
// and seeks. Supplied by the host.
type Transport interface {
	Play()
	Pause()
	Playing() bool
	Seek(t float64)
}

// Machine owns pointer handling for the timeline: hit-testing, the
// single drag session, and the caption mutations it produces. Device
// input is assumed single-pointer, so at most one session is live.
//
// All drag deltas are applied to the snapshot taken at pointer-down,
// never re-applied incrementally, so the dragged edge tracks the
// pointer exactly and a drag that returns to its origin restores the
// exact original bounds.
type Machine struct {
	cell       *Cell
	transport  Transport
	onCaptions func(caption.Track)

	handlePx float64
	minZoom  float64
	maxZoom  float64

	mode            Mode
	targetID        string
	pointerStartX   float64
	playbackAtStart float64
	capStart        float64
	capEnd          float64
	wasPlaying      bool
}

func NewMachine(
	cell *Cell,
	transport Transport,
	handlePx, minZoom, maxZoom float64,
	onCaptions func(caption.Track),
) *Machine {
	return &Machine{
		cell:       cell,
		transport:  transport,
		onCaptions: onCaptions,
		handlePx:   handlePx,
		minZoom:    minZoom,
		maxZoom:    maxZoom,
	}
}

func (m *Machine) Mode() Mode {
	return m.mode
}

// PointerDown starts a drag session. Handles on the selected caption
// win over caption bodies; caption bodies are hit-tested most-recent
// first; empty space starts a scrub.
func (m *Machine) PointerDown(x float64) {
	st := m.cell.Load()
	vp := st.Viewport
	t := vp.XToTime(x)
	margin := m.handlePx / vp.Zoom

	m.pointerStartX = x
	m.playbackAtStart = st.PlaybackTime

	if st.SelectedID != "" {
		if c, ok := st.Captions.Find(st.SelectedID); ok {
			if math.Abs(t-c.Start) <= margin {
				m.beginCaptionDrag(ModeResizeLeft, c)
				return
			}
			if math.Abs(t-c.End) <= margin {
				m.beginCaptionDrag(ModeResizeRight, c)
				return
			}
		}
	}

	for i := len(st.Captions) - 1; i >= 0; i-- {
		c := st.Captions[i]
		if t >= c.Start-margin && t <= c.End+margin {
			m.beginCaptionDrag(ModeMove, c)
			m.cell.Update(func(s *State) {
				s.SelectedID = c.ID
			})
			return
		}
	}

	m.mode = ModeScrub
	m.targetID = ""
	m.wasPlaying = m.transport.Playing()
	m.transport.Pause()
	m.cell.Update(func(s *State) {
		s.SelectedID = ""
		s.Playing = false
	})
}

func (m *Machine) beginCaptionDrag(mode Mode, c caption.Caption) {
	m.mode = mode
	m.targetID = c.ID
	m.capStart = c.Start
	m.capEnd = c.End
	m.transport.Pause()
	m.cell.Update(func(s *State) {
		s.Playing = false
	})
}

// PointerMove applies the drag. The time delta is always computed from
// the pointer-down position against the start-of-drag snapshot.
func (m *Machine) PointerMove(x float64) {
	if m.mode == ModeIdle {
		return
	}

	st := m.cell.Load()
	dt := (x - m.pointerStartX) / st.Viewport.Zoom

	switch m.mode {
	case ModeScrub:
		// sign inverted: the view is time-centered, dragging right
		// pans the content right, which moves "now" backwards
		t := m.playbackAtStart - dt
		if t < 0 {
			t = 0
		}
		m.transport.Seek(t)
		m.cell.Update(func(s *State) {
			s.PlaybackTime = t
			s.Viewport.CenterTime = t
		})

	case ModeMove:
		newStart := m.capStart + dt
		if newStart < 0 {
			newStart = 0
		}
		newEnd := m.capEnd + dt
		// keep the minimum duration even when start clamps at zero
		if newEnd < newStart+caption.MinDuration {
			newEnd = newStart + caption.MinDuration
		}
		m.applyBounds(newStart, newEnd)

	case ModeResizeLeft:
		newStart := m.capStart + dt
		if newStart < 0 {
			newStart = 0
		}
		if limit := m.capEnd - caption.ResizeMinDuration; newStart > limit {
			newStart = limit
		}
		m.applyBounds(newStart, m.capEnd)

	case ModeResizeRight:
		newEnd := m.capEnd + dt
		if floor := m.capStart + caption.ResizeMinDuration; newEnd < floor {
			newEnd = floor
		}
		m.applyBounds(m.capStart, newEnd)
	}
}

// every intermediate collection is emitted so the owner can observe
// each step, not just the final state
func (m *Machine) applyBounds(start, end float64) {
	var next caption.Track
	m.cell.Update(func(s *State) {
		out := s.Captions.Clone()
		for i := range out {
			if out[i].ID == m.targetID {
				out[i].Start = start
				out[i].End = end
			}
		}
		s.Captions = out
		next = out
	})
	if m.onCaptions != nil {
		m.onCaptions(next)
	}
}

// PointerUp ends the drag session. A scrub that interrupted playback
// resumes it.
func (m *Machine) PointerUp() {
	if m.mode == ModeScrub && m.wasPlaying {
		m.transport.Play()
		m.cell.Update(func(s *State) {
			s.Playing = true
		})
	}
	m.mode = ModeIdle
	m.targetID = ""
	m.wasPlaying = false
}

// PointerCancel is handled identically to PointerUp.
func (m *Machine) PointerCancel() {
	m.PointerUp()
}

// SetZoom applies a user zoom change, clamped to the configured range.
func (m *Machine) SetZoom(zoom float64) {
	m.cell.Update(func(s *State) {
		s.Viewport = s.Viewport.WithZoom(zoom, m.minZoom, m.maxZoom)
	})
}

// AddCaption creates a caption at the current playback time with the
// default duration, selects it, and emits the new collection.
func (m *Machine) AddCaption(text string) caption.Caption {
	var added caption.Caption
	var next caption.Track
	m.cell.Update(func(s *State) {
		s.Captions, added = s.Captions.Add(s.PlaybackTime, text)
		s.SelectedID = added.ID
		next = s.Captions
	})
	if m.onCaptions != nil {
		m.onCaptions(next)
	}
	return added
}

// DeleteSelected removes the selected caption, if any, and emits the
// new collection.
func (m *Machine) DeleteSelected() {
	var next caption.Track
	var changed bool
	m.cell.Update(func(s *State) {
		if s.SelectedID == "" {
			return
		}
		s.Captions = s.Captions.Delete(s.SelectedID)
		s.SelectedID = ""
		next = s.Captions
		changed = true
	})
	if changed && m.onCaptions != nil {
		m.onCaptions(next)
	}
}
