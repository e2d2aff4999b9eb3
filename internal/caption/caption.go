package caption

import (
	"github.com/google/uuid"
)

const (
	// MinDuration is the floor on end-start for any caption.
	MinDuration = 0.1

	// ResizeMinDuration is the tighter floor enforced while a resize
	// handle is being dragged.
	ResizeMinDuration = 0.2

	// DefaultDuration is the length of a caption created at the playhead.
	DefaultDuration = 2.0
)

// represents a single timed caption
type Caption struct {
	ID    string
	Start float64 // seconds
	End   float64 // seconds
	Text  string
}

// New creates a caption with clamped bounds and a fresh identifier.
func New(start, end float64, text string) Caption {
	start, end = clampBounds(start, end)
	return Caption{
		ID:    uuid.New().String(),
		Start: start,
		End:   end,
		Text:  text,
	}
}

func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// Contains reports whether t lies within [Start, End], inclusive.
func (c Caption) Contains(t float64) bool {
	return t >= c.Start && t <= c.End
}

// invalid bounds are corrected here, at the mutation boundary, never at
// render time
func clampBounds(start, end float64) (float64, float64) {
	if start < 0 {
		start = 0
	}
	if end < start+MinDuration {
		end = start + MinDuration
	}
	return start, end
}

// Track is the ordered caption collection. Overlap between captions is
// permitted. Mutating methods return a new slice so that a stored Track
// can be handed out as an immutable snapshot.
type Track []Caption

func (t Track) Clone() Track {
	out := make(Track, len(t))
	copy(out, t)
	return out
}

// Add appends a caption starting at the given time with the default
// duration and returns the new collection plus the created caption.
func (t Track) Add(at float64, text string) (Track, Caption) {
	c := New(at, at+DefaultDuration, text)
	out := t.Clone()
	return append(out, c), c
}

func (t Track) Delete(id string) Track {
	out := make(Track, 0, len(t))
	for _, c := range t {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func (t Track) Find(id string) (Caption, bool) {
	for _, c := range t {
		if c.ID == id {
			return c, true
		}
	}
	return Caption{}, false
}

func (t Track) SetText(id, text string) Track {
	out := t.Clone()
	for i := range out {
		if out[i].ID == id {
			out[i].Text = text
		}
	}
	return out
}

// SetBounds replaces a caption's interval, clamping at the boundary.
func (t Track) SetBounds(id string, start, end float64) Track {
	start, end = clampBounds(start, end)
	out := t.Clone()
	for i := range out {
		if out[i].ID == id {
			out[i].Start = start
			out[i].End = end
		}
	}
	return out
}
