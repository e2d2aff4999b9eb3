package timeline

import (
	"sync"

	"github.com/subtide/subtide/internal/audio"
	"github.com/subtide/subtide/internal/caption"
)

// State is the shared snapshot read by the painter every frame and
// written by the interaction machine or the external owner. Writers
// must store fresh Track slices rather than mutating one in place, so
// a loaded State is always internally consistent.
type State struct {
	Viewport     Viewport
	Captions     caption.Track
	SelectedID   string
	PlaybackTime float64
	Playing      bool
	Waveform     *audio.SampleBuffer
}

// Cell holds the latest State for single-writer, many-reader access.
// The render loop reads through it out-of-band, so redraw cadence is
// independent of the edit layer's update cadence.
type Cell struct {
	mu sync.RWMutex
	s  State
}

func NewCell(s State) *Cell {
	return &Cell{s: s}
}

func (c *Cell) Load() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s
}

func (c *Cell) Store(s State) {
	c.mu.Lock()
	c.s = s
	c.mu.Unlock()
}

// Update applies fn to the current state under the write lock. Drag
// mutations go through here so they are visible to the very next
// redraw.
func (c *Cell) Update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.s)
	c.mu.Unlock()
}
