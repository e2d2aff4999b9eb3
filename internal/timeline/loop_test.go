package timeline

import (
	"context"
	"testing"
	"time"

	"github.com/subtide/subtide/internal/caption"
)

type fakeClock struct {
	ch chan time.Time
}

func (f *fakeClock) C() <-chan time.Time { return f.ch }
func (f *fakeClock) Stop()               {}

func TestLoopPaintsOncePerTick(t *testing.T) {
	cell := NewCell(State{Viewport: Viewport{Zoom: 100, PixelWidth: 10, PixelHeight: 10}})
	clock := &fakeClock{ch: make(chan time.Time)}

	painted := make(chan State, 8)
	loop := NewLoop(cell, clock, func(s State) {
		painted <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		clock.ch <- time.Now()
		select {
		case <-painted:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for a paint")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}

// the loop reads through the cell, so writes land in the next paint
// without any notification
func TestLoopObservesOutOfBandWrites(t *testing.T) {
	cell := NewCell(State{Viewport: Viewport{Zoom: 100, PixelWidth: 10, PixelHeight: 10}})
	clock := &fakeClock{ch: make(chan time.Time)}

	painted := make(chan State, 1)
	loop := NewLoop(cell, clock, func(s State) {
		painted <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	cell.Update(func(s *State) {
		s.PlaybackTime = 42
	})

	clock.ch <- time.Now()
	got := <-painted
	if got.PlaybackTime != 42 {
		t.Errorf("expected the paint to see playback time 42, got %v", got.PlaybackTime)
	}
}

func TestCellSnapshotIsolation(t *testing.T) {
	track := caption.Track{{ID: "a", Start: 1, End: 2, Text: "x"}}
	cell := NewCell(State{Captions: track})

	snap := cell.Load()

	cell.Update(func(s *State) {
		s.Captions = s.Captions.SetText("a", "changed")
	})

	if snap.Captions[0].Text != "x" {
		t.Error("earlier snapshot was mutated by a later update")
	}
	if cell.Load().Captions[0].Text != "changed" {
		t.Error("update not visible to a later load")
	}
}

func TestNewTickerClockDefaultsOnBadRate(t *testing.T) {
	clock := NewTickerClock(0)
	defer clock.Stop()
	select {
	case <-clock.C():
	case <-time.After(time.Second):
		t.Fatal("expected a tick from the default rate")
	}
}
