package timeline

import (
	"context"
	"time"
)

// Clock delivers display ticks. The default is a wall ticker at the
// configured refresh rate; hosts with a real vsync signal can supply
// their own.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

type tickerClock struct {
	t *time.Ticker
}

func (c tickerClock) C() <-chan time.Time { return c.t.C }
func (c tickerClock) Stop()               { c.t.Stop() }

func NewTickerClock(refreshRate float64) Clock {
	if refreshRate <= 0 {
		refreshRate = 60
	}
	return tickerClock{time.NewTicker(time.Duration(float64(time.Second) / refreshRate))}
}

// Loop schedules one paint per display tick, reading the latest state
// through the cell. Painting is never driven by state changes.
//
// Loop is the embedding surface for hosts with a live view; one-shot
// rendering calls Painter.Render directly instead.
type Loop struct {
	cell  *Cell
	clock Clock
	paint func(State)
}

func NewLoop(cell *Cell, clock Clock, paint func(State)) *Loop {
	return &Loop{cell: cell, clock: clock, paint: paint}
}

// Run paints until ctx is done. Blocking; callers run it on its own
// goroutine.
func (l *Loop) Run(ctx context.Context) {
	defer l.clock.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.clock.C():
			l.paint(l.cell.Load())
		}
	}
}
