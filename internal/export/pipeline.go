package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/subtide/subtide/internal/caption"
	"github.com/subtide/subtide/internal/config"
	"github.com/subtide/subtide/internal/logging"
	"github.com/subtide/subtide/internal/video"
)

// export status for UI consumption
type Status int

const (
	StatusIdle Status = iota
	StatusRendering
	StatusCompleted
)

// ErrExportActive is returned when Start is called while a session is
// rendering; the active session must be cancelled first.
var ErrExportActive = errors.New("an export session is already active")

// Session describes one export run.
type Session struct {
	Source     string
	Output     string
	Captions   caption.Track
	Style      caption.Style
	Targets    []config.Target
	Probe      Probe
	OnProgress func(float64)
}

// FrameSource yields decoded frames in display order. Each Next call
// corresponds to one displayed frame.
type FrameSource interface {
	Next() (*image.RGBA, float64, error)
	Close() error
}

// Controller owns the encoder and output stream for the duration of
// one export session: idle -> rendering -> completed, or back to idle
// on cancellation.
type Controller struct {
	log *logging.Logger

	mu       sync.Mutex
	status   Status
	progress float64
	cancel   context.CancelFunc

	// replaced in tests
	probeInfo  func(ctx context.Context, path string) (*video.Info, error)
	openSource func(s Session, info *video.Info) (FrameSource, error)
	newEncoder func(s Session, target config.Target, info *video.Info) (Encoder, error)
}

func NewController(log *logging.Logger) *Controller {
	return &Controller{
		log:       log,
		probeInfo: video.Probe,
		openSource: func(s Session, info *video.Info) (FrameSource, error) {
			return video.NewFrameReader(s.Source, info)
		},
		newEncoder: func(s Session, target config.Target, info *video.Info) (Encoder, error) {
			return newFFmpegEncoder(s.Source, info, target, s.Output)
		},
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Progress is the fraction of the source duration already encoded,
// in [0, 1].
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Cancel stops a rendering session. Observable within one frame; a
// no-op outside of rendering.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusRendering && c.cancel != nil {
		c.cancel()
	}
}

// Start runs an export session to completion, blocking the caller.
// Cancellation (via ctx or Cancel) discards the partial output and
// returns the context error with the controller back at idle.
func (c *Controller) Start(ctx context.Context, s Session) error {
	c.mu.Lock()
	if c.status == StatusRendering {
		c.mu.Unlock()
		return ErrExportActive
	}
	ctx, cancel := context.WithCancel(ctx)
	c.status = StatusRendering
	c.progress = 0
	c.cancel = cancel
	c.mu.Unlock()

	err := c.run(ctx, s)

	c.mu.Lock()
	if err != nil {
		c.status = StatusIdle
	} else {
		c.status = StatusCompleted
		c.progress = 1
	}
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	return err
}

func (c *Controller) run(ctx context.Context, s Session) error {
	info, err := c.probeInfo(ctx, s.Source)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	target, err := Negotiate(s.Targets, s.Probe)
	if err != nil {
		return err
	}
	c.log.Infow("Negotiated output target",
		"container", target.Container,
		"video_codec", target.VideoCodec,
		"audio_codec", target.AudioCodec,
		"has_audio", info.HasAudio,
	)
	if !info.HasAudio {
		c.log.Warnw("No audio track in source, exporting video only")
	}

	comp := NewCompositor(s.Captions, s.Style)

	source, err := c.openSource(s, info)
	if err != nil {
		return fmt.Errorf("failed to open frame source: %w", err)
	}
	defer source.Close()

	enc, err := c.newEncoder(s, target, info)
	if err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			enc.Abort()
			return ctx.Err()
		default:
		}

		frame, t, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			enc.Abort()
			return err
		}

		if err := comp.Composite(frame, t); err != nil {
			enc.Abort()
			return fmt.Errorf("compositing failed at t=%.3f: %w", t, err)
		}
		if err := enc.Write(frame); err != nil {
			enc.Abort()
			return err
		}

		c.setProgress(t, info.Duration, s.OnProgress)
	}

	if err := enc.Finish(); err != nil {
		return err
	}
	if s.OnProgress != nil {
		s.OnProgress(1)
	}
	return nil
}

func (c *Controller) setProgress(t, duration float64, onProgress func(float64)) {
	p := 0.0
	if duration > 0 {
		p = t / duration
	}
	if p > 1 {
		p = 1
	}

	c.mu.Lock()
	c.progress = p
	c.mu.Unlock()

	if onProgress != nil {
		onProgress(p)
	}
}
