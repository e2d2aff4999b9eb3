package export

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"

	"github.com/subtide/subtide/internal/caption"
	"github.com/subtide/subtide/internal/config"
	"github.com/subtide/subtide/internal/logging"
	"github.com/subtide/subtide/internal/video"
)

type fakeSource struct {
	frames int
	fps    float64
	next   int
	closed bool
}

func (f *fakeSource) Next() (*image.RGBA, float64, error) {
	if f.next >= f.frames {
		return nil, 0, io.EOF
	}
	i := f.next
	f.next++
	return image.NewRGBA(image.Rect(0, 0, 8, 8)), float64(i) / f.fps, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

type fakeEncoder struct {
	writes   int
	finished bool
	aborted  bool
	onWrite  func(n int)
}

func (f *fakeEncoder) Write(frame *image.RGBA) error {
	f.writes++
	if f.onWrite != nil {
		f.onWrite(f.writes)
	}
	return nil
}

func (f *fakeEncoder) Finish() error {
	f.finished = true
	return nil
}

func (f *fakeEncoder) Abort() {
	f.aborted = true
}

func allSupported() *fakeProbe {
	return &fakeProbe{supported: map[string]bool{"mp4": true, "webm": true, "matroska": true}}
}

func testSession(probe Probe, onProgress func(float64)) Session {
	return Session{
		Source:     "in.mp4",
		Output:     "out.mp4",
		Captions:   caption.Track{{ID: "a", Start: 0.5, End: 1.5, Text: "hi"}},
		Style:      caption.DefaultStyle(),
		Targets:    config.Default().Export.Targets,
		Probe:      probe,
		OnProgress: onProgress,
	}
}

func testController(src *fakeSource, enc *fakeEncoder) *Controller {
	c := NewController(logging.NewNop())
	c.probeInfo = func(ctx context.Context, path string) (*video.Info, error) {
		return &video.Info{
			Path:      path,
			Duration:  float64(src.frames) / src.fps,
			Width:     8,
			Height:    8,
			FrameRate: src.fps,
			HasAudio:  true,
		}, nil
	}
	c.openSource = func(s Session, info *video.Info) (FrameSource, error) {
		return src, nil
	}
	c.newEncoder = func(s Session, target config.Target, info *video.Info) (Encoder, error) {
		return enc, nil
	}
	return c
}

func TestControllerRunsToCompletion(t *testing.T) {
	src := &fakeSource{frames: 48, fps: 24}
	enc := &fakeEncoder{}
	c := testController(src, enc)

	var reported []float64
	err := c.Start(context.Background(), testSession(allSupported(), func(p float64) {
		reported = append(reported, p)
	}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if c.Status() != StatusCompleted {
		t.Errorf("status = %v, want StatusCompleted", c.Status())
	}
	if c.Progress() != 1 {
		t.Errorf("progress = %v, want 1", c.Progress())
	}
	if enc.writes != 48 {
		t.Errorf("encoder saw %d frames, want 48", enc.writes)
	}
	if !enc.finished || enc.aborted {
		t.Errorf("finished = %v, aborted = %v; want finished only", enc.finished, enc.aborted)
	}
	if !src.closed {
		t.Error("frame source was not closed")
	}

	if len(reported) == 0 || reported[len(reported)-1] != 1 {
		t.Fatalf("progress reports must end at 1, got %v", reported)
	}
	for i := 1; i < len(reported); i++ {
		if reported[i] < reported[i-1] {
			t.Fatalf("progress went backwards at report %d: %v", i, reported)
		}
	}
}

func TestControllerCancelDiscardsAndReturnsToIdle(t *testing.T) {
	src := &fakeSource{frames: 1000, fps: 24}
	enc := &fakeEncoder{}
	c := testController(src, enc)

	enc.onWrite = func(n int) {
		if n == 3 {
			c.Cancel()
		}
	}

	err := c.Start(context.Background(), testSession(allSupported(), nil))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if c.Status() != StatusIdle {
		t.Errorf("status after cancel = %v, want StatusIdle", c.Status())
	}
	if !enc.aborted {
		t.Error("cancellation must abort the encoder")
	}
	if enc.finished {
		t.Error("cancelled session must not finalize the output")
	}
	if enc.writes >= src.frames {
		t.Error("cancellation was not observed before the source drained")
	}
}

func TestControllerRejectsConcurrentStart(t *testing.T) {
	src := &fakeSource{frames: 10, fps: 24}
	enc := &fakeEncoder{}
	c := testController(src, enc)

	var second error
	enc.onWrite = func(n int) {
		if n == 1 {
			second = c.Start(context.Background(), testSession(allSupported(), nil))
		}
	}

	if err := c.Start(context.Background(), testSession(allSupported(), nil)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !errors.Is(second, ErrExportActive) {
		t.Errorf("expected ErrExportActive for the overlapping start, got %v", second)
	}

	// the first session finished, so a fresh start is accepted again
	src2 := &fakeSource{frames: 2, fps: 24}
	c2 := testController(src2, &fakeEncoder{})
	if err := c2.Start(context.Background(), testSession(allSupported(), nil)); err != nil {
		t.Errorf("fresh start after completion failed: %v", err)
	}
}

func TestControllerNegotiationFailure(t *testing.T) {
	src := &fakeSource{frames: 10, fps: 24}
	enc := &fakeEncoder{}
	c := testController(src, enc)

	err := c.Start(context.Background(), testSession(&fakeProbe{}, nil))
	if !errors.Is(err, ErrNoSupportedTarget) {
		t.Fatalf("expected ErrNoSupportedTarget, got %v", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("status = %v, want StatusIdle after a failed start", c.Status())
	}
	if enc.writes != 0 {
		t.Error("no frames may be written when negotiation fails")
	}
}

func TestControllerProbeFailure(t *testing.T) {
	c := testController(&fakeSource{frames: 1, fps: 24}, &fakeEncoder{})
	probeErr := errors.New("no such file")
	c.probeInfo = func(ctx context.Context, path string) (*video.Info, error) {
		return nil, probeErr
	}

	err := c.Start(context.Background(), testSession(allSupported(), nil))
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected the probe error to surface, got %v", err)
	}
	if c.Status() != StatusIdle {
		t.Errorf("status = %v, want StatusIdle", c.Status())
	}
}
