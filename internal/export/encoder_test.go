package export

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/subtide/subtide/internal/config"
	"github.com/subtide/subtide/internal/video"
)

// a stand-in ffmpeg that exits immediately with a failure
func stubFFmpeg(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("failed to write stub binary: %v", err)
	}
	t.Setenv("SUBTIDE_FFMPEG_PATH", path)
	t.Setenv("SUBTIDE_FFPROBE_PATH", path)
	return path
}

func stubEncoder(t *testing.T, output string) Encoder {
	t.Helper()
	info := &video.Info{Width: 8, Height: 8, FrameRate: 24}
	target := config.Target{Container: "mp4", VideoCodec: "libx264"}
	enc, err := newFFmpegEncoder("in.mp4", info, target, output)
	if err != nil {
		t.Fatalf("failed to start encoder: %v", err)
	}
	return enc
}

// when the encoder process dies mid-session, Write must return an
// error instead of blocking on the pipe forever
func TestEncoderWriteFailsFastAfterProcessExit(t *testing.T) {
	stubFFmpeg(t)
	enc := stubEncoder(t, filepath.Join(t.TempDir(), "out.mp4"))

	frame := image.NewRGBA(image.Rect(0, 0, 8, 8))
	errCh := make(chan error, 1)
	go func() {
		var err error
		for i := 0; i < 10000 && err == nil; i++ {
			err = enc.Write(frame)
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected a write error after the encoder process exited")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Write blocked after the encoder process exited")
	}
}

func TestEncoderFinishFailureRemovesPartialOutput(t *testing.T) {
	stubFFmpeg(t)
	output := filepath.Join(t.TempDir(), "out.mp4")
	enc := stubEncoder(t, output)

	// the file a real encoder would have partially written
	if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}

	if err := enc.Finish(); err == nil {
		t.Fatal("expected Finish to fail when the encoder process failed")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("failed finalize must remove the partial output file")
	}
}

func TestEncoderAbortRemovesPartialOutput(t *testing.T) {
	stubFFmpeg(t)
	output := filepath.Join(t.TempDir(), "out.mp4")
	enc := stubEncoder(t, output)

	if err := os.WriteFile(output, []byte("partial"), 0o644); err != nil {
		t.Fatalf("failed to write output file: %v", err)
	}

	enc.Abort()
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("abort must remove the partial output file")
	}
}
