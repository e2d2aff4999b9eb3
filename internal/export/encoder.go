package export

import (
	"fmt"
	"image"
	"io"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/subtide/subtide/internal/config"
	ffmpegbin "github.com/subtide/subtide/internal/ffmpeg"
	"github.com/subtide/subtide/internal/video"
)

// Encoder consumes composited RGBA frames and produces the output
// file. Exactly one of Finish or Abort ends a session: Finish
// finalizes the file, Abort discards it. A failed Finish discards the
// file as well.
type Encoder interface {
	Write(frame *image.RGBA) error
	Finish() error
	Abort()
}

// ffmpegEncoder streams raw frames into an ffmpeg process over stdin
// and, best-effort, maps the source's original audio track.
type ffmpegEncoder struct {
	pw     *io.PipeWriter
	done   chan error
	output string
}

func newFFmpegEncoder(src string, info *video.Info, target config.Target, output string) (Encoder, error) {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()

	frames := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":    "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", info.Width, info.Height),
		"framerate": info.FrameRate,
	})

	outKwargs := ffmpeg.KwArgs{
		"c:v":     target.VideoCodec,
		"pix_fmt": "yuv420p",
		"f":       target.Container,
	}

	streams := []*ffmpeg.Stream{frames}
	if info.HasAudio {
		streams = append(streams, ffmpeg.Input(src).Audio())
		outKwargs["c:a"] = target.AudioCodec
		outKwargs["shortest"] = ""
	} else {
		outKwargs["an"] = ""
	}

	done := make(chan error, 1)
	go func() {
		err := ffmpeg.Output(streams, output, outKwargs).
			OverWriteOutput().
			WithInput(pr).
			SetFfmpegPath(ffmpegPath).
			Run()
		// an early process exit must fail pending writes, not strand them
		pr.CloseWithError(err)
		done <- err
	}()

	return &ffmpegEncoder{pw: pw, done: done, output: output}, nil
}

func (e *ffmpegEncoder) Write(frame *image.RGBA) error {
	if _, err := e.pw.Write(frame.Pix); err != nil {
		return fmt.Errorf("encoder write failed: %w", err)
	}
	return nil
}

func (e *ffmpegEncoder) Finish() error {
	e.pw.Close()
	if err := <-e.done; err != nil {
		_ = os.Remove(e.output)
		return fmt.Errorf("encoder failed: %w", err)
	}
	return nil
}

// Abort kills the encoder via the broken pipe and removes whatever
// partial file it left behind.
func (e *ffmpegEncoder) Abort() {
	e.pw.CloseWithError(io.ErrClosedPipe)
	<-e.done
	_ = os.Remove(e.output)
}
