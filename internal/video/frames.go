package video

import (
	"fmt"
	"image"
	"io"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/subtide/subtide/internal/ffmpeg"
)

// FrameReader decodes a video into raw RGBA frames, one Next call per
// displayed frame, in display order. The decoder runs behind a pipe so
// per-frame memory stays bounded at one frame.
type FrameReader struct {
	info  *Info
	pr    *io.PipeReader
	buf   []byte
	index int
	done  chan error
}

func NewFrameReader(path string, info *Info) (*FrameReader, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)

	go func() {
		err := ffmpeg.Input(path).
			Output("pipe:", ffmpeg.KwArgs{
				"format":  "rawvideo",
				"pix_fmt": "rgba",
				"v":       "error",
			}).
			WithOutput(pw).
			SetFfmpegPath(ffmpegPath).
			Run()
		pw.CloseWithError(err)
		done <- err
	}()

	return &FrameReader{
		info: info,
		pr:   pr,
		buf:  make([]byte, info.Width*info.Height*4),
		done: done,
	}, nil
}

// Next returns the next frame and its timestamp in seconds. io.EOF
// signals the end of the stream.
func (r *FrameReader) Next() (*image.RGBA, float64, error) {
	if _, err := io.ReadFull(r.pr, r.buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("frame read failed: %w", err)
	}

	pix := make([]byte, len(r.buf))
	copy(pix, r.buf)

	frame := &image.RGBA{
		Pix:    pix,
		Stride: r.info.Width * 4,
		Rect:   image.Rect(0, 0, r.info.Width, r.info.Height),
	}

	t := float64(r.index) / r.info.FrameRate
	r.index++

	return frame, t, nil
}

// Close tears down the decoder. Safe to call mid-stream; the decoder
// exits on the broken pipe.
func (r *FrameReader) Close() error {
	r.pr.CloseWithError(io.ErrClosedPipe)
	<-r.done
	return nil
}
