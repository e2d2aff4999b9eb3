package ffmpeg

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// Binary resolution is done once per process: explicit env overrides
// win, then PATH lookup.
type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = ensure()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func ensure() (BinaryPaths, error) {
	ffmpegPath := os.Getenv("SUBTIDE_FFMPEG_PATH")
	ffprobePath := os.Getenv("SUBTIDE_FFPROBE_PATH")

	if ffmpegPath == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}

	if ffmpegPath == "" || ffprobePath == "" {
		return BinaryPaths{}, errors.New(
			"ffmpeg/ffprobe not found; install ffmpeg or set SUBTIDE_FFMPEG_PATH and SUBTIDE_FFPROBE_PATH",
		)
	}

	return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}
