package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/subtide/subtide/internal/ffmpeg"
)

// SampleBuffer holds one channel of decoded audio. Read-only to the
// timeline; the rasterizer indexes Samples directly.
type SampleBuffer struct {
	SampleRate float64
	Samples    []float64
}

func (b *SampleBuffer) Len() int64 {
	return int64(len(b.Samples))
}

func (b *SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / b.SampleRate
}

// Decode produces a mono sample buffer from any media file ffmpeg can
// read. WAV input short-circuits through a native decoder.
func Decode(ctx context.Context, path string, sampleRate int) (*SampleBuffer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return decodeWAV(path)
	}
	return decodePCM(ctx, path, sampleRate)
}

// decodePCM pipes mono 32-bit float PCM out of ffmpeg and parses it.
func decodePCM(ctx context.Context, path string, sampleRate int) (*SampleBuffer, error) {
	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	err = ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"format": "f32le",
			"acodec": "pcm_f32le",
			"ac":     1,
			"ar":     sampleRate,
			"vn":     "",
			"v":      "error",
		}).
		WithOutput(&out).
		SetFfmpegPath(ffmpegPath).
		Run()
	if err != nil {
		return nil, fmt.Errorf("pcm decode failed: %w", err)
	}

	return &SampleBuffer{
		SampleRate: float64(sampleRate),
		Samples:    samplesFromF32LE(out.Bytes()),
	}, nil
}

func samplesFromF32LE(data []byte) []float64 {
	n := len(data) / 4
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of an audio/video file in seconds
func GetDuration(filePath string) (float64, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return seconds, nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	audioExts := map[string]bool{
		".mp3":  true,
		".wav":  true,
		".aac":  true,
		".flac": true,
		".ogg":  true,
		".m4a":  true,
		".wma":  true,
		".aiff": true,
	}
	return audioExts[ext]
}

// checks if the file is either audio or video
func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
