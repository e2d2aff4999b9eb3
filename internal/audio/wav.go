package audio

import (
	"fmt"
	"os"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// decodeWAV reads a WAV file without shelling out to ffmpeg. Stereo
// input is averaged down to one channel.
func decodeWAV(path string) (*SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	streamer, format, err = wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("wav decode failed: %w", err)
	}
	defer streamer.Close()

	buf := &SampleBuffer{SampleRate: float64(format.SampleRate)}
	frames := make([][2]float64, 2048)
	for {
		n, ok := streamer.Stream(frames)
		for i := 0; i < n; i++ {
			buf.Samples = append(buf.Samples, (frames[i][0]+frames[i][1])/2)
		}
		if !ok {
			break
		}
	}

	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("wav stream failed: %w", err)
	}

	return buf, nil
}
