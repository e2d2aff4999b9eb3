package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Timeline holds appearance and interaction tuning for the waveform
// timeline. All fields have working defaults; a config file only
// overrides what it names.
type Timeline struct {
	MinZoom          float64 `yaml:"min_zoom"`           // pixels per second
	MaxZoom          float64 `yaml:"max_zoom"`           // pixels per second
	DefaultZoom      float64 `yaml:"default_zoom"`       // pixels per second
	RefreshRate      float64 `yaml:"refresh_rate"`       // redraws per second
	HandlePixelWidth float64 `yaml:"handle_pixel_width"` // resize handle hit region
	WaveformFraction float64 `yaml:"waveform_fraction"`  // of half the canvas height
	NoiseFloor       float64 `yaml:"noise_floor"`        // below this a bucket is silence
	LabelEveryZoom   float64 `yaml:"label_every_zoom"`   // zoom at which every grid line is labeled
	SampleRate       int     `yaml:"sample_rate"`        // waveform decode rate
}

// Target is one (container, codec) candidate for export.
type Target struct {
	Container  string `yaml:"container"`
	VideoCodec string `yaml:"video_codec"`
	AudioCodec string `yaml:"audio_codec"`
}

// Export holds the ordered output preference list, most preferred first.
type Export struct {
	Targets []Target `yaml:"targets"`
}

type Config struct {
	Timeline Timeline `yaml:"timeline"`
	Export   Export   `yaml:"export"`
}

func Default() Config {
	return Config{
		Timeline: Timeline{
			MinZoom:          10,
			MaxZoom:          500,
			DefaultZoom:      100,
			RefreshRate:      60,
			HandlePixelWidth: 6,
			WaveformFraction: 0.9,
			NoiseFloor:       0.01,
			LabelEveryZoom:   150,
			SampleRate:       16000,
		},
		Export: Export{
			Targets: []Target{
				{Container: "mp4", VideoCodec: "libx264", AudioCodec: "aac"},
				{Container: "webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus"},
				{Container: "matroska", VideoCodec: "libx264", AudioCodec: "aac"},
			},
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	t := c.Timeline
	if t.MinZoom <= 0 || t.MaxZoom < t.MinZoom {
		return fmt.Errorf("invalid zoom range [%v, %v]", t.MinZoom, t.MaxZoom)
	}
	if t.RefreshRate <= 0 {
		return fmt.Errorf("refresh_rate must be positive, got %v", t.RefreshRate)
	}
	if t.WaveformFraction <= 0 || t.WaveformFraction >= 1 {
		return fmt.Errorf("waveform_fraction must be in (0,1), got %v", t.WaveformFraction)
	}
	if len(c.Export.Targets) == 0 {
		return fmt.Errorf("export.targets must not be empty")
	}
	return nil
}
