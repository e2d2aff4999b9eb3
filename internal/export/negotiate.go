package export

import (
	"bufio"
	"bytes"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/subtide/subtide/internal/config"
	ffmpegbin "github.com/subtide/subtide/internal/ffmpeg"
)

// ErrNoSupportedTarget is the unsupported-capability fault: none of the
// preferred (container, codec) pairs is available. Reported to the
// user, never retried.
var ErrNoSupportedTarget = errors.New("no supported output container/codec combination")

// Probe answers whether one output target is supported by the encoding
// backend.
type Probe interface {
	Supports(t config.Target) bool
}

// Negotiate walks the preference list, most preferred first, and
// returns the first supported target.
func Negotiate(prefs []config.Target, probe Probe) (config.Target, error) {
	for _, t := range prefs {
		if probe.Supports(t) {
			return t, nil
		}
	}
	return config.Target{}, ErrNoSupportedTarget
}

// FFmpegProbe asks the local ffmpeg build for its muxers and encoders.
// The binary is queried once and the answer cached for the process.
type FFmpegProbe struct {
	once     sync.Once
	encoders map[string]bool
	muxers   map[string]bool
	err      error
}

func NewFFmpegProbe() *FFmpegProbe {
	return &FFmpegProbe{}
}

func (p *FFmpegProbe) Supports(t config.Target) bool {
	p.load()
	if p.err != nil {
		return false
	}
	if !p.muxers[t.Container] || !p.encoders[t.VideoCodec] {
		return false
	}
	if t.AudioCodec != "" && !p.encoders[t.AudioCodec] {
		return false
	}
	return true
}

func (p *FFmpegProbe) load() {
	p.once.Do(func() {
		ffmpegPath, err := ffmpegbin.FFmpegPath()
		if err != nil {
			p.err = err
			return
		}
		p.encoders, p.err = queryCapability(ffmpegPath, "-encoders")
		if p.err != nil {
			return
		}
		p.muxers, p.err = queryCapability(ffmpegPath, "-muxers")
	})
}

// queryCapability parses ffmpeg's listing output: a header terminated
// by a dashed line, then one " flags name description" row per entry.
func queryCapability(ffmpegPath, flag string) (map[string]bool, error) {
	cmd := exec.Command(ffmpegPath, "-hide_banner", flag)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	names := make(map[string]bool)
	inBody := false
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		line := scanner.Text()
		if !inBody {
			if strings.Contains(line, "---") {
				inBody = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names[fields[1]] = true
		}
	}
	return names, scanner.Err()
}
