package export

import (
	"errors"
	"testing"

	"github.com/subtide/subtide/internal/config"
)

type fakeProbe struct {
	supported map[string]bool
}

func (f *fakeProbe) Supports(t config.Target) bool {
	return f.supported[t.Container]
}

func TestNegotiateFirstSupportedWins(t *testing.T) {
	prefs := []config.Target{
		{Container: "mp4", VideoCodec: "libx264", AudioCodec: "aac"},
		{Container: "webm", VideoCodec: "libvpx-vp9", AudioCodec: "libopus"},
		{Container: "matroska", VideoCodec: "libx264", AudioCodec: "aac"},
	}

	tests := []struct {
		name      string
		supported map[string]bool
		want      string
	}{
		{"all supported", map[string]bool{"mp4": true, "webm": true, "matroska": true}, "mp4"},
		{"first missing", map[string]bool{"webm": true, "matroska": true}, "webm"},
		{"only last", map[string]bool{"matroska": true}, "matroska"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(prefs, &fakeProbe{supported: tt.supported})
			if err != nil {
				t.Fatalf("Negotiate failed: %v", err)
			}
			if got.Container != tt.want {
				t.Errorf("negotiated %s, want %s", got.Container, tt.want)
			}
		})
	}
}

func TestNegotiateNoneSupported(t *testing.T) {
	prefs := []config.Target{
		{Container: "mp4", VideoCodec: "libx264", AudioCodec: "aac"},
	}
	_, err := Negotiate(prefs, &fakeProbe{})
	if !errors.Is(err, ErrNoSupportedTarget) {
		t.Errorf("expected ErrNoSupportedTarget, got %v", err)
	}
}

func TestNegotiateEmptyPreferenceList(t *testing.T) {
	_, err := Negotiate(nil, &fakeProbe{supported: map[string]bool{"mp4": true}})
	if !errors.Is(err, ErrNoSupportedTarget) {
		t.Errorf("expected ErrNoSupportedTarget, got %v", err)
	}
}
