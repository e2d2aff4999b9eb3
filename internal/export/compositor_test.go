package export

import (
	"image"
	"testing"

	"github.com/subtide/subtide/internal/caption"
)

func TestActiveCaption(t *testing.T) {
	track := caption.Track{
		{ID: "a", Start: 2, End: 4, Text: "first"},
		{ID: "b", Start: 3, End: 6, Text: "second"},
	}

	tests := []struct {
		t      float64
		wantID string
		wantOK bool
	}{
		{1.9, "", false},
		{2.0, "a", true},
		{3.5, "a", true}, // overlap: first match in collection order
		{4.0, "a", true},
		{4.1, "b", true},
		{6.0, "b", true},
		{6.1, "", false},
	}

	for _, tt := range tests {
		got, ok := ActiveCaption(track, tt.t)
		if ok != tt.wantOK {
			t.Errorf("ActiveCaption(%v): ok = %v, want %v", tt.t, ok, tt.wantOK)
			continue
		}
		if ok && got.ID != tt.wantID {
			t.Errorf("ActiveCaption(%v) = %s, want %s", tt.t, got.ID, tt.wantID)
		}
	}
}

func frameTouched(frame *image.RGBA) bool {
	for i := 3; i < len(frame.Pix); i += 4 {
		if frame.Pix[i] != 0 {
			return true
		}
	}
	return false
}

// only frames with 2 <= t <= 4 may receive text, at any sampling rate
func TestCompositeOnlyWithinActiveRange(t *testing.T) {
	track := caption.Track{{ID: "a", Start: 2, End: 4, Text: "hi"}}
	comp := NewCompositor(track, caption.DefaultStyle())

	const fps = 24.0
	for i := 0; i < int(10 * fps); i++ {
		ts := float64(i) / fps
		frame := image.NewRGBA(image.Rect(0, 0, 160, 120))

		if err := comp.Composite(frame, ts); err != nil {
			t.Fatalf("Composite(t=%v) failed: %v", ts, err)
		}

		active := ts >= 2 && ts <= 4
		if got := frameTouched(frame); got != active {
			t.Fatalf(
				"frame at t=%v: drawn=%v, want drawn=%v",
				ts, got, active,
			)
		}
	}
}

func TestCompositeNoCaptionsLeavesFrameUntouched(t *testing.T) {
	comp := NewCompositor(nil, caption.DefaultStyle())
	frame := image.NewRGBA(image.Rect(0, 0, 64, 64))

	if err := comp.Composite(frame, 1.0); err != nil {
		t.Fatalf("Composite failed: %v", err)
	}
	if frameTouched(frame) {
		t.Error("frame without an active caption must pass through untouched")
	}
}
