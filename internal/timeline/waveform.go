package timeline

import (
	"math"

	"github.com/subtide/subtide/internal/audio"
)

// Bucket is a fixed-width, absolute-grid group of samples reduced to a
// min/max amplitude pair. X and Width are pixel-snapped screen
// coordinates; Index is the bucket's position on the absolute sample
// grid, independent of the viewport.
type Bucket struct {
	Index int64
	X     int
	Width int
	Min   float64
	Max   float64
}

// at most this many samples are inspected per bucket, whatever the
// bucket width, so per-frame cost stays bounded at high zoom-out
const maxSamplesPerBucket = 40

// Rasterize reduces the visible slice of the sample buffer to one
// min/max bucket per on-screen pixel column. Buckets live on an
// absolute sample grid (bucketIndex * bucketSamples), so panning by a
// fraction of a bucket moves their screen projection without changing
// their contents.
func Rasterize(buf *audio.SampleBuffer, vp Viewport) []Bucket {
	if buf == nil || len(buf.Samples) == 0 || vp.Zoom <= 0 || vp.PixelWidth <= 0 {
		return nil
	}

	samplesPerPixel := buf.SampleRate / vp.Zoom
	bucketSamples := int64(math.Ceil(samplesPerPixel))
	if bucketSamples < 1 {
		bucketSamples = 1
	}

	// visible range plus one bucket of overscan on each side
	leftSample := int64(math.Floor(vp.XToTime(0) * buf.SampleRate))
	rightSample := int64(math.Ceil(vp.XToTime(float64(vp.PixelWidth)) * buf.SampleRate))
	first := floorDiv(leftSample, bucketSamples) - 1
	last := floorDiv(rightSample, bucketSamples) + 1

	total := buf.Len()
	out := make([]Bucket, 0, last-first+1)

	for b := first; b <= last; b++ {
		s0 := b * bucketSamples
		s1 := s0 + bucketSamples

		lo, hi := s0, s1
		if lo < 0 {
			lo = 0
		}
		if hi > total {
			hi = total
		}
		if lo >= hi {
			continue
		}

		stride := (hi - lo) / maxSamplesPerBucket
		if stride < 1 {
			stride = 1
		}

		mn := buf.Samples[lo]
		mx := mn
		for i := lo + stride; i < hi; i += stride {
			v := buf.Samples[i]
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
		}

		// left edge rounds down, right edge rounds up: adjacent
		// buckets tile with no gap
		x0 := int(math.Floor(vp.TimeToX(float64(s0) / buf.SampleRate)))
		x1 := int(math.Ceil(vp.TimeToX(float64(s1) / buf.SampleRate)))
		if x1 <= x0 {
			x1 = x0 + 1
		}

		out = append(out, Bucket{
			Index: b,
			X:     x0,
			Width: x1 - x0,
			Min:   mn,
			Max:   mx,
		})
	}

	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
