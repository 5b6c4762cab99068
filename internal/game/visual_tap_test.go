package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// constStreamer emits a fixed amplitude on both channels forever.
type constStreamer struct {
	amp float64
}

func (s constStreamer) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i][0] = s.amp
		samples[i][1] = s.amp
	}
	return len(samples), true
}

func (s constStreamer) Err() error { return nil }

func TestVisualTapRMSOfConstantSignal(t *testing.T) {
	tap := NewVisualTap(constStreamer{amp: 0.5}, 1024)

	buf := make([][2]float64, 512)
	tap.Stream(buf)

	assert.InDelta(t, 0.5, tap.RMS(512), 1e-9)
}

func TestVisualTapRMSBeforeAnyAudioIsZero(t *testing.T) {
	tap := NewVisualTap(constStreamer{amp: 1}, 256)
	assert.InDelta(t, 0.0, tap.RMS(128), 1e-9)
}

func TestVisualTapRingWraps(t *testing.T) {
	tap := NewVisualTap(constStreamer{amp: 0.25}, 64)

	buf := make([][2]float64, 100) // larger than the ring
	tap.Stream(buf)

	assert.InDelta(t, 0.25, tap.RMS(64), 1e-9)
	// Requests beyond the ring size clamp to the ring.
	assert.InDelta(t, 0.25, tap.RMS(10_000), 1e-9)
}
