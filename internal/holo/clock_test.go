package holo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockAdvancesByFixedStep(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(60, log)

	for i := 0; i < 3; i++ {
		c.Tick()
	}
	assert.InDelta(t, 3.0/60.0, c.Now(), 1e-12)
}

func TestClockDefaultRate(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(0, log)
	assert.InDelta(t, DefaultClockRate, c.Rate(), 1e-12)
}

func TestClockFanOutOrder(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(60, log)

	var order []string
	c.Subscribe(func(now, dt float64) { order = append(order, "first") })
	c.Subscribe(func(now, dt float64) { order = append(order, "second") })
	c.Subscribe(nil) // ignored

	c.Tick()
	require.Equal(t, []string{"first", "second"}, order)
}

func TestClockPassesTimeAndStep(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(50, log)

	var gotNow, gotDt float64
	c.Subscribe(func(now, dt float64) { gotNow, gotDt = now, dt })

	c.Tick()
	assert.InDelta(t, 0.02, gotNow, 1e-12)
	assert.InDelta(t, 0.02, gotDt, 1e-12)
}

func TestClockStopIsPermanent(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(60, log)

	ticks := 0
	c.Subscribe(func(now, dt float64) { ticks++ })

	c.Tick()
	c.Stop()
	c.Stop() // idempotent
	c.Tick()
	assert.Equal(t, 1, ticks, "no tick may fire after stop")
	assert.InDelta(t, 1.0/60.0, c.Now(), 1e-12)
	assert.True(t, c.Stopped())

	// A stopped clock cannot be restarted.
	c.Start()
	c.Tick()
	assert.Equal(t, 1, ticks)
}

func TestClockStartTwiceIsNoOp(t *testing.T) {
	log, _ := newTestLogger()
	c := NewClock(60, log)

	ticks := 0
	c.Subscribe(func(now, dt float64) { ticks++ })

	c.Start()
	c.Start()
	c.Tick()
	assert.Equal(t, 1, ticks)
}
