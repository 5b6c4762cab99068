package holo

import "log/slog"

// DefaultClockRate is the target tick rate in Hz when the host does not
// configure one. It matches the surface's frame rate.
const DefaultClockRate = 60.0

// FrameFunc is a per-frame callback. now is the clock's monotonic accumulated
// time in seconds, dt the fixed step that produced this tick.
type FrameFunc func(now, dt float64)

// Clock is the engine's single fixed-rate animation timer. It does not own a
// goroutine: the thread that owns the composited surface calls Tick once per
// frame (the surface's frame callback is the periodic source), so every
// subscriber runs on that thread and no locking is needed between mutation
// and tick.
//
// A clock is running from construction until Stop. Start after Stop is a
// no-op; no tick fires after Stop.
type Clock struct {
	step    float64
	now     float64
	running bool
	stopped bool
	subs    []FrameFunc
	log     *slog.Logger
}

// NewClock returns a started clock ticking rate times per second. A rate of
// zero or less falls back to DefaultClockRate.
func NewClock(rate float64, log *slog.Logger) *Clock {
	if rate <= 0 {
		rate = DefaultClockRate
	}
	if log == nil {
		log = slog.Default()
	}
	return &Clock{
		step:    1.0 / rate,
		running: true,
		log:     log,
	}
}

// Rate returns the configured tick rate in Hz.
func (c *Clock) Rate() float64 { return 1.0 / c.step }

// Now returns the accumulated monotonic time in seconds.
func (c *Clock) Now() float64 { return c.now }

// Subscribe registers fn to run on every tick, in subscription order.
func (c *Clock) Subscribe(fn FrameFunc) {
	if fn == nil {
		return
	}
	c.subs = append(c.subs, fn)
}

// Start resumes ticking. Starting a running clock, or one that has been
// stopped, is a no-op.
func (c *Clock) Start() {
	if c.stopped || c.running {
		return
	}
	c.running = true
}

// Stop halts the clock permanently. Idempotent.
func (c *Clock) Stop() {
	if c.stopped {
		return
	}
	c.running = false
	c.stopped = true
	c.log.Debug("animation clock stopped", "time", c.now)
}

// Stopped reports whether Stop has been called.
func (c *Clock) Stopped() bool { return c.stopped }

// Tick advances the accumulator by one fixed step and fans out to every
// subscriber. Ticks on a stopped clock do nothing.
func (c *Clock) Tick() {
	if !c.running {
		return
	}
	c.now += c.step
	for _, fn := range c.subs {
		fn(c.now, c.step)
	}
}
