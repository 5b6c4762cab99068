package holo

import (
	"image/color"
	"log/slog"
	"math/rand"
)

// StreamOptions configures a data stream.
type StreamOptions struct {
	// ParticleCount is the fixed live population.
	ParticleCount int
	// StreamDuration is one particle's bottom-to-top travel time in seconds.
	StreamDuration float64
	// ParticleSize is the particle diameter in surface units.
	ParticleSize float64
	Color        color.Color
	Glow         bool
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.ParticleCount <= 0 {
		o.ParticleCount = 20
	}
	if o.StreamDuration <= 0 {
		o.StreamDuration = 3.0
	}
	if o.ParticleSize <= 0 {
		o.ParticleSize = 3
	}
	if o.Color == nil {
		o.Color = color.RGBA{R: 0x00, G: 0xD9, B: 0xFF, A: 0xFF}
	}
	return o
}

// particle is one recycled node. remaining is its lifetime in seconds;
// recycling is pull-based: the clock tick decrements it and respawns the
// node deterministically at zero, so no completion callback ever mutates the
// container reentrantly.
type particle struct {
	node      Element
	x         float64
	remaining float64
}

// DataStream is a fixed-population, unbounded-duration stream of small
// particles flowing from below a container's bottom edge to above its top
// edge. Each finished particle is destroyed and immediately replaced by an
// identical one at a fresh random X. The stream lives as long as its
// container; the owning effects service's Dispose is the only teardown.
type DataStream struct {
	container Container
	factory   Factory
	opts      StreamOptions
	rng       *rand.Rand
	particles []particle
	log       *slog.Logger
}

func newDataStream(container Container, factory Factory, opts StreamOptions, rng *rand.Rand, log *slog.Logger) *DataStream {
	opts = opts.withDefaults()
	s := &DataStream{
		container: container,
		factory:   factory,
		opts:      opts,
		rng:       rng,
		particles: make([]particle, 0, opts.ParticleCount),
		log:       log,
	}
	for i := 0; i < s.opts.ParticleCount; i++ {
		p := s.spawn()
		// Stagger initial lifetimes so the population spreads over the whole
		// travel instead of marching in lockstep.
		p.remaining = s.opts.StreamDuration * (float64(i) + s.rng.Float64()) / float64(s.opts.ParticleCount)
		s.place(&p)
		s.particles = append(s.particles, p)
	}
	return s
}

// ParticleCount returns the fixed live population.
func (s *DataStream) ParticleCount() int { return len(s.particles) }

func (s *DataStream) spawn() particle {
	w, _ := s.container.Size()
	node := s.factory.NewParticle(ParticleSpec{
		Size:  s.opts.ParticleSize,
		Color: s.opts.Color,
		Glow:  s.opts.Glow,
	})
	p := particle{
		node:      node,
		x:         s.rng.Float64() * w,
		remaining: s.opts.StreamDuration,
	}
	s.container.AddChild(node)
	return p
}

// place positions a particle from its remaining lifetime: full lifetime sits
// just below the container's bottom edge, zero just above its top edge.
func (s *DataStream) place(p *particle) {
	_, h := s.container.Size()
	yStart := h + s.opts.ParticleSize
	yEnd := -s.opts.ParticleSize
	progress := 1 - p.remaining/s.opts.StreamDuration
	t := p.node.Transform()
	t.TranslateX = p.x
	t.TranslateY = yStart + (yEnd-yStart)*progress
	p.node.SetTransform(t)
}

// update advances every particle by dt and recycles the expired ones.
func (s *DataStream) update(dt float64) {
	for i := range s.particles {
		p := &s.particles[i]
		p.remaining -= dt
		if p.remaining <= 0 {
			s.container.RemoveChild(p.node)
			*p = s.spawn()
		}
		s.place(p)
	}
}

// dispose removes every live particle node from the container.
func (s *DataStream) dispose() {
	for _, p := range s.particles {
		s.container.RemoveChild(p.node)
	}
	s.particles = nil
	s.log.Debug("data stream disposed")
}
