package holo

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// elementState tracks the decorations owned per element: the shader slot
// (glow or glassmorphism), the scanlines overlay node and the pulse motion.
// Slots are independent, so glow+scanlines+pulse coexist while glow and
// glassmorphism replace each other in the single active-effect slot.
type elementState struct {
	shader        EffectKind // GlowKind or GlassKind; nil when empty
	overlay       Element
	overlayParent Container
	pulse         *PulseKind
	pulseStart    float64
	baseOpacity   float64
}

// ElementState is the externally visible per-element flag snapshot.
type ElementState struct {
	HasGlow          bool
	HasGlassmorphism bool
	HasScanlines     bool
	IsPulsing        bool
}

// EffectsService orchestrates applying and removing holographic decorations.
// It resolves handles through the catalog, tracks per-element state, and
// registers its per-frame update and particle recycle passes with the clock.
// Every public operation degrades to a logged no-op on failure; nothing the
// service does can break the host surface.
type EffectsService struct {
	log      *slog.Logger
	catalog  *EffectCatalog
	clock    *Clock
	factory  Factory
	rng      *rand.Rand
	states   map[Element]*elementState
	streams  []*DataStream
	disposed bool
}

// NewEffectsService wires a service to its catalog, clock and host factory
// and subscribes the update and recycle passes to the clock.
func NewEffectsService(catalog *EffectCatalog, clock *Clock, factory Factory, log *slog.Logger) *EffectsService {
	if log == nil {
		log = slog.Default()
	}
	s := &EffectsService{
		log:     log,
		catalog: catalog,
		clock:   clock,
		factory: factory,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		states:  make(map[Element]*elementState),
	}
	if clock != nil {
		clock.Subscribe(s.update)
		clock.Subscribe(s.recycle)
	}
	return s
}

func (s *EffectsService) guard(op string) {
	if p := recover(); p != nil {
		s.log.Error("recovered panic in effects operation", "op", op, "panic", p)
	}
}

// ApplyGlow places the catalog's glow handle, parameterized by opts, into
// the element's active-effect slot.
func (s *EffectsService) ApplyGlow(element Element, opts GlowOptions) {
	s.Apply(element, GlowKind{Options: opts})
}

// ApplyGlassmorphism places the catalog's frosted-glass handle, parameterized
// by opts, into the element's active-effect slot.
func (s *EffectsService) ApplyGlassmorphism(element Element, opts GlassmorphismOptions) {
	s.Apply(element, GlassKind{Options: opts})
}

// ApplyScanlines inserts a striped overlay as a sibling inside the element's
// parent container. Elements without a parent log a warning and keep their
// state unchanged.
func (s *EffectsService) ApplyScanlines(element Element, opts ScanlineOptions) {
	s.Apply(element, ScanlinesKind{Options: opts})
}

// StartPulsing begins an infinite auto-reversing opacity oscillation between
// 1-intensity and 1+intensity with period 1/frequency. Only RemoveEffects
// cancels it.
func (s *EffectsService) StartPulsing(element Element, frequency, intensity float64) {
	s.Apply(element, PulseKind{Frequency: frequency, Intensity: intensity})
}

// Apply is the single dispatch over the EffectKind union behind the four
// named entry points. Re-applying a kind replaces its parameters in place;
// handles stay catalog-owned, so nothing leaks.
func (s *EffectsService) Apply(element Element, kind EffectKind) {
	defer s.guard("Apply")
	if err := s.apply(element, kind); err != nil {
		s.log.Warn("effect application skipped", "kind", fmt.Sprintf("%T", kind), "error", err)
	}
}

func (s *EffectsService) apply(element Element, kind EffectKind) error {
	if s.disposed {
		return ErrDisposed
	}
	if element == nil {
		return fmt.Errorf("nil element")
	}
	st := s.states[element]
	created := st == nil
	if created {
		st = &elementState{}
		s.states[element] = st
	}

	switch k := kind.(type) {
	case GlowKind:
		element.SetActiveEffect(s.catalog.CreateGlow(k.Options))
		st.shader = k
	case GlassKind:
		element.SetActiveEffect(s.catalog.CreateGlassmorphism(k.Options))
		st.shader = k
	case ScanlinesKind:
		parent := element.Parent()
		if parent == nil {
			if created {
				delete(s.states, element)
			}
			return ErrNoParent
		}
		if st.overlay != nil {
			st.overlayParent.RemoveChild(st.overlay)
			st.overlay = nil
		}
		overlay := s.factory.NewOverlay(scanlineOverlaySpec(parent, k.Options))
		parent.AddChild(overlay)
		st.overlay = overlay
		st.overlayParent = parent
	case PulseKind:
		if st.pulse == nil {
			st.baseOpacity = element.Opacity()
		}
		pulse := k
		st.pulse = &pulse
		if s.clock != nil {
			st.pulseStart = s.clock.Now()
		}
	default:
		if created {
			delete(s.states, element)
		}
		return fmt.Errorf("unknown effect kind %T", kind)
	}
	return nil
}

// scanlineOverlaySpec derives stripe geometry from the parent's size and the
// requested intensity: denser, darker stripes as intensity rises.
func scanlineOverlaySpec(parent Container, opts ScanlineOptions) OverlaySpec {
	w, h := parent.Size()
	intensity := clampDepth(opts.Intensity)
	return OverlaySpec{
		Width:           w,
		Height:          h,
		StripeSpacing:   math.Max(2, 8-6*intensity),
		StripeThickness: 1,
		Opacity:         0.15 + 0.35*intensity,
		Color:           color.RGBA{A: 0xFF},
	}
}

// CreateDataStream spawns a fixed-population recycling particle stream inside
// container. The stream's lifetime is bound to the container; the service's
// Dispose is the only teardown.
func (s *EffectsService) CreateDataStream(container Container, opts StreamOptions) *DataStream {
	defer s.guard("CreateDataStream")
	if s.disposed || container == nil {
		s.log.Warn("data stream skipped", "disposed", s.disposed)
		return nil
	}
	stream := newDataStream(container, s.factory, opts, s.rng, s.log)
	s.streams = append(s.streams, stream)
	s.log.Debug("data stream created", "particles", stream.ParticleCount())
	return stream
}

// RemoveEffects clears the element's active-effect slot, cancels any pulse
// (restoring the opacity it started from), detaches the owned overlay and
// drops the tracked state. Untracked elements are a no-op.
func (s *EffectsService) RemoveEffects(element Element) {
	defer s.guard("RemoveEffects")
	s.removeEffects(element)
}

func (s *EffectsService) removeEffects(element Element) {
	st, ok := s.states[element]
	if !ok {
		return
	}
	element.SetActiveEffect(nil)
	if st.pulse != nil {
		element.SetOpacity(st.baseOpacity)
	}
	if st.overlay != nil {
		st.overlayParent.RemoveChild(st.overlay)
	}
	delete(s.states, element)
}

// State reports the per-element decoration flags; ok is false for untracked
// elements.
func (s *EffectsService) State(element Element) (ElementState, bool) {
	st, ok := s.states[element]
	if !ok {
		return ElementState{}, false
	}
	out := ElementState{
		HasScanlines: st.overlay != nil,
		IsPulsing:    st.pulse != nil,
	}
	switch st.shader.(type) {
	case GlowKind:
		out.HasGlow = true
	case GlassKind:
		out.HasGlassmorphism = true
	}
	return out, ok
}

// TrackedCount returns how many elements currently carry tracked state.
func (s *EffectsService) TrackedCount() int { return len(s.states) }

// update is the per-frame pass: it pushes the clock time into every tracked
// element's time-varying effect handle and advances pulse oscillations.
// Effects without a time uniform make SetUniform report false, which is the
// documented no-op.
func (s *EffectsService) update(now, dt float64) {
	defer s.guard("update")
	for element, st := range s.states {
		if st.shader != nil {
			if h := element.ActiveEffect(); h != nil {
				h.SetUniform(UniformTime, now)
			}
		}
		if st.pulse != nil {
			phase := 2 * math.Pi * st.pulse.Frequency * (now - st.pulseStart)
			element.SetOpacity(1 + st.pulse.Intensity*math.Sin(phase))
		}
	}
}

// recycle is the per-frame particle pass.
func (s *EffectsService) recycle(now, dt float64) {
	defer s.guard("recycle")
	for _, stream := range s.streams {
		stream.update(dt)
	}
}

// Dispose stops the clock, removes every tracked element's effects, tears
// down every data stream and clears tracking. Idempotent.
func (s *EffectsService) Dispose() {
	defer s.guard("Dispose")
	if s.disposed {
		return
	}
	if s.clock != nil {
		s.clock.Stop()
	}
	for element := range s.states {
		s.removeEffects(element)
	}
	for _, stream := range s.streams {
		stream.dispose()
	}
	s.streams = nil
	s.disposed = true
	s.log.Debug("effects service disposed")
}
