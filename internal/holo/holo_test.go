package holo

import (
	"context"
	"log/slog"
)

// fakeElement is a minimal host node for exercising the engine without a
// real surface.
type fakeElement struct {
	opacity   float64
	effect    Effect
	transform Transform
	z         int
	hasZ      bool
	parent    *fakeContainer
}

func newFakeElement() *fakeElement {
	return &fakeElement{opacity: 1, transform: Identity()}
}

func (e *fakeElement) Opacity() float64           { return e.opacity }
func (e *fakeElement) SetOpacity(v float64)       { e.opacity = v }
func (e *fakeElement) ActiveEffect() Effect       { return e.effect }
func (e *fakeElement) SetActiveEffect(eff Effect) { e.effect = eff }
func (e *fakeElement) Transform() Transform       { return e.transform }
func (e *fakeElement) SetTransform(t Transform)   { e.transform = t }
func (e *fakeElement) ZIndex() (int, bool)        { return e.z, e.hasZ }
func (e *fakeElement) SetZIndex(z int)            { e.z, e.hasZ = z, true }
func (e *fakeElement) ClearZIndex()               { e.z, e.hasZ = 0, false }

func (e *fakeElement) Parent() Container {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

type fakeContainer struct {
	w, h     float64
	children []Element
}

func newFakeContainer(w, h float64) *fakeContainer {
	return &fakeContainer{w: w, h: h}
}

func (c *fakeContainer) AddChild(el Element) {
	if fe, ok := el.(*fakeElement); ok {
		fe.parent = c
	}
	c.children = append(c.children, el)
}

func (c *fakeContainer) RemoveChild(el Element) {
	for i, child := range c.children {
		if child == el {
			c.children = append(c.children[:i], c.children[i+1:]...)
			if fe, ok := el.(*fakeElement); ok {
				fe.parent = nil
			}
			return
		}
	}
}

func (c *fakeContainer) Size() (w, h float64) { return c.w, c.h }

// fakeFactory materializes fake nodes and counts what it built.
type fakeFactory struct {
	overlays  []OverlaySpec
	particles []ParticleSpec
}

func (f *fakeFactory) NewOverlay(spec OverlaySpec) Element {
	f.overlays = append(f.overlays, spec)
	return newFakeElement()
}

func (f *fakeFactory) NewParticle(spec ParticleSpec) Element {
	f.particles = append(f.particles, spec)
	return newFakeElement()
}

// countingHandler counts emitted records per level so tests can assert on
// exactly-one-warning style properties.
type countingHandler struct {
	counts map[slog.Level]int
}

func newCountingHandler() *countingHandler {
	return &countingHandler{counts: make(map[slog.Level]int)}
}

func (h *countingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *countingHandler) Handle(_ context.Context, r slog.Record) error {
	h.counts[r.Level]++
	return nil
}

func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *countingHandler) WithGroup(string) slog.Handler      { return h }

func (h *countingHandler) warnings() int { return h.counts[slog.LevelWarn] }

func newTestLogger() (*slog.Logger, *countingHandler) {
	h := newCountingHandler()
	return slog.New(h), h
}
