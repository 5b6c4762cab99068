// Package holo implements the holographic layer-and-effects compositing
// engine: ordered visual layers with depth-driven opacity/blur/scale, a
// cached effect catalog, glow/glassmorphism/scanline/pulse decorations, a
// fixed-rate animation clock and a perpetually recycling particle stream.
//
// The engine is host-agnostic. It manipulates UI nodes only through the
// opaque Element and Container handles below; a concrete surface (see
// internal/game for the ebiten one) implements them. A broken visual effect
// must never break the host: every runtime failure degrades to a logged
// no-op, and only RegisterLayer can return an error to the caller.
package holo

import "image/color"

// Element is the opaque handle to a renderable UI node. The engine needs
// nothing beyond opacity, a single active-effect slot, a 2D transform,
// a clearable z-order index and parent lookup.
type Element interface {
	Opacity() float64
	SetOpacity(float64)

	// ActiveEffect returns the node's current effect slot, nil if empty.
	ActiveEffect() Effect
	// SetActiveEffect assigns the effect slot; nil clears it.
	SetActiveEffect(Effect)

	Transform() Transform
	SetTransform(Transform)

	// ZIndex reports the explicit paint-order index, false if none is set.
	ZIndex() (int, bool)
	SetZIndex(int)
	ClearZIndex()

	// Parent returns the owning container, nil for detached nodes.
	Parent() Container
}

// Container is the opaque handle to a child-bearing node. The scanlines
// overlay and the particle stream insert nodes through it.
type Container interface {
	AddChild(Element)
	RemoveChild(Element)
	// Size returns the container's visible extent in surface units.
	Size() (w, h float64)
}

// Effect is the opaque handle to a parameterized visual effect instance.
// Uniform names are effect-specific; SetUniform reports false when the
// effect exposes no such parameter, which callers treat as a no-op.
type Effect interface {
	SetUniform(name string, value float64) bool
	Uniform(name string) (float64, bool)
	Dispose()
}

// Factory materializes engine-owned auxiliary nodes on the host surface.
// The engine computes the specs; the host decides how to draw them.
type Factory interface {
	NewOverlay(OverlaySpec) Element
	NewParticle(ParticleSpec) Element
}

// Transform is a 2D scale+translate applied to an element about its center.
type Transform struct {
	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
}

// Identity returns the neutral transform.
func Identity() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// IsIdentity reports whether t performs no scaling or translation.
func (t Transform) IsIdentity() bool {
	return t.ScaleX == 1 && t.ScaleY == 1 && t.TranslateX == 0 && t.TranslateY == 0
}

// GlowOptions parameterizes the holographic glow effect.
type GlowOptions struct {
	Intensity      float64
	Radius         float64
	PulseFrequency float64 // Hz; 0 disables the built-in shimmer
	Color          color.Color
}

// GlassmorphismOptions parameterizes the frosted-glass panel effect.
type GlassmorphismOptions struct {
	BlurRadius      float64
	BorderThickness float64
	Opacity         float64
}

// ScanlineOptions parameterizes the striped CRT-style overlay.
// Intensity in (0,1] drives stripe density and darkness.
type ScanlineOptions struct {
	Intensity float64
}

// EffectKind is the tagged union of every decoration the effects service can
// apply. Glow and Glass compete for the element's single active-effect slot;
// Scanlines and Pulse occupy their own slots and may coexist with either.
type EffectKind interface {
	effectKind()
}

// GlowKind requests a glow in the shader slot.
type GlowKind struct{ Options GlowOptions }

// GlassKind requests glassmorphism in the shader slot.
type GlassKind struct{ Options GlassmorphismOptions }

// ScanlinesKind requests a striped overlay sibling node.
type ScanlinesKind struct{ Options ScanlineOptions }

// PulseKind requests an infinite auto-reversing opacity oscillation between
// 1-Intensity and 1+Intensity with period 1/Frequency.
type PulseKind struct {
	Frequency float64
	Intensity float64
}

func (GlowKind) effectKind()      {}
func (GlassKind) effectKind()     {}
func (ScanlinesKind) effectKind() {}
func (PulseKind) effectKind()     {}

// OverlaySpec describes a scanlines overlay for Factory.NewOverlay.
// The engine derives stripe geometry from ScanlineOptions and the parent
// container's size; the host only rasterizes it.
type OverlaySpec struct {
	Width, Height   float64
	StripeSpacing   float64
	StripeThickness float64
	Opacity         float64
	Color           color.Color
}

// ParticleSpec describes one data-stream particle for Factory.NewParticle.
// Position is not part of the spec: the stream drives it through the node's
// transform every frame.
type ParticleSpec struct {
	Size  float64
	Color color.Color
	Glow  bool
}
