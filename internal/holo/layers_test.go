package holo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*LayerRegistry, *Clock, *countingHandler) {
	t.Helper()
	log, counts := newTestLogger()
	clock := NewClock(60, log)
	return NewLayerRegistry(clock, log), clock, counts
}

func TestRegisterLayerValidation(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	var cfgErr *ConfigurationError

	err := r.RegisterLayer("", &LayerOptions{})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	err = r.RegisterLayer("Custom", nil)
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	assert.NoError(t, r.RegisterLayer("Custom", &LayerOptions{ZIndexBase: 500, OpacityMultiplier: 1}))
}

func TestRegisterLayerReplacesExisting(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	require.NoError(t, r.RegisterLayer("Custom", &LayerOptions{ZIndexBase: 500, OpacityMultiplier: 1}))
	require.NoError(t, r.RegisterLayer("Custom", &LayerOptions{ZIndexBase: 600, OpacityMultiplier: 0.5}))

	stats := r.GetStatistics()
	assert.Equal(t, 600, stats.Layers["Custom"].ZIndexBase)
}

func TestBuiltinLayersExistAtConstruction(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	stats := r.GetStatistics()
	for _, name := range []string{LayerBackground, LayerMidLayer, LayerForeground, LayerOverlay, LayerTopmost} {
		assert.Contains(t, stats.Layers, name)
	}
	assert.Equal(t, 5, stats.LayerCount)
}

// An element registered to a second layer must vanish from the first.
func TestAddToLayerMovesElementBetweenLayers(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	el := newFakeElement()

	r.AddToLayer(el, LayerBackground)
	r.AddToLayer(el, LayerForeground)

	stats := r.GetStatistics()
	assert.Equal(t, 0, stats.Layers[LayerBackground].ElementCount)
	assert.Equal(t, 1, stats.Layers[LayerForeground].ElementCount)
	assert.Equal(t, 1, stats.TotalElements)
}

// Round-trip law: remove restores exactly the state held before add.
func TestRemoveFromLayerRestoresCapturedState(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	prior := newGlowEffect()
	el := newFakeElement()
	el.SetOpacity(0.42)
	el.SetActiveEffect(prior)

	r.AddToLayer(el, LayerBackground, 0.9)
	require.NotEqual(t, 0.42, el.Opacity(), "depth formula must have been applied")

	r.RemoveFromLayer(el)
	assert.Equal(t, 0.42, el.Opacity())
	assert.Same(t, Effect(prior), el.ActiveEffect())
	assert.Equal(t, Identity(), el.Transform())
	_, hasZ := el.ZIndex()
	assert.False(t, hasZ)
	assert.Equal(t, 0, r.GetStatistics().TotalElements)
}

func TestRemoveFromLayerUnregisteredIsNoOp(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	r.RemoveFromLayer(newFakeElement())
}

func TestDepthFormulaEndpoints(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.RegisterLayer("Blurred", &LayerOptions{ZIndexBase: 50, BlurIntensity: 0.5, OpacityMultiplier: 0.7}))
	require.NoError(t, r.RegisterLayer("Sharp", &LayerOptions{ZIndexBase: 60, OpacityMultiplier: 0.7}))

	near := newFakeElement()
	r.AddToLayer(near, "Blurred", 0)
	assert.InDelta(t, 0.7, near.Opacity(), 1e-9, "depth 0: opacity equals the layer multiplier")
	assert.Nil(t, near.ActiveEffect(), "no blur at depth 0")

	far := newFakeElement()
	r.AddToLayer(far, "Blurred", 1)
	assert.InDelta(t, 0.3*0.7, far.Opacity(), 1e-9, "depth 1: opacity floor times multiplier")
	blur, ok := far.ActiveEffect().(*BlurEffect)
	require.True(t, ok, "blur applies at depth 1 on a blur-capable layer")
	radius, _ := blur.Uniform(UniformRadius)
	assert.InDelta(t, 0.5*1*10, radius, 1e-9)

	flat := newFakeElement()
	r.AddToLayer(flat, "Sharp", 1)
	assert.Nil(t, flat.ActiveEffect(), "no blur when the layer's blur intensity is zero")
}

// Concrete scenario from the depth formula: Background at depth 0.9.
func TestBackgroundScenario(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.RegisterLayer("Backdrop", &LayerOptions{
		ZIndexBase:        0,
		DefaultDepth:      0.9,
		BlurIntensity:     0.8,
		OpacityMultiplier: 0.7,
	}))

	el := newFakeElement()
	r.AddToLayer(el, "Backdrop")

	assert.InDelta(t, 0.259, el.Opacity(), 1e-9)
	blur, ok := el.ActiveEffect().(*BlurEffect)
	require.True(t, ok)
	radius, _ := blur.Uniform(UniformRadius)
	assert.InDelta(t, 7.2, radius, 1e-9)
}

func TestZIndexAssignmentWithinLayer(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	a, b := newFakeElement(), newFakeElement()
	r.AddToLayer(a, LayerMidLayer)
	r.AddToLayer(b, LayerMidLayer)

	za, _ := a.ZIndex()
	zb, _ := b.ZIndex()
	assert.Equal(t, 100, za)
	assert.Equal(t, 101, zb)

	// Ordinals are not stabilized across removals: the next assignment
	// reuses the current count.
	r.RemoveFromLayer(a)
	c := newFakeElement()
	r.AddToLayer(c, LayerMidLayer)
	zc, _ := c.ZIndex()
	assert.Equal(t, 101, zc)
}

func TestAddToLayerUnknownLayerWarnsAndNoOps(t *testing.T) {
	r, _, counts := newTestRegistry(t)
	el := newFakeElement()
	el.SetOpacity(0.5)

	r.AddToLayer(el, "Nebula")

	assert.Equal(t, 0.5, el.Opacity(), "element state untouched")
	assert.Equal(t, 0, r.GetStatistics().TotalElements)
	assert.Equal(t, 1, counts.warnings())
}

func TestSetElementDepthRecomputesInPlace(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.RegisterLayer("Panel", &LayerOptions{ZIndexBase: 10, BlurIntensity: 0.4, OpacityMultiplier: 1}))

	el := newFakeElement()
	r.AddToLayer(el, "Panel", 0.2)
	assert.Nil(t, el.ActiveEffect())

	r.SetElementDepth(el, 0.8)
	assert.InDelta(t, depthOpacity(0.8, 1), el.Opacity(), 1e-9)
	require.IsType(t, &BlurEffect{}, el.ActiveEffect())

	// Back below the blur gate: the blur handle must come off again.
	r.SetElementDepth(el, 0.1)
	assert.Nil(t, el.ActiveEffect())

	// Unregistered elements are untouched.
	other := newFakeElement()
	r.SetElementDepth(other, 0.9)
	assert.Equal(t, 1.0, other.Opacity())
}

func TestDepthScaleSkipsForeignTransforms(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	el := newFakeElement()
	foreign := Transform{ScaleX: 2, ScaleY: 2}
	el.SetTransform(foreign)

	r.AddToLayer(el, LayerBackground, 0.5)
	assert.Equal(t, foreign, el.Transform(), "pre-existing transform must be preserved")

	plain := newFakeElement()
	r.AddToLayer(plain, LayerBackground, 0.5)
	assert.InDelta(t, 0.95, plain.Transform().ScaleX, 1e-9)
	assert.InDelta(t, 0.95, plain.Transform().ScaleY, 1e-9)
}

func TestTransitionToLayerAnimatesAndFinalizes(t *testing.T) {
	r, clock, _ := newTestRegistry(t)

	el := newFakeElement()
	r.AddToLayer(el, LayerBackground, 0.8)
	startOpacity := el.Opacity()

	r.TransitionToLayer(el, LayerForeground, 0.1, 0.2)

	// First frame snaps the z-index into the target band.
	clock.Tick()
	z, hasZ := el.ZIndex()
	require.True(t, hasZ)
	assert.GreaterOrEqual(t, z, 200)
	assert.NotEqual(t, startOpacity, el.Opacity())

	// 0.1s at 60Hz is six ticks; run a few extra for the completion frame.
	for i := 0; i < 8; i++ {
		clock.Tick()
	}

	stats := r.GetStatistics()
	assert.Equal(t, 0, stats.Layers[LayerBackground].ElementCount)
	assert.Equal(t, 1, stats.Layers[LayerForeground].ElementCount)
	assert.InDelta(t, depthOpacity(0.2, 1), el.Opacity(), 1e-9)
}

func TestTransitionToUnknownLayerIsNoOp(t *testing.T) {
	r, clock, counts := newTestRegistry(t)

	el := newFakeElement()
	r.AddToLayer(el, LayerBackground)
	before := el.Opacity()

	r.TransitionToLayer(el, "Nebula", 0.5)
	clock.Tick()

	assert.Equal(t, before, el.Opacity())
	assert.Equal(t, 1, counts.warnings())
}

func TestTransitionWithZeroDurationIsImmediate(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	el := newFakeElement()
	r.TransitionToLayer(el, LayerOverlay, 0)

	stats := r.GetStatistics()
	assert.Equal(t, 1, stats.Layers[LayerOverlay].ElementCount)
}

func TestGetStatisticsSnapshot(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.RegisterLayer("Custom", &LayerOptions{
		ZIndexBase:        500,
		DefaultDepth:      0.3,
		BlurIntensity:     0.2,
		OpacityMultiplier: 0.9,
	}))
	r.AddToLayer(newFakeElement(), "Custom")
	r.AddToLayer(newFakeElement(), "Custom")

	got := r.GetStatistics().Layers["Custom"]
	want := LayerStats{
		ElementCount:      2,
		ZIndexBase:        500,
		DefaultDepth:      0.3,
		OpacityMultiplier: 0.9,
		BlurIntensity:     0.2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statistics mismatch (-want +got):\n%s", diff)
	}
}

func TestDisposeRestoresEverythingAndIsIdempotent(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	els := []*fakeElement{newFakeElement(), newFakeElement(), newFakeElement()}
	r.AddToLayer(els[0], LayerBackground, 0.9)
	r.AddToLayer(els[1], LayerMidLayer)
	r.AddToLayer(els[2], LayerTopmost)

	r.Dispose()
	r.Dispose()

	for _, el := range els {
		assert.Equal(t, 1.0, el.Opacity())
		assert.Nil(t, el.ActiveEffect())
		_, hasZ := el.ZIndex()
		assert.False(t, hasZ)
	}
	stats := r.GetStatistics()
	assert.Equal(t, 0, stats.LayerCount)
	assert.Equal(t, 0, stats.TotalElements)

	// Post-dispose mutation degrades to a logged no-op.
	r.AddToLayer(newFakeElement(), LayerBackground)
	assert.Equal(t, 0, r.GetStatistics().TotalElements)
}
