package holo

import (
	"fmt"
	"log/slog"
	"math"
)

// LayerOptions configures a named layer.
type LayerOptions struct {
	// ZIndexBase is the bottom of the layer's paint-order band.
	ZIndexBase int
	// DefaultDepth in [0,1] applies when AddToLayer is called without a depth.
	DefaultDepth float64
	// BlurIntensity >= 0 scales depth blur; 0 disables blur for the layer.
	BlurIntensity float64
	// OpacityMultiplier in (0,1] scales the depth-derived opacity.
	OpacityMultiplier float64
	Description       string
}

// Built-in layer names registered by NewLayerRegistry.
const (
	LayerBackground = "Background"
	LayerMidLayer   = "MidLayer"
	LayerForeground = "Foreground"
	LayerOverlay    = "Overlay"
	LayerTopmost    = "Topmost"
)

// opacityFloor is the minimum depth-derived opacity before the layer
// multiplier is applied.
const opacityFloor = 0.3

// depthOpacity implements opacity = max(0.3, 1 - depth*0.7) * multiplier.
func depthOpacity(depth, multiplier float64) float64 {
	return math.Max(opacityFloor, 1-depth*0.7) * multiplier
}

// depthBlurRadius reports the blur radius for a depth within a layer, and
// whether blur applies at all. Blur only engages past depth 0.3 on layers
// with a positive blur intensity.
func depthBlurRadius(depth, blurIntensity float64) (float64, bool) {
	if blurIntensity <= 0 || depth <= opacityFloor {
		return 0, false
	}
	return blurIntensity * depth * 10, true
}

// depthScale implements scale = 1 - depth*0.1.
func depthScale(depth float64) float64 {
	return 1 - depth*0.1
}

type layer struct {
	name     string
	opts     LayerOptions
	elements []Element // assignment order; drives the z ordinal
}

func (l *layer) remove(el Element) {
	for i, e := range l.elements {
		if e == el {
			l.elements = append(l.elements[:i], l.elements[i+1:]...)
			return
		}
	}
}

// registration tracks one element's layer membership and the state captured
// when it joined, restored verbatim on removal.
type registration struct {
	layerName string
	depth     float64
	zIndex    int

	originalOpacity   float64
	originalEffect    Effect
	originalTransform Transform

	blur         *BlurEffect
	scaleApplied bool
}

// transition is an in-flight animated move toward a target layer.
type transition struct {
	target   string
	depth    float64
	elapsed  float64
	duration float64
	from, to float64
	zSnapped bool
}

// LayerRegistry assigns elements to ordered visual layers, applies the depth
// formula (opacity, blur, scale), animates transitions between layers and
// restores captured state on removal. One registry is constructed per
// composited surface and lives for that surface's lifetime; the five
// built-in layers exist from construction.
//
// Apart from RegisterLayer, no method returns or raises an error: runtime
// failures are cosmetic and degrade to logged no-ops.
type LayerRegistry struct {
	log         *slog.Logger
	layers      map[string]*layer
	regs        map[Element]*registration
	transitions map[Element]*transition
	disposed    bool
}

// NewLayerRegistry returns a registry with the built-in layers registered
// and its transition pass subscribed to clock.
func NewLayerRegistry(clock *Clock, log *slog.Logger) *LayerRegistry {
	if log == nil {
		log = slog.Default()
	}
	r := &LayerRegistry{
		log:         log,
		layers:      make(map[string]*layer),
		regs:        make(map[Element]*registration),
		transitions: make(map[Element]*transition),
	}
	for name, opts := range builtinLayers() {
		l := opts
		if err := r.registerLayer(name, &l); err != nil {
			// Unreachable for the built-in table; surface it loudly anyway.
			r.log.Error("built-in layer registration failed", "layer", name, "error", err)
		}
	}
	if clock != nil {
		clock.Subscribe(r.frame)
	}
	return r
}

func builtinLayers() map[string]LayerOptions {
	return map[string]LayerOptions{
		LayerBackground: {ZIndexBase: 0, DefaultDepth: 0.8, BlurIntensity: 0.6, OpacityMultiplier: 0.85, Description: "distant backdrop"},
		LayerMidLayer:   {ZIndexBase: 100, DefaultDepth: 0.5, BlurIntensity: 0.3, OpacityMultiplier: 0.95, Description: "mid-distance content"},
		LayerForeground: {ZIndexBase: 200, DefaultDepth: 0.2, OpacityMultiplier: 1, Description: "primary content"},
		LayerOverlay:    {ZIndexBase: 300, DefaultDepth: 0.1, OpacityMultiplier: 1, Description: "floating chrome"},
		LayerTopmost:    {ZIndexBase: 400, DefaultDepth: 0, OpacityMultiplier: 1, Description: "modal and cursor-adjacent"},
	}
}

func (r *LayerRegistry) guard(op string) {
	if p := recover(); p != nil {
		r.log.Error("recovered panic in layer operation", "op", op, "panic", p)
	}
}

// RegisterLayer inserts or overwrites a layer. It is the engine's only
// error-raising operation: an empty name or nil options is a setup-time
// programmer error reported as *ConfigurationError.
func (r *LayerRegistry) RegisterLayer(name string, opts *LayerOptions) error {
	return r.registerLayer(name, opts)
}

func (r *LayerRegistry) registerLayer(name string, opts *LayerOptions) error {
	if name == "" {
		return newConfigurationError("RegisterLayer", "empty layer name")
	}
	if opts == nil {
		return newConfigurationError("RegisterLayer", fmt.Sprintf("nil options for layer %q", name))
	}
	if existing, ok := r.layers[name]; ok {
		existing.opts = *opts
		r.log.Debug("layer replaced", "layer", name, "zIndexBase", opts.ZIndexBase)
		return nil
	}
	r.layers[name] = &layer{name: name, opts: *opts}
	r.log.Debug("layer registered", "layer", name, "zIndexBase", opts.ZIndexBase)
	return nil
}

// AddToLayer assigns element to the named layer, removing any prior
// registration first. The optional depth overrides the layer default.
// An unknown layer name logs a warning and does nothing.
func (r *LayerRegistry) AddToLayer(element Element, layerName string, depth ...float64) {
	defer r.guard("AddToLayer")
	if err := r.addToLayer(element, layerName, depth...); err != nil {
		r.log.Warn("add to layer skipped", "layer", layerName, "error", err)
	}
}

func (r *LayerRegistry) addToLayer(element Element, layerName string, depth ...float64) error {
	if r.disposed {
		return ErrDisposed
	}
	if element == nil {
		return fmt.Errorf("nil element")
	}
	l, ok := r.layers[layerName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrLayerNotFound, layerName)
	}

	// An element lives in at most one layer: re-adding implicitly removes
	// (and restores) the prior registration before capturing fresh state.
	if _, ok := r.regs[element]; ok {
		r.removeFromLayer(element)
	}
	delete(r.transitions, element)

	d := l.opts.DefaultDepth
	if len(depth) > 0 {
		d = clampDepth(depth[0])
	}
	reg := &registration{
		layerName:         layerName,
		depth:             d,
		zIndex:            l.opts.ZIndexBase + len(l.elements),
		originalOpacity:   element.Opacity(),
		originalEffect:    element.ActiveEffect(),
		originalTransform: element.Transform(),
	}
	r.applyDepth(element, reg, l)
	element.SetZIndex(reg.zIndex)
	l.elements = append(l.elements, element)
	r.regs[element] = reg
	r.log.Debug("element added to layer", "layer", layerName, "depth", d, "zIndex", reg.zIndex)
	return nil
}

// applyDepth pushes the depth formula onto the element: opacity with the
// 0.3 floor, gated blur through the effect slot, and a uniform center scale
// when no foreign transform is present.
func (r *LayerRegistry) applyDepth(element Element, reg *registration, l *layer) {
	element.SetOpacity(depthOpacity(reg.depth, l.opts.OpacityMultiplier))

	if radius, ok := depthBlurRadius(reg.depth, l.opts.BlurIntensity); ok {
		if reg.blur == nil {
			reg.blur = newBlurEffect(radius)
		} else {
			reg.blur.SetUniform(UniformRadius, radius)
		}
		element.SetActiveEffect(reg.blur)
	} else if reg.blur != nil {
		if element.ActiveEffect() == reg.blur {
			element.SetActiveEffect(reg.originalEffect)
		}
		reg.blur.Dispose()
		reg.blur = nil
	}

	t := element.Transform()
	if t.IsIdentity() || reg.scaleApplied {
		s := depthScale(reg.depth)
		element.SetTransform(Transform{
			ScaleX:     s,
			ScaleY:     s,
			TranslateX: t.TranslateX,
			TranslateY: t.TranslateY,
		})
		reg.scaleApplied = true
	}
}

// RemoveFromLayer restores the opacity, effect and transform captured at
// registration, clears the z-index and drops the registration. Unregistered
// elements are a no-op.
func (r *LayerRegistry) RemoveFromLayer(element Element) {
	defer r.guard("RemoveFromLayer")
	r.removeFromLayer(element)
}

func (r *LayerRegistry) removeFromLayer(element Element) {
	reg, ok := r.regs[element]
	if !ok {
		return
	}
	delete(r.transitions, element)
	element.SetOpacity(reg.originalOpacity)
	element.SetActiveEffect(reg.originalEffect)
	element.SetTransform(reg.originalTransform)
	element.ClearZIndex()
	if reg.blur != nil {
		reg.blur.Dispose()
		reg.blur = nil
	}
	if l, ok := r.layers[reg.layerName]; ok {
		l.remove(element)
	}
	delete(r.regs, element)
	r.log.Debug("element removed from layer", "layer", reg.layerName)
}

// SetElementDepth updates the stored depth and recomputes the depth visuals
// in place. Unregistered elements are a no-op.
func (r *LayerRegistry) SetElementDepth(element Element, depth float64) {
	defer r.guard("SetElementDepth")
	reg, ok := r.regs[element]
	if !ok {
		r.log.Debug("depth change for unregistered element ignored")
		return
	}
	l, ok := r.layers[reg.layerName]
	if !ok {
		return
	}
	reg.depth = clampDepth(depth)
	r.applyDepth(element, reg, l)
}

// TransitionToLayer animates the element's opacity toward the target layer's
// depth-derived value over duration seconds, snapping the z-index into the
// target band on the first animation frame. Completion finalizes through
// AddToLayer. Unknown targets log a warning and do nothing.
func (r *LayerRegistry) TransitionToLayer(element Element, targetLayer string, duration float64, depth ...float64) {
	defer r.guard("TransitionToLayer")
	if r.disposed || element == nil {
		return
	}
	l, ok := r.layers[targetLayer]
	if !ok {
		r.log.Warn("transition skipped", "layer", targetLayer, "error", ErrLayerNotFound)
		return
	}
	if duration <= 0 {
		r.AddToLayer(element, targetLayer, depth...)
		return
	}
	d := l.opts.DefaultDepth
	if len(depth) > 0 {
		d = clampDepth(depth[0])
	}
	r.transitions[element] = &transition{
		target:   targetLayer,
		depth:    d,
		duration: duration,
		from:     element.Opacity(),
		to:       depthOpacity(d, l.opts.OpacityMultiplier),
	}
}

// frame advances in-flight transitions by one clock step.
func (r *LayerRegistry) frame(now, dt float64) {
	defer r.guard("frame")
	for element, tr := range r.transitions {
		l, ok := r.layers[tr.target]
		if !ok {
			delete(r.transitions, element)
			continue
		}
		if !tr.zSnapped {
			element.SetZIndex(l.opts.ZIndexBase + len(l.elements))
			tr.zSnapped = true
		}
		tr.elapsed += dt
		p := tr.elapsed / tr.duration
		if p >= 1 {
			delete(r.transitions, element)
			r.AddToLayer(element, tr.target, tr.depth)
			continue
		}
		element.SetOpacity(tr.from + (tr.to-tr.from)*p)
	}
}

// LayerStats is one layer's slice of a Statistics snapshot.
type LayerStats struct {
	ElementCount      int
	ZIndexBase        int
	DefaultDepth      float64
	OpacityMultiplier float64
	BlurIntensity     float64
}

// Statistics is a point-in-time diagnostic snapshot of the registry.
type Statistics struct {
	LayerCount    int
	TotalElements int
	Layers        map[string]LayerStats
}

// GetStatistics snapshots layer and element counts for diagnostics.
func (r *LayerRegistry) GetStatistics() Statistics {
	stats := Statistics{
		LayerCount: len(r.layers),
		Layers:     make(map[string]LayerStats, len(r.layers)),
	}
	for name, l := range r.layers {
		stats.TotalElements += len(l.elements)
		stats.Layers[name] = LayerStats{
			ElementCount:      len(l.elements),
			ZIndexBase:        l.opts.ZIndexBase,
			DefaultDepth:      l.opts.DefaultDepth,
			OpacityMultiplier: l.opts.OpacityMultiplier,
			BlurIntensity:     l.opts.BlurIntensity,
		}
	}
	return stats
}

// Dispose removes every tracked element, restoring its captured state, then
// clears the registry. Idempotent.
func (r *LayerRegistry) Dispose() {
	defer r.guard("Dispose")
	if r.disposed {
		return
	}
	for element := range r.regs {
		r.removeFromLayer(element)
	}
	r.layers = make(map[string]*layer)
	r.transitions = make(map[Element]*transition)
	r.disposed = true
	r.log.Debug("layer registry disposed")
}

func clampDepth(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
