package holo

import "image/color"

// Uniform names shared by the built-in effect templates.
const (
	UniformIntensity       = "intensity"
	UniformRadius          = "radius"
	UniformPulseFrequency  = "pulse_frequency"
	UniformTime            = "time"
	UniformBlurRadius      = "blur_radius"
	UniformBorderThickness = "border_thickness"
	UniformOpacity         = "opacity"
)

// paramEffect is the shared uniform store behind the built-in templates.
// Setting an unknown uniform fails rather than growing the map, so an effect
// without a "time" parameter degrades the per-frame update to a no-op.
type paramEffect struct {
	uniforms map[string]float64
	disposed bool
}

func (e *paramEffect) SetUniform(name string, value float64) bool {
	if e.disposed {
		return false
	}
	if _, ok := e.uniforms[name]; !ok {
		return false
	}
	e.uniforms[name] = value
	return true
}

func (e *paramEffect) Uniform(name string) (float64, bool) {
	v, ok := e.uniforms[name]
	return v, ok
}

func (e *paramEffect) Dispose() {
	e.disposed = true
	e.uniforms = nil
}

// GlowEffect is the built-in holographic glow template. It carries a time
// uniform, so the per-frame update animates its shimmer.
type GlowEffect struct {
	paramEffect
	Color color.Color
}

func newGlowEffect() *GlowEffect {
	return &GlowEffect{
		paramEffect: paramEffect{uniforms: map[string]float64{
			UniformIntensity:      1,
			UniformRadius:         10,
			UniformPulseFrequency: 0,
			UniformTime:           0,
		}},
		Color: color.RGBA{R: 0x00, G: 0xD9, B: 0xFF, A: 0xFF},
	}
}

func (e *GlowEffect) setOptions(opts GlowOptions) {
	e.SetUniform(UniformIntensity, opts.Intensity)
	e.SetUniform(UniformRadius, opts.Radius)
	e.SetUniform(UniformPulseFrequency, opts.PulseFrequency)
	if opts.Color != nil {
		e.Color = opts.Color
	}
}

// GlassmorphismEffect is the built-in frosted-glass template. It exposes no
// time uniform: the per-frame update pass skips it by construction.
type GlassmorphismEffect struct {
	paramEffect
}

func newGlassmorphismEffect() *GlassmorphismEffect {
	return &GlassmorphismEffect{
		paramEffect: paramEffect{uniforms: map[string]float64{
			UniformBlurRadius:      8,
			UniformBorderThickness: 1,
			UniformOpacity:         0.25,
		}},
	}
}

func (e *GlassmorphismEffect) setOptions(opts GlassmorphismOptions) {
	e.SetUniform(UniformBlurRadius, opts.BlurRadius)
	e.SetUniform(UniformBorderThickness, opts.BorderThickness)
	e.SetUniform(UniformOpacity, opts.Opacity)
}

// BlurEffect is the depth-of-field blur the layer registry places into an
// element's effect slot when its depth crosses the blur gate.
type BlurEffect struct {
	paramEffect
}

func newBlurEffect(radius float64) *BlurEffect {
	return &BlurEffect{
		paramEffect: paramEffect{uniforms: map[string]float64{
			UniformRadius: radius,
		}},
	}
}

// ShaderEffect wraps an effect resolved from packaged resources or a
// fallback .fx file on disk. The blob is opaque to the engine; the host's
// effect-compilation facility consumes it. File-loaded shaders get a time
// uniform so time-varying ones animate without special-casing.
type ShaderEffect struct {
	paramEffect
	name string
	blob []byte
}

func newShaderEffect(name string, blob []byte) *ShaderEffect {
	return &ShaderEffect{
		paramEffect: paramEffect{uniforms: map[string]float64{
			UniformTime: 0,
		}},
		name: name,
		blob: blob,
	}
}

// Name returns the catalog name the shader was resolved under.
func (e *ShaderEffect) Name() string { return e.name }

// Source returns the opaque shader blob.
func (e *ShaderEffect) Source() []byte { return e.blob }
