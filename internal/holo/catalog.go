package holo

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

//go:embed resources/shaders
var shaderFS embed.FS

// shaderLocations maps catalog names to packaged resource paths. Resolution
// tries this table first, then falls back to <name>.fx beside the executable.
var shaderLocations = map[string]string{
	"HoloGlow":      "resources/shaders/holographic/HoloGlow.fx",
	"Glassmorphism": "resources/shaders/holographic/Glassmorphism.fx",
	"Scanlines":     "resources/shaders/holographic/Scanlines.fx",
}

// Reserved cache keys for the parameterized built-in templates.
const (
	glowTemplateKey  = "Glow"
	glassTemplateKey = "Glass"
)

// EffectCatalog resolves effect names to cached, reusable effect handles.
// At most one live instance exists per name; handles are catalog-owned and
// survive until ClearCache or Close. All failure modes degrade to a nil
// return with a logged warning, never an error.
type EffectCatalog struct {
	log     *slog.Logger
	cache   map[string]Effect
	watcher *fsnotify.Watcher
}

// NewEffectCatalog returns an empty catalog logging through log.
func NewEffectCatalog(log *slog.Logger) *EffectCatalog {
	if log == nil {
		log = slog.Default()
	}
	return &EffectCatalog{
		log:   log,
		cache: make(map[string]Effect),
	}
}

// LoadEffect returns the cached handle for name, resolving it on first use
// from the packaged resource table and then from <name>.fx beside the
// executable. Returns nil, with exactly one warning logged, when both
// resolutions fail. Expected to run during setup or pre-warm, not per frame.
func (c *EffectCatalog) LoadEffect(name string) Effect {
	if h, ok := c.cache[name]; ok {
		return h
	}
	h, err := c.resolve(name)
	if err != nil {
		c.log.Warn("effect resolution failed", "effect", name, "error", err)
		return nil
	}
	c.cache[name] = h
	c.log.Debug("effect loaded", "effect", name)
	return h
}

func (c *EffectCatalog) resolve(name string) (Effect, error) {
	if path, ok := shaderLocations[name]; ok {
		if blob, err := shaderFS.ReadFile(path); err == nil {
			return newShaderEffect(name, blob), nil
		}
		// A table entry pointing at a missing packaged file still falls
		// through to the on-disk convention.
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrEffectNotFound, name, err)
	}
	path := filepath.Join(filepath.Dir(exe), name+".fx")
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrEffectNotFound, name)
	}
	return newShaderEffect(name, blob), nil
}

// CreateGlow returns the catalog's glow template with its parameters set
// from opts. The same handle is reused across calls; reapplication replaces
// parameters rather than allocating.
func (c *EffectCatalog) CreateGlow(opts GlowOptions) *GlowEffect {
	h, ok := c.cache[glowTemplateKey].(*GlowEffect)
	if !ok {
		h = newGlowEffect()
		c.cache[glowTemplateKey] = h
	}
	h.setOptions(opts)
	return h
}

// CreateGlassmorphism returns the catalog's frosted-glass template with its
// parameters set from opts, reusing the cached handle like CreateGlow.
func (c *EffectCatalog) CreateGlassmorphism(opts GlassmorphismOptions) *GlassmorphismEffect {
	h, ok := c.cache[glassTemplateKey].(*GlassmorphismEffect)
	if !ok {
		h = newGlassmorphismEffect()
		c.cache[glassTemplateKey] = h
	}
	h.setOptions(opts)
	return h
}

// ClearCache disposes every cached handle and empties the cache.
func (c *EffectCatalog) ClearCache() {
	for name, h := range c.cache {
		h.Dispose()
		delete(c.cache, name)
	}
}

// AvailableNames returns the known built-in effect names. The slice is a
// fresh copy on every call.
func (c *EffectCatalog) AvailableNames() []string {
	names := make([]string, 0, len(shaderLocations))
	for name := range shaderLocations {
		names = append(names, name)
	}
	return names
}

// Watch starts hot-invalidation for the on-disk fallback directory: a write,
// create, remove or rename of <Name>.fx evicts the cached handle so the next
// LoadEffect re-reads the file. Events are drained on the clock tick, never
// on the watcher's goroutine, preserving the single-threaded model.
func (c *EffectCatalog) Watch(dir string, clock *Clock) error {
	if c.watcher != nil {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("holo: shader watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("holo: watch %s: %w", dir, err)
	}
	c.watcher = w
	clock.Subscribe(func(now, dt float64) { c.drainWatcher() })
	c.log.Info("watching shader fallback directory", "dir", dir)
	return nil
}

func (c *EffectCatalog) drainWatcher() {
	if c.watcher == nil {
		return
	}
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				c.watcher = nil
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(ev.Name), ".fx")
			if h, ok := c.cache[name]; ok {
				h.Dispose()
				delete(c.cache, name)
				c.log.Info("shader cache entry invalidated", "effect", name, "op", ev.Op.String())
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				c.watcher = nil
				return
			}
			c.log.Error("shader watcher error", "error", err)
		default:
			return
		}
	}
}

// Close stops the watcher, if any, and clears the cache.
func (c *EffectCatalog) Close() {
	if c.watcher != nil {
		c.watcher.Close()
		c.watcher = nil
	}
	c.ClearCache()
}
