package main

import (
	"errors"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/ncruces/zenity"

	"github.com/korallis/Gideon-sub018/internal/config"
	"github.com/korallis/Gideon-sub018/internal/game"
	"github.com/korallis/Gideon-sub018/internal/holo"
)

const tapWindow = 2048

type app struct {
	cfg *config.Config
	log *slog.Logger

	scene   *game.Scene
	clock   *holo.Clock
	catalog *holo.EffectCatalog
	layers  *holo.LayerRegistry
	effects *holo.EffectsService

	panelGlow  *game.Node
	panelGlass *game.Node
	core       *game.Node

	panelInForeground bool

	// audio
	currentFile *os.File
	streamer    beep.StreamSeekCloser
	format      beep.Format
	tap         *game.VisualTap
	initDone    bool

	prevKey map[ebiten.Key]bool
	lastErr error
}

func newApp(cfg *config.Config, log *slog.Logger) *app {
	a := &app{
		cfg:     cfg,
		log:     log,
		prevKey: map[ebiten.Key]bool{},
	}

	w := float64(cfg.Window.Width)
	h := float64(cfg.Window.Height)
	a.scene = game.NewScene(w, h)
	a.clock = holo.NewClock(cfg.Clock.Rate, log)
	a.catalog = holo.NewEffectCatalog(log)
	a.layers = holo.NewLayerRegistry(a.clock, log)
	a.effects = holo.NewEffectsService(a.catalog, a.clock, game.NodeFactory{}, log)

	// Pre-warm the packaged shaders outside interactive frames.
	for _, name := range a.catalog.AvailableNames() {
		a.catalog.LoadEffect(name)
	}
	if dir := cfg.Shaders.WatchDir; dir != "" {
		if err := a.catalog.Watch(dir, a.clock); err != nil {
			log.Warn("shader watch disabled", "error", err)
		}
	}

	a.buildScene(w, h)
	return a
}

func (a *app) buildScene(w, h float64) {
	backdrop := game.NewNode(0, 0, w, h, color.RGBA{R: 0x0A, G: 0x12, B: 0x1E, A: 0xFF})
	a.scene.Root.AddChild(backdrop)
	a.layers.AddToLayer(backdrop, holo.LayerBackground)

	a.panelGlow = game.NewNode(60, 80, 300, 180, color.RGBA{R: 0x0E, G: 0x2A, B: 0x3A, A: 0xFF})
	a.scene.Root.AddChild(a.panelGlow)
	a.layers.AddToLayer(a.panelGlow, holo.LayerForeground, 0.1)
	a.effects.ApplyGlow(a.panelGlow, holo.GlowOptions{
		Intensity:      0.8,
		Radius:         12,
		PulseFrequency: 0.6,
		Color:          color.RGBA{R: 0x00, G: 0xD9, B: 0xFF, A: 0xFF},
	})
	a.effects.ApplyScanlines(a.panelGlow, holo.ScanlineOptions{Intensity: 0.5})

	a.panelGlass = game.NewNode(440, 120, 320, 200, color.RGBA{R: 0x16, G: 0x1E, B: 0x30, A: 0xFF})
	a.scene.Root.AddChild(a.panelGlass)
	a.layers.AddToLayer(a.panelGlass, holo.LayerMidLayer)
	a.effects.ApplyGlassmorphism(a.panelGlass, holo.GlassmorphismOptions{
		BlurRadius:      10,
		BorderThickness: 1.5,
		Opacity:         0.22,
	})

	a.core = game.NewNode(w-140, 60, 64, 64, color.RGBA{R: 0x00, G: 0xFF, B: 0xC8, A: 0xFF})
	a.core.Shape = game.ShapeCircle
	a.scene.Root.AddChild(a.core)
	a.layers.AddToLayer(a.core, holo.LayerTopmost)
	a.effects.StartPulsing(a.core, 1.2, 0.25)

	a.effects.CreateDataStream(a.scene.Root, holo.StreamOptions{
		ParticleCount:  a.cfg.Stream.ParticleCount,
		StreamDuration: a.cfg.Stream.Duration,
		ParticleSize:   a.cfg.Stream.ParticleSize,
		Glow:           true,
	})
}

func (a *app) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !a.prevKey[k]
		a.prevKey[k] = pressed
		return jp
	}

	if justPressed(ebiten.KeyO) {
		if err := a.openAndPlayFileDialog(); err != nil {
			a.lastErr = err
			a.log.Error("audio open failed", "error", err)
		}
	}
	if justPressed(ebiten.KeySpace) {
		a.togglePanelLayer()
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		a.shutdown()
		return ebiten.Termination
	}

	// Audio-reactive glow: reapplying replaces parameters on the cached
	// handle, so this is allocation-free per frame.
	if a.tap != nil {
		level := a.tap.RMS(tapWindow)
		a.effects.ApplyGlow(a.panelGlow, holo.GlowOptions{
			Intensity:      0.5 + 2.5*level,
			Radius:         12,
			PulseFrequency: 0.6,
			Color:          color.RGBA{R: 0x00, G: 0xD9, B: 0xFF, A: 0xFF},
		})
	}

	a.clock.Tick()
	return nil
}

// togglePanelLayer floats the glass panel between MidLayer and Foreground
// with an animated transition.
func (a *app) togglePanelLayer() {
	target := holo.LayerForeground
	if a.panelInForeground {
		target = holo.LayerMidLayer
	}
	a.panelInForeground = !a.panelInForeground
	a.layers.TransitionToLayer(a.panelGlass, target, 0.4)
}

func (a *app) Draw(screen *ebiten.Image) {
	a.scene.Draw(screen)

	status := "O: open audio  Space: float panel  Q/Esc: quit"
	if a.streamer != nil {
		status = "Playing - " + status
	}
	if a.lastErr != nil {
		status += " | Error: " + a.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.cfg.Window.Width, a.cfg.Window.Height
}

func (a *app) shutdown() {
	a.effects.Dispose()
	a.layers.Dispose()
	a.catalog.Close()
	if a.streamer != nil {
		_ = a.streamer.Close()
	}
	if a.currentFile != nil {
		_ = a.currentFile.Close()
	}
}

func (a *app) openAndPlayFileDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return a.loadAndPlay(filename)
}

func (a *app) loadAndPlay(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := filepath.Ext(path); ext {
	case ".wav", ".WAV":
		streamer, format, err = wav.Decode(f)
	case ".mp3", ".MP3":
		streamer, format, err = mp3.Decode(f)
	case ".flac", ".FLAC":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return errors.New("unsupported file type: " + ext)
	}
	if err != nil {
		_ = f.Close()
		return err
	}

	tap := game.NewVisualTap(streamer, tapWindow*4)

	bufferSize := format.SampleRate.N(time.Second / 20)
	if !a.initDone {
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			_ = f.Close()
			return err
		}
		a.initDone = true
	} else {
		speaker.Lock()
		speaker.Clear()
		speaker.Unlock()
		if a.format.SampleRate != format.SampleRate {
			if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
				_ = streamer.Close()
				_ = f.Close()
				return err
			}
		}
	}

	a.currentFile = f
	a.streamer = streamer
	a.format = format
	a.tap = tap

	a.log.Info("audio loaded", "file", filepath.Base(path), "sample_rate", format.SampleRate)

	speaker.Play(beep.Seq(tap, beep.Callback(func() {
		_ = streamer.Close()
		_ = f.Close()
		a.streamer = nil
		a.currentFile = nil
		a.tap = nil
	})))

	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfgPath := ""
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}))

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle("Holographic Compositor - O: open audio, Space: float panel, Esc/Q: quit")

	a := newApp(cfg, log)
	if err := ebiten.RunGame(a); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
}
