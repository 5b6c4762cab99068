// Package config loads the compositor's configuration: window geometry,
// animation clock rate, data-stream defaults and logging level. Defaults
// cover every field; an optional YAML file overrides them.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the full demo/engine configuration.
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Clock   ClockConfig   `mapstructure:"clock"`
	Stream  StreamConfig  `mapstructure:"stream"`
	Shaders ShadersConfig `mapstructure:"shaders"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WindowConfig controls the composited surface size.
type WindowConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ClockConfig controls the animation clock.
type ClockConfig struct {
	// Rate is the tick rate in Hz.
	Rate float64 `mapstructure:"rate"`
}

// StreamConfig holds data-stream defaults.
type StreamConfig struct {
	ParticleCount int     `mapstructure:"particle_count"`
	Duration      float64 `mapstructure:"duration"`
	ParticleSize  float64 `mapstructure:"particle_size"`
}

// ShadersConfig controls effect-resource resolution extras.
type ShadersConfig struct {
	// WatchDir, when set, enables hot-invalidation of fallback .fx files.
	WatchDir string `mapstructure:"watch_dir"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// Load reads configuration from path, or from holofx.yaml in the working
// directory when path is empty. A missing file is not an error; defaults
// apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 512)
	v.SetDefault("clock.rate", 60.0)
	v.SetDefault("stream.particle_count", 20)
	v.SetDefault("stream.duration", 3.0)
	v.SetDefault("stream.particle_size", 3.0)
	v.SetDefault("shaders.watch_dir", "")
	v.SetDefault("logging.level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("holofx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
