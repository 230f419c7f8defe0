// Package config loads wiremesh tunables from a YAML file and maps them
// onto the library's functional options. Absent fields keep the library
// defaults; a missing file yields the default configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/signal"
)

// ErrBadValue indicates a configuration field outside its valid range.
var ErrBadValue = errors.New("config: value out of range")

// Config contains all wiremesh settings.
type Config struct {
	// MaxDegree is the per-anchor link limit.
	MaxDegree int `yaml:"max_degree"`

	// MaxLinkDistance is the link distance limit in grid units.
	MaxLinkDistance int `yaml:"max_link_distance"`

	// SignalLossDelayTicks delays signal decay after input loss.
	SignalLossDelayTicks int `yaml:"signal_loss_delay_ticks"`

	// UpdateIntervalTicks spaces the periodic self-healing passes.
	UpdateIntervalTicks int `yaml:"update_interval_ticks"`

	// Logging configures CLI log output.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	// Level is "info" (default) or "debug".
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxDegree:            mesh.DefaultMaxDegree,
		MaxLinkDistance:      mesh.DefaultMaxLinkDistance,
		SignalLossDelayTicks: signal.DefaultSignalLossDelay,
		UpdateIntervalTicks:  signal.DefaultUpdateInterval,
		Logging:              LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error; a malformed file or out-of-range value is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every field range and reports the offending value.
func (c Config) Validate() error {
	if c.MaxDegree < 1 {
		return fmt.Errorf("%w: max_degree = %d (want ≥ 1)", ErrBadValue, c.MaxDegree)
	}
	if c.MaxLinkDistance < 1 {
		return fmt.Errorf("%w: max_link_distance = %d (want ≥ 1)", ErrBadValue, c.MaxLinkDistance)
	}
	if c.SignalLossDelayTicks < 0 {
		return fmt.Errorf("%w: signal_loss_delay_ticks = %d (want ≥ 0)", ErrBadValue, c.SignalLossDelayTicks)
	}
	if c.UpdateIntervalTicks < 1 {
		return fmt.Errorf("%w: update_interval_ticks = %d (want ≥ 1)", ErrBadValue, c.UpdateIntervalTicks)
	}
	return nil
}

// MeshOptions maps the configuration onto mesh options.
func (c Config) MeshOptions() []mesh.MeshOption {
	return []mesh.MeshOption{
		mesh.WithMaxDegree(c.MaxDegree),
		mesh.WithMaxLinkDistance(c.MaxLinkDistance),
	}
}

// EngineOptions maps the configuration onto engine options; log may be
// nil to keep the engine silent.
func (c Config) EngineOptions(log *slog.Logger) []signal.EngineOption {
	opts := []signal.EngineOption{
		signal.WithSignalLossDelay(c.SignalLossDelayTicks),
		signal.WithUpdateInterval(c.UpdateIntervalTicks),
	}
	if log != nil {
		opts = append(opts, signal.WithLogger(log))
	}
	return opts
}

// NewLogger creates a leveled text logger for the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	lvl := slog.LevelInfo
	if strings.EqualFold(c.Logging.Level, "debug") {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
