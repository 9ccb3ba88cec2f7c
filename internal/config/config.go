// Package config loads the server's YAML configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"world-conquest/internal/game"
	"world-conquest/pkg/maps"
)

//go:embed default.yaml
var defaultYAML []byte

// LocalPath is checked when no custom path is given.
const LocalPath = "configs/server.yaml"

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Map      MapConfig     `yaml:"map"`
	Rules    game.Rules    `yaml:"rules"`
	Log      LogConfig     `yaml:"log"`
	Scenario game.Scenario `yaml:"scenario"`
}

// ServerConfig holds network and storage settings.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
}

// MapConfig selects the bitmap and how it is segmented.
type MapConfig struct {
	ID     string `yaml:"id"`     // embedded map, used when Bitmap is empty
	Bitmap string `yaml:"bitmap"` // PNG or BMP file

	// Unset keeps the segmentation default. A tolerance of 0 is exact
	// matching; an opacity threshold of 0 or 1 treats any non-zero alpha
	// as opaque.
	Tolerance        *uint8 `yaml:"tolerance"`
	OpacityThreshold *uint8 `yaml:"opacity_threshold"`

	WaterRanges    []RangeConfig `yaml:"water_ranges"`
	TraceMaxPoints int           `yaml:"trace_max_points"`
}

// RangeConfig is an inclusive RGB range, each bound written as [r, g, b].
type RangeConfig struct {
	Min []int `yaml:"min"`
	Max []int `yaml:"max"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	Dev        bool   `yaml:"dev"`
	NoColor    bool   `yaml:"no_color"`
}

// Load reads the configuration.
// Search order: customPath -> ./configs/server.yaml -> embedded default.
// Fields missing from a file keep their embedded defaults.
func Load(customPath string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	if data, err := os.ReadFile(LocalPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", LocalPath, err)
		}
	}
	return cfg, cfg.Validate()
}

// Default returns the embedded configuration.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("embedded config: %w", err)
	}
	return cfg, nil
}

// Config errors
var (
	ErrBadRules = errors.New("invalid rules")
	ErrBadRange = errors.New("invalid water range")
)

// Validate checks values that would make the game unplayable.
func (c Config) Validate() error {
	if c.Rules.MaxMoveDepth <= 0 {
		return fmt.Errorf("%w: max_move_depth must be positive", ErrBadRules)
	}
	if c.Rules.MovesPerRound <= 0 {
		return fmt.Errorf("%w: moves_per_round must be positive", ErrBadRules)
	}
	_, err := c.Map.Options()
	return err
}

// Options converts the map settings into segmentation options.
func (m MapConfig) Options() (maps.Options, error) {
	opts := maps.DefaultOptions()
	if m.Tolerance != nil {
		opts.Tolerance = *m.Tolerance
	}
	if m.OpacityThreshold != nil {
		opts.OpacityThreshold = *m.OpacityThreshold
	}
	if len(m.WaterRanges) > 0 {
		opts.WaterRanges = opts.WaterRanges[:0:0]
		for i, r := range m.WaterRanges {
			lo, err := toRGB(r.Min)
			if err != nil {
				return opts, fmt.Errorf("%w %d min: %v", ErrBadRange, i, err)
			}
			hi, err := toRGB(r.Max)
			if err != nil {
				return opts, fmt.Errorf("%w %d max: %v", ErrBadRange, i, err)
			}
			opts.WaterRanges = append(opts.WaterRanges, maps.ColorRange{Min: lo, Max: hi})
		}
	}
	return opts, nil
}

// Trace returns the outline tracing options.
func (m MapConfig) Trace() maps.TraceOptions {
	opts := maps.DefaultTraceOptions()
	if m.TraceMaxPoints > 0 {
		opts.MaxPoints = m.TraceMaxPoints
	}
	return opts
}

func toRGB(v []int) (maps.RGB, error) {
	if len(v) != 3 {
		return maps.RGB{}, fmt.Errorf("want 3 channels, got %d", len(v))
	}
	for _, c := range v {
		if c < 0 || c > 255 {
			return maps.RGB{}, fmt.Errorf("channel %d out of range", c)
		}
	}
	return maps.RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}, nil
}
