// Package config loads svgmesh settings from YAML files.
//
// A file configures tessellation, the mesh cache, previews and logging:
//
//	tessellation:
//	  tolerance: 0.05
//	  target: 3d
//	  grouping: batch-by-color
//	cache:
//	  max_entries: 512
//	  retention: 5m
//	logging:
//	  level: debug
//	  file: svgmesh.log
//
// Missing keys keep their defaults; unknown keys are an error.
package config

import (
	"time"

	"github.com/gogpu/svgmesh"
	"github.com/gogpu/svgmesh/cache"
)

// Config holds all settings.
type Config struct {
	Tessellation TessellationConfig `yaml:"tessellation"`
	Cache        CacheConfig        `yaml:"cache"`
	Preview      PreviewConfig      `yaml:"preview"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// TessellationConfig mirrors the svgmesh options.
type TessellationConfig struct {
	Tolerance   float64 `yaml:"tolerance"`
	Strictness  string  `yaml:"strictness"` // warn or strict
	Target      string  `yaml:"target"`     // 2d or 3d
	Axis        string  `yaml:"axis"`       // y-up or y-down
	Grouping    string  `yaml:"grouping"`   // per-vertex-color or batch-by-color
	FillRule    string  `yaml:"fill_rule"`  // empty keeps per-path rules
	StrokeScale float64 `yaml:"stroke_scale"`
	Epsilon     float64 `yaml:"epsilon"`
	MaxDepth    int     `yaml:"max_depth"`
	DepthStep   float32 `yaml:"depth_step"`
	Workers     int     `yaml:"workers"`
}

// CacheConfig holds mesh cache budgets.
type CacheConfig struct {
	MaxEntries   int           `yaml:"max_entries"`
	MaxBytes     int64         `yaml:"max_bytes"`
	Retention    time.Duration `yaml:"retention"`
	BuildTimeout time.Duration `yaml:"build_timeout"`
}

// PreviewConfig holds PNG preview settings.
type PreviewConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Padding     int  `yaml:"padding"`
	Supersample int  `yaml:"supersample"`
	Transparent bool `yaml:"transparent"`
	Caption     bool `yaml:"caption"`
}

// LoggingConfig holds logging settings. File output is rotated.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with the library defaults.
func Default() *Config {
	return &Config{
		Tessellation: TessellationConfig{
			Tolerance:   svgmesh.DefaultTolerance,
			Strictness:  "warn",
			Target:      "2d",
			Axis:        "y-up",
			Grouping:    "per-vertex-color",
			StrokeScale: 1,
			DepthStep:   svgmesh.DefaultDepthStep,
			Workers:     1,
		},
		Cache: CacheConfig{
			MaxEntries: cache.DefaultMaxEntries,
			MaxBytes:   cache.DefaultMaxBytes,
		},
		Preview: PreviewConfig{
			Width:       512,
			Height:      512,
			Padding:     16,
			Supersample: 2,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
