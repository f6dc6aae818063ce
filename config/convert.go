package config

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/svgmesh"
	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/mesh"
	"github.com/gogpu/svgmesh/preview"
)

// ErrInvalid is returned for settings outside their allowed range.
var ErrInvalid = errors.New("config: invalid value")

func invalid(key string, v any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalid, key, v)
}

// Validate checks every setting.
func (c *Config) Validate() error {
	t := c.Tessellation
	if !(t.Tolerance > 0) || math.IsInf(t.Tolerance, 0) {
		return invalid("tessellation.tolerance", t.Tolerance)
	}
	if !(t.StrokeScale > 0) || math.IsInf(t.StrokeScale, 0) {
		return invalid("tessellation.stroke_scale", t.StrokeScale)
	}
	if t.Epsilon < 0 {
		return invalid("tessellation.epsilon", t.Epsilon)
	}
	if t.MaxDepth < 0 {
		return invalid("tessellation.max_depth", t.MaxDepth)
	}
	if t.DepthStep < 0 {
		return invalid("tessellation.depth_step", t.DepthStep)
	}
	if _, err := parseStrictness(t.Strictness); err != nil {
		return err
	}
	if _, err := parseTarget(t.Target); err != nil {
		return err
	}
	if _, err := parseAxis(t.Axis); err != nil {
		return err
	}
	if _, err := parseGrouping(t.Grouping); err != nil {
		return err
	}
	if t.FillRule != "" {
		if _, err := parseFillRule(t.FillRule); err != nil {
			return err
		}
	}
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return invalid("preview size", fmt.Sprintf("%dx%d", c.Preview.Width, c.Preview.Height))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", c.Logging.Level)
	}
	return nil
}

// Options converts the tessellation settings to svgmesh options.
func (c *Config) Options() ([]svgmesh.Option, error) {
	t := c.Tessellation
	strictness, err := parseStrictness(t.Strictness)
	if err != nil {
		return nil, err
	}
	target, err := parseTarget(t.Target)
	if err != nil {
		return nil, err
	}
	axis, err := parseAxis(t.Axis)
	if err != nil {
		return nil, err
	}
	grouping, err := parseGrouping(t.Grouping)
	if err != nil {
		return nil, err
	}

	opts := []svgmesh.Option{
		svgmesh.WithTolerance(t.Tolerance),
		svgmesh.WithStrictness(strictness),
		svgmesh.WithTarget(target),
		svgmesh.WithAxis(axis),
		svgmesh.WithGrouping(grouping),
		svgmesh.WithStrokeScale(t.StrokeScale),
		svgmesh.WithWorkers(t.Workers),
	}
	if t.FillRule != "" {
		rule, err := parseFillRule(t.FillRule)
		if err != nil {
			return nil, err
		}
		opts = append(opts, svgmesh.WithFillRule(rule))
	}
	if t.Epsilon > 0 {
		opts = append(opts, svgmesh.WithEpsilon(t.Epsilon))
	}
	if t.MaxDepth > 0 {
		opts = append(opts, svgmesh.WithMaxDepth(t.MaxDepth))
	}
	if t.DepthStep > 0 {
		opts = append(opts, svgmesh.WithDepthStep(t.DepthStep))
	}
	return opts, nil
}

// CacheConfig converts the cache settings.
func (c *Config) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.MaxEntries = c.Cache.MaxEntries
	cfg.MaxBytes = c.Cache.MaxBytes
	cfg.Retention = c.Cache.Retention
	cfg.BuildTimeout = c.Cache.BuildTimeout
	return cfg
}

// PreviewOptions converts the preview settings. Y-down output is drawn
// without flipping.
func (c *Config) PreviewOptions() preview.Options {
	p := c.Preview
	opts := preview.Options{
		Width:       p.Width,
		Height:      p.Height,
		Padding:     p.Padding,
		Supersample: p.Supersample,
		Background:  color.White,
		YDown:       c.Tessellation.Axis == "y-down",
	}
	if p.Transparent {
		opts.Background = nil
	}
	return opts
}

func parseStrictness(s string) (document.Strictness, error) {
	switch s {
	case "", "warn":
		return document.Warn, nil
	case "strict":
		return document.Strict, nil
	}
	return 0, invalid("tessellation.strictness", s)
}

func parseTarget(s string) (mesh.Target, error) {
	switch s {
	case "", "2d":
		return mesh.Target2D, nil
	case "3d":
		return mesh.Target3D, nil
	}
	return 0, invalid("tessellation.target", s)
}

func parseAxis(s string) (document.Axis, error) {
	switch s {
	case "", "y-up":
		return document.YUp, nil
	case "y-down":
		return document.YDown, nil
	}
	return 0, invalid("tessellation.axis", s)
}

func parseGrouping(s string) (mesh.Grouping, error) {
	switch s {
	case "", "per-vertex-color":
		return mesh.PerVertexColor, nil
	case "batch-by-color":
		return mesh.BatchByColor, nil
	}
	return 0, invalid("tessellation.grouping", s)
}

func parseFillRule(s string) (document.FillRule, error) {
	switch s {
	case "nonzero":
		return document.NonZero, nil
	case "evenodd":
		return document.EvenOdd, nil
	}
	return 0, invalid("tessellation.fill_rule", s)
}
