package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/svgmesh"
	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/mesh"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
<rect width="10" height="10" fill="red"/></svg>`

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Tessellation.Tolerance != svgmesh.DefaultTolerance {
		t.Errorf("tolerance = %v, want %v", cfg.Tessellation.Tolerance, svgmesh.DefaultTolerance)
	}
	if cfg.Cache.MaxEntries != cache.DefaultMaxEntries {
		t.Errorf("max entries = %d, want %d", cfg.Cache.MaxEntries, cache.DefaultMaxEntries)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q, want info", cfg.Logging.Level)
	}

	doc, err := document.Parse([]byte(squareSVG))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	if svgmesh.KeyFor(doc, opts...) != svgmesh.KeyFor(doc) {
		t.Error("default config options produce a different cache key than library defaults")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
tessellation:
  tolerance: 0.05
  target: 3d
  axis: y-down
  grouping: batch-by-color
  fill_rule: evenodd
cache:
  max_entries: 16
  retention: 5m
  build_timeout: 2s
preview:
  width: 128
  height: 64
  transparent: true
logging:
  level: debug
  file: svgmesh.log
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Tessellation.Tolerance != 0.05 {
		t.Errorf("tolerance = %v, want 0.05", cfg.Tessellation.Tolerance)
	}
	// Unset keys keep defaults.
	if cfg.Tessellation.StrokeScale != 1 {
		t.Errorf("stroke scale = %v, want 1", cfg.Tessellation.StrokeScale)
	}

	cc := cfg.CacheConfig()
	if cc.MaxEntries != 16 {
		t.Errorf("MaxEntries = %d, want 16", cc.MaxEntries)
	}
	if cc.Retention != 5*time.Minute {
		t.Errorf("Retention = %v, want 5m", cc.Retention)
	}
	if cc.BuildTimeout != 2*time.Second {
		t.Errorf("BuildTimeout = %v, want 2s", cc.BuildTimeout)
	}
	if cc.Now == nil {
		t.Error("Now is nil, want a clock")
	}

	po := cfg.PreviewOptions()
	if po.Width != 128 || po.Height != 64 {
		t.Errorf("preview size = %dx%d, want 128x64", po.Width, po.Height)
	}
	if po.Background != nil {
		t.Errorf("Background = %v, want nil for transparent", po.Background)
	}
	if !po.YDown {
		t.Error("YDown = false, want true for y-down axis")
	}

	doc, err := document.Parse([]byte(squareSVG))
	if err != nil {
		t.Fatalf("document.Parse() error = %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() error = %v", err)
	}
	want := svgmesh.KeyFor(doc,
		svgmesh.WithTolerance(0.05),
		svgmesh.WithTarget(mesh.Target3D),
		svgmesh.WithAxis(document.YDown),
		svgmesh.WithGrouping(mesh.BatchByColor),
		svgmesh.WithFillRule(document.EvenOdd))
	if got := svgmesh.KeyFor(doc, opts...); got != want {
		t.Errorf("KeyFor(config options) = %v, want %v", got, want)
	}

	m, err := svgmesh.Tessellate(doc, opts...)
	if err != nil {
		t.Fatalf("Tessellate() error = %v", err)
	}
	if m.Target != mesh.Target3D {
		t.Errorf("Target = %v, want 3d", m.Target)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if cfg.Tessellation.Target != "2d" {
		t.Errorf("target = %q, want 2d", cfg.Tessellation.Target)
	}
	if po := cfg.PreviewOptions(); po.Background != color.White {
		t.Errorf("Background = %v, want white", po.Background)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"zero tolerance", "tessellation:\n  tolerance: 0\n"},
		{"negative stroke scale", "tessellation:\n  stroke_scale: -1\n"},
		{"bad target", "tessellation:\n  target: 4d\n"},
		{"bad axis", "tessellation:\n  axis: sideways\n"},
		{"bad grouping", "tessellation:\n  grouping: random\n"},
		{"bad fill rule", "tessellation:\n  fill_rule: odd\n"},
		{"bad strictness", "tessellation:\n  strictness: lenient\n"},
		{"bad preview size", "preview:\n  width: 0\n"},
		{"bad level", "logging:\n  level: chatty\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	if _, err := Parse([]byte("tessellation:\n  tolerence: 0.1\n")); err == nil {
		t.Error("Parse() with misspelled key succeeded, want error")
	}
	if _, err := Parse([]byte("tessellation: [")); err == nil {
		t.Error("Parse() with malformed YAML succeeded, want error")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svgmesh.yaml")
	cfg := Default()
	cfg.Tessellation.Tolerance = 0.25
	cfg.Cache.Retention = time.Minute
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load() = %+v, want %+v", got, cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}
