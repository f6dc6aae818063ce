package main

import (
	"flag"
	"io"

	"github.com/gogpu/svgmesh/config"
)

// cliFlags holds the command-line flags. Settings flags override the
// config file only when given explicitly.
type cliFlags struct {
	configPath string
	outDir     string
	png        bool
	lang       string

	tolerance float64
	target    string
	grouping  string
	axis      string
	strict    bool
	workers   int
	logFile   string
	verbose   bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, []string, error) {
	f := &cliFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("svgmesh", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.configPath, "config", "", "path to YAML config file")
	fs.StringVar(&f.outDir, "out", "", "directory for .vbo/.ibo buffers and previews")
	fs.BoolVar(&f.png, "png", false, "write a PNG preview per input (requires -out)")
	fs.StringVar(&f.lang, "lang", "en", "language tag for number formatting")

	fs.Float64Var(&f.tolerance, "tolerance", 0, "flattening tolerance in output units")
	fs.StringVar(&f.target, "target", "", "vertex layout: 2d or 3d")
	fs.StringVar(&f.grouping, "grouping", "", "per-vertex-color or batch-by-color")
	fs.StringVar(&f.axis, "axis", "", "output axis: y-up or y-down")
	fs.BoolVar(&f.strict, "strict", false, "fail on unsupported features")
	fs.IntVar(&f.workers, "workers", 0, "tessellation workers (0 uses all CPUs)")
	fs.StringVar(&f.logFile, "log-file", "", "also write logs to this rotated file")
	fs.BoolVar(&f.verbose, "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, fs.Args(), nil
}

// apply overrides cfg with explicitly given flags.
func (f *cliFlags) apply(cfg *config.Config) {
	t := &cfg.Tessellation
	if f.set["tolerance"] {
		t.Tolerance = f.tolerance
	}
	if f.set["target"] {
		t.Target = f.target
	}
	if f.set["grouping"] {
		t.Grouping = f.grouping
	}
	if f.set["axis"] {
		t.Axis = f.axis
	}
	if f.set["strict"] {
		t.Strictness = "warn"
		if f.strict {
			t.Strictness = "strict"
		}
	}
	if f.set["workers"] {
		t.Workers = f.workers
	}
	if f.set["log-file"] {
		cfg.Logging.File = f.logFile
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
}
