package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/svgmesh"
	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/config"
	"github.com/gogpu/svgmesh/gpu"
	"github.com/gogpu/svgmesh/mesh"
	"github.com/gogpu/svgmesh/preview"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func run(args []string, stdout, stderr io.Writer) int {
	flags, inputs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "usage: svgmesh [flags] file.svg...")
		return exitUsage
	}
	if flags.png && flags.outDir == "" {
		fmt.Fprintln(stderr, "svgmesh: -png requires -out")
		return exitUsage
	}

	cfg := config.Default()
	if flags.configPath != "" {
		if cfg, err = config.Load(flags.configPath); err != nil {
			fmt.Fprintf(stderr, "svgmesh: %v\n", err)
			return exitFailure
		}
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "svgmesh: %v\n", err)
		return exitUsage
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(stderr, "svgmesh: %v\n", err)
		return exitUsage
	}

	logger, closer := newLogger(cfg.Logging, stderr)
	defer closer.Close()
	svgmesh.SetLogger(logger)
	defer svgmesh.SetLogger(nil)

	lang, err := language.Parse(flags.lang)
	if err != nil {
		lang = language.English
	}
	p := message.NewPrinter(lang)

	if flags.outDir != "" {
		if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
			logger.Error("create output directory", "dir", flags.outDir, "err", err)
			return exitFailure
		}
	}

	lib := svgmesh.NewLibrary(cache.New(cfg.CacheConfig()), opts...)
	ctx := context.Background()
	code := exitOK
	for _, in := range inputs {
		if err := process(ctx, lib, in, flags, cfg, p, stdout, logger); err != nil {
			logger.Error("tessellation failed", "file", in, "err", err)
			code = exitFailure
		}
	}

	st := lib.Cache().Stats()
	logger.Debug("cache", "entries", st.Entries, "bytes", st.Bytes, "builds", st.Builds, "hits", st.Hits)
	return code
}

func process(ctx context.Context, lib *svgmesh.Library, path string, flags *cliFlags,
	cfg *config.Config, p *message.Printer, stdout io.Writer, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h, err := lib.Update(ctx, path, data)
	if err != nil {
		return err
	}
	defer h.Release()
	m := h.Mesh()

	if doc, ok := lib.Document(path); ok {
		for _, w := range doc.Warnings {
			logger.Warn("unsupported feature skipped", "file", path, "warning", w.String())
		}
	}
	for _, w := range m.Warnings {
		logger.Warn("path skipped", "file", path, "err", w)
	}

	p.Fprintf(stdout, "%s: %d vertices, %d triangles, %d groups, %d bytes\n",
		path, m.VertexCount(), m.TriangleCount(), len(m.Groups), m.ByteSize())

	if flags.outDir == "" {
		return nil
	}
	base := filepath.Join(flags.outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err := os.WriteFile(base+".vbo", gpu.PackVertices(m), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(base+".ibo", gpu.PackIndices(m), 0o644); err != nil {
		return err
	}
	if flags.png {
		if err := writePreview(base+".png", m, cfg, p); err != nil {
			return err
		}
	}
	logger.Debug("buffers written", "file", path, "base", base)
	return nil
}

func writePreview(path string, m *mesh.Mesh, cfg *config.Config, p *message.Printer) (err error) {
	opts := cfg.PreviewOptions()
	if cfg.Preview.Caption {
		opts.Caption = p.Sprintf("%d triangles", m.TriangleCount())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return preview.WritePNG(f, m, opts)
}
