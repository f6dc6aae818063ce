package svgmesh

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/svgmesh/cache"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for svgmesh and its sub-packages.
// By default, svgmesh produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by svgmesh:
//   - [slog.LevelDebug]: per-document and per-path statistics, cache activity
//   - [slog.LevelWarn]: skipped nodes, unsupported features, failed builds
//   - [slog.LevelError]: panics recovered from cache builds
//
// Example:
//
//	// Enable warnings to stderr:
//	svgmesh.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	svgmesh.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	cache.SetLogger(l)
}

// Logger returns the current logger used by svgmesh.
// Sub-packages without their own logger receive it through options, for
// example document.WithLogger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
