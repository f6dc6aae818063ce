package document

import "log/slog"

// Strictness selects how the parser treats features outside the supported
// subset.
type Strictness int

const (
	// Warn skips unsupported elements, falls back to no paint (or the
	// declared fallback color) for unsupported paint, and records a Warning.
	Warn Strictness = iota
	// Strict fails the whole parse with an *UnsupportedFeatureError.
	Strict
)

// String returns "warn" or "strict".
func (s Strictness) String() string {
	if s == Strict {
		return "strict"
	}
	return "warn"
}

// ParseOption configures Parse.
type ParseOption func(*parseOptions)

type parseOptions struct {
	strictness Strictness
	logger     *slog.Logger
}

func defaultParseOptions() parseOptions {
	return parseOptions{
		strictness: Warn,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithStrictness sets the policy for unsupported features. The default is
// Warn.
func WithStrictness(s Strictness) ParseOption {
	return func(o *parseOptions) {
		o.strictness = s
	}
}

// WithLogger sets the logger that receives parse warnings. Pass nil to
// disable logging.
func WithLogger(l *slog.Logger) ParseOption {
	return func(o *parseOptions) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}
