package svgmesh

import (
	"math"

	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/internal/fill"
	"github.com/gogpu/svgmesh/internal/flatten"
	"github.com/gogpu/svgmesh/mesh"
)

// Default option values.
const (
	// DefaultTolerance is the default flattening tolerance in output units.
	DefaultTolerance = 0.1

	// DefaultDepthStep separates consecutive paths along Z for Target3D.
	DefaultDepthStep = 1e-4
)

// Option configures tessellation.
//
// Example:
//
//	// Defaults: tolerance 0.1, one draw group, 2D, Y-up output
//	m, err := svgmesh.TessellateBytes(data)
//
//	// Batched 3D output at a finer tolerance
//	m, err := svgmesh.TessellateBytes(data,
//	    svgmesh.WithTolerance(0.01),
//	    svgmesh.WithGrouping(mesh.BatchByColor),
//	    svgmesh.WithTarget(mesh.Target3D))
type Option func(*options)

// options holds the resolved configuration of one tessellation.
type options struct {
	tolerance  float64
	strictness document.Strictness
	grouping   mesh.Grouping
	target     mesh.Target
	axis       document.Axis

	fillRule    document.FillRule
	fillRuleSet bool

	strokeScale float64
	epsilon     float64
	maxDepth    int
	depthStep   float32
	workers     int
}

// defaultOptions returns the default tessellation options.
func defaultOptions() options {
	return options{
		tolerance:   DefaultTolerance,
		strictness:  document.Warn,
		grouping:    mesh.PerVertexColor,
		target:      mesh.Target2D,
		axis:        document.YUp,
		strokeScale: 1,
		epsilon:     fill.DefaultEpsilon,
		maxDepth:    flatten.DefaultMaxDepth,
		depthStep:   DefaultDepthStep,
		workers:     1,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// WithTolerance sets the maximum distance between a curve and its
// flattened polyline, in output units. Non-positive values are ignored.
func WithTolerance(tolerance float64) Option {
	return func(o *options) {
		if positiveFinite(tolerance) {
			o.tolerance = tolerance
		}
	}
}

// WithStrictness sets the parser policy for unsupported features. It only
// affects entry points that parse, such as TessellateBytes and Library.
func WithStrictness(s document.Strictness) Option {
	return func(o *options) {
		o.strictness = s
	}
}

// WithGrouping sets the draw group policy. The default is
// mesh.PerVertexColor.
func WithGrouping(g mesh.Grouping) Option {
	return func(o *options) {
		o.grouping = g
	}
}

// WithTarget selects 2D or 3D vertex positions. The default is
// mesh.Target2D.
func WithTarget(t mesh.Target) Option {
	return func(o *options) {
		o.target = t
	}
}

// WithAxis sets the y axis convention of the output. The default is
// document.YUp; document.YDown keeps SVG coordinates unchanged.
func WithAxis(a document.Axis) Option {
	return func(o *options) {
		o.axis = a
	}
}

// WithFillRule overrides the fill rule of every path.
func WithFillRule(r document.FillRule) Option {
	return func(o *options) {
		o.fillRule = r
		o.fillRuleSet = true
	}
}

// WithStrokeScale multiplies every stroke width. Non-positive values are
// ignored.
func WithStrokeScale(scale float64) Option {
	return func(o *options) {
		if positiveFinite(scale) {
			o.strokeScale = scale
		}
	}
}

// WithEpsilon sets the distance, in output units, under which two points
// are merged. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if positiveFinite(eps) {
			o.epsilon = eps
		}
	}
}

// WithMaxDepth bounds curve subdivision. Non-positive values are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithDepthStep sets the Z distance between consecutive paths in paint
// order for mesh.Target3D. Later paths get larger Z.
func WithDepthStep(step float32) Option {
	return func(o *options) {
		o.depthStep = step
	}
}

// WithWorkers sets the number of goroutines tessellating paths. Values
// below 1 use GOMAXPROCS. The default is 1. Output does not depend on the
// worker count.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
