package svgmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/geom"
	"github.com/gogpu/svgmesh/internal/fill"
	"github.com/gogpu/svgmesh/internal/flatten"
	"github.com/gogpu/svgmesh/internal/parallel"
	"github.com/gogpu/svgmesh/internal/stroke"
	"github.com/gogpu/svgmesh/mesh"
)

// minScale is the transform scale under which a path is invisible.
const minScale = 1e-12

// Tessellate converts every drawable path of doc into one mesh.
//
// The document is mapped into the output axis convention with a single
// boundary transform, then each path is flattened, filled and stroked in
// its local space and baked into output space by its effective transform.
// A path that cannot be tessellated is skipped and reported through
// mesh.Mesh.Warnings as a *TessellationError; the only error returned is
// ErrNilDocument.
//
// Tessellate does not modify doc and may be called concurrently on the
// same document.
func Tessellate(doc *document.Document, opts ...Option) (*mesh.Mesh, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	return tessellate(doc, newOptions(opts)), nil
}

// TessellateBytes parses data and tessellates the result. Parse failures
// are returned unchanged: they match document.ErrParse or
// document.ErrUnsupportedFeature.
func TessellateBytes(data []byte, opts ...Option) (*mesh.Mesh, error) {
	o := newOptions(opts)
	doc, err := parse(data, o)
	if err != nil {
		return nil, err
	}
	return tessellate(doc, o), nil
}

// TessellateCached returns the mesh of doc from c, tessellating it on a
// miss. The caller must Release the handle.
func TessellateCached(ctx context.Context, c *cache.Cache, doc *document.Document, opts ...Option) (*cache.Handle, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	o := newOptions(opts)
	return c.GetOrBuild(ctx, o.key(doc.Hash), func() (*mesh.Mesh, error) {
		return tessellate(doc, o), nil
	})
}

func parse(data []byte, o options) (*document.Document, error) {
	return document.Parse(data,
		document.WithStrictness(o.strictness),
		document.WithLogger(Logger()))
}

// pathJob is one drawable path with its effective output transform.
type pathJob struct {
	path      *document.Path
	transform geom.Matrix
	index     int
}

// part is a triangle list in path-local coordinates with one color.
type part struct {
	tris  fill.Result
	color mesh.Color
	// layer offsets strokes above fills of the same path.
	layer float32
}

type pathResult struct {
	parts []part
	errs  []error
}

func tessellate(doc *document.Document, o options) *mesh.Mesh {
	start := time.Now()

	var jobs []pathJob
	_ = doc.Walk(doc.BoundaryTransform(o.axis), func(p *document.Path, m geom.Matrix, index int) error {
		if p.Drawable() {
			jobs = append(jobs, pathJob{path: p, transform: m, index: index})
		}
		return nil
	})

	var pool *parallel.WorkerPool
	if o.workers != 1 && len(jobs) > 1 {
		pool = parallel.NewWorkerPool(o.workers)
		defer pool.Close()
	}
	results := parallel.Map(pool, len(jobs), func(i int) pathResult {
		return tessellatePath(jobs[i], o)
	})

	b := mesh.NewBuilder(o.target, o.grouping)
	for i, r := range results {
		job := jobs[i]
		for _, err := range r.errs {
			Logger().Warn("svgmesh: path skipped", "id", job.path.ID, "index", job.index, "err", err)
			b.Warn(err)
		}
		depth := float32(job.index) * o.depthStep
		for _, pt := range r.parts {
			b.Add(pt.tris.Vertices, pt.tris.Indices, job.transform, pt.color, depth+pt.layer*o.depthStep)
		}
	}
	m := b.Build()

	Logger().Debug("svgmesh: tessellated",
		"document", doc.Hash.Short(),
		"paths", len(jobs),
		"vertices", m.VertexCount(),
		"triangles", m.TriangleCount(),
		"groups", len(m.Groups),
		"elapsed", time.Since(start))
	return m
}

// tessellatePath fills and strokes one path in its local coordinates.
func tessellatePath(job pathJob, o options) (out pathResult) {
	p := job.path
	stage := "transform"
	defer func() {
		if r := recover(); r != nil {
			out = pathResult{errs: []error{&TessellationError{
				NodeID: p.ID, Index: job.index, Stage: stage, Err: fmt.Errorf("panic: %v", r),
			}}}
		}
	}()

	if !job.transform.IsFinite() {
		out.errs = append(out.errs, &TessellationError{
			NodeID: p.ID, Index: job.index, Stage: stage, Err: errNonFiniteTransform,
		})
		return out
	}
	scale := job.transform.ScaleFactor()
	if scale < minScale {
		return out
	}

	// Tolerances are given in output units; the path is processed in its
	// local units.
	f := flatten.Flattener{
		Tolerance: o.tolerance / scale,
		MaxDepth:  o.maxDepth,
		Epsilon:   o.epsilon / scale,
	}
	contours := make([]flatten.Contour, 0, len(p.Subpaths))
	for _, sp := range p.Subpaths {
		contours = append(contours, f.Subpath(sp.Start, sp.Segments, sp.Closed))
	}
	fillOpts := fill.Options{Epsilon: o.epsilon / scale}

	if !p.Fill.IsNone() {
		stage = "fill"
		rings := make([][]geom.Point, 0, len(contours))
		for _, c := range contours {
			// Open subpaths are filled as if closed.
			if len(c.Points) >= 3 {
				rings = append(rings, c.Points)
			}
		}
		res, err := fill.Tessellate(rings, fillRule(p, o), fillOpts)
		if err != nil {
			out.errs = append(out.errs, &TessellationError{NodeID: p.ID, Index: job.index, Stage: stage, Err: err})
		} else if len(res.Indices) > 0 {
			out.parts = append(out.parts, part{tris: res, color: paintColor(p.Fill, p.Opacity)})
		}
	}

	if !p.Stroke.IsNone() && p.Style.Width > 0 {
		stage = "stroke"
		exp := stroke.NewStrokeExpander(strokeStyle(p.Style, o.strokeScale))
		exp.SetTolerance(o.tolerance / scale)
		exp.SetEpsilon(o.epsilon / scale)
		var pieces [][]geom.Point
		for _, c := range contours {
			pieces = append(pieces, exp.Expand(c.Points, c.Closed)...)
		}
		res, err := fill.Tessellate(pieces, fill.NonZero, fillOpts)
		if err != nil {
			out.errs = append(out.errs, &TessellationError{NodeID: p.ID, Index: job.index, Stage: stage, Err: err})
		} else if len(res.Indices) > 0 {
			out.parts = append(out.parts, part{tris: res, color: paintColor(p.Stroke, p.Opacity), layer: 0.5})
		}
	}
	return out
}

func fillRule(p *document.Path, o options) fill.Rule {
	r := p.FillRule
	if o.fillRuleSet {
		r = o.fillRule
	}
	if r == document.EvenOdd {
		return fill.EvenOdd
	}
	return fill.NonZero
}

func paintColor(paint document.Paint, opacity float64) mesh.Color {
	return mesh.Color(paint.Color.WithAlpha(opacity).Float32())
}

func strokeStyle(s document.StrokeStyle, scale float64) stroke.Stroke {
	out := stroke.Stroke{
		Width:      s.Width * scale,
		MiterLimit: s.MiterLimit,
		Dash:       stroke.NewDash(s.Dash...).WithOffset(s.DashOffset),
	}
	switch s.Cap {
	case document.CapRound:
		out.Cap = stroke.LineCapRound
	case document.CapSquare:
		out.Cap = stroke.LineCapSquare
	default:
		out.Cap = stroke.LineCapButt
	}
	switch s.Join {
	case document.JoinRound:
		out.Join = stroke.LineJoinRound
	case document.JoinBevel:
		out.Join = stroke.LineJoinBevel
	default:
		out.Join = stroke.LineJoinMiter
	}
	return out
}
