// Package fill triangulates flattened, possibly self-intersecting,
// multi-contour polygons under the nonzero or even-odd fill rule.
//
// Holes and overlaps are resolved by the winding number, never by contour
// order or orientation. Output triangles always have positive signed area
// (counter-clockwise in a Y-up frame) in the input coordinate space.
//
// A single strictly convex contour is fanned and a single small simple
// contour is ear-clipped; both give exactly n-2 triangles. Everything else
// goes through a slab sweep: the plane is cut into horizontal slabs at
// every vertex and edge crossing, each slab is split into spans by its
// edges, and inside spans become trapezoids of two triangles each.
package fill

import (
	"errors"
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// Rule decides which regions are inside from their winding number.
type Rule int

const (
	// NonZero treats every region with a non-zero winding number as inside.
	NonZero Rule = iota
	// EvenOdd treats regions with an odd winding number as inside.
	EvenOdd
)

// String returns "nonzero" or "evenodd".
func (r Rule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// inside reports whether a region with winding number w is filled.
func (r Rule) inside(w int) bool {
	if r == EvenOdd {
		return w%2 != 0
	}
	return w != 0
}

// Default option values.
const (
	DefaultEpsilon      = 1e-7
	DefaultEarClipLimit = 128
)

// ErrNonFinite is returned for NaN or infinite input coordinates.
var ErrNonFinite = errors.New("fill: non-finite coordinate")

// Options tunes the tessellator. The zero value uses the defaults.
type Options struct {
	// Epsilon is the distance under which two points are merged into one
	// vertex and two sweep events into one.
	Epsilon float64

	// EarClipLimit is the largest single simple contour that is
	// ear-clipped; larger ones use the sweep. Negative disables ear
	// clipping.
	EarClipLimit int

	// NoFastPaths forces the sweep for every input.
	NoFastPaths bool
}

func (o Options) epsilon() float64 {
	if !(o.Epsilon > 0) || math.IsInf(o.Epsilon, 0) {
		return DefaultEpsilon
	}
	return o.Epsilon
}

func (o Options) earClipLimit() int {
	if o.EarClipLimit == 0 {
		return DefaultEarClipLimit
	}
	return o.EarClipLimit
}

// Result is an indexed triangle list.
type Result struct {
	Vertices []geom.Point
	// Indices holds one triple per triangle.
	Indices []uint32
}

// TriangleCount returns the number of triangles.
func (r Result) TriangleCount() int {
	return len(r.Indices) / 3
}

// Area returns the summed area of all triangles.
func (r Result) Area() float64 {
	var a float64
	for i := 0; i+2 < len(r.Indices); i += 3 {
		a += triangleArea(r.Vertices[r.Indices[i]], r.Vertices[r.Indices[i+1]], r.Vertices[r.Indices[i+2]])
	}
	return a
}

// Tessellate triangulates contours under rule. Each contour is a closed
// ring of points; the closing edge is implicit. Contours with fewer than
// three distinct points or zero area contribute nothing. The only error is
// ErrNonFinite.
func Tessellate(contours [][]geom.Point, rule Rule, opts Options) (Result, error) {
	for _, c := range contours {
		for _, p := range c {
			if !p.IsFinite() {
				return Result{}, ErrNonFinite
			}
		}
	}
	eps := opts.epsilon()

	rings := make([][]geom.Point, 0, len(contours))
	for _, c := range contours {
		if r := cleanRing(c, eps); len(r) >= 3 {
			rings = append(rings, r)
		}
	}
	if len(rings) == 0 {
		return Result{}, nil
	}

	if len(rings) == 1 && !opts.NoFastPaths {
		ring := rings[0]
		if isStrictlyConvex(ring, eps) {
			return fan(ring), nil
		}
		if limit := opts.earClipLimit(); limit > 0 && len(ring) <= limit {
			if r, ok := earClip(ring, eps); ok {
				return r, nil
			}
		}
	}
	return sweep(rings, rule, eps), nil
}

// cleanRing drops points that coincide with their predecessor, including
// across the closing edge.
func cleanRing(c []geom.Point, eps float64) []geom.Point {
	out := make([]geom.Point, 0, len(c))
	for _, p := range c {
		if len(out) > 0 && p.Near(out[len(out)-1], eps) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1].Near(out[0], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// triangleArea returns the signed area of abc, positive when
// counter-clockwise.
func triangleArea(a, b, c geom.Point) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a))
}
