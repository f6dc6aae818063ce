// Package flatten converts curve segments into polylines within a tolerance.
//
// Curves are split by de Casteljau subdivision on an explicit work stack.
// A piece is accepted when both interior control points lie within the
// tolerance of its chord; by the convex hull property the curve itself then
// deviates from the chord by no more than the tolerance. Elliptical arcs are
// first approximated by cubic Béziers so that one curve representation
// flows downstream.
package flatten

import (
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// Default parameters.
const (
	// DefaultTolerance is used when a non-positive tolerance is given.
	DefaultTolerance = 0.1

	// DefaultMaxDepth bounds subdivision of pathological curves such as
	// near-cusps. Depth 16 allows 65536 pieces per curve.
	DefaultMaxDepth = 16

	// DefaultEpsilon is the distance under which two points are the same.
	DefaultEpsilon = 1e-9
)

// Flattener holds flattening parameters. The zero value uses the defaults.
type Flattener struct {
	// Tolerance is the maximum distance between a curve and its polyline.
	Tolerance float64
	// MaxDepth is the maximum subdivision depth per curve.
	MaxDepth int
	// Epsilon is the point coincidence threshold.
	Epsilon float64
}

func (f Flattener) tolerance() float64 {
	if !(f.Tolerance > 0) || math.IsInf(f.Tolerance, 0) {
		return DefaultTolerance
	}
	return f.Tolerance
}

func (f Flattener) maxDepth() int {
	if f.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return f.MaxDepth
}

func (f Flattener) epsilon() float64 {
	if !(f.Epsilon > 0) {
		return DefaultEpsilon
	}
	return f.Epsilon
}

// Flatten returns the polyline of seg, start and end points included.
func Flatten(seg geom.Segment, tolerance float64) []geom.Point {
	return Flattener{Tolerance: tolerance}.Flatten(seg)
}

// Append appends the polyline of seg to dst, excluding its start point.
func Append(dst []geom.Point, seg geom.Segment, tolerance float64) []geom.Point {
	return Flattener{Tolerance: tolerance}.Append(dst, seg)
}

// Flatten returns the polyline of seg, start and end points included.
func (f Flattener) Flatten(seg geom.Segment) []geom.Point {
	return f.Append([]geom.Point{seg.Start()}, seg)
}

// Append appends the polyline of seg to dst, excluding its start point.
// The end point is always appended, even for degenerate segments, so
// connectivity with the next segment is kept.
func (f Flattener) Append(dst []geom.Point, seg geom.Segment) []geom.Point {
	switch s := seg.(type) {
	case geom.Line:
		return append(dst, s.P1)
	case geom.QuadBez:
		return f.appendCubic(dst, s.Raise(), f.tolerance())
	case geom.CubicBez:
		return f.appendCubic(dst, s, f.tolerance())
	case geom.Arc:
		return f.appendArc(dst, s)
	}
	return append(dst, seg.End())
}

// appendCubic subdivides c until every piece is within tol of its chord.
func (f Flattener) appendCubic(dst []geom.Point, c geom.CubicBez, tol float64) []geom.Point {
	type work struct {
		c     geom.CubicBez
		depth int
	}
	maxDepth := f.maxDepth()
	stack := make([]work, 1, maxDepth+1)
	stack[0] = work{c: c}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if w.depth >= maxDepth || w.c.Flatness() <= tol {
			dst = append(dst, w.c.P3)
			continue
		}
		left, right := w.c.Subdivide()
		// Right half goes first so the left half is popped next.
		stack = append(stack, work{c: right, depth: w.depth + 1}, work{c: left, depth: w.depth + 1})
	}
	return dst
}

// appendArc approximates a with cubics of at most a quarter turn each,
// splitting further until the approximation error is within a quarter of
// the tolerance, then flattens the cubics with the remainder.
func (f Flattener) appendArc(dst []geom.Point, a geom.Arc) []geom.Point {
	c, ok := a.Center()
	if !ok {
		// Coincident endpoints or a zero radius: a straight line.
		return append(dst, a.P1)
	}
	tol := f.tolerance()

	sweep := math.Abs(c.DeltaTheta)
	n := int(math.Ceil(sweep/(math.Pi/2) - 1e-9))
	if n < 1 {
		n = 1
	}
	r := math.Max(c.Rx, c.Ry)
	for n < 1<<f.maxDepth() && ArcCubicError(r, sweep/float64(n)) > tol/4 {
		n *= 2
	}
	approx := ArcCubicError(r, sweep/float64(n))
	remaining := tol - approx
	if remaining < tol/4 {
		remaining = tol / 4
	}

	step := c.DeltaTheta / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		t1 := c.Theta1 + step*float64(i)
		t2 := t1 + step
		p0 := c.Point(t1)
		p3 := c.Point(t2)
		if i == 0 {
			p0 = a.P0
		}
		if i == n-1 {
			p3 = a.P1
		}
		cubic := geom.CubicBez{
			P0: p0,
			P1: p0.Add(c.Derivative(t1).Mul(k)),
			P2: p3.Sub(c.Derivative(t2).Mul(k)),
			P3: p3,
		}
		dst = f.appendCubic(dst, cubic, remaining)
	}
	return dst
}

// ArcCubicError estimates the maximum radial error of the standard cubic
// approximation of a circular arc of radius r spanning theta radians.
func ArcCubicError(r, theta float64) float64 {
	s := math.Sin(theta / 4)
	c := math.Cos(theta / 4)
	return r * 2 * math.Pow(s, 6) / (27 * c * c)
}

// CircularArc returns points on the circle of the given center and radius
// from angle start, sweeping sweep radians (positive is counter-clockwise
// in a Y-up frame). Consecutive points are close enough that no chord
// deviates from the circle by more than tolerance. The first and last
// points lie exactly at the start and end angles.
func CircularArc(center geom.Point, radius, start, sweep, tolerance float64) []geom.Point {
	n := ArcSteps(radius, sweep, tolerance)
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := start + sweep*float64(i)/float64(n)
		pts = append(pts, geom.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		})
	}
	return pts
}

// ArcSteps returns the number of chords needed to approximate an arc of
// the given radius and sweep with a sagitta of at most tolerance.
func ArcSteps(radius, sweep, tolerance float64) int {
	if !(tolerance > 0) {
		tolerance = DefaultTolerance
	}
	sweep = math.Abs(sweep)
	if radius <= tolerance {
		// One chord per quarter turn keeps the shape recognizable.
		return max(1, int(math.Ceil(sweep/(math.Pi/2))))
	}
	// The sagitta of a chord spanning theta is r*(1-cos(theta/2)).
	maxStep := 2 * math.Acos(1-tolerance/radius)
	return max(1, int(math.Ceil(sweep/maxStep)))
}
