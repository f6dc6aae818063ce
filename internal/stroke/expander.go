package stroke

import (
	"math"

	"github.com/gogpu/svgmesh/geom"
	"github.com/gogpu/svgmesh/internal/flatten"
)

// defaultEpsilon is the distance under which consecutive points collapse.
const defaultEpsilon = 1e-9

// StrokeExpander converts stroked polylines to filled pieces.
// A StrokeExpander is not safe for concurrent use; it is cheap to create
// one per goroutine.
type StrokeExpander struct {
	style     Stroke
	tolerance float64
	epsilon   float64

	// Join threshold for replacing nearly straight joins with a bevel
	joinThresh float64

	pieces [][]geom.Point
}

// NewStrokeExpander creates a new stroke expander with the given style.
func NewStrokeExpander(style Stroke) *StrokeExpander {
	return &StrokeExpander{
		style:     style,
		tolerance: 0.25,
		epsilon:   defaultEpsilon,
	}
}

// SetTolerance sets the maximum deviation of round joins and caps from
// the true circle. Non-positive values are ignored.
func (e *StrokeExpander) SetTolerance(tolerance float64) {
	if tolerance > 0 {
		e.tolerance = tolerance
	}
}

// SetEpsilon sets the distance under which consecutive points are treated
// as one. Non-positive values are ignored.
func (e *StrokeExpander) SetEpsilon(eps float64) {
	if eps > 0 {
		e.epsilon = eps
	}
}

// Style returns the stroke style of the expander.
func (e *StrokeExpander) Style() Stroke {
	return e.style
}

// Expand returns the counter-clockwise pieces whose union is the stroke of
// the polyline pts. When closed is true the last point connects back to
// the first with a join instead of caps. Zero-length segments are removed
// before joins are computed, so they never break join continuity. A dashed
// style strokes every dash as an open polyline with caps.
//
// The returned slices are freshly allocated and owned by the caller.
func (e *StrokeExpander) Expand(pts []geom.Point, closed bool) [][]geom.Point {
	if !(e.style.Width > 0) || math.IsInf(e.style.Width, 0) {
		return nil
	}
	e.reset()

	dashes, solid := e.style.Dash.Split(pts, closed)
	if solid {
		e.polyline(pts, closed)
		return e.pieces
	}
	for _, d := range dashes {
		e.polyline(d, false)
	}
	return e.pieces
}

// polyline appends the pieces of one polyline.
func (e *StrokeExpander) polyline(pts []geom.Point, closed bool) {
	pts = e.clean(pts, closed)
	switch len(pts) {
	case 0:
		return
	case 1:
		e.dot(pts[0])
		return
	}
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		e.segment(pts[i], pts[(i+1)%n])
	}

	if closed {
		for i := 0; i < n; i++ {
			prev := pts[(i+n-1)%n]
			next := pts[(i+1)%n]
			e.join(prev, pts[i], next)
		}
		return
	}

	for i := 1; i < n-1; i++ {
		e.join(pts[i-1], pts[i], pts[i+1])
	}
	e.cap(pts[0], pts[0].Sub(pts[1]).Normalize())
	e.cap(pts[n-1], pts[n-1].Sub(pts[n-2]).Normalize())
}

// reset clears the expander state for a new expansion.
func (e *StrokeExpander) reset() {
	e.pieces = nil
	e.joinThresh = 2.0 * e.tolerance / e.style.Width
}

// clean drops consecutive duplicates and, for closed polylines, a last
// point equal to the first.
func (e *StrokeExpander) clean(pts []geom.Point, closed bool) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Near(p, e.epsilon) {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) > 1 && out[len(out)-1].Near(out[0], e.epsilon) {
		out = out[:len(out)-1]
	}
	return out
}

func (e *StrokeExpander) halfWidth() float64 {
	return 0.5 * e.style.Width
}

// emit appends a piece, reversing it when it winds clockwise.
func (e *StrokeExpander) emit(piece []geom.Point) {
	if geom.SignedArea(piece) < 0 {
		for i, j := 0, len(piece)-1; i < j; i, j = i+1, j-1 {
			piece[i], piece[j] = piece[j], piece[i]
		}
	}
	e.pieces = append(e.pieces, piece)
}

// segment emits the rectangle covering the stroke of p0-p1.
func (e *StrokeExpander) segment(p0, p1 geom.Point) {
	norm := p1.Sub(p0).Normalize().Perp().Mul(e.halfWidth())
	e.emit([]geom.Point{p0.Sub(norm), p1.Sub(norm), p1.Add(norm), p0.Add(norm)})
}

// join emits the wedge filling the outer side of the corner at p.
func (e *StrokeExpander) join(prev, p, next geom.Point) {
	ab := p.Sub(prev).Normalize()
	cd := next.Sub(p).Normalize()
	cross := ab.Cross(cd)
	dot := ab.Dot(cd)
	hw := e.halfWidth()

	if dot > 0 && math.Abs(cross) <= e.epsilon {
		// Collinear: the segment rectangles already meet.
		return
	}

	// The turn angle; positive turns counter-clockwise, which puts the
	// outer side on the right of the direction of travel.
	turn := math.Atan2(cross, dot)
	n0 := ab.Perp().Mul(hw)
	n1 := cd.Perp().Mul(hw)
	a, b := p.Add(n0), p.Add(n1)
	if turn >= 0 {
		a, b = p.Sub(n0), p.Sub(n1)
	}

	if dot > 0 && math.Abs(cross) < e.joinThresh {
		e.emit([]geom.Point{p, a, b})
		return
	}

	switch e.style.Join {
	case LineJoinBevel:
		e.emit([]geom.Point{p, a, b})
	case LineJoinRound:
		arc := flatten.CircularArc(p, hw, a.Sub(p).Angle(), turn, e.tolerance)
		piece := make([]geom.Point, 0, len(arc)+1)
		piece = append(piece, p)
		piece = append(piece, arc...)
		e.emit(piece)
	default:
		e.miter(p, a, b, cross, dot)
	}
}

// miter emits a mitered corner, or a bevel when the miter length exceeds
// the limit. With unit tangents the miter ratio is 1/sin(theta/2) where
// theta is the interior angle, and 1+dot = 2*sin^2(theta/2).
func (e *StrokeExpander) miter(p, a, b geom.Point, cross, dot float64) {
	const hypot = 1.0
	limit := e.style.miterLimit()
	if !(2.0*hypot < (hypot+dot)*limit*limit) || math.Abs(cross) <= e.epsilon {
		e.emit([]geom.Point{p, a, b})
		return
	}
	hw := e.halfWidth()
	bisector := a.Sub(p).Add(b.Sub(p)).Normalize()
	cosHalf := bisector.Dot(a.Sub(p)) / hw
	if cosHalf <= e.epsilon {
		e.emit([]geom.Point{p, a, b})
		return
	}
	m := p.Add(bisector.Mul(hw / cosHalf))
	e.emit([]geom.Point{p, a, m, b})
}

// cap emits the end cap at p for a polyline leaving p in direction dir.
// dir points away from the stroke body.
func (e *StrokeExpander) cap(p, dir geom.Point) {
	hw := e.halfWidth()
	norm := dir.Perp().Mul(hw)
	switch e.style.Cap {
	case LineCapSquare:
		ext := p.Add(dir.Mul(hw))
		e.emit([]geom.Point{p.Sub(norm), ext.Sub(norm), ext.Add(norm), p.Add(norm)})
	case LineCapRound:
		// From the right side of dir through dir to its left side.
		start := norm.Neg().Angle()
		e.emit(flatten.CircularArc(p, hw, start, math.Pi, e.tolerance))
	}
}

// dot emits the piece for a polyline that collapsed to the single point p.
// Butt caps draw nothing.
func (e *StrokeExpander) dot(p geom.Point) {
	hw := e.halfWidth()
	switch e.style.Cap {
	case LineCapSquare:
		e.emit([]geom.Point{
			{X: p.X - hw, Y: p.Y - hw},
			{X: p.X + hw, Y: p.Y - hw},
			{X: p.X + hw, Y: p.Y + hw},
			{X: p.X - hw, Y: p.Y + hw},
		})
	case LineCapRound:
		circle := flatten.CircularArc(p, hw, 0, 2*math.Pi, e.tolerance)
		e.emit(circle[:len(circle)-1])
	}
}
