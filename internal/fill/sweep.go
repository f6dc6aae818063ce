package fill

import (
	"math"
	"slices"

	"github.com/gogpu/svgmesh/geom"
)

// maxSplits bounds the number of slab splits at edge crossings per call.
const maxSplits = 1 << 20

// edge is a non-horizontal polygon edge oriented bottom to top.
type edge struct {
	id      int
	lo, hi  geom.Point
	winding int
	dxdy    float64
}

// xAt returns the x coordinate of the edge at height y, clamped to the
// edge's extent.
func (e *edge) xAt(y float64) float64 {
	if y <= e.lo.Y {
		return e.lo.X
	}
	if y >= e.hi.Y {
		return e.hi.X
	}
	return e.lo.X + (y-e.lo.Y)*e.dxdy
}

// span is an inside interval of a slab between two edges.
type span struct {
	left, right *edge
}

// trapezoid is an open inside region being extended upwards.
type trapezoid struct {
	left, right *edge
	bottom      float64
}

type sweeper struct {
	rule   Rule
	eps    float64
	pool   *vertexPool
	out    []uint32
	open   []trapezoid
	splits int
}

// sweep triangulates arbitrary rings with a slab decomposition.
func sweep(rings [][]geom.Point, rule Rule, eps float64) Result {
	var edges []*edge
	var ys []float64
	for _, ring := range rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			ys = append(ys, a.Y)
			if math.Abs(a.Y-b.Y) <= eps {
				// Horizontal edges do not change any slab's winding.
				continue
			}
			e := &edge{id: len(edges), lo: a, hi: b, winding: 1}
			if a.Y > b.Y {
				e.lo, e.hi, e.winding = b, a, -1
			}
			e.dxdy = (e.hi.X - e.lo.X) / (e.hi.Y - e.lo.Y)
			edges = append(edges, e)
		}
	}
	if len(edges) == 0 {
		return Result{}
	}

	slices.Sort(ys)
	events := ys[:1]
	for _, y := range ys[1:] {
		if y-events[len(events)-1] > eps {
			events = append(events, y)
		}
	}

	// Edges sorted by lower end so the active set can be maintained by a
	// moving cursor.
	byLo := slices.Clone(edges)
	slices.SortStableFunc(byLo, func(a, b *edge) int {
		switch {
		case a.lo.Y < b.lo.Y:
			return -1
		case a.lo.Y > b.lo.Y:
			return 1
		}
		return a.id - b.id
	})

	s := &sweeper{rule: rule, eps: eps, pool: newVertexPool(eps)}
	var active []*edge
	cursor := 0
	for k := 0; k+1 < len(events); k++ {
		y0, y1 := events[k], events[k+1]
		mid := (y0 + y1) / 2
		for cursor < len(byLo) && byLo[cursor].lo.Y < mid {
			active = append(active, byLo[cursor])
			cursor++
		}
		active = slices.DeleteFunc(active, func(e *edge) bool { return e.hi.Y <= mid })
		s.slab(active, y0, y1)
	}
	s.closeAll(events[len(events)-1])

	return Result{Vertices: s.pool.vertices, Indices: s.out}
}

// slab processes the band [y0, y1], splitting it where two active edges
// cross so that edge order is constant within every processed band.
func (s *sweeper) slab(active []*edge, y0, y1 float64) {
	type band struct{ y0, y1 float64 }
	stack := []band{{y0, y1}}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		mid := (b.y0 + b.y1) / 2
		sorted := s.order(active, mid)
		if y, ok := s.crossing(sorted, b.y0, b.y1); ok {
			// Upper half is pushed first so the lower half is handled first.
			stack = append(stack, band{y, b.y1}, band{b.y0, y})
			continue
		}
		s.emitBand(sorted, b.y0, b.y1)
	}
}

// order returns the edges among active that span y, sorted by x at y.
func (s *sweeper) order(active []*edge, y float64) []*edge {
	sorted := make([]*edge, 0, len(active))
	for _, e := range active {
		if e.lo.Y < y && e.hi.Y > y {
			sorted = append(sorted, e)
		}
	}
	slices.SortStableFunc(sorted, func(a, b *edge) int {
		xa, xb := a.xAt(y), b.xAt(y)
		switch {
		case xa < xb:
			return -1
		case xa > xb:
			return 1
		}
		return a.id - b.id
	})
	return sorted
}

// crossing finds a pair of neighboring edges that swap order inside the
// band and returns the height where they meet.
func (s *sweeper) crossing(sorted []*edge, y0, y1 float64) (float64, bool) {
	if s.splits >= maxSplits || y1-y0 <= 2*s.eps {
		return 0, false
	}
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		d0 := b.xAt(y0) - a.xAt(y0)
		d1 := b.xAt(y1) - a.xAt(y1)
		if d0 >= -s.eps && d1 >= -s.eps {
			continue
		}
		// The gap changes sign: interpolate where it vanishes.
		y := y0 + (y1-y0)*d0/(d0-d1)
		if y > y0+s.eps && y < y1-s.eps {
			s.splits++
			return y, true
		}
	}
	return 0, false
}

// emitBand resolves inside spans of a band with constant edge order and
// extends or closes the open trapezoids.
func (s *sweeper) emitBand(sorted []*edge, y0, y1 float64) {
	var spans []span
	w := 0
	var left *edge
	for _, e := range sorted {
		was := s.rule.inside(w)
		w += e.winding
		now := s.rule.inside(w)
		switch {
		case !was && now:
			left = e
		case was && !now:
			spans = append(spans, span{left: left, right: e})
		}
	}

	// Trapezoids whose edge pair continues are extended; the rest close
	// at the bottom of this band.
	next := make([]trapezoid, 0, len(spans))
	for _, sp := range spans {
		found := false
		for i, t := range s.open {
			if t.left == sp.left && t.right == sp.right {
				next = append(next, t)
				s.open = slices.Delete(s.open, i, i+1)
				found = true
				break
			}
		}
		if !found {
			next = append(next, trapezoid{left: sp.left, right: sp.right, bottom: y0})
		}
	}
	s.closeAll(y0)
	s.open = next
}

// closeAll emits every open trapezoid with its top at y.
func (s *sweeper) closeAll(y float64) {
	for _, t := range s.open {
		s.emitTrapezoid(t, y)
	}
	s.open = s.open[:0]
}

// emitTrapezoid writes the trapezoid as up to two counter-clockwise
// triangles, skipping degenerate ones.
func (s *sweeper) emitTrapezoid(t trapezoid, top float64) {
	l0 := geom.Pt(t.left.xAt(t.bottom), t.bottom)
	r0 := geom.Pt(t.right.xAt(t.bottom), t.bottom)
	r1 := geom.Pt(t.right.xAt(top), top)
	l1 := geom.Pt(t.left.xAt(top), top)

	il0, ir0 := s.pool.index(l0), s.pool.index(r0)
	ir1, il1 := s.pool.index(r1), s.pool.index(l1)
	s.triangle(il0, ir0, ir1)
	s.triangle(il0, ir1, il1)
}

func (s *sweeper) triangle(a, b, c uint32) {
	if a == b || b == c || a == c {
		return
	}
	v := s.pool.vertices
	if triangleArea(v[a], v[b], v[c]) <= 0 {
		return
	}
	s.out = append(s.out, a, b, c)
}
