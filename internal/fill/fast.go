package fill

import (
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// turnEpsilon is the smallest sine of a turning angle counted as a turn.
const turnEpsilon = 1e-12

// isStrictlyConvex reports whether ring turns the same way at every
// vertex, never goes straight, and winds around exactly once.
func isStrictlyConvex(ring []geom.Point, eps float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	sign := 0
	var turning float64
	for i := 0; i < n; i++ {
		a := ring[(i+n-1)%n]
		b := ring[i]
		c := ring[(i+1)%n]
		e1 := b.Sub(a)
		e2 := c.Sub(b)
		cross := e1.Cross(e2)
		l := e1.Length() * e2.Length()
		if l <= eps*eps || math.Abs(cross) <= turnEpsilon*l {
			return false
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
		turning += math.Atan2(cross, e1.Dot(e2))
	}
	// A pentagram turns consistently but twice around.
	return math.Abs(math.Abs(turning)-2*math.Pi) < 1e-6
}

// ccwCopy returns ring oriented counter-clockwise.
func ccwCopy(ring []geom.Point) []geom.Point {
	out := make([]geom.Point, len(ring))
	if geom.SignedArea(ring) >= 0 {
		copy(out, ring)
		return out
	}
	for i, p := range ring {
		out[len(ring)-1-i] = p
	}
	return out
}

// fan triangulates a strictly convex ring from its first vertex.
func fan(ring []geom.Point) Result {
	verts := ccwCopy(ring)
	indices := make([]uint32, 0, 3*(len(verts)-2))
	for i := 1; i+1 < len(verts); i++ {
		indices = append(indices, 0, uint32(i), uint32(i+1))
	}
	return Result{Vertices: verts, Indices: indices}
}

// earClip triangulates a simple ring by repeatedly cutting off convex
// vertices whose triangle contains no other vertex. ok is false when the
// ring is not simple or no ear can be found, in which case the caller
// falls back to the sweep.
func earClip(ring []geom.Point, eps float64) (Result, bool) {
	verts := ccwCopy(ring)
	verts = dropCollinear(verts, eps)
	if len(verts) < 3 || geom.SignedArea(verts) <= eps*eps || !isSimple(verts, eps) {
		return Result{}, false
	}

	n := len(verts)
	v := make([]int, n)
	for i := range v {
		v[i] = i
	}

	out := make([]uint32, 0, 3*(n-2))
	for len(v) > 2 {
		earFound := false
		for i := 0; i < len(v); i++ {
			i0 := v[(i+len(v)-1)%len(v)]
			i1 := v[i]
			i2 := v[(i+1)%len(v)]

			a, b, c := verts[i0], verts[i1], verts[i2]
			if triangleArea(a, b, c) <= 0 {
				continue
			}

			// No other vertex may lie inside the ear.
			contains := false
			for _, j := range v {
				if j == i0 || j == i1 || j == i2 {
					continue
				}
				if pointInTriangle(verts[j], a, b, c) {
					contains = true
					break
				}
			}
			if contains {
				continue
			}

			out = append(out, uint32(i0), uint32(i1), uint32(i2))
			v = append(v[:i], v[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			return Result{}, false
		}
	}
	return Result{Vertices: verts, Indices: out}, true
}

// dropCollinear removes vertices where the ring goes straight on.
func dropCollinear(ring []geom.Point, eps float64) []geom.Point {
	out := ring
	for changed := true; changed && len(out) >= 3; {
		changed = false
		n := len(out)
		for i := 0; i < n; i++ {
			a := out[(i+n-1)%n]
			b := out[i]
			c := out[(i+1)%n]
			e1, e2 := b.Sub(a), c.Sub(b)
			if math.Abs(e1.Cross(e2)) <= turnEpsilon*e1.Length()*e2.Length() && e1.Dot(e2) > 0 {
				out = append(out[:i:i], out[i+1:]...)
				changed = true
				break
			}
		}
	}
	return out
}

// pointInTriangle reports whether p lies inside or on the boundary of the
// counter-clockwise triangle abc.
func pointInTriangle(p, a, b, c geom.Point) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// isSimple reports whether no two edges of ring touch except adjacent
// edges at their shared vertex.
func isSimple(ring []geom.Point, eps float64) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a0, a1 := ring[i], ring[(i+1)%n]
		// Adjacent edges folding back onto each other.
		next := ring[(i+2)%n]
		e1, e2 := a1.Sub(a0), next.Sub(a1)
		if math.Abs(e1.Cross(e2)) <= turnEpsilon*e1.Length()*e2.Length() && e1.Dot(e2) < 0 {
			return false
		}
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsTouch(a0, a1, ring[j], ring[(j+1)%n], eps) {
				return false
			}
		}
	}
	return true
}

// segmentsTouch reports whether segments p1p2 and p3p4 share any point,
// within eps.
func segmentsTouch(p1, p2, p3, p4 geom.Point, eps float64) bool {
	d1 := p4.Sub(p3).Cross(p1.Sub(p3))
	d2 := p4.Sub(p3).Cross(p2.Sub(p3))
	d3 := p2.Sub(p1).Cross(p3.Sub(p1))
	d4 := p2.Sub(p1).Cross(p4.Sub(p1))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return geom.DistanceToSegment(p1, p3, p4) <= eps ||
		geom.DistanceToSegment(p2, p3, p4) <= eps ||
		geom.DistanceToSegment(p3, p1, p2) <= eps ||
		geom.DistanceToSegment(p4, p1, p2) <= eps
}
