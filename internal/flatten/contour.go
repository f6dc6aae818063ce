package flatten

import "github.com/gogpu/svgmesh/geom"

// Contour is a flattened subpath. A closed contour has an implicit edge
// from its last point back to its first; its last point never duplicates
// the first.
type Contour struct {
	Points []geom.Point
	Closed bool
}

// Subpath flattens a subpath into a contour. Consecutive points closer
// than the flattener epsilon are merged. When a closed subpath ends within
// epsilon of its start, the duplicate end point is dropped; otherwise the
// gap is bridged by the implicit closing edge.
func (f Flattener) Subpath(start geom.Point, segments []geom.Segment, closed bool) Contour {
	eps := f.epsilon()
	pts := []geom.Point{start}
	for _, seg := range segments {
		n := len(pts)
		pts = f.Append(pts, seg)
		pts = dedupe(pts, n, eps)
	}
	if closed && len(pts) > 1 && pts[len(pts)-1].Near(pts[0], eps) {
		pts = pts[:len(pts)-1]
	}
	return Contour{Points: pts, Closed: closed}
}

// dedupe removes points in pts[from:] that coincide with their
// predecessor, compacting in place.
func dedupe(pts []geom.Point, from int, eps float64) []geom.Point {
	if from < 1 {
		from = 1
	}
	out := pts[:from]
	for _, p := range pts[from:] {
		if p.Near(out[len(out)-1], eps) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Points returns the point lists of contours, as the tessellators take them.
func Points(contours []Contour) [][]geom.Point {
	out := make([][]geom.Point, len(contours))
	for i, c := range contours {
		out[i] = c.Points
	}
	return out
}
