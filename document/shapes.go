package document

import (
	"fmt"
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// viewport holds the reference lengths for percentage resolution.
type viewport struct {
	w, h float64
}

func (v viewport) diag() float64 {
	return math.Sqrt((v.w*v.w + v.h*v.h) / 2)
}

// shapeAttrs reads length attributes of a basic shape.
type shapeAttrs struct {
	attrs map[string]string
	vp    viewport
	err   error
}

// length returns the named attribute resolved against ref, or def when
// the attribute is absent. The first malformed value is remembered in err.
func (s *shapeAttrs) length(name string, ref, def float64) float64 {
	v, ok := s.attrs[name]
	if !ok {
		return def
	}
	l, err := parseLength(v, ref)
	if err != nil {
		if s.err == nil {
			s.err = fmt.Errorf("attribute %s: %w", name, err)
		}
		return def
	}
	return l
}

// shapeSubpaths converts a basic shape element into path geometry. A
// non-empty skip reason means the element renders nothing.
func shapeSubpaths(name string, attrs map[string]string, vp viewport) (subpaths []Subpath, skip string, err error) {
	s := &shapeAttrs{attrs: attrs, vp: vp}
	switch name {
	case "rect":
		subpaths, skip = rectShape(s)
	case "circle":
		r := s.length("r", vp.diag(), 0)
		subpaths, skip = ellipseShape(s.length("cx", vp.w, 0), s.length("cy", vp.h, 0), r, r)
	case "ellipse":
		rx := s.length("rx", vp.w, -1)
		ry := s.length("ry", vp.h, -1)
		// A missing radius takes the value of the other one.
		if rx < 0 {
			rx = ry
		}
		if ry < 0 {
			ry = rx
		}
		subpaths, skip = ellipseShape(s.length("cx", vp.w, 0), s.length("cy", vp.h, 0), rx, ry)
	case "line":
		p0 := geom.Pt(s.length("x1", vp.w, 0), s.length("y1", vp.h, 0))
		p1 := geom.Pt(s.length("x2", vp.w, 0), s.length("y2", vp.h, 0))
		subpaths = []Subpath{{Start: p0, Segments: []geom.Segment{geom.Line{P0: p0, P1: p1}}}}
	case "polyline", "polygon":
		subpaths, skip, err = polyShape(attrs["points"], name == "polygon")
	}
	if s.err != nil {
		return nil, "", s.err
	}
	return subpaths, skip, err
}

func rectShape(s *shapeAttrs) ([]Subpath, string) {
	x := s.length("x", s.vp.w, 0)
	y := s.length("y", s.vp.h, 0)
	w := s.length("width", s.vp.w, 0)
	h := s.length("height", s.vp.h, 0)
	if w < 0 || h < 0 {
		return nil, "negative width or height"
	}
	if w == 0 || h == 0 {
		return nil, "zero width or height"
	}
	rx := s.length("rx", s.vp.w, -1)
	ry := s.length("ry", s.vp.h, -1)
	switch {
	case rx < 0 && ry < 0:
		rx, ry = 0, 0
	case rx < 0:
		rx = ry
	case ry < 0:
		ry = rx
	}
	rx = math.Min(rx, w/2)
	ry = math.Min(ry, h/2)

	if rx == 0 || ry == 0 {
		p := []geom.Point{geom.Pt(x, y), geom.Pt(x+w, y), geom.Pt(x+w, y+h), geom.Pt(x, y+h)}
		return []Subpath{polygonSubpath(p, true)}, ""
	}

	corner := func(p0, p1 geom.Point) geom.Segment {
		return geom.Arc{P0: p0, P1: p1, Rx: rx, Ry: ry, Sweep: true}
	}
	var segs []geom.Segment
	add := func(seg geom.Segment) {
		if seg.Start() != seg.End() {
			segs = append(segs, seg)
		}
	}
	add(geom.Line{P0: geom.Pt(x+rx, y), P1: geom.Pt(x+w-rx, y)})
	add(corner(geom.Pt(x+w-rx, y), geom.Pt(x+w, y+ry)))
	add(geom.Line{P0: geom.Pt(x+w, y+ry), P1: geom.Pt(x+w, y+h-ry)})
	add(corner(geom.Pt(x+w, y+h-ry), geom.Pt(x+w-rx, y+h)))
	add(geom.Line{P0: geom.Pt(x+w-rx, y+h), P1: geom.Pt(x+rx, y+h)})
	add(corner(geom.Pt(x+rx, y+h), geom.Pt(x, y+h-ry)))
	add(geom.Line{P0: geom.Pt(x, y+h-ry), P1: geom.Pt(x, y+ry)})
	add(corner(geom.Pt(x, y+ry), geom.Pt(x+rx, y)))
	return []Subpath{{Start: geom.Pt(x+rx, y), Segments: segs, Closed: true}}, ""
}

func ellipseShape(cx, cy, rx, ry float64) ([]Subpath, string) {
	if rx < 0 || ry < 0 {
		return nil, "negative radius"
	}
	if rx == 0 || ry == 0 {
		return nil, "zero radius"
	}
	pts := []geom.Point{
		geom.Pt(cx+rx, cy),
		geom.Pt(cx, cy+ry),
		geom.Pt(cx-rx, cy),
		geom.Pt(cx, cy-ry),
	}
	segs := make([]geom.Segment, 0, 4)
	for i := range pts {
		segs = append(segs, geom.Arc{P0: pts[i], P1: pts[(i+1)%4], Rx: rx, Ry: ry, Sweep: true})
	}
	return []Subpath{{Start: pts[0], Segments: segs, Closed: true}}, ""
}

func polyShape(points string, closed bool) ([]Subpath, string, error) {
	nums, err := parseNumberList([]byte(points))
	if err != nil {
		return nil, "", fmt.Errorf("attribute points: %w", err)
	}
	// An odd trailing coordinate is ignored, as SVG renders up to the error.
	pts := make([]geom.Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		pts = append(pts, geom.Pt(nums[i], nums[i+1]))
	}
	if len(pts) < 2 {
		return nil, "fewer than two points", nil
	}
	return []Subpath{polygonSubpath(pts, closed)}, "", nil
}

// polygonSubpath builds a subpath of straight lines through pts.
func polygonSubpath(pts []geom.Point, closed bool) Subpath {
	segs := make([]geom.Segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, geom.Line{P0: pts[i-1], P1: pts[i]})
	}
	return Subpath{Start: pts[0], Segments: segs, Closed: closed}
}
