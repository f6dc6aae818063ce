package document

import "github.com/gogpu/svgmesh/geom"

// Node is an element of the document tree: either a *Group or a *Path.
// The set of implementations is closed.
type Node interface {
	// NodeID returns the element id attribute, or "".
	NodeID() string

	isNode()
}

// Group is an ordered collection of child nodes with a transform relative
// to its parent.
type Group struct {
	ID        string
	Transform geom.Matrix
	Children  []Node
}

func (*Group) isNode() {}

// NodeID returns the group id.
func (g *Group) NodeID() string { return g.ID }

// FillRule determines which regions of overlapping contours are inside.
type FillRule int

const (
	// NonZero fills regions whose winding number is not zero.
	NonZero FillRule = iota
	// EvenOdd fills regions whose winding number is odd.
	EvenOdd
)

// String returns the SVG keyword for the rule.
func (r FillRule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// LineCap is the shape at the ends of open subpaths.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the shape at the corners of strokes.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// StrokeStyle describes the geometry of a stroke.
type StrokeStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
	// Dash holds alternating dash and gap lengths; nil strokes solid.
	Dash       []float64
	DashOffset float64
}

// DefaultStrokeStyle returns the SVG initial stroke values.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		Width:      1,
		Cap:        CapButt,
		Join:       JoinMiter,
		MiterLimit: 4,
	}
}

// Paint is the fill or stroke of a path: nothing, or a solid color.
type Paint struct {
	Solid bool
	Color Color
}

// NoPaint is the paint of a channel that draws nothing.
var NoPaint = Paint{}

// SolidPaint returns a paint drawing c.
func SolidPaint(c Color) Paint {
	return Paint{Solid: true, Color: c}
}

// IsNone reports whether the paint draws nothing.
func (p Paint) IsNone() bool { return !p.Solid }

// Subpath is a connected run of segments starting at Start.
type Subpath struct {
	Start    geom.Point
	Segments []geom.Segment
	Closed   bool
}

// End returns the current point at the end of the subpath.
func (s Subpath) End() geom.Point {
	if len(s.Segments) == 0 {
		return s.Start
	}
	return s.Segments[len(s.Segments)-1].End()
}

// Path is a drawable node: geometry plus optional fill and stroke paint.
// Opacity already includes the opacity of all ancestor groups; paint
// colors carry fill-opacity and stroke-opacity in their alpha.
type Path struct {
	ID        string
	Transform geom.Matrix
	Subpaths  []Subpath
	Fill      Paint
	Stroke    Paint
	Style     StrokeStyle
	FillRule  FillRule
	Opacity   float64
}

func (*Path) isNode() {}

// NodeID returns the path id.
func (p *Path) NodeID() string { return p.ID }

// Drawable reports whether the path contributes any geometry.
func (p *Path) Drawable() bool {
	if len(p.Subpaths) == 0 || p.Opacity <= 0 {
		return false
	}
	return !p.Fill.IsNone() || (!p.Stroke.IsNone() && p.Style.Width > 0)
}
