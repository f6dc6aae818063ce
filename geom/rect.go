package geom

import "math"

// Rect represents an axis-aligned rectangle.
// Min holds the minimum coordinates and Max the maximum coordinates.
type Rect struct {
	Min, Max Point
}

// NewRect creates a rectangle from two points.
// The points are normalized so Min <= Max.
func NewRect(p1, p2 Point) Rect {
	return Rect{
		Min: Point{X: math.Min(p1.X, p2.X), Y: math.Min(p1.Y, p2.Y)},
		Max: Point{X: math.Max(p1.X, p2.X), Y: math.Max(p1.Y, p2.Y)},
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

// Contains returns true if the point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Overlaps reports whether the interiors of r and other intersect.
// Rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(other Rect) bool {
	return r.Min.X < other.Max.X && other.Min.X < r.Max.X &&
		r.Min.Y < other.Max.Y && other.Min.Y < r.Max.Y
}

// BoundsBuilder accumulates points into a bounding box.
// The zero value is an empty builder.
type BoundsBuilder struct {
	rect Rect
	ok   bool
}

// Add extends the bounds to include p.
func (b *BoundsBuilder) Add(p Point) {
	if !b.ok {
		b.rect = Rect{Min: p, Max: p}
		b.ok = true
		return
	}
	b.rect.Min.X = math.Min(b.rect.Min.X, p.X)
	b.rect.Min.Y = math.Min(b.rect.Min.Y, p.Y)
	b.rect.Max.X = math.Max(b.rect.Max.X, p.X)
	b.rect.Max.Y = math.Max(b.rect.Max.Y, p.Y)
}

// Empty reports whether no point has been added.
func (b *BoundsBuilder) Empty() bool {
	return !b.ok
}

// Rect returns the accumulated bounds, or the zero Rect if empty.
func (b *BoundsBuilder) Rect() Rect {
	return b.rect
}
