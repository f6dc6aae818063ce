package document

import "github.com/gogpu/svgmesh/geom"

// Axis is the direction of the y axis of a coordinate system.
type Axis int

const (
	// YDown is the SVG convention: y grows downwards.
	YDown Axis = iota
	// YUp is the usual GPU clip-space convention: y grows upwards.
	YUp
)

// String returns "y-down" or "y-up".
func (a Axis) String() string {
	if a == YUp {
		return "y-up"
	}
	return "y-down"
}

// Document is a parsed vector document. It is immutable after Parse
// returns and may be tessellated concurrently.
type Document struct {
	Root *Group

	// ViewBox is the user-space rectangle mapped onto the viewport. When the
	// source has no viewBox it is derived from width and height, and is the
	// zero Rect when neither is present.
	ViewBox geom.Rect

	// Width and Height are the intrinsic size in user units, 0 if absent.
	Width, Height float64

	// Source is the axis convention of the source coordinates (always YDown
	// for SVG).
	Source Axis

	// Hash identifies the source bytes.
	Hash Hash

	// Warnings lists everything skipped or degraded while parsing.
	Warnings []Warning
}

// BoundaryTransform returns the matrix that maps source coordinates into a
// target with the given axis convention. It is the identity when the axes
// agree; otherwise it mirrors the view box onto itself
// (y' = minY + maxY - y). It must be applied exactly once, as the root of
// transform accumulation.
func (d *Document) BoundaryTransform(target Axis) geom.Matrix {
	if target == d.Source {
		return geom.Identity()
	}
	return geom.Matrix{A: 1, E: -1, F: d.ViewBox.Min.Y + d.ViewBox.Max.Y}
}

// Visit is called for each path in paint order with its effective transform
// and its zero-based paint index.
type Visit func(p *Path, transform geom.Matrix, index int) error

// Walk traverses the tree depth-first in paint order, composing transforms
// parent before child starting from root. Returning an error from fn stops
// the walk and returns that error.
func (d *Document) Walk(root geom.Matrix, fn Visit) error {
	if d.Root == nil {
		return nil
	}
	type frame struct {
		node      Node
		transform geom.Matrix
	}
	stack := []frame{{node: d.Root, transform: root}}
	index := 0
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := f.node.(type) {
		case *Group:
			m := f.transform.Multiply(n.Transform)
			// Push in reverse so children pop in document order.
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: n.Children[i], transform: m})
			}
		case *Path:
			if err := fn(n, f.transform.Multiply(n.Transform), index); err != nil {
				return err
			}
			index++
		}
	}
	return nil
}

// Paths returns every path in paint order.
func (d *Document) Paths() []*Path {
	var out []*Path
	_ = d.Walk(geom.Identity(), func(p *Path, _ geom.Matrix, _ int) error {
		out = append(out, p)
		return nil
	})
	return out
}
