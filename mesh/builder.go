package mesh

import (
	"github.com/gogpu/svgmesh/geom"
)

// bucket collects the triangles of one draw group.
type bucket struct {
	color    Color
	vertices []Vertex
	indices  []uint32
	bounds   geom.BoundsBuilder
}

// Builder accumulates transformed triangle lists into a Mesh.
// A Builder is not safe for concurrent use.
type Builder struct {
	target   Target
	grouping Grouping

	buckets []*bucket
	// byColor holds the index of the latest bucket of each color.
	byColor map[Color]int
	scratch []geom.Point

	bounds   geom.BoundsBuilder
	warnings []error
}

// NewBuilder creates a builder for the given target and grouping policy.
func NewBuilder(target Target, grouping Grouping) *Builder {
	return &Builder{
		target:   target,
		grouping: grouping,
		byColor:  make(map[Color]int),
	}
}

// Add appends a triangle list. Every vertex is mapped through transform
// and given color and, for Target3D, depth as its Z coordinate. When the
// transform mirrors, the triangle order is swapped so that output winding
// stays counter-clockwise. Triangles referencing out-of-range vertices
// are ignored, and nothing is added for a singular transform.
//
// With BatchByColor on Target2D a color reuses its earlier draw group
// only when no group of another color added since then overlaps the new
// triangles, so painter's order is kept.
func (b *Builder) Add(vertices []geom.Point, indices []uint32, transform geom.Matrix, color Color, depth float32) {
	if len(indices) < 3 || len(vertices) == 0 {
		return
	}
	det := transform.Determinant()
	if det == 0 || !transform.IsFinite() {
		return
	}
	if b.target != Target3D {
		depth = 0
	}

	var area geom.BoundsBuilder
	b.scratch = b.scratch[:0]
	for _, p := range vertices {
		q := transform.TransformPoint(p)
		b.scratch = append(b.scratch, q)
		area.Add(q)
	}

	bk := b.bucketFor(color, area.Rect())
	base := uint32(len(bk.vertices))
	for _, q := range b.scratch {
		bk.vertices = append(bk.vertices, Vertex{X: float32(q.X), Y: float32(q.Y), Z: depth, Color: color})
	}

	n := uint32(len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		if det < 0 {
			i1, i2 = i2, i1
		}
		bk.indices = append(bk.indices, base+i0, base+i1, base+i2)
		for _, idx := range [3]uint32{i0, i1, i2} {
			v := bk.vertices[base+idx]
			p := geom.Point{X: float64(v.X), Y: float64(v.Y)}
			b.bounds.Add(p)
			bk.bounds.Add(p)
		}
	}
}

// Warn records a node-scoped failure on the mesh being built.
func (b *Builder) Warn(err error) {
	if err != nil {
		b.warnings = append(b.warnings, err)
	}
}

// bucketFor returns the bucket receiving triangles of color covering area.
func (b *Builder) bucketFor(color Color, area geom.Rect) *bucket {
	if b.grouping != BatchByColor {
		if len(b.buckets) == 0 {
			b.buckets = append(b.buckets, &bucket{})
		}
		return b.buckets[0]
	}
	if i, ok := b.byColor[color]; ok && !b.coveredAfter(i, area) {
		return b.buckets[i]
	}
	bk := &bucket{color: color}
	b.byColor[color] = len(b.buckets)
	b.buckets = append(b.buckets, bk)
	return bk
}

// coveredAfter reports whether a bucket added after bucket i overlaps
// area. Target3D orders by depth instead, so it never splits.
func (b *Builder) coveredAfter(i int, area geom.Rect) bool {
	if b.target == Target3D {
		return false
	}
	for _, later := range b.buckets[i+1:] {
		if !later.bounds.Empty() && later.bounds.Rect().Overlaps(area) {
			return true
		}
	}
	return false
}

// Build returns the assembled mesh. The builder may keep being used;
// later additions do not affect meshes already built.
func (b *Builder) Build() *Mesh {
	m := &Mesh{Target: b.target}
	if len(b.warnings) > 0 {
		m.Warnings = append([]error(nil), b.warnings...)
	}

	var nv, ni int
	for _, bk := range b.buckets {
		nv += len(bk.vertices)
		ni += len(bk.indices)
	}
	if ni == 0 {
		return m
	}
	m.Vertices = make([]Vertex, 0, nv)
	m.Indices = make([]uint32, 0, ni)

	for _, bk := range b.buckets {
		if len(bk.indices) == 0 {
			continue
		}
		base := uint32(len(m.Vertices))
		first := uint32(len(m.Indices))
		m.Vertices = append(m.Vertices, bk.vertices...)
		for _, idx := range bk.indices {
			m.Indices = append(m.Indices, base+idx)
		}
		m.Groups = append(m.Groups, Group{
			FirstIndex: first,
			IndexCount: uint32(len(bk.indices)),
			Color:      bk.color,
			Uniform:    b.grouping == BatchByColor,
		})
	}
	if !b.bounds.Empty() {
		m.Bounds = b.bounds.Rect()
	}
	return m
}
