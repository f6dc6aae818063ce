// Package mesh assembles tessellated paths into GPU-ready triangle meshes.
//
// A Mesh is immutable once built. Positions are baked in document space;
// no transform hierarchy survives tessellation.
package mesh

import (
	"github.com/gogpu/svgmesh/geom"
)

// Target selects the vertex layout of a mesh.
type Target int

const (
	// Target2D emits positions as two floats.
	Target2D Target = iota
	// Target3D emits positions as three floats plus a constant +Z normal.
	// The third coordinate is the per-path depth.
	Target3D
)

// String returns "2d" or "3d".
func (t Target) String() string {
	if t == Target3D {
		return "3d"
	}
	return "2d"
}

// Stride returns the size in bytes of one packed vertex.
func (t Target) Stride() int {
	if t == Target3D {
		return (3 + 3 + 4) * 4
	}
	return (2 + 4) * 4
}

// Grouping selects how triangles are split into draw groups.
type Grouping int

const (
	// PerVertexColor emits one draw group; color varies per vertex.
	PerVertexColor Grouping = iota
	// BatchByColor buckets triangles by color into contiguous draw groups
	// in first-seen order. On Target2D a color gets a further group when
	// its triangles would otherwise be drawn beneath an overlapping,
	// later-painted group of another color; Target3D keeps one group per
	// color and relies on depth.
	BatchByColor
)

// String returns the policy name.
func (g Grouping) String() string {
	if g == BatchByColor {
		return "batch-by-color"
	}
	return "per-vertex-color"
}

// Color is a straight-alpha RGBA color with components in [0, 1].
type Color [4]float32

// Vertex is a mesh vertex. Z is zero for Target2D meshes.
type Vertex struct {
	X, Y, Z float32
	Color   Color
}

// Group is a contiguous range of the index buffer drawn in one call.
type Group struct {
	// FirstIndex is the offset of the first index of the group.
	FirstIndex uint32
	// IndexCount is the number of indices, a multiple of three.
	IndexCount uint32
	// Color is the shared color of every vertex in the group. It is only
	// meaningful when Uniform is true.
	Color   Color
	Uniform bool
}

// Mesh is an indexed triangle list with draw groups.
// Triangles wind counter-clockwise in the target (Y-up) space.
type Mesh struct {
	Target   Target
	Vertices []Vertex
	// Indices holds one triple per triangle.
	Indices []uint32
	Groups  []Group
	// Bounds is the union of all triangle vertices. It is the zero
	// rectangle for an empty mesh.
	Bounds geom.Rect
	// Warnings records node-scoped failures that were skipped.
	Warnings []error
}

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// ByteSize returns the size of the packed vertex and index buffers.
func (m *Mesh) ByteSize() int {
	return len(m.Vertices)*m.Target.Stride() + len(m.Indices)*4
}

// Positions2D returns the XY position of every vertex.
func (m *Mesh) Positions2D() [][2]float32 {
	out := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [2]float32{v.X, v.Y}
	}
	return out
}

// Positions3D returns the XYZ position of every vertex.
func (m *Mesh) Positions3D() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = [3]float32{v.X, v.Y, v.Z}
	}
	return out
}

// Colors returns the color of every vertex.
func (m *Mesh) Colors() [][4]float32 {
	out := make([][4]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = v.Color
	}
	return out
}
