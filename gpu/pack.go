package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/svgmesh/mesh"
)

// PackVertices encodes the vertices of m in the layout returned by
// VertexLayout(m.Target). Colors stay straight alpha; the reference shaders
// premultiply in the fragment stage.
func PackVertices(m *mesh.Mesh) []byte {
	stride := m.Target.Stride()
	buf := make([]byte, len(m.Vertices)*stride)
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range m.Vertices {
		put(v.X)
		put(v.Y)
		if m.Target == mesh.Target3D {
			put(v.Z)
			put(0)
			put(0)
			put(1)
		}
		for _, c := range v.Color {
			put(c)
		}
	}
	return buf
}

// PackIndices encodes the index buffer of m as little-endian uint32.
func PackIndices(m *mesh.Mesh) []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// DrawCall is one indexed draw of a mesh group.
type DrawCall struct {
	FirstIndex uint32
	IndexCount uint32
	// Color is set when the whole group shares one color, for renderers
	// that pass it as a uniform instead of reading vertex colors.
	Color   mesh.Color
	Uniform bool
}

// DrawCalls returns one draw call per mesh group, skipping empty groups.
func DrawCalls(m *mesh.Mesh) []DrawCall {
	calls := make([]DrawCall, 0, len(m.Groups))
	for _, g := range m.Groups {
		if g.IndexCount == 0 {
			continue
		}
		calls = append(calls, DrawCall{
			FirstIndex: g.FirstIndex,
			IndexCount: g.IndexCount,
			Color:      g.Color,
			Uniform:    g.Uniform,
		})
	}
	return calls
}
