package gpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/svgmesh/mesh"
)

// Packed vertex strides in bytes, matching mesh.Target.Stride.
const (
	Stride2D = 24
	Stride3D = 40
)

// Shader locations of the vertex attributes.
const (
	LocationPosition = 0
	LocationColor2D  = 1
	LocationNormal   = 1
	LocationColor3D  = 2
)

// VertexLayout returns the vertex buffer layout for meshes of the given
// target. The 2D layout is position (float32x2) then color (float32x4);
// the 3D layout is position (float32x3), normal (float32x3) then color
// (float32x4).
func VertexLayout(target mesh.Target) []gputypes.VertexBufferLayout {
	if target == mesh.Target3D {
		return []gputypes.VertexBufferLayout{{
			ArrayStride: Stride3D,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: LocationPosition},
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: LocationNormal},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 24, ShaderLocation: LocationColor3D},
			},
		}}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: Stride2D,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: LocationPosition},
			{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: LocationColor2D},
		},
	}}
}

// PrimitiveState returns the primitive state for drawing a mesh.
// Triangles wind counter-clockwise. Back faces are culled only when cull
// is true; 3D scenes that show an asset from behind should pass false.
func PrimitiveState(cull bool) gputypes.PrimitiveState {
	mode := gputypes.CullModeNone
	if cull {
		mode = gputypes.CullModeBack
	}
	return gputypes.PrimitiveState{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		FrontFace: gputypes.FrontFaceCCW,
		CullMode:  mode,
	}
}

// IndexFormat is the format of packed index buffers.
const IndexFormat = gputypes.IndexFormatUint32

// BlendState returns the blend state for the reference shaders, which
// output premultiplied color.
func BlendState() gputypes.BlendState {
	return gputypes.BlendStatePremultiplied()
}
