// Package gpu describes how a mesh.Mesh is laid out in GPU buffers.
//
// It provides the vertex buffer layouts and primitive state that match the
// packed vertex formats, little-endian buffer packing, and a reference
// WGSL shader for each target. Creating devices, buffers and pipelines is
// left to the caller; the descriptors use the gputypes definitions so they
// plug directly into a wgpu render pipeline.
//
// Usage:
//
//	layouts := gpu.VertexLayout(m.Target)
//	vertexData := gpu.PackVertices(m)
//	indexData := gpu.PackIndices(m)
//	spirv, err := gpu.CompileShader(m.Target)
package gpu
