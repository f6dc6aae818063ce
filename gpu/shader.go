package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/svgmesh/mesh"
)

//go:embed shaders/mesh2d.wgsl
var mesh2DShaderSource string

//go:embed shaders/mesh3d.wgsl
var mesh3DShaderSource string

// Entry points of the reference shaders.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// ShaderSource returns the WGSL source of the reference shader for target.
func ShaderSource(target mesh.Target) string {
	if target == mesh.Target3D {
		return mesh3DShaderSource
	}
	return mesh2DShaderSource
}

// CompileShader compiles the reference shader for target to SPIR-V words.
func CompileShader(target mesh.Target) ([]uint32, error) {
	spirvBytes, err := naga.Compile(ShaderSource(target))
	if err != nil {
		return nil, fmt.Errorf("gpu: compile %s shader: %w", target, err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
