// Package svgmesh converts SVG documents into triangulated meshes for GPU
// rendering.
//
// # Overview
//
// svgmesh is a geometry kernel. It parses SVG paths, basic shapes, solid
// fills and strokes, and nested groups with transforms, flattens curves
// within a tolerance, and tessellates filled and stroked regions into
// indexed triangle lists with per-vertex color. Meshes can be cached by
// content identity and tessellation parameters.
//
// # Quick Start
//
//	import "github.com/gogpu/svgmesh"
//
//	m, err := svgmesh.TessellateBytes(data, svgmesh.WithTolerance(0.05))
//	if err != nil {
//	    return err // document.ErrParse or document.ErrUnsupportedFeature
//	}
//	for _, w := range m.Warnings {
//	    log.Println(w) // paths that could not be tessellated
//	}
//
// # Architecture
//
// The library is organized into:
//   - Public API: Tessellate, TessellateBytes, TessellateCached, Library
//   - document: SVG parsing into an immutable tree of groups and paths
//   - mesh: mesh assembly, draw groups and bounds
//   - cache: reference-counted mesh cache with single-flight builds
//   - gpu: vertex layouts, buffer packing and the matching WGSL shader
//   - preview: CPU rasterization of meshes to PNG
//   - config: YAML settings mapped onto options
//   - Internal: flatten (curves), fill (triangulation), stroke (outlines, dashes)
//
// # Coordinate System
//
// SVG coordinates have y pointing down. By default output is Y-up: the
// view box is mirrored onto itself, so a document with viewBox
// "0 0 10 10" still covers (0,0)-(10,10). WithAxis(document.YDown) keeps
// SVG coordinates. Output triangles always wind counter-clockwise.
//
// # Tolerance
//
// The tolerance is given in output units. Each path is flattened in its
// local coordinates with the tolerance divided by the scale of its
// transform, so scaled-up paths get proportionally finer geometry.
//
// # Concurrency
//
// Parsing and tessellation are pure: a Document may be tessellated from
// several goroutines at once. The Cache is the only shared mutable state
// and is safe for concurrent use.
package svgmesh

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
