// Command svgmesh tessellates SVG files into GPU meshes.
//
// Usage:
//
//	svgmesh [flags] file.svg...
//
// For every input it prints mesh statistics and optionally writes the packed
// vertex and index buffers and a PNG preview next to each other in -out.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
