// Package preview rasterizes meshes into images on the CPU.
//
// It is a debugging aid: a mesh rendered here should look like the source
// document rendered by a browser. Consecutive triangles of the same color
// are accumulated in one rasterizer pass so shared edges do not show
// antialiasing seams.
package preview
