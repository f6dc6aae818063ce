package fill

import (
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// cellKey addresses a cell of the merge grid.
type cellKey struct {
	x, y int64
}

// vertexPool interns points so that points within eps of an existing
// vertex reuse its index. Points are bucketed in a grid of eps-sized cells
// and looked up in the 3x3 neighborhood.
type vertexPool struct {
	eps      float64
	vertices []geom.Point
	grid     map[cellKey][]uint32
}

func newVertexPool(eps float64) *vertexPool {
	return &vertexPool{eps: eps, grid: make(map[cellKey][]uint32)}
}

func (vp *vertexPool) cell(p geom.Point) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / vp.eps)),
		y: int64(math.Floor(p.Y / vp.eps)),
	}
}

// index returns the index of the vertex at p, adding one if needed.
func (vp *vertexPool) index(p geom.Point) uint32 {
	k := vp.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range vp.grid[cellKey{k.x + dx, k.y + dy}] {
				if vp.vertices[i].Near(p, vp.eps) {
					return i
				}
			}
		}
	}
	i := uint32(len(vp.vertices))
	vp.vertices = append(vp.vertices, p)
	vp.grid[k] = append(vp.grid[k], i)
	return i
}
