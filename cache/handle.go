package cache

import (
	"sync"

	"github.com/gogpu/svgmesh/mesh"
)

// Handle is a counted reference to a cached mesh.
// Handles are safe for concurrent use.
type Handle struct {
	c    *Cache
	e    *entry
	once sync.Once
}

// Mesh returns the cached mesh. The mesh is shared and must not be
// modified. It stays valid after Release, but the cache may then drop it.
func (h *Handle) Mesh() *mesh.Mesh {
	return h.e.mesh
}

// Key returns the key the mesh was built for.
func (h *Handle) Key() Key {
	return h.e.key
}

// Release returns the reference to the cache. Calling Release more than
// once has no further effect.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.c.release(h.e)
	})
}
