package svgmesh

import (
	"context"
	"slices"
	"sync"

	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/mesh"
)

// Library tracks named documents and serves their meshes from a cache.
// It is the hook for host asset pipelines: call Update when an asset is
// created or modified and Remove when it is deleted.
//
// Library is safe for concurrent use.
type Library struct {
	cache *cache.Cache
	opts  options

	mu     sync.Mutex
	assets map[string]*document.Document
}

// NewLibrary creates a library that stores meshes in c. A nil cache gets
// a private cache with the default configuration.
func NewLibrary(c *cache.Cache, opts ...Option) *Library {
	if c == nil {
		c = cache.New(cache.DefaultConfig())
	}
	return &Library{
		cache:  c,
		opts:   newOptions(opts),
		assets: make(map[string]*document.Document),
	}
}

// Cache returns the cache backing the library.
func (l *Library) Cache() *cache.Cache {
	return l.cache
}

// Update parses data as the new content of the named asset and returns a
// handle to its mesh. Unchanged content is served from the cache without
// parsing. When the content changed, meshes of the previous content are
// invalidated unless another asset still has that content. On a parse
// error the previous version stays in place.
//
// The caller must Release the handle.
func (l *Library) Update(ctx context.Context, name string, data []byte) (*cache.Handle, error) {
	hash := document.ContentHash(data)

	l.mu.Lock()
	prev := l.assets[name]
	l.mu.Unlock()

	if prev != nil && prev.Hash == hash {
		return l.get(ctx, prev)
	}

	doc, err := parse(data, l.opts)
	if err != nil {
		Logger().Warn("svgmesh: asset update rejected", "name", name, "err", err)
		return nil, err
	}

	l.mu.Lock()
	prev = l.assets[name]
	l.assets[name] = doc
	if prev != nil && prev.Hash != hash {
		l.releaseContentLocked(prev.Hash)
	}
	l.mu.Unlock()

	Logger().Debug("svgmesh: asset updated", "name", name, "document", hash.Short(), "warnings", len(doc.Warnings))
	return l.get(ctx, doc)
}

// Get returns a handle to the mesh of the named asset, tessellating it if
// it is not cached. The caller must Release the handle.
func (l *Library) Get(ctx context.Context, name string) (*cache.Handle, error) {
	l.mu.Lock()
	doc := l.assets[name]
	l.mu.Unlock()

	if doc == nil {
		return nil, ErrUnknownAsset
	}
	return l.get(ctx, doc)
}

func (l *Library) get(ctx context.Context, doc *document.Document) (*cache.Handle, error) {
	o := l.opts
	return l.cache.GetOrBuild(ctx, o.key(doc.Hash), func() (*mesh.Mesh, error) {
		return tessellate(doc, o), nil
	})
}

// Document returns the current document of the named asset.
func (l *Library) Document(name string) (*document.Document, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc, ok := l.assets[name]
	return doc, ok
}

// Remove forgets the named asset and invalidates its meshes unless another
// asset has the same content. Outstanding handles stay valid. It reports
// whether the asset existed.
func (l *Library) Remove(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	doc, ok := l.assets[name]
	if !ok {
		return false
	}
	delete(l.assets, name)
	l.releaseContentLocked(doc.Hash)
	Logger().Debug("svgmesh: asset removed", "name", name)
	return true
}

// Names returns the asset names in sorted order.
func (l *Library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.assets))
	for name := range l.assets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// releaseContentLocked invalidates content if no asset refers to it.
// Must hold l.mu.
func (l *Library) releaseContentLocked(content document.Hash) {
	for _, doc := range l.assets {
		if doc.Hash == content {
			return
		}
	}
	l.cache.Invalidate(content)
}
