package svgmesh

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
)

// KeyFor returns the cache key of doc tessellated with opts. Options that
// do not change the output, such as the worker count, do not affect it.
func KeyFor(doc *document.Document, opts ...Option) cache.Key {
	return newOptions(opts).key(doc.Hash)
}

func (o options) key(content document.Hash) cache.Key {
	return cache.Key{
		Content:          content,
		Tolerance:        o.tolerance,
		FillRule:         o.fillRule,
		FillRuleOverride: o.fillRuleSet,
		Stroke:           hashWords(math.Float64bits(o.strokeScale)),
		Output: hashWords(
			uint64(o.grouping),
			uint64(o.target),
			uint64(o.axis),
			math.Float64bits(o.epsilon),
			uint64(o.maxDepth),
			uint64(math.Float32bits(o.depthStep)),
		),
	}
}

// hashWords computes the FNV-1a hash of the little-endian encoding of vals.
func hashWords(vals ...uint64) uint64 {
	buf := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint64(buf, v)
	}
	h := fnv.New64a()
	_, _ = h.Write(buf) // fnv.Write never returns an error
	return h.Sum64()
}
