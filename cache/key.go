package cache

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/svgmesh/document"
)

// Key identifies one tessellation of one document.
// Two requests with equal keys must produce interchangeable meshes.
type Key struct {
	// Content is the hash of the source bytes.
	Content document.Hash
	// Tolerance is the flattening tolerance in document units.
	Tolerance float64
	// FillRule is the fill rule override, or the document's own rules
	// when FillRuleOverride is false.
	FillRule         document.FillRule
	FillRuleOverride bool
	// Stroke hashes the parameters that change stroke geometry.
	Stroke uint64
	// Output hashes the output parameters: grouping policy, target and
	// axis convention.
	Output uint64
}

// String returns a compact binary encoding of k, used as the
// singleflight key.
func (k Key) String() string {
	buf := make([]byte, 0, len(k.Content)+8+2+8+8)
	buf = append(buf, k.Content[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(k.Tolerance))
	buf = append(buf, byte(k.FillRule))
	if k.FillRuleOverride {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.LittleEndian.AppendUint64(buf, k.Stroke)
	buf = binary.LittleEndian.AppendUint64(buf, k.Output)
	return string(buf)
}
