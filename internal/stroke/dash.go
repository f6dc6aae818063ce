package stroke

import (
	"math"

	"github.com/gogpu/svgmesh/geom"
)

// Dash defines a dash pattern for stroking.
// A dash pattern consists of alternating dash and gap lengths.
// For example, [5, 3] creates a pattern of 5 units dash, 3 units gap.
type Dash struct {
	// Array contains alternating dash/gap lengths.
	// If the array has an odd number of elements, it is logically duplicated
	// to create an even-length pattern (e.g., [5] becomes [5, 5]).
	Array []float64

	// Offset is the distance into the pattern at which the stroke starts.
	Offset float64
}

// NewDash creates a dash pattern from alternating dash/gap lengths.
//
// Examples:
//
//	NewDash(5, 3)        // 5 units dash, 3 units gap
//	NewDash(10, 5, 2, 5) // 10 dash, 5 gap, 2 dash, 5 gap
//	NewDash(5)           // equivalent to [5, 5]
//
// Returns nil if no lengths are provided, any length is negative or not
// finite, or all lengths are zero. A nil Dash strokes a solid line.
func NewDash(lengths ...float64) *Dash {
	if len(lengths) == 0 {
		return nil
	}
	var total float64
	for _, l := range lengths {
		if l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return nil
		}
		total += l
	}
	if total <= 0 {
		return nil
	}

	array := make([]float64, len(lengths))
	copy(array, lengths)
	return &Dash{Array: array}
}

// WithOffset returns a new Dash with the given offset.
func (d *Dash) WithOffset(offset float64) *Dash {
	if d == nil {
		return nil
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		offset = 0
	}
	return &Dash{Array: d.Array, Offset: offset}
}

// PatternLength returns the total length of one complete pattern cycle.
// For odd-length arrays, this includes the duplicated pattern.
func (d *Dash) PatternLength() float64 {
	if d == nil || len(d.Array) == 0 {
		return 0
	}

	var total float64
	for _, l := range d.Array {
		total += l
	}
	if len(d.Array)%2 != 0 {
		total *= 2
	}
	return total
}

// IsDashed returns true if this represents a dashed line (not solid).
func (d *Dash) IsDashed() bool {
	return d.PatternLength() > 0
}

// NormalizedOffset returns the offset normalized to be within one pattern cycle.
func (d *Dash) NormalizedOffset() float64 {
	patternLen := d.PatternLength()
	if patternLen <= 0 {
		return 0
	}
	offset := math.Mod(d.Offset, patternLen)
	if offset < 0 {
		offset += patternLen
	}
	return offset
}

// Scale returns a new Dash with all lengths multiplied by factor.
func (d *Dash) Scale(factor float64) *Dash {
	if d == nil || factor <= 0 {
		return d
	}
	scaled := make([]float64, len(d.Array))
	for i, l := range d.Array {
		scaled[i] = l * factor
	}
	return &Dash{Array: scaled, Offset: d.Offset * factor}
}

// effectiveArray returns the array with odd-length arrays duplicated.
func (d *Dash) effectiveArray() []float64 {
	if len(d.Array)%2 == 0 {
		return d.Array
	}
	result := make([]float64, len(d.Array)*2)
	copy(result, d.Array)
	copy(result[len(d.Array):], d.Array)
	return result
}

// maxDashes bounds the dashes generated for one polyline. Patterns much
// finer than the polyline would otherwise explode the output.
const maxDashes = 1 << 16

// Split cuts the polyline pts into the open polylines covered by dashes.
// A closed polyline is walked through its closing segment, and a dash that
// runs across the start point is emitted as one polyline. Zero-length
// dashes yield single-point polylines, which cap styles turn into dots.
//
// Split reports solid when the polyline must be stroked as given instead:
// the pattern is nil or solid, the polyline is degenerate, the pattern is
// too fine to resolve, or a dash covers a whole closed polyline.
func (d *Dash) Split(pts []geom.Point, closed bool) (dashes [][]geom.Point, solid bool) {
	if !d.IsDashed() || len(pts) < 2 {
		return nil, true
	}
	if closed {
		ring := make([]geom.Point, len(pts), len(pts)+1)
		copy(ring, pts)
		if pts[0] != pts[len(pts)-1] {
			ring = append(ring, pts[0])
		}
		pts = ring
	}

	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Sub(pts[i-1]).Length()
	}
	if total <= 0 || total/d.PatternLength() > maxDashes {
		return nil, true
	}

	array := d.effectiveArray()

	// Locate the offset inside the pattern.
	idx := 0
	rem := d.NormalizedOffset()
	for rem >= array[idx] && rem > 0 {
		rem -= array[idx]
		idx = (idx + 1) % len(array)
	}
	left := array[idx] - rem // length left in the current dash or gap
	on := idx%2 == 0

	var current []geom.Point
	if on {
		current = []geom.Point{pts[0]}
	}
	startsOn := on

	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		segLen := b.Sub(a).Length()
		pos := 0.0
		for segLen-pos > left {
			pos += left
			p := a.Lerp(b, pos/segLen)
			if on {
				current = append(current, p)
				dashes = append(dashes, current)
				current = nil
			} else {
				current = []geom.Point{p}
			}
			on = !on
			idx = (idx + 1) % len(array)
			left = array[idx]
		}
		left -= segLen - pos
		if on {
			current = append(current, b)
		}
	}
	if !on && !closed && left <= total*1e-12 && array[(idx+1)%len(array)] == 0 {
		// A zero-length dash falls exactly on the end point.
		dashes = append(dashes, []geom.Point{pts[len(pts)-1]})
	}
	if on && len(current) > 0 {
		switch {
		case closed && startsOn && len(dashes) == 0:
			return nil, true
		case closed && startsOn:
			// The last dash continues into the first.
			dashes[0] = append(current, dashes[0][1:]...)
		default:
			dashes = append(dashes, current)
		}
	}
	return dashes, false
}
