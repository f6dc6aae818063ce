package document

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/svgmesh/geom"
)

// argCount is the number of arguments each path command takes.
var argCount = map[byte]int{
	'M': 2,
	'Z': 0,
	'L': 2,
	'H': 1,
	'V': 1,
	'C': 6,
	'S': 4,
	'Q': 4,
	'T': 2,
	'A': 7,
}

// pathBuilder accumulates subpaths while path data is decoded.
type pathBuilder struct {
	subpaths []Subpath
	cur      *Subpath
	pos      geom.Point
}

func (b *pathBuilder) moveTo(p geom.Point) {
	b.flush()
	b.cur = &Subpath{Start: p}
	b.pos = p
}

func (b *pathBuilder) add(seg geom.Segment) {
	if b.cur == nil {
		// Drawing after Z continues from the start of the closed subpath.
		b.cur = &Subpath{Start: b.pos}
	}
	b.cur.Segments = append(b.cur.Segments, seg)
	b.pos = seg.End()
}

func (b *pathBuilder) close() {
	if b.cur == nil {
		return
	}
	b.cur.Closed = true
	b.pos = b.cur.Start
	b.flush()
}

// partial returns the subpaths completed so far, including the one in
// progress.
func (b *pathBuilder) partial() []Subpath {
	b.flush()
	return b.subpaths
}

func (b *pathBuilder) flush() {
	if b.cur != nil && (len(b.cur.Segments) > 0 || b.cur.Closed) {
		b.subpaths = append(b.subpaths, *b.cur)
	}
	b.cur = nil
}

// ParsePathData decodes the SVG path data grammar (the d attribute) into
// subpaths. All commands are supported in absolute and relative form,
// including implicit command repetition. A lone moveto produces no subpath.
//
// On malformed data the error is returned together with the subpaths
// decoded up to the first bad command.
func ParsePathData(d string) ([]Subpath, error) {
	path := []byte(d)
	var b pathBuilder
	var f [7]float64

	// q and c are the last quadratic and cubic control points, used to
	// reflect the implicit control point of T and S.
	var q, c geom.Point
	prevCmd := byte(0)
	i := skipCommaWhitespace(path)
	for i < len(path) {
		cmd := prevCmd
		repeat := true
		if !isNumberStart(path[i]) || prevCmd == 0 || prevCmd == 'Z' || prevCmd == 'z' {
			cmd = path[i]
			repeat = false
			i++
			i += skipCommaWhitespace(path[i:])
		}

		upper := cmd
		if 'a' <= cmd && cmd <= 'z' {
			upper -= 'a' - 'A'
		}
		n, ok := argCount[upper]
		if !ok {
			return b.partial(), fmt.Errorf("unknown command '%c' at position %d", cmd, i)
		}
		if prevCmd == 0 && upper != 'M' {
			return b.partial(), fmt.Errorf("path data must begin with a moveto, got '%c'", cmd)
		}
		for j := 0; j < n; j++ {
			if upper == 'A' && (j == 3 || j == 4) {
				if i < len(path) && (path[i] == '0' || path[i] == '1') {
					f[j] = float64(path[i] - '0')
					i++
				} else {
					return b.partial(), fmt.Errorf("arc flags must be 0 or 1 in command '%c' at position %d", cmd, i+1)
				}
			} else {
				num, k := strconv.ParseFloat(path[i:])
				if k == 0 {
					if repeat && j == 0 {
						return b.partial(), fmt.Errorf("unexpected character '%c' at position %d", path[i], i+1)
					}
					return b.partial(), fmt.Errorf("command '%c' takes %d numbers, got %d at position %d", cmd, n, j, i+1)
				}
				if math.IsNaN(num) || math.IsInf(num, 0) {
					return b.partial(), fmt.Errorf("non-finite number at position %d", i+1)
				}
				f[j] = num
				i += k
			}
			i += skipCommaWhitespace(path[i:])
		}

		p0 := b.pos
		rel := cmd != upper
		abs := func(x, y float64) geom.Point {
			if rel {
				return geom.Pt(p0.X+x, p0.Y+y)
			}
			return geom.Pt(x, y)
		}

		switch upper {
		case 'M':
			b.moveTo(abs(f[0], f[1]))
			// Subsequent coordinate pairs are implicit lineto commands.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'Z':
			b.close()
		case 'L':
			b.add(geom.Line{P0: p0, P1: abs(f[0], f[1])})
		case 'H':
			x := f[0]
			if rel {
				x += p0.X
			}
			b.add(geom.Line{P0: p0, P1: geom.Pt(x, p0.Y)})
		case 'V':
			y := f[0]
			if rel {
				y += p0.Y
			}
			b.add(geom.Line{P0: p0, P1: geom.Pt(p0.X, y)})
		case 'C':
			c1 := abs(f[0], f[1])
			c = abs(f[2], f[3])
			b.add(geom.CubicBez{P0: p0, P1: c1, P2: c, P3: abs(f[4], f[5])})
		case 'S':
			c1 := p0
			if prevCmd == 'C' || prevCmd == 'c' || prevCmd == 'S' || prevCmd == 's' {
				c1 = p0.Mul(2).Sub(c)
			}
			c = abs(f[0], f[1])
			b.add(geom.CubicBez{P0: p0, P1: c1, P2: c, P3: abs(f[2], f[3])})
		case 'Q':
			q = abs(f[0], f[1])
			b.add(geom.QuadBez{P0: p0, P1: q, P2: abs(f[2], f[3])})
		case 'T':
			if prevCmd == 'Q' || prevCmd == 'q' || prevCmd == 'T' || prevCmd == 't' {
				q = p0.Mul(2).Sub(q)
			} else {
				q = p0
			}
			b.add(geom.QuadBez{P0: p0, P1: q, P2: abs(f[0], f[1])})
		case 'A':
			end := abs(f[5], f[6])
			switch {
			case end == p0:
				// An arc to the current point draws nothing.
			case f[0] == 0 || f[1] == 0:
				b.add(geom.Line{P0: p0, P1: end})
			default:
				b.add(geom.Arc{
					P0:       p0,
					P1:       end,
					Rx:       math.Abs(f[0]),
					Ry:       math.Abs(f[1]),
					Rotation: f[2] * math.Pi / 180,
					LargeArc: f[3] == 1,
					Sweep:    f[4] == 1,
				})
			}
		}
		prevCmd = cmd
	}
	b.flush()
	return b.subpaths, nil
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

func skipCommaWhitespace(path []byte) int {
	i := 0
	for i < len(path) && (path[i] == ' ' || path[i] == ',' || path[i] == '\n' || path[i] == '\r' || path[i] == '\t' || path[i] == '\f') {
		i++
	}
	return i
}
