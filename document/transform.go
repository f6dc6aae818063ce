package document

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"

	"github.com/gogpu/svgmesh/geom"
)

// ParseTransform decodes an SVG transform list. Functions are composed left
// to right, so the rightmost one is applied to coordinates first.
func ParseTransform(s string) (geom.Matrix, error) {
	m := geom.Identity()
	b := []byte(s)
	i := skipCommaWhitespace(b)
	for i < len(b) {
		open := strings.IndexByte(s[i:], '(')
		if open < 0 {
			return m, fmt.Errorf("transform: expected '(' after %q", s[i:])
		}
		name := strings.TrimSpace(s[i : i+open])
		i += open + 1
		end := strings.IndexByte(s[i:], ')')
		if end < 0 {
			return m, fmt.Errorf("transform: unterminated %s(", name)
		}
		args, err := parseNumberList(b[i : i+end])
		if err != nil {
			return m, fmt.Errorf("transform: %s: %w", name, err)
		}
		i += end + 1

		t, err := transformFunc(name, args)
		if err != nil {
			return m, err
		}
		m = m.Multiply(t)
		i += skipCommaWhitespace(b[i:])
	}
	return m, nil
}

func transformFunc(name string, args []float64) (geom.Matrix, error) {
	bad := func() (geom.Matrix, error) {
		return geom.Identity(), fmt.Errorf("transform: %s takes a different number of arguments than %d", name, len(args))
	}
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	switch name {
	case "matrix":
		if len(args) != 6 {
			return bad()
		}
		// SVG orders the coefficients column-major: a b c d e f.
		return geom.Matrix{
			A: args[0], B: args[2], C: args[4],
			D: args[1], E: args[3], F: args[5],
		}, nil
	case "translate":
		switch len(args) {
		case 1:
			return geom.Translate(args[0], 0), nil
		case 2:
			return geom.Translate(args[0], args[1]), nil
		}
		return bad()
	case "scale":
		switch len(args) {
		case 1:
			return geom.Scale(args[0], args[0]), nil
		case 2:
			return geom.Scale(args[0], args[1]), nil
		}
		return bad()
	case "rotate":
		switch len(args) {
		case 1:
			return geom.Rotate(rad(args[0])), nil
		case 3:
			return geom.RotateAbout(rad(args[0]), args[1], args[2]), nil
		}
		return bad()
	case "skewX":
		if len(args) != 1 {
			return bad()
		}
		return geom.Shear(math.Tan(rad(args[0])), 0), nil
	case "skewY":
		if len(args) != 1 {
			return bad()
		}
		return geom.Shear(0, math.Tan(rad(args[0]))), nil
	}
	return geom.Identity(), fmt.Errorf("transform: unknown function %q", name)
}

// parseNumberList reads comma or whitespace separated numbers.
func parseNumberList(b []byte) ([]float64, error) {
	var out []float64
	i := skipCommaWhitespace(b)
	for i < len(b) {
		num, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return nil, fmt.Errorf("bad number at %q", string(b[i:]))
		}
		if math.IsNaN(num) || math.IsInf(num, 0) {
			return nil, fmt.Errorf("non-finite number %q", string(b[i:i+n]))
		}
		out = append(out, num)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return out, nil
}
