package document

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

type paintKind int

const (
	paintNone paintKind = iota
	paintColor
	paintCurrent
)

// paintSpec is a paint value before currentColor is resolved.
type paintSpec struct {
	kind  paintKind
	color Color
}

// style is the computed presentation state at one element. Everything
// except opacity is inherited as is; opacity accumulates multiplicatively
// down the tree, which is exact for non-overlapping children.
type style struct {
	fill          paintSpec
	stroke        paintSpec
	fillOpacity   float64
	strokeOpacity float64
	opacity       float64
	strokeStyle   StrokeStyle
	fillRule      FillRule
	color         Color
	hidden        bool
}

func defaultStyle() style {
	return style{
		fill:          paintSpec{kind: paintColor, color: Black},
		stroke:        paintSpec{kind: paintNone},
		fillOpacity:   1,
		strokeOpacity: 1,
		opacity:       1,
		strokeStyle:   DefaultStrokeStyle(),
		fillRule:      NonZero,
		color:         Black,
	}
}

// inherit returns the style a child starts from.
func (s style) inherit() style {
	s.hidden = false
	return s
}

func (s style) resolve(spec paintSpec, opacity float64) Paint {
	switch spec.kind {
	case paintColor:
		return SolidPaint(spec.color.WithAlpha(opacity))
	case paintCurrent:
		return SolidPaint(s.color.WithAlpha(opacity))
	}
	return NoPaint
}

// fillPaint returns the resolved fill.
func (s style) fillPaint() Paint { return s.resolve(s.fill, s.fillOpacity) }

// strokePaint returns the resolved stroke.
func (s style) strokePaint() Paint { return s.resolve(s.stroke, s.strokeOpacity) }

// styleProperties are the presentation attributes the parser understands,
// in the order they are applied.
var styleProperties = []string{
	"color",
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-opacity", "stroke-width",
	"stroke-linecap", "stroke-linejoin", "stroke-miterlimit",
	"opacity", "display", "visibility",
	"filter", "mask", "clip-path",
	"marker", "marker-start", "marker-mid", "marker-end",
	"stroke-dasharray", "stroke-dashoffset",
}

// propertyIssue describes a declaration that could not be honored exactly.
type propertyIssue struct {
	// unsupported is set when the value uses a feature outside the
	// supported subset; the property has been given its fallback.
	unsupported bool
	feature     string
	msg         string
}

// apply sets one property. A nil issue means the value was applied as is.
// ref is the length used to resolve percentages.
func (s *style) apply(name, value string, ref float64) *propertyIssue {
	value = strings.TrimSpace(value)
	if value == "" || value == "inherit" {
		return nil
	}
	switch name {
	case "color":
		if value == "currentColor" {
			return nil
		}
		c, ok := ParseColor(value)
		if !ok {
			return &propertyIssue{msg: fmt.Sprintf("invalid color %q ignored", value)}
		}
		s.color = c
	case "fill":
		return s.applyPaint(&s.fill, name, value)
	case "stroke":
		return s.applyPaint(&s.stroke, name, value)
	case "fill-opacity":
		return applyOpacity(&s.fillOpacity, name, value, false)
	case "stroke-opacity":
		return applyOpacity(&s.strokeOpacity, name, value, false)
	case "opacity":
		return applyOpacity(&s.opacity, name, value, true)
	case "fill-rule":
		switch value {
		case "nonzero":
			s.fillRule = NonZero
		case "evenodd":
			s.fillRule = EvenOdd
		default:
			return &propertyIssue{msg: fmt.Sprintf("invalid fill-rule %q ignored", value)}
		}
	case "stroke-width":
		w, err := parseLength(value, ref)
		if err != nil {
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-width %q ignored", value)}
		}
		if w < 0 {
			return &propertyIssue{msg: fmt.Sprintf("negative stroke-width %q ignored", value)}
		}
		s.strokeStyle.Width = w
	case "stroke-linecap":
		switch value {
		case "butt":
			s.strokeStyle.Cap = CapButt
		case "round":
			s.strokeStyle.Cap = CapRound
		case "square":
			s.strokeStyle.Cap = CapSquare
		default:
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-linecap %q ignored", value)}
		}
	case "stroke-linejoin":
		switch value {
		case "miter", "miter-clip", "arcs":
			s.strokeStyle.Join = JoinMiter
		case "round":
			s.strokeStyle.Join = JoinRound
		case "bevel":
			s.strokeStyle.Join = JoinBevel
		default:
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-linejoin %q ignored", value)}
		}
	case "stroke-miterlimit":
		v, err := parseNumber(value)
		if err != nil {
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-miterlimit %q ignored", value)}
		}
		if v < 1 {
			s.strokeStyle.MiterLimit = 1
			return &propertyIssue{msg: fmt.Sprintf("stroke-miterlimit %q clamped to 1", value)}
		}
		s.strokeStyle.MiterLimit = v
	case "display":
		if value == "none" {
			s.hidden = true
		}
	case "visibility":
		if value == "hidden" || value == "collapse" {
			s.fill = paintSpec{kind: paintNone}
			s.stroke = paintSpec{kind: paintNone}
		}
	case "filter", "mask", "clip-path", "marker", "marker-start", "marker-mid", "marker-end":
		if value != "none" {
			return &propertyIssue{unsupported: true, feature: name}
		}
	case "stroke-dasharray":
		if value == "none" {
			s.strokeStyle.Dash = nil
			return nil
		}
		dash, err := parseDashArray(value, ref)
		if err != nil {
			s.strokeStyle.Dash = nil
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-dasharray %q drawn solid", value)}
		}
		s.strokeStyle.Dash = dash
	case "stroke-dashoffset":
		v, err := parseLength(value, ref)
		if err != nil {
			return &propertyIssue{msg: fmt.Sprintf("invalid stroke-dashoffset %q ignored", value)}
		}
		s.strokeStyle.DashOffset = v
	}
	return nil
}

func (s *style) applyPaint(dst *paintSpec, name, value string) *propertyIssue {
	switch {
	case value == "none":
		*dst = paintSpec{kind: paintNone}
	case value == "currentColor":
		*dst = paintSpec{kind: paintCurrent}
	case strings.HasPrefix(value, "url("):
		// A paint server reference, optionally followed by a fallback.
		fallback := paintSpec{kind: paintNone}
		if end := strings.IndexByte(value, ')'); end > 0 {
			rest := strings.TrimSpace(value[end+1:])
			switch rest {
			case "", "none":
			case "currentColor":
				fallback = paintSpec{kind: paintCurrent}
			default:
				if c, ok := ParseColor(rest); ok {
					fallback = paintSpec{kind: paintColor, color: c}
				}
			}
		}
		*dst = fallback
		return &propertyIssue{unsupported: true, feature: name + " paint server " + value}
	default:
		c, ok := ParseColor(value)
		if !ok {
			return &propertyIssue{msg: fmt.Sprintf("invalid %s color %q ignored", name, value)}
		}
		*dst = paintSpec{kind: paintColor, color: c}
	}
	return nil
}

func applyOpacity(dst *float64, name, value string, multiply bool) *propertyIssue {
	var v float64
	var err error
	if strings.HasSuffix(value, "%") {
		v, err = parseNumber(value[:len(value)-1])
		v /= 100
	} else {
		v, err = parseNumber(value)
	}
	if err != nil {
		return &propertyIssue{msg: fmt.Sprintf("invalid %s %q ignored", name, value)}
	}
	v = clamp01(v)
	if multiply {
		*dst *= v
	} else {
		*dst = v
	}
	return nil
}

// declaration is one property: value pair from a style attribute.
type declaration struct {
	name, value string
}

// parseStyleAttr splits an inline style attribute into declarations.
func parseStyleAttr(s string) []declaration {
	var out []declaration
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		out = append(out, declaration{name: strings.TrimSpace(name), value: value})
	}
	return out
}

// Absolute length units in user units (CSS pixels at 96 dpi).
var unitScale = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"mm": 96.0 / 25.4,
	"cm": 96.0 / 2.54,
	"in": 96,
	"em": 16,
	"ex": 8,
}

// parseLength parses a length with an optional unit. Percentages are
// resolved against ref.
func parseLength(s string, ref float64) (float64, error) {
	s = strings.TrimSpace(s)
	b := []byte(s)
	num, n := strconv.ParseFloat(b)
	if n == 0 || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	unit := strings.TrimSpace(s[n:])
	if unit == "%" {
		return num * ref / 100, nil
	}
	scale, ok := unitScale[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q in length %q", unit, s)
	}
	return num * scale, nil
}

// parseDashArray parses a list of non-negative lengths separated by commas
// or whitespace. A list summing to zero is returned as nil.
func parseDashArray(s string, ref float64) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty dash array")
	}
	out := make([]float64, 0, len(fields))
	var total float64
	for _, f := range fields {
		v, err := parseLength(f, ref)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative dash length %q", f)
		}
		out = append(out, v)
		total += v
	}
	if total <= 0 {
		return nil, nil
	}
	return out, nil
}

// parseNumber parses a plain number occupying the whole string.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, n := strconv.ParseFloat([]byte(s))
	if n == 0 || n != len(s) || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return num, nil
}
