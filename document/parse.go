package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/gogpu/svgmesh/geom"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// skippedElements never render on their own. Their content is ignored.
var skippedElements = map[string]bool{
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"defs":           true,
	"symbol":         true,
	"marker":         true,
	"linearGradient": true,
	"radialGradient": true,
	"pattern":        true,
	"clipPath":       true,
	"mask":           true,
	"filter":         true,
}

// shapeElements are the basic shapes converted to path geometry.
var shapeElements = map[string]bool{
	"rect":     true,
	"circle":   true,
	"ellipse":  true,
	"line":     true,
	"polyline": true,
	"polygon":  true,
}

// Parse decodes SVG markup into a Document. Malformed markup fails with a
// *ParseError; unsupported features fail with an *UnsupportedFeatureError in
// Strict mode and are recorded as warnings otherwise. No partial document
// is ever returned together with an error.
//
// Malformed geometry of a single element, such as bad path data or a bad
// shape length, is node-scoped: in Warn mode the element keeps the path
// data decoded before the error (a shape is dropped) and a Warning is
// recorded; in Strict mode it fails the parse with a *ParseError.
//
// Definition elements (gradients, patterns, masks, clip paths, filters,
// markers, symbols and defs) are skipped without a warning in either mode.
// Only a reference to them, such as fill="url(#g)", is an unsupported
// feature subject to the strictness policy.
func Parse(data []byte, opts ...ParseOption) (*Document, error) {
	o := defaultParseOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	p := &parser{
		dec:  dec,
		opts: o,
		doc:  &Document{Source: YDown, Hash: ContentHash(data)},
	}
	if err := p.parseDocument(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

type parser struct {
	dec  *xml.Decoder
	opts parseOptions
	doc  *Document
}

func (p *parser) line() int {
	line, _ := p.dec.InputPos()
	return line
}

// syntaxError converts a decoder failure into a *ParseError.
func (p *parser) syntaxError(err error, element string) error {
	line := p.line()
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		line = se.Line
	}
	msg := "malformed markup"
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		msg = "truncated markup"
	}
	return &ParseError{Line: line, Element: element, Msg: msg, Err: err}
}

func (p *parser) parseError(element, format string, args ...any) error {
	return &ParseError{Line: p.line(), Element: element, Msg: fmt.Sprintf(format, args...)}
}

// warn records a recoverable problem.
func (p *parser) warn(w Warning) {
	p.doc.Warnings = append(p.doc.Warnings, w)
	p.opts.logger.Warn("svg: "+w.String(),
		"element", w.Element,
		"id", w.ID,
		"line", w.Line)
}

// unsupported applies the strictness policy to an unsupported feature.
func (p *parser) unsupported(element, id, feature string) error {
	line := p.line()
	if p.opts.strictness == Strict {
		return &UnsupportedFeatureError{Line: line, Element: element, Feature: feature}
	}
	p.warn(Warning{Line: line, Element: element, ID: id, Feature: feature, Msg: "unsupported, skipped"})
	return nil
}

// badGeometry applies the strictness policy to malformed geometry of one
// element. Strict fails the parse with a *ParseError; Warn records a
// Warning and leaves the rest of the document intact. partial reports
// whether the geometry before the error is kept.
func (p *parser) badGeometry(element, id string, err error, partial bool) error {
	if p.opts.strictness == Strict {
		return &ParseError{Line: p.line(), Element: element, Msg: err.Error()}
	}
	msg := "not rendered"
	if partial {
		msg = "rendered up to the error"
	}
	p.warn(Warning{Line: p.line(), Element: element, ID: id, Msg: fmt.Sprintf("%v, %s", err, msg)})
	return nil
}

func (p *parser) parseDocument() error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return p.parseError("", "no <svg> root element")
		}
		if err != nil {
			return p.syntaxError(err, "")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" || !isSVGSpace(start.Name.Space) {
			return p.parseError(start.Name.Local, "root element is <%s>, want <svg>", start.Name.Local)
		}
		if err := p.parseRoot(start); err != nil {
			return err
		}
		break
	}

	// Consume the rest so trailing garbage is reported.
	for {
		_, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return p.syntaxError(err, "")
		}
	}
}

func isSVGSpace(space string) bool {
	return space == "" || space == svgNamespace
}

// attrMap collects attributes in the SVG (or no) namespace by local name.
func attrMap(se xml.StartElement) map[string]string {
	m := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		if isSVGSpace(a.Name.Space) {
			m[a.Name.Local] = a.Value
		}
	}
	return m
}

func (p *parser) parseRoot(se xml.StartElement) error {
	attrs := attrMap(se)
	vb, hasVB, err := parseViewBox(attrs["viewBox"])
	if err != nil {
		return p.parseError("svg", "%v", err)
	}
	for _, name := range []string{"width", "height"} {
		v, ok := attrs[name]
		if !ok || strings.HasSuffix(strings.TrimSpace(v), "%") {
			continue
		}
		l, err := parseLength(v, 0)
		if err != nil {
			return p.parseError("svg", "attribute %s: %v", name, err)
		}
		if l < 0 {
			return p.parseError("svg", "negative %s %q", name, v)
		}
		if name == "width" {
			p.doc.Width = l
		} else {
			p.doc.Height = l
		}
	}
	switch {
	case hasVB:
		p.doc.ViewBox = vb
	case p.doc.Width > 0 || p.doc.Height > 0:
		p.doc.ViewBox = geom.Rect{Max: geom.Pt(p.doc.Width, p.doc.Height)}
	}

	root := &Group{ID: attrs["id"], Transform: geom.Identity()}
	st := defaultStyle()
	vp := viewport{w: p.doc.ViewBox.Width(), h: p.doc.ViewBox.Height()}
	if err := p.applyStyle("svg", attrs, &st, vp); err != nil {
		return err
	}
	p.doc.Root = root
	if st.hidden {
		return p.skip("svg")
	}
	return p.parseChildren("svg", root, st, vp)
}

// parseViewBox reads "min-x min-y width height".
func parseViewBox(s string) (geom.Rect, bool, error) {
	if strings.TrimSpace(s) == "" {
		return geom.Rect{}, false, nil
	}
	nums, err := parseNumberList([]byte(s))
	if err != nil {
		return geom.Rect{}, false, fmt.Errorf("viewBox: %w", err)
	}
	if len(nums) != 4 {
		return geom.Rect{}, false, fmt.Errorf("viewBox needs 4 numbers, got %d", len(nums))
	}
	if nums[2] < 0 || nums[3] < 0 {
		return geom.Rect{}, false, fmt.Errorf("viewBox has negative size")
	}
	return geom.Rect{
		Min: geom.Pt(nums[0], nums[1]),
		Max: geom.Pt(nums[0]+nums[2], nums[1]+nums[3]),
	}, true, nil
}

// skip discards the content of the current element.
func (p *parser) skip(element string) error {
	if err := p.dec.Skip(); err != nil {
		return p.syntaxError(err, element)
	}
	return nil
}

// parseChildren reads tokens up to the end of the current element, adding
// drawable children to parent.
func (p *parser) parseChildren(element string, parent *Group, st style, vp viewport) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return p.syntaxError(err, element)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.parseElement(t, parent, st, vp); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) parseElement(se xml.StartElement, parent *Group, parentStyle style, vp viewport) error {
	name := se.Name.Local
	if !isSVGSpace(se.Name.Space) {
		// Editor metadata such as sodipodi:namedview.
		return p.skip(name)
	}
	if skippedElements[name] {
		return p.skip(name)
	}

	attrs := attrMap(se)
	id := attrs["id"]
	switch {
	case name == "g" || name == "a" || name == "svg":
		return p.parseGroup(se, attrs, parent, parentStyle, vp)
	case name == "path" || shapeElements[name]:
		if err := p.parsePath(name, attrs, parent, parentStyle, vp); err != nil {
			return err
		}
		// Shapes may contain animation or description children.
		return p.skip(name)
	default:
		if err := p.unsupported(name, id, "element <"+name+">"); err != nil {
			return err
		}
		return p.skip(name)
	}
}

func (p *parser) parseTransformAttr(element string, attrs map[string]string) (geom.Matrix, error) {
	v, ok := attrs["transform"]
	if !ok {
		return geom.Identity(), nil
	}
	m, err := ParseTransform(v)
	if err != nil {
		return m, p.parseError(element, "%v", err)
	}
	return m, nil
}

func (p *parser) parseGroup(se xml.StartElement, attrs map[string]string, parent *Group, parentStyle style, vp viewport) error {
	name := se.Name.Local
	m, err := p.parseTransformAttr(name, attrs)
	if err != nil {
		return err
	}
	if name == "svg" {
		nested, nvp, err := p.nestedViewport(attrs, vp)
		if err != nil {
			return err
		}
		m = m.Multiply(nested)
		vp = nvp
	}

	st := parentStyle.inherit()
	if err := p.applyStyle(name, attrs, &st, vp); err != nil {
		return err
	}
	if st.hidden {
		return p.skip(name)
	}
	g := &Group{ID: attrs["id"], Transform: m}
	if err := p.parseChildren(name, g, st, vp); err != nil {
		return err
	}
	parent.Children = append(parent.Children, g)
	return nil
}

// nestedViewport returns the transform that places a nested <svg> in its
// parent: translation by x/y, then the viewBox mapped onto width/height
// with xMidYMid meet.
func (p *parser) nestedViewport(attrs map[string]string, vp viewport) (geom.Matrix, viewport, error) {
	s := &shapeAttrs{attrs: attrs, vp: vp}
	x := s.length("x", vp.w, 0)
	y := s.length("y", vp.h, 0)
	w := s.length("width", vp.w, vp.w)
	h := s.length("height", vp.h, vp.h)
	if s.err != nil {
		return geom.Identity(), vp, p.parseError("svg", "%v", s.err)
	}
	m := geom.Translate(x, y)
	vb, hasVB, err := parseViewBox(attrs["viewBox"])
	if err != nil {
		return geom.Identity(), vp, p.parseError("svg", "%v", err)
	}
	if !hasVB || vb.Width() == 0 || vb.Height() == 0 {
		return m, viewport{w: w, h: h}, nil
	}
	scale := min(w/vb.Width(), h/vb.Height())
	tx := (w - vb.Width()*scale) / 2
	ty := (h - vb.Height()*scale) / 2
	m = m.Multiply(geom.Translate(tx, ty)).
		Multiply(geom.Scale(scale, scale)).
		Multiply(geom.Translate(-vb.Min.X, -vb.Min.Y))
	return m, viewport{w: vb.Width(), h: vb.Height()}, nil
}

func (p *parser) parsePath(name string, attrs map[string]string, parent *Group, parentStyle style, vp viewport) error {
	id := attrs["id"]
	m, err := p.parseTransformAttr(name, attrs)
	if err != nil {
		return err
	}
	st := parentStyle.inherit()
	if err := p.applyStyle(name, attrs, &st, vp); err != nil {
		return err
	}
	if st.hidden {
		return nil
	}

	var subpaths []Subpath
	if name == "path" {
		subpaths, err = ParsePathData(attrs["d"])
		if err != nil {
			if err := p.badGeometry(name, id, fmt.Errorf("attribute d: %w", err), len(subpaths) > 0); err != nil {
				return err
			}
		}
	} else {
		var skip string
		subpaths, skip, err = shapeSubpaths(name, attrs, vp)
		if err != nil {
			return p.badGeometry(name, id, err, false)
		}
		if skip != "" {
			p.warn(Warning{Line: p.line(), Element: name, ID: id, Msg: skip + ", not rendered"})
			return nil
		}
	}
	if len(subpaths) == 0 && err != nil {
		return nil
	}

	path := &Path{
		ID:        id,
		Transform: m,
		Subpaths:  subpaths,
		Fill:      st.fillPaint(),
		Stroke:    st.strokePaint(),
		Style:     st.strokeStyle,
		FillRule:  st.fillRule,
		Opacity:   st.opacity,
	}
	if name == "line" || name == "polyline" {
		// Open shapes have no interior.
		path.Fill = NoPaint
	}
	parent.Children = append(parent.Children, path)
	return nil
}

// applyStyle applies presentation attributes, then inline style
// declarations, to st.
func (p *parser) applyStyle(element string, attrs map[string]string, st *style, vp viewport) error {
	values := make(map[string]string, len(styleProperties))
	for _, name := range styleProperties {
		if v, ok := attrs[name]; ok {
			values[name] = v
		}
	}
	if inline, ok := attrs["style"]; ok {
		for _, d := range parseStyleAttr(inline) {
			values[d.name] = d.value
		}
	}

	id := attrs["id"]
	for _, name := range styleProperties {
		v, ok := values[name]
		if !ok {
			continue
		}
		issue := st.apply(name, v, vp.diag())
		if issue == nil {
			continue
		}
		if issue.unsupported {
			if err := p.unsupported(element, id, issue.feature); err != nil {
				return err
			}
			continue
		}
		p.warn(Warning{Line: p.line(), Element: element, ID: id, Feature: name, Msg: issue.msg})
	}
	return nil
}
