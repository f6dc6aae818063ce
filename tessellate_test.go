package svgmesh

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/svgmesh/cache"
	"github.com/gogpu/svgmesh/document"
	"github.com/gogpu/svgmesh/geom"
	"github.com/gogpu/svgmesh/mesh"
)

const redSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M0 0 L10 0 L10 10 L0 10 Z" fill="red"/>
</svg>`

const strokedSquare = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M0 0 L10 0 L10 10 L0 10 Z" fill="none" stroke="black" stroke-width="2"/>
</svg>`

const twoColors = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
  <rect x="0" y="0" width="10" height="10" fill="red"/>
  <rect x="20" y="0" width="10" height="10" fill="blue"/>
  <circle cx="50" cy="50" r="10" fill="red" stroke="blue" stroke-width="2"/>
</svg>`

func checkCCW(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a := m.Vertices[m.Indices[i]]
		b := m.Vertices[m.Indices[i+1]]
		c := m.Vertices[m.Indices[i+2]]
		area := float64(b.X-a.X)*float64(c.Y-a.Y) - float64(c.X-a.X)*float64(b.Y-a.Y)
		if area <= 0 {
			t.Errorf("triangle %d is not counter-clockwise (area %v)", i/3, area/2)
		}
	}
}

func meshArea(m *mesh.Mesh) float64 {
	var a float64
	for i := 0; i+2 < len(m.Indices); i += 3 {
		p := m.Vertices[m.Indices[i]]
		q := m.Vertices[m.Indices[i+1]]
		r := m.Vertices[m.Indices[i+2]]
		a += 0.5 * (float64(q.X-p.X)*float64(r.Y-p.Y) - float64(r.X-p.X)*float64(q.Y-p.Y))
	}
	return a
}

func nearRect(a, b geom.Rect, eps float64) bool {
	return a.Min.Near(b.Min, eps) && a.Max.Near(b.Max, eps)
}

func TestTessellate_RedSquare(t *testing.T) {
	m, err := TessellateBytes([]byte(redSquare))
	if err != nil {
		t.Fatalf("TessellateBytes: %v", err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want 2", m.TriangleCount())
	}
	red := mesh.Color{1, 0, 0, 1}
	for i, c := range m.Colors() {
		if c != red {
			t.Errorf("vertex %d color = %v, want red", i, c)
		}
	}
	want := geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(10, 10)}
	if !nearRect(m.Bounds, want, 1e-6) {
		t.Errorf("Bounds = %+v, want %+v", m.Bounds, want)
	}
	checkCCW(t, m)
	if len(m.Warnings) != 0 {
		t.Errorf("Warnings = %v", m.Warnings)
	}
}

func TestTessellate_StrokedSquare(t *testing.T) {
	for _, axis := range []document.Axis{document.YUp, document.YDown} {
		t.Run(axis.String(), func(t *testing.T) {
			m, err := TessellateBytes([]byte(strokedSquare), WithAxis(axis))
			if err != nil {
				t.Fatalf("TessellateBytes: %v", err)
			}
			want := geom.Rect{Min: geom.Pt(-1, -1), Max: geom.Pt(11, 11)}
			if !nearRect(m.Bounds, want, 1e-5) {
				t.Errorf("Bounds = %+v, want %+v", m.Bounds, want)
			}
			if a := meshArea(m); math.Abs(a-80) > 1e-3 {
				t.Errorf("area = %v, want 80", a)
			}
			checkCCW(t, m)
			for i, c := range m.Colors() {
				if c != (mesh.Color{0, 0, 0, 1}) {
					t.Fatalf("vertex %d color = %v, want black", i, c)
				}
			}
		})
	}
}

func TestTessellate_DashedStroke(t *testing.T) {
	src := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 20 10">
  <path d="M0 5 L14 5" fill="none" stroke="black" stroke-width="2" stroke-dasharray="4 2"/>
</svg>`
	m, err := TessellateBytes([]byte(src))
	if err != nil {
		t.Fatalf("TessellateBytes: %v", err)
	}
	// Dashes of 4, 4 and 2 units.
	if a := meshArea(m); math.Abs(a-20) > 1e-3 {
		t.Errorf("area = %v, want 20", a)
	}
	want := geom.Rect{Min: geom.Pt(0, 4), Max: geom.Pt(14, 6)}
	if !nearRect(m.Bounds, want, 1e-5) {
		t.Errorf("Bounds = %+v, want %+v", m.Bounds, want)
	}
	checkCCW(t, m)
}

func TestTessellate_AxisFlip(t *testing.T) {
	const tri = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M0 0 L10 0 L0 2 Z"/>
</svg>`
	tests := []struct {
		axis document.Axis
		want geom.Rect
	}{
		{document.YDown, geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(10, 2)}},
		{document.YUp, geom.Rect{Min: geom.Pt(0, 8), Max: geom.Pt(10, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.axis.String(), func(t *testing.T) {
			m, err := TessellateBytes([]byte(tri), WithAxis(tt.axis))
			if err != nil {
				t.Fatal(err)
			}
			if !nearRect(m.Bounds, tt.want, 1e-6) {
				t.Errorf("Bounds = %+v, want %+v", m.Bounds, tt.want)
			}
			checkCCW(t, m)
		})
	}
}

func TestTessellate_Grouping(t *testing.T) {
	tests := []struct {
		name     string
		grouping mesh.Grouping
		groups   int
	}{
		{"per vertex color", mesh.PerVertexColor, 1},
		{"batch by color", mesh.BatchByColor, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := TessellateBytes([]byte(twoColors), WithGrouping(tt.grouping))
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Groups) != tt.groups {
				t.Fatalf("len(Groups) = %d, want %d", len(m.Groups), tt.groups)
			}
			var total uint32
			for _, g := range m.Groups {
				total += g.IndexCount
			}
			if int(total) != len(m.Indices) {
				t.Errorf("groups cover %d of %d indices", total, len(m.Indices))
			}
			checkCCW(t, m)
		})
	}
}

func TestTessellate_Target3DDepth(t *testing.T) {
	m, err := TessellateBytes([]byte(twoColors), WithTarget(mesh.Target3D), WithDepthStep(0.01))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[float32]bool{}
	for _, p := range m.Positions3D() {
		seen[p[2]] = true
	}
	// Three fills plus one stroke layer.
	if len(seen) != 4 {
		t.Errorf("distinct depths = %v, want 4", seen)
	}
	if !seen[0] || !seen[0.01] {
		t.Errorf("depths = %v, want paint-order steps", seen)
	}
}

func TestTessellate_ToleranceFollowsScale(t *testing.T) {
	const scaled = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-200 -200 400 400">
  <circle r="1" transform="scale(100)"/>
</svg>`
	const plain = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="-200 -200 400 400">
  <circle r="100"/>
</svg>`
	a, err := TessellateBytes([]byte(scaled), WithTolerance(0.05))
	if err != nil {
		t.Fatal(err)
	}
	b, err := TessellateBytes([]byte(plain), WithTolerance(0.05))
	if err != nil {
		t.Fatal(err)
	}
	if d := a.VertexCount() - b.VertexCount(); d < -4 || d > 4 {
		t.Errorf("scaled circle has %d vertices, plain %d", a.VertexCount(), b.VertexCount())
	}
	// Every boundary point is within tolerance of the circle, so the area
	// error is bounded by tolerance times perimeter.
	want := math.Pi * 100 * 100
	if got := meshArea(a); math.Abs(got-want) > 0.05*2*math.Pi*100 {
		t.Errorf("area = %v, want within tolerance of %v", got, want)
	}
}

func TestTessellate_NodeScopedFailure(t *testing.T) {
	nan := math.NaN()
	bad := &document.Path{
		ID:        "bad",
		Transform: geom.Identity(),
		Subpaths: []document.Subpath{{
			Start: geom.Pt(0, 0),
			Segments: []geom.Segment{
				geom.Line{P0: geom.Pt(0, 0), P1: geom.Pt(nan, 0)},
				geom.Line{P0: geom.Pt(nan, 0), P1: geom.Pt(0, 5)},
			},
			Closed: true,
		}},
		Fill:    document.SolidPaint(document.Red),
		Opacity: 1,
	}
	good := &document.Path{
		ID:        "good",
		Transform: geom.Identity(),
		Subpaths: []document.Subpath{{
			Start: geom.Pt(0, 0),
			Segments: []geom.Segment{
				geom.Line{P0: geom.Pt(0, 0), P1: geom.Pt(4, 0)},
				geom.Line{P0: geom.Pt(4, 0), P1: geom.Pt(0, 4)},
			},
			Closed: true,
		}},
		Fill:    document.SolidPaint(document.Red),
		Opacity: 1,
	}
	doc := &document.Document{
		Root: &document.Group{Transform: geom.Identity(), Children: []document.Node{bad, good}},
	}

	m, err := Tessellate(doc, WithAxis(document.YDown))
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("TriangleCount() = %d, want the good path only", m.TriangleCount())
	}
	if len(m.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want 1", m.Warnings)
	}
	var te *TessellationError
	if !errors.As(m.Warnings[0], &te) || te.NodeID != "bad" || te.Stage != "fill" {
		t.Errorf("warning = %v", m.Warnings[0])
	}
	if !errors.Is(m.Warnings[0], ErrTessellation) {
		t.Error("warning does not match ErrTessellation")
	}
}

func TestTessellate_MalformedPathKeepsSiblings(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <rect width="10" height="10" fill="red"/>
  <path d="M0 0 L 5" fill="blue"/>
</svg>`
	m, err := TessellateBytes([]byte(svg), WithAxis(document.YDown))
	if err != nil {
		t.Fatalf("TessellateBytes: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount() = %d, want the rect only", m.TriangleCount())
	}
	if m.Bounds != (geom.Rect{Max: geom.Pt(10, 10)}) {
		t.Errorf("Bounds = %+v", m.Bounds)
	}

	if _, err := TessellateBytes([]byte(svg), WithStrictness(document.Strict)); !errors.Is(err, document.ErrParse) {
		t.Errorf("strict mode err = %v, want ErrParse", err)
	}
}

func TestTessellate_PaintlessPathsSkipped(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <path d="M0 0 L10 0 L10 10 Z" fill="none"/>
  <path d="M0 0 L10 0 L10 10 Z" fill="red" opacity="0"/>
</svg>`
	m, err := TessellateBytes([]byte(svg))
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsEmpty() || !m.Bounds.IsZero() {
		t.Errorf("mesh = %d triangles, bounds %+v; want empty", m.TriangleCount(), m.Bounds)
	}
}

func TestTessellate_Errors(t *testing.T) {
	if _, err := Tessellate(nil); !errors.Is(err, ErrNilDocument) {
		t.Errorf("Tessellate(nil) err = %v", err)
	}

	_, err := TessellateBytes([]byte(`<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0`))
	if !errors.Is(err, document.ErrParse) {
		t.Errorf("truncated markup err = %v, want ErrParse", err)
	}

	const gradient = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
  <rect width="10" height="10" fill="url(#g)"/>
</svg>`
	m, err := TessellateBytes([]byte(gradient))
	if err != nil || !m.IsEmpty() {
		t.Errorf("warn mode: err = %v, empty = %v", err, m != nil && m.IsEmpty())
	}
	if _, err := TessellateBytes([]byte(gradient), WithStrictness(document.Strict)); !errors.Is(err, document.ErrUnsupportedFeature) {
		t.Errorf("strict mode err = %v, want ErrUnsupportedFeature", err)
	}
}

func TestTessellate_WorkersDeterministic(t *testing.T) {
	doc, err := document.Parse([]byte(twoColors))
	if err != nil {
		t.Fatal(err)
	}
	seq, _ := Tessellate(doc, WithGrouping(mesh.BatchByColor))
	par, _ := Tessellate(doc, WithGrouping(mesh.BatchByColor), WithWorkers(4))
	if !reflect.DeepEqual(seq, par) {
		t.Error("parallel tessellation differs from sequential")
	}
}

func TestTessellateCached(t *testing.T) {
	doc, err := document.Parse([]byte(redSquare))
	if err != nil {
		t.Fatal(err)
	}
	c := cache.New(cache.DefaultConfig())
	ctx := context.Background()

	h1, err := TessellateCached(ctx, c, doc)
	if err != nil {
		t.Fatal(err)
	}
	defer h1.Release()
	h2, err := TessellateCached(ctx, c, doc, WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	defer h2.Release()

	if h1.Mesh() != h2.Mesh() {
		t.Error("worker count changed the cache key")
	}
	h3, err := TessellateCached(ctx, c, doc, WithTolerance(0.5))
	if err != nil {
		t.Fatal(err)
	}
	defer h3.Release()
	if h3.Mesh() == h1.Mesh() {
		t.Error("tolerance did not change the cache key")
	}
	if s := c.Stats(); s.Builds != 2 {
		t.Errorf("Builds = %d, want 2", s.Builds)
	}
}

func BenchmarkTessellate(b *testing.B) {
	doc, err := document.Parse([]byte(twoColors))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Tessellate(doc)
	}
}
