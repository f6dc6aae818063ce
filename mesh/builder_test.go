package mesh

import (
	"errors"
	"testing"

	"github.com/gogpu/svgmesh/geom"
)

var (
	red  = Color{1, 0, 0, 1}
	blue = Color{0, 0, 1, 1}
)

// unitSquare is two CCW triangles covering (0,0)-(1,1).
var (
	squareVerts   = []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	squareIndices = []uint32{0, 1, 2, 0, 2, 3}
)

func triangleArea(m *Mesh, i int) float64 {
	a := m.Vertices[m.Indices[i]]
	b := m.Vertices[m.Indices[i+1]]
	c := m.Vertices[m.Indices[i+2]]
	return 0.5 * (float64(b.X-a.X)*float64(c.Y-a.Y) - float64(c.X-a.X)*float64(b.Y-a.Y))
}

func TestBuilder_TransformsAndBounds(t *testing.T) {
	b := NewBuilder(Target2D, PerVertexColor)
	b.Add(squareVerts, squareIndices, geom.Translate(5, 5).Multiply(geom.Scale(10, 10)), red, 0)
	m := b.Build()

	if m.VertexCount() != 4 || m.TriangleCount() != 2 {
		t.Fatalf("got %d vertices, %d triangles; want 4, 2", m.VertexCount(), m.TriangleCount())
	}
	want := geom.Rect{Min: geom.Pt(5, 5), Max: geom.Pt(15, 15)}
	if m.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", m.Bounds, want)
	}
	for i, c := range m.Colors() {
		if c != red {
			t.Errorf("vertex %d color = %v, want red", i, c)
		}
	}
}

func TestBuilder_MirrorKeepsCCW(t *testing.T) {
	tests := []struct {
		name string
		m    geom.Matrix
	}{
		{"identity", geom.Identity()},
		{"flip y", geom.Scale(1, -1)},
		{"flip x", geom.Scale(-1, 1)},
		{"rotate", geom.Rotate(1)},
		{"rotate and flip", geom.Rotate(1).Multiply(geom.Scale(1, -1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Target2D, PerVertexColor)
			b.Add(squareVerts, squareIndices, tt.m, red, 0)
			m := b.Build()
			for i := 0; i < len(m.Indices); i += 3 {
				if a := triangleArea(m, i); a <= 0 {
					t.Errorf("triangle %d area = %v, want > 0", i/3, a)
				}
			}
		})
	}
}

func TestBuilder_Grouping(t *testing.T) {
	tests := []struct {
		name     string
		grouping Grouping
		groups   []Group
	}{
		{
			name:     "per vertex color",
			grouping: PerVertexColor,
			groups:   []Group{{FirstIndex: 0, IndexCount: 18}},
		},
		{
			name:     "batch by color",
			grouping: BatchByColor,
			groups: []Group{
				{FirstIndex: 0, IndexCount: 12, Color: red, Uniform: true},
				{FirstIndex: 12, IndexCount: 6, Color: blue, Uniform: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(Target2D, tt.grouping)
			b.Add(squareVerts, squareIndices, geom.Identity(), red, 0)
			b.Add(squareVerts, squareIndices, geom.Translate(2, 0), blue, 0)
			b.Add(squareVerts, squareIndices, geom.Translate(4, 0), red, 0)
			m := b.Build()

			if len(m.Groups) != len(tt.groups) {
				t.Fatalf("got %d groups, want %d", len(m.Groups), len(tt.groups))
			}
			for i, g := range tt.groups {
				if m.Groups[i] != g {
					t.Errorf("group %d = %+v, want %+v", i, m.Groups[i], g)
				}
			}
			for _, g := range m.Groups {
				if !g.Uniform {
					continue
				}
				for _, idx := range m.Indices[g.FirstIndex : g.FirstIndex+g.IndexCount] {
					if m.Vertices[idx].Color != g.Color {
						t.Errorf("vertex %d in %v group has color %v", idx, g.Color, m.Vertices[idx].Color)
					}
				}
			}
		})
	}
}

func TestBuilder_BatchKeepsPaintOrder(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		colors []Color
	}{
		// The second red square lies on top of the blue one and must be
		// drawn after it.
		{"2D splits overlapped color", Target2D, []Color{red, blue, red}},
		{"3D relies on depth", Target3D, []Color{red, blue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.target, BatchByColor)
			b.Add(squareVerts, squareIndices, geom.Identity(), red, 0)
			b.Add(squareVerts, squareIndices, geom.Translate(0.5, 0), blue, 0.1)
			b.Add(squareVerts, squareIndices, geom.Translate(1, 0), red, 0.2)
			m := b.Build()

			if len(m.Groups) != len(tt.colors) {
				t.Fatalf("got %d groups, want %d", len(m.Groups), len(tt.colors))
			}
			for i, c := range tt.colors {
				if m.Groups[i].Color != c {
					t.Errorf("group %d color = %v, want %v", i, m.Groups[i].Color, c)
				}
			}
		})
	}
}

func TestBuilder_Empty(t *testing.T) {
	m := NewBuilder(Target3D, BatchByColor).Build()
	if !m.IsEmpty() || len(m.Groups) != 0 || !m.Bounds.IsZero() {
		t.Errorf("empty mesh = %+v", m)
	}
	if m.ByteSize() != 0 {
		t.Errorf("ByteSize = %d, want 0", m.ByteSize())
	}
}

func TestBuilder_SkipsSingularAndBadIndices(t *testing.T) {
	b := NewBuilder(Target2D, PerVertexColor)
	b.Add(squareVerts, squareIndices, geom.Scale(0, 1), red, 0)
	b.Add(squareVerts, []uint32{0, 1, 9}, geom.Identity(), red, 0)
	if m := b.Build(); !m.IsEmpty() {
		t.Errorf("got %d triangles, want 0", m.TriangleCount())
	}
}

func TestBuilder_DepthAndLayout(t *testing.T) {
	tests := []struct {
		target Target
		z      float32
		size   int
	}{
		{Target2D, 0, 4*24 + 6*4},
		{Target3D, 0.5, 4*40 + 6*4},
	}
	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			b := NewBuilder(tt.target, PerVertexColor)
			b.Add(squareVerts, squareIndices, geom.Identity(), red, 0.5)
			m := b.Build()
			for i, p := range m.Positions3D() {
				if p[2] != tt.z {
					t.Errorf("vertex %d z = %v, want %v", i, p[2], tt.z)
				}
			}
			if got := m.ByteSize(); got != tt.size {
				t.Errorf("ByteSize = %d, want %d", got, tt.size)
			}
			if got := len(m.Positions2D()); got != 4 {
				t.Errorf("len(Positions2D) = %d, want 4", got)
			}
		})
	}
}

func TestBuilder_Warnings(t *testing.T) {
	b := NewBuilder(Target2D, PerVertexColor)
	errBad := errors.New("bad node")
	b.Warn(errBad)
	b.Warn(nil)
	m := b.Build()
	if len(m.Warnings) != 1 || !errors.Is(m.Warnings[0], errBad) {
		t.Errorf("Warnings = %v", m.Warnings)
	}
}

func TestBuilder_BuildIsSnapshot(t *testing.T) {
	b := NewBuilder(Target2D, PerVertexColor)
	b.Add(squareVerts, squareIndices, geom.Identity(), red, 0)
	first := b.Build()
	b.Add(squareVerts, squareIndices, geom.Translate(3, 0), red, 0)
	if first.TriangleCount() != 2 {
		t.Errorf("first mesh changed to %d triangles", first.TriangleCount())
	}
	if second := b.Build(); second.TriangleCount() != 4 {
		t.Errorf("second mesh has %d triangles, want 4", second.TriangleCount())
	}
}

func BenchmarkBuilder_BatchByColor(b *testing.B) {
	colors := []Color{red, blue, {0, 1, 0, 1}}
	for i := 0; i < b.N; i++ {
		bld := NewBuilder(Target2D, BatchByColor)
		for j := 0; j < 300; j++ {
			bld.Add(squareVerts, squareIndices, geom.Translate(float64(j), 0), colors[j%3], 0)
		}
		_ = bld.Build()
	}
}
