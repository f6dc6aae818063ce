package flatten

import (
	"math"
	"testing"

	"github.com/gogpu/svgmesh/geom"
)

// deviation returns the largest distance from sampled points of seg to the
// polyline pts.
func deviation(eval func(t float64) geom.Point, pts []geom.Point) float64 {
	var worst float64
	const samples = 2000
	for i := 0; i <= samples; i++ {
		p := eval(float64(i) / samples)
		best := math.Inf(1)
		for j := 1; j < len(pts); j++ {
			best = math.Min(best, geom.DistanceToSegment(p, pts[j-1], pts[j]))
		}
		worst = math.Max(worst, best)
	}
	return worst
}

var testCurves = []struct {
	name  string
	curve geom.CubicBez
}{
	{"s-curve", geom.CubicBez{P0: geom.Pt(0, 0), P1: geom.Pt(30, 80), P2: geom.Pt(70, -80), P3: geom.Pt(100, 0)}},
	{"arch", geom.CubicBez{P0: geom.Pt(0, 0), P1: geom.Pt(0, 55), P2: geom.Pt(45, 100), P3: geom.Pt(100, 100)}},
	{"loop", geom.CubicBez{P0: geom.Pt(0, 0), P1: geom.Pt(150, 100), P2: geom.Pt(-50, 100), P3: geom.Pt(100, 0)}},
	{"tiny", geom.CubicBez{P0: geom.Pt(1, 1), P1: geom.Pt(1.01, 1.02), P2: geom.Pt(1.02, 1.01), P3: geom.Pt(1.03, 1)}},
}

func TestFlatten_DeviationBound(t *testing.T) {
	for _, tt := range testCurves {
		for _, tol := range []float64{1, 0.25, 0.1, 0.01} {
			pts := Flatten(tt.curve, tol)
			if pts[0] != tt.curve.P0 || pts[len(pts)-1] != tt.curve.P3 {
				t.Errorf("%s tol=%v: endpoints %v..%v", tt.name, tol, pts[0], pts[len(pts)-1])
			}
			if d := deviation(tt.curve.Eval, pts); d > tol+1e-9 {
				t.Errorf("%s tol=%v: deviation %v exceeds tolerance", tt.name, tol, d)
			}
		}
	}
}

func TestFlatten_HalvingTolerance(t *testing.T) {
	convex := []geom.CubicBez{
		testCurves[1].curve,
		geom.QuadBez{P0: geom.Pt(0, 0), P1: geom.Pt(50, 100), P2: geom.Pt(100, 0)}.Raise(),
	}
	for i, c := range convex {
		tol := 2.0
		prev := Flatten(c, tol)
		prevDev := deviation(c.Eval, prev)
		for step := 0; step < 8; step++ {
			tol /= 2
			pts := Flatten(c, tol)
			dev := deviation(c.Eval, pts)
			if len(pts) < len(prev) {
				t.Errorf("curve %d tol=%v: %d points, fewer than %d at twice the tolerance", i, tol, len(pts), len(prev))
			}
			if dev > prevDev+1e-12 {
				t.Errorf("curve %d tol=%v: deviation %v grew from %v", i, tol, dev, prevDev)
			}
			prev, prevDev = pts, dev
		}
	}
}

func TestFlatten_Line(t *testing.T) {
	pts := Flatten(geom.Line{P0: geom.Pt(1, 2), P1: geom.Pt(3, 4)}, 0.1)
	if len(pts) != 2 || pts[1] != geom.Pt(3, 4) {
		t.Errorf("Flatten(line) = %v", pts)
	}
}

func TestFlatten_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		seg  geom.Segment
	}{
		{"point cubic", geom.CubicBez{P0: geom.Pt(5, 5), P1: geom.Pt(5, 5), P2: geom.Pt(5, 5), P3: geom.Pt(5, 5)}},
		{"collinear cubic", geom.CubicBez{P0: geom.Pt(0, 0), P1: geom.Pt(1, 1), P2: geom.Pt(2, 2), P3: geom.Pt(3, 3)}},
		{"collinear quad", geom.QuadBez{P0: geom.Pt(0, 0), P1: geom.Pt(1, 0), P2: geom.Pt(2, 0)}},
		{"arc to self", geom.Arc{P0: geom.Pt(1, 1), P1: geom.Pt(1, 1), Rx: 5, Ry: 5}},
		{"zero radius arc", geom.Arc{P0: geom.Pt(0, 0), P1: geom.Pt(4, 0), Rx: 0, Ry: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := Flatten(tt.seg, 0.1)
			if len(pts) != 2 {
				t.Errorf("len = %d, want 2 (start and end)", len(pts))
			}
			if pts[len(pts)-1] != tt.seg.End() {
				t.Errorf("last point %v, want end %v", pts[len(pts)-1], tt.seg.End())
			}
		})
	}
}

func TestFlatten_MaxDepth(t *testing.T) {
	// A cusp with a tolerance far below float precision of its coordinates.
	c := geom.CubicBez{P0: geom.Pt(0, 0), P1: geom.Pt(100, 100), P2: geom.Pt(0, 100), P3: geom.Pt(100, 0)}
	f := Flattener{Tolerance: 1e-300, MaxDepth: 10}
	pts := f.Flatten(c)
	if len(pts) != 1<<10+1 {
		t.Errorf("len = %d, want %d", len(pts), 1<<10+1)
	}
	if n := len(Flatten(c, 1e-300)); n > 1<<DefaultMaxDepth+1 {
		t.Errorf("default depth produced %d points", n)
	}
}

func TestFlatten_Arc(t *testing.T) {
	tests := []struct {
		name   string
		arc    geom.Arc
		center geom.Point
		radius float64
	}{
		{"half circle", geom.Arc{P0: geom.Pt(0, 0), P1: geom.Pt(20, 0), Rx: 10, Ry: 10, Sweep: true}, geom.Pt(10, 0), 10},
		{"large arc", geom.Arc{P0: geom.Pt(0, 0), P1: geom.Pt(10, 10), Rx: 10, Ry: 10, LargeArc: true}, geom.Pt(0, 10), 10},
		{"radius scaled up", geom.Arc{P0: geom.Pt(0, 0), P1: geom.Pt(100, 0), Rx: 1, Ry: 1}, geom.Pt(50, 0), 50},
	}
	for _, tt := range tests {
		for _, tol := range []float64{0.5, 0.05} {
			pts := Flatten(tt.arc, tol)
			if pts[0] != tt.arc.P0 || pts[len(pts)-1] != tt.arc.P1 {
				t.Errorf("%s: endpoints %v..%v", tt.name, pts[0], pts[len(pts)-1])
			}
			for i, p := range pts {
				if d := math.Abs(p.Distance(tt.center) - tt.radius); d > tol {
					t.Errorf("%s tol=%v: point %d off circle by %v", tt.name, tol, i, d)
				}
				if i > 0 {
					mid := p.Lerp(pts[i-1], 0.5)
					if d := tt.radius - mid.Distance(tt.center); d > tol+1e-9 {
						t.Errorf("%s tol=%v: chord %d sagitta %v", tt.name, tol, i, d)
					}
				}
			}
		}
	}
}

func TestFlatten_ArcSweepDirection(t *testing.T) {
	// From (10,0) to (-10,0) around the origin: sweep=true passes through
	// positive y, sweep=false through negative y.
	up := Flatten(geom.Arc{P0: geom.Pt(10, 0), P1: geom.Pt(-10, 0), Rx: 10, Ry: 10, Sweep: true}, 0.1)
	down := Flatten(geom.Arc{P0: geom.Pt(10, 0), P1: geom.Pt(-10, 0), Rx: 10, Ry: 10, Sweep: false}, 0.1)
	if up[len(up)/2].Y <= 0 {
		t.Errorf("sweep=true midpoint %v, want y > 0", up[len(up)/2])
	}
	if down[len(down)/2].Y >= 0 {
		t.Errorf("sweep=false midpoint %v, want y < 0", down[len(down)/2])
	}
}

func TestCircularArc(t *testing.T) {
	center := geom.Pt(3, 4)
	for _, radius := range []float64{0.05, 1, 10, 1000} {
		for _, tol := range []float64{0.01, 0.25} {
			pts := CircularArc(center, radius, 0.3, math.Pi, tol)
			if len(pts) < 2 {
				t.Fatalf("r=%v tol=%v: %d points", radius, tol, len(pts))
			}
			for i := 1; i < len(pts); i++ {
				if d := math.Abs(pts[i].Distance(center) - radius); d > 1e-9 {
					t.Errorf("r=%v: point %d not on circle (%v)", radius, i, d)
				}
				if radius > tol {
					mid := pts[i].Lerp(pts[i-1], 0.5)
					if d := radius - mid.Distance(center); d > tol+1e-9 {
						t.Errorf("r=%v tol=%v: radial deviation %v", radius, tol, d)
					}
				}
			}
			end := geom.Pt(center.X+radius*math.Cos(0.3+math.Pi), center.Y+radius*math.Sin(0.3+math.Pi))
			if !pts[len(pts)-1].Near(end, 1e-9) {
				t.Errorf("r=%v: end %v, want %v", radius, pts[len(pts)-1], end)
			}
		}
	}
}

func TestArcSteps(t *testing.T) {
	if n := ArcSteps(10, 0, 0.1); n != 1 {
		t.Errorf("zero sweep: %d steps, want 1", n)
	}
	a := ArcSteps(10, math.Pi, 0.1)
	b := ArcSteps(10, math.Pi, 0.05)
	if b < a {
		t.Errorf("smaller tolerance gave fewer steps: %d < %d", b, a)
	}
	if c := ArcSteps(100, math.Pi, 0.1); c <= a {
		t.Errorf("larger radius should need more steps: %d <= %d", c, a)
	}
}

func TestSubpath_Closing(t *testing.T) {
	square := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)}
	lines := func(pts []geom.Point) []geom.Segment {
		var segs []geom.Segment
		for i := 1; i < len(pts); i++ {
			segs = append(segs, geom.Line{P0: pts[i-1], P1: pts[i]})
		}
		return segs
	}

	tests := []struct {
		name   string
		pts    []geom.Point
		closed bool
		want   int
	}{
		{"implicit close", square, true, 4},
		{"explicit close", append(append([]geom.Point{}, square...), geom.Pt(0, 0)), true, 4},
		{"near close", append(append([]geom.Point{}, square...), geom.Pt(1e-12, 0)), true, 4},
		{"open", square, false, 4},
		{"duplicates", []geom.Point{geom.Pt(0, 0), geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(1, 0), geom.Pt(1, 1)}, false, 3},
		{"dot", []geom.Point{geom.Pt(2, 2), geom.Pt(2, 2)}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Flattener{}.Subpath(tt.pts[0], lines(tt.pts), tt.closed)
			if len(c.Points) != tt.want {
				t.Errorf("len = %d, want %d (%v)", len(c.Points), tt.want, c.Points)
			}
			if c.Closed != tt.closed {
				t.Errorf("Closed = %v, want %v", c.Closed, tt.closed)
			}
		})
	}
}

func BenchmarkFlattenCubic(b *testing.B) {
	c := testCurves[0].curve
	for b.Loop() {
		_ = Flatten(c, 0.1)
	}
}
