package geom

import "math"

// Arc is an elliptical arc in SVG endpoint parameterization: it runs from
// P0 to P1 on an ellipse with radii Rx, Ry rotated by Rotation radians.
// LargeArc and Sweep select one of the four candidate arcs; Sweep=true
// means increasing angle.
type Arc struct {
	P0, P1   Point
	Rx, Ry   float64
	Rotation float64
	LargeArc bool
	Sweep    bool
}

func (Arc) isSegment() {}

// Start returns the starting point of the arc.
func (a Arc) Start() Point { return a.P0 }

// End returns the ending point of the arc.
func (a Arc) End() Point { return a.P1 }

// ArcCenter is the center parameterization of an elliptical arc.
type ArcCenter struct {
	Center   Point
	Rx, Ry   float64
	Rotation float64
	// Theta1 is the start angle and DeltaTheta the signed sweep, both in
	// radians on the unit circle before scaling and rotation.
	Theta1     float64
	DeltaTheta float64
}

// Point returns the point of the ellipse at parametric angle theta.
func (c ArcCenter) Point(theta float64) Point {
	cosPhi, sinPhi := math.Cos(c.Rotation), math.Sin(c.Rotation)
	x := c.Rx * math.Cos(theta)
	y := c.Ry * math.Sin(theta)
	return Point{
		X: cosPhi*x - sinPhi*y + c.Center.X,
		Y: sinPhi*x + cosPhi*y + c.Center.Y,
	}
}

// Derivative returns d/dtheta of Point at theta.
func (c ArcCenter) Derivative(theta float64) Point {
	cosPhi, sinPhi := math.Cos(c.Rotation), math.Sin(c.Rotation)
	x := -c.Rx * math.Sin(theta)
	y := c.Ry * math.Cos(theta)
	return Point{
		X: cosPhi*x - sinPhi*y,
		Y: sinPhi*x + cosPhi*y,
	}
}

// Center converts the arc to center parameterization following the SVG
// implementation notes (F.6.5), scaling radii up when they are too small to
// span the endpoints. ok is false for degenerate arcs: coincident endpoints
// or a zero radius, which callers treat as nothing or a straight line.
func (a Arc) Center() (c ArcCenter, ok bool) {
	rx, ry := math.Abs(a.Rx), math.Abs(a.Ry)
	if rx == 0 || ry == 0 || a.P0 == a.P1 {
		return ArcCenter{}, false
	}

	cosPhi, sinPhi := math.Cos(a.Rotation), math.Sin(a.Rotation)

	// Step 1: compute (x1', y1')
	dx := (a.P0.X - a.P1.X) / 2
	dy := (a.P0.Y - a.P1.Y) / 2
	x1p := cosPhi*dx + sinPhi*dy
	y1p := -sinPhi*dx + cosPhi*dy

	// Correct out-of-range radii
	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	// Step 2: compute (cx', cy')
	rxSq, rySq := rx*rx, ry*ry
	denom := rxSq*y1p*y1p + rySq*x1p*x1p
	if denom == 0 {
		return ArcCenter{}, false
	}
	num := rxSq*rySq - denom
	if num < 0 {
		num = 0
	}
	sq := math.Sqrt(num / denom)
	if a.LargeArc == a.Sweep {
		sq = -sq
	}
	cxp := sq * rx * y1p / ry
	cyp := -sq * ry * x1p / rx

	// Step 3: compute (cx, cy)
	center := Point{
		X: cosPhi*cxp - sinPhi*cyp + (a.P0.X+a.P1.X)/2,
		Y: sinPhi*cxp + cosPhi*cyp + (a.P0.Y+a.P1.Y)/2,
	}

	// Step 4: compute angles
	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta1 := vectorAngle(1, 0, ux, uy)
	dTheta := vectorAngle(ux, uy, vx, vy)
	if !a.Sweep && dTheta > 0 {
		dTheta -= 2 * math.Pi
	} else if a.Sweep && dTheta < 0 {
		dTheta += 2 * math.Pi
	}

	return ArcCenter{
		Center:     center,
		Rx:         rx,
		Ry:         ry,
		Rotation:   a.Rotation,
		Theta1:     theta1,
		DeltaTheta: dTheta,
	}, true
}

// vectorAngle returns the signed angle from u to v.
func vectorAngle(ux, uy, vx, vy float64) float64 {
	lenU := math.Hypot(ux, uy)
	lenV := math.Hypot(vx, vy)
	if lenU == 0 || lenV == 0 {
		return 0
	}
	cos := (ux*vx + uy*vy) / (lenU * lenV)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos)
	if ux*vy-uy*vx < 0 {
		angle = -angle
	}
	return angle
}
