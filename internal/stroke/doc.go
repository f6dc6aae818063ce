// Package stroke expands stroked polylines into filled outlines.
//
// The expander does not trace a single offset outline. Instead it emits
// one small counter-clockwise polygon per stroke piece:
//   - a rectangle of the stroke width around every segment
//   - a wedge on the outer side of every join
//   - a cap at each end of an open polyline
//   - a dot for a polyline that collapsed to a single point
//
// The union of the pieces is the stroke area. Tessellating all pieces of
// a path together with the nonzero fill rule yields that union, and
// overlaps between pieces cannot produce holes because every piece
// winds the same way.
//
// # Line Caps
//
// Line caps define the shape of stroke endpoints:
//   - LineCapButt: Flat cap ending exactly at the endpoint
//   - LineCapRound: Semicircular cap with radius = width/2
//   - LineCapSquare: Square cap extending width/2 beyond the endpoint
//
// # Line Joins
//
// Line joins define how stroke segments connect:
//   - LineJoinMiter: Sharp corner, replaced by a bevel past the miter limit
//   - LineJoinRound: Circular arc at corners
//   - LineJoinBevel: Straight line across the corner
//
// # Dashes
//
// A Stroke with a Dash pattern first cuts the polyline into dashes by arc
// length; each dash is then stroked as an open polyline with caps.
//
// # Usage
//
//	style := stroke.Stroke{
//	    Width:      2.0,
//	    Cap:        stroke.LineCapRound,
//	    Join:       stroke.LineJoinMiter,
//	    MiterLimit: 4.0,
//	}
//
//	expander := stroke.NewStrokeExpander(style)
//	expander.SetTolerance(0.1) // Optional: adjust round join and cap flattening
//
//	pieces := expander.Expand([]geom.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}, false)
package stroke
