package geom

import "math"

// FlattenTolerance is the default maximum distance between a curve and its
// polyline approximation, in document units.
const FlattenTolerance = 0.1

// CubicBez is a cubic bezier segment.
type CubicBez struct {
	P0, P1, P2, P3 Point
}

// Eval evaluates the curve at parameter t in [0, 1].
func (c CubicBez) Eval(t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	d := 3 * mt * t * t
	e := t * t * t
	return Point{
		X: a*c.P0.X + b*c.P1.X + d*c.P2.X + e*c.P3.X,
		Y: a*c.P0.Y + b*c.P1.Y + d*c.P2.Y + e*c.P3.Y,
	}
}

// Deriv evaluates the first derivative at parameter t.
func (c CubicBez) Deriv(t float64) Vec2 {
	mt := 1 - t
	a := 3 * mt * mt
	b := 6 * mt * t
	d := 3 * t * t
	return Vec2{
		X: a*(c.P1.X-c.P0.X) + b*(c.P2.X-c.P1.X) + d*(c.P3.X-c.P2.X),
		Y: a*(c.P1.Y-c.P0.Y) + b*(c.P2.Y-c.P1.Y) + d*(c.P3.Y-c.P2.Y),
	}
}

// Tangent returns a unit tangent at parameter t. Degenerate curves whose
// derivative vanishes at t fall back to the chord direction.
func (c CubicBez) Tangent(t float64) Vec2 {
	d := c.Deriv(t)
	if d.LengthSquared() < 1e-18 {
		d = c.P3.Sub(c.P0)
	}
	return d.Normalize()
}

// Subdivide splits the curve at t = 0.5 using de Casteljau's algorithm.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	p01 := c.P0.Midpoint(c.P1)
	p12 := c.P1.Midpoint(c.P2)
	p23 := c.P2.Midpoint(c.P3)
	p012 := p01.Midpoint(p12)
	p123 := p12.Midpoint(p23)
	mid := p012.Midpoint(p123)
	return CubicBez{c.P0, p01, p012, mid}, CubicBez{mid, p123, p23, c.P3}
}

// SubdivideAt splits the curve at an arbitrary parameter t.
func (c CubicBez) SubdivideAt(t float64) (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	mid := p012.Lerp(p123, t)
	return CubicBez{c.P0, p01, p012, mid}, CubicBez{mid, p123, p23, c.P3}
}

// Transform returns the curve with the affine applied to all control points.
func (c CubicBez) Transform(a Affine) CubicBez {
	return CubicBez{
		P0: a.Apply(c.P0),
		P1: a.Apply(c.P1),
		P2: a.Apply(c.P2),
		P3: a.Apply(c.P3),
	}
}

// Bounds returns the control polygon bounding rect, which always contains
// the curve (the convex hull property).
func (c CubicBez) Bounds() Rect {
	return BoundsOf([]Point{c.P0, c.P1, c.P2, c.P3})
}

// flatness measures the maximum distance of the control points from the
// chord P0-P3. The curve deviates from the chord by at most 3/4 of this.
func (c CubicBez) flatness() float64 {
	d1 := distToLine(c.P1, c.P0, c.P3)
	d2 := distToLine(c.P2, c.P0, c.P3)
	return math.Max(d1, d2)
}

// Flatten appends a polyline approximation of the curve to dst, excluding
// the start point P0. Adjacent segments are subdivided until the deviation
// from the true curve is below tol.
func (c CubicBez) Flatten(tol float64, dst []Point) []Point {
	if c.flatness()*0.75 <= tol {
		return append(dst, c.P3)
	}
	l, r := c.Subdivide()
	dst = l.Flatten(tol, dst)
	return r.Flatten(tol, dst)
}

// distToLine returns the distance from p to the infinite line through a and b.
// If a == b it returns the distance from p to a.
func distToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	length := ab.Length()
	if length < 1e-12 {
		return p.Distance(a)
	}
	return math.Abs(ab.Cross(p.Sub(a))) / length
}

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	lsq := ab.LengthSquared()
	if lsq < 1e-24 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lsq
	switch {
	case t <= 0:
		return p.Distance(a)
	case t >= 1:
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Scale(t)))
}

// DistToPolyline returns the distance from p to the nearest segment of the
// polyline pts. It returns +Inf for fewer than two points.
func DistToPolyline(p Point, pts []Point) float64 {
	if len(pts) == 0 {
		return math.Inf(1)
	}
	if len(pts) == 1 {
		return p.Distance(pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		if d := distToSegment(p, pts[i-1], pts[i]); d < best {
			best = d
		}
	}
	return best
}

// CatmullRom converts a point sequence into a smooth chain of cubic bezier
// segments passing through every input point. Endpoints are duplicated so
// the chain starts and ends exactly at the first and last points.
//
// Fewer than two points produce no segments; exactly two produce a single
// straight segment.
func CatmullRom(pts []Point) []CubicBez {
	switch len(pts) {
	case 0, 1:
		return nil
	case 2:
		return []CubicBez{lineSegment(pts[0], pts[1])}
	}

	segs := make([]CubicBez, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]

		// Standard uniform Catmull-Rom to cubic bezier conversion.
		c1 := p1.Add(p2.Sub(p0).Scale(1.0 / 6.0))
		c2 := p2.Add(p1.Sub(p3).Scale(1.0 / 6.0))
		segs = append(segs, CubicBez{P0: p1, P1: c1, P2: c2, P3: p2})
	}
	return segs
}

// lineSegment returns a degenerate cubic describing the straight line a-b.
func lineSegment(a, b Point) CubicBez {
	return CubicBez{
		P0: a,
		P1: a.Lerp(b, 1.0/3.0),
		P2: a.Lerp(b, 2.0/3.0),
		P3: b,
	}
}

// PointInPolygon reports whether p lies inside the closed polygon using the
// non-zero winding rule. The polygon is implicitly closed.
func PointInPolygon(p Point, poly []Point) bool {
	if len(poly) < 3 {
		return false
	}
	winding := 0
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		if a.Y <= p.Y {
			if b.Y > p.Y && b.Sub(a).Cross(p.Sub(a)) > 0 {
				winding++
			}
		} else if b.Y <= p.Y && b.Sub(a).Cross(p.Sub(a)) < 0 {
			winding--
		}
	}
	return winding != 0
}
