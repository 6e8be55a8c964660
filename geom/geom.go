// Package geom provides the geometry kernel for the ink engine: points,
// vectors, rectangles, affine transforms, bezier curves, variable-width
// offset outlines and parametric shape expansion.
//
// All coordinates are in document units (resolution independent). The
// package has no dependencies on the rest of the engine.
package geom

import "math"

// Point represents a 2D point in document units.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the point translated by v.
func (p Point) Add(v Vec2) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vec2 {
	return Vec2{X: p.X - q.X, Y: p.Y - q.Y}
}

// Lerp performs linear interpolation between two points.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}

// Distance returns the distance between two points.
func (p Point) Distance(q Point) float64 {
	return p.Sub(q).Length()
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) * 0.5, Y: (p.Y + q.Y) * 0.5}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Vec2 represents a 2D vector.
type Vec2 struct {
	X, Y float64
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns the vector scaled by s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Neg returns the negated vector.
func (v Vec2) Neg() Vec2 {
	return Vec2{X: -v.X, Y: -v.Y}
}

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(w Vec2) float64 {
	return v.X*w.X + v.Y*w.Y
}

// Cross returns the 2D cross product (z-component of the 3D cross).
func (v Vec2) Cross(w Vec2) float64 {
	return v.X*w.Y - v.Y*w.X
}

// Length returns the length of the vector.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSquared returns the squared length of the vector.
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to the zero vector.
func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length < 1e-12 {
		return Vec2{}
	}
	return Vec2{X: v.X / length, Y: v.Y / length}
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 {
	return Vec2{X: -v.Y, Y: v.X}
}

// Angle returns the angle of the vector in radians.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// ToPoint converts the vector to a point.
func (v Vec2) ToPoint() Point {
	return Point(v)
}

// Rect is an axis-aligned rectangle described by its min and max corners.
// A rect with X1 <= X0 or Y1 <= Y0 is empty.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect returns a rect with the corners sorted so that X0 <= X1 and Y0 <= Y1.
func NewRect(x0, y0, x1, y1 float64) Rect {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// RectFromPoints returns the bounding rect of two points.
func RectFromPoints(p, q Point) Rect {
	return NewRect(p.X, p.Y, q.X, q.Y)
}

// Width returns the width of the rect.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the height of the rect.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// IsEmpty reports whether the rect has no area. A degenerate rect (a single
// point, or an axis-aligned segment) is empty in this sense but still carries
// extent; Union and UnionPoint never discard it.
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) * 0.5, Y: (r.Y0 + r.Y1) * 0.5}
}

// Union returns the smallest rect containing both r and s. Both operands are
// taken literally, degenerate or not; callers folding a set of bounds seed
// the accumulator with the first element rather than the zero rect.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, s.X0),
		Y0: math.Min(r.Y0, s.Y0),
		X1: math.Max(r.X1, s.X1),
		Y1: math.Max(r.Y1, s.Y1),
	}
}

// UnionPoint extends the rect to contain p. Callers accumulating the bounds
// of a point set seed the rect with one of the points.
func (r Rect) UnionPoint(p Point) Rect {
	return Rect{
		X0: math.Min(r.X0, p.X),
		Y0: math.Min(r.Y0, p.Y),
		X1: math.Max(r.X1, p.X),
		Y1: math.Max(r.Y1, p.Y),
	}
}

// Intersect returns the overlap of r and s, which may be empty.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		X0: math.Max(r.X0, s.X0),
		Y0: math.Max(r.Y0, s.Y0),
		X1: math.Min(r.X1, s.X1),
		Y1: math.Min(r.Y1, s.Y1),
	}
	if out.X1 < out.X0 {
		out.X1 = out.X0
	}
	if out.Y1 < out.Y0 {
		out.Y1 = out.Y0
	}
	return out
}

// Intersects reports whether r and s overlap.
func (r Rect) Intersects(s Rect) bool {
	return r.X0 < s.X1 && s.X0 < r.X1 && r.Y0 < s.Y1 && s.Y0 < r.Y1
}

// Contains reports whether p is inside the rect (inclusive of the min edge,
// exclusive of the max edge).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X < r.X1 && p.Y >= r.Y0 && p.Y < r.Y1
}

// ContainsRect reports whether s lies entirely within r.
func (r Rect) ContainsRect(s Rect) bool {
	return s.X0 >= r.X0 && s.Y0 >= r.Y0 && s.X1 <= r.X1 && s.Y1 <= r.Y1
}

// Outset returns the rect grown by d on all sides.
func (r Rect) Outset(d float64) Rect {
	return Rect{X0: r.X0 - d, Y0: r.Y0 - d, X1: r.X1 + d, Y1: r.Y1 + d}
}

// Affine is a 2D affine transform in column-major order, matching the
// conventional [xx yx xy yy x0 y0] layout:
//
//	x' = xx*x + xy*y + x0
//	y' = yx*x + yy*y + y0
type Affine [6]float64

// AffineIdentity returns the identity transform.
func AffineIdentity() Affine {
	return Affine{1, 0, 0, 1, 0, 0}
}

// AffineTranslate returns a translation by v.
func AffineTranslate(v Vec2) Affine {
	return Affine{1, 0, 0, 1, v.X, v.Y}
}

// AffineScale returns a scale about the origin.
func AffineScale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, sy, 0, 0}
}

// AffineRotate returns a rotation about the origin by th radians.
func AffineRotate(th float64) Affine {
	s, c := math.Sincos(th)
	return Affine{c, s, -s, c, 0, 0}
}

// AffineRotateAbout returns a rotation by th radians about center.
func AffineRotateAbout(th float64, center Point) Affine {
	return AffineTranslate(Vec2(center)).
		Mul(AffineRotate(th)).
		Mul(AffineTranslate(Vec2(center).Neg()))
}

// AffineScaleAbout returns a scale about center.
func AffineScaleAbout(sx, sy float64, center Point) Affine {
	return AffineTranslate(Vec2(center)).
		Mul(AffineScale(sx, sy)).
		Mul(AffineTranslate(Vec2(center).Neg()))
}

// Mul composes two transforms; the result applies b first, then a.
func (a Affine) Mul(b Affine) Affine {
	return Affine{
		a[0]*b[0] + a[2]*b[1],
		a[1]*b[0] + a[3]*b[1],
		a[0]*b[2] + a[2]*b[3],
		a[1]*b[2] + a[3]*b[3],
		a[0]*b[4] + a[2]*b[5] + a[4],
		a[1]*b[4] + a[3]*b[5] + a[5],
	}
}

// Apply transforms a point.
func (a Affine) Apply(p Point) Point {
	return Point{
		X: a[0]*p.X + a[2]*p.Y + a[4],
		Y: a[1]*p.X + a[3]*p.Y + a[5],
	}
}

// ApplyVec transforms a vector (ignores translation).
func (a Affine) ApplyVec(v Vec2) Vec2 {
	return Vec2{
		X: a[0]*v.X + a[2]*v.Y,
		Y: a[1]*v.X + a[3]*v.Y,
	}
}

// Determinant returns the determinant of the linear part.
func (a Affine) Determinant() float64 {
	return a[0]*a[3] - a[1]*a[2]
}

// Invert returns the inverse transform. The inverse of a singular
// transform is undefined.
func (a Affine) Invert() Affine {
	invDet := 1.0 / a.Determinant()
	return Affine{
		invDet * a[3],
		-invDet * a[1],
		-invDet * a[2],
		invDet * a[0],
		invDet * (a[2]*a[5] - a[3]*a[4]),
		invDet * (a[1]*a[4] - a[0]*a[5]),
	}
}

// IsIdentity reports whether a is exactly the identity transform.
func (a Affine) IsIdentity() bool {
	return a == AffineIdentity()
}

// TransformRect returns the axis-aligned bounding rect of the transformed
// corners of r.
func (a Affine) TransformRect(r Rect) Rect {
	p0 := a.Apply(Point{X: r.X0, Y: r.Y0})
	p1 := a.Apply(Point{X: r.X1, Y: r.Y0})
	p2 := a.Apply(Point{X: r.X1, Y: r.Y1})
	p3 := a.Apply(Point{X: r.X0, Y: r.Y1})
	out := Rect{X0: p0.X, Y0: p0.Y, X1: p0.X, Y1: p0.Y}
	out = out.UnionPoint(p1)
	out = out.UnionPoint(p2)
	out = out.UnionPoint(p3)
	return out
}

// BoundsOf returns the bounding rect of a point slice. The zero rect is
// returned for an empty slice.
func BoundsOf(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	out := Rect{X0: pts[0].X, Y0: pts[0].Y, X1: pts[0].X, Y1: pts[0].Y}
	for _, p := range pts[1:] {
		out = out.UnionPoint(p)
	}
	return out
}
