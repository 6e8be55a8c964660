package geom

import "math"

// WidthSegment pairs a cubic centerline segment with its halfwidths at the
// segment start and end. The halfwidth is interpolated linearly in the curve
// parameter between the two.
type WidthSegment struct {
	Curve CubicBez
	W0    float64
	W1    float64
}

// PenPath is a smoothed variable-width centerline, the finalized geometry of
// a freehand stroke. Segments are contiguous: each segment starts where the
// previous one ends.
type PenPath []WidthSegment

// Transform returns the path with the affine applied to every control point.
// Halfwidths are scaled by the mean absolute scale factor so that uniform
// scaling behaves exactly and non-uniform scaling degrades gracefully.
func (p PenPath) Transform(a Affine) PenPath {
	sx := math.Hypot(a[0], a[1])
	sy := math.Hypot(a[2], a[3])
	ws := (sx + sy) * 0.5
	out := make(PenPath, len(p))
	for i, seg := range p {
		out[i] = WidthSegment{
			Curve: seg.Curve.Transform(a),
			W0:    seg.W0 * ws,
			W1:    seg.W1 * ws,
		}
	}
	return out
}

// Outline computes the closed outline polygon of the variable-width path:
// two offset boundary curves at perpendicular distance equal to the local
// halfwidth, joined by round caps at both ends.
//
// Each segment is recursively subdivided until the deviation between the
// true offset curve and the polyline approximation falls below tol.
// Degenerate segments (zero length, non-positive width) are skipped, not
// errors. A path with no usable segments produces an empty outline.
func (p PenPath) Outline(tol float64) []Point {
	if tol <= 0 {
		tol = FlattenTolerance
	}

	segs := make(PenPath, 0, len(p))
	for _, seg := range p {
		if seg.W0 <= 0 && seg.W1 <= 0 {
			continue
		}
		if seg.Curve.P0.Distance(seg.Curve.P3) < 1e-12 &&
			seg.Curve.P0.Distance(seg.Curve.P1) < 1e-12 &&
			seg.Curve.P0.Distance(seg.Curve.P2) < 1e-12 {
			continue
		}
		// Clamp a one-sided degenerate width instead of dropping the
		// whole segment.
		seg.W0 = math.Max(seg.W0, 0)
		seg.W1 = math.Max(seg.W1, 0)
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return nil
	}

	var left, right []Point

	first := segs[0]
	left = append(left, offsetAt(first.Curve, 0, first.W0, +1))
	right = append(right, offsetAt(first.Curve, 0, first.W0, -1))
	for _, seg := range segs {
		left = offsetSide(seg, +1, tol, left)
		right = offsetSide(seg, -1, tol, right)
	}

	last := segs[len(segs)-1]

	// Assemble: left boundary forward, round end cap, right boundary
	// reversed, round start cap (implicit in the polygon closing back to
	// the first left point).
	outline := make([]Point, 0, len(left)+len(right)+32)
	outline = append(outline, left...)
	outline = appendCap(outline, last.Curve.P3, last.Curve.Tangent(1), last.W1, tol)
	for i := len(right) - 1; i >= 0; i-- {
		outline = append(outline, right[i])
	}
	outline = appendCap(outline, first.Curve.P0, first.Curve.Tangent(0).Neg(), first.W0, tol)
	return outline
}

// Bounds returns the bounding rect of the outline, padded by the local
// halfwidth on every side.
func (p PenPath) Bounds() Rect {
	var out Rect
	for i, seg := range p {
		w := math.Max(seg.W0, seg.W1)
		b := seg.Curve.Bounds().Outset(w)
		if i == 0 {
			out = b
		} else {
			out = out.Union(b)
		}
	}
	return out
}

// offsetAt returns the point offset perpendicular from the curve at t by
// halfwidth w. side is +1 for the left boundary, -1 for the right.
func offsetAt(c CubicBez, t, w float64, side float64) Point {
	n := c.Tangent(t).Perp()
	return c.Eval(t).Add(n.Scale(side * w))
}

// offsetSide appends the offset polyline for one side of a width segment,
// excluding the offset of the segment start (the caller seeds it or the
// previous segment produced it).
//
// Curvature-aware subdivision: the segment is split until the true offset at
// the parameter midpoint deviates from the chord of the approximation by
// less than tol.
func offsetSide(seg WidthSegment, side float64, tol float64, dst []Point) []Point {
	return offsetSideRec(seg.Curve, seg.W0, seg.W1, side, tol, 0, dst)
}

// maxOffsetDepth bounds the recursion; 16 levels split a segment into 65536
// pieces, far below tol for any input the builder produces.
const maxOffsetDepth = 16

func offsetSideRec(c CubicBez, w0, w1, side, tol float64, depth int, dst []Point) []Point {
	start := offsetAt(c, 0, w0, side)
	end := offsetAt(c, 1, w1, side)
	mid := offsetAt(c, 0.5, (w0+w1)*0.5, side)

	if depth >= maxOffsetDepth || distToSegment(mid, start, end) <= tol {
		return append(dst, end)
	}

	l, r := c.Subdivide()
	wm := (w0 + w1) * 0.5
	dst = offsetSideRec(l, w0, wm, side, tol, depth+1, dst)
	return offsetSideRec(r, wm, w1, side, tol, depth+1, dst)
}

// appendCap appends a round cap arc around center. tan is the outgoing
// direction of the stroke at the cap; the arc sweeps from the left offset
// through the cap apex to the right offset.
func appendCap(dst []Point, center Point, tan Vec2, w float64, tol float64) []Point {
	if w <= 0 {
		return append(dst, center)
	}
	n := tan.Perp()
	steps := capSteps(w, tol)
	// Sweep from +n (left) to -n (right) through the tangent direction.
	for i := 1; i < steps; i++ {
		th := math.Pi * float64(i) / float64(steps)
		s, c := math.Sincos(th)
		dir := n.Scale(c).Add(tan.Scale(s))
		dst = append(dst, center.Add(dir.Scale(w)))
	}
	return dst
}

// capSteps returns the number of arc segments needed for a semicircle of
// radius w to stay within tol of the true arc.
func capSteps(w, tol float64) int {
	if tol >= w {
		return 4
	}
	// Chord sagitta s = r*(1-cos(th/2)) <= tol.
	th := 2 * math.Acos(1-tol/w)
	steps := int(math.Ceil(math.Pi / th))
	if steps < 4 {
		steps = 4
	}
	if steps > 64 {
		steps = 64
	}
	return steps
}
