package geom

import (
	"math"

	"golang.org/x/exp/rand"
)

// RoughOptions configures hand-drawn style shape perturbation.
//
// The same options and seed always reproduce the same jittered geometry, so
// documents persist the seed rather than the expanded outline.
type RoughOptions struct {
	// Roughness scales the jitter amplitude applied to shape anchors,
	// in document units. Zero disables perturbation entirely.
	Roughness float64

	// Bowing bends straight edges by displacing their midpoints
	// perpendicular to the edge, as a fraction of the edge length.
	Bowing float64

	// Seed initializes the pseudo-random generator.
	Seed uint64

	// Passes is the number of jittered outlines drawn over each other.
	// Values below 1 are treated as the hand-drawn default of 2.
	Passes int
}

// DefaultRoughOptions returns the hand-drawn defaults used by the shape
// tools: moderate roughness, slight bowing, two passes.
func DefaultRoughOptions(seed uint64) RoughOptions {
	return RoughOptions{
		Roughness: 1.0,
		Bowing:    0.02,
		Seed:      seed,
		Passes:    2,
	}
}

func (o RoughOptions) passes() int {
	if o.Passes < 1 {
		return 2
	}
	return o.Passes
}

// RoughShapePath expands a parametric shape into one or more perturbed
// outline passes. Each pass is an independent polyline (open for lines,
// closed for rectangles and ellipses).
//
// Determinism: identical (kind, anchors, options) produce byte-identical
// output across runs, which the persistence layer relies on.
func RoughShapePath(kind ShapeKind, a, b Point, opts RoughOptions) [][]Point {
	rng := rand.New(rand.NewSource(opts.Seed))
	passes := opts.passes()
	out := make([][]Point, 0, passes)
	for pass := 0; pass < passes; pass++ {
		switch kind {
		case ShapeLine:
			out = append(out, roughLine(rng, a, b, opts))
		case ShapeRect:
			r := RectFromPoints(a, b)
			p0 := Point{X: r.X0, Y: r.Y0}
			p1 := Point{X: r.X1, Y: r.Y0}
			p2 := Point{X: r.X1, Y: r.Y1}
			p3 := Point{X: r.X0, Y: r.Y1}
			var poly []Point
			poly = append(poly, roughLine(rng, p0, p1, opts)...)
			poly = append(poly, roughLine(rng, p1, p2, opts)[1:]...)
			poly = append(poly, roughLine(rng, p2, p3, opts)[1:]...)
			poly = append(poly, roughLine(rng, p3, p0, opts)[1:]...)
			out = append(out, poly)
		case ShapeEllipse:
			out = append(out, roughEllipse(rng, a, b, opts))
		}
	}
	return out
}

// roughLine produces a perturbed polyline from a to b: jittered endpoints,
// a bowed midpoint, flattened through a Catmull-Rom fit.
func roughLine(rng *rand.Rand, a, b Point, opts RoughOptions) []Point {
	length := a.Distance(b)
	if length < 1e-12 {
		return []Point{a, b}
	}

	ja := jitter(rng, a, opts.Roughness)
	jb := jitter(rng, b, opts.Roughness)

	// Bow the midpoint perpendicular to the edge.
	perp := b.Sub(a).Normalize().Perp()
	bow := (rng.Float64()*2 - 1) * opts.Bowing * length
	mid := a.Midpoint(b).Add(perp.Scale(bow))
	mid = jitter(rng, mid, opts.Roughness*0.5)

	segs := CatmullRom([]Point{ja, mid, jb})
	return FlattenPath(segs, FlattenTolerance)
}

// roughEllipse perturbs points sampled around the ellipse and closes the loop.
func roughEllipse(rng *rand.Rand, a, b Point, opts RoughOptions) []Point {
	r := RectFromPoints(a, b)
	c := r.Center()
	rx := r.Width() * 0.5
	ry := r.Height() * 0.5

	const steps = 16
	pts := make([]Point, 0, steps+1)
	// Random phase keeps the overlap seam from always landing at 3 o'clock.
	phase := rng.Float64() * 2 * math.Pi
	for i := 0; i < steps; i++ {
		th := phase + 2*math.Pi*float64(i)/steps
		s, cs := math.Sincos(th)
		p := Point{X: c.X + rx*cs, Y: c.Y + ry*s}
		pts = append(pts, jitter(rng, p, opts.Roughness))
	}
	pts = append(pts, pts[0])

	segs := CatmullRom(pts)
	return FlattenPath(segs, FlattenTolerance)
}

// jitter displaces p by a uniform random offset of amplitude amp.
func jitter(rng *rand.Rand, p Point, amp float64) Point {
	if amp <= 0 {
		return p
	}
	return Point{
		X: p.X + (rng.Float64()*2-1)*amp,
		Y: p.Y + (rng.Float64()*2-1)*amp,
	}
}
