package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func pointsAlmostEqual(p, q Point, eps float64) bool {
	return almostEqual(p.X, q.X, eps) && almostEqual(p.Y, q.Y, eps)
}

func TestAffineApply(t *testing.T) {
	tests := []struct {
		name string
		a    Affine
		in   Point
		want Point
	}{
		{"identity", AffineIdentity(), Pt(3, 4), Pt(3, 4)},
		{"translate", AffineTranslate(Vec2{X: 10, Y: -5}), Pt(1, 1), Pt(11, -4)},
		{"scale", AffineScale(2, 3), Pt(2, 2), Pt(4, 6)},
		{"rotate90", AffineRotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"rotate90-about", AffineRotateAbout(math.Pi/2, Pt(10, 0)), Pt(20, 0), Pt(10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Apply(tt.in)
			if !pointsAlmostEqual(got, tt.want, 1e-9) {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAffineInvert(t *testing.T) {
	transforms := []Affine{
		AffineTranslate(Vec2{X: 3, Y: -7}),
		AffineScale(2, 0.5),
		AffineRotate(1.2),
		AffineRotateAbout(0.7, Pt(5, 5)).Mul(AffineScale(3, 3)),
	}
	p := Pt(1.5, -2.25)
	for _, a := range transforms {
		got := a.Invert().Apply(a.Apply(p))
		if !pointsAlmostEqual(got, p, 1e-9) {
			t.Errorf("Invert round-trip: got %v, want %v (transform %v)", got, p, a)
		}
	}
}

func TestAffineMulOrder(t *testing.T) {
	// Mul applies the right operand first.
	a := AffineTranslate(Vec2{X: 10, Y: 0}).Mul(AffineScale(2, 2))
	got := a.Apply(Pt(1, 1))
	want := Pt(12, 2)
	if !pointsAlmostEqual(got, want, 1e-9) {
		t.Errorf("composed transform: got %v, want %v", got, want)
	}
}

func TestRectUnionIntersect(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 20, 20)

	u := a.Union(b)
	if u != (Rect{0, 0, 20, 20}) {
		t.Errorf("Union = %v, want {0 0 20 20}", u)
	}

	i := a.Intersect(b)
	if i != (Rect{5, 5, 10, 10}) {
		t.Errorf("Intersect = %v, want {5 5 10 10}", i)
	}

	if !a.Intersects(b) {
		t.Error("expected rects to intersect")
	}
	if a.Intersects(NewRect(11, 11, 12, 12)) {
		t.Error("disjoint rects reported as intersecting")
	}

	// Degenerate operands keep their extent.
	line := Rect{X0: 0, Y0: 5, X1: 800, Y1: 5}
	if got := line.Union(NewRect(10, 0, 20, 1)); got != (Rect{0, 0, 800, 5}) {
		t.Errorf("union with a zero-height rect = %v, want {0 0 800 5}", got)
	}
}

func TestUnionPointCollinear(t *testing.T) {
	// Accumulating collinear points must keep every point, not just the
	// last one: the intermediate rects have zero area.
	r := Rect{X0: 0, Y0: 0, X1: 0, Y1: 0}
	for _, p := range []Point{Pt(10, 0), Pt(20, 0), Pt(5, 0)} {
		r = r.UnionPoint(p)
	}
	if r != (Rect{0, 0, 20, 0}) {
		t.Errorf("collinear accumulation = %v, want {0 0 20 0}", r)
	}
}

func TestBoundsOfCollinear(t *testing.T) {
	got := BoundsOf([]Point{Pt(0, 3), Pt(40, 3), Pt(-10, 3)})
	if got != (Rect{-10, 3, 40, 3}) {
		t.Errorf("BoundsOf = %v, want {-10 3 40 3}", got)
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	if !r.Contains(Pt(0, 0)) || !r.Contains(Pt(9.99, 9.99)) {
		t.Error("interior points not contained")
	}
	if r.Contains(Pt(10, 10)) {
		t.Error("max corner must be exclusive")
	}
	if !r.ContainsRect(NewRect(1, 1, 9, 9)) {
		t.Error("inner rect not contained")
	}
	if r.ContainsRect(NewRect(1, 1, 11, 9)) {
		t.Error("overhanging rect reported as contained")
	}
}

func TestTransformRect(t *testing.T) {
	r := NewRect(0, 0, 10, 4)
	got := AffineRotate(math.Pi / 2).TransformRect(r)
	if !almostEqual(got.Width(), 4, 1e-9) || !almostEqual(got.Height(), 10, 1e-9) {
		t.Errorf("rotated bounds = %v, want 4x10", got)
	}

	// A degenerate rect keeps its full extent through the transform.
	line := Rect{X0: 0, Y0: 0, X1: 800, Y1: 0}
	if got := AffineIdentity().TransformRect(line); got != line {
		t.Errorf("identity transform of %v = %v", line, got)
	}
	rot := AffineRotate(math.Pi / 2).TransformRect(line)
	if !almostEqual(rot.Width(), 0, 1e-9) || !almostEqual(rot.Height(), 800, 1e-9) {
		t.Errorf("rotated degenerate bounds = %v, want 0x800", rot)
	}
}

func TestCubicBezFlatten(t *testing.T) {
	c := CubicBez{Pt(0, 0), Pt(10, 20), Pt(30, 20), Pt(40, 0)}
	pts := append([]Point{c.P0}, c.Flatten(0.1, nil)...)
	if len(pts) < 4 {
		t.Fatalf("expected a subdivided polyline, got %d points", len(pts))
	}
	// Every curve sample must be within tolerance of the polyline.
	for i := 0; i <= 100; i++ {
		p := c.Eval(float64(i) / 100)
		if d := DistToPolyline(p, pts); d > 0.1+1e-9 {
			t.Fatalf("flatten deviation %.4f exceeds tolerance at t=%.2f", d, float64(i)/100)
		}
	}
}

func TestCatmullRomInterpolates(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(10, 5), Pt(20, -3), Pt(30, 0)}
	segs := CatmullRom(pts)
	if len(segs) != len(pts)-1 {
		t.Fatalf("got %d segments, want %d", len(segs), len(pts)-1)
	}
	for i, seg := range segs {
		if !pointsAlmostEqual(seg.P0, pts[i], 1e-12) || !pointsAlmostEqual(seg.P3, pts[i+1], 1e-12) {
			t.Errorf("segment %d does not interpolate its endpoints", i)
		}
	}
	if i, j := segs[0].P3, segs[1].P0; !pointsAlmostEqual(i, j, 1e-12) {
		t.Error("segments are not contiguous")
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	if !PointInPolygon(Pt(5, 5), square) {
		t.Error("center of square not inside")
	}
	if PointInPolygon(Pt(15, 5), square) {
		t.Error("outside point reported inside")
	}
}

func TestShapePathEllipse(t *testing.T) {
	segs := ShapePath(ShapeEllipse, Pt(0, 0), Pt(20, 10))
	if len(segs) != 4 {
		t.Fatalf("ellipse must expand to 4 arcs, got %d", len(segs))
	}
	// All curve points must lie close to the analytic ellipse.
	cx, cy, rx, ry := 10.0, 5.0, 10.0, 5.0
	for _, seg := range segs {
		for i := 0; i <= 20; i++ {
			p := seg.Eval(float64(i) / 20)
			v := math.Pow((p.X-cx)/rx, 2) + math.Pow((p.Y-cy)/ry, 2)
			if math.Abs(v-1) > 5e-3 {
				t.Fatalf("ellipse deviation too large: %v -> %.5f", p, v)
			}
		}
	}
}

func TestShapePathRectClosed(t *testing.T) {
	segs := ShapePath(ShapeRect, Pt(0, 0), Pt(10, 10))
	if len(segs) != 4 {
		t.Fatalf("rect must expand to 4 edges, got %d", len(segs))
	}
	if !pointsAlmostEqual(segs[3].P3, segs[0].P0, 1e-12) {
		t.Error("rect path is not closed")
	}
	if !ShapeClosed(ShapeRect) || ShapeClosed(ShapeLine) {
		t.Error("ShapeClosed wrong for rect/line")
	}
}
