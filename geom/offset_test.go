package geom

import (
	"math"
	"testing"
)

// constantWidthPath builds a PenPath over the given centerline points with a
// constant halfwidth.
func constantWidthPath(pts []Point, hw float64) PenPath {
	segs := CatmullRom(pts)
	path := make(PenPath, 0, len(segs))
	for _, seg := range segs {
		path = append(path, WidthSegment{Curve: seg, W0: hw, W1: hw})
	}
	return path
}

// maxOffsetDeviation samples the true analytic offset of every segment and
// returns the worst distance to the produced outline polyline.
func maxOffsetDeviation(path PenPath, outline []Point) float64 {
	closed := append(append([]Point{}, outline...), outline[0])
	worst := 0.0
	for _, seg := range path {
		for i := 0; i <= 64; i++ {
			t := float64(i) / 64
			w := seg.W0 + (seg.W1-seg.W0)*t
			for _, side := range []float64{+1, -1} {
				p := offsetAt(seg.Curve, t, w, side)
				if d := DistToPolyline(p, closed); d > worst {
					worst = d
				}
			}
		}
	}
	return worst
}

func TestOutlineDeviationBounded(t *testing.T) {
	const tol = 0.1

	tests := []struct {
		name string
		path PenPath
	}{
		{
			"straight-line",
			constantWidthPath([]Point{Pt(0, 0), Pt(50, 0), Pt(100, 0)}, 2),
		},
		{
			"tight-arc",
			constantWidthPath([]Point{
				Pt(0, 0), Pt(4, 6), Pt(10, 8), Pt(16, 6), Pt(20, 0),
			}, 1.5),
		},
		{
			"s-curve",
			constantWidthPath([]Point{
				Pt(0, 0), Pt(20, 15), Pt(40, 0), Pt(60, -15), Pt(80, 0),
			}, 3),
		},
		{
			"variable-width",
			PenPath{
				{Curve: lineSegment(Pt(0, 0), Pt(10, 0)), W0: 0.5, W1: 2.5},
				{Curve: lineSegment(Pt(10, 0), Pt(20, 0)), W0: 2.5, W1: 0.5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outline := tt.path.Outline(tol)
			if len(outline) < 6 {
				t.Fatalf("outline too small: %d points", len(outline))
			}
			if d := maxOffsetDeviation(tt.path, outline); d > tol+1e-9 {
				t.Errorf("max offset deviation %.5f exceeds tolerance %.2f", d, tol)
			}
		})
	}
}

func TestOutlineSkipsDegenerateSegments(t *testing.T) {
	path := PenPath{
		// Zero-length segment.
		{Curve: lineSegment(Pt(5, 5), Pt(5, 5)), W0: 1, W1: 1},
		// Non-positive width.
		{Curve: lineSegment(Pt(0, 0), Pt(10, 0)), W0: -1, W1: 0},
		// The only usable segment.
		{Curve: lineSegment(Pt(0, 0), Pt(10, 0)), W0: 1, W1: 1},
	}
	outline := path.Outline(0.1)
	if len(outline) == 0 {
		t.Fatal("usable segment must still produce an outline")
	}

	empty := PenPath{
		{Curve: lineSegment(Pt(3, 3), Pt(3, 3)), W0: 1, W1: 1},
	}
	if out := empty.Outline(0.1); out != nil {
		t.Errorf("fully degenerate path must produce an empty outline, got %d points", len(out))
	}
}

func TestOutlineWidthProfile(t *testing.T) {
	// Width peaking in the middle: the outline extent at x=10 must be
	// wider than near the ends.
	path := PenPath{
		{Curve: lineSegment(Pt(0, 0), Pt(10, 0)), W0: 0.5, W1: 2.5},
		{Curve: lineSegment(Pt(10, 0), Pt(20, 0)), W0: 2.5, W1: 0.5},
	}
	outline := path.Outline(0.05)

	extentAt := func(x float64) float64 {
		worst := 0.0
		for _, p := range outline {
			if math.Abs(p.X-x) < 0.5 {
				if v := math.Abs(p.Y); v > worst {
					worst = v
				}
			}
		}
		return worst
	}

	mid := extentAt(10)
	edge := extentAt(2)
	if mid <= edge {
		t.Errorf("width profile not peaking at the middle: mid %.3f, edge %.3f", mid, edge)
	}
	if math.Abs(mid-2.5) > 0.2 {
		t.Errorf("middle halfwidth = %.3f, want ~2.5", mid)
	}
}

func TestPenPathBoundsContainsOutline(t *testing.T) {
	path := constantWidthPath([]Point{Pt(0, 0), Pt(10, 8), Pt(25, -4), Pt(40, 2)}, 2)
	bounds := path.Bounds().Outset(1e-9)
	for _, p := range path.Outline(0.1) {
		if !bounds.Contains(p) {
			t.Fatalf("outline point %v escapes bounds %v", p, bounds)
		}
	}
}

func TestPenPathTransform(t *testing.T) {
	path := constantWidthPath([]Point{Pt(0, 0), Pt(10, 0), Pt(20, 0)}, 1)
	rotated := path.Transform(AffineRotateAbout(math.Pi/2, Pt(10, 0)))

	b := rotated.Bounds()
	// The 20x2 horizontal stroke becomes a 2x20 vertical one.
	if b.Height() < b.Width() {
		t.Errorf("rotation did not swap extents: %v", b)
	}

	scaled := path.Transform(AffineScale(2, 2))
	if got := scaled[0].W0; !almostEqual(got, 2, 1e-12) {
		t.Errorf("uniform scale must scale halfwidths: got %v, want 2", got)
	}
}
