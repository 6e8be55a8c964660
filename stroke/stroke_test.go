package stroke

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/ink/geom"
)

func freehandFixture(t *testing.T) *Stroke {
	t.Helper()
	b := NewBuilder(DefaultStyle(), DefaultBuilderOptions())
	b.Push(sampleAt(0, 0, 0.2))
	b.Push(sampleAt(10, 0, 0.8))
	b.Push(sampleAt(20, 0, 0.3))
	st := b.Finish()
	if st == nil {
		t.Fatal("fixture stroke failed to finalize")
	}
	return st
}

func TestShapeLineBounds(t *testing.T) {
	// A horizontal line is a degenerate rect before width padding; its
	// bounds must still span the full anchor distance.
	st := NewShape(geom.ShapeLine, geom.Pt(0, 0), geom.Pt(800, 0),
		Style{Color: Black, Width: 8}, nil)
	want := geom.Rect{X0: -4, Y0: -4, X1: 804, Y1: 4}
	if got := st.Bounds(); got != want {
		t.Fatalf("line shape bounds = %v, want %v", got, want)
	}
}

func TestRoughShapeOutlineStaysInBounds(t *testing.T) {
	opts := geom.DefaultRoughOptions(7)
	tests := []struct {
		name string
		kind geom.ShapeKind
		a, b geom.Point
	}{
		{"long line", geom.ShapeLine, geom.Pt(0, 0), geom.Pt(800, 0)},
		{"wide rect", geom.ShapeRect, geom.Pt(0, 0), geom.Pt(900, 40)},
		{"ellipse", geom.ShapeEllipse, geom.Pt(0, 0), geom.Pt(600, 300)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewShape(tt.kind, tt.a, tt.b, DefaultStyle(), &opts)
			bounds := st.Bounds()
			for _, poly := range st.Shape.Outlines(st.Style) {
				for _, p := range poly {
					if p.X < bounds.X0 || p.X > bounds.X1 ||
						p.Y < bounds.Y0 || p.Y > bounds.Y1 {
						t.Fatalf("outline point %v escapes cached bounds %v", p, bounds)
					}
				}
			}
		})
	}
}

func TestTransformImmutability(t *testing.T) {
	orig := freehandFixture(t)
	origBounds := orig.Bounds()
	origOutline := append([]geom.Point{}, orig.Freehand.Outline...)

	moved := orig.Transform(geom.AffineTranslate(geom.Vec2{X: 100, Y: 0}))

	if moved == orig {
		t.Fatal("Transform must return a new stroke")
	}
	if moved.ID != orig.ID {
		t.Error("Transform must keep the stroke ID")
	}
	if moved.Version != orig.Version+1 {
		t.Errorf("Version = %d, want %d", moved.Version, orig.Version+1)
	}
	if orig.Bounds() != origBounds {
		t.Error("original bounds mutated")
	}
	if diff := cmp.Diff(origOutline, orig.Freehand.Outline); diff != "" {
		t.Errorf("original outline mutated:\n%s", diff)
	}
	if !almostEqual(moved.Bounds().X0, origBounds.X0+100, 1e-9) {
		t.Errorf("moved bounds = %v", moved.Bounds())
	}
}

func TestTransformRotationSwapsExtents(t *testing.T) {
	st := freehandFixture(t)
	b0 := st.Bounds()

	rot := st.Transform(geom.AffineRotateAbout(math.Pi/2, geom.Pt(10, 0)))
	b1 := rot.Bounds()

	if !almostEqual(b1.Width(), b0.Height(), 1e-6) || !almostEqual(b1.Height(), b0.Width(), 1e-6) {
		t.Errorf("rotation must swap bounds extents: before %v, after %v", b0, b1)
	}
}

func TestHitTest(t *testing.T) {
	st := freehandFixture(t)
	if !st.HitTest(geom.Pt(10, 0), 1.0) {
		t.Error("point on the centerline must hit")
	}
	if st.HitTest(geom.Pt(10, 50), 1.0) {
		t.Error("distant point must miss")
	}
}

func TestShapeTransformKeepsSeed(t *testing.T) {
	rough := geom.DefaultRoughOptions(1234)
	st := NewShape(geom.ShapeRect, geom.Pt(0, 0), geom.Pt(20, 10), DefaultStyle(), &rough)

	// Rotating a rough shape must not change its local jitter: the
	// outlines of the rotated shape are the rotated original outlines.
	a := geom.AffineRotateAbout(math.Pi/4, geom.Pt(10, 5))
	rotated := st.Transform(a)

	want := st.Shape.Outlines(st.Style)
	for _, poly := range want {
		for i, p := range poly {
			poly[i] = a.Apply(p)
		}
	}
	got := rotated.Shape.Outlines(rotated.Style)

	if len(got) != len(want) {
		t.Fatalf("pass count changed: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		for j := range got[i] {
			if !pointsClose(got[i][j], want[i][j], 1e-9) {
				t.Fatalf("pass %d point %d: got %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestShapeHitTest(t *testing.T) {
	st := NewShape(geom.ShapeRect, geom.Pt(0, 0), geom.Pt(20, 10), DefaultStyle(), nil)
	if !st.HitTest(geom.Pt(0, 5), 0.5) {
		t.Error("point on rect edge must hit")
	}
	if st.HitTest(geom.Pt(10, 5), 0.5) {
		t.Error("unfilled rect interior must miss")
	}

	filled := st.WithStyle(Style{Color: Black, Width: 2, Fill: true, FillColor: RGBA{R: 255, A: 255}})
	if !filled.HitTest(geom.Pt(10, 5), 0.5) {
		t.Error("filled rect interior must hit")
	}
}

func TestWithStyle(t *testing.T) {
	st := freehandFixture(t)
	red := Style{Color: RGBA{R: 255, A: 255}, Width: 4}
	styled := st.WithStyle(red)
	if styled.Style != red {
		t.Error("style not applied")
	}
	if styled.Version != st.Version+1 {
		t.Error("style edit must bump the version")
	}
	if st.Style == red {
		t.Error("original style mutated")
	}
}

func TestImageAndTextBounds(t *testing.T) {
	img := NewImage([]byte{1, 2, 3}, "png", 64, 32, geom.Pt(10, 20))
	want := geom.NewRect(10, 20, 74, 52)
	if img.Bounds() != want {
		t.Errorf("image bounds = %v, want %v", img.Bounds(), want)
	}

	txt := NewText("hello", 12, geom.Pt(0, 0), DefaultStyle())
	tb := txt.Bounds()
	if tb.Width() <= 0 || tb.Height() <= 0 {
		t.Errorf("text bounds %v must have positive area", tb)
	}
	if !txt.HitTest(tb.Center(), 0) {
		t.Error("text block center must hit")
	}
}

func TestMeasureTextMultiline(t *testing.T) {
	w1, h1 := MeasureText("hello", 12)
	w2, h2 := MeasureText("hello\nhello", 12)
	if !almostEqual(w1, w2, 1e-6) {
		t.Errorf("line width changed with line count: %v vs %v", w1, w2)
	}
	if h2 <= h1 {
		t.Errorf("two lines must be taller than one: %v vs %v", h2, h1)
	}
	if w, h := MeasureText("", 12); w != 0 || h != 0 {
		t.Errorf("empty text must measure zero, got %v x %v", w, h)
	}
}

func pointsClose(p, q geom.Point, eps float64) bool {
	return almostEqual(p.X, q.X, eps) && almostEqual(p.Y, q.Y, eps)
}
