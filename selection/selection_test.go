package selection

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/stroke"
)

func penLine(t *testing.T, y float64, x0, x1 float64, width float64) *stroke.Stroke {
	t.Helper()
	b := stroke.NewBuilder(
		stroke.Style{Color: stroke.Black, Width: width},
		stroke.BuilderOptions{
			MinSampleDistance: 0.5,
			Width:             stroke.WidthOptions{MinWidth: width, MaxWidth: width, Exponent: 1},
			Tolerance:         geom.FlattenTolerance,
		},
	)
	for x := x0; x <= x1; x += 2 {
		b.Push(stroke.Sample{Pos: geom.Pt(x, y), Pressure: 1})
	}
	s := b.Finish()
	if s == nil {
		t.Fatal("Finish returned nil")
	}
	return s
}

func TestHitTestPicksTopmost(t *testing.T) {
	doc := document.New()
	bottom := penLine(t, 20, 0, 40, 4)
	top := penLine(t, 20, 10, 30, 4)
	doc.InsertStrokes(bottom, top)

	sel := NewSelector(doc, DefaultOptions())

	id, ok := sel.HitTest(geom.Pt(20, 20))
	if !ok || id != top.ID {
		t.Errorf("HitTest on overlap = (%v, %v), want topmost %v", id, ok, top.ID)
	}

	id, ok = sel.HitTest(geom.Pt(2, 20))
	if !ok || id != bottom.ID {
		t.Errorf("HitTest on exposed tail = (%v, %v), want %v", id, ok, bottom.ID)
	}

	if _, ok := sel.HitTest(geom.Pt(200, 200)); ok {
		t.Error("HitTest far from everything reported a hit")
	}
}

func TestHitTestRespectsActualOutline(t *testing.T) {
	doc := document.New()
	// An unfilled rectangle: its bounding box interior is empty space.
	sh := stroke.NewShape(geom.ShapeRect, geom.Pt(0, 0), geom.Pt(40, 40),
		stroke.Style{Color: stroke.Black, Width: 2}, nil)
	doc.InsertStrokes(sh)

	sel := NewSelector(doc, DefaultOptions())
	if _, ok := sel.HitTest(geom.Pt(20, 20)); ok {
		t.Error("hit inside an unfilled rectangle's empty interior")
	}
	if _, ok := sel.HitTest(geom.Pt(20, 0)); !ok {
		t.Error("miss on the rectangle's edge")
	}
}

func TestSelectRegionModes(t *testing.T) {
	doc := document.New()
	inside := penLine(t, 10, 10, 20, 2)
	crossing := penLine(t, 15, 20, 60, 2)
	outside := penLine(t, 100, 0, 20, 2)
	doc.InsertStrokes(inside, crossing, outside)

	region := geom.NewRect(0, 0, 30, 30)

	overlap := NewSelector(doc, Options{Mode: ModeOverlap}).SelectRegion(region)
	if len(overlap) != 2 {
		t.Fatalf("overlap selected %d strokes, want 2", len(overlap))
	}

	contain := NewSelector(doc, Options{Mode: ModeContain}).SelectRegion(region)
	if len(contain) != 1 || contain[0] != inside.ID {
		t.Fatalf("contain selected %v, want only %v", contain, inside.ID)
	}
}

func TestSessionPreviewDoesNotTouchDocument(t *testing.T) {
	doc := document.New()
	s := penLine(t, 10, 0, 20, 2)
	doc.InsertStrokes(s)
	genBefore := doc.Generation()

	ss := Begin(doc, []uuid.UUID{s.ID})
	if ss == nil {
		t.Fatal("Begin returned nil for a live stroke")
	}

	move := geom.AffineTranslate(geom.Vec2{X: 100})
	ss.Update(move)

	want := move.TransformRect(s.Bounds())
	if got := ss.PreviewBounds(); got != want {
		t.Errorf("PreviewBounds = %v, want %v", got, want)
	}
	if doc.Generation() != genBefore {
		t.Error("preview mutated the document")
	}
	if live, _ := doc.Stroke(s.ID); live.Version != s.Version {
		t.Error("preview replaced the stroke version")
	}
}

func TestSessionCommitIsOneUndoStep(t *testing.T) {
	doc := document.New()
	a := penLine(t, 10, 0, 20, 2)
	b := penLine(t, 30, 0, 20, 2)
	doc.InsertStrokes(a)
	doc.InsertStrokes(b)

	ss := Begin(doc, []uuid.UUID{a.ID, b.ID})
	ss.Update(geom.AffineRotateAbout(math.Pi/2, ss.PreviewBounds().Center()))
	invalid := ss.Commit()
	if len(invalid) == 0 {
		t.Fatal("Commit returned no invalidated regions")
	}

	movedA, _ := doc.Stroke(a.ID)
	if movedA.Bounds() == a.Bounds() {
		t.Fatal("commit did not transform the strokes")
	}

	if _, ok := doc.Undo(); !ok {
		t.Fatal("commit did not record a history entry")
	}
	restoredA, _ := doc.Stroke(a.ID)
	restoredB, _ := doc.Stroke(b.ID)
	if restoredA != a || restoredB != b {
		t.Error("a single undo did not restore both strokes")
	}
}

func TestSessionCancelAndIdentityCommit(t *testing.T) {
	doc := document.New()
	s := penLine(t, 10, 0, 20, 2)
	doc.InsertStrokes(s)

	ss := Begin(doc, []uuid.UUID{s.ID})
	ss.Update(geom.AffineTranslate(geom.Vec2{X: 50}))
	ss.Cancel()
	if got := ss.Commit(); got != nil {
		t.Error("Commit after Cancel applied a transform")
	}
	if live, _ := doc.Stroke(s.ID); live != s {
		t.Error("cancelled session changed the document")
	}

	ss = Begin(doc, []uuid.UUID{s.ID})
	if got := ss.Commit(); got != nil {
		t.Error("identity commit invalidated regions")
	}
	// The only history entry is the original insert: one undo drains it.
	if _, ok := doc.Undo(); !ok {
		t.Fatal("insert history entry missing")
	}
	if doc.CanUndo() {
		t.Error("identity commit recorded a history entry")
	}
}

func TestBeginDropsUnknownIDs(t *testing.T) {
	doc := document.New()
	if ss := Begin(doc, []uuid.UUID{uuid.New()}); ss != nil {
		t.Error("Begin over unknown ids should return nil")
	}

	s := penLine(t, 10, 0, 20, 2)
	doc.InsertStrokes(s)
	ss := Begin(doc, []uuid.UUID{s.ID, uuid.New()})
	if ss == nil || len(ss.IDs()) != 1 {
		t.Fatal("Begin should keep only the live stroke")
	}
}
