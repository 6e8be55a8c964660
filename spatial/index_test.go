package spatial

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/ink/geom"
)

func TestInsertQueryRemove(t *testing.T) {
	ix := NewIndex()
	a := uuid.New()
	b := uuid.New()
	ix.Insert(a, geom.NewRect(0, 0, 10, 10), 1)
	ix.Insert(b, geom.NewRect(20, 20, 30, 30), 2)

	if got := ix.QueryRegion(geom.NewRect(-1, -1, 11, 11)); len(got) != 1 || got[0] != a {
		t.Errorf("QueryRegion around a = %v, want [a]", got)
	}
	if got := ix.QueryRegion(geom.NewRect(-100, -100, 100, 100)); len(got) != 2 {
		t.Errorf("full-canvas query returned %d ids, want 2", len(got))
	}

	ix.Remove(a)
	if ix.Contains(a) || ix.Len() != 1 {
		t.Error("remove did not delete the entry")
	}
	if got := ix.QueryRegion(geom.NewRect(-1, -1, 11, 11)); len(got) != 0 {
		t.Errorf("removed id still returned: %v", got)
	}
}

func TestQueryPointTopmostFirst(t *testing.T) {
	ix := NewIndex()
	bottom := uuid.New()
	top := uuid.New()
	// Overlapping bounds, different z ranks.
	ix.Insert(bottom, geom.NewRect(0, 0, 10, 10), 1)
	ix.Insert(top, geom.NewRect(5, 5, 15, 15), 2)

	got := ix.QueryPoint(geom.Pt(7, 7), 0.5)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0] != top || got[1] != bottom {
		t.Error("point query must return topmost (last drawn) first")
	}
}

func TestQueryRegionPaintingOrder(t *testing.T) {
	ix := NewIndex()
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
		ix.Insert(ids[i], geom.NewRect(0, 0, 10, 10), uint64(i))
	}
	got := ix.QueryRegion(geom.NewRect(0, 0, 10, 10))
	for i := range got {
		if got[i] != ids[i] {
			t.Fatalf("region query out of painting order at %d: %v", i, got)
		}
	}
}

func TestUpdateMovesBounds(t *testing.T) {
	ix := NewIndex()
	id := uuid.New()
	ix.Insert(id, geom.NewRect(0, 0, 10, 10), 1)
	ix.Update(id, geom.NewRect(100, 100, 110, 110))

	if got := ix.QueryRegion(geom.NewRect(0, 0, 10, 10)); len(got) != 0 {
		t.Errorf("old bounds still indexed: %v", got)
	}
	if got := ix.QueryRegion(geom.NewRect(99, 99, 111, 111)); len(got) != 1 || got[0] != id {
		t.Errorf("new bounds not indexed: %v", got)
	}
	if b, _ := ix.Bounds(id); b != geom.NewRect(100, 100, 110, 110) {
		t.Errorf("Bounds = %v", b)
	}
}

// TestIndexConsistencyRandomOps drives a random sequence of inserts,
// removes and updates and checks that a full-canvas query always returns
// exactly the live id set.
func TestIndexConsistencyRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ix := NewIndex()
	live := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	var z uint64

	randRect := func() geom.Rect {
		x := rng.Float64()*1000 - 500
		y := rng.Float64()*1000 - 500
		return geom.NewRect(x, y, x+rng.Float64()*50+1, y+rng.Float64()*50+1)
	}

	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			id := uuid.New()
			z++
			ix.Insert(id, randRect(), z)
			live[id] = true
			ids = append(ids, id)
		case op == 1:
			k := rng.Intn(len(ids))
			id := ids[k]
			if live[id] {
				ix.Remove(id)
				delete(live, id)
			}
		default:
			k := rng.Intn(len(ids))
			id := ids[k]
			if live[id] {
				ix.Update(id, randRect())
			}
		}
	}

	got := ix.QueryRegion(geom.NewRect(-1e9, -1e9, 1e9, 1e9))
	if len(got) != len(live) {
		t.Fatalf("full query returned %d ids, want %d", len(got), len(live))
	}
	for _, id := range got {
		if !live[id] {
			t.Fatalf("stale id %v in query result", id)
		}
	}
	if ix.Len() != len(live) {
		t.Fatalf("Len = %d, want %d", ix.Len(), len(live))
	}
}
