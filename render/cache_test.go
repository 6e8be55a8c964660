package render

import (
	"image"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
)

func testImg() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
}

func TestCachePublishDropsOlderGeneration(t *testing.T) {
	c := newTileCache()
	key := TileKey{X: 1, Y: 2, Zoom: 1}

	newer := testImg()
	older := testImg()

	if !c.publish(key, newer, 5) {
		t.Fatal("publish(gen 5) should become valid")
	}
	if c.publish(key, older, 3) {
		t.Fatal("publish(gen 3) should be dropped after gen 5")
	}
	img, gen, ok := c.get(key)
	if !ok || gen != 5 {
		t.Fatalf("get = (gen %d, ok %v), want (5, true)", gen, ok)
	}
	if img != newer {
		t.Fatal("older publish overwrote newer content")
	}
}

func TestDroppedPublishRecyclesBuffer(t *testing.T) {
	c := newTileCache()
	key := TileKey{X: 3, Y: 4, Zoom: 1}

	published := testImg()
	published.Pix[0] = 200
	if !c.publish(key, published, 5) {
		t.Fatal("publish(gen 5) should become valid")
	}

	dropped := testImg()
	for i := range dropped.Pix {
		dropped.Pix[i] = 0xFF
	}
	if c.publish(key, dropped, 3) {
		t.Fatal("publish(gen 3) should be dropped")
	}
	if img, _, _ := c.get(key); img != published || img.Pix[0] != 200 {
		t.Fatal("dropped publish disturbed the published image")
	}

	// The dropped buffer went back to the tile pool; whatever buffer the
	// pool hands out next must come back zeroed.
	img := newTileImage()
	for _, px := range img.Pix {
		if px != 0 {
			t.Fatal("pooled tile image handed out uncleared")
		}
	}
}

func TestCachePublishNeverRegressesUnderInterleaving(t *testing.T) {
	c := newTileCache()
	key := TileKey{Zoom: 1}

	const gens = 200
	order := rand.Perm(gens)
	var wg sync.WaitGroup
	for _, g := range order {
		wg.Add(1)
		go func(gen uint64) {
			defer wg.Done()
			c.publish(key, testImg(), gen)
		}(uint64(g + 1))
	}
	wg.Wait()

	_, gen, ok := c.get(key)
	if !ok || gen != gens {
		t.Fatalf("final generation = (%d, %v), want (%d, true)", gen, ok, gens)
	}
}

func TestCacheInvalidationDuringRender(t *testing.T) {
	c := newTileCache()
	key := TileKey{Zoom: 1}

	if !c.markRendering(key, 1) {
		t.Fatal("fresh tile should be schedulable")
	}
	// The document mutates while the worker renders.
	c.invalidate(func(TileKey) bool { return true }, 2)

	if c.publish(key, testImg(), 1) {
		t.Fatal("result from before the invalidation must not become valid")
	}
	if _, _, ok := c.get(key); ok {
		t.Fatal("stale content served as valid")
	}

	if !c.markRendering(key, 3) {
		t.Fatal("invalidated tile should be reschedulable")
	}
	if !c.publish(key, testImg(), 3) {
		t.Fatal("post-invalidation result should become valid")
	}
}

func TestCacheMarkRenderingSkipsCleanAndInFlight(t *testing.T) {
	c := newTileCache()
	key := TileKey{Zoom: 1}

	c.publish(key, testImg(), 1)
	if c.markRendering(key, 1) {
		t.Fatal("clean valid tile should not be rescheduled")
	}

	c.invalidate(func(TileKey) bool { return true }, 2)
	if !c.markRendering(key, 3) {
		t.Fatal("dirty tile should be rescheduled")
	}
	if c.markRendering(key, 3) {
		t.Fatal("tile already rendering at the same generation rescheduled")
	}
	if !c.markRendering(key, 4) {
		t.Fatal("a newer generation should preempt the in-flight mark")
	}
}

func TestCacheAbortRestoresServableState(t *testing.T) {
	c := newTileCache()
	key := TileKey{Zoom: 1}

	// No prior content: abort leaves the tile stale and reschedulable.
	c.markRendering(key, 1)
	c.abort(key, 1)
	if !c.markRendering(key, 1) {
		t.Fatal("aborted tile should be reschedulable")
	}
	c.abort(key, 1)

	// Clean prior content: abort falls back to serving it.
	c.publish(key, testImg(), 2)
	c.invalidate(func(TileKey) bool { return true }, 3)
	c.markRendering(key, 4)
	c.abort(key, 4)
	if _, _, ok := c.get(key); ok {
		t.Fatal("dirty content served after abort")
	}
	if !c.markRendering(key, 4) {
		t.Fatal("aborted dirty tile should be reschedulable")
	}
}

func TestWorkerPoolRunsAllWork(t *testing.T) {
	p := NewWorkerPool(4)
	defer p.Close()

	const n = 256
	var count atomic.Int64
	var wg sync.WaitGroup
	work := make([]func(), n)
	for i := range work {
		wg.Add(1)
		work[i] = func() {
			count.Add(1)
			wg.Done()
		}
	}
	p.Submit(work)
	wg.Wait()
	if got := count.Load(); got != n {
		t.Fatalf("executed %d work items, want %d", got, n)
	}
}

func TestWorkerPoolSubmitAfterCloseRunsInline(t *testing.T) {
	p := NewWorkerPool(2)
	p.Close()
	p.Close() // idempotent

	ran := false
	p.Submit([]func(){func() { ran = true }})
	if !ran {
		t.Fatal("work submitted after Close was dropped")
	}
}
