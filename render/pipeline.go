package render

import (
	"context"
	"sync"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// Scene is the input surface the pipeline renders from. *document.Document
// satisfies it. Snapshot and Generation must be called from the document
// owner thread; the pipeline does so only inside RenderViewport and
// Invalidate, which carry the same threading contract.
type Scene interface {
	Snapshot(region geom.Rect) []*stroke.Stroke
	Background() document.Background
	Generation() uint64
}

// Options configures a Pipeline.
type Options struct {
	// Workers is the rasterization worker count; zero or negative uses
	// GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the default pipeline configuration.
func DefaultOptions() Options {
	return Options{}
}

// Frame is the result of one viewport request: the tiles that were already
// valid, and a channel closed once every tile scheduled by this request has
// been published or abandoned.
type Frame struct {
	// Tiles are the tiles available immediately, rendered from earlier
	// generations that are still current for their region.
	Tiles []Tile

	// Scheduled is the number of stale tiles handed to the worker pool.
	Scheduled int

	// Gen is the document generation the request was issued at.
	Gen uint64

	// Done is closed when all scheduled tiles have completed. A follow-up
	// RenderViewport call then returns the full set from cache.
	Done <-chan struct{}
}

// Pipeline renders document viewports as cached 64x64 tiles on a worker
// pool.
//
// Thread safety: RenderViewport and Invalidate must be called from the
// document owner thread. Workers only touch the tile cache, through the
// generation-gated publish.
type Pipeline struct {
	scene Scene
	pool  *WorkerPool
	cache *tileCache
}

// NewPipeline creates a pipeline rendering from scene.
func NewPipeline(scene Scene, opts Options) *Pipeline {
	return &Pipeline{
		scene: scene,
		pool:  NewWorkerPool(opts.Workers),
		cache: newTileCache(),
	}
}

// Close stops the worker pool after draining in-flight tiles.
func (p *Pipeline) Close() {
	p.pool.Close()
}

// Invalidate marks every cached tile intersecting any of the given document
// regions as stale. Call it right after the mutation that produced the
// regions, so the staleness carries the post-mutation generation.
func (p *Pipeline) Invalidate(regions []geom.Rect) {
	live := regions[:0:0]
	for _, r := range regions {
		if !r.IsEmpty() {
			live = append(live, r)
		}
	}
	if len(live) == 0 {
		return
	}
	gen := p.scene.Generation()
	p.cache.invalidate(func(key TileKey) bool {
		dr := key.DocRect()
		for _, r := range live {
			if dr.Intersects(r) {
				return true
			}
		}
		return false
	}, gen)
}

// InvalidateAll marks every cached tile stale. Used for document-wide
// changes such as background or layout edits.
func (p *Pipeline) InvalidateAll() {
	gen := p.scene.Generation()
	p.cache.invalidate(func(TileKey) bool { return true }, gen)
}

// RenderViewport returns the valid tiles covering view at the given zoom and
// schedules rasterization of the stale ones. Each scheduled task captures
// the current generation and an immutable stroke snapshot taken here, on the
// caller's thread, so workers never read the document.
//
// Cancelling ctx abandons tiles that have not started; tiles already being
// rasterized finish and publish.
func (p *Pipeline) RenderViewport(ctx context.Context, view geom.Rect, zoom float64) Frame {
	if zoom <= 0 {
		zoom = 1
	}
	gen := p.scene.Generation()
	bg := p.scene.Background()

	x0, y0, x1, y1 := tileRange(view, zoom)
	var tiles []Tile
	var tasks []func()
	var wg sync.WaitGroup

	for ty := y0; ty < y1; ty++ {
		for tx := x0; tx < x1; tx++ {
			key := TileKey{X: tx, Y: ty, Zoom: zoom}
			if img, g, ok := p.cache.get(key); ok {
				tiles = append(tiles, Tile{Key: key, Img: img, Gen: g})
				continue
			}
			if !p.cache.markRendering(key, gen) {
				continue
			}
			// Snapshot on the owner thread: the strokes are immutable,
			// so the worker reads a consistent scene with no locking.
			strokes := p.scene.Snapshot(key.DocRect())
			wg.Add(1)
			tasks = append(tasks, func() {
				defer wg.Done()
				if ctx.Err() != nil {
					p.cache.abort(key, gen)
					return
				}
				img := rasterizeTile(key, bg, strokes)
				if !p.cache.publish(key, img, gen) {
					ilog.Logger().Debug("dropped superseded tile",
						"x", key.X, "y", key.Y, "gen", gen)
				}
			})
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	p.pool.Submit(tasks)

	return Frame{Tiles: tiles, Scheduled: len(tasks), Gen: gen, Done: done}
}

// CachedTiles returns the currently valid tiles covering view at zoom,
// without scheduling any work.
func (p *Pipeline) CachedTiles(view geom.Rect, zoom float64) []Tile {
	x0, y0, x1, y1 := tileRange(view, zoom)
	var tiles []Tile
	for ty := y0; ty < y1; ty++ {
		for tx := x0; tx < x1; tx++ {
			key := TileKey{X: tx, Y: ty, Zoom: zoom}
			if img, g, ok := p.cache.get(key); ok {
				tiles = append(tiles, Tile{Key: key, Img: img, Gen: g})
			}
		}
	}
	return tiles
}
