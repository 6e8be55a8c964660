// Package render is the tiled, parallel, cancellable render pipeline of the
// ink engine.
//
// The canvas is divided into 64x64 pixel tiles rendered independently on a
// worker pool. A generation counter increments on every document mutation;
// in-flight tasks capture the generation they started with and their result
// is dropped at publish time if a newer generation has been published since,
// so no stale tile ever overwrites a fresh one and no torn tile is ever
// visible to the caller.
//
// Thread safety: Pipeline scheduling happens on the document owner thread;
// the tile cache is the only structure touched concurrently, guarded by
// sharded locks at the single publish point.
package render

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/ink/geom"
)

// TileSize is the width and height of a render tile in pixels. 64 pixels
// keeps a full RGBA tile at 16KB, inside L1 on common cores, and matches
// the work granularity the pool balances well.
const TileSize = 64

// TileKey addresses a tile in the cache: its column/row in tile space and
// the zoom it was rendered at.
type TileKey struct {
	X, Y int
	Zoom float64
}

// DocRect returns the document-unit region covered by the tile.
func (k TileKey) DocRect() geom.Rect {
	side := TileSize / k.Zoom
	return geom.NewRect(
		float64(k.X)*side,
		float64(k.Y)*side,
		float64(k.X+1)*side,
		float64(k.Y+1)*side,
	)
}

// Tile is a finished raster tile handed to the caller.
type Tile struct {
	Key TileKey

	// Img is the rendered RGBA pixel data. Callers must treat it as
	// read-only; the cache may hand the same backing image to multiple
	// viewport requests.
	Img *image.RGBA

	// Gen is the document generation the tile was rendered from.
	Gen uint64
}

// tilePool reuses RGBA buffers for full-size tiles to reduce GC pressure.
var tilePool = sync.Pool{
	New: func() any {
		return image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	},
}

// newTileImage returns a zeroed tile-sized RGBA image from the pool.
func newTileImage() *image.RGBA {
	img := tilePool.Get().(*image.RGBA)
	clear(img.Pix)
	return img
}

// tileRange returns the half-open tile coordinate range covering view at
// the given zoom.
func tileRange(view geom.Rect, zoom float64) (x0, y0, x1, y1 int) {
	side := TileSize / zoom
	x0 = int(math.Floor(view.X0 / side))
	y0 = int(math.Floor(view.Y0 / side))
	x1 = int(math.Ceil(view.X1 / side))
	y1 = int(math.Ceil(view.Y1 / side))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	return x0, y0, x1, y1
}
