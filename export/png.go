package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/render"
)

// PNG rasterizes the document region at the given zoom and encodes it as
// PNG. The tiles come from a private render pipeline, so the export output
// is pixel-identical to what the canvas shows at the same zoom. An empty
// region exports the content bounds with a margin; zoom <= 0 means 1.
func PNG(ctx context.Context, doc *document.Document, region geom.Rect, zoom float64) ([]byte, error) {
	region = exportRegion(doc, region)
	if zoom <= 0 {
		zoom = 1
	}

	p := render.NewPipeline(doc, render.DefaultOptions())
	defer p.Close()

	frame := p.RenderViewport(ctx, region, zoom)
	select {
	case <-frame.Done:
	case <-ctx.Done():
		return nil, fmt.Errorf("export: png render: %w", ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export: png render: %w", err)
	}

	ox := int(math.Floor(region.X0 * zoom))
	oy := int(math.Floor(region.Y0 * zoom))
	w := int(math.Ceil(region.X1*zoom)) - ox
	h := int(math.Ceil(region.Y1*zoom)) - oy
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	for _, tile := range p.CachedTiles(region, zoom) {
		at := image.Pt(tile.Key.X*render.TileSize-ox, tile.Key.Y*render.TileSize-oy)
		draw.Draw(out, tile.Img.Bounds().Add(at), tile.Img, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("export: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}
