package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"golang.org/x/exp/rand"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// rasterizeTile renders the strokes intersecting the tile over its
// background. All inputs are immutable; this runs on worker goroutines.
func rasterizeTile(key TileKey, bg document.Background, strokes []*stroke.Stroke) *image.RGBA {
	img := newTileImage()
	paintBackground(img, key, bg)
	for _, s := range strokes {
		drawStroke(img, key, s)
	}
	return img
}

// toPix maps a document point into the tile's pixel space.
func toPix(key TileKey, p geom.Point) geom.Point {
	return geom.Point{
		X: p.X*key.Zoom - float64(key.X)*TileSize,
		Y: p.Y*key.Zoom - float64(key.Y)*TileSize,
	}
}

func nrgba(c stroke.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// fillPolys scan-fills closed document-space polygons with a uniform color.
// The rasterizer clips to the tile, so oversized polygons are fine.
func fillPolys(dst *image.RGBA, key TileKey, polys [][]geom.Point, col stroke.RGBA) {
	if col.A == 0 {
		return
	}
	z := vector.NewRasterizer(TileSize, TileSize)
	drawn := false
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		p := toPix(key, poly[0])
		z.MoveTo(float32(p.X), float32(p.Y))
		for _, pt := range poly[1:] {
			p = toPix(key, pt)
			z.LineTo(float32(p.X), float32(p.Y))
		}
		z.ClosePath()
		drawn = true
	}
	if !drawn {
		return
	}
	z.Draw(dst, dst.Bounds(), image.NewUniform(nrgba(col)), image.Point{})
}

func paintBackground(dst *image.RGBA, key TileKey, bg document.Background) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(nrgba(bg.Color)), image.Point{}, draw.Src)
	if bg.Pattern == document.PatternNone || bg.PatternSize <= 0 {
		return
	}

	dr := key.DocRect()
	src := image.NewUniform(nrgba(bg.PatternColor))
	size := bg.PatternSize

	// Pattern geometry lives on the document grid, so adjacent tiles line
	// up seamlessly.
	switch bg.Pattern {
	case document.PatternLines:
		paintRules(dst, key, dr, size, src, false, true)
	case document.PatternGrid:
		paintRules(dst, key, dr, size, src, true, true)
	case document.PatternDots:
		x0 := math.Floor(dr.X0 / size)
		y0 := math.Floor(dr.Y0 / size)
		for gy := y0; gy*size <= dr.Y1; gy++ {
			for gx := x0; gx*size <= dr.X1; gx++ {
				p := toPix(key, geom.Pt(gx*size, gy*size))
				r := image.Rect(int(p.X)-1, int(p.Y)-1, int(p.X)+2, int(p.Y)+2)
				draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
			}
		}
	}
}

// paintRules draws one-pixel grid rules aligned to multiples of size.
func paintRules(dst *image.RGBA, key TileKey, dr geom.Rect, size float64, src image.Image, vertical, horizontal bool) {
	if horizontal {
		for gy := math.Floor(dr.Y0 / size); gy*size <= dr.Y1; gy++ {
			p := toPix(key, geom.Pt(0, gy*size))
			r := image.Rect(0, int(p.Y), TileSize, int(p.Y)+1)
			draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
		}
	}
	if vertical {
		for gx := math.Floor(dr.X0 / size); gx*size <= dr.X1; gx++ {
			p := toPix(key, geom.Pt(gx*size, 0))
			r := image.Rect(int(p.X), 0, int(p.X)+1, TileSize)
			draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
		}
	}
}

func drawStroke(dst *image.RGBA, key TileKey, s *stroke.Stroke) {
	switch s.Kind {
	case stroke.KindFreehand:
		fillPolys(dst, key, [][]geom.Point{s.Freehand.Outline}, s.Style.Color)
	case stroke.KindShape:
		if fill := s.Shape.FillPolygon(s.Style); fill != nil {
			fillPolys(dst, key, [][]geom.Point{fill}, s.Style.FillColor)
		}
		fillPolys(dst, key, s.Shape.StrokeOutlines(s.Style), s.Style.Color)
	case stroke.KindTextured:
		drawTextured(dst, key, s)
	case stroke.KindImage:
		drawImage(dst, key, s)
	case stroke.KindText:
		drawText(dst, key, s)
	}
}

// maxSpeckles bounds texture work per stroke regardless of region size.
const maxSpeckles = 16384

// drawTextured paints a light wash over the region plus seeded speckles.
// Speckle positions derive only from the stroke's seed and region bounds, so
// every tile (and every re-render) agrees on them.
func drawTextured(dst *image.RGBA, key TileKey, s *stroke.Stroke) {
	tx := s.Textured
	if len(tx.Region) < 3 {
		return
	}
	wash := s.Style.Color
	wash.A = wash.A / 4
	fillPolys(dst, key, [][]geom.Point{tx.Region}, wash)

	b := geom.BoundsOf(tx.Region)
	n := int(b.Width() * b.Height() / (tx.Spacing * tx.Spacing))
	if n > maxSpeckles {
		n = maxSpeckles
	}
	if n <= 0 {
		return
	}
	tile := key.DocRect().Outset(tx.Spacing)
	src := image.NewUniform(nrgba(s.Style.Color))
	rng := rand.New(rand.NewSource(tx.Seed))
	for i := 0; i < n; i++ {
		p := geom.Pt(b.X0+rng.Float64()*b.Width(), b.Y0+rng.Float64()*b.Height())
		if !tile.Contains(p) || !geom.PointInPolygon(p, tx.Region) {
			continue
		}
		pp := toPix(key, p)
		r := image.Rect(int(pp.X), int(pp.Y), int(pp.X)+2, int(pp.Y)+2)
		draw.Draw(dst, r.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
	}
}

// drawImage resamples the embedded bitmap through the composed
// natural-to-pixel transform.
func drawImage(dst *image.RGBA, key TileKey, s *stroke.Stroke) {
	decoded, err := s.Image.Decoded()
	if err != nil {
		ilog.Logger().Warn("skipping undecodable image stroke",
			"id", s.ID, "format", s.Image.Format, "err", err)
		return
	}
	a := s.Image.Xform
	z := key.Zoom
	ox := float64(key.X) * TileSize
	oy := float64(key.Y) * TileSize
	m := f64.Aff3{
		z * a[0], z * a[2], z*a[4] - ox,
		z * a[1], z * a[3], z*a[5] - oy,
	}
	xdraw.ApproxBiLinear.Transform(dst, m, decoded, decoded.Bounds(), xdraw.Over, nil)
}

var (
	rasterFontOnce sync.Once
	rasterFont     *opentype.Font
	rasterFontErr  error
)

func rasterFace(size float64) (font.Face, error) {
	rasterFontOnce.Do(func() {
		rasterFont, rasterFontErr = opentype.Parse(goregular.TTF)
	})
	if rasterFontErr != nil {
		return nil, rasterFontErr
	}
	return opentype.NewFace(rasterFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// drawText rasterizes a text block with the embedded face. The block anchor
// and uniform scale of the stroke transform are honored; rotation falls back
// to the axis-aligned orientation.
// TODO: rotate the glyph raster once a rotated-text tool lands.
func drawText(dst *image.RGBA, key TileKey, s *stroke.Stroke) {
	tx := s.Text
	if tx.Text == "" || tx.Size <= 0 {
		return
	}
	scale := math.Sqrt(math.Abs(tx.Xform.Determinant()))
	if scale <= 0 {
		return
	}
	face, err := rasterFace(tx.Size * scale * key.Zoom)
	if err != nil {
		ilog.Logger().Warn("skipping text stroke, face unavailable",
			"id", s.ID, "err", err)
		return
	}
	defer face.Close()

	anchor := toPix(key, tx.Xform.Apply(geom.Point{}))
	metrics := face.Metrics()
	lineHeight := stroke.LineHeight(tx.Size) * scale * key.Zoom

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(nrgba(s.Style.Color)),
		Face: face,
	}
	y := anchor.Y + float64(metrics.Ascent)/64
	splitLines(tx.Text)(func(line string) bool {
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(anchor.X * 64),
			Y: fixed.Int26_6(y * 64),
		}
		d.DrawString(line)
		y += lineHeight
		return true
	})
}

// splitLines iterates the newline-separated lines of s without allocating a
// slice per tile.
func splitLines(s string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		start := 0
		for i := 0; i < len(s); i++ {
			if s[i] == '\n' {
				if !yield(s[start:i]) {
					return
				}
				start = i + 1
			}
		}
		yield(s[start:])
	}
}
