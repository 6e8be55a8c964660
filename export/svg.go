// Package export renders documents to interchange formats: SVG, PNG and
// paginated PDF, plus bitmap import into image strokes.
//
// Exports are pure reads. They run on the document owner thread (or on a
// document nothing else is mutating) and never alter the document.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/stroke"
)

// SVG renders the document region as a standalone SVG image. An empty region
// exports the full content bounds with a small margin.
func SVG(doc *document.Document, region geom.Rect) ([]byte, error) {
	region = exportRegion(doc, region)

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`+"\n",
		f(region.Width()), f(region.Height()),
		f(region.X0), f(region.Y0), f(region.Width()), f(region.Height()))

	svgBackground(&b, doc.Background(), region)
	for _, s := range doc.Snapshot(region) {
		svgStroke(&b, s)
	}

	b.WriteString("</svg>\n")
	return b.Bytes(), nil
}

// exportRegion resolves the region an export covers: the caller's rect, or
// the content bounds with a margin, or the empty page.
func exportRegion(doc *document.Document, region geom.Rect) geom.Rect {
	if !region.IsEmpty() {
		return region
	}
	content := doc.ContentBounds()
	if content.IsEmpty() {
		format := doc.Format()
		return geom.NewRect(0, 0, format.Width, format.Height)
	}
	return content.Outset(10)
}

// f formats a coordinate with enough precision to round-trip visually while
// keeping files compact.
func f(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.3f", v)
}

func svgColor(c stroke.RGBA) (hex string, opacity float64) {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), float64(c.A) / 255
}

func svgFillAttrs(c stroke.RGBA) string {
	hex, op := svgColor(c)
	if op >= 1 {
		return fmt.Sprintf(`fill="%s"`, hex)
	}
	return fmt.Sprintf(`fill="%s" fill-opacity="%s"`, hex, f(op))
}

func svgMatrix(a geom.Affine) string {
	return fmt.Sprintf("matrix(%s %s %s %s %s %s)", f(a[0]), f(a[1]), f(a[2]), f(a[3]), f(a[4]), f(a[5]))
}

func svgPathData(poly []geom.Point) string {
	var b bytes.Buffer
	for i, p := range poly {
		if i == 0 {
			fmt.Fprintf(&b, "M%s %s", f(p.X), f(p.Y))
		} else {
			fmt.Fprintf(&b, "L%s %s", f(p.X), f(p.Y))
		}
	}
	b.WriteString("Z")
	return b.String()
}

func svgPolygon(b *bytes.Buffer, poly []geom.Point, col stroke.RGBA) {
	if len(poly) < 3 || col.A == 0 {
		return
	}
	fmt.Fprintf(b, `<path d="%s" %s/>`+"\n", svgPathData(poly), svgFillAttrs(col))
}

func svgBackground(b *bytes.Buffer, bg document.Background, region geom.Rect) {
	hex, _ := svgColor(bg.Color)
	fmt.Fprintf(b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		f(region.X0), f(region.Y0), f(region.Width()), f(region.Height()), hex)
	if bg.Pattern == document.PatternNone || bg.PatternSize <= 0 {
		return
	}

	phex, _ := svgColor(bg.PatternColor)
	size := bg.PatternSize
	switch bg.Pattern {
	case document.PatternLines, document.PatternGrid:
		for y := math.Ceil(region.Y0/size) * size; y <= region.Y1; y += size {
			fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
				f(region.X0), f(y), f(region.X1), f(y), phex)
		}
		if bg.Pattern == document.PatternGrid {
			for x := math.Ceil(region.X0/size) * size; x <= region.X1; x += size {
				fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`+"\n",
					f(x), f(region.Y0), f(x), f(region.Y1), phex)
			}
		}
	case document.PatternDots:
		for y := math.Ceil(region.Y0/size) * size; y <= region.Y1; y += size {
			for x := math.Ceil(region.X0/size) * size; x <= region.X1; x += size {
				fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="1.5" fill="%s"/>`+"\n", f(x), f(y), phex)
			}
		}
	}
}

func svgStroke(b *bytes.Buffer, s *stroke.Stroke) {
	switch s.Kind {
	case stroke.KindFreehand:
		svgPolygon(b, s.Freehand.Outline, s.Style.Color)
	case stroke.KindShape:
		if fill := s.Shape.FillPolygon(s.Style); fill != nil {
			svgPolygon(b, fill, s.Style.FillColor)
		}
		for _, poly := range s.Shape.StrokeOutlines(s.Style) {
			svgPolygon(b, poly, s.Style.Color)
		}
	case stroke.KindTextured:
		wash := s.Style.Color
		wash.A /= 4
		svgPolygon(b, s.Textured.Region, wash)
		hex, _ := svgColor(s.Style.Color)
		for _, p := range specklePoints(s.Textured) {
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="1" fill="%s"/>`+"\n", f(p.X), f(p.Y), hex)
		}
	case stroke.KindImage:
		mime := "image/png"
		if s.Image.Format == "jpeg" {
			mime = "image/jpeg"
		}
		fmt.Fprintf(b, `<image width="%d" height="%d" transform="%s" href="data:%s;base64,%s"/>`+"\n",
			s.Image.W, s.Image.H, svgMatrix(s.Image.Xform), mime,
			base64.StdEncoding.EncodeToString(s.Image.Data))
	case stroke.KindText:
		svgText(b, s)
	}
}

func svgText(b *bytes.Buffer, s *stroke.Stroke) {
	tx := s.Text
	hex, op := svgColor(s.Style.Color)
	fmt.Fprintf(b, `<text font-family="sans-serif" font-size="%s" fill="%s"`, f(tx.Size), hex)
	if op < 1 {
		fmt.Fprintf(b, ` fill-opacity="%s"`, f(op))
	}
	fmt.Fprintf(b, ` transform="%s">`, svgMatrix(tx.Xform))
	lineHeight := stroke.LineHeight(tx.Size)
	y := tx.Size * 0.8 // first baseline below the block's top edge
	for _, line := range bytes.Split([]byte(tx.Text), []byte("\n")) {
		fmt.Fprintf(b, `<tspan x="0" y="%s">`, f(y))
		xmlEscape(b, line)
		b.WriteString("</tspan>")
		y += lineHeight
	}
	b.WriteString("</text>\n")
}

func xmlEscape(b *bytes.Buffer, s []byte) {
	for _, c := range s {
		switch c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteByte(c)
		}
	}
}

// maxSpeckles bounds textured export work per stroke.
const maxSpeckles = 16384

// specklePoints reproduces the textured stroke's seeded speckle positions.
// The same seed and region always yield the same points, matching the raster
// pipeline.
func specklePoints(tx *stroke.Textured) []geom.Point {
	if len(tx.Region) < 3 || tx.Spacing <= 0 {
		return nil
	}
	b := geom.BoundsOf(tx.Region)
	n := int(b.Width() * b.Height() / (tx.Spacing * tx.Spacing))
	if n > maxSpeckles {
		n = maxSpeckles
	}
	rng := rand.New(rand.NewSource(tx.Seed))
	out := make([]geom.Point, 0, n)
	for i := 0; i < n; i++ {
		p := geom.Pt(b.X0+rng.Float64()*b.Width(), b.Y0+rng.Float64()*b.Height())
		if geom.PointInPolygon(p, tx.Region) {
			out = append(out, p)
		}
	}
	return out
}
