package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// PDF exports the document as a paginated vector PDF, one PDF page per
// document page as defined by the layout. The context is checked between
// pages, so cancelling a long export of a large document returns promptly.
func PDF(ctx context.Context, doc *document.Document) ([]byte, error) {
	pages := doc.PageRects()
	first := pages[0]

	// Document units map 1:1 to PDF points.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.Width(), Ht: first.Height()},
	})
	pdf.SetFont("Helvetica", "", 12)

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("export: pdf cancelled at page %d: %w", i+1, err)
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width(), Ht: page.Height()})
		pdfBackground(pdf, doc.Background(), page)
		for j, s := range doc.Snapshot(page) {
			pdfStroke(pdf, s, page, fmt.Sprintf("s%d_%d", i, j))
		}
	}
	if pdf.Err() {
		return nil, fmt.Errorf("export: building pdf: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func pdfBackground(pdf *gofpdf.Fpdf, bg document.Background, page geom.Rect) {
	pdf.SetFillColor(int(bg.Color.R), int(bg.Color.G), int(bg.Color.B))
	pdf.Rect(0, 0, page.Width(), page.Height(), "F")
	if bg.Pattern == document.PatternNone || bg.PatternSize <= 0 {
		return
	}

	pdf.SetDrawColor(int(bg.PatternColor.R), int(bg.PatternColor.G), int(bg.PatternColor.B))
	pdf.SetLineWidth(0.5)
	size := bg.PatternSize
	switch bg.Pattern {
	case document.PatternLines, document.PatternGrid:
		for y := size; y < page.Height(); y += size {
			pdf.Line(0, y, page.Width(), y)
		}
		if bg.Pattern == document.PatternGrid {
			for x := size; x < page.Width(); x += size {
				pdf.Line(x, 0, x, page.Height())
			}
		}
	case document.PatternDots:
		pdf.SetFillColor(int(bg.PatternColor.R), int(bg.PatternColor.G), int(bg.PatternColor.B))
		for y := size; y < page.Height(); y += size {
			for x := size; x < page.Width(); x += size {
				pdf.Circle(x, y, 1, "F")
			}
		}
	}
}

// pdfPolygon fills a closed document-space polygon on the current page.
func pdfPolygon(pdf *gofpdf.Fpdf, poly []geom.Point, page geom.Rect, col stroke.RGBA) {
	if len(poly) < 3 || col.A == 0 {
		return
	}
	pts := make([]gofpdf.PointType, len(poly))
	for i, p := range poly {
		pts[i] = gofpdf.PointType{X: p.X - page.X0, Y: p.Y - page.Y0}
	}
	pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	if col.A < 255 {
		pdf.SetAlpha(float64(col.A)/255, "Normal")
		defer pdf.SetAlpha(1, "Normal")
	}
	pdf.Polygon(pts, "F")
}

func pdfStroke(pdf *gofpdf.Fpdf, s *stroke.Stroke, page geom.Rect, name string) {
	switch s.Kind {
	case stroke.KindFreehand:
		pdfPolygon(pdf, s.Freehand.Outline, page, s.Style.Color)
	case stroke.KindShape:
		if fill := s.Shape.FillPolygon(s.Style); fill != nil {
			pdfPolygon(pdf, fill, page, s.Style.FillColor)
		}
		for _, poly := range s.Shape.StrokeOutlines(s.Style) {
			pdfPolygon(pdf, poly, page, s.Style.Color)
		}
	case stroke.KindTextured:
		wash := s.Style.Color
		wash.A /= 4
		pdfPolygon(pdf, s.Textured.Region, page, wash)
		pdf.SetFillColor(int(s.Style.Color.R), int(s.Style.Color.G), int(s.Style.Color.B))
		for _, p := range specklePoints(s.Textured) {
			pdf.Circle(p.X-page.X0, p.Y-page.Y0, 0.8, "F")
		}
	case stroke.KindImage:
		pdfImage(pdf, s, page, name)
	case stroke.KindText:
		pdfText(pdf, s, page)
	}
}

// pdfImage places the embedded bitmap into the stroke's bounding rect.
// Rotated placements flatten to their axis-aligned bounds.
func pdfImage(pdf *gofpdf.Fpdf, s *stroke.Stroke, page geom.Rect, name string) {
	imageType := strings.ToUpper(s.Image.Format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(s.Image.Data))
	if pdf.Err() {
		ilog.Logger().Warn("skipping image stroke in pdf export",
			"id", s.ID, "err", pdf.Error())
		pdf.ClearError()
		return
	}
	b := s.Bounds()
	pdf.ImageOptions(name, b.X0-page.X0, b.Y0-page.Y0, b.Width(), b.Height(), false, opts, 0, "")
}

func pdfText(pdf *gofpdf.Fpdf, s *stroke.Stroke, page geom.Rect) {
	tx := s.Text
	if tx.Text == "" || tx.Size <= 0 {
		return
	}
	anchor := tx.Xform.Apply(geom.Point{})
	pdf.SetFont("Helvetica", "", tx.Size)
	pdf.SetTextColor(int(s.Style.Color.R), int(s.Style.Color.G), int(s.Style.Color.B))
	lineHeight := stroke.LineHeight(tx.Size)
	y := anchor.Y - page.Y0 + tx.Size*0.8
	for _, line := range strings.Split(tx.Text, "\n") {
		pdf.Text(anchor.X-page.X0, y, line)
		y += lineHeight
	}
}
