package export

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"image"
	"image/color"

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

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sampleDocument(t *testing.T) *document.Document {
	t.Helper()
	doc := document.New()
	doc.SetBackground(document.Background{
		Color:        stroke.RGBA{R: 255, G: 255, B: 255, A: 255},
		Pattern:      document.PatternGrid,
		PatternSize:  20,
		PatternColor: stroke.RGBA{R: 220, G: 220, B: 220, A: 255},
	})
	doc.InsertStrokes(
		penLine(t, 30, 10, 50, 4),
		stroke.NewShape(geom.ShapeRect, geom.Pt(60, 10), geom.Pt(90, 40),
			stroke.Style{Color: stroke.Black, Width: 2, Fill: true, FillColor: stroke.RGBA{B: 200, A: 255}}, nil),
		stroke.NewText("a <b> & c", 12, geom.Pt(10, 60), stroke.DefaultStyle()),
	)
	return doc
}

func TestSVGStructure(t *testing.T) {
	doc := sampleDocument(t)
	img := pngBytes(t)
	format, w, h, err := stroke.DecodeInfo(img)
	if err != nil {
		t.Fatal(err)
	}
	doc.InsertStrokes(stroke.NewImage(img, format, w, h, geom.Pt(10, 80)))

	out, err := SVG(doc, geom.NewRect(0, 0, 100, 100))
	if err != nil {
		t.Fatal(err)
	}
	svg := string(out)

	for _, want := range []string{
		`viewBox="0 0 100 100"`,
		`<path d="M`,          // freehand and shape outlines
		`<line `,              // grid pattern
		`fill="#0000c8"`,      // rect fill color
		`a &lt;b&gt; &amp; c`, // escaped text content
		`data:image/png;base64,`,
		"</svg>",
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}
}

func TestSVGEmptyDocumentUsesPageSize(t *testing.T) {
	doc := document.New()
	out, err := SVG(doc, geom.Rect{})
	if err != nil {
		t.Fatal(err)
	}
	format := doc.Format()
	if !strings.Contains(string(out), `width="`+f(format.Width)+`"`) {
		t.Errorf("empty document SVG should span the page width, got:\n%s", out)
	}
}

func TestPNGExport(t *testing.T) {
	doc := sampleDocument(t)

	region := geom.NewRect(0, 0, 100, 100)
	data, err := PNG(context.Background(), doc, region, 2)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Fatalf("exported image is %dx%d, want 200x200", b.Dx(), b.Dy())
	}

	// The pen stroke centerline at doc (30, 30) lands at pixel (60, 60).
	r, g, bl, _ := img.At(60, 60).RGBA()
	if r > 0x4000 || g > 0x4000 || bl > 0x4000 {
		t.Errorf("pixel on the stroke = (%d, %d, %d), want near black", r, g, bl)
	}
	// Inside the filled rect at doc (75, 25) -> pixel (150, 50).
	_, _, bl, _ = img.At(150, 50).RGBA()
	if bl < 0x8000 {
		t.Errorf("pixel in the filled rect has blue %d, want strong blue", bl)
	}
}

func TestPNGCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PNG(ctx, sampleDocument(t), geom.NewRect(0, 0, 100, 100), 1); err == nil {
		t.Fatal("PNG with a cancelled context succeeded")
	}
}

func TestPDFExport(t *testing.T) {
	doc := sampleDocument(t)
	doc.SetLayout(document.LayoutFixedSize)
	doc.SetFormat(document.Format{Width: 200, Height: 100, DPI: 72})
	// Content spans y 10..70, one page; add a stroke on the second page.
	doc.InsertStrokes(penLine(t, 150, 10, 50, 4))

	data, err := PDF(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", data[:8])
	}
	if !bytes.Contains(data, []byte("/Count 2")) {
		t.Error("expected a two-page PDF")
	}
}

func TestPDFCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := PDF(ctx, sampleDocument(t)); err == nil {
		t.Fatal("PDF with a cancelled context succeeded")
	}
}

func TestImportBitmap(t *testing.T) {
	data := pngBytes(t)
	s, err := ImportBitmap(data, geom.Pt(5, 7))
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != stroke.KindImage || s.Image.W != 4 || s.Image.H != 4 {
		t.Fatalf("imported stroke = %v %dx%d, want 4x4 image", s.Kind, s.Image.W, s.Image.H)
	}
	want := geom.NewRect(5, 7, 9, 11)
	if s.Bounds() != want {
		t.Errorf("bounds = %v, want %v", s.Bounds(), want)
	}

	if _, err := ImportBitmap([]byte("not an image"), geom.Pt(0, 0)); err == nil {
		t.Fatal("ImportBitmap accepted garbage")
	}
}
