package inkfile

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// ImportReport summarizes a best-effort foreign import: what was brought in
// and what had to be skipped, with one reason per skipped element.
type ImportReport struct {
	Pages   int
	Strokes int
	Texts   int
	Images  int
	Skipped []string
}

func (r *ImportReport) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

// Xournal++ document schema, the subset we read.
type xoppFile struct {
	XMLName xml.Name   `xml:"xournal"`
	Pages   []xoppPage `xml:"page"`
}

type xoppPage struct {
	Width      float64        `xml:"width,attr"`
	Height     float64        `xml:"height,attr"`
	Background xoppBackground `xml:"background"`
	Layers     []xoppLayer    `xml:"layer"`
}

type xoppBackground struct {
	Type  string `xml:"type,attr"`
	Color string `xml:"color,attr"`
	Style string `xml:"style,attr"`
}

type xoppLayer struct {
	Strokes []xoppStroke `xml:"stroke"`
	Texts   []xoppText   `xml:"text"`
	Images  []xoppImage  `xml:"image"`
}

type xoppStroke struct {
	Tool  string `xml:"tool,attr"`
	Color string `xml:"color,attr"`
	Width string `xml:"width,attr"`
	Data  string `xml:",chardata"`
}

type xoppText struct {
	Size  float64 `xml:"size,attr"`
	X     float64 `xml:"x,attr"`
	Y     float64 `xml:"y,attr"`
	Color string  `xml:"color,attr"`
	Data  string  `xml:",chardata"`
}

type xoppImage struct {
	Left   float64 `xml:"left,attr"`
	Top    float64 `xml:"top,attr"`
	Right  float64 `xml:"right,attr"`
	Bottom float64 `xml:"bottom,attr"`
	Data   string  `xml:",chardata"`
}

// xoppColors are the named palette colors Xournal++ writes instead of hex.
var xoppColors = map[string]stroke.RGBA{
	"black":      {A: 255},
	"blue":       {B: 255, A: 255},
	"red":        {R: 255, A: 255},
	"green":      {G: 128, A: 255},
	"gray":       {R: 128, G: 128, B: 128, A: 255},
	"lightblue":  {R: 173, G: 216, B: 230, A: 255},
	"lightgreen": {R: 144, G: 238, B: 144, A: 255},
	"magenta":    {R: 255, B: 255, A: 255},
	"orange":     {R: 255, G: 165, A: 255},
	"yellow":     {R: 255, G: 255, A: 255},
	"white":      {R: 255, G: 255, B: 255, A: 255},
}

// parseXoppColor accepts "#rrggbbaa" hex or a palette name.
func parseXoppColor(s string) (stroke.RGBA, error) {
	if c, ok := xoppColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 9 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return stroke.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		return stroke.RGBA{
			R: uint8(v >> 24),
			G: uint8(v >> 16),
			B: uint8(v >> 8),
			A: uint8(v),
		}, nil
	}
	return stroke.RGBA{}, fmt.Errorf("invalid color %q", s)
}

// ImportXopp reads a Xournal++ .xopp file into a new document, best effort.
// Pages become fixed-size pages stacked vertically. Elements that cannot be
// represented are skipped and listed in the report; only a structurally
// unreadable file is an error.
func ImportXopp(data []byte) (*document.Document, *ImportReport, error) {
	raw := data
	if zr, err := gzip.NewReader(bytes.NewReader(data)); err == nil {
		// .xopp is normally gzip-wrapped XML; plain XML also occurs.
		if body, err := io.ReadAll(zr); err == nil {
			raw = body
		}
		zr.Close()
	}

	var file xoppFile
	if err := xml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("inkfile: parsing xopp: %w", err)
	}
	if len(file.Pages) == 0 {
		return nil, nil, fmt.Errorf("inkfile: xopp file has no pages")
	}

	report := &ImportReport{Pages: len(file.Pages)}
	doc := document.New()
	doc.SetLayout(document.LayoutFixedSize)
	first := file.Pages[0]
	doc.SetFormat(document.Format{Width: first.Width, Height: first.Height, DPI: 72})
	doc.SetBackground(xoppBackgroundOf(first.Background, report))

	var yOff float64
	for pi, page := range file.Pages {
		for _, layer := range page.Layers {
			for _, xs := range layer.Strokes {
				s, err := importXoppStroke(xs, yOff)
				if err != nil {
					report.skip("page %d stroke: %v", pi+1, err)
					continue
				}
				if s == nil {
					report.skip("page %d: %s tool not supported", pi+1, xs.Tool)
					continue
				}
				doc.AdoptStrokes(s)
				report.Strokes++
			}
			for _, xt := range layer.Texts {
				text := strings.TrimSpace(xt.Data)
				if text == "" {
					continue
				}
				col, err := parseXoppColor(xt.Color)
				if err != nil {
					col = stroke.Black
				}
				style := stroke.DefaultStyle()
				style.Color = col
				doc.AdoptStrokes(stroke.NewText(text, xt.Size, geom.Pt(xt.X, xt.Y+yOff), style))
				report.Texts++
			}
			for _, xi := range layer.Images {
				s, err := importXoppImage(xi, yOff)
				if err != nil {
					report.skip("page %d image: %v", pi+1, err)
					continue
				}
				doc.AdoptStrokes(s)
				report.Images++
			}
		}
		yOff += page.Height
	}

	ilog.Logger().Info("imported xopp document",
		"pages", report.Pages, "strokes", report.Strokes,
		"texts", report.Texts, "images", report.Images,
		"skipped", len(report.Skipped))
	return doc, report, nil
}

func xoppBackgroundOf(xb xoppBackground, report *ImportReport) document.Background {
	bg := document.DefaultBackground()
	if xb.Color != "" {
		if col, err := parseXoppColor(xb.Color); err == nil {
			bg.Color = col
		}
	}
	switch xb.Style {
	case "lined", "ruled":
		bg.Pattern = document.PatternLines
	case "graph":
		bg.Pattern = document.PatternGrid
	case "dotted":
		bg.Pattern = document.PatternDots
	case "", "plain":
		bg.Pattern = document.PatternNone
	default:
		report.skip("background style %q not supported, using plain", xb.Style)
		bg.Pattern = document.PatternNone
	}
	return bg
}

// importXoppStroke converts a pen or highlighter stroke. The width attribute
// holds the nominal width, optionally followed by per-point widths, which
// map back to pressure against the nominal width.
func importXoppStroke(xs xoppStroke, yOff float64) (*stroke.Stroke, error) {
	switch xs.Tool {
	case "pen", "highlighter":
	default:
		return nil, nil
	}

	coords := strings.Fields(xs.Data)
	if len(coords) < 4 || len(coords)%2 != 0 {
		return nil, fmt.Errorf("invalid coordinate list of %d fields", len(coords))
	}
	widths := strings.Fields(xs.Width)
	if len(widths) == 0 {
		return nil, fmt.Errorf("missing width attribute")
	}
	nominal, err := strconv.ParseFloat(widths[0], 64)
	if err != nil || nominal <= 0 {
		return nil, fmt.Errorf("invalid width %q", widths[0])
	}

	col, err := parseXoppColor(xs.Color)
	if err != nil {
		return nil, err
	}
	if xs.Tool == "highlighter" {
		col.A = 128
	}

	pressured := len(widths) > 1
	wopts := stroke.WidthOptions{MinWidth: nominal, MaxWidth: nominal, Exponent: 1}
	if pressured {
		wopts.MinWidth = 0
	}
	b := stroke.NewBuilder(
		stroke.Style{Color: col, Width: nominal},
		stroke.BuilderOptions{MinSampleDistance: 0.1, Width: wopts, Tolerance: geom.FlattenTolerance},
	)
	for i := 0; i+1 < len(coords); i += 2 {
		x, errX := strconv.ParseFloat(coords[i], 64)
		y, errY := strconv.ParseFloat(coords[i+1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("invalid coordinate pair %q %q", coords[i], coords[i+1])
		}
		pressure := 1.0
		if pressured {
			// Per-point widths cover the segments, one fewer than points.
			wi := i/2 + 1
			if wi >= len(widths) {
				wi = len(widths) - 1
			}
			if w, err := strconv.ParseFloat(widths[wi], 64); err == nil {
				pressure = w / nominal
			}
		}
		b.Push(stroke.Sample{Pos: geom.Pt(x, y+yOff), Pressure: pressure})
	}
	s := b.Finish()
	if s == nil {
		return nil, fmt.Errorf("stroke collapsed to no samples")
	}
	return s, nil
}

// importXoppImage decodes the embedded base64 bitmap and fits it to the
// stored rectangle.
func importXoppImage(xi xoppImage, yOff float64) (*stroke.Stroke, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(xi.Data))
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	format, w, h, err := stroke.DecodeInfo(data)
	if err != nil {
		return nil, err
	}
	pos := geom.Pt(xi.Left, xi.Top+yOff)
	s := stroke.NewImage(data, format, w, h, pos)
	sx := (xi.Right - xi.Left) / float64(w)
	sy := (xi.Bottom - xi.Top) / float64(h)
	if sx > 0 && sy > 0 && (sx != 1 || sy != 1) {
		s = s.Transform(geom.AffineScaleAbout(sx, sy, pos))
	}
	return s, nil
}
