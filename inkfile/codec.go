package inkfile

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// The JSON schema types are deliberately separate from the engine types so
// the file format can stay stable while the engine evolves. Points encode as
// [x, y] arrays and affines as the 6-element coefficient array to keep files
// compact.

type ptJSON [2]float64

func toPt(p geom.Point) ptJSON     { return ptJSON{p.X, p.Y} }
func (p ptJSON) point() geom.Point { return geom.Pt(p[0], p[1]) }

func toPts(ps []geom.Point) []ptJSON {
	out := make([]ptJSON, len(ps))
	for i, p := range ps {
		out[i] = toPt(p)
	}
	return out
}

func fromPts(ps []ptJSON) []geom.Point {
	out := make([]geom.Point, len(ps))
	for i, p := range ps {
		out[i] = p.point()
	}
	return out
}

type colorJSON struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

func toColor(c stroke.RGBA) colorJSON   { return colorJSON(c) }
func (c colorJSON) color() stroke.RGBA { return stroke.RGBA(c) }

type styleJSON struct {
	Color     colorJSON `json:"color"`
	Width     float64   `json:"width"`
	Fill      bool      `json:"fill,omitempty"`
	FillColor colorJSON `json:"fill_color"`
}

func toStyle(s stroke.Style) styleJSON {
	return styleJSON{Color: toColor(s.Color), Width: s.Width, Fill: s.Fill, FillColor: toColor(s.FillColor)}
}

func (s styleJSON) style() stroke.Style {
	return stroke.Style{Color: s.Color.color(), Width: s.Width, Fill: s.Fill, FillColor: s.FillColor.color()}
}

type segJSON struct {
	C  [4]ptJSON `json:"c"`
	W0 float64   `json:"w0"`
	W1 float64   `json:"w1"`
}

type freehandJSON struct {
	Segments []segJSON `json:"segments"`
}

type roughJSON struct {
	Roughness float64 `json:"roughness"`
	Bowing    float64 `json:"bowing"`
	Seed      uint64  `json:"seed"`
	Passes    int     `json:"passes"`
}

type shapeJSON struct {
	Kind  string      `json:"kind"`
	A     ptJSON      `json:"a"`
	B     ptJSON      `json:"b"`
	Xform geom.Affine `json:"xform"`
	Rough *roughJSON  `json:"rough,omitempty"`
}

type texturedJSON struct {
	Region  []ptJSON `json:"region"`
	Seed    uint64   `json:"seed"`
	Spacing float64  `json:"spacing"`
}

type imageJSON struct {
	Data   []byte      `json:"data"`
	Format string      `json:"format"`
	W      int         `json:"w"`
	H      int         `json:"h"`
	Xform  geom.Affine `json:"xform"`
}

type textJSON struct {
	Text  string      `json:"text"`
	Size  float64     `json:"size"`
	W     float64     `json:"w"`
	H     float64     `json:"h"`
	Xform geom.Affine `json:"xform"`
}

type strokeJSON struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Style    styleJSON     `json:"style"`
	Freehand *freehandJSON `json:"freehand,omitempty"`
	Shape    *shapeJSON    `json:"shape,omitempty"`
	Textured *texturedJSON `json:"textured,omitempty"`
	Image    *imageJSON    `json:"image,omitempty"`
	Text     *textJSON     `json:"text,omitempty"`
}

type formatJSON struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	DPI    float64 `json:"dpi"`
}

// backgroundV2 carries patterns; backgroundV1 was the color alone.
type backgroundV2 struct {
	Color        colorJSON `json:"color"`
	Pattern      string    `json:"pattern"`
	PatternSize  float64   `json:"pattern_size"`
	PatternColor colorJSON `json:"pattern_color"`
}

type docV2 struct {
	Layout     string       `json:"layout"`
	Format     formatJSON   `json:"format"`
	Background backgroundV2 `json:"background"`
	Strokes    []strokeJSON `json:"strokes"`
}

type backgroundV1 struct {
	Color colorJSON `json:"color"`
}

type docV1 struct {
	Layout     string       `json:"layout"`
	Format     formatJSON   `json:"format"`
	Background backgroundV1 `json:"background"`
	Strokes    []strokeJSON `json:"strokes"`
}

func patternName(p document.PatternKind) string {
	switch p {
	case document.PatternLines:
		return "lines"
	case document.PatternGrid:
		return "grid"
	case document.PatternDots:
		return "dots"
	default:
		return "none"
	}
}

func parsePattern(s string) (document.PatternKind, error) {
	switch s {
	case "none":
		return document.PatternNone, nil
	case "lines":
		return document.PatternLines, nil
	case "grid":
		return document.PatternGrid, nil
	case "dots":
		return document.PatternDots, nil
	}
	return 0, fmt.Errorf("invalid background pattern %q", s)
}

func shapeName(k geom.ShapeKind) string { return k.String() }

func parseShapeKind(s string) (geom.ShapeKind, error) {
	switch s {
	case "line":
		return geom.ShapeLine, nil
	case "rect":
		return geom.ShapeRect, nil
	case "ellipse":
		return geom.ShapeEllipse, nil
	}
	return 0, fmt.Errorf("invalid shape kind %q", s)
}

func parseStrokeKind(s string) (stroke.Kind, error) {
	switch s {
	case "freehand":
		return stroke.KindFreehand, nil
	case "shape":
		return stroke.KindShape, nil
	case "textured":
		return stroke.KindTextured, nil
	case "image":
		return stroke.KindImage, nil
	case "text":
		return stroke.KindText, nil
	}
	return 0, fmt.Errorf("invalid stroke kind %q", s)
}

// encodeStroke converts an engine stroke to its schema form. Derived data
// (outlines, bounds, decoded pixels) is never persisted; decode recomputes
// it, and determinism of the geometry kernel guarantees identical results.
func encodeStroke(s *stroke.Stroke) strokeJSON {
	out := strokeJSON{
		ID:    s.ID.String(),
		Kind:  s.Kind.String(),
		Style: toStyle(s.Style),
	}
	switch s.Kind {
	case stroke.KindFreehand:
		segs := make([]segJSON, len(s.Freehand.Path))
		for i, seg := range s.Freehand.Path {
			segs[i] = segJSON{
				C:  [4]ptJSON{toPt(seg.Curve.P0), toPt(seg.Curve.P1), toPt(seg.Curve.P2), toPt(seg.Curve.P3)},
				W0: seg.W0,
				W1: seg.W1,
			}
		}
		out.Freehand = &freehandJSON{Segments: segs}
	case stroke.KindShape:
		sh := &shapeJSON{
			Kind:  shapeName(s.Shape.Kind),
			A:     toPt(s.Shape.A),
			B:     toPt(s.Shape.B),
			Xform: s.Shape.Xform,
		}
		if r := s.Shape.Rough; r != nil {
			sh.Rough = &roughJSON{Roughness: r.Roughness, Bowing: r.Bowing, Seed: r.Seed, Passes: r.Passes}
		}
		out.Shape = sh
	case stroke.KindTextured:
		out.Textured = &texturedJSON{
			Region:  toPts(s.Textured.Region),
			Seed:    s.Textured.Seed,
			Spacing: s.Textured.Spacing,
		}
	case stroke.KindImage:
		out.Image = &imageJSON{
			Data:   s.Image.Data,
			Format: s.Image.Format,
			W:      s.Image.W,
			H:      s.Image.H,
			Xform:  s.Image.Xform,
		}
	case stroke.KindText:
		out.Text = &textJSON{
			Text:  s.Text.Text,
			Size:  s.Text.Size,
			W:     s.Text.W,
			H:     s.Text.H,
			Xform: s.Text.Xform,
		}
	}
	return out
}

// decodeStroke reconstructs an engine stroke and rebuilds its derived
// geometry.
func decodeStroke(js strokeJSON) (*stroke.Stroke, error) {
	id, err := uuid.Parse(js.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid stroke id %q: %w", js.ID, err)
	}
	kind, err := parseStrokeKind(js.Kind)
	if err != nil {
		return nil, err
	}

	s := &stroke.Stroke{ID: id, Kind: kind, Style: js.Style.style()}
	switch kind {
	case stroke.KindFreehand:
		if js.Freehand == nil {
			return nil, fmt.Errorf("stroke %s: missing freehand payload", js.ID)
		}
		path := make(geom.PenPath, len(js.Freehand.Segments))
		for i, seg := range js.Freehand.Segments {
			path[i] = geom.WidthSegment{
				Curve: geom.CubicBez{
					P0: seg.C[0].point(), P1: seg.C[1].point(),
					P2: seg.C[2].point(), P3: seg.C[3].point(),
				},
				W0: seg.W0,
				W1: seg.W1,
			}
		}
		s.Freehand = &stroke.Freehand{Path: path}
	case stroke.KindShape:
		if js.Shape == nil {
			return nil, fmt.Errorf("stroke %s: missing shape payload", js.ID)
		}
		sk, err := parseShapeKind(js.Shape.Kind)
		if err != nil {
			return nil, fmt.Errorf("stroke %s: %w", js.ID, err)
		}
		sh := &stroke.Shape{Kind: sk, A: js.Shape.A.point(), B: js.Shape.B.point(), Xform: js.Shape.Xform}
		if r := js.Shape.Rough; r != nil {
			sh.Rough = &geom.RoughOptions{Roughness: r.Roughness, Bowing: r.Bowing, Seed: r.Seed, Passes: r.Passes}
		}
		s.Shape = sh
	case stroke.KindTextured:
		if js.Textured == nil {
			return nil, fmt.Errorf("stroke %s: missing textured payload", js.ID)
		}
		s.Textured = &stroke.Textured{
			Region:  fromPts(js.Textured.Region),
			Seed:    js.Textured.Seed,
			Spacing: js.Textured.Spacing,
		}
	case stroke.KindImage:
		if js.Image == nil {
			return nil, fmt.Errorf("stroke %s: missing image payload", js.ID)
		}
		s.Image = &stroke.Image{
			Data:   js.Image.Data,
			Format: js.Image.Format,
			W:      js.Image.W,
			H:      js.Image.H,
			Xform:  js.Image.Xform,
		}
	case stroke.KindText:
		if js.Text == nil {
			return nil, fmt.Errorf("stroke %s: missing text payload", js.ID)
		}
		s.Text = &stroke.Text{
			Text:  js.Text.Text,
			Size:  js.Text.Size,
			W:     js.Text.W,
			H:     js.Text.H,
			Xform: js.Text.Xform,
		}
	}
	stroke.Rebuild(s)
	return s, nil
}

func encodeStrokes(doc *document.Document) []strokeJSON {
	live := doc.Strokes()
	out := make([]strokeJSON, len(live))
	for i, s := range live {
		out[i] = encodeStroke(s)
	}
	return out
}

func marshalV2(doc *document.Document) ([]byte, error) {
	bg := doc.Background()
	return json.Marshal(docV2{
		Layout: doc.Layout().String(),
		Format: formatJSON(doc.Format()),
		Background: backgroundV2{
			Color:        toColor(bg.Color),
			Pattern:      patternName(bg.Pattern),
			PatternSize:  bg.PatternSize,
			PatternColor: toColor(bg.PatternColor),
		},
		Strokes: encodeStrokes(doc),
	})
}

// marshalV1 writes the initial format: patterns and rough options do not
// exist there and are dropped, each drop reported as a warning.
func marshalV1(doc *document.Document) ([]byte, []string, error) {
	var warnings []string
	bg := doc.Background()
	if bg.Pattern != document.PatternNone {
		warnings = append(warnings,
			fmt.Sprintf("background pattern %q dropped", patternName(bg.Pattern)))
		ilog.Logger().Warn("downgrade to v1 drops the background pattern",
			"pattern", patternName(bg.Pattern))
	}
	strokes := encodeStrokes(doc)
	dropped := 0
	for i := range strokes {
		if strokes[i].Shape != nil && strokes[i].Shape.Rough != nil {
			strokes[i].Shape.Rough = nil
			dropped++
		}
	}
	if dropped > 0 {
		warnings = append(warnings,
			fmt.Sprintf("rough options dropped from %d shape stroke(s)", dropped))
		ilog.Logger().Warn("downgrade to v1 drops rough shape options", "strokes", dropped)
	}
	body, err := json.Marshal(docV1{
		Layout:     doc.Layout().String(),
		Format:     formatJSON(doc.Format()),
		Background: backgroundV1{Color: toColor(bg.Color)},
		Strokes:    strokes,
	})
	return body, warnings, err
}

// materialize builds a live document from decoded parts. Adopted strokes do
// not enter the history: a freshly loaded document has nothing to undo.
func materialize(layout string, format formatJSON, bg document.Background, strokes []strokeJSON, version uint32) (*document.Document, error) {
	lay, err := document.ParseLayout(layout)
	if err != nil {
		return nil, &FormatError{Version: version, Reason: "invalid document", Err: err}
	}
	doc := document.New()
	doc.SetLayout(lay)
	doc.SetFormat(document.Format(format))
	doc.SetBackground(bg)
	for _, js := range strokes {
		s, err := decodeStroke(js)
		if err != nil {
			return nil, &FormatError{Version: version, Reason: "invalid stroke", Err: err}
		}
		doc.AdoptStrokes(s)
	}
	return doc, nil
}

func unmarshalV2(body []byte) (*document.Document, error) {
	var d docV2
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, &FormatError{Version: VersionPatterns, Reason: "malformed JSON body", Err: err}
	}
	pattern, err := parsePattern(d.Background.Pattern)
	if err != nil {
		return nil, &FormatError{Version: VersionPatterns, Reason: "invalid document", Err: err}
	}
	bg := document.Background{
		Color:        d.Background.Color.color(),
		Pattern:      pattern,
		PatternSize:  d.Background.PatternSize,
		PatternColor: d.Background.PatternColor.color(),
	}
	return materialize(d.Layout, d.Format, bg, d.Strokes, VersionPatterns)
}

// unmarshalV1 decodes the initial format and upgrades it: the background
// keeps its color and gains the default (disabled) pattern fields.
func unmarshalV1(body []byte) (*document.Document, error) {
	var d docV1
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, &FormatError{Version: VersionInitial, Reason: "malformed JSON body", Err: err}
	}
	ilog.Logger().Info("upgrading v1 document in memory")
	bg := document.DefaultBackground()
	bg.Color = d.Background.Color.color()
	bg.Pattern = document.PatternNone
	return materialize(d.Layout, d.Format, bg, d.Strokes, VersionInitial)
}
