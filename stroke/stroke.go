// Package stroke defines the typed stroke variants of the ink engine and
// the builder that turns raw pointer samples into finalized strokes.
//
// A Stroke is immutable once finalized: transforms and style edits return a
// new *Stroke carrying the same ID and an incremented Version. This is what
// makes undo/redo and concurrent tile rendering safe without locking.
package stroke

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/ink/geom"
)

// Sample is a single pointer input sample in document units. Pressure is
// normalized to [0, 1] by the input layer.
type Sample struct {
	Pos      geom.Point
	Pressure float64
	Time     time.Duration
}

// Kind discriminates the closed set of stroke variants. Consumers switch
// exhaustively over Kind; exactly one payload field of Stroke is non-nil.
type Kind uint8

const (
	// KindFreehand is a pressure-sensitive pen path.
	KindFreehand Kind = iota
	// KindShape is a parametric line, rectangle or ellipse.
	KindShape
	// KindTextured is a filled region with a seeded speckle texture.
	KindTextured
	// KindImage is an embedded bitmap anchored by a transform.
	KindImage
	// KindText is a text block anchored by a transform.
	KindText
)

// String returns a human-readable name for the stroke kind.
func (k Kind) String() string {
	switch k {
	case KindFreehand:
		return "freehand"
	case KindShape:
		return "shape"
	case KindTextured:
		return "textured"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Stroke is a single persisted drawable unit. The base geometry is immutable
// once finalized; edits produce new values via Transform and WithStyle.
type Stroke struct {
	// ID uniquely identifies the stroke within a document. It is stable
	// across transforms and style edits.
	ID uuid.UUID

	// Kind selects which payload field is populated.
	Kind Kind

	// Version increments on every derived copy. Two strokes with equal ID
	// and Version are geometrically identical.
	Version uint64

	// Style is the paint style.
	Style Style

	// Exactly one of the following is non-nil, matching Kind.
	Freehand *Freehand
	Shape    *Shape
	Textured *Textured
	Image    *Image
	Text     *Text

	bounds geom.Rect
}

// Bounds returns the cached bounding rect, including stroke width padding.
func (s *Stroke) Bounds() geom.Rect {
	return s.bounds
}

// Transform returns a new stroke with the affine applied. The receiver is
// not modified. Freehand geometry is restated by the pure affine; shapes
// keep their anchors and seed and compose the affine into their local
// transform so that rough re-expansion stays reproducible.
func (s *Stroke) Transform(a geom.Affine) *Stroke {
	out := *s
	out.Version = s.Version + 1
	switch s.Kind {
	case KindFreehand:
		fh := s.Freehand.transform(a)
		out.Freehand = &fh
		out.bounds = fh.bounds()
	case KindShape:
		sh := *s.Shape
		sh.Xform = a.Mul(sh.Xform)
		out.Shape = &sh
		out.bounds = sh.bounds(s.Style)
	case KindTextured:
		tx := s.Textured.transform(a)
		out.Textured = &tx
		out.bounds = tx.bounds()
	case KindImage:
		img := *s.Image
		img.Xform = a.Mul(img.Xform)
		out.Image = &img
		out.bounds = img.bounds()
	case KindText:
		txt := *s.Text
		txt.Xform = a.Mul(txt.Xform)
		out.Text = &txt
		out.bounds = txt.bounds()
	}
	return &out
}

// WithStyle returns a new stroke carrying the given style.
func (s *Stroke) WithStyle(style Style) *Stroke {
	out := *s
	out.Version = s.Version + 1
	out.Style = style
	if s.Kind == KindShape {
		out.bounds = s.Shape.bounds(style)
	}
	return &out
}

// HitTest reports whether pt lies on the stroke within tolerance tol.
// Freehand and shape strokes test against their actual outline; image and
// text strokes test against their transformed bounds.
func (s *Stroke) HitTest(pt geom.Point, tol float64) bool {
	if !s.bounds.Outset(tol).Contains(pt) {
		return false
	}
	switch s.Kind {
	case KindFreehand:
		out := s.Freehand.Outline
		return geom.PointInPolygon(pt, out) || geom.DistToPolyline(pt, out) <= tol
	case KindShape:
		for _, poly := range s.Shape.Outlines(s.Style) {
			if geom.PointInPolygon(pt, poly) || geom.DistToPolyline(pt, poly) <= tol {
				return true
			}
		}
		return false
	case KindTextured:
		return geom.PointInPolygon(pt, s.Textured.Region) ||
			geom.DistToPolyline(pt, s.Textured.Region) <= tol
	case KindImage, KindText:
		// Bounds check above is the precise test for box-like strokes.
		return true
	default:
		return false
	}
}

// Freehand is the payload of a pressure-sensitive pen stroke: a smoothed
// centerline with a per-segment width profile and its cached offset outline.
type Freehand struct {
	// Path is the smoothed variable-width centerline.
	Path geom.PenPath

	// Outline is the closed offset-curve outline, cached at finalize time
	// and restated by pure affine application on transform.
	Outline []geom.Point
}

func (f *Freehand) transform(a geom.Affine) Freehand {
	out := Freehand{
		Path:    f.Path.Transform(a),
		Outline: make([]geom.Point, len(f.Outline)),
	}
	for i, p := range f.Outline {
		out.Outline[i] = a.Apply(p)
	}
	return out
}

func (f *Freehand) bounds() geom.Rect {
	if len(f.Path) == 0 {
		return geom.BoundsOf(f.Outline)
	}
	if len(f.Outline) == 0 {
		return f.Path.Bounds()
	}
	return geom.BoundsOf(f.Outline).Union(f.Path.Bounds())
}

// Shape is the payload of a parametric shape stroke. Geometry is expanded
// from the anchors at render/export time, never re-derived from samples.
type Shape struct {
	Kind geom.ShapeKind

	// A and B are the anchor points in the shape's local space.
	A, B geom.Point

	// Xform accumulates transforms applied after the shape was drawn.
	Xform geom.Affine

	// Rough enables seeded hand-drawn perturbation when non-nil.
	Rough *geom.RoughOptions
}

// FillPolygon returns the closed interior polygon in document space when
// the style fills the shape, or nil. Rough shapes and open shapes have no
// fill polygon.
func (sh *Shape) FillPolygon(style Style) []geom.Point {
	if !style.Fill || !geom.ShapeClosed(sh.Kind) || sh.Rough != nil {
		return nil
	}
	pts := geom.FlattenPath(geom.ShapePath(sh.Kind, sh.A, sh.B), geom.FlattenTolerance)
	return sh.applyXform(pts)
}

// StrokeOutlines expands the shape's stroked boundary into one or more
// closed outline polygons in document space, honoring rough mode and the
// style width.
func (sh *Shape) StrokeOutlines(style Style) [][]geom.Point {
	hw := style.Width * 0.5
	var polys [][]geom.Point
	if sh.Rough != nil {
		for _, pass := range geom.RoughShapePath(sh.Kind, sh.A, sh.B, *sh.Rough) {
			if poly := geom.StrokePolyline(pass, hw, geom.FlattenTolerance); poly != nil {
				polys = append(polys, poly)
			}
		}
	} else {
		pts := geom.FlattenPath(geom.ShapePath(sh.Kind, sh.A, sh.B), geom.FlattenTolerance)
		if poly := geom.StrokePolyline(pts, hw, geom.FlattenTolerance); poly != nil {
			polys = append(polys, poly)
		}
	}
	for _, poly := range polys {
		sh.applyXform(poly)
	}
	return polys
}

// Outlines returns fill and stroke polygons together, the surface used by
// hit-testing.
func (sh *Shape) Outlines(style Style) [][]geom.Point {
	polys := sh.StrokeOutlines(style)
	if fill := sh.FillPolygon(style); fill != nil {
		polys = append(polys, fill)
	}
	return polys
}

// applyXform transforms pts in place and returns the slice.
func (sh *Shape) applyXform(pts []geom.Point) []geom.Point {
	if sh.Xform.IsIdentity() {
		return pts
	}
	for i, p := range pts {
		pts[i] = sh.Xform.Apply(p)
	}
	return pts
}

func (sh *Shape) bounds(style Style) geom.Rect {
	local := geom.RectFromPoints(sh.A, sh.B).Outset(style.Width*0.5 + sh.roughPad())
	return sh.Xform.TransformRect(local)
}

func (sh *Shape) roughPad() float64 {
	if sh.Rough == nil {
		return 0
	}
	// Jitter amplitude plus bowing headroom. Bowing displaces an edge
	// midpoint by up to Bowing times the edge length, so the pad scales
	// with the shape's longest edge.
	pad := sh.Rough.Roughness*2 + 1
	switch sh.Kind {
	case geom.ShapeLine:
		pad += sh.Rough.Bowing * sh.A.Distance(sh.B)
	case geom.ShapeRect:
		r := geom.RectFromPoints(sh.A, sh.B)
		pad += sh.Rough.Bowing * math.Max(r.Width(), r.Height())
	case geom.ShapeEllipse:
		// Ellipse passes jitter the sample points but are never bowed.
	}
	return pad
}

// Textured is the payload of a brush-like filled region. The speckle texture
// is regenerated from the seed at render time, never stored.
type Textured struct {
	// Region is the closed fill region outline.
	Region []geom.Point

	// Seed drives the deterministic speckle placement.
	Seed uint64

	// Spacing is the average distance between speckles in document units.
	Spacing float64
}

func (t *Textured) transform(a geom.Affine) Textured {
	out := Textured{
		Region:  make([]geom.Point, len(t.Region)),
		Seed:    t.Seed,
		Spacing: t.Spacing,
	}
	for i, p := range t.Region {
		out.Region[i] = a.Apply(p)
	}
	return out
}

func (t *Textured) bounds() geom.Rect {
	return geom.BoundsOf(t.Region)
}

// Image is the payload of an embedded bitmap stroke.
type Image struct {
	// Data is the original encoded image (PNG or JPEG bytes), kept
	// verbatim for lossless persistence.
	Data []byte

	// Format is the registered image format name ("png", "jpeg").
	Format string

	// W and H are the natural pixel dimensions, mapped 1:1 to document
	// units before Xform.
	W, H int

	// Xform places the natural-size image on the canvas.
	Xform geom.Affine

	// dec caches the decoded pixels. It is shared between derived
	// versions of the stroke, since Data never changes.
	dec *imageCache
}

func (im *Image) bounds() geom.Rect {
	return im.Xform.TransformRect(geom.NewRect(0, 0, float64(im.W), float64(im.H)))
}

// Text is the payload of a text block stroke.
type Text struct {
	// Text is the UTF-8 content; newlines separate lines.
	Text string

	// Size is the font size in document units.
	Size float64

	// W and H are the measured natural dimensions, cached at creation.
	W, H float64

	// Xform places the block on the canvas. The local origin is the
	// top-left corner of the block.
	Xform geom.Affine
}

func (tx *Text) bounds() geom.Rect {
	return tx.Xform.TransformRect(geom.NewRect(0, 0, tx.W, tx.H))
}
