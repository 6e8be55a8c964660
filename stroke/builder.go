package stroke

import (
	"github.com/google/uuid"

	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
)

// BuilderOptions configures freehand stroke construction.
type BuilderOptions struct {
	// MinSampleDistance coalesces samples closer than this distance, in
	// document units, bounding the point count of fast scribbles.
	MinSampleDistance float64

	// Width maps sample pressure to stroke width.
	Width WidthOptions

	// Tolerance is the offset-curve subdivision tolerance.
	Tolerance float64
}

// DefaultBuilderOptions returns the pen tool defaults.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		MinSampleDistance: 0.5,
		Width:             DefaultWidthOptions(),
		Tolerance:         geom.FlattenTolerance,
	}
}

// Builder accumulates pointer samples into an in-progress freehand stroke.
// No partial stroke is visible to the document until Finish is called.
//
// Thread safety: Builder is NOT safe for concurrent use. Sample ingestion
// runs on the owner thread and never blocks on rendering.
type Builder struct {
	style   Style
	opts    BuilderOptions
	samples []Sample
	dropped int
}

// NewBuilder begins a freehand stroke with the given style.
func NewBuilder(style Style, opts BuilderOptions) *Builder {
	if opts.MinSampleDistance <= 0 {
		opts.MinSampleDistance = DefaultBuilderOptions().MinSampleDistance
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = geom.FlattenTolerance
	}
	if opts.Width.MaxWidth <= 0 {
		opts.Width = DefaultWidthOptions()
	}
	return &Builder{style: style, opts: opts}
}

// Push appends a sample. Malformed samples (NaN or infinite coordinates)
// are dropped, and samples closer than the minimum distance to the previous
// one are coalesced into it. It reports whether the sample was kept as a
// new point.
func (b *Builder) Push(s Sample) bool {
	if !s.Pos.IsFinite() {
		b.dropped++
		ilog.Logger().Warn("dropping malformed input sample",
			"x", s.Pos.X, "y", s.Pos.Y)
		return false
	}
	if s.Pressure < 0 {
		s.Pressure = 0
	} else if s.Pressure > 1 {
		s.Pressure = 1
	}

	if n := len(b.samples); n > 0 {
		last := &b.samples[n-1]
		if s.Pos.Distance(last.Pos) < b.opts.MinSampleDistance {
			// Coalesce: keep the position, remember the strongest
			// pressure so quick presses are not lost.
			if s.Pressure > last.Pressure {
				last.Pressure = s.Pressure
			}
			return false
		}
	}
	b.samples = append(b.samples, s)
	return true
}

// Len returns the number of retained samples.
func (b *Builder) Len() int {
	return len(b.samples)
}

// Preview returns the current smoothed centerline for live display. The
// result is a fresh slice; the builder's state stays private.
func (b *Builder) Preview() []geom.Point {
	pts := b.positions()
	if len(pts) < 3 {
		return pts
	}
	return geom.FlattenPath(geom.CatmullRom(pts), b.opts.Tolerance)
}

// Finish finalizes the stroke: the samples are smoothed into a variable
// width centerline, the offset outline is computed and a fresh identifier
// is assigned. A builder with no usable samples returns nil.
func (b *Builder) Finish() *Stroke {
	pts := b.positions()
	if len(pts) == 0 {
		return nil
	}
	if len(pts) == 1 {
		// A dot: synthesize a minimal segment so the round caps form
		// a circle of the pressed width.
		pts = append(pts, pts[0].Add(geom.Vec2{X: 1e-3}))
		b.samples = append(b.samples, b.samples[0])
	}

	segs := geom.CatmullRom(pts)
	path := make(geom.PenPath, 0, len(segs))
	for i, seg := range segs {
		path = append(path, geom.WidthSegment{
			Curve: seg,
			W0:    b.halfwidth(i),
			W1:    b.halfwidth(i + 1),
		})
	}

	fh := &Freehand{
		Path:    path,
		Outline: path.Outline(b.opts.Tolerance),
	}
	s := &Stroke{
		ID:       uuid.New(),
		Kind:     KindFreehand,
		Style:    b.style,
		Freehand: fh,
		bounds:   fh.bounds(),
	}
	return s
}

func (b *Builder) positions() []geom.Point {
	pts := make([]geom.Point, len(b.samples))
	for i, s := range b.samples {
		pts[i] = s.Pos
	}
	return pts
}

func (b *Builder) halfwidth(i int) float64 {
	if i >= len(b.samples) {
		i = len(b.samples) - 1
	}
	return b.opts.Width.WidthFor(b.samples[i].Pressure) * 0.5
}

// NewShape creates a finalized parametric shape stroke. rough may be nil
// for a precise shape.
func NewShape(kind geom.ShapeKind, a, b geom.Point, style Style, rough *geom.RoughOptions) *Stroke {
	sh := &Shape{Kind: kind, A: a, B: b, Xform: geom.AffineIdentity(), Rough: rough}
	return &Stroke{
		ID:     uuid.New(),
		Kind:   KindShape,
		Style:  style,
		Shape:  sh,
		bounds: sh.bounds(style),
	}
}

// NewTextured creates a finalized textured fill stroke over a closed region.
func NewTextured(region []geom.Point, seed uint64, spacing float64, style Style) *Stroke {
	if spacing <= 0 {
		spacing = 4
	}
	tx := &Textured{Region: region, Seed: seed, Spacing: spacing}
	return &Stroke{
		ID:       uuid.New(),
		Kind:     KindTextured,
		Style:    style,
		Textured: tx,
		bounds:   tx.bounds(),
	}
}

// NewImage creates a finalized image stroke at natural size with its
// top-left corner at pos. Data must be an encoded PNG or JPEG.
func NewImage(data []byte, format string, w, h int, pos geom.Point) *Stroke {
	im := &Image{
		Data:   data,
		Format: format,
		W:      w,
		H:      h,
		Xform:  geom.AffineTranslate(geom.Vec2(pos)),
		dec:    &imageCache{},
	}
	return &Stroke{
		ID:     uuid.New(),
		Kind:   KindImage,
		Image:  im,
		Style:  DefaultStyle(),
		bounds: im.bounds(),
	}
}

// NewText creates a finalized text stroke with its top-left corner at pos.
// The natural block size is measured with the embedded face.
func NewText(text string, size float64, pos geom.Point, style Style) *Stroke {
	w, h := MeasureText(text, size)
	tx := &Text{
		Text:  text,
		Size:  size,
		W:     w,
		H:     h,
		Xform: geom.AffineTranslate(geom.Vec2(pos)),
	}
	return &Stroke{
		ID:     uuid.New(),
		Kind:   KindText,
		Style:  style,
		Text:   tx,
		bounds: tx.bounds(),
	}
}

// Rebuild recomputes the cached derived geometry (freehand outlines and
// bounding rects) after deserialization. Derived data is deterministic, so
// rebuilding never changes persisted semantics.
func Rebuild(s *Stroke) {
	switch s.Kind {
	case KindFreehand:
		if len(s.Freehand.Outline) == 0 {
			s.Freehand.Outline = s.Freehand.Path.Outline(geom.FlattenTolerance)
		}
		s.bounds = s.Freehand.bounds()
	case KindShape:
		s.bounds = s.Shape.bounds(s.Style)
	case KindTextured:
		s.bounds = s.Textured.bounds()
	case KindImage:
		if s.Image.dec == nil {
			s.Image.dec = &imageCache{}
		}
		s.bounds = s.Image.bounds()
	case KindText:
		if s.Text.W == 0 && s.Text.H == 0 {
			s.Text.W, s.Text.H = MeasureText(s.Text.Text, s.Text.Size)
		}
		s.bounds = s.Text.bounds()
	}
}
