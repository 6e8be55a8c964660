// Package document owns the ordered stroke collection of a sketch: z-order,
// page layout, background, the spatial index and the undo/redo history.
//
// Thread safety: Document is single-writer. All mutations must happen on
// one logical owner thread; the render pipeline works on immutable stroke
// snapshots taken on that thread, so it never observes partial mutations.
package document

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/spatial"
	"github.com/gogpu/ink/stroke"
)

// Layout describes how strokes are arranged spatially. It affects only
// viewport-to-page mapping and export paging, never stroke storage.
type Layout uint8

const (
	// LayoutInfinite is an unbounded canvas in every direction.
	LayoutInfinite Layout = iota
	// LayoutFixedSize is a sequence of fixed-size pages.
	LayoutFixedSize
	// LayoutContinuousVertical is a fixed width with unbounded height.
	LayoutContinuousVertical
	// LayoutSemiInfinite is unbounded to the right and down only.
	LayoutSemiInfinite
)

// String returns the persisted name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutFixedSize:
		return "fixed-size"
	case LayoutContinuousVertical:
		return "continuous-vertical"
	case LayoutSemiInfinite:
		return "semi-infinite"
	case LayoutInfinite:
		return "infinite"
	default:
		return "unknown"
	}
}

// ParseLayout converts a persisted layout name back to its value.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "fixed-size":
		return LayoutFixedSize, nil
	case "continuous-vertical":
		return LayoutContinuousVertical, nil
	case "semi-infinite":
		return LayoutSemiInfinite, nil
	case "infinite":
		return LayoutInfinite, nil
	}
	return 0, fmt.Errorf("document: invalid layout name %q", s)
}

// Format is the page format for paged layouts, in document units.
type Format struct {
	Width  float64
	Height float64
	DPI    float64
}

// DefaultFormat returns an A4-proportioned page at 96 DPI.
func DefaultFormat() Format {
	return Format{Width: 794, Height: 1123, DPI: 96}
}

// PatternKind selects the background pattern.
type PatternKind uint8

const (
	// PatternNone paints a plain background color.
	PatternNone PatternKind = iota
	// PatternLines paints horizontal ruling.
	PatternLines
	// PatternGrid paints a square grid.
	PatternGrid
	// PatternDots paints a dot grid.
	PatternDots
)

// Background is the page background style.
type Background struct {
	Color        stroke.RGBA
	Pattern      PatternKind
	PatternSize  float64
	PatternColor stroke.RGBA
}

// DefaultBackground returns a plain white background.
func DefaultBackground() Background {
	return Background{
		Color:        stroke.RGBA{R: 255, G: 255, B: 255, A: 255},
		Pattern:      PatternNone,
		PatternSize:  32,
		PatternColor: stroke.RGBA{R: 220, G: 226, B: 234, A: 255},
	}
}

// Document is the ordered set of strokes plus layout, background and
// history. Z-order is the sequence order; stroke ids are unique.
type Document struct {
	layout     Layout
	format     Format
	background Background

	strokes map[uuid.UUID]*stroke.Stroke
	order   []uuid.UUID
	zrank   map[uuid.UUID]uint64
	zNext   uint64

	index      *spatial.Index
	generation uint64

	history history
}

// New returns an empty document with the default infinite layout.
func New() *Document {
	return &Document{
		layout:     LayoutInfinite,
		format:     DefaultFormat(),
		background: DefaultBackground(),
		strokes:    make(map[uuid.UUID]*stroke.Stroke),
		zrank:      make(map[uuid.UUID]uint64),
		index:      spatial.NewIndex(),
		history:    newHistory(DefaultHistoryDepth),
	}
}

// Layout returns the current layout mode.
func (d *Document) Layout() Layout { return d.layout }

// SetLayout changes the layout mode. Layout is not part of the undo
// history; it is a document property like the background.
func (d *Document) SetLayout(l Layout) {
	d.layout = l
	d.generation++
}

// Format returns the page format.
func (d *Document) Format() Format { return d.format }

// SetFormat changes the page format.
func (d *Document) SetFormat(f Format) {
	d.format = f
	d.generation++
}

// Background returns the background style.
func (d *Document) Background() Background { return d.background }

// SetBackground changes the background style.
func (d *Document) SetBackground(b Background) {
	d.background = b
	d.generation++
}

// Generation returns the monotonically increasing mutation counter used by
// the render pipeline to discard stale tiles.
func (d *Document) Generation() uint64 { return d.generation }

// Len returns the number of live strokes.
func (d *Document) Len() int { return len(d.order) }

// Stroke returns the live stroke with the given id.
func (d *Document) Stroke(id uuid.UUID) (*stroke.Stroke, bool) {
	s, ok := d.strokes[id]
	return s, ok
}

// Strokes returns all live strokes in z-order (back to front). The slice is
// fresh; the stroke pointers are shared immutable records.
func (d *Document) Strokes() []*stroke.Stroke {
	out := make([]*stroke.Stroke, len(d.order))
	for i, id := range d.order {
		out[i] = d.strokes[id]
	}
	return out
}

// Index exposes the spatial index for hit-testing and culling. Callers must
// not mutate it.
func (d *Document) Index() *spatial.Index { return d.index }

// Snapshot returns the strokes intersecting region in z-order. Because
// strokes are immutable once finalized, the returned pointers form a
// consistent snapshot that renders safely while the document mutates.
func (d *Document) Snapshot(region geom.Rect) []*stroke.Stroke {
	ids := d.index.QueryRegion(region)
	out := make([]*stroke.Stroke, 0, len(ids))
	for _, id := range ids {
		if s, ok := d.strokes[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ContentBounds returns the union of all stroke bounds, or the zero rect for
// an empty document.
func (d *Document) ContentBounds() geom.Rect {
	var out geom.Rect
	for i, id := range d.order {
		b := d.strokes[id].Bounds()
		if i == 0 {
			out = b
		} else {
			out = out.Union(b)
		}
	}
	return out
}

// PageRects returns the page regions of the document in page order, for
// paginated export and background rendering. For unpaged layouts the whole
// content bounds is a single page.
func (d *Document) PageRects() []geom.Rect {
	content := d.ContentBounds()
	if content.IsEmpty() {
		return []geom.Rect{geom.NewRect(0, 0, d.format.Width, d.format.Height)}
	}
	if d.layout != LayoutFixedSize {
		return []geom.Rect{content}
	}

	// Pages flow downward from the origin; content above it maps to
	// negative page indexes.
	h := d.format.Height
	first := int(math.Floor(content.Y0 / h))
	last := int(math.Ceil(content.Y1/h)) - 1
	if last < first {
		last = first
	}
	pages := make([]geom.Rect, 0, last-first+1)
	for k := first; k <= last; k++ {
		pages = append(pages, geom.NewRect(0, float64(k)*h, d.format.Width, float64(k+1)*h))
	}
	return pages
}
