// Package selection implements stroke picking and interactive transforms:
// point hit-testing, rubber-band region selection and transform sessions
// that preview cheaply and commit as a single undoable edit.
//
// Thread safety: all operations run on the document owner thread.
package selection

import (
	"github.com/google/uuid"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/geom"
)

// Mode controls which strokes a region selection captures.
type Mode uint8

const (
	// ModeOverlap selects strokes whose bounds intersect the region.
	ModeOverlap Mode = iota
	// ModeContain selects only strokes entirely inside the region.
	ModeContain
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeOverlap:
		return "overlap"
	case ModeContain:
		return "contain"
	default:
		return "unknown"
	}
}

// Options configures a Selector.
type Options struct {
	// Mode is the region selection mode.
	Mode Mode

	// HitTolerance is the pick radius for point hit-testing, in document
	// units.
	HitTolerance float64
}

// DefaultOptions returns overlap selection with a 3-unit pick radius.
func DefaultOptions() Options {
	return Options{Mode: ModeOverlap, HitTolerance: 3}
}

// Selector picks strokes from a document.
type Selector struct {
	doc  *document.Document
	opts Options
}

// NewSelector creates a selector over doc.
func NewSelector(doc *document.Document, opts Options) *Selector {
	if opts.HitTolerance <= 0 {
		opts.HitTolerance = DefaultOptions().HitTolerance
	}
	return &Selector{doc: doc, opts: opts}
}

// HitTest returns the topmost stroke whose actual geometry lies within the
// pick radius of pt. The spatial index narrows the candidates; each is then
// tested against its real outline, so a point inside a stroke's bounding box
// but off its path does not hit.
func (sel *Selector) HitTest(pt geom.Point) (uuid.UUID, bool) {
	for _, id := range sel.doc.Index().QueryPoint(pt, sel.opts.HitTolerance) {
		s, ok := sel.doc.Stroke(id)
		if !ok {
			continue
		}
		if s.HitTest(pt, sel.opts.HitTolerance) {
			return id, true
		}
	}
	return uuid.UUID{}, false
}

// SelectRegion returns the strokes captured by a rubber-band region, in
// z-order. ModeOverlap keeps every stroke whose bounds intersect the region;
// ModeContain keeps only strokes entirely inside it.
func (sel *Selector) SelectRegion(region geom.Rect) []uuid.UUID {
	ids := sel.doc.Index().QueryRegion(region)
	if sel.opts.Mode == ModeOverlap {
		return ids
	}
	kept := ids[:0]
	for _, id := range ids {
		s, ok := sel.doc.Stroke(id)
		if !ok {
			continue
		}
		if region.ContainsRect(s.Bounds()) {
			kept = append(kept, id)
		}
	}
	return kept
}

// Session is an interactive transform over a fixed set of strokes. Updates
// only move the preview bounds; stroke geometry is recomputed once, at
// Commit, which records a single history entry.
type Session struct {
	doc     *document.Document
	ids     []uuid.UUID
	base    geom.Rect
	pending geom.Affine
	done    bool
}

// Begin starts a transform session over the given strokes. Unknown ids are
// dropped; a session over nothing returns nil.
func Begin(doc *document.Document, ids []uuid.UUID) *Session {
	var kept []uuid.UUID
	var base geom.Rect
	for _, id := range ids {
		s, ok := doc.Stroke(id)
		if !ok {
			continue
		}
		if len(kept) == 0 {
			base = s.Bounds()
		} else {
			base = base.Union(s.Bounds())
		}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return nil
	}
	return &Session{
		doc:     doc,
		ids:     kept,
		base:    base,
		pending: geom.AffineIdentity(),
	}
}

// IDs returns the strokes the session operates on.
func (ss *Session) IDs() []uuid.UUID {
	out := make([]uuid.UUID, len(ss.ids))
	copy(out, ss.ids)
	return out
}

// Update replaces the pending transform. Successive updates do not stack;
// each carries the full transform since Begin.
func (ss *Session) Update(a geom.Affine) {
	if ss.done {
		return
	}
	ss.pending = a
}

// PreviewBounds returns the bounds the selection would occupy under the
// pending transform. This is the only geometry the caller needs to draw
// selection handles during a drag.
func (ss *Session) PreviewBounds() geom.Rect {
	return ss.pending.TransformRect(ss.base)
}

// Commit applies the pending transform to the strokes as one history entry
// and returns the regions to invalidate. A session with an identity pending
// transform commits nothing.
func (ss *Session) Commit() []geom.Rect {
	if ss.done {
		return nil
	}
	ss.done = true
	if ss.pending.IsIdentity() {
		return nil
	}
	return ss.doc.TransformStrokes(ss.ids, ss.pending)
}

// Cancel abandons the session. Nothing was ever applied to the document, so
// there is nothing to roll back.
func (ss *Session) Cancel() {
	ss.done = true
}
