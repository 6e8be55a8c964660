package document

import (
	"github.com/google/uuid"

	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/internal/ilog"
	"github.com/gogpu/ink/stroke"
)

// InsertStrokes appends strokes at the top of the z-order and returns the
// regions the render pipeline must invalidate. Strokes whose id already
// exists in the document are skipped with a warning, preserving the id
// uniqueness invariant.
func (d *Document) InsertStrokes(strokes ...*stroke.Stroke) []geom.Rect {
	var inserted []placed
	var invalid []geom.Rect
	for _, s := range strokes {
		if s == nil {
			continue
		}
		if _, exists := d.strokes[s.ID]; exists {
			ilog.Logger().Warn("skipping insert of duplicate stroke id", "id", s.ID)
			continue
		}
		d.zNext++
		d.attach(s, len(d.order), d.zNext)
		inserted = append(inserted, placed{s: s, index: len(d.order) - 1, z: d.zNext})
		invalid = append(invalid, s.Bounds())
	}
	if len(inserted) == 0 {
		return nil
	}
	d.generation++
	d.history.record(entry{kind: entryInsert, strokes: inserted})
	return invalid
}

// AdoptStrokes appends strokes without recording a history entry or
// bumping the generation. It is used when materializing a freshly decoded
// document, which starts with an empty history.
func (d *Document) AdoptStrokes(strokes ...*stroke.Stroke) {
	for _, s := range strokes {
		if s == nil {
			continue
		}
		if _, exists := d.strokes[s.ID]; exists {
			ilog.Logger().Warn("skipping adoption of duplicate stroke id", "id", s.ID)
			continue
		}
		d.zNext++
		d.attach(s, len(d.order), d.zNext)
	}
}

// RemoveStrokes deletes the given strokes. Unknown ids are ignored.
func (d *Document) RemoveStrokes(ids ...uuid.UUID) []geom.Rect {
	var removed []placed
	var invalid []geom.Rect
	for _, id := range ids {
		s, ok := d.strokes[id]
		if !ok {
			continue
		}
		removed = append(removed, d.placedOf(id))
		invalid = append(invalid, s.Bounds())
		d.detach(id)
	}
	if len(removed) == 0 {
		return nil
	}
	d.generation++
	d.history.record(entry{kind: entryRemove, strokes: removed})
	return invalid
}

// TransformStrokes applies an affine transform to the given strokes,
// replacing them with new immutable versions. The invalidated regions are
// the union of old and new bounds per stroke.
func (d *Document) TransformStrokes(ids []uuid.UUID, a geom.Affine) []geom.Rect {
	var before, after []*stroke.Stroke
	var invalid []geom.Rect
	for _, id := range ids {
		s, ok := d.strokes[id]
		if !ok {
			continue
		}
		next := s.Transform(a)
		before = append(before, s)
		after = append(after, next)
		invalid = append(invalid, s.Bounds(), next.Bounds())
	}
	if len(after) == 0 {
		return nil
	}
	d.replaceAll(after)
	d.generation++
	d.history.record(entry{kind: entryReplace, before: before, after: after})
	return invalid
}

// SetStyle replaces the style of the given strokes with new versions.
func (d *Document) SetStyle(ids []uuid.UUID, style stroke.Style) []geom.Rect {
	var before, after []*stroke.Stroke
	var invalid []geom.Rect
	for _, id := range ids {
		s, ok := d.strokes[id]
		if !ok {
			continue
		}
		next := s.WithStyle(style)
		before = append(before, s)
		after = append(after, next)
		invalid = append(invalid, s.Bounds(), next.Bounds())
	}
	if len(after) == 0 {
		return nil
	}
	d.replaceAll(after)
	d.generation++
	d.history.record(entry{kind: entryReplace, before: before, after: after})
	return invalid
}

// Undo reverts the most recent mutation. It reports whether an entry was
// undone and the regions to invalidate.
func (d *Document) Undo() ([]geom.Rect, bool) {
	e, ok := d.history.popUndo()
	if !ok {
		return nil, false
	}
	d.generation++
	return d.applyInverse(e), true
}

// Redo reapplies the most recently undone mutation.
func (d *Document) Redo() ([]geom.Rect, bool) {
	e, ok := d.history.popRedo()
	if !ok {
		return nil, false
	}
	d.generation++
	return d.applyForward(e), true
}

// applyInverse plays an entry backwards.
func (d *Document) applyInverse(e entry) []geom.Rect {
	switch e.kind {
	case entryInsert:
		var invalid []geom.Rect
		for _, p := range e.strokes {
			invalid = append(invalid, p.s.Bounds())
			d.detach(p.s.ID)
		}
		return invalid
	case entryRemove:
		// Each removal was recorded against the already-shrunk sequence,
		// so the inverse re-attaches in reverse capture order.
		rev := make([]placed, len(e.strokes))
		for i, p := range e.strokes {
			rev[len(rev)-1-i] = p
		}
		return d.restore(rev)
	case entryReplace:
		return d.swapVersions(e.after, e.before)
	}
	return nil
}

// applyForward plays an entry forwards (redo).
func (d *Document) applyForward(e entry) []geom.Rect {
	switch e.kind {
	case entryInsert:
		return d.restore(e.strokes)
	case entryRemove:
		var invalid []geom.Rect
		for _, p := range e.strokes {
			invalid = append(invalid, p.s.Bounds())
			d.detach(p.s.ID)
		}
		return invalid
	case entryReplace:
		return d.swapVersions(e.before, e.after)
	}
	return nil
}

// restore re-attaches strokes at their recorded positions, replaying ps in
// the order given. Positions were captured sequentially, so the caller picks
// the replay direction that makes each recorded index valid again: capture
// order for attaches, reverse capture order for undoing detaches.
func (d *Document) restore(ps []placed) []geom.Rect {
	var invalid []geom.Rect
	for _, p := range ps {
		idx := p.index
		if idx < 0 || idx > len(d.order) {
			idx = len(d.order)
		}
		d.attach(p.s, idx, p.z)
		invalid = append(invalid, p.s.Bounds())
	}
	return invalid
}

// swapVersions replaces the from versions with the to versions.
func (d *Document) swapVersions(from, to []*stroke.Stroke) []geom.Rect {
	d.replaceAll(to)
	invalid := make([]geom.Rect, 0, len(from)+len(to))
	for _, s := range from {
		invalid = append(invalid, s.Bounds())
	}
	for _, s := range to {
		invalid = append(invalid, s.Bounds())
	}
	return invalid
}

// attach wires a stroke into the order, id map, z ranks and spatial index.
func (d *Document) attach(s *stroke.Stroke, index int, z uint64) {
	if index >= len(d.order) {
		d.order = append(d.order, s.ID)
	} else {
		d.order = append(d.order, uuid.UUID{})
		copy(d.order[index+1:], d.order[index:])
		d.order[index] = s.ID
	}
	d.strokes[s.ID] = s
	d.zrank[s.ID] = z
	if z > d.zNext {
		d.zNext = z
	}
	d.index.Insert(s.ID, s.Bounds(), z)
}

// detach removes a stroke from the order, id map, z ranks and spatial index.
func (d *Document) detach(id uuid.UUID) {
	delete(d.strokes, id)
	delete(d.zrank, id)
	d.index.Remove(id)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// replaceAll swaps in new versions of existing strokes, updating the index.
func (d *Document) replaceAll(versions []*stroke.Stroke) {
	for _, s := range versions {
		if _, ok := d.strokes[s.ID]; !ok {
			continue
		}
		d.strokes[s.ID] = s
		d.index.Update(s.ID, s.Bounds())
	}
}
