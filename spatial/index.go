// Package spatial provides the R-tree index over stroke bounding boxes used
// for viewport culling and hit-testing.
//
// The index mirrors the document's live stroke set exactly: the document
// store updates it on every mutation. Point queries return candidates in
// reverse z-order (topmost first), since selection prefers the last-drawn
// overlapping stroke.
//
// Thread safety: Index is NOT safe for concurrent use. It is owned by the
// document's single writer; render snapshots are taken on that writer.
package spatial

import (
	"sort"

	"github.com/google/uuid"
	"github.com/tidwall/rtree"

	"github.com/gogpu/ink/geom"
)

type entry struct {
	bounds geom.Rect
	z      uint64
}

// Index is a dynamic R-tree over stroke bounds. Inserts and removes are
// incremental; the tree never needs a full rebuild.
type Index struct {
	tree    rtree.RTreeG[uuid.UUID]
	entries map[uuid.UUID]entry
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[uuid.UUID]entry)}
}

// Insert adds a stroke with its bounds and z-order rank. Inserting an id
// that is already present replaces its entry.
func (ix *Index) Insert(id uuid.UUID, bounds geom.Rect, z uint64) {
	if old, ok := ix.entries[id]; ok {
		ix.tree.Delete(rectMin(old.bounds), rectMax(old.bounds), id)
	}
	ix.entries[id] = entry{bounds: bounds, z: z}
	ix.tree.Insert(rectMin(bounds), rectMax(bounds), id)
}

// Update replaces the bounds of an existing stroke, keeping its z rank.
// Unknown ids are ignored.
func (ix *Index) Update(id uuid.UUID, bounds geom.Rect) {
	old, ok := ix.entries[id]
	if !ok {
		return
	}
	ix.tree.Delete(rectMin(old.bounds), rectMax(old.bounds), id)
	ix.entries[id] = entry{bounds: bounds, z: old.z}
	ix.tree.Insert(rectMin(bounds), rectMax(bounds), id)
}

// Remove deletes a stroke from the index. Unknown ids are ignored.
func (ix *Index) Remove(id uuid.UUID) {
	old, ok := ix.entries[id]
	if !ok {
		return
	}
	ix.tree.Delete(rectMin(old.bounds), rectMax(old.bounds), id)
	delete(ix.entries, id)
}

// Len returns the number of indexed strokes.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Contains reports whether id is indexed.
func (ix *Index) Contains(id uuid.UUID) bool {
	_, ok := ix.entries[id]
	return ok
}

// Bounds returns the indexed bounds of id.
func (ix *Index) Bounds(id uuid.UUID) (geom.Rect, bool) {
	e, ok := ix.entries[id]
	return e.bounds, ok
}

// IDs returns all indexed ids in ascending z-order.
func (ix *Index) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ix.entries))
	for id := range ix.entries {
		out = append(out, id)
	}
	ix.sortByZ(out, false)
	return out
}

// QueryRegion returns the ids of all strokes whose bounds intersect rect,
// in ascending z-order (back to front, the painting order).
func (ix *Index) QueryRegion(rect geom.Rect) []uuid.UUID {
	var out []uuid.UUID
	ix.tree.Search(rectMin(rect), rectMax(rect),
		func(_, _ [2]float64, id uuid.UUID) bool {
			out = append(out, id)
			return true
		})
	ix.sortByZ(out, false)
	return out
}

// QueryPoint returns the ids of all strokes whose bounds contain pt,
// expanded by tol, in descending z-order (topmost first).
func (ix *Index) QueryPoint(pt geom.Point, tol float64) []uuid.UUID {
	rect := geom.NewRect(pt.X-tol, pt.Y-tol, pt.X+tol, pt.Y+tol)
	out := ix.QueryRegion(rect)
	ix.sortByZ(out, true)
	return out
}

func (ix *Index) sortByZ(ids []uuid.UUID, descending bool) {
	sort.Slice(ids, func(i, j int) bool {
		zi := ix.entries[ids[i]].z
		zj := ix.entries[ids[j]].z
		if descending {
			return zi > zj
		}
		return zi < zj
	})
}

func rectMin(r geom.Rect) [2]float64 {
	return [2]float64{r.X0, r.Y0}
}

func rectMax(r geom.Rect) [2]float64 {
	return [2]float64{r.X1, r.Y1}
}
