package document

import (
	"github.com/google/uuid"

	"github.com/gogpu/ink/stroke"
)

// DefaultHistoryDepth bounds the undo stack. The oldest entries are dropped
// when the bound is exceeded.
const DefaultHistoryDepth = 128

// placed is a stroke together with its position in the z-order sequence and
// its spatial z rank, enough to restore it bit-identically on undo.
type placed struct {
	s     *stroke.Stroke
	index int
	z     uint64
}

// entry is an invertible operation record. Exactly one of the payload
// groups is used, matching kind. Because strokes are immutable, before and
// after hold plain references; applying an entry then its inverse restores
// the exact prior stroke values.
type entryKind uint8

const (
	entryInsert entryKind = iota
	entryRemove
	entryReplace // transform or style edit: before/after pairs
)

type entry struct {
	kind    entryKind
	strokes []placed        // insert/remove payload
	before  []*stroke.Stroke // replace payload, same order as after
	after   []*stroke.Stroke
}

// history is a bounded pair of stacks owned by the document instance.
// Any new mutation after an undo clears the redo stack, keeping redo
// entries exact inverses of the most recently undone operations.
type history struct {
	depth int
	undo  []entry
	redo  []entry
}

func newHistory(depth int) history {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return history{depth: depth}
}

// record pushes a new entry, clearing the redo stack and trimming the undo
// stack to its bound.
func (h *history) record(e entry) {
	h.redo = h.redo[:0]
	h.undo = append(h.undo, e)
	if len(h.undo) > h.depth {
		// Drop the oldest entry.
		copy(h.undo, h.undo[1:])
		h.undo = h.undo[:len(h.undo)-1]
	}
}

func (h *history) popUndo() (entry, bool) {
	if len(h.undo) == 0 {
		return entry{}, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return e, true
}

func (h *history) popRedo() (entry, bool) {
	if len(h.redo) == 0 {
		return entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return e, true
}

// CanUndo reports whether an undo step is available.
func (d *Document) CanUndo() bool { return len(d.history.undo) > 0 }

// CanRedo reports whether a redo step is available.
func (d *Document) CanRedo() bool { return len(d.history.redo) > 0 }

// placedOf captures the current placement of id for later restoration.
func (d *Document) placedOf(id uuid.UUID) placed {
	s := d.strokes[id]
	idx := -1
	for i, oid := range d.order {
		if oid == id {
			idx = i
			break
		}
	}
	return placed{s: s, index: idx, z: d.zrank[id]}
}
