// Package ink is a resolution-independent sketching and annotation engine.
//
// # Overview
//
// An ink document is an ordered collection of typed strokes: pressure
// sensitive pen paths, parametric shapes (optionally in a hand-drawn rough
// style), textured fills, embedded bitmaps and text blocks. The engine
// covers the full lifecycle: input capture and smoothing, spatially indexed
// storage with undo/redo, parallel tiled rasterization, selection and
// transforms, a versioned file format and SVG/PNG/PDF export.
//
// # Quick start
//
//	e := ink.New(ink.DefaultOptions())
//	defer e.Close()
//
//	b := e.BeginStroke(stroke.DefaultStyle())
//	b.Push(stroke.Sample{Pos: geom.Pt(10, 10), Pressure: 0.7})
//	b.Push(stroke.Sample{Pos: geom.Pt(60, 40), Pressure: 0.9})
//	e.FinishStroke(b)
//
//	frame := e.RenderViewport(ctx, geom.NewRect(0, 0, 800, 600), 1.0)
//	<-frame.Done
//
// # Threading model
//
// The engine is single-writer: all mutating calls and viewport requests
// happen on one logical owner goroutine. Rasterization is parallel
// internally; workers only ever see immutable stroke snapshots, and a
// generation counter guarantees no stale tile is ever presented after a
// mutation.
package ink

import (
	"context"

	"github.com/google/uuid"

	"github.com/gogpu/ink/document"
	"github.com/gogpu/ink/export"
	"github.com/gogpu/ink/geom"
	"github.com/gogpu/ink/inkfile"
	"github.com/gogpu/ink/render"
	"github.com/gogpu/ink/selection"
	"github.com/gogpu/ink/stroke"
)

// Options configures an Engine.
type Options struct {
	// RenderWorkers is the rasterization worker count; zero uses
	// GOMAXPROCS.
	RenderWorkers int

	// Selection configures hit-testing and region selection.
	Selection selection.Options

	// Builder configures freehand stroke construction.
	Builder stroke.BuilderOptions
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		Selection: selection.DefaultOptions(),
		Builder:   stroke.DefaultBuilderOptions(),
	}
}

// Engine owns a document and its render pipeline and exposes the
// tool-facing operations: drawing, selecting, transforming, undo/redo,
// rendering, persistence and export.
//
// Thread safety: Engine is single-writer; see the package documentation.
type Engine struct {
	doc  *document.Document
	pipe *render.Pipeline
	sel  *selection.Selector
	opts Options
}

// New creates an engine over an empty document.
func New(opts Options) *Engine {
	return FromDocument(document.New(), opts)
}

// FromDocument creates an engine over an existing document, typically one
// produced by inkfile.Decode or inkfile.ImportXopp.
func FromDocument(doc *document.Document, opts Options) *Engine {
	return &Engine{
		doc:  doc,
		pipe: render.NewPipeline(doc, render.Options{Workers: opts.RenderWorkers}),
		sel:  selection.NewSelector(doc, opts.Selection),
		opts: opts,
	}
}

// Open loads a native document file into a new engine.
func Open(path string, opts Options) (*Engine, error) {
	doc, err := inkfile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, opts), nil
}

// Close stops the render workers. The document remains usable for reads.
func (e *Engine) Close() {
	e.pipe.Close()
}

// Document exposes the underlying document for direct reads.
func (e *Engine) Document() *document.Document { return e.doc }

// Save writes the document to path atomically in the native format.
func (e *Engine) Save(path string) error {
	return inkfile.SaveFile(path, e.doc)
}

// BeginStroke starts capturing a freehand stroke. The in-progress stroke is
// invisible to the document and the renderer until FinishStroke.
func (e *Engine) BeginStroke(style stroke.Style) *stroke.Builder {
	return stroke.NewBuilder(style, e.opts.Builder)
}

// FinishStroke finalizes a builder and inserts the result. It returns the
// inserted stroke, or nil if the builder had no usable samples.
func (e *Engine) FinishStroke(b *stroke.Builder) *stroke.Stroke {
	s := b.Finish()
	if s == nil {
		return nil
	}
	e.InsertStrokes(s)
	return s
}

// InsertStrokes adds finalized strokes at the top of the z-order.
func (e *Engine) InsertStrokes(strokes ...*stroke.Stroke) {
	e.pipe.Invalidate(e.doc.InsertStrokes(strokes...))
}

// RemoveStrokes deletes strokes by id. Unknown ids are ignored.
func (e *Engine) RemoveStrokes(ids ...uuid.UUID) {
	e.pipe.Invalidate(e.doc.RemoveStrokes(ids...))
}

// TransformStrokes applies an affine transform to the given strokes as one
// undoable edit.
func (e *Engine) TransformStrokes(ids []uuid.UUID, a geom.Affine) {
	e.pipe.Invalidate(e.doc.TransformStrokes(ids, a))
}

// SetStyle restyles the given strokes as one undoable edit.
func (e *Engine) SetStyle(ids []uuid.UUID, style stroke.Style) {
	e.pipe.Invalidate(e.doc.SetStyle(ids, style))
}

// SetBackground replaces the background and repaints everything.
func (e *Engine) SetBackground(bg document.Background) {
	e.doc.SetBackground(bg)
	e.pipe.InvalidateAll()
}

// Undo reverts the most recent edit. It reports whether anything was undone.
func (e *Engine) Undo() bool {
	invalid, ok := e.doc.Undo()
	if ok {
		e.pipe.Invalidate(invalid)
	}
	return ok
}

// Redo reapplies the most recently undone edit.
func (e *Engine) Redo() bool {
	invalid, ok := e.doc.Redo()
	if ok {
		e.pipe.Invalidate(invalid)
	}
	return ok
}

// HitTest returns the topmost stroke at pt, if any.
func (e *Engine) HitTest(pt geom.Point) (uuid.UUID, bool) {
	return e.sel.HitTest(pt)
}

// SelectRegion returns the strokes captured by a rubber-band region.
func (e *Engine) SelectRegion(region geom.Rect) []uuid.UUID {
	return e.sel.SelectRegion(region)
}

// BeginTransform starts an interactive transform session over the given
// strokes. Commit the session through CommitTransform so the affected tiles
// repaint.
func (e *Engine) BeginTransform(ids []uuid.UUID) *selection.Session {
	return selection.Begin(e.doc, ids)
}

// CommitTransform applies a transform session and repaints its tiles.
func (e *Engine) CommitTransform(ss *selection.Session) {
	if ss == nil {
		return
	}
	e.pipe.Invalidate(ss.Commit())
}

// CancelTransform discards a transform session without touching the document.
func (e *Engine) CancelTransform(ss *selection.Session) {
	if ss == nil {
		return
	}
	ss.Cancel()
}

// RenderViewport returns the valid tiles covering view at zoom and schedules
// rasterization of the rest; see render.Pipeline.
func (e *Engine) RenderViewport(ctx context.Context, view geom.Rect, zoom float64) render.Frame {
	return e.pipe.RenderViewport(ctx, view, zoom)
}

// ExportSVG renders the region (or the whole content, if empty) as SVG.
func (e *Engine) ExportSVG(region geom.Rect) ([]byte, error) {
	return export.SVG(e.doc, region)
}

// ExportPNG rasterizes the region (or the whole content, if empty) to PNG.
func (e *Engine) ExportPNG(ctx context.Context, region geom.Rect, zoom float64) ([]byte, error) {
	return export.PNG(ctx, e.doc, region, zoom)
}

// ExportPDF writes the document as a paginated vector PDF.
func (e *Engine) ExportPDF(ctx context.Context) ([]byte, error) {
	return export.PDF(ctx, e.doc)
}

// ImportBitmap inserts encoded PNG or JPEG bytes as an image stroke
// anchored at pos.
func (e *Engine) ImportBitmap(data []byte, pos geom.Point) (*stroke.Stroke, error) {
	s, err := export.ImportBitmap(data, pos)
	if err != nil {
		return nil, err
	}
	e.InsertStrokes(s)
	return s, nil
}
