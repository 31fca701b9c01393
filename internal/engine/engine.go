package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/inamate/shapekit/internal/animation"
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/document"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/shape"
)

var (
	ErrNoDocument      = errors.New("no document loaded")
	ErrUnknownShape    = errors.New("unknown shape")
	ErrUnknownTimeline = animation.ErrUnknownTimeline
)

// Engine owns a loaded document, its scene graph and the animations
// playing on it. Timelines are addressed by their document ids. It is safe
// for concurrent use.
type Engine struct {
	mu        sync.Mutex
	doc       *document.Document
	sg        *SceneGraph
	timelines map[string]*animation.TimelineControls
	selection []string
	frame     int64

	ctrl     *animation.Controller
	clock    animation.Clock
	logger   *slog.Logger
	measurer canvas.Measurer
	loader   *shape.ImageLoader
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c animation.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMeasurer sets the text measurer shapes and recorded frames use.
func WithMeasurer(m canvas.Measurer) Option {
	return func(e *Engine) { e.measurer = m }
}

func WithImageLoader(l *shape.ImageLoader) Option {
	return func(e *Engine) { e.loader = l }
}

// NewEngine creates an engine with no document loaded.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sg:        NewSceneGraph(),
		timelines: make(map[string]*animation.TimelineControls),
		clock:     animation.SystemClock{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.measurer == nil {
		e.measurer = canvas.DefaultMeasurer()
	}
	if e.loader == nil {
		e.loader = shape.DefaultImageLoader()
	}
	e.ctrl = animation.NewController(
		animation.WithClock(e.clock),
		animation.WithLogger(e.logger),
		animation.WithShapeOptions(shape.WithMeasurer(e.measurer), shape.WithImageLoader(e.loader)),
	)
	return e
}

// --- Commands ---

// LoadDocument replaces the current document. Every timeline is compiled
// and every shape built before anything is swapped, so a failed load leaves
// the previous document in place. The document's playback entries start
// immediately.
func (e *Engine) LoadDocument(doc *document.Document) error {
	if doc == nil {
		return ErrNoDocument
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	timelines := make(map[string]*animation.TimelineControls, len(doc.Timelines))
	discard := func() {
		for _, tc := range timelines {
			tc.Dispose()
		}
	}
	for _, def := range doc.Timelines {
		tl, err := def.Timeline()
		if err != nil {
			discard()
			return err
		}
		tc, err := e.ctrl.DefineTimeline(tl)
		if err != nil {
			discard()
			return fmt.Errorf("timeline %q: %w", def.ID, err)
		}
		timelines[def.ID] = tc
	}
	sg, err := BuildSceneGraph(doc, e.ctrl.Shape)
	if err != nil {
		discard()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tc := range e.timelines {
		tc.Dispose()
	}
	e.doc = doc
	e.sg = sg
	e.timelines = timelines
	e.selection = nil
	e.frame = 0

	for _, p := range doc.Playback {
		if err := timelines[p.Timeline].Play(animation.PlayOptions{ShapeID: p.Shape, RunCount: p.RunCount}); err != nil {
			return err
		}
	}
	e.logger.Info("document loaded",
		"scene", doc.Scene.Name, "shapes", sg.Len(), "timelines", len(timelines), "playing", len(doc.Playback))
	return nil
}

// LoadDocumentData decodes and loads a JSON or YAML document.
func (e *Engine) LoadDocumentData(data []byte, f document.Format) error {
	doc, err := document.Decode(data, f)
	if err != nil {
		return err
	}
	return e.LoadDocument(doc)
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument() error {
	return e.LoadDocument(document.NewSampleDocument())
}

// Play starts a document timeline on a shape. A runCount of zero or less
// loops forever.
func (e *Engine) Play(timelineID, shapeID string, runCount float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tc, err := e.lookupLocked(timelineID, shapeID)
	if err != nil {
		return err
	}
	return tc.Play(animation.PlayOptions{ShapeID: shapeID, RunCount: runCount})
}

// Stop removes a document timeline's animations from a shape.
func (e *Engine) Stop(timelineID, shapeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	tc, err := e.lookupLocked(timelineID, shapeID)
	if err != nil {
		return err
	}
	tc.Stop(shapeID)
	return nil
}

func (e *Engine) lookupLocked(timelineID, shapeID string) (*animation.TimelineControls, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	tc, ok := e.timelines[timelineID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimeline, timelineID)
	}
	if _, ok := e.sg.NodesByID[shapeID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shapeID)
	}
	return tc, nil
}

// SetSelection sets the selected shapes. Unknown IDs are dropped.
func (e *Engine) SetSelection(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = e.selection[:0]
	for _, id := range ids {
		if _, ok := e.sg.NodesByID[id]; ok {
			e.selection = append(e.selection, id)
		}
	}
}

// Preload fetches every bitmap the document references.
func (e *Engine) Preload(ctx context.Context) error {
	e.mu.Lock()
	var srcs []string
	if e.doc != nil {
		for _, n := range e.doc.Shapes {
			if img, ok := n.Schema.(shape.ImageSchema); ok && img.Src != "" {
				srcs = append(srcs, img.Src)
			}
		}
	}
	e.mu.Unlock()
	return e.loader.Preload(ctx, srcs...)
}

// --- Queries ---

// Document returns the loaded document. Callers must not modify it.
func (e *Engine) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Scene returns the current scene metadata.
func (e *Engine) Scene() (document.Scene, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return document.Scene{}, ErrNoDocument
	}
	return e.doc.Scene, nil
}

// Render draws the current state of the scene onto c.
func (e *Engine) Render(c canvas.Canvas) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return
	}
	DrawScene(e.sg, e.doc.Scene, c)
}

// RenderWhenReady draws the scene onto c once every bitmap it shows has
// settled.
func (e *Engine) RenderWhenReady(ctx context.Context, c canvas.Canvas) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return ErrNoDocument
	}
	return DrawSceneWhenReady(ctx, e.sg, e.doc.Scene, c)
}

// Frame records the current state of the scene as draw commands.
func (e *Engine) Frame() []canvas.Command {
	rec := canvas.NewRecorder(e.measurer)
	e.Render(rec)
	return rec.Commands()
}

// Tick advances the frame counter and records a frame.
func (e *Engine) Tick() (int64, []canvas.Command) {
	e.mu.Lock()
	e.frame++
	n := e.frame
	e.mu.Unlock()
	return n, e.Frame()
}

// Run calls onFrame with a recorded frame fps times a second until ctx is
// done.
func (e *Engine) Run(ctx context.Context, fps int, onFrame func(frame int64, cmds []canvas.Command)) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			if n, cmds, ok := e.safeTick(); ok {
				onFrame(n, cmds)
			}
		}
	}
}

// safeTick turns a sampling panic into a logged, skipped frame so a bad
// timeline cannot take the loop down.
func (e *Engine) safeTick() (n int64, cmds []canvas.Command, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("frame failed", "error", r)
			ok = false
		}
	}()
	n, cmds = e.Tick()
	return n, cmds, true
}

// HitTest returns the ID of the topmost shape at (x, y), or the empty
// string.
func (e *Engine) HitTest(x, y float64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return HitTest(e.sg, geometry.Coordinate{X: x, Y: y})
}

// Bounds returns the combined bounding box of the given shapes.
func (e *Engine) Bounds(ids []string) geometry.BoundingBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SelectionBounds(e.sg, ids)
}

// SelectionBounds returns the bounding box of the current selection.
func (e *Engine) SelectionBounds() geometry.BoundingBox {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SelectionBounds(e.sg, e.selection)
}

func (e *Engine) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selection...)
}

// Timelines lists the document's timeline IDs, sorted.
func (e *Engine) Timelines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.timelines))
	for id := range e.timelines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PlaybackState summarizes what is playing.
type PlaybackState struct {
	Frame     int64    `json:"frame"`
	Shapes    int      `json:"shapes"`
	Animating []string `json:"animating"`
}

func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := PlaybackState{Frame: e.frame, Shapes: e.sg.Len(), Animating: []string{}}
	for _, n := range e.sg.Nodes {
		if e.ctrl.IsAnimating(n.ID) {
			st.Animating = append(st.Animating, n.ID)
		}
	}
	return st
}
