package animation

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/inamate/shapekit/internal/shape"
	"github.com/inamate/shapekit/internal/typeid"
)

var (
	ErrUnknownTimeline = errors.New("unknown timeline")
	ErrAnimating       = errors.New("shape is animating")
)

// Clock is the time source animations are sampled against.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ActiveAnimation is one timeline playing on one shape.
type ActiveAnimation struct {
	TimelineID string
	// RunCount is how many cycles play before the animation expires. It
	// may be fractional; +Inf loops forever.
	RunCount  float64
	StartedAt time.Time
	// Schema is the resolved schema captured the first time the shape was
	// sampled. Only the first animation of a shape carries it.
	Schema shape.Schema
}

// PlayOptions targets a shape. A RunCount of zero or less plays forever.
type PlayOptions struct {
	ShapeID  string
	RunCount float64
}

// Controller owns compiled timelines and the animations playing on shapes.
// It is safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	timelines map[string]*CompiledTimeline
	active    map[string][]*ActiveAnimation

	clock     Clock
	logger    *slog.Logger
	shapeOpts []shape.Option
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(c Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(ctrl *Controller) { ctrl.logger = l }
}

// WithShapeOptions passes opts to every shape the controller builds.
func WithShapeOptions(opts ...shape.Option) Option {
	return func(ctrl *Controller) { ctrl.shapeOpts = append(ctrl.shapeOpts, opts...) }
}

func NewController(opts ...Option) *Controller {
	c := &Controller{
		timelines: make(map[string]*CompiledTimeline),
		active:    make(map[string][]*ActiveAnimation),
		clock:     SystemClock{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefineTimeline compiles tl and registers it under a fresh timeline id.
func (c *Controller) DefineTimeline(tl Timeline) (*TimelineControls, error) {
	compiled, err := Compile(tl)
	if err != nil {
		return nil, err
	}
	id := typeid.NewTimelineID()

	c.mu.Lock()
	c.timelines[id] = compiled
	c.mu.Unlock()

	c.logger.Debug("timeline defined", "timeline", id, "properties", compiled.PropertyNames())
	return &TimelineControls{id: id, ctrl: c}, nil
}

// Timeline returns a registered compiled timeline.
func (c *Controller) Timeline(id string) (*CompiledTimeline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tl, ok := c.timelines[id]
	return tl, ok
}

// Play starts timelineID on a shape. Playing the same timeline twice on a
// shape layers two animations.
func (c *Controller) Play(timelineID string, opts PlayOptions) error {
	runCount := opts.RunCount
	if runCount <= 0 {
		runCount = math.Inf(1)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.timelines[timelineID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTimeline, timelineID)
	}
	c.active[opts.ShapeID] = append(c.active[opts.ShapeID], &ActiveAnimation{
		TimelineID: timelineID,
		RunCount:   runCount,
		StartedAt:  c.clock.Now(),
	})
	c.logger.Debug("animation started", "shape", opts.ShapeID, "timeline", timelineID, "runCount", runCount)
	return nil
}

// Stop removes timelineID's animations from a shape immediately.
func (c *Controller) Stop(timelineID, shapeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(shapeID, func(a *ActiveAnimation) bool { return a.TimelineID == timelineID })
}

// Pause is not supported. It logs a warning and leaves the animation
// running.
func (c *Controller) Pause(timelineID, shapeID string) {
	c.logger.Warn("not implemented", "op", "pause", "timeline", timelineID, "shape", shapeID)
}

// Resume is not supported. It logs a warning and changes nothing.
func (c *Controller) Resume(timelineID, shapeID string) {
	c.logger.Warn("not implemented", "op", "resume", "timeline", timelineID, "shape", shapeID)
}

// Dispose unregisters a timeline and stops it on every shape.
func (c *Controller) Dispose(timelineID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.timelines, timelineID)
	for shapeID := range c.active {
		c.removeLocked(shapeID, func(a *ActiveAnimation) bool { return a.TimelineID == timelineID })
	}
}

// removeLocked drops the matching animations of a shape. The captured
// schema moves to the new first animation, and the shape's entry goes
// away once it has none left.
func (c *Controller) removeLocked(shapeID string, drop func(*ActiveAnimation) bool) {
	anims, ok := c.active[shapeID]
	if !ok {
		return
	}
	var snapshot shape.Schema
	if len(anims) > 0 {
		snapshot = anims[0].Schema
	}
	kept := make([]*ActiveAnimation, 0, len(anims))
	for _, a := range anims {
		if !drop(a) {
			kept = append(kept, a)
		}
	}
	c.setLocked(shapeID, kept, snapshot)
}

func (c *Controller) setLocked(shapeID string, anims []*ActiveAnimation, snapshot shape.Schema) {
	if len(anims) == 0 {
		delete(c.active, shapeID)
		return
	}
	if anims[0].Schema == nil {
		anims[0].Schema = snapshot
	}
	c.active[shapeID] = anims
}

// IsAnimating reports whether any animation is playing on a shape.
func (c *Controller) IsAnimating(shapeID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active[shapeID]) > 0
}

// Active returns copies of a shape's animations in registration order.
func (c *Controller) Active(shapeID string) []ActiveAnimation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ActiveAnimation, len(c.active[shapeID]))
	for i, a := range c.active[shapeID] {
		out[i] = *a
	}
	return out
}

// AnimatedSchema returns the live schema of a shape that has been sampled
// before. ok is false when nothing is playing on the shape or its schema
// has not been captured yet.
func (c *Controller) AnimatedSchema(shapeID string) (shape.Schema, bool, error) {
	return c.sample(shapeID, nil)
}

// runsElapsed is the number of cycles completed at now, fractional. It is
// zero during the delay.
func runsElapsed(tl *CompiledTimeline, a *ActiveAnimation, now time.Time) float64 {
	since := now.Sub(a.StartedAt)
	if since < tl.Delay {
		return 0
	}
	return float64(since-tl.Delay) / float64(tl.Duration)
}

// sample folds every active animation of a shape over its captured schema
// in registration order. base, when non-nil, is captured if the shape has
// no schema yet. Expired animations are removed as they are found.
func (c *Controller) sample(shapeID string, base shape.Schema) (shape.Schema, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	anims := c.active[shapeID]
	if len(anims) == 0 {
		return nil, false, nil
	}
	if anims[0].Schema == nil {
		if base == nil {
			c.logger.Warn("animation has no captured schema", "shape", shapeID)
			return nil, false, nil
		}
		anims[0].Schema = base
	}
	snapshot := anims[0].Schema
	kind := snapshot.Kind()
	now := c.clock.Now()

	out := snapshot
	applied := false
	kept := make([]*ActiveAnimation, 0, len(anims))
	for _, a := range anims {
		tl, ok := c.timelines[a.TimelineID]
		if !ok {
			return nil, false, fmt.Errorf("%w: %s is active on %s", ErrUnknownTimeline, a.TimelineID, shapeID)
		}
		if !tl.ValidFor(kind) {
			c.logger.Warn("timeline does not apply to shape kind", "shape", shapeID, "timeline", a.TimelineID, "kind", kind)
			kept = append(kept, a)
			continue
		}

		runs := runsElapsed(tl, a, now)
		if runs >= a.RunCount {
			c.logger.Debug("animation expired", "shape", shapeID, "timeline", a.TimelineID)
			continue
		}
		kept = append(kept, a)

		next, err := tl.Apply(out, math.Mod(runs, 1))
		if err != nil {
			return nil, false, fmt.Errorf("animate %s with %s: %w", shapeID, a.TimelineID, err)
		}
		out = next
		applied = true
	}
	c.setLocked(shapeID, kept, snapshot)

	if !applied {
		return nil, false, nil
	}
	return out, true, nil
}

// TimelineControls drives one defined timeline.
type TimelineControls struct {
	id   string
	ctrl *Controller
}

func (t *TimelineControls) ID() string { return t.id }

func (t *TimelineControls) Play(opts PlayOptions) error { return t.ctrl.Play(t.id, opts) }

func (t *TimelineControls) Stop(shapeID string) { t.ctrl.Stop(t.id, shapeID) }

func (t *TimelineControls) Pause(shapeID string) { t.ctrl.Pause(t.id, shapeID) }

func (t *TimelineControls) Resume(shapeID string) { t.ctrl.Resume(t.id, shapeID) }

// Dispose releases the timeline. Its controls are unusable afterwards.
func (t *TimelineControls) Dispose() { t.ctrl.Dispose(t.id) }
