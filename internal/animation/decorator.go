package animation

import (
	"context"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/shape"
	"github.com/inamate/shapekit/internal/text"
)

// animatedShape is a shape whose every operation is answered by a shape
// built from the live schema. While nothing plays on it, the static shape
// answers.
type animatedShape struct {
	ctrl   *Controller
	id     string
	schema shape.Schema
	static shape.Shape
}

// Shape builds s and wraps it so every operation reflects the animations
// playing on shapeID at the moment of the call.
func (c *Controller) Shape(shapeID string, s shape.Schema) (shape.Shape, error) {
	static, err := shape.New(s, c.shapeOpts...)
	if err != nil {
		return nil, err
	}
	return &animatedShape{
		ctrl:   c,
		id:     shapeID,
		schema: shape.ResolveDefaults(s),
		static: static,
	}, nil
}

// live panics on sampling errors: they mean a timeline was compiled
// against values the schema does not hold, and Shape has no error path.
func (a *animatedShape) live() shape.Shape {
	s, ok, err := a.ctrl.sample(a.id, a.schema)
	if err != nil {
		panic(err)
	}
	if !ok {
		return a.static
	}
	sh, err := shape.New(s, a.ctrl.shapeOpts...)
	if err != nil {
		a.ctrl.logger.Warn("animated schema is invalid, drawing static shape", "shape", a.id, "error", err)
		return a.static
	}
	return sh
}

func (a *animatedShape) Name() string { return a.static.Name() }

func (a *animatedShape) Draw(c canvas.Canvas) { a.live().Draw(c) }

func (a *animatedShape) DrawShape(c canvas.Canvas) { a.live().DrawShape(c) }

func (a *animatedShape) Hitbox(p geometry.Coordinate) bool { return a.live().Hitbox(p) }

func (a *animatedShape) ShapeHitbox(p geometry.Coordinate) bool { return a.live().ShapeHitbox(p) }

func (a *animatedShape) EfficientHitbox(b geometry.BoundingBox) bool {
	return a.live().EfficientHitbox(b)
}

func (a *animatedShape) BoundingBox() geometry.BoundingBox { return a.live().BoundingBox() }

func (a *animatedShape) CenterPoint() geometry.Coordinate { return a.live().CenterPoint() }

func (a *animatedShape) HasTextArea() bool { return a.live().HasTextArea() }

func (a *animatedShape) DrawTextArea(c canvas.Canvas) { a.live().DrawTextArea(c) }

func (a *animatedShape) DrawTextAreaMatte(c canvas.Canvas) { a.live().DrawTextAreaMatte(c) }

func (a *animatedShape) DrawText(c canvas.Canvas) { a.live().DrawText(c) }

func (a *animatedShape) TextHitbox(p geometry.Coordinate) bool { return a.live().TextHitbox(p) }

// StartTextAreaEdit refuses while an animation plays: the overlay could not
// track the moving text.
func (a *animatedShape) StartTextAreaEdit(c canvas.Canvas, host text.Host, onBlur text.OnBlur) (*text.EditSession, error) {
	if a.ctrl.IsAnimating(a.id) {
		a.ctrl.logger.Warn("shapes with active animations cannot spawn text inputs", "shape", a.id)
		return nil, ErrAnimating
	}
	return a.static.StartTextAreaEdit(c, host, onBlur)
}

// DrawWhenReady waits on the live shape's resources when it has any, and
// otherwise draws immediately.
func (a *animatedShape) DrawWhenReady(ctx context.Context, c canvas.Canvas) error {
	sh := a.live()
	if p, ok := sh.(shape.Pending); ok {
		return p.DrawWhenReady(ctx, c)
	}
	sh.Draw(c)
	return nil
}

var (
	_ shape.Shape   = (*animatedShape)(nil)
	_ shape.Pending = (*animatedShape)(nil)
)
