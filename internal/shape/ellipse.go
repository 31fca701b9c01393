package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

func NewEllipse(s EllipseSchema, opts ...Option) (Shape, error) {
	return buildEllipse(s, newConfig(opts))
}

// NewCircle builds an ellipse with equal radii, named "circle".
func NewCircle(s CircleSchema, opts ...Option) (Shape, error) {
	return buildCircle(s, newConfig(opts))
}

func buildEllipse(s EllipseSchema, cfg *config) (Shape, error) {
	b, err := newEllipse(KindEllipse, s, cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func buildCircle(s CircleSchema, cfg *config) (Shape, error) {
	b, err := newEllipse(KindCircle, EllipseSchema{
		At:        s.At,
		RadiusX:   s.Radius,
		RadiusY:   s.Radius,
		FillColor: s.FillColor,
		Stroke:    s.Stroke,
		TextArea:  s.TextArea,
	}, cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func newEllipse(name Kind, s EllipseSchema, cfg *config) (*base, error) {
	if s.RadiusX < 0 || s.RadiusY < 0 {
		return nil, invalid(name, "radius must be positive")
	}
	s = resolveEllipse(s)
	bbox := func() geometry.BoundingBox { return ellipseBoundingBox(s) }
	return &base{
		name:        name,
		drawShape:   drawEllipse(s),
		shapeHitbox: ellipseHitbox(s),
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text:        textProps(s.At, s.TextArea, cfg),
	}, nil
}

func drawEllipse(s EllipseSchema) func(canvas.Canvas) {
	return func(c canvas.Canvas) {
		c.BeginPath()
		c.Ellipse(s.At.X, s.At.Y, s.RadiusX, s.RadiusY, 0, 0, 2*math.Pi, false)
		c.SetFillStyle(canvas.Solid(s.FillColor))
		c.Fill()
		drawStroke(c, s.Stroke)
		c.ClosePath()
	}
}

// ellipseHitbox is the normalized distance test with both radii grown by
// half the stroke width.
func ellipseHitbox(s EllipseSchema) func(geometry.Coordinate) bool {
	half := strokeWidth(s.Stroke) / 2
	rx, ry := s.RadiusX+half, s.RadiusY+half
	return func(p geometry.Coordinate) bool {
		dx, dy := p.X-s.At.X, p.Y-s.At.Y
		return (dx*dx)/(rx*rx)+(dy*dy)/(ry*ry) <= 1
	}
}

func ellipseBoundingBox(s EllipseSchema) geometry.BoundingBox {
	sw := strokeWidth(s.Stroke)
	return geometry.NormalizeBoundingBox(geometry.BoundingBox{
		At: geometry.Coordinate{
			X: s.At.X - s.RadiusX - sw/2,
			Y: s.At.Y - s.RadiusY - sw/2,
		},
		Width:  s.RadiusX*2 + sw,
		Height: s.RadiusY*2 + sw,
	})
}
