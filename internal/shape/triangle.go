package shape

import (
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

func NewTriangle(s TriangleSchema, opts ...Option) (Shape, error) {
	return buildTriangle(s, newConfig(opts))
}

func buildTriangle(s TriangleSchema, cfg *config) (Shape, error) {
	s = resolveTriangle(s)
	bbox := func() geometry.BoundingBox { return triangleBoundingBox(s) }
	return &base{
		name:        KindTriangle,
		drawShape:   drawTriangle(s),
		shapeHitbox: triangleHitbox(s),
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text:        textProps(geometry.CenterPoint(bbox()), s.TextArea, cfg),
	}, nil
}

func drawTriangle(s TriangleSchema) func(canvas.Canvas) {
	return func(c canvas.Canvas) {
		c.BeginPath()
		c.MoveTo(s.PointA.X, s.PointA.Y)
		c.LineTo(s.PointB.X, s.PointB.Y)
		c.LineTo(s.PointC.X, s.PointC.Y)
		if len(s.FillGradient) >= 2 {
			mid := geometry.Coordinate{
				X: (s.PointB.X + s.PointC.X) / 2,
				Y: (s.PointB.Y + s.PointC.Y) / 2,
			}
			c.SetFillStyle(canvas.Linear(mid, s.PointA, s.FillGradient))
		} else {
			c.SetFillStyle(canvas.Solid(s.FillColor))
		}
		c.Fill()
		c.ClosePath()
		drawStroke(c, s.Stroke)
	}
}

// triangleHitbox tests barycentric coordinates, then the stroked edges.
func triangleHitbox(s TriangleSchema) func(geometry.Coordinate) bool {
	a, b, cc := s.PointA, s.PointB, s.PointC
	area := 0.5 * (-b.Y*cc.X + a.Y*(-b.X+cc.X) + a.X*(b.Y-cc.Y) + b.X*cc.Y)
	return func(p geometry.Coordinate) bool {
		sc := 1 / (2 * area) * (a.Y*cc.X - a.X*cc.Y + (cc.Y-a.Y)*p.X + (a.X-cc.X)*p.Y)
		tc := 1 / (2 * area) * (a.X*b.Y - a.Y*b.X + (a.Y-b.Y)*p.X + (b.X-a.X)*p.Y)
		if sc > 0 && tc > 0 && 1-sc-tc > 0 {
			return true
		}
		if s.Stroke == nil {
			return false
		}
		lw := s.Stroke.LineWidth
		return geometry.IsPointInLine(a, b, lw, p) ||
			geometry.IsPointInLine(b, cc, lw, p) ||
			geometry.IsPointInLine(cc, a, lw, p)
	}
}

// triangleBoundingBox grows by half the stroke so stroked edges stay inside.
func triangleBoundingBox(s TriangleSchema) geometry.BoundingBox {
	return boundsOf([]geometry.Coordinate{s.PointA, s.PointB, s.PointC}, strokeWidth(s.Stroke)/2)
}
