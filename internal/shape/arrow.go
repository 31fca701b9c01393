package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

func NewArrow(s ArrowSchema, opts ...Option) (Shape, error) {
	return buildArrow(s, newConfig(opts))
}

func buildArrow(s ArrowSchema, cfg *config) (Shape, error) {
	if s.LineWidth != nil && *s.LineWidth < 0 {
		return nil, invalid(KindArrow, "lineWidth must be positive")
	}
	s = resolveArrow(s)
	l := LineSchema(s)
	return &base{
		name:            KindArrow,
		drawShape:       drawArrow(l),
		shapeHitbox:     arrowHitbox(l),
		efficientHitbox: arrowEfficientHitbox(l),
		boundingBox:     func() geometry.BoundingBox { return arrowBoundingBox(l) },
		text:            lineText(l, cfg),
	}, nil
}

// arrowHead is the head triangle of an arrow, or false for a zero-length
// arrow, which has no direction.
func arrowHead(s LineSchema) (TriangleSchema, bool) {
	if s.Start == s.End {
		return TriangleSchema{}, false
	}
	h := geometry.ArrowHeadCorners(s.Start, s.End, lineWidth(s.LineWidth))
	fill := s.FillColor
	if len(s.FillGradient) > 0 {
		fill = s.FillGradient[len(s.FillGradient)-1].Color
	}
	return resolveTriangle(TriangleSchema{
		PointA:    h.Tip,
		PointB:    h.BaseLeft,
		PointC:    h.BaseRight,
		FillColor: fill,
	}), true
}

// arrowShaft stops the line just inside the head so the two overlap by a
// pixel.
func arrowShaft(s LineSchema) LineSchema {
	height, _ := geometry.ArrowHeadSize(lineWidth(s.LineWidth))
	angle := geometry.Angle(s.Start, s.End)
	shaft := s
	shaft.End = geometry.Coordinate{
		X: s.End.X - height*math.Cos(angle) + math.Cos(angle),
		Y: s.End.Y - height*math.Sin(angle) + math.Sin(angle),
	}
	shaft.TextArea = nil
	return shaft
}

func drawArrow(s LineSchema) func(canvas.Canvas) {
	shaft := drawLine(arrowShaft(s))
	head, ok := arrowHead(s)
	drawHead := func(canvas.Canvas) {}
	if ok {
		drawHead = drawTriangle(head)
	}
	return func(c canvas.Canvas) {
		shaft(c)
		drawHead(c)
	}
}

func arrowHitbox(s LineSchema) func(geometry.Coordinate) bool {
	shaft := lineHitbox(s)
	head, ok := arrowHead(s)
	if !ok {
		return shaft
	}
	inHead := triangleHitbox(head)
	return func(p geometry.Coordinate) bool {
		return shaft(p) || inHead(p)
	}
}

func arrowEfficientHitbox(s LineSchema) func(geometry.BoundingBox) bool {
	shaft := lineEfficientHitbox(s)
	head, ok := arrowHead(s)
	if !ok {
		return shaft
	}
	headBox := triangleBoundingBox(head)
	return func(b geometry.BoundingBox) bool {
		return shaft(b) || geometry.BoundingBoxesOverlap(headBox, b)
	}
}

func arrowBoundingBox(s LineSchema) geometry.BoundingBox {
	box := lineBoundingBox(s)
	head, ok := arrowHead(s)
	if !ok {
		return box
	}
	return boundsOf([]geometry.Coordinate{
		box.At,
		{X: box.At.X + box.Width, Y: box.At.Y + box.Height},
		head.PointA,
		head.PointB,
		head.PointC,
	}, 0)
}
