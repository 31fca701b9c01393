package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

// maxLineSegment caps the length of the chunks EfficientHitbox tests.
const maxLineSegment = 50.0

func NewLine(s LineSchema, opts ...Option) (Shape, error) {
	return buildLine(s, newConfig(opts))
}

func buildLine(s LineSchema, cfg *config) (Shape, error) {
	if s.LineWidth != nil && *s.LineWidth < 0 {
		return nil, invalid(KindLine, "lineWidth must be positive")
	}
	s = resolveLine(s)
	bbox := func() geometry.BoundingBox { return lineBoundingBox(s) }
	return &base{
		name:            KindLine,
		drawShape:       drawLine(s),
		shapeHitbox:     lineHitbox(s),
		efficientHitbox: lineEfficientHitbox(s),
		boundingBox:     bbox,
		text:            lineText(s, cfg),
	}, nil
}

func lineText(s LineSchema, cfg *config) *text.Props {
	if s.TextArea == nil {
		return nil
	}
	angle := geometry.Angle(s.Start, s.End)
	anchor := geometry.Coordinate{
		X: (s.Start.X+s.End.X)/2 + s.TextOffsetFromCenter*math.Cos(angle),
		Y: (s.Start.Y+s.End.Y)/2 + s.TextOffsetFromCenter*math.Sin(angle),
	}
	return textProps(anchor, s.TextArea, cfg)
}

func drawLine(s LineSchema) func(canvas.Canvas) {
	lw := lineWidth(s.LineWidth)
	return func(c canvas.Canvas) {
		if lw == 0 {
			return
		}
		c.Save()
		c.BeginPath()
		c.MoveTo(s.Start.X, s.Start.Y)
		c.LineTo(s.End.X, s.End.Y)
		c.SetLineWidth(lw)
		paint := canvas.Solid(s.FillColor)
		if len(s.FillGradient) >= 2 {
			paint = canvas.Linear(s.Start, s.End, s.FillGradient)
		}
		c.SetStrokeStyle(paint)
		c.SetLineDash(s.Dash)
		c.Stroke()
		c.ClosePath()
		c.Restore()
	}
}

func lineHitbox(s LineSchema) func(geometry.Coordinate) bool {
	lw := lineWidth(s.LineWidth)
	return func(p geometry.Coordinate) bool {
		return geometry.IsPointInLine(s.Start, s.End, lw, p)
	}
}

func lineBoundingBox(s LineSchema) geometry.BoundingBox {
	return boundsOf([]geometry.Coordinate{s.Start, s.End}, lineWidth(s.LineWidth)/2)
}

// lineEfficientHitbox splits the line into chunks no longer than
// maxLineSegment, shorter for diagonal lines, and tests each chunk's box.
// A zero-length line falls back to its bounding box.
func lineEfficientHitbox(s LineSchema) func(geometry.BoundingBox) bool {
	lw := lineWidth(s.LineWidth)
	bbox := lineBoundingBox(s)
	length := math.Hypot(s.End.X-s.Start.X, s.End.Y-s.Start.Y)
	if length == 0 {
		return func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox, b)
		}
	}

	angle := math.Atan2(s.End.Y-s.Start.Y, s.End.X-s.Start.X)
	angleFactor := math.Abs(math.Cos(angle)) + math.Abs(math.Sin(angle))
	segment := math.Min(maxLineSegment, length*angleFactor)
	n := int(math.Ceil(length / segment))
	dx := (s.End.X - s.Start.X) / length
	dy := (s.End.Y - s.Start.Y) / length

	chunks := make([]geometry.BoundingBox, n)
	for i := range chunks {
		from := geometry.Coordinate{
			X: s.Start.X + dx*segment*float64(i),
			Y: s.Start.Y + dy*segment*float64(i),
		}
		to := geometry.Coordinate{X: from.X + dx*segment, Y: from.Y + dy*segment}
		chunks[i] = boundsOf([]geometry.Coordinate{from, to}, lw/2)
	}

	return func(b geometry.BoundingBox) bool {
		if !geometry.BoundingBoxesOverlap(bbox, b) {
			return false
		}
		for _, chunk := range chunks {
			if geometry.BoundingBoxesOverlap(chunk, b) {
				return true
			}
		}
		return false
	}
}
