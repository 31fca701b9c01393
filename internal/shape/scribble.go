package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

func NewScribble(s ScribbleSchema, opts ...Option) (Shape, error) {
	return buildScribble(s, newConfig(opts))
}

func buildScribble(s ScribbleSchema, cfg *config) (Shape, error) {
	if len(s.Points) < 1 {
		return nil, invalid(KindScribble, "not enough points to draw scribble")
	}
	if s.BrushWeight != 0 && s.BrushWeight < 1 {
		return nil, invalid(KindScribble, `brushWeight must be at least "1"`)
	}
	s = resolveScribble(s)
	bbox := scribbleBoundingBox(s)
	return &base{
		name:            KindScribble,
		drawShape:       drawScribble(s),
		shapeHitbox:     scribbleHitbox(s),
		efficientHitbox: scribbleEfficientHitbox(s),
		boundingBox:     func() geometry.BoundingBox { return bbox },
		text:            textProps(geometry.CenterPoint(bbox), s.TextArea, cfg),
	}, nil
}

func drawScribble(s ScribbleSchema) func(canvas.Canvas) {
	var dot func(canvas.Canvas)
	if len(s.Points) == 1 {
		dot = drawEllipse(EllipseSchema{
			At:        s.Points[0],
			RadiusX:   s.BrushWeight / 2,
			RadiusY:   s.BrushWeight / 2,
			FillColor: s.FillColor,
		})
	}

	draw := func(c canvas.Canvas) {
		if dot != nil {
			dot(c)
			return
		}
		c.SetStrokeStyle(canvas.Solid(s.FillColor))
		c.SetLineCap(canvas.LineCapRound)
		c.SetLineJoin(canvas.LineJoinRound)
		c.SetLineWidth(s.BrushWeight)
		c.BeginPath()
		c.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			c.LineTo(p.X, p.Y)
		}
		c.Stroke()
	}

	// erase clears round dabs along each segment, spaced so they overlap.
	erase := func(c canvas.Canvas) {
		c.SetCompositeOperation(canvas.CompositeDestinationOut)
		c.SetFillStyle(canvas.Solid("black"))
		c.SetLineWidth(EraserBrushWeight)
		for i := 0; i < len(s.Points)-1; i++ {
			from, to := s.Points[i], s.Points[i+1]
			steps := math.Ceil(math.Hypot(to.X-from.X, to.Y-from.Y) / EraserBrushWeight)
			for j := 0.0; j <= steps; j++ {
				t := 0.0
				if steps > 0 {
					t = j / steps
				}
				c.BeginPath()
				c.Arc(from.X+t*(to.X-from.X), from.Y+t*(to.Y-from.Y), EraserBrushWeight, 0, 2*math.Pi, false)
				c.Fill()
			}
		}
		c.SetCompositeOperation(canvas.CompositeSourceOver)
	}

	return func(c canvas.Canvas) {
		if s.Type == ScribbleErase {
			erase(c)
		} else {
			draw(c)
		}
		c.SetLineCap(canvas.LineCapButt)
		c.SetLineJoin(canvas.LineJoinMiter)
	}
}

func scribbleBoundingBox(s ScribbleSchema) geometry.BoundingBox {
	return boundsOf(s.Points, s.BrushWeight/2)
}

// scribbleSegments are the polyline's segments as default-width lines, used
// for coarse hit tests.
func scribbleSegments(s ScribbleSchema) []func(geometry.BoundingBox) bool {
	segments := make([]func(geometry.BoundingBox) bool, 0, max(len(s.Points)-1, 0))
	for i := 0; i < len(s.Points)-1; i++ {
		segments = append(segments, lineEfficientHitbox(resolveLine(LineSchema{
			Start: s.Points[i],
			End:   s.Points[i+1],
		})))
	}
	return segments
}

// scribbleHitbox rejects erase scribbles, which have no surface, and
// otherwise checks the bounding box before each segment.
func scribbleHitbox(s ScribbleSchema) func(geometry.Coordinate) bool {
	if s.Type == ScribbleErase {
		return func(geometry.Coordinate) bool { return false }
	}
	bbox := scribbleBoundingBox(s)
	// Round caps give single dots a hit area even when the box is thin.
	bbox.Width = math.Max(bbox.Width, s.BrushWeight)
	bbox.Height = math.Max(bbox.Height, s.BrushWeight)
	inBox := rectHitbox(resolveRect(RectSchema{At: bbox.At, Width: bbox.Width, Height: bbox.Height}))

	var inDot func(geometry.Coordinate) bool
	if len(s.Points) == 1 {
		inDot = ellipseHitbox(EllipseSchema{At: s.Points[0], RadiusX: s.BrushWeight, RadiusY: s.BrushWeight})
	}
	segments := scribbleSegments(s)

	return func(p geometry.Coordinate) bool {
		if !inBox(p) {
			return false
		}
		if inDot != nil && inDot(p) {
			return true
		}
		cell := geometry.BoundingBox{At: p, Width: 1, Height: 1}
		for _, seg := range segments {
			if seg(cell) {
				return true
			}
		}
		return false
	}
}

func scribbleEfficientHitbox(s ScribbleSchema) func(geometry.BoundingBox) bool {
	if s.Type == ScribbleErase {
		return func(geometry.BoundingBox) bool { return false }
	}
	if len(s.Points) == 1 {
		dot := ellipseBoundingBox(EllipseSchema{At: s.Points[0], RadiusX: s.BrushWeight, RadiusY: s.BrushWeight})
		return func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(dot, b)
		}
	}
	bbox := scribbleBoundingBox(s)
	bbox.Width = math.Max(bbox.Width, s.BrushWeight)
	bbox.Height = math.Max(bbox.Height, s.BrushWeight)
	segments := scribbleSegments(s)

	return func(b geometry.BoundingBox) bool {
		if !geometry.BoundingBoxesOverlap(bbox, b) {
			return false
		}
		for _, seg := range segments {
			if seg(b) {
				return true
			}
		}
		return false
	}
}
