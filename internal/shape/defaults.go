package shape

import (
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

const (
	DefaultLineWidth            = 10.0
	DefaultFillColor            = "black"
	DefaultRotation             = 0.0
	DefaultBorderRadius         = 0.0
	DefaultTextOffsetFromCenter = 0.0
	DefaultStarPoints           = 5
	DefaultBrushWeight          = 3.0

	// EraserBrushWeight is the radius of each dab an erase scribble clears.
	EraserBrushWeight = 50.0
)

func ptr[T any](v T) *T { return &v }

func orLineWidth(lw *float64) *float64 {
	if lw == nil {
		return ptr(DefaultLineWidth)
	}
	return lw
}

func orFillColor(c string) string {
	if c == "" {
		return DefaultFillColor
	}
	return c
}

func orBorderRadius(br geometry.BorderRadius) geometry.BorderRadius {
	if br == nil {
		return geometry.Uniform(DefaultBorderRadius)
	}
	return br
}

// lineWidth reads a resolved line width. Unresolved schemas still get the
// default.
func lineWidth(lw *float64) float64 {
	if lw == nil {
		return DefaultLineWidth
	}
	return *lw
}

func resolveRect(s RectSchema) RectSchema {
	s.FillColor = orFillColor(s.FillColor)
	s.BorderRadius = orBorderRadius(s.BorderRadius)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveSquare(s SquareSchema) SquareSchema {
	s.FillColor = orFillColor(s.FillColor)
	s.BorderRadius = orBorderRadius(s.BorderRadius)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveEllipse(s EllipseSchema) EllipseSchema {
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveCircle(s CircleSchema) CircleSchema {
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveLine(s LineSchema) LineSchema {
	s.LineWidth = orLineWidth(s.LineWidth)
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveArrow(s ArrowSchema) ArrowSchema {
	return ArrowSchema(resolveLine(LineSchema(s)))
}

func resolveTriangle(s TriangleSchema) TriangleSchema {
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveCross(s CrossSchema) CrossSchema {
	s.LineWidth = orLineWidth(s.LineWidth)
	s.BorderRadius = orBorderRadius(s.BorderRadius)
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveStar(s StarSchema) StarSchema {
	if s.Points == 0 {
		s.Points = DefaultStarPoints
	}
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveScribble(s ScribbleSchema) ScribbleSchema {
	if s.Type == "" {
		s.Type = ScribbleDraw
	}
	if s.BrushWeight == 0 {
		s.BrushWeight = DefaultBrushWeight
	}
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveUTurn(s UTurnSchema) UTurnSchema {
	s.LineWidth = orLineWidth(s.LineWidth)
	s.FillColor = orFillColor(s.FillColor)
	s.TextArea = text.Resolve(s.TextArea)
	return s
}

func resolveImage(s ImageSchema) ImageSchema {
	s.TextArea = text.Resolve(s.TextArea)
	return s
}
