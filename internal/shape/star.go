package shape

import (
	"log/slog"
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

// NewStar builds a star. Out-of-range point counts and radii are logged,
// not rejected; the star is still built from them.
func NewStar(s StarSchema, opts ...Option) (Shape, error) {
	return buildStar(s, newConfig(opts))
}

func buildStar(s StarSchema, cfg *config) (Shape, error) {
	warnStar(s)
	s = resolveStar(s)
	vertices := starVertices(s)
	bbox := func() geometry.BoundingBox { return starBoundingBox(s) }
	return &base{
		name:      KindStar,
		drawShape: drawStar(s),
		shapeHitbox: func(p geometry.Coordinate) bool {
			return geometry.IsPointInPolygon(vertices, p)
		},
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text:        textProps(s.At, s.TextArea, cfg),
	}, nil
}

func warnStar(s StarSchema) {
	if s.Points != 0 && s.Points < 3 {
		slog.Warn("star must have at least 3 points", "points", s.Points)
	}
	if s.InnerRadius >= s.OuterRadius {
		slog.Warn("inner radius must be less than outer radius",
			"innerRadius", s.InnerRadius, "outerRadius", s.OuterRadius)
	}
	if s.InnerRadius < 0 || s.OuterRadius < 0 {
		slog.Warn("radius values must be positive",
			"innerRadius", s.InnerRadius, "outerRadius", s.OuterRadius)
	}
}

// starPoint is the i-th vertex around the origin, alternating outer and
// inner radius.
func starPoint(s StarSchema, i int) geometry.Coordinate {
	r := s.OuterRadius
	if i%2 == 1 {
		r = s.InnerRadius
	}
	angle := float64(i) * math.Pi / float64(s.Points)
	return geometry.Coordinate{X: math.Cos(angle) * r, Y: math.Sin(angle) * r}
}

func starVertices(s StarSchema) []geometry.Coordinate {
	n := max(s.Points*2, 0)
	vertices := make([]geometry.Coordinate, n)
	for i := range vertices {
		v := geometry.RotatePoint(starPoint(s, i), geometry.Coordinate{}, s.Rotation)
		vertices[i] = v.Add(s.At)
	}
	return vertices
}

func drawStar(s StarSchema) func(canvas.Canvas) {
	return func(c canvas.Canvas) {
		c.Save()
		c.BeginPath()
		c.Translate(s.At.X, s.At.Y)
		c.Rotate(s.Rotation)
		for i := 0; i < s.Points*2; i++ {
			p := starPoint(s, i)
			if i == 0 {
				c.MoveTo(p.X, p.Y)
			} else {
				c.LineTo(p.X, p.Y)
			}
		}
		c.ClosePath()
		c.SetFillStyle(canvas.Solid(s.FillColor))
		c.Fill()
		c.Restore()
	}
}

func starBoundingBox(s StarSchema) geometry.BoundingBox {
	r := math.Max(math.Abs(s.OuterRadius), math.Abs(s.InnerRadius))
	return geometry.BoundingBox{
		At:     geometry.Coordinate{X: s.At.X - r, Y: s.At.Y - r},
		Width:  2 * r,
		Height: 2 * r,
	}
}
