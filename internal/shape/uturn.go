package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

// uturnTextGap is the distance between the outside of the bend and the
// text anchor.
const uturnTextGap = 15.0

func NewUTurn(s UTurnSchema, opts ...Option) (Shape, error) {
	return buildUTurn(s, newConfig(opts))
}

func buildUTurn(s UTurnSchema, cfg *config) (Shape, error) {
	if s.DownDistance < 0 {
		return nil, invalid(KindUTurn, "downDistance must be positive")
	}
	if s.UpDistance < 0 {
		return nil, invalid(KindUTurn, "upDistance must be positive")
	}
	s = resolveUTurn(s)
	g := newUTurnGeometry(s)
	bbox := g.boundingBox()
	return &base{
		name:        KindUTurn,
		drawShape:   drawUTurn(s, g),
		shapeHitbox: g.hitbox(),
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox, b)
		},
		boundingBox: func() geometry.BoundingBox { return bbox },
		text:        uturnText(s, cfg),
	}, nil
}

// uturnGeometry holds the rotated legs and the bend center.
type uturnGeometry struct {
	long  LineSchema
	short LineSchema
	bend  geometry.Coordinate
	// radius of the hit disc around the bend
	bendRadius float64
}

func newUTurnGeometry(s UTurnSchema) uturnGeometry {
	rot := func(x, y float64) geometry.Coordinate {
		return geometry.RotatePoint(geometry.Coordinate{X: s.At.X + x, Y: s.At.Y + y}, s.At, s.Rotation)
	}
	lw := s.LineWidth
	return uturnGeometry{
		long: resolveLine(LineSchema{
			Start:     rot(0, -s.Spacing),
			End:       rot(s.UpDistance, -s.Spacing),
			LineWidth: lw,
			FillColor: s.FillColor,
		}),
		short: resolveLine(LineSchema{
			Start:     rot(s.UpDistance, s.Spacing),
			End:       rot(s.UpDistance-s.DownDistance, s.Spacing),
			LineWidth: lw,
			FillColor: s.FillColor,
		}),
		bend:       rot(s.UpDistance, 0),
		bendRadius: s.Spacing + lineWidth(lw)/2,
	}
}

func (g uturnGeometry) hitbox() func(geometry.Coordinate) bool {
	inLong := lineHitbox(g.long)
	inShort := arrowHitbox(g.short)
	inBend := ellipseHitbox(EllipseSchema{At: g.bend, RadiusX: g.bendRadius, RadiusY: g.bendRadius})
	return func(p geometry.Coordinate) bool {
		return inLong(p) || inShort(p) || inBend(p)
	}
}

// boundingBox covers both legs, the arrow head and the bend disc.
func (g uturnGeometry) boundingBox() geometry.BoundingBox {
	bend := ellipseBoundingBox(EllipseSchema{At: g.bend, RadiusX: g.bendRadius, RadiusY: g.bendRadius})
	return lineBoundingBox(g.long).
		Union(arrowBoundingBox(g.short)).
		Union(bend)
}

func uturnText(s UTurnSchema, cfg *config) *text.Props {
	if s.TextArea == nil {
		return nil
	}
	end := geometry.RotatePoint(
		geometry.Coordinate{X: s.At.X + s.UpDistance + s.Spacing + lineWidth(s.LineWidth)/2, Y: s.At.Y},
		s.At, s.Rotation,
	)
	anchor := geometry.Coordinate{
		X: end.X + math.Cos(s.Rotation)*uturnTextGap,
		Y: end.Y + math.Sin(s.Rotation)*uturnTextGap,
	}
	return textProps(anchor, s.TextArea, cfg)
}

// uturnGradients splits a gradient over the long leg, the bend and the
// short leg in proportion to their lengths, so it runs continuously along
// the whole path. Each part's stops are rescaled to [0, 1].
func uturnGradients(s UTurnSchema) (long, bend, short []geometry.GradientStop) {
	if len(s.FillGradient) < 2 {
		return nil, nil, nil
	}
	total := s.UpDistance + s.DownDistance + math.Pi*s.Spacing
	if total <= 0 {
		return nil, nil, nil
	}
	bendStart := s.UpDistance / total
	bendEnd := (total - s.DownDistance) / total

	atBendStart, err := geometry.ColorAtPercentage(s.FillGradient, bendStart)
	if err != nil {
		return nil, nil, nil
	}
	atBendEnd, err := geometry.ColorAtPercentage(s.FillGradient, bendEnd)
	if err != nil {
		return nil, nil, nil
	}

	rescale := func(offset, from, to float64) float64 {
		if to <= from {
			return 0
		}
		return (offset - from) / (to - from)
	}

	for _, stop := range s.FillGradient {
		if stop.Offset <= bendStart {
			long = append(long, geometry.GradientStop{Offset: rescale(stop.Offset, 0, bendStart), Color: stop.Color})
		}
	}
	long = append(long, geometry.GradientStop{Offset: 1, Color: atBendStart})

	bend = append(bend, geometry.GradientStop{Offset: 0, Color: atBendStart})
	for _, stop := range s.FillGradient {
		if stop.Offset >= bendStart && stop.Offset <= bendEnd {
			bend = append(bend, geometry.GradientStop{Offset: rescale(stop.Offset, bendStart, bendEnd), Color: stop.Color})
		}
	}
	bend = append(bend, geometry.GradientStop{Offset: 1, Color: atBendEnd})

	short = append(short, geometry.GradientStop{Offset: 0, Color: atBendEnd})
	for _, stop := range s.FillGradient {
		if stop.Offset >= bendEnd {
			short = append(short, geometry.GradientStop{Offset: rescale(stop.Offset, bendEnd, 1), Color: stop.Color})
		}
	}
	return long, bend, short
}

func drawUTurn(s UTurnSchema, g uturnGeometry) func(canvas.Canvas) {
	longGrad, bendGrad, shortGrad := uturnGradients(s)
	long, short := g.long, g.short
	long.FillGradient = longGrad
	short.FillGradient = shortGrad
	drawLong := drawLine(long)
	drawShort := drawArrow(short)

	// The bend overshoots both legs slightly so there is no seam.
	const overlap = 0.01
	startAngle := math.Pi/2 + s.Rotation + overlap
	endAngle := -math.Pi/2 + s.Rotation - overlap
	bendPaint := canvas.Solid(s.FillColor)
	if len(bendGrad) >= 2 {
		from := geometry.Coordinate{
			X: g.bend.X + math.Cos(endAngle)*s.Spacing,
			Y: g.bend.Y + math.Sin(endAngle)*s.Spacing,
		}
		to := geometry.Coordinate{
			X: g.bend.X + math.Cos(startAngle)*s.Spacing,
			Y: g.bend.Y + math.Sin(startAngle)*s.Spacing,
		}
		bendPaint = canvas.Linear(from, to, bendGrad)
	}
	lw := lineWidth(s.LineWidth)

	return func(c canvas.Canvas) {
		drawLong(c)
		drawShort(c)
		c.BeginPath()
		c.SetStrokeStyle(bendPaint)
		c.Arc(g.bend.X, g.bend.Y, s.Spacing, startAngle, endAngle, true)
		c.SetLineWidth(lw)
		c.Stroke()
		c.ClosePath()
	}
}
