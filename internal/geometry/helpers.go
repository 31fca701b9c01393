package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/inamate/shapekit/internal/colors"
)

var (
	ErrEmptyGradient        = errors.New("gradient must have at least one stop")
	ErrPercentageOutOfRange = errors.New("percentage must be between 0 and 1")
	ErrInvalidBorderRadius  = errors.New("invalid border radius")
)

// RotatePoint rotates p around center by angle radians.
func RotatePoint(p, center Coordinate, angle float64) Coordinate {
	cos, sin := math.Cos(angle), math.Sin(angle)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return Coordinate{
		X: center.X + (dx*cos - dy*sin),
		Y: center.Y + (dx*sin + dy*cos),
	}
}

// RotatePointInPlace is RotatePoint writing the result back into p.
func RotatePointInPlace(p *Coordinate, center Coordinate, angle float64) {
	*p = RotatePoint(*p, center, angle)
}

// Angle returns the angle of the vector from a to b in radians.
func Angle(a, b Coordinate) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// LargestAngularSpace returns the direction (radians) bisecting the widest
// empty wedge around center left by points. With one point it is the
// opposite direction; with none it is 0.
func LargestAngularSpace(center Coordinate, points []Coordinate) float64 {
	switch len(points) {
	case 0:
		return 0
	case 1:
		return Angle(center, points[0]) + math.Pi
	}

	angles := make([]float64, len(points))
	for i, p := range points {
		angles[i] = Angle(center, p)
	}
	sort.Float64s(angles)

	const twoPi = 2 * math.Pi
	var maxGap float64
	maxIdx := 0
	for i := range angles {
		next := angles[(i+1)%len(angles)]
		gap := math.Mod(next-angles[i]+twoPi, twoPi)
		if gap > maxGap {
			maxGap = gap
			maxIdx = i
		}
	}
	return math.Mod(angles[maxIdx]+maxGap/2, twoPi)
}

// AngleDifference returns the absolute smallest difference between two angles.
func AngleDifference(a, b float64) float64 {
	return math.Abs(math.Atan2(math.Sin(a-b), math.Cos(a-b)))
}

// ArrowHeadSize returns the head height and the half-width of the head base
// for an arrow with the given shaft width.
func ArrowHeadSize(lineWidth float64) (height, perpLength float64) {
	height = lineWidth * 2.5
	perpLength = height / 1.75
	return height, perpLength
}

// ArrowHead is the triangle at the tip of an arrow. Tip is the arrow's end.
type ArrowHead struct {
	Tip       Coordinate
	BaseLeft  Coordinate
	BaseRight Coordinate
}

// ArrowHeadCorners computes the head triangle for an arrow from start to end.
func ArrowHeadCorners(start, end Coordinate, lineWidth float64) ArrowHead {
	height, perp := ArrowHeadSize(lineWidth)

	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	ux, uy := dx/length, dy/length

	px, py := -uy*perp, ux*perp

	return ArrowHead{
		Tip: end,
		BaseLeft: Coordinate{
			X: end.X - ux*height + px,
			Y: end.Y - uy*height + py,
		},
		BaseRight: Coordinate{
			X: end.X - ux*height - px,
			Y: end.Y - uy*height - py,
		},
	}
}

// ColorAtPercentage samples a gradient at percentage and returns #rrggbb.
func ColorAtPercentage(stops []GradientStop, percentage float64) (string, error) {
	if len(stops) == 0 {
		return "", ErrEmptyGradient
	}
	if percentage < 0 || percentage > 1 {
		return "", fmt.Errorf("%w: got %v", ErrPercentageOutOfRange, percentage)
	}

	first, last := stops[0], stops[len(stops)-1]
	if percentage <= first.Offset {
		return hexColor(first.Color)
	}
	if percentage >= last.Offset {
		return hexColor(last.Color)
	}

	lower, upper := first, last
	for i := 1; i < len(stops); i++ {
		if percentage <= stops[i].Offset {
			lower, upper = stops[i-1], stops[i]
			break
		}
	}

	span := upper.Offset - lower.Offset
	var ratio float64
	if span != 0 {
		ratio = (percentage - lower.Offset) / span
	}

	from, err := colors.Parse(lower.Color)
	if err != nil {
		return "", err
	}
	to, err := colors.Parse(upper.Color)
	if err != nil {
		return "", err
	}
	return colors.Lerp(from, to, ratio).Hex(), nil
}

func hexColor(s string) (string, error) {
	c, err := colors.Parse(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// NormalizeBoundingBox returns an equivalent box with non-negative size.
func NormalizeBoundingBox(b BoundingBox) BoundingBox {
	out := BoundingBox{At: b.At, Width: math.Abs(b.Width), Height: math.Abs(b.Height)}
	if b.Width < 0 {
		out.At.X += b.Width
	}
	if b.Height < 0 {
		out.At.Y += b.Height
	}
	return out
}

// CenterPoint returns the center of a bounding box.
func CenterPoint(b BoundingBox) Coordinate {
	return Coordinate{X: b.At.X + b.Width/2, Y: b.At.Y + b.Height/2}
}

// BoundingBoxesOverlap reports whether two boxes intersect. Boxes that
// only touch along an edge or at a corner count as overlapping.
func BoundingBoxesOverlap(a, b BoundingBox) bool {
	a, b = NormalizeBoundingBox(a), NormalizeBoundingBox(b)

	if a.At.X+a.Width < b.At.X || b.At.X+b.Width < a.At.X {
		return false
	}
	if a.At.Y+a.Height < b.At.Y || b.At.Y+b.Height < a.At.Y {
		return false
	}
	return true
}

// IsPointInLine reports whether p lies within lineWidth/2 of the segment
// start-end (a capsule). A zero-length segment is a circle.
func IsPointInLine(start, end Coordinate, lineWidth float64, p Coordinate) bool {
	half := lineWidth / 2
	dx := end.X - start.X
	dy := end.Y - start.Y
	lenSq := dx*dx + dy*dy

	if lenSq == 0 {
		ex, ey := p.X-start.X, p.Y-start.Y
		return ex*ex+ey*ey <= half*half
	}

	t := ((p.X-start.X)*dx + (p.Y-start.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	cx := start.X + t*dx
	cy := start.Y + t*dy
	ex, ey := p.X-cx, p.Y-cy
	return ex*ex+ey*ey <= half*half
}

// IsPointInBoundingBox reports whether p is inside b, edges included.
func IsPointInBoundingBox(b BoundingBox, p Coordinate) bool {
	b = NormalizeBoundingBox(b)
	return p.X >= b.At.X && p.X <= b.At.X+b.Width &&
		p.Y >= b.At.Y && p.Y <= b.At.Y+b.Height
}

// IsPointInPolygon is an even-odd ray cast against the closed polygon.
func IsPointInPolygon(vertices []Coordinate, p Coordinate) bool {
	inside := false
	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// Corners expands a border radius into per-corner values.
func (br BorderRadius) Corners() [4]float64 {
	switch len(br) {
	case 1:
		return [4]float64{br[0], br[0], br[0], br[0]}
	case 4:
		return [4]float64{br[0], br[1], br[2], br[3]}
	default:
		return [4]float64{}
	}
}

// IsZero reports whether every corner is square.
func (br BorderRadius) IsZero() bool {
	return br.Corners() == [4]float64{}
}

// Validate checks that the radius has one or four non-negative values.
func (br BorderRadius) Validate() error {
	if len(br) != 0 && len(br) != 1 && len(br) != 4 {
		return fmt.Errorf("%w: array must have exactly 4 values", ErrInvalidBorderRadius)
	}
	for _, r := range br {
		if r < 0 {
			return fmt.Errorf("%w: must be positive", ErrInvalidBorderRadius)
		}
	}
	return nil
}
