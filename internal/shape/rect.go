package shape

import (
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

// NewRect builds a rect.
func NewRect(s RectSchema, opts ...Option) (Shape, error) {
	return buildRect(s, newConfig(opts))
}

// NewSquare builds a square.
func NewSquare(s SquareSchema, opts ...Option) (Shape, error) {
	return buildSquare(s, newConfig(opts))
}

func buildRect(s RectSchema, cfg *config) (Shape, error) {
	if s.Width < 0 || s.Height < 0 {
		return nil, invalid(KindRect, "width and height must be positive")
	}
	if err := s.BorderRadius.Validate(); err != nil {
		return nil, invalid(KindRect, err.Error())
	}
	return newRect(KindRect, resolveRect(s), cfg), nil
}

func buildSquare(s SquareSchema, cfg *config) (Shape, error) {
	if s.Size < 0 {
		return nil, invalid(KindSquare, "size must be positive")
	}
	if err := s.BorderRadius.Validate(); err != nil {
		return nil, invalid(KindSquare, err.Error())
	}
	s = resolveSquare(s)
	r := RectSchema{
		At:           s.At,
		Width:        s.Size,
		Height:       s.Size,
		FillColor:    s.FillColor,
		Stroke:       s.Stroke,
		BorderRadius: s.BorderRadius,
		Rotation:     s.Rotation,
		TextArea:     s.TextArea,
	}
	return newRect(KindSquare, r, cfg), nil
}

func newRect(name Kind, s RectSchema, cfg *config) *base {
	anchor := geometry.CenterPoint(geometry.BoundingBox{At: s.At, Width: s.Width, Height: s.Height})
	bbox := func() geometry.BoundingBox { return rectBoundingBox(s) }
	return &base{
		name:        name,
		drawShape:   drawRect(s),
		shapeHitbox: rectHitbox(s),
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text:        textProps(anchor, s.TextArea, cfg),
	}
}

func strokeWidth(st *geometry.Stroke) float64 {
	if st == nil {
		return 0
	}
	return st.LineWidth
}

func drawStroke(c canvas.Canvas, st *geometry.Stroke) {
	if st == nil {
		return
	}
	c.SetStrokeStyle(canvas.Solid(st.Color))
	c.SetLineWidth(st.LineWidth)
	c.SetLineDash(st.Dash)
	c.Stroke()
	c.SetLineDash(nil)
}

func drawRect(s RectSchema) func(canvas.Canvas) {
	n := geometry.NormalizeBoundingBox(geometry.BoundingBox{At: s.At, Width: s.Width, Height: s.Height})
	w, h := n.Width, n.Height
	corners := s.BorderRadius.Corners()

	return func(c canvas.Canvas) {
		c.Save()
		c.Translate(n.At.X+w/2, n.At.Y+h/2)
		c.Rotate(s.Rotation)

		c.BeginPath()
		if corners == [4]float64{} {
			c.Rect(-w/2, -h/2, w, h)
		} else {
			maxRadius := math.Min(w/2, h/2)
			tl := math.Min(corners[0], maxRadius)
			tr := math.Min(corners[1], maxRadius)
			br := math.Min(corners[2], maxRadius)
			bl := math.Min(corners[3], maxRadius)

			c.MoveTo(-w/2+tl, -h/2)
			c.LineTo(w/2-tr, -h/2)
			if tr > 0 {
				c.ArcTo(w/2, -h/2, w/2, -h/2+tr, tr)
			}
			c.LineTo(w/2, h/2-br)
			if br > 0 {
				c.ArcTo(w/2, h/2, w/2-br, h/2, br)
			}
			c.LineTo(-w/2+bl, h/2)
			if bl > 0 {
				c.ArcTo(-w/2, h/2, -w/2, h/2-bl, bl)
			}
			c.LineTo(-w/2, -h/2+tl)
			if tl > 0 {
				c.ArcTo(-w/2, -h/2, -w/2+tl, -h/2, tl)
			}
			c.ClosePath()
		}
		c.SetFillStyle(canvas.Solid(s.FillColor))
		c.Fill()
		drawStroke(c, s.Stroke)
		c.Restore()
	}
}

type band struct {
	x, y, w, h float64
}

func rectHitbox(s RectSchema) func(geometry.Coordinate) bool {
	n := geometry.NormalizeBoundingBox(geometry.BoundingBox{At: s.At, Width: s.Width, Height: s.Height})
	w, h := n.Width, n.Height
	center := geometry.Coordinate{X: n.At.X + w/2, Y: n.At.Y + h/2}
	x, y := n.At.X, n.At.Y
	sw := strokeWidth(s.Stroke)

	if s.BorderRadius.IsZero() {
		return func(p geometry.Coordinate) bool {
			lp := geometry.RotatePoint(p, center, -s.Rotation)
			return lp.X >= x-sw/2 && lp.X <= x+w+sw/2 &&
				lp.Y >= y-sw/2 && lp.Y <= y+h+sw/2
		}
	}

	maxRadius := math.Min(w/2, h/2)
	r := s.BorderRadius.Corners()
	for i := range r {
		r[i] = math.Min(math.Max(r[i], 0), maxRadius)
	}
	tl, tr, br, bl := r[0], r[1], r[2], r[3]

	bands := []band{
		{x + tl, y, w - tl - tr, math.Max(tl, tr)},
		{x + bl, y + h - math.Max(bl, br), w - bl - br, math.Max(bl, br)},
		{x, y + tl, math.Max(tl, bl), h - tl - bl},
		{x + w - math.Max(tr, br), y + tr, math.Max(tr, br), h - tr - br},
		{
			x + math.Max(tl, bl),
			y + math.Max(tl, tr),
			w - math.Max(tl, bl) - math.Max(tr, br),
			h - math.Max(tl, tr) - math.Max(bl, br),
		},
	}

	corners := make([]func(geometry.Coordinate) bool, 0, 4)
	for _, c := range []struct {
		at geometry.Coordinate
		r  float64
	}{
		{geometry.Coordinate{X: x + tl, Y: y + tl}, tl},
		{geometry.Coordinate{X: x + w - tr, Y: y + tr}, tr},
		{geometry.Coordinate{X: x + w - br, Y: y + h - br}, br},
		{geometry.Coordinate{X: x + bl, Y: y + h - bl}, bl},
	} {
		if c.r > 0 {
			corners = append(corners, ellipseHitbox(EllipseSchema{At: c.at, RadiusX: c.r, RadiusY: c.r, Stroke: s.Stroke}))
		}
	}

	return func(p geometry.Coordinate) bool {
		lp := geometry.RotatePoint(p, center, -s.Rotation)
		for _, b := range bands {
			if b.w > 0 && b.h > 0 &&
				lp.X >= b.x-sw/2 && lp.X <= b.x+b.w+sw/2 &&
				lp.Y >= b.y-sw/2 && lp.Y <= b.y+b.h+sw/2 {
				return true
			}
		}
		for _, hit := range corners {
			if hit(lp) {
				return true
			}
		}
		return false
	}
}

// rectBoundingBox is the stroke-inflated box. A rotated rect reports the
// box around its rotated corners.
func rectBoundingBox(s RectSchema) geometry.BoundingBox {
	sw := strokeWidth(s.Stroke)
	n := geometry.NormalizeBoundingBox(geometry.BoundingBox{At: s.At, Width: s.Width, Height: s.Height})
	box := geometry.BoundingBox{
		At:     geometry.Coordinate{X: n.At.X - sw/2, Y: n.At.Y - sw/2},
		Width:  n.Width + sw,
		Height: n.Height + sw,
	}
	if s.Rotation == 0 {
		return box
	}
	return rotatedBox(box, geometry.CenterPoint(n), s.Rotation)
}

// rotatedBox returns the axis-aligned box around b rotated about center.
func rotatedBox(b geometry.BoundingBox, center geometry.Coordinate, angle float64) geometry.BoundingBox {
	pts := []geometry.Coordinate{
		b.At,
		{X: b.At.X + b.Width, Y: b.At.Y},
		{X: b.At.X + b.Width, Y: b.At.Y + b.Height},
		{X: b.At.X, Y: b.At.Y + b.Height},
	}
	for i := range pts {
		geometry.RotatePointInPlace(&pts[i], center, angle)
	}
	return boundsOf(pts, 0)
}

// boundsOf is the box around pts, inflated by pad on every side.
func boundsOf(pts []geometry.Coordinate, pad float64) geometry.BoundingBox {
	if len(pts) == 0 {
		return geometry.BoundingBox{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return geometry.NormalizeBoundingBox(geometry.BoundingBox{
		At:     geometry.Coordinate{X: minX - pad, Y: minY - pad},
		Width:  maxX - minX + 2*pad,
		Height: maxY - minY + 2*pad,
	})
}
