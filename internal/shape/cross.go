package shape

import (
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

func NewCross(s CrossSchema, opts ...Option) (Shape, error) {
	return buildCross(s, newConfig(opts))
}

func buildCross(s CrossSchema, cfg *config) (Shape, error) {
	if s.LineWidth != nil && *s.LineWidth < 0 {
		return nil, invalid(KindCross, "lineWidth must be positive")
	}
	if err := s.BorderRadius.Validate(); err != nil {
		return nil, invalid(KindCross, err.Error())
	}
	s = resolveCross(s)
	horizontal, vertical := crossArms(s)
	inHorizontal, inVertical := rectHitbox(horizontal), rectHitbox(vertical)
	bbox := func() geometry.BoundingBox {
		return rectBoundingBox(horizontal).Union(rectBoundingBox(vertical))
	}
	return &base{
		name:      KindCross,
		drawShape: drawCross(s),
		shapeHitbox: func(p geometry.Coordinate) bool {
			return inHorizontal(p) || inVertical(p)
		},
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text:        textProps(s.At, s.TextArea, cfg),
	}, nil
}

// crossCorners unpacks the border radius the way crosses read it:
// top-left, top-right, bottom-left, bottom-right.
func crossCorners(br geometry.BorderRadius) (tl, tr, bl, brr float64) {
	c := br.Corners()
	return c[0], c[1], c[2], c[3]
}

// crossArms returns the two full-length arms in canvas space. Both are
// centered on At, so rotating each about its own center rotates the cross.
func crossArms(s CrossSchema) (horizontal, vertical RectSchema) {
	lw := lineWidth(s.LineWidth)
	tl, tr, bl, br := crossCorners(s.BorderRadius)
	horizontal = RectSchema{
		At:           geometry.Coordinate{X: s.At.X - s.Size/2, Y: s.At.Y - lw/2},
		Width:        s.Size,
		Height:       lw,
		BorderRadius: geometry.BorderRadius{br, tr, tr, br},
		Rotation:     s.Rotation,
	}
	vertical = RectSchema{
		At:           geometry.Coordinate{X: s.At.X - lw/2, Y: s.At.Y - s.Size/2},
		Width:        lw,
		Height:       s.Size,
		BorderRadius: geometry.BorderRadius{tl, tl, bl, bl},
		Rotation:     s.Rotation,
	}
	return horizontal, vertical
}

// drawCross paints three rects around the origin after moving to At: the
// upper arm, the full horizontal bar, then the lower arm.
func drawCross(s CrossSchema) func(canvas.Canvas) {
	lw := lineWidth(s.LineWidth)
	hw := lw / 2
	tl, tr, bl, br := crossCorners(s.BorderRadius)
	parts := []RectSchema{
		{
			At:           geometry.Coordinate{X: -hw, Y: -s.Size / 2},
			Width:        lw,
			Height:       s.Size/2 - hw,
			BorderRadius: geometry.BorderRadius{tl, tl, 0, 0},
		},
		{
			At:           geometry.Coordinate{X: -s.Size / 2, Y: -hw},
			Width:        s.Size,
			Height:       lw,
			BorderRadius: geometry.BorderRadius{br, tr, tr, br},
		},
		{
			At:           geometry.Coordinate{X: -hw, Y: hw},
			Width:        lw,
			Height:       s.Size/2 - hw,
			BorderRadius: geometry.BorderRadius{0, 0, bl, bl},
		},
	}
	draws := make([]func(canvas.Canvas), len(parts))
	for i, p := range parts {
		p.FillColor = s.FillColor
		draws[i] = drawRect(p)
	}
	return func(c canvas.Canvas) {
		c.Save()
		c.Translate(s.At.X, s.At.Y)
		c.Rotate(s.Rotation)
		for _, draw := range draws {
			draw(c)
		}
		c.Restore()
	}
}
