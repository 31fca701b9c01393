package shape

import (
	"context"
	"math"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

// Missing-media placeholder.
const (
	checkerSize   = 10.0
	checkerColorA = "#FF00DC"
	checkerColorB = "#000000"
)

// Pending is implemented by shapes whose drawing depends on a resource
// that may still be loading.
type Pending interface {
	// DrawWhenReady waits for the resource to settle, then draws.
	DrawWhenReady(ctx context.Context, c canvas.Canvas) error
}

type imageShape struct {
	*base
	schema ImageSchema
	loader *ImageLoader
}

// NewImage builds an image shape. Draw never blocks: until the source has
// loaded it draws only the backdrop, and a failed source draws a
// checkerboard.
func NewImage(s ImageSchema, opts ...Option) (Shape, error) {
	return buildImage(s, newConfig(opts))
}

func buildImage(s ImageSchema, cfg *config) (Shape, error) {
	if s.Width < 0 || s.Height < 0 {
		return nil, invalid(KindImage, "width and height must be positive")
	}
	s = resolveImage(s)
	r := s.rect()
	bbox := func() geometry.BoundingBox { return rectBoundingBox(r) }
	sh := &imageShape{schema: s, loader: cfg.loader}
	sh.base = &base{
		name:        KindImage,
		drawShape:   sh.drawFrame,
		shapeHitbox: rectHitbox(r),
		efficientHitbox: func(b geometry.BoundingBox) bool {
			return geometry.BoundingBoxesOverlap(bbox(), b)
		},
		boundingBox: bbox,
		text: textProps(
			geometry.CenterPoint(geometry.BoundingBox{At: s.At, Width: s.Width, Height: s.Height}),
			s.TextArea, cfg,
		),
	}
	return sh, nil
}

// rect is the frame the bitmap is drawn into. It has no fill of its own.
func (s ImageSchema) rect() RectSchema {
	return resolveRect(RectSchema{
		At:        s.At,
		Width:     s.Width,
		Height:    s.Height,
		FillColor: "transparent",
		Stroke:    s.Stroke,
		Rotation:  s.Rotation,
	})
}

func (sh *imageShape) entry() *ImageEntry {
	return sh.loader.Load(sh.schema.Src, LoadCallbacks{
		OnLoad:      sh.schema.OnLoad,
		OnLoadError: sh.schema.OnLoadError,
	})
}

func (sh *imageShape) drawFrame(c canvas.Canvas) {
	sh.drawEntry(c, sh.entry())
}

func (sh *imageShape) drawEntry(c canvas.Canvas, e *ImageEntry) {
	s := sh.schema
	drawRect(s.rect())(c)

	c.Save()
	c.Translate(s.At.X+s.Width/2, s.At.Y+s.Height/2)
	if s.Rotation != 0 {
		c.Rotate(s.Rotation)
	}
	if !e.Loading() && e.Err() != nil {
		drawCheckerboard(c, s.Width, s.Height)
	}
	if img := e.Image(); img != nil {
		c.DrawImage(s.Src, img, -s.Width/2, -s.Height/2, s.Width, s.Height)
	}
	c.Restore()
}

// DrawWhenReady waits for the source to load or fail, then draws the shape
// and its text area.
func (sh *imageShape) DrawWhenReady(ctx context.Context, c canvas.Canvas) error {
	e := sh.entry()
	select {
	case <-e.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	sh.drawEntry(c, e)
	sh.DrawTextArea(c)
	return nil
}

func drawCheckerboard(c canvas.Canvas, w, h float64) {
	cols := int(math.Ceil(w / checkerSize))
	rows := int(math.Ceil(h / checkerSize))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			color := checkerColorB
			if (x+y)%2 == 0 {
				color = checkerColorA
			}
			c.SetFillStyle(canvas.Solid(color))
			c.FillRect(-w/2+float64(x)*checkerSize, -h/2+float64(y)*checkerSize, checkerSize, checkerSize)
		}
	}
}
