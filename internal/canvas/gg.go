package canvas

import (
	"image"
	"io"
	"log/slog"
	"math"

	"github.com/gogpu/gg"
	ggtext "github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/shapekit/internal/colors"
	"github.com/inamate/shapekit/internal/geometry"
)

// arcStep is the maximum angle covered by one flattened arc segment.
const arcStep = math.Pi / 32

// Raster is a Canvas backed by a gogpu/gg software context.
//
// gg shares one brush between fill and stroke, so the backend keeps both
// paints and installs the right one before painting. destination-out is
// emulated by painting with the background color.
type Raster struct {
	dc         *gg.Context
	measurer   Measurer
	background string

	fill      Paint
	stroke    Paint
	composite CompositeOperation
	font      Font
	align     TextAlign
	baseline  TextBaseline

	// current point in user space, for Canvas2D arc/arcTo connection rules
	cur    geometry.Coordinate
	hasCur bool
	start  geometry.Coordinate

	stack []rasterState

	regular *ggtext.FontSource
	bold    *ggtext.FontSource

	err error
}

type rasterState struct {
	fill      Paint
	stroke    Paint
	composite CompositeOperation
	font      Font
	align     TextAlign
	baseline  TextBaseline
}

// NewRaster creates a width x height raster cleared to background.
func NewRaster(width, height int, background string) *Raster {
	dc := gg.NewContext(width, height)
	bg, err := colors.Parse(background)
	if err != nil {
		bg = colors.MustParse("white")
		background = "white"
	}
	dc.ClearWithColor(gg.FromColor(bg.NRGBA()))

	r := &Raster{
		dc:         dc,
		measurer:   DefaultMeasurer(),
		background: background,
		fill:       Solid("black"),
		stroke:     Solid("black"),
		composite:  CompositeSourceOver,
		font:       Font{Weight: "normal", Size: 10, Family: "sans-serif"},
		align:      TextAlignLeft,
		baseline:   TextBaselineAlphabetic,
	}
	if src, err := ggtext.NewFontSource(goregular.TTF); err == nil {
		r.regular = src
	} else {
		slog.Warn("failed to load regular font", "error", err)
	}
	if src, err := ggtext.NewFontSource(gobold.TTF); err == nil {
		r.bold = src
	} else {
		slog.Warn("failed to load bold font", "error", err)
	}
	return r
}

// Image returns the rendered pixels.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the raster as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return r.dc.EncodePNG(w)
}

// Err returns the first painting error, if any.
func (r *Raster) Err() error {
	return r.err
}

// Close releases the font sources and the context.
func (r *Raster) Close() error {
	if r.regular != nil {
		_ = r.regular.Close()
	}
	if r.bold != nil {
		_ = r.bold.Close()
	}
	return r.dc.Close()
}

func (r *Raster) record(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

func (r *Raster) Save() {
	r.stack = append(r.stack, rasterState{
		fill: r.fill, stroke: r.stroke, composite: r.composite,
		font: r.font, align: r.align, baseline: r.baseline,
	})
	r.dc.Push()
}

func (r *Raster) Restore() {
	n := len(r.stack)
	if n == 0 {
		return
	}
	s := r.stack[n-1]
	r.stack = r.stack[:n-1]
	r.fill, r.stroke, r.composite = s.fill, s.stroke, s.composite
	r.font, r.align, r.baseline = s.font, s.align, s.baseline
	r.dc.Pop()
}

func (r *Raster) Translate(x, y float64) { r.dc.Translate(x, y) }
func (r *Raster) Rotate(angle float64)   { r.dc.Rotate(angle) }
func (r *Raster) Scale(x, y float64)     { r.dc.Scale(x, y) }

func (r *Raster) Transform() geometry.Matrix2D {
	m := r.dc.GetTransform()
	return geometry.Matrix2D{m.A, m.D, m.B, m.E, m.C, m.F}
}

func (r *Raster) BeginPath() {
	r.dc.ClearPath()
	r.hasCur = false
}

func (r *Raster) ClosePath() {
	r.dc.ClosePath()
	if r.hasCur {
		r.cur = r.start
	}
}

func (r *Raster) MoveTo(x, y float64) {
	r.dc.MoveTo(x, y)
	r.cur = geometry.Coordinate{X: x, Y: y}
	r.start = r.cur
	r.hasCur = true
}

func (r *Raster) LineTo(x, y float64) {
	if !r.hasCur {
		r.MoveTo(x, y)
		return
	}
	r.dc.LineTo(x, y)
	r.cur = geometry.Coordinate{X: x, Y: y}
}

// sweep returns the signed angle an arc covers under Canvas2D rules.
func sweep(start, end float64, anticlockwise bool) float64 {
	const twoPi = 2 * math.Pi
	if !anticlockwise {
		if end-start >= twoPi {
			return twoPi
		}
		return math.Mod(math.Mod(end-start, twoPi)+twoPi, twoPi)
	}
	if start-end >= twoPi {
		return -twoPi
	}
	return -math.Mod(math.Mod(start-end, twoPi)+twoPi, twoPi)
}

func (r *Raster) ellipsePoints(cx, cy, rx, ry, rotation, start, delta float64) {
	steps := max(1, int(math.Ceil(math.Abs(delta)/arcStep)))
	cos, sin := math.Cos(rotation), math.Sin(rotation)
	for i := 0; i <= steps; i++ {
		a := start + delta*float64(i)/float64(steps)
		px, py := rx*math.Cos(a), ry*math.Sin(a)
		x := cx + px*cos - py*sin
		y := cy + px*sin + py*cos
		if i == 0 && !r.hasCur {
			r.MoveTo(x, y)
			continue
		}
		r.LineTo(x, y)
	}
}

func (r *Raster) Arc(x, y, radius, start, end float64, anticlockwise bool) {
	r.ellipsePoints(x, y, radius, radius, 0, start, sweep(start, end, anticlockwise))
}

func (r *Raster) Ellipse(x, y, rx, ry, rotation, start, end float64, anticlockwise bool) {
	r.ellipsePoints(x, y, rx, ry, rotation, start, sweep(start, end, anticlockwise))
}

func (r *Raster) ArcTo(x1, y1, x2, y2, radius float64) {
	if !r.hasCur {
		r.MoveTo(x1, y1)
		return
	}
	p0 := r.cur
	p1 := geometry.Coordinate{X: x1, Y: y1}
	p2 := geometry.Coordinate{X: x2, Y: y2}

	v1 := p0.Sub(p1)
	v2 := p2.Sub(p1)
	l1, l2 := math.Hypot(v1.X, v1.Y), math.Hypot(v2.X, v2.Y)
	cross := v1.X*v2.Y - v1.Y*v2.X
	if radius == 0 || l1 == 0 || l2 == 0 || math.Abs(cross) < 1e-12 {
		r.LineTo(x1, y1)
		return
	}

	u1 := geometry.Coordinate{X: v1.X / l1, Y: v1.Y / l1}
	u2 := geometry.Coordinate{X: v2.X / l2, Y: v2.Y / l2}
	theta := math.Acos(math.Max(-1, math.Min(1, u1.X*u2.X+u1.Y*u2.Y)))
	tangent := radius / math.Tan(theta/2)

	t1 := geometry.Coordinate{X: p1.X + u1.X*tangent, Y: p1.Y + u1.Y*tangent}
	t2 := geometry.Coordinate{X: p1.X + u2.X*tangent, Y: p1.Y + u2.Y*tangent}

	bis := geometry.Coordinate{X: u1.X + u2.X, Y: u1.Y + u2.Y}
	bl := math.Hypot(bis.X, bis.Y)
	dist := radius / math.Sin(theta/2)
	center := geometry.Coordinate{X: p1.X + bis.X/bl*dist, Y: p1.Y + bis.Y/bl*dist}

	r.LineTo(t1.X, t1.Y)
	a1 := geometry.Angle(center, t1)
	a2 := geometry.Angle(center, t2)
	delta := math.Atan2(math.Sin(a2-a1), math.Cos(a2-a1))
	r.ellipsePoints(center.X, center.Y, radius, radius, 0, a1, delta)
}

func (r *Raster) Rect(x, y, w, h float64) {
	r.MoveTo(x, y)
	r.LineTo(x+w, y)
	r.LineTo(x+w, y+h)
	r.LineTo(x, y+h)
	r.ClosePath()
}

func (r *Raster) brush(p Paint) gg.Brush {
	if r.composite == CompositeDestinationOut {
		p = Solid(r.background)
	}
	if g := p.Gradient; g != nil {
		b := gg.NewLinearGradientBrush(g.X0, g.Y0, g.X1, g.Y1)
		for _, s := range g.Stops {
			c, err := colors.Parse(s.Color)
			if err != nil {
				continue
			}
			b.AddColorStop(s.Offset, gg.FromColor(c.NRGBA()))
		}
		return b
	}
	c, err := colors.Parse(p.Color)
	if err != nil {
		c = colors.RGBA{A: 1}
	}
	return gg.Solid(gg.FromColor(c.NRGBA()))
}

func (r *Raster) Fill() {
	r.dc.SetFillBrush(r.brush(r.fill))
	r.record(r.dc.FillPreserve())
}

func (r *Raster) Stroke() {
	r.dc.SetStrokeBrush(r.brush(r.stroke))
	r.record(r.dc.StrokePreserve())
}

func (r *Raster) SetFillStyle(p Paint)   { r.fill = p }
func (r *Raster) SetStrokeStyle(p Paint) { r.stroke = p }
func (r *Raster) SetLineWidth(w float64) { r.dc.SetLineWidth(w) }

func (r *Raster) SetLineDash(segments []float64) {
	r.dc.SetDash(segments...)
}

func (r *Raster) SetLineCap(c LineCap) {
	switch c {
	case LineCapRound:
		r.dc.SetLineCap(gg.LineCapRound)
	case LineCapSquare:
		r.dc.SetLineCap(gg.LineCapSquare)
	default:
		r.dc.SetLineCap(gg.LineCapButt)
	}
}

func (r *Raster) SetLineJoin(j LineJoin) {
	switch j {
	case LineJoinRound:
		r.dc.SetLineJoin(gg.LineJoinRound)
	case LineJoinBevel:
		r.dc.SetLineJoin(gg.LineJoinBevel)
	default:
		r.dc.SetLineJoin(gg.LineJoinMiter)
	}
}

func (r *Raster) SetCompositeOperation(op CompositeOperation) {
	r.composite = op
}

func (r *Raster) FillRect(x, y, w, h float64) {
	r.BeginPath()
	r.Rect(x, y, w, h)
	r.Fill()
	r.BeginPath()
}

func (r *Raster) SetFont(f Font) {
	r.font = f
	src := r.regular
	if IsBold(f.Weight) && r.bold != nil {
		src = r.bold
	}
	if src != nil && f.Size > 0 {
		r.dc.SetFont(src.Face(f.Size))
	}
}

func (r *Raster) SetTextAlign(a TextAlign)       { r.align = a }
func (r *Raster) SetTextBaseline(b TextBaseline) { r.baseline = b }

func (r *Raster) FillText(s string, x, y float64) {
	var ax float64
	switch r.align {
	case TextAlignCenter:
		ax = 0.5
	case TextAlignRight:
		ax = 1
	}
	var ay float64
	switch r.baseline {
	case TextBaselineMiddle:
		ay = 0.5
	case TextBaselineTop:
		ay = 1
	}

	// gg draws text in device space.
	dx, dy := r.dc.TransformPoint(x, y)
	r.dc.SetColor(r.textColor().NRGBA())
	r.dc.DrawStringAnchored(s, dx, dy, ax, ay)
}

// textColor picks a solid color for glyphs; gradients use their first stop.
func (r *Raster) textColor() colors.RGBA {
	col := r.fill.Color
	if r.composite == CompositeDestinationOut {
		col = r.background
	} else if g := r.fill.Gradient; g != nil && len(g.Stops) > 0 {
		col = g.Stops[0].Color
	}
	c, err := colors.Parse(col)
	if err != nil {
		return colors.RGBA{A: 1}
	}
	return c
}

func (r *Raster) MeasureText(s string) TextMetrics {
	return r.measurer.Measure(r.font, s)
}

func (r *Raster) DrawImage(_ string, img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	r.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         x,
		Y:         y,
		DstWidth:  w,
		DstHeight: h,
	})
}
