// Package canvas defines the immediate-mode 2D drawing surface shapes render
// onto, with a command recorder and a raster backend.
package canvas

import (
	"fmt"
	"image"

	"github.com/inamate/shapekit/internal/geometry"
)

// Canvas is a 2D immediate-mode drawing context modeled on HTML Canvas2D.
// Path construction, fill and stroke follow Canvas2D semantics: Fill and
// Stroke do not consume the current path, BeginPath clears it.
type Canvas interface {
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)
	// Transform returns the current transformation matrix.
	Transform() geometry.Matrix2D

	BeginPath()
	ClosePath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64, anticlockwise bool)
	ArcTo(x1, y1, x2, y2, radius float64)
	Ellipse(x, y, radiusX, radiusY, rotation, startAngle, endAngle float64, anticlockwise bool)
	Rect(x, y, w, h float64)
	Fill()
	Stroke()

	SetFillStyle(p Paint)
	SetStrokeStyle(p Paint)
	SetLineWidth(w float64)
	SetLineDash(segments []float64)
	SetLineCap(c LineCap)
	SetLineJoin(j LineJoin)
	SetCompositeOperation(op CompositeOperation)
	FillRect(x, y, w, h float64)

	SetFont(f Font)
	SetTextAlign(a TextAlign)
	SetTextBaseline(b TextBaseline)
	FillText(s string, x, y float64)
	MeasureText(s string) TextMetrics

	// DrawImage draws img scaled into the given rect. src identifies the
	// bitmap for sinks that replay commands elsewhere.
	DrawImage(src string, img image.Image, x, y, w, h float64)
}

// Paint is a fill or stroke style: a solid color or a linear gradient.
type Paint struct {
	Color    string          `json:"color,omitempty"`
	Gradient *LinearGradient `json:"gradient,omitempty"`
}

// LinearGradient runs from (X0, Y0) to (X1, Y1) through Stops.
type LinearGradient struct {
	X0    float64                 `json:"x0"`
	Y0    float64                 `json:"y0"`
	X1    float64                 `json:"x1"`
	Y1    float64                 `json:"y1"`
	Stops []geometry.GradientStop `json:"stops"`
}

// Solid returns a solid color paint.
func Solid(color string) Paint {
	return Paint{Color: color}
}

// Linear returns a gradient paint between two points.
func Linear(from, to geometry.Coordinate, stops []geometry.GradientStop) Paint {
	return Paint{Gradient: &LinearGradient{X0: from.X, Y0: from.Y, X1: to.X, Y1: to.Y, Stops: stops}}
}

type LineCap string

const (
	LineCapButt   LineCap = "butt"
	LineCapRound  LineCap = "round"
	LineCapSquare LineCap = "square"
)

type LineJoin string

const (
	LineJoinMiter LineJoin = "miter"
	LineJoinRound LineJoin = "round"
	LineJoinBevel LineJoin = "bevel"
)

type CompositeOperation string

const (
	CompositeSourceOver     CompositeOperation = "source-over"
	CompositeDestinationOut CompositeOperation = "destination-out"
)

type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

type TextBaseline string

const (
	TextBaselineAlphabetic TextBaseline = "alphabetic"
	TextBaselineMiddle     TextBaseline = "middle"
	TextBaselineTop        TextBaseline = "top"
)

// Font is a CSS-style font description.
type Font struct {
	Weight string
	Size   float64
	Family string
}

// String renders the font the way Canvas2D's font property expects it.
func (f Font) String() string {
	return fmt.Sprintf("%s %gpx %s", f.Weight, f.Size, f.Family)
}

// TextMetrics are the measurements Canvas2D's measureText reports.
type TextMetrics struct {
	Width   float64
	Ascent  float64
	Descent float64
}

// Measurer measures text without a drawing surface.
type Measurer interface {
	Measure(f Font, s string) TextMetrics
}
