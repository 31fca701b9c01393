package shape

import (
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

type RectSchema struct {
	At           geometry.Coordinate   `json:"at" yaml:"at"`
	Width        float64               `json:"width" yaml:"width"`
	Height       float64               `json:"height" yaml:"height"`
	FillColor    string                `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	Stroke       *geometry.Stroke      `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	BorderRadius geometry.BorderRadius `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Rotation     float64               `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	TextArea     *text.Area            `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// SquareSchema is a rect with equal sides.
type SquareSchema struct {
	At           geometry.Coordinate   `json:"at" yaml:"at"`
	Size         float64               `json:"size" yaml:"size"`
	FillColor    string                `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	Stroke       *geometry.Stroke      `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	BorderRadius geometry.BorderRadius `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Rotation     float64               `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	TextArea     *text.Area            `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

type EllipseSchema struct {
	At        geometry.Coordinate `json:"at" yaml:"at"`
	RadiusX   float64             `json:"radiusX" yaml:"radiusX"`
	RadiusY   float64             `json:"radiusY" yaml:"radiusY"`
	FillColor string              `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	Stroke    *geometry.Stroke    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	TextArea  *text.Area          `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// CircleSchema is an ellipse with a single radius.
type CircleSchema struct {
	At        geometry.Coordinate `json:"at" yaml:"at"`
	Radius    float64             `json:"radius" yaml:"radius"`
	FillColor string              `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	Stroke    *geometry.Stroke    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	TextArea  *text.Area          `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// LineSchema is a straight segment. TextOffsetFromCenter slides the text
// area along the line from its midpoint, towards End when positive.
type LineSchema struct {
	Start                geometry.Coordinate     `json:"start" yaml:"start"`
	End                  geometry.Coordinate     `json:"end" yaml:"end"`
	LineWidth            *float64                `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	FillColor            string                  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	FillGradient         []geometry.GradientStop `json:"fillGradient,omitempty" yaml:"fillGradient,omitempty"`
	Dash                 []float64               `json:"dash,omitempty" yaml:"dash,omitempty"`
	TextOffsetFromCenter float64                 `json:"textOffsetFromCenter,omitempty" yaml:"textOffsetFromCenter,omitempty"`
	TextArea             *text.Area              `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// ArrowSchema is a line with a head at End.
type ArrowSchema LineSchema

type TriangleSchema struct {
	PointA       geometry.Coordinate     `json:"pointA" yaml:"pointA"`
	PointB       geometry.Coordinate     `json:"pointB" yaml:"pointB"`
	PointC       geometry.Coordinate     `json:"pointC" yaml:"pointC"`
	FillColor    string                  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	FillGradient []geometry.GradientStop `json:"fillGradient,omitempty" yaml:"fillGradient,omitempty"`
	Stroke       *geometry.Stroke        `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	TextArea     *text.Area              `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// CrossSchema is a plus sign of arm thickness LineWidth centered on At.
type CrossSchema struct {
	At           geometry.Coordinate   `json:"at" yaml:"at"`
	Size         float64               `json:"size" yaml:"size"`
	LineWidth    *float64              `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	BorderRadius geometry.BorderRadius `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	Rotation     float64               `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	FillColor    string                `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	TextArea     *text.Area            `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

type StarSchema struct {
	At          geometry.Coordinate `json:"at" yaml:"at"`
	InnerRadius float64             `json:"innerRadius" yaml:"innerRadius"`
	OuterRadius float64             `json:"outerRadius" yaml:"outerRadius"`
	Points      int                 `json:"points,omitempty" yaml:"points,omitempty"`
	Rotation    float64             `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	FillColor   string              `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	TextArea    *text.Area          `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// ScribbleType selects between painting and erasing.
type ScribbleType string

const (
	ScribbleDraw  ScribbleType = "draw"
	ScribbleErase ScribbleType = "erase"
)

type ScribbleSchema struct {
	Type        ScribbleType          `json:"type" yaml:"type"`
	Points      []geometry.Coordinate `json:"points" yaml:"points"`
	BrushWeight float64               `json:"brushWeight,omitempty" yaml:"brushWeight,omitempty"`
	FillColor   string                `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	TextArea    *text.Area            `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// UTurnSchema is an arrow that doubles back: a long leg of UpDistance from
// At, a half circle of radius Spacing, then a short leg of DownDistance
// ending in an arrow head.
type UTurnSchema struct {
	At           geometry.Coordinate     `json:"at" yaml:"at"`
	Spacing      float64                 `json:"spacing" yaml:"spacing"`
	UpDistance   float64                 `json:"upDistance" yaml:"upDistance"`
	DownDistance float64                 `json:"downDistance" yaml:"downDistance"`
	Rotation     float64                 `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	LineWidth    *float64                `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
	FillColor    string                  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
	FillGradient []geometry.GradientStop `json:"fillGradient,omitempty" yaml:"fillGradient,omitempty"`
	TextArea     *text.Area              `json:"textArea,omitempty" yaml:"textArea,omitempty"`
}

// ImageSchema is a bitmap drawn into a rect. OnLoad and OnLoadError fire
// when this schema's draw starts the load of Src.
type ImageSchema struct {
	Src         string              `json:"src" yaml:"src"`
	At          geometry.Coordinate `json:"at" yaml:"at"`
	Width       float64             `json:"width" yaml:"width"`
	Height      float64             `json:"height" yaml:"height"`
	Rotation    float64             `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Stroke      *geometry.Stroke    `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	TextArea    *text.Area          `json:"textArea,omitempty" yaml:"textArea,omitempty"`
	OnLoad      func()              `json:"-" yaml:"-"`
	OnLoadError func()              `json:"-" yaml:"-"`
}

func (RectSchema) Kind() Kind     { return KindRect }
func (SquareSchema) Kind() Kind   { return KindSquare }
func (EllipseSchema) Kind() Kind  { return KindEllipse }
func (CircleSchema) Kind() Kind   { return KindCircle }
func (LineSchema) Kind() Kind     { return KindLine }
func (ArrowSchema) Kind() Kind    { return KindArrow }
func (TriangleSchema) Kind() Kind { return KindTriangle }
func (CrossSchema) Kind() Kind    { return KindCross }
func (StarSchema) Kind() Kind     { return KindStar }
func (ScribbleSchema) Kind() Kind { return KindScribble }
func (UTurnSchema) Kind() Kind    { return KindUTurn }
func (ImageSchema) Kind() Kind    { return KindImage }
