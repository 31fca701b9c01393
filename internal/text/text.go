// Package text implements the editable text area shapes can carry: defaults,
// measurement, the matte behind the text, drawing and the edit overlay.
package text

import (
	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
)

// HorizontalPadding is added to measured text on both axes.
const HorizontalPadding = 20

// FontWeight is one of the weights Canvas2D accepts.
type FontWeight string

const (
	FontWeightLighter FontWeight = "lighter"
	FontWeightNormal  FontWeight = "normal"
	FontWeightBold    FontWeight = "bold"
	FontWeightBolder  FontWeight = "bolder"
)

// Block is the text content of an Area.
type Block struct {
	Content    string     `json:"content" yaml:"content"`
	FontSize   float64    `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight FontWeight `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	Color      string     `json:"color,omitempty" yaml:"color,omitempty"`
	FontFamily string     `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
}

// Font returns the canvas font for the block.
func (b Block) Font() canvas.Font {
	return canvas.Font{Weight: string(b.FontWeight), Size: b.FontSize, Family: b.FontFamily}
}

// Area is a box of text. Color fills the matte; ActiveColor is the overlay
// background while editing.
type Area struct {
	TextBlock   Block  `json:"textBlock" yaml:"textBlock"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	ActiveColor string `json:"activeColor,omitempty" yaml:"activeColor,omitempty"`
}

// Dimensions of a piece of text.
type Dimensions struct {
	Width   float64
	Height  float64
	Ascent  float64
	Descent float64
}

// Measure returns the ink dimensions of a block. Height is ascent + descent.
func Measure(m canvas.Measurer, b Block) Dimensions {
	if m == nil {
		m = canvas.DefaultMeasurer()
	}
	tm := m.Measure(b.Font(), b.Content)
	return Dimensions{
		Width:   tm.Width,
		Height:  tm.Ascent + tm.Descent,
		Ascent:  tm.Ascent,
		Descent: tm.Descent,
	}
}

// AreaDimensions pads the measured text and floors each side at twice the
// font size, so short text still gets a square matte.
func AreaDimensions(m canvas.Measurer, b Block) Dimensions {
	d := Measure(m, b)
	return Dimensions{
		Width:   max(d.Width+HorizontalPadding, b.FontSize*2),
		Height:  max(d.Height+HorizontalPadding, b.FontSize*2),
		Ascent:  d.Ascent,
		Descent: d.Descent,
	}
}

// Props are the text operations of a shape with a resolved text area
// centered on an anchor point.
type Props struct {
	area     Area
	at       geometry.Coordinate // matte top-left
	dims     Dimensions
	measurer canvas.Measurer
}

// NewProps places area centered on anchor. area must already be resolved.
// A nil measurer uses canvas.DefaultMeasurer.
func NewProps(anchor geometry.Coordinate, area Area, m canvas.Measurer) *Props {
	if m == nil {
		m = canvas.DefaultMeasurer()
	}
	dims := AreaDimensions(m, area.TextBlock)
	return &Props{
		area: area,
		at: geometry.Coordinate{
			X: anchor.X - dims.Width/2,
			Y: anchor.Y - dims.Height/2,
		},
		dims:     dims,
		measurer: m,
	}
}

// Matte returns the box behind the text.
func (p *Props) Matte() geometry.BoundingBox {
	return geometry.BoundingBox{At: p.at, Width: p.dims.Width, Height: p.dims.Height}
}

// Dimensions returns the padded matte dimensions.
func (p *Props) Dimensions() Dimensions {
	return p.dims
}

// DrawTextAreaMatte fills the matte with the area color.
func (p *Props) DrawTextAreaMatte(c canvas.Canvas) {
	w, h := p.dims.Width, p.dims.Height
	c.Save()
	c.Translate(p.at.X+w/2, p.at.Y+h/2)
	c.BeginPath()
	c.Rect(-w/2, -h/2, w, h)
	c.SetFillStyle(canvas.Solid(p.area.Color))
	c.Fill()
	c.Restore()
}

// DrawText draws the content centered in the matte.
func (p *Props) DrawText(c canvas.Canvas) {
	b := p.area.TextBlock
	c.SetFont(b.Font())
	c.SetFillStyle(canvas.Solid(b.Color))
	c.SetTextAlign(canvas.TextAlignCenter)
	c.SetTextBaseline(canvas.TextBaselineMiddle)
	c.FillText(b.Content, p.at.X+p.dims.Width/2, p.at.Y+p.dims.Height/2+p.dims.Descent/4)
}

// DrawTextArea draws the matte then the text.
func (p *Props) DrawTextArea(c canvas.Canvas) {
	p.DrawTextAreaMatte(c)
	p.DrawText(c)
}

// TextHitbox reports whether pt falls on the matte.
func (p *Props) TextHitbox(pt geometry.Coordinate) bool {
	return geometry.IsPointInBoundingBox(p.Matte(), pt)
}

// StartTextAreaEdit mounts an edit overlay over the matte on host. onBlur
// receives the final content when the session commits.
func (p *Props) StartTextAreaEdit(c canvas.Canvas, host Host, onBlur OnBlur) *EditSession {
	return startEdit(c, host, onBlur, p)
}
