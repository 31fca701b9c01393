package geometry

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Coordinate is a point on the 2D canvas.
type Coordinate struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns c + o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// BoundingBox is an axis-aligned box anchored at its top-left corner.
// Width and Height may be negative on raw input; see NormalizeBoundingBox.
type BoundingBox struct {
	At     Coordinate `json:"at" yaml:"at"`
	Width  float64    `json:"width" yaml:"width"`
	Height float64    `json:"height" yaml:"height"`
}

// Union returns the smallest box containing both boxes. Empty boxes are ignored.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	b, o = NormalizeBoundingBox(b), NormalizeBoundingBox(o)
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}

	minX := min(b.At.X, o.At.X)
	minY := min(b.At.Y, o.At.Y)
	maxX := max(b.At.X+b.Width, o.At.X+o.Width)
	maxY := max(b.At.Y+b.Height, o.At.Y+o.Height)

	return BoundingBox{
		At:     Coordinate{X: minX, Y: minY},
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// IsEmpty checks if the box has zero area.
func (b BoundingBox) IsEmpty() bool {
	return b.Width == 0 || b.Height == 0
}

// GradientStop places a color at an offset in [0, 1] along a gradient.
type GradientStop struct {
	Offset float64 `json:"offset" yaml:"offset"`
	Color  string  `json:"color" yaml:"color"`
}

// Stroke is a border drawn around a shape.
type Stroke struct {
	Color     string    `json:"color" yaml:"color"`
	LineWidth float64   `json:"lineWidth" yaml:"lineWidth"`
	Dash      []float64 `json:"dash,omitempty" yaml:"dash,omitempty"`
}

// BorderRadius holds either one uniform radius or four per-corner radii
// (top-left, top-right, bottom-right, bottom-left). Nil means unset.
// It decodes from a bare number or an array.
type BorderRadius []float64

// Uniform returns a BorderRadius with the same radius on every corner.
func Uniform(r float64) BorderRadius {
	return BorderRadius{r}
}

func (br *BorderRadius) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*br = BorderRadius{n}
		return nil
	}
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("borderRadius must be a number or an array of numbers: %w", err)
	}
	*br = arr
	return nil
}

func (br BorderRadius) MarshalJSON() ([]byte, error) {
	if len(br) == 1 {
		return json.Marshal(br[0])
	}
	return json.Marshal([]float64(br))
}

func (br *BorderRadius) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var n float64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("borderRadius must be a number or an array of numbers: %w", err)
		}
		*br = BorderRadius{n}
		return nil
	}
	var arr []float64
	if err := node.Decode(&arr); err != nil {
		return fmt.Errorf("borderRadius must be a number or an array of numbers: %w", err)
	}
	*br = arr
	return nil
}
