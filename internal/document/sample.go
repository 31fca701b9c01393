package document

import (
	"github.com/inamate/shapekit/internal/animation"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/shape"
	"github.com/inamate/shapekit/internal/text"
	"github.com/inamate/shapekit/internal/typeid"
)

func ptr[T any](v T) *T { return &v }

// NewSampleDocument builds a demo scene: a labelled card, a pulsing
// circle, a spinning star and an arrow pointing at the card.
func NewSampleDocument() *Document {
	cardID := typeid.NewShapeID()
	circleID := typeid.NewShapeID()
	starID := typeid.NewShapeID()
	arrowID := typeid.NewShapeID()
	uturnID := typeid.NewShapeID()

	return &Document{
		Version: 1,
		Scene: Scene{
			Name:       "Sample",
			Width:      1280,
			Height:     720,
			Background: "#1a1a2e",
		},
		Shapes: []ShapeNode{
			{
				ID:   cardID,
				Kind: shape.KindRect,
				Schema: shape.RectSchema{
					At:           geometry.Coordinate{X: 200, Y: 200},
					Width:        240,
					Height:       150,
					FillColor:    "#e94560",
					Stroke:       &geometry.Stroke{Color: "#000000", LineWidth: 2},
					BorderRadius: geometry.Uniform(12),
					TextArea: &text.Area{
						TextBlock: text.Block{Content: "shapekit", FontSize: 24, FontWeight: text.FontWeightBold, Color: "white"},
						Color:     "#e94560",
					},
				},
			},
			{
				ID:   circleID,
				Kind: shape.KindCircle,
				Schema: shape.CircleSchema{
					At:        geometry.Coordinate{X: 700, Y: 275},
					Radius:    60,
					FillColor: "#0f3460",
					Stroke:    &geometry.Stroke{Color: "#16213e", LineWidth: 4, Dash: []float64{8, 4}},
				},
			},
			{
				ID:   starID,
				Kind: shape.KindStar,
				Schema: shape.StarSchema{
					At:          geometry.Coordinate{X: 1000, Y: 275},
					InnerRadius: 30,
					OuterRadius: 70,
					Points:      5,
					FillColor:   "gold",
				},
			},
			{
				ID:   arrowID,
				Kind: shape.KindArrow,
				Schema: shape.ArrowSchema{
					Start:     geometry.Coordinate{X: 620, Y: 550},
					End:       geometry.Coordinate{X: 450, Y: 370},
					LineWidth: ptr(6.0),
					FillGradient: []geometry.GradientStop{
						{Offset: 0, Color: "#53354a"},
						{Offset: 1, Color: "#e94560"},
					},
				},
			},
			{
				ID:   uturnID,
				Kind: shape.KindUTurn,
				Schema: shape.UTurnSchema{
					At:           geometry.Coordinate{X: 900, Y: 600},
					Spacing:      40,
					UpDistance:   120,
					DownDistance: 60,
					LineWidth:    ptr(8.0),
					FillColor:    "#16c79a",
				},
			},
		},
		Timelines: []TimelineDef{
			{
				ID:         "pulse",
				ForShapes:  []shape.Kind{shape.KindCircle, shape.KindEllipse},
				DurationMS: 1200,
				Easing:     map[string]animation.Easing{"radius": animation.EasingInOut},
				Keyframes: []KeyframeDef{
					{Progress: 0.5, Properties: map[string]any{"radius": 80.0, "fillColor": "#533483"}},
				},
			},
			{
				ID:         "spin",
				ForShapes:  []shape.Kind{shape.KindStar, shape.KindRect, shape.KindCross},
				DurationMS: 3000,
				Keyframes: []KeyframeDef{
					{Progress: 0, Properties: map[string]any{"rotation": 0.0}},
					{Progress: 1, Properties: map[string]any{"rotation": 6.283185307179586}},
				},
			},
		},
		Playback: []PlaybackDef{
			{Timeline: "pulse", Shape: circleID},
			{Timeline: "spin", Shape: starID},
		},
	}
}
