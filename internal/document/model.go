package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inamate/shapekit/internal/animation"
	"github.com/inamate/shapekit/internal/shape"
)

var ErrInvalidDocument = errors.New("invalid document")

// Document is a scene file: the shapes to draw in painter's order, the
// timelines they may play, and what plays when the document loads.
type Document struct {
	Version   int           `json:"version" yaml:"version"`
	Scene     Scene         `json:"scene" yaml:"scene"`
	Shapes    []ShapeNode   `json:"shapes" yaml:"shapes"`
	Timelines []TimelineDef `json:"timelines,omitempty" yaml:"timelines,omitempty"`
	Playback  []PlaybackDef `json:"playback,omitempty" yaml:"playback,omitempty"`
}

type Scene struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}

// ShapeNode is one shape of the scene. Schema holds the kind's schema
// struct, so it is decoded through the shape kind table.
type ShapeNode struct {
	ID     string       `json:"id" yaml:"id"`
	Kind   shape.Kind   `json:"kind" yaml:"kind"`
	Hidden bool         `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Schema shape.Schema `json:"schema" yaml:"schema"`
}

type shapeNodeJSON struct {
	ID     string          `json:"id"`
	Kind   shape.Kind      `json:"kind"`
	Hidden bool            `json:"hidden"`
	Schema json.RawMessage `json:"schema"`
}

func (n *ShapeNode) UnmarshalJSON(data []byte) error {
	var raw shapeNodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Kind == "" {
		return fmt.Errorf("%w: shape %q has no kind", ErrInvalidDocument, raw.ID)
	}
	if len(raw.Schema) == 0 {
		raw.Schema = json.RawMessage(`{}`)
	}
	s, err := shape.DecodeJSON(raw.Kind, raw.Schema)
	if err != nil {
		return fmt.Errorf("shape %q: %w", raw.ID, err)
	}
	*n = ShapeNode{ID: raw.ID, Kind: raw.Kind, Hidden: raw.Hidden, Schema: s}
	return nil
}

type shapeNodeYAML struct {
	ID     string     `yaml:"id"`
	Kind   shape.Kind `yaml:"kind"`
	Hidden bool       `yaml:"hidden"`
	Schema yaml.Node  `yaml:"schema"`
}

func (n *ShapeNode) UnmarshalYAML(node *yaml.Node) error {
	var raw shapeNodeYAML
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Kind == "" {
		return fmt.Errorf("%w: shape %q has no kind", ErrInvalidDocument, raw.ID)
	}
	schemaNode := &raw.Schema
	if schemaNode.Kind == 0 {
		schemaNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	s, err := shape.DecodeYAML(raw.Kind, schemaNode)
	if err != nil {
		return fmt.Errorf("shape %q: %w", raw.ID, err)
	}
	*n = ShapeNode{ID: raw.ID, Kind: raw.Kind, Hidden: raw.Hidden, Schema: s}
	return nil
}

// TimelineDef is the serializable form of an animation timeline. Durations
// are milliseconds. A keyframe property is either a plain value or a
// {value, easing} wrapper naming an easing preset.
type TimelineDef struct {
	ID         string                      `json:"id" yaml:"id"`
	ForShapes  []shape.Kind                `json:"forShapes" yaml:"forShapes"`
	DurationMS float64                     `json:"duration" yaml:"duration"`
	DelayMS    float64                     `json:"delay,omitempty" yaml:"delay,omitempty"`
	Easing     map[string]animation.Easing `json:"easing,omitempty" yaml:"easing,omitempty"`
	Keyframes  []KeyframeDef               `json:"keyframes" yaml:"keyframes"`
}

type KeyframeDef struct {
	Progress   float64        `json:"progress" yaml:"progress"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// Timeline converts the definition into a timeline the animation
// controller can compile.
func (d TimelineDef) Timeline() (animation.Timeline, error) {
	tl := animation.Timeline{
		ForShapes: d.ForShapes,
		Duration:  millis(d.DurationMS),
		Delay:     millis(d.DelayMS),
		Keyframes: make([]animation.TimelineKeyframe, len(d.Keyframes)),
	}
	if len(d.Easing) > 0 {
		tl.Easing = make(map[string]animation.EasingFunc, len(d.Easing))
		for prop, name := range d.Easing {
			f, err := name.Func()
			if err != nil {
				return animation.Timeline{}, fmt.Errorf("timeline %q easing for %s: %w", d.ID, prop, err)
			}
			tl.Easing[prop] = f
		}
	}
	for i, kf := range d.Keyframes {
		props := make(map[string]any, len(kf.Properties))
		for name, raw := range kf.Properties {
			v, err := keyframeValue(raw)
			if err != nil {
				return animation.Timeline{}, fmt.Errorf("timeline %q keyframe %d %s: %w", d.ID, i, name, err)
			}
			props[name] = v
		}
		tl.Keyframes[i] = animation.TimelineKeyframe{Progress: kf.Progress, Properties: props}
	}
	return tl, nil
}

// keyframeValue unwraps {value, easing} maps. Any other map, such as a
// coordinate, is passed through.
func keyframeValue(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw, nil
	}
	v, ok := m["value"]
	if !ok {
		return raw, nil
	}
	name, _ := m["easing"].(string)
	if name == "" {
		return animation.Value{Value: v}, nil
	}
	f, err := animation.Easing(name).Func()
	if err != nil {
		return nil, err
	}
	return animation.Value{Value: v, Easing: f}, nil
}

// PlaybackDef plays a timeline on a shape when the document loads. A
// RunCount of zero loops forever.
type PlaybackDef struct {
	Timeline string  `json:"timeline" yaml:"timeline"`
	Shape    string  `json:"shape" yaml:"shape"`
	RunCount float64 `json:"runCount,omitempty" yaml:"runCount,omitempty"`
}

// Shape returns the node with the given id.
func (d *Document) Shape(id string) (ShapeNode, bool) {
	for _, n := range d.Shapes {
		if n.ID == id {
			return n, true
		}
	}
	return ShapeNode{}, false
}

func (d *Document) TimelineDef(id string) (TimelineDef, bool) {
	for _, tl := range d.Timelines {
		if tl.ID == id {
			return tl, true
		}
	}
	return TimelineDef{}, false
}

// Validate checks the cross references of the document. Shape schemas are
// validated when the shapes are built.
func (d *Document) Validate() error {
	if d.Scene.Width <= 0 || d.Scene.Height <= 0 {
		return fmt.Errorf("%w: scene size %dx%d", ErrInvalidDocument, d.Scene.Width, d.Scene.Height)
	}
	shapes := make(map[string]bool, len(d.Shapes))
	for _, n := range d.Shapes {
		if n.ID == "" {
			return fmt.Errorf("%w: shape without id", ErrInvalidDocument)
		}
		if shapes[n.ID] {
			return fmt.Errorf("%w: duplicate shape id %q", ErrInvalidDocument, n.ID)
		}
		if n.Schema == nil {
			return fmt.Errorf("%w: shape %q has no schema", ErrInvalidDocument, n.ID)
		}
		if n.Schema.Kind() != n.Kind {
			return fmt.Errorf("%w: shape %q is a %s but holds a %s schema", ErrInvalidDocument, n.ID, n.Kind, n.Schema.Kind())
		}
		shapes[n.ID] = true
	}
	timelines := make(map[string]bool, len(d.Timelines))
	for _, tl := range d.Timelines {
		if tl.ID == "" {
			return fmt.Errorf("%w: timeline without id", ErrInvalidDocument)
		}
		if timelines[tl.ID] {
			return fmt.Errorf("%w: duplicate timeline id %q", ErrInvalidDocument, tl.ID)
		}
		timelines[tl.ID] = true
	}
	for _, p := range d.Playback {
		if !timelines[p.Timeline] {
			return fmt.Errorf("%w: playback of unknown timeline %q", ErrInvalidDocument, p.Timeline)
		}
		if !shapes[p.Shape] {
			return fmt.Errorf("%w: playback on unknown shape %q", ErrInvalidDocument, p.Shape)
		}
	}
	return nil
}
