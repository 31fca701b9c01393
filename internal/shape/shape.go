// Package shape builds drawable, hit-testable shapes from declarative
// schemas. Every kind shares the Shape interface and is dispatched through
// a single kind table.
package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

var (
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnknownKind   = errors.New("unknown shape kind")
	ErrNoTextArea    = errors.New("shape has no text area")
)

// Kind names a shape kind. It is also the shape's Name.
type Kind string

const (
	KindArrow    Kind = "arrow"
	KindCircle   Kind = "circle"
	KindCross    Kind = "cross"
	KindEllipse  Kind = "ellipse"
	KindImage    Kind = "image"
	KindLine     Kind = "line"
	KindRect     Kind = "rect"
	KindScribble Kind = "scribble"
	KindSquare   Kind = "square"
	KindStar     Kind = "star"
	KindTriangle Kind = "triangle"
	KindUTurn    Kind = "uturn"
)

// Schema is the declarative description of one shape instance. Each kind
// has its own struct; field json tags are the property names.
type Schema interface {
	Kind() Kind
}

// Shape is the set of operations bound to one resolved schema.
type Shape interface {
	Name() string
	// Draw draws the shape and then its text area.
	Draw(c canvas.Canvas)
	DrawShape(c canvas.Canvas)
	// Hitbox is TextHitbox || ShapeHitbox.
	Hitbox(p geometry.Coordinate) bool
	ShapeHitbox(p geometry.Coordinate) bool
	// EfficientHitbox is a cheap over-approximation used to cull before
	// Hitbox. It never misses a box that contains a ShapeHitbox point.
	EfficientHitbox(b geometry.BoundingBox) bool
	BoundingBox() geometry.BoundingBox
	CenterPoint() geometry.Coordinate

	HasTextArea() bool
	DrawTextArea(c canvas.Canvas)
	DrawTextAreaMatte(c canvas.Canvas)
	DrawText(c canvas.Canvas)
	TextHitbox(p geometry.Coordinate) bool
	StartTextAreaEdit(c canvas.Canvas, host text.Host, onBlur text.OnBlur) (*text.EditSession, error)
}

// base implements Shape from a record of functions. Constructors fill in
// the geometry; text is nil when the schema has no text area.
type base struct {
	name            Kind
	drawShape       func(canvas.Canvas)
	shapeHitbox     func(geometry.Coordinate) bool
	efficientHitbox func(geometry.BoundingBox) bool
	boundingBox     func() geometry.BoundingBox
	text            *text.Props
}

func (b *base) Name() string { return string(b.name) }

func (b *base) Draw(c canvas.Canvas) {
	b.drawShape(c)
	b.DrawTextArea(c)
}

func (b *base) DrawShape(c canvas.Canvas) { b.drawShape(c) }

func (b *base) Hitbox(p geometry.Coordinate) bool {
	return b.TextHitbox(p) || b.shapeHitbox(p)
}

func (b *base) ShapeHitbox(p geometry.Coordinate) bool { return b.shapeHitbox(p) }

func (b *base) EfficientHitbox(box geometry.BoundingBox) bool { return b.efficientHitbox(box) }

func (b *base) BoundingBox() geometry.BoundingBox { return b.boundingBox() }

func (b *base) CenterPoint() geometry.Coordinate {
	return geometry.CenterPoint(b.boundingBox())
}

func (b *base) HasTextArea() bool { return b.text != nil }

func (b *base) DrawTextArea(c canvas.Canvas) {
	if b.text != nil {
		b.text.DrawTextArea(c)
	}
}

func (b *base) DrawTextAreaMatte(c canvas.Canvas) {
	if b.text != nil {
		b.text.DrawTextAreaMatte(c)
	}
}

func (b *base) DrawText(c canvas.Canvas) {
	if b.text != nil {
		b.text.DrawText(c)
	}
}

func (b *base) TextHitbox(p geometry.Coordinate) bool {
	return b.text != nil && b.text.TextHitbox(p)
}

func (b *base) StartTextAreaEdit(c canvas.Canvas, host text.Host, onBlur text.OnBlur) (*text.EditSession, error) {
	if b.text == nil {
		return nil, fmt.Errorf("%s: %w", b.name, ErrNoTextArea)
	}
	return b.text.StartTextAreaEdit(c, host, onBlur), nil
}

// textProps places a resolved text area on anchor. It returns nil when the
// schema carries no text area.
func textProps(anchor geometry.Coordinate, area *text.Area, cfg *config) *text.Props {
	if area == nil {
		return nil
	}
	return text.NewProps(anchor, *area, cfg.measurer)
}

type config struct {
	measurer canvas.Measurer
	loader   *ImageLoader
}

// Option configures shape construction.
type Option func(*config)

// WithMeasurer measures text areas with m instead of the default Go fonts.
func WithMeasurer(m canvas.Measurer) Option {
	return func(c *config) { c.measurer = m }
}

// WithImageLoader resolves image sources through l instead of the default
// loader.
func WithImageLoader(l *ImageLoader) Option {
	return func(c *config) { c.loader = l }
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.measurer == nil {
		cfg.measurer = canvas.DefaultMeasurer()
	}
	if cfg.loader == nil {
		cfg.loader = DefaultImageLoader()
	}
	return cfg
}

type kindEntry struct {
	resolve    func(Schema) Schema
	build      func(Schema, *config) (Shape, error)
	decodeJSON func([]byte) (Schema, error)
	decodeYAML func(*yaml.Node) (Schema, error)
}

func entry[S Schema](resolve func(S) S, build func(S, *config) (Shape, error)) kindEntry {
	return kindEntry{
		resolve: func(s Schema) Schema {
			if v, ok := s.(S); ok {
				return resolve(v)
			}
			return s
		},
		build: func(s Schema, cfg *config) (Shape, error) {
			v, ok := s.(S)
			if !ok {
				return nil, fmt.Errorf("%w: %T is not a %s schema", ErrInvalidSchema, s, s.Kind())
			}
			return build(v, cfg)
		},
		decodeJSON: func(data []byte) (Schema, error) {
			var v S
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
		decodeYAML: func(node *yaml.Node) (Schema, error) {
			var v S
			if err := node.Decode(&v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

var kindTable map[Kind]kindEntry

func init() {
	kindTable = map[Kind]kindEntry{
		KindArrow:    entry(resolveArrow, buildArrow),
		KindCircle:   entry(resolveCircle, buildCircle),
		KindCross:    entry(resolveCross, buildCross),
		KindEllipse:  entry(resolveEllipse, buildEllipse),
		KindImage:    entry(resolveImage, buildImage),
		KindLine:     entry(resolveLine, buildLine),
		KindRect:     entry(resolveRect, buildRect),
		KindScribble: entry(resolveScribble, buildScribble),
		KindSquare:   entry(resolveSquare, buildSquare),
		KindStar:     entry(resolveStar, buildStar),
		KindTriangle: entry(resolveTriangle, buildTriangle),
		KindUTurn:    entry(resolveUTurn, buildUTurn),
	}
}

func lookup(k Kind) (kindEntry, error) {
	e, ok := kindTable[k]
	if !ok {
		return kindEntry{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return e, nil
}

// Kinds lists every shape kind, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New validates s, resolves its defaults and builds the shape.
func New(s Schema, opts ...Option) (Shape, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}
	e, err := lookup(s.Kind())
	if err != nil {
		return nil, err
	}
	return e.build(s, newConfig(opts))
}

// MustNew is New that panics on error. It is meant for schemas known to be
// valid, such as those already accepted by New.
func MustNew(s Schema, opts ...Option) Shape {
	sh, err := New(s, opts...)
	if err != nil {
		panic(err)
	}
	return sh
}

// ResolveDefaults returns s with every unset optional field filled from the
// kind's defaults and its text area resolved.
func ResolveDefaults(s Schema) Schema {
	if s == nil {
		return nil
	}
	e, err := lookup(s.Kind())
	if err != nil {
		return s
	}
	return e.resolve(s)
}

// DecodeJSON decodes a schema of the given kind.
func DecodeJSON(k Kind, data []byte) (Schema, error) {
	e, err := lookup(k)
	if err != nil {
		return nil, err
	}
	s, err := e.decodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", k, err)
	}
	return s, nil
}

// DecodeYAML decodes a schema of the given kind from a YAML node.
func DecodeYAML(k Kind, node *yaml.Node) (Schema, error) {
	e, err := lookup(k)
	if err != nil {
		return nil, err
	}
	s, err := e.decodeYAML(node)
	if err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", k, err)
	}
	return s, nil
}

func invalid(k Kind, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, k, msg)
}
