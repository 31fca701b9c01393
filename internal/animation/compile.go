package animation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/inamate/shapekit/internal/colors"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/shape"
	"github.com/inamate/shapekit/internal/text"
)

var (
	ErrInvalidTimeline      = errors.New("invalid timeline")
	ErrUninterpolable       = errors.New("cannot interpolate value")
	ErrEmptyImperativeTrack = errors.New("imperative track has no value function")
)

// Properties whose values are classified by name rather than by value.
var (
	coordinateProps = map[string]bool{"at": true, "start": true, "end": true}
	textAreaProps   = map[string]bool{"textArea": true}
)

// PropertyFunc samples one property against a live schema. A nil value
// with a nil error means the property is unset on the schema and stays
// untouched.
type PropertyFunc func(schema shape.Schema, progress float64) (any, error)

// CompiledTimeline is a Timeline reduced to one function per property.
type CompiledTimeline struct {
	Properties  map[string]PropertyFunc
	Duration    time.Duration
	Delay       time.Duration
	ValidShapes map[shape.Kind]bool

	names []string
}

// ValidFor reports whether shapes of kind k may play the timeline.
func (ct *CompiledTimeline) ValidFor(k shape.Kind) bool { return ct.ValidShapes[k] }

// PropertyNames lists the animated properties in application order.
func (ct *CompiledTimeline) PropertyNames() []string { return ct.names }

// Apply samples every property against s at progress and returns s with
// the results layered on top. Every property sees the same input schema.
// Properties the schema's kind does not have are ignored.
func (ct *CompiledTimeline) Apply(s shape.Schema, progress float64) (shape.Schema, error) {
	values := make([]any, len(ct.names))
	for i, name := range ct.names {
		v, err := ct.Properties[name](s, progress)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	out := s
	for i, name := range ct.names {
		if values[i] == nil {
			continue
		}
		if _, ok := shape.Property(out, name); !ok {
			continue
		}
		next, err := shape.WithProperty(out, name, values[i])
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

type trackKeyframe struct {
	progress float64
	value    any
	easing   EasingFunc
}

// Compile validates tl and builds its property functions. Every keyframed
// property gets identity keyframes at 0 and 1 unless the timeline sets
// them, so each function is defined over the whole cycle.
func Compile(tl Timeline) (*CompiledTimeline, error) {
	if tl.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidTimeline)
	}
	if tl.Delay < 0 {
		return nil, fmt.Errorf("%w: delay must not be negative", ErrInvalidTimeline)
	}

	ct := &CompiledTimeline{
		Properties:  make(map[string]PropertyFunc),
		Duration:    tl.Duration,
		Delay:       tl.Delay,
		ValidShapes: make(map[shape.Kind]bool, len(tl.ForShapes)),
	}
	for _, k := range tl.ForShapes {
		ct.ValidShapes[k] = true
	}

	keyframes := make([]TimelineKeyframe, len(tl.Keyframes))
	copy(keyframes, tl.Keyframes)
	for _, kf := range keyframes {
		if kf.Progress < 0 || kf.Progress > 1 {
			return nil, fmt.Errorf("%w: keyframe progress %v outside [0, 1]", ErrInvalidTimeline, kf.Progress)
		}
	}
	sort.SliceStable(keyframes, func(i, j int) bool { return keyframes[i].Progress < keyframes[j].Progress })

	defaultEasing := func(name string) EasingFunc {
		if f := tl.Easing[name]; f != nil {
			return f
		}
		return Linear
	}

	for _, name := range keyframedProperties(keyframes) {
		var track []trackKeyframe
		for _, kf := range keyframes {
			raw, ok := kf.Properties[name]
			if !ok || raw == nil {
				continue
			}
			tk := trackKeyframe{progress: kf.Progress, value: raw}
			switch w := raw.(type) {
			case Value:
				tk.value, tk.easing = w.Value, w.Easing
			case *Value:
				tk.value, tk.easing = w.Value, w.Easing
			}
			if tk.value == nil {
				continue
			}
			if err := checkPlain(name, tk.value); err != nil {
				return nil, err
			}
			track = append(track, tk)
		}

		if len(track) == 0 || track[0].progress != 0 {
			track = append([]trackKeyframe{{progress: 0, value: ValueFunc(identity)}}, track...)
		}
		if track[len(track)-1].progress != 1 {
			track = append(track, trackKeyframe{progress: 1, value: ValueFunc(identity)})
		}
		ct.Properties[name] = compileProperty(name, track, defaultEasing(name))
	}

	for name, custom := range tl.Custom {
		if custom == nil || custom.Value == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmptyImperativeTrack, name)
		}
		easing := custom.Easing
		if easing == nil {
			easing = defaultEasing(name)
		}
		value := custom.Value
		ct.Properties[name] = func(_ shape.Schema, progress float64) (any, error) {
			return value(easing(progress)), nil
		}
	}

	ct.names = make([]string, 0, len(ct.Properties))
	for name := range ct.Properties {
		ct.names = append(ct.names, name)
	}
	sort.Strings(ct.names)
	return ct, nil
}

func keyframedProperties(keyframes []TimelineKeyframe) []string {
	seen := make(map[string]bool)
	var names []string
	for _, kf := range keyframes {
		for name := range kf.Properties {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// checkPlain rejects keyframe values no interpolation can consume. Value
// functions are checked when sampled.
func checkPlain(name string, v any) error {
	if _, ok := asValueFunc(v); ok {
		return nil
	}
	switch {
	case coordinateProps[name]:
		if _, ok := toCoordinate(v); ok {
			return nil
		}
	case textAreaProps[name]:
		if _, ok := toTextArea(v); ok {
			return nil
		}
	default:
		if _, ok := toFloat(v); ok {
			return nil
		}
		if s, ok := v.(string); ok && colors.IsColor(s) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s = %#v", ErrUninterpolable, name, v)
}

func compileProperty(name string, track []trackKeyframe, easing EasingFunc) PropertyFunc {
	return func(schema shape.Schema, progress float64) (any, error) {
		current, ok := shape.Property(schema, name)
		if !ok || current == nil {
			return nil, nil
		}

		values := make([]any, len(track))
		for i, kf := range track {
			v := kf.value
			if f, ok := asValueFunc(v); ok {
				v = f(current, schema)
			}
			if v == nil {
				return nil, fmt.Errorf("%w: %s keyframe at %v resolved to nil", ErrUninterpolable, name, kf.progress)
			}
			values[i] = v
		}

		switch cur := current.(type) {
		case float64:
			kfs := make([]Keyframe[float64], len(track))
			for i, kf := range track {
				n, ok := toFloat(values[i])
				if !ok {
					return nil, mismatch(name, "number", values[i])
				}
				kfs[i] = Keyframe[float64]{Value: n, Progress: kf.progress, Easing: kf.easing}
			}
			return InterpolateNumber(kfs, easing, cur)(progress), nil

		case string:
			if !colors.IsColor(cur) {
				break
			}
			kfs := make([]Keyframe[string], len(track))
			for i, kf := range track {
				c, ok := values[i].(string)
				if !ok || !colors.IsColor(c) {
					return nil, mismatch(name, "color", values[i])
				}
				kfs[i] = Keyframe[string]{Value: c, Progress: kf.progress, Easing: kf.easing}
			}
			return InterpolateColor(kfs, easing, cur)(progress), nil
		}

		switch {
		case coordinateProps[name]:
			cur, ok := toCoordinate(current)
			if !ok {
				break
			}
			kfs := make([]Keyframe[geometry.Coordinate], len(track))
			for i, kf := range track {
				c, ok := toCoordinate(values[i])
				if !ok {
					return nil, mismatch(name, "coordinate", values[i])
				}
				kfs[i] = Keyframe[geometry.Coordinate]{Value: c, Progress: kf.progress, Easing: kf.easing}
			}
			return InterpolateCoordinate(kfs, easing, cur)(progress), nil

		case textAreaProps[name]:
			cur, ok := toTextArea(current)
			if !ok {
				break
			}
			kfs := make([]Keyframe[text.Area], len(track))
			for i, kf := range track {
				a, ok := toTextArea(values[i])
				if !ok {
					return nil, mismatch(name, "text area", values[i])
				}
				kfs[i] = Keyframe[text.Area]{Value: a, Progress: kf.progress, Easing: kf.easing}
			}
			return InterpolateTextArea(kfs, easing, cur)(progress), nil
		}

		return nil, fmt.Errorf("%w: %s = %#v", ErrUninterpolable, name, current)
	}
}

func mismatch(name, want string, got any) error {
	return fmt.Errorf("%w: %s keyframe %#v is not a %s", ErrUninterpolable, name, got, want)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toCoordinate accepts coordinates and the {x, y} maps decoded documents
// produce.
func toCoordinate(v any) (geometry.Coordinate, bool) {
	switch c := v.(type) {
	case geometry.Coordinate:
		return c, true
	case *geometry.Coordinate:
		if c == nil {
			return geometry.Coordinate{}, false
		}
		return *c, true
	case map[string]any:
		x, okX := toFloat(c["x"])
		y, okY := toFloat(c["y"])
		return geometry.Coordinate{X: x, Y: y}, okX && okY
	}
	return geometry.Coordinate{}, false
}

// toTextArea accepts full or partial text areas, including decoded maps,
// and resolves unset fields against the text defaults.
func toTextArea(v any) (text.Area, bool) {
	switch a := v.(type) {
	case text.Area:
		return text.ResolveArea(a), true
	case *text.Area:
		if a == nil {
			return text.Area{}, false
		}
		return text.ResolveArea(*a), true
	case map[string]any:
		data, err := json.Marshal(a)
		if err != nil {
			return text.Area{}, false
		}
		var area text.Area
		if err := json.Unmarshal(data, &area); err != nil {
			return text.Area{}, false
		}
		return text.ResolveArea(area), true
	}
	return text.Area{}, false
}
