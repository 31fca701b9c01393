package animation

import (
	"time"

	"github.com/inamate/shapekit/internal/shape"
)

// Timeline defines how a set of shape kinds animate over one cycle.
//
// Keyframe property values take one of three forms:
//   - a plain value: a number, a color string, a geometry.Coordinate for
//     at/start/end, or a (possibly partial) text.Area for textArea;
//   - a Value, which attaches an easing to the segment that starts there;
//   - a ValueFunc, evaluated at sampling time against the live schema.
type Timeline struct {
	ForShapes []shape.Kind
	Keyframes []TimelineKeyframe
	// Easing sets a property's default curve. Unlisted properties are linear.
	Easing map[string]EasingFunc
	// Custom replaces keyframe interpolation for a property entirely.
	Custom map[string]*ImperativeTrack

	Duration time.Duration
	Delay    time.Duration
}

// TimelineKeyframe sets property values at a point in the cycle.
type TimelineKeyframe struct {
	Progress   float64
	Properties map[string]any
}

// Value is a keyframe value with its own easing.
type Value struct {
	Value  any
	Easing EasingFunc
}

// ValueFunc computes a keyframe value from the property's live value and
// the whole live schema. It runs every time the property is sampled.
type ValueFunc func(current any, schema shape.Schema) any

// ImperativeTrack computes a property directly from eased progress,
// bypassing keyframes.
type ImperativeTrack struct {
	Value  func(progress float64) any
	Easing EasingFunc
}

// identity is the synthesized keyframe value at either end of a track that
// has no explicit keyframe there.
func identity(current any, _ shape.Schema) any { return current }

func asValueFunc(v any) (ValueFunc, bool) {
	switch f := v.(type) {
	case ValueFunc:
		return f, f != nil
	case func(any, shape.Schema) any:
		return f, f != nil
	}
	return nil, false
}
