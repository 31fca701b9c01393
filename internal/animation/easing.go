// Package animation compiles keyframe timelines into per-property
// functions and samples them against wall-clock time to produce live shape
// schemas.
package animation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// EasingFunc maps linear progress in [0, 1] to eased progress. Curves may
// overshoot in between but must return 0 at 0 and 1 at 1.
type EasingFunc func(t float64) float64

// Easing names a preset curve.
type Easing string

const (
	EasingLinear     Easing = "linear"
	EasingIn         Easing = "in"
	EasingOut        Easing = "out"
	EasingInOut      Easing = "in-out"
	EasingCubicIn    Easing = "cubic-in"
	EasingCubicOut   Easing = "cubic-out"
	EasingCubicInOut Easing = "cubic-in-out"
	EasingBackIn     Easing = "back-in"
	EasingBackOut    Easing = "back-out"
	EasingBackInOut  Easing = "back-in-out"
	EasingElasticOut Easing = "elastic-out"
	EasingBounceOut  Easing = "bounce-out"
)

var ErrUnknownEasing = errors.New("unknown easing")

var presets = map[Easing]EasingFunc{
	EasingLinear: Linear,
	EasingIn:     func(t float64) float64 { return t * t },
	EasingOut:    func(t float64) float64 { return t * (2 - t) },
	EasingInOut: func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},
	EasingCubicIn: func(t float64) float64 { return t * t * t },
	EasingCubicOut: func(t float64) float64 {
		t2 := 1 - t
		return 1 - t2*t2*t2
	},
	EasingCubicInOut: func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		t2 := -2*t + 2
		return 1 - t2*t2*t2/2
	},
	EasingBackIn: func(t float64) float64 {
		c1 := 1.70158
		c3 := c1 + 1
		return c3*t*t*t - c1*t*t
	},
	EasingBackOut: func(t float64) float64 {
		c1 := 1.70158
		c3 := c1 + 1
		t2 := t - 1
		return 1 + c3*t2*t2*t2 + c1*t2*t2
	},
	EasingBackInOut: func(t float64) float64 {
		c1 := 1.70158
		c2 := c1 * 1.525
		if t < 0.5 {
			return (math.Pow(2*t, 2) * ((c2+1)*2*t - c2)) / 2
		}
		return (math.Pow(2*t-2, 2)*((c2+1)*(t*2-2)+c2) + 2) / 2
	},
	EasingElasticOut: func(t float64) float64 {
		if t == 0 || t == 1 {
			return t
		}
		c4 := (2 * math.Pi) / 3
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
	},
	EasingBounceOut: bounceOut,
}

// Linear is the identity curve and the default for every property.
func Linear(t float64) float64 { return t }

// Func returns the curve for a preset name. The empty name is linear.
func (e Easing) Func() (EasingFunc, error) {
	if e == "" {
		return Linear, nil
	}
	f, ok := presets[e]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, e)
	}
	return f, nil
}

// Presets lists every preset name, sorted.
func Presets() []Easing {
	names := make([]Easing, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	} else {
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
