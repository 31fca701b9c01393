package animation

import (
	"github.com/inamate/shapekit/internal/colors"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

// Keyframe is a value at a point in a timeline. Easing, when set, shapes
// the segment from this keyframe to the next and overrides the track's
// default.
type Keyframe[T any] struct {
	Value    T
	Progress float64
	Easing   EasingFunc
}

// interpolate builds the sampler shared by every value type. Keyframes must
// be ordered by progress. Progress outside the keyframes clamps to the
// nearest one.
func interpolate[T any](keyframes []Keyframe[T], defaultEasing EasingFunc, fallback T, lerp func(a, b T, t float64) T) func(float64) T {
	if defaultEasing == nil {
		defaultEasing = Linear
	}
	return func(progress float64) T {
		if len(keyframes) == 0 {
			return fallback
		}
		first, last := keyframes[0], keyframes[len(keyframes)-1]
		if progress <= first.Progress {
			return first.Value
		}
		if progress >= last.Progress {
			return last.Value
		}
		for i := 0; i < len(keyframes)-1; i++ {
			p1, p2 := keyframes[i], keyframes[i+1]
			if progress < p1.Progress || progress > p2.Progress {
				continue
			}
			span := p2.Progress - p1.Progress
			if span == 0 {
				return p2.Value
			}
			easing := defaultEasing
			if p1.Easing != nil {
				easing = p1.Easing
			}
			return lerp(p1.Value, p2.Value, easing((progress-p1.Progress)/span))
		}
		return fallback
	}
}

func lerpNumber(a, b, t float64) float64 { return a + t*(b-a) }

// InterpolateNumber samples numeric keyframes.
func InterpolateNumber(keyframes []Keyframe[float64], defaultEasing EasingFunc, fallback float64) func(float64) float64 {
	return interpolate(keyframes, defaultEasing, fallback, lerpNumber)
}

// InterpolateColor blends colors channel-wise in RGBA and emits rgb(...) or
// rgba(...). A segment with an unparseable end holds its start value.
func InterpolateColor(keyframes []Keyframe[string], defaultEasing EasingFunc, fallback string) func(float64) string {
	return interpolate(keyframes, defaultEasing, fallback, func(a, b string, t float64) string {
		from, err := colors.Parse(a)
		if err != nil {
			return a
		}
		to, err := colors.Parse(b)
		if err != nil {
			return a
		}
		return colors.Lerp(from, to, t).String()
	})
}

// InterpolateCoordinate interpolates x and y independently.
func InterpolateCoordinate(keyframes []Keyframe[geometry.Coordinate], defaultEasing EasingFunc, fallback geometry.Coordinate) func(float64) geometry.Coordinate {
	xs := make([]Keyframe[float64], len(keyframes))
	ys := make([]Keyframe[float64], len(keyframes))
	for i, kf := range keyframes {
		xs[i] = Keyframe[float64]{Value: kf.Value.X, Progress: kf.Progress, Easing: kf.Easing}
		ys[i] = Keyframe[float64]{Value: kf.Value.Y, Progress: kf.Progress, Easing: kf.Easing}
	}
	x := InterpolateNumber(xs, defaultEasing, fallback.X)
	y := InterpolateNumber(ys, defaultEasing, fallback.Y)
	return func(progress float64) geometry.Coordinate {
		return geometry.Coordinate{X: x(progress), Y: y(progress)}
	}
}

// InterpolateTextArea animates the matte color, the active color, the text
// color and the font size. Every other field comes from fallback.
func InterpolateTextArea(keyframes []Keyframe[text.Area], defaultEasing EasingFunc, fallback text.Area) func(float64) text.Area {
	pick := func(get func(text.Area) string) []Keyframe[string] {
		out := make([]Keyframe[string], len(keyframes))
		for i, kf := range keyframes {
			out[i] = Keyframe[string]{Value: get(kf.Value), Progress: kf.Progress, Easing: kf.Easing}
		}
		return out
	}
	sizes := make([]Keyframe[float64], len(keyframes))
	for i, kf := range keyframes {
		sizes[i] = Keyframe[float64]{Value: kf.Value.TextBlock.FontSize, Progress: kf.Progress, Easing: kf.Easing}
	}

	color := InterpolateColor(pick(func(a text.Area) string { return a.Color }), defaultEasing, fallback.Color)
	active := InterpolateColor(pick(func(a text.Area) string { return a.ActiveColor }), defaultEasing, fallback.ActiveColor)
	textColor := InterpolateColor(pick(func(a text.Area) string { return a.TextBlock.Color }), defaultEasing, fallback.TextBlock.Color)
	fontSize := InterpolateNumber(sizes, defaultEasing, fallback.TextBlock.FontSize)

	return func(progress float64) text.Area {
		out := fallback
		out.Color = color(progress)
		out.ActiveColor = active(progress)
		out.TextBlock.Color = textColor(progress)
		out.TextBlock.FontSize = fontSize(progress)
		return out
	}
}
