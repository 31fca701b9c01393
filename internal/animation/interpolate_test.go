package animation

import (
	"errors"
	"math"
	"testing"

	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

func TestEasingPresetsHitEndpoints(t *testing.T) {
	for _, name := range Presets() {
		f, err := name.Func()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := f(0); math.Abs(got) > 1e-9 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := f(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestEasingFunc(t *testing.T) {
	tests := []struct {
		name Easing
		t    float64
		want float64
	}{
		{"", 0.3, 0.3},
		{EasingLinear, 0.3, 0.3},
		{EasingIn, 0.5, 0.25},
		{EasingOut, 0.5, 0.75},
		{EasingInOut, 0.25, 0.125},
		{EasingInOut, 0.75, 0.875},
		{EasingCubicIn, 0.5, 0.125},
	}
	for _, tt := range tests {
		f, err := tt.name.Func()
		if err != nil {
			t.Fatal(err)
		}
		if got := f(tt.t); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%q(%v) = %v, want %v", tt.name, tt.t, got, tt.want)
		}
	}

	if _, err := Easing("wobble").Func(); !errors.Is(err, ErrUnknownEasing) {
		t.Errorf("unknown easing error = %v", err)
	}
}

func TestInterpolateNumber(t *testing.T) {
	kfs := []Keyframe[float64]{{Value: 0, Progress: 0}, {Value: 10, Progress: 1}}
	f := InterpolateNumber(kfs, Linear, 0)

	tests := []struct {
		progress float64
		want     float64
	}{
		{0, 0},
		{0.25, 2.5},
		{0.5, 5},
		{1, 10},
		{-1, 0},
		{2, 10},
	}
	for _, tt := range tests {
		if got := f(tt.progress); got != tt.want {
			t.Errorf("f(%v) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestInterpolateNumberEndpointsIgnoreEasing(t *testing.T) {
	back, _ := EasingBackOut.Func()
	kfs := []Keyframe[float64]{{Value: 3, Progress: 0}, {Value: 7, Progress: 1}}
	f := InterpolateNumber(kfs, back, 0)
	if f(0) != 3 || f(1) != 7 {
		t.Errorf("endpoints = %v, %v; want 3, 7", f(0), f(1))
	}
}

func TestInterpolateNumberClampsToKeyframes(t *testing.T) {
	kfs := []Keyframe[float64]{{Value: 1, Progress: 0.2}, {Value: 5, Progress: 0.8}}
	f := InterpolateNumber(kfs, Linear, 100)
	if f(0.1) != 1 || f(0.9) != 5 {
		t.Errorf("clamped = %v, %v; want 1, 5", f(0.1), f(0.9))
	}
	if got := f(0.5); math.Abs(got-3) > 1e-9 {
		t.Errorf("f(0.5) = %v, want 3", got)
	}
}

func TestInterpolateNumberKeyframeEasingOverridesDefault(t *testing.T) {
	in, _ := EasingIn.Func()
	kfs := []Keyframe[float64]{
		{Value: 0, Progress: 0, Easing: in},
		{Value: 10, Progress: 0.5},
		{Value: 20, Progress: 1},
	}
	f := InterpolateNumber(kfs, Linear, 0)
	if got := f(0.25); got != 2.5 {
		t.Errorf("eased segment f(0.25) = %v, want 2.5", got)
	}
	if got := f(0.75); got != 15 {
		t.Errorf("linear segment f(0.75) = %v, want 15", got)
	}
}

func TestInterpolateEmptyReturnsFallback(t *testing.T) {
	for _, p := range []float64{0, 0.3, 1} {
		if got := InterpolateNumber(nil, Linear, 42)(p); got != 42 {
			t.Errorf("number(%v) = %v", p, got)
		}
		if got := InterpolateColor(nil, Linear, "red")(p); got != "red" {
			t.Errorf("color(%v) = %v", p, got)
		}
		if got := InterpolateCoordinate(nil, Linear, geometry.Coordinate{X: 1, Y: 2})(p); got != (geometry.Coordinate{X: 1, Y: 2}) {
			t.Errorf("coordinate(%v) = %v", p, got)
		}
		fallback := text.ResolveArea(text.Area{TextBlock: text.Block{Content: "x"}})
		if got := InterpolateTextArea(nil, Linear, fallback)(p); got != fallback {
			t.Errorf("text area(%v) = %+v", p, got)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	kfs := []Keyframe[string]{{Value: "#000000", Progress: 0}, {Value: "#ffffff", Progress: 1}}
	f := InterpolateColor(kfs, Linear, "red")

	tests := []struct {
		progress float64
		want     string
	}{
		{0, "#000000"},
		{0.5, "rgb(128, 128, 128)"},
		{1, "#ffffff"},
	}
	for _, tt := range tests {
		if got := f(tt.progress); got != tt.want {
			t.Errorf("f(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}

	alpha := InterpolateColor([]Keyframe[string]{
		{Value: "transparent", Progress: 0},
		{Value: "black", Progress: 1},
	}, Linear, "")
	if got := alpha(0.5); got != "rgba(0, 0, 0, 0.5)" {
		t.Errorf("alpha blend = %q", got)
	}
}

func TestInterpolateCoordinate(t *testing.T) {
	kfs := []Keyframe[geometry.Coordinate]{
		{Value: geometry.Coordinate{X: 0, Y: 0}, Progress: 0},
		{Value: geometry.Coordinate{X: 10, Y: 20}, Progress: 1},
	}
	f := InterpolateCoordinate(kfs, Linear, geometry.Coordinate{})
	if got := f(0.5); got != (geometry.Coordinate{X: 5, Y: 10}) {
		t.Errorf("f(0.5) = %v", got)
	}
	if got := f(1); got != (geometry.Coordinate{X: 10, Y: 20}) {
		t.Errorf("f(1) = %v", got)
	}
}

func TestInterpolateTextArea(t *testing.T) {
	from := text.ResolveArea(text.Area{Color: "#ffffff", TextBlock: text.Block{FontSize: 12}})
	to := text.ResolveArea(text.Area{Color: "#000000", TextBlock: text.Block{FontSize: 24}})
	fallback := text.ResolveArea(text.Area{TextBlock: text.Block{Content: "label", FontWeight: text.FontWeightBold}})

	f := InterpolateTextArea([]Keyframe[text.Area]{
		{Value: from, Progress: 0},
		{Value: to, Progress: 1},
	}, Linear, fallback)

	mid := f(0.5)
	if mid.TextBlock.FontSize != 18 {
		t.Errorf("font size = %v, want 18", mid.TextBlock.FontSize)
	}
	if mid.Color != "rgb(128, 128, 128)" {
		t.Errorf("color = %q", mid.Color)
	}
	if mid.TextBlock.Content != "label" || mid.TextBlock.FontWeight != text.FontWeightBold {
		t.Errorf("non-animated fields not taken from fallback: %+v", mid.TextBlock)
	}

	end := f(1)
	if end.Color != "#000000" || end.TextBlock.FontSize != 24 {
		t.Errorf("end = %+v", end)
	}
}
