package geometry

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestRotatePoint(t *testing.T) {
	got := RotatePoint(Coordinate{X: 1, Y: 0}, Coordinate{}, math.Pi/2)
	if !near(got.X, 0) || !near(got.Y, 1) {
		t.Errorf("RotatePoint = %+v, want (0, 1)", got)
	}

	p := Coordinate{X: 12, Y: 10}
	RotatePointInPlace(&p, Coordinate{X: 10, Y: 10}, math.Pi)
	if !near(p.X, 8) || !near(p.Y, 10) {
		t.Errorf("RotatePointInPlace = %+v, want (8, 10)", p)
	}
}

func TestLargestAngularSpace(t *testing.T) {
	center := Coordinate{}

	if got := LargestAngularSpace(center, nil); got != 0 {
		t.Errorf("no points = %v, want 0", got)
	}

	one := LargestAngularSpace(center, []Coordinate{{X: 1, Y: 0}})
	if !near(one, math.Pi) {
		t.Errorf("one point = %v, want pi", one)
	}

	// Points at 0 and pi/2 leave the widest gap centered at 5pi/4.
	two := LargestAngularSpace(center, []Coordinate{{X: 1, Y: 0}, {X: 0, Y: 1}})
	if !near(two, 5*math.Pi/4) {
		t.Errorf("two points = %v, want %v", two, 5*math.Pi/4)
	}
}

func TestAngleDifference(t *testing.T) {
	if got := AngleDifference(0.1, 2*math.Pi-0.1); !near(got, 0.2) {
		t.Errorf("AngleDifference wraps: got %v", got)
	}
}

func TestArrowHeadCorners(t *testing.T) {
	h := ArrowHeadCorners(Coordinate{X: 0, Y: 0}, Coordinate{X: 100, Y: 0}, 10)
	height, perp := ArrowHeadSize(10)
	if height != 25 || !near(perp, 25/1.75) {
		t.Fatalf("ArrowHeadSize = %v, %v", height, perp)
	}
	if h.Tip != (Coordinate{X: 100, Y: 0}) {
		t.Errorf("tip = %+v", h.Tip)
	}
	if !near(h.BaseLeft.X, 75) || !near(h.BaseLeft.Y, perp) {
		t.Errorf("base left = %+v", h.BaseLeft)
	}
	if !near(h.BaseRight.X, 75) || !near(h.BaseRight.Y, -perp) {
		t.Errorf("base right = %+v", h.BaseRight)
	}
}

func TestColorAtPercentage(t *testing.T) {
	stops := []GradientStop{{Offset: 0, Color: "black"}, {Offset: 1, Color: "white"}}

	tests := []struct {
		p    float64
		want string
	}{
		{0, "#000000"},
		{0.5, "#808080"},
		{1, "#ffffff"},
	}
	for _, tt := range tests {
		got, err := ColorAtPercentage(stops, tt.p)
		if err != nil {
			t.Fatalf("ColorAtPercentage(%v) error: %v", tt.p, err)
		}
		if got != tt.want {
			t.Errorf("ColorAtPercentage(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}

	inset := []GradientStop{{Offset: 0.25, Color: "#646464"}, {Offset: 0.75, Color: "#C8C8C8"}}
	insetTests := []struct {
		p    float64
		want string
	}{
		{0, "#646464"},
		{0.25, "#646464"},
		{0.5, "#969696"},
		{0.75, "#c8c8c8"},
		{1, "#c8c8c8"},
	}
	for _, tt := range insetTests {
		got, err := ColorAtPercentage(inset, tt.p)
		if err != nil {
			t.Fatalf("inset ColorAtPercentage(%v) error: %v", tt.p, err)
		}
		if got != tt.want {
			t.Errorf("inset ColorAtPercentage(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}

	single := []GradientStop{{Offset: 0.3, Color: "red"}}
	if got, _ := ColorAtPercentage(single, 0.9); got != "#ff0000" {
		t.Errorf("single stop = %q", got)
	}

	if _, err := ColorAtPercentage(nil, 0.5); !errors.Is(err, ErrEmptyGradient) {
		t.Errorf("empty gradient error = %v", err)
	}
	if _, err := ColorAtPercentage(stops, 1.5); !errors.Is(err, ErrPercentageOutOfRange) {
		t.Errorf("out of range error = %v", err)
	}
}

func TestNormalizeBoundingBox(t *testing.T) {
	got := NormalizeBoundingBox(BoundingBox{At: Coordinate{X: 10, Y: 10}, Width: -5, Height: 10})
	want := BoundingBox{At: Coordinate{X: 5, Y: 10}, Width: 5, Height: 10}
	if got != want {
		t.Errorf("NormalizeBoundingBox = %+v, want %+v", got, want)
	}
}

func TestBoundingBoxesOverlap(t *testing.T) {
	a := BoundingBox{At: Coordinate{}, Width: 10, Height: 10}

	tests := []struct {
		name string
		b    BoundingBox
		want bool
	}{
		{"inside", BoundingBox{At: Coordinate{X: 2, Y: 2}, Width: 2, Height: 2}, true},
		{"partial", BoundingBox{At: Coordinate{X: 5, Y: 5}, Width: 10, Height: 10}, true},
		{"touching edge", BoundingBox{At: Coordinate{X: 10, Y: 0}, Width: 5, Height: 5}, true},
		{"touching corner", BoundingBox{At: Coordinate{X: 10, Y: 10}, Width: 5, Height: 5}, true},
		{"just past edge", BoundingBox{At: Coordinate{X: 10.5, Y: 0}, Width: 5, Height: 5}, false},
		{"apart", BoundingBox{At: Coordinate{X: 20, Y: 20}, Width: 5, Height: 5}, false},
		{"negative size", BoundingBox{At: Coordinate{X: 12, Y: 12}, Width: -4, Height: -4}, true},
	}
	for _, tt := range tests {
		if got := BoundingBoxesOverlap(a, tt.b); got != tt.want {
			t.Errorf("%s: overlap = %v, want %v", tt.name, got, tt.want)
		}
		if got := BoundingBoxesOverlap(tt.b, a); got != tt.want {
			t.Errorf("%s: overlap not symmetric", tt.name)
		}
	}
}

func TestIsPointInLine(t *testing.T) {
	start, end := Coordinate{X: 0, Y: 0}, Coordinate{X: 100, Y: 0}

	tests := []struct {
		p    Coordinate
		want bool
	}{
		{Coordinate{X: 50, Y: 4}, true},
		{Coordinate{X: 50, Y: 5}, true},
		{Coordinate{X: 50, Y: 6}, false},
		{Coordinate{X: -3, Y: 3}, true},
		{Coordinate{X: -5, Y: 5}, false},
		{Coordinate{X: 104, Y: 0}, true},
	}
	for _, tt := range tests {
		if got := IsPointInLine(start, end, 10, tt.p); got != tt.want {
			t.Errorf("IsPointInLine(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if !IsPointInLine(start, start, 10, Coordinate{X: 3, Y: 4}) {
		t.Error("zero-length line should hit inside its radius")
	}
	if IsPointInLine(start, start, 10, Coordinate{X: 4, Y: 4}) {
		t.Error("zero-length line should miss outside its radius")
	}
}

func TestIsPointInBoundingBox(t *testing.T) {
	b := BoundingBox{At: Coordinate{X: 10, Y: 10}, Width: -10, Height: 10}
	for _, p := range []Coordinate{{X: 0, Y: 10}, {X: 10, Y: 20}, {X: 5, Y: 15}} {
		if !IsPointInBoundingBox(b, p) {
			t.Errorf("point %+v should be inside", p)
		}
	}
	if IsPointInBoundingBox(b, Coordinate{X: 11, Y: 15}) {
		t.Error("point outside reported inside")
	}
}

func TestIsPointInPolygon(t *testing.T) {
	square := []Coordinate{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	if !IsPointInPolygon(square, Coordinate{X: 5, Y: 5}) {
		t.Error("center should be inside")
	}
	if IsPointInPolygon(square, Coordinate{X: 15, Y: 5}) {
		t.Error("outside point reported inside")
	}
}

func TestBorderRadius(t *testing.T) {
	if got := BorderRadius(nil).Corners(); got != [4]float64{} {
		t.Errorf("unset corners = %v", got)
	}
	if got := Uniform(4).Corners(); got != [4]float64{4, 4, 4, 4} {
		t.Errorf("uniform corners = %v", got)
	}
	if got := (BorderRadius{1, 2, 3, 4}).Corners(); got != [4]float64{1, 2, 3, 4} {
		t.Errorf("array corners = %v", got)
	}

	for _, br := range []BorderRadius{{-1}, {1, 2}, {1, 2, -3, 4}} {
		if err := br.Validate(); !errors.Is(err, ErrInvalidBorderRadius) {
			t.Errorf("Validate(%v) = %v, want ErrInvalidBorderRadius", br, err)
		}
	}
	if err := (BorderRadius{0, 1, 2, 3}).Validate(); err != nil {
		t.Errorf("Validate valid radius: %v", err)
	}
}

func TestBorderRadiusDecoding(t *testing.T) {
	var v struct {
		BorderRadius BorderRadius `json:"borderRadius" yaml:"borderRadius"`
	}

	if err := json.Unmarshal([]byte(`{"borderRadius": 6}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.BorderRadius.Corners() != [4]float64{6, 6, 6, 6} {
		t.Errorf("json number = %v", v.BorderRadius)
	}

	if err := yaml.Unmarshal([]byte("borderRadius: [1, 2, 3, 4]"), &v); err != nil {
		t.Fatal(err)
	}
	if v.BorderRadius.Corners() != [4]float64{1, 2, 3, 4} {
		t.Errorf("yaml array = %v", v.BorderRadius)
	}
}

func TestMatrix(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 2))
	p := m.Apply(Coordinate{X: 1, Y: 1})
	if !near(p.X, 12) || !near(p.Y, 22) {
		t.Errorf("Apply = %+v", p)
	}

	back := m.Invert().Apply(p)
	if !near(back.X, 1) || !near(back.Y, 1) {
		t.Errorf("Invert round trip = %+v", back)
	}

	box := Rotate(math.Pi / 2).ApplyBox(BoundingBox{Width: 10, Height: 4})
	if !near(box.Width, 4) || !near(box.Height, 10) || !near(box.At.X, -4) {
		t.Errorf("ApplyBox = %+v", box)
	}

	if !Identity().IsIdentity() || m.IsIdentity() {
		t.Error("IsIdentity mismatch")
	}
}

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{At: Coordinate{X: 0, Y: 0}, Width: 10, Height: 10}
	b := BoundingBox{At: Coordinate{X: 5, Y: -5}, Width: 10, Height: 10}
	want := BoundingBox{At: Coordinate{X: 0, Y: -5}, Width: 15, Height: 15}
	if got := a.Union(b); got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	if got := (BoundingBox{}).Union(a); got != a {
		t.Errorf("Union with empty = %+v", got)
	}
}
