package shape

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/text"
)

// fixedMeasurer reports half an em per rune, ascent 0.75em, descent 0.25em.
type fixedMeasurer struct{}

func (fixedMeasurer) Measure(f canvas.Font, s string) canvas.TextMetrics {
	return canvas.TextMetrics{
		Width:   float64(len([]rune(s))) * f.Size / 2,
		Ascent:  f.Size * 0.75,
		Descent: f.Size * 0.25,
	}
}

func pt(x, y float64) geometry.Coordinate { return geometry.Coordinate{X: x, Y: y} }

func build(t *testing.T, s Schema) Shape {
	t.Helper()
	sh, err := New(s, WithMeasurer(fixedMeasurer{}))
	if err != nil {
		t.Fatalf("New(%s): %v", s.Kind(), err)
	}
	return sh
}

// sampleSchemas has one representative, non-trivial schema per kind.
func sampleSchemas() map[Kind]Schema {
	return map[Kind]Schema{
		KindArrow: ArrowSchema{Start: pt(10, 10), End: pt(120, 70)},
		KindCircle: CircleSchema{
			At: pt(50, 50), Radius: 30,
			Stroke: &geometry.Stroke{Color: "red", LineWidth: 6},
		},
		KindCross: CrossSchema{At: pt(60, 60), Size: 80, Rotation: 0.4, BorderRadius: geometry.Uniform(4)},
		KindEllipse: EllipseSchema{At: pt(60, 40), RadiusX: 50, RadiusY: 20},
		KindImage: ImageSchema{
			Src: "missing.png", At: pt(10, 10), Width: 60, Height: 40, Rotation: 0.3,
		},
		KindLine: LineSchema{Start: pt(0, 0), End: pt(130, 40), LineWidth: ptr(8.0)},
		KindRect: RectSchema{
			At: pt(5, 5), Width: 100, Height: 50, Rotation: 0.5,
			BorderRadius: geometry.Uniform(10),
			Stroke:       &geometry.Stroke{Color: "blue", LineWidth: 4},
		},
		KindScribble: ScribbleSchema{
			Points:      []geometry.Coordinate{pt(0, 0), pt(30, 40), pt(80, 45), pt(120, 10)},
			BrushWeight: 6,
		},
		KindSquare: SquareSchema{At: pt(20, 20), Size: 60, Rotation: 1},
		KindStar:   StarSchema{At: pt(60, 60), InnerRadius: 20, OuterRadius: 50, Points: 5, Rotation: 0.2},
		KindTriangle: TriangleSchema{
			PointA: pt(0, 100), PointB: pt(60, 0), PointC: pt(120, 90),
			Stroke: &geometry.Stroke{Color: "black", LineWidth: 8},
		},
		KindUTurn: UTurnSchema{At: pt(20, 60), Spacing: 20, UpDistance: 80, DownDistance: 50, Rotation: 0.3},
	}
}

func TestKindsCoverTable(t *testing.T) {
	samples := sampleSchemas()
	kinds := Kinds()
	if len(kinds) != len(samples) {
		t.Fatalf("Kinds() = %v, want %d kinds", kinds, len(samples))
	}
	for _, k := range kinds {
		s, ok := samples[k]
		if !ok {
			t.Errorf("no sample for kind %s", k)
			continue
		}
		if s.Kind() != k {
			t.Errorf("sample for %s reports kind %s", k, s.Kind())
		}
	}
}

func TestNameIsKind(t *testing.T) {
	for k, s := range sampleSchemas() {
		if got := build(t, s).Name(); got != string(k) {
			t.Errorf("Name() = %q, want %q", got, k)
		}
	}
}

// Every point a shape claims must lie in its bounding box, and a small box
// around it must pass the efficient hitbox.
func TestHitboxesAreConsistent(t *testing.T) {
	for k, s := range sampleSchemas() {
		t.Run(string(k), func(t *testing.T) {
			sh := build(t, s)
			bbox := geometry.NormalizeBoundingBox(sh.BoundingBox())
			grown := geometry.BoundingBox{
				At:     pt(bbox.At.X-1e-6, bbox.At.Y-1e-6),
				Width:  bbox.Width + 2e-6,
				Height: bbox.Height + 2e-6,
			}
			hits := 0
			for x := bbox.At.X - 30; x <= bbox.At.X+bbox.Width+30; x += 1.7 {
				for y := bbox.At.Y - 30; y <= bbox.At.Y+bbox.Height+30; y += 1.7 {
					p := pt(x, y)
					if !sh.ShapeHitbox(p) {
						continue
					}
					hits++
					if !geometry.IsPointInBoundingBox(grown, p) {
						t.Fatalf("hit %v outside bounding box %+v", p, bbox)
					}
					if !sh.EfficientHitbox(geometry.BoundingBox{At: pt(x-1, y-1), Width: 2, Height: 2}) {
						t.Fatalf("efficient hitbox misses box around hit %v", p)
					}
				}
			}
			if k != KindImage && hits == 0 {
				t.Error("no point hit the shape")
			}
		})
	}
}

func TestRoundedRectHitbox(t *testing.T) {
	sh := build(t, RectSchema{At: pt(0, 0), Width: 100, Height: 50, BorderRadius: geometry.Uniform(20)})

	tests := []struct {
		name string
		p    geometry.Coordinate
		want bool
	}{
		{"center", pt(50, 25), true},
		{"clipped corner", pt(0, 0), false},
		{"corner circle center", pt(20, 20), true},
		{"top edge", pt(50, 0), true},
		{"outside", pt(101, 25), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sh.Hitbox(tt.p); got != tt.want {
				t.Errorf("Hitbox(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestEfficientHitboxCountsSharedEdge(t *testing.T) {
	sh := build(t, RectSchema{At: pt(0, 0), Width: 100, Height: 50})
	edge := pt(100, 25)
	if !sh.Hitbox(edge) {
		t.Fatalf("Hitbox(%v) = false", edge)
	}
	if !sh.EfficientHitbox(geometry.BoundingBox{At: edge, Width: 10, Height: 10}) {
		t.Error("box starting on the right edge is culled")
	}
	if sh.EfficientHitbox(geometry.BoundingBox{At: pt(101, 25), Width: 10, Height: 10}) {
		t.Error("box past the right edge passes")
	}
}

func TestSquareMatchesRect(t *testing.T) {
	sq := build(t, SquareSchema{At: pt(10, 10), Size: 40})
	r := build(t, RectSchema{At: pt(10, 10), Width: 40, Height: 40})
	if sq.BoundingBox() != r.BoundingBox() {
		t.Errorf("square box %+v != rect box %+v", sq.BoundingBox(), r.BoundingBox())
	}
}

func TestCircleMatchesEllipse(t *testing.T) {
	c := build(t, CircleSchema{At: pt(0, 0), Radius: 10})
	e := build(t, EllipseSchema{At: pt(0, 0), RadiusX: 10, RadiusY: 10})
	want := geometry.BoundingBox{At: pt(-10, -10), Width: 20, Height: 20}
	if c.BoundingBox() != want || e.BoundingBox() != want {
		t.Errorf("boxes = %+v / %+v, want %+v", c.BoundingBox(), e.BoundingBox(), want)
	}
	if c.CenterPoint() != pt(0, 0) {
		t.Errorf("CenterPoint() = %v", c.CenterPoint())
	}
}

func TestInvalidSchemas(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"negative ellipse radius", EllipseSchema{RadiusX: -1, RadiusY: 5}},
		{"negative circle radius", CircleSchema{Radius: -3}},
		{"negative line width", LineSchema{End: pt(10, 0), LineWidth: ptr(-1.0)}},
		{"negative arrow width", ArrowSchema{End: pt(10, 0), LineWidth: ptr(-2.0)}},
		{"empty scribble", ScribbleSchema{}},
		{"thin brush", ScribbleSchema{Points: []geometry.Coordinate{pt(0, 0)}, BrushWeight: 0.5}},
		{"negative down distance", UTurnSchema{Spacing: 10, UpDistance: 10, DownDistance: -1}},
		{"negative up distance", UTurnSchema{Spacing: 10, UpDistance: -1, DownDistance: 10}},
		{"negative image size", ImageSchema{Src: "x.png", Width: -1, Height: 10}},
		{"negative rect width", RectSchema{Width: -10, Height: 5}},
		{"negative rect height", RectSchema{Width: 10, Height: -5}},
		{"negative square size", SquareSchema{Size: -10}},
		{"three radii", RectSchema{Width: 10, Height: 10, BorderRadius: geometry.BorderRadius{1, 2, 3}}},
		{"negative radius", SquareSchema{Size: 10, BorderRadius: geometry.Uniform(-1)}},
		{"cross radius", CrossSchema{Size: 10, BorderRadius: geometry.BorderRadius{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.schema, WithMeasurer(fixedMeasurer{}))
			if !errors.Is(err, ErrInvalidSchema) {
				t.Errorf("New() error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestStarWarnsButBuilds(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	sh, err := NewStar(StarSchema{At: pt(0, 0), InnerRadius: 40, OuterRadius: 20, Points: 2})
	if err != nil {
		t.Fatalf("NewStar: %v", err)
	}
	if sh == nil {
		t.Fatal("NewStar returned nil shape")
	}
	out := buf.String()
	for _, msg := range []string{"at least 3 points", "inner radius must be less than outer radius"} {
		if !strings.Contains(out, msg) {
			t.Errorf("log output missing %q:\n%s", msg, out)
		}
	}
	if strings.Contains(out, "must be positive") {
		t.Errorf("unexpected radius warning:\n%s", out)
	}
}

func TestStarDefaultsToFivePoints(t *testing.T) {
	s := ResolveDefaults(StarSchema{OuterRadius: 10, InnerRadius: 5}).(StarSchema)
	if s.Points != DefaultStarPoints {
		t.Errorf("Points = %d, want %d", s.Points, DefaultStarPoints)
	}
	if s.FillColor != DefaultFillColor {
		t.Errorf("FillColor = %q, want %q", s.FillColor, DefaultFillColor)
	}
}

func TestResolveDefaults(t *testing.T) {
	line := ResolveDefaults(LineSchema{}).(LineSchema)
	if line.LineWidth == nil || *line.LineWidth != DefaultLineWidth {
		t.Errorf("line width = %v, want %v", line.LineWidth, DefaultLineWidth)
	}

	// An explicit zero survives resolution.
	zero := ResolveDefaults(LineSchema{LineWidth: ptr(0.0)}).(LineSchema)
	if *zero.LineWidth != 0 {
		t.Errorf("explicit zero width resolved to %v", *zero.LineWidth)
	}

	sc := ResolveDefaults(ScribbleSchema{Points: []geometry.Coordinate{pt(0, 0)}}).(ScribbleSchema)
	if sc.Type != ScribbleDraw || sc.BrushWeight != DefaultBrushWeight {
		t.Errorf("scribble = %+v", sc)
	}

	r := ResolveDefaults(RectSchema{TextArea: &text.Area{}}).(RectSchema)
	if r.TextArea.TextBlock.FontSize == 0 || r.TextArea.Color == "" {
		t.Errorf("text area not resolved: %+v", r.TextArea)
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := DecodeJSON("hexagon", []byte(`{}`)); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("DecodeJSON error = %v, want ErrUnknownKind", err)
	}
	if _, err := New(nil); !errors.Is(err, ErrInvalidSchema) {
		t.Errorf("New(nil) error = %v, want ErrInvalidSchema", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	s, err := DecodeJSON(KindRect, []byte(`{"at":{"x":1,"y":2},"width":30,"height":20,"borderRadius":5}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	r, ok := s.(RectSchema)
	if !ok {
		t.Fatalf("decoded %T, want RectSchema", s)
	}
	if r.At != pt(1, 2) || r.Width != 30 || r.Height != 20 {
		t.Errorf("rect = %+v", r)
	}
	if r.BorderRadius.Corners() != [4]float64{5, 5, 5, 5} {
		t.Errorf("borderRadius = %v, want uniform 5", r.BorderRadius)
	}
}

func TestDecodeYAML(t *testing.T) {
	var node yaml.Node
	src := "start: {x: 0, y: 0}\nend: {x: 40, y: 0}\nlineWidth: 4\nfillGradient:\n  - {offset: 0, color: red}\n  - {offset: 1, color: blue}\n"
	if err := yaml.Unmarshal([]byte(src), &node); err != nil {
		t.Fatal(err)
	}
	s, err := DecodeYAML(KindArrow, node.Content[0])
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	a := s.(ArrowSchema)
	if *a.LineWidth != 4 || len(a.FillGradient) != 2 || a.End != pt(40, 0) {
		t.Errorf("arrow = %+v", a)
	}
}

func TestTextMatteTakesPriority(t *testing.T) {
	// "hi" at 12px is 12 wide, padded to a 32x32 matte around the center.
	sh := build(t, RectSchema{
		At: pt(0, 0), Width: 10, Height: 10,
		TextArea: &text.Area{TextBlock: text.Block{Content: "hi"}},
	})
	p := pt(18, 18)
	if sh.ShapeHitbox(p) {
		t.Fatal("point should be outside the rect itself")
	}
	if !sh.TextHitbox(p) || !sh.Hitbox(p) {
		t.Error("point inside the matte should hit")
	}
}

func TestStartTextAreaEditWithoutText(t *testing.T) {
	sh := build(t, CircleSchema{Radius: 5})
	if sh.HasTextArea() {
		t.Fatal("circle without text area reports one")
	}
	_, err := sh.StartTextAreaEdit(canvas.NewRecorder(fixedMeasurer{}), nil, nil)
	if !errors.Is(err, ErrNoTextArea) {
		t.Errorf("error = %v, want ErrNoTextArea", err)
	}
}

func TestDrawRect(t *testing.T) {
	t.Run("square corners", func(t *testing.T) {
		rec := canvas.NewRecorder(fixedMeasurer{})
		build(t, RectSchema{Width: 10, Height: 10}).Draw(rec)
		if len(rec.Find("rect")) != 1 || len(rec.Find("arcTo")) != 0 {
			t.Errorf("ops = %v", rec.Ops())
		}
	})
	t.Run("rounded corners", func(t *testing.T) {
		rec := canvas.NewRecorder(fixedMeasurer{})
		build(t, RectSchema{Width: 10, Height: 10, BorderRadius: geometry.Uniform(2)}).Draw(rec)
		if got := len(rec.Find("arcTo")); got != 4 {
			t.Errorf("arcTo count = %d, want 4", got)
		}
	})
}

func TestDrawEraseScribble(t *testing.T) {
	sh := build(t, ScribbleSchema{
		Type:   ScribbleErase,
		Points: []geometry.Coordinate{pt(0, 0), pt(120, 0)},
	})
	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)

	composites := rec.Find("composite")
	if len(composites) < 2 ||
		composites[0].Value != string(canvas.CompositeDestinationOut) ||
		composites[len(composites)-1].Value != string(canvas.CompositeSourceOver) {
		t.Errorf("composite ops = %+v", composites)
	}
	// 120px at 50px spacing: dabs at t = 0, 1/3, 2/3, 1.
	if got := len(rec.Find("arc")); got != 4 {
		t.Errorf("dab count = %d, want 4", got)
	}
	if sh.Hitbox(pt(0, 0)) {
		t.Error("erase scribble should never be hit")
	}
}

func TestScribbleSinglePoint(t *testing.T) {
	sh := build(t, ScribbleSchema{Points: []geometry.Coordinate{pt(10, 10)}, BrushWeight: 8})
	if !sh.Hitbox(pt(11, 11)) {
		t.Error("dot should be hit near its center")
	}
	if sh.Hitbox(pt(30, 30)) {
		t.Error("dot should not be hit far away")
	}
	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)
	if len(rec.Find("ellipse")) != 1 {
		t.Errorf("ops = %v", rec.Ops())
	}
}

func TestArrowHeadUsesLastGradientStop(t *testing.T) {
	sh := build(t, ArrowSchema{
		Start: pt(0, 0), End: pt(100, 0),
		FillGradient: []geometry.GradientStop{{Offset: 0, Color: "red"}, {Offset: 1, Color: "blue"}},
	})
	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)

	fills := rec.Find("fillStyle")
	if len(fills) == 0 {
		t.Fatalf("no fill style in %v", rec.Ops())
	}
	last := fills[len(fills)-1].Paint
	if last == nil || last.Color != "blue" {
		t.Errorf("head fill = %+v, want blue", last)
	}
	if !sh.Hitbox(pt(99, 0)) {
		t.Error("arrow tip region should hit")
	}
}

func TestZeroLengthArrow(t *testing.T) {
	sh := build(t, ArrowSchema{Start: pt(5, 5), End: pt(5, 5)})
	if !sh.Hitbox(pt(5, 5)) {
		t.Error("zero-length arrow should still hit at its point")
	}
	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)
}

func TestUTurnGradientsAreContinuous(t *testing.T) {
	s := resolveUTurn(UTurnSchema{
		Spacing: 20, UpDistance: 100, DownDistance: 60,
		FillGradient: []geometry.GradientStop{{Offset: 0, Color: "#000000"}, {Offset: 1, Color: "#ffffff"}},
	})
	long, bend, short := uturnGradients(s)
	if len(long) < 2 || len(bend) < 2 || len(short) < 2 {
		t.Fatalf("gradients = %v / %v / %v", long, bend, short)
	}
	if long[0].Color != "#000000" || short[len(short)-1].Color != "#ffffff" {
		t.Errorf("ends = %s .. %s", long[0].Color, short[len(short)-1].Color)
	}
	if long[len(long)-1].Color != bend[0].Color {
		t.Errorf("seam long/bend: %s vs %s", long[len(long)-1].Color, bend[0].Color)
	}
	if bend[len(bend)-1].Color != short[0].Color {
		t.Errorf("seam bend/short: %s vs %s", bend[len(bend)-1].Color, short[0].Color)
	}
	for _, part := range [][]geometry.GradientStop{long, bend, short} {
		for _, stop := range part {
			if stop.Offset < 0 || stop.Offset > 1+1e-9 {
				t.Errorf("offset %v out of range", stop.Offset)
			}
		}
	}

	if l, b, sh := uturnGradients(resolveUTurn(UTurnSchema{Spacing: 1, UpDistance: 1})); l != nil || b != nil || sh != nil {
		t.Error("no gradient should yield nil parts")
	}
}

func TestUTurnDraw(t *testing.T) {
	sh := build(t, UTurnSchema{At: pt(0, 0), Spacing: 20, UpDistance: 100, DownDistance: 60})
	rec := canvas.NewRecorder(fixedMeasurer{})
	sh.Draw(rec)
	arcs := rec.Find("arc")
	if len(arcs) != 1 || !arcs[0].Anticlockwise {
		t.Errorf("bend arcs = %+v", arcs)
	}
	if !sh.Hitbox(pt(100, 0)) {
		t.Error("bend should hit")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on an invalid schema")
		}
	}()
	MustNew(EllipseSchema{RadiusX: -1})
}
