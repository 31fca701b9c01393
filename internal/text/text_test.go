package text

import (
	"math"
	"testing"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
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

type fakeHost struct {
	dpr       float64
	mounted   []*Overlay
	unmounted []*Overlay
}

func (h *fakeHost) Mount(o *Overlay)          { h.mounted = append(h.mounted, o) }
func (h *fakeHost) Unmount(o *Overlay)        { h.unmounted = append(h.unmounted, o) }
func (h *fakeHost) DevicePixelRatio() float64 { return h.dpr }

func TestResolveArea(t *testing.T) {
	got := ResolveArea(Area{TextBlock: Block{Content: "hi", FontSize: 20}})
	want := Area{
		TextBlock: Block{Content: "hi", FontSize: 20, FontWeight: "normal", Color: "black", FontFamily: "Arial"},
		Color:     "white", ActiveColor: "white",
	}
	if got != want {
		t.Errorf("ResolveArea = %+v, want %+v", got, want)
	}

	if Resolve(nil) != nil {
		t.Error("Resolve(nil) should stay nil")
	}
}

func TestAreaDimensions(t *testing.T) {
	m := fixedMeasurer{}

	// 10 runes at 12px: width 60, height 12 -> padded 80 x 32.
	d := AreaDimensions(m, ResolveBlock(Block{Content: "0123456789"}))
	if d.Width != 80 || d.Height != 32 {
		t.Errorf("dimensions = %+v, want 80x32", d)
	}

	// Empty text floors at 2 * fontSize on both axes.
	d = AreaDimensions(m, ResolveBlock(Block{FontSize: 30}))
	if d.Width != 60 || d.Height != 60 {
		t.Errorf("empty dimensions = %+v, want 60x60", d)
	}
}

func TestPropsMatteIsCenteredOnAnchor(t *testing.T) {
	area := ResolveArea(Area{TextBlock: Block{Content: "0123456789"}})
	p := NewProps(geometry.Coordinate{X: 100, Y: 100}, area, fixedMeasurer{})

	want := geometry.BoundingBox{At: geometry.Coordinate{X: 60, Y: 84}, Width: 80, Height: 32}
	if got := p.Matte(); got != want {
		t.Errorf("matte = %+v, want %+v", got, want)
	}
	if !p.TextHitbox(geometry.Coordinate{X: 100, Y: 100}) {
		t.Error("anchor should hit the matte")
	}
	if p.TextHitbox(geometry.Coordinate{X: 150, Y: 100}) {
		t.Error("point right of matte should miss")
	}
}

func TestDrawTextArea(t *testing.T) {
	area := ResolveArea(Area{TextBlock: Block{Content: "0123456789"}, Color: "yellow"})
	p := NewProps(geometry.Coordinate{X: 100, Y: 100}, area, fixedMeasurer{})

	r := canvas.NewRecorder(fixedMeasurer{})
	p.DrawTextArea(r)

	fills := r.Find("fillStyle")
	if len(fills) != 2 || fills[0].Paint.Color != "yellow" || fills[1].Paint.Color != "black" {
		t.Fatalf("fill styles = %+v", fills)
	}

	texts := r.Find("fillText")
	if len(texts) != 1 {
		t.Fatalf("fillText count = %d", len(texts))
	}
	// descent is 3, so the baseline sits 0.75px below the matte center.
	if texts[0].Value != "0123456789" || texts[0].Args[0] != 100 || texts[0].Args[1] != 100.75 {
		t.Errorf("fillText = %+v", texts[0])
	}
}

func TestClientCoordinates(t *testing.T) {
	m := geometry.Translate(20, 40).Multiply(geometry.Scale(4, 4))

	got, zoom := ClientCoordinates(geometry.Coordinate{X: 10, Y: 10}, m, 2)
	if zoom != 2 || got.X != 30 || got.Y != 40 {
		t.Errorf("ClientCoordinates = %+v zoom %v", got, zoom)
	}

	back := CanvasCoordinates(got, m, 2)
	if math.Abs(back.X-10) > 1e-9 || math.Abs(back.Y-10) > 1e-9 {
		t.Errorf("CanvasCoordinates = %+v", back)
	}
}

func TestEditSessionCommitsOnce(t *testing.T) {
	area := ResolveArea(Area{TextBlock: Block{Content: "0123456789"}, ActiveColor: "lightblue"})
	p := NewProps(geometry.Coordinate{X: 100, Y: 100}, area, fixedMeasurer{})

	host := &fakeHost{dpr: 1}
	rec := canvas.NewRecorder(fixedMeasurer{})
	rec.Scale(2, 2)

	var calls []string
	s := p.StartTextAreaEdit(rec, host, func(content string) { calls = append(calls, content) })

	if len(host.mounted) != 1 {
		t.Fatalf("mounted %d overlays", len(host.mounted))
	}
	o := s.Overlay()
	if o.Left != 120 || o.Top != 168 {
		t.Errorf("overlay position = (%v, %v), want (120, 168)", o.Left, o.Top)
	}
	if o.Width != 160 || o.Height != 48 || o.PaddingTop != 6 {
		t.Errorf("overlay size = %vx%v pad %v", o.Width, o.Height, o.PaddingTop)
	}
	if o.Background != "lightblue" || o.Value != "0123456789" {
		t.Errorf("overlay style = %+v", o)
	}

	if s.KeyDown("a") {
		t.Error("non-Enter key should not be consumed")
	}
	s.Input("hello")
	s.PointerDown(geometry.Coordinate{X: o.Left + 1, Y: o.Top + 1})
	if s.Done() {
		t.Fatal("press inside the overlay should not commit")
	}

	if !s.KeyDown("Enter") {
		t.Error("Enter should be consumed")
	}
	s.Blur()
	s.Wheel()
	s.PointerDown(geometry.Coordinate{X: -100, Y: -100})

	if len(calls) != 1 || calls[0] != "hello" {
		t.Errorf("onBlur calls = %v, want [hello]", calls)
	}
	if len(host.unmounted) != 1 {
		t.Errorf("unmounted %d times, want 1", len(host.unmounted))
	}
}

func TestEditSessionInputResizesAroundCenter(t *testing.T) {
	area := ResolveArea(Area{TextBlock: Block{Content: "abcd"}})
	p := NewProps(geometry.Coordinate{}, area, fixedMeasurer{})
	s := p.StartTextAreaEdit(canvas.NewRecorder(fixedMeasurer{}), &fakeHost{dpr: 1}, nil)

	o := s.Overlay()
	center := o.Left + o.Width/2

	s.Input("a much longer line of text")
	if o.Width != 26*6 {
		t.Errorf("width = %v, want %v", o.Width, 26*6)
	}
	if got := o.Left + o.Width/2; math.Abs(got-center) > 1e-9 {
		t.Errorf("center moved from %v to %v", center, got)
	}
}
