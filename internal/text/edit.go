package text

import (
	"math"
	"sync"

	"github.com/inamate/shapekit/internal/canvas"
	"github.com/inamate/shapekit/internal/geometry"
	"github.com/inamate/shapekit/internal/typeid"
)

// OnBlur receives the final content of an edit session.
type OnBlur func(content string)

// Host mounts edit overlays above the canvas, in client (screen) pixels.
type Host interface {
	Mount(o *Overlay)
	Unmount(o *Overlay)
	// DevicePixelRatio is the ratio folded into the canvas transform.
	DevicePixelRatio() float64
}

// Overlay is the editable text box shown while a text area is being edited.
// Positions and sizes are client pixels.
type Overlay struct {
	ID         string  `json:"id"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	PaddingTop float64 `json:"paddingTop"`
	FontSize   float64 `json:"fontSize"`
	FontWeight string  `json:"fontWeight"`
	FontFamily string  `json:"fontFamily"`
	TextColor  string  `json:"textColor"`
	Background string  `json:"background"`
	Value      string  `json:"value"`
}

// Bounds returns the overlay rect in client pixels.
func (o *Overlay) Bounds() geometry.BoundingBox {
	return geometry.BoundingBox{At: geometry.Coordinate{X: o.Left, Y: o.Top}, Width: o.Width, Height: o.Height}
}

// CanvasTransform extracts pan and zoom from a canvas transform, removing
// the device pixel ratio.
func CanvasTransform(m geometry.Matrix2D, dpr float64) (panX, panY, zoom float64) {
	if dpr <= 0 {
		dpr = 1
	}
	return m.TranslateX() / dpr, m.TranslateY() / dpr, m.ScaleX() / dpr
}

// ClientCoordinates maps a canvas point to client pixels.
func ClientCoordinates(p geometry.Coordinate, m geometry.Matrix2D, dpr float64) (geometry.Coordinate, float64) {
	panX, panY, zoom := CanvasTransform(m, dpr)
	return geometry.Coordinate{X: p.X*zoom + panX, Y: p.Y*zoom + panY}, zoom
}

// CanvasCoordinates maps client pixels back to a canvas point.
func CanvasCoordinates(client geometry.Coordinate, m geometry.Matrix2D, dpr float64) geometry.Coordinate {
	panX, panY, zoom := CanvasTransform(m, dpr)
	if zoom == 0 {
		zoom = 1
	}
	return geometry.Coordinate{X: (client.X - panX) / zoom, Y: (client.Y - panY) / zoom}
}

// EditSession is a live text edit. It commits exactly once, on Enter, blur,
// a pointer press outside the overlay, or a wheel event.
type EditSession struct {
	mu       sync.Mutex
	overlay  *Overlay
	host     Host
	onBlur   OnBlur
	measurer canvas.Measurer
	font     canvas.Font
	minWidth float64
	done     bool
}

func startEdit(c canvas.Canvas, host Host, onBlur OnBlur, p *Props) *EditSession {
	b := p.area.TextBlock
	measured := Measure(p.measurer, b)

	dpr := 1.0
	if host != nil {
		dpr = host.DevicePixelRatio()
	}
	client, zoom := ClientCoordinates(p.at, c.Transform(), dpr)

	o := &Overlay{
		ID:         typeid.NewEditID(),
		Left:       client.X,
		Top:        client.Y,
		Width:      math.Round(max(b.FontSize*2, measured.Width+HorizontalPadding) * zoom),
		Height:     math.Round(b.FontSize * 2 * zoom),
		PaddingTop: math.Round(measured.Descent * zoom),
		FontSize:   b.FontSize * zoom,
		FontWeight: string(b.FontWeight),
		FontFamily: b.FontFamily,
		TextColor:  b.Color,
		Background: p.area.ActiveColor,
		Value:      b.Content,
	}

	s := &EditSession{
		overlay:  o,
		host:     host,
		onBlur:   onBlur,
		measurer: p.measurer,
		font:     canvas.Font{Weight: o.FontWeight, Size: o.FontSize, Family: o.FontFamily},
		minWidth: b.FontSize * 2,
	}
	if host != nil {
		host.Mount(o)
	}
	return s
}

// Overlay returns the mounted overlay.
func (s *EditSession) Overlay() *Overlay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// Done reports whether the session has committed.
func (s *EditSession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Input replaces the content and grows or shrinks the overlay around its
// center.
func (s *EditSession) Input(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}

	o := s.overlay
	o.Value = value
	scroll := s.measurer.Measure(s.font, value).Width
	newWidth := max(scroll, s.minWidth)
	delta := newWidth - o.Width
	o.Left -= delta / 2
	o.Width = newWidth
}

// KeyDown handles a key press. Enter commits; it reports whether the key
// was consumed.
func (s *EditSession) KeyDown(key string) bool {
	if key != "Enter" {
		return false
	}
	s.commit()
	return true
}

// Blur commits the session.
func (s *EditSession) Blur() {
	s.commit()
}

// PointerDown commits when the press lands outside the overlay.
func (s *EditSession) PointerDown(client geometry.Coordinate) {
	s.mu.Lock()
	inside := geometry.IsPointInBoundingBox(s.overlay.Bounds(), client)
	s.mu.Unlock()
	if !inside {
		s.commit()
	}
}

// Wheel commits the session.
func (s *EditSession) Wheel() {
	s.commit()
}

func (s *EditSession) commit() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	value := s.overlay.Value
	s.mu.Unlock()

	if s.onBlur != nil {
		s.onBlur(value)
	}
	if s.host != nil {
		s.host.Unmount(s.overlay)
	}
}
