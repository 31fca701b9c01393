package canvas

import (
	"encoding/json"
	"image"

	"github.com/inamate/shapekit/internal/geometry"
)

// Command is a single recorded drawing operation. A frontend replays a list
// of these on a Canvas2D context.
type Command struct {
	Op            string    `json:"op"`
	Args          []float64 `json:"args,omitempty"`
	Anticlockwise bool      `json:"anticlockwise,omitempty"`
	Paint         *Paint    `json:"paint,omitempty"`
	Value         string    `json:"value,omitempty"` // cap, join, composite, font, align, baseline, text or image source
	Transform     []float64 `json:"transform,omitempty"`
}

// Recorder is a Canvas that records commands instead of rasterizing. It
// tracks the transform stack so Transform reflects Save/Translate/Rotate.
type Recorder struct {
	commands []Command
	measurer Measurer

	matrix geometry.Matrix2D
	font   Font
	stack  []recorderState
}

type recorderState struct {
	matrix geometry.Matrix2D
	font   Font
}

// NewRecorder returns an empty recorder. A nil measurer uses DefaultMeasurer.
func NewRecorder(m Measurer) *Recorder {
	if m == nil {
		m = DefaultMeasurer()
	}
	return &Recorder{
		measurer: m,
		matrix:   geometry.Identity(),
		font:     Font{Weight: "normal", Size: 10, Family: "sans-serif"},
	}
}

func (r *Recorder) emit(c Command) {
	r.commands = append(r.commands, c)
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Ops returns just the op names, for quick assertions.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.commands))
	for i, c := range r.commands {
		ops[i] = c.Op
	}
	return ops
}

// Find returns every recorded command with the given op.
func (r *Recorder) Find(op string) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded commands and the transform state.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.matrix = geometry.Identity()
	r.stack = r.stack[:0]
}

// MarshalJSON encodes the recorded frame.
func (r *Recorder) MarshalJSON() ([]byte, error) {
	if r.commands == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.commands)
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, recorderState{matrix: r.matrix, font: r.font})
	r.emit(Command{Op: "save"})
}

func (r *Recorder) Restore() {
	if n := len(r.stack); n > 0 {
		r.matrix = r.stack[n-1].matrix
		r.font = r.stack[n-1].font
		r.stack = r.stack[:n-1]
	}
	r.emit(Command{Op: "restore"})
}

func (r *Recorder) Translate(x, y float64) {
	r.matrix = r.matrix.Multiply(geometry.Translate(x, y))
	r.emit(Command{Op: "translate", Args: []float64{x, y}})
}

func (r *Recorder) Rotate(angle float64) {
	r.matrix = r.matrix.Multiply(geometry.Rotate(angle))
	r.emit(Command{Op: "rotate", Args: []float64{angle}})
}

func (r *Recorder) Scale(x, y float64) {
	r.matrix = r.matrix.Multiply(geometry.Scale(x, y))
	r.emit(Command{Op: "scale", Args: []float64{x, y}})
}

func (r *Recorder) Transform() geometry.Matrix2D {
	return r.matrix
}

func (r *Recorder) BeginPath() { r.emit(Command{Op: "beginPath"}) }
func (r *Recorder) ClosePath() { r.emit(Command{Op: "closePath"}) }

func (r *Recorder) MoveTo(x, y float64) {
	r.emit(Command{Op: "moveTo", Args: []float64{x, y}})
}

func (r *Recorder) LineTo(x, y float64) {
	r.emit(Command{Op: "lineTo", Args: []float64{x, y}})
}

func (r *Recorder) Arc(x, y, radius, start, end float64, anticlockwise bool) {
	r.emit(Command{Op: "arc", Args: []float64{x, y, radius, start, end}, Anticlockwise: anticlockwise})
}

func (r *Recorder) ArcTo(x1, y1, x2, y2, radius float64) {
	r.emit(Command{Op: "arcTo", Args: []float64{x1, y1, x2, y2, radius}})
}

func (r *Recorder) Ellipse(x, y, rx, ry, rotation, start, end float64, anticlockwise bool) {
	r.emit(Command{Op: "ellipse", Args: []float64{x, y, rx, ry, rotation, start, end}, Anticlockwise: anticlockwise})
}

func (r *Recorder) Rect(x, y, w, h float64) {
	r.emit(Command{Op: "rect", Args: []float64{x, y, w, h}})
}

func (r *Recorder) Fill() {
	r.emit(Command{Op: "fill", Transform: r.matrix.ToSlice()})
}

func (r *Recorder) Stroke() {
	r.emit(Command{Op: "stroke", Transform: r.matrix.ToSlice()})
}

func (r *Recorder) SetFillStyle(p Paint) {
	r.emit(Command{Op: "fillStyle", Paint: &p})
}

func (r *Recorder) SetStrokeStyle(p Paint) {
	r.emit(Command{Op: "strokeStyle", Paint: &p})
}

func (r *Recorder) SetLineWidth(w float64) {
	r.emit(Command{Op: "lineWidth", Args: []float64{w}})
}

func (r *Recorder) SetLineDash(segments []float64) {
	r.emit(Command{Op: "lineDash", Args: append([]float64{}, segments...)})
}

func (r *Recorder) SetLineCap(c LineCap) {
	r.emit(Command{Op: "lineCap", Value: string(c)})
}

func (r *Recorder) SetLineJoin(j LineJoin) {
	r.emit(Command{Op: "lineJoin", Value: string(j)})
}

func (r *Recorder) SetCompositeOperation(op CompositeOperation) {
	r.emit(Command{Op: "composite", Value: string(op)})
}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.emit(Command{Op: "fillRect", Args: []float64{x, y, w, h}, Transform: r.matrix.ToSlice()})
}

func (r *Recorder) SetFont(f Font) {
	r.font = f
	r.emit(Command{Op: "font", Value: f.String()})
}

func (r *Recorder) SetTextAlign(a TextAlign) {
	r.emit(Command{Op: "textAlign", Value: string(a)})
}

func (r *Recorder) SetTextBaseline(b TextBaseline) {
	r.emit(Command{Op: "textBaseline", Value: string(b)})
}

func (r *Recorder) FillText(s string, x, y float64) {
	r.emit(Command{Op: "fillText", Args: []float64{x, y}, Value: s, Transform: r.matrix.ToSlice()})
}

func (r *Recorder) MeasureText(s string) TextMetrics {
	return r.measurer.Measure(r.font, s)
}

func (r *Recorder) DrawImage(src string, _ image.Image, x, y, w, h float64) {
	r.emit(Command{Op: "drawImage", Args: []float64{x, y, w, h}, Value: src, Transform: r.matrix.ToSlice()})
}

// CommandsToJSON serializes commands to a JSON string.
func CommandsToJSON(commands []Command) (string, error) {
	if commands == nil {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
