package canvas

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontMeasurer measures text with the Go font family. Requested families
// are ignored; weight selects regular or bold.
type FontMeasurer struct {
	mu      sync.Mutex
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

var (
	defaultMeasurer     *FontMeasurer
	defaultMeasurerOnce sync.Once
)

// DefaultMeasurer returns a process-wide FontMeasurer.
func DefaultMeasurer() *FontMeasurer {
	defaultMeasurerOnce.Do(func() {
		defaultMeasurer = NewFontMeasurer()
	})
	return defaultMeasurer
}

// NewFontMeasurer parses the embedded Go fonts.
func NewFontMeasurer() *FontMeasurer {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic("parse goregular: " + err.Error())
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		panic("parse gobold: " + err.Error())
	}
	return &FontMeasurer{
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}
}

// IsBold reports whether a CSS font weight should use the bold face.
func IsBold(weight string) bool {
	switch strings.ToLower(weight) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

func (m *FontMeasurer) face(f Font) font.Face {
	key := faceKey{bold: IsBold(f.Weight), size: f.Size}

	m.mu.Lock()
	defer m.mu.Unlock()

	if face, ok := m.faces[key]; ok {
		return face
	}

	src := m.regular
	if key.bold {
		src = m.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		slog.Warn("failed to build font face", "font", f.String(), "error", err)
		return nil
	}
	m.faces[key] = face
	return face
}

// Measure returns the advance width and the ink ascent/descent of s.
func (m *FontMeasurer) Measure(f Font, s string) TextMetrics {
	if f.Size <= 0 {
		return TextMetrics{}
	}
	face := m.face(f)
	if face == nil {
		return TextMetrics{}
	}

	m.mu.Lock()
	bounds, advance := font.BoundString(face, s)
	m.mu.Unlock()

	return TextMetrics{
		Width:   fixedToFloat(advance),
		Ascent:  -fixedToFloat(bounds.Min.Y),
		Descent: fixedToFloat(bounds.Max.Y),
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
