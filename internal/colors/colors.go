package colors

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned when a string cannot be parsed as a color.
var ErrInvalidColor = errors.New("invalid color")

// RGBA is a color with 8-bit channels and a fractional alpha in [0, 1],
// matching the CSS color model used by schemas.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Parse accepts CSS color names, "transparent", #rgb, #rgba, #rrggbb,
// #rrggbbaa, rgb(r, g, b) and rgba(r, g, b, a).
func Parse(s string) (RGBA, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return RGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if norm == "transparent" {
		return RGBA{}, nil
	}
	if c, ok := colornames.Map[norm]; ok {
		return RGBA{R: c.R, G: c.G, B: c.B, A: float64(c.A) / 255}, nil
	}
	if strings.HasPrefix(norm, "#") {
		return parseHex(s, norm[1:])
	}
	if strings.HasPrefix(norm, "rgb") {
		return parseFunctional(s, norm)
	}
	return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
}

// MustParse is Parse for known-good literals.
func MustParse(s string) RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsColor reports whether s parses as a color.
func IsColor(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func parseHex(orig, digits string) (RGBA, error) {
	switch len(digits) {
	case 3, 4:
		expanded := make([]byte, 0, len(digits)*2)
		for i := 0; i < len(digits); i++ {
			expanded = append(expanded, digits[i], digits[i])
		}
		digits = string(expanded)
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
	}

	var ch [4]uint64
	ch[3] = 255
	for i := 0; i < len(digits)/2; i++ {
		v, err := strconv.ParseUint(digits[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
		}
		ch[i] = v
	}
	return RGBA{R: uint8(ch[0]), G: uint8(ch[1]), B: uint8(ch[2]), A: float64(ch[3]) / 255}, nil
}

func parseFunctional(orig, norm string) (RGBA, error) {
	open := strings.IndexByte(norm, '(')
	if open < 0 || !strings.HasSuffix(norm, ")") {
		return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
	}
	name := norm[:open]
	parts := strings.Split(norm[open+1:len(norm)-1], ",")
	if (name == "rgb" && len(parts) != 3) || (name == "rgba" && len(parts) != 4) || (name != "rgb" && name != "rgba") {
		return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
	}

	var out RGBA
	out.A = 1
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == 3 {
			a, err := strconv.ParseFloat(p, 64)
			if err != nil || a < 0 || a > 1 {
				return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
			}
			out.A = a
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || v > 255 {
			return RGBA{}, fmt.Errorf("%w %q", ErrInvalidColor, orig)
		}
		switch i {
		case 0:
			out.R = uint8(math.Round(v))
		case 1:
			out.G = uint8(math.Round(v))
		case 2:
			out.B = uint8(math.Round(v))
		}
	}
	return out, nil
}

// Hex returns the color as #rrggbb. Alpha is dropped.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String returns rgb(r, g, b) for opaque colors and rgba(r, g, b, a) otherwise.
func (c RGBA) String() string {
	if c.A >= 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// NRGBA converts to the standard library color model.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(clamp01(c.A) * 255))}
}

// Lerp blends a toward b by t. Channels are rounded, alpha is not.
func Lerp(a, b RGBA, t float64) RGBA {
	return RGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: a.A + (b.A-a.A)*t,
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*t)
	return uint8(math.Max(0, math.Min(255, v)))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
