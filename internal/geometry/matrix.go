package geometry

import "math"

// Matrix2D is a 2D affine transform in canvas order [a, b, c, d, e, f]:
//
//	| a  c  e |
//	| b  d  f |
//	| 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (angle in radians).
func Rotate(radians float64) Matrix2D {
	cos := math.Cos(radians)
	sin := math.Sin(radians)
	return Matrix2D{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * other: other is applied first, then m.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// Apply transforms a point.
func (m Matrix2D) Apply(p Coordinate) Coordinate {
	return Coordinate{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// ApplyBox transforms the corners of b and returns their axis-aligned bounds.
func (m Matrix2D) ApplyBox(b BoundingBox) BoundingBox {
	b = NormalizeBoundingBox(b)
	corners := [4]Coordinate{
		m.Apply(b.At),
		m.Apply(Coordinate{X: b.At.X + b.Width, Y: b.At.Y}),
		m.Apply(Coordinate{X: b.At.X + b.Width, Y: b.At.Y + b.Height}),
		m.Apply(Coordinate{X: b.At.X, Y: b.At.Y + b.Height}),
	}

	minX, minY := corners[0].X, corners[0].Y
	maxX, maxY := minX, minY
	for _, c := range corners[1:] {
		minX, maxX = min(minX, c.X), max(maxX, c.X)
		minY, maxY = min(minY, c.Y), max(maxY, c.Y)
	}
	return BoundingBox{At: Coordinate{X: minX, Y: minY}, Width: maxX - minX, Height: maxY - minY}
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse, or Identity if m is singular.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}

	inv := 1.0 / det
	return Matrix2D{
		m[3] * inv,
		-m[1] * inv,
		-m[2] * inv,
		m[0] * inv,
		(m[2]*m[5] - m[3]*m[4]) * inv,
		(m[1]*m[4] - m[0]*m[5]) * inv,
	}
}

// ScaleX is the horizontal scale factor (the a component).
func (m Matrix2D) ScaleX() float64 { return m[0] }

// TranslateX is the e component.
func (m Matrix2D) TranslateX() float64 { return m[4] }

// TranslateY is the f component.
func (m Matrix2D) TranslateY() float64 { return m[5] }

// ToSlice returns the matrix as a slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	id := Identity()
	for i := range m {
		if math.Abs(m[i]-id[i]) >= eps {
			return false
		}
	}
	return true
}
