// Package geom provides the 2D primitives shared by the flame renderer:
// points, affine transforms, and axis-aligned bounds.
package geom

import "math"

// Point is a coordinate in flame space.
type Point struct {
	X, Y float64
}

// Affine is a 2D affine transformation stored as a 2x3 matrix in row-major
// order:
//
//	| A  B  C |
//	| D  E  F |
//
// representing x' = A*x + B*y + C and y' = D*x + E*y + F.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Affine {
	return Affine{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale returns a scaling by (sx, sy) about the origin.
func Scale(sx, sy float64) Affine {
	return Affine{
		A: sx, B: 0, C: 0,
		D: 0, E: sy, F: 0,
	}
}

// Rotate returns a counter-clockwise rotation by angle radians about the origin.
func Rotate(angle float64) Affine {
	sin, cos := math.Sincos(angle)
	return Affine{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// Mul composes two transforms. Applying the result is equivalent to applying
// other first and then m.
func (m Affine) Mul(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply transforms p.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Coeffs returns the six coefficients in descriptor order:
// [A, B, D, E, C, F], i.e. the linear part first, then the translation.
func (m Affine) Coeffs() [6]float64 {
	return [6]float64{m.A, m.B, m.D, m.E, m.C, m.F}
}

// AffineFromCoeffs builds a transform from descriptor-order coefficients.
// It is the inverse of [Affine.Coeffs].
func AffineFromCoeffs(c [6]float64) Affine {
	return Affine{
		A: c[0], B: c[1], C: c[4],
		D: c[2], E: c[3], F: c[5],
	}
}

// Rect is an axis-aligned rectangle in flame space.
type Rect struct {
	XMin, XMax float64
	YMin, YMax float64
}

// UnitRect is the default flame viewport, spanning (-1,1) on both axes.
func UnitRect() Rect {
	return Rect{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
}

// Contains reports whether p lies strictly inside r.
// Points on the border are outside.
func (r Rect) Contains(p Point) bool {
	return p.X > r.XMin && p.X < r.XMax && p.Y > r.YMin && p.Y < r.YMax
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.XMax - r.XMin }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.YMax - r.YMin }
