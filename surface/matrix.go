// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 3x3 transformation matrix in row-major order:
//
//	| ScaleX SkewX  TransX |
//	| SkewY  ScaleY TransY |
//	| Persp0 Persp1 Persp2 |
//
// Points map as
//
//	x' = (ScaleX*x + SkewX*y + TransX) / w
//	y' = (SkewY*x + ScaleY*y + TransY) / w
//	w  =  Persp0*x + Persp1*y + Persp2
type Matrix [9]float64

// Matrix element indices.
const (
	MScaleX = iota
	MSkewX
	MTransX
	MSkewY
	MScaleY
	MTransY
	MPersp0
	MPersp1
	MPersp2
)

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		1, 0, x,
		0, 1, y,
		0, 0, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		x, 0, 0,
		0, y, 0,
		0, 0, 1,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	}
}

// MatrixFromSlice reads nine row-major values. It returns false if v holds
// fewer than nine values.
func MatrixFromSlice(v []float32) (Matrix, bool) {
	var m Matrix
	if len(v) < 9 {
		return m, false
	}
	for i := range m {
		m[i] = float64(v[i])
	}
	return m, true
}

// WriteTo stores the nine row-major values into dst.
// It returns false if dst holds fewer than nine values.
func (m Matrix) WriteTo(dst []float32) bool {
	if len(dst) < 9 {
		return false
	}
	for i, v := range m {
		dst[i] = float32(v)
	}
	return true
}

// Multiply returns m * other: other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	var r Matrix
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r[row*3+col] = m[row*3]*other[col] +
				m[row*3+1]*other[3+col] +
				m[row*3+2]*other[6+col]
		}
	}
	return r
}

// MapPoint applies the transformation to a point, including the
// perspective divide.
func (m Matrix) MapPoint(x, y float64) (float64, float64) {
	px := m[MScaleX]*x + m[MSkewX]*y + m[MTransX]
	py := m[MSkewY]*x + m[MScaleY]*y + m[MTransY]
	if m.IsAffine() {
		return px, py
	}
	w := m[MPersp0]*x + m[MPersp1]*y + m[MPersp2]
	if w == 0 {
		return px, py
	}
	return px / w, py / w
}

// Invert returns the inverse matrix and whether it exists.
func (m Matrix) Invert() (Matrix, bool) {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	co0 := e*i - f*h
	co1 := f*g - d*i
	co2 := d*h - e*g
	det := a*co0 + b*co1 + c*co2
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	return Matrix{
		co0 * inv, (c*h - b*i) * inv, (b*f - c*e) * inv,
		co1 * inv, (a*i - c*g) * inv, (c*d - a*f) * inv,
		co2 * inv, (b*g - a*h) * inv, (a*e - b*d) * inv,
	}, true
}

// IsIdentity reports whether m is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsAffine reports whether m has no perspective component.
func (m Matrix) IsAffine() bool {
	return m[MPersp0] == 0 && m[MPersp1] == 0 && m[MPersp2] == 1
}

// Aff3 returns the affine part of m in x/image form.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{
		m[MScaleX], m[MSkewX], m[MTransX],
		m[MSkewY], m[MScaleY], m[MTransY],
	}
}
