package geodesy

import "math"

// Matrix3 is a row-major 3x3 matrix, used for rotation/transform matrices
// between the five frames of spec.md §3 and for the inertia tensor's raw
// coefficients before handoff to gonum (internal/massbalance).
type Matrix3 struct {
	M11, M12, M13 float64
	M21, M22, M23 float64
	M31, M32, M33 float64
}

// Identity3 is the 3x3 identity matrix.
var Identity3 = Matrix3{
	M11: 1, M22: 1, M33: 1,
}

func (m Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m.M11*v.X + m.M12*v.Y + m.M13*v.Z,
		Y: m.M21*v.X + m.M22*v.Y + m.M23*v.Z,
		Z: m.M31*v.X + m.M32*v.Y + m.M33*v.Z,
	}
}

func (m Matrix3) Mul(o Matrix3) Matrix3 {
	return Matrix3{
		M11: m.M11*o.M11 + m.M12*o.M21 + m.M13*o.M31,
		M12: m.M11*o.M12 + m.M12*o.M22 + m.M13*o.M32,
		M13: m.M11*o.M13 + m.M12*o.M23 + m.M13*o.M33,

		M21: m.M21*o.M11 + m.M22*o.M21 + m.M23*o.M31,
		M22: m.M21*o.M12 + m.M22*o.M22 + m.M23*o.M32,
		M23: m.M21*o.M13 + m.M22*o.M23 + m.M23*o.M33,

		M31: m.M31*o.M11 + m.M32*o.M21 + m.M33*o.M31,
		M32: m.M31*o.M12 + m.M32*o.M22 + m.M33*o.M32,
		M33: m.M31*o.M13 + m.M32*o.M23 + m.M33*o.M33,
	}
}

// Transpose doubles as the inverse for the orthonormal rotation matrices
// this type is mostly used for (spec.md §8: Tb2l = Tl2b^T).
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		M11: m.M11, M12: m.M21, M13: m.M31,
		M21: m.M12, M22: m.M22, M23: m.M32,
		M31: m.M13, M32: m.M23, M33: m.M33,
	}
}

// Determinant is the 3x3 determinant via cofactor expansion, used by the
// general 3x3 inverse.
func (m Matrix3) Determinant() float64 {
	return m.M11*(m.M22*m.M33-m.M23*m.M32) -
		m.M12*(m.M21*m.M33-m.M23*m.M31) +
		m.M13*(m.M21*m.M32-m.M22*m.M31)
}

// Inverse returns the general matrix inverse (not assumed orthonormal).
// Returns false if the matrix is singular.
func (m Matrix3) Inverse() (Matrix3, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-30 {
		return Matrix3{}, false
	}
	invDet := 1 / det
	return Matrix3{
		M11: (m.M22*m.M33 - m.M23*m.M32) * invDet,
		M12: (m.M13*m.M32 - m.M12*m.M33) * invDet,
		M13: (m.M12*m.M23 - m.M13*m.M22) * invDet,

		M21: (m.M23*m.M31 - m.M21*m.M33) * invDet,
		M22: (m.M11*m.M33 - m.M13*m.M31) * invDet,
		M23: (m.M13*m.M21 - m.M11*m.M23) * invDet,

		M31: (m.M21*m.M32 - m.M22*m.M31) * invDet,
		M32: (m.M12*m.M31 - m.M11*m.M32) * invDet,
		M33: (m.M11*m.M22 - m.M12*m.M21) * invDet,
	}, true
}

// IsOrthonormal reports whether m * m^T == I within tol, the round-trip
// law spec.md §8 tests against T-matrices produced by Propagate.
func (m Matrix3) IsOrthonormal(tol float64) bool {
	p := m.Mul(m.Transpose())
	diag := math.Abs(p.M11-1) < tol && math.Abs(p.M22-1) < tol && math.Abs(p.M33-1) < tol
	off := math.Abs(p.M12) < tol && math.Abs(p.M13) < tol && math.Abs(p.M21) < tol &&
		math.Abs(p.M23) < tol && math.Abs(p.M31) < tol && math.Abs(p.M32) < tol
	return diag && off
}
