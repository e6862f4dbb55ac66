package geodesy

import "math"

// Quaternion is a body-to-inertial (or body-to-local, depending on which
// attitude it represents) rotation, q = (w, x, y, z) per spec.md §3.
//
// Quaternion is a plain value type: derived quantities (rotation matrix,
// Euler angles) are pure functions of the four scalars rather than a
// memoized, invalidate-on-mutation cache. Design note §9 calls for
// "pure-function recomputation with memoization keyed on a version
// counter"; since Quaternion never mutates in place (every operation
// below returns a new value), there is nothing for a version counter to
// invalidate — recomputation on every read is the degenerate, always-valid
// case of that pattern. Location (location.go), which *is* mutated in
// place, keeps the version-counter cache.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQ is the no-rotation quaternion.
var IdentityQ = Quaternion{W: 1}

func QuaternionFromEuler(roll, pitch, yaw float64) Quaternion {
	cr, sr := math.Cos(roll*0.5), math.Sin(roll*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// ToEuler returns 3-2-1 (yaw-pitch-roll) Euler angles in radians.
func (q Quaternion) ToEuler() (roll, pitch, yaw float64) {
	sinrCosp := 2 * (q.W*q.X + q.Y*q.Z)
	cosrCosp := 1 - 2*(q.X*q.X+q.Y*q.Y)
	roll = math.Atan2(sinrCosp, cosrCosp)

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	switch {
	case sinp >= 1:
		pitch = math.Pi / 2
	case sinp <= -1:
		pitch = -math.Pi / 2
	default:
		pitch = math.Asin(sinp)
	}

	sinyCosp := 2 * (q.W*q.Z + q.X*q.Y)
	cosyCosp := 1 - 2*(q.Y*q.Y+q.Z*q.Z)
	yaw = math.Atan2(sinyCosp, cosyCosp)
	return roll, pitch, yaw
}

func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize renormalizes q to unit length, as required after every
// integration step that is not a Buss variant (spec.md §4.11).
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return IdentityQ
	}
	inv := 1 / n
	return Quaternion{q.W * inv, q.X * inv, q.Y * inv, q.Z * inv}
}

// Conjugate is the rotational inverse for a unit quaternion.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{q.W, -q.X, -q.Y, -q.Z}
}

func (q Quaternion) Multiply(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

func (q Quaternion) Add(o Quaternion) Quaternion {
	return Quaternion{q.W + o.W, q.X + o.X, q.Y + o.Y, q.Z + o.Z}
}

func (q Quaternion) Scale(s float64) Quaternion {
	return Quaternion{q.W * s, q.X * s, q.Y * s, q.Z * s}
}

// RotateVector rotates v by q: v' = q * v * q^-1.
func (q Quaternion) RotateVector(v Vector3) Vector3 {
	qConj := q.Conjugate()
	qv := Quaternion{0, v.X, v.Y, v.Z}
	r := q.Multiply(qv).Multiply(qConj)
	return Vector3{r.X, r.Y, r.Z}
}

// ToMatrix returns the rotation matrix this quaternion represents (the
// body-to-local transform when q is an attitude quaternion; Tl2b is its
// transpose, per spec.md §3's Tb2l/Tl2b pair).
func (q Quaternion) ToMatrix() Matrix3 {
	ww, xx, yy, zz := q.W*q.W, q.X*q.X, q.Y*q.Y, q.Z*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z

	return Matrix3{
		M11: ww + xx - yy - zz, M12: 2 * (xy - wz), M13: 2 * (xz + wy),
		M21: 2 * (xy + wz), M22: ww - xx + yy - zz, M23: 2 * (yz - wx),
		M31: 2 * (xz - wy), M32: 2 * (yz + wx), M33: ww - xx - yy + zz,
	}
}

// QuaternionFromMatrix recovers the unit quaternion representing m via
// Shepperd's method, picking whichever of the four component formulas
// keeps the denominator farthest from zero. Used by Propagate (spec.md
// §4.11 step 10) to derive q_AttitudeLocal from the rebuilt Tb2l matrix.
func QuaternionFromMatrix(m Matrix3) Quaternion {
	trace := m.M11 + m.M22 + m.M33
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		return Quaternion{
			W: 0.25 / s,
			X: (m.M32 - m.M23) * s,
			Y: (m.M13 - m.M31) * s,
			Z: (m.M21 - m.M12) * s,
		}.Normalize()
	case m.M11 > m.M22 && m.M11 > m.M33:
		s := 2 * math.Sqrt(1+m.M11-m.M22-m.M33)
		return Quaternion{
			W: (m.M32 - m.M23) / s,
			X: 0.25 * s,
			Y: (m.M12 + m.M21) / s,
			Z: (m.M13 + m.M31) / s,
		}.Normalize()
	case m.M22 > m.M33:
		s := 2 * math.Sqrt(1+m.M22-m.M11-m.M33)
		return Quaternion{
			W: (m.M13 - m.M31) / s,
			X: (m.M12 + m.M21) / s,
			Y: 0.25 * s,
			Z: (m.M23 + m.M32) / s,
		}.Normalize()
	default:
		s := 2 * math.Sqrt(1+m.M33-m.M11-m.M22)
		return Quaternion{
			W: (m.M21 - m.M12) / s,
			X: (m.M13 + m.M31) / s,
			Y: (m.M23 + m.M32) / s,
			Z: 0.25 * s,
		}.Normalize()
	}
}

// QExp is the quaternion exponential of a pure-vector quaternion, exactly
// reproducing a constant-rate rotation over the scalar multiplying w —
// the building block for the Buss-1/Buss-2 integrators (spec.md §4.11).
// w is interpreted as a half-angle-rate vector, i.e. the caller passes
// 0.5*dt*omega.
func QExp(w Vector3) Quaternion {
	theta := w.Magnitude()
	if theta < 1e-12 {
		// second-order Taylor expansion avoids the 0/0 in sin(theta)/theta
		return Quaternion{W: 1 - theta*theta/2, X: w.X, Y: w.Y, Z: w.Z}.Normalize()
	}
	s := math.Sin(theta) / theta
	return Quaternion{
		W: math.Cos(theta),
		X: w.X * s,
		Y: w.Y * s,
		Z: w.Z * s,
	}
}
