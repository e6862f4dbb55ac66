// Package geodesy implements the frame and attitude math shared by every
// simulation module: 3-vectors, 3x3 matrices, unit quaternions, and the
// geodetic Location type, all in the feet/seconds/radian units the rest of
// camsim works in (spec.md §3).
package geodesy

import "math"

// Vector3 is a 3-component column vector, used for positions, velocities,
// forces, moments and angular rates in whichever frame the caller documents.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Negate() Vector3 {
	return Vector3{-v.X, -v.Y, -v.Z}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vector3) Normalize() Vector3 {
	m := v.Magnitude()
	if m == 0 {
		return Vector3{}
	}
	return v.Scale(1 / m)
}

// Zero3 is the additive identity, handy as a default value in literals.
var Zero3 = Vector3{}
