package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixInverseRoundTrip(t *testing.T) {
	q := QuaternionFromEuler(0.3, -0.2, 0.9).Normalize()
	tb2l := q.ToMatrix()
	tl2b := tb2l.Transpose()
	prod := tb2l.Mul(tl2b)
	assert.True(t, prod.IsOrthonormal(1e-10))
}

func TestVectorCrossPerpendicular(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: -4, Y: 5, Z: 0.5}
	c := a.Cross(b)
	assert.InDelta(t, 0, c.Dot(a), 1e-10)
	assert.InDelta(t, 0, c.Dot(b), 1e-10)
}

func TestMatrixGeneralInverse(t *testing.T) {
	m := Matrix3{
		M11: 4, M12: 7, M13: 2,
		M21: 3, M22: 6, M23: 1,
		M31: 2, M32: 5, M33: 9,
	}
	inv, ok := m.Inverse()
	assert.True(t, ok)
	prod := m.Mul(inv)
	assert.InDelta(t, 1, prod.M11, 1e-9)
	assert.InDelta(t, 1, prod.M22, 1e-9)
	assert.InDelta(t, 1, prod.M33, 1e-9)
	assert.InDelta(t, 0, prod.M12, 1e-9)
}
