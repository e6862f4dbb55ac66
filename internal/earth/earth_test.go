package earth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
)

func TestGravitySphericalAtEquator(t *testing.T) {
	loc := geodesy.NewLocation(0, 0, geodesy.EllipsoidSemiMajorFt)
	g := Gravity(loc, GravitySpherical)
	assert.InDelta(t, 32.17, g.Magnitude(), 1e-3)
}

func TestGravityWGS84J2NearSpherical(t *testing.T) {
	loc := geodesy.NewLocation(0.1, 0.2, geodesy.EllipsoidSemiMajorFt)
	gs := Gravity(loc, GravitySpherical)
	gj := Gravity(loc, GravityWGS84J2)
	// J2 perturbation is a small correction relative to the dominant term.
	assert.InDelta(t, gs.Magnitude(), gj.Magnitude(), 0.5)
}

func TestFlatEarthCallbackAlwaysOK(t *testing.T) {
	loc := geodesy.NewLocation(0, 0, geodesy.EllipsoidSemiMajorFt)
	info, ok := FlatEarthCallback(loc)
	assert.True(t, ok)
	assert.Equal(t, 0.0, info.ElevationFt)
}

func TestAltitudeAGLFallsBackWithoutCallback(t *testing.T) {
	loc := geodesy.NewLocation(0, 0, geodesy.EllipsoidSemiMajorFt)
	assert.Equal(t, 1000.0, AltitudeAGL(loc, 1000, nil))
}
