package aircraft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/aerodynamics"
	"camsim/internal/geodesy"
	"camsim/internal/ground"
	"camsim/internal/propulsion"
)

func TestAggregateSumsAllThreeContributors(t *testing.T) {
	aero := aerodynamics.Result{ForceBody: geodesy.Vector3{X: 1}, MomentBody: geodesy.Vector3{X: 10}}
	prop := propulsion.Result{ForceBody: geodesy.Vector3{X: 2}, MomentBody: geodesy.Vector3{X: 20}}
	grnd := ground.Result{ForceBody: geodesy.Vector3{X: 3}, MomentBody: geodesy.Vector3{X: 30}}

	res := Aggregate(aero, prop, grnd, 100)
	assert.InDelta(t, 6.0, res.ForceBody.X, 1e-9)
	assert.InDelta(t, 60.0, res.MomentBody.X, 1e-9)
}

func TestLoadFactorOneGLevelFlight(t *testing.T) {
	massSlug := 100.0
	weight := massSlug * StandardGravityFtS2
	aero := aerodynamics.Result{ForceBody: geodesy.Vector3{Z: -weight}}

	res := Aggregate(aero, propulsion.Result{}, ground.Result{}, massSlug)
	assert.InDelta(t, 1.0, res.LoadFactor.Z, 1e-9)
}

func TestBodyAccelZeroMassGuard(t *testing.T) {
	res := Aggregate(aerodynamics.Result{}, propulsion.Result{}, ground.Result{}, 0)
	assert.Equal(t, geodesy.Vector3{}, res.BodyAccel)
}
