package accelerations

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
	"camsim/internal/ground"
)

func TestLinearAccelerationMatchesNewtonsLaw(t *testing.T) {
	in := Inputs{
		ForceBody:  geodesy.Vector3{X: 1000},
		MassSlug:   100,
		Inertia:    geodesy.Identity3,
		InertiaInv: geodesy.Identity3,
		Ti2b:       geodesy.Identity3,
		Tb2i:       geodesy.Identity3,
		Tec2b:      geodesy.Identity3,
		Tec2i:      geodesy.Identity3,
	}
	res := Compute(in)
	assert.InDelta(t, 10.0, res.VelocityDotBody.X, 1e-6)
}

func TestAngularAccelerationGyroscopicTerm(t *testing.T) {
	in := Inputs{
		MomentBody:        geodesy.Vector3{},
		Inertia:           geodesy.Matrix3{M11: 10, M22: 20, M33: 25},
		InertiaInv:        mustInvert(geodesy.Matrix3{M11: 10, M22: 20, M33: 25}),
		OmegaBodyInertial: geodesy.Vector3{X: 1, Z: 1},
		MassSlug:          100,
		Ti2b:              geodesy.Identity3,
		Tb2i:              geodesy.Identity3,
		Tec2b:             geodesy.Identity3,
		Tec2i:             geodesy.Identity3,
	}
	res := Compute(in)
	// asymmetric inertia with coupled rates produces a nonzero gyroscopic
	// cross-coupling even with zero applied moment.
	assert.NotZero(t, res.OmegaDotBody.Y)
}

func TestHoldDownZeroesBodyAccelerations(t *testing.T) {
	in := Inputs{
		HoldDown:         true,
		PositionInertial: geodesy.Vector3{X: 20925646.32546},
	}
	res := Compute(in)
	assert.Equal(t, geodesy.Vector3{}, res.VelocityDotBody)
	assert.Equal(t, geodesy.Vector3{}, res.OmegaDotBody)
	assert.NotZero(t, res.VelocityDotInertial.Magnitude())
}

func TestFrictionSolverOpposesSlidingWithinBounds(t *testing.T) {
	contact := ground.Record{
		Compressed: true,
		U:          geodesy.Vector3{X: -1},
		LeverArm:   geodesy.Vector3{Z: 3},
		LambdaMin:  -500,
		LambdaMax:  500,
	}
	in := Inputs{
		ForceBody:         geodesy.Vector3{},
		MassSlug:          100,
		Inertia:           geodesy.Identity3,
		InertiaInv:        geodesy.Identity3,
		VelocityBody:      geodesy.Vector3{X: 10},
		Ti2b:              geodesy.Identity3,
		Tb2i:              geodesy.Identity3,
		Tec2b:             geodesy.Identity3,
		Tec2i:             geodesy.Identity3,
		Contacts:          []ground.Record{contact},
		DtSec:             0.01,
	}
	res := Compute(in)
	assert.Less(t, res.FrictionForceBody.X, 0.0)
	assert.LessOrEqual(t, res.Iterations, maxFrictionIterations)
}

func TestFrictionSolverSaturatesAtBound(t *testing.T) {
	contact := ground.Record{
		Compressed: true,
		U:          geodesy.Vector3{X: -1},
		LeverArm:   geodesy.Vector3{},
		LambdaMin:  -10,
		LambdaMax:  10,
	}
	in := Inputs{
		MassSlug:     100,
		Inertia:      geodesy.Identity3,
		InertiaInv:   geodesy.Identity3,
		VelocityBody: geodesy.Vector3{X: 1000},
		Ti2b:         geodesy.Identity3,
		Tb2i:         geodesy.Identity3,
		Tec2b:        geodesy.Identity3,
		Tec2i:        geodesy.Identity3,
		Contacts:     []ground.Record{contact},
		DtSec:        0.01,
	}
	res := Compute(in)
	assert.InDelta(t, -10.0, res.FrictionForceBody.X, 1e-6)
}

func mustInvert(m geodesy.Matrix3) geodesy.Matrix3 {
	inv, ok := m.Inverse()
	if !ok {
		panic("singular")
	}
	return inv
}
