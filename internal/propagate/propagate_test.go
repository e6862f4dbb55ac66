package propagate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
)

func initialState() VehicleState {
	loc := geodesy.NewLocation(0, 0, geodesy.EllipsoidSemiMajorFt+1000)
	return VehicleState{
		Quaternion:       geodesy.IdentityQ,
		PositionInertial: loc.ToVector3(),
	}
}

func TestNoneIntegratorFreezesPrimitives(t *testing.T) {
	m := New(initialState(), Integrators{})
	before := m.State.PositionInertial
	m.Step(0.01, geodesy.Vector3{}, geodesy.Vector3{X: 100})
	assert.Equal(t, before, m.State.PositionInertial)
	assert.Equal(t, geodesy.IdentityQ, m.State.Quaternion)
}

func TestRectangularEulerIntegratesPosition(t *testing.T) {
	st := initialState()
	st.VelocityInertial = geodesy.Vector3{X: 10}
	m := New(st, Integrators{
		TranslationalPosition: VectorIntegrator{Kind: RectangularEuler},
	})
	before := m.State.PositionInertial
	m.Step(1.0, geodesy.Vector3{}, geodesy.Vector3{})
	assert.InDelta(t, before.X+10, m.State.PositionInertial.X, 1e-9)
}

func TestBuss1MatchesDirectQExpForConstantRate(t *testing.T) {
	st := initialState()
	st.OmegaBodyInertial = geodesy.Vector3{X: 1}
	m := New(st, Integrators{
		RotationalPosition: QuaternionIntegrator{Kind: Buss1},
	})
	dt := math.Pi / 4
	m.Step(dt, geodesy.Vector3{}, geodesy.Vector3{})

	want := geodesy.IdentityQ.Multiply(geodesy.QExp(geodesy.Vector3{X: 1}.Scale(dt / 2)))
	assert.InDelta(t, want.W, m.State.Quaternion.W, 1e-9)
	assert.InDelta(t, want.X, m.State.Quaternion.X, 1e-9)
}

func TestAdamsBashforth2FirstStepMatchesEuler(t *testing.T) {
	stAB := initialState()
	stAB.VelocityInertial = geodesy.Vector3{X: 5}
	mAB := New(stAB, Integrators{TranslationalPosition: VectorIntegrator{Kind: AdamsBashforth2}})

	stEuler := initialState()
	stEuler.VelocityInertial = geodesy.Vector3{X: 5}
	mEuler := New(stEuler, Integrators{TranslationalPosition: VectorIntegrator{Kind: RectangularEuler}})

	mAB.Step(0.5, geodesy.Vector3{}, geodesy.Vector3{})
	mEuler.Step(0.5, geodesy.Vector3{}, geodesy.Vector3{})

	assert.InDelta(t, mEuler.State.PositionInertial.X, mAB.State.PositionInertial.X, 1e-9)
}

func TestRebuildProducesOrthonormalTransforms(t *testing.T) {
	st := initialState()
	st.OmegaBodyInertial = geodesy.Vector3{X: 0.05, Y: 0.02}
	st.VelocityInertial = geodesy.Vector3{X: 200}
	m := New(st, Integrators{
		RotationalPosition:    QuaternionIntegrator{Kind: Buss1},
		RotationalRate:        VectorIntegrator{Kind: RectangularEuler},
		TranslationalPosition: VectorIntegrator{Kind: RectangularEuler},
		TranslationalRate:     VectorIntegrator{Kind: RectangularEuler},
	})
	m.Step(0.02, geodesy.Vector3{X: 0.001}, geodesy.Vector3{Z: -32.2})

	assert.True(t, m.State.Tb2i.IsOrthonormal(1e-6))
	assert.True(t, m.State.Tb2l.IsOrthonormal(1e-6))
	assert.True(t, m.State.Tl2ec.IsOrthonormal(1e-6))
}
