package propagate

import (
	"camsim/internal/earth"
	"camsim/internal/geodesy"
)

// Integrators bundles the four independently selectable slots of
// spec.md §4.11: rotational_rate, translational_rate, rotational_position
// and translational_position.
type Integrators struct {
	RotationalRate        VectorIntegrator
	TranslationalRate     VectorIntegrator
	RotationalPosition    QuaternionIntegrator
	TranslationalPosition VectorIntegrator
}

// VehicleState holds the primitive integrated quantities plus every
// derived frame transform the rebuild sequence (spec.md §4.11, steps
// 5-11) recomputes each tick.
type VehicleState struct {
	Quaternion        geodesy.Quaternion // q_ECI: body-to-ECI attitude
	OmegaBodyInertial geodesy.Vector3    // omega_i
	PositionInertial  geodesy.Vector3    // r_i
	VelocityInertial  geodesy.Vector3    // v_i
	EPA               float64            // Earth position angle, radians

	// Derived, rebuilt every tick; safe to read but never set directly.
	Location        *geodesy.Location
	Tec2i, Ti2ec    geodesy.Matrix3
	Tl2ec, Tec2l    geodesy.Matrix3
	Ti2l, Tl2i      geodesy.Matrix3
	Ti2b, Tb2i      geodesy.Matrix3
	Tl2b, Tb2l      geodesy.Matrix3
	QuaternionLocal geodesy.Quaternion
	VelocityBody    geodesy.Vector3
	OmegaBody       geodesy.Vector3
	VelocityNED     geodesy.Vector3
}

// Model owns one aircraft's VehicleState and its four integrator slots.
type Model struct {
	Integrators Integrators
	State       VehicleState
}

// New constructs a Model and runs the derived-transform rebuild once so
// State is fully populated before the first Step.
func New(initial VehicleState, integrators Integrators) *Model {
	m := &Model{State: initial, Integrators: integrators}
	m.rebuild()
	return m
}

// Step advances VehicleState by dt given this tick's second derivatives
// from Accelerations (C10), then rebuilds every derived transform
// (spec.md §4.11 steps 1-11).
func (m *Model) Step(dt float64, omegaDotI, velocityDotInertial geodesy.Vector3) {
	s := &m.State

	newQuaternion := m.Integrators.RotationalPosition.Step(s.Quaternion, s.OmegaBodyInertial, omegaDotI, dt)
	newOmega := m.Integrators.RotationalRate.Step(s.OmegaBodyInertial, omegaDotI, dt)
	newPosition := m.Integrators.TranslationalPosition.Step(s.PositionInertial, s.VelocityInertial, dt)
	newVelocity := m.Integrators.TranslationalRate.Step(s.VelocityInertial, velocityDotInertial, dt)

	s.Quaternion = newQuaternion
	s.OmegaBodyInertial = newOmega
	s.PositionInertial = newPosition
	s.VelocityInertial = newVelocity
	s.EPA += earth.PlanetRotationRadPerSec * dt

	m.rebuild()
}

// rebuild carries out spec.md §4.11 steps 6-11: everything derivable
// from the four primitives and EPA, recomputed from scratch every tick
// rather than incrementally tracked.
func (m *Model) rebuild() {
	s := &m.State

	s.Ti2ec = geodesy.TI2EC(s.EPA)
	s.Tec2i = geodesy.TEC2I(s.EPA)
	s.Location = geodesy.FromVector3(s.Ti2ec.MulVec(s.PositionInertial))

	s.Tl2ec = geodesy.TL2EC(s.Location)
	s.Tec2l = geodesy.TEC2L(s.Location)
	s.Ti2l = s.Tec2l.Mul(s.Ti2ec)
	s.Tl2i = s.Ti2l.Transpose()

	s.Tb2i = s.Quaternion.ToMatrix()
	s.Ti2b = s.Tb2i.Transpose()
	s.Tl2b = s.Ti2b.Mul(s.Tl2i)
	s.Tb2l = s.Tl2b.Transpose()

	omegaPlanet := earth.PlanetRotationVector()
	s.VelocityBody = s.Ti2b.MulVec(s.VelocityInertial.Sub(omegaPlanet.Cross(s.PositionInertial)))
	s.OmegaBody = s.OmegaBodyInertial.Sub(s.Ti2b.MulVec(omegaPlanet))

	s.QuaternionLocal = geodesy.QuaternionFromMatrix(s.Tb2l)
	s.VelocityNED = s.Tb2l.MulVec(s.VelocityBody)
}
