// Package accelerations implements the Accelerations module (spec.md
// §4.10): angular/linear acceleration assembly, the optional
// gravitational-torque term, the projected Gauss-Seidel friction solver
// over ground-contact Jacobians, and hold-down mode.
package accelerations

import (
	"camsim/internal/earth"
	"camsim/internal/geodesy"
	"camsim/internal/ground"
)

// Inputs is everything Accelerations needs this tick. Force/Moment are
// the Aircraft (C9) aggregate, already summing aero+prop+ground normal
// contributions — per the spec.md §9 Open Question resolution, these are
// plain values, not a mutated shared input struct.
type Inputs struct {
	ForceBody  geodesy.Vector3
	MomentBody geodesy.Vector3

	MassSlug     float64
	Inertia      geodesy.Matrix3
	InertiaInv   geodesy.Matrix3

	OmegaBodyInertial geodesy.Vector3 // omega_i, inertial angular velocity, body coords
	VelocityBody      geodesy.Vector3

	Ti2b geodesy.Matrix3 // ECI-to-body
	Tb2i geodesy.Matrix3
	Tec2b geodesy.Matrix3
	Tec2i geodesy.Matrix3

	PositionInertial geodesy.Vector3
	GravityECEF      geodesy.Vector3 // gravity vector, ECEF/ECI Cartesian coords

	GravitationalTorqueEnabled bool
	RadiusFt                   float64 // |position|, for the gravitational-torque term
	BodyUnitFromCenter         geodesy.Vector3 // R_hat, body frame

	HoldDown bool

	Contacts        []ground.Record
	TerrainVelocityBodyByContact []geodesy.Vector3 // parallel to Contacts
	DtSec            float64
}

// Result is the second-derivative state Propagate (C11) integrates.
type Result struct {
	OmegaDotBody      geodesy.Vector3 // body-relative omega_dot: omega_dot_i minus the planet-rotation term
	VelocityDotBody   geodesy.Vector3 // a_body
	VelocityDotInertial geodesy.Vector3
	FrictionForceBody   geodesy.Vector3
	FrictionMomentBody  geodesy.Vector3
	Iterations          int
}

// Compute assembles angular and linear acceleration and, when any contact
// is compressed, resolves the friction solver (spec.md §4.10).
func Compute(in Inputs) Result {
	if in.HoldDown {
		return holdDown(in)
	}

	omegaDot := angularAcceleration(in)
	aBody := linearAcceleration(in, omegaDot)

	var res Result
	res.OmegaDotBody = omegaDot
	res.VelocityDotBody = aBody

	if len(in.Contacts) > 0 {
		ffB, fmB, iters := solveFriction(in, aBody, omegaDot)
		res.FrictionForceBody = ffB
		res.FrictionMomentBody = fmB
		res.Iterations = iters
		res.VelocityDotBody = aBody.Add(ffB.Scale(1 / in.MassSlug))
		res.OmegaDotBody = omegaDot.Add(in.InertiaInv.MulVec(fmB))
	}

	res.VelocityDotInertial = in.Tb2i.MulVec(in.ForceBody.Scale(1 / in.MassSlug)).Add(in.Tec2i.MulVec(in.GravityECEF))
	return res
}

func angularAcceleration(in Inputs) geodesy.Vector3 {
	moment := in.MomentBody
	if in.GravitationalTorqueEnabled && in.RadiusFt > 0 {
		g := in.GravityECEF.Magnitude()
		rHat := in.BodyUnitFromCenter
		torque := in.Inertia.MulVec(rHat)
		torque = rHat.Cross(torque).Scale(3 * g / in.RadiusFt)
		moment = moment.Add(torque)
	}

	omega := in.OmegaBodyInertial
	gyroscopic := omega.Cross(in.Inertia.MulVec(omega))
	omegaDotI := in.InertiaInv.MulVec(moment.Sub(gyroscopic))

	// Body-relative rate subtracts the planet-rotation term the way
	// Propagate derives omega_body from omega_i (spec.md §4.10/§4.11):
	// the Coriolis-type correction from differentiating Ti2b*omega_planet.
	omegaPlanetBody := in.Ti2b.MulVec(earth.PlanetRotationVector())
	correction := omega.Cross(omegaPlanetBody)
	return omegaDotI.Sub(correction)
}

func linearAcceleration(in Inputs, omegaDot geodesy.Vector3) geodesy.Vector3 {
	omegaPlanetBody := in.Ti2b.MulVec(earth.PlanetRotationVector())
	omega := in.OmegaBodyInertial

	coriolis := omega.Add(omegaPlanetBody.Scale(2)).Cross(in.VelocityBody)
	centripetal := in.Ti2b.MulVec(earth.CentripetalAcceleration(in.PositionInertial))
	gravity := in.Tec2b.MulVec(in.GravityECEF)

	return in.ForceBody.Scale(1 / in.MassSlug).Sub(coriolis).Sub(centripetal).Add(gravity)
}

// holdDown produces exactly-cancelling ECI accelerations so the
// integrator leaves the ECI state stationary relative to the rotating
// ground (spec.md §4.10, design note §9: compute the centripetal term
// explicitly, never approximate).
func holdDown(in Inputs) Result {
	centripetalInertial := earth.CentripetalAcceleration(in.PositionInertial)
	return Result{
		OmegaDotBody:        geodesy.Vector3{},
		VelocityDotBody:      geodesy.Vector3{},
		VelocityDotInertial: centripetalInertial,
	}
}
