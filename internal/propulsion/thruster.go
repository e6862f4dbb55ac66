package propulsion

import (
	"math"

	"camsim/internal/geodesy"
)

// ThrusterKind distinguishes the three thruster geometries of spec.md
// §4.7.
type ThrusterKind int

const (
	Direct ThrusterKind = iota
	PropellerThruster
	Nozzle
)

// Thruster converts an engine's Output into a body-frame force and moment
// applied at the engine's placement.
type Thruster interface {
	Kind() ThrusterKind
	Resolve(out Output, placement Placement) (forceBody, momentBody geodesy.Vector3)
}

// Placement is the engine's position and orientation in the body frame,
// already converted from the structural frame at load time
// (geodesy.StructuralToBody).
type Placement struct {
	Position    geodesy.Vector3 // body frame, relative to CG
	ThrustAxis  geodesy.Vector3 // unit vector, body frame, direction of positive thrust
}

// DirectThruster applies the engine's thrust straight along ThrustAxis —
// used for Rocket, Turbine, and Electric engines.
type DirectThruster struct{}

func (DirectThruster) Kind() ThrusterKind { return Direct }

func (DirectThruster) Resolve(out Output, p Placement) (geodesy.Vector3, geodesy.Vector3) {
	force := p.ThrustAxis.Normalize().Scale(out.ThrustLbf)
	moment := p.Position.Cross(force)
	return force, moment
}

// PropellerThrusterModel converts shaft power into thrust via a simple
// momentum-theory actuator-disk relation and applies a reaction torque
// about the thrust axis (propeller/engine torque roll coupling).
type PropellerThrusterModel struct {
	DiameterFt     float64
	Efficiency     float64 // propulsive efficiency, 0..1
}

func (PropellerThrusterModel) Kind() ThrusterKind { return PropellerThruster }

func (m PropellerThrusterModel) Resolve(out Output, p Placement) (geodesy.Vector3, geodesy.Vector3) {
	eff := m.Efficiency
	if eff <= 0 {
		eff = 0.8
	}
	// Static-ish thrust estimate from disk actuator theory:
	// T = (2 * rho * A * P^2)^(1/3), using sea-level density as a
	// reference; density enters only through the engine's own
	// Output.ShaftPowerFtLbS (TurbopropEngine lapses it with density,
	// PistonEngine does not).
	area := math.Pi * (m.DiameterFt / 2) * (m.DiameterFt / 2)
	const rho0 = 0.00237767
	power := out.ShaftPowerFtLbS * eff
	var thrust float64
	if power > 0 && area > 0 {
		thrust = math.Cbrt(2 * rho0 * area * power * power)
	}
	force := p.ThrustAxis.Normalize().Scale(thrust)
	moment := p.Position.Cross(force)

	// reaction torque opposes the propeller's rotation, applied about the
	// thrust axis.
	if power > 0 && out.ShaftPowerFtLbS > 0 {
		omega := 2 * math.Pi * 2500.0 / 60.0 // nominal shaft speed placeholder when RPM is unavailable
		reactionTorque := power / omega
		moment = moment.Sub(p.ThrustAxis.Normalize().Scale(reactionTorque))
	}
	return force, moment
}

// NozzleThruster is a fixed-exit-area jet/rocket nozzle; identical to
// Direct for the force/moment resolution camsim models (pressure-thrust
// corrections are an external-collaborator table concern per §6).
type NozzleThruster struct{}

func (NozzleThruster) Kind() ThrusterKind { return Nozzle }

func (NozzleThruster) Resolve(out Output, p Placement) (geodesy.Vector3, geodesy.Vector3) {
	force := p.ThrustAxis.Normalize().Scale(out.ThrustLbf)
	moment := p.Position.Cross(force)
	return force, moment
}
