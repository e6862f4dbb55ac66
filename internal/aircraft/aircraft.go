// Package aircraft implements the Aircraft module (spec.md §4.9): it
// aggregates the aerodynamic, propulsion and ground-reaction
// contributions into the total force/moment Accelerations consumes, and
// derives body acceleration and load-factor observables for the
// property bus.
package aircraft

import (
	"camsim/internal/aerodynamics"
	"camsim/internal/geodesy"
	"camsim/internal/ground"
	"camsim/internal/propulsion"
)

// StandardGravityFtS2 is the reference 1-g acceleration load factor is
// normalized against, matching atmosphere's sea-level constant.
const StandardGravityFtS2 = 32.174

// Result is the per-tick aggregate Accelerations (C10) consumes, plus
// the derived observables spec.md §4.9 exposes on the property bus.
type Result struct {
	ForceBody  geodesy.Vector3
	MomentBody geodesy.Vector3

	BodyAccel  geodesy.Vector3 // F/m, before gravity/Coriolis terms
	LoadFactor geodesy.Vector3 // aviation convention: nz=+1 in 1g level flight
}

// Aggregate sums the three force/moment contributors as plain values
// (spec.md §9 Open Question: never mutate a shared input struct) and
// derives the load-factor vector from the total mass.
func Aggregate(aero aerodynamics.Result, prop propulsion.Result, grnd ground.Result, massSlug float64) Result {
	var res Result
	res.ForceBody = aero.ForceBody.Add(prop.ForceBody).Add(grnd.ForceBody)
	res.MomentBody = aero.MomentBody.Add(prop.MomentBody).Add(grnd.MomentBody)

	if massSlug > 0 {
		res.BodyAccel = res.ForceBody.Scale(1 / massSlug)
		weight := massSlug * StandardGravityFtS2
		res.LoadFactor = geodesy.Vector3{
			X: res.ForceBody.X / weight,
			Y: res.ForceBody.Y / weight,
			Z: -res.ForceBody.Z / weight,
		}
	}
	return res
}
