package ground

import (
	"camsim/internal/earth"
	"camsim/internal/geodesy"
)

// Model owns the strut set for one aircraft (spec.md §4.8).
type Model struct {
	Contacts []*Contact
}

func New(contacts ...*Contact) *Model {
	return &Model{Contacts: contacts}
}

// Result is the summed force/moment Ground Reactions hands to Aircraft
// (C9), plus the per-strut Records Accelerations' friction solver needs.
type Result struct {
	ForceBody  geodesy.Vector3
	MomentBody geodesy.Vector3
	Records    []Record
	AnyCompressed bool
}

// Update runs every strut's contact detection and sums the spring/damper
// normal forces. Steering and brake commands are indexed parallel to
// Contacts; a short slice defaults the remainder to zero.
func (m *Model) Update(dt, cgAltitudeAGLFt float64, bodyToLocal geodesy.Matrix3,
	bodyVelocity, bodyAngularRate geodesy.Vector3,
	steerCmdsRad, brakeCmds []float64, cb earth.GroundCallback, loc *geodesy.Location) Result {

	var res Result
	res.Records = make([]Record, len(m.Contacts))

	info, ok := cb(loc)
	if !ok {
		info = earth.GroundInfo{Normal: geodesy.Vector3{Z: -1}}
	}

	for i, c := range m.Contacts {
		steer := 0.0
		if i < len(steerCmdsRad) {
			steer = steerCmdsRad[i]
		}
		brake := 0.0
		if i < len(brakeCmds) {
			brake = brakeCmds[i]
		}
		rec := c.Update(dt, cgAltitudeAGLFt, bodyToLocal, c.PositionBody, bodyVelocity, bodyAngularRate, steer, brake, info)
		res.Records[i] = rec
		if rec.Compressed {
			res.AnyCompressed = true
			res.ForceBody = res.ForceBody.Add(rec.NormalForceBody)
			res.MomentBody = res.MomentBody.Add(rec.NormalMomentBody)
		}
	}
	return res
}
