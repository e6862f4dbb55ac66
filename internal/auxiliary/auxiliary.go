// Package auxiliary implements the Auxiliary module (spec.md §4.12):
// per-tick derived observables (aero-body velocity, alpha/beta, dynamic
// pressure variants, Mach, pilot-sensed acceleration, airspeeds,
// flight-path angle, ground track) plus the solar/Earth-position-angle
// computation used by the time-of-day properties.
package auxiliary

import (
	"math"

	"camsim/internal/geodesy"
)

// SeaLevel constants (spec.md §4.4), duplicated here rather than
// imported from atmosphere to keep this leaf package dependency-free;
// atmosphere.Conditions carries the live values for everything else.
const (
	SeaLevelPressurePsf    = 2116.217
	SeaLevelSpeedOfSoundFS = 1116.45
)

// Inputs is everything Auxiliary needs this tick.
type Inputs struct {
	VelocityBody    geodesy.Vector3
	WindNED         geodesy.Vector3
	Tl2b            geodesy.Matrix3
	VelocityNED     geodesy.Vector3

	ForceBody    geodesy.Vector3
	MassSlug     float64
	OmegaBody    geodesy.Vector3
	OmegaDotBody geodesy.Vector3
	PilotEyeBody geodesy.Vector3
	GravityBody  geodesy.Vector3

	DensitySlugFt3  float64
	PressurePsf     float64
	SpeedOfSoundFtS float64

	DtSec float64
}

// Result is the full set of derived observables spec.md §4.12 exposes.
type Result struct {
	AeroVelocityBody geodesy.Vector3 // v_body + Tl2b*v_wind

	Alpha, Beta       float64
	AlphaDot, BetaDot float64

	Vtotal float64
	QBar   float64
	QBarUW float64
	QBarUV float64
	Mach   float64

	PilotSensedAccel geodesy.Vector3

	CalibratedAirspeedFtS float64
	FlightPathAngleRad    float64
	GroundTrackRad        float64
}

// Model carries the previous tick's alpha/beta for the finite-difference
// alpha-dot/beta-dot terms.
type Model struct {
	prevAlpha, prevBeta float64
	initialized         bool
}

func New() *Model { return &Model{} }

// Update computes the full Result for one tick (spec.md §4.12).
func (m *Model) Update(in Inputs) Result {
	var res Result

	windBody := in.Tl2b.MulVec(in.WindNED)
	res.AeroVelocityBody = in.VelocityBody.Add(windBody)

	u, v, w := res.AeroVelocityBody.X, res.AeroVelocityBody.Y, res.AeroVelocityBody.Z
	uwSq := u*u + w*w

	if uwSq < 1e-12 {
		res.Alpha = 0
	} else {
		res.Alpha = math.Atan2(w, u)
	}
	denom := math.Copysign(math.Sqrt(uwSq), u)
	if denom == 0 {
		res.Beta = 0
	} else {
		res.Beta = math.Atan2(v, denom)
	}

	if m.initialized && in.DtSec > 0 {
		res.AlphaDot = (res.Alpha - m.prevAlpha) / in.DtSec
		res.BetaDot = (res.Beta - m.prevBeta) / in.DtSec
	}
	m.prevAlpha, m.prevBeta = res.Alpha, res.Beta
	m.initialized = true

	res.Vtotal = res.AeroVelocityBody.Magnitude()
	res.QBar = 0.5 * in.DensitySlugFt3 * res.Vtotal * res.Vtotal
	res.QBarUW = 0.5 * in.DensitySlugFt3 * uwSq
	res.QBarUV = 0.5 * in.DensitySlugFt3 * (u*u + v*v)

	if in.SpeedOfSoundFtS > 0 {
		res.Mach = res.Vtotal / in.SpeedOfSoundFtS
	}

	res.PilotSensedAccel = pilotSensedAccel(in, res.Vtotal)
	res.CalibratedAirspeedFtS = calibratedAirspeed(res.Mach, in.PressurePsf)

	if res.Vtotal > 0 {
		res.FlightPathAngleRad = math.Asin(clamp(-in.VelocityNED.Z/res.Vtotal, -1, 1))
	}
	res.GroundTrackRad = math.Atan2(in.VelocityNED.Y, in.VelocityNED.X)

	return res
}

// pilotSensedAccel is F/m + omegaDot x r_eye + omega x (omega x r_eye),
// falling back to gravity alone below 1 ft/s true airspeed so the
// simulated accelerometer doesn't amplify near-zero-speed aero noise
// (spec.md §4.12).
func pilotSensedAccel(in Inputs, vtotal float64) geodesy.Vector3 {
	if vtotal <= 1 {
		return in.GravityBody
	}
	if in.MassSlug <= 0 {
		return in.GravityBody
	}
	linear := in.ForceBody.Scale(1 / in.MassSlug)
	tangential := in.OmegaDotBody.Cross(in.PilotEyeBody)
	centripetal := in.OmegaBody.Cross(in.OmegaBody.Cross(in.PilotEyeBody))
	return linear.Add(tangential).Add(centripetal)
}

// calibratedAirspeed uses the isentropic subsonic impact-pressure formula
// below Mach 1 and the Rayleigh supersonic pitot formula above it
// (spec.md §4.12), then inverts the subsonic formula against sea-level
// reference conditions — an approximation that assumes the resulting CAS
// itself stays subsonic, adequate for the flight envelopes this
// simulator targets.
func calibratedAirspeed(mach, pressurePsf float64) float64 {
	if pressurePsf <= 0 {
		pressurePsf = SeaLevelPressurePsf
	}
	var qc float64
	if mach <= 1 {
		qc = pressurePsf * (math.Pow(1+0.2*mach*mach, 3.5) - 1)
	} else {
		qc = pressurePsf * (166.921*math.Pow(mach, 7)/math.Pow(7*mach*mach-1, 2.5) - 1)
	}
	ratio := qc/SeaLevelPressurePsf + 1
	return SeaLevelSpeedOfSoundFS * math.Sqrt(5*(math.Pow(ratio, 2.0/7)-1))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
