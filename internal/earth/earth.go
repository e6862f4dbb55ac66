// Package earth implements the Inertial/Earth model (spec.md §4.3):
// planet rotation, the spherical and WGS-84 J2 gravity models, and the
// ground-contact callback contract.
package earth

import (
	"camsim/internal/geodesy"
)

// Physical constants (spec.md §4.3).
const (
	GravitationalParameterFt3S2 = 1.40764417572e16 // GM, ft^3/s^2
	J2                           = 1.08262982e-3
	C20                          = -4.84165371736e-4
	PlanetRotationRadPerSec      = 7.292115e-5
)

// GravityModel selects which of the two gravity formulations Gravity uses.
type GravityModel int

const (
	GravitySpherical GravityModel = iota
	GravityWGS84J2
)

// PlanetRotationVector is omega_planet expressed in ECI, Z-aligned
// (spec.md §4.3).
func PlanetRotationVector() geodesy.Vector3 {
	return geodesy.Vector3{Z: PlanetRotationRadPerSec}
}

// Gravity returns the gravity acceleration vector (ft/s^2) at loc,
// expressed in ECEF/ECI Cartesian coordinates (directed toward the
// planet center to first order), per the selected model.
func Gravity(loc *geodesy.Location, model GravityModel) geodesy.Vector3 {
	switch model {
	case GravitySpherical:
		return gravitySpherical(loc)
	default:
		return gravityWGS84J2(loc)
	}
}

func gravitySpherical(loc *geodesy.Location) geodesy.Vector3 {
	r := loc.Radius()
	if r == 0 {
		return geodesy.Vector3{}
	}
	g := -GravitationalParameterFt3S2 / (r * r)
	rHat := loc.ToVector3().Normalize()
	return rHat.Scale(g)
}

// gravityWGS84J2 implements the standard J2 gravity formulation referenced
// by spec.md §4.3, with geocentric latitude lat:
// g = -(GM/r^2)*[ (1 - 1.5*J2*(a/r)^2*(3 sin^2(lat) - 1)) r_hat
//                 + 3*J2*(a/r)^2*sin(lat)*(z_hat - sin(lat) r_hat) ].
func gravityWGS84J2(loc *geodesy.Location) geodesy.Vector3 {
	r := loc.Radius()
	if r == 0 {
		return geodesy.Vector3{}
	}
	a := geodesy.EllipsoidSemiMajorFt
	sinLat := loc.SinLatitude()

	muOverR2 := GravitationalParameterFt3S2 / (r * r)
	ar2 := (a / r) * (a / r)

	radialFactor := -1.5 * J2 * ar2 * (3*sinLat*sinLat - 1)
	polarFactor := 3 * J2 * ar2 * sinLat

	p := loc.ToVector3()
	rHat := p.Normalize()
	zHat := geodesy.Vector3{Z: 1}

	gr := -muOverR2 * (1 + radialFactor)
	gz := -muOverR2 * polarFactor

	// gr acts along rHat; the polar correction acts along zHat, with the
	// component already along rHat removed so it purely tilts the vector
	// toward/away from the equatorial plane.
	radial := rHat.Scale(gr)
	polar := zHat.Sub(rHat.Scale(sinLat)).Scale(gz)
	return radial.Add(polar)
}

// GroundInfo is what a GroundCallback reports about the terrain directly
// below a Location.
type GroundInfo struct {
	ElevationFt  float64
	Normal       geodesy.Vector3 // unit normal, local NED frame
	VelocityFps  geodesy.Vector3 // terrain linear velocity, local NED
	AngularRate  geodesy.Vector3 // terrain angular velocity, local NED
}

// GroundCallback reports terrain state below loc. It returns ok=false if
// no terrain data is available; per spec.md §4.3, the caller then treats
// AGL altitude as ASL altitude (0 conventional ground elevation).
type GroundCallback func(loc *geodesy.Location) (GroundInfo, bool)

// FlatEarthCallback is the default ground callback: a flat plane at
// elevation 0 with an upward-pointing normal (-Z in NED) and no terrain motion, used
// when the host does not supply a real terrain model.
func FlatEarthCallback(loc *geodesy.Location) (GroundInfo, bool) {
	return GroundInfo{
		ElevationFt: 0,
		Normal:      geodesy.Vector3{Z: -1},
	}, true
}

// AltitudeAGL resolves altitude-above-ground-level given a ground
// callback, falling back to ASL-minus-zero when no terrain is reported.
func AltitudeAGL(loc *geodesy.Location, altitudeASL float64, cb GroundCallback) float64 {
	if cb == nil {
		return altitudeASL
	}
	info, ok := cb(loc)
	if !ok {
		return altitudeASL
	}
	return altitudeASL - info.ElevationFt
}

// CentripetalAcceleration computes omega_planet x (omega_planet x r), the
// exact term hold-down mode must cancel against (spec.md §4.10, design
// note §9: "do not approximate").
func CentripetalAcceleration(rInertial geodesy.Vector3) geodesy.Vector3 {
	omega := PlanetRotationVector()
	return omega.Cross(omega.Cross(rInertial))
}
