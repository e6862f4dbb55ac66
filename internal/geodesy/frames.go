package geodesy

import "math"

// TEC2L returns the ECEF-to-local(NED) transform at the given location
// (spec.md §4.11 step 7: Tl2ec/Tec2l from Location).
func TEC2L(loc *Location) Matrix3 {
	sinLat, cosLat := loc.SinLatitude(), loc.CosLatitude()
	sinLon, cosLon := loc.SinLongitude(), loc.CosLongitude()

	// Rows are North, East, Down expressed in ECEF.
	return Matrix3{
		M11: -sinLat * cosLon, M12: -sinLat * sinLon, M13: cosLat,
		M21: -sinLon, M22: cosLon, M23: 0,
		M31: -cosLat * cosLon, M32: -cosLat * sinLon, M33: -sinLat,
	}
}

// TL2EC is the local-to-ECEF transform, the transpose of TEC2L since both
// are orthonormal.
func TL2EC(loc *Location) Matrix3 {
	return TEC2L(loc).Transpose()
}

// TEC2I returns the ECEF-to-ECI transform for the given Earth Position
// Angle (epa), the integral of planet rotation rate carried by Propagate
// (spec.md §4.11 step 5).
func TEC2I(epa float64) Matrix3 {
	c, s := math.Cos(epa), math.Sin(epa)
	return Matrix3{
		M11: c, M12: -s, M13: 0,
		M21: s, M22: c, M23: 0,
		M31: 0, M32: 0, M33: 1,
	}
}

// TI2EC is the ECI-to-ECEF transform, the transpose of TEC2I.
func TI2EC(epa float64) Matrix3 {
	return TEC2I(epa).Transpose()
}

// StructuralToBody converts a point given in the structural frame (inches,
// X-aft/Y-right/Z-up) to the body frame (feet, X-fwd/Y-right/Z-down),
// relative to the CG: Δ = vStruct - vXYZcg, scaled by 1/12, sign flipped
// on X and Z.
func StructuralToBody(structural, cgStructural Vector3) Vector3 {
	d := structural.Sub(cgStructural).Scale(1.0 / 12.0)
	return Vector3{X: -d.X, Y: d.Y, Z: -d.Z}
}
