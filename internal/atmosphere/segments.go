package atmosphere

// segment is one band of the seven-segment 1976 US Standard Atmosphere
// (spec.md §4.4), given as the altitude at which it begins (geopotential
// feet) and its lapse rate in degrees Rankine per foot. A lapse rate of 0
// marks an isothermal layer.
type segment struct {
	baseAltitudeFt float64
	lapseRateRPerFt float64
}

// segments runs to ~259,186 ft, matching spec.md §4.4's stated coverage.
var segments = []segment{
	{0, -0.0035662},
	{36089.24, 0},
	{65616.79, 0.0005486},
	{104986.875, 0.0015361},
	{154199.475, 0},
	{167322.834, -0.0010972},
	{232940.013, -0.0021946},
}

const topOfAtmosphereFt = 259186.352

// SeaLevelTemperatureR, SeaLevelPressurePsf, SeaLevelDensitySlugFt3 are
// the boundary-behavior constants spec.md §8 checks output against.
const (
	SeaLevelTemperatureR   = 518.67
	SeaLevelPressurePsf    = 2116.22
	SeaLevelDensitySlugFt3 = 0.00237767
	SpecificGasConstant    = 1716.0 // ft^2/s^2/R
	SpecificHeatRatio      = 1.4
	StandardGravityFtS2    = 32.174
)

func segmentFor(altitudeFt float64) (int, segment) {
	idx := 0
	for i, s := range segments {
		if altitudeFt >= s.baseAltitudeFt {
			idx = i
		} else {
			break
		}
	}
	return idx, segments[idx]
}
