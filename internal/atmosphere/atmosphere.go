// Package atmosphere implements the standard atmosphere lookup, wind, and
// turbulence models of spec.md §4.4.
package atmosphere

import "math"

// DeltaTModel selects how the sea-level temperature bias is applied.
type DeltaTModel int

const (
	// DeltaTNone applies no bias.
	DeltaTNone DeltaTModel = iota
	// DeltaTTapered applies a sea-level delta-T that linearly tapers to
	// zero at 36,089 ft (the tropopause), per spec.md §4.4.
	DeltaTTapered
	// DeltaTConstant applies a fixed delta-T at every altitude.
	DeltaTConstant
)

// Conditions is the full set of atmospheric properties at one altitude.
type Conditions struct {
	TemperatureR   float64
	PressurePsf    float64
	DensitySlugFt3 float64
	SoundSpeedFps  float64
}

// Model holds the atmosphere's tunable state: the temperature bias and the
// externally-set wind vector (spec.md §4.4: "Wind is a NED vector set
// externally").
type Model struct {
	DeltaTModel DeltaTModel
	DeltaTR     float64 // bias magnitude, R

	WindNEDFps Vector3

	turbulence Turbulence
}

// Vector3 is a plain NED triple. Atmosphere is a dependency leaf per
// spec.md §2's evaluation order, so it carries its own minimal vector
// rather than importing geodesy's full frame-transform surface.
type Vector3 struct{ North, East, Down float64 }

func NewModel() *Model {
	return &Model{DeltaTModel: DeltaTTapered}
}

// At computes the standard-atmosphere conditions at the given geopotential
// altitude in feet, applying the configured temperature bias.
func (m *Model) At(altitudeFt float64) Conditions {
	altitudeFt = clampAltitude(altitudeFt)
	idx, _ := segmentFor(altitudeFt)

	baseT := SeaLevelTemperatureR
	baseP := SeaLevelPressurePsf

	for i := 0; i < idx; i++ {
		seg := segments[i]
		next := segments[i+1]
		span := next.baseAltitudeFt - seg.baseAltitudeFt
		baseT, baseP = stepSegment(baseT, baseP, seg.lapseRateRPerFt, span)
	}

	seg := segments[idx]
	dh := altitudeFt - seg.baseAltitudeFt
	t, p := stepSegment(baseT, baseP, seg.lapseRateRPerFt, dh)

	t += m.deltaT(altitudeFt)
	if t <= 0 {
		t = 1e-6
	}

	rho := p / (SpecificGasConstant * t)
	a := math.Sqrt(SpecificHeatRatio * SpecificGasConstant * t)

	return Conditions{TemperatureR: t, PressurePsf: p, DensitySlugFt3: rho, SoundSpeedFps: a}
}

func clampAltitude(h float64) float64 {
	if h < 0 {
		return 0
	}
	if h > topOfAtmosphereFt {
		return topOfAtmosphereFt
	}
	return h
}

// stepSegment advances (T, P) across a span of a single segment: an
// isothermal segment integrates pressure exponentially; a lapse segment
// follows the power law (spec.md §4.4).
func stepSegment(baseT, baseP, lapse, span float64) (t, p float64) {
	if lapse == 0 {
		t = baseT
		p = baseP * math.Exp(-StandardGravityFtS2*span/(SpecificGasConstant*baseT))
		return
	}
	t = baseT + lapse*span
	p = baseP * math.Pow(t/baseT, -StandardGravityFtS2/(SpecificGasConstant*lapse))
	return
}

func (m *Model) deltaT(altitudeFt float64) float64 {
	switch m.DeltaTModel {
	case DeltaTConstant:
		return m.DeltaTR
	case DeltaTTapered:
		const tropopause = 36089.24
		if altitudeFt >= tropopause {
			return 0
		}
		return m.DeltaTR * (1 - altitudeFt/tropopause)
	default:
		return 0
	}
}

// SetWind sets the externally-driven NED wind vector.
func (m *Model) SetWind(v Vector3) { m.WindNEDFps = v }

// Wind returns the current NED wind vector.
func (m *Model) Wind() Vector3 { return m.WindNEDFps }

// SetTurbulence installs the turbulence generator used by Step.
func (m *Model) SetTurbulence(t Turbulence) { m.turbulence = t }

// TotalWind returns wind plus the current turbulence gust, advancing the
// turbulence state by dt.
func (m *Model) TotalWind(dt, altitudeAGLFt, wingspanFt float64) Vector3 {
	gust := m.turbulence.Step(dt, altitudeAGLFt, wingspanFt)
	return Vector3{
		North: m.WindNEDFps.North + gust.North,
		East:  m.WindNEDFps.East + gust.East,
		Down:  m.WindNEDFps.Down + gust.Down,
	}
}
