package auxiliary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
)

func TestAlphaBetaStraightAndLevel(t *testing.T) {
	m := New()
	in := Inputs{
		VelocityBody:    geodesy.Vector3{X: 150},
		Tl2b:            geodesy.Identity3,
		DensitySlugFt3:  0.00237767,
		SpeedOfSoundFtS: 1116.45,
		DtSec:           0.01,
	}
	res := m.Update(in)
	assert.InDelta(t, 0, res.Alpha, 1e-9)
	assert.InDelta(t, 0, res.Beta, 1e-9)
	assert.InDelta(t, 150, res.Vtotal, 1e-9)
}

func TestAlphaDotFiniteDifference(t *testing.T) {
	m := New()
	in1 := Inputs{VelocityBody: geodesy.Vector3{X: 150, Z: 0}, Tl2b: geodesy.Identity3, DtSec: 0.1}
	m.Update(in1)
	in2 := Inputs{VelocityBody: geodesy.Vector3{X: 150, Z: 15}, Tl2b: geodesy.Identity3, DtSec: 0.1}
	res := m.Update(in2)
	assert.Greater(t, res.AlphaDot, 0.0)
}

func TestPilotSensedAccelFallsBackToGravityAtLowSpeed(t *testing.T) {
	m := New()
	in := Inputs{
		VelocityBody: geodesy.Vector3{X: 0.1},
		Tl2b:         geodesy.Identity3,
		GravityBody:  geodesy.Vector3{Z: 32.174},
		ForceBody:    geodesy.Vector3{X: 10000},
		MassSlug:     100,
	}
	res := m.Update(in)
	assert.Equal(t, geodesy.Vector3{Z: 32.174}, res.PilotSensedAccel)
}

func TestMachIsTrueAirspeedOverSpeedOfSound(t *testing.T) {
	m := New()
	res := m.Update(Inputs{
		VelocityBody:    geodesy.Vector3{X: 1000},
		Tl2b:            geodesy.Identity3,
		SpeedOfSoundFtS: 1000,
	})
	assert.InDelta(t, 1.0, res.Mach, 1e-9)
}

func TestCalibratedAirspeedMatchesTrueAtSeaLevelLowSpeed(t *testing.T) {
	cas := calibratedAirspeed(0.2, SeaLevelPressurePsf)
	trueSpeed := 0.2 * SeaLevelSpeedOfSoundFS
	assert.InDelta(t, trueSpeed, cas, trueSpeed*0.05)
}

func TestSolarJulianDateMatchesKnownEpoch(t *testing.T) {
	epoch := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	res := Solar(epoch, 0, 0)
	assert.InDelta(t, 2451545.0, res.JulianDate, 1e-6)
}

func TestGroundTrackMatchesVelocityHeading(t *testing.T) {
	m := New()
	res := m.Update(Inputs{
		VelocityBody: geodesy.Vector3{X: 100},
		Tl2b:         geodesy.Identity3,
		VelocityNED:  geodesy.Vector3{X: 0, Y: 100},
	})
	assert.InDelta(t, 1.5707963, res.GroundTrackRad, 1e-6)
}
