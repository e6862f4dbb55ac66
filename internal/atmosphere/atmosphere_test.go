package atmosphere

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeaLevelConditions(t *testing.T) {
	m := NewModel()
	c := m.At(0)
	assert.InDelta(t, SeaLevelTemperatureR, c.TemperatureR, SeaLevelTemperatureR*1e-4)
	assert.InDelta(t, SeaLevelPressurePsf, c.PressurePsf, SeaLevelPressurePsf*1e-4)
	assert.InDelta(t, SeaLevelDensitySlugFt3, c.DensitySlugFt3, SeaLevelDensitySlugFt3*1e-4)
}

func TestTropopausePressure(t *testing.T) {
	m := NewModel()
	c := m.At(36089.24)
	assert.InDelta(t, 472.452, c.PressurePsf, 472.452*1e-3)
}

func TestLapseMonotonicTemperatureAndPositiveDensity(t *testing.T) {
	m := NewModel()
	prevT := SeaLevelTemperatureR
	for i := 0; i <= 100; i++ {
		h := float64(i) / 100 * 36089.24
		c := m.At(h)
		assert.LessOrEqual(t, c.TemperatureR, prevT+1e-9)
		assert.Greater(t, c.DensitySlugFt3, 0.0)
		prevT = c.TemperatureR
	}
}

func TestDeltaTTaperedVanishesAtTropopause(t *testing.T) {
	m := NewModel()
	m.DeltaTModel = DeltaTTapered
	m.DeltaTR = 20
	atTropopause := m.At(36089.24)
	baseline := NewModel().At(36089.24)
	assert.InDelta(t, baseline.TemperatureR, atTropopause.TemperatureR, 1e-6)

	atSL := m.At(0)
	assert.InDelta(t, SeaLevelTemperatureR+20, atSL.TemperatureR, 1e-6)
}

func TestTurbulenceDecaysNearGround(t *testing.T) {
	tb := NewTurbulence(TurbulenceStandard, 10, 1)
	m := NewModel()
	m.SetTurbulence(*tb)
	gustHigh := m.TotalWind(0.1, 1000, 36)
	gustLow := m.TotalWind(0.1, 0, 36)
	assert.Equal(t, Vector3{}, gustLow)
	_ = gustHigh
}
