package fcs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/propbus"
)

func busWith(t *testing.T, values map[string]float64) *propbus.Bus {
	bus := propbus.New()
	for name, v := range values {
		v := v
		err := bus.Bind("test", name, func() float64 { return v }, nil)
		assert.NoError(t, err)
	}
	return bus
}

func TestSummerAddsWithSigns(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 3, "b": 5})
	s := NewSummer("sum", []string{"a", "b"}, "out")
	s.Signs = []float64{1, -1}
	got := s.Execute(bus, 0.02)
	assert.InDelta(t, -2.0, got, 1e-9)
}

func TestGainScalesInput(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 4})
	g := NewGain("gain", "a", "out", 2.5)
	assert.InDelta(t, 10.0, g.Execute(bus, 0.02), 1e-9)
}

func TestDeadbandZeroesInsideBand(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 0.02})
	d := NewDeadband("db", "a", "out", 0.05)
	assert.Equal(t, 0.0, d.Execute(bus, 0.02))
}

func TestDeadbandShiftsOutsideBand(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 0.2})
	d := NewDeadband("db", "a", "out", 0.05)
	assert.InDelta(t, 0.15, d.Execute(bus, 0.02), 1e-9)
}

func TestSwitchSelectsTrueBranch(t *testing.T) {
	bus := busWith(t, map[string]float64{"test": 10})
	sw := NewSwitch("sw", "out")
	sw.TestProperty = "test"
	sw.Op = GE
	sw.Threshold = 5
	sw.TrueValue = 1
	sw.FalseValue = 0
	assert.Equal(t, 1.0, sw.Execute(bus, 0.02))
}

func TestFirstOrderFilterConvergesToStepInput(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 1.0})
	f := NewFirstOrderFilter("lag", "a", "out", 0.1)
	var out float64
	for i := 0; i < 500; i++ {
		out = f.Execute(bus, 0.01)
	}
	assert.InDelta(t, 1.0, out, 1e-3)
}

func TestKinematicActuatorRespectsRateLimit(t *testing.T) {
	bus := busWith(t, map[string]float64{"a": 1.0})
	k := NewKinematicActuator("act", "a", "out")
	k.RateLimit = 0.5 // units/sec
	out := k.Execute(bus, 1.0)
	assert.InDelta(t, 0.5, out, 1e-9)
}

func TestPipelineBindsAndUpdatesInLoadOrder(t *testing.T) {
	bus := propbus.New()
	err := bus.Bind("test", "in", func() float64 { return 2.0 }, nil)
	assert.NoError(t, err)

	g := NewGain("gain", "in", "gain.out", 3)
	s := NewSummer("sum", []string{"gain.out"}, "sum.out")

	p := &Pipeline{Components: []Component{g, s}}
	assert.NoError(t, p.Bind(bus))
	p.Update(bus, 0.02)

	v, ok := bus.Get("sum.out")
	assert.True(t, ok)
	assert.InDelta(t, 6.0, v, 1e-9)
}
