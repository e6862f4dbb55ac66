package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zerodha/logf"

	"camsim/internal/propbus"
)

func newTestExecutive() *Executive {
	return New(propbus.New(), 1.0/120, logf.New(logf.Opts{}))
}

func TestStepRunsModulesInRegistrationOrder(t *testing.T) {
	e := newTestExecutive()
	var order []string
	e.Register(&Module{Name: "a", Update: func(dt float64) error { order = append(order, "a"); return nil }})
	e.Register(&Module{Name: "b", Update: func(dt float64) error { order = append(order, "b"); return nil }})

	assert.NoError(t, e.Step())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestStepHonorsRateDivisor(t *testing.T) {
	e := newTestExecutive()
	count := 0
	e.Register(&Module{Name: "slow", RateDivisor: 4, Update: func(dt float64) error { count++; return nil }})

	for i := 0; i < 8; i++ {
		assert.NoError(t, e.Step())
	}
	assert.Equal(t, 2, count)
}

func TestModuleErrorEngagesHolding(t *testing.T) {
	e := newTestExecutive()
	e.Register(&Module{Name: "bad", Update: func(dt float64) error { return errors.New("nan in integrator") }})

	err := e.Step()
	assert.Error(t, err)
	assert.Equal(t, Holding, e.State())
}

func TestHoldingSkipsAllModules(t *testing.T) {
	e := newTestExecutive()
	ran := false
	e.Register(&Module{Name: "m", Update: func(dt float64) error { ran = true; return nil }})
	e.Hold()
	assert.NoError(t, e.Step())
	assert.False(t, ran)
}

func TestResumeReturnsFromHolding(t *testing.T) {
	e := newTestExecutive()
	e.Hold()
	e.Resume()
	assert.Equal(t, Running, e.State())
}

func TestCheckDivergenceFlagsExcessiveForce(t *testing.T) {
	err := CheckDivergence(2e8, 0, 0, 0)
	assert.Error(t, err)
	assert.Equal(t, 5, ExitCode(err))
}

func TestCheckDivergenceNoErrorWithinBounds(t *testing.T) {
	err := CheckDivergence(1000, 1000, 2, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
}

func TestSimTimeAdvancesByDt(t *testing.T) {
	e := newTestExecutive()
	e.Register(&Module{Name: "noop", Update: func(dt float64) error { return nil }})
	assert.NoError(t, e.Step())
	assert.InDelta(t, 1.0/120, e.SimTimeSec(), 1e-12)
}
