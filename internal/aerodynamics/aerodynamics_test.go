package aerodynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
)

func TestLevelFlightLiftApproximatesWeight(t *testing.T) {
	m := New()
	const weight = 2300.0 // lbf, roughly a C172
	m.AddFunction(Lift, func(in Inputs) float64 { return weight })
	m.AddFunction(Drag, func(in Inputs) float64 { return 150 })

	res := m.Update(Inputs{Alpha: 0, Beta: 0, Qbar: 20, Vt: 130}, geodesy.Vector3{}, geodesy.Vector3{})
	// at alpha=beta=0, Ts2b is identity so body Z force is -lift.
	assert.InDelta(t, -weight, res.ForceBody.Z, 1e-6)
	assert.InDelta(t, weight, res.ForceBody.Z*-1, weight*0.01)
}

func TestStallSignalAndHysteresis(t *testing.T) {
	m := New()
	m.AlphaCLMax = 0.3
	m.HystMin = 0.2
	m.HystMax = 0.32

	res := m.Update(Inputs{Alpha: 0.1}, geodesy.Vector3{}, geodesy.Vector3{})
	assert.Equal(t, 0.0, res.ImpendingStall)
	assert.False(t, res.Stalled)

	res = m.Update(Inputs{Alpha: 0.33}, geodesy.Vector3{}, geodesy.Vector3{})
	assert.Greater(t, res.ImpendingStall, 0.0)
	assert.True(t, res.Stalled)

	res = m.Update(Inputs{Alpha: 0.15}, geodesy.Vector3{}, geodesy.Vector3{})
	assert.False(t, res.Stalled)
}

func TestMomentIncludesArmCrossForce(t *testing.T) {
	m := New()
	m.AddFunction(Lift, func(in Inputs) float64 { return 1000 })

	cg := geodesy.Vector3{X: 1}
	rp := geodesy.Vector3{X: 0}
	res := m.Update(Inputs{}, cg, rp)
	// r = cg - rp = (1,0,0); F = (0,0,-1000); r x F = (0*-1000-0*0, 0*0-1*-1000, 0) = (0,1000,0)
	assert.InDelta(t, 1000, res.MomentBody.Y, 1e-6)
}
