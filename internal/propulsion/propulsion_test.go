package propulsion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"camsim/internal/geodesy"
)

func TestPistonEngineStartsAndConsumesFuel(t *testing.T) {
	fuel := NewFuelSystem()
	tankIdx := fuel.AddTank(&FuelTank{Name: "main", CapacityLb: 100, ContentsLb: 100})
	fuel.SetFeed(0, tankIdx)

	m := New(fuel)
	m.AddEngine(&EnginePipeline{
		Engine:    &PistonEngine{IdleRPM: 800, MaxRPM: 2700, IdleMAP: 15, MaxMAP: 29, MaxPowerHP: 200},
		Thruster:  PropellerThrusterModel{DiameterFt: 6, Efficiency: 0.8},
		Placement: Placement{ThrustAxis: geodesy.Vector3{X: 1}},
	})

	res := m.Update(1.0, Conditions{DensitySlugFt3: 0.00237767}, []float64{1.0})
	assert.False(t, res.AnyStarved)
	assert.Less(t, fuel.TotalContentsLb(), 100.0)
}

func TestFuelStarvationSetsFlag(t *testing.T) {
	fuel := NewFuelSystem()
	tankIdx := fuel.AddTank(&FuelTank{Name: "main", CapacityLb: 100, ContentsLb: 0.001})
	fuel.SetFeed(0, tankIdx)

	m := New(fuel)
	m.AddEngine(&EnginePipeline{
		Engine:    &RocketEngine{MaxThrustLbf: 1000, MassFlowLbSec: 5},
		Thruster:  DirectThruster{},
		Placement: Placement{ThrustAxis: geodesy.Vector3{X: 1}},
	})

	res := m.Update(1.0, Conditions{}, []float64{1.0})
	assert.True(t, res.AnyStarved)
	assert.Equal(t, 0.0, fuel.TotalContentsLb())
}

func TestDirectThrusterForwardForce(t *testing.T) {
	th := DirectThruster{}
	f, _ := th.Resolve(Output{ThrustLbf: 500}, Placement{ThrustAxis: geodesy.Vector3{X: 1}})
	assert.InDelta(t, 500, f.X, 1e-9)
}

func TestFuelConsumeSpreadsAcrossTanks(t *testing.T) {
	fuel := NewFuelSystem()
	a := fuel.AddTank(&FuelTank{Name: "left", ContentsLb: 50})
	b := fuel.AddTank(&FuelTank{Name: "right", ContentsLb: 50})
	fuel.SetFeed(0, a, b)

	starved := fuel.Consume(0, 10)
	assert.False(t, starved)
	assert.InDelta(t, 45, fuel.Tanks[a].ContentsLb, 1e-9)
	assert.InDelta(t, 45, fuel.Tanks[b].ContentsLb, 1e-9)
}
