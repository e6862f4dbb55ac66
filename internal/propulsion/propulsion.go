package propulsion

import "camsim/internal/geodesy"

// EnginePipeline is one engine, its thruster, and its body-frame
// placement — the per-engine unit Propulsion iterates each tick.
type EnginePipeline struct {
	Engine    Engine
	Thruster  Thruster
	Placement Placement
	Starved   bool
}

// Model is the Propulsion component (spec.md §4.7): it owns the engine
// pipelines and the FuelSystem, and sums every engine's body-frame force
// and moment each tick.
type Model struct {
	Engines []*EnginePipeline
	Fuel    *FuelSystem
}

func New(fuel *FuelSystem) *Model {
	return &Model{Fuel: fuel}
}

func (m *Model) AddEngine(e *EnginePipeline) int {
	m.Engines = append(m.Engines, e)
	return len(m.Engines) - 1
}

// Result is what Propulsion hands to Aircraft (C9) for aggregation.
type Result struct {
	ForceBody  geodesy.Vector3
	MomentBody geodesy.Vector3
	AnyStarved bool
}

// Update runs every engine's Calculate, resolves its thruster, consumes
// fuel, and sums the body-frame force/moment (spec.md §4.7).
func (m *Model) Update(dt float64, baseConditions Conditions, throttleCmds []float64) Result {
	var res Result

	for i, pipe := range m.Engines {
		c := baseConditions
		if i < len(throttleCmds) {
			c.ThrottleCmd = throttleCmds[i]
		}
		c.Starved = pipe.Starved

		out := pipe.Engine.Calculate(dt, c)

		if m.Fuel != nil && out.FuelDemandLbSec > 0 {
			demandLb := out.FuelDemandLbSec * dt
			pipe.Starved = m.Fuel.Consume(i, demandLb)
		} else {
			pipe.Starved = false
		}
		if pipe.Starved {
			res.AnyStarved = true
		}

		force, moment := pipe.Thruster.Resolve(out, pipe.Placement)
		res.ForceBody = res.ForceBody.Add(force)
		res.MomentBody = res.MomentBody.Add(moment)
	}

	return res
}
