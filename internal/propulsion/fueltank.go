package propulsion

import "camsim/internal/geodesy"

// FuelTank is one fuel tank, owned exclusively by Propulsion (spec.md §3
// ownership rules); engines never hold a pointer to a tank, only an index
// into the Propulsion's tank slice (spec.md §3: "engines hold indices
// (never pointers) into the tank set").
type FuelTank struct {
	Name         string
	Location     geodesy.Vector3 // body frame
	CapacityLb   float64
	ContentsLb   float64
}

// Moment returns this tank's current (mass, location) contribution to
// mass balance, in slugs (spec.md §4.5 consumes this via TankMoment).
func (t *FuelTank) Moment() (massSlug float64, loc geodesy.Vector3) {
	return t.ContentsLb / 32.174, t.Location
}

// FuelSystem owns the tank set and the feed-group assignment (which tanks
// feed which engines) for a Propulsion model.
type FuelSystem struct {
	Tanks []*FuelTank
	// Feeds maps an engine index to the tank indices that feed it.
	Feeds map[int][]int
}

func NewFuelSystem() *FuelSystem {
	return &FuelSystem{Feeds: make(map[int][]int)}
}

func (fs *FuelSystem) AddTank(t *FuelTank) int {
	fs.Tanks = append(fs.Tanks, t)
	return len(fs.Tanks) - 1
}

func (fs *FuelSystem) SetFeed(engineIdx int, tankIdxs ...int) {
	fs.Feeds[engineIdx] = tankIdxs
}

// Consume spreads demandLb evenly across every feed tank for engineIdx
// that still contains fuel; if demand exceeds what is available the
// engine's starved flag is reported via the returned bool (spec.md §4.7,
// §7: fuel underflow clamps to zero rather than erroring).
func (fs *FuelSystem) Consume(engineIdx int, demandLb float64) (starved bool) {
	tankIdxs := fs.Feeds[engineIdx]
	var available []*FuelTank
	for _, idx := range tankIdxs {
		if idx >= 0 && idx < len(fs.Tanks) && fs.Tanks[idx].ContentsLb > 0 {
			available = append(available, fs.Tanks[idx])
		}
	}
	if len(available) == 0 {
		return demandLb > 0
	}

	share := demandLb / float64(len(available))
	var shortfall float64
	for _, tank := range available {
		if share > tank.ContentsLb {
			shortfall += share - tank.ContentsLb
			tank.ContentsLb = 0
		} else {
			tank.ContentsLb -= share
		}
	}
	return shortfall > 1e-12
}

// TotalContentsLb sums every tank's current fuel load.
func (fs *FuelSystem) TotalContentsLb() float64 {
	total := 0.0
	for _, t := range fs.Tanks {
		total += t.ContentsLb
	}
	return total
}
