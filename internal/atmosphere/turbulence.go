package atmosphere

import "math"

// TurbulenceVariant selects between the two Ornstein-Uhlenbeck-like
// turbulence models of spec.md §4.4.
type TurbulenceVariant int

const (
	TurbulenceNone TurbulenceVariant = iota
	TurbulenceStandard
	TurbulenceBerndt
)

// Turbulence is a direction-random-walk-on-a-cube plus a magnitude
// random-walk within [-1,1], producing per-axis rotational disturbances
// scaled by wingspan/tail arm, per spec.md §4.4. rng is seeded from
// NewTurbulence's seed argument so tests and scripted runs are
// reproducible.
type Turbulence struct {
	Variant TurbulenceVariant
	Rate    float64 // severity knob, ft/s
	rng     *rand64

	direction Vector3
	magnitude float64
}

// rand64 is a tiny linear-congruential generator, not math/rand, so the
// turbulence sequence is reproducible across platforms without pulling in
// the full math/rand/v2 API surface for three scalar walks.
type rand64 struct{ state uint64 }

func newRand64(seed uint64) *rand64 {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &rand64{state: seed}
}

func (r *rand64) next() float64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	// map the top bits to [-1, 1)
	return float64(int64(r.state>>11))/float64(1<<52) - 1
}

func NewTurbulence(variant TurbulenceVariant, rateFps float64, seed uint64) *Turbulence {
	return &Turbulence{
		Variant:   variant,
		Rate:      rateFps,
		rng:       newRand64(seed),
		direction: Vector3{North: 1},
		magnitude: 0,
	}
}

// Step advances the turbulence state by dt and returns the current gust
// velocity in NED feet/second, decayed within three wingspans of the
// ground per spec.md §4.4.
func (tb *Turbulence) Step(dt, altitudeAGLFt, wingspanFt float64) Vector3 {
	if tb.Variant == TurbulenceNone || tb.Rate == 0 {
		return Vector3{}
	}

	// direction random-walks on the unit cube, then is renormalized
	walkScale := 0.2 * dt
	tb.direction.North += tb.rng.next() * walkScale
	tb.direction.East += tb.rng.next() * walkScale
	tb.direction.Down += tb.rng.next() * walkScale
	tb.direction = normalizeVec(tb.direction)

	// magnitude random-walks within [-1, 1]
	tb.magnitude += tb.rng.next() * walkScale
	if tb.magnitude > 1 {
		tb.magnitude = 1
	} else if tb.magnitude < -1 {
		tb.magnitude = -1
	}

	gain := 1.0
	if tb.Variant == TurbulenceBerndt {
		// Berndt scales the magnitude nonlinearly, producing sharper gusts.
		gain = tb.magnitude * tb.magnitude
		if tb.magnitude < 0 {
			gain = -gain
		}
	} else {
		gain = tb.magnitude
	}

	decay := groundDecay(altitudeAGLFt, wingspanFt)
	scale := tb.Rate * gain * decay
	return Vector3{
		North: tb.direction.North * scale,
		East:  tb.direction.East * scale,
		Down:  tb.direction.Down * scale,
	}
}

// RotationalGust returns the per-axis rotational disturbance induced by a
// spatial gradient of the gust field, scaled by wingspan (roll/yaw) or
// tail arm (pitch), per spec.md §4.4.
func (tb *Turbulence) RotationalGust(gust Vector3, wingspanFt, tailArmFt float64) Vector3 {
	if wingspanFt <= 0 {
		wingspanFt = 1
	}
	if tailArmFt <= 0 {
		tailArmFt = 1
	}
	return Vector3{
		North: gust.Down / wingspanFt,  // roll-ish disturbance
		East:  gust.Down / tailArmFt,   // pitch-ish disturbance
		Down:  gust.North / wingspanFt, // yaw-ish disturbance
	}
}

// groundDecay tapers turbulence amplitude to zero within three wingspans
// of the ground (spec.md §4.4).
func groundDecay(altitudeAGLFt, wingspanFt float64) float64 {
	if wingspanFt <= 0 {
		return 1
	}
	threshold := 3 * wingspanFt
	if altitudeAGLFt >= threshold {
		return 1
	}
	if altitudeAGLFt <= 0 {
		return 0
	}
	return altitudeAGLFt / threshold
}

func normalizeVec(v Vector3) Vector3 {
	mag := math.Sqrt(v.North*v.North + v.East*v.East + v.Down*v.Down)
	if mag == 0 {
		return Vector3{North: 1}
	}
	return Vector3{North: v.North / mag, East: v.East / mag, Down: v.Down / mag}
}
