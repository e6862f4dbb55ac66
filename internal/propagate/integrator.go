// Package propagate implements the Propagate module (spec.md §4.11):
// VehicleState, the four independently selectable integrator slots, and
// the per-tick frame-transform rebuild sequence.
package propagate

import "camsim/internal/geodesy"

// IntegratorKind selects the scheme for one of the four slots
// (rotational_rate, translational_rate, rotational_position,
// translational_position). Buss1/Buss2/LocalLinearization are only
// meaningful on a rotational_position (quaternion) slot; assigning one
// to a vector slot is the caller's error, not something this package
// guards against, same as JSBSim's property-gated scheme selection.
type IntegratorKind int

const (
	None IntegratorKind = iota
	RectangularEuler
	Trapezoidal
	AdamsBashforth2
	AdamsBashforth3
	AdamsBashforth4
	AdamsBashforth5
	Buss1
	Buss2
	LocalLinearization
)

// abCoefficients are the explicit Adams-Bashforth weights applied to
// (f_n, f_n-1, ...), newest first, summing to 1 so they double as an
// average-rate blend for the quaternion schemes below.
var abCoefficients = map[IntegratorKind][]float64{
	AdamsBashforth2: {3.0 / 2, -1.0 / 2},
	AdamsBashforth3: {23.0 / 12, -16.0 / 12, 5.0 / 12},
	AdamsBashforth4: {55.0 / 24, -59.0 / 24, 37.0 / 24, -9.0 / 24},
	AdamsBashforth5: {1901.0 / 720, -2774.0 / 720, 2616.0 / 720, -1274.0 / 720, 251.0 / 720},
}

// derivativeHistory is the 5-deep ring buffer Adams-Bashforth needs
// (spec.md §4.11): "previous derivative history in a 5-deep deque; on
// initialization fill the deque with the initial derivative."
type derivativeHistory struct {
	buf         [5]geodesy.Vector3
	initialized bool
}

func (h *derivativeHistory) push(d geodesy.Vector3) {
	if !h.initialized {
		for i := range h.buf {
			h.buf[i] = d
		}
		h.initialized = true
		return
	}
	copy(h.buf[1:], h.buf[:4])
	h.buf[0] = d
}

// blend returns the weighted combination of the history the rate/scheme
// calls for: the current derivative alone for Euler, the current and
// previous average for Trapezoidal, or the Adams-Bashforth weights.
func (h *derivativeHistory) blend(kind IntegratorKind) geodesy.Vector3 {
	switch kind {
	case RectangularEuler:
		return h.buf[0]
	case Trapezoidal:
		return h.buf[0].Add(h.buf[1]).Scale(0.5)
	default:
		coeffs, ok := abCoefficients[kind]
		if !ok {
			return h.buf[0]
		}
		var sum geodesy.Vector3
		for i, c := range coeffs {
			sum = sum.Add(h.buf[i].Scale(c))
		}
		return sum
	}
}

// VectorIntegrator drives one rate or translational-position slot
// (spec.md §4.11: rotational_rate, translational_rate,
// translational_position all integrate a Vector3 the same way).
type VectorIntegrator struct {
	Kind    IntegratorKind
	history derivativeHistory
}

// Step advances value by one tick given its current derivative.
func (vi *VectorIntegrator) Step(value, derivative geodesy.Vector3, dt float64) geodesy.Vector3 {
	if vi.Kind == None {
		return value
	}
	vi.history.push(derivative)
	blended := vi.history.blend(vi.Kind)
	return value.Add(blended.Scale(dt))
}

// QuaternionIntegrator drives the rotational_position slot. Euler,
// Trapezoidal and Adams-Bashforth blend the angular-rate history the
// same way VectorIntegrator does, then apply a single QExp half-step —
// the group-valued generalization of "value += derivative*dt". Buss-1,
// Buss-2 and Local-Linearization are the quaternion-specific schemes of
// spec.md §4.11.
type QuaternionIntegrator struct {
	Kind    IntegratorKind
	history derivativeHistory
}

// Step advances q given the current body angular rate omega and, for
// Buss-2/LL, the current angular acceleration omegaDot.
func (qi *QuaternionIntegrator) Step(q geodesy.Quaternion, omega, omegaDot geodesy.Vector3, dt float64) geodesy.Quaternion {
	switch qi.Kind {
	case None:
		return q
	case Buss1:
		// exact on constant omega: q <- q . QExp(dt/2 * omega).
		return q.Multiply(geodesy.QExp(omega.Scale(dt / 2)))
	case Buss2:
		correction := omegaDot.Cross(omega).Scale(dt * dt / 12)
		omegaStar := omega.Add(omegaDot.Scale(dt / 2)).Add(correction)
		return q.Multiply(geodesy.QExp(omegaStar.Scale(dt / 2)))
	case LocalLinearization:
		omegaAvg := omega.Add(omegaDot.Scale(dt / 2))
		return q.Multiply(geodesy.QExp(omegaAvg.Scale(dt / 2))).Normalize()
	default:
		qi.history.push(omega)
		blended := qi.history.blend(qi.Kind)
		return q.Multiply(geodesy.QExp(blended.Scale(dt / 2))).Normalize()
	}
}
