// Package aerodynamics implements the Aerodynamics module (spec.md §4.6):
// six axis buckets of scalar coefficient functions summed into a
// body-frame force and moment each tick.
package aerodynamics

import (
	"math"

	"camsim/internal/geodesy"
)

// Axis indexes the six coefficient buckets. DRAG/SIDE/LIFT are
// stability-axis forces; ROLL/PITCH/YAW are body-axis moments
// (spec.md §4.6).
type Axis int

const (
	Drag Axis = iota
	Side
	Lift
	Roll
	Pitch
	Yaw
	numAxes
)

// Inputs is the read-only per-tick state every coefficient function may
// reference. Shared carries the values of the shared "function" variables
// computed once at the top of the tick (spec.md §4.6 step 1).
type Inputs struct {
	Alpha, Beta   float64
	Qbar          float64
	Vt            float64
	WingSpanFt    float64
	ChordFt       float64
	AlphaDotRadS  float64
	Shared        map[string]float64
}

// Func is one coefficient (or shared-variable) function. Real aircraft
// data drives this from XML-loaded tables (internal/config is the
// external collaborator for that); camsim's core only needs the
// evaluated-scalar contract.
type Func func(in Inputs) float64

// NamedFunc pairs a Func with the name it publishes into Inputs.Shared
// when used as a shared variable.
type NamedFunc struct {
	Name string
	Fn   Func
}

// Model is the Aerodynamics component.
type Model struct {
	axes   [numAxes][]Func
	shared []NamedFunc

	// StructuralAeroRP is the aerodynamic reference point in the
	// structural frame (inches). Update does not read it: the caller
	// passes the reference point already converted to the body frame.
	StructuralAeroRP geodesy.Vector3

	// Stall hysteresis state (spec.md §4.6).
	AlphaCLMax     float64
	HystMin, HystMax float64
	stalled        bool
}

func New() *Model { return &Model{} }

func (m *Model) AddFunction(axis Axis, f Func) { m.axes[axis] = append(m.axes[axis], f) }
func (m *Model) AddShared(name string, f Func) { m.shared = append(m.shared, NamedFunc{name, f}) }

// Result is everything Aerodynamics produces for Aircraft (C9) to
// aggregate, plus the derived observables of spec.md §4.6.
type Result struct {
	ForceBody  geodesy.Vector3
	MomentBody geodesy.Vector3

	CLSquared      float64
	LiftToDrag     float64
	ImpendingStall float64
	Stalled        bool
	BiOver2V       float64
	CiOver2V       float64
}

// Update runs the full per-tick contract of spec.md §4.6.
func (m *Model) Update(in Inputs, cgBody, aeroRPStructuralAsBody geodesy.Vector3) Result {
	if in.Shared == nil {
		in.Shared = make(map[string]float64, len(m.shared))
	}
	for _, s := range m.shared {
		in.Shared[s.Name] = s.Fn(in)
	}

	drag := sumAxis(m.axes[Drag], in)
	side := sumAxis(m.axes[Side], in)
	lift := sumAxis(m.axes[Lift], in)

	// wind-axes convention: forward positive, right positive, down positive
	vFsWind := geodesy.Vector3{X: -drag, Y: side, Z: -lift}

	ts2b := stabilityToBody(in.Alpha, in.Beta)
	forceBody := ts2b.MulVec(vFsWind)

	r := cgBody.Sub(aeroRPStructuralAsBody)
	moment := r.Cross(forceBody)
	moment.X += sumAxis(m.axes[Roll], in)
	moment.Y += sumAxis(m.axes[Pitch], in)
	moment.Z += sumAxis(m.axes[Yaw], in)

	res := Result{ForceBody: forceBody, MomentBody: moment}
	res.CLSquared = liftCoefficientSquared(lift, in.Qbar)
	if drag != 0 {
		res.LiftToDrag = lift / drag
	}
	res.ImpendingStall, res.Stalled = m.stallSignal(in.Alpha)
	if in.Vt > 0 {
		res.BiOver2V = in.WingSpanFt / (2 * in.Vt)
		res.CiOver2V = in.ChordFt / (2 * in.Vt)
	}
	return res
}

func sumAxis(fns []Func, in Inputs) float64 {
	total := 0.0
	for _, f := range fns {
		total += f(in)
	}
	return total
}

// stabilityToBody builds Ts2b from alpha and beta (spec.md §4.6 step 4).
func stabilityToBody(alpha, beta float64) geodesy.Matrix3 {
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	cb, sb := math.Cos(beta), math.Sin(beta)
	return geodesy.Matrix3{
		M11: ca * cb, M12: -ca * sb, M13: -sa,
		M21: sb, M22: cb, M23: 0,
		M31: sa * cb, M32: -sa * sb, M33: ca,
	}
}

func liftCoefficientSquared(lift, qbar float64) float64 {
	if qbar == 0 {
		return 0
	}
	cl := lift / qbar
	return cl * cl
}

// stallSignal computes the impending-stall signal and updates the
// hysteresis latch (spec.md §4.6): signal = 10*(alpha/alphaCLMax - 0.85)
// when alpha > 0.85*alphaCLMax, else 0; a separate hysteresis band
// toggles a boolean "stalled" flag on crossing (HystMin, HystMax).
func (m *Model) stallSignal(alpha float64) (signal float64, stalled bool) {
	if m.AlphaCLMax > 0 && alpha > 0.85*m.AlphaCLMax {
		signal = 10 * (alpha/m.AlphaCLMax - 0.85)
	}
	switch {
	case alpha >= m.HystMax && m.HystMax > 0:
		m.stalled = true
	case alpha <= m.HystMin:
		m.stalled = false
	}
	return signal, m.stalled
}
