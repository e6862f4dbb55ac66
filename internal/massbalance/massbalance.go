// Package massbalance implements the Mass Balance module (spec.md §4.5):
// total mass, CG, and the inertia tensor (and its inverse) recomputed each
// tick from the empty-mass baseline, point masses, and fuel tank moments.
package massbalance

import (
	"fmt"

	"gonum.org/v2/gonum/mat"

	"camsim/internal/geodesy"
)

// PointMass is a fixed or ballast mass at a body-frame location relative
// to the structural reference, e.g. cargo or crew (spec.md §4.5).
type PointMass struct {
	Name     string
	MassSlug float64
	Location geodesy.Vector3 // body frame, relative to the structural datum
}

// TankMoment is the (mass, location) contribution a fuel tank presents to
// the mass balance this tick; Propulsion (internal/propulsion) computes
// these from its live tank levels.
type TankMoment struct {
	MassSlug float64
	Location geodesy.Vector3
}

// Baseline is the empty-aircraft mass and inertia tensor, loaded once from
// the aircraft configuration and never mutated thereafter.
type Baseline struct {
	EmptyMassSlug float64
	EmptyCG       geodesy.Vector3 // body frame
	// Inertia about the empty-mass CG, slug*ft^2: Ixx, Iyy, Izz, Ixy, Ixz, Iyz.
	Ixx, Iyy, Izz, Ixy, Ixz, Iyz float64
}

// Model is the Mass Balance component. It is recomputed from scratch each
// tick (spec.md §4.5) from inputs handed in by the Executive; it holds no
// state beyond the immutable Baseline and the last computed result, which
// callers read via Mass/CG/Inertia/InertiaInverse.
type Model struct {
	baseline Baseline

	totalMass float64
	cg        geodesy.Vector3
	inertia   *mat.SymDense
	invInertia *mat.Dense
}

func New(baseline Baseline) *Model {
	return &Model{baseline: baseline}
}

// Update recomputes mass, CG, and inertia from the current point masses
// and fuel tank moments (spec.md §4.5's CG and parallel-axis formulas).
// It returns an error if the resulting inertia tensor cannot be inverted.
func (m *Model) Update(points []PointMass, tanks []TankMoment) error {
	total := m.baseline.EmptyMassSlug
	moment := m.baseline.EmptyCG.Scale(m.baseline.EmptyMassSlug)

	for _, t := range tanks {
		total += t.MassSlug
		moment = moment.Add(t.Location.Scale(t.MassSlug))
	}
	for _, p := range points {
		total += p.MassSlug
		moment = moment.Add(p.Location.Scale(p.MassSlug))
	}

	if total <= 0 {
		return fmt.Errorf("massbalance: non-positive total mass %g", total)
	}
	cg := moment.Scale(1 / total)

	inertia := mat.NewSymDense(3, nil)
	base := m.baselineInertiaAt(cg)
	inertia.SetSym(0, 0, base.M11)
	inertia.SetSym(1, 1, base.M22)
	inertia.SetSym(2, 2, base.M33)
	inertia.SetSym(0, 1, base.M12)
	inertia.SetSym(0, 2, base.M13)
	inertia.SetSym(1, 2, base.M23)

	for _, t := range tanks {
		addPointInertia(inertia, t.MassSlug, t.Location.Sub(cg))
	}
	for _, p := range points {
		addPointInertia(inertia, p.MassSlug, p.Location.Sub(cg))
	}

	var inv mat.Dense
	if err := inv.Inverse(inertia); err != nil {
		return fmt.Errorf("massbalance: inertia tensor is singular: %w", err)
	}

	m.totalMass = total
	m.cg = cg
	m.inertia = inertia
	m.invInertia = &inv
	return nil
}

// baselineInertiaAt translates the loaded baseline inertia (about
// EmptyCG) to the given CG via the parallel axis theorem, treating the
// baseline as if it were a single point mass at EmptyCG for the
// translation term (spec.md §4.5).
func (m *Model) baselineInertiaAt(cg geodesy.Vector3) geodesy.Matrix3 {
	base := geodesy.Matrix3{
		M11: m.baseline.Ixx, M12: -m.baseline.Ixy, M13: -m.baseline.Ixz,
		M21: -m.baseline.Ixy, M22: m.baseline.Iyy, M23: -m.baseline.Iyz,
		M31: -m.baseline.Ixz, M32: -m.baseline.Iyz, M33: m.baseline.Izz,
	}
	d := m.baseline.EmptyCG.Sub(cg)
	return addParallelAxis(base, m.baseline.EmptyMassSlug, d)
}

// addParallelAxis adds m*(|d|^2*I - d*d^T) to tensor, the parallel-axis
// correction for a point mass m displaced by d from the reference CG.
func addParallelAxis(tensor geodesy.Matrix3, mass float64, d geodesy.Vector3) geodesy.Matrix3 {
	dd := d.Dot(d)
	return geodesy.Matrix3{
		M11: tensor.M11 + mass*(dd-d.X*d.X),
		M22: tensor.M22 + mass*(dd-d.Y*d.Y),
		M33: tensor.M33 + mass*(dd-d.Z*d.Z),
		M12: tensor.M12 - mass*d.X*d.Y,
		M13: tensor.M13 - mass*d.X*d.Z,
		M23: tensor.M23 - mass*d.Y*d.Z,
		M21: tensor.M12 - mass*d.X*d.Y,
		M31: tensor.M13 - mass*d.X*d.Z,
		M32: tensor.M23 - mass*d.Y*d.Z,
	}
}

func addPointInertia(sym *mat.SymDense, mass float64, d geodesy.Vector3) {
	dd := d.Dot(d)
	sym.SetSym(0, 0, sym.At(0, 0)+mass*(dd-d.X*d.X))
	sym.SetSym(1, 1, sym.At(1, 1)+mass*(dd-d.Y*d.Y))
	sym.SetSym(2, 2, sym.At(2, 2)+mass*(dd-d.Z*d.Z))
	sym.SetSym(0, 1, sym.At(0, 1)-mass*d.X*d.Y)
	sym.SetSym(0, 2, sym.At(0, 2)-mass*d.X*d.Z)
	sym.SetSym(1, 2, sym.At(1, 2)-mass*d.Y*d.Z)
}

func (m *Model) TotalMass() float64      { return m.totalMass }
func (m *Model) CG() geodesy.Vector3     { return m.cg }
func (m *Model) Inertia() *mat.SymDense  { return m.inertia }
func (m *Model) InertiaInverse() *mat.Dense { return m.invInertia }

// InertiaMatrix3 returns the inertia tensor as a geodesy.Matrix3, for
// modules (Accelerations) that work in the lighter Vector3/Matrix3 algebra
// rather than gonum.
func (m *Model) InertiaMatrix3() geodesy.Matrix3 {
	return geodesy.Matrix3{
		M11: m.inertia.At(0, 0), M12: m.inertia.At(0, 1), M13: m.inertia.At(0, 2),
		M21: m.inertia.At(1, 0), M22: m.inertia.At(1, 1), M23: m.inertia.At(1, 2),
		M31: m.inertia.At(2, 0), M32: m.inertia.At(2, 1), M33: m.inertia.At(2, 2),
	}
}

func (m *Model) InertiaInverseMatrix3() geodesy.Matrix3 {
	inv := m.invInertia
	return geodesy.Matrix3{
		M11: inv.At(0, 0), M12: inv.At(0, 1), M13: inv.At(0, 2),
		M21: inv.At(1, 0), M22: inv.At(1, 1), M23: inv.At(1, 2),
		M31: inv.At(2, 0), M32: inv.At(2, 1), M33: inv.At(2, 2),
	}
}

// IsSymmetricPositiveDefinite checks the §8 invariant: J symmetric within
// tol*max(J_ii), and positive-definite (all Cholesky pivots > 0).
func (m *Model) IsSymmetricPositiveDefinite(tol float64) bool {
	maxDiag := 0.0
	for i := 0; i < 3; i++ {
		if d := m.inertia.At(i, i); d > maxDiag {
			maxDiag = d
		}
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if diff := m.inertia.At(i, j) - m.inertia.At(j, i); abs(diff) > tol*maxDiag {
				return false
			}
		}
	}
	var chol mat.Cholesky
	return chol.Factorize(m.inertia)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
