package accelerations

import (
	"camsim/internal/geodesy"

	"gonum.org/v2/gonum/mat"
)

const (
	maxFrictionIterations = 50
	frictionConvergence   = 1e-5
)

// solveFriction resolves the per-contact Lagrange multipliers via
// projected Gauss-Seidel (spec.md §4.10): each contact's lambda is
// clamped to [LambdaMin, LambdaMax] every sweep, and the loop exits
// early once the summed |delta-lambda| drops below the convergence
// threshold. aBody/omegaDot are the accelerations computed without any
// friction contribution; the driving-to-zero term folds the current
// relative velocity at the contact into the right-hand side so a single
// solve also kills residual sliding over one timestep.
func solveFriction(in Inputs, aBody, omegaDot geodesy.Vector3) (geodesy.Vector3, geodesy.Vector3, int) {
	n := len(in.Contacts)
	invMass := 1 / in.MassSlug

	a := mat.NewDense(n, n, nil)
	rhs := make([]float64, n)
	lambda := make([]float64, n)
	lo := make([]float64, n)
	hi := make([]float64, n)

	effArms := make([]geodesy.Vector3, n)
	for i, c := range in.Contacts {
		effArms[i] = in.InertiaInv.MulVec(c.LeverArm.Cross(c.U))
	}

	dt := in.DtSec
	if dt <= 0 {
		dt = 1.0 / 120.0
	}

	for i, c := range in.Contacts {
		lo[i] = c.LambdaMin
		hi[i] = c.LambdaMax
		lambda[i] = 0

		terrainVel := geodesy.Vector3{}
		if i < len(in.TerrainVelocityBodyByContact) {
			terrainVel = in.TerrainVelocityBodyByContact[i]
		}
		pointVel := in.VelocityBody.Add(in.OmegaBodyInertial.Cross(c.LeverArm))
		biasVel := pointVel.Sub(terrainVel).Scale(1 / dt)

		aPoint := aBody.Add(omegaDot.Cross(c.LeverArm)).Add(biasVel)
		rhs[i] = -c.U.Dot(aPoint)

		for j, cj := range in.Contacts {
			aij := c.U.Dot(cj.U) * invMass
			aij += effArms[i].Dot(cj.LeverArm.Cross(cj.U))
			a.Set(i, j, aij)
		}
	}

	iterations := 0
	for iterations = 1; iterations <= maxFrictionIterations; iterations++ {
		delta := 0.0
		for i := 0; i < n; i++ {
			aii := a.At(i, i)
			if aii <= 1e-12 {
				continue
			}
			sum := rhs[i]
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				sum -= a.At(i, j) * lambda[j]
			}
			next := sum / aii
			if next < lo[i] {
				next = lo[i]
			} else if next > hi[i] {
				next = hi[i]
			}
			delta += abs(next - lambda[i])
			lambda[i] = next
		}
		if delta < frictionConvergence {
			break
		}
	}

	var forceBody, momentBody geodesy.Vector3
	for i, c := range in.Contacts {
		f := c.U.Scale(lambda[i])
		forceBody = forceBody.Add(f)
		momentBody = momentBody.Add(c.LeverArm.Cross(f))
	}
	return forceBody, momentBody, iterations
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
