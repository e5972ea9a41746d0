package timestep

import (
	"math"
	"testing"

	"github.com/dgsolve/gomcl/utils"
	"github.com/stretchr/testify/assert"
)

// decayOp is du/dt = -u, exact solution u0*exp(-t).
type decayOp struct{}

func (op *decayOp) Mult(U, RHS []utils.Matrix) {
	for n := range U {
		for i, u := range U[n].DataP {
			RHS[n].DataP[i] = -u
		}
	}
}

func (op *decayOp) MaxStableDT(U []utils.Matrix, cfl float64) float64 { return cfl }

func TestSSPRK3(t *testing.T) {
	{ // Third order convergence on exponential decay
		var prevErr float64
		for _, steps := range []int{20, 40} {
			var (
				op = &decayOp{}
				rk = NewSSPRK3()
				U  = []utils.Matrix{utils.NewMatrix(1, 1, []float64{1})}
				dt = 1.0 / float64(steps)
			)
			for s := 0; s < steps; s++ {
				rk.Step(op, U, dt)
			}
			err := math.Abs(U[0].DataP[0] - math.Exp(-1))
			if prevErr != 0 {
				// halving dt should cut the error by about 8
				assert.True(t, prevErr/err > 6)
			}
			prevErr = err
		}
	}
}

func TestIntegrator(t *testing.T) {
	var (
		op = &decayOp{}
		it = &Integrator{Op: op, CFL: 0.01, FinalTime: 1}
		U  = []utils.Matrix{utils.NewMatrix(1, 1, []float64{1})}
	)
	tFinal, steps := it.Run(U)
	assert.InDeltaf(t, 1, tFinal, 1.e-12, "")
	// rounding in the time accumulation may add one sliver step
	assert.True(t, steps == 100 || steps == 101)
	assert.InDeltaf(t, math.Exp(-1), U[0].DataP[0], 1.e-6, "")
}
