package timestep

import (
	"fmt"

	"github.com/dgsolve/gomcl/utils"
)

// Operator is a semi-discrete time derivative with its own stable step
// estimate.
type Operator interface {
	Mult(U, RHS []utils.Matrix)
	MaxStableDT(U []utils.Matrix, cfl float64) float64
}

/*
SSPRK3 advances a state with the three stage, third order strong
stability preserving Runge-Kutta scheme of Shu and Osher. Each stage is
a forward Euler step followed by a convex combination with the step
start, so any bound the underlying operator preserves under forward
Euler survives the full step.
*/
type SSPRK3 struct {
	rhs, u1, u2 []utils.Matrix
}

func NewSSPRK3() *SSPRK3 { return &SSPRK3{} }

func (rk *SSPRK3) resize(U []utils.Matrix) {
	if len(rk.rhs) == len(U) {
		nr, nc := rk.rhs[0].Dims()
		ur, uc := U[0].Dims()
		if nr == ur && nc == uc {
			return
		}
	}
	rk.rhs = make([]utils.Matrix, len(U))
	rk.u1 = make([]utils.Matrix, len(U))
	rk.u2 = make([]utils.Matrix, len(U))
	for n := range U {
		nr, nc := U[n].Dims()
		rk.rhs[n] = utils.NewMatrix(nr, nc)
		rk.u1[n] = utils.NewMatrix(nr, nc)
		rk.u2[n] = utils.NewMatrix(nr, nc)
	}
}

// Step advances U in place by dt.
func (rk *SSPRK3) Step(op Operator, U []utils.Matrix, dt float64) {
	rk.resize(U)
	op.Mult(U, rk.rhs)
	for n := range U {
		var (
			u, r, u1 = U[n].DataP, rk.rhs[n].DataP, rk.u1[n].DataP
		)
		for i := range u {
			u1[i] = u[i] + dt*r[i]
		}
	}
	op.Mult(rk.u1, rk.rhs)
	for n := range U {
		var (
			u, r, u1, u2 = U[n].DataP, rk.rhs[n].DataP, rk.u1[n].DataP, rk.u2[n].DataP
		)
		for i := range u {
			u2[i] = 0.75*u[i] + 0.25*(u1[i]+dt*r[i])
		}
	}
	op.Mult(rk.u2, rk.rhs)
	for n := range U {
		var (
			u, r, u2 = U[n].DataP, rk.rhs[n].DataP, rk.u2[n].DataP
		)
		for i := range u {
			u[i] = u[i]/3 + (2./3.)*(u2[i]+dt*r[i])
		}
	}
}

// Integrator runs an operator to a final time under a CFL constraint.
type Integrator struct {
	Op        Operator
	CFL       float64
	FinalTime float64
	MaxSteps  int
	Verbose   bool
}

func (it *Integrator) Run(U []utils.Matrix) (time float64, steps int) {
	rk := NewSSPRK3()
	maxSteps := it.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1 << 20
	}
	for time < it.FinalTime && steps < maxSteps {
		dt := it.Op.MaxStableDT(U, it.CFL)
		if time+dt > it.FinalTime {
			dt = it.FinalTime - time
		}
		rk.Step(it.Op, U, dt)
		time += dt
		steps++
		if it.Verbose && steps%50 == 0 {
			fmt.Printf("Time = %8.4f, dt = %8.6f, tstep = %d\n", time, dt, steps)
		}
	}
	return
}
