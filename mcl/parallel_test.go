package mcl

import (
	"math"
	"testing"

	"github.com/dgsolve/gomcl/hypsys"
	"github.com/dgsolve/gomcl/utils"
	"github.com/stretchr/testify/assert"
)

func globalState(pe *ParallelEvolution, f func(x float64) []float64) (U []utils.Matrix) {
	U = make([]utils.Matrix, pe.Nc)
	for n := 0; n < pe.Nc; n++ {
		U[n] = utils.NewMatrix(pe.Sp.Np, pe.Sp.K)
	}
	for k := 0; k < pe.Sp.K; k++ {
		for i := 0; i < pe.Sp.Np; i++ {
			q := f(pe.Sp.X.At(i, k))
			for n := 0; n < pe.Nc; n++ {
				U[n].DataP[k+i*pe.Sp.K] = q[n]
			}
		}
	}
	return
}

func globalRHS(pe *ParallelEvolution) (RHS []utils.Matrix) {
	RHS = make([]utils.Matrix, pe.Nc)
	for n := 0; n < pe.Nc; n++ {
		RHS[n] = utils.NewMatrix(pe.Sp.Np, pe.Sp.K)
	}
	return
}

func roughProfile(x float64) []float64 {
	v := math.Sin(2 * math.Pi * x)
	if x > 0.6 {
		v += 1
	}
	return []float64{v}
}

func TestGhostPlans(t *testing.T) {
	sp := advectionSpace(4, 2, true)
	pe := NewParallelEvolution(sp, hypsys.NewAdvection(1, 0),
		Options{Mode: Limited}, 2)
	{ // Partition [0,2) needs 2 and 3, partition [2,4) needs 0 and 1
		assert.Equal(t, []int{2, 3}, pe.Ops[0].Graph.RemoteElems)
		assert.Equal(t, []int{0, 1}, pe.Ops[1].Graph.RemoteElems)
	}
	{ // Sender and receiver enumerate the same elements in the same order
		for from := 0; from < 2; from++ {
			for to := 0; to < 2; to++ {
				assert.Equal(t, pe.sendPlans[from][to], pe.recvPlans[to][from])
			}
		}
	}
}

/*
The unlimited and the pure low-order operators are sums of fixed edge
contributions, so any partitioning must reproduce the serial result to
rounding. The limited operator reduces the bounds of dofs touching a
cross-partition edge, which shifts the factors of all their edges, so
it is compared away from those dofs and their graph neighbors.
*/
func TestParallelMatchesSerial(t *testing.T) {
	var (
		sp  = advectionSpace(8, 2, true)
		sys = hypsys.NewBurgers()
	)
	for _, mode := range []LimitMode{HighOrder, LowOrder} {
		var (
			ser = NewParallelEvolution(sp, sys, Options{Mode: mode}, 1)
			par = NewParallelEvolution(sp, sys, Options{Mode: mode}, 3)
			U   = globalState(ser, roughProfile)
			rs  = globalRHS(ser)
			rp  = globalRHS(par)
		)
		ser.Mult(U, rs)
		par.Mult(U, rp)
		for i := range rs[0].DataP {
			assert.InDeltaf(t, rs[0].DataP[i], rp[0].DataP[i], 1.e-12, "mode %d dof %d", mode, i)
		}
	}
	{ // Limited: identical except at dofs touched by cross-partition edges
		var (
			ser = NewParallelEvolution(sp, sys, Options{Mode: Limited}, 1)
			par = NewParallelEvolution(sp, sys, Options{Mode: Limited}, 3)
			U   = globalState(ser, roughProfile)
			rs  = globalRHS(ser)
			rp  = globalRHS(par)
		)
		ser.Mult(U, rs)
		par.Mult(U, rp)
		skip := make(map[int]bool)
		for _, op := range par.Ops {
			mark := func(nd int) {
				var (
					k = op.KMin + nd%op.Kloc
					i = nd / op.Kloc
				)
				skip[k+i*sp.K] = true
			}
			for _, e := range op.Graph.FaceEdges {
				if !e.Remote {
					continue
				}
				ld := op.Graph.LocalDof(e.KL, e.IL)
				mark(ld)
				for _, nd := range op.Graph.Nbrs[ld] {
					mark(nd)
				}
			}
		}
		assert.True(t, len(skip) > 0)
		for i := range rs[0].DataP {
			if skip[i] {
				continue
			}
			assert.InDeltaf(t, rs[0].DataP[i], rp[0].DataP[i], 1.e-12, "dof %d", i)
		}
	}
}

// Cross-partition edges limit both sides with the same reduced bounds,
// so the partitioned operator stays exactly conservative.
func TestParallelConservation(t *testing.T) {
	var (
		sp  = advectionSpace(9, 3, true)
		pe  = NewParallelEvolution(sp, hypsys.NewBurgers(), Options{Mode: Limited}, 3)
		U   = globalState(pe, roughProfile)
		RHS = globalRHS(pe)
	)
	pe.Mult(U, RHS)
	var total float64
	for k := 0; k < sp.K; k++ {
		for i := 0; i < sp.Np; i++ {
			total += pe.Geom.MLow.At(i, k) * RHS[0].DataP[k+i*sp.K]
		}
	}
	assert.InDeltaf(t, 0, total, 1.e-10, "")
}

func TestParallelBoundPreservation(t *testing.T) {
	var (
		sp = advectionSpace(8, 3, true)
		pe = NewParallelEvolution(sp, hypsys.NewAdvection(1, 0), Options{Mode: Limited}, 3)
	)
	U := globalState(pe, func(x float64) []float64 {
		if x > 0.25 && x < 0.6 {
			return []float64{1}
		}
		return []float64{0}
	})
	var (
		RHS     = globalRHS(pe)
		prevMin = U[0].Min()
		prevMax = U[0].Max()
	)
	for step := 0; step < 50; step++ {
		dt := pe.MaxStableDT(U, 0.8)
		pe.Mult(U, RHS)
		for i := range U[0].DataP {
			U[0].DataP[i] += dt * RHS[0].DataP[i]
		}
		var (
			mn = U[0].Min()
			mx = U[0].Max()
		)
		assert.True(t, mx <= prevMax+1.e-12)
		assert.True(t, mn >= prevMin-1.e-12)
		prevMin, prevMax = mn, mx
	}
}

// A short Sod shock tube run: limited Euler keeps density and pressure
// positive through the expansion and the shock.
func TestParallelSodPositivity(t *testing.T) {
	var (
		sp = advectionSpace(16, 2, false)
		pe = NewParallelEvolution(sp, hypsys.NewEuler1D(1.4), Options{Mode: Limited}, 2)
	)
	U := globalState(pe, func(x float64) []float64 {
		if x < 0.5 {
			return []float64{1, 0, 1 / 0.4}
		}
		return []float64{0.125, 0, 0.1 / 0.4}
	})
	RHS := globalRHS(pe)
	for step := 0; step < 40; step++ {
		dt := pe.MaxStableDT(U, 0.5)
		pe.Mult(U, RHS)
		for n := 0; n < 3; n++ {
			for i := range U[n].DataP {
				U[n].DataP[i] += dt * RHS[n].DataP[i]
			}
		}
	}
	sys := hypsys.NewEuler1D(1.4)
	q := make([]float64, 3)
	for i := range U[0].DataP {
		q[0], q[1], q[2] = U[0].DataP[i], U[1].DataP[i], U[2].DataP[i]
		assert.True(t, q[0] > 0)
		assert.True(t, sys.Pressure(q) > 0)
		for n := 0; n < 3; n++ {
			assert.False(t, math.IsNaN(q[n]))
		}
	}
}
