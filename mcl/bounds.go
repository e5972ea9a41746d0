package mcl

import "github.com/dgsolve/gomcl/utils"

/*
stateBounds are the per-dof, per-component admissible intervals of one
evaluation. Sweep one accumulates the viscosity weighted bar states of
every incident edge; predict turns the accumulators into the low-order
predicted state, the value the low-order update reaches at its maximal
stable step. The interval of a dof then spans its own nodal value and
the predicted state across its graph neighborhood. They live only for
the duration of an evaluation and are recomputed from scratch each
time.
*/
type stateBounds struct {
	Min, Max [][]float64 // per component, len Kloc*Np
	Pred     [][]float64 // low-order predicted state
	SumD     []float64   // incident viscosity totals
}

func newStateBounds(nc, ndof int) *stateBounds {
	sb := &stateBounds{
		Min:  make([][]float64, nc),
		Max:  make([][]float64, nc),
		Pred: make([][]float64, nc),
		SumD: make([]float64, ndof),
	}
	for n := 0; n < nc; n++ {
		sb.Min[n] = make([]float64, ndof)
		sb.Max[n] = make([]float64, ndof)
		sb.Pred[n] = make([]float64, ndof)
	}
	return sb
}

// reset clears the bar state accumulators.
func (sb *stateBounds) reset() {
	for n := range sb.Pred {
		p := sb.Pred[n]
		for i := range p {
			p[i] = 0
		}
	}
	for i := range sb.SumD {
		sb.SumD[i] = 0
	}
}

// addBar accumulates one incident bar state into the predicted state of
// a dof.
func (sb *stateBounds) addBar(ind int, d float64, ubar []float64) {
	sb.SumD[ind] += d
	for n, v := range ubar {
		sb.Pred[n][ind] += d * v
	}
}

// predict divides the accumulators into the predicted state and seeds
// every interval with the nodal value and the dof's own prediction. A
// dof without incident edges predicts its own value.
func (sb *stateBounds) predict(U []utils.Matrix) {
	for n := range sb.Pred {
		var (
			p  = sb.Pred[n]
			mn = sb.Min[n]
			mx = sb.Max[n]
			u  = U[n].DataP
		)
		for i, s := range sb.SumD {
			if s > 0 {
				p[i] /= s
			} else {
				p[i] = u[i]
			}
			mn[i], mx[i] = u[i], u[i]
			if p[i] < mn[i] {
				mn[i] = p[i]
			}
			if p[i] > mx[i] {
				mx[i] = p[i]
			}
		}
	}
}

// couple widens each endpoint's interval with the predicted state of
// the other endpoint.
func (sb *stateBounds) couple(di, dj int) {
	for n := range sb.Pred {
		var (
			p  = sb.Pred[n]
			mn = sb.Min[n]
			mx = sb.Max[n]
		)
		if p[dj] < mn[di] {
			mn[di] = p[dj]
		}
		if p[dj] > mx[di] {
			mx[di] = p[dj]
		}
		if p[di] < mn[dj] {
			mn[dj] = p[di]
		}
		if p[di] > mx[dj] {
			mx[dj] = p[di]
		}
	}
}

// finalize floors the lower bounds of physically non-negative components
// at zero.
func (sb *stateBounds) finalize(nonNeg []bool) {
	for n, nn := range nonNeg {
		if !nn {
			continue
		}
		mn := sb.Min[n]
		for i := range mn {
			if mn[i] < 0 {
				mn[i] = 0
			}
		}
	}
}

// at gathers the bounds of one dof into the provided component slices.
func (sb *stateBounds) at(ind int, mn, mx []float64) {
	for n := range sb.Min {
		mn[n] = sb.Min[n][ind]
		mx[n] = sb.Max[n][ind]
	}
}
