package mcl

import "fmt"

// LimitMode selects how the antidiffusive fluxes are blended back onto
// the low-order update.
type LimitMode uint8

const (
	Limited   LimitMode = iota // convex limiting, the production mode
	HighOrder                  // alpha = 1 everywhere, unlimited target
	LowOrder                   // alpha = 0 everywhere, graph viscosity only
)

var limitModes = map[string]LimitMode{
	"limited":   Limited,
	"highorder": HighOrder,
	"loworder":  LowOrder,
}

func NewLimitMode(label string) LimitMode {
	m, ok := limitModes[label]
	if !ok {
		panic(fmt.Errorf("unknown limiter mode %q", label))
	}
	return m
}

/*
edgeAlpha computes the shared correction factor of one edge. For each
component the admissible flux is capped by the distance of the bar state
to the upper bound on the receiving end and to the lower bound on the
donating end, scaled by 2d; the edge factor is the minimum over
components so all components of a node pair are limited together.

The bounds track the predicted state of the neighborhood, not the
incident bar states, so a bar state can leave the intervals of its
endpoints; the caps then come out negative and alpha clamps to zero,
leaving the edge at its low-order value. Collapsed bounds give zero
caps and alpha = 0. The formula is invariant under swapping the
endpoints, which keeps alpha_ij = alpha_ji and the limited fluxes
conservative.
*/
func edgeAlpha(d float64, ubar, fraw, minI, maxI, minJ, maxJ []float64) (alpha float64) {
	alpha = 1
	for n := range fraw {
		f := fraw[n]
		if f == 0 {
			continue
		}
		var a float64
		if f > 0 {
			room := maxI[n] - ubar[n]
			if r2 := ubar[n] - minJ[n]; r2 < room {
				room = r2
			}
			a = 2 * d * room / f
		} else {
			room := ubar[n] - minI[n]
			if r2 := maxJ[n] - ubar[n]; r2 < room {
				room = r2
			}
			a = 2 * d * room / (-f)
		}
		if a < 0 {
			a = 0
		}
		if a < alpha {
			alpha = a
		}
	}
	return
}
