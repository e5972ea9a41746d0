package hypsys

import "math"

/*
System describes a hyperbolic conservation law q_t + div F(q) = 0 in
nodal, direction-projected form. Flux contracts the flux tensor with an
arbitrary (not necessarily unit) direction vector; WaveSpeed bounds the
spectral radius of the directional flux Jacobian over the segment between
two states, for a unit direction.

Physically invalid states (negative density, negative pressure) produce
NaN which is left to propagate to the caller.
*/
type System interface {
	NumComponents() int
	// Flux stores F(q) . dir into f, len(f) == NumComponents().
	Flux(q []float64, dir [2]float64, f []float64)
	// WaveSpeed returns a bound on the directional wave speeds of both
	// states, dir must be unit length.
	WaveSpeed(qL, qR []float64, dir [2]float64) float64
	// NonNegative marks components whose physical bounds are floored at
	// zero, such as density and total energy.
	NonNegative() []bool
}

// Rusanov computes the local Lax-Friedrichs flux through an oriented,
// scaled direction vector and returns the graph viscosity that went into
// it: f = (F(qL)+F(qR)).dir/2 - d*(qR-qL)/2 with d = lambda*|dir|.
func Rusanov(sys System, qL, qR []float64, dir [2]float64, f []float64) (d float64) {
	var (
		nc  = sys.NumComponents()
		mag = math.Hypot(dir[0], dir[1])
		fL  = make([]float64, nc)
		fR  = make([]float64, nc)
	)
	if mag == 0 {
		for n := range f {
			f[n] = 0
		}
		return 0
	}
	unit := [2]float64{dir[0] / mag, dir[1] / mag}
	sys.Flux(qL, dir, fL)
	sys.Flux(qR, dir, fR)
	d = sys.WaveSpeed(qL, qR, unit) * mag
	for n := 0; n < nc; n++ {
		f[n] = 0.5*(fL[n]+fR[n]) - 0.5*d*(qR[n]-qL[n])
	}
	return
}
