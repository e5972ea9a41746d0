package hypsys

import "math"

// Advection is scalar linear transport q_t + a . grad q = 0 with a
// constant velocity field.
type Advection struct {
	Ax, Ay float64
}

func NewAdvection(ax, ay float64) *Advection {
	return &Advection{Ax: ax, Ay: ay}
}

func (s *Advection) NumComponents() int { return 1 }

func (s *Advection) Flux(q []float64, dir [2]float64, f []float64) {
	f[0] = (s.Ax*dir[0] + s.Ay*dir[1]) * q[0]
}

func (s *Advection) WaveSpeed(qL, qR []float64, dir [2]float64) float64 {
	return math.Abs(s.Ax*dir[0] + s.Ay*dir[1])
}

func (s *Advection) NonNegative() []bool { return []bool{false} }
