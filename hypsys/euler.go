package hypsys

import "math"

/*
Euler1D is the one dimensional compressible Euler system in conservative
variables [rho, rhoU, E] with the ideal gas closure
p = (gamma-1)*(E - rho*u^2/2). Only the x component of the direction
vector is used, the system is meant for line meshes.
*/
type Euler1D struct {
	Gamma float64
}

func NewEuler1D(gamma float64) *Euler1D {
	return &Euler1D{Gamma: gamma}
}

func (s *Euler1D) NumComponents() int { return 3 }

func (s *Euler1D) Pressure(q []float64) float64 {
	var (
		rho, rhoU, E = q[0], q[1], q[2]
		u            = rhoU / rho
	)
	return (s.Gamma - 1) * (E - 0.5*rho*u*u)
}

func (s *Euler1D) Flux(q []float64, dir [2]float64, f []float64) {
	var (
		rho, rhoU, E = q[0], q[1], q[2]
		u            = rhoU / rho
		p            = s.Pressure(q)
	)
	f[0] = dir[0] * rhoU
	f[1] = dir[0] * (rhoU*u + p)
	f[2] = dir[0] * u * (E + p)
}

func (s *Euler1D) WaveSpeed(qL, qR []float64, dir [2]float64) float64 {
	speed := func(q []float64) float64 {
		var (
			u = q[1] / q[0]
			c = math.Sqrt(s.Gamma * s.Pressure(q) / q[0])
		)
		return math.Abs(u) + c
	}
	return math.Max(speed(qL), speed(qR)) * math.Abs(dir[0])
}

func (s *Euler1D) NonNegative() []bool { return []bool{true, false, true} }
