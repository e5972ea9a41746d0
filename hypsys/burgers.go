package hypsys

import "math"

// Burgers is the scalar inviscid Burgers equation with flux q^2/2 in
// each coordinate direction.
type Burgers struct{}

func NewBurgers() *Burgers { return &Burgers{} }

func (s *Burgers) NumComponents() int { return 1 }

func (s *Burgers) Flux(q []float64, dir [2]float64, f []float64) {
	f[0] = 0.5 * q[0] * q[0] * (dir[0] + dir[1])
}

func (s *Burgers) WaveSpeed(qL, qR []float64, dir [2]float64) float64 {
	var (
		proj = math.Abs(dir[0] + dir[1])
		qm   = math.Max(math.Abs(qL[0]), math.Abs(qR[0]))
	)
	return qm * proj
}

func (s *Burgers) NonNegative() []bool { return []bool{false} }
