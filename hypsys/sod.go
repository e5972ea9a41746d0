package hypsys

import "math"

/*
SodSolution is the exact solution of the Sod shock tube at one instant:
left state (1, 0, 1), right state (0.125, 0, 0.1), diaphragm at x0. The
post state is solved once at construction; evaluation walks the five
regions from the rarefaction head to the shock.
*/
type SodSolution struct {
	Gamma float64
	X0    float64
	T     float64

	pPost, vPost    float64
	rhoPost, rhoMid float64
	cL              float64
	x1, x2, x3, x4  float64
}

const (
	sodRhoL, sodPL = 1.0, 1.0
	sodRhoR, sodPR = 0.125, 0.1
)

func NewSodSolution(gamma, x0, t float64) (s *SodSolution) {
	s = &SodSolution{Gamma: gamma, X0: x0, T: t}
	var (
		mu2 = (gamma - 1) / (gamma + 1)
		cL  = math.Sqrt(gamma * sodPL / sodRhoL)
	)
	s.pPost = solveSecant(func(p float64) float64 {
		d := 1 - mu2
		return (p-sodPR)*math.Sqrt(d*d/(sodRhoR*(p+mu2*sodPR))) -
			2*(math.Sqrt(gamma)/(gamma-1))*(1-math.Pow(p, (gamma-1)/(2*gamma)))
	}, math.Pi)
	s.vPost = 2 * (math.Sqrt(gamma) / (gamma - 1)) * (1 - math.Pow(s.pPost, (gamma-1)/(2*gamma)))
	s.rhoPost = sodRhoR * ((s.pPost / sodPR) + mu2) / (1 + mu2*(s.pPost/sodPR))
	s.rhoMid = sodRhoL * math.Pow(s.pPost/sodPL, 1/gamma)
	s.cL = cL
	var (
		vShock = s.vPost * (s.rhoPost / sodRhoR) / (s.rhoPost/sodRhoR - 1)
		c2     = cL - 0.5*(gamma-1)*s.vPost
	)
	s.x1 = x0 - cL*t
	s.x2 = x0 + t*(s.vPost-c2)
	s.x3 = x0 + s.vPost*t
	s.x4 = x0 + vShock*t
	return
}

// At evaluates density, velocity and pressure at position x.
func (s *SodSolution) At(x float64) (rho, u, p float64) {
	mu2 := (s.Gamma - 1) / (s.Gamma + 1)
	switch {
	case x < s.x1:
		return sodRhoL, 0, sodPL
	case x <= s.x2:
		c := mu2*(s.X0-x)/s.T + (1-mu2)*s.cL
		rho = sodRhoL * math.Pow(c/s.cL, 2/(s.Gamma-1))
		p = sodPL * math.Pow(rho/sodRhoL, s.Gamma)
		u = (1 - mu2) * ((x-s.X0)/s.T + s.cL)
		return
	case x <= s.x3:
		return s.rhoMid, s.vPost, s.pPost
	case x <= s.x4:
		return s.rhoPost, s.vPost, s.pPost
	default:
		return sodRhoR, 0, sodPR
	}
}

// Conserved fills q with the conserved state [rho, rho u, E] at x.
func (s *SodSolution) Conserved(x float64, q []float64) {
	rho, u, p := s.At(x)
	q[0] = rho
	q[1] = rho * u
	q[2] = p/(s.Gamma-1) + 0.5*rho*u*u
}

func solveSecant(f func(float64) float64, start float64) float64 {
	var (
		tol = 1.e-10
		x0  = start / 2
		x1  = start
		f0  = f(x0)
	)
	for iter := 0; iter < 100; iter++ {
		f1 := f(x1)
		if math.Abs(f1) < tol {
			break
		}
		x2 := x1 - f1*(x1-x0)/(f1-f0)
		x0, f0 = x1, f1
		x1 = x2
	}
	return x1
}
