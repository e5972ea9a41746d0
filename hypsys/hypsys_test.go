package hypsys

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvection(t *testing.T) {
	var (
		s = NewAdvection(2, 0)
		f = make([]float64, 1)
	)
	s.Flux([]float64{3}, [2]float64{1, 0}, f)
	assert.Equal(t, 6., f[0])
	assert.Equal(t, 2., s.WaveSpeed([]float64{1}, []float64{5}, [2]float64{1, 0}))
	{ // Rusanov reduces to pure upwind for linear advection
		var (
			qL, qR = []float64{1}, []float64{0}
			fr     = make([]float64, 1)
		)
		d := Rusanov(s, qL, qR, [2]float64{1, 0}, fr)
		assert.InDeltaf(t, 2, d, 1.e-14, "")
		assert.InDeltaf(t, 2, fr[0], 1.e-14, "") // a*qL, upwind value
	}
}

func TestBurgers(t *testing.T) {
	var (
		s = NewBurgers()
		f = make([]float64, 1)
	)
	s.Flux([]float64{4}, [2]float64{1, 0}, f)
	assert.Equal(t, 8., f[0])
	assert.Equal(t, 4., s.WaveSpeed([]float64{-4}, []float64{2}, [2]float64{1, 0}))
}

func TestEuler1D(t *testing.T) {
	var (
		s = NewEuler1D(1.4)
		f = make([]float64, 3)
	)
	{ // Stagnant state: only the pressure term survives in momentum
		q := []float64{1, 0, 2.5} // rho=1, u=0, p=1
		assert.InDeltaf(t, 1, s.Pressure(q), 1.e-14, "")
		s.Flux(q, [2]float64{1, 0}, f)
		assert.InDeltaf(t, 0, f[0], 1.e-14, "")
		assert.InDeltaf(t, 1, f[1], 1.e-14, "")
		assert.InDeltaf(t, 0, f[2], 1.e-14, "")
		// Wave speed is the sound speed
		c := math.Sqrt(1.4)
		assert.InDeltaf(t, c, s.WaveSpeed(q, q, [2]float64{1, 0}), 1.e-14, "")
	}
	{ // Vacuum produces NaN which must propagate, not panic
		q := []float64{1, 10, 1} // negative pressure
		ws := s.WaveSpeed(q, q, [2]float64{1, 0})
		assert.True(t, math.IsNaN(ws))
	}
	{ // Non-negativity flags cover density and energy
		assert.Equal(t, []bool{true, false, true}, s.NonNegative())
	}
}

func TestSodSolution(t *testing.T) {
	s := NewSodSolution(1.4, 0.5, 0.2)
	{ // Post pressure sits between the initial states
		assert.True(t, s.pPost > 0.1 && s.pPost < 1)
		assert.True(t, s.vPost > 0)
	}
	{ // Waves are ordered: fan head, fan tail, contact, shock
		assert.True(t, s.x1 < s.x2 && s.x2 < s.x3 && s.x3 < s.x4)
	}
	{ // Rankine-Hugoniot mass balance across the shock
		var (
			sh      = (s.x4 - 0.5) / 0.2
			fluxIn  = sodRhoR * (0 - sh)
			fluxOut = s.rhoPost * (s.vPost - sh)
		)
		assert.InDeltaf(t, fluxIn, fluxOut, 1.e-6, "")
	}
	{ // Pressure and velocity are continuous across the contact
		var (
			rhoM, uM, pM = s.At(s.x3 - 1.e-9)
			rhoP, uP, pP = s.At(s.x3 + 1.e-9)
		)
		assert.InDeltaf(t, pM, pP, 1.e-10, "")
		assert.InDeltaf(t, uM, uP, 1.e-10, "")
		assert.True(t, rhoM != rhoP) // density jumps
	}
	{ // The rarefaction connects continuously to both constant regions
		rho1, _, _ := s.At(s.x1 - 1.e-9)
		rho2, _, _ := s.At(s.x1 + 1.e-9)
		assert.InDeltaf(t, rho1, rho2, 1.e-6, "")
		rho3, _, _ := s.At(s.x2 - 1.e-9)
		rho4, _, _ := s.At(s.x2 + 1.e-9)
		assert.InDeltaf(t, rho3, rho4, 1.e-6, "")
	}
	{ // Conserved state of the undisturbed left region
		q := make([]float64, 3)
		s.Conserved(0.01, q)
		assert.InDeltaf(t, 1, q[0], 1.e-14, "")
		assert.InDeltaf(t, 0, q[1], 1.e-14, "")
		assert.InDeltaf(t, 2.5, q[2], 1.e-14, "")
	}
}
