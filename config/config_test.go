package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	var (
		data = `
Title: "Step Advection"
CFL: 0.4
FinalTime: 2.5
PolynomialOrder: 4
NumElements: 32
Periodic: true
System: advection
Velocity: [1.5, 0]
Limiter: limited
Lumping: diagonal
ParallelDegree: 2
`
		ip = DefaultParameters()
	)
	assert.NoError(t, ip.Parse([]byte(data)))
	assert.Equal(t, "Step Advection", ip.Title)
	assert.Equal(t, 0.4, ip.CFL)
	assert.Equal(t, 4, ip.PolynomialOrder)
	assert.Equal(t, 32, ip.NumElements)
	assert.True(t, ip.Periodic)
	assert.Equal(t, []float64{1.5, 0}, ip.Velocity)
	assert.Equal(t, "diagonal", ip.Lumping)
	assert.Equal(t, 2, ip.ParallelDegree)
	// Untouched knobs keep their defaults
	assert.Equal(t, 1.4, ip.Gamma)
}

func TestParseBad(t *testing.T) {
	ip := DefaultParameters()
	assert.Error(t, ip.Parse([]byte("CFL: [not, a, number]")))
}
