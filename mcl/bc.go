package mcl

// BoundaryCondition synthesizes the exterior state of a boundary face
// node from the interior state, the node position and the outward
// normal.
type BoundaryCondition interface {
	GhostState(x, y float64, qIn []float64, normal [2]float64, qOut []float64)
}

// FixedState imposes a constant far-field state.
type FixedState struct {
	Q []float64
}

func (bc *FixedState) GhostState(x, y float64, qIn []float64, normal [2]float64, qOut []float64) {
	copy(qOut, bc.Q)
}

// Extrapolate mirrors the interior state, a zero-gradient outflow.
type Extrapolate struct{}

func (bc *Extrapolate) GhostState(x, y float64, qIn []float64, normal [2]float64, qOut []float64) {
	copy(qOut, qIn)
}
