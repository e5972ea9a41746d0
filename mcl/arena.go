package mcl

/*
FluxArena holds the raw pairwise antidiffusive fluxes of one evaluation
as dense per-element blocks, indexed (element, i, j, component) with the
element blocks contiguous. It is allocated per evaluation and never
stored on the operator, so concurrent evaluations cannot alias.
*/
type FluxArena struct {
	K, Np, Nc int
	Data      []float64
}

func NewFluxArena(k, np, nc int) *FluxArena {
	return &FluxArena{
		K:    k,
		Np:   np,
		Nc:   nc,
		Data: make([]float64, k*np*np*nc),
	}
}

func (fa *FluxArena) index(k, i, j, n int) int {
	checkArena(fa, k, i, j, n)
	return ((k*fa.Np+i)*fa.Np+j)*fa.Nc + n
}

func (fa *FluxArena) At(k, i, j, n int) float64 {
	return fa.Data[fa.index(k, i, j, n)]
}

func (fa *FluxArena) Set(k, i, j, n int, val float64) {
	fa.Data[fa.index(k, i, j, n)] = val
}

// Pair returns the component slice of the (i, j) block of element k.
func (fa *FluxArena) Pair(k, i, j int) []float64 {
	base := fa.index(k, i, j, 0)
	return fa.Data[base : base+fa.Nc]
}
