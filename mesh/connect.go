package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

/*
Connect builds the element-to-element and element-to-face maps using a
sparse face-to-vertex incidence product: two faces are mated exactly when
they share all of their vertices, which shows up as an off-diagonal entry
equal to the per-face vertex count in FToV * FToV'.

Boundary faces are left self-connected and tagged BCFar.
*/
func (m *Mesh) Connect() {
	var (
		fv         = m.FaceVerts()
		nvPerFace  = len(fv[0])
		totalFaces = m.K * m.NFaces
		nv         = m.VX.Len()
	)
	FToVTmp := sparse.NewDOK(totalFaces, nv)
	for k := 0; k < m.K; k++ {
		for f := 0; f < m.NFaces; f++ {
			sk := k*m.NFaces + f
			for _, v := range fv[f] {
				FToVTmp.Set(sk, m.Vertex(k, v), 1)
			}
		}
	}
	FToV := FToVTmp.ToCSR()
	FToF := sparse.NewCSR(totalFaces, totalFaces, nil, nil, nil)
	FToF.Mul(FToV, FToV.T())

	// Self-connected defaults
	for k := 0; k < m.K; k++ {
		for f := 0; f < m.NFaces; f++ {
			m.EToE.Set(k, f, float64(k))
			m.EToF.Set(k, f, float64(f))
		}
	}
	for sk1 := 0; sk1 < totalFaces; sk1++ {
		for sk2 := 0; sk2 < totalFaces; sk2++ {
			if sk1 == sk2 {
				continue
			}
			if int(FToF.At(sk1, sk2)) == nvPerFace {
				k1, f1 := sk1/m.NFaces, sk1%m.NFaces
				k2, f2 := sk2/m.NFaces, sk2%m.NFaces
				m.EToE.Set(k1, f1, float64(k2))
				m.EToF.Set(k1, f1, float64(f2))
			}
		}
	}
	m.tagBoundaries()
	m.checkReciprocity()
}

func (m *Mesh) tagBoundaries() {
	m.BCTags = make([][]BCTag, m.K)
	for k := 0; k < m.K; k++ {
		m.BCTags[k] = make([]BCTag, m.NFaces)
		for f := 0; f < m.NFaces; f++ {
			if m.IsBoundaryFace(k, f) {
				m.BCTags[k][f] = BCFar
			}
		}
	}
}

// checkReciprocity verifies the face mating is symmetric: if face f of k
// points at face f2 of k2, the reverse link must point back. A failure
// here would silently break flux antisymmetry downstream, so it is fatal.
func (m *Mesh) checkReciprocity() {
	for k := 0; k < m.K; k++ {
		for f := 0; f < m.NFaces; f++ {
			k2, f2 := int(m.EToE.At(k, f)), int(m.EToF.At(k, f))
			kb, fb := int(m.EToE.At(k2, f2)), int(m.EToF.At(k2, f2))
			if kb != k || fb != f {
				panic(fmt.Errorf("asymmetric face connectivity: (%d,%d) -> (%d,%d) -> (%d,%d)",
					k, f, k2, f2, kb, fb))
			}
		}
	}
}
