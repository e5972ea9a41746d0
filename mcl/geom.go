package mcl

import (
	"fmt"

	"github.com/dgsolve/gomcl/element"
	"github.com/dgsolve/gomcl/space"
	"github.com/dgsolve/gomcl/utils"
)

/*
GeometryCache precomputes every mapped geometric quantity the evolution
operator needs: per element Jacobian determinants and adjugates, the
preconditioned gradient operator (the skew-symmetrized, adjugate-mapped
reference gradient coefficients that drive the volume edges) and the
lumped low-order mass vector.

The coefficient c_ij stored for a node pair satisfies c_ij = -c_ji and,
together with the half face coefficients, zero row sums, which is what
makes the edge fluxes conservative and exact on constant states.
*/
type GeometryCache struct {
	Sp         *space.Space
	Lumping    element.Lumping
	DetJ       utils.Vector // K
	Adjugates  utils.Matrix // K x 4, row-major 2x2 blocks
	PrecGradOp []float64    // K x Np x Np x 2 arena
	MLow       utils.Matrix // Np x K physical lumped masses
	MHat       utils.Vector // reference lumped masses
}

func NewGeometryCache(sp *space.Space, lumping element.Lumping) (gc *GeometryCache) {
	var (
		re = sp.Ref
		K  = sp.K
		Np = sp.Np
	)
	gc = &GeometryCache{
		Sp:         sp,
		Lumping:    lumping,
		DetJ:       utils.NewVector(K),
		Adjugates:  utils.NewMatrix(K, 4),
		PrecGradOp: make([]float64, K*Np*Np*2),
		MLow:       utils.NewMatrix(Np, K),
		MHat:       element.LORMassVector(re, lumping),
	}
	for k := 0; k < K; k++ {
		detJ, adj := sp.ElementJacobian(k)
		if detJ <= 0 {
			panic(fmt.Errorf("non-positive jacobian determinant %g in element %d", detJ, k))
		}
		gc.DetJ.DataP[k] = detJ
		for m := 0; m < 4; m++ {
			gc.Adjugates.Set(k, m, adj[m])
		}
		gc.fillPrecGrad(k, adj)
		for i := 0; i < Np; i++ {
			gc.MLow.Set(i, k, detJ*gc.MHat.DataP[i])
		}
	}
	return
}

// fillPrecGrad maps the reference gradient mass matrices through the
// transposed element adjugate, the pullback of physical gradients, then
// stores the skew part over each node pair.
func (gc *GeometryCache) fillPrecGrad(k int, adj [4]float64) {
	var (
		re = gc.Sp.Ref
		Np = gc.Sp.Np
		cg = make([]float64, Np*Np*2) // Galerkin coefficients before skewing
	)
	for i := 0; i < Np; i++ {
		for j := 0; j < Np; j++ {
			var cr, cs float64
			cr = re.GradMass[0].At(i, j)
			if re.Dim == 2 {
				cs = re.GradMass[1].At(i, j)
			}
			cg[(i*Np+j)*2+0] = adj[0]*cr + adj[2]*cs
			cg[(i*Np+j)*2+1] = adj[1]*cr + adj[3]*cs
		}
	}
	base := k * Np * Np * 2
	for i := 0; i < Np; i++ {
		for j := 0; j < Np; j++ {
			for d := 0; d < 2; d++ {
				gc.PrecGradOp[base+(i*Np+j)*2+d] =
					0.5 * (cg[(i*Np+j)*2+d] - cg[(j*Np+i)*2+d])
			}
		}
	}
}

// GradCoef returns the preconditioned gradient coefficient vector for
// the ordered node pair (i, j) of element k.
func (gc *GeometryCache) GradCoef(k, i, j int) (c [2]float64) {
	checkIndex4(k, i, j, gc.Sp.K, gc.Sp.Np)
	base := ((k*gc.Sp.Np+i)*gc.Sp.Np + j) * 2
	c[0] = gc.PrecGradOp[base]
	c[1] = gc.PrecGradOp[base+1]
	return
}

// FaceCoef returns the half face coefficient for node slot m of face fc,
// oriented out of the KL side.
func (gc *GeometryCache) FaceCoef(fc *space.Face, m int) (c [2]float64) {
	w := gc.Sp.Ref.FaceWeights[fc.FL][m]
	c[0] = 0.5 * w * fc.Jac * fc.Normal[0]
	c[1] = 0.5 * w * fc.Jac * fc.Normal[1]
	return
}
