package element

import (
	"fmt"

	"github.com/dgsolve/gomcl/utils"
)

type Lumping uint8

const (
	RowSum Lumping = iota
	DiagonalNeighbors
)

var lumpingNames = map[string]Lumping{
	"rowsum":   RowSum,
	"diagonal": DiagonalNeighbors,
}

func NewLumping(label string) (l Lumping) {
	var (
		ok bool
	)
	if l, ok = lumpingNames[label]; !ok {
		panic(fmt.Errorf("unable to use lumping policy named %s", label))
	}
	return
}

/*
LORMassVector condenses the reference mass matrix into the diagonal
low-order mass operator.

RowSum sums each full row. DiagonalNeighbors restricts the sum to the
diagonal and the nodal neighbors along reference directions, then rescales
so the total reference mass is preserved; on simplex shapes every node pair
is a diagonal neighbor, so the two policies coincide there.
*/
func LORMassVector(re *RefElement, policy Lumping) (mLOR utils.Vector) {
	var (
		Np   = re.Np
		Mhat = re.MassMatrix
	)
	mLOR = utils.NewVector(Np)
	switch {
	case policy == RowSum || re.Shape == Tri:
		mLOR = Mhat.SumRows()
	case re.Shape == Seg:
		// Tensor shape: diagonal neighbors are the adjacent nodes on the
		// 1D nodal line
		for i := 0; i < Np; i++ {
			sum := Mhat.At(i, i)
			if i > 0 {
				sum += Mhat.At(i, i-1)
			}
			if i < Np-1 {
				sum += Mhat.At(i, i+1)
			}
			mLOR.DataP[i] = sum
		}
		// Rescale to preserve total mass
		total := Mhat.SumRows().Sum()
		mLOR.Scale(total / mLOR.Sum())
	}
	for i, m := range mLOR.DataP {
		if m <= 0 {
			panic(fmt.Errorf("non-positive low-order mass %g at node %d", m, i))
		}
	}
	return
}
