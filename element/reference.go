package element

import (
	"fmt"

	"github.com/dgsolve/gomcl/utils"
)

type Shape uint8

const (
	Seg Shape = iota // line segment, arbitrary order nodal basis
	Tri              // straight-sided triangle, linear basis
)

var shapeNames = []string{"Segment", "Triangle"}

func (s Shape) Print() string { return shapeNames[s] }

/*
RefElement holds the reference-element operators that depend only on the
shape and polynomial order, never on runtime mesh data:
  - MassMatrix: exact nodal mass matrix on the reference element
  - GradMass:   one matrix per reference direction, C_d = M*D_d, the
    gradient-mass tensors combined with the geometric mapping downstream
  - Faces:      local node ids on each reference face, in face order
  - FaceWeights: lumped quadrature weight per face node on the unit face
*/
type RefElement struct {
	Shape       Shape
	Dim, N, Np  int
	R, S        utils.Vector
	V, Vinv, Dr utils.Matrix // Segment basis operators (empty for Tri)
	MassMatrix  utils.Matrix
	GradMass    []utils.Matrix
	Faces       [][]int
	FaceWeights [][]float64
}

// NewSegment builds the 1D reference element of order N on Gauss-Lobatto
// nodes.
func NewSegment(N int) (re *RefElement) {
	var (
		err error
	)
	if N < 1 {
		panic(fmt.Errorf("segment order must be at least 1, have %d", N))
	}
	re = &RefElement{
		Shape: Seg,
		Dim:   1,
		N:     N,
		Np:    N + 1,
	}
	re.R = JacobiGL(0, 0, N)
	re.V = Vandermonde1D(N, re.R)
	if re.Vinv, err = re.V.Inverse(); err != nil {
		panic(err)
	}
	Vr := GradVandermonde1D(N, re.R)
	re.Dr = Vr.Mul(re.Vinv)
	// M = (V*Vt)^-1 is the exact mass matrix of the nodal basis
	VVt := re.V.Mul(re.V.Transpose())
	if re.MassMatrix, err = VVt.Inverse(); err != nil {
		panic(err)
	}
	re.GradMass = []utils.Matrix{re.MassMatrix.Mul(re.Dr)}
	re.Faces = [][]int{{0}, {re.Np - 1}}
	re.FaceWeights = [][]float64{{1}, {1}}
	return
}

// NewTriangle builds the linear reference triangle with vertices
// (0,0), (1,0), (0,1).
func NewTriangle() (re *RefElement) {
	re = &RefElement{
		Shape: Tri,
		Dim:   2,
		N:     1,
		Np:    3,
	}
	re.R = utils.NewVector(3, []float64{0, 1, 0})
	re.S = utils.NewVector(3, []float64{0, 0, 1})
	re.MassMatrix = utils.NewMatrix(3, 3, []float64{
		2, 1, 1,
		1, 2, 1,
		1, 1, 2,
	}).Scale(1. / 24.)
	// Constant basis gradients: dr = [-1,1,0], ds = [-1,0,1], and the
	// integral of each basis function is area/3 = 1/6
	gradMass := func(d []float64) (C utils.Matrix) {
		C = utils.NewMatrix(3, 3)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				C.Set(i, j, d[j]/6.)
			}
		}
		return
	}
	re.GradMass = []utils.Matrix{
		gradMass([]float64{-1, 1, 0}),
		gradMass([]float64{-1, 0, 1}),
	}
	re.Faces = [][]int{{0, 1}, {1, 2}, {2, 0}}
	re.FaceWeights = [][]float64{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}}
	return
}

// NFaces is the face count of the reference shape.
func (re *RefElement) NFaces() int { return len(re.Faces) }
