package element

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/dgsolve/gomcl/utils"
)

// JacobiGL computes the N+1 Gauss-Lobatto nodes of the (alpha,beta) Jacobi
// polynomial on [-1,1].
func JacobiGL(alpha, beta float64, N int) (X utils.Vector) {
	var (
		x = make([]float64, N+1)
	)
	if N == 1 {
		x[0], x[1] = -1, 1
		X = utils.NewVector(N+1, x)
		return
	}
	xint, _ := JacobiGQ(alpha+1, beta+1, N-2)
	x[0], x[N] = -1, 1
	copy(x[1:N], xint.DataP)
	X = utils.NewVector(N+1, x)
	return
}

// JacobiGQ computes N+1 Gauss quadrature nodes and weights via the
// eigendecomposition of the symmetric tridiagonal recurrence matrix.
func JacobiGQ(alpha, beta float64, N int) (X, W utils.Vector) {
	var (
		x, w   []float64
		d0, d1 []float64
	)
	if N == 0 {
		x = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w = []float64{2.}
		return utils.NewVector(1, x), utils.NewVector(1, w)
	}

	// Main diagonal
	d0 = make([]float64, N+1)
	fac := -.5 * (alpha*alpha - beta*beta)
	for i := range d0 {
		h1 := 2*float64(i) + alpha + beta
		d0[i] = fac / (h1 * (h1 + 2.))
	}
	if alpha+beta < 10*utils.NODETOL {
		d0[0] = 0.
	}
	// First super diagonal
	d1 = make([]float64, N)
	for i := range d1 {
		ip1 := float64(i + 1)
		h1 := 2*float64(i) + alpha + beta
		d1[i] = 2. / (h1 + 2.) *
			math.Sqrt(ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/((h1+1.)*(h1+3.)))
	}

	JJ := utils.NewSymTriDiagonal(d0, d1)
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)
	X = utils.NewVector(N+1, x)

	VVr := mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	W = utils.NewVector(N+1, append([]float64{}, VVr.RawRowView(0)...)).
		POW(2).Scale(gamma0(alpha, beta))
	return
}

// JacobiP evaluates the normalized Jacobi polynomial of order N at the
// points in r.
func JacobiP(r utils.Vector, alpha, beta float64, N int) (p []float64) {
	var (
		Nc = r.Len()
	)
	rg := 1. / math.Sqrt(gamma0(alpha, beta))
	if N == 0 {
		p = utils.ConstArray(Nc, rg)
		return
	}
	pl := utils.NewMatrix(N+1, Nc)
	for j := 0; j < Nc; j++ {
		pl.Set(0, j, rg)
	}
	ab := alpha + beta
	rg1 := 1. / math.Sqrt(gamma1(alpha, beta))
	for j := 0; j < Nc; j++ {
		pl.Set(1, j, rg1*((ab+2.)*r.AtVec(j)/2.+(alpha-beta)/2.))
	}
	if N == 1 {
		p = pl.Row(1).DataP
		return
	}
	aold := 2. / (ab + 2.) * math.Sqrt((alpha+1.)*(beta+1.)/(ab+3.))
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		h1 := 2.*ip1 + ab
		anew := 2. / (h1 + 2.) *
			math.Sqrt((ip1+1.)*(ip1+ab+1.)*(ip1+alpha+1.)*(ip1+beta+1.)/((h1+1.)*(h1+3.)))
		bnew := -(alpha*alpha - beta*beta) / (h1 * (h1 + 2.))
		for j := 0; j < Nc; j++ {
			val := ((r.AtVec(j)-bnew)*pl.At(i+1, j) - aold*pl.At(i, j)) / anew
			pl.Set(i+2, j, val)
		}
		aold = anew
	}
	p = pl.Row(N).DataP
	return
}

// GradJacobiP evaluates the derivative of the normalized Jacobi polynomial.
func GradJacobiP(r utils.Vector, alpha, beta float64, N int) (p []float64) {
	if N == 0 {
		p = make([]float64, r.Len())
		return
	}
	p = JacobiP(r, alpha+1, beta+1, N-1)
	fN := float64(N)
	fac := math.Sqrt(fN * (fN + alpha + beta + 1))
	for i, val := range p {
		p[i] = val * fac
	}
	return
}

func Vandermonde1D(N int, R utils.Vector) (V utils.Matrix) {
	V = utils.NewMatrix(R.Len(), N+1)
	for j := 0; j < N+1; j++ {
		V.SetCol(j, JacobiP(R, 0, 0, j))
	}
	return
}

func GradVandermonde1D(N int, R utils.Vector) (Vr utils.Matrix) {
	Vr = utils.NewMatrix(R.Len(), N+1)
	for j := 0; j < N+1; j++ {
		Vr.SetCol(j, GradJacobiP(R, 0, 0, j))
	}
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Pow(2, ab1) / ab1 *
		math.Gamma(alpha+1.) * math.Gamma(beta+1.) / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	return (alpha + 1.) * (beta + 1.) / (alpha + beta + 3.) * gamma0(alpha, beta)
}
