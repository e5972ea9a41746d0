package utils

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

type Matrix struct {
	M     *mat.Dense
	DataP []float64
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var (
		data []float64
	)
	if len(dataO) != 0 {
		data = dataO[0]
		if len(data) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: nr,nc = %v,%v, len(data) = %v",
				nr, nc, len(data))
			panic(err)
		}
	} else {
		data = make([]float64, nr*nc)
	}
	R = Matrix{
		M:     mat.NewDense(nr, nc, data),
		DataP: data,
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) Data() []float64           { return m.DataP }

func (m Matrix) IsEmpty() bool { return m.M == nil }

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	copy(R.DataP, m.DataP)
	return
}

func (m Matrix) Transpose() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			R.DataP[i+j*nr] = m.DataP[j+i*nc]
		}
	}
	return
}

func (m Matrix) Mul(A Matrix, dataO ...[]float64) (R Matrix) { // Does not change receiver
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	if len(dataO) != 0 {
		// Re-use the passed storage for the result
		R = NewMatrix(nrM, ncA, dataO[0])
	} else {
		R = NewMatrix(nrM, ncA)
	}
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) MulVec(v Vector) (R Vector) { // Does not change receiver
	var (
		nr, _ = m.Dims()
	)
	R = NewVector(nr)
	R.V.MulVec(m.M, v.V)
	return
}

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) SetCol(j int, data []float64) Matrix { // Changes receiver
	m.M.SetCol(j, data)
	return m
}

func (m Matrix) Add(A Matrix) Matrix { // Changes receiver
	for i, val := range A.DataP {
		m.DataP[i] += val
	}
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix { // Changes receiver
	for i, val := range A.DataP {
		m.DataP[i] -= val
	}
	return m
}

func (m Matrix) Scale(a float64) Matrix { // Changes receiver
	for i := range m.DataP {
		m.DataP[i] *= a
	}
	return m
}

func (m Matrix) AddScalar(a float64) Matrix { // Changes receiver
	for i := range m.DataP {
		m.DataP[i] += a
	}
	return m
}

func (m Matrix) Apply(f func(float64) float64) Matrix { // Changes receiver
	for i, val := range m.DataP {
		m.DataP[i] = f(val)
	}
	return m
}

func (m Matrix) Apply2(A Matrix, f func(x1, x2 float64) float64) Matrix { // Changes receiver
	for i, val := range m.DataP {
		m.DataP[i] = f(val, A.DataP[i])
	}
	return m
}

func (m Matrix) Apply3(A, B Matrix, f func(x1, x2, x3 float64) float64) Matrix { // Changes receiver
	for i, val := range m.DataP {
		m.DataP[i] = f(val, A.DataP[i], B.DataP[i])
	}
	return m
}

func (m Matrix) ElMul(A Matrix) Matrix { // Changes receiver
	for i, val := range A.DataP {
		m.DataP[i] *= val
	}
	return m
}

func (m Matrix) ElDiv(A Matrix) Matrix { // Changes receiver
	for i, val := range A.DataP {
		m.DataP[i] /= val
	}
	return m
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	R = m.Copy()
	iPiv := make([]int, nr)
	if ok := lapack64.Getrf(R.RawMatrix(), iPiv); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
		return
	}
	work := make([]float64, nr*nc)
	if ok := lapack64.Getri(R.RawMatrix(), iPiv, work, nr*nc); !ok {
		err = fmt.Errorf("unable to invert, matrix is singular")
	}
	return
}

func (m Matrix) Row(i int) (V Vector) {
	var (
		_, nc = m.Dims()
	)
	V = NewVector(nc)
	for j := range V.DataP {
		V.DataP[j] = m.DataP[j+i*nc]
	}
	return
}

func (m Matrix) Col(j int) (V Vector) {
	var (
		nr, nc = m.Dims()
	)
	V = NewVector(nr)
	for i := range V.DataP {
		V.DataP[i] = m.DataP[j+i*nc]
	}
	return
}

func (m Matrix) Min() (min float64) {
	min = m.DataP[0]
	for _, val := range m.DataP {
		if val < min {
			min = val
		}
	}
	return
}

func (m Matrix) Max() (max float64) {
	max = m.DataP[0]
	for _, val := range m.DataP {
		if val > max {
			max = val
		}
	}
	return
}

func (m Matrix) SumRows() (V Vector) {
	var (
		nr, nc = m.Dims()
	)
	V = NewVector(nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			V.DataP[i] += m.DataP[j+i*nc]
		}
	}
	return
}

func (m Matrix) Print(msgO ...string) (o string) {
	var (
		name = ""
	)
	if len(msgO) != 0 {
		name = msgO[0]
	}
	o = name + " = \n" + fmt.Sprintf("%v\n", mat.Formatted(m.M, mat.Squeeze()))
	return
}
