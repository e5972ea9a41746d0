package mesh

import (
	"fmt"

	"github.com/dgsolve/gomcl/utils"
)

// NewMesh1D builds a uniform line mesh of K elements on [xmin, xmax].
// With periodic set, the outer faces are mated to each other and no
// boundary faces remain.
func NewMesh1D(xmin, xmax float64, K int, periodic bool) (m *Mesh) {
	if K < 1 {
		panic(fmt.Errorf("need at least one element, have %d", K))
	}
	var (
		nv = K + 1
		dx = (xmax - xmin) / float64(K)
	)
	m = &Mesh{
		Dim:    1,
		K:      K,
		NVerts: 2,
		NFaces: 2,
		VX:     utils.NewVector(nv),
		VY:     utils.NewVector(nv),
		EToV:   utils.NewMatrix(K, 2),
		EToE:   utils.NewMatrix(K, 2),
		EToF:   utils.NewMatrix(K, 2),
	}
	for i := 0; i < nv; i++ {
		m.VX.DataP[i] = xmin + float64(i)*dx
	}
	for k := 0; k < K; k++ {
		m.EToV.Set(k, 0, float64(k))
		m.EToV.Set(k, 1, float64(k+1))
	}
	m.Connect()
	if periodic {
		m.EToE.Set(0, 0, float64(K-1))
		m.EToF.Set(0, 0, 1)
		m.EToE.Set(K-1, 1, 0)
		m.EToF.Set(K-1, 1, 0)
		m.BCTags[0][0] = BCInterior
		m.BCTags[K-1][1] = BCInterior
	}
	return
}

// NewMeshTriRect triangulates the rectangle [x0,x1] x [y0,y1] on an
// nx by ny vertex grid, splitting each quad along its diagonal into two
// counterclockwise triangles.
func NewMeshTriRect(x0, x1, y0, y1 float64, nx, ny int) (m *Mesh) {
	if nx < 2 || ny < 2 {
		panic(fmt.Errorf("grid must be at least 2x2 vertices, have %dx%d", nx, ny))
	}
	var (
		nv = nx * ny
		K  = 2 * (nx - 1) * (ny - 1)
		dx = (x1 - x0) / float64(nx-1)
		dy = (y1 - y0) / float64(ny-1)
	)
	m = &Mesh{
		Dim:    2,
		K:      K,
		NVerts: 3,
		NFaces: 3,
		VX:     utils.NewVector(nv),
		VY:     utils.NewVector(nv),
		EToV:   utils.NewMatrix(K, 3),
		EToE:   utils.NewMatrix(K, 3),
		EToF:   utils.NewMatrix(K, 3),
	}
	vid := func(i, j int) int { return i + j*nx }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			m.VX.DataP[vid(i, j)] = x0 + float64(i)*dx
			m.VY.DataP[vid(i, j)] = y0 + float64(j)*dy
		}
	}
	k := 0
	for j := 0; j < ny-1; j++ {
		for i := 0; i < nx-1; i++ {
			var (
				v00 = vid(i, j)
				v10 = vid(i+1, j)
				v01 = vid(i, j+1)
				v11 = vid(i+1, j+1)
			)
			m.EToV.Set(k, 0, float64(v00))
			m.EToV.Set(k, 1, float64(v10))
			m.EToV.Set(k, 2, float64(v11))
			k++
			m.EToV.Set(k, 0, float64(v00))
			m.EToV.Set(k, 1, float64(v11))
			m.EToV.Set(k, 2, float64(v01))
			k++
		}
	}
	m.Connect()
	return
}
