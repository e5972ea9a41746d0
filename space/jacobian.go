package space

import "github.com/dgsolve/gomcl/element"

/*
ElementJacobian returns the determinant and adjugate of the affine
reference-to-physical map of element k. The adjugate is stored row-major
as a 2x2 block so that J^-1 = adj/det; in 1D the map is x(r) with
det = h/2 and an identity adjugate.
*/
func (sp *Space) ElementJacobian(k int) (detJ float64, adj [4]float64) {
	msh := sp.Mesh
	switch sp.Ref.Shape {
	case element.Seg:
		var (
			xa = msh.VX.DataP[msh.Vertex(k, 0)]
			xb = msh.VX.DataP[msh.Vertex(k, 1)]
		)
		detJ = 0.5 * (xb - xa)
		adj = [4]float64{1, 0, 0, 1}
	case element.Tri:
		var (
			v1, v2, v3 = msh.Vertex(k, 0), msh.Vertex(k, 1), msh.Vertex(k, 2)
			jxr        = msh.VX.DataP[v2] - msh.VX.DataP[v1]
			jxs        = msh.VX.DataP[v3] - msh.VX.DataP[v1]
			jyr        = msh.VY.DataP[v2] - msh.VY.DataP[v1]
			jys        = msh.VY.DataP[v3] - msh.VY.DataP[v1]
		)
		detJ = jxr*jys - jxs*jyr
		adj = [4]float64{jys, -jxs, -jyr, jxr}
	}
	return
}
