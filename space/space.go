package space

import (
	"fmt"
	"math"

	"github.com/dgsolve/gomcl/element"
	"github.com/dgsolve/gomcl/mesh"
	"github.com/dgsolve/gomcl/utils"
)

/*
Space couples a mesh with a reference element: nodal coordinates for every
degree of freedom, a global dof numbering and the resolved face list with
physical normals and measures.

Dof numbering is element major: dof = k*Np + i for local node i of
element k. Nodal storage elsewhere follows the partition layout
ind = k + i*Kmax.
*/
type Space struct {
	Mesh  *mesh.Mesh
	Ref   *element.RefElement
	K     int
	Np    int
	Ndof  int
	X, Y  utils.Matrix // Np x K nodal coordinates
	Faces []Face
}

// Face is one resolved geometric face. NodesL[m] on element KL touches
// NodesR[m] on element KR across the face. Normal points out of KL.
type Face struct {
	KL, FL   int
	KR, FR   int
	Boundary bool
	BC       mesh.BCTag
	NodesL   []int
	NodesR   []int
	Normal   [2]float64
	Jac      float64 // physical face measure (1 in 1D, edge length in 2D)
}

func NewSpace(msh *mesh.Mesh, re *element.RefElement) (sp *Space) {
	if msh.Dim != re.Dim {
		panic(fmt.Errorf("mesh dimension %d does not match element dimension %d", msh.Dim, re.Dim))
	}
	sp = &Space{
		Mesh: msh,
		Ref:  re,
		K:    msh.K,
		Np:   re.Np,
		Ndof: msh.K * re.Np,
	}
	sp.buildCoordinates()
	sp.buildFaces()
	return
}

// GlobalID maps (element, local node) to the global dof id.
func (sp *Space) GlobalID(k, i int) int { return k*sp.Np + i }

func (sp *Space) buildCoordinates() {
	var (
		msh = sp.Mesh
		re  = sp.Ref
	)
	sp.X = utils.NewMatrix(sp.Np, sp.K)
	sp.Y = utils.NewMatrix(sp.Np, sp.K)
	switch re.Shape {
	case element.Seg:
		for k := 0; k < sp.K; k++ {
			xa := msh.VX.DataP[msh.Vertex(k, 0)]
			xb := msh.VX.DataP[msh.Vertex(k, 1)]
			for i := 0; i < sp.Np; i++ {
				r := re.R.DataP[i]
				sp.X.Set(i, k, xa+0.5*(r+1)*(xb-xa))
			}
		}
	case element.Tri:
		// P1: the nodes are the vertices
		for k := 0; k < sp.K; k++ {
			for i := 0; i < sp.Np; i++ {
				v := msh.Vertex(k, i)
				sp.X.Set(i, k, msh.VX.DataP[v])
				sp.Y.Set(i, k, msh.VY.DataP[v])
			}
		}
	default:
		panic(fmt.Errorf("unsupported element shape %s", re.Shape.Print()))
	}
}

/*
buildFaces walks each geometric face once, attaching the aligned node
pairing and the outward normal of the lower-numbered side. On the segment
a face is a single endpoint node. On the triangle the pairing is resolved
through shared global vertices, which also covers meshes where the
neighbor traverses the edge in the opposite order.
*/
func (sp *Space) buildFaces() {
	var (
		msh = sp.Mesh
		re  = sp.Ref
	)
	for k := 0; k < msh.K; k++ {
		for f := 0; f < msh.NFaces; f++ {
			k2, f2 := int(msh.EToE.At(k, f)), int(msh.EToF.At(k, f))
			boundary := msh.IsBoundaryFace(k, f)
			if !boundary && k2 < k {
				continue // already added from the other side
			}
			if !boundary && k2 == k && f2 < f {
				continue // periodic self-pairing on a single element
			}
			fc := Face{
				KL: k, FL: f, KR: k2, FR: f2,
				Boundary: boundary,
				BC:       msh.BCTags[k][f],
				NodesL:   append([]int{}, re.Faces[f]...),
			}
			if !boundary {
				fc.NodesR = sp.mateNodes(k, f, k2, f2)
			}
			fc.Normal, fc.Jac = sp.faceGeometry(k, f)
			sp.Faces = append(sp.Faces, fc)
		}
	}
}

func (sp *Space) mateNodes(k, f, k2, f2 int) (nodesR []int) {
	var (
		re     = sp.Ref
		nodesL = re.Faces[f]
	)
	nodesR = make([]int, len(nodesL))
	switch re.Shape {
	case element.Seg:
		nodesR[0] = re.Faces[f2][0]
	case element.Tri:
		fv := sp.Mesh.FaceVerts()
		for m, nl := range nodesL {
			vg := sp.Mesh.Vertex(k, nl) // P1: node id equals vertex slot
			found := false
			for _, nr := range re.Faces[f2] {
				if sp.Mesh.Vertex(k2, nr) == vg {
					nodesR[m] = nr
					found = true
					break
				}
			}
			if !found {
				panic(fmt.Errorf("face (%d,%d)/(%d,%d): no mate for vertex %d (face verts %v)",
					k, f, k2, f2, vg, fv[f]))
			}
		}
	}
	return
}

func (sp *Space) faceGeometry(k, f int) (normal [2]float64, jac float64) {
	msh := sp.Mesh
	switch sp.Ref.Shape {
	case element.Seg:
		if f == 0 {
			normal = [2]float64{-1, 0}
		} else {
			normal = [2]float64{1, 0}
		}
		jac = 1
	case element.Tri:
		fv := msh.FaceVerts()[f]
		var (
			va, vb = msh.Vertex(k, fv[0]), msh.Vertex(k, fv[1])
			dx     = msh.VX.DataP[vb] - msh.VX.DataP[va]
			dy     = msh.VY.DataP[vb] - msh.VY.DataP[va]
		)
		jac = math.Sqrt(dx*dx + dy*dy)
		if jac < utils.NODETOL {
			panic(fmt.Errorf("degenerate face %d of element %d", f, k))
		}
		// counterclockwise traversal puts the interior on the left
		normal = [2]float64{dy / jac, -dx / jac}
	}
	return
}
