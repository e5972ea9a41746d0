package mesh

import (
	"fmt"

	"github.com/dgsolve/gomcl/utils"
)

type BCTag uint8

const (
	BCInterior BCTag = iota
	BCFar
	BCWall
)

var bcNames = []string{"Interior", "Far", "Wall"}

func (b BCTag) Print() string { return bcNames[b] }

/*
Mesh is the geometric container: vertex coordinates, element-to-vertex
connectivity and the face connectivity derived from it. It carries no
solution data and is immutable once connected; topology changes mean
building a new Mesh.
*/
type Mesh struct {
	Dim        int
	K          int // Number of elements
	NVerts     int // Vertices per element
	NFaces     int // Faces per element
	VX, VY     utils.Vector
	EToV       utils.Matrix // K x NVerts
	EToE, EToF utils.Matrix // K x NFaces, self-connected marks a boundary face
	BCTags     [][]BCTag    // per (element, face), BCInterior on shared faces
}

// FaceVerts lists the local vertex ids of each face of the element shape.
func (m *Mesh) FaceVerts() (fv [][]int) {
	switch m.Dim {
	case 1:
		fv = [][]int{{0}, {1}}
	case 2:
		fv = [][]int{{0, 1}, {1, 2}, {2, 0}}
	default:
		panic(fmt.Errorf("unsupported mesh dimension %d", m.Dim))
	}
	return
}

// Vertex returns the global vertex id at (element, local vertex).
func (m *Mesh) Vertex(k, v int) int {
	return int(m.EToV.At(k, v))
}

// IsBoundaryFace reports whether face f of element k has no neighbor.
func (m *Mesh) IsBoundaryFace(k, f int) bool {
	return int(m.EToE.At(k, f)) == k && int(m.EToF.At(k, f)) == f
}
