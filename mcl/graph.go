package mcl

import (
	"fmt"
	"math"
	"sort"

	"github.com/dgsolve/gomcl/mesh"
	"github.com/dgsolve/gomcl/utils"
	"github.com/james-bowman/sparse"
)

// VolEdge couples two nodes of one element through the preconditioned
// gradient coefficient C = c_ij, oriented so C_ji = -C.
type VolEdge struct {
	K    int // global element id
	I, J int // local node ids, I < J
	C    [2]float64
}

/*
FaceEdge couples a node on an owned element with its mate across a
geometric face. C carries the half face coefficient oriented out of the
owned (KL) side. A remote edge reads the mate from the ghost buffer slot
of element KR; a boundary edge synthesizes the mate from the boundary
condition attached to the face tag.
*/
type FaceEdge struct {
	KL, IL   int
	KR, IR   int
	C        [2]float64
	Remote   bool
	Slot     int
	Boundary bool
	BC       mesh.BCTag
	X, Y     float64
}

/*
NeighborGraph is the dof-to-neighbor structure of one partition: the
volume edges of the owned elements, the face edges touching them, the
ghost elements whose state must be received before an evaluation, and
the per-dof adjacency over the owned dofs.

Construction cross-checks the face pairing from both sides through a
sparse adjacency matrix; any asymmetry is fatal because it would break
the pairwise flux cancellation.
*/
type NeighborGraph struct {
	KMin, KMax  int
	Kloc, Np    int
	VolEdges    []VolEdge
	FaceEdges   []FaceEdge
	RemoteElems []int   // global element ids, slot order
	Nbrs        [][]int // per local dof, locally owned neighbor dofs
}

func BuildGraph(gc *GeometryCache, kMin, kMax int) (ng *NeighborGraph) {
	var (
		sp   = gc.Sp
		Np   = sp.Np
		Kloc = kMax - kMin
	)
	ng = &NeighborGraph{
		KMin: kMin, KMax: kMax,
		Kloc: Kloc, Np: Np,
		Nbrs: make([][]int, Kloc*Np),
	}
	for k := kMin; k < kMax; k++ {
		for i := 0; i < Np; i++ {
			for j := i + 1; j < Np; j++ {
				c := gc.GradCoef(k, i, j)
				if math.Hypot(c[0], c[1]) < utils.NODETOL {
					continue
				}
				ng.VolEdges = append(ng.VolEdges, VolEdge{K: k, I: i, J: j, C: c})
				ng.link(k, i, k, j)
			}
		}
	}
	ng.buildFaceEdges(gc)
	ng.checkSymmetry(gc)
	return
}

func (ng *NeighborGraph) owns(k int) bool { return k >= ng.KMin && k < ng.KMax }

// LocalDof maps (global element, local node) into the partition state
// layout ind = kLocal + i*Kloc.
func (ng *NeighborGraph) LocalDof(k, i int) int {
	return (k - ng.KMin) + i*ng.Kloc
}

func (ng *NeighborGraph) link(k1, i1, k2, i2 int) {
	var (
		d1 = ng.LocalDof(k1, i1)
		d2 = ng.LocalDof(k2, i2)
	)
	ng.Nbrs[d1] = append(ng.Nbrs[d1], d2)
	ng.Nbrs[d2] = append(ng.Nbrs[d2], d1)
}

func (ng *NeighborGraph) buildFaceEdges(gc *GeometryCache) {
	sp := gc.Sp
	slots := make(map[int]int)
	// First pass marks the remote elements so slots come out sorted and
	// both partitions agree on the buffer order.
	for _, fc := range sp.Faces {
		if fc.Boundary {
			continue
		}
		if ng.owns(fc.KL) && !ng.owns(fc.KR) {
			slots[fc.KR] = 0
		}
		if ng.owns(fc.KR) && !ng.owns(fc.KL) {
			slots[fc.KL] = 0
		}
	}
	for k := range slots {
		ng.RemoteElems = append(ng.RemoteElems, k)
	}
	sort.Ints(ng.RemoteElems)
	for s, k := range ng.RemoteElems {
		slots[k] = s
	}

	for fi := range sp.Faces {
		fc := &sp.Faces[fi]
		switch {
		case fc.Boundary:
			if !ng.owns(fc.KL) {
				continue
			}
			for m, il := range fc.NodesL {
				c := gc.FaceCoef(fc, m)
				ng.FaceEdges = append(ng.FaceEdges, FaceEdge{
					KL: fc.KL, IL: il, KR: -1, IR: -1,
					C: c, Boundary: true, BC: fc.BC,
					X: sp.X.At(il, fc.KL), Y: sp.Y.At(il, fc.KL),
				})
			}
		case ng.owns(fc.KL) && ng.owns(fc.KR):
			for m, il := range fc.NodesL {
				c := gc.FaceCoef(fc, m)
				ng.FaceEdges = append(ng.FaceEdges, FaceEdge{
					KL: fc.KL, IL: il, KR: fc.KR, IR: fc.NodesR[m], C: c,
				})
				ng.link(fc.KL, il, fc.KR, fc.NodesR[m])
			}
		case ng.owns(fc.KL):
			for m, il := range fc.NodesL {
				c := gc.FaceCoef(fc, m)
				ng.FaceEdges = append(ng.FaceEdges, FaceEdge{
					KL: fc.KL, IL: il, KR: fc.KR, IR: fc.NodesR[m], C: c,
					Remote: true, Slot: slots[fc.KR],
				})
			}
		case ng.owns(fc.KR):
			for m, ir := range fc.NodesR {
				c := gc.FaceCoef(fc, m)
				ng.FaceEdges = append(ng.FaceEdges, FaceEdge{
					KL: fc.KR, IL: ir, KR: fc.KL, IR: fc.NodesL[m],
					C:      [2]float64{-c[0], -c[1]},
					Remote: true, Slot: slots[fc.KL],
				})
			}
		}
	}
}

/*
checkSymmetry verifies the built edge lists against an independent
reverse traversal. Forward entries come from the volume and face edges
as constructed; reverse entries come from the transposed gradient
coefficients and from the face records read mate first. Both directions
meet in a sparse adjacency matrix that must equal its transpose, so a
corrupted node pairing, a dropped edge or a face inserted twice from
one side shows up as an unbalanced entry.
*/
func (ng *NeighborGraph) checkSymmetry(gc *GeometryCache) {
	n := ng.Kloc * ng.Np
	if n == 0 {
		return
	}
	adj := sparse.NewDOK(n, n)
	for _, e := range ng.VolEdges {
		var (
			di = ng.LocalDof(e.K, e.I)
			dj = ng.LocalDof(e.K, e.J)
		)
		adj.Set(di, dj, adj.At(di, dj)+1)
	}
	for _, e := range ng.FaceEdges {
		if e.Remote || e.Boundary {
			continue
		}
		var (
			dl = ng.LocalDof(e.KL, e.IL)
			dr = ng.LocalDof(e.KR, e.IR)
		)
		adj.Set(dl, dr, adj.At(dl, dr)+1)
	}
	for k := ng.KMin; k < ng.KMax; k++ {
		for i := 0; i < ng.Np; i++ {
			for j := i + 1; j < ng.Np; j++ {
				c := gc.GradCoef(k, j, i)
				if math.Hypot(c[0], c[1]) < utils.NODETOL {
					continue
				}
				var (
					di = ng.LocalDof(k, i)
					dj = ng.LocalDof(k, j)
				)
				adj.Set(dj, di, adj.At(dj, di)+1)
			}
		}
	}
	for fi := range gc.Sp.Faces {
		fc := &gc.Sp.Faces[fi]
		if fc.Boundary || !ng.owns(fc.KL) || !ng.owns(fc.KR) {
			continue
		}
		for m, ir := range fc.NodesR {
			var (
				dr = ng.LocalDof(fc.KR, ir)
				dl = ng.LocalDof(fc.KL, fc.NodesL[m])
			)
			adj.Set(dr, dl, adj.At(dr, dl)+1)
		}
	}
	csr := adj.ToCSR()
	bad := false
	csr.DoNonZero(func(i, j int, v float64) {
		if csr.At(j, i) != v {
			bad = true
		}
	})
	if bad {
		panic(fmt.Errorf("dof neighbor graph is asymmetric on partition [%d,%d)", ng.KMin, ng.KMax))
	}
}
