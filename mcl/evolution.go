package mcl

import (
	"fmt"
	"math"

	"github.com/dgsolve/gomcl/element"
	"github.com/dgsolve/gomcl/hypsys"
	"github.com/dgsolve/gomcl/mesh"
	"github.com/dgsolve/gomcl/space"
	"github.com/dgsolve/gomcl/utils"
)

// dFloor keeps the graph viscosity strictly positive so bar states stay
// defined where the local wave speed vanishes.
const dFloor = 1.e-14

type Options struct {
	Lumping element.Lumping
	Mode    LimitMode
	BCs     map[mesh.BCTag]BoundaryCondition
}

/*
Evolution is the semi-discrete time derivative operator for one
partition of elements: low-order graph viscosity update plus convex
limited antidiffusion, assembled edge by edge so that every pairwise
flux cancels exactly between its two endpoints.

State matrices are Np x Kloc per component with the nodal layout
ind = kLocal + i*Kloc. All evaluation scratch is allocated per call;
the operator itself holds only immutable structure and may be evaluated
concurrently.
*/
type Evolution struct {
	Sp    *space.Space
	Sys   hypsys.System
	Geom  *GeometryCache
	Graph *NeighborGraph
	Opts  Options

	KMin, KMax int
	Kloc, Np   int
	Nc         int
}

func NewEvolution(sp *space.Space, sys hypsys.System, gc *GeometryCache,
	opts Options, kMin, kMax int) (ev *Evolution) {
	if kMin < 0 || kMax > sp.K || kMin >= kMax {
		panic(fmt.Errorf("bad element range [%d,%d) for K=%d", kMin, kMax, sp.K))
	}
	ev = &Evolution{
		Sp:   sp,
		Sys:  sys,
		Geom: gc,
		Opts: opts,
		KMin: kMin, KMax: kMax,
		Kloc: kMax - kMin,
		Np:   sp.Np,
		Nc:   sys.NumComponents(),
	}
	ev.Graph = BuildGraph(gc, kMin, kMax)
	return
}

// NewSerialEvolution builds a single-partition operator over the whole
// mesh, constructing its own geometry cache.
func NewSerialEvolution(sp *space.Space, sys hypsys.System, opts Options) *Evolution {
	gc := NewGeometryCache(sp, opts.Lumping)
	return NewEvolution(sp, sys, gc, opts, 0, sp.K)
}

// Mult evaluates the time derivative without ghost state. It panics if
// the partition has remote neighbors.
func (ev *Evolution) Mult(U, RHS []utils.Matrix) {
	if len(ev.Graph.RemoteElems) != 0 {
		panic(fmt.Errorf("partition [%d,%d) has %d ghost elements, ghost state is required",
			ev.KMin, ev.KMax, len(ev.Graph.RemoteElems)))
	}
	ev.ComputeTimeDerivative(U, nil, RHS)
}

// RebuildGeometry recomputes the geometric cache and the edge structure
// after mesh coordinates change.
func (ev *Evolution) RebuildGeometry() {
	ev.Geom = NewGeometryCache(ev.Sp, ev.Opts.Lumping)
	ev.Graph = BuildGraph(ev.Geom, ev.KMin, ev.KMax)
}

type evalScratch struct {
	arena          *FluxArena
	volD           []float64
	volUbar        []float64
	faceD          []float64
	faceUbar       []float64
	faceFraw       []float64
	faceQR         []float64
	bounds         *stateBounds
	qi, qj, fi, fj []float64
	mnI, mxI       []float64
	mnJ, mxJ       []float64
	rubar, rfraw   []float64 // reduced bounds edge work
	rpredL, rpredR []float64 // reduced predicted states, Np x nc
}

func (ev *Evolution) newScratch() *evalScratch {
	var (
		nc = ev.Nc
		nv = len(ev.Graph.VolEdges)
		nf = len(ev.Graph.FaceEdges)
	)
	return &evalScratch{
		arena:    NewFluxArena(ev.Kloc, ev.Np, nc),
		volD:     make([]float64, nv),
		volUbar:  make([]float64, nv*nc),
		faceD:    make([]float64, nf),
		faceUbar: make([]float64, nf*nc),
		faceFraw: make([]float64, nf*nc),
		faceQR:   make([]float64, nf*nc),
		bounds:   newStateBounds(nc, ev.Kloc*ev.Np),
		qi:       make([]float64, nc),
		qj:       make([]float64, nc),
		fi:       make([]float64, nc),
		fj:       make([]float64, nc),
		mnI:      make([]float64, nc),
		mxI:      make([]float64, nc),
		mnJ:      make([]float64, nc),
		mxJ:      make([]float64, nc),
		rubar:    make([]float64, nc),
		rfraw:    make([]float64, nc),
		rpredL:   make([]float64, ev.Np*nc),
		rpredR:   make([]float64, ev.Np*nc),
	}
}

// edgeQuantities evaluates the graph viscosity, bar state and raw
// antidiffusive flux of one edge with coefficient vector c.
func edgeQuantities(sys hypsys.System, qi, qj []float64, c [2]float64,
	fi, fj, ubar, fraw []float64) (d float64) {
	mag := math.Hypot(c[0], c[1])
	sys.Flux(qi, c, fi)
	sys.Flux(qj, c, fj)
	d = sys.WaveSpeed(qi, qj, [2]float64{c[0] / mag, c[1] / mag}) * mag
	if d < dFloor {
		d = dFloor
	}
	for n := range ubar {
		ubar[n] = 0.5*(qi[n]+qj[n]) - (fj[n]-fi[n])/(2*d)
		fraw[n] = d * (qi[n] - qj[n])
	}
	return
}

func gather(U []utils.Matrix, ind int, q []float64) {
	for n := range q {
		q[n] = U[n].DataP[ind]
	}
}

func (ev *Evolution) checkState(U []utils.Matrix, what string) {
	if len(U) != ev.Nc {
		panic(fmt.Errorf("%s has %d components, system has %d", what, len(U), ev.Nc))
	}
	for n := range U {
		nr, nc := U[n].Dims()
		if nr != ev.Np || nc != ev.Kloc {
			panic(fmt.Errorf("%s component %d is %dx%d, want %dx%d", what, n, nr, nc, ev.Np, ev.Kloc))
		}
	}
}

func (ev *Evolution) bcFor(tag mesh.BCTag) BoundaryCondition {
	if bc, ok := ev.Opts.BCs[tag]; ok {
		return bc
	}
	return &Extrapolate{}
}

/*
ComputeTimeDerivative writes m^-1 times the assembled semi-discrete
residual of the current state into RHS. The ghost matrices hold the
full nodal state of every element in Graph.RemoteElems, Np x nGhost per
component in slot order, and must be fully received before the call.

The evaluation makes two sweeps over the edges: the first computes bar
states and raw fluxes and accumulates the low-order predicted state of
every dof; the nodal intervals then span each dof's value and the
predicted state across its graph neighborhood, and the second sweep
limits and scatters. NaN anywhere in the inputs flows through unchecked.
*/
func (ev *Evolution) ComputeTimeDerivative(U, ghost, RHS []utils.Matrix) {
	var (
		ng = ev.Graph
		nc = ev.Nc
		sc = ev.newScratch()
	)
	ev.checkState(U, "state")
	ev.checkState(RHS, "derivative")
	nGhost := len(ng.RemoteElems)
	if nGhost > 0 {
		if len(ghost) != nc {
			panic(fmt.Errorf("ghost state has %d components, system has %d", len(ghost), nc))
		}
		for n := range ghost {
			nr, ncol := ghost[n].Dims()
			if nr != ev.Np || ncol != nGhost {
				panic(fmt.Errorf("ghost component %d is %dx%d, want %dx%d", n, nr, ncol, ev.Np, nGhost))
			}
		}
	}

	sc.bounds.reset()

	// Sweep one: edge quantities and the predicted state
	for idx, e := range ng.VolEdges {
		var (
			di   = ng.LocalDof(e.K, e.I)
			dj   = ng.LocalDof(e.K, e.J)
			ubar = sc.volUbar[idx*nc : (idx+1)*nc]
			fraw = sc.arena.Pair(e.K-ev.KMin, e.I, e.J)
		)
		gather(U, di, sc.qi)
		gather(U, dj, sc.qj)
		sc.volD[idx] = edgeQuantities(ev.Sys, sc.qi, sc.qj, e.C, sc.fi, sc.fj, ubar, fraw)
		for n := 0; n < nc; n++ {
			sc.arena.Set(e.K-ev.KMin, e.J, e.I, n, -fraw[n])
		}
		sc.bounds.addBar(di, sc.volD[idx], ubar)
		sc.bounds.addBar(dj, sc.volD[idx], ubar)
	}
	for idx := range ng.FaceEdges {
		var (
			e    = &ng.FaceEdges[idx]
			dl   = ng.LocalDof(e.KL, e.IL)
			ubar = sc.faceUbar[idx*nc : (idx+1)*nc]
			fraw = sc.faceFraw[idx*nc : (idx+1)*nc]
			qr   = sc.faceQR[idx*nc : (idx+1)*nc]
		)
		gather(U, dl, sc.qi)
		switch {
		case e.Boundary:
			mag := math.Hypot(e.C[0], e.C[1])
			normal := [2]float64{e.C[0] / mag, e.C[1] / mag}
			ev.bcFor(e.BC).GhostState(e.X, e.Y, sc.qi, normal, qr)
		case e.Remote:
			gather(ghost, e.Slot+e.IR*nGhost, qr)
		default:
			gather(U, ng.LocalDof(e.KR, e.IR), qr)
		}
		sc.faceD[idx] = edgeQuantities(ev.Sys, sc.qi, qr, e.C, sc.fi, sc.fj, ubar, fraw)
		sc.bounds.addBar(dl, sc.faceD[idx], ubar)
		if !e.Boundary && !e.Remote {
			sc.bounds.addBar(ng.LocalDof(e.KR, e.IR), sc.faceD[idx], ubar)
		}
	}

	// Neighborhood intervals of the predicted state
	sc.bounds.predict(U)
	for _, e := range ng.VolEdges {
		sc.bounds.couple(ng.LocalDof(e.K, e.I), ng.LocalDof(e.K, e.J))
	}
	for idx := range ng.FaceEdges {
		e := &ng.FaceEdges[idx]
		if !e.Boundary && !e.Remote {
			sc.bounds.couple(ng.LocalDof(e.KL, e.IL), ng.LocalDof(e.KR, e.IR))
		}
	}
	sc.bounds.finalize(ev.Sys.NonNegative())

	// Sweep two: limit and scatter
	for n := 0; n < nc; n++ {
		for i := range RHS[n].DataP {
			RHS[n].DataP[i] = 0
		}
	}
	for idx, e := range ng.VolEdges {
		var (
			di   = ng.LocalDof(e.K, e.I)
			dj   = ng.LocalDof(e.K, e.J)
			d    = sc.volD[idx]
			ubar = sc.volUbar[idx*nc : (idx+1)*nc]
			fraw = sc.arena.Pair(e.K-ev.KMin, e.I, e.J)
		)
		alpha := ev.edgeFactor(sc, d, ubar, fraw, di, dj)
		for n := 0; n < nc; n++ {
			RHS[n].DataP[di] += 2*d*(ubar[n]-U[n].DataP[di]) + alpha*fraw[n]
			RHS[n].DataP[dj] += 2*d*(ubar[n]-U[n].DataP[dj]) - alpha*fraw[n]
		}
	}
	for idx := range ng.FaceEdges {
		var (
			e    = &ng.FaceEdges[idx]
			dl   = ng.LocalDof(e.KL, e.IL)
			d    = sc.faceD[idx]
			ubar = sc.faceUbar[idx*nc : (idx+1)*nc]
			fraw = sc.faceFraw[idx*nc : (idx+1)*nc]
			qr   = sc.faceQR[idx*nc : (idx+1)*nc]
		)
		var alpha float64
		switch {
		case e.Boundary:
			// one-sided, no neighbor bounds: low order unless forced
			alpha = 0
			if ev.Opts.Mode == HighOrder {
				alpha = 1
			}
		case e.Remote:
			alpha = ev.remoteEdgeFactor(sc, U, ghost, nGhost, e, d, ubar, fraw)
		default:
			alpha = ev.edgeFactor(sc, d, ubar, fraw, dl, ng.LocalDof(e.KR, e.IR))
		}
		for n := 0; n < nc; n++ {
			RHS[n].DataP[dl] += 2*d*(ubar[n]-U[n].DataP[dl]) + alpha*fraw[n]
		}
		if !e.Boundary && !e.Remote {
			dr := ng.LocalDof(e.KR, e.IR)
			for n := 0; n < nc; n++ {
				RHS[n].DataP[dr] += 2*d*(ubar[n]-qr[n]) - alpha*fraw[n]
			}
		}
	}

	// Lumped mass inverse
	for k := ev.KMin; k < ev.KMax; k++ {
		for i := 0; i < ev.Np; i++ {
			var (
				ind = ng.LocalDof(k, i)
				m   = ev.Geom.MLow.At(i, k)
			)
			for n := 0; n < nc; n++ {
				RHS[n].DataP[ind] /= m
			}
		}
	}
}

// edgeFactor resolves the limiting mode for an edge with both endpoints
// owned.
func (ev *Evolution) edgeFactor(sc *evalScratch, d float64, ubar, fraw []float64, di, dj int) float64 {
	switch ev.Opts.Mode {
	case HighOrder:
		return 1
	case LowOrder:
		return 0
	}
	sc.bounds.at(di, sc.mnI, sc.mxI)
	sc.bounds.at(dj, sc.mnJ, sc.mxJ)
	return edgeAlpha(d, ubar, fraw, sc.mnI, sc.mxI, sc.mnJ, sc.mxJ)
}

/*
remoteEdgeFactor limits an edge whose far endpoint lives on another
partition. Both partitions reduce the predicted states of the two
shared elements to the element-internal edges plus this face edge,
which each side can compute from the ghost element state alone; the
reduction runs over the identical edge set in the identical order, so
the two sides arrive at the bitwise identical factor and the limited
fluxes stay conservative across the partition boundary.
*/
func (ev *Evolution) remoteEdgeFactor(sc *evalScratch, U, ghost []utils.Matrix,
	nGhost int, e *FaceEdge, d float64, ubar, fraw []float64) float64 {
	switch ev.Opts.Mode {
	case HighOrder:
		return 1
	case LowOrder:
		return 0
	}
	var (
		ng      = ev.Graph
		nc      = ev.Nc
		localAt = func(i, n int) float64 { return U[n].DataP[ng.LocalDof(e.KL, i)] }
		ghostAt = func(i, n int) float64 { return ghost[n].DataP[e.Slot+i*nGhost] }
	)
	for i := 0; i < ev.Np; i++ {
		ev.reducedPredicted(sc, e.KL, i, localAt, e.IL, d, ubar, sc.rpredL[i*nc:(i+1)*nc])
		ev.reducedPredicted(sc, e.KR, i, ghostAt, e.IR, d, ubar, sc.rpredR[i*nc:(i+1)*nc])
	}
	ev.reducedInterval(e.KL, e.IL, localAt, sc.rpredL, sc.rpredR, e.IR, sc.mnI, sc.mxI)
	ev.reducedInterval(e.KR, e.IR, ghostAt, sc.rpredR, sc.rpredL, e.IL, sc.mnJ, sc.mxJ)
	return edgeAlpha(d, ubar, fraw, sc.mnI, sc.mxI, sc.mnJ, sc.mxJ)
}

// reducedPredicted evaluates the low-order predicted state of one node
// of a shared element over its element-internal edges, plus the shared
// face edge when the node is its endpoint. A node without edges
// predicts its own value.
func (ev *Evolution) reducedPredicted(sc *evalScratch, k, iNode int,
	at func(i, n int) float64, faceNode int, faceD float64,
	faceUbar, pred []float64) {
	nc := ev.Nc
	var den float64
	for n := 0; n < nc; n++ {
		sc.qi[n] = at(iNode, n)
		pred[n] = 0
	}
	for j := 0; j < ev.Np; j++ {
		if j == iNode {
			continue
		}
		c := ev.Geom.GradCoef(k, iNode, j)
		if math.Hypot(c[0], c[1]) < utils.NODETOL {
			continue
		}
		for n := 0; n < nc; n++ {
			sc.qj[n] = at(j, n)
		}
		d := edgeQuantities(ev.Sys, sc.qi, sc.qj, c, sc.fi, sc.fj, sc.rubar, sc.rfraw)
		den += d
		for n := 0; n < nc; n++ {
			pred[n] += d * sc.rubar[n]
		}
	}
	if iNode == faceNode {
		den += faceD
		for n := 0; n < nc; n++ {
			pred[n] += faceD * faceUbar[n]
		}
	}
	for n := 0; n < nc; n++ {
		if den > 0 {
			pred[n] /= den
		} else {
			pred[n] = sc.qi[n]
		}
	}
}

// reducedInterval spans one endpoint's interval over its nodal value,
// its own reduced prediction, the reduced predictions of its
// element-internal neighbors and the one of its face mate.
func (ev *Evolution) reducedInterval(k, iNode int, at func(i, n int) float64,
	pred, farPred []float64, farNode int, mn, mx []float64) {
	nc := ev.Nc
	widen := func(v float64, n int) {
		if v < mn[n] {
			mn[n] = v
		}
		if v > mx[n] {
			mx[n] = v
		}
	}
	for n := 0; n < nc; n++ {
		v := at(iNode, n)
		mn[n], mx[n] = v, v
		widen(pred[iNode*nc+n], n)
		widen(farPred[farNode*nc+n], n)
	}
	for j := 0; j < ev.Np; j++ {
		if j == iNode {
			continue
		}
		c := ev.Geom.GradCoef(k, iNode, j)
		if math.Hypot(c[0], c[1]) < utils.NODETOL {
			continue
		}
		for n := 0; n < nc; n++ {
			widen(pred[j*nc+n], n)
		}
	}
	for n, nonNeg := range ev.Sys.NonNegative() {
		if nonNeg && mn[n] < 0 {
			mn[n] = 0
		}
	}
}

/*
MaxStableDT returns the forward Euler step size under which the
low-order update of every owned dof is a convex combination of bar
states, scaled by the given CFL number: dt = cfl * min_i m_i/(2 sum d).
*/
func (ev *Evolution) MaxStableDT(U, ghost []utils.Matrix, cfl float64) (dt float64) {
	var (
		ng     = ev.Graph
		nc     = ev.Nc
		sumD   = make([]float64, ev.Kloc*ev.Np)
		qi     = make([]float64, nc)
		qj     = make([]float64, nc)
		fi     = make([]float64, nc)
		fj     = make([]float64, nc)
		ubar   = make([]float64, nc)
		fraw   = make([]float64, nc)
		nGhost = len(ng.RemoteElems)
	)
	ev.checkState(U, "state")
	for _, e := range ng.VolEdges {
		var (
			di = ng.LocalDof(e.K, e.I)
			dj = ng.LocalDof(e.K, e.J)
		)
		gather(U, di, qi)
		gather(U, dj, qj)
		d := edgeQuantities(ev.Sys, qi, qj, e.C, fi, fj, ubar, fraw)
		sumD[di] += d
		sumD[dj] += d
	}
	for idx := range ng.FaceEdges {
		e := &ng.FaceEdges[idx]
		dl := ng.LocalDof(e.KL, e.IL)
		gather(U, dl, qi)
		switch {
		case e.Boundary:
			mag := math.Hypot(e.C[0], e.C[1])
			ev.bcFor(e.BC).GhostState(e.X, e.Y, qi, [2]float64{e.C[0] / mag, e.C[1] / mag}, qj)
		case e.Remote:
			gather(ghost, e.Slot+e.IR*nGhost, qj)
		default:
			gather(U, ng.LocalDof(e.KR, e.IR), qj)
		}
		d := edgeQuantities(ev.Sys, qi, qj, e.C, fi, fj, ubar, fraw)
		sumD[dl] += d
		if !e.Boundary && !e.Remote {
			sumD[ng.LocalDof(e.KR, e.IR)] += d
		}
	}
	dt = math.MaxFloat64
	for k := ev.KMin; k < ev.KMax; k++ {
		for i := 0; i < ev.Np; i++ {
			ind := ng.LocalDof(k, i)
			if sumD[ind] == 0 {
				continue
			}
			if cand := ev.Geom.MLow.At(i, k) / (2 * sumD[ind]); cand < dt {
				dt = cand
			}
		}
	}
	dt *= cfl
	return
}
