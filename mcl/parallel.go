package mcl

import (
	"math"
	"sync"

	"github.com/dgsolve/gomcl/exchange"
	"github.com/dgsolve/gomcl/hypsys"
	"github.com/dgsolve/gomcl/space"
	"github.com/dgsolve/gomcl/utils"
)

/*
ParallelEvolution shards the mesh into contiguous element ranges and
runs one Evolution per partition, a goroutine each, with ghost element
state crossing partition boundaries through the exchanger. The geometry
cache is built once and shared read-only.

Global state matrices are Np x K per component; sharding and the ghost
round are handled here so callers see the same Mult signature as the
serial operator.
*/
type ParallelEvolution struct {
	Sp   *space.Space
	Sys  hypsys.System
	Geom *GeometryCache
	PM   *utils.PartitionMap
	Ops  []*Evolution
	Ex   *exchange.Exchanger
	Nc   int

	sendPlans [][][]int // [from][to] global element ids, sorted
	recvPlans [][][]int // [to][from] global element ids, sorted
}

func NewParallelEvolution(sp *space.Space, sys hypsys.System, opts Options, np int) (pe *ParallelEvolution) {
	pe = &ParallelEvolution{
		Sp:   sp,
		Sys:  sys,
		Geom: NewGeometryCache(sp, opts.Lumping),
		PM:   utils.NewPartitionMap(np, sp.K),
		Ex:   exchange.NewExchanger(np),
		Nc:   sys.NumComponents(),
	}
	pe.Ops = make([]*Evolution, np)
	for p := 0; p < np; p++ {
		kMin, kMax := pe.PM.GetBucketRange(p)
		pe.Ops[p] = NewEvolution(sp, sys, pe.Geom, opts, kMin, kMax)
	}
	pe.buildPlans()
	return
}

// buildPlans groups each partition's ghost elements by owner. Both
// plans enumerate elements in ascending order, so sender and receiver
// agree on the buffer layout without further coordination.
func (pe *ParallelEvolution) buildPlans() {
	np := pe.Ex.NP
	pe.sendPlans = make([][][]int, np)
	pe.recvPlans = make([][][]int, np)
	for p := 0; p < np; p++ {
		pe.sendPlans[p] = make([][]int, np)
		pe.recvPlans[p] = make([][]int, np)
	}
	for to := 0; to < np; to++ {
		for _, gk := range pe.Ops[to].Graph.RemoteElems {
			from := pe.PM.GetBucket(gk)
			pe.sendPlans[from][to] = append(pe.sendPlans[from][to], gk)
			pe.recvPlans[to][from] = append(pe.recvPlans[to][from], gk)
		}
	}
}

// RebuildGeometry refreshes the shared cache and every partition's edge
// structure after mesh coordinates change.
func (pe *ParallelEvolution) RebuildGeometry() {
	pe.Geom = NewGeometryCache(pe.Sp, pe.Ops[0].Opts.Lumping)
	for _, op := range pe.Ops {
		op.Geom = pe.Geom
		op.Graph = BuildGraph(pe.Geom, op.KMin, op.KMax)
	}
	pe.buildPlans()
}

func (pe *ParallelEvolution) shard(U []utils.Matrix, p int) (local []utils.Matrix) {
	var (
		op = pe.Ops[p]
		K  = pe.Sp.K
		Np = pe.Sp.Np
	)
	local = make([]utils.Matrix, pe.Nc)
	for n := 0; n < pe.Nc; n++ {
		local[n] = utils.NewMatrix(Np, op.Kloc)
		for i := 0; i < Np; i++ {
			for k := op.KMin; k < op.KMax; k++ {
				local[n].DataP[(k-op.KMin)+i*op.Kloc] = U[n].DataP[k+i*K]
			}
		}
	}
	return
}

func (pe *ParallelEvolution) unshard(local []utils.Matrix, p int, U []utils.Matrix) {
	var (
		op = pe.Ops[p]
		K  = pe.Sp.K
		Np = pe.Sp.Np
	)
	for n := 0; n < pe.Nc; n++ {
		for i := 0; i < Np; i++ {
			for k := op.KMin; k < op.KMax; k++ {
				U[n].DataP[k+i*K] = local[n].DataP[(k-op.KMin)+i*op.Kloc]
			}
		}
	}
}

/*
exchangeGhost runs one ghost round for partition p from its local
shard: post every outgoing element block, then receive and unpack into
the ghost matrices. All posts precede all receives, matching the
exchanger's no-deadlock contract.
*/
func (pe *ParallelEvolution) exchangeGhost(p int, local []utils.Matrix) (ghost []utils.Matrix) {
	var (
		op     = pe.Ops[p]
		Np     = pe.Sp.Np
		nGhost = len(op.Graph.RemoteElems)
	)
	for to := 0; to < pe.Ex.NP; to++ {
		plan := pe.sendPlans[p][to]
		if len(plan) == 0 {
			continue
		}
		buf := make([]float64, len(plan)*Np*pe.Nc)
		pos := 0
		for _, gk := range plan {
			for i := 0; i < Np; i++ {
				for n := 0; n < pe.Nc; n++ {
					buf[pos] = local[n].DataP[(gk-op.KMin)+i*op.Kloc]
					pos++
				}
			}
		}
		pe.Ex.Post(p, to, buf)
	}
	if nGhost == 0 {
		return nil
	}
	ghost = make([]utils.Matrix, pe.Nc)
	for n := 0; n < pe.Nc; n++ {
		ghost[n] = utils.NewMatrix(Np, nGhost)
	}
	slotOf := make(map[int]int, nGhost)
	for s, gk := range op.Graph.RemoteElems {
		slotOf[gk] = s
	}
	for from := 0; from < pe.Ex.NP; from++ {
		plan := pe.recvPlans[p][from]
		if len(plan) == 0 {
			continue
		}
		buf := pe.Ex.Recv(from, p)
		pos := 0
		for _, gk := range plan {
			slot := slotOf[gk]
			for i := 0; i < Np; i++ {
				for n := 0; n < pe.Nc; n++ {
					ghost[n].DataP[slot+i*nGhost] = buf[pos]
					pos++
				}
			}
		}
	}
	return
}

// run shards the global state, performs the ghost round and invokes f
// on every partition concurrently.
func (pe *ParallelEvolution) run(U []utils.Matrix, f func(p int, local, ghost []utils.Matrix)) {
	var wg sync.WaitGroup
	for p := 0; p < pe.Ex.NP; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			local := pe.shard(U, p)
			ghost := pe.exchangeGhost(p, local)
			f(p, local, ghost)
		}(p)
	}
	wg.Wait()
}

// Mult evaluates the time derivative of a global state into a global
// RHS, both Np x K per component.
func (pe *ParallelEvolution) Mult(U, RHS []utils.Matrix) {
	pe.run(U, func(p int, local, ghost []utils.Matrix) {
		var (
			op       = pe.Ops[p]
			localRHS = make([]utils.Matrix, pe.Nc)
		)
		for n := 0; n < pe.Nc; n++ {
			localRHS[n] = utils.NewMatrix(pe.Sp.Np, op.Kloc)
		}
		op.ComputeTimeDerivative(local, ghost, localRHS)
		pe.unshard(localRHS, p, RHS)
	})
}

// MaxStableDT is the minimum stable forward Euler step over all
// partitions.
func (pe *ParallelEvolution) MaxStableDT(U []utils.Matrix, cfl float64) (dt float64) {
	var mu sync.Mutex
	dt = math.MaxFloat64
	pe.run(U, func(p int, local, ghost []utils.Matrix) {
		cand := pe.Ops[p].MaxStableDT(local, ghost, cfl)
		mu.Lock()
		if cand < dt {
			dt = cand
		}
		mu.Unlock()
	})
	return
}
