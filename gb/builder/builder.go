// Package builder implements the matrix assembler (spec §4.5/§6 C6): the
// public entry point that accepts polynomials and S-pairs, drives the row
// builder across a worker pool, and assembles the drained rows into a
// sorted, quad-partitioned matrix.
package builder

import (
	"context"
	"runtime"
	"sort"

	"github.com/f4core/f4matrix/gb/column"
	"github.com/f4core/f4matrix/gb/matrix"
	"github.com/f4core/f4matrix/gb/preblock"
	"github.com/f4core/f4matrix/gb/rowbuild"
	"github.com/f4core/f4matrix/internal/algo_utils"
	"github.com/f4core/f4matrix/internal/taskpool"
	"github.com/f4core/f4matrix/ring"
	"github.com/f4core/f4matrix/utils/parallel"
)

// MatrixBuilder is the reusable matrix assembler: callers queue work with
// AddPoly/AddPolyMultiple/AddSPair, then call BuildAndClear to drive the
// parallel phase and drain the result. It can be reused for a second build
// once BuildAndClear returns.
type MatrixBuilder struct {
	basis   ring.Basis
	rng     ring.Ring
	colMap  *column.Map
	workers int
	quantum int

	pending           []rowbuild.Task
	ownedDesiredLeads []ring.Mono
}

// New returns a MatrixBuilder over basis, fanning row-building work across
// workers goroutines (workers <= 0 selects runtime.NumCPU()) and growing
// each output matrix quadrant quantum entries at a time.
func New(basis ring.Basis, workers, quantum int) *MatrixBuilder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rng := basis.Ring()
	return &MatrixBuilder{
		basis:   basis,
		rng:     rng,
		colMap:  column.New(rng),
		workers: workers,
		quantum: quantum,
	}
}

// AddPoly queues a row for poly itself (multiplier = identity).
func (b *MatrixBuilder) AddPoly(p ring.Poly) {
	b.pending = append(b.pending, rowbuild.NewSingleTask(p))
}

// AddPolyMultiple queues a row for multiplier*p. multiplier is borrowed;
// the builder takes its own copy.
func (b *MatrixBuilder) AddPolyMultiple(multiplier ring.Mono, p ring.Poly) {
	desiredLead := b.rng.AllocMono()
	b.rng.Mul(multiplier, p.LeadMonomial(), desiredLead)
	b.ownedDesiredLeads = append(b.ownedDesiredLeads, desiredLead)
	b.pending = append(b.pending, rowbuild.NewSingleTaskWithDesiredLead(p, desiredLead))
}

// AddSPair queues the S-pair row for a, b. The cofactors that bring their
// leading monomials to the lcm are derived when the task is processed; a
// and b must be monic so that the equal leading terms cancel.
func (b *MatrixBuilder) AddSPair(a, bPoly ring.Poly) {
	b.pending = append(b.pending, rowbuild.NewPairTask(a, bPoly))
}

// BuildAndClear drains all queued work (and any reducer tasks it spawns
// along the way) across the builder's worker pool, assembles the result
// into a QuadMatrix, and resets the builder for reuse. The returned
// matrix's LeftMonomials/RightMonomials are freshly owned by the caller.
func (b *MatrixBuilder) BuildAndClear() (matrix.QuadMatrix, error) {
	blocks := make([]*preblock.Block, b.workers)
	scratches := make([]*rowbuild.Scratch, b.workers)
	for i := range blocks {
		blocks[i] = preblock.NewBlock()
		scratches[i] = rowbuild.NewScratch(b.rng)
	}

	pool := taskpool.New[rowbuild.Task](b.workers)
	work := func(workerID int, task rowbuild.Task, feeder taskpool.Feeder[rowbuild.Task]) error {
		return rowbuild.Process(b.basis, b.colMap, task, blocks[workerID], scratches[workerID], feeder)
	}
	runErr := pool.Run(context.Background(), b.pending, work)

	for _, s := range scratches {
		s.Free(b.rng)
	}
	for _, m := range b.ownedDesiredLeads {
		b.rng.FreeMono(m)
	}
	b.pending = nil
	b.ownedDesiredLeads = nil

	if runErr != nil {
		b.colMap.Clear()
		return matrix.QuadMatrix{}, runErr
	}

	qm := b.assemble(blocks)
	b.colMap.Clear()
	return qm, nil
}

// assemble implements spec §4.5's single-threaded post-pass: gather each
// side's column monomials, sort both sides into descending monomial order
// (the two sides sorted concurrently, mirroring gnark's
// utils/parallel.Execute usage for independent fixed-range work), push the
// resulting permutation back into the column map's translation table, then
// drain every worker's pre-block into the final quad-partitioned matrix.
func (b *MatrixBuilder) assemble(blocks []*preblock.Block) matrix.QuadMatrix {
	leftMonos := make([]ring.Mono, b.colMap.LeftCount())
	rightMonos := make([]ring.Mono, b.colMap.RightCount())
	b.colMap.Walk(func(gci column.GCI, mono ring.Mono, rec column.Record) {
		owned := b.rng.AllocMono()
		b.rng.Copy(mono, owned)
		if rec.Side == column.Left {
			leftMonos[rec.LocalIndex] = owned
		} else {
			rightMonos[rec.LocalIndex] = owned
		}
	})

	sides := [2][]ring.Mono{leftMonos, rightMonos}
	perms := [2][]uint32{}
	parallel.Execute(0, 2, func(start, end int) {
		for side := start; side < end; side++ {
			perms[side] = sortDescending(b.rng, sides[side])
		}
	}, false)
	b.colMap.ApplyPermutation(perms[0], perms[1])

	qm := matrix.QuadMatrix{
		Ring:           b.rng,
		LeftMonomials:  leftMonos,
		RightMonomials: rightMonos,
		TopLeft:        matrix.New(b.quantum),
		TopRight:       matrix.New(b.quantum),
		BottomLeft:     matrix.New(b.quantum),
		BottomRight:    matrix.New(b.quantum),
	}

	reducers := make([]*splitRow, len(leftMonos))
	for _, block := range blocks {
		for r := 0; r < block.RowCount(); r++ {
			row := block.Row(r)
			left, right := b.splitRow(row)
			if !row.IsReducer {
				writeRow(qm.BottomLeft, left)
				writeRow(qm.BottomRight, right)
				continue
			}
			if len(left) == 0 {
				panic("builder: reducer row has no left entry")
			}
			pivot := left[0].col
			if reducers[pivot] != nil {
				panic("builder: two reducer rows claim the same leading left column")
			}
			reducers[pivot] = &splitRow{left: left, right: right}
		}
	}

	// spec §8 invariant 1: topLeft row r's leading column is r. Every left
	// column was created with exactly one reducer task feeding back for
	// it, so every slot here must be filled.
	for _, sr := range reducers {
		if sr == nil {
			panic("builder: left column has no reducer row")
		}
		if inverse := b.rng.ModularInverse(sr.left[0].scalar, b.rng.Charac()); inverse != 1 {
			scaleEntries(sr.left, inverse, b.rng.Charac())
			scaleEntries(sr.right, inverse, b.rng.Charac())
		}
		writeRow(qm.TopLeft, sr.left)
		writeRow(qm.TopRight, sr.right)
	}
	return qm
}

// splitRow holds one reducer row's left and right halves, pending
// placement at its pivot column's row index.
type splitRow struct {
	left, right []entry
}

func scaleEntries(entries []entry, factor, p ring.Scalar) {
	for i := range entries {
		entries[i].scalar = ring.Scalar((uint64(entries[i].scalar) * uint64(factor)) % uint64(p))
	}
}

// sortDescending reorders monos into descending monomial order in place
// and returns the permutation (old local index -> new local index) the
// column map must apply to agree with the new order.
func sortDescending(rng ring.Ring, monos []ring.Mono) []uint32 {
	n := len(monos)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return rng.Compare(monos[order[i]], monos[order[j]]) == ring.GT
	})
	perm := algo_utils.InvertPermutation(order)
	algo_utils.Permute(monos, perm)

	out := make([]uint32, n)
	for i, p := range perm {
		out[i] = uint32(p)
	}
	return out
}

type entry struct {
	col    uint32
	scalar ring.Scalar
}

// splitRow classifies a drained row's entries into its left and right
// column halves, each normalized to strictly increasing column order
// (spec §6.2's sparse row contract).
func (b *MatrixBuilder) splitRow(row preblock.Row) (left, right []entry) {
	left = make([]entry, 0, len(row.Indices))
	right = make([]entry, 0, len(row.Indices))
	for i, gci := range row.Indices {
		rec := b.colMap.Translate(gci)
		var scalar ring.Scalar
		if row.External != nil {
			scalar = row.External[i]
		} else {
			scalar = row.Scalars[i]
		}
		if rec.Side == column.Left {
			left = append(left, entry{rec.LocalIndex, scalar})
		} else {
			right = append(right, entry{rec.LocalIndex, scalar})
		}
	}
	sort.Slice(left, func(i, j int) bool { return left[i].col < left[j].col })
	sort.Slice(right, func(i, j int) bool { return right[i].col < right[j].col })
	return left, right
}

func writeRow(m *matrix.SparseMatrix, entries []entry) {
	m.EmptyRow()
	for _, e := range entries {
		m.AppendEntry(e.col, e.scalar)
	}
	m.RowDone()
}
