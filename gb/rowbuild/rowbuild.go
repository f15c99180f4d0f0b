package rowbuild

import (
	"github.com/f4core/f4matrix/gb/column"
	"github.com/f4core/f4matrix/gb/preblock"
	"github.com/f4core/f4matrix/ring"
)

// Feeder lets column creation schedule a new reducer task. taskpool.Pool[Task]
// satisfies this interface structurally.
type Feeder interface {
	Submit(task Task)
}

// feedIfLeft submits a Single task for basis.Poly(divisorIdx) with the new
// column's own monomial as its desired lead, matching spec §4.4's "column
// creation side effect": a freshly created left column always gets a
// reducer task feeding back into the frontier. isNew must be the CreateColumn
// call's own isNew: a caller that lost the race and merely found the column
// already present must not feed a second reducer task for it. The new task
// borrows the column's monomial (it does not own it, so it must not free it).
func feedIfLeft(basis ring.Basis, isNew, isLeft bool, divisorIdx ring.PolyIndex, colMono ring.Mono, feeder Feeder) {
	if !isNew || !isLeft {
		return
	}
	feeder.Submit(newReducerTask(basis.Poly(divisorIdx), colMono))
}

// Scratch holds the two caller-owned scratch monomials a worker needs while
// processing tasks (spec §5: "scratch monomials... is thread-local").
type Scratch struct {
	A, B ring.Mono
}

// NewScratch allocates a worker's scratch monomials from rng.
func NewScratch(rng ring.Ring) *Scratch {
	return &Scratch{A: rng.AllocMono(), B: rng.AllocMono()}
}

// Free releases the scratch monomials back to rng.
func (s *Scratch) Free(rng ring.Ring) {
	rng.FreeMono(s.A)
	rng.FreeMono(s.B)
	s.A, s.B = nil, nil
}

// Process dispatches task to AppendRow or AppendRowSPair, matching the
// per-task branch in the original parallel-do loop.
func Process(basis ring.Basis, colMap *column.Map, task Task, block *preblock.Block, scratch *Scratch, feeder Feeder) error {
	rng := basis.Ring()
	if task.Pair != nil {
		rng.Colons(task.Poly.LeadMonomial(), task.Pair.LeadMonomial(), scratch.A, scratch.B)
		return AppendRowSPair(basis, colMap, task.Poly, scratch.A, task.Pair, scratch.B, block, feeder)
	}
	if task.DesiredLead == nil {
		rng.SetIdentity(scratch.A)
	} else {
		rng.Div(task.DesiredLead, task.Poly.LeadMonomial(), scratch.A)
	}
	return AppendRow(basis, colMap, scratch.A, task.Poly, task.IsReducer(), block, feeder)
}

// AppendRow implements spec §4.4's Single-task row assembly: the row is
// multiple*poly, stored as index-only entries borrowing poly's own
// coefficient array. Column lookups are batched two terms at a time with an
// odd-term prologue, and a miss upgrades through CreateTwoColumns before
// restarting the batch loop.
func AppendRow(basis ring.Basis, colMap *column.Map, multiple ring.Mono, poly ring.Poly, isReducer bool, block *preblock.Block, feeder Feeder) error {
	rng := basis.Ring()
	n := poly.Len()
	indices := block.MakeRowWithExternalScalars(poly.Coefficients(), n, isReducer)

	i := 0
	if n%2 == 1 {
		scratch := rng.AllocMono()
		gci, _, ok := colMap.FindProduct(poly.Monomial(0), multiple, scratch)
		rng.FreeMono(scratch)
		if !ok {
			res, err := createColumn(basis, colMap, poly.Monomial(0), multiple, feeder)
			if err != nil {
				return err
			}
			gci = res.GCI
		}
		indices[0] = gci
		i = 1
	}

	for i < n {
		tmpA, tmpB := rng.AllocMono(), rng.AllocMono()
		gciA, gciB, _, _, okA, okB := colMap.FindTwoProducts(poly.Monomial(i), poly.Monomial(i+1), multiple, tmpA, tmpB)
		rng.FreeMono(tmpA)
		rng.FreeMono(tmpB)
		if !okA || !okB {
			first, second, err := colMap.CreateTwoColumns(basis, poly.Monomial(i), poly.Monomial(i+1), multiple)
			if err != nil {
				return err
			}
			feedIfLeft(basis, first.IsNew, first.IsLeft, first.DivisorIdx, first.Mono, feeder)
			feedIfLeft(basis, second.IsNew, second.IsLeft, second.DivisorIdx, second.Mono, feeder)
			gciA, gciB = first.GCI, second.GCI
		}
		indices[i] = gciA
		indices[i+1] = gciB
		i += 2
	}
	return nil
}

// createColumn is the single-column upgrade path used by AppendRow's odd
// prologue: it always goes through CreateColumn (which itself double-checks
// before inserting), and feeds a reducer task if the column is left.
func createColumn(basis ring.Basis, colMap *column.Map, a, b ring.Mono, feeder Feeder) (column.CreateResult, error) {
	gci, mono, isNew, isLeft, divisorIdx, err := colMap.CreateColumn(basis, a, b)
	if err != nil {
		return column.CreateResult{}, err
	}
	feedIfLeft(basis, isNew, isLeft, divisorIdx, mono, feeder)
	return column.CreateResult{GCI: gci, Mono: mono, IsNew: isNew, IsLeft: isLeft, DivisorIdx: divisorIdx}, nil
}

// findOrCreateColumn resolves (a*mult)'s column, creating it if absent.
func findOrCreateColumn(basis ring.Basis, colMap *column.Map, a, mult ring.Mono, feeder Feeder) (uint32, ring.Mono, error) {
	rng := basis.Ring()
	scratch := rng.AllocMono()
	gci, mono, ok := colMap.FindProduct(a, mult, scratch)
	rng.FreeMono(scratch)
	if ok {
		return gci, mono, nil
	}
	res, err := createColumn(basis, colMap, a, mult, feeder)
	if err != nil {
		return 0, nil, err
	}
	return res.GCI, res.Mono, nil
}

// AppendRowSPair implements spec §4.4's S-pair row assembly: after
// asserting that the leading monomials of mulA*polyA and mulB*polyB are
// equal (it panics otherwise), it skips both leading terms and merge-walks
// the remaining terms of mulA*polyA and mulB*polyB in descending monomial
// order, subtracting coefficients on a match and dropping zero results,
// into a freshly allocated inline-scalar row.
func AppendRowSPair(basis ring.Basis, colMap *column.Map, polyA ring.Poly, mulA ring.Mono, polyB ring.Poly, mulB ring.Mono, block *preblock.Block, feeder Feeder) error {
	rng := basis.Ring()

	leadA, leadB := rng.AllocMono(), rng.AllocMono()
	rng.Mul(polyA.LeadMonomial(), mulA, leadA)
	rng.Mul(polyB.LeadMonomial(), mulB, leadB)
	cancels := rng.Compare(leadA, leadB) == ring.EQ
	rng.FreeMono(leadA)
	rng.FreeMono(leadB)
	if !cancels {
		panic("rowbuild: S-pair leading terms do not cancel")
	}

	iA, iB := 1, 1 // skip leading terms: they cancel by construction
	nA, nB := polyA.Len(), polyB.Len()

	maxCols := nA + nB - 2
	indices, scalars := block.MakeRow(maxCols, false)
	written := 0

	for iA < nA && iB < nB {
		gciA, monoA, err := findOrCreateColumn(basis, colMap, polyA.Monomial(iA), mulA, feeder)
		if err != nil {
			return err
		}
		gciB, monoB, err := findOrCreateColumn(basis, colMap, polyB.Monomial(iB), mulB, feeder)
		if err != nil {
			return err
		}
		cmp := rng.Compare(monoA, monoB)

		var coeff ring.Scalar
		var col uint32
		if cmp != ring.LT {
			coeff = polyA.Coefficients()[iA]
			col = gciA
			iA++
		}
		if cmp != ring.GT {
			coeff = rng.CoefSub(coeff, polyB.Coefficients()[iB])
			col = gciB
			iB++
		}
		if coeff != 0 {
			indices[written] = col
			scalars[written] = coeff
			written++
		}
	}

	for ; iA < nA; iA++ {
		gciA, _, err := findOrCreateColumn(basis, colMap, polyA.Monomial(iA), mulA, feeder)
		if err != nil {
			return err
		}
		indices[written] = gciA
		scalars[written] = polyA.Coefficients()[iA]
		written++
	}

	for ; iB < nB; iB++ {
		gciB, _, err := findOrCreateColumn(basis, colMap, polyB.Monomial(iB), mulB, feeder)
		if err != nil {
			return err
		}
		indices[written] = gciB
		scalars[written] = rng.CoefNeg(polyB.Coefficients()[iB])
		written++
	}

	block.RemoveLastEntries(block.RowCount()-1, maxCols-written)
	return nil
}
