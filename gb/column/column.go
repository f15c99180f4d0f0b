// Package column implements the concurrent monomial-to-column-index map
// (spec §4.2 C2) and the per-column translation table (spec §4.3 C3). The
// two are kept in one type because the spec requires the translation table
// to be appended under the very same critical section that allocates a
// column (spec §5: "the translation table — appended under the same
// mutex").
//
// The spec's own design notes (§9, "Shared map with writer lock") call a
// fully lock-free hash map unnecessary: column creation is the minority
// path, so serializing it is enough. This implementation goes one step
// further in the direction of simplicity without weakening that guarantee:
// reads take a shared sync.RWMutex.RLock (so concurrent readers never block
// each other) and the create path takes the same mutex's exclusive Lock for
// its whole check-then-insert critical section, which is exactly the
// "reader-mostly, writer-serialized" model the spec describes; no attempt
// at a truly allocation-free lock-free table is made, matching the fact
// that no example in this module's dependency corpus hand-rolls one either.
package column

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/f4core/f4matrix/gb/errors"
	"github.com/f4core/f4matrix/ring"
)

// Side identifies which half of the QuadMatrix a column belongs to.
type Side uint8

const (
	Left  Side = 0
	Right Side = 1
)

// GCI is a dense, insertion-order global column index (spec's 32-bit GCI).
type GCI = uint32

// Record is the per-GCI translation record (spec §4.3): which side a
// column belongs to, and its index within that side. Before C6's sort it is
// the insertion order within the side; after, it is the sorted position.
type Record struct {
	Side       Side
	LocalIndex uint32
}

type slot struct {
	hash uint64
	mono ring.Mono
	gci  GCI
}

// Map is the concurrent column map plus translation table. The zero value
// is not usable; construct with New.
type Map struct {
	rng ring.Ring

	mu        sync.RWMutex
	buckets   map[uint64][]slot
	translate []Record
	leftCount  uint32
	rightCount uint32

	// occupied tracks, as a debug-mode duplicate-insert assertion, which
	// GCIs have had their translation record written; every GCI must be
	// written exactly once.
	occupied *bitset.BitSet

	tmp ring.Mono // scratch product monomial, used only inside the write lock
}

// New returns an empty Map over rng.
func New(rng ring.Ring) *Map {
	return &Map{
		rng:      rng,
		buckets:  make(map[uint64][]slot),
		occupied: bitset.New(0),
		tmp:      rng.AllocMono(),
	}
}

// LeftCount and RightCount return the number of columns created so far on
// each side.
func (m *Map) LeftCount() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.leftCount
}

func (m *Map) RightCount() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rightCount
}

// Len returns the total number of columns created so far.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.translate)
}

// FindProduct looks up the column for a*b, where product is a caller-owned
// scratch monomial used to compute a*b (it is not retained). It returns
// ok=false if no such column exists yet (which may be a stale miss: another
// writer may be inserting the same product concurrently; CreateColumn
// resolves that with a double-check).
func (m *Map) FindProduct(a, b, product ring.Mono) (gci GCI, mono ring.Mono, ok bool) {
	m.rng.Mul(a, b, product)
	return m.findComputed(product)
}

func (m *Map) findComputed(product ring.Mono) (gci GCI, mono ring.Mono, ok bool) {
	h := m.rng.Hash(product)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.buckets[h] {
		if m.rng.Compare(s.mono, product) == ring.EQ {
			return s.gci, s.mono, true
		}
	}
	return 0, nil, false
}

// FindTwoProducts looks up the columns for a*mult and b*mult in one shared
// read-lock acquisition (spec §4.4's batched two-term lookup), using
// productA and productB as scratch.
func (m *Map) FindTwoProducts(a, b, mult, productA, productB ring.Mono) (gciA, gciB GCI, monoA, monoB ring.Mono, okA, okB bool) {
	m.rng.Mul(a, mult, productA)
	m.rng.Mul(b, mult, productB)
	hA := m.rng.Hash(productA)
	hB := m.rng.Hash(productB)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.buckets[hA] {
		if m.rng.Compare(s.mono, productA) == ring.EQ {
			gciA, monoA, okA = s.gci, s.mono, true
			break
		}
	}
	for _, s := range m.buckets[hB] {
		if m.rng.Compare(s.mono, productB) == ring.EQ {
			gciB, monoB, okB = s.gci, s.mono, true
			break
		}
	}
	return
}

// CreateColumn implements the writer path of spec §4.2/§4.4: under the
// single creation mutex it double-checks for a*b's product (another
// writer may have inserted it since the caller's lock-free miss), and if it
// is genuinely absent, allocates a fresh GCI, classifies the column as Left
// (a reducer exists in basis) or Right, and appends the translation record
// — all inside the one critical section, as spec §5 requires.
//
// It returns the column's GCI and owned product monomial, and whether this
// call is the one that actually created it (isNew) — only the creating call
// is owed a reducer task, so the caller (gb/rowbuild) must only feed one
// back when isNew is true; a call that lost the race and found the column
// already present must not feed a second, duplicate reducer task for it.
// When isNew is true and the column is Left, divisorIdx is the index of the
// basis polynomial whose leading monomial divides the product.
func (m *Map) CreateColumn(basis ring.Basis, a, b ring.Mono) (gci GCI, mono ring.Mono, isNew, isLeft bool, divisorIdx ring.PolyIndex, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rng.Mul(a, b, m.tmp)
	h := m.rng.Hash(m.tmp)
	for _, s := range m.buckets[h] {
		if m.rng.Compare(s.mono, m.tmp) == ring.EQ {
			rec := m.translate[s.gci]
			return s.gci, s.mono, false, rec.Side == Left, 0, nil
		}
	}

	if !m.rng.HasAmpleCapacity(m.tmp) {
		return 0, nil, false, false, 0, errors.ErrMonomialOverflow
	}

	divisorIdx, isLeft = basis.Divisor(m.tmp)

	if uint64(len(m.translate)) >= uint64(^GCI(0)) {
		return 0, nil, false, false, 0, errors.ErrTooManyColumns
	}
	newGCI := GCI(len(m.translate))

	owned := m.rng.AllocMono()
	m.rng.Copy(m.tmp, owned)

	var localIndex uint32
	if isLeft {
		localIndex = m.leftCount
		m.leftCount++
	} else {
		localIndex = m.rightCount
		m.rightCount++
	}

	m.buckets[h] = append(m.buckets[h], slot{hash: h, mono: owned, gci: newGCI})
	side := Right
	if isLeft {
		side = Left
	}
	m.translate = append(m.translate, Record{Side: side, LocalIndex: localIndex})
	if m.occupied.Test(uint(newGCI)) {
		panic("column: GCI allocated twice")
	}
	m.occupied.Set(uint(newGCI))

	return newGCI, owned, true, isLeft, divisorIdx, nil
}

// CreateTwoColumns creates the columns for monoA1*monoB and monoA2*monoB
// together (spec §4.4: "creates both missing columns at once"), returning
// one createResult per column in the same order.
func (m *Map) CreateTwoColumns(basis ring.Basis, monoA1, monoA2, monoB ring.Mono) (first, second CreateResult, err error) {
	first, err = m.createOne(basis, monoA1, monoB)
	if err != nil {
		return first, CreateResult{}, err
	}
	second, err = m.createOne(basis, monoA2, monoB)
	return first, second, err
}

// CreateResult bundles CreateColumn's return values for CreateTwoColumns.
type CreateResult struct {
	GCI        GCI
	Mono       ring.Mono
	IsNew      bool
	IsLeft     bool
	DivisorIdx ring.PolyIndex
}

func (m *Map) createOne(basis ring.Basis, a, b ring.Mono) (CreateResult, error) {
	gci, mono, isNew, isLeft, divisorIdx, err := m.CreateColumn(basis, a, b)
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{GCI: gci, Mono: mono, IsNew: isNew, IsLeft: isLeft, DivisorIdx: divisorIdx}, nil
}

// Translate returns gci's current translation record: its insertion-order
// local index before ApplyPermutation, its sorted position after.
func (m *Map) Translate(gci GCI) Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.translate[gci]
}

// ApplyPermutation rewrites every translation record's LocalIndex through
// the given per-side permutation (spec §4.5 step 3). Must only be called
// once the parallel phase has fully drained; it is not safe for concurrent
// use with FindProduct/CreateColumn.
func (m *Map) ApplyPermutation(leftPermutation, rightPermutation []uint32) {
	for i := range m.translate {
		r := &m.translate[i]
		if r.Side == Left {
			r.LocalIndex = leftPermutation[r.LocalIndex]
		} else {
			r.LocalIndex = rightPermutation[r.LocalIndex]
		}
	}
}

// Walk invokes f for every (GCI, product monomial, Record) in the map, in
// unspecified order. f must not retain mono past the call.
func (m *Map) Walk(f func(gci GCI, mono ring.Mono, rec Record)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, bucket := range m.buckets {
		for _, s := range bucket {
			f(s.gci, s.mono, m.translate[s.gci])
		}
	}
}

// Clear releases every product monomial the map owns and resets it to
// empty, ready for the next build; the scratch monomial is kept for reuse.
// It must be called after the caller has copied out any monomials it still
// needs (spec §4.5 step 6, §9 "ownership of monomials on the column
// boundary").
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, bucket := range m.buckets {
		for _, s := range bucket {
			m.rng.FreeMono(s.mono)
		}
	}
	m.buckets = make(map[uint64][]slot)
	m.translate = nil
	m.leftCount = 0
	m.rightCount = 0
	m.occupied = bitset.New(0)
}
