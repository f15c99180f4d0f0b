// Package preblock implements the thread-local, append-only row buffer
// (spec §4.4 C4). Each worker owns exactly one Block; rows are appended by
// the row builder (gb/rowbuild) and later drained, single-threaded, by the
// matrix assembler (gb/builder).
//
// A row's scalars are either inline (packed into the block's own scalar
// arena, used when a row's coefficients are freshly computed, e.g. an
// S-pair subtraction) or external (borrowed from the source polynomial's
// own coefficient slice, legal for Single tasks since multiplying by a
// monomial never changes coefficients). Mirroring the source this was
// translated from, only the most recently appended row may be shrunk; all
// earlier rows are immutable once appended.
package preblock

import "github.com/f4core/f4matrix/ring"

type rowMeta struct {
	indicesBegin int
	entryCount   int
	scalarsBegin int          // valid only when external == nil
	external     []ring.Scalar // non-nil => row borrows these scalars
	isReducer    bool
}

// Row is a read-only view into one row of a Block.
type Row struct {
	Indices   []uint32
	Scalars   []ring.Scalar // nil if External is set
	External  []ring.Scalar // nil if Scalars is set
	IsReducer bool
}

// Block is one worker's thread-local pre-block.
type Block struct {
	indices []uint32
	scalars []ring.Scalar
	rows    []rowMeta
}

// NewBlock returns an empty Block.
func NewBlock() *Block {
	return &Block{}
}

// RowCount returns the number of rows appended so far.
func (b *Block) RowCount() int { return len(b.rows) }

// Row returns a view of row r.
func (b *Block) Row(r int) Row {
	m := b.rows[r]
	indices := b.indices[m.indicesBegin : m.indicesBegin+m.entryCount]
	if m.external != nil {
		return Row{Indices: indices, External: m.external[:m.entryCount], IsReducer: m.isReducer}
	}
	return Row{Indices: indices, Scalars: b.scalars[m.scalarsBegin : m.scalarsBegin+m.entryCount], IsReducer: m.isReducer}
}

// MakeRowWithExternalScalars appends a new row of entryCount terms whose
// scalars are borrowed from external (external[i] corresponds to the term
// whose column index the caller writes into the returned slice at i). It
// returns the index slice for the caller to fill in.
func (b *Block) MakeRowWithExternalScalars(external []ring.Scalar, entryCount int, isReducer bool) []uint32 {
	begin := len(b.indices)
	b.rows = append(b.rows, rowMeta{
		indicesBegin: begin,
		entryCount:   entryCount,
		external:     external,
		isReducer:    isReducer,
	})
	b.indices = append(b.indices, make([]uint32, entryCount)...)
	return b.indices[begin : begin+entryCount]
}

// MakeRow appends a new row of entryCount terms with freshly owned inline
// scalars, returning the index and scalar slices for the caller to fill in.
func (b *Block) MakeRow(entryCount int, isReducer bool) ([]uint32, []ring.Scalar) {
	indicesBegin := len(b.indices)
	scalarsBegin := len(b.scalars)
	b.rows = append(b.rows, rowMeta{
		indicesBegin: indicesBegin,
		entryCount:   entryCount,
		scalarsBegin: scalarsBegin,
		isReducer:    isReducer,
	})
	b.indices = append(b.indices, make([]uint32, entryCount)...)
	b.scalars = append(b.scalars, make([]ring.Scalar, entryCount)...)
	return b.indices[indicesBegin : indicesBegin+entryCount], b.scalars[scalarsBegin : scalarsBegin+entryCount]
}

// RemoveLastEntries shrinks row r's reported entry count by count. Only the
// most recently appended row (r == RowCount()-1) can be shrunk, and any
// other r panics; shrinking it also truncates the backing arenas so they
// don't carry dead entries.
func (b *Block) RemoveLastEntries(r int, count int) {
	if r != len(b.rows)-1 {
		panic("preblock: RemoveLastEntries on a row other than the most recent one")
	}
	m := &b.rows[r]
	if count > m.entryCount {
		panic("preblock: RemoveLastEntries count exceeds row's entry count")
	}
	m.entryCount -= count
	b.indices = b.indices[:len(b.indices)-count]
	if m.external == nil {
		b.scalars = b.scalars[:len(b.scalars)-count]
	}
}
