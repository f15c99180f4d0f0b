// Package matrix implements the output side of matrix construction (spec
// §6.2): a chunk-allocated sparse row store, and the quad-partitioned
// QuadMatrix the assembler (gb/builder) produces.
package matrix

import "github.com/f4core/f4matrix/ring"

// defaultQuantum is the number of entries each chunk grows by when a row
// needs more room than its current chunk has left (spec §6.2 "memory
// quantum"), used when a caller passes quantum <= 0.
const defaultQuantum = 1024

// SparseMatrix is a row-major sparse matrix: each row is a run of
// (column index, scalar) pairs in strictly increasing column order.
// Entries are appended one row at a time; once a row is finished with
// RowDone, earlier rows become immutable.
type SparseMatrix struct {
	quantum int

	indices []uint32
	scalars []ring.Scalar

	rowBegin []int // rowBegin[r] is the entries start offset of row r
	rowEnd   []int // rowEnd[r] is one past its last entry; -1 while open
}

// New returns an empty SparseMatrix that grows its backing arenas in chunks
// of quantum entries at a time.
func New(quantum int) *SparseMatrix {
	if quantum <= 0 {
		quantum = defaultQuantum
	}
	return &SparseMatrix{quantum: quantum}
}

// RowCount returns the number of rows appended so far, including any row
// still open (started but not yet finished with RowDone).
func (m *SparseMatrix) RowCount() int { return len(m.rowBegin) }

// EmptyRow opens a new, empty row. AppendEntry must be called once per
// entry of the row, in increasing column order, followed by RowDone.
func (m *SparseMatrix) EmptyRow() {
	m.rowBegin = append(m.rowBegin, len(m.indices))
	m.rowEnd = append(m.rowEnd, -1)
}

// AppendEntry appends one (col, scalar) entry to the currently open row.
// It grows the backing arenas by quantum entries at a time rather than on
// every single append.
func (m *SparseMatrix) AppendEntry(col uint32, scalar ring.Scalar) {
	if len(m.indices) == cap(m.indices) {
		grown := make([]uint32, len(m.indices), len(m.indices)+m.quantum)
		copy(grown, m.indices)
		m.indices = grown
		grownS := make([]ring.Scalar, len(m.scalars), len(m.scalars)+m.quantum)
		copy(grownS, m.scalars)
		m.scalars = grownS
	}
	m.indices = append(m.indices, col)
	m.scalars = append(m.scalars, scalar)
}

// RowDone closes the currently open row.
func (m *SparseMatrix) RowDone() {
	m.rowEnd[len(m.rowEnd)-1] = len(m.indices)
}

// Row returns row r's column indices and scalars.
func (m *SparseMatrix) Row(r int) ([]uint32, []ring.Scalar) {
	b, e := m.rowBegin[r], m.rowEnd[r]
	return m.indices[b:e], m.scalars[b:e]
}

// RowEntryCount returns the number of entries in row r.
func (m *SparseMatrix) RowEntryCount(r int) int {
	return m.rowEnd[r] - m.rowBegin[r]
}

// LeadCol returns row r's first (lowest) column index. The row must be
// non-empty.
func (m *SparseMatrix) LeadCol(r int) uint32 {
	return m.indices[m.rowBegin[r]]
}

// MultiplyRow scales every scalar in row r by factor, in place, modulo p.
// The assembler (gb/builder) does not call it: it scales reducer rows to a
// unitary leading coefficient before writing them.
func (m *SparseMatrix) MultiplyRow(r int, factor ring.Scalar, p ring.Scalar) {
	b, e := m.rowBegin[r], m.rowEnd[r]
	for i := b; i < e; i++ {
		m.scalars[i] = ring.Scalar((uint64(m.scalars[i]) * uint64(factor)) % uint64(p))
	}
}

// QuadMatrix is the finished, quad-partitioned matrix the assembler
// produces (spec §6.4): columns are split into "left" (columns with a
// reducer in the basis) and "right" (columns without one), each
// side sorted into descending monomial order, and every row is split into
// its left-side and right-side halves.
type QuadMatrix struct {
	Ring ring.Ring

	// LeftMonomials and RightMonomials are the column monomials for each
	// side, in the matrix's final column order (index == local column
	// index). Ownership passes to the caller once BuildAndClear returns;
	// the caller is responsible for freeing them via Ring.FreeMono.
	LeftMonomials  []ring.Mono
	RightMonomials []ring.Mono

	// TopLeft/TopRight hold reducer rows (one per left column, the row
	// whose leading term is that column); BottomLeft/BottomRight hold
	// reducee rows (every other row). A row's index in TopLeft/BottomLeft
	// matches the same row's index in TopRight/BottomRight.
	TopLeft     *SparseMatrix
	TopRight    *SparseMatrix
	BottomLeft  *SparseMatrix
	BottomRight *SparseMatrix
}
