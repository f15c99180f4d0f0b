package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gberrors "github.com/f4core/f4matrix/gb/errors"
	"github.com/f4core/f4matrix/ring"
)

func TestBuildAndClearEmptyBuild(t *testing.T) {
	d := ring.NewDense(2, 5, 0)
	basis := ring.NewDenseBasis(d)
	b := New(basis, 4, 64)

	qm, err := b.BuildAndClear()
	require.NoError(t, err)
	assert.Empty(t, qm.LeftMonomials)
	assert.Empty(t, qm.RightMonomials)
	assert.Equal(t, 0, qm.TopLeft.RowCount())
	assert.Equal(t, 0, qm.TopRight.RowCount())
	assert.Equal(t, 0, qm.BottomLeft.RowCount())
	assert.Equal(t, 0, qm.BottomRight.RowCount())
}

// TestBuildAndClearAddPolyMultipleFeedsReducer is the spec's scenario B:
// add_poly_multiple(x, g1) over g1 = x^2 + y discovers a new left column
// for x*(x^2) = x^3 and feeds back a reducer task for g1, which must land
// in topLeft with its leading column being x^3.
func TestBuildAndClearAddPolyMultipleFeedsReducer(t *testing.T) {
	d := ring.NewDense(2, 5, 0)
	basis := ring.NewDenseBasis(d)
	g1 := ring.NewDensePoly(d, [][]uint16{{2, 0}, {0, 1}}, []ring.Scalar{1, 1})
	g2 := ring.NewDensePoly(d, [][]uint16{{1, 1}, {0, 0}}, []ring.Scalar{1, 1})
	basis.Add(g1)
	basis.Add(g2)

	b := New(basis, 4, 64)
	x := d.NewMonoFromExponents([]uint16{1, 0})
	b.AddPolyMultiple(x, g1)

	qm, err := b.BuildAndClear()
	require.NoError(t, err)
	require.Greater(t, qm.TopLeft.RowCount(), 0, "column creation must feed back a reducer row")

	x3 := indexOfMono(t, d, qm.LeftMonomials, []uint16{3, 0})
	found := false
	for r := 0; r < qm.TopLeft.RowCount(); r++ {
		if qm.TopLeft.LeadCol(r) == uint32(x3) {
			found = true
		}
	}
	assert.True(t, found, "topLeft must contain a row whose leading column is x^3")
}

// TestBuildAndClearNormalizesReducerLeadToUnitary is the spec's scenario C:
// a reducer row whose source polynomial has leading scalar 3 over F_5 must
// come out of the assembler with leading scalar 1, every other entry
// scaled by modular_inverse(3, 5) = 2.
func TestBuildAndClearNormalizesReducerLeadToUnitary(t *testing.T) {
	d := ring.NewDense(1, 5, 0)
	basis := ring.NewDenseBasis(d)
	f := ring.NewDensePoly(d, [][]uint16{{1}, {0}}, []ring.Scalar{3, 1})
	basis.Add(f)
	// a bare leading monomial, used only to trigger the column creation
	// that discovers f as a divisor and feeds back its reducer task.
	trigger := ring.NewDensePoly(d, [][]uint16{{2}}, []ring.Scalar{1})
	basis.Add(trigger)

	b := New(basis, 4, 64)
	b.AddPoly(trigger)

	qm, err := b.BuildAndClear()
	require.NoError(t, err)
	require.Greater(t, qm.TopLeft.RowCount(), 0)

	x2 := indexOfMono(t, d, qm.LeftMonomials, []uint16{2})
	for r := 0; r < qm.TopLeft.RowCount(); r++ {
		if qm.TopLeft.LeadCol(r) != uint32(x2) {
			continue
		}
		_, scalars := qm.TopLeft.Row(r)
		require.Len(t, scalars, 2)
		assert.Equal(t, ring.Scalar(1), scalars[0], "reducer row's leading scalar must be normalized to 1")
		assert.Equal(t, ring.Scalar(2), scalars[1], "trailing scalar must be multiplied by modular_inverse(3,5)=2")
		return
	}
	t.Fatalf("no topLeft row found with leading column x^2")
}

func TestBuildAndClearSurfacesMonomialOverflowAndStaysReusable(t *testing.T) {
	d := ring.NewDense(1, 5, 2) // exponents above 2 overflow
	basis := ring.NewDenseBasis(d)
	overflowing := ring.NewDensePoly(d, [][]uint16{{3}}, []ring.Scalar{1})
	basis.Add(overflowing)

	b := New(basis, 2, 64)
	b.AddPoly(overflowing)

	_, err := b.BuildAndClear()
	require.ErrorIs(t, err, gberrors.ErrMonomialOverflow)

	// the builder must be empty and reusable after an error.
	qm, err := b.BuildAndClear()
	require.NoError(t, err)
	assert.Empty(t, qm.LeftMonomials)
	assert.Empty(t, qm.RightMonomials)
}

func TestBuildAndClearRacingWorkersCreateColumnOnce(t *testing.T) {
	d := ring.NewDense(1, 5, 0)
	basis := ring.NewDenseBasis(d)
	f := ring.NewDensePoly(d, [][]uint16{{1}}, []ring.Scalar{1})
	basis.Add(f)

	b := New(basis, 8, 64)
	for i := 0; i < 16; i++ {
		p := ring.NewDensePoly(d, [][]uint16{{4}}, []ring.Scalar{1})
		b.AddPoly(p)
	}

	qm, err := b.BuildAndClear()
	require.NoError(t, err)
	assert.Len(t, qm.LeftMonomials, 1, "all 16 tasks racing to create column x^4 must allocate exactly one column")
}

func TestInvariantsLeftColumnsHaveDivisorsRightDoNot(t *testing.T) {
	d := ring.NewDense(2, 5, 0)
	basis := ring.NewDenseBasis(d)
	g1 := ring.NewDensePoly(d, [][]uint16{{2, 0}, {0, 1}}, []ring.Scalar{1, 1})
	g2 := ring.NewDensePoly(d, [][]uint16{{1, 1}, {0, 0}}, []ring.Scalar{1, 1})
	basis.Add(g1)
	basis.Add(g2)

	b := New(basis, 4, 64)
	b.AddSPair(g1, g2)

	qm, err := b.BuildAndClear()
	require.NoError(t, err)

	for _, m := range qm.LeftMonomials {
		_, ok := basis.Divisor(m)
		assert.True(t, ok, "every left column monomial must have a divisor in the basis")
	}
	for _, m := range qm.RightMonomials {
		_, ok := basis.Divisor(m)
		assert.False(t, ok, "every right column monomial must have no divisor in the basis")
	}

	for i := 0; i+1 < len(qm.LeftMonomials); i++ {
		assert.Equal(t, ring.GT, d.Compare(qm.LeftMonomials[i], qm.LeftMonomials[i+1]))
	}
	for i := 0; i+1 < len(qm.RightMonomials); i++ {
		assert.Equal(t, ring.GT, d.Compare(qm.RightMonomials[i], qm.RightMonomials[i+1]))
	}
}

func TestTopLeftRowsHaveUniqueUnitaryLeadingColumns(t *testing.T) {
	d := ring.NewDense(2, 5, 0)
	basis := ring.NewDenseBasis(d)
	g1 := ring.NewDensePoly(d, [][]uint16{{2, 0}, {0, 1}}, []ring.Scalar{1, 1})
	g2 := ring.NewDensePoly(d, [][]uint16{{1, 1}, {0, 0}}, []ring.Scalar{1, 1})
	basis.Add(g1)
	basis.Add(g2)

	b := New(basis, 4, 64)
	x := d.NewMonoFromExponents([]uint16{1, 0})
	b.AddPolyMultiple(x, g1)

	qm, err := b.BuildAndClear()
	require.NoError(t, err)

	seen := map[uint32]bool{}
	for r := 0; r < qm.TopLeft.RowCount(); r++ {
		lead := qm.TopLeft.LeadCol(r)
		assert.False(t, seen[lead], "leading column %d must be unique across topLeft rows", lead)
		seen[lead] = true
		assert.Equal(t, uint32(r), lead, "topLeft row r's leading column must be r")

		_, scalars := qm.TopLeft.Row(r)
		assert.Equal(t, ring.Scalar(1), scalars[0])
	}
}

func indexOfMono(t *testing.T, d *ring.Dense, monos []ring.Mono, exp []uint16) int {
	t.Helper()
	for i, m := range monos {
		match := true
		got := d.Exp(m)
		for j, e := range exp {
			if got[j] != e {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	t.Fatalf("no column with exponents %v found", exp)
	return -1
}
