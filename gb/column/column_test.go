package column

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f4core/f4matrix/ring"
)

func newTestBasis(t *testing.T) (*ring.Dense, *ring.DenseBasis) {
	t.Helper()
	d := ring.NewDense(2, 5, 0)
	basis := ring.NewDenseBasis(d)
	// f0 = x^2 - y, f1 = x*y - 1
	f0 := ring.NewDensePoly(d, [][]uint16{{2, 0}, {0, 1}}, []ring.Scalar{1, 4})
	f1 := ring.NewDensePoly(d, [][]uint16{{1, 1}, {0, 0}}, []ring.Scalar{1, 4})
	basis.Add(f0)
	basis.Add(f1)
	return d, basis
}

func TestCreateColumnClassifiesLeftRight(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)

	x := d.NewMonoFromExponents([]uint16{1, 0})
	one := d.NewMonoFromExponents([]uint16{0, 0})
	y := d.NewMonoFromExponents([]uint16{0, 1})

	// x*x = x^2, divisible by f0's lead -> left column
	gci1, _, isNew1, isLeft1, divIdx, err := m.CreateColumn(basis, x, x)
	require.NoError(t, err)
	assert.True(t, isNew1)
	assert.True(t, isLeft1)
	assert.Equal(t, 0, divIdx)

	// y*1 = y, not divisible by any lead -> right column
	gci2, _, _, isLeft2, _, err := m.CreateColumn(basis, y, one)
	require.NoError(t, err)
	assert.False(t, isLeft2)
	assert.NotEqual(t, gci1, gci2)

	assert.EqualValues(t, 1, m.LeftCount())
	assert.EqualValues(t, 1, m.RightCount())
}

func TestCreateColumnIsIdempotent(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)
	x := d.NewMonoFromExponents([]uint16{1, 0})

	gciA, _, isNewA, _, _, err := m.CreateColumn(basis, x, x)
	require.NoError(t, err)
	gciB, _, isNewB, _, _, err := m.CreateColumn(basis, x, x)
	require.NoError(t, err)
	assert.Equal(t, gciA, gciB, "re-creating the same product must return the existing GCI")
	assert.True(t, isNewA, "the first call creates the column")
	assert.False(t, isNewB, "the second call finds it already present")
	assert.Equal(t, 1, m.Len(), "no duplicate insert")
}

func TestFindProductMissThenCreateThenFindHits(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)
	x := d.NewMonoFromExponents([]uint16{1, 0})
	scratch := d.AllocMono()

	_, _, ok := m.FindProduct(x, x, scratch)
	assert.False(t, ok, "FindProduct should miss before the column is created")

	gci, _, _, _, _, err := m.CreateColumn(basis, x, x)
	require.NoError(t, err)

	foundGCI, _, ok := m.FindProduct(x, x, scratch)
	assert.True(t, ok)
	assert.Equal(t, gci, foundGCI)
}

func TestCreateTwoColumns(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)
	x := d.NewMonoFromExponents([]uint16{1, 0})
	y := d.NewMonoFromExponents([]uint16{0, 1})

	first, second, err := m.CreateTwoColumns(basis, x, y, x)
	require.NoError(t, err)
	assert.NotEqual(t, first.GCI, second.GCI)
	assert.Equal(t, 2, m.Len())
}

func TestConcurrentCreateColumnRacingSameProduct(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)

	const n = 32
	gcis := make([]GCI, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			a := d.NewMonoFromExponents([]uint16{1, 0})
			gci, _, _, _, _, err := m.CreateColumn(basis, a, a)
			assert.NoError(t, err)
			gcis[i] = gci
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, gcis[0], gcis[i], "racing creators of the same product must observe the same GCI")
	}
	assert.Equal(t, 1, m.Len(), "the product must be created exactly once")
}

func TestApplyPermutationRewritesLocalIndex(t *testing.T) {
	d, basis := newTestBasis(t)
	m := New(d)
	x := d.NewMonoFromExponents([]uint16{1, 0})
	y := d.NewMonoFromExponents([]uint16{0, 1})
	one := d.NewMonoFromExponents([]uint16{0, 0})

	_, _, _, _, _, err := m.CreateColumn(basis, x, x) // left, local 0
	require.NoError(t, err)
	gciY, _, _, _, _, err := m.CreateColumn(basis, y, one) // right, local 0
	require.NoError(t, err)

	m.ApplyPermutation([]uint32{5}, []uint32{7})
	assert.EqualValues(t, 7, m.Translate(gciY).LocalIndex)
}
