package algo_utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermute(t *testing.T) {
	list := []int{34, 65, 23, 2, 5}
	permutation := []int{2, 0, 1, 4, 3}
	permutationCopy := make([]int, len(permutation))
	copy(permutationCopy, permutation)

	Permute(list, permutation)
	assert.Equal(t, []int{65, 23, 34, 5, 2}, list)
	assert.Equal(t, permutationCopy, permutation)
}

func TestInvertPermutation(t *testing.T) {
	permutation := []int{2, 0, 1, 4, 3}
	inverse := InvertPermutation(permutation)
	for i, p := range permutation {
		assert.Equal(t, i, inverse[p])
	}
}
