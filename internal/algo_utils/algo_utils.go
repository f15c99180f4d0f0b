// Package algo_utils provides small, reusable algorithmic primitives shared
// by the matrix-construction packages.
package algo_utils

// Permute applies permutation in-place to slice. permutation[i] says which
// index slice[i] is going to. It is not thread-safe and uses permutation
// itself as scratch space; permutation is restored to its original values
// before returning.
func Permute[T any](slice []T, permutation []int) {
	var cached T
	for next := 0; next < len(permutation); next++ {

		cached = slice[next]
		j := permutation[next]
		permutation[next] = ^j
		for j >= 0 {
			cached, slice[j] = slice[j], cached
			j, permutation[j] = permutation[j], ^permutation[j]
		}
		permutation[next] = ^permutation[next]
	}
	for i := range permutation {
		permutation[i] = ^permutation[i]
	}
}

// InvertPermutation returns the inverse of permutation, which must contain
// exactly the values 0, ..., len(permutation)-1.
func InvertPermutation(permutation []int) []int {
	res := make([]int, len(permutation))
	for i := range permutation {
		res[permutation[i]] = i
	}
	return res
}
