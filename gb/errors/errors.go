// Package errors defines the fatal, non-retryable error conditions a matrix
// build can surface (spec §6.3, §7). Internal-consistency violations (an
// S-pair whose leading terms fail to cancel, a missing reducer after
// classification) are programmer errors and are reported via panic from
// debug-mode assertions, never through these values.
package errors

import "errors"

// ErrMonomialOverflow is returned when a column's product monomial exceeds
// the ring's exponent capacity.
var ErrMonomialOverflow = errors.New("f4matrix: monomial exponent overflow")

// ErrTooManyColumns is returned when allocating a new global column index
// would exceed the 32-bit column index range.
var ErrTooManyColumns = errors.New("f4matrix: too many columns for a 32-bit index")

// ErrCharacteristicTooLarge names the condition of a ring characteristic
// that does not fit in a Scalar. No function in this module returns it:
// builder.New returns no error and performs no such check.
var ErrCharacteristicTooLarge = errors.New("f4matrix: field characteristic too large for Scalar")
