// Package ring declares the contract the matrix-construction core consumes
// from a polynomial ring and a Gröbner basis: monomial arithmetic, field
// arithmetic on a small prime-characteristic scalar, and a leading-term
// divisor oracle. The shape follows gnark's constraint.CoeffEngine /
// crypto/polynomial.Polynomial split: a thin capability interface that a
// concrete ring implements, with no assumption baked in about how monomials
// or coefficients are represented in memory.
package ring

// Scalar is a field element of a prime field whose characteristic fits in a
// uint32. Matrix entries, polynomial coefficients, and the field
// characteristic itself are all Scalar.
type Scalar = uint32

// Mono is an opaque, ring-owned monomial handle. The core never inspects a
// Mono's representation; it only ever passes Monos back into the Ring that
// produced them. A Mono obtained from AllocMono must be paired with exactly
// one FreeMono call on every exit path.
type Mono = any

// Ordering is the result of comparing two monomials under the ring's
// admissible monomial order.
type Ordering int

const (
	LT Ordering = -1
	EQ Ordering = 0
	GT Ordering = 1
)

// PolyIndex identifies a polynomial within a Basis.
type PolyIndex = int

// Poly is a non-empty, coefficient-ordered sequence of (monomial, scalar)
// terms with a distinguished leading term (term 0). Polys are owned by the
// external basis; the core borrows them by reference for the duration of a
// single matrix build and never mutates them.
type Poly interface {
	// Len returns the number of terms.
	Len() int
	// Monomial returns the monomial of term i, 0 being the leading term.
	Monomial(i int) Mono
	// LeadMonomial is shorthand for Monomial(0).
	LeadMonomial() Mono
	// Coefficients returns the full coefficient array, term 0 first, in the
	// same order as Monomial. The core may borrow this slice directly into
	// a matrix row (see gb/preblock) rather than copying it; callers must
	// not mutate a Poly's backing storage while a build referencing it is
	// in progress.
	Coefficients() []Scalar
}

// Basis is the divisor oracle and polynomial store the core borrows from
// the (out of scope) Buchberger driver. It must tolerate concurrent readers
// for the duration of a matrix build; the driver is responsible for
// quiescing any writer before calling into the core.
type Basis interface {
	// Divisor returns the index of a polynomial in the basis whose leading
	// monomial divides m, or ok=false if none exists.
	Divisor(m Mono) (idx PolyIndex, ok bool)
	// Poly returns the polynomial at idx.
	Poly(idx PolyIndex) Poly
	// Ring returns the ring the basis' polynomials live in.
	Ring() Ring
}

// Ring is the monomial and field-arithmetic contract, matching spec §6.1.
// Every method here must be safe to call concurrently from multiple
// goroutines, provided each caller passes its own scratch Mono as out.
type Ring interface {
	// Charac returns the field's prime characteristic.
	Charac() Scalar

	// AllocMono returns a fresh, ring-scoped monomial. Every AllocMono must
	// be matched with exactly one FreeMono.
	AllocMono() Mono
	FreeMono(m Mono)

	// Mul computes a*b into out. out must not alias a or b.
	Mul(a, b, out Mono)
	// Div computes dividend/divisor into out. Precondition: divisor divides
	// dividend exactly.
	Div(dividend, divisor, out Mono)
	// Colons computes the cofactors (outACofactor, outBCofactor) such that
	// outACofactor*a = outBCofactor*b = lcm(a, b).
	Colons(a, b, outACofactor, outBCofactor Mono)
	// Compare returns the order of a relative to b under the ring's
	// admissible monomial order.
	Compare(a, b Mono) Ordering
	// Hash returns a structural hash of m: equal monomials hash equally
	// regardless of how they were computed.
	Hash(m Mono) uint64
	// HasAmpleCapacity reports whether m's exponents are within the ring's
	// representable range (used to detect exponent overflow on column
	// creation).
	HasAmpleCapacity(m Mono) bool
	// SetIdentity sets out to the multiplicative identity monomial (all
	// exponents zero).
	SetIdentity(out Mono)
	// Copy copies src into out.
	Copy(src, out Mono)

	// CoefSub returns x - y in the field.
	CoefSub(x, y Scalar) Scalar
	// CoefNeg returns -x in the field.
	CoefNeg(x Scalar) Scalar
	// ModularInverse returns the multiplicative inverse of x modulo the
	// prime p.
	ModularInverse(x, p Scalar) Scalar
}
