package ring

// DensePoly is a reference Poly implementation over a Dense ring: a
// coefficient-ordered, leading-term-first list of (exponent vector, scalar)
// terms.
type DensePoly struct {
	ring  *Dense
	monos []Mono
	coefs []Scalar
}

// NewDensePoly builds a DensePoly from terms already sorted in descending
// monomial order (term 0 leading); it does not sort or validate the order,
// matching the "external collaborator supplies ordered polynomials"
// contract in spec §1. exps and coefs must have equal, nonzero length.
func NewDensePoly(d *Dense, exps [][]uint16, coefs []Scalar) *DensePoly {
	if len(exps) != len(coefs) || len(exps) == 0 {
		panic("ring.NewDensePoly: exps and coefs must be equal-length and nonempty")
	}
	monos := make([]Mono, len(exps))
	for i, e := range exps {
		monos[i] = d.NewMonoFromExponents(e)
	}
	cs := make([]Scalar, len(coefs))
	copy(cs, coefs)
	return &DensePoly{ring: d, monos: monos, coefs: cs}
}

func (p *DensePoly) Len() int              { return len(p.monos) }
func (p *DensePoly) Monomial(i int) Mono   { return p.monos[i] }
func (p *DensePoly) LeadMonomial() Mono    { return p.monos[0] }
func (p *DensePoly) Coefficients() []Scalar { return p.coefs }

// DenseBasis is a reference Basis implementation: a flat slice of Polys,
// with Divisor doing a linear scan for a leading monomial that divides the
// query. It is intended for tests and the demo CLI, where basis sizes are
// small; a real Buchberger driver would index this by a divisor lattice.
type DenseBasis struct {
	ring  *Dense
	polys []Poly
}

func NewDenseBasis(d *Dense) *DenseBasis {
	return &DenseBasis{ring: d}
}

func (b *DenseBasis) Add(p Poly) PolyIndex {
	b.polys = append(b.polys, p)
	return len(b.polys) - 1
}

func (b *DenseBasis) Ring() Ring { return b.ring }

func (b *DenseBasis) Poly(idx PolyIndex) Poly { return b.polys[idx] }

func (b *DenseBasis) Divisor(m Mono) (PolyIndex, bool) {
	mm := asDense(m)
	for i, p := range b.polys {
		lead := asDense(p.LeadMonomial())
		if divides(lead, mm) {
			return i, true
		}
	}
	return 0, false
}

func divides(divisor, dividend *denseMono) bool {
	for i := range divisor.exp {
		if divisor.exp[i] > dividend.exp[i] {
			return false
		}
	}
	return true
}
