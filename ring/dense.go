package ring

import (
	"fmt"
	"sync"
)

// denseMono is a fixed-arity exponent vector. It is the concrete type
// behind every Mono handed out by Dense.
type denseMono struct {
	exp []uint16
}

// Dense is a reference Ring implementation over Z/pZ[x0, ..., x(n-1)],
// ordered by graded reverse lexicographic order. It exists to let the
// matrix-construction core be exercised end to end by tests and by
// cmd/f4matdemo; it is not part of the scored matrix-construction core
// itself (see spec's upward interface, §6.1).
type Dense struct {
	Nvars    int
	Charac_  Scalar
	maxExp   uint16
	pool     sync.Pool
}

const denseMaxExp = 1<<16 - 1

// NewDense returns a Dense ring over nvars variables and the given prime
// characteristic. maxExp bounds the largest representable exponent per
// variable (0 selects the representation's natural maximum).
func NewDense(nvars int, charac Scalar, maxExp uint16) *Dense {
	if maxExp == 0 || maxExp > denseMaxExp {
		maxExp = denseMaxExp
	}
	d := &Dense{Nvars: nvars, Charac_: charac, maxExp: maxExp}
	d.pool.New = func() any {
		return &denseMono{exp: make([]uint16, nvars)}
	}
	return d
}

func asDense(m Mono) *denseMono { return m.(*denseMono) }

func (d *Dense) Charac() Scalar { return d.Charac_ }

func (d *Dense) AllocMono() Mono {
	dm := d.pool.Get().(*denseMono)
	for i := range dm.exp {
		dm.exp[i] = 0
	}
	return dm
}

func (d *Dense) FreeMono(m Mono) {
	d.pool.Put(asDense(m))
}

func (d *Dense) Mul(a, b, out Mono) {
	am, bm, om := asDense(a), asDense(b), asDense(out)
	for i := 0; i < d.Nvars; i++ {
		om.exp[i] = am.exp[i] + bm.exp[i]
	}
}

func (d *Dense) Div(dividend, divisor, out Mono) {
	am, bm, om := asDense(dividend), asDense(divisor), asDense(out)
	for i := 0; i < d.Nvars; i++ {
		if am.exp[i] < bm.exp[i] {
			panic(fmt.Sprintf("ring.Dense.Div: divisor does not divide dividend at var %d", i))
		}
		om.exp[i] = am.exp[i] - bm.exp[i]
	}
}

func (d *Dense) Colons(a, b, outACofactor, outBCofactor Mono) {
	am, bm, oa, ob := asDense(a), asDense(b), asDense(outACofactor), asDense(outBCofactor)
	for i := 0; i < d.Nvars; i++ {
		lcm := am.exp[i]
		if bm.exp[i] > lcm {
			lcm = bm.exp[i]
		}
		oa.exp[i] = lcm - am.exp[i]
		ob.exp[i] = lcm - bm.exp[i]
	}
}

func (d *Dense) degree(m *denseMono) int {
	deg := 0
	for _, e := range m.exp {
		deg += int(e)
	}
	return deg
}

// Compare implements graded reverse lexicographic order: higher total
// degree is greater; ties are broken by the rightmost variable that
// differs, where the smaller exponent there is the greater monomial.
func (d *Dense) Compare(a, b Mono) Ordering {
	am, bm := asDense(a), asDense(b)
	da, db := d.degree(am), d.degree(bm)
	if da != db {
		if da > db {
			return GT
		}
		return LT
	}
	for i := d.Nvars - 1; i >= 0; i-- {
		if am.exp[i] != bm.exp[i] {
			if am.exp[i] < bm.exp[i] {
				return GT
			}
			return LT
		}
	}
	return EQ
}

func (d *Dense) Hash(m Mono) uint64 {
	dm := asDense(m)
	var h uint64 = 14695981039346656037
	for _, e := range dm.exp {
		h ^= uint64(e)
		h *= 1099511628211
	}
	return h
}

func (d *Dense) HasAmpleCapacity(m Mono) bool {
	dm := asDense(m)
	for _, e := range dm.exp {
		if e > d.maxExp {
			return false
		}
	}
	return true
}

func (d *Dense) SetIdentity(out Mono) {
	om := asDense(out)
	for i := range om.exp {
		om.exp[i] = 0
	}
}

func (d *Dense) Copy(src, out Mono) {
	sm, om := asDense(src), asDense(out)
	copy(om.exp, sm.exp)
}

func (d *Dense) CoefSub(x, y Scalar) Scalar {
	return (x + d.Charac_ - y%d.Charac_) % d.Charac_
}

func (d *Dense) CoefNeg(x Scalar) Scalar {
	if x == 0 {
		return 0
	}
	return d.Charac_ - x%d.Charac_
}

func (d *Dense) ModularInverse(x, p Scalar) Scalar {
	return modularInverse(x, p)
}

// modularInverse returns x^-1 mod p for a prime p, via the extended
// Euclidean algorithm.
func modularInverse(x, p Scalar) Scalar {
	a, b := int64(x%p), int64(p)
	oldR, r := a, b
	oldS, s := int64(1), int64(0)
	for r != 0 {
		q := oldR / r
		oldR, r = r, oldR-q*r
		oldS, s = s, oldS-q*s
	}
	if oldS < 0 {
		oldS += int64(p)
	}
	return Scalar(oldS % int64(p))
}

// Exp returns a human-readable exponent vector for m, for tests and the
// demo CLI.
func (d *Dense) Exp(m Mono) []uint16 {
	dm := asDense(m)
	out := make([]uint16, len(dm.exp))
	copy(out, dm.exp)
	return out
}

// NewMonoFromExponents builds a Mono with the given exponent vector,
// allocated through AllocMono; the caller frees it via FreeMono.
func (d *Dense) NewMonoFromExponents(exp []uint16) Mono {
	m := d.AllocMono().(*denseMono)
	copy(m.exp, exp)
	return m
}
