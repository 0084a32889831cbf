// Package dimension models physical dimensions and dimensionality vectors.
//
// A Dimension is an opaque bracketed tag such as "[length]" or "[time]". A
// Dimensionality maps dimensions to rational exponents and forms the vector
// space in which unit compatibility is decided: two units are compatible iff
// their reduced dimensionalities are equal.
package dimension

import (
	"sort"
	"strings"

	"github.com/MySchizoBuddy/pint/core/rational"
)

// Dimension is a base or derived dimension tag, always bracketed.
type Dimension string

// Dimensionless is the empty dimension tag used for pure numbers.
const Dimensionless Dimension = "[]"

// IsValid reports whether d has the "[name]" shape.
func (d Dimension) IsValid() bool {
	s := string(d)
	return len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']'
}

// Name returns the tag without brackets ("length" for "[length]").
func (d Dimension) Name() string {
	return strings.TrimSuffix(strings.TrimPrefix(string(d), "["), "]")
}

// Dimensionality is a vector of rational exponents over dimensions.
// Zero-exponent entries are never stored. The nil map is the empty
// (dimensionless) vector.
type Dimensionality map[Dimension]rational.Rational

// New builds a Dimensionality from dimension/exponent pairs, dropping zeros.
func New(pairs map[Dimension]rational.Rational) Dimensionality {
	d := make(Dimensionality, len(pairs))
	for dim, exp := range pairs {
		if !exp.IsZero() {
			d[dim] = exp
		}
	}
	return d
}

// Single returns the vector {dim: 1}.
func Single(dim Dimension) Dimensionality {
	return Dimensionality{dim: rational.One}
}

// Mul returns the vector sum d + o (the dimensionality of a product).
func (d Dimensionality) Mul(o Dimensionality) Dimensionality {
	out := make(Dimensionality, len(d)+len(o))
	for dim, exp := range d {
		out[dim] = exp
	}
	for dim, exp := range o {
		sum := out[dim].Add(exp)
		if sum.IsZero() {
			delete(out, dim)
		} else {
			out[dim] = sum
		}
	}
	return out
}

// Div returns d - o (the dimensionality of a quotient).
func (d Dimensionality) Div(o Dimensionality) Dimensionality {
	return d.Mul(o.Pow(rational.FromInt(-1)))
}

// Pow returns d scaled by p.
func (d Dimensionality) Pow(p rational.Rational) Dimensionality {
	if p.IsZero() {
		return Dimensionality{}
	}
	out := make(Dimensionality, len(d))
	for dim, exp := range d {
		out[dim] = exp.Mul(p)
	}
	return out
}

// Equal reports whether the two vectors have identical non-zero entries.
func (d Dimensionality) Equal(o Dimensionality) bool {
	if len(d) != len(o) {
		return false
	}
	for dim, exp := range d {
		if !o[dim].Equal(exp) {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether every exponent is zero.
func (d Dimensionality) IsDimensionless() bool { return len(d) == 0 }

// String renders the vector in a stable sorted form, e.g.
// "[length] / [time] ** 2" or "[]" when dimensionless.
func (d Dimensionality) String() string {
	if len(d) == 0 {
		return string(Dimensionless)
	}
	dims := make([]string, 0, len(d))
	for dim := range d {
		dims = append(dims, string(dim))
	}
	sort.Strings(dims)

	var b strings.Builder
	for i, dim := range dims {
		exp := d[Dimension(dim)]
		if i > 0 {
			if exp.Sign() < 0 {
				b.WriteString(" / ")
				exp = exp.Neg()
			} else {
				b.WriteString(" * ")
			}
		}
		b.WriteString(dim)
		if !exp.IsOne() {
			b.WriteString(" ** ")
			b.WriteString(exp.String())
		}
	}
	return b.String()
}
