// Package rational implements exact small-rational arithmetic for unit and
// dimension exponents. Values are normalized (positive denominator, reduced
// by gcd) so they compare with == and can serve as map values.
package rational

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is a normalized fraction num/den with den > 0.
// The zero value is not valid; use Zero, One, or a constructor.
type Rational struct {
	num int64
	den int64
}

// Zero is the rational 0/1.
var Zero = Rational{0, 1}

// One is the rational 1/1.
var One = Rational{1, 1}

// New returns the normalized rational num/den.
// A zero denominator panics: exponents never divide by zero.
func New(num, den int64) Rational {
	if den == 0 {
		panic("rational: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Zero
	}
	g := gcd(abs(num), den)
	return Rational{num / g, den / g}
}

// FromInt returns the rational n/1.
func FromInt(n int64) Rational {
	return Rational{n, 1}
}

// Parse reads a rational from its textual forms: "2", "-2", "1/2", "-1/2",
// or a finite decimal such as "0.5".
func Parse(s string) (Rational, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("empty rational")
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, err := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("invalid rational %q: %w", s, err)
		}
		den, err := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("invalid rational %q: %w", s, err)
		}
		if den == 0 {
			return Zero, fmt.Errorf("invalid rational %q: zero denominator", s)
		}
		return New(num, den), nil
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return parseDecimal(s, i)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("invalid rational %q: %w", s, err)
	}
	return FromInt(n), nil
}

func parseDecimal(s string, dot int) (Rational, error) {
	intPart := s[:dot]
	fracPart := s[dot+1:]
	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	} else if strings.HasPrefix(intPart, "+") {
		intPart = intPart[1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("invalid rational %q: %w", s, err)
	}
	den := int64(1)
	num := whole
	for _, c := range fracPart {
		if c < '0' || c > '9' {
			return Zero, fmt.Errorf("invalid rational %q", s)
		}
		num = num*10 + int64(c-'0')
		den *= 10
	}
	if neg {
		num = -num
	}
	return New(num, den), nil
}

// Num returns the normalized numerator.
func (r Rational) Num() int64 { return r.norm().num }

// Den returns the normalized denominator (always positive).
func (r Rational) Den() int64 { return r.norm().den }

// norm repairs a zero-valued Rational{0,0} into 0/1 so that method
// receivers obtained from uninitialized map reads behave as zero.
func (r Rational) norm() Rational {
	if r.den == 0 {
		return Zero
	}
	return r
}

// Add returns r + o.
func (r Rational) Add(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return New(r.num*o.den+o.num*r.den, r.den*o.den)
}

// Sub returns r - o.
func (r Rational) Sub(o Rational) Rational {
	return r.Add(o.Neg())
}

// Mul returns r * o.
func (r Rational) Mul(o Rational) Rational {
	r, o = r.norm(), o.norm()
	return New(r.num*o.num, r.den*o.den)
}

// Neg returns -r.
func (r Rational) Neg() Rational {
	r = r.norm()
	return Rational{-r.num, r.den}
}

// IsZero reports whether r == 0.
func (r Rational) IsZero() bool { return r.norm().num == 0 }

// IsOne reports whether r == 1.
func (r Rational) IsOne() bool {
	r = r.norm()
	return r.num == 1 && r.den == 1
}

// IsInt reports whether r is an integer.
func (r Rational) IsInt() bool { return r.norm().den == 1 }

// Sign returns -1, 0, or 1 by the sign of r.
func (r Rational) Sign() int {
	r = r.norm()
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	}
	return 0
}

// Equal reports whether r and o denote the same rational.
func (r Rational) Equal(o Rational) bool { return r.norm() == o.norm() }

// Float64 returns the nearest float64.
func (r Rational) Float64() float64 {
	r = r.norm()
	return float64(r.num) / float64(r.den)
}

// String renders "n" for integers and "n/d" otherwise.
func (r Rational) String() string {
	r = r.norm()
	if r.den == 1 {
		return strconv.FormatInt(r.num, 10)
	}
	return strconv.FormatInt(r.num, 10) + "/" + strconv.FormatInt(r.den, 10)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
