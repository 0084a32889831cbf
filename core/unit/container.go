// Package unit implements the unit registry: the definition store, the
// expression parser, the canonical compound-unit container, and the
// conversion engine.
//
// A Registry is built once from definition text and is read-only afterwards,
// except for Define, which appends under an exclusive lock. All other
// operations are safe for concurrent use.
package unit

import (
	"sort"
	"strings"

	"github.com/MySchizoBuddy/pint/core/rational"
)

// Container is the canonical representation of a compound unit: a mapping
// from unit name to rational exponent. Zero exponents are never stored and
// a Container is immutable once built; arithmetic returns new containers.
type Container struct {
	units map[string]rational.Rational
}

// NewContainer builds a Container from name/exponent pairs, pruning zeros.
func NewContainer(units map[string]rational.Rational) Container {
	m := make(map[string]rational.Rational, len(units))
	for name, exp := range units {
		if !exp.IsZero() {
			m[name] = exp
		}
	}
	return Container{units: m}
}

// Single returns the container {name: 1}.
func Single(name string) Container {
	return Container{units: map[string]rational.Rational{name: rational.One}}
}

// Dimensionless is the empty container.
func Dimensionless() Container {
	return Container{}
}

// Len returns the number of distinct units in the container.
func (c Container) Len() int { return len(c.units) }

// IsDimensionless reports whether the container holds no units.
func (c Container) IsDimensionless() bool { return len(c.units) == 0 }

// Exponent returns the exponent of name, zero if absent.
func (c Container) Exponent(name string) rational.Rational {
	if exp, ok := c.units[name]; ok {
		return exp
	}
	return rational.Zero
}

// Names returns the unit names in sorted order.
func (c Container) Names() []string {
	names := make([]string, 0, len(c.units))
	for name := range c.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mul returns the product container: exponents added per unit name.
func (c Container) Mul(o Container) Container {
	m := make(map[string]rational.Rational, len(c.units)+len(o.units))
	for name, exp := range c.units {
		m[name] = exp
	}
	for name, exp := range o.units {
		sum := m[name].Add(exp)
		if sum.IsZero() {
			delete(m, name)
		} else {
			m[name] = sum
		}
	}
	return Container{units: m}
}

// Div returns the quotient container: exponents subtracted per unit name.
func (c Container) Div(o Container) Container {
	return c.Mul(o.Pow(rational.FromInt(-1)))
}

// Pow returns the container with every exponent multiplied by p.
func (c Container) Pow(p rational.Rational) Container {
	if p.IsZero() {
		return Container{}
	}
	m := make(map[string]rational.Rational, len(c.units))
	for name, exp := range c.units {
		m[name] = exp.Mul(p)
	}
	return Container{units: m}
}

// Equal reports whether the two containers hold identical non-zero mappings.
func (c Container) Equal(o Container) bool {
	if len(c.units) != len(o.units) {
		return false
	}
	for name, exp := range c.units {
		oexp, ok := o.units[name]
		if !ok || !oexp.Equal(exp) {
			return false
		}
	}
	return true
}

// String renders the container in a stable form that round-trips through
// ParseUnits: positive-exponent units first, then negative ones as
// divisions, names sorted within each group. The empty container renders
// as "dimensionless".
//
//	{meter: 1, second: -2} -> "meter / second ** 2"
//	{second: -1}           -> "1 / second"
func (c Container) String() string {
	if len(c.units) == 0 {
		return "dimensionless"
	}
	var pos, neg []string
	for _, name := range c.Names() {
		if c.units[name].Sign() < 0 {
			neg = append(neg, name)
		} else {
			pos = append(pos, name)
		}
	}

	var b strings.Builder
	if len(pos) == 0 {
		b.WriteString("1")
	}
	for i, name := range pos {
		if i > 0 {
			b.WriteString(" * ")
		}
		writeUnit(&b, name, c.units[name])
	}
	for _, name := range neg {
		b.WriteString(" / ")
		writeUnit(&b, name, c.units[name].Neg())
	}
	return b.String()
}

func writeUnit(b *strings.Builder, name string, exp rational.Rational) {
	b.WriteString(name)
	if exp.IsOne() {
		return
	}
	b.WriteString(" ** ")
	if exp.IsInt() {
		b.WriteString(exp.String())
	} else {
		// Fractional exponents are parenthesized so the rendered form
		// cannot be read back as a division.
		b.WriteString("(")
		b.WriteString(exp.String())
		b.WriteString(")")
	}
}

// entries iterates the raw mapping. Internal: callers must not mutate
// assumptions about ordering.
func (c Container) entries() map[string]rational.Rational { return c.units }
