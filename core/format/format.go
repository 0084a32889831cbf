// Package format renders unit containers and quantities as text. It is a
// consumer of the core: it reads only a magnitude and a container and never
// participates in unit algebra. The plain style round-trips through the
// expression parser; pretty and latex are for display only.
package format

import (
	"strconv"
	"strings"

	"github.com/MySchizoBuddy/pint/core/rational"
	"github.com/MySchizoBuddy/pint/core/unit"
)

// Style selects the rendering dialect.
type Style int

const (
	// Plain is the canonical parseable form: "meter / second ** 2".
	Plain Style = iota
	// Pretty uses the middle dot and superscript exponents: "meter·second⁻²".
	Pretty
	// Latex renders math-mode markup: "meter \cdot second^{-2}".
	Latex
)

// Options configures rendering.
type Options struct {
	Style Style
	// Abbreviated replaces unit names with their symbols: "m·s⁻²".
	Abbreviated bool
}

// Units renders a container. The registry is consulted only for symbols
// when Abbreviated is set; it may be nil otherwise.
func Units(reg *unit.Registry, c unit.Container, opts Options) string {
	if c.IsDimensionless() {
		return "dimensionless"
	}
	if opts.Style == Plain && !opts.Abbreviated {
		return c.String()
	}

	type entry struct {
		label string
		exp   rational.Rational
	}
	entries := make([]entry, 0, c.Len())
	for _, name := range c.Names() {
		entries = append(entries, entry{label: label(reg, name, opts), exp: c.Exponent(name)})
	}

	switch opts.Style {
	case Pretty:
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = e.label + superscript(e.exp)
		}
		return strings.Join(parts, "·")
	case Latex:
		parts := make([]string, len(entries))
		for i, e := range entries {
			if e.exp.IsOne() {
				parts[i] = e.label
			} else {
				parts[i] = e.label + "^{" + e.exp.String() + "}"
			}
		}
		return strings.Join(parts, ` \cdot `)
	default:
		// Plain with symbols: same shape as Container.String.
		var pos, neg []entry
		for _, e := range entries {
			if e.exp.Sign() < 0 {
				neg = append(neg, entry{e.label, e.exp.Neg()})
			} else {
				pos = append(pos, e)
			}
		}
		var b strings.Builder
		if len(pos) == 0 {
			b.WriteString("1")
		}
		for i, e := range pos {
			if i > 0 {
				b.WriteString(" * ")
			}
			writePlain(&b, e.label, e.exp)
		}
		for _, e := range neg {
			b.WriteString(" / ")
			writePlain(&b, e.label, e.exp)
		}
		return b.String()
	}
}

// Quantity renders a magnitude and its units.
func Quantity(reg *unit.Registry, magnitude float64, c unit.Container, opts Options) string {
	return strconv.FormatFloat(magnitude, 'g', -1, 64) + " " + Units(reg, c, opts)
}

func label(reg *unit.Registry, name string, opts Options) string {
	if !opts.Abbreviated || reg == nil {
		return name
	}
	def, err := reg.GetDefinition(name)
	if err != nil || def.Symbol == "" {
		return name
	}
	return def.Symbol
}

func writePlain(b *strings.Builder, label string, exp rational.Rational) {
	b.WriteString(label)
	if exp.IsOne() {
		return
	}
	b.WriteString(" ** ")
	if exp.IsInt() {
		b.WriteString(exp.String())
	} else {
		b.WriteString("(" + exp.String() + ")")
	}
}

var superscripts = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'-': '⁻', '/': 'ᐟ',
}

// superscript renders an exponent in superscript digits; the unit exponent
// renders as the empty string.
func superscript(exp rational.Rational) string {
	if exp.IsOne() {
		return ""
	}
	var b strings.Builder
	for _, r := range exp.String() {
		if s, ok := superscripts[r]; ok {
			b.WriteRune(s)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
