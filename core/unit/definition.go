package unit

import (
	"strings"

	"github.com/MySchizoBuddy/pint/core/dimension"
	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
)

// Definition describes a single unit in the registry graph.
//
// A base unit anchors a dimension: IsBase is true, Reference is empty and
// Scale is 1. A derived unit's Reference and Scale come from evaluating its
// defining expression against already-loaded definitions, so the graph is
// acyclic by construction. Offset (affine) units additionally carry Offset,
// expressed in the units of Reference:
//
//	value_in_reference = value*Scale + Offset
type Definition struct {
	Name      string
	Symbol    string
	Aliases   []string
	IsBase    bool
	Dimension dimension.Dimension // anchored dimension, base units only
	Reference Container           // empty for base units and pure constants
	Scale     float64
	Offset    float64
	IsOffset  bool
	Dims      dimension.Dimensionality
}

// IsAffine reports whether the unit has a zero point distinct from the
// physical zero of its dimension.
func (d *Definition) IsAffine() bool { return d.IsOffset }

// allNames returns the definition's name, symbol, and aliases, deduplicated,
// skipping the "_" placeholder.
func (d *Definition) allNames() []string {
	names := make([]string, 0, 2+len(d.Aliases))
	seen := map[string]bool{}
	for _, n := range append([]string{d.Name, d.Symbol}, d.Aliases...) {
		if n == "" || n == "_" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// Prefix describes a multiplicative prefix (kilo, milli, ...). A prefix is
// applied at resolution time to synthesize implicit units such as
// "kilometer"; it is never a node of the definition graph.
type Prefix struct {
	Name    string
	Symbol  string
	Aliases []string
	Value   float64
}

func (p *Prefix) allNames() []string {
	names := make([]string, 0, 2+len(p.Aliases))
	seen := map[string]bool{}
	for _, n := range append([]string{p.Name, p.Symbol}, p.Aliases...) {
		if n == "" || n == "_" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// rawDefinition is one parsed definition line, before evaluation.
type rawDefinition struct {
	kind     rawKind
	name     string
	expr     string // defining expression, or "[dim]" text for base units
	symbol   string
	aliases  []string
	offset   string // textual offset value, offset units only
	hasOfs   bool
	original string // the line as written, for diagnostics
}

type rawKind int

const (
	rawBaseUnit rawKind = iota
	rawDerivedUnit
	rawPrefix
	rawDimension
)

// parseDefinitionLine splits one non-comment definition line into its raw
// fields. Syntax (fields separated by "="):
//
//	meter = [length] = m = metre          base unit
//	minute = 60 * second = min            derived unit
//	degC = kelvin; offset: 273.15 = °C    offset unit
//	kilo- = 1e3 = k-                      prefix (trailing dash)
//	[speed] = [length] / [time]           derived dimension
//
// A ";" inside the expression field introduces metadata; only the
// "offset:" key is meaningful, anything else is ignored.
func parseDefinitionLine(line string) (*rawDefinition, error) {
	original := line
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	fields := strings.Split(line, "=")
	if len(fields) < 2 {
		return nil, coreerrors.NewParse(original, -1, "definition needs at least one \"=\"")
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	name := fields[0]
	if name == "" {
		return nil, coreerrors.NewParse(original, 0, "empty definition name")
	}

	raw := &rawDefinition{original: original}

	switch {
	case strings.HasPrefix(name, "["):
		raw.kind = rawDimension
		raw.name = name
		raw.expr = fields[1]
		if len(fields) > 2 {
			return nil, coreerrors.NewParse(original, -1, "dimension definitions take no symbol or aliases")
		}
		return raw, nil

	case strings.HasSuffix(name, "-"):
		raw.kind = rawPrefix
		raw.name = strings.TrimSuffix(name, "-")
		raw.expr = fields[1]
		raw.symbol, raw.aliases = symbolAndAliases(fields[2:], true)
		return raw, nil
	}

	expr := fields[1]
	if semi := strings.IndexByte(expr, ';'); semi >= 0 {
		meta := expr[semi+1:]
		expr = strings.TrimSpace(expr[:semi])
		for _, item := range strings.Split(meta, ";") {
			key, value, found := strings.Cut(item, ":")
			if !found {
				continue
			}
			if strings.TrimSpace(key) == "offset" {
				raw.offset = strings.TrimSpace(value)
				raw.hasOfs = true
			}
			// Other metadata keys are documentation; skip them.
		}
	}

	raw.name = name
	raw.expr = expr
	raw.symbol, raw.aliases = symbolAndAliases(fields[2:], false)

	if strings.HasPrefix(expr, "[") && !strings.ContainsAny(expr, "*/^ ") {
		raw.kind = rawBaseUnit
		if raw.hasOfs {
			return nil, coreerrors.NewParse(original, -1, "base units cannot carry an offset")
		}
		return raw, nil
	}
	raw.kind = rawDerivedUnit
	return raw, nil
}

// symbolAndAliases interprets the trailing "=" fields: the first is the
// canonical symbol ("_" for none), the rest are aliases, each of which may
// itself hold a comma-separated list. Prefix fields drop a trailing dash.
func symbolAndAliases(fields []string, prefix bool) (string, []string) {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if prefix {
			s = strings.TrimSuffix(s, "-")
		}
		return s
	}
	var symbol string
	var aliases []string
	for i, f := range fields {
		for j, part := range strings.Split(f, ",") {
			part = clean(part)
			if part == "" {
				continue
			}
			if i == 0 && j == 0 {
				symbol = part
				continue
			}
			aliases = append(aliases, part)
		}
	}
	return symbol, aliases
}
