package unit

import (
	"math"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
	"github.com/MySchizoBuddy/pint/core/rational"
)

// exprGrammar is the participle grammar for unit and quantity expressions.
// Precedence low to high: '*'/'/' (and implicit multiplication by
// adjacency), then '**'/'^'. Examples:
//
//	"m/s**2"            -> {meter: 1, second: -2}
//	"2.54 centimeter"   -> magnitude 2.54, {centimeter: 1}
//	"(meter/second)**2" -> {meter: 2, second: -2}
//
//nolint:govet // participle grammar tags are not standard struct tags
type exprGrammar struct {
	First *termNode   `@@`
	Rest  []*exprTail `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type exprTail struct {
	Op   string    `@("*" | "/" | "·")?` // missing operator means adjacency
	Term *termNode `@@`
}

//nolint:govet // participle grammar tags are not standard struct tags
type termNode struct {
	Atom *atomNode `@@`
	Exp  *expNode  `( ("**" | "^") @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type atomNode struct {
	Neg    bool         `@"-"?`
	Number *string      `( @Number`
	Ident  *string      `| @Ident`
	Dim    *string      `| @Dim`
	Group  *exprGrammar `| "(" @@ ")" )`
}

// expNode is an exponent: an integer, a finite decimal, or a parenthesized
// rational such as "(1/2)".
//
//nolint:govet // participle grammar tags are not standard struct tags
type expNode struct {
	Neg    bool      `@"-"?`
	Number *string   `( @Number`
	Frac   *fracNode `| "(" @@ ")" )`
}

//nolint:govet // participle grammar tags are not standard struct tags
type fracNode struct {
	Neg bool    `@"-"?`
	Num string  `@Number`
	Den *string `( "/" @Number )?`
}

// exprLexer tokenizes unit expressions. Ident admits the unicode letters
// plus the symbols that appear in unit names (°, %, …); Dim is a bracketed
// dimension tag; Pow must come before Punct so "**" is one token.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]+(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?`},
	{Name: "Dim", Pattern: `\[[a-zA-Z_]*\]`},
	{Name: "Ident", Pattern: `[\p{L}_%°][\p{L}\p{N}_%°]*`},
	{Name: "Pow", Pattern: `\*\*|\^`},
	{Name: "Punct", Pattern: `[*/()\-·]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[exprGrammar](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// parseExpr parses the input into an expression tree, translating participle
// failures into ParseError with position information.
func parseExpr(input string) (*exprGrammar, error) {
	node, err := exprParser.ParseString("", input)
	if err != nil {
		pos := -1
		msg := err.Error()
		var perr participle.Error
		if coreerrors.As(err, &perr) {
			pos = perr.Position().Offset
			msg = perr.Message()
		}
		return nil, &coreerrors.ParseError{Expression: input, Position: pos, Message: msg, Err: err}
	}
	return node, nil
}

// atomResolver maps an identifier or dimension tag to its contribution: a
// scalar factor and a name→exponent mapping. Unit evaluation resolves
// identifiers against the registry and rejects dimension tags; dimension
// evaluation does the reverse.
type atomResolver struct {
	ident func(name string) (map[string]rational.Rational, error)
	dim   func(tag string) (map[string]rational.Rational, error)
}

// evalExpr folds an expression tree into (magnitude, exponent mapping).
// Numeric literals multiply into the magnitude; identifiers contribute
// exponents. The input string is carried for error reporting only.
func evalExpr(input string, node *exprGrammar, res atomResolver) (float64, map[string]rational.Rational, error) {
	mag, units, err := evalTerm(input, node.First, res)
	if err != nil {
		return 0, nil, err
	}
	for _, tail := range node.Rest {
		tmag, tunits, err := evalTerm(input, tail.Term, res)
		if err != nil {
			return 0, nil, err
		}
		if tail.Op == "/" {
			mag /= tmag
			units = mergeExponents(units, tunits, true)
		} else {
			mag *= tmag
			units = mergeExponents(units, tunits, false)
		}
	}
	return mag, units, nil
}

func evalTerm(input string, term *termNode, res atomResolver) (float64, map[string]rational.Rational, error) {
	mag, units, err := evalAtom(input, term.Atom, res)
	if err != nil {
		return 0, nil, err
	}
	if term.Exp == nil {
		return mag, units, nil
	}
	p, err := evalExponent(input, term.Exp)
	if err != nil {
		return 0, nil, err
	}
	mag = math.Pow(mag, p.Float64())
	scaled := make(map[string]rational.Rational, len(units))
	for name, exp := range units {
		prod := exp.Mul(p)
		if !prod.IsZero() {
			scaled[name] = prod
		}
	}
	return mag, scaled, nil
}

func evalAtom(input string, atom *atomNode, res atomResolver) (float64, map[string]rational.Rational, error) {
	sign := 1.0
	if atom.Neg {
		sign = -1.0
	}
	switch {
	case atom.Number != nil:
		f, err := strconv.ParseFloat(*atom.Number, 64)
		if err != nil {
			return 0, nil, coreerrors.NewParse(input, -1, "invalid number "+strconv.Quote(*atom.Number))
		}
		return sign * f, nil, nil

	case atom.Ident != nil:
		units, err := res.ident(*atom.Ident)
		if err != nil {
			return 0, nil, err
		}
		return sign, units, nil

	case atom.Dim != nil:
		units, err := res.dim(*atom.Dim)
		if err != nil {
			return 0, nil, err
		}
		return sign, units, nil

	default:
		mag, units, err := evalExpr(input, atom.Group, res)
		if err != nil {
			return 0, nil, err
		}
		return sign * mag, units, nil
	}
}

// evalExponent reads an exponent node as an exact rational. Exponents with
// scientific notation are rejected; powers of units must stay rational.
func evalExponent(input string, e *expNode) (rational.Rational, error) {
	var r rational.Rational
	var err error
	if e.Number != nil {
		r, err = rational.Parse(*e.Number)
	} else {
		text := e.Frac.Num
		if e.Frac.Den != nil {
			text += "/" + *e.Frac.Den
		}
		r, err = rational.Parse(text)
		if err == nil && e.Frac.Neg {
			r = r.Neg()
		}
	}
	if err != nil {
		return rational.Zero, coreerrors.NewParse(input, -1, "exponent must be an integer or rational: "+err.Error())
	}
	if e.Neg {
		r = r.Neg()
	}
	return r, nil
}

// mergeExponents adds (or subtracts) the right mapping into a copy of the
// left, pruning zeros.
func mergeExponents(left, right map[string]rational.Rational, subtract bool) map[string]rational.Rational {
	out := make(map[string]rational.Rational, len(left)+len(right))
	for name, exp := range left {
		out[name] = exp
	}
	for name, exp := range right {
		if subtract {
			exp = exp.Neg()
		}
		sum := out[name].Add(exp)
		if sum.IsZero() {
			delete(out, name)
		} else {
			out[name] = sum
		}
	}
	return out
}
