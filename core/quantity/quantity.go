// Package quantity pairs a numeric magnitude with a unit container and
// implements arithmetic, comparison, and conversion with full unit
// bookkeeping. All operations delegate dimensional checks to the registry's
// conversion engine; incompatible operands fail with DimensionalityError and
// ambiguous affine arithmetic fails with OffsetUnitCalculusError.
package quantity

import (
	"math"
	"strconv"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
	"github.com/MySchizoBuddy/pint/core/rational"
	"github.com/MySchizoBuddy/pint/core/unit"
)

// Quantity is a magnitude expressed in units. The zero value is unusable;
// construct through New, NewFromString, or Parse. Methods return new
// quantities; only Ito and ItoUnits mutate, replacing magnitude and units
// together.
type Quantity struct {
	magnitude float64
	units     unit.Container
	reg       *unit.Registry
}

// New builds a quantity from a magnitude and a unit container, for example
// one obtained from Registry.Get or Registry.ParseUnits.
func New(reg *unit.Registry, magnitude float64, units unit.Container) Quantity {
	return Quantity{magnitude: magnitude, units: units, reg: reg}
}

// NewFromString builds a quantity from a magnitude and a unit expression.
func NewFromString(reg *unit.Registry, magnitude float64, units string) (Quantity, error) {
	c, err := reg.ParseUnits(units)
	if err != nil {
		return Quantity{}, err
	}
	return New(reg, magnitude, c), nil
}

// Parse builds a quantity from a combined "magnitude units" expression such
// as "2.54 centimeter" or "3 m/s**2". A bare number yields a dimensionless
// quantity.
func Parse(reg *unit.Registry, input string) (Quantity, error) {
	mag, units, err := reg.ParseExpression(input)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{magnitude: mag, units: units, reg: reg}, nil
}

// Magnitude returns the numeric value.
func (q Quantity) Magnitude() float64 { return q.magnitude }

// Units returns the unit container.
func (q Quantity) Units() unit.Container { return q.units }

// Registry returns the registry the quantity is bound to.
func (q Quantity) Registry() *unit.Registry { return q.reg }

// String renders "magnitude units", e.g. "3 meter / second".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.magnitude, 'g', -1, 64) + " " + q.units.String()
}

// MulScalar scales the magnitude, leaving units unchanged.
func (q Quantity) MulScalar(f float64) Quantity {
	return Quantity{magnitude: q.magnitude * f, units: q.units, reg: q.reg}
}

// DivScalar divides the magnitude, leaving units unchanged.
func (q Quantity) DivScalar(f float64) Quantity {
	return Quantity{magnitude: q.magnitude / f, units: q.units, reg: q.reg}
}

// Mul multiplies two quantities: magnitudes combine, exponents add per unit
// name with zero-exponent cancellation.
func (q Quantity) Mul(o Quantity) (Quantity, error) {
	a, err := q.multiplicative("multiply")
	if err != nil {
		return Quantity{}, err
	}
	b, err := o.multiplicative("multiply")
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{
		magnitude: a.magnitude * b.magnitude,
		units:     a.units.Mul(b.units),
		reg:       q.reg,
	}, nil
}

// Div divides two quantities.
func (q Quantity) Div(o Quantity) (Quantity, error) {
	a, err := q.multiplicative("divide")
	if err != nil {
		return Quantity{}, err
	}
	b, err := o.multiplicative("divide")
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{
		magnitude: a.magnitude / b.magnitude,
		units:     a.units.Div(b.units),
		reg:       q.reg,
	}, nil
}

// multiplicative prepares a quantity for use in a product or quotient.
// Affine operands are ambiguous there: with the registry's offset
// autoconversion enabled they pass through base units, otherwise the
// operation fails.
func (q Quantity) multiplicative(op string) (Quantity, error) {
	if !q.reg.ContainsOffsetUnits(q.units) {
		return q, nil
	}
	if !q.reg.Options().AutoconvertOffsetToBaseUnit {
		return Quantity{}, coreerrors.NewOffsetCalculus(op, q.units.String())
	}
	base, err := q.reg.BaseContainer(q.units)
	if err != nil {
		return Quantity{}, err
	}
	return q.ToUnits(base)
}

// Pow raises the quantity to a rational power: the magnitude is raised and
// every unit exponent is multiplied by p. Affine units cannot be
// exponentiated except by 1.
func (q Quantity) Pow(p rational.Rational) (Quantity, error) {
	if p.IsOne() {
		return q, nil
	}
	if q.reg.ContainsOffsetUnits(q.units) {
		return Quantity{}, coreerrors.NewOffsetCalculus("exponentiate", q.units.String())
	}
	return Quantity{
		magnitude: math.Pow(q.magnitude, p.Float64()),
		units:     q.units.Pow(p),
		reg:       q.reg,
	}, nil
}

// Add returns q + o in q's units. The operands must be dimensionally
// compatible; the affine rules are:
//
//	absolute + absolute -> OffsetUnitCalculusError
//	absolute + delta    -> absolute
//	delta + delta       -> delta (plain addition)
func (q Quantity) Add(o Quantity) (Quantity, error) {
	return q.addSub(o, false)
}

// Sub returns q - o in q's units. Subtracting two absolute affine
// quantities is well-defined and yields a delta quantity.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	return q.addSub(o, true)
}

func (q Quantity) addSub(o Quantity, subtract bool) (Quantity, error) {
	op := "add"
	if subtract {
		op = "subtract"
	}
	qDef, qAbs := q.reg.SingleOffsetUnit(q.units)
	oDef, oAbs := o.reg.SingleOffsetUnit(o.units)
	if !qAbs && q.reg.ContainsOffsetUnits(q.units) {
		return Quantity{}, coreerrors.NewOffsetCalculus(op, q.units.String())
	}
	if !oAbs && o.reg.ContainsOffsetUnits(o.units) {
		return Quantity{}, coreerrors.NewOffsetCalculus(op, o.units.String())
	}

	sign := 1.0
	if subtract {
		sign = -1.0
	}

	switch {
	case !qAbs && !oAbs:
		conv, err := o.ToUnits(q.units)
		if err != nil {
			return Quantity{}, err
		}
		return Quantity{magnitude: q.magnitude + sign*conv.magnitude, units: q.units, reg: q.reg}, nil

	case qAbs && oAbs:
		if !subtract {
			return Quantity{}, coreerrors.NewOffsetCalculus("add", q.units.String())
		}
		// Temperature minus temperature is a temperature difference.
		conv, err := o.ToUnits(q.units)
		if err != nil {
			return Quantity{}, err
		}
		delta, ok := q.reg.DeltaContainer(qDef)
		if !ok {
			return Quantity{}, coreerrors.NewOffsetCalculus(op, q.units.String())
		}
		return Quantity{magnitude: q.magnitude - conv.magnitude, units: delta, reg: q.reg}, nil

	case qAbs:
		// absolute ± delta stays absolute in q's units.
		delta, ok := q.reg.DeltaContainer(qDef)
		if !ok {
			return Quantity{}, coreerrors.NewOffsetCalculus(op, q.units.String())
		}
		conv, err := o.ToUnits(delta)
		if err != nil {
			return Quantity{}, err
		}
		return Quantity{magnitude: q.magnitude + sign*conv.magnitude, units: q.units, reg: q.reg}, nil

	default:
		// delta + absolute commutes; delta - absolute does not.
		if subtract {
			return Quantity{}, coreerrors.NewOffsetCalculus("subtract", o.units.String())
		}
		delta, ok := o.reg.DeltaContainer(oDef)
		if !ok {
			return Quantity{}, coreerrors.NewOffsetCalculus(op, o.units.String())
		}
		conv, err := q.ToUnits(delta)
		if err != nil {
			return Quantity{}, err
		}
		return Quantity{magnitude: o.magnitude + conv.magnitude, units: o.units, reg: o.reg}, nil
	}
}

// To converts to the units named by a target expression, returning a new
// quantity; q is unchanged.
func (q Quantity) To(target string) (Quantity, error) {
	c, err := q.reg.ParseUnits(target)
	if err != nil {
		return Quantity{}, err
	}
	return q.ToUnits(c)
}

// ToUnits converts to a target container, returning a new quantity.
func (q Quantity) ToUnits(target unit.Container) (Quantity, error) {
	mag, err := q.reg.Convert(q.magnitude, q.units, target)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{magnitude: mag, units: target, reg: q.reg}, nil
}

// ToBase converts to the registry's base units.
func (q Quantity) ToBase() (Quantity, error) {
	base, err := q.reg.BaseContainer(q.units)
	if err != nil {
		return Quantity{}, err
	}
	return q.ToUnits(base)
}

// Ito converts in place. Magnitude and units are replaced together; on
// error q is unchanged.
func (q *Quantity) Ito(target string) error {
	res, err := q.To(target)
	if err != nil {
		return err
	}
	*q = res
	return nil
}

// ItoUnits converts in place to a target container.
func (q *Quantity) ItoUnits(target unit.Container) error {
	res, err := q.ToUnits(target)
	if err != nil {
		return err
	}
	*q = res
	return nil
}

// Compare orders two dimensionally compatible quantities: -1, 0, or 1 as q
// is less than, equal to, or greater than o after converting o to q's
// units.
func (q Quantity) Compare(o Quantity) (int, error) {
	conv, err := o.ToUnits(q.units)
	if err != nil {
		return 0, err
	}
	switch {
	case q.magnitude < conv.magnitude:
		return -1, nil
	case q.magnitude > conv.magnitude:
		return 1, nil
	}
	return 0, nil
}

// Equal reports whether the two quantities denote the same value, whatever
// units each is expressed in.
func (q Quantity) Equal(o Quantity) (bool, error) {
	c, err := q.Compare(o)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}
