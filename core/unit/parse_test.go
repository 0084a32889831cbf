package unit

import (
	"errors"
	"testing"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
	"github.com/MySchizoBuddy/pint/core/rational"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Default(Options{})
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	return reg
}

func TestParseUnitsGrammar(t *testing.T) {
	reg := defaultRegistry(t)

	tests := []struct {
		input string
		want  map[string]int64
	}{
		{"meter", map[string]int64{"meter": 1}},
		{"m", map[string]int64{"meter": 1}},
		{"m/s**2", map[string]int64{"meter": 1, "second": -2}},
		{"m / s ** 2", map[string]int64{"meter": 1, "second": -2}},
		{"m/s^2", map[string]int64{"meter": 1, "second": -2}},
		{"meter * second ** -2", map[string]int64{"meter": 1, "second": -2}},
		{"meter second**-2", map[string]int64{"meter": 1, "second": -2}},
		{"(meter/second)**2", map[string]int64{"meter": 2, "second": -2}},
		{"joule / newton", map[string]int64{"joule": 1, "newton": -1}},
		{"m * m / m", map[string]int64{"meter": 1}},
		{"dimensionless", map[string]int64{}},
	}
	for _, tt := range tests {
		got, err := reg.ParseUnits(tt.input)
		if err != nil {
			t.Errorf("ParseUnits(%q) failed: %v", tt.input, err)
			continue
		}
		want := intContainer(tt.want)
		if !got.Equal(want) {
			t.Errorf("ParseUnits(%q) = %v, want %v", tt.input, got, want)
		}
	}
}

func intContainer(exps map[string]int64) Container {
	m := make(map[string]rational.Rational, len(exps))
	for name, exp := range exps {
		m[name] = rational.FromInt(exp)
	}
	return NewContainer(m)
}

func TestParseExpressionMagnitude(t *testing.T) {
	reg := defaultRegistry(t)

	tests := []struct {
		input   string
		wantMag float64
		want    map[string]int64
	}{
		{"2.54 centimeter", 2.54, map[string]int64{"centimeter": 1}},
		{"2.54 * centimeter", 2.54, map[string]int64{"centimeter": 1}},
		{"3 m/s**2", 3, map[string]int64{"meter": 1, "second": -2}},
		{"(24 meter) / (8 second)", 3, map[string]int64{"meter": 1, "second": -1}},
		{"42", 42, map[string]int64{}},
		{"-1.5 kelvin", -1.5, map[string]int64{"kelvin": 1}},
		{"1e3 gram", 1000, map[string]int64{"gram": 1}},
	}
	for _, tt := range tests {
		mag, units, err := reg.ParseExpression(tt.input)
		if err != nil {
			t.Errorf("ParseExpression(%q) failed: %v", tt.input, err)
			continue
		}
		if mag != tt.wantMag {
			t.Errorf("ParseExpression(%q) magnitude = %v, want %v", tt.input, mag, tt.wantMag)
		}
		if want := intContainer(tt.want); !units.Equal(want) {
			t.Errorf("ParseExpression(%q) units = %v, want %v", tt.input, units, want)
		}
	}
}

func TestParseRationalExponents(t *testing.T) {
	reg := defaultRegistry(t)

	got, err := reg.ParseUnits("meter ** (1/2)")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	if !got.Exponent("meter").Equal(rational.New(1, 2)) {
		t.Errorf("meter exponent = %v, want 1/2", got.Exponent("meter"))
	}

	got, err = reg.ParseUnits("second ** 0.5")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	if !got.Exponent("second").Equal(rational.New(1, 2)) {
		t.Errorf("second exponent = %v, want 1/2", got.Exponent("second"))
	}

	got, err = reg.ParseUnits("second ** -(1/2)")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	if !got.Exponent("second").Equal(rational.New(-1, 2)) {
		t.Errorf("second exponent = %v, want -1/2", got.Exponent("second"))
	}
}

func TestPrefixResolution(t *testing.T) {
	reg := defaultRegistry(t)

	tests := []struct {
		input string
		want  string // canonical unit name
	}{
		{"kilometer", "kilometer"},
		{"kilometers", "kilometer"},
		{"km", "kilometer"},
		{"kms", "kilometer"},
		{"centimeter", "centimeter"},
		{"cm", "centimeter"},
		{"mV", "millivolt"},
		{"ms", "millisecond"},
		{"µs", "microsecond"},
		{"us", "microsecond"},
		{"hPa", "hectopascal"},
		{"meters", "meter"},
		{"feet", "foot"},
	}
	for _, tt := range tests {
		got, err := reg.ParseUnits(tt.input)
		if err != nil {
			t.Errorf("ParseUnits(%q) failed: %v", tt.input, err)
			continue
		}
		if !got.Equal(Single(tt.want)) {
			t.Errorf("ParseUnits(%q) = %v, want {%s: 1}", tt.input, got, tt.want)
		}
	}
}

// A unit literally named "min" must win over the milli+in decomposition.
func TestDirectMatchBeatsPrefixDecomposition(t *testing.T) {
	reg := defaultRegistry(t)
	got, err := reg.ParseUnits("min")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	if !got.Equal(Single("minute")) {
		t.Errorf("ParseUnits(\"min\") = %v, want {minute: 1}", got)
	}
}

func TestKilometerScale(t *testing.T) {
	reg := defaultRegistry(t)
	km, err := reg.ParseUnits("kilometers")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	factor, base, err := reg.BaseUnits(km)
	if err != nil {
		t.Fatalf("BaseUnits failed: %v", err)
	}
	if factor != 1000 {
		t.Errorf("kilometer base factor = %v, want 1000", factor)
	}
	if !base.Equal(Single("meter")) {
		t.Errorf("kilometer base = %v, want {meter: 1}", base)
	}
}

func TestUndefinedUnit(t *testing.T) {
	reg := defaultRegistry(t)
	_, err := reg.ParseUnits("snail_speed")
	if err == nil {
		t.Fatal("ParseUnits should fail for an unknown unit")
	}
	var undef *coreerrors.UndefinedUnitError
	if !errors.As(err, &undef) {
		t.Fatalf("error = %v, want UndefinedUnitError", err)
	}
	if undef.Name != "snail_speed" {
		t.Errorf("Name = %q, want the offending token verbatim", undef.Name)
	}
}

func TestParseErrors(t *testing.T) {
	reg := defaultRegistry(t)
	inputs := []string{
		"",
		"m//s",
		"m **",
		"(meter",
		"meter ** second",
		"2.54 centimeter to inch", // "to" is not an operator
	}
	for _, input := range inputs {
		_, _, err := reg.ParseExpression(input)
		if err == nil {
			t.Errorf("ParseExpression(%q) should fail", input)
			continue
		}
		if !errors.Is(err, coreerrors.ErrParse) && !errors.Is(err, coreerrors.ErrUndefinedUnit) {
			t.Errorf("ParseExpression(%q) error = %v, want ParseError or UndefinedUnitError", input, err)
		}
	}
}

func TestParseErrorPosition(t *testing.T) {
	reg := defaultRegistry(t)
	_, _, err := reg.ParseExpression("meter ** ")
	var perr *coreerrors.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if perr.Expression != "meter ** " {
		t.Errorf("Expression = %q, want the full input", perr.Expression)
	}
}

// Parsing is deterministic: repeated parses of one input agree.
func TestParseDeterministic(t *testing.T) {
	reg := defaultRegistry(t)
	first, err := reg.ParseUnits("kg * m / s ** 2")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := reg.ParseUnits("kg * m / s ** 2")
		if err != nil {
			t.Fatalf("ParseUnits failed: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("parse %d = %v, want %v", i, again, first)
		}
	}
}
