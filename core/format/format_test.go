package format

import (
	"testing"

	"github.com/MySchizoBuddy/pint/core/unit"
)

func testRegistry(t *testing.T) *unit.Registry {
	t.Helper()
	reg, err := unit.Default(unit.Options{})
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	return reg
}

func mustUnits(t *testing.T, reg *unit.Registry, input string) unit.Container {
	t.Helper()
	c, err := reg.ParseUnits(input)
	if err != nil {
		t.Fatalf("ParseUnits(%q) failed: %v", input, err)
	}
	return c
}

func TestUnitsStyles(t *testing.T) {
	reg := testRegistry(t)
	accel := mustUnits(t, reg, "meter/second**2")

	tests := []struct {
		opts Options
		want string
	}{
		{Options{Style: Plain}, "meter / second ** 2"},
		{Options{Style: Plain, Abbreviated: true}, "m / s ** 2"},
		{Options{Style: Pretty}, "meter·second⁻²"},
		{Options{Style: Pretty, Abbreviated: true}, "m·s⁻²"},
		{Options{Style: Latex}, `meter \cdot second^{-2}`},
		{Options{Style: Latex, Abbreviated: true}, `m \cdot s^{-2}`},
	}
	for _, tt := range tests {
		if got := Units(reg, accel, tt.opts); got != tt.want {
			t.Errorf("Units(style=%d, abbr=%v) = %q, want %q", tt.opts.Style, tt.opts.Abbreviated, got, tt.want)
		}
	}
}

func TestUnitsDimensionless(t *testing.T) {
	reg := testRegistry(t)
	if got := Units(reg, unit.Dimensionless(), Options{Style: Pretty}); got != "dimensionless" {
		t.Errorf("Units = %q, want %q", got, "dimensionless")
	}
}

// The plain style must parse back to the same container, symbols included.
func TestPlainRoundTrips(t *testing.T) {
	reg := testRegistry(t)
	for _, expr := range []string{"meter/second**2", "joule", "1/second", "kilometer/hour"} {
		c := mustUnits(t, reg, expr)
		for _, abbr := range []bool{false, true} {
			rendered := Units(reg, c, Options{Style: Plain, Abbreviated: abbr})
			back, err := reg.ParseUnits(rendered)
			if err != nil {
				t.Errorf("ParseUnits(%q) failed: %v", rendered, err)
				continue
			}
			if !back.Equal(c) {
				t.Errorf("round trip of %q = %v, want %v", rendered, back, c)
			}
		}
	}
}

func TestQuantityRendering(t *testing.T) {
	reg := testRegistry(t)
	c := mustUnits(t, reg, "meter/second")
	if got := Quantity(reg, 3, c, Options{Style: Plain}); got != "3 meter / second" {
		t.Errorf("Quantity = %q, want %q", got, "3 meter / second")
	}
	if got := Quantity(reg, 2.5, c, Options{Style: Pretty, Abbreviated: true}); got != "2.5 m·s⁻¹" {
		t.Errorf("Quantity = %q, want %q", got, "2.5 m·s⁻¹")
	}
}

// Units without a registered symbol fall back to their name.
func TestAbbreviatedFallsBackToName(t *testing.T) {
	reg := testRegistry(t)
	if err := reg.Define("blip = 2 * second"); err != nil {
		t.Fatal(err)
	}
	c := mustUnits(t, reg, "blip")
	if got := Units(reg, c, Options{Style: Plain, Abbreviated: true}); got != "blip" {
		t.Errorf("Units = %q, want %q", got, "blip")
	}
}
