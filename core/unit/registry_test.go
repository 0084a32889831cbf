package unit

import (
	"errors"
	"strings"
	"sync"
	"testing"

	coreerrors "github.com/MySchizoBuddy/pint/core/errors"
	"github.com/MySchizoBuddy/pint/core/dimension"
)

const miniDefs = `
# minimal definition set
kilo- = 1e3 = k-
milli- = 1e-3 = m-

meter = [length] = m = metre
second = [time] = s = sec
kelvin = [temperature] = K

[speed] = [length] / [time]

minute = 60 * second = min
inch = 25.4 * millimeter = in
degC = kelvin; offset: 273.15 = °C = celsius
`

func miniRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := New(Options{})
	if err := reg.LoadDefinitions(strings.NewReader(miniDefs)); err != nil {
		t.Fatalf("LoadDefinitions failed: %v", err)
	}
	return reg
}

func TestLoadDefinitions(t *testing.T) {
	reg := miniRegistry(t)

	def, err := reg.GetDefinition("metre")
	if err != nil {
		t.Fatalf("GetDefinition failed: %v", err)
	}
	if def.Name != "meter" || !def.IsBase {
		t.Errorf("metre resolved to %+v, want base unit meter", def)
	}
	if def.Dimension != dimension.Dimension("[length]") {
		t.Errorf("Dimension = %q, want [length]", def.Dimension)
	}

	min, err := reg.GetDefinition("min")
	if err != nil {
		t.Fatalf("GetDefinition failed: %v", err)
	}
	if min.Name != "minute" || min.Scale != 60 {
		t.Errorf("min resolved to %+v, want minute with scale 60", min)
	}
	if !min.Reference.Equal(Single("second")) {
		t.Errorf("minute reference = %v, want {second: 1}", min.Reference)
	}
}

func TestOffsetDefinition(t *testing.T) {
	reg := miniRegistry(t)

	degC, err := reg.GetDefinition("celsius")
	if err != nil {
		t.Fatalf("GetDefinition failed: %v", err)
	}
	if !degC.IsAffine() || degC.Offset != 273.15 || degC.Scale != 1 {
		t.Errorf("degC = %+v, want affine with offset 273.15 and scale 1", degC)
	}

	// The delta counterpart is registered implicitly.
	delta, err := reg.GetDefinition("delta_degC")
	if err != nil {
		t.Fatalf("delta_degC not registered: %v", err)
	}
	if delta.IsAffine() || delta.Scale != degC.Scale {
		t.Errorf("delta_degC = %+v, want linear with the same scale", delta)
	}
	if _, err := reg.GetDefinition("delta_celsius"); err != nil {
		t.Errorf("delta alias not registered: %v", err)
	}
}

func TestForwardReferenceFails(t *testing.T) {
	reg := New(Options{})
	defs := `
meter = [length] = m
league = 3 * mile       # mile is defined later: forward references fail
mile = 5280 * foot
foot = 1200 / 3937 * meter
`
	err := reg.LoadDefinitions(strings.NewReader(defs))
	if err == nil {
		t.Fatal("LoadDefinitions should fail on forward references")
	}
	if !errors.Is(err, coreerrors.ErrUndefinedUnit) {
		t.Errorf("error = %v, want UndefinedUnitError in the chain", err)
	}
	// Atomicity: nothing from the failed load is visible.
	if _, err := reg.GetDefinition("meter"); err == nil {
		t.Error("failed load must not register anything")
	}
}

func TestDefinitionConflict(t *testing.T) {
	reg := miniRegistry(t)

	err := reg.Define("metricmin = 100 * second = min")
	if err == nil {
		t.Fatal("Define should fail when a symbol is already claimed")
	}
	var conflict *coreerrors.DefinitionConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %v, want DefinitionConflictError", err)
	}
	if conflict.Name != "min" || conflict.Existing != "minute" {
		t.Errorf("conflict = %+v, want min claimed by minute", conflict)
	}
	// The failed Define must not register the new name either.
	if _, err := reg.GetDefinition("metricmin"); err == nil {
		t.Error("failed Define must not register anything")
	}
}

func TestBaseDimensionAnchorConflict(t *testing.T) {
	reg := miniRegistry(t)
	err := reg.Define("stick = [length] = stk")
	if !errors.Is(err, coreerrors.ErrDefinitionConflict) {
		t.Errorf("error = %v, want DefinitionConflict for a re-anchored dimension", err)
	}
}

func TestDefineAppends(t *testing.T) {
	reg := miniRegistry(t)
	if err := reg.Define("hour = 60 * minute = h"); err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	factor, base, err := reg.BaseUnits(Single("hour"))
	if err != nil {
		t.Fatalf("BaseUnits failed: %v", err)
	}
	if factor != 3600 || !base.Equal(Single("second")) {
		t.Errorf("hour reduces to %v %v, want 3600 {second: 1}", factor, base)
	}
}

func TestGetReturnsCanonicalContainer(t *testing.T) {
	reg := miniRegistry(t)

	got, err := reg.Get("km")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Equal(Single("kilometer")) {
		t.Errorf("Get(\"km\") = %v, want {kilometer: 1}", got)
	}

	if _, err := reg.Get("snail_speed"); !errors.Is(err, coreerrors.ErrUndefinedUnit) {
		t.Errorf("Get of unknown unit = %v, want UndefinedUnitError", err)
	}

	empty, err := reg.Get("dimensionless")
	if err != nil || !empty.IsDimensionless() {
		t.Errorf("Get(\"dimensionless\") = %v, %v, want the empty container", empty, err)
	}
}

func TestDimensionality(t *testing.T) {
	reg := miniRegistry(t)
	units, err := reg.ParseUnits("km / min")
	if err != nil {
		t.Fatalf("ParseUnits failed: %v", err)
	}
	dims, err := reg.Dimensionality(units)
	if err != nil {
		t.Fatalf("Dimensionality failed: %v", err)
	}
	want := dimension.Single("[length]").Div(dimension.Single("[time]"))
	if !dims.Equal(want) {
		t.Errorf("Dimensionality = %v, want %v", dims, want)
	}
}

func TestDimensions(t *testing.T) {
	reg := miniRegistry(t)
	dims := reg.Dimensions()
	if dims["[length]"] != "meter" || dims["[time]"] != "second" {
		t.Errorf("Dimensions = %v, want meter/second anchors", dims)
	}
}

func TestDefinitionLineErrorsCarryLineNumbers(t *testing.T) {
	reg := New(Options{})
	defs := `
meter = [length] = m
bogus
furlong = 220 * yard
`
	err := reg.LoadDefinitions(strings.NewReader(defs))
	if err == nil {
		t.Fatal("LoadDefinitions should fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "line 3") || !strings.Contains(msg, "line 4") {
		t.Errorf("error = %q, want per-line context for both failures", msg)
	}
}

// Registered definitions are read concurrently without coordination.
func TestConcurrentReads(t *testing.T) {
	reg := miniRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := reg.ParseUnits("km / min"); err != nil {
					t.Errorf("ParseUnits failed: %v", err)
					return
				}
				if _, err := reg.Convert(1, Single("meter"), Single("inch")); err != nil {
					t.Errorf("Convert failed: %v", err)
					return
				}
			}
		}()
	}
	// One writer runs concurrently with the readers.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			_ = reg.Define("blip = 2 * second") // conflicts after the first; only serialization matters
		}
	}()
	wg.Wait()
}
