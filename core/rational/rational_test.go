package rational

import "testing"

func TestNewNormalizes(t *testing.T) {
	tests := []struct {
		num, den int64
		wantNum  int64
		wantDen  int64
	}{
		{1, 2, 1, 2},
		{2, 4, 1, 2},
		{-2, 4, -1, 2},
		{2, -4, -1, 2},
		{-2, -4, 1, 2},
		{0, 7, 0, 1},
		{6, 3, 2, 1},
	}
	for _, tt := range tests {
		r := New(tt.num, tt.den)
		if r.Num() != tt.wantNum || r.Den() != tt.wantDen {
			t.Errorf("New(%d, %d) = %d/%d, want %d/%d",
				tt.num, tt.den, r.Num(), r.Den(), tt.wantNum, tt.wantDen)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Rational
		wantErr bool
	}{
		{"2", FromInt(2), false},
		{"-2", FromInt(-2), false},
		{"1/2", New(1, 2), false},
		{"-1/2", New(-1, 2), false},
		{"3/6", New(1, 2), false},
		{"0.5", New(1, 2), false},
		{"-0.25", New(-1, 4), false},
		{"2.0", FromInt(2), false},
		{"", Zero, true},
		{"1/0", Zero, true},
		{"abc", Zero, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	half := New(1, 2)
	third := New(1, 3)

	if got := half.Add(third); !got.Equal(New(5, 6)) {
		t.Errorf("1/2 + 1/3 = %v, want 5/6", got)
	}
	if got := half.Sub(third); !got.Equal(New(1, 6)) {
		t.Errorf("1/2 - 1/3 = %v, want 1/6", got)
	}
	if got := half.Mul(third); !got.Equal(New(1, 6)) {
		t.Errorf("1/2 * 1/3 = %v, want 1/6", got)
	}
	if got := half.Neg(); !got.Equal(New(-1, 2)) {
		t.Errorf("-(1/2) = %v, want -1/2", got)
	}
	if got := half.Add(half); !got.IsOne() {
		t.Errorf("1/2 + 1/2 = %v, want 1", got)
	}
}

func TestZeroValueBehavesAsZero(t *testing.T) {
	var r Rational // as read from a missing map key
	if !r.IsZero() {
		t.Error("zero-value Rational should report IsZero")
	}
	if got := r.Add(One); !got.IsOne() {
		t.Errorf("zero-value + 1 = %v, want 1", got)
	}
	if r.String() != "0" {
		t.Errorf("zero-value String = %q, want %q", r.String(), "0")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		r    Rational
		want string
	}{
		{FromInt(3), "3"},
		{FromInt(-2), "-2"},
		{New(1, 2), "1/2"},
		{New(-3, 4), "-3/4"},
		{Zero, "0"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFloat64(t *testing.T) {
	if got := New(1, 4).Float64(); got != 0.25 {
		t.Errorf("1/4 as float = %v, want 0.25", got)
	}
	if got := New(-3, 2).Float64(); got != -1.5 {
		t.Errorf("-3/2 as float = %v, want -1.5", got)
	}
}
