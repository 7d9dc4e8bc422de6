package scale

import (
	"fmt"
	"testing"
)

func TestSqrt(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{9, 3},
		{1, 1},
		{4, 2},
		{0, 0},
		{-4, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := Sqrt(tt.in); got != tt.want {
				t.Errorf("Sqrt(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{1, "1"},
		{1.5, "1.5"},
		{2.0000001, "2"},
		{0.1234567, "0.123457"},
		{-2.5, "-2.5"},
		{-0.0000001, "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOrdinalFirstSeenOrder(t *testing.T) {
	o := NewOrdinal[int](nil, WrapCycle)
	if got := o.Color(7); got != Category10[0] {
		t.Errorf("first key = %s, want %s", got, Category10[0])
	}
	if got := o.Color(3); got != Category10[1] {
		t.Errorf("second key = %s, want %s", got, Category10[1])
	}
	if got := o.Color(7); got != Category10[0] {
		t.Errorf("repeat key changed color: %s", got)
	}
	if d := o.Domain(); len(d) != 2 || d[0] != 7 || d[1] != 3 {
		t.Errorf("Domain = %v", d)
	}
}

func TestOrdinalWrapCycle(t *testing.T) {
	o := NewOrdinal[int](nil, WrapCycle)
	for i := range 10 {
		o.Color(i)
	}
	if got := o.Color(10); got != Category10[0] {
		t.Errorf("11th key = %s, want %s", got, Category10[0])
	}
}

func TestOrdinalWrapShade(t *testing.T) {
	o := NewOrdinal[int](nil, WrapShade)
	for i := range 10 {
		if got := o.Color(i); got != Category10[i] {
			t.Fatalf("first pass key %d = %s, want %s", i, got, Category10[i])
		}
	}
	second := o.Color(10)
	third := o.Color(20)
	if second == Category10[0] || third == second {
		t.Errorf("wrapped keys should be distinct shades: %s, %s", second, third)
	}
}

func TestParseWrapPolicy(t *testing.T) {
	for in, want := range map[string]WrapPolicy{"": WrapCycle, "cycle": WrapCycle, "SHADE": WrapShade} {
		got, err := ParseWrapPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseWrapPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseWrapPolicy("rainbow"); err == nil {
		t.Error("unknown policy should fail")
	}
}

func TestParsePalette(t *testing.T) {
	p, err := ParsePalette("tableau10")
	if err != nil || p[0] != Tableau10[0] {
		t.Errorf("tableau10 = %v, %v", p, err)
	}
	p, err = ParsePalette("#FF0000, #00ff00")
	if err != nil || len(p) != 2 || p[0] != "#ff0000" {
		t.Errorf("custom palette = %v, %v", p, err)
	}
	if _, err := ParsePalette("#ff0000,nope"); err == nil {
		t.Error("invalid color should fail")
	}
}

func ExampleOrdinal() {
	color := NewOrdinal[int](nil, WrapCycle)
	fmt.Println(color.Color(1), color.Color(2), color.Color(1))
	// Output: #1f77b4 #ff7f0e #1f77b4
}
