package render

import (
	"strings"
	"testing"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fractions", "Fractions"},
		{"Linear   equations: one variable", "Linear_equations_one_variable"},
		{"../../etc/passwd", "etcpasswd"},
		{"a/b", "exam"},
		{"  ", "exam"},
		{"勾股定理", "勾股定理"},
		{"Newton's 2nd law (F=ma)", "Newtons_2nd_law_Fma"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReplaceMathSymbols(t *testing.T) {
	got := replaceMathSymbols("x ≥ 2, y ≠ 3, π ≈ 3.14, 5 × 4 ÷ 2")
	want := "x >= 2, y != 3, pi ~= 3.14, 5 × 4 ÷ 2"
	if got != want {
		t.Errorf("replaceMathSymbols = %q, want %q", got, want)
	}
}
