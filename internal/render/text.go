package render

import "strings"

// asciiMath spells out math symbols that cp1252 cannot encode. Symbols it
// can encode (×, ÷, ±, ², ³, °) are kept.
var asciiMath = strings.NewReplacer(
	"√", "sqrt",
	"≤", "<=",
	"≥", ">=",
	"≠", "!=",
	"≈", "~=",
	"∞", "infinity",
	"π", "pi",
	"∠", "angle ",
	"⊥", " perp ",
	"∥", " parallel ",
	"→", "->",
	"←", "<-",
	"⇒", "=>",
	"−", "-",
	"∑", "sum",
	"∆", "delta ",
	"Δ", "delta ",
	"θ", "theta",
	"α", "alpha",
	"β", "beta",
	"µ", "u",
	"∈", " in ",
	"∪", " union ",
	"∩", " intersect ",
	"☐", "[ ]",
	"☑", "[x]",
	"✓", "[x]",
)

// replaceMathSymbols rewrites math symbols to ASCII fallbacks.
func replaceMathSymbols(s string) string {
	return asciiMath.Replace(s)
}
