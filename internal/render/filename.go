package render

import (
	"strings"
	"unicode"
)

const (
	maxFilenameRunes = 50
	minFilenameRunes = 3
	fallbackFilename = "exam"
)

// SafeFilename reduces s to letters, digits, '-', '_' and '.', joining
// words with '_'. Results shorter than three characters become "exam".
func SafeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	name := strings.Join(strings.Fields(b.String()), "_")
	name = strings.Trim(name, "._")

	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = strings.TrimRight(string(runes[:maxFilenameRunes]), "._")
	}
	if len([]rune(name)) < minFilenameRunes {
		return fallbackFilename
	}
	return name
}
