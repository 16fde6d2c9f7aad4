package memory

import (
	"strings"
	"unicode"
)

// Tokenize lowercases and splits on anything that is not a letter or digit.
// Course and program codes like "CS101" survive as single tokens; dotted
// forms like "B.Tech" split the same way on both the document and query
// side, so they stay matchable.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
