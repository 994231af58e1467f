package mirror

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatTitle turns an identifier into display words: it splits on '-', '_'
// and whitespace and before an upper-case letter that follows a lower-case
// one, then upper-cases the first letter of each word. The rest of each
// word is left as is, so "KernelSU" becomes "Kernel SU".
func FormatTitle(s string) string {
	var (
		words []string
		word  []rune
		prev  rune
	)
	flush := func() {
		if len(word) > 0 {
			words = append(words, string(word))
			word = word[:0]
		}
	}
	for _, r := range s {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			flush()
			prev = 0
			continue
		}
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			flush()
		}
		word = append(word, r)
		prev = r
	}
	flush()

	caser := cases.Title(language.Und, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}
