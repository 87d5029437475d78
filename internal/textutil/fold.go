package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text and strips diacritics. Transformers and casers carry
// state, so each call builds its own.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// MatchKey folds text and keeps only letters and digits. Tokens made purely
// of punctuation keep their folded form so that "." still matches ".".
func MatchKey(s string) string {
	folded := Fold(strings.TrimSpace(s))
	key := LettersOnly(folded)
	if key == "" {
		return folded
	}
	return key
}

// LettersOnly drops every rune that is not a letter or digit.
func LettersOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HasLetterOrDigit reports whether s contains at least one letter or digit.
func HasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
