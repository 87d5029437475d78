package tokenize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"timeweave/internal/temporal"
)

// Token is one canonical token. CharStart and CharEnd are rune offsets,
// end exclusive.
type Token struct {
	Text      string
	CharStart int
	CharEnd   int
}

// Tokenizer splits text into tokens. It holds no mutable state and is safe
// for concurrent use.
type Tokenizer struct {
	abbreviations [][]rune
	set           map[string]struct{}
}

// New builds a tokenizer for the given abbreviation set. Blank entries and
// duplicates are ignored.
func New(abbreviations []string) *Tokenizer {
	set := make(map[string]struct{}, len(abbreviations))
	for _, abbr := range abbreviations {
		abbr = strings.TrimSpace(abbr)
		if abbr == "" {
			continue
		}
		set[abbr] = struct{}{}
	}
	list := make([][]rune, 0, len(set))
	for abbr := range set {
		list = append(list, []rune(abbr))
	}
	sort.Slice(list, func(i, j int) bool {
		if len(list[i]) != len(list[j]) {
			return len(list[i]) > len(list[j])
		}
		return string(list[i]) < string(list[j])
	})
	return &Tokenizer{abbreviations: list, set: set}
}

// IsAbbreviation reports whether text exactly matches a configured
// abbreviation.
func (t *Tokenizer) IsAbbreviation(text string) bool {
	_, ok := t.set[text]
	return ok
}

// Tokenize returns the tokens of text in order. Whitespace-only text yields
// no tokens.
func (t *Tokenizer) Tokenize(text string) ([]Token, error) {
	if offset, ok := invalidOffset(text); ok {
		return nil, &temporal.TokenizationError{Offset: offset}
	}
	rs := []rune(text)
	tokens := make([]Token, 0, len(rs)/4+1)
	for i := 0; i < len(rs); {
		if unicode.IsSpace(rs[i]) {
			i++
			continue
		}
		j := i
		for j < len(rs) && !unicode.IsSpace(rs[j]) {
			j++
		}
		tokens = t.scanChunk(tokens, rs, i, j)
		i = j
	}
	return tokens, nil
}

func invalidOffset(text string) (int, bool) {
	if utf8.ValidString(text) {
		return 0, false
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			return i, true
		}
		i += size
	}
	return 0, false
}

func (t *Tokenizer) scanChunk(tokens []Token, rs []rune, start, end int) []Token {
	for pos := start; pos < end; {
		n := t.matchAbbreviation(rs, start, pos, end)
		if n == 0 {
			n = matchNumber(rs, start, pos, end)
		}
		if n == 0 {
			n = matchWord(rs, pos, end)
		}
		if n == 0 {
			n = matchPunctuation(rs, start, pos, end)
		}
		tokens = append(tokens, Token{Text: string(rs[pos : pos+n]), CharStart: pos, CharEnd: pos + n})
		pos += n
	}
	return tokens
}

func (t *Tokenizer) matchAbbreviation(rs []rune, start, pos, end int) int {
	if pos > start && isWordRune(rs[pos-1]) {
		return 0
	}
	for _, abbr := range t.abbreviations {
		n := len(abbr)
		if pos+n > end || !equalRunes(rs[pos:pos+n], abbr) {
			continue
		}
		if isWordRune(abbr[n-1]) && pos+n < end && isWordRune(rs[pos+n]) {
			continue
		}
		return n
	}
	return 0
}

// matchNumber accepts an optional sign, digits and any number of "." or ","
// separated digit groups. A bare digit run glued to letters is left to
// matchWord so "3rd" stays one token.
func matchNumber(rs []rune, start, pos, end int) int {
	if pos > start && isWordRune(rs[pos-1]) {
		return 0
	}
	k := pos
	signed := false
	if (rs[k] == '-' || rs[k] == '+') && k+1 < end && unicode.IsDigit(rs[k+1]) {
		k++
		signed = true
	}
	if !unicode.IsDigit(rs[k]) {
		return 0
	}
	for k < end && unicode.IsDigit(rs[k]) {
		k++
	}
	grouped := false
	for k+1 < end && (rs[k] == '.' || rs[k] == ',') && unicode.IsDigit(rs[k+1]) {
		k++
		for k < end && unicode.IsDigit(rs[k]) {
			k++
		}
		grouped = true
	}
	if !grouped && !signed && k < end && isWordRune(rs[k]) {
		return 0
	}
	return k - pos
}

func matchWord(rs []rune, pos, end int) int {
	k := pos
	for k < end {
		switch {
		case isWordRune(rs[k]):
			k++
		case isJoiner(rs[k]) && k > pos && k+1 < end && isWordRune(rs[k+1]):
			k++
		default:
			return k - pos
		}
	}
	return k - pos
}

// matchPunctuation consumes a run of opening marks, or a run of any other
// punctuation that stops before an opening mark or a signed number.
func matchPunctuation(rs []rune, start, pos, end int) int {
	opening := isOpening(rs[pos], pos == start)
	k := pos + 1
	for k < end && !isWordRune(rs[k]) {
		if isOpening(rs[k], false) != opening {
			break
		}
		if !opening && matchNumber(rs, start, k, end) > 0 {
			break
		}
		k++
	}
	return k - pos
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-'
}

// isOpening reports whether r opens a quotation, bracket or inverted
// Spanish mark. Straight quotes only open at the start of a chunk.
func isOpening(r rune, chunkStart bool) bool {
	switch {
	case r == '¿' || r == '¡':
		return true
	case unicode.Is(unicode.Ps, r) || unicode.Is(unicode.Pi, r):
		return true
	case chunkStart && (r == '"' || r == '\''):
		return true
	}
	return false
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
