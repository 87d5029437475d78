package segment

import (
	"strings"
	"unicode/utf8"

	"timeweave/internal/temporal"
	"timeweave/internal/textutil"
)

// SentenceOptions configure sentence segmentation.
type SentenceOptions struct {
	// Abbreviations end in a terminal mark without ending a sentence.
	Abbreviations []string
	// MinWords is the shortest sentence, in lexical words, that is kept on
	// its own. Shorter sentences merge into the following one.
	MinWords int
	// RequireCapital only accepts a boundary that is followed by a word
	// starting a new sentence (uppercase or an inverted mark) or by the end
	// of the text.
	RequireCapital bool
	// MaxChars splits sentences whose rendered text is longer, preferring a
	// break after ";", then ":", then ",", and packing words greedily
	// otherwise. Zero disables the limit.
	MaxChars int
}

// Sentences partitions words into sentences.
func Sentences(words []temporal.Word, opts SentenceOptions) []temporal.Sentence {
	if len(words) == 0 {
		return []temporal.Sentence{}
	}
	abbreviations := make(map[string]struct{}, len(opts.Abbreviations))
	for _, abbr := range opts.Abbreviations {
		if abbr = strings.TrimSpace(abbr); abbr != "" {
			abbreviations[abbr] = struct{}{}
		}
	}

	spans := boundarySpans(words, abbreviations, opts.RequireCapital)
	spans = mergeShort(words, spans, opts.MinWords)
	if opts.MaxChars > 0 {
		spans = splitLong(words, spans, opts.MaxChars)
	}

	out := make([]temporal.Sentence, len(spans))
	for i, sp := range spans {
		out[i] = temporal.Sentence{Order: i, WordStart: sp[0], WordEnd: sp[1]}
	}
	return out
}

func boundarySpans(words []temporal.Word, abbreviations map[string]struct{}, requireCapital bool) [][2]int {
	var spans [][2]int
	start := 0
	for i := 0; i < len(words); i++ {
		text := words[i].Text
		if !endsSentence(text) {
			continue
		}
		if _, ok := abbreviations[text]; ok {
			continue
		}
		end := i
		for end+1 < len(words) && closingOnly(words[end+1].Text) {
			end++
		}
		if requireCapital && end+1 < len(words) && !startsUpper(words[end+1].Text) {
			i = end
			continue
		}
		spans = append(spans, [2]int{start, end})
		start = end + 1
		i = end
	}
	if start < len(words) {
		if len(spans) > 0 && lexicalCount(words[start:]) == 0 {
			spans[len(spans)-1][1] = len(words) - 1
		} else {
			spans = append(spans, [2]int{start, len(words) - 1})
		}
	}
	// A final sentence of bare marks, such as a stray "." or "?", belongs to
	// the sentence before it.
	if n := len(spans); n > 1 && lexicalCount(words[spans[n-1][0]:spans[n-1][1]+1]) == 0 {
		spans[n-2][1] = spans[n-1][1]
		spans = spans[:n-1]
	}
	return spans
}

// mergeShort carries sentences below minWords forward into the next one.
// The final sentence has nothing to merge into and is kept as is. A sentence
// without a lexical word always merges.
func mergeShort(words []temporal.Word, spans [][2]int, minWords int) [][2]int {
	minWords = max(minWords, 1)
	out := make([][2]int, 0, len(spans))
	carry := -1
	for i, sp := range spans {
		if carry >= 0 {
			sp[0] = carry
			carry = -1
		}
		if i < len(spans)-1 && lexicalCount(words[sp[0]:sp[1]+1]) < minWords {
			carry = sp[0]
			continue
		}
		out = append(out, sp)
	}
	return out
}

func lexicalCount(words []temporal.Word) int {
	n := 0
	for _, w := range words {
		if textutil.HasLetterOrDigit(w.Text) {
			n++
		}
	}
	return n
}

var clauseSeparators = []rune{';', ':', ','}

// splitLong breaks every span longer than maxChars into clauses, or into
// greedily packed runs of display units when no clause separator helps. A
// single unit longer than maxChars stays whole.
func splitLong(words []temporal.Word, spans [][2]int, maxChars int) [][2]int {
	out := make([][2]int, 0, len(spans))
	for _, sp := range spans {
		units := displayUnits(words[sp[0] : sp[1]+1])
		if unitsChars(units) <= maxChars {
			out = append(out, sp)
			continue
		}
		for _, piece := range splitUnits(words[sp[0]:sp[1]+1], units, maxChars) {
			out = append(out, [2]int{sp[0] + piece[0], sp[0] + piece[1]})
		}
	}
	return out
}

// splitUnits returns word ranges relative to the start of words.
func splitUnits(words []temporal.Word, units []unit, maxChars int) [][2]int {
	for _, sep := range clauseSeparators {
		clauses := splitAfter(words, units, sep)
		if len(clauses) < 2 {
			continue
		}
		var out [][2]int
		for _, clause := range clauses {
			out = append(out, packUnits(clause, maxChars)...)
		}
		return out
	}
	return packUnits(units, maxChars)
}

// splitAfter cuts units after every unit ending in sep, except the last. A
// clause never consists of separators alone.
func splitAfter(words []temporal.Word, units []unit, sep rune) [][]unit {
	var clauses [][]unit
	start := 0
	for i := 0; i < len(units)-1; i++ {
		text := trimClosing(temporal.RenderWords(words[units[i].first : units[i].last+1]))
		r, _ := utf8.DecodeLastRuneInString(text)
		if text == "" || r != sep {
			continue
		}
		if lexicalCount(words[units[start].first:units[i].last+1]) > 0 {
			clauses = append(clauses, units[start:i+1])
			start = i + 1
		}
	}
	rest := units[start:]
	if n := len(clauses); n > 0 && lexicalCount(words[rest[0].first:rest[len(rest)-1].last+1]) == 0 {
		clauses[n-1] = units[start-len(clauses[n-1]):]
		return clauses
	}
	return append(clauses, rest)
}

func packUnits(units []unit, maxChars int) [][2]int {
	var out [][2]int
	first, chars := 0, units[0].chars
	for i := 1; i < len(units); i++ {
		if next := chars + 1 + units[i].chars; next <= maxChars {
			chars = next
			continue
		}
		out = append(out, [2]int{units[first].first, units[i-1].last})
		first, chars = i, units[i].chars
	}
	return append(out, [2]int{units[first].first, units[len(units)-1].last})
}

// unitsChars is the rendered length of units joined by single spaces.
func unitsChars(units []unit) int {
	n := max(len(units)-1, 0)
	for _, u := range units {
		n += u.chars
	}
	return n
}
