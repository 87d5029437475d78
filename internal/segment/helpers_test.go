package segment

import (
	"testing"

	"timeweave/internal/temporal"
	"timeweave/internal/tokenize"
)

// timedWords tokenizes text and gives token i the interval
// [i*step, i*step+step*0.8].
func timedWords(t *testing.T, text string, abbreviations []string, step float64) []temporal.Word {
	t.Helper()
	tokens, err := tokenize.New(abbreviations).Tokenize(text)
	if err != nil {
		t.Fatalf("tokenize %q: %v", text, err)
	}
	words := make([]temporal.Word, len(tokens))
	for i, tok := range tokens {
		words[i] = temporal.Word{
			Index:     i,
			Text:      tok.Text,
			CharStart: tok.CharStart,
			CharEnd:   tok.CharEnd,
			TimeStart: float64(i) * step,
			TimeEnd:   float64(i)*step + step*0.8,
		}
	}
	return words
}

func assertPartition(t *testing.T, name string, ranges [][2]int, total int) {
	t.Helper()
	next := 0
	for i, r := range ranges {
		if r[0] != next || r[1] < r[0] {
			t.Fatalf("%s %d: range %v does not continue at %d", name, i, r, next)
		}
		next = r[1] + 1
	}
	if next != total {
		t.Fatalf("%s cover %d items, want %d", name, next, total)
	}
}

func sentenceRanges(sentences []temporal.Sentence) [][2]int {
	out := make([][2]int, len(sentences))
	for i, s := range sentences {
		out[i] = [2]int{s.WordStart, s.WordEnd}
	}
	return out
}

func cueRanges(cues []temporal.SubtitleCue) [][2]int {
	out := make([][2]int, len(cues))
	for i, c := range cues {
		out[i] = [2]int{c.WordStart, c.WordEnd}
	}
	return out
}

func cueTexts(cues []temporal.SubtitleCue) []string {
	out := make([]string, len(cues))
	for i, c := range cues {
		out[i] = c.Text
	}
	return out
}
