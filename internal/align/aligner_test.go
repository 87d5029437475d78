package align

import (
	"errors"
	"math"
	"testing"

	"timeweave/internal/temporal"
	"timeweave/internal/tokenize"
)

func tokensOf(t *testing.T, text string) []tokenize.Token {
	t.Helper()
	tokens, err := tokenize.New(nil).Tokenize(text)
	if err != nil {
		t.Fatalf("tokenize %q: %v", text, err)
	}
	return tokens
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func assertTiming(t *testing.T, w temporal.Word, start, end float64) {
	t.Helper()
	if !near(w.TimeStart, start) || !near(w.TimeEnd, end) {
		t.Fatalf("word %d %q timing = [%v,%v], want [%v,%v]", w.Index, w.Text, w.TimeStart, w.TimeEnd, start, end)
	}
}

func TestAlignExactMatchCopiesTiming(t *testing.T) {
	raw := []temporal.RawToken{{Text: "Hola", TimeStart: 0, TimeEnd: 0.4}, {Text: "mundo", TimeStart: 0.5, TimeEnd: 0.9}, {Text: ".", TimeStart: 0.9, TimeEnd: 0.95}}
	words, stats, err := New(DefaultOptions()).Align(tokensOf(t, "Hola mundo."), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	assertTiming(t, words[0], 0, 0.4)
	assertTiming(t, words[1], 0.5, 0.9)
	assertTiming(t, words[2], 0.9, 0.95)
	if stats.Matched != 3 || stats.Cost != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	for i, w := range words {
		if w.Index != i {
			t.Fatalf("word %d has index %d", i, w.Index)
		}
	}
}

func TestAlignIgnoresCaseAndDiacritics(t *testing.T) {
	raw := []temporal.RawToken{{Text: "CANCION", TimeStart: 1, TimeEnd: 2}, {Text: "nino", TimeStart: 2, TimeEnd: 3}}
	_, stats, err := New(DefaultOptions()).Align(tokensOf(t, "canción niño"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if stats.Matched != 2 || stats.Cost != 0 {
		t.Fatalf("expected exact folded matches, got %+v", stats)
	}
}

func TestAlignSplitsMergedRawToken(t *testing.T) {
	raw := []temporal.RawToken{{Text: "holamundo", TimeStart: 0, TimeEnd: 0.9}}
	words, stats, err := New(DefaultOptions()).Align(tokensOf(t, "hola mundo"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	assertTiming(t, words[0], 0, 0.4)
	assertTiming(t, words[1], 0.4, 0.9)
	if words[0].TimeEnd != words[1].TimeStart {
		t.Fatal("split words must share their boundary")
	}
	if stats.Split != 2 {
		t.Fatalf("expected split stats, got %+v", stats)
	}
}

func TestAlignAttachesPunctuationToRawWord(t *testing.T) {
	raw := []temporal.RawToken{{Text: "Hola,", TimeStart: 0, TimeEnd: 0.5}, {Text: "mundo", TimeStart: 0.6, TimeEnd: 1.2}}
	words, _, err := New(DefaultOptions()).Align(tokensOf(t, "Hola, mundo"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	assertTiming(t, words[0], 0, 0.4)
	assertTiming(t, words[1], 0.4, 0.5)
	assertTiming(t, words[2], 0.6, 1.2)
}

func TestAlignInterpolatesMissingTokens(t *testing.T) {
	raw := []temporal.RawToken{{Text: "alpha", TimeStart: 0, TimeEnd: 1}, {Text: "delta", TimeStart: 3, TimeEnd: 4}}
	opts := DefaultOptions()
	opts.ErrorThreshold = 0.6
	words, stats, err := New(opts).Align(tokensOf(t, "alpha bravo charlie delta"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	assertTiming(t, words[0], 0, 1)
	assertTiming(t, words[1], 1, 2)
	assertTiming(t, words[2], 2, 3)
	assertTiming(t, words[3], 3, 4)
	if stats.Interpolated != 2 {
		t.Fatalf("expected 2 interpolated words, got %+v", stats)
	}
}

func TestAlignInterpolatesAtEdges(t *testing.T) {
	raw := []temporal.RawToken{{Text: "middle", TimeStart: 2, TimeEnd: 3}}
	opts := DefaultOptions()
	opts.ErrorThreshold = 1
	words, _, err := New(opts).Align(tokensOf(t, "first middle last"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	assertTiming(t, words[0], 2, 2)
	assertTiming(t, words[1], 2, 3)
	assertTiming(t, words[2], 3, 3)
}

func TestAlignDropsInsertions(t *testing.T) {
	raw := []temporal.RawToken{
		{Text: "uh", TimeStart: 0, TimeEnd: 0.2},
		{Text: "good", TimeStart: 0.3, TimeEnd: 0.6},
		{Text: "morning", TimeStart: 0.7, TimeEnd: 1.1},
	}
	words, stats, err := New(DefaultOptions()).Align(tokensOf(t, "good morning"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	assertTiming(t, words[0], 0.3, 0.6)
	assertTiming(t, words[1], 0.7, 1.1)
	if stats.Dropped != 1 {
		t.Fatalf("expected one dropped raw token, got %+v", stats)
	}
}

func TestAlignPrefersNearSubstitution(t *testing.T) {
	raw := []temporal.RawToken{{Text: "colour", TimeStart: 0, TimeEnd: 0.5}, {Text: "red", TimeStart: 0.6, TimeEnd: 0.9}}
	words, stats, err := New(DefaultOptions()).Align(tokensOf(t, "color red"), raw)
	if err != nil {
		t.Fatalf("Align returned error: %v", err)
	}
	assertTiming(t, words[0], 0, 0.5)
	if stats.Substituted != 1 || stats.Matched != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAlignRejectsWholesaleMismatch(t *testing.T) {
	raw := []temporal.RawToken{
		{Text: "Быстрая", TimeStart: 0, TimeEnd: 0.5},
		{Text: "коричневая", TimeStart: 0.5, TimeEnd: 1},
		{Text: "лиса", TimeStart: 1, TimeEnd: 1.5},
	}
	words, _, err := New(DefaultOptions()).Align(tokensOf(t, "The quick brown fox"), raw)
	if !errors.Is(err, temporal.ErrAlignment) {
		t.Fatalf("expected alignment error, got %v", err)
	}
	if words != nil {
		t.Fatal("no words may be returned on failure")
	}
	var alignErr *temporal.AlignmentError
	if !errors.As(err, &alignErr) || alignErr.NormalizedCost <= alignErr.Threshold {
		t.Fatalf("unexpected error detail %+v", alignErr)
	}
}

func TestAlignEmptyInputs(t *testing.T) {
	words, stats, err := New(DefaultOptions()).Align(nil, []temporal.RawToken{{Text: "x"}})
	if err != nil || len(words) != 0 || stats.Dropped != 1 {
		t.Fatalf("empty canonical: words=%v stats=%+v err=%v", words, stats, err)
	}
	_, _, err = New(DefaultOptions()).Align(tokensOf(t, "hola"), nil)
	if !errors.Is(err, temporal.ErrAlignment) {
		t.Fatalf("expected alignment error without raw tokens, got %v", err)
	}
}

func TestAlignBandMatchesFullTable(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	raw := []temporal.RawToken{}
	for i, w := range []string{"one", "two", "tree", "four", "five", "sicks", "seven", "ate", "nine", "ten"} {
		raw = append(raw, temporal.RawToken{Text: w, TimeStart: float64(i), TimeEnd: float64(i) + 0.8})
	}
	tokens := tokensOf(t, text)
	full, fullStats, err := New(DefaultOptions()).Align(tokens, raw)
	if err != nil {
		t.Fatalf("full Align returned error: %v", err)
	}
	opts := DefaultOptions()
	opts.Band = 2
	banded, bandStats, err := New(opts).Align(tokens, raw)
	if err != nil {
		t.Fatalf("banded Align returned error: %v", err)
	}
	if fullStats != bandStats {
		t.Fatalf("stats differ: full=%+v banded=%+v", fullStats, bandStats)
	}
	for i := range full {
		if full[i] != banded[i] {
			t.Fatalf("word %d differs: %+v vs %+v", i, full[i], banded[i])
		}
	}
}

func TestAlignIsDeterministic(t *testing.T) {
	raw := []temporal.RawToken{{Text: "a", TimeStart: 0, TimeEnd: 1}, {Text: "a", TimeStart: 1, TimeEnd: 2}}
	tokens := tokensOf(t, "a a a")
	opts := DefaultOptions()
	opts.ErrorThreshold = 1
	first, _, _ := New(opts).Align(tokens, raw)
	for i := 0; i < 5; i++ {
		again, _, _ := New(opts).Align(tokens, raw)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d word %d differs", i, j)
			}
		}
	}
}
