package segment

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"timeweave/internal/temporal"
)

func TestCuesBreakAtCharacterLimit(t *testing.T) {
	words := timedWords(t, "The quick brown fox", nil, 0.3)
	cues, warnings := Cues(words, CueOptions{MaxChars: 10, MaxDuration: 10, PauseThreshold: 0.4, LookbackWords: 3})
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"The quick", "brown fox"}) {
		t.Fatalf("cues = %q", got)
	}
	for _, c := range cues {
		if utf8.RuneCountInString(c.Text) > 10 {
			t.Fatalf("cue %q exceeds 10 characters", c.Text)
		}
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
}

func TestCuesBreakOnPause(t *testing.T) {
	words := timedWords(t, "uno dos tres cuatro", nil, 0.3)
	for i := 2; i < len(words); i++ {
		words[i].TimeStart += 0.6
		words[i].TimeEnd += 0.6
	}
	cues, _ := Cues(words, CueOptions{MaxChars: 100, MaxDuration: 100, PauseThreshold: 0.4, LookbackWords: 3})
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"uno dos", "tres cuatro"}) {
		t.Fatalf("cues = %q", got)
	}
}

func TestCuesPreferPunctuationWithinLookback(t *testing.T) {
	words := timedWords(t, "Oye tú, amigo mío del alma", nil, 0.3)
	opts := CueOptions{MaxChars: 15, MaxDuration: 100, PauseThreshold: 1, LookbackWords: 3}
	cues, _ := Cues(words, opts)
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"Oye tú,", "amigo mío del", "alma"}) {
		t.Fatalf("cues = %q", got)
	}

	opts.LookbackWords = 0
	cues, _ = Cues(words, opts)
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"Oye tú, amigo", "mío del alma"}) {
		t.Fatalf("cues without lookback = %q", got)
	}
}

func TestCuesLookbackSkipsFirstUnit(t *testing.T) {
	words := timedWords(t, "Hola, amigo mío del alma", nil, 0.3)
	cues, _ := Cues(words, CueOptions{MaxChars: 15, MaxDuration: 100, PauseThreshold: 1, LookbackWords: 3})
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"Hola, amigo mío", "del alma"}) {
		t.Fatalf("cues = %q", got)
	}
}

func TestCuesBreakAtDurationLimit(t *testing.T) {
	words := timedWords(t, "a b c d e", nil, 1)
	for i := range words {
		words[i].TimeEnd = words[i].TimeStart + 1
	}
	cues, _ := Cues(words, CueOptions{MaxChars: 100, MaxDuration: 2.5, PauseThreshold: 0.4})
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"a b", "c d", "e"}) {
		t.Fatalf("cues = %q", got)
	}
}

func TestCuesTolerateOversizedWord(t *testing.T) {
	words := timedWords(t, "supercalifragilistic is long", nil, 0.3)
	cues, warnings := Cues(words, CueOptions{MaxChars: 10, MaxDuration: 10, PauseThreshold: 1})
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"supercalifragilistic", "is long"}) {
		t.Fatalf("cues = %q", got)
	}
	if len(warnings) != 1 || warnings[0].Code != temporal.WarnOversizedCue || warnings[0].Index != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
}

func TestCuesKeepGluedPunctuation(t *testing.T) {
	words := timedWords(t, "Hola mundo. ¿Qué tal? Bien.", nil, 0.3)
	cues, _ := Cues(words, CueOptions{MaxChars: 11, MaxDuration: 100, PauseThreshold: 1, LookbackWords: 2})
	for _, c := range cues {
		first := words[c.WordStart].Text
		if first == "." || first == "?" {
			t.Fatalf("cue %q starts with punctuation", c.Text)
		}
	}
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"Hola mundo.", "¿Qué tal?", "Bien."}) {
		t.Fatalf("cues = %q", got)
	}
}

func TestCuesRoundTripText(t *testing.T) {
	text := "  En un lugar de la Mancha,\n de cuyo nombre no quiero acordarme, no ha mucho tiempo que vivía un hidalgo. ¡Sí!  "
	words := timedWords(t, text, nil, 0.25)
	cues, _ := Cues(words, DefaultCueOptions())
	assertPartition(t, "cues", cueRanges(cues), len(words))
	joined := strings.Join(cueTexts(cues), " ")
	if want := strings.Join(strings.Fields(text), " "); joined != want {
		t.Fatalf("round trip = %q, want %q", joined, want)
	}
	for _, c := range cues {
		if utf8.RuneCountInString(c.Text) > 42 {
			t.Fatalf("cue %q exceeds 42 characters", c.Text)
		}
	}
}

func TestCuesEmpty(t *testing.T) {
	cues, warnings := Cues(nil, DefaultCueOptions())
	if len(cues) != 0 || len(warnings) != 0 {
		t.Fatalf("cues=%+v warnings=%+v", cues, warnings)
	}
}

func TestLinkCues(t *testing.T) {
	words := timedWords(t, "Uno dos tres. Cuatro cinco seis siete.", nil, 0.3)
	sentences := Sentences(words, SentenceOptions{MinWords: 1})
	cues, _ := Cues(words, CueOptions{MaxChars: 14, MaxDuration: 100, PauseThreshold: 1})
	cues = LinkCues(cues, sentences)
	if got := cueTexts(cues); !reflect.DeepEqual(got, []string{"Uno dos tres.", "Cuatro cinco", "seis siete."}) {
		t.Fatalf("cues = %q", got)
	}
	want := []int{0, 1, 1}
	for i, c := range cues {
		if c.Sentence != want[i] {
			t.Fatalf("cue %d linked to sentence %d, want %d", i, c.Sentence, want[i])
		}
	}
}
