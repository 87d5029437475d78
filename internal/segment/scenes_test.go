package segment

import (
	"testing"

	"timeweave/internal/temporal"
)

// oneWordSentences builds one word and one sentence per span.
func oneWordSentences(spans ...[2]float64) ([]temporal.Word, []temporal.Sentence) {
	words := make([]temporal.Word, len(spans))
	sentences := make([]temporal.Sentence, len(spans))
	for i, s := range spans {
		words[i] = temporal.Word{Index: i, Text: "x.", CharStart: i * 3, CharEnd: i*3 + 2, TimeStart: s[0], TimeEnd: s[1]}
		sentences[i] = temporal.Sentence{Order: i, WordStart: i, WordEnd: i}
	}
	return words, sentences
}

func sceneRanges(scenes []temporal.Scene) [][2]int {
	out := make([][2]int, len(scenes))
	for i, s := range scenes {
		out[i] = [2]int{s.SentenceStart, s.SentenceEnd}
	}
	return out
}

func TestScenesGreedyPacking(t *testing.T) {
	words, sentences := oneWordSentences([2]float64{0, 2}, [2]float64{2.5, 4}, [2]float64{4.5, 9})
	scenes, warnings := Scenes(words, sentences, 5)
	got := sceneRanges(scenes)
	if len(got) != 2 || got[0] != [2]int{0, 1} || got[1] != [2]int{2, 2} {
		t.Fatalf("scenes = %v", got)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	for i, sc := range scenes {
		if sc.Order != i || sc.VisualFocus != "" {
			t.Fatalf("scene %d = %+v", i, sc)
		}
	}
}

func TestScenesLimitIsInclusive(t *testing.T) {
	words, sentences := oneWordSentences([2]float64{0, 2}, [2]float64{2, 5})
	scenes, _ := Scenes(words, sentences, 5)
	if len(scenes) != 1 {
		t.Fatalf("expected one scene at exactly the limit, got %+v", scenes)
	}
}

func TestScenesOversizedSentence(t *testing.T) {
	words, sentences := oneWordSentences([2]float64{0, 7}, [2]float64{7.5, 8}, [2]float64{8.2, 9})
	scenes, warnings := Scenes(words, sentences, 5)
	got := sceneRanges(scenes)
	if len(got) != 2 || got[0] != [2]int{0, 0} || got[1] != [2]int{1, 2} {
		t.Fatalf("scenes = %v", got)
	}
	if len(warnings) != 1 || warnings[0].Code != temporal.WarnOversizedScene || warnings[0].Index != 0 {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	if !warnings[0].IsOverflow() || warnings[0].Stage != temporal.StageScene {
		t.Fatalf("warning not classified as overflow: %+v", warnings[0])
	}
}

func TestScenesUnlimited(t *testing.T) {
	words, sentences := oneWordSentences([2]float64{0, 20}, [2]float64{21, 40})
	scenes, warnings := Scenes(words, sentences, 0)
	if len(scenes) != 1 || len(warnings) != 0 {
		t.Fatalf("scenes=%+v warnings=%+v", scenes, warnings)
	}
}

func TestScenesEmpty(t *testing.T) {
	scenes, warnings := Scenes(nil, nil, 5)
	if len(scenes) != 0 || warnings != nil {
		t.Fatalf("scenes=%+v warnings=%+v", scenes, warnings)
	}
}

func TestScenesPartitionSentences(t *testing.T) {
	words := timedWords(t, "Uno dos. Tres cuatro cinco. Seis. Siete ocho nueve diez. Once.", nil, 0.7)
	sentences := Sentences(words, SentenceOptions{MinWords: 1})
	for _, limit := range []float64{0.5, 2, 3.5, 100} {
		scenes, _ := Scenes(words, sentences, limit)
		assertPartition(t, "scenes", sceneRanges(scenes), len(sentences))
	}
}
