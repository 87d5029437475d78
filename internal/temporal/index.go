package temporal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Index is the temporal index produced by one run. It is complete or absent:
// a failed run never yields a partially populated Index.
type Index struct {
	RunID     string         `json:"run_id,omitempty"`
	Engine    string         `json:"engine,omitempty"`
	Words     []Word         `json:"words"`
	Sentences []Sentence     `json:"sentences"`
	Scenes    []Scene        `json:"scenes"`
	Cues      []SubtitleCue  `json:"cues"`
	Warnings  []Warning      `json:"warnings"`
	Alignment AlignmentStats `json:"alignment"`
}

// RenderWords joins word texts, inserting a single space only where the
// canonical text had whitespace between two words.
func RenderWords(words []Word) string {
	var b strings.Builder
	for i, w := range words {
		if i > 0 && w.CharStart > words[i-1].CharEnd {
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

// Duration spans from the first word's start to the last word's end.
func (x *Index) Duration() float64 {
	if x == nil || len(x.Words) == 0 {
		return 0
	}
	return x.Words[len(x.Words)-1].TimeEnd - x.Words[0].TimeStart
}

// Text renders every word of the index.
func (x *Index) Text() string {
	if x == nil {
		return ""
	}
	return RenderWords(x.Words)
}

// WordRange renders words start..end inclusive. Out of range bounds are
// clipped.
func (x *Index) WordRange(start, end int) string {
	if x == nil {
		return ""
	}
	start = max(start, 0)
	end = min(end, len(x.Words)-1)
	if start > end {
		return ""
	}
	return RenderWords(x.Words[start : end+1])
}

// SentenceText renders the sentence with the given order.
func (x *Index) SentenceText(order int) (string, bool) {
	if x == nil || order < 0 || order >= len(x.Sentences) {
		return "", false
	}
	s := x.Sentences[order]
	return x.WordRange(s.WordStart, s.WordEnd), true
}

// SceneWords returns the inclusive word range covered by a scene.
func (x *Index) SceneWords(order int) (int, int, bool) {
	if x == nil || order < 0 || order >= len(x.Scenes) {
		return 0, 0, false
	}
	sc := x.Scenes[order]
	if sc.SentenceStart < 0 || sc.SentenceEnd >= len(x.Sentences) {
		return 0, 0, false
	}
	return x.Sentences[sc.SentenceStart].WordStart, x.Sentences[sc.SentenceEnd].WordEnd, true
}

// SceneText renders every word of a scene.
func (x *Index) SceneText(order int) (string, bool) {
	start, end, ok := x.SceneWords(order)
	if !ok {
		return "", false
	}
	return x.WordRange(start, end), true
}

// SceneStart returns the start time of a scene's first word.
func (x *Index) SceneStart(order int) (float64, bool) {
	start, _, ok := x.SceneWords(order)
	if !ok {
		return 0, false
	}
	return x.Words[start].TimeStart, true
}

// SceneEnd returns the end time of a scene's last word.
func (x *Index) SceneEnd(order int) (float64, bool) {
	_, end, ok := x.SceneWords(order)
	if !ok {
		return 0, false
	}
	return x.Words[end].TimeEnd, true
}

// SceneDuration returns SceneEnd - SceneStart.
func (x *Index) SceneDuration(order int) (float64, bool) {
	start, end, ok := x.SceneWords(order)
	if !ok {
		return 0, false
	}
	return x.Words[end].TimeEnd - x.Words[start].TimeStart, true
}

// SceneForSentence returns the order of the scene holding a sentence.
func (x *Index) SceneForSentence(sentence int) (int, bool) {
	if x == nil {
		return 0, false
	}
	i := sort.Search(len(x.Scenes), func(i int) bool { return x.Scenes[i].SentenceEnd >= sentence })
	if i < len(x.Scenes) && x.Scenes[i].SentenceStart <= sentence {
		return x.Scenes[i].Order, true
	}
	return 0, false
}

// CueStart returns the start time of a cue.
func (x *Index) CueStart(order int) (float64, bool) {
	if x == nil || order < 0 || order >= len(x.Cues) {
		return 0, false
	}
	return x.Words[x.Cues[order].WordStart].TimeStart, true
}

// CueEnd returns the end time of a cue.
func (x *Index) CueEnd(order int) (float64, bool) {
	if x == nil || order < 0 || order >= len(x.Cues) {
		return 0, false
	}
	return x.Words[x.Cues[order].WordEnd].TimeEnd, true
}

// CuesForSentence returns the cues linked to a sentence, in order.
func (x *Index) CuesForSentence(sentence int) []SubtitleCue {
	if x == nil {
		return nil
	}
	var out []SubtitleCue
	for _, cue := range x.Cues {
		if cue.Sentence == sentence {
			out = append(out, cue)
		}
	}
	return out
}

// WarningsByStage filters warnings by stage.
func (x *Index) WarningsByStage(stage string) []Warning {
	if x == nil {
		return nil
	}
	var out []Warning
	for _, w := range x.Warnings {
		if w.Stage == stage {
			out = append(out, w)
		}
	}
	return out
}

// MatchesText reports whether the index renders the given text, ignoring case
// and whitespace differences.
func (x *Index) MatchesText(text string) bool {
	return normalizeForCompare(x.Text()) == normalizeForCompare(text)
}

func normalizeForCompare(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Verify checks every structural invariant of the index and returns all
// violations joined into one error.
func (x *Index) Verify() error {
	if x == nil {
		return errors.New("nil index")
	}
	var errs []error
	for i, w := range x.Words {
		if w.Index != i {
			errs = append(errs, fmt.Errorf("word %d: index %d not contiguous", i, w.Index))
		}
		if w.CharStart >= w.CharEnd {
			errs = append(errs, fmt.Errorf("word %d: empty char span [%d,%d)", i, w.CharStart, w.CharEnd))
		}
		if w.TimeStart > w.TimeEnd+Epsilon {
			errs = append(errs, fmt.Errorf("word %d: reversed interval %.6f > %.6f", i, w.TimeStart, w.TimeEnd))
		}
		if i > 0 && x.Words[i-1].TimeEnd > w.TimeStart+Epsilon {
			errs = append(errs, fmt.Errorf("word %d: overlaps previous word by %.6fs", i, x.Words[i-1].TimeEnd-w.TimeStart))
		}
	}

	sentenceRanges := make([][2]int, len(x.Sentences))
	for i, s := range x.Sentences {
		if s.Order != i {
			errs = append(errs, fmt.Errorf("sentence %d: order %d", i, s.Order))
		}
		sentenceRanges[i] = [2]int{s.WordStart, s.WordEnd}
	}
	errs = append(errs, checkPartition("sentences", sentenceRanges, len(x.Words))...)

	sceneRanges := make([][2]int, len(x.Scenes))
	for i, sc := range x.Scenes {
		if sc.Order != i {
			errs = append(errs, fmt.Errorf("scene %d: order %d", i, sc.Order))
		}
		sceneRanges[i] = [2]int{sc.SentenceStart, sc.SentenceEnd}
	}
	errs = append(errs, checkPartition("scenes", sceneRanges, len(x.Sentences))...)

	cueRanges := make([][2]int, len(x.Cues))
	for i, cue := range x.Cues {
		if cue.Order != i {
			errs = append(errs, fmt.Errorf("cue %d: order %d", i, cue.Order))
		}
		cueRanges[i] = [2]int{cue.WordStart, cue.WordEnd}
	}
	partitionErrs := checkPartition("cues", cueRanges, len(x.Words))
	errs = append(errs, partitionErrs...)
	if len(partitionErrs) == 0 {
		for i, cue := range x.Cues {
			if want := x.WordRange(cue.WordStart, cue.WordEnd); cue.Text != want {
				errs = append(errs, fmt.Errorf("cue %d: text %q does not render words (%q)", i, cue.Text, want))
			}
		}
	}
	return errors.Join(errs...)
}

func checkPartition(name string, ranges [][2]int, total int) []error {
	var errs []error
	next := 0
	for i, r := range ranges {
		if r[0] != next {
			errs = append(errs, fmt.Errorf("%s %d: starts at %d, want %d", name, i, r[0], next))
		}
		if r[1] < r[0] {
			errs = append(errs, fmt.Errorf("%s %d: empty range [%d,%d]", name, i, r[0], r[1]))
		}
		next = r[1] + 1
	}
	if next != total {
		errs = append(errs, fmt.Errorf("%s: cover %d items, want %d", name, next, total))
	}
	return errs
}
