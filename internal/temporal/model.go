package temporal

// Epsilon is the tolerance used for every time comparison, in seconds.
const Epsilon = 1e-6

// RawToken is one token reported by a recognizer or alignment backend.
type RawToken struct {
	Text      string  `json:"text"`
	TimeStart float64 `json:"time_start"`
	TimeEnd   float64 `json:"time_end"`
}

// Word is a canonical token with timing. CharStart and CharEnd are rune
// offsets into the canonical text, end exclusive.
type Word struct {
	Index     int     `json:"index"`
	Text      string  `json:"text"`
	CharStart int     `json:"char_start"`
	CharEnd   int     `json:"char_end"`
	TimeStart float64 `json:"time_start"`
	TimeEnd   float64 `json:"time_end"`
}

// Duration returns the word's timed length.
func (w Word) Duration() float64 {
	return w.TimeEnd - w.TimeStart
}

// Sentence covers words WordStart..WordEnd inclusive.
type Sentence struct {
	Order     int `json:"order"`
	WordStart int `json:"word_start"`
	WordEnd   int `json:"word_end"`
}

// Len returns the number of words in the sentence.
func (s Sentence) Len() int {
	return s.WordEnd - s.WordStart + 1
}

// Scene covers sentences SentenceStart..SentenceEnd inclusive. VisualFocus is
// filled in by downstream tooling and is empty when a run finishes.
type Scene struct {
	Order         int    `json:"order"`
	SentenceStart int    `json:"sentence_start"`
	SentenceEnd   int    `json:"sentence_end"`
	VisualFocus   string `json:"visual_focus,omitempty"`
}

// SubtitleCue covers words WordStart..WordEnd inclusive. Sentence is the
// order of the sentence holding WordStart, or -1 before sentences are linked.
type SubtitleCue struct {
	Order     int    `json:"order"`
	WordStart int    `json:"word_start"`
	WordEnd   int    `json:"word_end"`
	Text      string `json:"text"`
	Sentence  int    `json:"sentence"`
}

// AlignmentStats summarizes how canonical tokens were matched to raw tokens.
type AlignmentStats struct {
	Matched        int     `json:"matched"`
	Substituted    int     `json:"substituted"`
	Split          int     `json:"split"`
	Interpolated   int     `json:"interpolated"`
	Dropped        int     `json:"dropped"`
	Cost           float64 `json:"cost"`
	NormalizedCost float64 `json:"normalized_cost"`
}
