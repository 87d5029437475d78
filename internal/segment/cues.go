package segment

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"timeweave/internal/temporal"
)

// CueOptions configure subtitle segmentation. Non-positive limits are
// treated as unlimited.
type CueOptions struct {
	MaxChars       int
	MaxDuration    float64
	PauseThreshold float64
	// LookbackWords is how many display units before the hard limit are
	// searched for a unit ending in punctuation to break after.
	LookbackWords int
}

// DefaultCueOptions returns one 42 character line per cue, at most 4
// seconds, breaking on pauses above 400ms.
func DefaultCueOptions() CueOptions {
	return CueOptions{MaxChars: 42, MaxDuration: 4.0, PauseThreshold: 0.4, LookbackWords: 3}
}

// unit is a run of words with no whitespace between them in the canonical
// text, such as "mundo" and ".". Cues never break inside a unit.
type unit struct {
	first, last int
	chars       int
}

func displayUnits(words []temporal.Word) []unit {
	units := make([]unit, 0, len(words))
	for i, w := range words {
		n := utf8.RuneCountInString(w.Text)
		if i > 0 && w.CharStart <= words[i-1].CharEnd {
			u := &units[len(units)-1]
			u.last = i
			u.chars += n
			continue
		}
		units = append(units, unit{first: i, last: i, chars: n})
	}
	return units
}

// Cues partitions words into subtitle cues.
func Cues(words []temporal.Word, opts CueOptions) ([]temporal.SubtitleCue, []temporal.Warning) {
	units := displayUnits(words)
	cues := make([]temporal.SubtitleCue, 0, len(units)/4+1)
	var warnings []temporal.Warning

	fits := func(chars int, duration float64) bool {
		if opts.MaxChars > 0 && chars > opts.MaxChars {
			return false
		}
		return opts.MaxDuration <= 0 || duration <= opts.MaxDuration+temporal.Epsilon
	}
	emit := func(a, b int) {
		first, last := units[a].first, units[b].last
		cue := temporal.SubtitleCue{
			Order:     len(cues),
			WordStart: first,
			WordEnd:   last,
			Text:      temporal.RenderWords(words[first : last+1]),
			Sentence:  -1,
		}
		if a == b {
			duration := words[last].TimeEnd - words[first].TimeStart
			if !fits(units[a].chars, duration) {
				warnings = append(warnings, temporal.Warning{
					Code:   temporal.WarnOversizedCue,
					Stage:  temporal.StageSubtitle,
					Index:  cue.Order,
					Detail: fmt.Sprintf("%q: %d chars, %.3fs", cue.Text, units[a].chars, duration),
				})
			}
		}
		cues = append(cues, cue)
	}

	cur, chars := -1, 0
	for u := 0; u < len(units); u++ {
		if cur < 0 {
			cur, chars = u, units[u].chars
			continue
		}
		gap := words[units[u].first].TimeStart - words[units[u-1].last].TimeEnd
		if opts.PauseThreshold > 0 && gap > opts.PauseThreshold+temporal.Epsilon {
			emit(cur, u-1)
			cur, chars = u, units[u].chars
			continue
		}
		next := chars + 1 + units[u].chars
		duration := words[units[u].last].TimeEnd - words[units[cur].first].TimeStart
		if fits(next, duration) {
			chars = next
			continue
		}
		brk := u - 1
		for k := u - 1; k > cur && k >= u-opts.LookbackWords; k-- {
			if endsWithPunctuation(words[units[k].last].Text) {
				brk = k
				break
			}
		}
		emit(cur, brk)
		// Units after the break are re-read into a fresh cue.
		cur = -1
		u = brk
	}
	if cur >= 0 {
		emit(cur, len(units)-1)
	}
	return cues, warnings
}

// LinkCues sets each cue's Sentence to the sentence holding its first word.
func LinkCues(cues []temporal.SubtitleCue, sentences []temporal.Sentence) []temporal.SubtitleCue {
	for i := range cues {
		start := cues[i].WordStart
		j := sort.Search(len(sentences), func(j int) bool { return sentences[j].WordEnd >= start })
		if j < len(sentences) && sentences[j].WordStart <= start {
			cues[i].Sentence = sentences[j].Order
		} else {
			cues[i].Sentence = -1
		}
	}
	return cues
}
