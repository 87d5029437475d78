package segment

import (
	"fmt"

	"timeweave/internal/temporal"
)

// Scenes packs sentences greedily into scenes no longer than maxDuration
// seconds, measured from the first word's start to the last word's end. A
// sentence longer than the limit becomes a scene of its own and is reported
// as an oversized_scene warning. A non-positive limit yields one scene.
func Scenes(words []temporal.Word, sentences []temporal.Sentence, maxDuration float64) ([]temporal.Scene, []temporal.Warning) {
	scenes := make([]temporal.Scene, 0, len(sentences)/2+1)
	if len(sentences) == 0 {
		return scenes, nil
	}
	var warnings []temporal.Warning
	span := func(first, last int) float64 {
		return words[sentences[last].WordEnd].TimeEnd - words[sentences[first].WordStart].TimeStart
	}
	closeScene := func(first, last int) {
		order := len(scenes)
		scenes = append(scenes, temporal.Scene{Order: order, SentenceStart: first, SentenceEnd: last})
		if maxDuration > 0 && first == last {
			if d := span(first, last); d > maxDuration+temporal.Epsilon {
				warnings = append(warnings, temporal.Warning{
					Code:   temporal.WarnOversizedScene,
					Stage:  temporal.StageScene,
					Index:  order,
					Detail: fmt.Sprintf("sentence %d lasts %.3fs, limit %.3fs", first, d, maxDuration),
				})
			}
		}
	}

	first := 0
	for i := 1; i < len(sentences); i++ {
		if maxDuration <= 0 || span(first, i) <= maxDuration+temporal.Epsilon {
			continue
		}
		closeScene(first, i-1)
		first = i
	}
	closeScene(first, len(sentences)-1)
	return scenes, warnings
}
