package recognition

import (
	"encoding/json"
	"strings"

	"timeweave/internal/temporal"
)

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type whisperXSegment struct {
	Text  string         `json:"text"`
	Start float64        `json:"start"`
	End   float64        `json:"end"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// WhisperX decodes WhisperX JSON output. Words the aligner could not time
// carry no start or end and are skipped. A segment without a word list is
// spread evenly over its own interval.
type WhisperX struct{}

func (WhisperX) Format() string { return FormatWhisperX }

func (WhisperX) Decode(data []byte) ([]temporal.RawToken, error) {
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, decodeError(FormatWhisperX, err)
	}
	tokens := make([]temporal.RawToken, 0)
	for _, seg := range payload.Segments {
		if len(seg.Words) == 0 {
			tokens = append(tokens, spread(strings.Fields(seg.Text), seg.Start, seg.End)...)
			continue
		}
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start == nil || w.End == nil {
				continue
			}
			tokens = append(tokens, temporal.RawToken{Text: text, TimeStart: *w.Start, TimeEnd: *w.End})
		}
	}
	return tokens, nil
}
