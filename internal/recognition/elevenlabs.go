package recognition

import (
	"encoding/json"
	"fmt"
	"strings"

	"timeweave/internal/temporal"
)

type characterAlignment struct {
	Characters []string  `json:"characters"`
	Starts     []float64 `json:"character_start_times_seconds"`
	Ends       []float64 `json:"character_end_times_seconds"`
}

type alignmentEnvelope struct {
	characterAlignment
	Alignment           *characterAlignment `json:"alignment"`
	NormalizedAlignment *characterAlignment `json:"normalized_alignment"`
}

// ElevenLabsAlignment decodes character level alignment as returned by the
// ElevenLabs text-to-speech timestamps endpoint. Characters are grouped into
// words on whitespace; a word starts at its first character's start and ends
// at its last character's end. When both alignments are present the one
// matching the submitted text wins over the normalized one.
type ElevenLabsAlignment struct{}

func (ElevenLabsAlignment) Format() string { return FormatElevenLabsAlignment }

func (ElevenLabsAlignment) Decode(data []byte) ([]temporal.RawToken, error) {
	var env alignmentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, decodeError(FormatElevenLabsAlignment, err)
	}
	a := env.characterAlignment
	switch {
	case env.Alignment != nil:
		a = *env.Alignment
	case env.NormalizedAlignment != nil:
		a = *env.NormalizedAlignment
	}
	if len(a.Characters) != len(a.Starts) || len(a.Characters) != len(a.Ends) {
		return nil, decodeError(FormatElevenLabsAlignment, fmt.Errorf(
			"%d characters but %d start and %d end times", len(a.Characters), len(a.Starts), len(a.Ends)))
	}

	tokens := make([]temporal.RawToken, 0)
	var (
		word       strings.Builder
		start, end float64
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, temporal.RawToken{Text: word.String(), TimeStart: start, TimeEnd: end})
		word.Reset()
	}
	for i, c := range a.Characters {
		if strings.TrimSpace(c) == "" {
			flush()
			continue
		}
		if word.Len() == 0 {
			start = a.Starts[i]
		}
		word.WriteString(c)
		end = a.Ends[i]
	}
	flush()
	return tokens, nil
}

type elevenLabsWord struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Type  string  `json:"type"`
}

type elevenLabsTranscript struct {
	LanguageCode string           `json:"language_code"`
	Text         string           `json:"text"`
	Words        []elevenLabsWord `json:"words"`
}

// ElevenLabsWords decodes an ElevenLabs speech-to-text transcript. Spacing
// and audio event entries carry no canonical text and are skipped.
type ElevenLabsWords struct{}

func (ElevenLabsWords) Format() string { return FormatElevenLabsWords }

func (ElevenLabsWords) Decode(data []byte) ([]temporal.RawToken, error) {
	var transcript elevenLabsTranscript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, decodeError(FormatElevenLabsWords, err)
	}
	tokens := make([]temporal.RawToken, 0, len(transcript.Words))
	for _, w := range transcript.Words {
		switch w.Type {
		case "spacing", "audio_event":
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, temporal.RawToken{Text: text, TimeStart: w.Start, TimeEnd: w.End})
	}
	return tokens, nil
}
