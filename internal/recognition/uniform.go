package recognition

import (
	"fmt"
	"math"
	"strings"

	"timeweave/internal/temporal"
)

// Uniform spreads the whitespace separated words of text evenly over
// [0, duration]. It stands in for a recognizer when only the audio length
// is known.
func Uniform(text string, duration float64) ([]temporal.RawToken, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return nil, fmt.Errorf("uniform timestamps: duration must be positive, got %v", duration)
	}
	return spread(strings.Fields(text), 0, duration), nil
}

func spread(words []string, start, end float64) []temporal.RawToken {
	tokens := make([]temporal.RawToken, len(words))
	if len(words) == 0 {
		return tokens
	}
	end = math.Max(end, start)
	step := (end - start) / float64(len(words))
	for i, w := range words {
		tokens[i] = temporal.RawToken{
			Text:      w,
			TimeStart: start + step*float64(i),
			TimeEnd:   start + step*float64(i+1),
		}
	}
	tokens[len(tokens)-1].TimeEnd = end
	return tokens
}
