package recognition

import (
	"encoding/json"

	"timeweave/internal/temporal"
)

// Tokens decodes a plain JSON array of raw tokens, the form the index
// itself uses.
type Tokens struct{}

func (Tokens) Format() string { return FormatTokens }

func (Tokens) Decode(data []byte) ([]temporal.RawToken, error) {
	tokens := make([]temporal.RawToken, 0)
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, decodeError(FormatTokens, err)
	}
	return tokens, nil
}
