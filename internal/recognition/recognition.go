package recognition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"timeweave/internal/temporal"
)

// ErrDecode marks payloads that cannot be turned into raw tokens.
var ErrDecode = errors.New("decode recognizer output")

// Format names accepted by Lookup.
const (
	FormatWhisperX            = "whisperx"
	FormatElevenLabsAlignment = "elevenlabs-alignment"
	FormatElevenLabsWords     = "elevenlabs-words"
	FormatTokens              = "tokens"
	// FormatAuto asks Detect to pick the decoder.
	FormatAuto = "auto"
)

// Decoder converts one backend payload into raw tokens in payload order.
type Decoder interface {
	Format() string
	Decode(data []byte) ([]temporal.RawToken, error)
}

var decoders = map[string]Decoder{
	FormatWhisperX:            WhisperX{},
	FormatElevenLabsAlignment: ElevenLabsAlignment{},
	FormatElevenLabsWords:     ElevenLabsWords{},
	FormatTokens:              Tokens{},
}

// Formats lists the registered decoder names, sorted.
func Formats() []string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the decoder registered under name.
func Lookup(name string) (Decoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if d, ok := decoders[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown timestamp format %q (valid: %s)", name, strings.Join(Formats(), ", "))
}

// Detect inspects the top level of a JSON payload and returns the decoder
// that understands it.
func Detect(data []byte) (Decoder, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if trimmed[0] == '[' {
		return decoders[FormatTokens], nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	switch {
	case has(top, "segments"):
		return decoders[FormatWhisperX], nil
	case has(top, "characters"), has(top, "alignment"), has(top, "normalized_alignment"):
		return decoders[FormatElevenLabsAlignment], nil
	case has(top, "words"):
		return decoders[FormatElevenLabsWords], nil
	}
	return nil, fmt.Errorf("%w: unrecognized payload layout", ErrDecode)
}

// Decode resolves format, detecting it when format is empty or "auto", and
// decodes data.
func Decode(format string, data []byte) ([]temporal.RawToken, string, error) {
	var (
		d   Decoder
		err error
	)
	if f := strings.TrimSpace(format); f == "" || strings.EqualFold(f, FormatAuto) {
		d, err = Detect(data)
	} else {
		d, err = Lookup(f)
	}
	if err != nil {
		return nil, "", err
	}
	tokens, err := d.Decode(data)
	if err != nil {
		return nil, d.Format(), err
	}
	return tokens, d.Format(), nil
}

func has(top map[string]json.RawMessage, key string) bool {
	raw, ok := top[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeError(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
}
