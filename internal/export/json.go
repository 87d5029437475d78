package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"timeweave/internal/temporal"
)

// WriteIndexJSON writes index as indented JSON followed by a newline. Equal
// indexes always produce identical bytes; empty layers render as [].
func WriteIndexJSON(w io.Writer, index *temporal.Index) error {
	if index == nil {
		return errors.New("write index json: nil index")
	}
	out := *index
	out.Words = orEmpty(out.Words)
	out.Sentences = orEmpty(out.Sentences)
	out.Scenes = orEmpty(out.Scenes)
	out.Cues = orEmpty(out.Cues)
	out.Warnings = orEmpty(out.Warnings)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("write index json: %w", err)
	}
	return nil
}

// ReadIndexJSON decodes an index written by WriteIndexJSON and verifies its
// structure.
func ReadIndexJSON(r io.Reader) (*temporal.Index, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var index temporal.Index
	if err := dec.Decode(&index); err != nil {
		return nil, fmt.Errorf("read index json: %w", err)
	}
	if err := index.Verify(); err != nil {
		return nil, fmt.Errorf("read index json: %w", err)
	}
	return &index, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
