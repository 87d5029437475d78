package main

import (
	"encoding/json"
	"io"
)

// writeJSON prints one layer of an index. Transcript text keeps its <, >
// and & as written.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
