package textutil

import (
	"strings"
	"unicode"
)

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are folded, digits and hyphens are kept, runs of anything else
// become a single underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = Fold(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	underscore := false
	for _, r := range value {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '-':
			b.WriteRune(r)
			underscore = false
		default:
			if !underscore {
				b.WriteByte('_')
				underscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
