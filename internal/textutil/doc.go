// Package textutil provides the text comparison helpers used when matching
// canonical tokens against recognizer output.
//
// The primary use cases are:
//   - Folding text for case and diacritic insensitive comparison
//   - Computing rune-level edit distance, raw and normalized to [0,1]
//   - Producing lowercase filesystem-safe tokens for engine and job names
//
// Folding decomposes text (NFD), drops nonspacing marks and applies Unicode
// case folding, so "Canción" and "CANCION" compare equal.
package textutil
