// Package align reconciles canonical tokens with recognizer tokens.
//
// A weighted edit-distance program matches the two sequences on folded
// text. Substitutions cost the normalized string distance of the pair,
// deletions and insertions cost one, and a raw token may be split across a
// short run of canonical tokens when their joined text matches it closely.
// Matched tokens copy timing, split runs share the raw interval by character
// length, unmatched canonical tokens are interpolated between their
// neighbours and unmatched raw tokens are dropped.
package align
