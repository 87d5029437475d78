// Package tokenize splits canonical text into character-spanned tokens.
//
// Chunks between whitespace are scanned with fixed precedence: configured
// abbreviations first, then decimal numbers, then words, then punctuation
// runs. Offsets are rune offsets into the input, end exclusive. The only
// failure is input that is not valid UTF-8.
package tokenize
