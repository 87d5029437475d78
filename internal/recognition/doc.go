// Package recognition decodes the timestamp payloads produced by speech
// recognizers and forced aligners into raw tokens.
//
// Every backend format is a Decoder. Detect sniffs a payload and Lookup
// resolves a decoder by name; Uniform provides evenly spaced tokens when only
// the audio duration is known.
package recognition
