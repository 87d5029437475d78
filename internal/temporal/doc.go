// Package temporal defines the data model shared by every stage of a run:
// timed words, sentences, scenes, subtitle cues and the Index aggregate that
// owns them.
//
// All ranges are inclusive word (or sentence) indexes. Times are seconds as
// float64 and are compared with Epsilon tolerance. Fatal failures are the
// typed TokenizationError and AlignmentError; everything else is reported as
// a Warning attached to the finished Index.
package temporal
