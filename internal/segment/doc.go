// Package segment groups validated words into sentences, sentences into
// scenes, and words into subtitle cues.
//
// Sentences and scenes form one hierarchy. Cues are an independent partition
// of the same words that only references sentences for traceability. Every
// function returns a complete partition of its input; units that break a
// hard limit on their own are kept whole and reported as warnings.
package segment
