// Package pipeline runs the alignment and segmentation stages in order and
// assembles the temporal index.
//
// A Pipeline is built once from validated Options and reused: Run handles a
// single input, RunCached serves repeated inputs from the result cache and
// RunBatch fans independent inputs out over a bounded worker group.
package pipeline
