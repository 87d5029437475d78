// Package logging assembles the slog loggers used by timeweave.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// attribute helpers components use so every line carries the same keys
// (component, run_id, job, stage). Context helpers tag lines with the run ID
// of the pipeline run that produced them. NewNop returns a logger for tests
// and for wiring code that must not fail.
package logging
