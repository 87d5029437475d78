package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent names the package or subsystem emitting a line.
	FieldComponent = "component"
	// FieldRunID identifies one pipeline run.
	FieldRunID = "run_id"
	// FieldJob names a batch job.
	FieldJob = "job"
	// FieldStage names the pipeline stage (tokenize, align, validate, ...).
	FieldStage = "stage"
	// FieldEngine names the recognizer that produced the raw tokens.
	FieldEngine = "engine"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType labels decision log lines.
	FieldDecisionType = "decision_type"
	// FieldAlert flags anomalies that should stand out.
	FieldAlert = "alert"
)

type contextKey int

const (
	runIDKey contextKey = iota
	jobKey
)

// WithRunID stores a run identifier on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithJob stores a batch job name on ctx.
func WithJob(ctx context.Context, name string) context.Context {
	name = strings.TrimSpace(name)
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey, name)
}

// JobFromContext returns the job name stored by WithJob.
func JobFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(jobKey).(string)
	return name, ok && name != ""
}

// ContextFields extracts standardized slog attributes from ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if job, ok := JobFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJob, job))
	}
	return fields
}

// WithContext returns a logger augmented with the fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
