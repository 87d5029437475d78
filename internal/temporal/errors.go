package temporal

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenization marks malformed canonical text.
	ErrTokenization = errors.New("tokenization error")
	// ErrAlignment marks recognizer output that cannot be reconciled with the
	// canonical text. Retrying with the same inputs will fail the same way.
	ErrAlignment = errors.New("alignment error")
)

// TokenizationError reports invalid UTF-8 at byte Offset of the input.
type TokenizationError struct {
	Offset int
}

func (e *TokenizationError) Error() string {
	return fmt.Sprintf("%s: invalid utf-8 at byte %d", ErrTokenization, e.Offset)
}

func (e *TokenizationError) Unwrap() error { return ErrTokenization }

// ErrorKind classifies the error for callers that map failures to statuses.
func (e *TokenizationError) ErrorKind() string { return "validation" }

// AlignmentError reports a normalized edit cost above the configured
// threshold.
type AlignmentError struct {
	Cost           float64
	NormalizedCost float64
	Threshold      float64
	Canonical      int
	Raw            int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s: normalized cost %.3f exceeds threshold %.3f (canonical=%d raw=%d)",
		ErrAlignment, e.NormalizedCost, e.Threshold, e.Canonical, e.Raw)
}

func (e *AlignmentError) Unwrap() error { return ErrAlignment }

// ErrorKind classifies the error for callers that map failures to statuses.
func (e *AlignmentError) ErrorKind() string { return "validation" }
