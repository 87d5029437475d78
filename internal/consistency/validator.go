package consistency

import (
	"fmt"

	"timeweave/internal/temporal"
)

const defaultMinWordDuration = 0.010

// Options tune the validator. Zero values fall back to defaults.
type Options struct {
	// MinWordDuration is the shortest duration overlap resolution may leave
	// a word with, unless the word was already shorter.
	MinWordDuration float64
	// DurationFloor marks words short enough to be smoothed.
	DurationFloor float64
	// Epsilon is the comparison tolerance.
	Epsilon float64
}

// DefaultOptions returns the validator defaults.
func DefaultOptions() Options {
	return Options{
		MinWordDuration: defaultMinWordDuration,
		DurationFloor:   defaultMinWordDuration,
		Epsilon:         temporal.Epsilon,
	}
}

// Validator applies the timing passes.
type Validator struct {
	opts Options
}

// New builds a validator.
func New(opts Options) *Validator {
	if opts.MinWordDuration <= 0 {
		opts.MinWordDuration = defaultMinWordDuration
	}
	if opts.DurationFloor <= 0 {
		opts.DurationFloor = opts.MinWordDuration
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = temporal.Epsilon
	}
	return &Validator{opts: opts}
}

// Validate returns a corrected copy of words and the warnings describing each
// correction.
func (v *Validator) Validate(words []temporal.Word) ([]temporal.Word, []temporal.Warning) {
	out := make([]temporal.Word, len(words))
	copy(out, words)
	var warnings []temporal.Warning
	warnings = v.clampIntervals(out, warnings)
	warnings = v.resolveOverlaps(out, warnings)
	warnings = v.smoothDurations(out, warnings)
	return out, warnings
}

func warn(code string, index int, format string, args ...any) temporal.Warning {
	return temporal.Warning{
		Code:   code,
		Stage:  temporal.StageValidator,
		Index:  index,
		Detail: fmt.Sprintf(format, args...),
	}
}

func (v *Validator) clampIntervals(words []temporal.Word, warnings []temporal.Warning) []temporal.Warning {
	for i := range words {
		w := &words[i]
		if w.TimeStart < 0 || w.TimeEnd < 0 {
			warnings = append(warnings, warn(temporal.WarnNegativeTime, i, "start=%.3f end=%.3f", w.TimeStart, w.TimeEnd))
			w.TimeStart = max(w.TimeStart, 0)
			w.TimeEnd = max(w.TimeEnd, 0)
		}
		if w.TimeStart > w.TimeEnd+v.opts.Epsilon {
			warnings = append(warnings, warn(temporal.WarnClampedInterval, i, "end %.3f raised to start %.3f", w.TimeEnd, w.TimeStart))
			w.TimeEnd = w.TimeStart
		}
	}
	return warnings
}

// resolveOverlaps walks pairs left to right. Moving a boundary only lowers
// the left word's end and raises the right word's start or end, so a pair
// that was already resolved never overlaps again.
func (v *Validator) resolveOverlaps(words []temporal.Word, warnings []temporal.Warning) []temporal.Warning {
	for i := 0; i+1 < len(words); i++ {
		left, right := &words[i], &words[i+1]
		overlap := left.TimeEnd - right.TimeStart
		if overlap <= v.opts.Epsilon {
			continue
		}
		boundary := (left.TimeEnd + right.TimeStart) / 2
		lower := left.TimeStart + min(v.opts.MinWordDuration, left.Duration())
		upper := right.TimeEnd - min(v.opts.MinWordDuration, right.Duration())
		if lower <= upper {
			boundary = min(max(boundary, lower), upper)
		} else {
			boundary = (lower + upper) / 2
		}
		boundary = max(boundary, left.TimeStart)
		left.TimeEnd = boundary
		right.TimeStart = boundary
		if right.TimeEnd < boundary {
			right.TimeEnd = boundary
		}
		warnings = append(warnings, warn(temporal.WarnOverlapResolved, i+1, "overlap %.3fs, boundary moved to %.3f", overlap, boundary))
	}
	return warnings
}

// smoothDurations lengthens words shorter than the floor by taking at most
// half of the larger neighbouring gap. The gap before the first word reaches
// back to zero; there is no gap after the last word.
func (v *Validator) smoothDurations(words []temporal.Word, warnings []temporal.Warning) []temporal.Warning {
	for i := range words {
		w := &words[i]
		need := v.opts.DurationFloor - w.Duration()
		if need <= v.opts.Epsilon {
			continue
		}
		before := w.TimeStart
		if i > 0 {
			before = w.TimeStart - words[i-1].TimeEnd
		}
		after := 0.0
		if i+1 < len(words) {
			after = words[i+1].TimeStart - w.TimeEnd
		}
		before, after = max(before, 0), max(after, 0)

		if before >= after && before > v.opts.Epsilon {
			take := min(need, before/2)
			w.TimeStart -= take
			warnings = append(warnings, warn(temporal.WarnDurationSmoothed, i, "borrowed %.3fs from preceding gap", take))
		} else if after > v.opts.Epsilon {
			take := min(need, after/2)
			w.TimeEnd += take
			warnings = append(warnings, warn(temporal.WarnDurationSmoothed, i, "borrowed %.3fs from following gap", take))
		}
		if v.opts.DurationFloor-w.Duration() > v.opts.Epsilon {
			warnings = append(warnings, warn(temporal.WarnDurationBelowFloor, i, "duration %.3fs below floor %.3fs", w.Duration(), v.opts.DurationFloor))
		}
	}
	return warnings
}
