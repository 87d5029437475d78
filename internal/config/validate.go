package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate ensures the configuration is usable. Every problem found is
// reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateAlignment()...)
	errs = append(errs, c.validateTiming()...)
	errs = append(errs, c.validateSegmentation()...)
	errs = append(errs, c.validateLogging()...)
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, errors.New("cache.max_entries must be >= 0"))
	}
	if c.Batch.Workers <= 0 {
		errs = append(errs, errors.New("batch.workers must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) validateAlignment() []error {
	var errs []error
	if c.Alignment.ErrorThreshold <= 0 || c.Alignment.ErrorThreshold > 1 {
		errs = append(errs, errors.New("alignment.error_threshold must be in (0, 1]"))
	}
	if c.Alignment.MaxSplit < 1 || c.Alignment.MaxSplit > 16 {
		errs = append(errs, errors.New("alignment.max_split must be between 1 and 16"))
	}
	if c.Alignment.SplitThreshold < 0 || c.Alignment.SplitThreshold > 1 {
		errs = append(errs, errors.New("alignment.split_threshold must be between 0 and 1"))
	}
	if c.Alignment.Band < 0 {
		errs = append(errs, errors.New("alignment.band must be >= 0"))
	}
	return errs
}

func (c *Config) validateTiming() []error {
	var errs []error
	if c.Validation.MinWordDuration <= 0 {
		errs = append(errs, errors.New("validation.min_word_duration must be positive"))
	}
	if c.Validation.DurationFloor <= 0 {
		errs = append(errs, errors.New("validation.duration_floor must be positive"))
	}
	return append(errs, ensureNonNegative(map[string]float64{
		"scenes.max_duration":       c.Scenes.MaxDuration,
		"subtitles.max_duration":    c.Subtitles.MaxDuration,
		"subtitles.pause_threshold": c.Subtitles.PauseThreshold,
	})...)
}

func (c *Config) validateSegmentation() []error {
	var errs []error
	if c.Sentences.MinWords < 1 {
		errs = append(errs, errors.New("sentences.min_words must be >= 1"))
	}
	if c.Sentences.MaxChars < 0 {
		errs = append(errs, errors.New("sentences.max_chars must be >= 0"))
	}
	if c.Subtitles.MaxChars <= 0 {
		errs = append(errs, errors.New("subtitles.max_chars must be positive"))
	}
	if c.Subtitles.LookbackWords < 0 {
		errs = append(errs, errors.New("subtitles.lookback_words must be >= 0"))
	}
	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level))
	}
	return errs
}

// ensureNonNegative reports keys in sorted order so messages are stable.
func ensureNonNegative(values map[string]float64) []error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	var errs []error
	for _, key := range keys {
		if values[key] < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0", key))
		}
	}
	return errs
}
