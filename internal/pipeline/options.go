package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"timeweave/internal/align"
	"timeweave/internal/config"
	"timeweave/internal/consistency"
	"timeweave/internal/segment"
	"timeweave/internal/tokenize"
)

// ErrInvalidOptions marks option validation failures.
var ErrInvalidOptions = errors.New("invalid pipeline options")

// Options configure one pipeline. Durations are seconds.
type Options struct {
	Abbreviations           []string `json:"abbreviations" validate:"omitempty,dive,required"`
	MinSentenceWords        int      `json:"min_sentence_words" validate:"gte=1"`
	RequireCapital          bool     `json:"require_capital"`
	MaxSentenceChars        int      `json:"max_sentence_chars" validate:"gte=0"`
	MaxSceneDuration        float64  `json:"max_scene_duration_s" validate:"gte=0"`
	MaxSubtitleChars        int      `json:"max_subtitle_chars" validate:"gt=0"`
	MaxSubtitleDuration     float64  `json:"max_subtitle_duration_s" validate:"gte=0"`
	PauseThreshold          float64  `json:"pause_threshold_s" validate:"gte=0"`
	SubtitleLookbackWords   int      `json:"subtitle_lookback_words" validate:"gte=0"`
	MinWordDuration         float64  `json:"min_word_duration_s" validate:"gt=0"`
	DurationFloor           float64  `json:"duration_floor_s" validate:"gt=0"`
	AlignmentErrorThreshold float64  `json:"alignment_error_threshold" validate:"gt=0,lte=1"`
	MaxSplitTokens          int      `json:"max_split_tokens" validate:"gte=1,lte=16"`
	SplitThreshold          float64  `json:"split_threshold" validate:"gte=0,lte=1"`
	AlignmentBand           int      `json:"alignment_band" validate:"gte=0"`
}

// DefaultOptions returns the options a default config produces.
func DefaultOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(&cfg)
}

// OptionsFromConfig maps the pipeline sections of cfg onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	var abbreviations []string
	if cfg.Tokenizer.UseDefaultAbbreviations {
		abbreviations = append(abbreviations, tokenize.DefaultAbbreviations...)
	}
	abbreviations = append(abbreviations, cfg.Tokenizer.Abbreviations...)
	return Options{
		Abbreviations:           abbreviations,
		MinSentenceWords:        cfg.Sentences.MinWords,
		RequireCapital:          cfg.Sentences.RequireCapital,
		MaxSentenceChars:        cfg.Sentences.MaxChars,
		MaxSceneDuration:        cfg.Scenes.MaxDuration,
		MaxSubtitleChars:        cfg.Subtitles.MaxChars,
		MaxSubtitleDuration:     cfg.Subtitles.MaxDuration,
		PauseThreshold:          cfg.Subtitles.PauseThreshold,
		SubtitleLookbackWords:   cfg.Subtitles.LookbackWords,
		MinWordDuration:         cfg.Validation.MinWordDuration,
		DurationFloor:           cfg.Validation.DurationFloor,
		AlignmentErrorThreshold: cfg.Alignment.ErrorThreshold,
		MaxSplitTokens:          cfg.Alignment.MaxSplit,
		SplitThreshold:          cfg.Alignment.SplitThreshold,
		AlignmentBand:           cfg.Alignment.Band,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every option and reports all failures at once.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(formatValidationErrors(verrs), "; "))
}

func formatValidationErrors(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		element := fmt.Sprintf("%s failed on the '%s' tag", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			element = fmt.Sprintf("%s (limit: %s)", element, fe.Param())
		}
		out = append(out, element)
	}
	return out
}

// normalized returns a copy with abbreviations trimmed, deduplicated and
// sorted so equivalent options fingerprint identically.
func (o Options) normalized() Options {
	seen := make(map[string]struct{}, len(o.Abbreviations))
	abbreviations := make([]string, 0, len(o.Abbreviations))
	for _, abbr := range o.Abbreviations {
		abbr = strings.TrimSpace(abbr)
		if abbr == "" {
			continue
		}
		if _, ok := seen[abbr]; ok {
			continue
		}
		seen[abbr] = struct{}{}
		abbreviations = append(abbreviations, abbr)
	}
	slices.Sort(abbreviations)
	o.Abbreviations = abbreviations
	return o
}

// Fingerprint is the hex SHA-256 of the canonical JSON of the options. It
// fails only for non-finite durations, which JSON cannot carry.
func (o Options) Fingerprint() (string, error) {
	data, err := json.Marshal(o.normalized())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (o Options) alignerOptions() align.Options {
	return align.Options{
		ErrorThreshold: o.AlignmentErrorThreshold,
		MaxSplit:       o.MaxSplitTokens,
		SplitThreshold: o.SplitThreshold,
		Band:           o.AlignmentBand,
	}
}

func (o Options) validatorOptions() consistency.Options {
	return consistency.Options{
		MinWordDuration: o.MinWordDuration,
		DurationFloor:   o.DurationFloor,
	}
}

func (o Options) sentenceOptions() segment.SentenceOptions {
	return segment.SentenceOptions{
		Abbreviations:  o.Abbreviations,
		MinWords:       o.MinSentenceWords,
		RequireCapital: o.RequireCapital,
		MaxChars:       o.MaxSentenceChars,
	}
}

func (o Options) cueOptions() segment.CueOptions {
	return segment.CueOptions{
		MaxChars:       o.MaxSubtitleChars,
		MaxDuration:    o.MaxSubtitleDuration,
		PauseThreshold: o.PauseThreshold,
		LookbackWords:  o.SubtitleLookbackWords,
	}
}
