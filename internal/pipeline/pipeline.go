package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"timeweave/internal/align"
	"timeweave/internal/consistency"
	"timeweave/internal/logging"
	"timeweave/internal/segment"
	"timeweave/internal/temporal"
	"timeweave/internal/tokenize"
)

// Input is one unit of work: the canonical text and the recognizer output
// for the same audio.
type Input struct {
	// ID is copied onto the index. It may be empty.
	ID     string
	Text   string
	Engine string
	Raw    []temporal.RawToken
}

// Pipeline turns canonical text plus raw recognizer tokens into a temporal
// index. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	opts        Options
	fingerprint string
	tokenizer   *tokenize.Tokenizer
	aligner     *align.Aligner
	validator   *consistency.Validator
	logger      *slog.Logger
}

// New validates opts and builds a pipeline. A nil logger discards output.
func New(opts Options, logger *slog.Logger) (*Pipeline, error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	fingerprint, err := opts.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		opts:        opts,
		fingerprint: fingerprint,
		tokenizer:   tokenize.New(opts.Abbreviations),
		aligner:     align.New(opts.alignerOptions()),
		validator:   consistency.New(opts.validatorOptions()),
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// Options returns the normalized options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Fingerprint identifies the options for cache keys.
func (p *Pipeline) Fingerprint() string {
	return p.fingerprint
}

// Run executes every stage and returns a complete index, or an error and no
// index. Tokenization and alignment failures unwrap to
// temporal.ErrTokenization and temporal.ErrAlignment.
func (p *Pipeline) Run(ctx context.Context, in Input) (*temporal.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	runID := in.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := logging.WithContext(logging.WithRunID(ctx, runID), p.logger)
	started := time.Now()

	tokens, err := p.tokenizer.Tokenize(in.Text)
	if err != nil {
		logging.ErrorWithContext(logger, "tokenization failed", "tokenize_failed",
			logging.String(logging.FieldStage, "tokenize"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "source text must be valid UTF-8"),
		)
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	logger.Debug("tokenized", logging.String(logging.FieldStage, "tokenize"), logging.Int("tokens", len(tokens)))

	words, stats, err := p.aligner.Align(tokens, in.Raw)
	if err != nil {
		logging.ErrorWithContext(logger, "alignment failed", "alignment_failed",
			logging.String(logging.FieldStage, "align"),
			logging.String(logging.FieldEngine, in.Engine),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the timestamps belong to this text"),
		)
		return nil, fmt.Errorf("align: %w", err)
	}
	logger.Debug("aligned",
		logging.String(logging.FieldStage, "align"),
		logging.Group("alignment",
			logging.Int("matched", stats.Matched),
			logging.Int("substituted", stats.Substituted),
			logging.Int("split", stats.Split),
			logging.Int("interpolated", stats.Interpolated),
			logging.Int("dropped", stats.Dropped),
			logging.Float64("normalized_cost", stats.NormalizedCost),
		),
	)
	if repaired := stats.Split + stats.Interpolated + stats.Dropped; repaired > 0 {
		attrs := logging.DecisionAttrs("alignment_repair", "repaired", "recognizer tokens did not map one to one onto canonical tokens")
		attrs = append(attrs, logging.String(logging.FieldStage, "align"), logging.Int("tokens_affected", repaired))
		logger.Info("alignment repaired", logging.Args(attrs...)...)
	}

	words, validatorWarnings := p.validator.Validate(words)
	sentences := segment.Sentences(words, p.opts.sentenceOptions())
	scenes, sceneWarnings := segment.Scenes(words, sentences, p.opts.MaxSceneDuration)
	cues, cueWarnings := segment.Cues(words, p.opts.cueOptions())
	cues = segment.LinkCues(cues, sentences)

	warnings := make([]temporal.Warning, 0, len(validatorWarnings)+len(sceneWarnings)+len(cueWarnings))
	warnings = append(warnings, validatorWarnings...)
	warnings = append(warnings, sceneWarnings...)
	warnings = append(warnings, cueWarnings...)
	for _, w := range warnings {
		logger.Debug("correction", logging.String(logging.FieldStage, w.Stage), logging.String("code", w.Code), logging.Int("index", w.Index), logging.String("detail", w.Detail))
	}

	index := &temporal.Index{
		RunID:     in.ID,
		Engine:    in.Engine,
		Words:     words,
		Sentences: sentences,
		Scenes:    scenes,
		Cues:      cues,
		Warnings:  warnings,
		Alignment: stats,
	}
	if err := index.Verify(); err != nil {
		return nil, fmt.Errorf("verify index: %w", err)
	}

	if len(warnings) > 0 {
		overflows := countOverflows(warnings)
		attrs := []logging.Attr{
			logging.Int("warnings", len(warnings)),
			logging.Int("overflows", overflows),
			logging.String(logging.FieldImpact, "timings or segment sizes were adjusted"),
			logging.String(logging.FieldErrorHint, "run inspect --layer warnings for details"),
		}
		if overflows > 0 {
			attrs = append(attrs, logging.Alert("segment_overflow"))
		}
		logging.WarnWithContext(logger, "index built with corrections", "index_corrections", attrs...)
	}
	logger.Info("index built",
		logging.String(logging.FieldEngine, in.Engine),
		logging.Int("words", len(words)),
		logging.Int("sentences", len(sentences)),
		logging.Int("scenes", len(scenes)),
		logging.Int("cues", len(cues)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return index, nil
}

func countOverflows(warnings []temporal.Warning) int {
	n := 0
	for _, w := range warnings {
		if w.IsOverflow() {
			n++
		}
	}
	return n
}
