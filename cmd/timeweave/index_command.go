package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"timeweave/internal/cache"
	"timeweave/internal/export"
	"timeweave/internal/fileutil"
	"timeweave/internal/logging"
	"timeweave/internal/pipeline"
	"timeweave/internal/temporal"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var (
		files      inputFiles
		outputPath string
		srtPath    string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a temporal index from text and recognizer timestamps",
		Long: `Build a temporal index from a canonical text file and the timestamp
payload a recognizer produced for the same audio.

The index is written as JSON to stdout, or to --output. A summary is printed
to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInput(files)
			if err != nil {
				return err
			}
			p, err := ctx.newPipeline()
			if err != nil {
				return err
			}
			c, err := ctx.openCache(noCache)
			if err != nil {
				return err
			}
			defer c.Close()

			index, cached, err := p.RunCached(cmd.Context(), c, in)
			if err != nil {
				return withHint(err)
			}
			if err := pruneCache(cmd, ctx, c); err != nil {
				return err
			}

			if err := writeOutputs(cmd.OutOrStdout(), index, outputPath, srtPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(index, cached))
			return nil
		},
	}

	cmd.Flags().StringVar(&files.TextPath, "text", "", "Canonical text file (UTF-8)")
	cmd.Flags().StringVar(&files.TimestampsPath, "timestamps", "", "Recognizer timestamp payload (JSON)")
	cmd.Flags().StringVar(&files.Format, "format", "auto", "Timestamp format: auto, whisperx, elevenlabs-alignment, elevenlabs-words, tokens")
	cmd.Flags().StringVar(&files.Engine, "engine", "", "Engine name recorded on the index (defaults to the detected format)")
	cmd.Flags().Float64Var(&files.Duration, "duration", 0, "Audio duration in seconds; spreads words evenly when no timestamps are given")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the index JSON to this file instead of stdout")
	cmd.Flags().StringVar(&srtPath, "srt", "", "Also write subtitle cues as SRT to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

// withHint adds a remediation hint to fatal pipeline errors.
func withHint(err error) error {
	switch {
	case errors.Is(err, temporal.ErrAlignment):
		return fmt.Errorf("%w\nhint: the timestamps do not match this text; check that both come from the same audio", err)
	case errors.Is(err, temporal.ErrTokenization):
		return fmt.Errorf("%w\nhint: re-save the text file as UTF-8", err)
	case errors.Is(err, pipeline.ErrInvalidOptions):
		return fmt.Errorf("%w\nhint: run `timeweave config validate`", err)
	}
	return err
}

func pruneCache(cmd *cobra.Command, ctx *commandContext, c *cache.Cache) error {
	if c == nil {
		return nil
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.MaxEntries <= 0 {
		return nil
	}
	if _, err := c.Prune(cmd.Context(), cfg.Cache.MaxEntries); err != nil {
		logger, _ := ctx.ensureLogger()
		logging.WarnWithContext(logger, "cache prune failed", "cache_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "cache may grow beyond max_entries"),
			logging.String(logging.FieldErrorHint, "run timeweave cache clear"),
		)
	}
	return nil
}

// writeOutputs writes the JSON index to outputPath, or to stdout when it is
// empty, and the SRT rendering when srtPath is set.
func writeOutputs(stdout io.Writer, index *temporal.Index, outputPath, srtPath string) error {
	var buf bytes.Buffer
	if err := export.WriteIndexJSON(&buf, index); err != nil {
		return err
	}
	if outputPath = strings.TrimSpace(outputPath); outputPath != "" {
		if err := writeFile(outputPath, buf.Bytes()); err != nil {
			return err
		}
	} else if _, err := stdout.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if srtPath = strings.TrimSpace(srtPath); srtPath != "" {
		var srt bytes.Buffer
		if err := export.WriteSRT(&srt, index); err != nil {
			return err
		}
		if err := writeFile(srtPath, srt.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func renderSummary(index *temporal.Index, cached bool) string {
	stats := index.Alignment
	return keyValueTable([][2]string{
		{"Engine", fallback(index.Engine, "-")},
		{"Words", strconv.Itoa(len(index.Words))},
		{"Sentences", strconv.Itoa(len(index.Sentences))},
		{"Scenes", strconv.Itoa(len(index.Scenes))},
		{"Cues", strconv.Itoa(len(index.Cues))},
		{"Duration", formatSeconds(index.Duration())},
		{"Matched", strconv.Itoa(stats.Matched)},
		{"Substituted", strconv.Itoa(stats.Substituted)},
		{"Split", strconv.Itoa(stats.Split)},
		{"Interpolated", strconv.Itoa(stats.Interpolated)},
		{"Dropped", strconv.Itoa(stats.Dropped)},
		{"Alignment cost", strconv.FormatFloat(stats.NormalizedCost, 'f', 3, 64)},
		{"Warnings", strconv.Itoa(len(index.Warnings))},
		{"Cached", yesNo(cached)},
	})
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64) + "s"
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
