package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"timeweave/internal/pipeline"
)

type batchManifest struct {
	Jobs []manifestJob `toml:"job" validate:"required,min=1,dive"`
}

type manifestJob struct {
	Name       string  `toml:"name"`
	Text       string  `toml:"text" validate:"required"`
	Timestamps string  `toml:"timestamps" validate:"required_without=Duration"`
	Format     string  `toml:"format"`
	Engine     string  `toml:"engine"`
	Duration   float64 `toml:"duration" validate:"gte=0"`
	Output     string  `toml:"output" validate:"required"`
	SRT        string  `toml:"srt"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "batch MANIFEST.toml",
		Short: "Build many indexes in parallel from a manifest",
		Long: `Build many indexes in parallel. The manifest lists one [[job]] table per
input:

  [[job]]
  name = "chapter-01"
  text = "chapter-01.txt"
  timestamps = "chapter-01.whisperx.json"
  output = "out/chapter-01.json"
  srt = "out/chapter-01.srt"

Relative paths are resolved against the manifest's directory. A failing job
does not stop the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
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

			results := make([]pipeline.Result, len(manifest.Jobs))
			var (
				jobs  []pipeline.Job
				slots []int
			)
			for i, mj := range manifest.Jobs {
				in, err := loadInput(inputFiles{
					TextPath:       mj.Text,
					TimestampsPath: mj.Timestamps,
					Format:         mj.Format,
					Engine:         mj.Engine,
					Duration:       mj.Duration,
				})
				if err != nil {
					results[i] = pipeline.Result{Name: mj.Name, Err: err}
					continue
				}
				in.ID = mj.Name
				jobs = append(jobs, pipeline.Job{Name: mj.Name, Input: in})
				slots = append(slots, i)
			}

			ran := p.RunBatch(cmd.Context(), jobs, pipeline.BatchOptions{Workers: cfg.Batch.Workers, Cache: c})
			for k, r := range ran {
				results[slots[k]] = r
			}
			if err := pruneCache(cmd, ctx, c); err != nil {
				return err
			}

			failed := 0
			for i, r := range results {
				if r.Err == nil {
					r.Err = writeOutputs(cmd.OutOrStdout(), r.Index, manifest.Jobs[i].Output, manifest.Jobs[i].SRT)
					results[i] = r
				}
				if r.Err != nil {
					failed++
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderBatchResults(results))
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")
	return cmd
}

var manifestValidator = validator.New(validator.WithRequiredStructEnabled())

func loadManifest(path string) (*batchManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest batchManifest
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := manifestValidator.Struct(&manifest); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, fmt.Sprintf("%s failed on the '%s' tag", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid manifest %s: %s", path, strings.Join(issues, "; "))
		}
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range manifest.Jobs {
		job := &manifest.Jobs[i]
		job.Text = resolveRelative(base, job.Text)
		job.Timestamps = resolveRelative(base, job.Timestamps)
		job.Output = resolveRelative(base, job.Output)
		job.SRT = resolveRelative(base, job.SRT)
		if strings.TrimSpace(job.Name) == "" {
			job.Name = strings.TrimSuffix(filepath.Base(job.Text), filepath.Ext(job.Text))
		}
	}
	return &manifest, nil
}

func resolveRelative(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func renderBatchResults(results []pipeline.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, words, cues, warnings := "ok", "-", "-", "-"
		if r.Err != nil {
			status = "failed: " + firstLine(r.Err.Error())
		} else if r.Index != nil {
			words = strconv.Itoa(len(r.Index.Words))
			cues = strconv.Itoa(len(r.Index.Cues))
			warnings = strconv.Itoa(len(r.Index.Warnings))
		}
		rows = append(rows, []string{
			r.Name, status, words, cues, warnings, yesNo(r.Cached), r.Elapsed.Round(time.Millisecond).String(),
		})
	}
	return renderTable(
		[]string{"Job", "Status", "Words", "Cues", "Warnings", "Cached", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignRight},
	)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
