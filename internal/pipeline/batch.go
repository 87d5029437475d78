package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"timeweave/internal/cache"
	"timeweave/internal/logging"
	"timeweave/internal/temporal"
)

// Job is one named batch input.
type Job struct {
	Name  string
	Input Input
}

// Result is the outcome of one job. Exactly one of Index and Err is set.
type Result struct {
	Name    string
	Index   *temporal.Index
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// BatchOptions configure RunBatch.
type BatchOptions struct {
	// Workers bounds parallelism. Values below 1 run jobs one at a time.
	Workers int
	// Cache, when set, serves and stores results.
	Cache *cache.Cache
}

// RunBatch runs independent jobs in parallel. Results come back in job
// order. A failing job records its error and never cancels the others;
// cancelling ctx fails the jobs that have not started yet.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []Job, opts BatchOptions) []Result {
	results := make([]Result, len(jobs))
	var g errgroup.Group
	g.SetLimit(max(opts.Workers, 1))
	for i, job := range jobs {
		g.Go(func() error {
			started := time.Now()
			jobCtx := logging.WithJob(ctx, job.Name)
			index, cached, err := p.RunCached(jobCtx, opts.Cache, job.Input)
			results[i] = Result{Name: job.Name, Index: index, Cached: cached, Err: err, Elapsed: time.Since(started)}
			if err != nil {
				logging.WithContext(jobCtx, p.logger).Warn("batch job failed",
					logging.String(logging.FieldEventType, "batch_job_failed"),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the job input and rerun the batch"),
					logging.String(logging.FieldImpact, "no index written for this job"),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info("batch complete", logging.Int("jobs", len(jobs)), logging.Int("failed", failed), logging.Int("workers", max(opts.Workers, 1)))
	return results
}
