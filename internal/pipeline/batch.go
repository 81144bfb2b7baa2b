package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/divbalance/internal/config"
	"golang.org/x/sync/errgroup"
)

// SettingsFunc returns the settings that apply to a path.
type SettingsFunc func(path string) config.FileConfig

// BatchProcessor scans several files concurrently. It uses errgroup to
// bound the number of goroutines and to cancel the batch on the first
// failure.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	pipelineFactory func() *Pipeline

	// settings resolves the per-file range and blocks.
	settings SettingsFunc

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// keepGoing lets the other files finish when one fails.
	keepGoing bool
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithSettings sets the function that resolves per-file settings.
func WithSettings(fn SettingsFunc) BatchOption {
	return func(b *BatchProcessor) {
		if fn != nil {
			b.settings = fn
		}
	}
}

// WithKeepGoing makes a failing file leave the rest of the batch running.
// ProcessBatch then returns every job together with the joined job errors.
func WithKeepGoing(keepGoing bool) BatchOption {
	return func(b *BatchProcessor) {
		b.keepGoing = keepGoing
	}
}

// NewBatchProcessor creates a new BatchProcessor. pipelineFactory is called
// once per file so no step state is shared between files.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		settings:        func(string) config.FileConfig { return config.FileConfig{} },
		concurrency:     config.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs a pipeline for every path and returns the jobs in the
// order of paths. The first failing job cancels the others and its error is
// returned; jobs that never ran are nil. With WithKeepGoing every job runs
// and the returned error joins the errors of all failed jobs.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*Job, error) {
	bp.logger.Debug("starting batch processing",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine owns one index, so no lock is needed.
	jobs := make([]*Job, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := NewJob(path, bp.settings(path))
			jobs[i] = job

			err := bp.pipelineFactory().Execute(ctx, job)
			if err == nil {
				err = job.Err
			}
			if err == nil {
				return nil
			}

			// Cancellation always stops the batch.
			if bp.keepGoing && ctx.Err() == nil {
				bp.logger.Debug("scan failed, continuing",
					"path", path,
					"error", err,
				)
				return nil
			}
			bp.logger.Debug("scan failed",
				"path", path,
				"error", err,
			)
			return err
		})
	}

	err := g.Wait()
	if err == nil && bp.keepGoing {
		err = joinJobErrors(jobs)
	}

	bp.logger.Debug("batch processing complete",
		"total_files", len(paths),
		"elapsed", time.Since(startTime),
	)

	return jobs, err
}

// joinJobErrors joins the errors of failed jobs in path order.
func joinJobErrors(jobs []*Job) error {
	var errs []error
	for _, job := range jobs {
		if job != nil && job.Err != nil {
			errs = append(errs, job.Err)
		}
	}
	return errors.Join(errs...)
}
