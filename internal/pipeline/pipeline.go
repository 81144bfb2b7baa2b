package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/model"
)

// Job carries one file through a pipeline.
type Job struct {
	// Path is the file to scan, as given on the command line.
	Path string

	// Settings holds the range and blocks that apply to Path.
	Settings config.FileConfig

	// Result is filled by the scan step.
	Result *model.Result

	// ScanID is the history row id, set by the save step.
	ScanID int64

	// PerformedSteps lists the steps that completed, in order.
	PerformedSteps []string

	// Err is the error of the step that failed, if any.
	Err error
}

// NewJob creates a job for path with the given settings.
func NewJob(path string, settings config.FileConfig) *Job {
	return &Job{
		Path:     path,
		Settings: settings,
	}
}

// Step is one stage of work on a Job. Steps run in the order they were
// added, each seeing the job as the previous step left it.
type Step interface {
	// Do performs the step on job.
	Do(ctx context.Context, job *Job) error

	// Name identifies the step in logs and in Job.PerformedSteps.
	Name() string
}

// Pipeline runs a fixed list of steps over one job at a time.
// A Pipeline is not safe for concurrent use; the batch processor builds one
// per file.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run the remaining steps after one
// fails. The first error is still recorded in the job.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty pipeline. Add steps with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps over job. The context is checked before each step
// and a cancelled context stops the run with ctx.Err().
//
// A failing step's error is stored in job.Err (the first one wins) and
// returned, unless the pipeline continues on error, in which case Execute
// moves on to the next step and returns nil.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	log := p.logger.With("path", job.Path)

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			log.Warn("scan cancelled", "step", step.Name(), "reason", err)
			return err
		}

		log.Debug("running step", "step", step.Name())

		err := step.Do(ctx, job)
		if err == nil {
			job.PerformedSteps = append(job.PerformedSteps, step.Name())
			continue
		}

		log.Debug("step failed", "step", step.Name(), "error", err)
		if job.Err == nil {
			job.Err = err
		}
		if !p.continueOnError {
			return err
		}
	}

	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
