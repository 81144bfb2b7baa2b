package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/divbalance/internal/balance"
	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/model"
)

// ErrNoResult is returned by steps that need a scan result when the job
// does not have one yet.
var ErrNoResult = errors.New("job has no scan result")

// ErrNoInput is returned when a job names standard input but the scan step
// has no input reader.
var ErrNoInput = errors.New("no input reader for standard input")

// ScanStep folds the job's file into a result with a balance.Scanner.
// Rows go to the step's output, which discards them by default: in a
// batch they are replayed from the result once every file is done.
type ScanStep struct {
	// output receives the rows written while scanning.
	output io.Writer

	// input is read for jobs whose path is config.StdinTarget.
	input io.Reader

	// logger for structured logging.
	logger *slog.Logger
}

// ScanStepOption configures a ScanStep.
type ScanStepOption func(*ScanStep)

// WithScanOutput sets the writer that receives live rows.
func WithScanOutput(w io.Writer) ScanStepOption {
	return func(s *ScanStep) {
		s.output = w
	}
}

// WithScanInput sets the reader scanned for the "-" target.
func WithScanInput(r io.Reader) ScanStepOption {
	return func(s *ScanStep) {
		s.input = r
	}
}

// WithScanLogger sets a custom logger for the scan step.
func WithScanLogger(logger *slog.Logger) ScanStepOption {
	return func(s *ScanStep) {
		s.logger = logger
	}
}

// NewScanStep creates a new scanning step.
func NewScanStep(opts ...ScanStepOption) *ScanStep {
	s := &ScanStep{
		output: io.Discard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do executes the scan step.
func (s *ScanStep) Do(_ context.Context, job *Job) error {
	scanner := balance.NewScanner(
		balance.WithOutput(s.output),
		balance.WithLogger(s.logger),
		balance.WithRange(job.Settings.Start, job.Settings.End),
		balance.WithBlocks(job.Settings.Blocks),
	)

	var (
		result *model.Result
		err    error
	)
	if job.Path == config.StdinTarget {
		if s.input == nil {
			return ErrNoInput
		}
		result, err = scanner.ScanReader(job.Path, s.input)
	} else {
		result, err = scanner.ScanFile(job.Path)
	}
	if err != nil {
		return err
	}
	job.Result = result
	return nil
}

// ResultStore persists scan results.
type ResultStore interface {
	SaveResult(ctx context.Context, result *model.Result) (int64, error)
}

// SaveStep stores the job's result in a ResultStore.
type SaveStep struct {
	store  ResultStore
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a step that saves results to store.
func NewSaveStep(store ResultStore, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, job *Job) error {
	if job.Result == nil {
		return ErrNoResult
	}

	id, err := s.store.SaveResult(ctx, job.Result)
	if err != nil {
		return fmt.Errorf("failed to save result for %s: %w", job.Path, err)
	}
	job.ScanID = id

	s.logger.Debug("result saved",
		"path", job.Path,
		"id", id,
	)
	return nil
}

// DefaultPipelineConfig holds the settings of DefaultPipeline.
type DefaultPipelineConfig struct {
	// Output receives rows while files are scanned. Nil discards them.
	Output io.Writer

	// Input is scanned for the "-" target.
	Input io.Reader

	// ContinueOnError records step failures in Job.Err instead of returning
	// them from Execute.
	ContinueOnError bool
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineOutput sets the writer that receives live rows.
func WithPipelineOutput(w io.Writer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Output = w
	}
}

// WithPipelineInput sets the reader scanned for the "-" target.
func WithPipelineInput(r io.Reader) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Input = r
	}
}

// WithPipelineContinueOnError keeps running steps after one fails.
func WithPipelineContinueOnError(continueOnError bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ContinueOnError = continueOnError
	}
}

// DefaultPipeline creates the standard pipeline: a scan step, followed by
// a save step when store is not nil.
func DefaultPipeline(store ResultStore, logger *slog.Logger, opts ...DefaultPipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	var cfg DefaultPipelineConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	scanOpts := []ScanStepOption{WithScanLogger(logger)}
	if cfg.Output != nil {
		scanOpts = append(scanOpts, WithScanOutput(cfg.Output))
	}
	if cfg.Input != nil {
		scanOpts = append(scanOpts, WithScanInput(cfg.Input))
	}

	p := New(
		WithLogger(logger),
		WithContinueOnError(cfg.ContinueOnError),
	)
	p.AddStep(NewScanStep(scanOpts...))
	if store != nil {
		p.AddStep(NewSaveStep(store, WithSaveLogger(logger)))
	}
	return p
}
