package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/database"
	applog "github.com/nao1215/divbalance/internal/log"
	"github.com/nao1215/divbalance/internal/model"
	"github.com/nao1215/divbalance/internal/pipeline"
	"github.com/nao1215/divbalance/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Report div balance line by line",
		Long: `Scan reads each file, ignores comments, and prints one row for every line
that contains a <div opening or a </div closing:

  Line <n>: +<openings> | <closings> | Depth: <depth> | <preview>

The depth is the running sum of openings minus closings. The last row's
depth is the final depth: 0 is balanced, a positive value counts unclosed
divs and a negative value counts extra closings.

Examples:
  # Check a single file
  divbalance scan src/screens/AdminDashboard.tsx

  # Check several files concurrently, with a summary per file
  divbalance scan --summary src/**/*.tsx

  # Report every file even when some cannot be read
  divbalance scan --keep-going src/**/*.tsx

  # Check generated markup from standard input
  render-page | divbalance scan -

  # Only fold lines 120 to 480
  divbalance scan -s 120 -e 480 src/screens/AdminDashboard.tsx

  # Fail in CI when a file is unbalanced (exit status 2)
  divbalance scan --fail-unbalanced src/App.tsx

  # Write a Markdown report and keep the result for 'divbalance compare'
  divbalance scan -m -o report.md --save src/App.tsx

Configuration file (.divbalance) example:
  files:
    src/screens/AdminDashboard.tsx:
      start: 120
      end: 480
      blocks:
        - name: lead table
          start: 200
          end: 460`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Range flags
	cmd.Flags().IntP("start", "s", 0,
		"First line to fold (1-based, 0 means the first line)")
	cmd.Flags().IntP("end", "e", 0,
		"Last line to fold (inclusive, 0 means the last line)")

	// Batch scanning flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of files scanned concurrently")
	cmd.Flags().BoolP("keep-going", "k", false,
		"Scan the remaining files when one fails and report all failures at the end")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .divbalance in current, XDG config or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("summary", false,
		"Print the final depth and the lines of unclosed and orphaned divs")
	cmd.Flags().String("color", config.DefaultColor,
		"Colorize the summary: auto, on or off")
	cmd.Flags().Bool("fail-unbalanced", false,
		"Exit with status 2 when a file does not end at depth 0")

	// History flags
	cmd.Flags().Bool("save", false,
		"Save results to the history database for 'divbalance compare'")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Start, err = cmd.Flags().GetInt("start")
	if err != nil {
		return nil, err
	}

	cfg.End, err = cmd.Flags().GetInt("end")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.KeepGoing, err = cmd.Flags().GetBool("keep-going")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit config path must exist. Without one, a missing file
	// means no per-file settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.FileConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	} else {
		cfg.FileConfigs = &config.File{
			Files: make(map[string]config.FileConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Summary, err = cmd.Flags().GetBool("summary")
	if err != nil {
		return nil, err
	}

	cfg.Color, err = cmd.Flags().GetString("color")
	if err != nil {
		return nil, err
	}

	cfg.FailOnUnbalanced, err = cmd.Flags().GetBool("fail-unbalanced")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// runScan scans every target and writes the report to stdout or the
// report file. The "-" target is read from stdin.
func runScan(ctx context.Context, stdin io.Reader, stdout io.Writer, cfg *config.Config, logger *slog.Logger) error {
	logger.Debug("starting scan",
		"targets", cfg.Targets,
		"concurrency", cfg.Concurrency,
		"saveToDB", cfg.SaveToDB,
	)

	// store stays a nil interface when saving is disabled.
	var store pipeline.ResultStore
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
		store = db
	}

	output, closeOutput, err := openOutput(stdout, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeOutput()

	var results []*model.Result
	if streamsRows(cfg) {
		results, err = runStreamingScan(ctx, stdin, output, cfg, store, logger)
	} else {
		results, err = runBatchScan(ctx, stdin, output, cfg, store, logger)
	}
	if err != nil {
		return err
	}

	return checkBalance(cfg, results)
}

// streamsRows reports whether rows can be printed while the file is read.
// This holds for a single file in text mode; everything else is rendered
// after the scan.
func streamsRows(cfg *config.Config) bool {
	return len(cfg.Targets) == 1 && !cfg.JSONReport && !cfg.MarkdownReport
}

// runStreamingScan scans a single file and prints rows as they are found.
func runStreamingScan(ctx context.Context, stdin io.Reader, output io.Writer, cfg *config.Config, store pipeline.ResultStore, logger *slog.Logger) ([]*model.Result, error) {
	target := cfg.Targets[0]

	p := pipeline.DefaultPipeline(store, logger,
		pipeline.WithPipelineOutput(output),
		pipeline.WithPipelineInput(stdin),
	)

	job := pipeline.NewJob(target, cfg.ScanSettings(target))
	if err := p.Execute(ctx, job); err != nil {
		return nil, err
	}

	trailer := report.NewTextWriter(output,
		report.WithRows(false),
		report.WithSummary(cfg.Summary),
		report.WithColor(colorMode(cfg)),
	)
	if _, err := trailer.Write(job.Result); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return []*model.Result{job.Result}, nil
}

// runBatchScan scans all files concurrently, then writes the results in
// argument order. With --keep-going the files that were scanned are written
// and the scan errors are returned afterwards.
func runBatchScan(ctx context.Context, stdin io.Reader, output io.Writer, cfg *config.Config, store pipeline.ResultStore, logger *slog.Logger) ([]*model.Result, error) {
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(store, logger,
				pipeline.WithPipelineInput(stdin),
				pipeline.WithPipelineContinueOnError(cfg.KeepGoing),
			)
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
		pipeline.WithSettings(cfg.ScanSettings),
		pipeline.WithKeepGoing(cfg.KeepGoing),
	)

	jobs, scanErr := bp.ProcessBatch(ctx, cfg.Targets)
	if scanErr != nil && !cfg.KeepGoing {
		return nil, scanErr
	}

	results := make([]*model.Result, 0, len(jobs))
	for _, job := range jobs {
		if job != nil && job.Result != nil {
			results = append(results, job.Result)
		}
	}

	if err := writeResults(output, cfg, results); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return results, nil
}

// writeResults renders results in the requested format.
func writeResults(output io.Writer, cfg *config.Config, results []*model.Result) error {
	switch {
	case cfg.JSONReport:
		w := report.NewJSONWriter(output, report.WithPrettyPrint())
		if len(cfg.Targets) == 1 {
			if len(results) == 0 {
				return nil
			}
			_, err := w.Write(results[0])
			return err
		}
		reports := make([]*report.JSONReport, len(results))
		for i, result := range results {
			reports[i] = report.NewJSONReport(result)
		}
		_, err := w.WriteValue(reports)
		return err

	case cfg.MarkdownReport:
		w := report.NewMarkdownWriter(output)
		for i, result := range results {
			if i > 0 {
				if _, err := io.WriteString(output, "\n"); err != nil {
					return err
				}
			}
			if _, err := w.Write(result); err != nil {
				return err
			}
		}
		return nil

	default:
		w := report.NewTextWriter(output,
			report.WithHeader(len(cfg.Targets) > 1),
			report.WithSummary(cfg.Summary),
			report.WithColor(colorMode(cfg)),
		)
		for i, result := range results {
			if i > 0 {
				if _, err := io.WriteString(output, "\n"); err != nil {
					return err
				}
			}
			if _, err := w.Write(result); err != nil {
				return err
			}
		}
		return nil
	}
}

// colorMode returns the effective color mode. Reports written to a file
// are never colored in auto mode.
func colorMode(cfg *config.Config) string {
	if cfg.Color == config.ColorAuto && cfg.ReportFile != "" {
		return config.ColorOff
	}
	return cfg.Color
}

// openOutput returns the report destination. With an empty path it is
// stdout and the close function does nothing.
func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // User-provided report path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// checkBalance returns errUnbalanced when --fail-unbalanced is set and any
// result has a non-zero final depth.
func checkBalance(cfg *config.Config, results []*model.Result) error {
	if !cfg.FailOnUnbalanced {
		return nil
	}

	var unbalanced []string
	for _, result := range results {
		if !result.IsBalanced() {
			unbalanced = append(unbalanced, fmt.Sprintf("%s (depth %d)", result.Path, result.FinalDepth))
		}
	}
	if len(unbalanced) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", errUnbalanced, strings.Join(unbalanced, ", "))
}
