package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/database"
	"github.com/nao1215/divbalance/internal/model"
	"github.com/nao1215/divbalance/internal/report"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// It compares scan results saved with 'divbalance scan --save'.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file>",
		Short: "Compare saved scan results of a file",
		Long: `Compare shows how the div balance of a file changed between two saved scans.

It reports whether the final depth moved closer to zero, whether the file
content changed, and which unclosed openings are new or resolved.

Scans are saved with 'divbalance scan --save'. At least two saved scans are
needed unless --with-scan-id names the previous one.

Examples:
  # Compare the latest two scans of a file
  divbalance compare src/App.tsx

  # List the scan history of a file
  divbalance compare --list src/App.tsx

  # Compare the latest scan with a specific earlier scan
  divbalance compare --with-scan-id 5 src/App.tsx

  # Output the comparison as JSON
  divbalance compare --json src/App.tsx

  # List every file with saved scans
  divbalance compare --list-files`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified file")
	cmd.Flags().BoolP("list-files", "L", false,
		"List all files with saved scans")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// compareOptions holds the parsed compare flags.
type compareOptions struct {
	path           string
	listFiles      bool
	listHistory    bool
	withScanID     int64
	jsonOutput     bool
	markdownOutput bool
	dbDir          string
}

// parseCompareOptions reads and validates the compare flags.
func parseCompareOptions(cmd *cobra.Command, args []string) (*compareOptions, error) {
	opts := &compareOptions{}
	var err error

	if opts.listFiles, err = cmd.Flags().GetBool("list-files"); err != nil {
		return nil, err
	}
	if opts.listHistory, err = cmd.Flags().GetBool("list"); err != nil {
		return nil, err
	}
	if opts.withScanID, err = cmd.Flags().GetInt64("with-scan-id"); err != nil {
		return nil, err
	}
	if opts.jsonOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if opts.markdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return nil, err
	}

	// Validate before opening the database so bad input leaves no file behind.
	if !opts.listFiles {
		if len(args) == 0 {
			return nil, errors.New("file path is required (use --list-files to see saved files)")
		}
		opts.path = args[0]
	}
	if opts.jsonOutput && opts.markdownOutput {
		return nil, config.ErrConflictingReportFormats
	}
	if opts.withScanID < 0 {
		return nil, fmt.Errorf("invalid scan ID %d", opts.withScanID)
	}

	return opts, nil
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseCompareOptions(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// compare only reads history, so a missing database is not created.
	db, err := database.Open(opts.dbDir, database.Options{EnableWAL: true})
	if errors.Is(err, os.ErrNotExist) {
		return reportEmptyHistory(out, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if opts.listFiles {
		return listScannedFiles(ctx, out, db)
	}
	if opts.listHistory {
		return listScanHistory(ctx, out, db, opts.path)
	}
	return runComparison(ctx, out, db, opts)
}

// reportEmptyHistory answers a compare request when no database exists yet.
func reportEmptyHistory(out io.Writer, opts *compareOptions) error {
	switch {
	case opts.listFiles:
		printNoSavedScans(out)
		return nil
	case opts.listHistory:
		printNoHistory(out, opts.path)
		return nil
	default:
		return fmt.Errorf("no scan history found for %s", opts.path)
	}
}

func printNoSavedScans(out io.Writer) {
	fmt.Fprintln(out, "No saved scans found in the database.")
	fmt.Fprintln(out, "\nUse 'divbalance scan --save <file>' to save a scan.")
}

func printNoHistory(out io.Writer, path string) {
	fmt.Fprintf(out, "No scan history found for %s\n", path)
	fmt.Fprintln(out, "\nUse 'divbalance scan --save' to save a scan of this file.")
}

// listScannedFiles lists all files that have saved scans.
func listScannedFiles(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	files, err := db.ListScannedFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		printNoSavedScans(out)
		return nil
	}

	fmt.Fprintf(out, "Scanned files (%d):\n\n", len(files))
	for _, file := range files {
		fmt.Fprintf(out, "  • %s\n", file)
	}
	fmt.Fprintln(out, "\nUse 'divbalance compare --list <file>' to see the scan history of a file.")

	return nil
}

// listScanHistory lists all saved scans of a file.
func listScanHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, path string) error {
	history, err := db.GetHistoryWithMetadata(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		printNoHistory(out, path)
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", path, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-6s  %-10s  %s\n", "ID", "Date", "Depth", "Status", "Digest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-6d  %-10s  %s\n",
			meta.ID,
			meta.Timestamp.Local().Format("2006-01-02 15:04:05"),
			meta.FinalDepth,
			meta.Status(),
			shortDigest(meta.Digest),
		)
	}

	fmt.Fprintln(out, "\nUse 'divbalance compare <file>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'divbalance compare --with-scan-id <id> <file>' to compare with a specific scan.")

	return nil
}

// shortDigest returns the first 12 characters of a digest.
func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	if digest == "" {
		return "-"
	}
	return digest
}

// runComparison compares the latest scan of a file with an earlier one.
func runComparison(ctx context.Context, out io.Writer, db *database.HistoryDB, opts *compareOptions) error {
	history, err := db.GetHistory(ctx, opts.path)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		return fmt.Errorf("no scan history found for %s", opts.path)
	}

	if len(history) < 2 {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(history))
	}

	// History is newest first.
	current := history[0]

	var previous *model.Result
	if opts.withScanID > 0 {
		previous, err = resultForFile(ctx, db, opts.path, opts.withScanID)
		if err != nil {
			return err
		}
	} else {
		previous = history[1]
	}

	comparison := model.Compare(previous, current)

	switch {
	case opts.jsonOutput:
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(comparison)
		return err
	case opts.markdownOutput:
		return report.WriteComparisonMarkdown(out, comparison)
	default:
		return report.WriteComparisonText(out, comparison)
	}
}

// resultForFile loads a scan by id and checks that it is an earlier scan of
// path.
func resultForFile(ctx context.Context, db *database.HistoryDB, path string, id int64) (*model.Result, error) {
	history, err := db.GetHistoryWithMetadata(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	if !slices.ContainsFunc(history, func(m database.ResultMetadata) bool { return m.ID == id }) {
		return nil, fmt.Errorf("scan with ID %d not found for %s", id, path)
	}
	// History is newest first; the latest scan is the comparison's current side.
	if history[0].ID == id {
		return nil, fmt.Errorf("scan with ID %d is the latest scan of %s; choose an earlier scan (see --list)", id, path)
	}

	result, err := db.GetResultByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan with ID %d: %w", id, err)
	}
	if result == nil {
		return nil, fmt.Errorf("scan with ID %d not found", id)
	}
	return result, nil
}
