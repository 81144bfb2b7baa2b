package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitUnbalanced = 2
)

// errUnbalanced is returned by scan --fail-unbalanced when a file does not
// end at depth zero.
var errUnbalanced = errors.New("unbalanced div tags")

// NewRootCmd creates the root command for divbalance.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "divbalance",
		Short: "Check that <div> tags in JSX/TSX files are balanced",
		Long: `divbalance reports, line by line, how <div> openings and </div> closings
change the nesting depth of a JSX/TSX file.

Each line that contains a div token produces one row:

  Line   42: +1 | 0 | Depth:  3 | <div className="card">

A final depth of zero means every opening was closed. Comments are ignored,
and tags such as <divider> are not counted.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the matching status.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUnbalanced):
		return exitUnbalanced
	default:
		return exitError
	}
}
