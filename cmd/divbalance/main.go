// Package main provides the entry point for the divbalance CLI.
//
// divbalance checks that <div> and </div> tags in JSX/TSX source files are
// balanced. For every line that opens or closes a div it prints the counts,
// the running depth and a preview of the line, so the line where the depth
// goes wrong can be found quickly.
//
// Usage:
//
//	divbalance scan <file>...
//	divbalance compare <file>
//
// See --help for all available options.
package main

// main is the entry point for divbalance.
func main() {
	Execute()
}
