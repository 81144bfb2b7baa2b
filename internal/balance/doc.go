// Package balance implements the div balance scanner.
//
// A scan reads a whole file into memory, splits it into lines and folds
// every line into a running depth:
//
//  1. single-line block comments of the form {/* ... */} are removed
//  2. line comments (everything from // to end of line) are removed
//  3. "<div" not followed by an ASCII letter or digit counts as an opening
//  4. "</div" under the same rule counts as a closing
//  5. a line with at least one token adds openings-closings to the depth
//     and writes one diagnostic row
//
// The tokenizer is pattern based on purpose and keeps its known blind spots:
// block comments spanning several lines are scanned as code, tag-like text
// inside string literals is counted, and self-closing <div /> counts as an
// opening. Results are a pure function of the file content.
//
// # Usage
//
//	depth, err := balance.CheckDivBalance("screens/AdminDashboard.tsx", os.Stdout)
//
//	// Or, for a structured result:
//	s := balance.NewScanner(balance.WithOutput(io.Discard), balance.WithRange(7910, 9140))
//	result, err := s.ScanFile("screens/AdminDashboard.tsx")
package balance
