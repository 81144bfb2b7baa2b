// Package model defines the core data structures used throughout divbalance.
//
// This package contains the following main types:
//   - LineRecord: One diagnostic row for a line containing div tokens
//   - Result: The outcome of scanning one file
//   - Status: Balanced, unclosed or orphaned, derived from the final depth
//   - Comparison: The difference between two results of the same file
//
// Models live in their own package so that the balance, report, pipeline and
// database packages can share them without import cycles. All of them are
// serializable to JSON for report output and history storage.
package model
