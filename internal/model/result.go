package model

import "time"

// Block is a named, 1-based inclusive line range whose local balance is
// reported separately.
type Block struct {
	Name  string `json:"name" yaml:"name"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
}

// BlockResult is the local balance of a Block.
type BlockResult struct {
	Block    Block `json:"block"`
	Openings int   `json:"openings"`
	Closings int   `json:"closings"`
	Balance  int   `json:"balance"`
}

// Status returns the status of the block's local balance.
func (b BlockResult) Status() Status {
	return StatusFromDepth(b.Balance)
}

// Result is the outcome of scanning one file.
type Result struct {
	// Path is the file that was scanned, as given by the caller.
	Path string `json:"path"`

	// ScannedAt is when the scan finished.
	ScannedAt time.Time `json:"scannedAt"`

	// Digest is the hex SHA3-256 of the file content. Empty for results
	// produced from a reader without a digest.
	Digest string `json:"digest,omitempty"`

	// TotalLines is the number of lines in the file.
	TotalLines int `json:"totalLines"`

	// Start and End are the folded line range (1-based, inclusive).
	Start int `json:"start"`
	End   int `json:"end"`

	// Records holds one entry per line with at least one div token,
	// in file order.
	Records []LineRecord `json:"records"`

	// FinalDepth is the depth after the last folded line.
	FinalDepth int `json:"finalDepth"`

	// Openings and Closings are totals over the folded range.
	Openings int `json:"openings"`
	Closings int `json:"closings"`

	// Unclosed lists the line of every opening that was never closed,
	// one entry per opening.
	Unclosed []int `json:"unclosed,omitempty"`

	// Orphans lists the line of every closing seen while no opening was
	// pending, one entry per closing.
	Orphans []int `json:"orphans,omitempty"`

	// Blocks holds the local balance of each configured block.
	Blocks []BlockResult `json:"blocks,omitempty"`
}

// NewResult creates an empty Result for path.
func NewResult(path string) *Result {
	return &Result{
		Path:    path,
		Records: make([]LineRecord, 0),
	}
}

// Status returns the status of the final depth.
func (r *Result) Status() Status {
	return StatusFromDepth(r.FinalDepth)
}

// IsBalanced reports whether the final depth is zero.
func (r *Result) IsBalanced() bool {
	return r.FinalDepth == 0
}

// TokenLines returns the number of lines that produced a row.
func (r *Result) TokenLines() int {
	return len(r.Records)
}

// MaxDepth returns the deepest depth reached during the scan.
func (r *Result) MaxDepth() int {
	maxDepth := 0
	for _, rec := range r.Records {
		if rec.Depth > maxDepth {
			maxDepth = rec.Depth
		}
	}
	return maxDepth
}

// Record returns the record for a line, if that line produced one.
func (r *Result) Record(line int) (LineRecord, bool) {
	for _, rec := range r.Records {
		if rec.Line == line {
			return rec, true
		}
	}
	return LineRecord{}, false
}
