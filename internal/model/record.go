package model

import (
	"fmt"
	"strings"
	"unicode"
)

// PreviewLength is the number of characters of the trimmed source line kept
// in a LineRecord.
const PreviewLength = 50

// LineRecord is one diagnostic row: a line that contains at least one div
// token, the counts found on it and the depth after the line was folded in.
type LineRecord struct {
	// Line is the 1-based line number in the scanned file.
	Line int `json:"line"`

	// Openings is the number of <div tokens on the line.
	Openings int `json:"openings"`

	// Closings is the number of </div tokens on the line.
	Closings int `json:"closings"`

	// Depth is the cumulative depth after this line.
	Depth int `json:"depth"`

	// Preview is the original line, whitespace-trimmed and cut to
	// PreviewLength characters. Comments are not removed from it.
	Preview string `json:"preview"`
}

// String renders the record as a diagnostic row.
//
// The opening count always carries a sign while the closing count only shows
// one when negative, so a row reads "Line   12: +1 | 0 | Depth:  3 | <div>".
func (r LineRecord) String() string {
	return fmt.Sprintf("Line %4d: %+d | %d | Depth: %2d | %s",
		r.Line, r.Openings, r.Closings, r.Depth, r.Preview)
}

// Preview trims surrounding white space from line and keeps at most
// PreviewLength characters. Characters are counted as runes, not bytes.
func Preview(line string) string {
	trimmed := strings.TrimFunc(line, isStripSpace)
	count := 0
	for i := range trimmed {
		if count == PreviewLength {
			return trimmed[:i]
		}
		count++
	}
	return trimmed
}

// isStripSpace reports whether r is trimmed from previews: Unicode white
// space plus the ASCII file, group, record and unit separators.
func isStripSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}
