package model

// Direction describes how the balance of a file moved between two scans.
type Direction string

const (
	// DirectionImproved means the final depth moved closer to zero.
	DirectionImproved Direction = "improved"
	// DirectionWorsened means the final depth moved away from zero.
	DirectionWorsened Direction = "worsened"
	// DirectionUnchanged means the absolute final depth did not change.
	DirectionUnchanged Direction = "unchanged"
)

// Comparison is the difference between a previous and a current result of
// the same file.
type Comparison struct {
	Path     string  `json:"path"`
	Previous *Result `json:"previous"`
	Current  *Result `json:"current"`

	// DepthDelta is Current.FinalDepth - Previous.FinalDepth.
	DepthDelta int `json:"depthDelta"`

	// ContentChanged is false when both digests are known and equal.
	ContentChanged bool `json:"contentChanged"`

	// NewUnclosed are unclosed lines present only in Current.
	NewUnclosed []int `json:"newUnclosed,omitempty"`

	// ResolvedUnclosed are unclosed lines present only in Previous.
	ResolvedUnclosed []int `json:"resolvedUnclosed,omitempty"`

	Direction Direction `json:"direction"`
}

// Compare builds a Comparison between previous and current.
func Compare(previous, current *Result) *Comparison {
	c := &Comparison{
		Path:       current.Path,
		Previous:   previous,
		Current:    current,
		DepthDelta: current.FinalDepth - previous.FinalDepth,
	}

	c.ContentChanged = previous.Digest == "" || current.Digest == "" || previous.Digest != current.Digest
	c.NewUnclosed = lineDifference(current.Unclosed, previous.Unclosed)
	c.ResolvedUnclosed = lineDifference(previous.Unclosed, current.Unclosed)

	prevAbs, curAbs := abs(previous.FinalDepth), abs(current.FinalDepth)
	switch {
	case curAbs < prevAbs:
		c.Direction = DirectionImproved
	case curAbs > prevAbs:
		c.Direction = DirectionWorsened
	default:
		c.Direction = DirectionUnchanged
	}

	return c
}

// lineDifference returns the lines of a that are not in b, keeping the
// multiplicity of repeated lines.
func lineDifference(a, b []int) []int {
	remaining := make(map[int]int, len(b))
	for _, line := range b {
		remaining[line]++
	}

	var diff []int
	for _, line := range a {
		if remaining[line] > 0 {
			remaining[line]--
			continue
		}
		diff = append(diff, line)
	}
	return diff
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
