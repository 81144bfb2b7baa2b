package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status classifies the final depth of a scan.
type Status int

const (
	// StatusBalanced means every <div was matched by a </div in file order.
	StatusBalanced Status = iota

	// StatusUnclosed means the file has more openings than closings.
	// The final depth is positive.
	StatusUnclosed

	// StatusOrphaned means the file has more closings than openings.
	// The final depth is negative.
	StatusOrphaned
)

// StatusFromDepth returns the status matching a final depth.
func StatusFromDepth(depth int) Status {
	switch {
	case depth > 0:
		return StatusUnclosed
	case depth < 0:
		return StatusOrphaned
	default:
		return StatusBalanced
	}
}

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusBalanced:
		return "balanced"
	case StatusUnclosed:
		return "unclosed"
	case StatusOrphaned:
		return "orphaned"
	default:
		return "unknown"
	}
}

// Description returns a one-sentence explanation of the status.
func (s Status) Description() string {
	switch s {
	case StatusBalanced:
		return "Every opening div is matched by a closing div."
	case StatusUnclosed:
		return "Some opening divs are never closed."
	case StatusOrphaned:
		return "Some closing divs appear before any matching opening div."
	default:
		return ""
	}
}

// ParseStatus converts a status name back into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "balanced":
		return StatusBalanced, nil
	case "unclosed":
		return StatusUnclosed, nil
	case "orphaned":
		return StatusOrphaned, nil
	default:
		return StatusBalanced, fmt.Errorf("unknown status %q", s)
	}
}

// MarshalJSON encodes the status as its name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
