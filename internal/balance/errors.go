package balance

import "errors"

var (
	// ErrInvalidRange is returned when a line range is negative or ends
	// before it starts.
	ErrInvalidRange = errors.New("invalid line range: start and end must be non-negative and start must not exceed end")

	// ErrInvalidBlock is returned when a block has no name or an invalid range.
	ErrInvalidBlock = errors.New("invalid block: name is required and 1 <= start <= end")
)
