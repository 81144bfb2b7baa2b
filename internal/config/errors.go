package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Callers can match them with errors.Is.
var (
	// ErrNoTarget is returned when no file to scan is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more files to scan")

	// ErrInvalidRange is returned when --start or --end is negative, or
	// when start is after end.
	ErrInvalidRange = errors.New("invalid line range: --start and --end must be non-negative and start must not exceed end")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidColor is returned for an unknown --color value.
	ErrInvalidColor = errors.New("invalid color mode: must be auto, on or off")

	// ErrNoDBDir is returned when saving is requested without a database directory.
	ErrNoDBDir = errors.New("no database directory configured")

	// ErrMultipleStdin is returned when "-" is given more than once.
	ErrMultipleStdin = errors.New("standard input (-) can only be scanned once")

	// ErrSaveStdin is returned when --save is combined with "-". History is
	// keyed by file path and standard input has none.
	ErrSaveStdin = errors.New("scans of standard input (-) cannot be saved")
)
