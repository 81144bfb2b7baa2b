package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultConcurrency is the number of files scanned at once when more
	// than one file is given. Scans are CPU-light, so this mostly bounds
	// how many files are held in memory simultaneously.
	DefaultConcurrency = 4

	// DefaultColor is the default colorization mode for the summary line.
	DefaultColor = ColorAuto

	// AppName is the application name used for XDG directory paths.
	AppName = "divbalance"
)

// StdinTarget is the target name that scans standard input.
const StdinTarget = "-"

// Colorization modes accepted by --color.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// Config holds all configuration options for a divbalance run.
// It is populated from CLI flags and passed down explicitly; no package
// keeps configuration in global state.
type Config struct {
	// Targets is the list of files to scan. At least one is required.
	// StdinTarget reads standard input instead of a file.
	Targets []string

	// Start and End restrict scanning to a 1-based inclusive line range.
	// Zero leaves that side unbounded. Values from the config file are
	// used when the flags are left at zero.
	Start int
	End   int

	// Concurrency is the number of files scanned at once.
	Concurrency int

	// KeepGoing scans the remaining files after one fails. Failures are
	// reported together once every file has been tried.
	KeepGoing bool

	// Verbose enables debug logging on stderr.
	Verbose bool

	// ConfigFilePath is the path to the .divbalance file.
	// If empty, the current directory and then the home directory are searched.
	ConfigFilePath string

	// FileConfigs holds the per-file settings loaded from the config file.
	FileConfigs *File

	// JSONReport writes a JSON report instead of diagnostic rows.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport writes a Markdown report instead of diagnostic rows.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile redirects the report to a file. Directories are created
	// when missing.
	ReportFile string

	// Summary appends a "Final depth" line after the rows of each file.
	Summary bool

	// Color is one of ColorAuto, ColorOn or ColorOff.
	Color string

	// FailOnUnbalanced makes the command exit with a distinct status when
	// any file has a non-zero final depth.
	FailOnUnbalanced bool

	// SaveToDB stores every result in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/divbalance on Linux).
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
		Color:       DefaultColor,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for divbalance.
// On Linux: ~/.local/share/divbalance
// On macOS: ~/Library/Application Support/divbalance
// On Windows: %LOCALAPPDATA%\divbalance
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for divbalance.
// On Linux: ~/.config/divbalance
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Start < 0 || c.End < 0 || (c.Start > 0 && c.End > 0 && c.Start > c.End) {
		return ErrInvalidRange
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return ErrInvalidColor
	}
	if c.SaveToDB && c.DBDir == "" {
		return ErrNoDBDir
	}
	if stdin := c.stdinTargets(); stdin > 1 {
		return ErrMultipleStdin
	} else if stdin == 1 && c.SaveToDB {
		return ErrSaveStdin
	}
	return nil
}

// stdinTargets counts the targets that name standard input.
func (c *Config) stdinTargets() int {
	n := 0
	for _, target := range c.Targets {
		if target == StdinTarget {
			n++
		}
	}
	return n
}

// ScanSettings returns the effective settings for one target: the config
// file entry for the target merged over the defaults, with non-zero range
// flags taking precedence over both.
func (c *Config) ScanSettings(target string) FileConfig {
	var settings FileConfig
	if c.FileConfigs != nil {
		settings = c.FileConfigs.GetFileConfig(target)
	}
	if c.Start > 0 {
		settings.Start = c.Start
	}
	if c.End > 0 {
		settings.End = c.End
	}
	return settings
}
