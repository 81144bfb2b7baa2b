package config

import (
	"path/filepath"

	"github.com/nao1215/divbalance/internal/model"
)

// FileConfig holds the settings for a single scanned file.
type FileConfig struct {
	// Start and End restrict scanning to a 1-based inclusive line range.
	// Zero leaves that side unbounded.
	Start int `yaml:"start,omitempty"`
	End   int `yaml:"end,omitempty"`

	// Blocks are named line ranges whose local balance is reported.
	Blocks []model.Block `yaml:"blocks,omitempty"`
}

// File represents the structure of the .divbalance configuration file.
type File struct {
	// Files maps file paths to their settings. Keys are matched against the
	// path given on the command line, its cleaned form and its base name.
	Files map[string]FileConfig `yaml:"files,omitempty"`

	// Defaults applies to every file unless overridden by a Files entry.
	Defaults FileConfig `yaml:"defaults,omitempty"`
}

// GetFileConfig returns the configuration for path merged over defaults.
func (cf *File) GetFileConfig(path string) FileConfig {
	result := cf.Defaults
	result.Blocks = append([]model.Block(nil), cf.Defaults.Blocks...)

	override, ok := cf.lookup(path)
	if !ok {
		return result
	}

	if override.Start != 0 {
		result.Start = override.Start
	}
	if override.End != 0 {
		result.End = override.End
	}
	if len(override.Blocks) > 0 {
		result.Blocks = append([]model.Block(nil), override.Blocks...)
	}
	return result
}

// lookup finds the entry for path by exact key, cleaned path, then base name.
func (cf *File) lookup(path string) (FileConfig, bool) {
	if fc, ok := cf.Files[path]; ok {
		return fc, true
	}
	if fc, ok := cf.Files[filepath.Clean(path)]; ok {
		return fc, true
	}
	if fc, ok := cf.Files[filepath.Base(path)]; ok {
		return fc, true
	}
	return FileConfig{}, false
}
