// Package config provides configuration structures and utilities for divbalance.
// It defines the options collected from CLI flags, the .divbalance YAML file
// with per-file line ranges and named blocks, and the XDG directories used
// for the history database.
package config
