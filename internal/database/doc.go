// Package database provides SQLite-based scan history for divbalance.
//
// Every saved scan stores the file path, the SHA3-256 digest of the file
// content, the depth counters and the complete result as JSON. The compare
// command reads the two latest entries for a file to show whether its
// balance improved.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// history is a single file under the XDG data directory. WAL mode is
// enabled by default.
package database
