package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/divbalance/internal/model"
)

// FileName is the name of the history database inside the data directory.
const FileName = "divbalance.db"

// timestampLayout is fixed width so timestamps sort as strings.
const timestampLayout = "2006-01-02 15:04:05.000000"

// HistoryDB stores scan results in SQLite.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// With CreateIfNotExists false a missing database is an error and nothing
// is created on disk.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the location of the database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL,
		digest TEXT,
		final_depth INTEGER NOT NULL,
		openings INTEGER NOT NULL,
		closings INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_path ON scan_results(path);
	CREATE INDEX IF NOT EXISTS idx_results_timestamp ON scan_results(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveResult stores a result and returns its id. The path column holds the
// absolute form of result.Path so lookups work from any directory.
func (h *HistoryDB) SaveResult(ctx context.Context, result *model.Result) (int64, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}

	scannedAt := result.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	query := `
	INSERT INTO scan_results (path, digest, final_depth, openings, closings, timestamp, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	res, err := h.db.ExecContext(ctx, query,
		normalizePath(result.Path),
		result.Digest,
		result.FinalDepth,
		result.Openings,
		result.Closings,
		scannedAt.UTC().Format(timestampLayout),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan result: %w", err)
	}

	return res.LastInsertId()
}

// GetLatestResult retrieves the most recent result for path.
// It returns nil without error when the file was never saved.
func (h *HistoryDB) GetLatestResult(ctx context.Context, path string) (*model.Result, error) {
	query := `
	SELECT result_json FROM scan_results
	WHERE path = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	return h.queryResult(ctx, query, normalizePath(path))
}

// GetResultByID retrieves a result by its database id.
// It returns nil without error when no such row exists.
func (h *HistoryDB) GetResultByID(ctx context.Context, id int64) (*model.Result, error) {
	query := `
	SELECT result_json FROM scan_results
	WHERE id = ?
	`

	return h.queryResult(ctx, query, id)
}

// queryResult runs a query returning a single result_json column.
func (h *HistoryDB) queryResult(ctx context.Context, query string, args ...any) (*model.Result, error) {
	var resultJSON string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan result: %w", err)
	}

	var result model.Result
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}

	return &result, nil
}

// GetHistory retrieves every result for path, newest first.
// Rows whose JSON cannot be parsed are skipped.
func (h *HistoryDB) GetHistory(ctx context.Context, path string) ([]*model.Result, error) {
	query := `
	SELECT result_json FROM scan_results
	WHERE path = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, normalizePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []*model.Result
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		var result model.Result
		if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
			continue
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// ResultMetadata contains summary information about a stored result.
// It is used for listing history without loading the rows.
type ResultMetadata struct {
	// ID is the unique identifier of the result in the database.
	ID int64 `json:"id"`

	// Path is the absolute path of the scanned file.
	Path string `json:"path"`

	// Digest is the SHA3-256 of the file content at scan time.
	Digest string `json:"digest"`

	// FinalDepth, Openings and Closings are the scan counters.
	FinalDepth int `json:"finalDepth"`
	Openings   int `json:"openings"`
	Closings   int `json:"closings"`

	// Timestamp is when the scan was performed.
	Timestamp time.Time `json:"timestamp"`
}

// Status returns the status implied by the final depth.
func (m ResultMetadata) Status() model.Status {
	return model.StatusFromDepth(m.FinalDepth)
}

// GetHistoryWithMetadata retrieves result metadata for path, newest first.
func (h *HistoryDB) GetHistoryWithMetadata(ctx context.Context, path string) ([]ResultMetadata, error) {
	query := `
	SELECT id, path, digest, final_depth, openings, closings, timestamp
	FROM scan_results
	WHERE path = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, normalizePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ResultMetadata
	for rows.Next() {
		var meta ResultMetadata
		var digest sql.NullString
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Path,
			&digest,
			&meta.FinalDepth,
			&meta.Openings,
			&meta.Closings,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Digest = digest.String
		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListScannedFiles returns every path with at least one saved result.
func (h *HistoryDB) ListScannedFiles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT path FROM scan_results
	ORDER BY path
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, rows.Err()
}

// normalizePath returns the absolute, cleaned form of path.
func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
