package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/database"
)

// saveScan scans path with --save into dbDir.
func saveScan(t *testing.T, dbDir, path string) {
	t.Helper()

	if _, _, err := runScanArgs(t, "--save", "--db-dir", dbDir, path); err != nil {
		t.Fatalf("failed to save scan of %s: %v", path, err)
	}
}

// setupHistory saves two scans of one file: the first ends at depth 2,
// the second at depth 1 after the second opening was closed.
func setupHistory(t *testing.T) (dbDir, path string) {
	t.Helper()

	dbDir = t.TempDir()
	path = writeSource(t, t.TempDir(), "Panel.tsx", "<div>\n<div>\n")
	saveScan(t, dbDir, path)

	if err := os.WriteFile(path, []byte("<div>\n<div>\n</div>\n"), 0o600); err != nil {
		t.Fatalf("failed to rewrite %s: %v", path, err)
	}
	saveScan(t, dbDir, path)

	return dbDir, path
}

// assertNoDatabase fails when a history database exists in dbDir.
func assertNoDatabase(t *testing.T, dbDir string) {
	t.Helper()

	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no database in %s, got %v", dbDir, err)
	}
}

// runCompareArgs executes the compare command and returns stdout.
func runCompareArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewCompareCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

// TestNewCompareCmd tests the compare command flags.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	for _, name := range []string{"list", "list-files", "with-scan-id", "json", "markdown", "db-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestCompare tests comparing the latest two scans.
func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)

		out, err := runCompareArgs(t, "--db-dir", dbDir, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{
			"Comparison: " + path,
			"Balance: IMPROVED (closer to balanced)",
			"depth 2 (unclosed)",
			"depth 1 (unclosed)",
			"Depth change:  -1",
			"Content changed: yes",
			"Resolved unclosed openings (1): lines 2",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if strings.Contains(out, "New unclosed openings") {
			t.Errorf("expected no new unclosed openings, got:\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)

		out, err := runCompareArgs(t, "--db-dir", dbDir, "--json", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Path             string `json:"path"`
			DepthDelta       int    `json:"depthDelta"`
			ContentChanged   bool   `json:"contentChanged"`
			ResolvedUnclosed []int  `json:"resolvedUnclosed"`
			Direction        string `json:"direction"`
		}
		if err := json.Unmarshal([]byte(out), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if decoded.Path != path || decoded.DepthDelta != -1 || !decoded.ContentChanged {
			t.Errorf("unexpected comparison %+v", decoded)
		}
		if decoded.Direction != "improved" {
			t.Errorf("expected improved, got %q", decoded.Direction)
		}
		if len(decoded.ResolvedUnclosed) != 1 || decoded.ResolvedUnclosed[0] != 2 {
			t.Errorf("expected resolved [2], got %v", decoded.ResolvedUnclosed)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)

		out, err := runCompareArgs(t, "--db-dir", dbDir, "-m", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "# Balance Comparison") {
			t.Errorf("expected markdown heading, got:\n%s", out)
		}
	})

	t.Run("unchanged content", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		path := writeSource(t, t.TempDir(), "a.tsx", "<div>\n</div>\n")
		saveScan(t, dbDir, path)
		saveScan(t, dbDir, path)

		out, err := runCompareArgs(t, "--db-dir", dbDir, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Balance: UNCHANGED") || !strings.Contains(out, "Content changed: no") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("relative and absolute paths share history", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)
		wd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		rel, err := filepath.Rel(wd, path)
		if err != nil {
			t.Skipf("no relative path to %s: %v", path, err)
		}

		if _, err := runCompareArgs(t, "--db-dir", dbDir, rel); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestCompareWithScanID tests comparing against a chosen scan.
func TestCompareWithScanID(t *testing.T) {
	t.Parallel()

	t.Run("compares with the given scan", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)
		path2 := writeSource(t, t.TempDir(), "b.tsx", "</div>\n")
		saveScan(t, dbDir, path2)

		// The first scan of path has ID 1.
		out, err := runCompareArgs(t, "--db-dir", dbDir, "-i", "1", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Depth change:  -1") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("scan of another file is rejected", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)
		other := writeSource(t, t.TempDir(), "b.tsx", "</div>\n")
		saveScan(t, dbDir, other)

		_, err := runCompareArgs(t, "--db-dir", dbDir, "-i", "3", path)
		if err == nil || !strings.Contains(err.Error(), "scan with ID 3 not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("latest scan is rejected", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)

		// The second scan of path has ID 2 and is the latest one.
		_, err := runCompareArgs(t, "--db-dir", dbDir, "-i", "2", path)
		if err == nil || !strings.Contains(err.Error(), "is the latest scan") {
			t.Errorf("expected latest scan error, got %v", err)
		}
	})

	t.Run("a single scan cannot be compared with itself", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		path := writeSource(t, t.TempDir(), "a.tsx", "<div>\n")
		saveScan(t, dbDir, path)

		_, err := runCompareArgs(t, "--db-dir", dbDir, "-i", "1", path)
		if err == nil || !strings.Contains(err.Error(), "at least 2 scans are required") {
			t.Errorf("expected scan count error, got %v", err)
		}
	})
}

// TestCompareListing tests --list and --list-files.
func TestCompareListing(t *testing.T) {
	t.Parallel()

	t.Run("list history", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)

		out, err := runCompareArgs(t, "--db-dir", dbDir, "--list", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "(2 scans)") {
			t.Errorf("expected two scans, got:\n%s", out)
		}
		// Newest first.
		if strings.Index(out, "\n  2 ") > strings.Index(out, "\n  1 ") {
			t.Errorf("expected newest scan first, got:\n%s", out)
		}
	})

	t.Run("list history of unknown file", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		out, err := runCompareArgs(t, "--db-dir", dbDir, "--list", "nowhere.tsx")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No scan history found for nowhere.tsx") {
			t.Errorf("unexpected output:\n%s", out)
		}
		assertNoDatabase(t, dbDir)
	})

	t.Run("list files", func(t *testing.T) {
		t.Parallel()

		dbDir, path := setupHistory(t)
		abs, err := filepath.Abs(path)
		if err != nil {
			t.Fatal(err)
		}

		out, err := runCompareArgs(t, "--db-dir", dbDir, "-L")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Scanned files (1):") || !strings.Contains(out, abs) {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("list files of empty database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		out, err := runCompareArgs(t, "--db-dir", dbDir, "-L")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No saved scans found in the database.") {
			t.Errorf("unexpected output:\n%s", out)
		}
		assertNoDatabase(t, dbDir)
	})
}

// TestCompareErrors tests invalid compare invocations.
func TestCompareErrors(t *testing.T) {
	t.Parallel()

	t.Run("path required", func(t *testing.T) {
		t.Parallel()

		_, err := runCompareArgs(t, "--db-dir", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "file path is required") {
			t.Errorf("expected path error, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, err := runCompareArgs(t, "--db-dir", t.TempDir(), "-j", "-m", "a.tsx")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("negative scan id", func(t *testing.T) {
		t.Parallel()

		_, err := runCompareArgs(t, "--db-dir", t.TempDir(), "-i", "-1", "a.tsx")
		if err == nil {
			t.Error("expected error for negative scan ID")
		}
	})

	t.Run("no history", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		_, err := runCompareArgs(t, "--db-dir", dbDir, "a.tsx")
		if err == nil || !strings.Contains(err.Error(), "no scan history found") {
			t.Errorf("expected no history error, got %v", err)
		}
		assertNoDatabase(t, dbDir)
	})

	t.Run("single scan", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		path := writeSource(t, t.TempDir(), "a.tsx", "<div>\n")
		saveScan(t, dbDir, path)

		_, err := runCompareArgs(t, "--db-dir", dbDir, path)
		if err == nil || !strings.Contains(err.Error(), "at least 2 scans are required") {
			t.Errorf("expected scan count error, got %v", err)
		}
	})
}
