package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/divbalance/internal/model"
)

func createTestComparison() *model.Comparison {
	previous := model.NewResult("a.tsx")
	previous.ScannedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	previous.Digest = "old"
	previous.FinalDepth = 2
	previous.Openings = 4
	previous.Closings = 2
	previous.Unclosed = []int{3, 7}
	previous.Records = []model.LineRecord{
		{Line: 3, Openings: 1, Depth: 1, Preview: "<div>"},
		{Line: 7, Openings: 1, Depth: 2, Preview: "<div className=\"x\">"},
	}

	current := model.NewResult("a.tsx")
	current.ScannedAt = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	current.Digest = "new"
	current.FinalDepth = 1
	current.Openings = 4
	current.Closings = 3
	current.Unclosed = []int{3}

	return model.Compare(previous, current)
}

// TestWriteComparisonText tests the text comparison output.
func TestWriteComparisonText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteComparisonText(&buf, createTestComparison()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Comparison: a.tsx\n",
		"Balance: IMPROVED (closer to balanced)\n",
		"Previous scan: 2025-06-01 12:00:00  depth 2 (unclosed)\n",
		"Current scan:  2025-06-02 09:30:00  depth 1 (unclosed)\n",
		"Depth change:  -1\n",
		"Content changed: yes\n",
		"Resolved unclosed openings (1): lines 7\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "New unclosed") {
		t.Error("expected no new unclosed section")
	}
}

// TestWriteComparisonMarkdown tests the Markdown comparison output.
func TestWriteComparisonMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("lists changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteComparisonMarkdown(&buf, createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Balance Comparison",
			"`a.tsx`",
			"IMPROVED",
			"Final Depth",
			"Resolved Unclosed Openings (1)",
			"Line 7",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("notes unchanged content", func(t *testing.T) {
		t.Parallel()

		c := createTestComparison()
		c.ContentChanged = false

		var buf bytes.Buffer
		if err := WriteComparisonMarkdown(&buf, c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!NOTE]") {
			t.Error("expected note alert")
		}
	})
}

// TestFormatDelta tests delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{3, "+3"},
		{0, "0"},
		{-2, "-2"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}
