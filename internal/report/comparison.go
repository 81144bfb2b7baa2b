package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/divbalance/internal/model"
	"github.com/nao1215/markdown"
)

// comparisonTimeLayout is used for scan dates in comparisons.
const comparisonTimeLayout = "2006-01-02 15:04:05"

// WriteComparisonText writes a human-readable comparison of two scans.
func WriteComparisonText(w io.Writer, c *model.Comparison) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Comparison: %s\n", c.Path)
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	fmt.Fprintf(&sb, "\nBalance: %s\n", formatDirection(c.Direction))

	fmt.Fprintf(&sb, "\nPrevious scan: %s  depth %d (%s)\n",
		c.Previous.ScannedAt.Format(comparisonTimeLayout), c.Previous.FinalDepth, c.Previous.Status())
	fmt.Fprintf(&sb, "Current scan:  %s  depth %d (%s)\n",
		c.Current.ScannedAt.Format(comparisonTimeLayout), c.Current.FinalDepth, c.Current.Status())
	fmt.Fprintf(&sb, "Depth change:  %s\n", formatDelta(c.DepthDelta))
	fmt.Fprintf(&sb, "Content changed: %s\n", yesNo(c.ContentChanged))

	if len(c.NewUnclosed) > 0 {
		fmt.Fprintf(&sb, "\nNew unclosed openings (%d): lines %s\n", len(c.NewUnclosed), joinLines(c.NewUnclosed))
	}
	if len(c.ResolvedUnclosed) > 0 {
		fmt.Fprintf(&sb, "\nResolved unclosed openings (%d): lines %s\n", len(c.ResolvedUnclosed), joinLines(c.ResolvedUnclosed))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteComparisonMarkdown writes a comparison of two scans as Markdown.
func WriteComparisonMarkdown(w io.Writer, c *model.Comparison) error {
	md := markdown.NewMarkdown(w)

	md.H1("Balance Comparison")
	md.PlainText("")
	md.PlainTextf("File: `%s`", c.Path)
	md.PlainText("")
	md.PlainTextf("**Balance:** %s", formatDirection(c.Direction))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows: [][]string{
			{
				"Date",
				c.Previous.ScannedAt.Format(comparisonTimeLayout),
				c.Current.ScannedAt.Format(comparisonTimeLayout),
				"-",
			},
			{
				"Final Depth",
				strconv.Itoa(c.Previous.FinalDepth),
				strconv.Itoa(c.Current.FinalDepth),
				formatDelta(c.DepthDelta),
			},
			{
				"Openings",
				strconv.Itoa(c.Previous.Openings),
				strconv.Itoa(c.Current.Openings),
				formatDelta(c.Current.Openings - c.Previous.Openings),
			},
			{
				"Closings",
				strconv.Itoa(c.Previous.Closings),
				strconv.Itoa(c.Current.Closings),
				formatDelta(c.Current.Closings - c.Previous.Closings),
			},
			{
				"Status",
				statusText(c.Previous.Status()),
				statusText(c.Current.Status()),
				"-",
			},
		},
	})
	md.PlainText("")

	if !c.ContentChanged {
		md.Note("The file content did not change between the two scans.")
		md.PlainText("")
	}

	if len(c.NewUnclosed) > 0 {
		md.H2f("New Unclosed Openings (%d)", len(c.NewUnclosed))
		md.PlainText("")
		md.BulletList(lineItems(c.Current, c.NewUnclosed)...)
		md.PlainText("")
	}
	if len(c.ResolvedUnclosed) > 0 {
		md.H2f("Resolved Unclosed Openings (%d)", len(c.ResolvedUnclosed))
		md.PlainText("")
		md.BulletList(lineItems(c.Previous, c.ResolvedUnclosed)...)
		md.PlainText("")
	}

	return md.Build()
}

// formatDirection formats a comparison direction for display.
func formatDirection(d model.Direction) string {
	switch d {
	case model.DirectionImproved:
		return "IMPROVED (closer to balanced)"
	case model.DirectionWorsened:
		return "WORSENED (further from balanced)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
