package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/divbalance/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs results in GitHub Flavored Markdown, built with
// the nao1215/markdown library.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAlert(md, result)
	w.writeTokenChart(md, result)
	w.writeTracking(md, result)
	w.writeBlocks(md, result)
	w.writeRows(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and the summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.Result) {
	md.H1("Div Balance Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + result.Path + "`"},
			{"Scan Date", result.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Lines", strconv.Itoa(result.TotalLines)},
			{"Range", fmt.Sprintf("%d-%d", result.Start, result.End)},
			{"Token Lines", strconv.Itoa(result.TokenLines())},
			{"Openings", strconv.Itoa(result.Openings)},
			{"Closings", strconv.Itoa(result.Closings)},
			{"Max Depth", strconv.Itoa(result.MaxDepth())},
			{"Final Depth", "**" + strconv.Itoa(result.FinalDepth) + "**"},
			{"Status", statusText(result.Status())},
		},
	})
	md.PlainText("")
}

// statusText returns the status with an indicator.
func statusText(s model.Status) string {
	switch s {
	case model.StatusUnclosed:
		return "🟡 Unclosed"
	case model.StatusOrphaned:
		return "🔴 Orphaned"
	default:
		return "✅ Balanced"
	}
}

// writeAlert writes an alert matching the status.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.Result) {
	switch result.Status() {
	case model.StatusOrphaned:
		md.Cautionf("%d closing div(s) have no matching opening div before them.", -result.FinalDepth)
	case model.StatusUnclosed:
		md.Warningf("%d opening div(s) are never closed.", result.FinalDepth)
	default:
		if len(result.Orphans) > 0 {
			md.Importantf("The file balances overall but %d closing div(s) appear before their opening.", len(result.Orphans))
		} else {
			md.Tip(model.StatusBalanced.Description())
		}
	}
	md.PlainText("")
}

// writeTokenChart writes a mermaid pie chart of openings against closings.
func (w *MarkdownWriter) writeTokenChart(md *markdown.Markdown, result *model.Result) {
	if result.Openings+result.Closings == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Div Tokens"),
		piechart.WithShowData(true),
	)
	if result.Openings > 0 {
		chart.LabelAndIntValue("Openings", uint64(result.Openings))
	}
	if result.Closings > 0 {
		chart.LabelAndIntValue("Closings", uint64(result.Closings))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeTracking lists the lines of unclosed openings and orphaned closings.
func (w *MarkdownWriter) writeTracking(md *markdown.Markdown, result *model.Result) {
	if len(result.Unclosed) > 0 {
		md.H2("Unclosed Openings")
		md.PlainText("")
		md.BulletList(lineItems(result, result.Unclosed)...)
		md.PlainText("")
	}
	if len(result.Orphans) > 0 {
		md.H2("Orphaned Closings")
		md.PlainText("")
		md.BulletList(lineItems(result, result.Orphans)...)
		md.PlainText("")
	}
}

// lineItems renders "Line N: `preview`" for each line.
func lineItems(result *model.Result, lines []int) []string {
	items := make([]string, len(lines))
	for i, line := range lines {
		items[i] = "Line " + strconv.Itoa(line)
		if rec, ok := result.Record(line); ok && rec.Preview != "" {
			items[i] += ": `" + strings.ReplaceAll(rec.Preview, "`", "'") + "`"
		}
	}
	return items
}

// writeBlocks writes the block balance table.
func (w *MarkdownWriter) writeBlocks(md *markdown.Markdown, result *model.Result) {
	if len(result.Blocks) == 0 {
		return
	}

	md.H2("Blocks")
	md.PlainText("")

	rows := make([][]string, len(result.Blocks))
	for i, b := range result.Blocks {
		rows[i] = []string{
			escapeCell(b.Block.Name),
			fmt.Sprintf("%d-%d", b.Block.Start, b.Block.End),
			strconv.Itoa(b.Openings),
			strconv.Itoa(b.Closings),
			strconv.Itoa(b.Balance),
			statusText(b.Status()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Block", "Lines", "Openings", "Closings", "Balance", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRows writes every diagnostic row as a table.
func (w *MarkdownWriter) writeRows(md *markdown.Markdown, result *model.Result) {
	md.H2("Rows")
	md.PlainText("")

	if len(result.Records) == 0 {
		md.PlainText("No lines contain div tokens.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Records))
	for i, rec := range result.Records {
		rows[i] = []string{
			strconv.Itoa(rec.Line),
			fmt.Sprintf("%+d", rec.Openings),
			strconv.Itoa(rec.Closings),
			strconv.Itoa(rec.Depth),
			escapeCell(rec.Preview),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Line", "Open", "Close", "Depth", "Preview"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [divbalance](https://github.com/nao1215/divbalance)*")
}

// escapeCell makes text safe inside a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
