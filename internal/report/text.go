package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/divbalance/internal/config"
	"github.com/nao1215/divbalance/internal/model"
)

// TextWriter outputs diagnostic rows and an optional trailer.
//
// Rows use the same format the scanner prints while it runs, so replaying a
// stored result reproduces the original output byte for byte. The trailer
// (summary line, unclosed and orphan lines, block balances) is only written
// when requested or when blocks are configured.
type TextWriter struct {
	baseWriter

	// rows controls whether diagnostic rows are written. It is false when
	// the scanner already printed them live.
	rows bool

	// header writes "==> path <==" before the rows, for multi-file output.
	header bool

	// summary appends the final depth and tracking details.
	summary bool

	// colorMode is one of config.ColorAuto, config.ColorOn, config.ColorOff.
	colorMode string
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithRows enables or disables replaying diagnostic rows.
func WithRows(rows bool) TextWriterOption {
	return func(w *TextWriter) {
		w.rows = rows
	}
}

// WithHeader writes a "==> path <==" line before each result.
func WithHeader(header bool) TextWriterOption {
	return func(w *TextWriter) {
		w.header = header
	}
}

// WithSummary appends the final depth line after the rows.
func WithSummary(summary bool) TextWriterOption {
	return func(w *TextWriter) {
		w.summary = summary
	}
}

// WithColor sets the colorization mode of the summary line.
// auto follows the terminal detection of fatih/color.
func WithColor(mode string) TextWriterOption {
	return func(w *TextWriter) {
		w.colorMode = mode
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
// By default it replays rows and writes no header or summary.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		rows:       true,
		colorMode:  config.ColorAuto,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result as text.
func (w *TextWriter) Write(result *model.Result) (int, error) {
	var sb strings.Builder

	if w.header {
		sb.WriteString(fmt.Sprintf("==> %s <==\n", result.Path))
	}

	if w.rows {
		for _, rec := range result.Records {
			sb.WriteString(rec.String())
			sb.WriteString("\n")
		}
	}

	if w.summary {
		w.writeSummary(&sb, result)
	}

	if len(result.Blocks) > 0 {
		w.writeBlocks(&sb, result)
	}

	if sb.Len() == 0 {
		return 0, nil
	}
	return io.WriteString(w.output, sb.String())
}

// writeSummary writes the final depth and the lines that explain it.
func (w *TextWriter) writeSummary(sb *strings.Builder, result *model.Result) {
	status := result.Status()
	line := fmt.Sprintf("Final depth: %d (%s)", result.FinalDepth, status)
	sb.WriteString(w.colorFor(status).Sprint(line))
	sb.WriteString("\n")

	if len(result.Unclosed) > 0 {
		sb.WriteString(fmt.Sprintf("Unclosed <div> opened at lines: %s\n", joinLines(result.Unclosed)))
	}
	if len(result.Orphans) > 0 {
		sb.WriteString(fmt.Sprintf("Orphaned </div> at lines: %s\n", joinLines(result.Orphans)))
	}
}

// writeBlocks writes one line per configured block.
func (w *TextWriter) writeBlocks(sb *strings.Builder, result *model.Result) {
	for _, b := range result.Blocks {
		text := fmt.Sprintf("Block %s (lines %d-%d): +%d -%d Balance=%d",
			b.Block.Name, b.Block.Start, b.Block.End, b.Openings, b.Closings, b.Balance)
		sb.WriteString(w.colorFor(b.Status()).Sprint(text))
		sb.WriteString("\n")
	}
}

// colorFor returns the color used for a status, honoring the color mode.
func (w *TextWriter) colorFor(status model.Status) *color.Color {
	var c *color.Color
	switch status {
	case model.StatusUnclosed:
		c = color.New(color.FgYellow)
	case model.StatusOrphaned:
		c = color.New(color.FgRed, color.Bold)
	default:
		c = color.New(color.FgGreen)
	}

	switch w.colorMode {
	case config.ColorOn:
		c.EnableColor()
	case config.ColorOff:
		c.DisableColor()
	}
	return c
}
