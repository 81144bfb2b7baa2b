package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/divbalance/internal/model"
)

// JSONWriter encodes results as JSON, one document per Write.
// The output is compact unless an indent option is given.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent switches to indented output with the given line prefix and
// indent unit.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter returns a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes result together with its status and maximum depth.
func (w *JSONWriter) Write(result *model.Result) (int, error) {
	return w.WriteValue(NewJSONReport(result))
}

// WriteValue marshals any value with the writer's settings, followed by a
// newline. It is used for comparisons and multi-file arrays.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a result with derived fields that are not stored in the
// model itself.
type JSONReport struct {
	*model.Result

	Status   model.Status `json:"status"`
	MaxDepth int          `json:"maxDepth"`
}

// NewJSONReport creates a JSONReport for result.
func NewJSONReport(result *model.Result) *JSONReport {
	return &JSONReport{
		Result:   result,
		Status:   result.Status(),
		MaxDepth: result.MaxDepth(),
	}
}
