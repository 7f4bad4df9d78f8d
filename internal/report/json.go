// internal/report/json.go
package report

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the suite result as one indented JSON document.
type JSONReporter struct {
	writer io.WriteCloser
}

var _ Reporter = (*JSONReporter)(nil)

// NewJSONReporter takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write encodes the suite result.
func (r *JSONReporter) Write(result *schemas.SuiteResult) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// Close finalizes the report.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
