// internal/report/reporter.go
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// Reporter defines the interface for rendering a suite result to an output.
type Reporter interface {
	// Write renders the full suite result.
	Write(result *schemas.SuiteResult) error
	// Close finalizes the report and closes any underlying resources.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a reporter for the given format writing to outputPath.
// An empty path or "stdout" targets standard output.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
			}
		}
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	cleanup := func() {
		if !isStdOut {
			writer.Close()
		}
	}

	switch format {
	case "console":
		return NewConsoleReporter(writer), nil
	case "json":
		return NewJSONReporter(writer), nil
	case "junit":
		return NewJUnitReporter(writer), nil
	case "html":
		return NewHTMLReporter(writer), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// fileExtensions maps formats to their conventional on-disk extension.
var fileExtensions = map[string]string{
	"json":  "json",
	"junit": "xml",
	"html":  "html",
}

// OutputPath decides where a format's report file lives under outputDir.
// Console reports always target stdout regardless of the directory.
func OutputPath(format, outputDir string) string {
	ext, ok := fileExtensions[format]
	if !ok {
		return "stdout"
	}
	return filepath.Join(outputDir, "oxtest-report."+ext)
}
