// internal/report/console.go
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// ConsoleReporter renders a human-readable run summary.
type ConsoleReporter struct {
	writer io.WriteCloser
}

var _ Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter takes ownership of the writer.
func NewConsoleReporter(w io.WriteCloser) *ConsoleReporter {
	return &ConsoleReporter{writer: w}
}

// Write renders the suite summary.
func (r *ConsoleReporter) Write(result *schemas.SuiteResult) error {
	var sb strings.Builder

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Suite: %s (run %s)\n", result.SuiteName, result.RunID)
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	passed := 0
	for _, test := range result.Tests {
		status := "FAIL"
		if test.Passed {
			status = "PASS"
			passed++
		}
		fmt.Fprintf(&sb, "[%s] %s (%s)\n", status, test.Name, roundDuration(test.Duration))
		if test.Error != "" {
			fmt.Fprintf(&sb, "       %s\n", test.Error)
		}
		for _, step := range test.Steps {
			marker := stepMarker(step.Status)
			fmt.Fprintf(&sb, "  %s %s%s\n", marker, string(step.Command.Kind), stepDetail(step))
		}
	}

	sb.WriteString(strings.Repeat("-", 60) + "\n")
	fmt.Fprintf(&sb, "%d/%d tests passed in %s\n", passed, len(result.Tests), roundDuration(result.Duration))

	_, err := io.WriteString(r.writer, sb.String())
	return err
}

// Close finalizes the report.
func (r *ConsoleReporter) Close() error {
	return r.writer.Close()
}

func stepMarker(status schemas.StepStatus) string {
	switch status {
	case schemas.StepPassed:
		return "+"
	case schemas.StepFailed:
		return "x"
	default:
		return "-"
	}
}

func stepDetail(step schemas.StepResult) string {
	var parts []string
	if step.Command.Selector != nil {
		parts = append(parts, step.Command.Selector.String())
	}
	if step.Command.Degraded {
		parts = append(parts, "(degraded)")
	}
	if step.Error != "" {
		parts = append(parts, "error: "+step.Error)
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func roundDuration(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
