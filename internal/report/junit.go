// internal/report/junit.go
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// JUnitReporter writes the suite result as JUnit XML so CI systems can
// ingest it without a custom parser.
type JUnitReporter struct {
	writer io.WriteCloser
}

var _ Reporter = (*JUnitReporter)(nil)

// NewJUnitReporter takes ownership of the writer.
func NewJUnitReporter(w io.WriteCloser) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

// Write renders the suite as a <testsuite> document.
func (r *JUnitReporter) Write(result *schemas.SuiteResult) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	failures := 0
	for _, test := range result.Tests {
		if !test.Passed {
			failures++
		}
	}

	suite := doc.CreateElement("testsuite")
	suite.CreateAttr("name", result.SuiteName)
	suite.CreateAttr("tests", fmt.Sprintf("%d", len(result.Tests)))
	suite.CreateAttr("failures", fmt.Sprintf("%d", failures))
	suite.CreateAttr("time", formatSeconds(result.Duration))
	suite.CreateAttr("timestamp", result.StartedAt.UTC().Format(time.RFC3339))

	for _, test := range result.Tests {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("name", test.Name)
		tc.CreateAttr("classname", result.SuiteName)
		tc.CreateAttr("time", formatSeconds(test.Duration))

		if !test.Passed {
			failure := tc.CreateElement("failure")
			failure.CreateAttr("message", failureMessage(test))
			failure.SetText(failureDetail(test))
		}

		sysOut := tc.CreateElement("system-out")
		sysOut.SetText(stepTranscript(test))
	}

	doc.Indent(2)
	_, err := doc.WriteTo(r.writer)
	return err
}

// Close finalizes the report.
func (r *JUnitReporter) Close() error {
	return r.writer.Close()
}

func failureMessage(test schemas.TestResult) string {
	if test.Error != "" {
		return test.Error
	}
	for _, step := range test.Steps {
		if step.Status == schemas.StepFailed {
			return fmt.Sprintf("%s failed: %s", step.Command.Kind, step.Error)
		}
	}
	return "test failed"
}

func failureDetail(test schemas.TestResult) string {
	var sb strings.Builder
	for _, step := range test.Steps {
		if step.Status == schemas.StepFailed {
			fmt.Fprintf(&sb, "%s %s: %s\n", step.Command.Kind, selectorOrEmpty(step.Command), step.Error)
		}
	}
	return sb.String()
}

func stepTranscript(test schemas.TestResult) string {
	var sb strings.Builder
	for _, step := range test.Steps {
		fmt.Fprintf(&sb, "[%s] %s %s\n", step.Status, step.Command.Kind, selectorOrEmpty(step.Command))
	}
	return sb.String()
}

func selectorOrEmpty(cmd schemas.StructuredCommand) string {
	if cmd.Selector == nil {
		return ""
	}
	return cmd.Selector.String()
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
