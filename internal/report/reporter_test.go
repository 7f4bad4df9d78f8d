// internal/report/reporter_test.go
package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beevik/etree"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/report"
)

func sampleSuite() *schemas.SuiteResult {
	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return &schemas.SuiteResult{
		RunID:      "run-123",
		SuiteName:  "login-suite",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Duration:   42 * time.Second,
		Tests: []schemas.TestResult{
			{
				Name:        "successful login",
				Instruction: "log in as alice",
				Passed:      true,
				Duration:    30 * time.Second,
				Steps: []schemas.StepResult{
					{
						Command: schemas.StructuredCommand{
							Kind:     schemas.KindFill,
							Selector: &schemas.Selector{Strategy: schemas.StrategyCSS, Value: "#username"},
							Params:   map[string]string{"value": "alice"},
						},
						Status:   schemas.StepPassed,
						Duration: time.Second,
					},
				},
			},
			{
				Name:        "broken logout",
				Instruction: "log out",
				Passed:      false,
				Duration:    12 * time.Second,
				Steps: []schemas.StepResult{
					{
						Command: schemas.StructuredCommand{
							Kind:     schemas.KindClick,
							Selector: &schemas.Selector{Strategy: schemas.StrategyText, Value: "Log out"},
							Degraded: true,
						},
						Status: schemas.StepFailed,
						Error:  "node not found",
					},
				},
			},
		},
	}
}

type closableBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closableBuffer) Close() error {
	b.closed = true
	return nil
}

// TestNew_FactoryFormats exercises every supported format and the rejection
// of unknown ones.
func TestNew_FactoryFormats(t *testing.T) {
	for _, format := range []string{"console", "json", "junit", "html"} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out."+format)
			r, err := report.New(format, path)
			require.NoError(t, err)
			require.NoError(t, r.Write(sampleSuite()))
			require.NoError(t, r.Close())

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}

	_, err := report.New("sarif", "stdout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

// TestConsoleReporter_Summary renders statuses, counts and degraded markers.
func TestConsoleReporter_Summary(t *testing.T) {
	buf := &closableBuffer{}
	r := report.NewConsoleReporter(buf)

	require.NoError(t, r.Write(sampleSuite()))
	require.NoError(t, r.Close())
	assert.True(t, buf.closed)

	out := buf.String()
	assert.Contains(t, out, "login-suite")
	assert.Contains(t, out, "[PASS] successful login")
	assert.Contains(t, out, "[FAIL] broken logout")
	assert.Contains(t, out, "(degraded)")
	assert.Contains(t, out, "node not found")
	assert.Contains(t, out, "1/2 tests passed")
}

// TestJSONReporter_RoundTrips: the emitted document decodes back to the
// same suite result.
func TestJSONReporter_RoundTrips(t *testing.T) {
	buf := &closableBuffer{}
	r := report.NewJSONReporter(buf)
	require.NoError(t, r.Write(sampleSuite()))

	var decoded schemas.SuiteResult
	require.NoError(t, jsoniter.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-123", decoded.RunID)
	require.Len(t, decoded.Tests, 2)
	assert.True(t, decoded.Tests[1].Steps[0].Command.Degraded)
}

// TestJUnitReporter_Structure verifies the XML shape CI systems parse.
func TestJUnitReporter_Structure(t *testing.T) {
	buf := &closableBuffer{}
	r := report.NewJUnitReporter(buf)
	require.NoError(t, r.Write(sampleSuite()))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	suite := doc.SelectElement("testsuite")
	require.NotNil(t, suite)
	assert.Equal(t, "login-suite", suite.SelectAttrValue("name", ""))
	assert.Equal(t, "2", suite.SelectAttrValue("tests", ""))
	assert.Equal(t, "1", suite.SelectAttrValue("failures", ""))

	cases := suite.SelectElements("testcase")
	require.Len(t, cases, 2)
	assert.Nil(t, cases[0].SelectElement("failure"))

	failure := cases[1].SelectElement("failure")
	require.NotNil(t, failure)
	assert.Contains(t, failure.SelectAttrValue("message", ""), "node not found")
}

// TestHTMLReporter_EscapesContent renders a document and HTML-escapes
// attacker-controlled strings.
func TestHTMLReporter_EscapesContent(t *testing.T) {
	suite := sampleSuite()
	suite.Tests[0].Instruction = `log in as <script>alert(1)</script>`

	buf := &closableBuffer{}
	r := report.NewHTMLReporter(buf)
	require.NoError(t, r.Write(suite))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "login-suite")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

// TestOutputPath maps formats to files and everything else to stdout.
func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("reports", "oxtest-report.json"), report.OutputPath("json", "reports"))
	assert.Equal(t, filepath.Join("reports", "oxtest-report.xml"), report.OutputPath("junit", "reports"))
	assert.Equal(t, filepath.Join("reports", "oxtest-report.html"), report.OutputPath("html", "reports"))
	assert.Equal(t, "stdout", report.OutputPath("console", "reports"))
}
