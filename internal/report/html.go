// internal/report/html.go
package report

import (
	"html/template"
	"io"
	"time"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// HTMLReporter renders a self-contained single-file HTML report.
type HTMLReporter struct {
	writer io.WriteCloser
	tmpl   *template.Template
}

var _ Reporter = (*HTMLReporter)(nil)

// NewHTMLReporter takes ownership of the writer.
func NewHTMLReporter(w io.WriteCloser) *HTMLReporter {
	return &HTMLReporter{
		writer: w,
		tmpl:   template.Must(template.New("report").Funcs(htmlFuncs).Parse(htmlReportTemplate)),
	}
}

// Write renders the suite result.
func (r *HTMLReporter) Write(result *schemas.SuiteResult) error {
	return r.tmpl.Execute(r.writer, result)
}

// Close finalizes the report.
func (r *HTMLReporter) Close() error {
	return r.writer.Close()
}

var htmlFuncs = template.FuncMap{
	"ms": func(d time.Duration) string {
		return d.Round(time.Millisecond).String()
	},
	"selector": func(cmd schemas.StructuredCommand) string {
		if cmd.Selector == nil {
			return ""
		}
		return cmd.Selector.String()
	},
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>OXTest Report: {{.SuiteName}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #1c1c1c; }
h1 { font-size: 1.4rem; }
.meta { color: #666; margin-bottom: 1.5rem; }
.test { border: 1px solid #ddd; border-radius: 6px; margin-bottom: 1rem; padding: 0.75rem 1rem; }
.test.passed { border-left: 4px solid #2e7d32; }
.test.failed { border-left: 4px solid #c62828; }
.test h2 { font-size: 1.05rem; margin: 0 0 0.25rem; }
.instruction { color: #555; font-style: italic; margin-bottom: 0.5rem; }
table { border-collapse: collapse; width: 100%; font-size: 0.9rem; }
th, td { text-align: left; padding: 0.25rem 0.5rem; border-bottom: 1px solid #eee; }
.status-passed { color: #2e7d32; }
.status-failed { color: #c62828; }
.status-skipped { color: #999; }
.degraded { color: #e65100; font-size: 0.8rem; }
.error { color: #c62828; }
</style>
</head>
<body>
<h1>{{.SuiteName}}</h1>
<div class="meta">Run {{.RunID}} &middot; started {{.StartedAt.Format "2006-01-02 15:04:05 MST"}} &middot; {{ms .Duration}}</div>
{{range .Tests}}
<div class="test {{if .Passed}}passed{{else}}failed{{end}}">
<h2>{{.Name}} <small>({{ms .Duration}})</small></h2>
<div class="instruction">{{.Instruction}}</div>
{{if .Error}}<div class="error">{{.Error}}</div>{{end}}
<table>
<tr><th>Status</th><th>Command</th><th>Selector</th><th>Duration</th><th></th></tr>
{{range .Steps}}
<tr>
<td class="status-{{.Status}}">{{.Status}}</td>
<td>{{.Command.Kind}}</td>
<td>{{selector .Command}}</td>
<td>{{ms .Duration}}</td>
<td>{{if .Command.Degraded}}<span class="degraded">degraded</span>{{end}}{{if .Error}}<span class="error">{{.Error}}</span>{{end}}</td>
</tr>
{{end}}
</table>
</div>
{{end}}
</body>
</html>
`
