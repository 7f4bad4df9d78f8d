// internal/decompose/prompts_test.go
package decompose_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/decompose"
)

// TestBuildGeneration_EmbedsStepAndDOM: the generation prompt carries the
// step, the overall instruction and the snapshot markup.
func TestBuildGeneration_EmbedsStepAndDOM(t *testing.T) {
	b := decompose.NewPromptBuilder(4000)
	s := snap(`<html><body><button id="go">Go</button></body></html>`)

	req := b.BuildGeneration("click the go button", "run a search", s)

	assert.NotEmpty(t, req.SystemPrompt)
	assert.Contains(t, req.UserPrompt, "click the go button")
	assert.Contains(t, req.UserPrompt, "run a search")
	assert.Contains(t, req.UserPrompt, `<button id="go">`)
	assert.Empty(t, req.History)
}

// TestBuildRefinement_CarriesIssuesVerbatim: every validator issue appears
// in the refinement prompt unchanged.
func TestBuildRefinement_CarriesIssuesVerbatim(t *testing.T) {
	b := decompose.NewPromptBuilder(4000)
	issues := []string{`id "missing" not found`, `text "Login" is ambiguous, 3 found`}

	req := b.BuildRefinement("click css=#missing", issues, snap("<html></html>"))

	assert.Contains(t, req.UserPrompt, "click css=#missing")
	for _, issue := range issues {
		assert.Contains(t, req.UserPrompt, issue)
	}
}

// TestBuildStepwise_IncludesHistoryAndCompletionToken wires the conversation
// history through and instructs about the completion marker.
func TestBuildStepwise_IncludesHistoryAndCompletionToken(t *testing.T) {
	b := decompose.NewPromptBuilder(4000)
	history := []schemas.Message{{Role: schemas.RoleAssistant, Content: "click css=#a"}}

	req := b.BuildStepwise("log in", snap("<html></html>"), history)

	assert.Equal(t, history, req.History)
	assert.Contains(t, req.UserPrompt, decompose.CompletionToken)
	assert.Contains(t, req.SystemPrompt, decompose.CompletionToken)
}

// TestBuildPlanning_LanguageContextForLocalizedPage embeds the glossary for
// a non-English page and omits it for English.
func TestBuildPlanning_LanguageContextForLocalizedPage(t *testing.T) {
	b := decompose.NewPromptBuilder(4000)

	german := b.BuildPlanning("log in", snap(`<html lang="de"><body>Anmelden</body></html>`))
	assert.Contains(t, german.UserPrompt, "German")
	assert.Contains(t, german.UserPrompt, "Anmelden")

	english := b.BuildPlanning("log in", snap(`<html lang="en"><body>Login</body></html>`))
	assert.NotContains(t, english.UserPrompt, "IMPORTANT: The page is in")
}

// TestTruncateDOM_KeepsInteractiveLines: over budget, interactive markup
// survives and the whole prompt stays bounded.
func TestTruncateDOM_KeepsInteractiveLines(t *testing.T) {
	budget := 500
	b := decompose.NewPromptBuilder(budget)

	var sb strings.Builder
	sb.WriteString("<html><head><title>big page</title></head><body>\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("<p>padding paragraph with enough text to matter</p>\n")
	}
	sb.WriteString(`<button data-testid="submit-btn">Submit</button>` + "\n")
	sb.WriteString("</body></html>\n")

	req := b.BuildGeneration("click submit", "test", snap(sb.String()))

	assert.Contains(t, req.UserPrompt, "submit-btn")
	// The embedded DOM section must respect the budget with modest framing
	// overhead on top.
	assert.Less(t, len(req.UserPrompt), budget+400)
}

// TestTruncateDOM_NeverSplitsRunes: truncating a localized page must not
// leave a partial multibyte rune in the prompt.
func TestTruncateDOM_NeverSplitsRunes(t *testing.T) {
	for _, budget := range []int{100, 101, 102, 103, 500} {
		b := decompose.NewPromptBuilder(budget)

		var sb strings.Builder
		sb.WriteString(`<html lang="zh"><body>` + "\n")
		for i := 0; i < 50; i++ {
			sb.WriteString(`<button class="提交">提交订单并确认所有内容无误</button>` + "\n")
		}
		sb.WriteString("</body></html>\n")

		req := b.BuildGeneration("click submit", "checkout", snap(sb.String()))
		assert.True(t, utf8.ValidString(req.UserPrompt), "budget %d produced invalid UTF-8", budget)
	}
}

// TestTruncateDOM_SmallPageUntouched passes a within-budget page through
// verbatim.
func TestTruncateDOM_SmallPageUntouched(t *testing.T) {
	b := decompose.NewPromptBuilder(4000)
	html := `<html><body><p>small</p></body></html>`

	req := b.BuildPlanning("x", snap(html))
	require.Contains(t, req.UserPrompt, html)
	assert.NotContains(t, req.UserPrompt, "truncated")
}
