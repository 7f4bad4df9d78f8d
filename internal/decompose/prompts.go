// internal/decompose/prompts.go
package decompose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// CompletionToken is the marker the stepwise prompt asks the model to emit
// when the instruction is fully satisfied.
const CompletionToken = "TASK_COMPLETE"

const commandGrammarPrompt = `Commands are emitted one per line in OXTest syntax:

    kind [selector] [key="value" ...]

Kinds: navigate, click, fill, select_option, hover, wait, wait_for_selector,
assert_visible, assert_hidden, assert_text, assert_value, assert_url,
go_back, go_forward.

Selectors are strategy=value pairs: css=.btn, text="Login", xpath=//form,
role=button, testid=submit-btn, placeholder="Email". Fallback selectors are
separated with a pipe: css=#login | text="Login".
Parameters: value="..." for fill/select_option/assertions, url="..." for
navigate, timeout="1500" (milliseconds) for wait/wait_for_selector.

Prefer semantic selectors (text, role, testid) over brittle CSS paths, and
include at least one fallback selector for important actions.`

const planningSystemPrompt = `You are a test planner for web applications.
Given a test instruction and the current page, break the instruction into
atomic UI steps. Respond with a numbered list of steps, one short imperative
sentence each, and nothing else. Do not write commands yet.`

const generationSystemPrompt = `You translate one test step into exactly one
OXTest command for the current page.

` + commandGrammarPrompt + `

Respond with exactly one command line and nothing else.`

const refinementSystemPrompt = `You fix an OXTest command that failed
validation against the current page.

` + commandGrammarPrompt + `

Respond with exactly one corrected command line and nothing else.`

const stepwiseSystemPrompt = `You drive a browser to carry out a test
instruction, one command at a time. After each of your commands is executed
you are shown the fresh page state; propose the single next command.

` + commandGrammarPrompt + `

When the instruction is fully satisfied, respond with the single word
` + CompletionToken + ` instead of a command. Respond with exactly one
command line (or the completion word) and nothing else.`

// PromptBuilder composes LLM requests for planning, command generation,
// refinement and the stepwise (execute-observe-plan) loop. It is a pure
// value: no state, no side effects.
type PromptBuilder struct {
	// domCharBudget bounds how much snapshot markup is embedded in a prompt.
	domCharBudget int
}

// NewPromptBuilder returns a builder with the given DOM character budget;
// non-positive budgets fall back to 4000 characters.
func NewPromptBuilder(domCharBudget int) PromptBuilder {
	if domCharBudget <= 0 {
		domCharBudget = 4000
	}
	return PromptBuilder{domCharBudget: domCharBudget}
}

// BuildPlanning composes the request that turns an instruction into a step
// list.
func (b PromptBuilder) BuildPlanning(instruction string, snap schemas.DomSnapshot) schemas.GenerationRequest {
	var sb strings.Builder
	b.writeLanguageContext(&sb, snap)
	fmt.Fprintf(&sb, "Test instruction: %s\n\n", instruction)
	b.writeDOM(&sb, snap)
	sb.WriteString("\nBreak the instruction into atomic steps. Respond with a numbered list only.")

	return schemas.GenerationRequest{
		SystemPrompt: planningSystemPrompt,
		UserPrompt:   sb.String(),
	}
}

// BuildGeneration composes the request for exactly one command implementing
// one step, with the overall instruction as context.
func (b PromptBuilder) BuildGeneration(step, instruction string, snap schemas.DomSnapshot) schemas.GenerationRequest {
	var sb strings.Builder
	b.writeLanguageContext(&sb, snap)
	fmt.Fprintf(&sb, "Overall test: %s\nCurrent step: %s\n\n", instruction, step)
	b.writeDOM(&sb, snap)
	sb.WriteString("\nEmit exactly one OXTest command for the current step.")

	return schemas.GenerationRequest{
		SystemPrompt: generationSystemPrompt,
		UserPrompt:   sb.String(),
	}
}

// BuildRefinement composes the request that corrects a previously generated
// command using the validator's issues, verbatim, against the same snapshot
// the validation saw.
func (b PromptBuilder) BuildRefinement(previousCommand string, issues []string, snap schemas.DomSnapshot) schemas.GenerationRequest {
	var sb strings.Builder
	b.writeLanguageContext(&sb, snap)
	fmt.Fprintf(&sb, "Previous command:\n%s\n\nValidation issues:\n", previousCommand)
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- %s\n", issue)
	}
	sb.WriteString("\n")
	b.writeDOM(&sb, snap)
	sb.WriteString("\nEmit one corrected OXTest command.")

	return schemas.GenerationRequest{
		SystemPrompt: refinementSystemPrompt,
		UserPrompt:   sb.String(),
	}
}

// BuildStepwise composes the request for the next single command in
// execute-observe-plan mode, seeded with the conversation so far.
func (b PromptBuilder) BuildStepwise(instruction string, snap schemas.DomSnapshot, history []schemas.Message) schemas.GenerationRequest {
	var sb strings.Builder
	b.writeLanguageContext(&sb, snap)
	fmt.Fprintf(&sb, "Test instruction: %s\n\n", instruction)
	b.writeDOM(&sb, snap)
	fmt.Fprintf(&sb, "\nEmit the single next OXTest command, or %s if the instruction is satisfied.", CompletionToken)

	return schemas.GenerationRequest{
		SystemPrompt: stepwiseSystemPrompt,
		UserPrompt:   sb.String(),
		History:      history,
	}
}

func (b PromptBuilder) writeLanguageContext(sb *strings.Builder, snap schemas.DomSnapshot) {
	lang := DetectLanguage(snap.HTML)
	if ctx := LanguageContext(lang); ctx != "" {
		sb.WriteString(ctx)
		sb.WriteString("\n")
	}
}

func (b PromptBuilder) writeDOM(sb *strings.Builder, snap schemas.DomSnapshot) {
	fmt.Fprintf(sb, "Current page (%s fidelity):\n```html\n%s\n```\n", snap.Fidelity, b.truncateDOM(snap.HTML))
}

// interactiveMarkers flags markup fragments worth keeping when the snapshot
// exceeds the prompt budget.
var interactiveMarkers = []string{
	"<a", "<button", "<input", "<select", "<textarea", "<form", "<label",
	"role=", "data-testid=", "onclick=", "placeholder=",
}

// truncateDOM bounds the snapshot to the character budget. When the page is
// too big, lines bearing interactive elements are kept in document order
// first; whatever budget remains is filled with the leading markup so the
// model still sees the page skeleton.
func (b PromptBuilder) truncateDOM(html string) string {
	if len(html) <= b.domCharBudget {
		return html
	}

	lines := strings.Split(html, "\n")
	kept := make([]string, 0, len(lines))
	used := 0

	// Reserve roughly a quarter of the budget for the document head.
	interactiveBudget := b.domCharBudget * 3 / 4

	for _, line := range lines {
		if used >= interactiveBudget {
			break
		}
		if !isInteractiveLine(line) {
			continue
		}
		trimmed := clipRunes(strings.TrimSpace(line), interactiveBudget-used)
		kept = append(kept, trimmed)
		used += len(trimmed) + 1
	}

	const truncationMarker = "<!-- truncated -->"
	remaining := b.domCharBudget - used - len(truncationMarker) - 2
	if remaining > 0 {
		kept = append([]string{clipRunes(html, remaining), truncationMarker}, kept...)
	}

	return clipRunes(strings.Join(kept, "\n"), b.domCharBudget)
}

// clipRunes bounds s to at most n bytes without splitting a multibyte rune;
// localized pages must never put invalid UTF-8 in a prompt.
func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isInteractiveLine(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range interactiveMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
