// internal/oxtest/parser.go
package oxtest

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// ParseError describes a malformed OXTest line. Callers upstream recover
// from it (the decomposition engine substitutes a no-op wait); it never
// escapes a decomposition.
type ParseError struct {
	Line   string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("oxtest parse error at pos %d in %q: %s", e.Pos, e.Line, e.Reason)
}

// Parser parses LLM-emitted OXTest text into structured commands.
//
// The grammar per line is:
//
//	kind [strategy=value ("|" strategy=value)*] [key=value ...]
//
// The first strategy-keyed pair opens the selector group; pipe-separated
// pairs that follow it are fallback selectors. Any pair whose key is not a
// selector strategy is a named parameter.
type Parser struct{}

var _ schemas.CommandParser = (*Parser)(nil)

// NewParser returns a stateless OXTest parser.
func NewParser() *Parser { return &Parser{} }

// Parse parses a block of OXTest text. Blank lines, comments, markdown
// fences and leading list markers are tolerated because the text comes from
// a language model, not a human. The first malformed command line aborts the
// parse with a ParseError.
func (p *Parser) Parse(text string) ([]schemas.StructuredCommand, error) {
	var commands []schemas.StructuredCommand

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		cmd, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// parseLine parses exactly one command line.
func (p *Parser) parseLine(line string) (schemas.StructuredCommand, error) {
	tokens, err := lexLine(line)
	if err != nil {
		return schemas.StructuredCommand{}, err
	}
	if len(tokens) == 0 {
		return schemas.StructuredCommand{}, &ParseError{Line: line, Reason: "empty command"}
	}

	head := tokens[0]
	if head.typ != tokenIdent {
		return schemas.StructuredCommand{}, &ParseError{Line: line, Pos: head.pos, Reason: "command must start with a kind"}
	}
	kind, ok := schemas.ParseCommandKind(head.key)
	if !ok {
		return schemas.StructuredCommand{}, &ParseError{Line: line, Pos: head.pos, Reason: fmt.Sprintf("unknown command kind %q", head.key)}
	}

	cmd := schemas.StructuredCommand{Kind: kind}
	inSelectorGroup := false

	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.typ {
		case tokenPipe:
			if cmd.Selector == nil {
				return schemas.StructuredCommand{}, &ParseError{Line: line, Pos: tok.pos, Reason: "fallback separator before any selector"}
			}
			inSelectorGroup = true
		case tokenIdent:
			return schemas.StructuredCommand{}, &ParseError{Line: line, Pos: tok.pos, Reason: fmt.Sprintf("unexpected bare word %q", tok.key)}
		case tokenPair:
			strategy, isStrategy := schemas.ParseSelectorStrategy(tok.key)
			switch {
			case isStrategy && cmd.Selector == nil:
				sel := schemas.Selector{Strategy: strategy, Value: tok.val}
				cmd.Selector = &sel
				inSelectorGroup = false
			case isStrategy && inSelectorGroup:
				cmd.Fallbacks = append(cmd.Fallbacks, schemas.Selector{Strategy: strategy, Value: tok.val})
				inSelectorGroup = false
			default:
				if isStrategy {
					return schemas.StructuredCommand{}, &ParseError{Line: line, Pos: tok.pos, Reason: fmt.Sprintf("second selector %q without fallback separator", tok.key)}
				}
				if cmd.Params == nil {
					cmd.Params = make(map[string]string)
				}
				cmd.Params[strings.ToLower(tok.key)] = tok.val
			}
		}
	}

	if inSelectorGroup {
		return schemas.StructuredCommand{}, &ParseError{Line: line, Reason: "dangling fallback separator"}
	}
	// Models often aim a URL assertion at an element; the assertion reads the
	// location, so the selector is dropped instead of failing the line.
	if cmd.Kind == schemas.KindAssertURL && cmd.Selector != nil {
		cmd.Selector = nil
		cmd.Fallbacks = nil
	}
	if err := checkInvariants(line, cmd); err != nil {
		return schemas.StructuredCommand{}, err
	}
	return cmd, nil
}

// checkInvariants enforces the selector arity contract: selector-less kinds
// must not carry one, every other kind must.
func checkInvariants(line string, cmd schemas.StructuredCommand) error {
	if cmd.Kind.RequiresSelector() {
		if cmd.Selector == nil || cmd.Selector.Value == "" {
			return &ParseError{Line: line, Reason: fmt.Sprintf("%s requires a selector", cmd.Kind)}
		}
		return nil
	}
	if cmd.Selector != nil {
		return &ParseError{Line: line, Reason: fmt.Sprintf("%s does not take a selector", cmd.Kind)}
	}
	return nil
}

// cleanLine strips comment lines, markdown fences and list decorations that
// language models habitually wrap around command output.
func cleanLine(raw string) string {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
		return ""
	}

	// "1. click ..." or "- click ..." list markers.
	line = strings.TrimPrefix(line, "- ")
	line = strings.TrimPrefix(line, "* ")
	if idx := strings.IndexRune(line, ' '); idx > 0 {
		marker := line[:idx]
		if len(marker) >= 2 && strings.HasSuffix(marker, ".") && isDigits(marker[:len(marker)-1]) {
			line = strings.TrimSpace(line[idx+1:])
		}
	}
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Format renders a command back into OXTest source form. Used by the
// generate subcommand to emit scripts and by refinement prompts to show the
// model its own previous output.
func Format(cmd schemas.StructuredCommand) string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(string(cmd.Kind)))

	if cmd.Selector != nil {
		sb.WriteString(" ")
		sb.WriteString(formatSelector(*cmd.Selector))
		for _, fb := range cmd.Fallbacks {
			sb.WriteString(" | ")
			sb.WriteString(formatSelector(fb))
		}
	}

	// Stable order keeps scripts diffable.
	for _, key := range []string{"value", "url", "timeout"} {
		if v, ok := cmd.Params[key]; ok {
			fmt.Fprintf(&sb, " %s=%q", key, v)
		}
	}
	for key, v := range cmd.Params {
		if key == "value" || key == "url" || key == "timeout" {
			continue
		}
		fmt.Fprintf(&sb, " %s=%q", key, v)
	}
	return sb.String()
}

func formatSelector(sel schemas.Selector) string {
	if strings.ContainsAny(sel.Value, " |\"'") {
		return fmt.Sprintf("%s=%q", sel.Strategy, sel.Value)
	}
	return fmt.Sprintf("%s=%s", sel.Strategy, sel.Value)
}
