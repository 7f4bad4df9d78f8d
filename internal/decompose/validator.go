// internal/decompose/validator.go
package decompose

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// Validator decides, from string-level evidence alone, whether a command's
// primary selector plausibly resolves against a DOM snapshot. It is a cheap
// pre-filter run before any real browser lookup; real executability is only
// proven at execution time. Pseudo-selectors (:nth-child, :hover) and
// computed visibility are deliberately not validated, and fallback selectors
// are never evaluated here; only the executor tries those.
type Validator struct{}

// NewValidator returns the string-level command validator.
func NewValidator() Validator { return Validator{} }

// Validate produces a fresh outcome for one (command, snapshot) pair.
// Commands of selector-less kinds are always valid regardless of DOM
// content. All detected issues are accumulated, not just the first.
func (v Validator) Validate(cmd schemas.StructuredCommand, snap schemas.DomSnapshot) schemas.ValidationOutcome {
	if !cmd.Kind.RequiresSelector() {
		return schemas.ValidationOutcome{Valid: true}
	}

	var issues []string
	if cmd.Selector == nil || cmd.Selector.Value == "" {
		issues = append(issues, fmt.Sprintf("%s requires a selector", cmd.Kind))
		return schemas.ValidationOutcome{Valid: false, Issues: issues}
	}

	sel := *cmd.Selector
	switch sel.Strategy {
	case schemas.StrategyCSS:
		issues = append(issues, v.checkCSS(sel.Value, snap.HTML)...)
	case schemas.StrategyText:
		issues = append(issues, v.checkText(sel.Value, snap.HTML)...)
	case schemas.StrategyPlaceholder:
		issues = append(issues, v.checkAttr("placeholder", sel.Value, snap.HTML)...)
	case schemas.StrategyRole:
		issues = append(issues, v.checkAttr("role", sel.Value, snap.HTML)...)
	case schemas.StrategyTestID:
		issues = append(issues, v.checkAttr("data-testid", sel.Value, snap.HTML)...)
	case schemas.StrategyXPath:
		issues = append(issues, v.checkXPath(sel.Value, snap.HTML)...)
	default:
		issues = append(issues, fmt.Sprintf("unknown selector strategy %q", sel.Strategy))
	}

	return schemas.ValidationOutcome{Valid: len(issues) == 0, Issues: issues}
}

var (
	classAttrRegex = regexp.MustCompile(`(?i)class\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	attrSelRegex   = regexp.MustCompile(`^\[\s*([a-zA-Z][-\w]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\]]*))\s*\]$`)
)

// checkCSS handles the simple selector shapes the model is told to emit:
// class, id, attribute and bare tag selectors. Compound class selectors are
// checked token by token. Anything carrying a pseudo-class or combinator is
// beyond the string-level check and passes unvalidated.
func (v Validator) checkCSS(value, html string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{"css selector is empty"}
	}
	if strings.ContainsAny(value, " >+~:") {
		// Complex selector; no string-level evidence either way.
		return nil
	}

	switch {
	case strings.HasPrefix(value, "."):
		var issues []string
		for _, class := range strings.Split(value[1:], ".") {
			if class == "" {
				issues = append(issues, fmt.Sprintf("css selector %q is malformed", value))
				continue
			}
			if !classTokenExists(class, html) {
				issues = append(issues, fmt.Sprintf("class %q not found", class))
			}
		}
		return issues

	case strings.HasPrefix(value, "#"):
		id := value[1:]
		if id == "" {
			return []string{fmt.Sprintf("css selector %q is malformed", value)}
		}
		if !attrValueExists("id", id, html) {
			return []string{fmt.Sprintf("id %q not found", id)}
		}
		return nil

	case strings.HasPrefix(value, "["):
		m := attrSelRegex.FindStringSubmatch(value)
		if m == nil {
			return []string{fmt.Sprintf("attribute selector %q is malformed", value)}
		}
		attrValue := m[2]
		if attrValue == "" {
			attrValue = m[3]
		}
		if attrValue == "" {
			attrValue = strings.TrimSpace(m[4])
		}
		// The bracket text never appears verbatim in markup; look for the
		// literal attr="value" occurrence instead.
		if !attrValueExists(m[1], attrValue, html) {
			return []string{fmt.Sprintf("attribute %s=%q not found", m[1], attrValue)}
		}
		return nil

	default:
		if !strings.Contains(strings.ToLower(html), "<"+strings.ToLower(value)) {
			return []string{fmt.Sprintf("element <%s> not found", value)}
		}
		return nil
	}
}

// checkText requires the exact tag-adjacent text to occur exactly once.
// Zero matches is a miss; two or more is an ambiguity failure, not a pass.
func (v Validator) checkText(value, html string) []string {
	count := strings.Count(html, ">"+value+"<")
	switch count {
	case 0:
		return []string{fmt.Sprintf("text %q not found", value)}
	case 1:
		return nil
	default:
		return []string{fmt.Sprintf("text %q is ambiguous, %d found", value, count)}
	}
}

// checkAttr is an existence-only check for attribute-backed strategies.
// Uniqueness is not enforced for these; that is an accepted limitation of
// the string-level design.
func (v Validator) checkAttr(attr, value, html string) []string {
	if !attrValueExists(attr, value, html) {
		return []string{fmt.Sprintf("%s %q not found", attr, value)}
	}
	return nil
}

var xpathLiteralRegex = regexp.MustCompile(`@([a-zA-Z][-\w]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// checkXPath extracts @attr='value' literals from the expression and checks
// each for existence. Expressions with no extractable literals yield no
// string-level evidence and pass.
func (v Validator) checkXPath(value, html string) []string {
	var issues []string
	for _, m := range xpathLiteralRegex.FindAllStringSubmatch(value, -1) {
		attrValue := m[2]
		if attrValue == "" {
			attrValue = m[3]
		}
		if !attrValueExists(m[1], attrValue, html) {
			issues = append(issues, fmt.Sprintf("attribute %s=%q not found", m[1], attrValue))
		}
	}
	return issues
}

// classTokenExists reports whether the class appears as a whole token inside
// some class attribute. A substring match is wrong here: ".submit" must not
// match class="submit-button".
func classTokenExists(class, html string) bool {
	for _, m := range classAttrRegex.FindAllStringSubmatch(html, -1) {
		attrValue := m[1]
		if attrValue == "" {
			attrValue = m[2]
		}
		for _, tok := range strings.Fields(attrValue) {
			if tok == class {
				return true
			}
		}
	}
	return false
}

// attrValueExists reports whether attr="value" (or single-quoted) occurs
// literally in the markup.
func attrValueExists(attr, value, html string) bool {
	return strings.Contains(html, fmt.Sprintf(`%s="%s"`, attr, value)) ||
		strings.Contains(html, fmt.Sprintf(`%s='%s'`, attr, value))
}
