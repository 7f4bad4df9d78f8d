// api/schemas/commands.go
package schemas

import "strings"

// CommandKind is an enumeration of every OXTest command the system can emit.
// Keeping this closed (instead of raw strings from the LLM) means a spelling
// mismatch between the command language and internal dispatch fails at parse
// time, not silently at execution time.
type CommandKind string

const (
	// -- Navigation --
	KindNavigate  CommandKind = "NAVIGATE"   // Load a URL. Selector-less.
	KindGoBack    CommandKind = "GO_BACK"    // History back. Selector-less.
	KindGoForward CommandKind = "GO_FORWARD" // History forward. Selector-less.

	// -- Interaction --
	KindClick        CommandKind = "CLICK"         // Click an element.
	KindFill         CommandKind = "FILL"          // Type text into a field.
	KindSelectOption CommandKind = "SELECT_OPTION" // Choose an option in a <select>.
	KindHover        CommandKind = "HOVER"         // Move the pointer over an element.

	// -- Synchronization --
	KindWait            CommandKind = "WAIT"              // Pause for a duration. Selector-less.
	KindWaitForSelector CommandKind = "WAIT_FOR_SELECTOR" // Block until an element appears.

	// -- Assertions --
	KindAssertVisible CommandKind = "ASSERT_VISIBLE" // Element exists and is rendered.
	KindAssertHidden  CommandKind = "ASSERT_HIDDEN"  // Element absent or not rendered.
	KindAssertText    CommandKind = "ASSERT_TEXT"    // Element text contains a value.
	KindAssertValue   CommandKind = "ASSERT_VALUE"   // Form control has a value.
	KindAssertURL     CommandKind = "ASSERT_URL"     // Current URL contains a value.
)

// kindSpellings maps every accepted external spelling (snake_case, camelCase,
// kebab-case) onto the canonical enum value. The LLM is instructed to use the
// snake_case forms, but models drift; normalizing here keeps the drift out of
// the dispatch tables.
var kindSpellings = map[string]CommandKind{
	"navigate":          KindNavigate,
	"goto":              KindNavigate,
	"go_back":           KindGoBack,
	"goback":            KindGoBack,
	"go_forward":        KindGoForward,
	"goforward":         KindGoForward,
	"click":             KindClick,
	"fill":              KindFill,
	"type":              KindFill,
	"input_text":        KindFill,
	"select_option":     KindSelectOption,
	"selectoption":      KindSelectOption,
	"select":            KindSelectOption,
	"hover":             KindHover,
	"wait":              KindWait,
	"wait_for_selector": KindWaitForSelector,
	"waitforselector":   KindWaitForSelector,
	"assert_visible":    KindAssertVisible,
	"assertvisible":     KindAssertVisible,
	"assert_hidden":     KindAssertHidden,
	"asserthidden":      KindAssertHidden,
	"assert_text":       KindAssertText,
	"asserttext":        KindAssertText,
	"assert_value":      KindAssertValue,
	"assertvalue":       KindAssertValue,
	"assert_url":        KindAssertURL,
	"asserturl":         KindAssertURL,
}

// ParseCommandKind normalizes an external spelling to a CommandKind.
// The second return is false for anything outside the closed set.
func ParseCommandKind(s string) (CommandKind, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	kind, ok := kindSpellings[normalized]
	return kind, ok
}

// RequiresSelector reports whether a command of this kind must carry a
// non-empty selector to be executable. URL assertions inspect the current
// location, not an element.
func (k CommandKind) RequiresSelector() bool {
	switch k {
	case KindNavigate, KindWait, KindGoBack, KindGoForward, KindAssertURL:
		return false
	default:
		return true
	}
}

// SelectorStrategy identifies how a selector value should be resolved
// against the DOM.
type SelectorStrategy string

const (
	StrategyCSS         SelectorStrategy = "css"
	StrategyText        SelectorStrategy = "text"
	StrategyXPath       SelectorStrategy = "xpath"
	StrategyRole        SelectorStrategy = "role"
	StrategyTestID      SelectorStrategy = "testid"
	StrategyPlaceholder SelectorStrategy = "placeholder"
)

// ParseSelectorStrategy maps an external spelling to a strategy.
func ParseSelectorStrategy(s string) (SelectorStrategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "css":
		return StrategyCSS, true
	case "text":
		return StrategyText, true
	case "xpath":
		return StrategyXPath, true
	case "role":
		return StrategyRole, true
	case "testid", "test-id", "data-testid":
		return StrategyTestID, true
	case "placeholder":
		return StrategyPlaceholder, true
	default:
		return "", false
	}
}

// Selector is one independently evaluable strategy/value pair.
type Selector struct {
	Strategy SelectorStrategy `json:"strategy"`
	Value    string           `json:"value"`
}

// String renders the selector in OXTest source form.
func (s Selector) String() string {
	return string(s.Strategy) + "=" + s.Value
}

// StructuredCommand is the atomic unit of executable intent. It is never
// mutated after creation; refinement produces a new value.
type StructuredCommand struct {
	Kind CommandKind `json:"kind"`

	// Selector is nil for selector-less kinds. Fallbacks are alternates the
	// executor tries in order when the primary fails; the validator never
	// evaluates them.
	Selector  *Selector  `json:"selector,omitempty"`
	Fallbacks []Selector `json:"fallbacks,omitempty"`

	// Params holds named string parameters (value, url, timeout). Numeric and
	// boolean interpretation belongs to the executor, not the model.
	Params map[string]string `json:"params,omitempty"`

	// Degraded marks a command committed after the refinement budget ran out
	// without the validator ever confirming it. The command is still emitted
	// (a real execution may succeed where the string-level validator could
	// not), but downstream consumers can tell it apart from a validated one.
	Degraded bool `json:"degraded,omitempty"`
}

// Param returns a named parameter or the empty string.
func (c StructuredCommand) Param(name string) string {
	return c.Params[name]
}

// IsWait reports whether the command is a pure pause with no selector.
func (c StructuredCommand) IsWait() bool {
	return c.Kind == KindWait && c.Selector == nil
}
