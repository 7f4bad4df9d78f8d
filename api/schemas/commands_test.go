// api/schemas/commands_test.go
package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// TestParseCommandKind_Spellings verifies that the accepted external
// spellings all normalize onto the canonical enum values.
func TestParseCommandKind_Spellings(t *testing.T) {
	cases := map[string]schemas.CommandKind{
		"navigate":          schemas.KindNavigate,
		"goto":              schemas.KindNavigate,
		"NAVIGATE":          schemas.KindNavigate,
		"go_back":           schemas.KindGoBack,
		"goBack":            schemas.KindGoBack,
		"go-back":           schemas.KindGoBack,
		"click":             schemas.KindClick,
		"fill":              schemas.KindFill,
		"type":              schemas.KindFill,
		"select_option":     schemas.KindSelectOption,
		"selectOption":      schemas.KindSelectOption,
		"wait_for_selector": schemas.KindWaitForSelector,
		"waitForSelector":   schemas.KindWaitForSelector,
		"assert_visible":    schemas.KindAssertVisible,
		"assertText":        schemas.KindAssertText,
		"ASSERT_URL":        schemas.KindAssertURL,
		"  hover  ":         schemas.KindHover,
	}

	for input, want := range cases {
		got, ok := schemas.ParseCommandKind(input)
		assert.True(t, ok, "expected %q to parse", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

// TestParseCommandKind_Unknown verifies rejection of anything outside the
// closed set.
func TestParseCommandKind_Unknown(t *testing.T) {
	for _, input := range []string{"", "explode", "click_twice", "assert"} {
		_, ok := schemas.ParseCommandKind(input)
		assert.False(t, ok, "expected %q to be rejected", input)
	}
}

// TestRequiresSelector covers the selector-less kinds.
func TestRequiresSelector(t *testing.T) {
	assert.False(t, schemas.KindNavigate.RequiresSelector())
	assert.False(t, schemas.KindWait.RequiresSelector())
	assert.False(t, schemas.KindGoBack.RequiresSelector())
	assert.False(t, schemas.KindGoForward.RequiresSelector())
	assert.False(t, schemas.KindAssertURL.RequiresSelector())

	assert.True(t, schemas.KindClick.RequiresSelector())
	assert.True(t, schemas.KindFill.RequiresSelector())
	assert.True(t, schemas.KindAssertVisible.RequiresSelector())
	assert.True(t, schemas.KindWaitForSelector.RequiresSelector())
}

// TestParseSelectorStrategy covers spelling variants and rejection.
func TestParseSelectorStrategy(t *testing.T) {
	for input, want := range map[string]schemas.SelectorStrategy{
		"css":         schemas.StrategyCSS,
		"XPATH":       schemas.StrategyXPath,
		"text":        schemas.StrategyText,
		"testid":      schemas.StrategyTestID,
		"test-id":     schemas.StrategyTestID,
		"data-testid": schemas.StrategyTestID,
		"role":        schemas.StrategyRole,
		"placeholder": schemas.StrategyPlaceholder,
	} {
		got, ok := schemas.ParseSelectorStrategy(input)
		assert.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, ok := schemas.ParseSelectorStrategy("id")
	assert.False(t, ok)
}

// TestStructuredCommand_IsWait distinguishes a pure pause from a wait that
// carries a selector.
func TestStructuredCommand_IsWait(t *testing.T) {
	pause := schemas.StructuredCommand{Kind: schemas.KindWait}
	assert.True(t, pause.IsWait())

	withSelector := schemas.StructuredCommand{
		Kind:     schemas.KindWait,
		Selector: &schemas.Selector{Strategy: schemas.StrategyCSS, Value: "#spinner"},
	}
	assert.False(t, withSelector.IsWait())

	click := schemas.StructuredCommand{Kind: schemas.KindClick}
	assert.False(t, click.IsWait())
}

// TestStructuredCommand_Param returns the empty string for absent keys even
// on a nil map.
func TestStructuredCommand_Param(t *testing.T) {
	cmd := schemas.StructuredCommand{Kind: schemas.KindNavigate}
	assert.Equal(t, "", cmd.Param("url"))

	cmd.Params = map[string]string{"url": "https://example.com"}
	assert.Equal(t, "https://example.com", cmd.Param("url"))
}

// TestSuiteResult_Passed aggregates over all tests.
func TestSuiteResult_Passed(t *testing.T) {
	suite := schemas.SuiteResult{Tests: []schemas.TestResult{{Passed: true}, {Passed: true}}}
	assert.True(t, suite.Passed())

	suite.Tests = append(suite.Tests, schemas.TestResult{Passed: false})
	assert.False(t, suite.Passed())

	empty := schemas.SuiteResult{}
	assert.True(t, empty.Passed())
}
