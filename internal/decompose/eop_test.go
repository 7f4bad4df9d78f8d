// internal/decompose/eop_test.go
package decompose_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
	"github.com/xkilldash9x/oxtest-cli/internal/decompose"
)

func okExecutor() *MockCommandExecutor {
	executor := new(MockCommandExecutor)
	executor.On("Execute", mock.Anything, mock.Anything).
		Return(schemas.ExecutionResult{Success: true}, nil)
	return executor
}

// TestDecomposeWithExecution_RequiresExecutor fails fast without one.
func TestDecomposeWithExecution_RequiresExecutor(t *testing.T) {
	engine := newTestEngine(t, new(MockLLMClient), stubProvider(enginePage), nil)

	_, err := engine.DecomposeWithExecution(context.Background(), "log in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executor")
}

// TestDecomposeWithExecution_ExecutesEachCommandThenCompletes: the loop
// executes commands in order and ends on the completion token.
func TestDecomposeWithExecution_ExecutesEachCommandThenCompletes(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`fill css=#username value="alice"`,
		`click css=#login-btn`,
		decompose.CompletionToken,
	)
	executor := okExecutor()
	provider := stubProvider(enginePage)
	engine := newTestEngine(t, llm, provider, executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "log in as alice")
	require.NoError(t, err)

	require.Len(t, result.Commands, 2)
	assert.Equal(t, schemas.KindFill, result.Commands[0].Kind)
	assert.Equal(t, schemas.KindClick, result.Commands[1].Kind)
	require.Len(t, executor.Executed, 2)
	assert.Equal(t, result.Commands, executor.Executed)

	// One snapshot per iteration, including the final completion turn.
	provider.AssertNumberOfCalls(t, "Extract", 3)
}

// TestDecomposeWithExecution_SecondPromptSeesFreshDOM: when executing a
// command changes the page, the next prompt is built from the new markup,
// not the markup the first command was generated against.
func TestDecomposeWithExecution_SecondPromptSeesFreshDOM(t *testing.T) {
	const loginPage = `<html><body><button id="login-btn">Login</button></body></html>`
	const dashboardPage = `<html><body><h1 class="dashboard-title">Dashboard</h1></body></html>`

	provider := new(MockPageStateProvider)
	provider.On("Extract", mock.Anything, mock.Anything).
		Return(schemas.DomSnapshot{HTML: loginPage, Fidelity: schemas.FidelitySimplified, Language: "en"}, nil).Once()
	provider.On("Extract", mock.Anything, mock.Anything).
		Return(schemas.DomSnapshot{HTML: dashboardPage, Fidelity: schemas.FidelitySimplified, Language: "en"}, nil)

	llm := new(MockLLMClient)
	scriptResponses(llm,
		`click css=#login-btn`,
		`assert_text css=.dashboard-title value="Dashboard"`,
		decompose.CompletionToken,
	)
	executor := okExecutor()
	engine := newTestEngine(t, llm, provider, executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "click login then verify the dashboard")
	require.NoError(t, err)

	require.Len(t, result.Commands, 2)
	assert.Equal(t, schemas.KindClick, result.Commands[0].Kind)
	assert.Equal(t, schemas.KindAssertText, result.Commands[1].Kind)
	assert.Equal(t, result.Commands, executor.Executed)

	require.Len(t, llm.Requests, 3)
	assert.Contains(t, llm.Requests[0].UserPrompt, "login-btn")
	assert.NotContains(t, llm.Requests[0].UserPrompt, "dashboard-title")
	assert.Contains(t, llm.Requests[1].UserPrompt, "dashboard-title")
	assert.NotContains(t, llm.Requests[1].UserPrompt, "login-btn")
}

// TestDecomposeWithExecution_HistoryAccumulates: each committed turn appears
// as an assistant message in the next request's history, and a fresh call
// starts with an empty history.
func TestDecomposeWithExecution_HistoryAccumulates(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`click css=#login-btn`,
		decompose.CompletionToken,
	)
	engine := newTestEngine(t, llm, stubProvider(enginePage), okExecutor())

	_, err := engine.DecomposeWithExecution(context.Background(), "log in")
	require.NoError(t, err)

	require.Len(t, llm.Requests, 2)
	assert.Empty(t, llm.Requests[0].History)
	require.Len(t, llm.Requests[1].History, 1)
	assert.Equal(t, schemas.RoleAssistant, llm.Requests[1].History[0].Role)
	assert.Contains(t, llm.Requests[1].History[0].Content, "click css=#login-btn")

	// A second instruction on the same engine must not inherit history.
	llm2 := new(MockLLMClient)
	scriptResponses(llm2, decompose.CompletionToken)
	engine2 := newTestEngine(t, llm2, stubProvider(enginePage), okExecutor())
	_, err = engine2.DecomposeWithExecution(context.Background(), "another task")
	require.NoError(t, err)
	assert.Empty(t, llm2.Requests[0].History)
}

// TestDecomposeWithExecution_UnparseableIsImplicitCompletion ends the loop
// without error when the model emits nothing parseable.
func TestDecomposeWithExecution_UnparseableIsImplicitCompletion(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`click css=#login-btn`,
		"that should be everything!",
	)
	executor := okExecutor()
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "log in")
	require.NoError(t, err)
	assert.Len(t, result.Commands, 1)
	assert.Len(t, executor.Executed, 1)
}

// TestDecomposeWithExecution_WaitAfterCommandsIsStopSignal: a pure wait
// after at least one committed command ends the loop and is neither executed
// nor committed.
func TestDecomposeWithExecution_WaitAfterCommandsIsStopSignal(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`click css=#login-btn`,
		`wait timeout=500`,
	)
	executor := okExecutor()
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "log in")
	require.NoError(t, err)

	require.Len(t, result.Commands, 1)
	assert.Equal(t, schemas.KindClick, result.Commands[0].Kind)
	assert.Len(t, executor.Executed, 1)
}

// TestDecomposeWithExecution_LeadingWaitRunsNormally: a wait as the very
// first command is a legitimate action, not a stop signal.
func TestDecomposeWithExecution_LeadingWaitRunsNormally(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`wait timeout=200`,
		decompose.CompletionToken,
	)
	executor := okExecutor()
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "wait for the page")
	require.NoError(t, err)

	require.Len(t, result.Commands, 1)
	assert.True(t, result.Commands[0].IsWait())
	assert.Len(t, executor.Executed, 1)
}

// TestDecomposeWithExecution_ExecutionFailureContinues: an ordinary failed
// action is committed anyway and the loop keeps observing.
func TestDecomposeWithExecution_ExecutionFailureContinues(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm,
		`click css=#flaky`,
		decompose.CompletionToken,
	)
	executor := new(MockCommandExecutor)
	executor.On("Execute", mock.Anything, mock.Anything).
		Return(schemas.ExecutionResult{Success: false, Error: "node not found"}, nil)
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "click the flaky thing")
	require.NoError(t, err)
	assert.Len(t, result.Commands, 1)
}

// TestDecomposeWithExecution_ExecutorErrorIsFatal: a programmer-level
// executor error aborts the decomposition.
func TestDecomposeWithExecution_ExecutorErrorIsFatal(t *testing.T) {
	llm := new(MockLLMClient)
	scriptResponses(llm, `click css=#login-btn`)
	executor := new(MockCommandExecutor)
	executor.On("Execute", mock.Anything, mock.Anything).
		Return(schemas.ExecutionResult{}, errors.New("executor misconfigured"))
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	_, err := engine.DecomposeWithExecution(context.Background(), "log in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executor misconfigured")
}

// TestDecomposeWithExecution_IterationCap stops after MaxIterations without
// error, returning what was committed.
func TestDecomposeWithExecution_IterationCap(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(schemas.GenerationResponse{Content: `click css=#login-btn`}, nil)
	executor := okExecutor()
	engine := newTestEngine(t, llm, stubProvider(enginePage), executor)

	result, err := engine.DecomposeWithExecution(context.Background(), "click forever")
	require.NoError(t, err)

	// MaxIterations is 5 in the test engine config.
	assert.Len(t, result.Commands, 5)
	assert.Len(t, executor.Executed, 5)
}
