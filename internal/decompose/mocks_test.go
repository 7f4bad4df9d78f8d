// internal/decompose/mocks_test.go
package decompose_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/oxtest-cli/api/schemas"
)

// MockPageStateProvider is a testify mock for schemas.PageStateProvider.
type MockPageStateProvider struct {
	mock.Mock
}

var _ schemas.PageStateProvider = (*MockPageStateProvider)(nil)

func (m *MockPageStateProvider) Extract(ctx context.Context, fidelity schemas.SnapshotFidelity) (schemas.DomSnapshot, error) {
	args := m.Called(ctx, fidelity)
	return args.Get(0).(schemas.DomSnapshot), args.Error(1)
}

// MockLLMClient is a testify mock for schemas.LLMClient. Responses are
// usually scripted in order via scriptResponses.
type MockLLMClient struct {
	mock.Mock

	// Requests records every generation request for assertions on prompt
	// content and history.
	Requests []schemas.GenerationRequest
}

var _ schemas.LLMClient = (*MockLLMClient)(nil)

func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (schemas.GenerationResponse, error) {
	m.Requests = append(m.Requests, req)
	args := m.Called(ctx, req)
	return args.Get(0).(schemas.GenerationResponse), args.Error(1)
}

// scriptResponses queues LLM response texts returned one per call, in order.
func scriptResponses(llm *MockLLMClient, texts ...string) {
	for _, text := range texts {
		llm.On("Generate", mock.Anything, mock.Anything).
			Return(schemas.GenerationResponse{Content: text}, nil).Once()
	}
}

// MockCommandExecutor is a testify mock for schemas.CommandExecutor.
type MockCommandExecutor struct {
	mock.Mock

	// Executed records the commands in execution order.
	Executed []schemas.StructuredCommand
}

var _ schemas.CommandExecutor = (*MockCommandExecutor)(nil)

func (m *MockCommandExecutor) Execute(ctx context.Context, cmd schemas.StructuredCommand) (schemas.ExecutionResult, error) {
	m.Executed = append(m.Executed, cmd)
	args := m.Called(ctx, cmd)
	return args.Get(0).(schemas.ExecutionResult), args.Error(1)
}
