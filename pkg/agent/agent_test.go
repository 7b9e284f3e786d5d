package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/llm"
)

// scriptedExecutor returns canned results keyed by tool name and records
// every call.
type scriptedExecutor struct {
	results map[string]string
	faults  map[string]error
	calls   []string
}

func (e *scriptedExecutor) ExecuteTool(ctx context.Context, name string, arguments string) (string, error) {
	e.calls = append(e.calls, name)
	if err, ok := e.faults[name]; ok {
		return "", err
	}
	if result, ok := e.results[name]; ok {
		return result, nil
	}
	return "{}", nil
}

func toolCall(id, name, args string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: "function",
		Function: llm.ToolCallFunc{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestRun_PlainAnswerWithoutTools(t *testing.T) {
	client := &llm.MockChatClient{
		Responses: []*llm.CompletionResponse{
			{Content: "There are no use cases yet."},
		},
	}
	executor := &scriptedExecutor{}
	agent := New(client, executor, Catalog(), Options{}, zap.NewNop())

	answer, messages, err := agent.Run(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "There are no use cases yet.", answer)
	assert.Empty(t, executor.calls)

	// User turn plus assistant answer.
	require.Len(t, messages, 2)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
}

func TestRun_MultiRoundToolSequence(t *testing.T) {
	client := &llm.MockChatClient{
		Responses: []*llm.CompletionResponse{
			{ToolCalls: []llm.ToolCall{toolCall("call_1", "get_all_companies", "{}")}},
			{ToolCalls: []llm.ToolCall{toolCall("call_2", "create_use_case", `{"title":"Churn predictor","company_id":1,"industry_id":1}`)}},
			{Content: "Created use case 7 for Acme."},
		},
	}
	executor := &scriptedExecutor{
		results: map[string]string{
			"get_all_companies": `[{"id":1,"name":"Acme"}]`,
			"create_use_case":   `{"id":7,"title":"Churn predictor"}`,
		},
	}
	agent := New(client, executor, Catalog(), Options{}, zap.NewNop())

	answer, messages, err := agent.Run(context.Background(), "add a churn predictor for Acme", nil)
	require.NoError(t, err)
	assert.Equal(t, "Created use case 7 for Acme.", answer)
	assert.Equal(t, []string{"get_all_companies", "create_use_case"}, executor.calls)

	// user, assistant+call, tool, assistant+call, tool, assistant answer
	require.Len(t, messages, 6)
	assert.Equal(t, llm.RoleAssistant, messages[1].Role)
	require.Len(t, messages[1].ToolCalls, 1)
	assert.Equal(t, llm.RoleTool, messages[2].Role)
	assert.Equal(t, "call_1", messages[2].ToolCallID)
	assert.Equal(t, `[{"id":1,"name":"Acme"}]`, messages[2].Content)
	assert.Equal(t, "call_2", messages[4].ToolCallID)
	assert.Equal(t, llm.RoleAssistant, messages[5].Role)
	assert.Empty(t, messages[5].ToolCalls)
}

func TestRun_HistoryIsPreserved(t *testing.T) {
	client := &llm.MockChatClient{
		Responses: []*llm.CompletionResponse{
			{Content: "As I said, there are three."},
		},
	}
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "how many use cases are there?"},
		{Role: llm.RoleAssistant, Content: "There are three."},
	}
	agent := New(client, &scriptedExecutor{}, Catalog(), Options{}, zap.NewNop())

	_, messages, err := agent.Run(context.Background(), "repeat that", history)
	require.NoError(t, err)
	require.Len(t, messages, 4)
	assert.Equal(t, "how many use cases are there?", messages[0].Content)

	// The model saw the prior turns too.
	require.Len(t, client.Requests, 1)
	assert.Len(t, client.Requests[0].Messages, 3)
	assert.NotEmpty(t, client.Requests[0].SystemPrompt)
	assert.NotEmpty(t, client.Requests[0].Tools)
}

func TestRun_ExecutorFaultFedBackAsError(t *testing.T) {
	client := &llm.MockChatClient{
		Responses: []*llm.CompletionResponse{
			{ToolCalls: []llm.ToolCall{toolCall("call_1", "get_all_use_cases", "{}")}},
			{Content: "Something went wrong on my end."},
		},
	}
	executor := &scriptedExecutor{
		faults: map[string]error{"get_all_use_cases": errors.New("store offline")},
	}
	agent := New(client, executor, Catalog(), Options{}, zap.NewNop())

	answer, messages, err := agent.Run(context.Background(), "list everything", nil)
	require.NoError(t, err)
	assert.Equal(t, "Something went wrong on my end.", answer)

	// The fault became the tool result instead of aborting the run.
	assert.Equal(t, `{"error":"store offline"}`, messages[2].Content)
}

func TestRun_MaxRoundsForcesFinalAnswer(t *testing.T) {
	const maxRounds = 3

	var responses []*llm.CompletionResponse
	for i := 0; i < maxRounds; i++ {
		responses = append(responses, &llm.CompletionResponse{
			ToolCalls: []llm.ToolCall{toolCall(fmt.Sprintf("call_%d", i), "get_all_use_cases", "{}")},
		})
	}
	responses = append(responses, &llm.CompletionResponse{Content: "Here is what I found so far."})

	client := &llm.MockChatClient{Responses: responses}
	executor := &scriptedExecutor{results: map[string]string{"get_all_use_cases": "[]"}}
	agent := New(client, executor, Catalog(), Options{MaxRounds: maxRounds}, zap.NewNop())

	answer, _, err := agent.Run(context.Background(), "loop forever", nil)
	require.NoError(t, err)
	assert.Equal(t, "Here is what I found so far.", answer)
	assert.Equal(t, maxRounds+1, client.CallCount())

	// Every in-loop call offers tools; the forced final call does not.
	for i := 0; i < maxRounds; i++ {
		assert.NotEmpty(t, client.Requests[i].Tools)
	}
	assert.Empty(t, client.Requests[maxRounds].Tools)
}

func TestRun_ModelErrorReturnsOriginalHistory(t *testing.T) {
	client := &llm.MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("rate limited")
		},
	}
	history := []llm.Message{{Role: llm.RoleUser, Content: "earlier"}}
	agent := New(client, &scriptedExecutor{}, Catalog(), Options{}, zap.NewNop())

	_, messages, err := agent.Run(context.Background(), "hello", history)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, history, messages)
}

// captureRecorder collects records synchronously.
type captureRecorder struct {
	records []*llm.CompletionRecord
}

func (r *captureRecorder) Record(rec *llm.CompletionRecord) {
	r.records = append(r.records, rec)
}

func TestRun_RecordsEachRound(t *testing.T) {
	client := &llm.MockChatClient{
		Responses: []*llm.CompletionResponse{
			{
				ToolCalls:        []llm.ToolCall{toolCall("call_1", "get_all_use_cases", "{}")},
				PromptTokens:     100,
				CompletionTokens: 20,
				TotalTokens:      120,
			},
			{Content: "Nothing stored yet.", TotalTokens: 140},
		},
	}
	executor := &scriptedExecutor{results: map[string]string{"get_all_use_cases": "[]"}}
	recorder := &captureRecorder{}
	agent := New(client, executor, Catalog(), Options{Recorder: recorder}, zap.NewNop())

	_, _, err := agent.Run(context.Background(), "list use cases", nil)
	require.NoError(t, err)

	require.Len(t, recorder.records, 2)
	first, second := recorder.records[0], recorder.records[1]
	assert.Equal(t, "mock-model", first.Model)
	assert.Equal(t, 1, first.Round)
	assert.Equal(t, 1, first.ToolCallCount)
	assert.Equal(t, 120, first.TotalTokens)
	assert.Empty(t, first.Error)
	assert.Equal(t, 2, second.Round)
	assert.Equal(t, 0, second.ToolCallCount)
	assert.Equal(t, "Nothing stored yet.", second.Content)
}

func TestRun_RecordsModelError(t *testing.T) {
	client := &llm.MockChatClient{
		CreateCompletionFunc: func(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return nil, errors.New("rate limited")
		},
	}
	recorder := &captureRecorder{}
	agent := New(client, &scriptedExecutor{}, Catalog(), Options{Recorder: recorder}, zap.NewNop())

	_, _, err := agent.Run(context.Background(), "hello", nil)
	require.Error(t, err)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, "rate limited", recorder.records[0].Error)
	assert.Zero(t, recorder.records[0].TotalTokens)
}

func TestSystemPrompt_ListsTools(t *testing.T) {
	agent := New(&llm.MockChatClient{}, &scriptedExecutor{}, Catalog(), Options{}, zap.NewNop())

	prompt := agent.systemPrompt()
	assert.Contains(t, prompt, "get_all_use_cases")
	assert.Contains(t, prompt, "add_persons_to_use_case")
	assert.Contains(t, prompt, "NEVER assume or fabricate")
}
