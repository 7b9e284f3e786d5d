package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(&Config{Model: "gpt-4o"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")

	_, err = NewClient(&Config{Endpoint: "http://localhost:11434/v1"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")

	client, err := NewClient(&Config{Endpoint: "http://localhost:11434/v1/", Model: "llama3"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "llama3", client.GetModel())
}

func TestBuildMessages(t *testing.T) {
	client, err := NewClient(&Config{Endpoint: "http://localhost/v1", Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	req := &CompletionRequest{
		SystemPrompt: "You are a helpful assistant.",
		Messages: []Message{
			{Role: RoleUser, Content: "list companies"},
			{
				Role: RoleAssistant,
				ToolCalls: []ToolCall{{
					ID:       "call_1",
					Type:     "function",
					Function: ToolCallFunc{Name: "get_all_companies", Arguments: "{}"},
				}},
			},
			{Role: RoleTool, Content: "[]", ToolCallID: "call_1"},
		},
	}

	messages := client.buildMessages(req)
	require.Len(t, messages, 4)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "You are a helpful assistant.", messages[0].Content)
	assert.Equal(t, RoleUser, messages[1].Role)

	require.Len(t, messages[2].ToolCalls, 1)
	assert.Equal(t, "get_all_companies", messages[2].ToolCalls[0].Function.Name)

	assert.Equal(t, RoleTool, messages[3].Role)
	assert.Equal(t, "call_1", messages[3].ToolCallID)
}

func TestBuildMessages_NoSystemPrompt(t *testing.T) {
	client, err := NewClient(&Config{Endpoint: "http://localhost/v1", Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	messages := client.buildMessages(&CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Len(t, messages, 1)
	assert.Equal(t, RoleUser, messages[0].Role)
}

func TestBuildTools(t *testing.T) {
	client, err := NewClient(&Config{Endpoint: "http://localhost/v1", Model: "m"}, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, client.buildTools(nil))

	def := NewToolDefinition("get_all_companies", "List companies", map[string]ParameterProperty{}, nil)
	tools := client.buildTools([]ToolDefinition{def})
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	assert.Equal(t, "get_all_companies", tools[0].Function.Name)
}

func TestNewChatClient_Factory(t *testing.T) {
	base := Config{Endpoint: "http://localhost/v1", Model: "m", APIKey: "k"}

	openaiCfg := base
	client, err := NewChatClient(&openaiCfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Client{}, client)

	anthropicCfg := base
	anthropicCfg.Provider = "anthropic"
	client, err = NewChatClient(&anthropicCfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)

	badCfg := base
	badCfg.Provider = "bedrock"
	_, err = NewChatClient(&badCfg, zap.NewNop())
	require.Error(t, err)
}
