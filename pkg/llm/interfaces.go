// Package llm provides chat-completion clients with tool-calling support.
// Two providers are implemented: any OpenAI-compatible endpoint (including
// OpenRouter) and the Anthropic Messages API.
package llm

import "context"

// Message role constants, as used on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall represents a tool call requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolCallFunc `json:"function"`
}

// ToolCallFunc represents a function call within a tool call.
type ToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// CompletionRequest is one model call: the full message history so far,
// the tool definitions offered for this round (nil to force a text-only
// answer), and sampling parameters.
type CompletionRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse is the model's reply: plain text, tool calls, or both.
type CompletionResponse struct {
	Content          string
	ToolCalls        []ToolCall
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatClient is the interface the agent loop depends on. Use it for
// dependency injection to enable mocking in tests.
type ChatClient interface {
	// CreateCompletion performs a single, non-streaming chat completion.
	CreateCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// ToolExecutor executes a named tool with JSON-encoded arguments and
// returns a JSON-encoded result. Implementations must convert every
// domain failure into an in-band {"error": ...} payload; a Go error
// signals a system fault, not a tool outcome.
type ToolExecutor interface {
	ExecuteTool(ctx context.Context, name string, arguments string) (string, error)
}
