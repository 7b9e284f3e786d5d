package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent message roles, matching the wire roles of the chat protocol.
const (
	AgentRoleSystem    = "system"
	AgentRoleUser      = "user"
	AgentRoleAssistant = "assistant"
	AgentRoleTool      = "tool"
)

// AgentMessage is one persisted entry of an agent conversation: a system
// seed, a user turn, an assistant reply (possibly carrying tool calls), or a
// single tool result.
type AgentMessage struct {
	ID             int64      `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	Role           string     `json:"role"`
	Content        string     `json:"content"`
	ToolCalls      []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID     string     `json:"tool_call_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ToolCall records one tool invocation requested by the model.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction is the named function and raw JSON arguments of a tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}
