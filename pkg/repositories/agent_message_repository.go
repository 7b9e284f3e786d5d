package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// AgentMessageRepository persists agent conversation transcripts.
type AgentMessageRepository interface {
	Save(ctx context.Context, msg *models.AgentMessage) error
	// GetConversation returns a conversation's messages in insertion order.
	GetConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.AgentMessage, error)
	Clear(ctx context.Context, conversationID uuid.UUID) error
}

type agentMessageRepository struct{}

// NewAgentMessageRepository creates a new agent message repository.
func NewAgentMessageRepository() AgentMessageRepository {
	return &agentMessageRepository{}
}

var _ AgentMessageRepository = (*agentMessageRepository)(nil)

func (r *agentMessageRepository) Save(ctx context.Context, msg *models.AgentMessage) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	msg.CreatedAt = time.Now()

	var toolCallsJSON []byte
	if len(msg.ToolCalls) > 0 {
		var err error
		toolCallsJSON, err = json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("failed to marshal tool_calls: %w", err)
		}
	}

	err := scope.Conn.QueryRow(ctx, `
		INSERT INTO agent_messages (conversation_id, role, content, tool_calls, tool_call_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id`,
		msg.ConversationID, msg.Role, msg.Content, toolCallsJSON, msg.ToolCallID, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to save agent message: %w", err)
	}

	return nil
}

func (r *agentMessageRepository) GetConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.AgentMessage, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no query scope in context")
	}

	if limit <= 0 {
		limit = 100
	}

	rows, err := scope.Conn.Query(ctx, `
		SELECT id, conversation_id, role, content, tool_calls, COALESCE(tool_call_id, ''), created_at
		FROM agent_messages
		WHERE conversation_id = $1
		ORDER BY id
		LIMIT $2`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	var messages []*models.AgentMessage
	for rows.Next() {
		var msg models.AgentMessage
		var toolCallsJSON []byte
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &toolCallsJSON, &msg.ToolCallID, &msg.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent message: %w", err)
		}
		if len(toolCallsJSON) > 0 {
			if err := json.Unmarshal(toolCallsJSON, &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to unmarshal tool_calls: %w", err)
			}
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate agent messages: %w", err)
	}

	return messages, nil
}

func (r *agentMessageRepository) Clear(ctx context.Context, conversationID uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return fmt.Errorf("no query scope in context")
	}

	_, err := scope.Conn.Exec(ctx,
		`DELETE FROM agent_messages WHERE conversation_id = $1`, conversationID)
	if err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	return nil
}
