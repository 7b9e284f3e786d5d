package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/database"
	"github.com/usecasehq/usecase-engine/pkg/llm"
	"github.com/usecasehq/usecase-engine/pkg/models"
	"github.com/usecasehq/usecase-engine/pkg/repositories"
)

// AgentRunner abstracts the agent loop so the chat service can be tested
// without a model client.
type AgentRunner interface {
	Run(ctx context.Context, userMessage string, history []llm.Message) (string, []llm.Message, error)
}

// ChatService runs agent turns within persistent conversations. Each
// conversation is identified by a UUID; the transcript is loaded before
// the run and the new turns are stored after it.
type ChatService interface {
	// SendMessage runs one agent turn in the given conversation and
	// returns the assistant's answer. A zero conversationID starts a new
	// conversation; the id in use is always returned.
	SendMessage(ctx context.Context, conversationID uuid.UUID, message string) (string, uuid.UUID, error)

	// GetHistory returns a conversation's persisted transcript. Requires
	// an authenticated user.
	GetHistory(ctx context.Context, conversationID uuid.UUID) ([]*models.AgentMessage, error)

	// ClearConversation deletes a conversation's transcript. Admin only.
	ClearConversation(ctx context.Context, conversationID uuid.UUID) error
}

type chatService struct {
	runner   AgentRunner
	messages repositories.AgentMessageRepository
	tx       database.TxManager
	logger   *zap.Logger
}

// NewChatService creates a chat service over the given agent runner.
func NewChatService(
	runner AgentRunner,
	messages repositories.AgentMessageRepository,
	tx database.TxManager,
	logger *zap.Logger,
) ChatService {
	return &chatService{
		runner:   runner,
		messages: messages,
		tx:       tx,
		logger:   logger,
	}
}

var _ ChatService = (*chatService)(nil)

func (s *chatService) SendMessage(ctx context.Context, conversationID uuid.UUID, message string) (string, uuid.UUID, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return "", conversationID, err
	}

	if conversationID == uuid.Nil {
		conversationID = uuid.New()
		s.logger.Info("Starting conversation",
			zap.String("conversation_id", conversationID.String()))
	}

	var stored []*models.AgentMessage
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.messages.GetConversation(ctx, conversationID, 0)
		return err
	})
	if err != nil {
		return "", conversationID, err
	}

	history := toLLMMessages(stored)
	priorLen := len(history)

	answer, updated, err := s.runner.Run(ctx, message, history)
	if err != nil {
		return "", conversationID, err
	}

	// Persist only this turn's messages; the prior transcript is already
	// stored.
	err = s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		for _, msg := range updated[priorLen:] {
			record := &models.AgentMessage{
				ConversationID: conversationID,
				Role:           msg.Role,
				Content:        msg.Content,
				ToolCallID:     msg.ToolCallID,
				ToolCalls:      toModelToolCalls(msg.ToolCalls),
			}
			if err := s.messages.Save(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to persist conversation turn",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
		return "", conversationID, err
	}

	return answer, conversationID, nil
}

func (s *chatService) GetHistory(ctx context.Context, conversationID uuid.UUID) ([]*models.AgentMessage, error) {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	var stored []*models.AgentMessage
	err := s.tx.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		stored, err = s.messages.GetConversation(ctx, conversationID, 0)
		return err
	})
	return stored, err
}

func (s *chatService) ClearConversation(ctx context.Context, conversationID uuid.UUID) error {
	if err := auth.RequirePermission(auth.UserFromContext(ctx), auth.ActionDelete); err != nil {
		return err
	}

	return s.tx.ReadWrite(ctx, func(ctx context.Context) error {
		return s.messages.Clear(ctx, conversationID)
	})
}

func toLLMMessages(stored []*models.AgentMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(stored))
	for _, m := range stored {
		msg := llm.Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: llm.ToolCallFunc{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(messages, msg)
	}
	return messages
}

func toModelToolCalls(calls []llm.ToolCall) []models.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]models.ToolCall, len(calls))
	for i, tc := range calls {
		result[i] = models.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			Function: models.ToolCallFunction{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return result
}
