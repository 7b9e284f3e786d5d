package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/apperrors"
	"github.com/usecasehq/usecase-engine/pkg/llm"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

// fakeRunner echoes the user message back as the answer and records the
// history it was handed.
type fakeRunner struct {
	gotHistory []llm.Message
	gotMessage string
	runErr     error
}

func (r *fakeRunner) Run(ctx context.Context, userMessage string, history []llm.Message) (string, []llm.Message, error) {
	r.gotMessage = userMessage
	r.gotHistory = history
	if r.runErr != nil {
		return "", nil, r.runErr
	}
	updated := append(append([]llm.Message{}, history...),
		llm.Message{Role: models.AgentRoleUser, Content: userMessage},
		llm.Message{
			Role:    models.AgentRoleAssistant,
			Content: "echo: " + userMessage,
			ToolCalls: []llm.ToolCall{{
				ID:   "call_1",
				Type: "function",
				Function: llm.ToolCallFunc{
					Name:      "get_all_use_cases",
					Arguments: "{}",
				},
			}},
		},
		llm.Message{Role: models.AgentRoleTool, Content: "[]", ToolCallID: "call_1"},
	)
	return "echo: " + userMessage, updated, nil
}

func newChatService(runner AgentRunner) (ChatService, *fakeAgentMessageRepo) {
	repo := newFakeAgentMessageRepo()
	return NewChatService(runner, repo, passthroughTx{}, zap.NewNop()), repo
}

func TestSendMessage_NewConversation(t *testing.T) {
	runner := &fakeRunner{}
	svc, repo := newChatService(runner)

	answer, id, err := svc.SendMessage(ctxAs(models.RoleReader), uuid.Nil, "show all use cases")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, "echo: show all use cases", answer)
	assert.Empty(t, runner.gotHistory)

	// The full turn is persisted, including the tool call metadata.
	stored := repo.conversations[id]
	require.Len(t, stored, 3)
	assert.Equal(t, models.AgentRoleUser, stored[0].Role)
	assert.Equal(t, models.AgentRoleAssistant, stored[1].Role)
	require.Len(t, stored[1].ToolCalls, 1)
	assert.Equal(t, "get_all_use_cases", stored[1].ToolCalls[0].Function.Name)
	assert.Equal(t, models.AgentRoleTool, stored[2].Role)
	assert.Equal(t, "call_1", stored[2].ToolCallID)
}

func TestSendMessage_ContinuesConversation(t *testing.T) {
	runner := &fakeRunner{}
	svc, repo := newChatService(runner)

	_, id, err := svc.SendMessage(ctxAs(models.RoleReader), uuid.Nil, "first")
	require.NoError(t, err)

	answer, second, err := svc.SendMessage(ctxAs(models.RoleReader), id, "second")
	require.NoError(t, err)
	assert.Equal(t, id, second)
	assert.Equal(t, "echo: second", answer)

	// The runner saw the prior transcript and only the new turn was
	// appended to storage.
	assert.Len(t, runner.gotHistory, 3)
	assert.Len(t, repo.conversations[id], 6)
}

func TestSendMessage_RunnerErrorPersistsNothing(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("model unavailable")}
	svc, repo := newChatService(runner)

	_, id, err := svc.SendMessage(ctxAs(models.RoleReader), uuid.Nil, "hello")
	require.Error(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Empty(t, repo.conversations[id])
}

func TestChatService_RequiresLogin(t *testing.T) {
	runner := &fakeRunner{}
	svc, _ := newChatService(runner)
	id := uuid.New()

	_, _, err := svc.SendMessage(context.Background(), id, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, runner.gotMessage, "the runner must not be reached without a user")

	_, err = svc.GetHistory(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = svc.ClearConversation(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestClearConversation_AdminOnly(t *testing.T) {
	runner := &fakeRunner{}
	svc, repo := newChatService(runner)

	_, id, err := svc.SendMessage(ctxAs(models.RoleReader), uuid.Nil, "hello")
	require.NoError(t, err)

	for _, role := range []string{models.RoleReader, models.RoleMaintainer} {
		err := svc.ClearConversation(ctxAs(role), id)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	}
	assert.Len(t, repo.conversations[id], 3, "denied clears must leave the transcript intact")

	require.NoError(t, svc.ClearConversation(ctxAs(models.RoleAdmin), id))
	assert.Empty(t, repo.conversations[id])
}

func TestGetHistoryAndClear(t *testing.T) {
	runner := &fakeRunner{}
	svc, _ := newChatService(runner)

	_, id, err := svc.SendMessage(ctxAs(models.RoleReader), uuid.Nil, "hello")
	require.NoError(t, err)

	history, err := svc.GetHistory(ctxAs(models.RoleReader), id)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	require.NoError(t, svc.ClearConversation(ctxAs(models.RoleAdmin), id))

	history, err = svc.GetHistory(ctxAs(models.RoleReader), id)
	require.NoError(t, err)
	assert.Empty(t, history)
}
