package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/services"
)

// ChatRequest is the body of POST /api/chat. An empty conversation_id
// starts a new conversation.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse carries the agent's answer and the conversation id to use
// for follow-up turns.
type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
}

// ChatHandler exposes the agent over HTTP.
type ChatHandler struct {
	chat   services.ChatService
	logger *zap.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.Chat)
	mux.HandleFunc("GET /api/chat/{conversation_id}", h.History)
	mux.HandleFunc("DELETE /api/chat/{conversation_id}", h.Clear)
}

// Chat handles POST /api/chat: one agent turn for the acting user.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "you must be logged in to perform this action")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Message == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "message is required")
		return
	}

	conversationID := uuid.Nil
	if req.ConversationID != "" {
		parsed, err := uuid.Parse(req.ConversationID)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid conversation_id")
			return
		}
		conversationID = parsed
	}

	answer, conversationID, err := h.chat.SendMessage(r.Context(), conversationID, req.Message)
	if err != nil {
		h.logger.Error("Chat turn failed",
			zap.String("conversation_id", conversationID.String()),
			zap.Error(err))
		_ = WriteError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, ChatResponse{
		Answer:         answer,
		ConversationID: conversationID.String(),
	})
}

// History handles GET /api/chat/{conversation_id}.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "you must be logged in to perform this action")
		return
	}

	conversationID, err := uuid.Parse(r.PathValue("conversation_id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_path", "invalid conversation_id")
		return
	}

	messages, err := h.chat.GetHistory(r.Context(), conversationID)
	if err != nil {
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, messages)
}

// Clear handles DELETE /api/chat/{conversation_id}.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "you must be logged in to perform this action")
		return
	}

	conversationID, err := uuid.Parse(r.PathValue("conversation_id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_path", "invalid conversation_id")
		return
	}

	if err := h.chat.ClearConversation(r.Context(), conversationID); err != nil {
		_ = WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
