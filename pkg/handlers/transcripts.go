package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/extraction"
)

// TranscriptRequest is the body of POST /api/transcripts.
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

// TranscriptProcessor is the extraction workflow the handler drives.
type TranscriptProcessor interface {
	ProcessTranscript(ctx context.Context, transcript string) (*extraction.Summary, error)
}

// TranscriptHandler runs the transcript-to-use-cases workflow.
type TranscriptHandler struct {
	processor TranscriptProcessor
	logger    *zap.Logger
}

// NewTranscriptHandler creates a transcript handler.
func NewTranscriptHandler(processor TranscriptProcessor, logger *zap.Logger) *TranscriptHandler {
	return &TranscriptHandler{processor: processor, logger: logger}
}

// RegisterRoutes registers the transcript routes on the given mux.
func (h *TranscriptHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/transcripts", h.Process)
}

// Process handles POST /api/transcripts.
func (h *TranscriptHandler) Process(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthenticated", "you must be logged in to perform this action")
		return
	}

	var req TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "invalid JSON body")
		return
	}
	if req.Transcript == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_body", "transcript is required")
		return
	}

	summary, err := h.processor.ProcessTranscript(r.Context(), req.Transcript)
	if err != nil {
		h.logger.Error("Transcript processing failed", zap.Error(err))
		_ = WriteError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, summary)
}
