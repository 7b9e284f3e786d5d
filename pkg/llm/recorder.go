package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CompletionRecord captures one completed model round for persistence.
type CompletionRecord struct {
	Model            string    `json:"model"`
	Round            int       `json:"round"`
	MessageCount     int       `json:"message_count"`
	Content          string    `json:"content"`
	ToolCallCount    int       `json:"tool_call_count"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	DurationMs       int       `json:"duration_ms"`
	Error            string    `json:"error,omitempty"`
	StartedAt        time.Time `json:"started_at"`
}

// Recorder receives completion records for persistence. Implementations
// must not block the caller.
type Recorder interface {
	Record(rec *CompletionRecord)
}

// SinkFunc persists a single completion record.
type SinkFunc func(ctx context.Context, rec *CompletionRecord) error

// AsyncRecorder persists completion records on a background goroutine so
// recording never delays a model round.
type AsyncRecorder struct {
	sink   SinkFunc
	logger *zap.Logger
	queue  chan *CompletionRecord
	done   chan struct{}
}

// NewAsyncRecorder creates a recorder draining into sink. queueSize
// bounds the buffer; when full, records are dropped with a warning.
func NewAsyncRecorder(sink SinkFunc, logger *zap.Logger, queueSize int) *AsyncRecorder {
	if queueSize <= 0 {
		queueSize = 100
	}

	r := &AsyncRecorder{
		sink:   sink,
		logger: logger.Named("completion-recorder"),
		queue:  make(chan *CompletionRecord, queueSize),
		done:   make(chan struct{}),
	}

	go r.processQueue()

	return r
}

// Record queues a completion record. Non-blocking; if the queue is full
// the record is dropped with a warning.
func (r *AsyncRecorder) Record(rec *CompletionRecord) {
	select {
	case r.queue <- rec:
	default:
		r.logger.Warn("Completion record queue full, dropping entry",
			zap.String("model", rec.Model),
			zap.Int("round", rec.Round))
	}
}

// Close stops the recorder and waits for queued records to be persisted.
func (r *AsyncRecorder) Close() {
	close(r.queue)
	<-r.done
}

func (r *AsyncRecorder) processQueue() {
	defer close(r.done)

	for rec := range r.queue {
		if err := r.sink(context.Background(), rec); err != nil {
			r.logger.Error("Failed to persist completion record",
				zap.String("model", rec.Model),
				zap.Int("round", rec.Round),
				zap.Error(err))
			continue
		}

		r.logger.Debug("Persisted completion record",
			zap.String("model", rec.Model),
			zap.Int("round", rec.Round),
			zap.Int("total_tokens", rec.TotalTokens),
			zap.Int("duration_ms", rec.DurationMs))
	}
}

var _ Recorder = (*AsyncRecorder)(nil)
