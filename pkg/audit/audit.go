// Package audit records the mutating requests made by signed-in users.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-crm/pkg/rbac"
)

// Event is one audited request.
type Event struct {
	ActorID   uuid.UUID              `json:"actor_id"`
	ActorRole rbac.Role              `json:"actor_role"`
	Method    string                 `json:"method"`
	URI       string                 `json:"uri"`
	Status    int                    `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WithMetadata adds metadata to the audit event
func (e Event) WithMetadata(key string, value interface{}) Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

type Recorder interface {
	Record(ctx context.Context, event Event)
}

// SlogRecorder writes events to a structured logger.
type SlogRecorder struct {
	logger *slog.Logger
}

func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRecorder{logger: logger}
}

func (r *SlogRecorder) Record(ctx context.Context, e Event) {
	r.logger.InfoContext(ctx, "Audit",
		"actorId", e.ActorID,
		"actorRole", e.ActorRole,
		"method", e.Method,
		"uri", e.URI,
		"status", e.Status,
		"timestamp", e.Timestamp.Format(time.RFC3339),
	)
}

// MemoryRecorder keeps the most recent events.
type MemoryRecorder struct {
	mu     sync.RWMutex
	events []Event
	limit  int
}

// NewMemoryRecorder keeps up to limit events; 0 means unbounded.
func NewMemoryRecorder(limit int) *MemoryRecorder {
	return &MemoryRecorder{limit: limit}
}

func (r *MemoryRecorder) Record(ctx context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = append([]Event(nil), r.events[len(r.events)-r.limit:]...)
	}
}

// Events returns the kept events, oldest first.
func (r *MemoryRecorder) Events() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Event(nil), r.events...)
}
