package memory

import (
	"context"
	"sync"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// AuditRepository is an append-only in-memory audit log.
type AuditRepository struct {
	mu     sync.RWMutex
	events []model.AuditEvent
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, e model.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)

	return nil
}

func (r *AuditRepository) ListByRequest(_ context.Context, requestID string) ([]model.AuditEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.AuditEvent, 0)
	for _, e := range r.events {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}

	return out, nil
}

// All returns every recorded event in append order.
func (r *AuditRepository) All() []model.AuditEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.AuditEvent, len(r.events))
	copy(out, r.events)

	return out
}
