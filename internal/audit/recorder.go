// Package audit records approval and delivery events to the audit store
// and mirrors them to any configured feeds.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

type auditRepository interface {
	Append(ctx context.Context, e model.AuditEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]model.AuditEvent, error)
}

// Publisher mirrors audit events to an external feed.
type Publisher interface {
	Publish(ctx context.Context, e model.AuditEvent) error
}

// Recorder writes every event it is given. A failing sink is logged and
// never stops the event from reaching the others.
type Recorder struct {
	repo       auditRepository
	publishers []Publisher
	now        func() time.Time
}

func NewRecorder(repo auditRepository, publishers ...Publisher) *Recorder {
	return &Recorder{repo: repo, publishers: publishers, now: clock.Now}
}

// WithClock returns a copy of the recorder stamping events from now.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	c := *r
	c.now = now
	return &c
}

// Record stamps and stores e.
func (r *Recorder) Record(ctx context.Context, e model.AuditEvent) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}

	if err := r.repo.Append(ctx, e); err != nil {
		zlog.Logger.Error().Err(err).
			Str("request_id", e.RequestID).
			Str("action", e.Action).
			Msg("failed to write audit event")
	}

	for _, p := range r.publishers {
		if err := p.Publish(ctx, e); err != nil {
			zlog.Logger.Warn().Err(err).
				Str("request_id", e.RequestID).
				Str("action", e.Action).
				Msg("failed to publish audit event")
		}
	}
}

// History returns the audit trail of a request in recording order.
func (r *Recorder) History(ctx context.Context, requestID string) ([]model.AuditEvent, error) {
	events, err := r.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	return events, nil
}
