package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// Repository provides methods to interact with the append-only audit_events table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new audit repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Append(ctx context.Context, e model.AuditEvent) error {
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}
	if e.Metadata == nil {
		meta = []byte("{}")
	}

	query := `
		INSERT INTO audit_events (
		    id, request_id, level_number, action, actor_id, "timestamp",
		    previous_status, new_status, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
    `

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.RequestID, e.LevelNumber, e.Action, e.ActorID, e.Timestamp,
		e.PreviousStatus, e.NewStatus, meta,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	return nil
}

// ListByRequest returns the trail of a request in the order it was written.
func (r *Repository) ListByRequest(ctx context.Context, requestID string) ([]model.AuditEvent, error) {
	query := `
		SELECT id, request_id, level_number, action, actor_id, "timestamp",
		       previous_status, new_status, metadata
		FROM audit_events
		WHERE request_id = $1
		ORDER BY seq;
    `

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	out := make([]model.AuditEvent, 0)
	for rows.Next() {
		var (
			e     model.AuditEvent
			level sql.NullInt64
			meta  []byte
		)

		err := rows.Scan(
			&e.ID, &e.RequestID, &level, &e.Action, &e.ActorID, &e.Timestamp,
			&e.PreviousStatus, &e.NewStatus, &meta,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}

		if level.Valid {
			n := int(level.Int64)
			e.LevelNumber = &n
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}

		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return out, nil
}
