package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// Repository provides methods to interact with the inapp_notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new in-app inbox repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// InsertInApp writes an inbox record. A second record for the same queued
// notification is ignored.
func (r *Repository) InsertInApp(ctx context.Context, n model.InAppNotification) error {
	query := `
		INSERT INTO inapp_notifications (
		    id, notification_id, user_id, type, title, message, link, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (notification_id) DO NOTHING;
    `

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.NotificationID, n.UserID, n.Type, n.Title, n.Message, n.Link, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert in-app notification: %w", err)
	}

	return nil
}

// ListInbox returns the user's inbox, newest first.
func (r *Repository) ListInbox(ctx context.Context, userID string, limit int) ([]model.InAppNotification, error) {
	query := `
		SELECT id, notification_id, user_id, type, title, message, link, created_at, read_at
		FROM inapp_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2;
    `

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}
	defer rows.Close()

	out := make([]model.InAppNotification, 0)
	for rows.Next() {
		var n model.InAppNotification
		if err := rows.Scan(
			&n.ID, &n.NotificationID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.CreatedAt, &n.ReadAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan in-app notification: %w", err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inbox: %w", err)
	}

	return out, nil
}

// MarkRead stamps the first read time of a record owned by userID.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error {
	query := `
		UPDATE inapp_notifications
		SET read_at = COALESCE(read_at, $1)
		WHERE id = $2 AND user_id = $3;
    `

	res, err := r.db.ExecContext(ctx, query, at, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark in-app notification read: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return model.ErrNotFound
	}

	return nil
}
