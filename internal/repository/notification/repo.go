package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/repository"
)

// Repository provides methods to interact with the notification_queue table.
// Statements that write, and reads that admission or dispatch decide on, run on
// the master; only administrative listings may be served by a replica.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification queue repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const columns = `id, recipient_user_id, recipient_staff_id, request_id, type, title, message, link,
		       priority, deduplication_key, status, delivery_attempts, last_error,
		       created_at, updated_at, sent_at, expires_at`

// FindPending returns the pending entry with the given deduplication key.
// A non-nil staffID must match the entry's staff recipient.
func (r *Repository) FindPending(ctx context.Context, key string, staffID *string) (model.QueuedNotification, error) {
	query := `
		SELECT ` + columns + `
		FROM notification_queue
		WHERE deduplication_key = $1
		  AND status = 'pending'
		  AND ($2::text IS NULL OR recipient_staff_id = $2)
		ORDER BY seq
		LIMIT 1;
    `

	n, err := scanNotification(r.db.Master.QueryRowContext(ctx, query, key, staffID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.QueuedNotification{}, model.ErrNotFound
		}
		return model.QueuedNotification{}, fmt.Errorf("failed to find pending notification: %w", err)
	}

	return n, nil
}

// Refresh sets the priority of a pending entry and resets its attempts.
func (r *Repository) Refresh(ctx context.Context, id uuid.UUID, priority model.Priority, at time.Time) error {
	query := `
		UPDATE notification_queue
		SET priority = $1, priority_rank = $2, delivery_attempts = 0, updated_at = $3
		WHERE id = $4 AND status = 'pending';
    `

	return r.execOne(ctx, "refresh notification", query, priority, priority.Rank(), at, id)
}

func (r *Repository) CountPending(ctx context.Context) (int, error) {
	query := `
		SELECT count(*)
		FROM notification_queue
		WHERE status = 'pending';
    `

	var n int
	if err := r.db.Master.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending notifications: %w", err)
	}

	return n, nil
}

// ExpireOldestPending expires up to n pending entries in admission order.
func (r *Repository) ExpireOldestPending(ctx context.Context, n int, at time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE notification_queue
		SET status = 'expired', updated_at = $1
		WHERE id IN (
		    SELECT id
		    FROM notification_queue
		    WHERE status = 'pending'
		    ORDER BY created_at, seq
		    LIMIT $2
		    FOR UPDATE SKIP LOCKED
		)
		RETURNING id;
    `

	rows, err := r.db.Master.QueryContext(ctx, query, at, n)
	if err != nil {
		return nil, fmt.Errorf("failed to expire oldest notifications: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Insert admits a new entry. A pending entry with the same deduplication key
// and staff recipient makes it fail with model.ErrDuplicate.
func (r *Repository) Insert(ctx context.Context, n model.QueuedNotification) error {
	query := `
		INSERT INTO notification_queue (
		    id, recipient_user_id, recipient_staff_id, request_id, type, title, message, link,
		    priority, priority_rank, deduplication_key, status, delivery_attempts,
		    created_at, updated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
    `

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.RecipientUserID, n.RecipientStaffID, n.RequestID, n.Type, n.Title, n.Message, n.Link,
		n.Priority, n.Priority.Rank(), n.DeduplicationKey, n.Status, n.DeliveryAttempts,
		n.CreatedAt, n.UpdatedAt, n.ExpiresAt,
	)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// NextBatch returns deliverable entries, highest priority first, then oldest.
func (r *Repository) NextBatch(ctx context.Context, now time.Time, limit int) ([]model.QueuedNotification, error) {
	query := `
		SELECT ` + columns + `
		FROM notification_queue
		WHERE status = 'pending' AND expires_at > $1
		ORDER BY priority_rank DESC, created_at, seq
		LIMIT $2;
    `

	return r.list(ctx, r.db.Master, "next notification batch", query, now, limit)
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE notification_queue
		SET status = 'sent', sent_at = $1, updated_at = $1, last_error = NULL
		WHERE id = $2 AND status = 'pending';
    `

	return r.execOne(ctx, "mark notification sent", query, at, id)
}

// RecordFailure counts a failed attempt and fails the entry once maxAttempts is reached.
func (r *Repository) RecordFailure(
	ctx context.Context, id uuid.UUID, reason string, maxAttempts int, at time.Time,
) (model.NotificationStatus, error) {
	query := `
		UPDATE notification_queue
		SET delivery_attempts = delivery_attempts + 1,
		    last_error = $1,
		    updated_at = $2,
		    status = CASE WHEN delivery_attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $4 AND status = 'pending'
		RETURNING status;
    `

	var status model.NotificationStatus
	err := r.db.Master.QueryRowContext(ctx, query, reason, at, maxAttempts, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to record notification failure: %w", err)
	}

	return status, nil
}

func (r *Repository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE notification_queue
		SET status = 'expired', updated_at = $1
		WHERE status = 'pending' AND expires_at <= $1;
    `

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale notifications: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

func (r *Repository) PurgeTerminal(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM notification_queue
		WHERE status IN ('sent', 'failed', 'expired') AND expires_at <= $1;
    `

	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

// List returns entries newest first, optionally filtered by status and request.
// A zero limit returns every match.
func (r *Repository) List(ctx context.Context, filter model.NotificationFilter) ([]model.QueuedNotification, error) {
	query := `
		SELECT ` + columns + `
		FROM notification_queue
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR request_id = $2)
		ORDER BY seq DESC
		LIMIT NULLIF($3, 0);
    `

	return r.list(ctx, r.db, "list notifications", query, string(filter.Status), filter.RequestID, filter.Limit)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (r *Repository) list(
	ctx context.Context, q querier, op, query string, args ...interface{},
) ([]model.QueuedNotification, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.QueuedNotification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return out, nil
}

func (r *Repository) execOne(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return model.ErrNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(s scanner) (model.QueuedNotification, error) {
	var (
		n                                           model.QueuedNotification
		userID, staffID, requestID, link, lastError sql.NullString
		sentAt                                      sql.NullTime
	)

	err := s.Scan(
		&n.ID, &userID, &staffID, &requestID, &n.Type, &n.Title, &n.Message, &link,
		&n.Priority, &n.DeduplicationKey, &n.Status, &n.DeliveryAttempts, &lastError,
		&n.CreatedAt, &n.UpdatedAt, &sentAt, &n.ExpiresAt,
	)
	if err != nil {
		return n, err
	}

	n.RecipientUserID = nullString(userID)
	n.RecipientStaffID = nullString(staffID)
	n.RequestID = nullString(requestID)
	n.Link = nullString(link)
	n.LastError = nullString(lastError)
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}

	return n, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
