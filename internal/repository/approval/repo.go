package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/repository"
)

// Repository provides methods to interact with leave_approvals and approval_levels tables.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new approval repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const levelColumns = `request_id, level_number, approver_role, status, acted_by, acted_at, comments,
		       activated_at, delegated_to, escalation_tier, last_escalated_at`

// Create inserts the approval and all of its levels in one transaction.
func (r *Repository) Create(ctx context.Context, a *model.LeaveApproval) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO leave_approvals (
		    request_id, requester_id, staff_id, leave_type, start_date, end_date,
		    days, officer_taking_over, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
    `

	_, err = tx.ExecContext(ctx, query,
		a.RequestID, a.RequesterID, a.Leave.StaffID, a.Leave.LeaveType, a.Leave.StartDate, a.Leave.EndDate,
		a.Leave.Days, a.Leave.OfficerTakingOver, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("failed to create approval: %w", err)
	}

	levelQuery := `
		INSERT INTO approval_levels (
		    request_id, level_number, approver_role, status, activated_at, delegated_to
		) VALUES ($1, $2, $3, $4, $5, $6);
    `

	for _, l := range a.Levels {
		_, err = tx.ExecContext(ctx, levelQuery,
			a.RequestID, l.LevelNumber, l.ApproverRole, l.Status, l.ActivatedAt, l.DelegatedTo,
		)
		if err != nil {
			return fmt.Errorf("failed to create approval level %d: %w", l.LevelNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}

	return nil
}

// Get returns the approval with its levels ordered by level number.
func (r *Repository) Get(ctx context.Context, requestID string) (*model.LeaveApproval, error) {
	query := `
		SELECT request_id, requester_id, staff_id, leave_type, start_date, end_date,
		       days, officer_taking_over, status, created_at, updated_at
		FROM leave_approvals
		WHERE request_id = $1;
    `

	a, err := scanApproval(r.db.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}

	levelsQuery := `
		SELECT ` + levelColumns + `
		FROM approval_levels
		WHERE request_id = $1
		ORDER BY level_number;
    `

	rows, err := r.db.QueryContext(ctx, levelsQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval levels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		_, l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval level: %w", err)
		}
		a.Levels = append(a.Levels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approval levels: %w", err)
	}

	return a, nil
}

// ListPending returns approvals still awaiting a decision, oldest first.
func (r *Repository) ListPending(ctx context.Context) ([]*model.LeaveApproval, error) {
	query := `
		SELECT request_id, requester_id, staff_id, leave_type, start_date, end_date,
		       days, officer_taking_over, status, created_at, updated_at
		FROM leave_approvals
		WHERE status = 'pending'
		ORDER BY created_at;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	defer rows.Close()

	var (
		approvals []*model.LeaveApproval
		ids       []string
	)
	byID := make(map[string]*model.LeaveApproval)

	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval: %w", err)
		}
		approvals = append(approvals, a)
		ids = append(ids, a.RequestID)
		byID[a.RequestID] = a
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approvals: %w", err)
	}

	if len(approvals) == 0 {
		return approvals, nil
	}

	levelsQuery := `
		SELECT ` + levelColumns + `
		FROM approval_levels
		WHERE request_id = ANY($1)
		ORDER BY request_id, level_number;
    `

	levelRows, err := r.db.QueryContext(ctx, levelsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list approval levels: %w", err)
	}
	defer levelRows.Close()

	for levelRows.Next() {
		requestID, l, err := scanLevel(levelRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval level: %w", err)
		}
		if a, ok := byID[requestID]; ok {
			a.Levels = append(a.Levels, l)
		}
	}

	if err := levelRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approval levels: %w", err)
	}

	out := approvals[:0]
	for _, a := range approvals {
		if a.DerivedStatus() == model.ApprovalPending {
			out = append(out, a)
		}
	}

	return out, nil
}

// DecideLevel records a decision only while the level still has the expected
// status and the approval is pending. Otherwise it returns model.ErrAlreadyDecided.
// The approval row is locked for the whole transaction and its overall status is
// written together with the level, so a concurrent cancel cannot interleave.
func (r *Repository) DecideLevel(
	ctx context.Context, requestID string, levelNumber int, expected model.LevelStatus, d model.LevelDecision,
) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lockQuery := `
		SELECT status
		FROM leave_approvals
		WHERE request_id = $1
		FOR UPDATE;
    `

	var status model.ApprovalStatus
	if err := tx.QueryRowContext(ctx, lockQuery, requestID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to lock approval: %w", err)
	}

	if status != model.ApprovalPending {
		return model.ErrAlreadyDecided
	}

	levelQuery := `
		UPDATE approval_levels
		SET status = $1, acted_by = $2, acted_at = $3, comments = $4
		WHERE request_id = $5
		  AND level_number = $6
		  AND status = $7;
    `

	res, err := tx.ExecContext(ctx, levelQuery,
		d.Status, d.ActedBy, d.ActedAt, d.Comments, requestID, levelNumber, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to decide approval level: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return model.ErrAlreadyDecided
	}

	overall := d.Overall
	if overall == "" {
		overall = model.ApprovalPending
	}

	statusQuery := `
		UPDATE leave_approvals
		SET status = $1, updated_at = $2
		WHERE request_id = $3;
    `

	if _, err := tx.ExecContext(ctx, statusQuery, overall, d.ActedAt, requestID); err != nil {
		return fmt.Errorf("failed to update approval status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	return nil
}

// ActivateLevel stamps the time a level became active and who it was routed to.
func (r *Repository) ActivateLevel(
	ctx context.Context, requestID string, levelNumber int, at time.Time, delegatedTo *string,
) error {
	query := `
		UPDATE approval_levels
		SET activated_at = $1, delegated_to = $2
		WHERE request_id = $3 AND level_number = $4;
    `

	res, err := r.db.ExecContext(ctx, query, at, delegatedTo, requestID, levelNumber)
	if err != nil {
		return fmt.Errorf("failed to activate approval level: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return model.ErrNotFound
	}

	return nil
}

// UpdateStatus moves the approval from one overall status to another. Leaving
// pending is refused once the levels already carry a final outcome.
func (r *Repository) UpdateStatus(
	ctx context.Context, requestID string, from, to model.ApprovalStatus, at time.Time,
) error {
	query := `
		UPDATE leave_approvals a
		SET status = $1, updated_at = $2
		WHERE a.request_id = $3
		  AND a.status = $4
		  AND ($4 <> 'pending' OR (
		      NOT EXISTS (
		          SELECT 1 FROM approval_levels l
		          WHERE l.request_id = a.request_id AND l.status = 'rejected'
		      )
		      AND EXISTS (
		          SELECT 1 FROM approval_levels l
		          WHERE l.request_id = a.request_id AND l.status <> 'approved'
		      )
		  ));
    `

	res, err := r.db.ExecContext(ctx, query, to, at, requestID, from)
	if err != nil {
		return fmt.Errorf("failed to update approval status: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return model.ErrAlreadyDecided
	}

	return nil
}

// MarkEscalated raises the escalation tier of a level and stamps the notice time.
func (r *Repository) MarkEscalated(
	ctx context.Context, requestID string, levelNumber int, tier int, at time.Time,
) error {
	query := `
		UPDATE approval_levels
		SET escalation_tier = GREATEST(escalation_tier, $1), last_escalated_at = $2
		WHERE request_id = $3 AND level_number = $4;
    `

	res, err := r.db.ExecContext(ctx, query, tier, at, requestID, levelNumber)
	if err != nil {
		return fmt.Errorf("failed to mark approval level escalated: %w", err)
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

func scanApproval(s scanner) (*model.LeaveApproval, error) {
	var (
		a          model.LeaveApproval
		start, end sql.NullTime
	)

	err := s.Scan(
		&a.RequestID, &a.RequesterID, &a.Leave.StaffID, &a.Leave.LeaveType, &start, &end,
		&a.Leave.Days, &a.Leave.OfficerTakingOver, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Leave.StartDate = start.Time
	a.Leave.EndDate = end.Time

	return &a, nil
}

func scanLevel(s scanner) (string, model.ApprovalLevel, error) {
	var (
		requestID                             string
		l                                     model.ApprovalLevel
		actedBy, comments, delegatedTo        sql.NullString
		actedAt, activatedAt, lastEscalatedAt sql.NullTime
	)

	err := s.Scan(
		&requestID, &l.LevelNumber, &l.ApproverRole, &l.Status, &actedBy, &actedAt, &comments,
		&activatedAt, &delegatedTo, &l.EscalationTier, &lastEscalatedAt,
	)
	if err != nil {
		return "", l, err
	}

	l.ActedBy = nullString(actedBy)
	l.Comments = nullString(comments)
	l.DelegatedTo = nullString(delegatedTo)
	l.ActedAt = nullTime(actedAt)
	l.ActivatedAt = nullTime(activatedAt)
	l.LastEscalatedAt = nullTime(lastEscalatedAt)

	return requestID, l, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
