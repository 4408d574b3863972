package delegation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/repository"
)

// Repository provides methods to interact with the delegations table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new delegation repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const columns = `id, delegator_id, delegate_id, valid_from, valid_to, scope_roles, scope_requests, created_at, revoked_at`

func (r *Repository) Create(ctx context.Context, d model.Delegation) error {
	query := `
		INSERT INTO delegations (
		    id, delegator_id, delegate_id, valid_from, valid_to, scope_roles, scope_requests, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.DelegatorID, d.DelegateID, d.ValidFrom, d.ValidTo,
		pq.Array(nonNil(d.Scope.Roles)), pq.Array(nonNil(d.Scope.RequestIDs)), d.CreatedAt,
	)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return model.ErrDuplicate
		}
		return fmt.Errorf("failed to create delegation: %w", err)
	}

	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (model.Delegation, error) {
	query := `
		SELECT ` + columns + `
		FROM delegations
		WHERE id = $1;
    `

	d, err := scanDelegation(r.db.Master.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Delegation{}, model.ErrNotFound
		}
		return model.Delegation{}, fmt.Errorf("failed to get delegation: %w", err)
	}

	return d, nil
}

// ListByDelegator returns every delegation of the delegator, revoked ones included.
// It reads the master since overlap checks and approver resolution depend on it.
func (r *Repository) ListByDelegator(ctx context.Context, delegatorID string) ([]model.Delegation, error) {
	query := `
		SELECT ` + columns + `
		FROM delegations
		WHERE delegator_id = $1
		ORDER BY valid_from;
    `

	rows, err := r.db.Master.QueryContext(ctx, query, delegatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list delegations: %w", err)
	}
	defer rows.Close()

	out := make([]model.Delegation, 0)
	for rows.Next() {
		d, err := scanDelegation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delegation: %w", err)
		}
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate delegations: %w", err)
	}

	return out, nil
}

// Revoke ends a delegation at the given time. Revoking twice returns model.ErrNotFound.
func (r *Repository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE delegations
		SET revoked_at = $1
		WHERE id = $2 AND revoked_at IS NULL;
    `

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to revoke delegation: %w", err)
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

func scanDelegation(s scanner) (model.Delegation, error) {
	var (
		d       model.Delegation
		revoked sql.NullTime
	)

	err := s.Scan(
		&d.ID, &d.DelegatorID, &d.DelegateID, &d.ValidFrom, &d.ValidTo,
		pq.Array(&d.Scope.Roles), pq.Array(&d.Scope.RequestIDs), &d.CreatedAt, &revoked,
	)
	if err != nil {
		return d, err
	}

	if revoked.Valid {
		t := revoked.Time
		d.RevokedAt = &t
	}
	if len(d.Scope.Roles) == 0 {
		d.Scope.Roles = nil
	}
	if len(d.Scope.RequestIDs) == 0 {
		d.Scope.RequestIDs = nil
	}

	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
