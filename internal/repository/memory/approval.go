package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// ApprovalRepository keeps approval chains in memory.
// Every mutation happens under one lock, which makes DecideLevel a compare-and-swap
// that also commits the overall status of a final decision.
type ApprovalRepository struct {
	mu        sync.RWMutex
	approvals map[string]*model.LeaveApproval
}

func NewApprovalRepository() *ApprovalRepository {
	return &ApprovalRepository{approvals: make(map[string]*model.LeaveApproval)}
}

func (r *ApprovalRepository) Create(_ context.Context, a *model.LeaveApproval) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.approvals[a.RequestID]; ok {
		return model.ErrDuplicate
	}

	r.approvals[a.RequestID] = a.Clone()

	return nil
}

func (r *ApprovalRepository) Get(_ context.Context, requestID string) (*model.LeaveApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.approvals[requestID]
	if !ok {
		return nil, model.ErrNotFound
	}

	return a.Clone(), nil
}

func (r *ApprovalRepository) ListPending(_ context.Context) ([]*model.LeaveApproval, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.LeaveApproval, 0)
	for _, a := range r.approvals {
		if a.Status == model.ApprovalPending && a.DerivedStatus() == model.ApprovalPending {
			out = append(out, a.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (r *ApprovalRepository) DecideLevel(
	_ context.Context, requestID string, levelNumber int, expected model.LevelStatus, d model.LevelDecision,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.approvals[requestID]
	if !ok {
		return model.ErrNotFound
	}

	l, ok := a.Level(levelNumber)
	if !ok {
		return model.ErrNotFound
	}

	if a.Status != model.ApprovalPending || l.Status != expected {
		return model.ErrAlreadyDecided
	}

	actedBy := d.ActedBy
	actedAt := d.ActedAt

	l.Status = d.Status
	l.ActedBy = &actedBy
	l.ActedAt = &actedAt
	l.Comments = d.Comments
	a.UpdatedAt = d.ActedAt

	if d.Overall != "" && d.Overall != model.ApprovalPending {
		a.Status = d.Overall
	}

	return nil
}

func (r *ApprovalRepository) ActivateLevel(
	_ context.Context, requestID string, levelNumber int, at time.Time, delegatedTo *string,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.approvals[requestID]
	if !ok {
		return model.ErrNotFound
	}

	l, ok := a.Level(levelNumber)
	if !ok {
		return model.ErrNotFound
	}

	l.ActivatedAt = &at
	l.DelegatedTo = delegatedTo
	a.UpdatedAt = at

	return nil
}

func (r *ApprovalRepository) UpdateStatus(
	_ context.Context, requestID string, from, to model.ApprovalStatus, at time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.approvals[requestID]
	if !ok {
		return model.ErrNotFound
	}

	if a.Status != from {
		return model.ErrAlreadyDecided
	}

	// levels decided to a final outcome win over a concurrent status change
	if from == model.ApprovalPending && a.DerivedStatus() != model.ApprovalPending {
		return model.ErrAlreadyDecided
	}

	a.Status = to
	a.UpdatedAt = at

	return nil
}

func (r *ApprovalRepository) MarkEscalated(
	_ context.Context, requestID string, levelNumber int, tier int, at time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.approvals[requestID]
	if !ok {
		return model.ErrNotFound
	}

	l, ok := a.Level(levelNumber)
	if !ok {
		return model.ErrNotFound
	}

	if tier > l.EscalationTier {
		l.EscalationTier = tier
	}
	l.LastEscalatedAt = &at

	return nil
}
