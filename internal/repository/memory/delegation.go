package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// DelegationRepository keeps delegations in memory.
type DelegationRepository struct {
	mu          sync.RWMutex
	delegations map[uuid.UUID]model.Delegation
}

func NewDelegationRepository() *DelegationRepository {
	return &DelegationRepository{delegations: make(map[uuid.UUID]model.Delegation)}
}

func (r *DelegationRepository) Create(_ context.Context, d model.Delegation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.delegations[d.ID]; ok {
		return model.ErrDuplicate
	}

	r.delegations[d.ID] = d

	return nil
}

func (r *DelegationRepository) Get(_ context.Context, id uuid.UUID) (model.Delegation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.delegations[id]
	if !ok {
		return model.Delegation{}, model.ErrNotFound
	}

	return d, nil
}

func (r *DelegationRepository) ListByDelegator(_ context.Context, delegatorID string) ([]model.Delegation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Delegation, 0)
	for _, d := range r.delegations {
		if d.DelegatorID == delegatorID {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.Before(out[j].ValidFrom) })

	return out, nil
}

func (r *DelegationRepository) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.delegations[id]
	if !ok || d.RevokedAt != nil {
		return model.ErrNotFound
	}

	d.RevokedAt = &at
	r.delegations[id] = d

	return nil
}
