package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// InboxRepository stores in-app notifications in memory.
// Inserting the same queued notification twice keeps the first record.
type InboxRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]model.InAppNotification
}

func NewInboxRepository() *InboxRepository {
	return &InboxRepository{items: make(map[uuid.UUID]model.InAppNotification)}
}

func (r *InboxRepository) InsertInApp(_ context.Context, n model.InAppNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.NotificationID == n.NotificationID {
			return nil
		}
	}

	r.items[n.ID] = n

	return nil
}

func (r *InboxRepository) ListInbox(_ context.Context, userID string, limit int) ([]model.InAppNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.InAppNotification, 0)
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *InboxRepository) MarkRead(_ context.Context, id uuid.UUID, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.UserID != userID {
		return model.ErrNotFound
	}

	if n.ReadAt == nil {
		n.ReadAt = &at
		r.items[id] = n
	}

	return nil
}
