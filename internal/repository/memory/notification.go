package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

type queuedRecord struct {
	n   model.QueuedNotification
	seq uint64
}

// NotificationRepository keeps the notification queue in memory.
type NotificationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*queuedRecord
	seq     uint64
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{records: make(map[uuid.UUID]*queuedRecord)}
}

func sameStaff(a, b *string) bool {
	if b == nil {
		return true
	}
	return a != nil && *a == *b
}

func (r *NotificationRepository) FindPending(_ context.Context, key string, staffID *string) (model.QueuedNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending &&
			rec.n.DeduplicationKey == key &&
			sameStaff(rec.n.RecipientStaffID, staffID) {
			return rec.n, nil
		}
	}

	return model.QueuedNotification{}, model.ErrNotFound
}

func (r *NotificationRepository) Refresh(_ context.Context, id uuid.UUID, priority model.Priority, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.n.Status != model.NotificationPending {
		return model.ErrNotFound
	}

	rec.n.Priority = priority
	rec.n.DeliveryAttempts = 0
	rec.n.UpdatedAt = at

	return nil
}

func (r *NotificationRepository) CountPending(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending {
			count++
		}
	}

	return count, nil
}

// ExpireOldestPending expires up to n pending entries in admission order.
func (r *NotificationRepository) ExpireOldestPending(_ context.Context, n int, at time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make([]*queuedRecord, 0, len(r.records))
	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending {
			pending = append(pending, rec)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].n.CreatedAt.Equal(pending[j].n.CreatedAt) {
			return pending[i].n.CreatedAt.Before(pending[j].n.CreatedAt)
		}
		return pending[i].seq < pending[j].seq
	})

	if n > len(pending) {
		n = len(pending)
	}

	ids := make([]uuid.UUID, 0, n)
	for _, rec := range pending[:n] {
		rec.n.Status = model.NotificationExpired
		rec.n.UpdatedAt = at
		ids = append(ids, rec.n.ID)
	}

	return ids, nil
}

func (r *NotificationRepository) Insert(_ context.Context, n model.QueuedNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[n.ID]; ok {
		return model.ErrDuplicate
	}

	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending &&
			rec.n.DeduplicationKey == n.DeduplicationKey &&
			sameStaff(rec.n.RecipientStaffID, n.RecipientStaffID) {
			return model.ErrDuplicate
		}
	}

	r.seq++
	r.records[n.ID] = &queuedRecord{n: n, seq: r.seq}

	return nil
}

func (r *NotificationRepository) NextBatch(_ context.Context, now time.Time, limit int) ([]model.QueuedNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ready := make([]*queuedRecord, 0)
	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending && rec.n.ExpiresAt.After(now) {
			ready = append(ready, rec)
		}
	}

	sort.Slice(ready, func(i, j int) bool {
		a, b := ready[i], ready[j]
		if a.n.Priority.Rank() != b.n.Priority.Rank() {
			return a.n.Priority.Rank() > b.n.Priority.Rank()
		}
		if !a.n.CreatedAt.Equal(b.n.CreatedAt) {
			return a.n.CreatedAt.Before(b.n.CreatedAt)
		}
		return a.seq < b.seq
	})

	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	out := make([]model.QueuedNotification, 0, len(ready))
	for _, rec := range ready {
		out = append(out, rec.n)
	}

	return out, nil
}

func (r *NotificationRepository) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.n.Status != model.NotificationPending {
		return model.ErrNotFound
	}

	rec.n.Status = model.NotificationSent
	rec.n.SentAt = &at
	rec.n.UpdatedAt = at
	rec.n.LastError = nil

	return nil
}

func (r *NotificationRepository) RecordFailure(
	_ context.Context, id uuid.UUID, reason string, maxAttempts int, at time.Time,
) (model.NotificationStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.n.Status != model.NotificationPending {
		return "", model.ErrNotFound
	}

	rec.n.DeliveryAttempts++
	rec.n.LastError = &reason
	rec.n.UpdatedAt = at
	if rec.n.DeliveryAttempts >= maxAttempts {
		rec.n.Status = model.NotificationFailed
	}

	return rec.n.Status, nil
}

func (r *NotificationRepository) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, rec := range r.records {
		if rec.n.Status == model.NotificationPending && !rec.n.ExpiresAt.After(now) {
			rec.n.Status = model.NotificationExpired
			rec.n.UpdatedAt = now
			n++
		}
	}

	return n, nil
}

func (r *NotificationRepository) PurgeTerminal(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, rec := range r.records {
		if rec.n.Status.Terminal() && !rec.n.ExpiresAt.After(now) {
			delete(r.records, id)
			n++
		}
	}

	return n, nil
}

func (r *NotificationRepository) List(_ context.Context, filter model.NotificationFilter) ([]model.QueuedNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*queuedRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Status != "" && rec.n.Status != filter.Status {
			continue
		}
		if filter.RequestID != "" && (rec.n.RequestID == nil || *rec.n.RequestID != filter.RequestID) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })

	if filter.Limit > 0 && len(recs) > filter.Limit {
		recs = recs[:filter.Limit]
	}

	out := make([]model.QueuedNotification, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.n)
	}

	return out, nil
}

// Get returns a queued notification by id.
func (r *NotificationRepository) Get(_ context.Context, id uuid.UUID) (model.QueuedNotification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return model.QueuedNotification{}, model.ErrNotFound
	}

	return rec.n, nil
}
