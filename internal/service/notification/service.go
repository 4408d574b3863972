package notification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

const (
	DefaultCapacity    = 500
	DefaultBatchSize   = 50
	DefaultTTL         = 30 * 24 * time.Hour
	DefaultMaxAttempts = 3
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

type notificationRepository interface {
	FindPending(ctx context.Context, key string, staffID *string) (model.QueuedNotification, error)
	Refresh(ctx context.Context, id uuid.UUID, priority model.Priority, at time.Time) error
	CountPending(ctx context.Context) (int, error)
	ExpireOldestPending(ctx context.Context, n int, at time.Time) ([]uuid.UUID, error)
	Insert(ctx context.Context, n model.QueuedNotification) error
	NextBatch(ctx context.Context, now time.Time, limit int) ([]model.QueuedNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	RecordFailure(ctx context.Context, id uuid.UUID, reason string, maxAttempts int, at time.Time) (model.NotificationStatus, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	PurgeTerminal(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, filter model.NotificationFilter) ([]model.QueuedNotification, error)
}

type queueMetrics interface {
	Enqueued(deduplicated bool)
	Evicted(n int)
	Swept(expired, purged int64)
}

// Draft is a notification before it is admitted to the queue.
type Draft struct {
	RecipientUserID  *string
	RecipientStaffID *string
	RequestID        *string
	Type             model.NotificationType
	Title            string
	Message          string
	Link             *string
	Priority         model.Priority
}

// EnqueueResult reports what Enqueue did with a draft.
type EnqueueResult struct {
	Notification model.QueuedNotification
	Deduplicated bool
	Evicted      int
}

// SweepResult counts entries touched by Sweep.
type SweepResult struct {
	Expired int64
	Purged  int64
}

// Limits bounds the queue.
type Limits struct {
	Capacity    int
	BatchSize   int
	TTL         time.Duration
	MaxAttempts int
}

// DefaultLimits returns the stock queue bounds.
func DefaultLimits() Limits {
	return Limits{
		Capacity:    DefaultCapacity,
		BatchSize:   DefaultBatchSize,
		TTL:         DefaultTTL,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches queue collectors.
func WithMetrics(m queueMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service is the bounded, deduplicating notification queue.
type Service struct {
	repo    notificationRepository
	limits  Limits
	now     func() time.Time
	metrics queueMetrics

	// admission (dedup check, eviction, insert) must not interleave
	mu sync.Mutex
}

func NewService(repo notificationRepository, limits Limits, opts ...Option) *Service {
	def := DefaultLimits()
	if limits.Capacity <= 0 {
		limits.Capacity = def.Capacity
	}
	if limits.BatchSize <= 0 {
		limits.BatchSize = def.BatchSize
	}
	if limits.TTL <= 0 {
		limits.TTL = def.TTL
	}
	if limits.MaxAttempts <= 0 {
		limits.MaxAttempts = def.MaxAttempts
	}

	s := &Service{repo: repo, limits: limits, now: clock.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MaxAttempts returns the primary-channel failure cap.
func (s *Service) MaxAttempts() int {
	return s.limits.MaxAttempts
}

// DeduplicationKey derives the key two drafts collide on.
func DeduplicationKey(recipientUserID string, typ model.NotificationType, title, message string) string {
	sum := sha256.Sum256([]byte(strings.Join(
		[]string{recipientUserID, string(typ), title, message}, "\x1f",
	)))
	return hex.EncodeToString(sum[:])
}

// Enqueue admits a draft, collapsing it into an existing pending entry with the same
// deduplication key. When the queue is full the oldest pending entries are expired first.
func (s *Service) Enqueue(ctx context.Context, d Draft) (EnqueueResult, error) {
	if d.RecipientUserID == nil && d.RecipientStaffID == nil {
		return EnqueueResult{}, fmt.Errorf("enqueue notification: recipient is required")
	}
	if d.Priority == "" {
		d.Priority = model.PriorityNormal
	}
	if !d.Priority.Valid() {
		return EnqueueResult{}, fmt.Errorf("enqueue notification: unknown priority %q", d.Priority)
	}

	recipient := ""
	if d.RecipientUserID != nil {
		recipient = *d.RecipientUserID
	}
	key := DeduplicationKey(recipient, d.Type, d.Title, d.Message)

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.refreshExisting(ctx, key, d)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return EnqueueResult{}, err
	}

	now := s.now()

	count, err := s.repo.CountPending(ctx)
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("count pending notifications: %w", err)
	}

	var evicted int
	if over := count - s.limits.Capacity + 1; over > 0 {
		ids, err := s.repo.ExpireOldestPending(ctx, over, now)
		if err != nil {
			return EnqueueResult{}, fmt.Errorf("evict pending notifications: %w", err)
		}

		evicted = len(ids)
		zlog.Logger.Warn().Int("evicted", evicted).Int("capacity", s.limits.Capacity).Msg("notification queue full, expired oldest entries")
		if s.metrics != nil {
			s.metrics.Evicted(evicted)
		}
	}

	n := model.QueuedNotification{
		ID:               uuid.New(),
		RecipientUserID:  d.RecipientUserID,
		RecipientStaffID: d.RecipientStaffID,
		RequestID:        d.RequestID,
		Type:             d.Type,
		Title:            d.Title,
		Message:          d.Message,
		Link:             d.Link,
		Priority:         d.Priority,
		DeduplicationKey: key,
		Status:           model.NotificationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(s.limits.TTL),
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			// another process admitted the same key between our check and insert
			if res, rerr := s.refreshExisting(ctx, key, d); rerr == nil {
				return res, nil
			}
		}
		return EnqueueResult{}, fmt.Errorf("insert notification: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Enqueued(false)
	}

	return EnqueueResult{Notification: n, Evicted: evicted}, nil
}

func (s *Service) refreshExisting(ctx context.Context, key string, d Draft) (EnqueueResult, error) {
	existing, err := s.repo.FindPending(ctx, key, d.RecipientStaffID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return EnqueueResult{}, err
		}
		return EnqueueResult{}, fmt.Errorf("find pending notification: %w", err)
	}

	priority := existing.Priority
	if d.Priority.Rank() > priority.Rank() {
		priority = d.Priority
	}

	now := s.now()
	if err := s.repo.Refresh(ctx, existing.ID, priority, now); err != nil {
		return EnqueueResult{}, fmt.Errorf("refresh notification: %w", err)
	}

	existing.Priority = priority
	existing.DeliveryAttempts = 0
	existing.UpdatedAt = now

	if s.metrics != nil {
		s.metrics.Enqueued(true)
	}

	return EnqueueResult{Notification: existing, Deduplicated: true}, nil
}

// NextBatch returns the next deliverable entries, highest priority first, oldest first within a priority.
func (s *Service) NextBatch(ctx context.Context) ([]model.QueuedNotification, error) {
	batch, err := s.repo.NextBatch(ctx, s.now(), s.limits.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("next notification batch: %w", err)
	}

	return batch, nil
}

func (s *Service) MarkSent(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkSent(ctx, id, s.now()); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}

	return nil
}

// RecordFailure counts a failed primary delivery and returns the resulting status,
// failed once the attempt cap is reached.
func (s *Service) RecordFailure(ctx context.Context, id uuid.UUID, reason string) (model.NotificationStatus, error) {
	status, err := s.repo.RecordFailure(ctx, id, reason, s.limits.MaxAttempts, s.now())
	if err != nil {
		return "", fmt.Errorf("record notification failure: %w", err)
	}

	return status, nil
}

// Sweep expires pending entries past their expiry and purges terminal ones.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()

	expired, err := s.repo.ExpireStale(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("expire stale notifications: %w", err)
	}

	purged, err := s.repo.PurgeTerminal(ctx, now)
	if err != nil {
		return SweepResult{Expired: expired}, fmt.Errorf("purge terminal notifications: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Swept(expired, purged)
	}

	return SweepResult{Expired: expired, Purged: purged}, nil
}

func (s *Service) List(ctx context.Context, filter model.NotificationFilter) ([]model.QueuedNotification, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return list, nil
}
