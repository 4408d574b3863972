package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	mocks "github.com/aliskhannn/leave-approvals/internal/mocks/service/notification"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/repository/memory"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newQueue(t *testing.T, limits Limits) (*Service, *memory.NotificationRepository, *clock.Fake) {
	t.Helper()

	repo := memory.NewNotificationRepository()
	clk := clock.NewFake(start)
	return NewService(repo, limits, WithClock(clk.Now)), repo, clk
}

func draft(user, title string, p model.Priority) Draft {
	return Draft{
		RecipientUserID: strPtr(user),
		RequestID:       strPtr("req-1"),
		Type:            model.NotificationEscalation,
		Title:           title,
		Message:         "Leave request req-1 awaits your approval",
		Priority:        p,
	}
}

func TestService_Enqueue_AdmitsNewEntry(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())

	res, err := svc.Enqueue(context.Background(), draft("u1", "Approval overdue", model.PriorityHigh))
	require.NoError(t, err)

	assert.False(t, res.Deduplicated)
	assert.Equal(t, model.NotificationPending, res.Notification.Status)
	assert.Equal(t, start.Add(DefaultTTL), res.Notification.ExpiresAt)
	assert.Equal(t, DeduplicationKey("u1", model.NotificationEscalation, "Approval overdue", "Leave request req-1 awaits your approval"),
		res.Notification.DeduplicationKey)
}

func TestService_Enqueue_DefaultsPriority(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())

	res, err := svc.Enqueue(context.Background(), draft("u1", "t", ""))
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNormal, res.Notification.Priority)
}

func TestService_Enqueue_RejectsDraftWithoutRecipient(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())

	_, err := svc.Enqueue(context.Background(), Draft{Type: model.NotificationDecision, Title: "t"})
	assert.Error(t, err)
}

func TestService_Enqueue_RejectsUnknownPriority(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())

	_, err := svc.Enqueue(context.Background(), draft("u1", "t", "critical"))
	assert.Error(t, err)
}

// Scenario E: a repeat escalation refreshes the pending entry instead of adding one.
func TestService_Enqueue_DeduplicatesPendingEntry(t *testing.T) {
	svc, repo, clk := newQueue(t, DefaultLimits())
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, draft("u1", "Approval overdue", model.PriorityNormal))
	require.NoError(t, err)

	_, err = repo.RecordFailure(ctx, first.Notification.ID, "inbox unavailable", 3, clk.Now())
	require.NoError(t, err)

	clk.Advance(time.Hour)
	second, err := svc.Enqueue(ctx, draft("u1", "Approval overdue", model.PriorityUrgent))
	require.NoError(t, err)

	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.Notification.ID, second.Notification.ID)

	stored, err := repo.Get(ctx, first.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityUrgent, stored.Priority)
	assert.Equal(t, 0, stored.DeliveryAttempts)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestService_Enqueue_RefreshNeverLowersPriority(t *testing.T) {
	svc, repo, _ := newQueue(t, DefaultLimits())
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityUrgent))
	require.NoError(t, err)

	_, err = svc.Enqueue(ctx, draft("u1", "t", model.PriorityLow))
	require.NoError(t, err)

	stored, err := repo.Get(ctx, first.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PriorityUrgent, stored.Priority)
}

func TestService_Enqueue_SentEntryDoesNotDeduplicate(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())
	ctx := context.Background()

	first, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)
	require.NoError(t, svc.MarkSent(ctx, first.Notification.ID))

	second, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)

	assert.False(t, second.Deduplicated)
	assert.NotEqual(t, first.Notification.ID, second.Notification.ID)
}

func TestService_Enqueue_DifferentStaffIsNotDuplicate(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())
	ctx := context.Background()

	a := draft("u1", "t", model.PriorityNormal)
	a.RecipientStaffID = strPtr("staff-1")
	b := draft("u1", "t", model.PriorityNormal)
	b.RecipientStaffID = strPtr("staff-2")

	_, err := svc.Enqueue(ctx, a)
	require.NoError(t, err)

	res, err := svc.Enqueue(ctx, b)
	require.NoError(t, err)
	assert.False(t, res.Deduplicated)
}

func TestService_Enqueue_EvictsOldestWhenFull(t *testing.T) {
	svc, repo, clk := newQueue(t, Limits{Capacity: 3})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := svc.Enqueue(ctx, draft(fmt.Sprintf("u%d", i), "t", model.PriorityUrgent))
		require.NoError(t, err)
		ids = append(ids, res.Notification.ID.String())
		clk.Advance(time.Minute)
	}

	res, err := svc.Enqueue(ctx, draft("u9", "t", model.PriorityLow))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Evicted)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pending)

	expired, err := repo.List(ctx, model.NotificationFilter{Status: model.NotificationExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, ids[0], expired[0].ID.String())
}

func TestService_Enqueue_CapacityNeverExceeded(t *testing.T) {
	svc, repo, clk := newQueue(t, DefaultLimits())
	ctx := context.Background()

	for i := 0; i < DefaultCapacity+25; i++ {
		_, err := svc.Enqueue(ctx, draft(fmt.Sprintf("u%d", i), "t", model.PriorityNormal))
		require.NoError(t, err)
		clk.Advance(time.Second)
	}

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, pending)
}

// Scenario E: one entry past the default capacity expires exactly the oldest pending one.
func TestService_Enqueue_OverflowAtDefaultCapacity(t *testing.T) {
	svc, repo, clk := newQueue(t, DefaultLimits())
	ctx := context.Background()

	var first string
	var last EnqueueResult
	for i := 0; i <= DefaultCapacity; i++ {
		res, err := svc.Enqueue(ctx, draft(fmt.Sprintf("u%d", i), "t", model.PriorityNormal))
		require.NoError(t, err)
		if i == 0 {
			first = res.Notification.ID.String()
		}
		last = res
		clk.Advance(time.Second)
	}

	assert.Equal(t, 1, last.Evicted)
	assert.Equal(t, model.NotificationPending, last.Notification.Status)

	pending, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultCapacity, pending)

	expired, err := repo.List(ctx, model.NotificationFilter{Status: model.NotificationExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, first, expired[0].ID.String())
}

func TestService_NextBatch_OrdersByPriorityThenAge(t *testing.T) {
	svc, _, clk := newQueue(t, Limits{BatchSize: 3})
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, draft("old-normal", "t", model.PriorityNormal))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Enqueue(ctx, draft("urgent", "t", model.PriorityUrgent))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Enqueue(ctx, draft("new-normal", "t", model.PriorityNormal))
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = svc.Enqueue(ctx, draft("low", "t", model.PriorityLow))
	require.NoError(t, err)

	batch, err := svc.NextBatch(ctx)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	assert.Equal(t, "urgent", batch[0].Recipient())
	assert.Equal(t, "old-normal", batch[1].Recipient())
	assert.Equal(t, "new-normal", batch[2].Recipient())
}

func TestService_NextBatch_SkipsExpired(t *testing.T) {
	svc, _, clk := newQueue(t, Limits{TTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)

	batch, err := svc.NextBatch(ctx)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestService_RecordFailure_FailsAtAttemptCap(t *testing.T) {
	svc, _, _ := newQueue(t, DefaultLimits())
	ctx := context.Background()

	res, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)

	for i := 1; i < DefaultMaxAttempts; i++ {
		status, err := svc.RecordFailure(ctx, res.Notification.ID, "boom")
		require.NoError(t, err)
		assert.Equal(t, model.NotificationPending, status)
	}

	status, err := svc.RecordFailure(ctx, res.Notification.ID, "boom")
	require.NoError(t, err)
	assert.Equal(t, model.NotificationFailed, status)

	_, err = svc.RecordFailure(ctx, res.Notification.ID, "boom")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_Sweep_ExpiresAndPurges(t *testing.T) {
	svc, repo, clk := newQueue(t, Limits{TTL: time.Hour})
	ctx := context.Background()

	stale, err := svc.Enqueue(ctx, draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)
	sent, err := svc.Enqueue(ctx, draft("u2", "t", model.PriorityNormal))
	require.NoError(t, err)
	require.NoError(t, svc.MarkSent(ctx, sent.Notification.ID))

	clk.Advance(2 * time.Hour)

	res, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Expired)
	assert.Equal(t, int64(1), res.Purged)

	got, err := repo.Get(ctx, stale.Notification.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationExpired, got.Status)

	_, err = repo.Get(ctx, sent.Notification.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_Enqueue_CountError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	svc := NewService(repoMock, DefaultLimits())

	repoMock.EXPECT().FindPending(gomock.Any(), gomock.Any(), gomock.Nil()).Return(model.QueuedNotification{}, model.ErrNotFound)
	repoMock.EXPECT().CountPending(gomock.Any()).Return(0, errors.New("db down"))

	_, err := svc.Enqueue(context.Background(), draft("u1", "t", model.PriorityNormal))
	assert.ErrorContains(t, err, "count pending notifications")
}

func TestService_Enqueue_InsertRaceFallsBackToRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	svc := NewService(repoMock, DefaultLimits(), WithClock(func() time.Time { return start }))

	existing := model.QueuedNotification{Priority: model.PriorityLow, Status: model.NotificationPending}

	gomock.InOrder(
		repoMock.EXPECT().FindPending(gomock.Any(), gomock.Any(), gomock.Nil()).Return(model.QueuedNotification{}, model.ErrNotFound),
		repoMock.EXPECT().CountPending(gomock.Any()).Return(0, nil),
		repoMock.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(model.ErrDuplicate),
		repoMock.EXPECT().FindPending(gomock.Any(), gomock.Any(), gomock.Nil()).Return(existing, nil),
		repoMock.EXPECT().Refresh(gomock.Any(), existing.ID, model.PriorityNormal, start).Return(nil),
	)

	res, err := svc.Enqueue(context.Background(), draft("u1", "t", model.PriorityNormal))
	require.NoError(t, err)
	assert.True(t, res.Deduplicated)
}
