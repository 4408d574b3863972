package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/leave-approvals/internal/audit"
	"github.com/aliskhannn/leave-approvals/internal/channel"
	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/repository/memory"
	"github.com/aliskhannn/leave-approvals/internal/service/notification"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeChannel struct {
	name  string
	err   error
	block bool
	delay time.Duration

	mu          sync.Mutex
	calls       int
	inflight    int
	maxInflight int
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Deliver(ctx context.Context, _ string, _ channel.Content) error {
	c.mu.Lock()
	c.calls++
	c.inflight++
	if c.inflight > c.maxInflight {
		c.maxInflight = c.inflight
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
	}()

	if c.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	return c.err
}

func (c *fakeChannel) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type dispatchFixture struct {
	queue  *notification.Service
	repo   *memory.NotificationRepository
	audits *memory.AuditRepository
	clk    *clock.Fake
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	f := &dispatchFixture{
		repo:   memory.NewNotificationRepository(),
		audits: memory.NewAuditRepository(),
		clk:    clock.NewFake(start),
	}
	f.queue = notification.NewService(f.repo, notification.DefaultLimits(), notification.WithClock(f.clk.Now))

	return f
}

func (f *dispatchFixture) enqueue(t *testing.T, user string) model.QueuedNotification {
	t.Helper()

	requestID := "req-1"
	res, err := f.queue.Enqueue(context.Background(), notification.Draft{
		RecipientUserID: &user,
		RequestID:       &requestID,
		Type:            model.NotificationSubmitted,
		Title:           "Leave request awaiting your approval",
		Message:         fmt.Sprintf("Leave request req-1 awaits %s", user),
	})
	require.NoError(t, err)

	return res.Notification
}

func (f *dispatchFixture) dispatcher(cfg DispatcherConfig, primary channel.Channel, secondary ...channel.Channel) *Dispatcher {
	return NewDispatcher(f.queue, audit.NewRecorder(f.audits), nil, cfg, primary, secondary...)
}

func TestDispatcher_RunCycle_MarksSent(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp}
	d := f.dispatcher(DispatcherConfig{Workers: 2}, primary)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Picked)
	assert.Equal(t, 1, report.Sent)

	got, err := f.repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationSent, got.Status)
	require.NotNil(t, got.SentAt)

	report, err = d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Picked)
}

func TestDispatcher_RunCycle_AttemptCap(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp, err: errors.New("inbox unavailable")}
	d := f.dispatcher(DispatcherConfig{Workers: 1}, primary)
	ctx := context.Background()

	for i := 1; i < notification.DefaultMaxAttempts; i++ {
		report, err := d.RunCycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Retrying)
	}

	report, err := d.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	got, err := f.repo.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationFailed, got.Status)
	assert.Equal(t, notification.DefaultMaxAttempts, got.DeliveryAttempts)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "inbox unavailable", *got.LastError)

	report, err = d.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Picked)
	assert.Equal(t, notification.DefaultMaxAttempts, primary.Calls())

	events := f.audits.All()
	require.NotEmpty(t, events)
	assert.Equal(t, model.AuditDeliveryDead, events[len(events)-1].Action)
}

func TestDispatcher_RunCycle_SecondaryFailureDoesNotAffectStatus(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp}
	email := &fakeChannel{name: channel.Email, err: errors.New("smtp down")}
	d := f.dispatcher(DispatcherConfig{Workers: 1}, primary, email)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, report.SecondaryFailures)

	got, err := f.repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationSent, got.Status)
	assert.Equal(t, 0, got.DeliveryAttempts)

	var failed []model.AuditEvent
	for _, e := range f.audits.All() {
		if e.Action == model.AuditDeliveryFailed {
			failed = append(failed, e)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, channel.Email, failed[0].Metadata["channel"])
	assert.Equal(t, "req-1", failed[0].RequestID)
}

func TestDispatcher_RunCycle_SecondariesWaitForPrimary(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp, err: errors.New("inbox unavailable")}
	push := &fakeChannel{name: channel.Push}
	d := f.dispatcher(DispatcherConfig{Workers: 1}, primary, push)
	ctx := context.Background()

	report, err := d.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retrying)

	got, err := f.repo.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationPending, got.Status)
	assert.Equal(t, 1, got.DeliveryAttempts)
	assert.Equal(t, 0, push.Calls())

	primary.mu.Lock()
	primary.err = nil
	primary.mu.Unlock()

	report, err = d.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 1, push.Calls())
	assert.Equal(t, 2, primary.Calls())
}

type markSentFailingQueue struct {
	*notification.Service
	err error
}

func (q *markSentFailingQueue) MarkSent(context.Context, uuid.UUID) error { return q.err }

func TestDispatcher_RunCycle_MarkSentFailureIsNotSent(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	q := &markSentFailingQueue{Service: f.queue, err: errors.New("connection reset")}
	primary := &fakeChannel{name: channel.InApp}
	d := NewDispatcher(q, audit.NewRecorder(f.audits), nil, DispatcherConfig{Workers: 1}, primary)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 1, report.Retrying)
	assert.Equal(t, 1, report.StatusWriteErrors)

	got, err := f.repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationPending, got.Status)

	events := f.audits.All()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, model.AuditDelivered, last.Action)
	assert.Equal(t, "connection reset", last.Metadata["status_write_error"])
}

func TestDispatcher_RunCycle_SkippedChannelIsNotAFailure(t *testing.T) {
	f := newDispatchFixture(t)
	f.enqueue(t, "sup-1")

	d := f.dispatcher(DispatcherConfig{Workers: 1},
		&fakeChannel{name: channel.InApp},
		&fakeChannel{name: channel.Email, err: channel.ErrSkipped},
	)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.SecondaryFailures)
}

func TestDispatcher_RunCycle_ChannelTimeout(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp, block: true}
	d := f.dispatcher(DispatcherConfig{Workers: 1, ChannelTimeout: 20 * time.Millisecond}, primary)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retrying)

	got, err := f.repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastError)
	assert.Contains(t, *got.LastError, context.DeadlineExceeded.Error())
}

func TestDispatcher_RunCycle_BoundedWorkers(t *testing.T) {
	f := newDispatchFixture(t)
	for i := 0; i < 12; i++ {
		f.enqueue(t, fmt.Sprintf("user-%d", i))
	}

	primary := &fakeChannel{name: channel.InApp, delay: 5 * time.Millisecond}
	d := f.dispatcher(DispatcherConfig{Workers: 3}, primary)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, report.Sent)
	assert.LessOrEqual(t, primary.maxInflight, 3)
}

func TestDispatcher_RunCycle_SweepsExpired(t *testing.T) {
	f := newDispatchFixture(t)
	n := f.enqueue(t, "sup-1")

	f.clk.Advance(notification.DefaultTTL + time.Minute)

	primary := &fakeChannel{name: channel.InApp}
	d := f.dispatcher(DispatcherConfig{Workers: 1}, primary)

	report, err := d.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Picked)
	assert.Equal(t, int64(1), report.Swept.Expired)
	assert.Equal(t, int64(1), report.Swept.Purged)
	assert.Equal(t, 0, primary.Calls())

	_, err = f.repo.Get(context.Background(), n.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDispatcher_Run_StopsOnCancel(t *testing.T) {
	f := newDispatchFixture(t)
	f.enqueue(t, "sup-1")

	primary := &fakeChannel{name: channel.InApp}
	d := f.dispatcher(DispatcherConfig{Workers: 1, Interval: 10 * time.Millisecond}, primary)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return primary.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}
