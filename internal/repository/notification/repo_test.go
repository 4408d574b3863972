package notification

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var notificationColumns = []string{
	"id", "recipient_user_id", "recipient_staff_id", "request_id", "type", "title", "message", "link",
	"priority", "deduplication_key", "status", "delivery_attempts", "last_error",
	"created_at", "updated_at", "sent_at", "expires_at",
}

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func testNotification() model.QueuedNotification {
	user := "sup-1"
	requestID := "req-1"
	return model.QueuedNotification{
		ID:               uuid.New(),
		RecipientUserID:  &user,
		RequestID:        &requestID,
		Type:             model.NotificationSubmitted,
		Title:            "Leave request awaiting your approval",
		Message:          "Leave request req-1 awaits your approval.",
		Priority:         model.PriorityHigh,
		DeduplicationKey: "abc",
		Status:           model.NotificationPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(30 * 24 * time.Hour),
	}
}

func TestInsert(t *testing.T) {
	repo, mock := setupMockDB(t)
	n := testNotification()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notification_queue`)).
		WithArgs(n.ID, "sup-1", nil, "req-1", n.Type, n.Title, n.Message, nil,
			n.Priority, 2, n.DeduplicationKey, n.Status, 0, now, now, n.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Insert(context.Background(), n))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO notification_queue`)).
		WillReturnError(&pq.Error{Code: "23505"})

	assert.ErrorIs(t, repo.Insert(context.Background(), n), model.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPending(t *testing.T) {
	repo, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE deduplication_key = $1`)).
		WithArgs("abc", nil).
		WillReturnRows(sqlmock.NewRows(notificationColumns).AddRow(
			id.String(), "sup-1", nil, "req-1", "submitted", "t", "m", nil,
			"normal", "abc", "pending", 1, "timeout", now, now, nil, now.Add(time.Hour),
		))

	n, err := repo.FindPending(context.Background(), "abc", nil)
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	require.NotNil(t, n.RecipientUserID)
	assert.Equal(t, "sup-1", *n.RecipientUserID)
	assert.Nil(t, n.RecipientStaffID)
	assert.Nil(t, n.SentAt)
	require.NotNil(t, n.LastError)
	assert.Equal(t, "timeout", *n.LastError)
	assert.Equal(t, model.PriorityNormal, n.Priority)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE deduplication_key = $1`)).
		WithArgs("abc", "STF-1").
		WillReturnError(sql.ErrNoRows)

	staff := "STF-1"
	_, err = repo.FindPending(context.Background(), "abc", &staff)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh(t *testing.T) {
	repo, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`SET priority = $1, priority_rank = $2, delivery_attempts = 0`)).
		WithArgs(model.PriorityUrgent, 3, now, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Refresh(context.Background(), id, model.PriorityUrgent, now)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAndExpireOldest(t *testing.T) {
	repo, mock := setupMockDB(t)
	oldest := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*)`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(500))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE SKIP LOCKED`)).
		WithArgs(now, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(oldest.String()))

	count, err := repo.CountPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500, count)

	ids, err := repo.ExpireOldestPending(context.Background(), 1, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldest}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextBatch(t *testing.T) {
	repo, mock := setupMockDB(t)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY priority_rank DESC, created_at, seq`)).
		WithArgs(now, 50).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(first.String(), "sup-1", nil, "req-1", "escalation", "t", "m", nil,
				"urgent", "k1", "pending", 0, nil, now, now, nil, now.Add(time.Hour)).
			AddRow(second.String(), "emp-1", "STF-1", "req-2", "decision", "t", "m", "https://hr/x",
				"normal", "k2", "pending", 2, nil, now, now, nil, now.Add(time.Hour)),
		)

	batch, err := repo.NextBatch(context.Background(), now, 50)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, first, batch[0].ID)
	assert.Equal(t, model.PriorityUrgent, batch[0].Priority)
	require.NotNil(t, batch[1].Link)
	assert.Equal(t, "https://hr/x", *batch[1].Link)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentAndRecordFailure(t *testing.T) {
	repo, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'sent'`)).
		WithArgs(now, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SET delivery_attempts = delivery_attempts + 1`)).
		WithArgs("inbox unavailable", now, 3, id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("failed"))
	mock.ExpectQuery(regexp.QuoteMeta(`SET delivery_attempts = delivery_attempts + 1`)).
		WithArgs("inbox unavailable", now, 3, id).
		WillReturnError(sql.ErrNoRows)

	require.NoError(t, repo.MarkSent(context.Background(), id, now))

	status, err := repo.RecordFailure(context.Background(), id, "inbox unavailable", 3, now)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationFailed, status)

	_, err = repo.RecordFailure(context.Background(), id, "inbox unavailable", 3, now)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweep(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta(`SET status = 'expired', updated_at = $1`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM notification_queue`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	expired, err := repo.ExpireStale(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), expired)

	purged, err := repo.PurgeTerminal(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY seq DESC`)).
		WithArgs("failed", "", 100).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	list, err := repo.List(context.Background(), model.NotificationFilter{Status: model.NotificationFailed, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueDecisionsRunOnMaster(t *testing.T) {
	master, mock, err := sqlmock.New()
	require.NoError(t, err)
	replica, replicaMock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRepository(&dbpg.DB{Master: master, Slaves: []*sql.DB{replica}})
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE deduplication_key = $1`)).
		WithArgs("abc", nil).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*)`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(500))
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE SKIP LOCKED`)).
		WithArgs(now, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY priority_rank DESC, created_at, seq`)).
		WithArgs(now, 50).
		WillReturnRows(sqlmock.NewRows(notificationColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`SET delivery_attempts = delivery_attempts + 1`)).
		WithArgs("timeout", now, 3, id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	_, err = repo.FindPending(ctx, "abc", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 500, count)

	ids, err := repo.ExpireOldestPending(ctx, 1, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{id}, ids)

	_, err = repo.NextBatch(ctx, now, 50)
	require.NoError(t, err)

	status, err := repo.RecordFailure(ctx, id, "timeout", 3, now)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationPending, status)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, replicaMock.ExpectationsWereMet())
}
