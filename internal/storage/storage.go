// Package storage opens the repositories selected by storage.driver.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/config"
	"github.com/aliskhannn/leave-approvals/internal/model"
	approvalrepo "github.com/aliskhannn/leave-approvals/internal/repository/approval"
	auditrepo "github.com/aliskhannn/leave-approvals/internal/repository/audit"
	delegationrepo "github.com/aliskhannn/leave-approvals/internal/repository/delegation"
	inboxrepo "github.com/aliskhannn/leave-approvals/internal/repository/inbox"
	"github.com/aliskhannn/leave-approvals/internal/repository/memory"
	notifrepo "github.com/aliskhannn/leave-approvals/internal/repository/notification"
)

type ApprovalStore interface {
	Create(ctx context.Context, a *model.LeaveApproval) error
	Get(ctx context.Context, requestID string) (*model.LeaveApproval, error)
	ListPending(ctx context.Context) ([]*model.LeaveApproval, error)
	DecideLevel(ctx context.Context, requestID string, levelNumber int, expected model.LevelStatus, d model.LevelDecision) error
	ActivateLevel(ctx context.Context, requestID string, levelNumber int, at time.Time, delegatedTo *string) error
	UpdateStatus(ctx context.Context, requestID string, from, to model.ApprovalStatus, at time.Time) error
	MarkEscalated(ctx context.Context, requestID string, levelNumber int, tier int, at time.Time) error
}

type NotificationStore interface {
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

type DelegationStore interface {
	Create(ctx context.Context, d model.Delegation) error
	Get(ctx context.Context, id uuid.UUID) (model.Delegation, error)
	ListByDelegator(ctx context.Context, delegatorID string) ([]model.Delegation, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuditStore interface {
	Append(ctx context.Context, e model.AuditEvent) error
	ListByRequest(ctx context.Context, requestID string) ([]model.AuditEvent, error)
}

type InboxStore interface {
	InsertInApp(ctx context.Context, n model.InAppNotification) error
	ListInbox(ctx context.Context, userID string, limit int) ([]model.InAppNotification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error
}

// Stores bundles one repository per record type.
type Stores struct {
	Approvals     ApprovalStore
	Notifications NotificationStore
	Delegations   DelegationStore
	Audits        AuditStore
	Inbox         InboxStore

	db *dbpg.DB
}

// NewMemory returns process-local stores. Nothing survives a restart.
func NewMemory() *Stores {
	return &Stores{
		Approvals:     memory.NewApprovalRepository(),
		Notifications: memory.NewNotificationRepository(),
		Delegations:   memory.NewDelegationRepository(),
		Audits:        memory.NewAuditRepository(),
		Inbox:         memory.NewInboxRepository(),
	}
}

// NewPostgres returns stores backed by db.
func NewPostgres(db *dbpg.DB) *Stores {
	return &Stores{
		Approvals:     approvalrepo.NewRepository(db),
		Notifications: notifrepo.NewRepository(db),
		Delegations:   delegationrepo.NewRepository(db),
		Audits:        auditrepo.NewRepository(db),
		Inbox:         inboxrepo.NewRepository(db),
		db:            db,
	}
}

// Open connects the configured backend.
func Open(cfg *config.Config) (*Stores, error) {
	switch cfg.Storage.Driver {
	case "memory":
		zlog.Logger.Warn().Msg("using in-memory storage, state is lost on restart")
		return NewMemory(), nil
	case "postgres":
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	zlog.Logger.Info().
		Str("host", cfg.Database.Master.Host).
		Str("database", cfg.Database.Master.Name).
		Int("slaves", len(slaveDSNs)).
		Msg("connected to postgres")

	return NewPostgres(db), nil
}

// Close releases database connections, if any.
func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}

	var errs []error

	if err := s.db.Master.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close master: %w", err))
	}

	for i, slave := range s.db.Slaves {
		if err := slave.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close slave %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
