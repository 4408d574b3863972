package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/delegation"
	"github.com/aliskhannn/leave-approvals/internal/service/notification"
)

// Escalation tiers recorded on a level.
const (
	TierNone = iota
	TierApprover
	TierOversight
)

type escalationStore interface {
	ListPending(ctx context.Context) ([]*model.LeaveApproval, error)
	MarkEscalated(ctx context.Context, requestID string, levelNumber int, tier int, at time.Time) error
}

type approverResolver interface {
	ResolveApprover(ctx context.Context, role, requestID string, at time.Time) (delegation.Resolution, error)
}

type roleDirectory interface {
	MembersOfRole(ctx context.Context, role string) ([]model.Identity, error)
}

type escalationQueue interface {
	Enqueue(ctx context.Context, d notification.Draft) (notification.EnqueueResult, error)
}

type runLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type escalationMetrics interface {
	Escalated(tier int)
	EscalationRun(result string, d time.Duration)
}

// EscalationConfig tunes the scheduler thresholds and cadence.
type EscalationConfig struct {
	Interval         time.Duration
	RunTimeout       time.Duration
	ApproverAfter    time.Duration
	OversightAfter   time.Duration
	ReminderInterval time.Duration
	OversightRoles   []string
	LinkBase         string
}

// EscalationReport summarises one scheduler run.
type EscalationReport struct {
	Scanned   int `json:"scanned"`
	Escalated int `json:"escalated"`
	Reminded  int `json:"reminded"`
	Notified  int `json:"notified"`
	Failed    int `json:"failed"`
}

// Escalator scans pending approvals and raises escalation notices for levels
// waiting too long. It never changes a level's status.
type Escalator struct {
	store    escalationStore
	resolver approverResolver
	dir      roleDirectory
	queue    escalationQueue
	audit    auditRecorder
	lock     runLock
	metrics  escalationMetrics
	cfg      EscalationConfig
	now      func() time.Time

	running sync.Mutex

	mu      sync.RWMutex
	lastRun time.Time
}

// EscalatorOption configures an Escalator.
type EscalatorOption func(*Escalator)

// WithRunLock adds a cross-process lock taken for every run.
func WithRunLock(l runLock) EscalatorOption {
	return func(e *Escalator) { e.lock = l }
}

func WithEscalationMetrics(m escalationMetrics) EscalatorOption {
	return func(e *Escalator) { e.metrics = m }
}

func WithEscalationClock(now func() time.Time) EscalatorOption {
	return func(e *Escalator) { e.now = now }
}

func NewEscalator(
	store escalationStore,
	resolver approverResolver,
	dir roleDirectory,
	queue escalationQueue,
	audit auditRecorder,
	cfg EscalationConfig,
	opts ...EscalatorOption,
) *Escalator {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.ApproverAfter <= 0 {
		cfg.ApproverAfter = 24 * time.Hour
	}
	if cfg.OversightAfter <= 0 {
		cfg.OversightAfter = 72 * time.Hour
	}
	if cfg.ReminderInterval <= 0 {
		cfg.ReminderInterval = 24 * time.Hour
	}

	e := &Escalator{
		store:    store,
		resolver: resolver,
		dir:      dir,
		queue:    queue,
		audit:    audit,
		cfg:      cfg,
		now:      clock.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LastRun returns when the last completed run started, zero if none.
func (e *Escalator) LastRun() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.lastRun
}

// Run triggers RunOnce on every tick until ctx is done.
func (e *Escalator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	zlog.Logger.Info().Dur("interval", e.cfg.Interval).Msg("escalation scheduler started")

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Info().Msg("escalation scheduler stopped")
			return
		case <-ticker.C:
			report, err := e.RunOnce(ctx)
			if err != nil {
				zlog.Logger.Error().Err(err).Msg("escalation run failed")
				continue
			}
			zlog.Logger.Info().
				Int("scanned", report.Scanned).
				Int("escalated", report.Escalated).
				Int("reminded", report.Reminded).
				Int("notified", report.Notified).
				Msg("escalation run finished")
		}
	}
}

// RunOnce performs a single scan. It returns model.ErrRunInProgress without
// side effects while another run holds the lock.
func (e *Escalator) RunOnce(ctx context.Context) (EscalationReport, error) {
	var report EscalationReport

	if !e.running.TryLock() {
		return report, model.ErrRunInProgress
	}
	defer e.running.Unlock()

	if e.lock != nil {
		ok, err := e.lock.Acquire(ctx)
		if err != nil {
			return report, err
		}
		if !ok {
			return report, model.ErrRunInProgress
		}
		defer func() {
			if err := e.lock.Release(context.WithoutCancel(ctx)); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to release escalation run lock")
			}
		}()
	}

	started := e.now()
	result := "ok"
	defer func() {
		if e.metrics != nil {
			e.metrics.EscalationRun(result, e.now().Sub(started))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	defer cancel()

	approvals, err := e.store.ListPending(ctx)
	if err != nil {
		result = "error"
		return report, fmt.Errorf("list pending approvals: %w", err)
	}

	for _, a := range approvals {
		if err := ctx.Err(); err != nil {
			result = "abandoned"
			zlog.Logger.Error().Err(err).
				Int("scanned", report.Scanned).
				Int("remaining", len(approvals)-report.Scanned).
				Msg("escalation run abandoned")
			return report, fmt.Errorf("escalation run abandoned: %w", err)
		}

		report.Scanned++
		e.escalate(ctx, a, started, &report)
	}

	e.mu.Lock()
	e.lastRun = started
	e.mu.Unlock()

	return report, nil
}

// tier returns the escalation tier owed for a level pending for d.
func (e *Escalator) tier(d time.Duration) int {
	switch {
	case d >= e.cfg.OversightAfter:
		return TierOversight
	case d >= e.cfg.ApproverAfter:
		return TierApprover
	default:
		return TierNone
	}
}

func (e *Escalator) escalate(ctx context.Context, a *model.LeaveApproval, now time.Time, report *EscalationReport) {
	level, ok := a.ActiveLevel()
	if !ok || level.ActivatedAt == nil {
		return
	}

	pending := now.Sub(*level.ActivatedAt)
	tier := e.tier(pending)
	if tier == TierNone {
		return
	}

	rising := tier > level.EscalationTier
	if !rising && level.LastEscalatedAt != nil && now.Sub(*level.LastEscalatedAt) < e.cfg.ReminderInterval {
		return
	}

	log := zlog.Logger.With().
		Str("request_id", a.RequestID).
		Int("level", level.LevelNumber).
		Int("tier", tier).
		Logger()

	notified := 0
	var routingErr error

	res, err := e.resolver.ResolveApprover(ctx, level.ApproverRole, a.RequestID, now)
	if err != nil {
		routingErr = err
		log.Error().Err(err).Msg("failed to resolve approver for escalation")
	} else if e.enqueue(ctx, approverEscalation(a, level, res.ApproverID, e.cfg.ApproverAfter, e.link(a.RequestID))) {
		notified++
	}

	if tier >= TierOversight {
		for _, userID := range e.oversight(ctx, res.ApproverID) {
			if e.enqueue(ctx, oversightEscalation(a, level, userID, e.cfg.OversightAfter, e.link(a.RequestID))) {
				notified++
			}
		}
	}

	report.Notified += notified

	if err := e.store.MarkEscalated(ctx, a.RequestID, level.LevelNumber, tier, now); err != nil {
		report.Failed++
		log.Error().Err(err).Msg("failed to mark level escalated")
		return
	}

	if !rising {
		report.Reminded++
		return
	}

	report.Escalated++
	if e.metrics != nil {
		e.metrics.Escalated(tier)
	}

	meta := map[string]interface{}{
		"tier":          tier,
		"hours_pending": int(pending.Hours()),
		"notified":      notified,
	}
	if res.ApproverID != "" {
		meta["approver_id"] = res.ApproverID
	}
	if routingErr != nil {
		meta["routing_error"] = routingErr.Error()
	}

	number := level.LevelNumber
	e.audit.Record(ctx, model.AuditEvent{
		RequestID:      a.RequestID,
		LevelNumber:    &number,
		Action:         model.AuditEscalated,
		ActorID:        systemActor,
		PreviousStatus: string(level.Status),
		NewStatus:      string(level.Status),
		Metadata:       meta,
	})

	log.Info().Dur("pending", pending).Int("notified", notified).Msg("approval level escalated")
}

// oversight lists active members of the oversight roles, each once.
func (e *Escalator) oversight(ctx context.Context, approverID string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, role := range e.cfg.OversightRoles {
		members, err := e.dir.MembersOfRole(ctx, role)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("role", role).Msg("failed to list oversight role members")
			continue
		}

		for _, m := range members {
			if m.UserID == approverID {
				continue
			}
			if _, ok := seen[m.UserID]; ok {
				continue
			}
			seen[m.UserID] = struct{}{}
			out = append(out, m.UserID)
		}
	}

	return out
}

func (e *Escalator) enqueue(ctx context.Context, d notification.Draft) bool {
	if _, err := e.queue.Enqueue(ctx, d); err != nil {
		zlog.Logger.Error().Err(err).
			Str("recipient", deref(d.RecipientUserID)).
			Msg("failed to enqueue escalation notice")
		return false
	}

	return true
}

func (e *Escalator) link(requestID string) *string {
	if e.cfg.LinkBase == "" {
		return nil
	}

	l := fmt.Sprintf("%s/leave-requests/%s", e.cfg.LinkBase, requestID)
	return &l
}

// Escalation texts depend only on the request, the level and the threshold so
// repeated runs collapse onto one queued entry.

func approverEscalation(a *model.LeaveApproval, level *model.ApprovalLevel, approverID string, after time.Duration, link *string) notification.Draft {
	requestID := a.RequestID
	return notification.Draft{
		RecipientUserID: &approverID,
		RequestID:       &requestID,
		Type:            model.NotificationEscalation,
		Title:           "Leave request approval overdue",
		Message: fmt.Sprintf("Leave request %s from %s has waited more than %d hours for your level %d (%s) approval.",
			a.RequestID, a.RequesterID, int(after.Hours()), level.LevelNumber, level.ApproverRole),
		Link:     link,
		Priority: model.PriorityUrgent,
	}
}

func oversightEscalation(a *model.LeaveApproval, level *model.ApprovalLevel, userID string, after time.Duration, link *string) notification.Draft {
	requestID := a.RequestID
	return notification.Draft{
		RecipientUserID: &userID,
		RequestID:       &requestID,
		Type:            model.NotificationEscalation,
		Title:           "Leave request escalated",
		Message: fmt.Sprintf("Leave request %s from %s has waited more than %d hours at level %d (%s).",
			a.RequestID, a.RequesterID, int(after.Hours()), level.LevelNumber, level.ApproverRole),
		Link:     link,
		Priority: model.PriorityUrgent,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
