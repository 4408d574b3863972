package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/delegation"
	"github.com/aliskhannn/leave-approvals/internal/service/notification"
)

type approvalRepository interface {
	Create(ctx context.Context, a *model.LeaveApproval) error
	Get(ctx context.Context, requestID string) (*model.LeaveApproval, error)
	ListPending(ctx context.Context) ([]*model.LeaveApproval, error)
	DecideLevel(ctx context.Context, requestID string, levelNumber int, expected model.LevelStatus, d model.LevelDecision) error
	ActivateLevel(ctx context.Context, requestID string, levelNumber int, at time.Time, delegatedTo *string) error
	UpdateStatus(ctx context.Context, requestID string, from, to model.ApprovalStatus, at time.Time) error
}

type approverResolver interface {
	ResolveApprover(ctx context.Context, role, requestID string, at time.Time) (delegation.Resolution, error)
}

type directory interface {
	Lookup(ctx context.Context, userID string) (model.Identity, error)
}

type notificationQueue interface {
	Enqueue(ctx context.Context, d notification.Draft) (notification.EnqueueResult, error)
}

type auditRecorder interface {
	Record(ctx context.Context, e model.AuditEvent)
	History(ctx context.Context, requestID string) ([]model.AuditEvent, error)
}

type transitionMetrics interface {
	Transition(action string)
}

// LevelSpec configures one level of a new approval chain.
type LevelSpec struct {
	LevelNumber  int
	ApproverRole string
}

// SubmitRequest opens an approval chain for a leave request.
type SubmitRequest struct {
	RequestID   string
	RequesterID string
	Leave       model.LeaveDetails
	Levels      []LevelSpec
}

// ActRequest is an approver's decision on one level.
type ActRequest struct {
	RequestID   string
	LevelNumber int
	ActorID     string
	Decision    model.Decision
	Comments    *string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches transition counters.
func WithMetrics(m transitionMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLinkBase sets the URL prefix notification links point at.
func WithLinkBase(base string) Option {
	return func(s *Service) { s.linkBase = strings.TrimRight(base, "/") }
}

// Service is the approval state machine.
type Service struct {
	repo     approvalRepository
	resolver approverResolver
	dir      directory
	queue    notificationQueue
	audit    auditRecorder
	metrics  transitionMetrics
	now      func() time.Time
	linkBase string
}

func NewService(
	repo approvalRepository,
	resolver approverResolver,
	dir directory,
	queue notificationQueue,
	audit auditRecorder,
	opts ...Option,
) *Service {
	s := &Service{
		repo:     repo,
		resolver: resolver,
		dir:      dir,
		queue:    queue,
		audit:    audit,
		now:      clock.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit creates a pending approval chain and notifies the level-1 approver.
// Nothing is created when the level-1 approver cannot be resolved.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*model.LeaveApproval, error) {
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	now := s.now()

	first := req.Levels[0]
	res, err := s.resolver.ResolveApprover(ctx, first.ApproverRole, req.RequestID, now)
	if err != nil {
		return nil, fmt.Errorf("route request %s: %w", req.RequestID, err)
	}

	a := &model.LeaveApproval{
		RequestID:   req.RequestID,
		RequesterID: req.RequesterID,
		Leave:       req.Leave,
		Levels:      make([]model.ApprovalLevel, 0, len(req.Levels)),
		Status:      model.ApprovalPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, l := range req.Levels {
		a.Levels = append(a.Levels, model.ApprovalLevel{
			LevelNumber:  l.LevelNumber,
			ApproverRole: l.ApproverRole,
			Status:       model.LevelPending,
		})
	}

	a.Levels[0].ActivatedAt = &now
	if res.Delegated {
		delegate := res.ApproverID
		a.Levels[0].DelegatedTo = &delegate
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmt.Errorf("request %s already has an approval chain: %w: %w",
				req.RequestID, model.ErrInvalidConfiguration, model.ErrDuplicate)
		}
		return nil, fmt.Errorf("create approval: %w", err)
	}

	level := 1
	s.audit.Record(ctx, model.AuditEvent{
		RequestID:   a.RequestID,
		LevelNumber: &level,
		Action:      model.AuditSubmitted,
		ActorID:     req.RequesterID,
		Timestamp:   now,
		NewStatus:   string(model.ApprovalPending),
		Metadata: map[string]interface{}{
			"levels":   len(a.Levels),
			"approver": res.ApproverID,
		},
	})
	s.count(model.AuditSubmitted)

	s.enqueue(ctx, awaitingApproval(a, &a.Levels[0], res.ApproverID, s.link(a.RequestID)))

	zlog.Logger.Info().
		Str("request_id", a.RequestID).
		Str("requester", a.RequesterID).
		Str("approver", res.ApproverID).
		Int("levels", len(a.Levels)).
		Msg("approval submitted")

	return a, nil
}

func validateSubmit(req SubmitRequest) error {
	switch {
	case strings.TrimSpace(req.RequestID) == "":
		return fmt.Errorf("request id is required: %w", model.ErrInvalidConfiguration)
	case strings.TrimSpace(req.RequesterID) == "":
		return fmt.Errorf("requester id is required: %w", model.ErrInvalidConfiguration)
	case len(req.Levels) == 0:
		return fmt.Errorf("approval chain has no levels: %w", model.ErrInvalidConfiguration)
	}

	for i, l := range req.Levels {
		if l.LevelNumber != i+1 {
			return fmt.Errorf("level numbers must run 1..%d in order, got %d at position %d: %w",
				len(req.Levels), l.LevelNumber, i+1, model.ErrInvalidConfiguration)
		}
		if strings.TrimSpace(l.ApproverRole) == "" {
			return fmt.Errorf("level %d has no approver role: %w", l.LevelNumber, model.ErrInvalidConfiguration)
		}
	}

	return nil
}

// Act applies an approve or reject decision to a level.
func (s *Service) Act(ctx context.Context, req ActRequest) (*model.LeaveApproval, error) {
	var newStatus model.LevelStatus
	switch req.Decision {
	case model.DecisionApprove:
		newStatus = model.LevelApproved
	case model.DecisionReject:
		newStatus = model.LevelRejected
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", req.Decision, model.ErrInvalidConfiguration)
	}

	a, err := s.Get(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	deny := func(err error) (*model.LeaveApproval, error) {
		return nil, s.denied(ctx, model.AuditActDenied, req.RequestID, req.LevelNumber, req.ActorID, err)
	}

	if a.Status != model.ApprovalPending {
		return deny(&model.TransitionError{
			Kind:        model.ErrAlreadyDecided,
			RequestID:   a.RequestID,
			LevelNumber: req.LevelNumber,
			Detail:      fmt.Sprintf("request is %s", a.Status),
		})
	}

	level, ok := a.Level(req.LevelNumber)
	if !ok {
		return nil, &model.TransitionError{Kind: model.ErrNotFound, RequestID: a.RequestID, LevelNumber: req.LevelNumber}
	}

	if !level.Status.Open() {
		return deny(decidedError(a.RequestID, level))
	}

	active, ok := a.ActiveLevel()
	if !ok || active.LevelNumber != level.LevelNumber {
		detail := "a lower level is still pending"
		if ok {
			detail = fmt.Sprintf("level %d is still pending", active.LevelNumber)
		}
		return deny(&model.TransitionError{
			Kind:        model.ErrOutOfOrderApproval,
			RequestID:   a.RequestID,
			LevelNumber: level.LevelNumber,
			Detail:      detail,
		})
	}

	now := s.now()

	if err := s.authorize(ctx, a.RequestID, level, req.ActorID, now); err != nil {
		return deny(err)
	}

	next, hasNext := a.NextLevel(level.LevelNumber)

	overall := model.ApprovalPending
	switch {
	case newStatus == model.LevelRejected:
		overall = model.ApprovalRejected
	case !hasNext:
		overall = model.ApprovalApproved
	}

	decision := model.LevelDecision{
		Status:   newStatus,
		ActedBy:  req.ActorID,
		ActedAt:  now,
		Comments: req.Comments,
		Overall:  overall,
	}

	if err := s.repo.DecideLevel(ctx, a.RequestID, level.LevelNumber, level.Status, decision); err != nil {
		if errors.Is(err, model.ErrAlreadyDecided) {
			return deny(s.lostRace(ctx, a.RequestID, level.LevelNumber))
		}
		return nil, fmt.Errorf("decide level: %w", err)
	}

	previous := level.Status
	level.Status = newStatus
	level.ActedBy = &decision.ActedBy
	level.ActedAt = &now
	level.Comments = req.Comments

	meta := map[string]interface{}{"decision": string(req.Decision)}
	if req.Comments != nil {
		meta["comments"] = *req.Comments
	}

	a.Status = overall
	a.UpdatedAt = now

	var draft *notification.Draft
	action := model.AuditApproved
	if newStatus == model.LevelRejected {
		action = model.AuditRejected
	}

	if overall == model.ApprovalPending {
		draft = s.activate(ctx, a, next, now, meta)
	} else {
		draft = decisionNotice(a, level, s.link(a.RequestID))
	}

	meta["overall_status"] = string(a.Status)

	levelNumber := level.LevelNumber
	s.audit.Record(ctx, model.AuditEvent{
		RequestID:      a.RequestID,
		LevelNumber:    &levelNumber,
		Action:         action,
		ActorID:        req.ActorID,
		Timestamp:      now,
		PreviousStatus: string(previous),
		NewStatus:      string(newStatus),
		Metadata:       meta,
	})
	s.count(action)

	if draft != nil {
		s.enqueue(ctx, *draft)
	}

	zlog.Logger.Info().
		Str("request_id", a.RequestID).
		Int("level", levelNumber).
		Str("actor", req.ActorID).
		Str("decision", string(req.Decision)).
		Str("status", string(a.Status)).
		Msg("approval level decided")

	return a, nil
}

// authorize checks the actor is active and is the approver the level resolves to right now.
func (s *Service) authorize(ctx context.Context, requestID string, level *model.ApprovalLevel, actorID string, now time.Time) error {
	unauthorized := func(detail string) error {
		return &model.TransitionError{
			Kind:        model.ErrUnauthorized,
			RequestID:   requestID,
			LevelNumber: level.LevelNumber,
			Detail:      detail,
		}
	}

	actor, err := s.dir.Lookup(ctx, actorID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return unauthorized(fmt.Sprintf("unknown user %s", actorID))
		}
		return fmt.Errorf("lookup actor: %w", err)
	}

	if !actor.Active {
		return unauthorized(fmt.Sprintf("user %s is inactive", actorID))
	}

	res, err := s.resolver.ResolveApprover(ctx, level.ApproverRole, requestID, now)
	if err != nil {
		return fmt.Errorf("resolve approver for level %d: %w", level.LevelNumber, err)
	}

	if res.ApproverID != actorID {
		return unauthorized(fmt.Sprintf("level %d is assigned to %s", level.LevelNumber, res.ApproverID))
	}

	return nil
}

// activate makes next the active level and returns the notice for its approver.
// Routing failures are recorded in meta and never undo the decision already made.
func (s *Service) activate(
	ctx context.Context, a *model.LeaveApproval, next *model.ApprovalLevel, now time.Time, meta map[string]interface{},
) *notification.Draft {
	meta["next_level"] = next.LevelNumber

	var delegatedTo *string
	res, rerr := s.resolver.ResolveApprover(ctx, next.ApproverRole, a.RequestID, now)
	if rerr != nil {
		meta["routing_error"] = model.ErrorKind(rerr)
		zlog.Logger.Error().Err(rerr).
			Str("request_id", a.RequestID).
			Int("level", next.LevelNumber).
			Msg("failed to resolve next approver")
	} else if res.Delegated {
		delegate := res.ApproverID
		delegatedTo = &delegate
	}

	if err := s.repo.ActivateLevel(ctx, a.RequestID, next.LevelNumber, now, delegatedTo); err != nil {
		zlog.Logger.Error().Err(err).
			Str("request_id", a.RequestID).
			Int("level", next.LevelNumber).
			Msg("failed to activate next level")
	}

	next.ActivatedAt = &now
	next.DelegatedTo = delegatedTo
	a.UpdatedAt = now

	if rerr != nil {
		return nil
	}

	meta["next_approver"] = res.ApproverID
	d := awaitingApproval(a, next, res.ApproverID, s.link(a.RequestID))

	return &d
}

// Cancel withdraws a pending request. Only the requester may cancel.
func (s *Service) Cancel(ctx context.Context, requestID, actorID string) (*model.LeaveApproval, error) {
	a, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	deny := func(err error) (*model.LeaveApproval, error) {
		return nil, s.denied(ctx, model.AuditCancelDenied, requestID, 0, actorID, err)
	}

	if a.RequesterID != actorID {
		return deny(&model.TransitionError{
			Kind:      model.ErrUnauthorized,
			RequestID: requestID,
			Detail:    "only the requester may cancel",
		})
	}

	if a.Status != model.ApprovalPending {
		return deny(&model.TransitionError{
			Kind:      model.ErrAlreadyDecided,
			RequestID: requestID,
			Detail:    fmt.Sprintf("request is %s", a.Status),
		})
	}

	now := s.now()

	if err := s.repo.UpdateStatus(ctx, requestID, model.ApprovalPending, model.ApprovalCancelled, now); err != nil {
		if errors.Is(err, model.ErrAlreadyDecided) {
			return deny(&model.TransitionError{
				Kind:      model.ErrAlreadyDecided,
				RequestID: requestID,
				Detail:    "request was decided concurrently",
			})
		}
		return nil, fmt.Errorf("cancel approval: %w", err)
	}

	a.Status = model.ApprovalCancelled
	a.UpdatedAt = now

	s.audit.Record(ctx, model.AuditEvent{
		RequestID:      requestID,
		Action:         model.AuditCancelled,
		ActorID:        actorID,
		Timestamp:      now,
		PreviousStatus: string(model.ApprovalPending),
		NewStatus:      string(model.ApprovalCancelled),
	})
	s.count(model.AuditCancelled)

	if active, ok := a.ActiveLevel(); ok {
		res, err := s.resolver.ResolveApprover(ctx, active.ApproverRole, requestID, now)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("request_id", requestID).Msg("cannot notify approver of cancellation")
		} else {
			s.enqueue(ctx, cancelledNotice(a, res.ApproverID, s.link(requestID)))
		}
	}

	zlog.Logger.Info().Str("request_id", requestID).Str("actor", actorID).Msg("approval cancelled")

	return a, nil
}

// Get returns an approval with its overall status derived from the levels.
func (s *Service) Get(ctx context.Context, requestID string) (*model.LeaveApproval, error) {
	a, err := s.repo.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, &model.TransitionError{Kind: model.ErrNotFound, RequestID: requestID}
		}
		return nil, fmt.Errorf("get approval: %w", err)
	}

	if a.Status == model.ApprovalPending {
		a.Status = a.DerivedStatus()
	}

	return a, nil
}

// History returns the audit trail of a request.
func (s *Service) History(ctx context.Context, requestID string) ([]model.AuditEvent, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}

	return s.audit.History(ctx, requestID)
}

// ListPending returns every approval still awaiting a decision.
func (s *Service) ListPending(ctx context.Context) ([]*model.LeaveApproval, error) {
	list, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}

	out := list[:0]
	for _, a := range list {
		if a.DerivedStatus() == model.ApprovalPending {
			out = append(out, a)
		}
	}

	return out, nil
}

// PendingFor returns the approvals whose active level currently resolves to userID.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]*model.LeaveApproval, error) {
	list, err := s.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*model.LeaveApproval, 0)

	for _, a := range list {
		level, ok := a.ActiveLevel()
		if !ok {
			continue
		}

		res, err := s.resolver.ResolveApprover(ctx, level.ApproverRole, a.RequestID, now)
		if err != nil {
			zlog.Logger.Warn().Err(err).Str("request_id", a.RequestID).Msg("skipping unresolvable approval")
			continue
		}

		if res.ApproverID == userID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (s *Service) denied(ctx context.Context, action, requestID string, levelNumber int, actorID string, err error) error {
	e := model.AuditEvent{
		RequestID: requestID,
		Action:    action,
		ActorID:   actorID,
		Metadata: map[string]interface{}{
			"error":  model.ErrorKind(err),
			"detail": err.Error(),
		},
	}
	if levelNumber > 0 {
		e.LevelNumber = &levelNumber
	}

	s.audit.Record(ctx, e)
	s.count(action)

	zlog.Logger.Warn().Err(err).
		Str("request_id", requestID).
		Str("actor", actorID).
		Str("action", action).
		Msg("approval transition refused")

	return err
}

func (s *Service) lostRace(ctx context.Context, requestID string, levelNumber int) error {
	a, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return &model.TransitionError{Kind: model.ErrAlreadyDecided, RequestID: requestID, LevelNumber: levelNumber}
	}

	if level, ok := a.Level(levelNumber); ok && !level.Status.Open() {
		return decidedError(requestID, level)
	}

	return &model.TransitionError{
		Kind:        model.ErrAlreadyDecided,
		RequestID:   requestID,
		LevelNumber: levelNumber,
		Detail:      fmt.Sprintf("request is %s", a.Status),
	}
}

func decidedError(requestID string, level *model.ApprovalLevel) error {
	e := &model.TransitionError{
		Kind:        model.ErrAlreadyDecided,
		RequestID:   requestID,
		LevelNumber: level.LevelNumber,
		DecidedAt:   level.ActedAt,
		Detail:      string(level.Status),
	}
	if level.ActedBy != nil {
		e.DecidedBy = *level.ActedBy
	}

	return e
}

func (s *Service) enqueue(ctx context.Context, d notification.Draft) {
	if _, err := s.queue.Enqueue(ctx, d); err != nil {
		zlog.Logger.Error().Err(err).
			Str("type", string(d.Type)).
			Str("recipient", deref(d.RecipientUserID)).
			Msg("failed to enqueue notification")
	}
}

func (s *Service) count(action string) {
	if s.metrics != nil {
		s.metrics.Transition(action)
	}
}

func (s *Service) link(requestID string) *string {
	if s.linkBase == "" {
		return nil
	}
	l := fmt.Sprintf("%s/leave-requests/%s", s.linkBase, requestID)
	return &l
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
