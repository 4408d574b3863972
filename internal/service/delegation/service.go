package delegation

import (
	"context"
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

type delegationRepository interface {
	Create(ctx context.Context, d model.Delegation) error
	Get(ctx context.Context, id uuid.UUID) (model.Delegation, error)
	ListByDelegator(ctx context.Context, delegatorID string) ([]model.Delegation, error)
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) error
}

type directory interface {
	Lookup(ctx context.Context, userID string) (model.Identity, error)
	ApproverForRole(ctx context.Context, role string) (string, error)
}

// Resolution is the outcome of resolving who must act on a role.
type Resolution struct {
	ApproverID   string
	DesignatedID string
	Delegated    bool
	DelegationID uuid.UUID
}

// Service resolves effective approvers and manages delegations.
type Service struct {
	delegations delegationRepository
	dir         directory
	now         func() time.Time

	// overlap check and insert must not interleave
	mu sync.Mutex
}

func NewService(repo delegationRepository, dir directory, now func() time.Time) *Service {
	if now == nil {
		now = clock.Now
	}

	return &Service{delegations: repo, dir: dir, now: now}
}

// Create validates and stores a delegation. A delegator may hold at most one
// delegation in force at any instant.
func (s *Service) Create(ctx context.Context, d model.Delegation) (model.Delegation, error) {
	d.DelegatorID = strings.TrimSpace(d.DelegatorID)
	d.DelegateID = strings.TrimSpace(d.DelegateID)

	switch {
	case d.DelegatorID == "" || d.DelegateID == "":
		return model.Delegation{}, fmt.Errorf("delegator and delegate are required: %w", model.ErrInvalidConfiguration)
	case d.DelegatorID == d.DelegateID:
		return model.Delegation{}, fmt.Errorf("cannot delegate to self: %w", model.ErrInvalidConfiguration)
	case !d.ValidFrom.Before(d.ValidTo):
		return model.Delegation{}, fmt.Errorf("valid_from must precede valid_to: %w", model.ErrInvalidConfiguration)
	}

	if _, err := s.dir.Lookup(ctx, d.DelegateID); err != nil {
		return model.Delegation{}, fmt.Errorf("lookup delegate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.delegations.ListByDelegator(ctx, d.DelegatorID)
	if err != nil {
		return model.Delegation{}, fmt.Errorf("list delegations: %w", err)
	}

	for _, e := range existing {
		if e.Overlaps(d) {
			return model.Delegation{}, fmt.Errorf("delegation %s already covers that window: %w", e.ID, model.ErrDelegationOverlap)
		}
	}

	d.ID = uuid.New()
	d.CreatedAt = s.now()
	d.RevokedAt = nil

	if err := s.delegations.Create(ctx, d); err != nil {
		return model.Delegation{}, fmt.Errorf("create delegation: %w", err)
	}

	zlog.Logger.Info().
		Str("delegation_id", d.ID.String()).
		Str("delegator", d.DelegatorID).
		Str("delegate", d.DelegateID).
		Msg("delegation created")

	return d, nil
}

// Revoke ends a delegation now. Only the delegator may revoke it.
func (s *Service) Revoke(ctx context.Context, id uuid.UUID, actorID string) error {
	d, err := s.delegations.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get delegation: %w", err)
	}

	if d.DelegatorID != actorID {
		return fmt.Errorf("only the delegator may revoke delegation %s: %w", id, model.ErrUnauthorized)
	}

	if err := s.delegations.Revoke(ctx, id, s.now()); err != nil {
		return fmt.Errorf("revoke delegation: %w", err)
	}

	return nil
}

func (s *Service) ListByDelegator(ctx context.Context, delegatorID string) ([]model.Delegation, error) {
	list, err := s.delegations.ListByDelegator(ctx, delegatorID)
	if err != nil {
		return nil, fmt.Errorf("list delegations: %w", err)
	}

	return list, nil
}

// ResolveApprover returns who must act on role for requestID at the given instant.
// Resolution is single hop: a delegate's own delegations are not followed.
// More than one delegation in force fails closed with ErrDelegationConflict.
func (s *Service) ResolveApprover(ctx context.Context, role, requestID string, at time.Time) (Resolution, error) {
	designated, err := s.dir.ApproverForRole(ctx, role)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve approver for %s: %w", role, err)
	}

	list, err := s.delegations.ListByDelegator(ctx, designated)
	if err != nil {
		return Resolution{}, fmt.Errorf("list delegations: %w", err)
	}

	var active []model.Delegation
	for _, d := range list {
		if d.ActiveAt(at) && d.Scope.Covers(role, requestID) {
			active = append(active, d)
		}
	}

	switch len(active) {
	case 0:
		return Resolution{ApproverID: designated, DesignatedID: designated}, nil
	case 1:
		return Resolution{
			ApproverID:   active[0].DelegateID,
			DesignatedID: designated,
			Delegated:    true,
			DelegationID: active[0].ID,
		}, nil
	default:
		ids := make([]string, 0, len(active))
		for _, d := range active {
			ids = append(ids, d.ID.String())
		}

		zlog.Logger.Warn().
			Str("role", role).
			Str("request_id", requestID).
			Strs("delegations", ids).
			Msg("conflicting delegations, refusing to resolve approver")

		return Resolution{}, fmt.Errorf("%d delegations of %s in force: %w", len(active), designated, model.ErrDelegationConflict)
	}
}

// IsAuthorized reports whether actorID may act on role for requestID at the given instant.
func (s *Service) IsAuthorized(ctx context.Context, actorID, role, requestID string, at time.Time) (bool, error) {
	actor, err := s.dir.Lookup(ctx, actorID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup actor: %w", err)
	}

	if !actor.Active {
		return false, nil
	}

	res, err := s.ResolveApprover(ctx, role, requestID, at)
	if err != nil {
		return false, err
	}

	return res.ApproverID == actorID, nil
}
