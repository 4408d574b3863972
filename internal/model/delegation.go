package model

import (
	"time"

	"github.com/google/uuid"
)

// DelegationScope limits a delegation to roles or specific requests.
// An empty scope covers every approval of the delegator.
type DelegationScope struct {
	Roles      []string `json:"roles,omitempty"`
	RequestIDs []string `json:"request_ids,omitempty"`
}

// Covers reports whether the scope applies to the given role and request.
func (s DelegationScope) Covers(role, requestID string) bool {
	if len(s.Roles) == 0 && len(s.RequestIDs) == 0 {
		return true
	}

	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}

	for _, id := range s.RequestIDs {
		if id == requestID && requestID != "" {
			return true
		}
	}

	return false
}

// Delegation is a time-bounded reassignment of an approver's authority.
type Delegation struct {
	ID          uuid.UUID       `json:"id"`
	DelegatorID string          `json:"delegator_id"`
	DelegateID  string          `json:"delegate_id"`
	ValidFrom   time.Time       `json:"valid_from"`
	ValidTo     time.Time       `json:"valid_to"`
	Scope       DelegationScope `json:"scope"`
	CreatedAt   time.Time       `json:"created_at"`
	RevokedAt   *time.Time      `json:"revoked_at,omitempty"`
}

// ActiveAt reports whether the delegation is in force at t.
// The window is half-open: [ValidFrom, ValidTo).
func (d Delegation) ActiveAt(t time.Time) bool {
	if d.RevokedAt != nil && !t.Before(*d.RevokedAt) {
		return false
	}
	return !t.Before(d.ValidFrom) && t.Before(d.ValidTo)
}

// Overlaps reports whether two delegation windows intersect.
func (d Delegation) Overlaps(o Delegation) bool {
	return d.ValidFrom.Before(o.effectiveEnd()) && o.ValidFrom.Before(d.effectiveEnd())
}

func (d Delegation) effectiveEnd() time.Time {
	if d.RevokedAt != nil && d.RevokedAt.Before(d.ValidTo) {
		return *d.RevokedAt
	}
	return d.ValidTo
}
