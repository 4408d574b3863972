package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidConfiguration = errors.New("invalid approval configuration")
	ErrOutOfOrderApproval   = errors.New("out of order approval")
	ErrAlreadyDecided       = errors.New("already decided")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDelegationConflict   = errors.New("delegation conflict")
	ErrDelegationOverlap    = errors.New("overlapping delegation")
	ErrDeliveryFailure      = errors.New("delivery failure")
	ErrNotFound             = errors.New("not found")
	ErrDuplicate            = errors.New("already exists")
	ErrRunInProgress        = errors.New("escalation run in progress")
)

// TransitionError describes why an approval transition was refused.
// It unwraps to one of the sentinel errors above.
type TransitionError struct {
	Kind        error
	RequestID   string
	LevelNumber int
	DecidedBy   string
	DecidedAt   *time.Time
	Detail      string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("request %s", e.RequestID)
	if e.LevelNumber > 0 {
		msg = fmt.Sprintf("%s level %d", msg, e.LevelNumber)
	}

	msg = fmt.Sprintf("%s: %v", msg, e.Kind)

	if e.DecidedBy != "" {
		msg = fmt.Sprintf("%s by %s", msg, e.DecidedBy)
	}
	if e.DecidedAt != nil {
		msg = fmt.Sprintf("%s at %s", msg, e.DecidedAt.Format(time.RFC3339))
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}

	return msg
}

func (e *TransitionError) Unwrap() error { return e.Kind }

// ErrorKind returns a stable name for the error taxonomy member err belongs to.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, ErrOutOfOrderApproval):
		return "out_of_order_approval"
	case errors.Is(err, ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDelegationConflict):
		return "delegation_conflict"
	case errors.Is(err, ErrDelegationOverlap):
		return "delegation_overlap"
	case errors.Is(err, ErrDeliveryFailure):
		return "delivery_failure"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRunInProgress):
		return "run_in_progress"
	default:
		return "internal"
	}
}
