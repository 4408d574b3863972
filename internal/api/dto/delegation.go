package dto

import "time"

// CreateDelegationRequest hands the calling user's approvals to DelegateID.
type CreateDelegationRequest struct {
	DelegateID string    `json:"delegate_id" validate:"required"`
	ValidFrom  time.Time `json:"valid_from" validate:"required"`
	ValidTo    time.Time `json:"valid_to" validate:"required,gtfield=ValidFrom"`
	Roles      []string  `json:"roles" validate:"omitempty,dive,required"`
	RequestIDs []string  `json:"request_ids" validate:"omitempty,dive,required"`
}
