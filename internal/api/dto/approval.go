package dto

import "time"

type LevelRequest struct {
	LevelNumber  int    `json:"level_number" validate:"required,min=1"`
	ApproverRole string `json:"approver_role" validate:"required"`
}

// SubmitRequest opens an approval chain. The requester is the calling user.
type SubmitRequest struct {
	RequestID         string         `json:"request_id" validate:"required"`
	StaffID           string         `json:"staff_id"`
	LeaveType         string         `json:"leave_type"`
	StartDate         time.Time      `json:"start_date"`
	EndDate           time.Time      `json:"end_date"`
	Days              int            `json:"days" validate:"min=0"`
	OfficerTakingOver string         `json:"officer_taking_over"`
	Levels            []LevelRequest `json:"levels" validate:"required,min=1,dive"`
}

type ActRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approve reject"`
	Comments *string `json:"comments"`
}
