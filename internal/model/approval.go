package model

import "time"

// ApprovalStatus is the overall state of a leave approval.
type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalCancelled ApprovalStatus = "cancelled"
)

// LevelStatus is the state of a single approval level.
type LevelStatus string

const (
	LevelPending   LevelStatus = "pending"
	LevelApproved  LevelStatus = "approved"
	LevelRejected  LevelStatus = "rejected"
	LevelDelegated LevelStatus = "delegated"
	LevelEscalated LevelStatus = "escalated"
)

// Open reports whether the level is still awaiting a decision.
// Delegated and escalated levels are annotations over a pending level.
func (s LevelStatus) Open() bool {
	return s == LevelPending || s == LevelDelegated || s == LevelEscalated
}

// Decision is an approver's verdict on a level.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// LeaveDetails carries the leave request the approval belongs to.
type LeaveDetails struct {
	StaffID           string    `json:"staff_id"`
	LeaveType         string    `json:"leave_type"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Days              int       `json:"days"`
	OfficerTakingOver string    `json:"officer_taking_over,omitempty"`
}

// ApprovalLevel is one sequential sign-off step bound to a role.
type ApprovalLevel struct {
	LevelNumber     int         `json:"level_number"`                // 1-based, strictly ascending
	ApproverRole    string      `json:"approver_role"`               // role whose approver must act
	Status          LevelStatus `json:"status"`                      // pending, approved or rejected
	ActedBy         *string     `json:"acted_by,omitempty"`          // user who decided the level
	ActedAt         *time.Time  `json:"acted_at,omitempty"`          // decision time
	Comments        *string     `json:"comments,omitempty"`          // approver comments
	ActivatedAt     *time.Time  `json:"activated_at,omitempty"`      // when it became the lowest pending level
	DelegatedTo     *string     `json:"delegated_to,omitempty"`      // delegate the level was routed to
	EscalationTier  int         `json:"escalation_tier"`             // 0 none, 1 approver, 2 oversight
	LastEscalatedAt *time.Time  `json:"last_escalated_at,omitempty"` // last escalation notice
}

// LeaveApproval is the approval chain owned by one leave request.
type LeaveApproval struct {
	RequestID   string          `json:"request_id"`
	RequesterID string          `json:"requester_id"`
	Leave       LeaveDetails    `json:"leave"`
	Levels      []ApprovalLevel `json:"levels"`
	Status      ApprovalStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DerivedStatus computes the overall status from the levels.
// Cancelled is explicit and never derived.
func (a *LeaveApproval) DerivedStatus() ApprovalStatus {
	if a.Status == ApprovalCancelled {
		return ApprovalCancelled
	}

	approved := 0
	for _, l := range a.Levels {
		switch l.Status {
		case LevelRejected:
			return ApprovalRejected
		case LevelApproved:
			approved++
		}
	}

	if approved == len(a.Levels) && approved > 0 {
		return ApprovalApproved
	}

	return ApprovalPending
}

// Level returns the level with the given number.
func (a *LeaveApproval) Level(number int) (*ApprovalLevel, bool) {
	for i := range a.Levels {
		if a.Levels[i].LevelNumber == number {
			return &a.Levels[i], true
		}
	}

	return nil, false
}

// ActiveLevel returns the lowest open level, provided every lower level is approved.
func (a *LeaveApproval) ActiveLevel() (*ApprovalLevel, bool) {
	for i := range a.Levels {
		l := &a.Levels[i]
		switch {
		case l.Status == LevelApproved:
			continue
		case l.Status.Open():
			return l, true
		default:
			return nil, false
		}
	}

	return nil, false
}

// NextLevel returns the level following number, if any.
func (a *LeaveApproval) NextLevel(number int) (*ApprovalLevel, bool) {
	return a.Level(number + 1)
}

// Clone returns a deep copy so callers never share level slices.
func (a *LeaveApproval) Clone() *LeaveApproval {
	if a == nil {
		return nil
	}

	c := *a
	c.Levels = make([]ApprovalLevel, len(a.Levels))
	copy(c.Levels, a.Levels)

	return &c
}

// LevelDecision is what an approver commits to a level.
// Overall is committed together with the level; pending keeps the chain open.
type LevelDecision struct {
	Status   LevelStatus
	ActedBy  string
	ActedAt  time.Time
	Comments *string
	Overall  ApprovalStatus
}
