package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditSubmitted      = "submitted"
	AuditApproved       = "approved"
	AuditRejected       = "rejected"
	AuditCancelled      = "cancelled"
	AuditActDenied      = "act_denied"
	AuditCancelDenied   = "cancel_denied"
	AuditEscalated      = "escalated"
	AuditDelivered      = "delivered"
	AuditDeliveryFailed = "delivery_failed"
	AuditDeliveryDead   = "delivery_abandoned"
)

// AuditEvent is a write-once record of a transition or delivery outcome.
type AuditEvent struct {
	ID             uuid.UUID              `json:"id"`
	RequestID      string                 `json:"request_id"`
	LevelNumber    *int                   `json:"level_number,omitempty"`
	Action         string                 `json:"action"`
	ActorID        string                 `json:"actor_id"`
	Timestamp      time.Time              `json:"timestamp"`
	PreviousStatus string                 `json:"previous_status,omitempty"`
	NewStatus      string                 `json:"new_status,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}
