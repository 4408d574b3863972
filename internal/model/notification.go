package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies what a queued notification announces.
type NotificationType string

const (
	NotificationSubmitted  NotificationType = "submitted"
	NotificationDecision   NotificationType = "decision"
	NotificationEscalation NotificationType = "escalation"
	NotificationCancelled  NotificationType = "cancelled"
)

// NotificationStatus is the delivery state of a queued notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationExpired NotificationStatus = "expired"
)

// Terminal reports whether the status is final.
func (s NotificationStatus) Terminal() bool {
	return s == NotificationSent || s == NotificationFailed || s == NotificationExpired
}

// Priority orders dispatch; it never affects eviction.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank returns the numeric weight of the priority, higher dispatches first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// QueuedNotification represents a pending or delivered entry in the notification queue.
type QueuedNotification struct {
	ID               uuid.UUID          `json:"id"`
	RecipientUserID  *string            `json:"recipient_user_id,omitempty"`  // user to notify
	RecipientStaffID *string            `json:"recipient_staff_id,omitempty"` // staff record to notify
	RequestID        *string            `json:"request_id,omitempty"`         // leave request the notice refers to
	Type             NotificationType   `json:"type"`
	Title            string             `json:"title"`
	Message          string             `json:"message"`
	Link             *string            `json:"link,omitempty"`
	Priority         Priority           `json:"priority"`
	DeduplicationKey string             `json:"deduplication_key"` // derived from recipient, type, title, message
	Status           NotificationStatus `json:"status"`
	DeliveryAttempts int                `json:"delivery_attempts"`
	LastError        *string            `json:"last_error,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	SentAt           *time.Time         `json:"sent_at,omitempty"`
	ExpiresAt        time.Time          `json:"expires_at"`
}

// Recipient returns the identifier deliveries are addressed to.
func (n QueuedNotification) Recipient() string {
	if n.RecipientUserID != nil {
		return *n.RecipientUserID
	}
	if n.RecipientStaffID != nil {
		return *n.RecipientStaffID
	}
	return ""
}

// InAppNotification is the inbox record written by the primary channel.
type InAppNotification struct {
	ID             uuid.UUID        `json:"id"`
	NotificationID uuid.UUID        `json:"notification_id"`
	UserID         string           `json:"user_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Link           *string          `json:"link,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	ReadAt         *time.Time       `json:"read_at,omitempty"`
}

// NotificationFilter narrows administrative listings of the queue.
type NotificationFilter struct {
	Status    NotificationStatus
	RequestID string
	Limit     int
}
