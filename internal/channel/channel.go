// Package channel delivers queued notifications to users.
package channel

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// ErrSkipped means the channel has nothing to deliver to for this recipient.
var ErrSkipped = errors.New("channel not applicable to recipient")

const (
	InApp = "in_app"
	Email = "email"
	Push  = "push"
)

// Content is what a channel delivers.
type Content struct {
	NotificationID uuid.UUID
	RequestID      *string
	Type           model.NotificationType
	Title          string
	Message        string
	Link           *string
	Priority       model.Priority
}

// Channel is a delivery transport.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, recipient string, c Content) error
}

// ContentOf builds channel content from a queued notification.
func ContentOf(n model.QueuedNotification) Content {
	return Content{
		NotificationID: n.ID,
		RequestID:      n.RequestID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Link:           n.Link,
		Priority:       n.Priority,
	}
}

type directory interface {
	Lookup(ctx context.Context, userID string) (model.Identity, error)
}
