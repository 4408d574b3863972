package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

type inboxRepository interface {
	InsertInApp(ctx context.Context, n model.InAppNotification) error
}

// InAppChannel writes notifications to the recipient's inbox. It is the primary channel.
type InAppChannel struct {
	repo inboxRepository
	now  func() time.Time
}

func NewInApp(repo inboxRepository) *InAppChannel {
	return &InAppChannel{repo: repo, now: clock.Now}
}

func (c *InAppChannel) Name() string { return InApp }

func (c *InAppChannel) Deliver(ctx context.Context, recipient string, content Content) error {
	if recipient == "" {
		return fmt.Errorf("in-app delivery without recipient")
	}

	err := c.repo.InsertInApp(ctx, model.InAppNotification{
		ID:             uuid.New(),
		NotificationID: content.NotificationID,
		UserID:         recipient,
		Type:           content.Type,
		Title:          content.Title,
		Message:        content.Message,
		Link:           content.Link,
		CreatedAt:      c.now(),
	})
	if err != nil {
		return fmt.Errorf("insert in-app notification: %w", err)
	}

	return nil
}
