package channel

import (
	"context"
	"fmt"

	"github.com/aliskhannn/leave-approvals/pkg/push"
)

type pusher interface {
	Send(ctx context.Context, msg push.Message) error
}

// PushChannel forwards notifications to the push gateway.
type PushChannel struct {
	client pusher
}

func NewPush(client pusher) *PushChannel {
	return &PushChannel{client: client}
}

func (c *PushChannel) Name() string { return Push }

func (c *PushChannel) Deliver(ctx context.Context, recipient string, content Content) error {
	if recipient == "" {
		return ErrSkipped
	}

	msg := push.Message{
		UserID:   recipient,
		Title:    content.Title,
		Body:     content.Message,
		Priority: string(content.Priority),
	}
	if content.Link != nil {
		msg.Link = *content.Link
	}

	if err := c.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("send push: %w", err)
	}

	return nil
}
