package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

type mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailChannel mails notifications to the address the directory holds for the recipient.
type EmailChannel struct {
	mailer mailer
	dir    directory
}

func NewEmail(m mailer, dir directory) *EmailChannel {
	return &EmailChannel{mailer: m, dir: dir}
}

func (c *EmailChannel) Name() string { return Email }

func (c *EmailChannel) Deliver(ctx context.Context, recipient string, content Content) error {
	user, err := c.dir.Lookup(ctx, recipient)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrSkipped
		}
		return fmt.Errorf("lookup recipient: %w", err)
	}

	if user.Email == "" || !user.Active {
		return ErrSkipped
	}

	if err := c.mailer.Send(ctx, user.Email, content.Title, emailBody(content)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

func emailBody(c Content) string {
	var b strings.Builder

	b.WriteString(c.Message)
	if c.Link != nil {
		b.WriteString("\n\n")
		b.WriteString(*c.Link)
	}

	return b.String()
}
