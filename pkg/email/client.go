// Package email sends plain-text mail over SMTP.
package email

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/mail.v2"
)

type Client struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
}

func NewClient(smtpHost string, smtpPort int, username, password, from string) *Client {
	return &Client{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		username: username,
		password: password,
		from:     from,
	}
}

func (c *Client) message(to, subject, body string) *mail.Message {
	message := mail.NewMessage()

	message.SetHeader("From", c.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)

	message.SetBody("text/plain", body)

	return message
}

// Send delivers one message. The SMTP exchange is abandoned when ctx is done.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	dialer := mail.NewDialer(c.smtpHost, c.smtpPort, c.username, c.password)
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Timeout = time.Until(deadline)
	}

	done := make(chan error, 1)
	go func() {
		done <- dialer.DialAndSend(c.message(to, subject, body))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
