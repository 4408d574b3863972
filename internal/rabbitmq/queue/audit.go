package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/leave-approvals/internal/model"
)

// AuditFeedConfig names the audit feed topology.
type AuditFeedConfig struct {
	Exchange   string
	Queue      string
	DLQ        string
	RoutingKey string
}

// publisher is the subset of *rabbitmq.Publisher the feed uses.
type publisher interface {
	PublishWithRetry(body []byte, routingKey, contentType string, strategy retry.Strategy, options ...rabbitmq.PublishingOptions) error
}

// AuditFeed publishes every audit event to a durable exchange so downstream
// consumers (reporting, compliance archive) get the full trail.
type AuditFeed struct {
	publisher  publisher
	routingKey string
	strategy   retry.Strategy
}

// NewAuditFeed declares the exchange, the feed queue and its DLQ on ch.
func NewAuditFeed(ch *rabbitmq.Channel, cfg AuditFeedConfig, strategy retry.Strategy) (*AuditFeed, error) {
	exchange := rabbitmq.NewExchange(cfg.Exchange, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	if _, err := qm.DeclareQueue(cfg.DLQ, rabbitmq.QueueConfig{Durable: true}); err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	mainArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.DLQ,
	}

	mainQ, err := qm.DeclareQueue(cfg.Queue, rabbitmq.QueueConfig{
		Durable: true,
		Args:    mainArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare audit queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, cfg.RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the audit queue: %w", err)
	}

	return newAuditFeed(rabbitmq.NewPublisher(ch, exchange.Name()), cfg.RoutingKey, strategy), nil
}

func newAuditFeed(p publisher, routingKey string, strategy retry.Strategy) *AuditFeed {
	return &AuditFeed{publisher: p, routingKey: routingKey, strategy: strategy}
}

// Publish sends one audit event. The context is not consulted by the broker client.
func (f *AuditFeed) Publish(_ context.Context, e model.AuditEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if err := f.publisher.PublishWithRetry(body, f.routingKey, "application/json", f.strategy); err != nil {
		return fmt.Errorf("publish audit event %s: %w", e.ID, err)
	}

	return nil
}
