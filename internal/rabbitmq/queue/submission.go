package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// SubmissionLevel is one approval level of an inbound submission.
type SubmissionLevel struct {
	LevelNumber  int    `json:"level_number"`
	ApproverRole string `json:"approver_role"`
}

// SubmissionMessage is a leave request published by the HR front office
// that needs an approval chain.
type SubmissionMessage struct {
	RequestID         string            `json:"request_id"`
	RequesterID       string            `json:"requester_id"`
	StaffID           string            `json:"staff_id"`
	LeaveType         string            `json:"leave_type"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	Days              int               `json:"days"`
	OfficerTakingOver string            `json:"officer_taking_over,omitempty"`
	Levels            []SubmissionLevel `json:"levels"`
}

// RejectedSubmission is what lands in the submissions DLQ. Body carries the raw
// payload when it could not be decoded.
type RejectedSubmission struct {
	Message    SubmissionMessage `json:"message"`
	Body       string            `json:"body,omitempty"`
	Reason     string            `json:"reason"`
	RejectedAt time.Time         `json:"rejected_at"`
}

// SubmissionQueue consumes leave submissions and dead-letters the ones that
// cannot be processed.
type SubmissionQueue struct {
	consumer  *rabbitmq.Consumer
	publisher publisher
	dlq       string
}

// NewSubmissionQueue declares the submissions queue and its DLQ on ch.
func NewSubmissionQueue(ch *rabbitmq.Channel, name, dlq string) (*SubmissionQueue, error) {
	qm := rabbitmq.NewQueueManager(ch)

	if _, err := qm.DeclareQueue(dlq, rabbitmq.QueueConfig{Durable: true}); err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	mainQ, err := qm.DeclareQueue(name, rabbitmq.QueueConfig{
		Durable: true,
		Args: map[string]interface{}{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlq,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare submissions queue: %w", err)
	}

	return &SubmissionQueue{
		consumer:  rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(mainQ.Name)),
		publisher: rabbitmq.NewPublisher(ch, ""),
		dlq:       dlq,
	}, nil
}

// Consume decodes submissions into out until the consumer stops.
// Undecodable bodies are dead-lettered as they are.
func (q *SubmissionQueue) Consume(ctx context.Context, out chan<- SubmissionMessage, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go q.decode(ctx, msgChan, out, strategy)

	return q.consumer.ConsumeWithRetry(msgChan, strategy)
}

func (q *SubmissionQueue) decode(ctx context.Context, in <-chan []byte, out chan<- SubmissionMessage, strategy retry.Strategy) {
	for body := range in {
		var msg SubmissionMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			zlog.Logger.Warn().Err(err).Msg("undecodable submission, moving to DLQ")
			if err := q.publish(RejectedSubmission{Body: string(body), Reason: err.Error()}, strategy); err != nil {
				zlog.Logger.Error().Err(err).Msg("failed to dead-letter undecodable submission")
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case out <- msg:
		}
	}
}

// DeadLetter routes a submission that could not be processed to the DLQ.
func (q *SubmissionQueue) DeadLetter(msg SubmissionMessage, reason string, strategy retry.Strategy) error {
	return q.publish(RejectedSubmission{Message: msg, Reason: reason}, strategy)
}

func (q *SubmissionQueue) publish(r RejectedSubmission, strategy retry.Strategy) error {
	r.RejectedAt = time.Now().UTC()

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal rejected submission: %w", err)
	}

	return q.publisher.PublishWithRetry(body, q.dlq, "application/json", strategy)
}
