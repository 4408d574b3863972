package submission

import (
	"context"
	"errors"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/rabbitmq/queue"
	"github.com/aliskhannn/leave-approvals/internal/service/approval"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/submission/mock.go -package=mocks
type approvalService interface {
	Submit(ctx context.Context, req approval.SubmitRequest) (*model.LeaveApproval, error)
}

type deadLetterer interface {
	DeadLetter(msg queue.SubmissionMessage, reason string, strategy retry.Strategy) error
}

type Handler struct {
	service approvalService
	dlq     deadLetterer
}

func NewHandler(svc approvalService, dlq deadLetterer) *Handler {
	return &Handler{
		service: svc,
		dlq:     dlq,
	}
}

// permanent reports whether retrying the submission can never succeed.
func permanent(err error) bool {
	return errors.Is(err, model.ErrInvalidConfiguration) ||
		errors.Is(err, model.ErrDelegationConflict) ||
		errors.Is(err, model.ErrNotFound)
}

func (h *Handler) HandleMessage(ctx context.Context, msg queue.SubmissionMessage, strategy retry.Strategy) {
	zlog.Logger.Info().Str("request_id", msg.RequestID).Msg("handle submission")

	var rejected error

	err := retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, err := h.service.Submit(ctx, toRequest(msg))
		if err != nil && permanent(err) {
			rejected = err
			return nil
		}
		return err
	}, strategy)

	switch {
	case rejected != nil && errors.Is(rejected, model.ErrDuplicate):
		zlog.Logger.Info().Str("request_id", msg.RequestID).Msg("submission already processed, skipping")
	case rejected != nil:
		zlog.Logger.Warn().Err(rejected).Str("request_id", msg.RequestID).Msg("submission rejected, moving to DLQ")
		h.deadLetter(msg, rejected, strategy)
	case err != nil && ctx.Err() != nil:
		// the broker already acked the delivery; the DLQ is the only place it survives
		zlog.Logger.Warn().Err(err).Str("request_id", msg.RequestID).Msg("submission interrupted by shutdown, moving to DLQ")
		h.deadLetter(msg, err, strategy)
	case err != nil:
		zlog.Logger.Error().Err(err).Str("request_id", msg.RequestID).Msg("submission failed after retries, moving to DLQ")
		h.deadLetter(msg, err, strategy)
	default:
		zlog.Logger.Info().Str("request_id", msg.RequestID).Msg("submission accepted")
	}
}

func (h *Handler) deadLetter(msg queue.SubmissionMessage, reason error, strategy retry.Strategy) {
	if h.dlq == nil {
		return
	}

	if err := h.dlq.DeadLetter(msg, reason.Error(), strategy); err != nil {
		zlog.Logger.Error().Err(err).Str("request_id", msg.RequestID).Msg("failed to dead-letter submission")
	}
}

func toRequest(msg queue.SubmissionMessage) approval.SubmitRequest {
	levels := make([]approval.LevelSpec, 0, len(msg.Levels))
	for _, l := range msg.Levels {
		levels = append(levels, approval.LevelSpec{LevelNumber: l.LevelNumber, ApproverRole: l.ApproverRole})
	}

	return approval.SubmitRequest{
		RequestID:   msg.RequestID,
		RequesterID: msg.RequesterID,
		Leave: model.LeaveDetails{
			StaffID:           msg.StaffID,
			LeaveType:         msg.LeaveType,
			StartDate:         msg.StartDate,
			EndDate:           msg.EndDate,
			Days:              msg.Days,
			OfficerTakingOver: msg.OfficerTakingOver,
		},
		Levels: levels,
	}
}
