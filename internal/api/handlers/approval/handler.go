package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/api/dto"
	"github.com/aliskhannn/leave-approvals/internal/api/respond"
	"github.com/aliskhannn/leave-approvals/internal/middlewares"
	"github.com/aliskhannn/leave-approvals/internal/model"
	"github.com/aliskhannn/leave-approvals/internal/service/approval"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/approval/mock.go -package=mocks
type approvalService interface {
	Submit(ctx context.Context, req approval.SubmitRequest) (*model.LeaveApproval, error)
	Act(ctx context.Context, req approval.ActRequest) (*model.LeaveApproval, error)
	Cancel(ctx context.Context, requestID, actorID string) (*model.LeaveApproval, error)
	Get(ctx context.Context, requestID string) (*model.LeaveApproval, error)
	History(ctx context.Context, requestID string) ([]model.AuditEvent, error)
	PendingFor(ctx context.Context, userID string) ([]*model.LeaveApproval, error)
}

type Handler struct {
	service   approvalService
	validator *validator.Validate
}

func NewHandler(s approvalService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Submit opens an approval chain for a leave request on behalf of the caller.
func (h *Handler) Submit(c *ginext.Context) {
	var req dto.SubmitRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	levels := make([]approval.LevelSpec, 0, len(req.Levels))
	for _, l := range req.Levels {
		levels = append(levels, approval.LevelSpec{LevelNumber: l.LevelNumber, ApproverRole: l.ApproverRole})
	}

	a, err := h.service.Submit(c.Request.Context(), approval.SubmitRequest{
		RequestID:   req.RequestID,
		RequesterID: middlewares.Actor(c),
		Leave: model.LeaveDetails{
			StaffID:           req.StaffID,
			LeaveType:         req.LeaveType,
			StartDate:         req.StartDate,
			EndDate:           req.EndDate,
			Days:              req.Days,
			OfficerTakingOver: req.OfficerTakingOver,
		},
		Levels: levels,
	})
	if err != nil {
		h.fail(c, err, req.RequestID, "failed to submit approval")
		return
	}

	respond.Created(c.Writer, a)
}

// Act records the caller's decision on one level.
func (h *Handler) Act(c *ginext.Context) {
	requestID := c.Param("id")

	level, err := strconv.Atoi(c.Param("level"))
	if err != nil || level < 1 {
		zlog.Logger.Warn().Str("level", c.Param("level")).Msg("invalid level number")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid level number"))
		return
	}

	var req dto.ActRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	a, err := h.service.Act(c.Request.Context(), approval.ActRequest{
		RequestID:   requestID,
		LevelNumber: level,
		ActorID:     middlewares.Actor(c),
		Decision:    model.Decision(req.Decision),
		Comments:    req.Comments,
	})
	if err != nil {
		h.fail(c, err, requestID, "failed to act on approval")
		return
	}

	respond.OK(c.Writer, a)
}

func (h *Handler) Cancel(c *ginext.Context) {
	requestID := c.Param("id")

	a, err := h.service.Cancel(c.Request.Context(), requestID, middlewares.Actor(c))
	if err != nil {
		h.fail(c, err, requestID, "failed to cancel approval")
		return
	}

	respond.OK(c.Writer, a)
}

func (h *Handler) Get(c *ginext.Context) {
	requestID := c.Param("id")

	a, err := h.service.Get(c.Request.Context(), requestID)
	if err != nil {
		h.fail(c, err, requestID, "failed to get approval")
		return
	}

	respond.OK(c.Writer, a)
}

func (h *Handler) History(c *ginext.Context) {
	requestID := c.Param("id")

	events, err := h.service.History(c.Request.Context(), requestID)
	if err != nil {
		h.fail(c, err, requestID, "failed to get approval history")
		return
	}

	respond.OK(c.Writer, events)
}

// Pending lists the approvals currently waiting on the caller.
func (h *Handler) Pending(c *ginext.Context) {
	list, err := h.service.PendingFor(c.Request.Context(), middlewares.Actor(c))
	if err != nil {
		h.fail(c, err, "", "failed to list pending approvals")
		return
	}

	respond.OK(c.Writer, list)
}

func (h *Handler) fail(c *ginext.Context, err error, requestID, msg string) {
	status := respond.Status(err)

	level := zlog.Logger.Warn
	if status == http.StatusInternalServerError {
		level = zlog.Logger.Error
	}
	level().Err(err).
		Str("request_id", requestID).
		Str("actor", middlewares.Actor(c)).
		Str("kind", model.ErrorKind(err)).
		Msg(msg)

	respond.Error(c.Writer, err)
}
