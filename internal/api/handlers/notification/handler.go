package notification

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/api/respond"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	List(ctx context.Context, filter model.NotificationFilter) ([]model.QueuedNotification, error)
}

type Handler struct {
	service notificationService
}

func NewHandler(s notificationService) *Handler {
	return &Handler{service: s}
}

// List returns queue entries for operators, newest first. It accepts
// optional status, request_id and limit query parameters.
func (h *Handler) List(c *ginext.Context) {
	filter := model.NotificationFilter{
		Status:    model.NotificationStatus(c.Query("status")),
		RequestID: c.Query("request_id"),
		Limit:     defaultLimit,
	}

	switch filter.Status {
	case "", model.NotificationPending, model.NotificationSent, model.NotificationFailed, model.NotificationExpired:
	default:
		zlog.Logger.Warn().Str("status", string(filter.Status)).Msg("unknown notification status")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("unknown status %q", filter.Status))
		return
	}

	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxLimit {
			zlog.Logger.Warn().Str("limit", s).Msg("invalid limit")
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("limit must be between 1 and %d", maxLimit))
			return
		}
		filter.Limit = limit
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to list notifications")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, list)
}
