package inbox

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/api/respond"
	"github.com/aliskhannn/leave-approvals/internal/clock"
	"github.com/aliskhannn/leave-approvals/internal/middlewares"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

const defaultLimit = 50

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/inbox/mock.go -package=mocks
type inboxRepository interface {
	ListInbox(ctx context.Context, userID string, limit int) ([]model.InAppNotification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string, at time.Time) error
}

// Handler serves the in-app inbox written by the primary delivery channel.
type Handler struct {
	repo inboxRepository
	now  func() time.Time
}

func NewHandler(repo inboxRepository) *Handler {
	return &Handler{repo: repo, now: clock.Now}
}

func (h *Handler) List(c *ginext.Context) {
	limit := defaultLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid limit"))
			return
		}
		limit = n
	}

	actor := middlewares.Actor(c)

	list, err := h.repo.ListInbox(c.Request.Context(), actor, limit)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", actor).Msg("failed to list inbox")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, list)
}

func (h *Handler) MarkRead(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	actor := middlewares.Actor(c)

	if err := h.repo.MarkRead(c.Request.Context(), id, actor, h.now()); err != nil {
		zlog.Logger.Warn().Err(err).Interface("id", id).Str("user_id", actor).Msg("failed to mark notification read")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, "notification marked read")
}
