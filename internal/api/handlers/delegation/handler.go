package delegation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/api/dto"
	"github.com/aliskhannn/leave-approvals/internal/api/respond"
	"github.com/aliskhannn/leave-approvals/internal/middlewares"
	"github.com/aliskhannn/leave-approvals/internal/model"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/delegation/mock.go -package=mocks
type delegationService interface {
	Create(ctx context.Context, d model.Delegation) (model.Delegation, error)
	Revoke(ctx context.Context, id uuid.UUID, actorID string) error
	ListByDelegator(ctx context.Context, delegatorID string) ([]model.Delegation, error)
}

type Handler struct {
	service   delegationService
	validator *validator.Validate
}

func NewHandler(s delegationService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Create delegates the caller's approval authority for a time window.
func (h *Handler) Create(c *ginext.Context) {
	var req dto.CreateDelegationRequest

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

	actor := middlewares.Actor(c)

	d, err := h.service.Create(c.Request.Context(), model.Delegation{
		DelegatorID: actor,
		DelegateID:  req.DelegateID,
		ValidFrom:   req.ValidFrom,
		ValidTo:     req.ValidTo,
		Scope: model.DelegationScope{
			Roles:      req.Roles,
			RequestIDs: req.RequestIDs,
		},
	})
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("delegator", actor).Str("delegate", req.DelegateID).Msg("failed to create delegation")
		respond.Error(c.Writer, err)
		return
	}

	respond.Created(c.Writer, d)
}

func (h *Handler) Revoke(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	if id == uuid.Nil {
		zlog.Logger.Warn().Msg("missing id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("missing id"))
		return
	}

	if err := h.service.Revoke(c.Request.Context(), id, middlewares.Actor(c)); err != nil {
		zlog.Logger.Warn().Err(err).Interface("id", id).Msg("failed to revoke delegation")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, "delegation revoked")
}

// List returns the caller's delegations.
func (h *Handler) List(c *ginext.Context) {
	actor := middlewares.Actor(c)

	list, err := h.service.ListByDelegator(c.Request.Context(), actor)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("delegator", actor).Msg("failed to list delegations")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, list)
}
