package escalation

import (
	"context"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/leave-approvals/internal/api/respond"
	"github.com/aliskhannn/leave-approvals/internal/worker"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/escalation/mock.go -package=mocks
type escalationRunner interface {
	RunOnce(ctx context.Context) (worker.EscalationReport, error)
}

// Handler lets an external scheduler trigger an escalation pass.
type Handler struct {
	runner escalationRunner
}

func NewHandler(r escalationRunner) *Handler {
	return &Handler{runner: r}
}

// Run performs one escalation pass and reports what it did. A pass already
// in progress answers 409.
func (h *Handler) Run(c *ginext.Context) {
	report, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("escalation run not completed")
		respond.Error(c.Writer, err)
		return
	}

	respond.OK(c.Writer, report)
}
