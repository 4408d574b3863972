package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/leave-approvals/internal/api/handlers/approval"
	"github.com/aliskhannn/leave-approvals/internal/api/handlers/delegation"
	"github.com/aliskhannn/leave-approvals/internal/api/handlers/escalation"
	"github.com/aliskhannn/leave-approvals/internal/api/handlers/inbox"
	"github.com/aliskhannn/leave-approvals/internal/api/handlers/notification"
	"github.com/aliskhannn/leave-approvals/internal/middlewares"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Approval     *approval.Handler
	Delegation   *delegation.Handler
	Notification *notification.Handler
	Inbox        *inbox.Handler
	Escalation   *escalation.Handler
}

func New(h Handlers, metrics http.Handler) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/healthz", func(c *ginext.Context) {
		c.String(http.StatusOK, "ok")
	})
	if metrics != nil {
		e.GET("/metrics", gin.WrapH(metrics))
	}

	api := e.Group("/api")

	// operator endpoints
	{
		api.GET("/notifications", h.Notification.List)
		api.POST("/escalations/run", h.Escalation.Run)
		api.GET("/approvals/:id", h.Approval.Get)
		api.GET("/approvals/:id/history", h.Approval.History)
	}

	user := api.Group("", middlewares.ActorMiddleware())
	{
		user.POST("/approvals", h.Approval.Submit)
		user.POST("/approvals/:id/levels/:level/act", h.Approval.Act)
		user.POST("/approvals/:id/cancel", h.Approval.Cancel)
		user.GET("/pending-approvals", h.Approval.Pending)

		user.POST("/delegations", h.Delegation.Create)
		user.GET("/delegations", h.Delegation.List)
		user.DELETE("/delegations/:id", h.Delegation.Revoke)

		user.GET("/inbox", h.Inbox.List)
		user.POST("/inbox/:id/read", h.Inbox.MarkRead)
	}

	return e
}
