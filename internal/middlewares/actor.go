// Package middlewares holds gin middleware shared by the API routes.
package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/leave-approvals/internal/api/respond"
)

// ActorHeader carries the id of the calling user. Authentication happens
// upstream; the service trusts this header.
const ActorHeader = "X-User-ID"

const actorKey = "actor_id"

// ActorMiddleware rejects requests without an actor and stores the actor id
// on the context.
func ActorMiddleware() func(*ginext.Context) {
	return func(c *ginext.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing %s header", ActorHeader))
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the calling user's id. It falls back to the header so
// handlers work without the middleware in tests.
func Actor(c *ginext.Context) string {
	if v, ok := c.Get(actorKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return strings.TrimSpace(c.GetHeader(ActorHeader))
}
