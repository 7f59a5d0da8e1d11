package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/crewlinkhq/crewlink/internal/middleware"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// actorFromContext reconstructs the authenticated actor placed in the gin
// context by the auth middleware. The second return is false when the
// request never passed authentication.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	id := c.GetString(middleware.CtxActorIDKey)
	if id == "" {
		return services.Actor{}, false
	}

	v, ok := c.Get(middleware.CtxActorRoleKey)
	if !ok {
		return services.Actor{}, false
	}
	role, ok := v.(models.ActorRole)
	if !ok {
		return services.Actor{}, false
	}

	return services.Actor{ID: id, Role: role}, true
}
