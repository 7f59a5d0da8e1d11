package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/crewlinkhq/crewlink/internal/auth"
	"github.com/crewlinkhq/crewlink/internal/models"
	"github.com/crewlinkhq/crewlink/pkg/errors"
	"github.com/crewlinkhq/crewlink/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxActorIDKey   = "actorID"
	CtxActorRoleKey = "actorRole"
)

// Auth enforces JWT authentication using the supplied JWT service and places
// the actor identity in the request context.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxActorIDKey, claims.Subject)
		c.Set(CtxActorRoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole gates a route group on the actor role set by Auth.
func RequireRole(role models.ActorRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxActorRoleKey)
		if !ok || v.(models.ActorRole) != role {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
