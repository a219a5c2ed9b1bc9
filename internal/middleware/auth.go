package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"earnly/config"
	"earnly/internal/auth"
	"earnly/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// ActorResolver turns a token's user id into the current actor.
type ActorResolver interface {
	Actor(ctx context.Context, userID uint) (domain.Actor, error)
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": domain.Code(err)})
}

// AuthRequired validates the bearer token and stores the caller's actor in
// the context. The role comes from the user record, not the token.
func AuthRequired(cfg *config.JWTConfig, users ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		actor, err := users.Actor(c.Request.Context(), claims.UserID)
		if errors.Is(err, domain.ErrAccessDenied) {
			abort(c, http.StatusForbidden, domain.ErrAccessDenied)
			return
		}
		if err != nil {
			abort(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor returns the authenticated actor (must be used after AuthRequired).
func GetActor(c *gin.Context) domain.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	a, _ := v.(domain.Actor)
	return a
}

// SetActor is used by tests and internal callers that authenticate by other
// means.
func SetActor(c *gin.Context, a domain.Actor) { c.Set(actorKey, a) }
