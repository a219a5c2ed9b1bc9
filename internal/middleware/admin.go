package middleware

import (
	"net/http"

	"earnly/internal/domain"
	"earnly/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RequireCapability rejects callers whose role lacks c. Services check the
// same gate again; this only keeps unauthorized requests off admin routes.
func RequireCapability(gate *rbac.Gate, c rbac.Capability) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := GetActor(ctx)
		if actor.ID == 0 {
			abort(ctx, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}
		if !gate.Authorize(actor.Role, c) {
			abort(ctx, http.StatusForbidden, domain.ErrAccessDenied)
			return
		}
		ctx.Next()
	}
}
