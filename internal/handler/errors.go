package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"earnly/internal/domain"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	"ACCESS_DENIED":      http.StatusForbidden,
	"NOT_FOUND":          http.StatusNotFound,
	"ALREADY_RESOLVED":   http.StatusConflict,
	"CONFLICT":           http.StatusConflict,
	"PLAN_EXPIRED":       http.StatusUnprocessableEntity,
	"QUOTA_EXCEEDED":     http.StatusUnprocessableEntity,
	"INVALID_PROOF":      http.StatusUnprocessableEntity,
	"BELOW_MINIMUM":      http.StatusUnprocessableEntity,
	"INSUFFICIENT_FUNDS": http.StatusPaymentRequired,
	"VALIDATION":         http.StatusBadRequest,
	"UNAUTHENTICATED":    http.StatusUnauthorized,
}

// respondError writes err as {"error", "code"}. Errors outside the engine's
// kinds are logged and reported without detail.
func respondError(c *gin.Context, err error) {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, domain.Validationf("%v", err))
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, domain.Validationf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func respondPage(c *gin.Context, data interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{"data": data, "total": total, "page": page, "limit": limit})
}
