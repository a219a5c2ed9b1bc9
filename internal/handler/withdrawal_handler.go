package handler

import (
	"net/http"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	withdrawalSvc *service.WithdrawalService
}

func NewWithdrawalHandler(withdrawalSvc *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

// Create handles POST /me/withdrawals.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req domain.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	w, err := h.withdrawalSvc.Create(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// ListMine handles GET /me/withdrawals.
func (h *WithdrawalHandler) ListMine(c *gin.Context) {
	p, l := parsePagination(c)
	list, total, err := h.withdrawalSvc.ListMine(c.Request.Context(), middleware.GetActor(c), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, p, l)
}

// List handles GET /admin/withdrawals?status=.
func (h *WithdrawalHandler) List(c *gin.Context) {
	p, l := parsePagination(c)
	list, total, err := h.withdrawalSvc.List(c.Request.Context(), middleware.GetActor(c), c.Query("status"), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, p, l)
}

// Resolve handles POST /admin/withdrawals/:id/resolve.
func (h *WithdrawalHandler) Resolve(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Decision = strings.ToUpper(strings.TrimSpace(req.Decision))
	w, err := h.withdrawalSvc.Resolve(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
