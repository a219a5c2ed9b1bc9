package handler

import (
	"net/http"

	"earnly/internal/middleware"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	accountSvc *service.AccountService
}

func NewMeHandler(accountSvc *service.AccountService) *MeHandler {
	return &MeHandler{accountSvc: accountSvc}
}

// Account handles GET /me/account.
func (h *MeHandler) Account(c *gin.Context) {
	v, err := h.accountSvc.GetAccount(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// WalletTransactions handles GET /me/wallet/transactions.
func (h *MeHandler) WalletTransactions(c *gin.Context) {
	p, l := parsePagination(c)
	list, total, err := h.accountSvc.WalletHistory(c.Request.Context(), middleware.GetActor(c), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, p, l)
}
