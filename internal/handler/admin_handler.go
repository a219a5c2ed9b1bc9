package handler

import (
	"net/http"
	"strconv"
	"time"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	accountSvc  *service.AccountService
	auditSvc    *service.AuditService
	settingsSvc *service.SettingsService
}

func NewAdminHandler(accountSvc *service.AccountService, auditSvc *service.AuditService, settingsSvc *service.SettingsService) *AdminHandler {
	return &AdminHandler{accountSvc: accountSvc, auditSvc: auditSvc, settingsSvc: settingsSvc}
}

// Dashboard handles GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.settingsSvc.Dashboard(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	p, l := parsePagination(c)
	users, total, err := h.accountSvc.ListUsers(c.Request.Context(), middleware.GetActor(c),
		c.Query("search"), c.Query("role"), c.Query("status"), p, l)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, users, total, p, l)
}

func (h *AdminHandler) banOrUnban(c *gin.Context, ban bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.BanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	fn := h.accountSvc.Unban
	if ban {
		fn = h.accountSvc.Ban
	}
	u, err := fn(c.Request.Context(), middleware.GetActor(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Ban handles POST /admin/users/:id/ban.
func (h *AdminHandler) Ban(c *gin.Context) { h.banOrUnban(c, true) }

// Unban handles POST /admin/users/:id/unban.
func (h *AdminHandler) Unban(c *gin.Context) { h.banOrUnban(c, false) }

// ChangeRole handles PATCH /admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req domain.RoleChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.accountSvc.ChangeRole(c.Request.Context(), middleware.GetActor(c), id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Audit handles GET /admin/audit?admin_id=&action=&from=&to=.
func (h *AdminHandler) Audit(c *gin.Context) {
	var f domain.AuditFilter
	f.Page, f.Limit = parsePagination(c)
	f.Action = c.Query("action")
	if v := c.Query("admin_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(c, domain.Validationf("invalid admin_id"))
			return
		}
		adminID := uint(id)
		f.AdminID = &adminID
	}
	for name, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(c, domain.Validationf("%s must be RFC3339", name))
			return
		}
		*dst = &t
	}
	list, total, err := h.auditSvc.Query(c.Request.Context(), middleware.GetActor(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, list, total, f.Page, f.Limit)
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingsSvc.List(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// UpdateSettings handles PATCH /admin/settings with a flat key/value object.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.settingsSvc.UpdateSettings(c.Request.Context(), middleware.GetActor(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req)})
}
