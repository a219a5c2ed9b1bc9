package handler

import (
	"net/http"

	"earnly/internal/domain"
	"earnly/internal/middleware"
	"earnly/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planSvc *service.PlanService
}

func NewPlanHandler(planSvc *service.PlanService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc}
}

// List handles GET /plans.
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.planSvc.ListPlans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

// Acquire handles POST /me/plan.
func (h *PlanHandler) Acquire(c *gin.Context) {
	var req struct {
		PlanID uint `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PlanID == 0 {
		respondError(c, domain.Validationf("plan_id is required"))
		return
	}
	acc, err := h.planSvc.AcquirePlan(c.Request.Context(), middleware.GetActor(c), req.PlanID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// Publish handles POST /admin/plans.
func (h *PlanHandler) Publish(c *gin.Context) {
	var req domain.PublishPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.planSvc.PublishPlan(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}
