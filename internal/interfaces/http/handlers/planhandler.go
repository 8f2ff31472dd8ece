package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge/internal/application/plan/usecases"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

type PlanHandler struct {
	listUseCase       listPlansUseCase
	getUseCase        getPlanUseCase
	createUseCase     createPlanUseCase
	updateUseCase     updatePlanUseCase
	deactivateUseCase deactivatePlanUseCase
	logger            logger.Interface
}

func NewPlanHandler(
	listUC listPlansUseCase,
	getUC getPlanUseCase,
	createUC createPlanUseCase,
	updateUC updatePlanUseCase,
	deactivateUC deactivatePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		listUseCase:       listUC,
		getUseCase:        getUC,
		createUseCase:     createUC,
		updateUseCase:     updateUC,
		deactivateUseCase: deactivateUC,
		logger:            logger,
	}
}

type CreatePlanRequest struct {
	Title         string `json:"title" binding:"required,max=128"`
	Description   string `json:"description"`
	PriceMinor    int64  `json:"price_minor" binding:"required,min=1"`
	Interval      string `json:"interval" binding:"required"`
	GatewayPlanID string `json:"gateway_plan_id" binding:"omitempty,max=64"`
}

// UpdatePlanRequest changes only the fields that are present.
type UpdatePlanRequest struct {
	Title         *string `json:"title" binding:"omitempty,max=128"`
	Description   *string `json:"description"`
	PriceMinor    *int64  `json:"price_minor" binding:"omitempty,min=1"`
	Interval      *string `json:"interval"`
	GatewayPlanID *string `json:"gateway_plan_id" binding:"omitempty,max=64"`
	Active        *bool   `json:"active"`
}

// List handles GET /plans
// @Summary Active plans
// @Tags Plans
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]dto.PlanDTO}
// @Router /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	h.list(c, usecases.ListPlansQuery{})
}

// ListAll handles GET /admin/plans
// @Summary All plans, including inactive ones
// @Tags Admin
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=[]dto.PlanDTO}
// @Router /admin/plans [get]
func (h *PlanHandler) ListAll(c *gin.Context) {
	h.list(c, usecases.ListPlansQuery{IncludeInactive: true})
}

func (h *PlanHandler) list(c *gin.Context, query usecases.ListPlansQuery) {
	plans, err := h.listUseCase.Execute(c.Request.Context(), query)
	if err != nil {
		h.logger.Errorw("failed to list plans", "include_inactive", query.IncludeInactive, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plans)
}

// Get handles GET /plans/:id
// @Summary Active plan by id
// @Tags Plans
// @Produce json
// @Param id path int true "Plan ID"
// @Success 200 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 404 {object} utils.APIResponse
// @Router /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	plan, err := h.getUseCase.Execute(c.Request.Context(), usecases.GetPlanQuery{ID: planID})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plan)
}

// Create handles POST /admin/plans
// @Summary Create a plan
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreatePlanRequest true "Plan"
// @Success 201 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 409 {object} utils.APIResponse
// @Router /admin/plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	plan, err := h.createUseCase.Execute(c.Request.Context(), usecases.CreatePlanCommand{
		Title:         req.Title,
		Description:   req.Description,
		PriceMinor:    req.PriceMinor,
		Interval:      req.Interval,
		GatewayPlanID: req.GatewayPlanID,
	})
	if err != nil {
		h.logger.Warnw("failed to create plan", "title", req.Title, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "plan created", plan)
}

// Update handles PUT /admin/plans/:id
// @Summary Update a plan
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "Plan ID"
// @Param request body UpdatePlanRequest true "Changed fields"
// @Success 200 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 404 {object} utils.APIResponse
// @Router /admin/plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	plan, err := h.updateUseCase.Execute(c.Request.Context(), usecases.UpdatePlanCommand{
		ID:            planID,
		Title:         req.Title,
		Description:   req.Description,
		PriceMinor:    req.PriceMinor,
		Interval:      req.Interval,
		GatewayPlanID: req.GatewayPlanID,
		Active:        req.Active,
	})
	if err != nil {
		h.logger.Warnw("failed to update plan", "plan_id", planID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan updated", plan)
}

// Delete handles DELETE /admin/plans/:id by deactivating the plan.
// @Summary Deactivate a plan
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param id path int true "Plan ID"
// @Success 200 {object} utils.APIResponse{data=dto.PlanDTO}
// @Failure 404 {object} utils.APIResponse
// @Router /admin/plans/{id} [delete]
func (h *PlanHandler) Delete(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	plan, err := h.deactivateUseCase.Execute(c.Request.Context(), planID)
	if err != nil {
		h.logger.Warnw("failed to deactivate plan", "plan_id", planID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "plan deactivated", plan)
}
