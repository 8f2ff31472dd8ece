package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge/internal/application/subscription/usecases"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

// AdminSubscriptionHandler lets staff adjust any user's access.
type AdminSubscriptionHandler struct {
	expiringUseCase   listExpiringUsersUseCase
	changePlanUseCase changeUserPlanUseCase
	freeAccessUseCase addFreeAccessUseCase
	extendUseCase     extendUserPlanUseCase
	suspendUseCase    suspendUserPlanUseCase
	logger            logger.Interface
}

func NewAdminSubscriptionHandler(
	expiringUC listExpiringUsersUseCase,
	changePlanUC changeUserPlanUseCase,
	freeAccessUC addFreeAccessUseCase,
	extendUC extendUserPlanUseCase,
	suspendUC suspendUserPlanUseCase,
	logger logger.Interface,
) *AdminSubscriptionHandler {
	return &AdminSubscriptionHandler{
		expiringUseCase:   expiringUC,
		changePlanUseCase: changePlanUC,
		freeAccessUseCase: freeAccessUC,
		extendUseCase:     extendUC,
		suspendUseCase:    suspendUC,
		logger:            logger,
	}
}

type ChangeUserPlanRequest struct {
	PlanID            uint   `json:"plan_id" binding:"required,min=1"`
	ManualAmountMinor int64  `json:"manual_amount_minor" binding:"min=0"`
	Note              string `json:"note" binding:"max=255"`
}

type FreeAccessRequest struct {
	Days   int  `json:"days" binding:"required,min=1,max=3650"`
	PlanID uint `json:"plan_id"`
}

type ExtendRequest struct {
	Days int `json:"days" binding:"required,min=1,max=3650"`
}

type SuspendRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ListExpiring handles GET /admin/subscriptions/expiring
// @Summary Users by expiry date
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param from query string true "First day (YYYY-MM-DD, business timezone)"
// @Param to query string true "Last day (YYYY-MM-DD, business timezone)"
// @Success 200 {object} utils.APIResponse{data=[]dto.ExpiringDayDTO}
// @Router /admin/subscriptions/expiring [get]
func (h *AdminSubscriptionHandler) ListExpiring(c *gin.Context) {
	days, err := h.expiringUseCase.Execute(c.Request.Context(), usecases.ListExpiringUsersQuery{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		h.logger.Warnw("failed to list expiring users", "from", c.Query("from"), "to", c.Query("to"), "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", days)
}

// ChangePlan handles POST /admin/users/:id/plan
// @Summary Put a user on a plan
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param request body ChangeUserPlanRequest true "Plan and optional offline payment"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /admin/users/{id}/plan [post]
func (h *AdminSubscriptionHandler) ChangePlan(c *gin.Context) {
	adminID, userID, ok := h.target(c)
	if !ok {
		return
	}

	var req ChangeUserPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	status, err := h.changePlanUseCase.Execute(c.Request.Context(), usecases.ChangeUserPlanCommand{
		AdminID:           adminID,
		UserID:            userID,
		PlanID:            req.PlanID,
		ManualAmountMinor: req.ManualAmountMinor,
		Note:              req.Note,
	})
	h.respond(c, "change user plan", userID, status, err, "plan changed")
}

// AddFreeAccess handles POST /admin/users/:id/free-access
// @Summary Grant free access
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param request body FreeAccessRequest true "Days and optional plan"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /admin/users/{id}/free-access [post]
func (h *AdminSubscriptionHandler) AddFreeAccess(c *gin.Context) {
	adminID, userID, ok := h.target(c)
	if !ok {
		return
	}

	var req FreeAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	status, err := h.freeAccessUseCase.Execute(c.Request.Context(), usecases.AddFreeAccessCommand{
		AdminID: adminID,
		UserID:  userID,
		Days:    req.Days,
		PlanID:  req.PlanID,
	})
	h.respond(c, "add free access", userID, status, err, "free access granted")
}

// Extend handles POST /admin/users/:id/extend
// @Summary Push the expiry back
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param request body ExtendRequest true "Days"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /admin/users/{id}/extend [post]
func (h *AdminSubscriptionHandler) Extend(c *gin.Context) {
	adminID, userID, ok := h.target(c)
	if !ok {
		return
	}

	var req ExtendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	status, err := h.extendUseCase.Execute(c.Request.Context(), usecases.ExtendUserPlanCommand{
		AdminID: adminID,
		UserID:  userID,
		Days:    req.Days,
	})
	h.respond(c, "extend user plan", userID, status, err, "plan extended")
}

// Suspend handles POST /admin/users/:id/suspend
// @Summary Suspend a user's plan
// @Tags Admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "User ID"
// @Param request body SuspendRequest false "Reason"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /admin/users/{id}/suspend [post]
func (h *AdminSubscriptionHandler) Suspend(c *gin.Context) {
	adminID, userID, ok := h.target(c)
	if !ok {
		return
	}

	var req SuspendRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, bindError(err))
			return
		}
	}

	status, err := h.suspendUseCase.Execute(c.Request.Context(), usecases.SuspendUserPlanCommand{
		AdminID: adminID,
		UserID:  userID,
		Reason:  req.Reason,
	})
	h.respond(c, "suspend user plan", userID, status, err, "plan suspended")
}

func (h *AdminSubscriptionHandler) target(c *gin.Context) (adminID, userID uint, ok bool) {
	adminID, ok = requireUser(c)
	if !ok {
		return 0, 0, false
	}
	userID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return 0, 0, false
	}
	return adminID, userID, true
}

func (h *AdminSubscriptionHandler) respond(c *gin.Context, action string, userID uint, status any, err error, message string) {
	if err != nil {
		h.logger.Warnw("admin subscription action failed", "action", action, "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, message, status)
}
