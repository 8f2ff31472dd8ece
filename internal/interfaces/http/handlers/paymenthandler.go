package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examforge/examforge/internal/application/payment/usecases"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

type PaymentHandler struct {
	listUseCase listPaymentsUseCase
	logger      logger.Interface
}

func NewPaymentHandler(listUC listPaymentsUseCase, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		listUseCase: listUC,
		logger:      logger,
	}
}

// ListMine handles GET /payments
// @Summary Own payment history
// @Tags Payments
// @Produce json
// @Security Bearer
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /payments [get]
func (h *PaymentHandler) ListMine(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.list(c, userID)
}

// ListAll handles GET /admin/payments
// @Summary All payments
// @Tags Admin
// @Produce json
// @Security Bearer
// @Param user_id query int false "Only this user"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /admin/payments [get]
func (h *PaymentHandler) ListAll(c *gin.Context) {
	var userID uint
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = uint(id)
	}
	h.list(c, userID)
}

func (h *PaymentHandler) list(c *gin.Context, userID uint) {
	page, pageSize := parsePagination(c)

	result, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListPaymentsQuery{
		UserID:   userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list payments", "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Payments, result.Total, result.Page, result.PageSize)
}
