package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/examforge/examforge/internal/application/payment/usecases"
	"github.com/examforge/examforge/internal/application/subscription/usecases"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

// SubscriptionHandler serves the signed-in user's own subscription.
type SubscriptionHandler struct {
	statusUseCase            userStatusUseCase
	subscribeUseCase         checkoutUseCase
	renewUseCase             checkoutUseCase
	confirmUseCase           confirmCheckoutUseCase
	cancelUseCase            userStatusUseCase
	pauseUseCase             userStatusUseCase
	resumeUseCase            userStatusUseCase
	cancelAutoRenewalUseCase userStatusUseCase
	logger                   logger.Interface
}

// SubscriptionUseCases groups the handler's dependencies.
type SubscriptionUseCases struct {
	Status            userStatusUseCase
	Subscribe         checkoutUseCase
	Renew             checkoutUseCase
	Confirm           confirmCheckoutUseCase
	Cancel            userStatusUseCase
	Pause             userStatusUseCase
	Resume            userStatusUseCase
	CancelAutoRenewal userStatusUseCase
}

func NewSubscriptionHandler(ucs SubscriptionUseCases, logger logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{
		statusUseCase:            ucs.Status,
		subscribeUseCase:         ucs.Subscribe,
		renewUseCase:             ucs.Renew,
		confirmUseCase:           ucs.Confirm,
		cancelUseCase:            ucs.Cancel,
		pauseUseCase:             ucs.Pause,
		resumeUseCase:            ucs.Resume,
		cancelAutoRenewalUseCase: ucs.CancelAutoRenewal,
		logger:                   logger,
	}
}

// CheckoutRequest starts a checkout for a plan.
type CheckoutRequest struct {
	PlanID      uint   `json:"plan_id" binding:"required,min=1"`
	PaymentType string `json:"payment_type" binding:"required,oneof=one-time recurring"`
}

// ConfirmCheckoutRequest carries the fields returned by the browser checkout.
type ConfirmCheckoutRequest struct {
	PaymentID      string `json:"razorpay_payment_id" binding:"required"`
	OrderID        string `json:"razorpay_order_id"`
	SubscriptionID string `json:"razorpay_subscription_id"`
	Signature      string `json:"razorpay_signature" binding:"required"`
}

// GetMine handles GET /subscriptions/me
// @Summary Current subscription
// @Tags Subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /subscriptions/me [get]
func (h *SubscriptionHandler) GetMine(c *gin.Context) {
	h.runUserAction(c, "get subscription status", h.statusUseCase, "")
}

// Subscribe handles POST /subscriptions
// @Summary Start a checkout
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CheckoutRequest true "Plan and payment type"
// @Success 201 {object} utils.APIResponse{data=dto.CheckoutDTO}
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	h.startCheckout(c, "subscribe", h.subscribeUseCase)
}

// Renew handles POST /subscriptions/renew
// @Summary Renew manually
// @Description Starts a fresh checkout; recurring billing still attached is cancelled first.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CheckoutRequest true "Plan and payment type"
// @Success 201 {object} utils.APIResponse{data=dto.CheckoutDTO}
// @Router /subscriptions/renew [post]
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	h.startCheckout(c, "manual renew", h.renewUseCase)
}

func (h *SubscriptionHandler) startCheckout(c *gin.Context, action string, uc checkoutUseCase) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid checkout request", "action", action, "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	checkout, err := uc.Execute(c.Request.Context(), usecases.SubscribeCommand{
		UserID:      userID,
		PlanID:      req.PlanID,
		PaymentType: req.PaymentType,
	})
	if err != nil {
		h.logger.Errorw("failed to start checkout", "action", action, "user_id", userID, "plan_id", req.PlanID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "checkout created", checkout)
}

// Confirm handles POST /subscriptions/confirm
// @Summary Confirm a completed checkout
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ConfirmCheckoutRequest true "Checkout callback fields"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Failure 400 {object} utils.APIResponse
// @Router /subscriptions/confirm [post]
func (h *SubscriptionHandler) Confirm(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	status, err := h.confirmUseCase.Execute(c.Request.Context(), paymentUsecases.ConfirmCheckoutCommand{
		UserID:         userID,
		PaymentID:      req.PaymentID,
		OrderID:        req.OrderID,
		SubscriptionID: req.SubscriptionID,
		Signature:      req.Signature,
	})
	if err != nil {
		h.logger.Warnw("checkout confirmation failed", "user_id", userID, "payment_id", req.PaymentID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment confirmed", status)
}

// Cancel handles POST /subscriptions/cancel
// @Summary Cancel the plan
// @Tags Subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /subscriptions/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	h.runUserAction(c, "cancel plan", h.cancelUseCase, "subscription cancelled")
}

// Pause handles POST /subscriptions/pause
// @Summary Pause recurring billing
// @Tags Subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /subscriptions/pause [post]
func (h *SubscriptionHandler) Pause(c *gin.Context) {
	h.runUserAction(c, "pause subscription", h.pauseUseCase, "subscription paused")
}

// Resume handles POST /subscriptions/resume
// @Summary Resume recurring billing
// @Tags Subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /subscriptions/resume [post]
func (h *SubscriptionHandler) Resume(c *gin.Context) {
	h.runUserAction(c, "resume subscription", h.resumeUseCase, "subscription resumed")
}

// CancelAutoRenewal handles POST /subscriptions/cancel-auto-renewal
// @Summary Stop auto-renewal, keep access until expiry
// @Tags Subscriptions
// @Produce json
// @Security Bearer
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionStatusDTO}
// @Router /subscriptions/cancel-auto-renewal [post]
func (h *SubscriptionHandler) CancelAutoRenewal(c *gin.Context) {
	h.runUserAction(c, "cancel auto renewal", h.cancelAutoRenewalUseCase, "auto-renewal cancelled")
}

func (h *SubscriptionHandler) runUserAction(c *gin.Context, action string, uc userStatusUseCase, message string) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	status, err := uc.Execute(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("subscription action failed", "action", action, "user_id", userID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, status)
}
