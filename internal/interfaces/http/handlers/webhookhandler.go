package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	paymentUsecases "github.com/examforge/examforge/internal/application/payment/usecases"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/utils"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives gateway callbacks. The body is verified byte for
// byte, so it is read raw and never bound.
type WebhookHandler struct {
	handleUseCase webhookUseCase
	logger        logger.Interface
}

func NewWebhookHandler(handleUC webhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		handleUseCase: handleUC,
		logger:        logger,
	}
}

// Razorpay handles POST /webhooks/razorpay
// @Summary Razorpay webhook
// @Description Signed callback from Razorpay. Answers 200 for every authentic, well-formed delivery.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param X-Razorpay-Signature header string true "HMAC-SHA256 of the body"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /webhooks/razorpay [post]
func (h *WebhookHandler) Razorpay(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "unable to read request body")
		return
	}
	if len(body) > maxWebhookBodyBytes {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "webhook body too large")
		return
	}

	err = h.handleUseCase.Execute(c.Request.Context(), paymentUsecases.HandleWebhookCommand{
		Body:      body,
		Signature: c.GetHeader(constants.HeaderRazorpaySignature),
		EventID:   c.GetHeader(constants.HeaderRazorpayEventID),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "ok", nil)
}
