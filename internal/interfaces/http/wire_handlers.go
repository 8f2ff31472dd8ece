package http

import (
	"github.com/examforge/examforge/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	webhookHandler           *handlers.WebhookHandler
	subscriptionHandler      *handlers.SubscriptionHandler
	paymentHandler           *handlers.PaymentHandler
	planHandler              *handlers.PlanHandler
	adminSubscriptionHandler *handlers.AdminSubscriptionHandler
}

func (c *Container) initHandlers() {
	u := c.ucs
	c.hdlrs = &allHandlers{
		webhookHandler: handlers.NewWebhookHandler(u.handleWebhookUC, c.log),
		subscriptionHandler: handlers.NewSubscriptionHandler(handlers.SubscriptionUseCases{
			Status:            u.getStatusUC,
			Subscribe:         u.subscribeUC,
			Renew:             u.manualRenewUC,
			Confirm:           u.confirmCheckoutUC,
			Cancel:            u.cancelPlanUC,
			Pause:             u.pauseUC,
			Resume:            u.resumeUC,
			CancelAutoRenewal: u.cancelAutoRenewalUC,
		}, c.log),
		paymentHandler: handlers.NewPaymentHandler(u.listPaymentsUC, c.log),
		planHandler:    handlers.NewPlanHandler(u.listPlansUC, u.getPlanUC, u.createPlanUC, u.updatePlanUC, u.deactivatePlanUC, c.log),
		adminSubscriptionHandler: handlers.NewAdminSubscriptionHandler(
			u.listExpiringUsersUC,
			u.changeUserPlanUC,
			u.addFreeAccessUC,
			u.extendUserPlanUC,
			u.suspendUserPlanUC,
			c.log,
		),
	}
}
