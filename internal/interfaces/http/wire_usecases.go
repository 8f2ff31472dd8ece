package http

import (
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	paymentUsecases "github.com/examforge/examforge/internal/application/payment/usecases"
	planUsecases "github.com/examforge/examforge/internal/application/plan/usecases"
	"github.com/examforge/examforge/internal/application/subscription/services"
	subscriptionUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Payment
	capturePaymentUC          *paymentUsecases.CapturePaymentUseCase
	recordFailedPaymentUC     *paymentUsecases.RecordFailedPaymentUseCase
	handleSubscriptionEventUC *paymentUsecases.HandleSubscriptionEventUseCase
	handleWebhookUC           *paymentUsecases.HandleWebhookUseCase
	confirmCheckoutUC         *paymentUsecases.ConfirmCheckoutUseCase
	listPaymentsUC            *paymentUsecases.ListPaymentsUseCase

	// Plan
	createPlanUC     *planUsecases.CreatePlanUseCase
	updatePlanUC     *planUsecases.UpdatePlanUseCase
	listPlansUC      *planUsecases.ListPlansUseCase
	getPlanUC        *planUsecases.GetPlanUseCase
	deactivatePlanUC *planUsecases.DeactivatePlanUseCase
	importPlansUC    *planUsecases.ImportPlansUseCase

	// Subscription
	getStatusUC           *subscriptionUsecases.GetSubscriptionStatusUseCase
	subscribeUC           *subscriptionUsecases.SubscribeUseCase
	manualRenewUC         *subscriptionUsecases.ManualRenewUseCase
	cancelPlanUC          *subscriptionUsecases.CancelPlanUseCase
	pauseUC               *subscriptionUsecases.PauseSubscriptionUseCase
	resumeUC              *subscriptionUsecases.ResumeSubscriptionUseCase
	cancelAutoRenewalUC   *subscriptionUsecases.CancelAutoRenewalUseCase
	changeUserPlanUC      *subscriptionUsecases.ChangeUserPlanUseCase
	addFreeAccessUC       *subscriptionUsecases.AddFreeAccessUseCase
	extendUserPlanUC      *subscriptionUsecases.ExtendUserPlanUseCase
	suspendUserPlanUC     *subscriptionUsecases.SuspendUserPlanUseCase
	listExpiringUsersUC   *subscriptionUsecases.ListExpiringUsersUseCase
	expireSubscriptionsUC *subscriptionUsecases.ExpireSubscriptionsUseCase
	cleanupAbandonedUC    *subscriptionUsecases.CleanupAbandonedUseCase
}

func (c *Container) initUseCases() {
	r := c.repos
	billing := subscriptionUsecases.BillingSettings{
		RenewalCap:   c.cfg.Billing.RenewalCap,
		Currency:     c.cfg.Billing.Currency,
		GatewayKeyID: c.cfg.Razorpay.KeyID,
	}
	mutator := services.NewMutator(r.subscriptionRepo, r.txManager, c.log)
	resolver := planresolver.New(r.planRepo, c.log)

	ucs := &allUseCases{}

	// Subscription
	ucs.getStatusUC = subscriptionUsecases.NewGetSubscriptionStatusUseCase(r.subscriptionRepo, r.planRepo, billing, c.log)
	ucs.subscribeUC = subscriptionUsecases.NewSubscribeUseCase(r.subscriptionRepo, r.planRepo, c.gateway, mutator, billing, c.clock, c.log)
	ucs.manualRenewUC = subscriptionUsecases.NewManualRenewUseCase(ucs.subscribeUC, c.log)
	ucs.cancelPlanUC = subscriptionUsecases.NewCancelPlanUseCase(r.subscriptionRepo, c.gateway, mutator, ucs.getStatusUC, c.log)
	ucs.pauseUC = subscriptionUsecases.NewPauseSubscriptionUseCase(r.subscriptionRepo, c.gateway, mutator, ucs.getStatusUC, c.log)
	ucs.resumeUC = subscriptionUsecases.NewResumeSubscriptionUseCase(r.subscriptionRepo, c.gateway, mutator, ucs.getStatusUC, billing, c.log)
	ucs.cancelAutoRenewalUC = subscriptionUsecases.NewCancelAutoRenewalUseCase(r.subscriptionRepo, c.gateway, mutator, ucs.getStatusUC, c.log)
	ucs.changeUserPlanUC = subscriptionUsecases.NewChangeUserPlanUseCase(
		r.subscriptionRepo, r.planRepo, r.ledgerRepo, c.gateway, mutator, ucs.getStatusUC, billing, c.clock, c.log,
	)
	ucs.addFreeAccessUC = subscriptionUsecases.NewAddFreeAccessUseCase(r.planRepo, mutator, ucs.getStatusUC, c.clock, c.log)
	ucs.extendUserPlanUC = subscriptionUsecases.NewExtendUserPlanUseCase(mutator, ucs.getStatusUC, c.clock, c.log)
	ucs.suspendUserPlanUC = subscriptionUsecases.NewSuspendUserPlanUseCase(r.subscriptionRepo, c.gateway, mutator, ucs.getStatusUC, c.clock, c.log)
	ucs.listExpiringUsersUC = subscriptionUsecases.NewListExpiringUsersUseCase(r.subscriptionRepo, r.planRepo, c.clock, c.log)
	ucs.expireSubscriptionsUC = subscriptionUsecases.NewExpireSubscriptionsUseCase(r.subscriptionRepo, r.planRepo, c.notifier, c.clock, c.log)
	ucs.cleanupAbandonedUC = subscriptionUsecases.NewCleanupAbandonedUseCase(r.subscriptionRepo, c.cfg.Billing.AbandonedGrace(), c.clock, c.log)

	// Payment
	ucs.capturePaymentUC = paymentUsecases.NewCapturePaymentUseCase(
		r.subscriptionRepo, r.ledgerRepo, resolver, c.gateway, mutator, c.notifier, c.clock, c.log,
	)
	ucs.recordFailedPaymentUC = paymentUsecases.NewRecordFailedPaymentUseCase(r.subscriptionRepo, r.ledgerRepo, resolver, c.clock, c.log)
	ucs.handleSubscriptionEventUC = paymentUsecases.NewHandleSubscriptionEventUseCase(
		r.subscriptionRepo, mutator, c.cfg.Billing.RenewalCap, c.clock, c.log,
	)
	ucs.handleWebhookUC = paymentUsecases.NewHandleWebhookUseCase(
		c.verifier, r.webhookInbox, ucs.capturePaymentUC, ucs.recordFailedPaymentUC, ucs.handleSubscriptionEventUC, c.clock, c.log,
	)
	ucs.confirmCheckoutUC = paymentUsecases.NewConfirmCheckoutUseCase(
		c.verifier, c.gateway, r.subscriptionRepo, r.ledgerRepo, ucs.capturePaymentUC, ucs.getStatusUC, c.log,
	)
	ucs.listPaymentsUC = paymentUsecases.NewListPaymentsUseCase(r.ledgerRepo, c.log)

	// Plan
	ucs.createPlanUC = planUsecases.NewCreatePlanUseCase(r.planRepo, c.renderer, c.cfg.Billing.Currency, c.clock, c.log)
	ucs.updatePlanUC = planUsecases.NewUpdatePlanUseCase(r.planRepo, c.renderer, c.cfg.Billing.Currency, c.clock, c.log)
	ucs.listPlansUC = planUsecases.NewListPlansUseCase(r.planRepo, c.renderer, c.cfg.Billing.Currency, c.log)
	ucs.getPlanUC = planUsecases.NewGetPlanUseCase(r.planRepo, c.renderer, c.cfg.Billing.Currency, c.log)
	ucs.deactivatePlanUC = planUsecases.NewDeactivatePlanUseCase(r.planRepo, c.renderer, c.cfg.Billing.Currency, c.clock, c.log)
	ucs.importPlansUC = planUsecases.NewImportPlansUseCase(r.planRepo, r.txManager, c.renderer, c.clock, c.log)

	c.ucs = ucs
}
