package usecases

import (
	"context"
	"strconv"
	"strings"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/id"
	"github.com/examforge/examforge/internal/shared/logger"
)

type SubscribeCommand struct {
	UserID      uint
	PlanID      uint
	PaymentType string
}

// SubscribeUseCase starts a checkout: it creates the gateway order or
// subscription and records it as the pending correlation. Nothing is stored
// when the gateway call fails.
type SubscribeUseCase struct {
	subs     subscription.Repository
	plans    plan.Repository
	gateway  paymentgateway.Gateway
	mutator  *services.Mutator
	settings BillingSettings
	clock    biztime.Clock
	logger   logger.Interface
}

func NewSubscribeUseCase(
	subs subscription.Repository,
	plans plan.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	settings BillingSettings,
	clock biztime.Clock,
	logger logger.Interface,
) *SubscribeUseCase {
	return &SubscribeUseCase{
		subs:     subs,
		plans:    plans,
		gateway:  gateway,
		mutator:  mutator,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *SubscribeUseCase) Execute(ctx context.Context, cmd SubscribeCommand) (*dto.CheckoutDTO, error) {
	return uc.checkout(ctx, cmd, false)
}

func (uc *SubscribeUseCase) checkout(ctx context.Context, cmd SubscribeCommand, renewal bool) (*dto.CheckoutDTO, error) {
	paymentType, err := vo.ParsePaymentType(cmd.PaymentType)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	s, err := loadSubscription(ctx, uc.subs, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if !renewal && s.Status().IsActive() {
		return nil, apperrors.NewConflictError("subscription is already active, use renew instead")
	}

	p, err := loadPlan(ctx, uc.plans, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, apperrors.NewValidationError("plan is not available")
	}
	if paymentType.IsRecurring() && p.GatewayPlanID() == "" {
		return nil, apperrors.NewValidationError("plan does not support recurring billing")
	}

	previous := s.Correlation()

	subscriber := s.Subscriber()
	customerID := s.GatewayCustomerID()
	if customerID == "" {
		customer, err := uc.gateway.CreateCustomer(ctx, paymentgateway.CreateCustomerRequest{
			Name:    subscriber.Name,
			Email:   subscriber.Email,
			Contact: subscriber.Phone,
			Notes:   paymentgateway.Notes{paymentgateway.NoteUserID: strconv.FormatUint(uint64(s.UserID()), 10)},
		})
		if err != nil {
			uc.logger.Warnw("failed to create gateway customer, continuing without", "user_id", s.UserID(), "error", err)
		} else {
			customerID = customer.ID
		}
	}

	currency := strings.ToUpper(uc.settings.Currency)
	notes := paymentgateway.Notes{
		paymentgateway.NotePlanID:      strconv.FormatUint(uint64(p.ID()), 10),
		paymentgateway.NoteUserID:      strconv.FormatUint(uint64(s.UserID()), 10),
		paymentgateway.NotePaymentType: paymentType.String(),
		paymentgateway.NotePlanTitle:   p.Title(),
	}

	out := &dto.CheckoutDTO{
		KeyID:       uc.settings.GatewayKeyID,
		PaymentType: paymentType.String(),
		AmountMinor: p.PriceMinor(),
		Currency:    currency,
		PlanID:      p.ID(),
		PlanTitle:   p.Title(),
		Name:        subscriber.Name,
		Email:       subscriber.Email,
		Contact:     subscriber.Phone,
	}

	var correlation vo.Correlation
	if paymentType.IsRecurring() {
		if _, err := uc.gateway.FetchPlan(ctx, p.GatewayPlanID()); err != nil {
			uc.logger.Errorw("gateway plan lookup failed", "plan_id", p.ID(), "gateway_plan_id", p.GatewayPlanID(), "error", err)
			return nil, apperrors.NewGatewayError("payment gateway plan is unavailable", err.Error())
		}
		gsub, err := uc.gateway.CreateSubscription(ctx, paymentgateway.CreateSubscriptionRequest{
			PlanID:         p.GatewayPlanID(),
			CustomerID:     customerID,
			TotalCount:     recurringTotalCount,
			Quantity:       1,
			CustomerNotify: true,
			Notes:          notes,
		})
		if err != nil {
			uc.logger.Errorw("failed to create gateway subscription", "user_id", s.UserID(), "plan_id", p.ID(), "error", err)
			return nil, apperrors.NewGatewayError("failed to create subscription at payment gateway", err.Error())
		}
		correlation = vo.Recurring(gsub.ID)
		out.SubscriptionID = gsub.ID
		out.ShortURL = gsub.ShortURL
	} else {
		order, err := uc.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
			AmountMinor: p.PriceMinor(),
			Currency:    currency,
			Receipt:     id.NewReceipt(s.UserID()),
			Notes:       notes,
		})
		if err != nil {
			uc.logger.Errorw("failed to create gateway order", "user_id", s.UserID(), "plan_id", p.ID(), "error", err)
			return nil, apperrors.NewGatewayError("failed to create order at payment gateway", err.Error())
		}
		correlation = vo.OneTime(order.ID)
		out.OrderID = order.ID
	}

	now := uc.clock.Now()
	_, _, err = uc.mutator.Mutate(ctx, s.UserID(), func(s *subscription.Subscription) (bool, error) {
		if renewal {
			s.BeginRenewalCheckout(p.ID(), paymentType, correlation, now)
		} else if err := s.BeginCheckout(p.ID(), paymentType, correlation, now); err != nil {
			return false, err
		}
		if customerID != "" && s.GatewayCustomerID() == "" {
			s.SetGatewayCustomerID(customerID)
		}
		return true, nil
	})
	if err != nil {
		uc.logger.Errorw("failed to record checkout, gateway object left orphaned",
			"user_id", cmd.UserID,
			"correlation", correlation.String(),
			"error", err,
		)
		return nil, mapDomainError(err)
	}

	// The old gateway subscription is cancelled only after the new correlation
	// is stored, so its cancellation event no longer matches this user.
	if previous.IsRecurring() && previous != correlation {
		if err := uc.gateway.CancelSubscription(ctx, previous.ID); err != nil && !paymentgateway.IsNotFound(err) {
			uc.logger.Warnw("failed to cancel previous gateway subscription",
				"user_id", cmd.UserID,
				"subscription_id", previous.ID,
				"error", err,
			)
		}
	}

	uc.logger.Infow("checkout started",
		"user_id", cmd.UserID,
		"plan_id", p.ID(),
		"payment_type", paymentType,
		"correlation", correlation.String(),
		"renewal", renewal,
	)
	return out, nil
}
