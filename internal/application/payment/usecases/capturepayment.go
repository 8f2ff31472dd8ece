package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/payment"
	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

// CaptureOutcome tells what a capture did.
type CaptureOutcome string

const (
	CaptureActivated CaptureOutcome = "activated"
	CaptureDuplicate CaptureOutcome = "duplicate"
	// CaptureRenewal is a recurring charge on an already active subscription;
	// it is booked but the renewal event moves the expiry.
	CaptureRenewal CaptureOutcome = "renewal"
	// CaptureDetached is a recurring charge whose gateway subscription is no
	// longer bound to the user, e.g. after a cancellation. It is booked only.
	CaptureDetached CaptureOutcome = "detached"
)

type CapturePaymentCommand struct {
	Payment *paymentgateway.Payment
	// Order and Subscription come from the webhook payload when present.
	Order        *paymentgateway.Order
	Subscription *paymentgateway.Subscription
	// ExpectedUserID, when set, rejects payments attributed to anyone else.
	ExpectedUserID uint
}

type CaptureResult struct {
	UserID       uint
	Outcome      CaptureOutcome
	Subscription *subscription.Subscription
	Plan         *plan.Plan
}

// CapturePaymentUseCase turns a captured gateway payment into an active
// subscription. The ledger insert and the subscription change commit together,
// and the gateway payment id makes the whole operation idempotent.
type CapturePaymentUseCase struct {
	subs     subscription.Repository
	ledger   payment.LedgerRepository
	resolver *planresolver.Resolver
	gateway  paymentgateway.Gateway
	mutator  *services.Mutator
	notifier notification.Notifier
	clock    biztime.Clock
	logger   logger.Interface
}

func NewCapturePaymentUseCase(
	subs subscription.Repository,
	ledger payment.LedgerRepository,
	resolver *planresolver.Resolver,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	notifier notification.Notifier,
	clock biztime.Clock,
	logger logger.Interface,
) *CapturePaymentUseCase {
	return &CapturePaymentUseCase{
		subs:     subs,
		ledger:   ledger,
		resolver: resolver,
		gateway:  gateway,
		mutator:  mutator,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
	}
}

// capturePlan is the attribution and activation computed before committing.
type capturePlan struct {
	userID      uint
	plan        *plan.Plan
	paymentType vo.PaymentType
	correlation vo.Correlation
	expire      time.Time
	autoPay     bool
	notes       paymentgateway.Notes
}

func (uc *CapturePaymentUseCase) Execute(ctx context.Context, cmd CapturePaymentCommand) (*CaptureResult, error) {
	p := cmd.Payment
	if p == nil || p.ID == "" {
		return nil, apperrors.NewValidationError("payment id is required")
	}
	now := uc.clock.Now()

	subscriptionID := p.SubscriptionID
	if subscriptionID == "" && cmd.Subscription != nil {
		subscriptionID = cmd.Subscription.ID
	}

	var (
		cp  *capturePlan
		err error
	)
	if subscriptionID != "" {
		cp, err = uc.planRecurring(ctx, cmd, subscriptionID, now)
	} else {
		cp, err = uc.planOneTime(ctx, cmd, now)
	}
	if err != nil {
		return nil, err
	}

	if cmd.ExpectedUserID != 0 && cp.userID != cmd.ExpectedUserID {
		uc.logger.Warnw("payment belongs to another user",
			"payment_id", p.ID,
			"expected_user_id", cmd.ExpectedUserID,
			"user_id", cp.userID,
		)
		return nil, apperrors.NewForbiddenError("payment does not belong to the current user")
	}

	return uc.commit(ctx, p, cp, now)
}

func (uc *CapturePaymentUseCase) planOneTime(ctx context.Context, cmd CapturePaymentCommand, now time.Time) (*capturePlan, error) {
	p := cmd.Payment
	orderID := p.OrderID
	if orderID == "" && cmd.Order != nil {
		orderID = cmd.Order.ID
	}

	order := cmd.Order
	if order == nil && orderID != "" {
		fetched, err := uc.gateway.FetchOrder(ctx, orderID)
		if err != nil {
			uc.logger.Warnw("failed to fetch order, using payment notes only", "order_id", orderID, "error", err)
		} else {
			order = fetched
		}
	}

	notes := p.Notes
	if order != nil {
		notes = order.Notes.Merge(p.Notes)
	}

	var correlation vo.Correlation
	if orderID != "" {
		correlation = vo.OneTime(orderID)
	}

	s, via, err := findPayer(ctx, uc.subs, correlation, notes, p.Email)
	if err != nil {
		if errors.Is(err, ErrUnattributed) {
			uc.logger.Errorw("captured payment has no matching user",
				"payment_id", p.ID,
				"order_id", orderID,
				"email", p.Email,
			)
		}
		return nil, err
	}

	in := planresolver.Input{
		NotesPlanID: notes.PlanID(),
		AmountMinor: p.AmountMinor,
		Description: describe(p, notes),
	}
	if via == byCorrelation {
		in.StoredPlanID = s.PendingPlanID()
	}

	resolved, err := uc.resolve(ctx, p, in)
	if err != nil {
		return nil, err
	}

	return &capturePlan{
		userID:      s.UserID(),
		plan:        resolved.Plan,
		paymentType: vo.PaymentTypeOneTime,
		correlation: correlation,
		expire:      resolved.Plan.Interval().ExpiryFrom(now),
		notes:       notes,
	}, nil
}

func (uc *CapturePaymentUseCase) planRecurring(ctx context.Context, cmd CapturePaymentCommand, subscriptionID string, now time.Time) (*capturePlan, error) {
	p := cmd.Payment

	gsub := cmd.Subscription
	if gsub == nil || gsub.ID != subscriptionID || gsub.CurrentEnd == nil {
		fetched, err := uc.gateway.FetchSubscription(ctx, subscriptionID)
		if err != nil {
			uc.logger.Errorw("failed to fetch gateway subscription",
				"payment_id", p.ID,
				"subscription_id", subscriptionID,
				"error", err,
			)
			return nil, apperrors.NewGatewayError("failed to fetch subscription from payment gateway", err.Error())
		}
		gsub = fetched
	}

	// Recurring charges are attributed by correlation only. commit re-checks
	// the correlation on the fresh record.
	correlation := vo.Recurring(subscriptionID)
	s, err := uc.subs.FindByCorrelation(ctx, correlation)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			uc.logger.Errorw("recurring payment has no matching user",
				"payment_id", p.ID,
				"subscription_id", subscriptionID,
			)
			return nil, ErrUnattributed
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	notes := gsub.Notes.Merge(p.Notes)
	resolved, err := uc.resolve(ctx, p, planresolver.Input{
		GatewayPlanID:     gsub.PlanID,
		StoredPlanID:      s.PendingPlanID(),
		AmountMinor:       p.AmountMinor,
		Description:       describe(p, notes),
		PreferGatewayPlan: true,
	})
	if err != nil {
		return nil, err
	}

	expire := resolved.Plan.Interval().ExpiryFrom(now)
	if gsub.CurrentEnd != nil && gsub.CurrentEnd.After(now) {
		expire = *gsub.CurrentEnd
	}

	return &capturePlan{
		userID:      s.UserID(),
		plan:        resolved.Plan,
		paymentType: vo.PaymentTypeRecurring,
		correlation: correlation,
		expire:      expire,
		autoPay:     gsub.TotalCount > 1,
		notes:       notes,
	}, nil
}

func (uc *CapturePaymentUseCase) resolve(ctx context.Context, p *paymentgateway.Payment, in planresolver.Input) (*planresolver.Resolution, error) {
	resolved, err := uc.resolver.Resolve(ctx, in)
	if err != nil {
		if planresolver.IsAmbiguity(err) {
			uc.logger.Errorw("cannot attribute payment to a plan",
				"payment_id", p.ID,
				"amount", p.AmountMinor,
				"description", p.Description,
				"error", err,
			)
		}
		return nil, err
	}
	uc.logger.Debugw("payment attributed to plan", "payment_id", p.ID, "plan_id", resolved.Plan.ID(), "source", resolved.Source)
	return resolved, nil
}

func (uc *CapturePaymentUseCase) commit(ctx context.Context, p *paymentgateway.Payment, cp *capturePlan, now time.Time) (*CaptureResult, error) {
	result := &CaptureResult{UserID: cp.userID, Plan: cp.plan}

	err := uc.mutator.Retry(ctx, func(ctx context.Context) error {
		s, err := uc.subs.Get(ctx, cp.userID)
		if err != nil {
			return err
		}

		detached := cp.paymentType.IsRecurring() && s.Correlation() != cp.correlation
		renewal := cp.paymentType.IsRecurring() && !detached &&
			s.Status().IsActive() && !s.HasPendingCheckout()

		ledgerExpire := cp.expire
		if (renewal || detached) && s.Expire() != nil {
			ledgerExpire = *s.Expire()
		}
		entry, err := uc.ledgerEntry(p, cp, ledgerExpire, now)
		if err != nil {
			return err
		}

		created, err := uc.ledger.RecordCompleted(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		result.Subscription = s
		if !created {
			result.Outcome = CaptureDuplicate
			return nil
		}
		if detached {
			result.Outcome = CaptureDetached
			return nil
		}
		if renewal {
			result.Outcome = CaptureRenewal
			return nil
		}

		correlation := s.Correlation()
		if cp.paymentType.IsRecurring() {
			correlation = cp.correlation
		} else if correlation == cp.correlation {
			correlation = vo.Correlation{}
		}

		if err := s.Activate(subscription.Activation{
			PlanID:      cp.plan.ID(),
			PaymentType: cp.paymentType,
			Gateway:     vo.GatewayRazorpay,
			At:          now,
			Expire:      cp.expire,
			AutoPay:     cp.autoPay,
			Correlation: correlation,
		}); err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		result.Outcome = CaptureActivated
		return nil
	})
	if err != nil {
		if !errors.Is(err, subscription.ErrNotFound) {
			uc.logger.Errorw("failed to apply captured payment", "payment_id", p.ID, "user_id", cp.userID, "error", err)
		}
		return nil, err
	}

	switch result.Outcome {
	case CaptureDuplicate:
		uc.logger.Infow("payment already recorded, skipping", "payment_id", p.ID, "user_id", cp.userID)
	case CaptureRenewal:
		uc.logger.Infow("recurring charge recorded", "payment_id", p.ID, "user_id", cp.userID)
	case CaptureDetached:
		uc.logger.Warnw("recurring charge booked for a subscription no longer bound to the user",
			"payment_id", p.ID,
			"user_id", cp.userID,
			"subscription_id", cp.correlation.ID,
		)
	case CaptureActivated:
		uc.logger.Infow("subscription activated",
			"payment_id", p.ID,
			"user_id", cp.userID,
			"plan_id", cp.plan.ID(),
			"payment_type", cp.paymentType,
			"expire", cp.expire,
		)
		uc.notifyWelcome(ctx, result.Subscription, cp, p)
	}
	return result, nil
}

func (uc *CapturePaymentUseCase) ledgerEntry(p *paymentgateway.Payment, cp *capturePlan, expire time.Time, now time.Time) (*payment.LedgerEntry, error) {
	planID := cp.plan.ID()
	purchasedAt := p.CreatedAt
	if purchasedAt.IsZero() {
		purchasedAt = now
	}
	return payment.NewCompleted(payment.EntryParams{
		UserID:           cp.userID,
		PlanID:           &planID,
		AmountMinor:      p.AmountMinor,
		Currency:         p.Currency,
		Method:           paymentvo.ParseMethod(p.Method),
		Gateway:          paymentvo.PaymentGatewayRazorpay,
		GatewayPaymentID: p.ID,
		InvoiceID:        p.InvoiceID,
		PurchasedAt:      purchasedAt,
		Notes:            cp.notes.ToMap(),
	}, expire, now)
}

func (uc *CapturePaymentUseCase) notifyWelcome(ctx context.Context, s *subscription.Subscription, cp *capturePlan, p *paymentgateway.Payment) {
	sub := s.Subscriber()
	if sub.Email == "" {
		return
	}
	uc.notifier.NotifyWelcome(ctx, notification.WelcomeMessage{
		UserID:      sub.UserID,
		Name:        sub.Name,
		Email:       sub.Email,
		PlanTitle:   cp.plan.Title(),
		PaymentType: cp.paymentType.String(),
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		Expire:      cp.expire,
		AutoPay:     s.AutoPay(),
	})
}

// describe picks the free text used for description matching.
func describe(p *paymentgateway.Payment, notes paymentgateway.Notes) string {
	if p.Description != "" {
		return p.Description
	}
	return notes[paymentgateway.NotePlanTitle]
}
