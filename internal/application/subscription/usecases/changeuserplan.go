package usecases

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/payment"
	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/id"
	"github.com/examforge/examforge/internal/shared/logger"
)

type ChangeUserPlanCommand struct {
	AdminID uint
	UserID  uint
	PlanID  uint
	// ManualAmountMinor books an offline payment when positive.
	ManualAmountMinor int64
	Note              string
}

// ChangeUserPlanUseCase lets an administrator put a user on a plan for one
// interval, optionally recording a payment collected outside the gateway.
type ChangeUserPlanUseCase struct {
	subs     subscription.Repository
	plans    plan.Repository
	ledger   payment.LedgerRepository
	gateway  paymentgateway.Gateway
	mutator  *services.Mutator
	status   *GetSubscriptionStatusUseCase
	settings BillingSettings
	clock    biztime.Clock
	logger   logger.Interface
}

func NewChangeUserPlanUseCase(
	subs subscription.Repository,
	plans plan.Repository,
	ledger payment.LedgerRepository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	settings BillingSettings,
	clock biztime.Clock,
	logger logger.Interface,
) *ChangeUserPlanUseCase {
	return &ChangeUserPlanUseCase{
		subs:     subs,
		plans:    plans,
		ledger:   ledger,
		gateway:  gateway,
		mutator:  mutator,
		status:   status,
		settings: settings,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *ChangeUserPlanUseCase) Execute(ctx context.Context, cmd ChangeUserPlanCommand) (*dto.SubscriptionStatusDTO, error) {
	if cmd.ManualAmountMinor < 0 {
		return nil, apperrors.NewValidationError("manual amount cannot be negative")
	}
	p, err := loadPlan(ctx, uc.plans, cmd.PlanID)
	if err != nil {
		return nil, err
	}
	s, err := loadSubscription(ctx, uc.subs, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := cancelRecurring(ctx, uc.gateway, s, uc.logger); err != nil {
		uc.logger.Warnw("failed to cancel gateway subscription before plan change", "user_id", cmd.UserID, "error", err)
	}

	now := uc.clock.Now()
	expire := p.Interval().ExpiryFrom(now)
	planID := p.ID()

	var updated *subscription.Subscription
	err = uc.mutator.Retry(ctx, func(ctx context.Context) error {
		s, err := uc.subs.Get(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if err := s.Grant(subscription.AdminGrant{PlanID: &planID, At: now, Expire: expire}); err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, s); err != nil {
			return err
		}
		updated = s

		if cmd.ManualAmountMinor == 0 {
			return nil
		}
		entry, err := payment.NewCompleted(payment.EntryParams{
			UserID:           cmd.UserID,
			PlanID:           &planID,
			AmountMinor:      cmd.ManualAmountMinor,
			Currency:         uc.settings.Currency,
			Method:           paymentvo.MethodManual,
			Gateway:          paymentvo.PaymentGatewayAdmin,
			GatewayPaymentID: id.ManualPaymentID(now, cmd.UserID),
			PurchasedAt:      now,
			Notes: map[string]any{
				"admin_id": cmd.AdminID,
				"note":     cmd.Note,
			},
		}, expire, now)
		if err != nil {
			return apperrors.NewValidationError("invalid manual payment", err.Error())
		}
		if _, err := uc.ledger.RecordCompleted(ctx, entry); err != nil {
			return fmt.Errorf("failed to record manual payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("user plan changed by admin",
		"admin_id", cmd.AdminID,
		"user_id", cmd.UserID,
		"plan_id", planID,
		"expire", expire,
		"manual_amount", cmd.ManualAmountMinor,
	)
	return uc.status.Describe(ctx, updated), nil
}
