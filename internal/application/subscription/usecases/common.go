package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

// BillingSettings are the tunables the subscription use cases share.
type BillingSettings struct {
	RenewalCap   int
	Currency     string
	GatewayKeyID string
}

// recurringTotalCount is the number of charges requested for a new gateway
// subscription: the first payment plus one automatic renewal.
const recurringTotalCount = 2

func loadSubscription(ctx context.Context, repo subscription.Repository, userID uint) (*subscription.Subscription, error) {
	s, err := repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return s, nil
}

func loadPlan(ctx context.Context, repo plan.Repository, planID uint) (*plan.Plan, error) {
	p, err := repo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("plan not found")
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return p, nil
}

// cancelRecurring cancels the gateway subscription bound to s, if any. A
// subscription the gateway no longer knows counts as cancelled.
func cancelRecurring(ctx context.Context, gateway paymentgateway.Gateway, s *subscription.Subscription, log logger.Interface) (bool, error) {
	c := s.Correlation()
	if !c.IsRecurring() {
		return false, nil
	}
	if err := gateway.CancelSubscription(ctx, c.ID); err != nil {
		if paymentgateway.IsNotFound(err) {
			log.Infow("gateway subscription already gone", "user_id", s.UserID(), "subscription_id", c.ID)
			return true, nil
		}
		return false, err
	}
	log.Infow("gateway subscription cancelled", "user_id", s.UserID(), "subscription_id", c.ID)
	return true, nil
}

// mapDomainError turns subscription sentinels into application errors.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, subscription.ErrNotFound):
		return apperrors.NewNotFoundError("user not found")
	case errors.Is(err, subscription.ErrAlreadyActive):
		return apperrors.NewConflictError("subscription is already active")
	case errors.Is(err, subscription.ErrVersionConflict):
		return apperrors.NewConflictError("subscription changed concurrently, please retry")
	case errors.Is(err, subscription.ErrNoExpiry),
		errors.Is(err, subscription.ErrInvalidDays),
		errors.Is(err, subscription.ErrInvalidExpiry),
		errors.Is(err, subscription.ErrAutoPayNotAllowed),
		errors.Is(err, subscription.ErrNotActive),
		errors.Is(err, subscription.ErrNoRecurringBilling):
		return apperrors.NewValidationError(err.Error())
	default:
		return err
	}
}

// requireRecurring checks that s is active with recurring billing attached.
func requireRecurring(s *subscription.Subscription) error {
	if s.Status() != vo.StatusActive {
		return subscription.ErrNotActive
	}
	if !s.Correlation().IsRecurring() {
		return subscription.ErrNoRecurringBilling
	}
	return nil
}
