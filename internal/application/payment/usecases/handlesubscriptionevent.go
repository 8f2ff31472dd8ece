package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

// HandleSubscriptionEventUseCase applies gateway lifecycle events for
// recurring subscriptions. Events for subscriptions no longer bound to a user
// are ignored.
type HandleSubscriptionEventUseCase struct {
	subs       subscription.Repository
	mutator    *services.Mutator
	renewalCap int
	clock      biztime.Clock
	logger     logger.Interface
}

func NewHandleSubscriptionEventUseCase(
	subs subscription.Repository,
	mutator *services.Mutator,
	renewalCap int,
	clock biztime.Clock,
	logger logger.Interface,
) *HandleSubscriptionEventUseCase {
	return &HandleSubscriptionEventUseCase{
		subs:       subs,
		mutator:    mutator,
		renewalCap: renewalCap,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *HandleSubscriptionEventUseCase) Execute(ctx context.Context, eventType string, gsub *paymentgateway.Subscription) error {
	if gsub == nil || gsub.ID == "" {
		return fmt.Errorf("%w: %s without subscription entity", paymentgateway.ErrMalformedEvent, eventType)
	}

	if eventType == paymentgateway.EventSubscriptionActivated {
		uc.logger.Infow("gateway subscription activated", "subscription_id", gsub.ID, "status", gsub.Status)
		return nil
	}

	s, err := uc.subs.FindByCorrelation(ctx, vo.Recurring(gsub.ID))
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			uc.logger.Infow("no user bound to gateway subscription, ignoring event",
				"event", eventType,
				"subscription_id", gsub.ID,
			)
			return nil
		}
		return fmt.Errorf("failed to find subscription: %w", err)
	}

	now := uc.clock.Now()
	var apply func(s *subscription.Subscription) (bool, error)

	switch eventType {
	case paymentgateway.EventSubscriptionUpdated, paymentgateway.EventSubscriptionCharged:
		if gsub.CurrentEnd == nil {
			uc.logger.Warnw("renewal event without current_end, ignoring", "subscription_id", gsub.ID)
			return nil
		}
		apply = func(s *subscription.Subscription) (bool, error) {
			return s.RecordRenewal(gsub.ID, *gsub.CurrentEnd, uc.renewalCap, now)
		}
	case paymentgateway.EventSubscriptionCancelled:
		apply = func(s *subscription.Subscription) (bool, error) {
			return true, s.CancelFromGateway(gsub.ID, now)
		}
	case paymentgateway.EventSubscriptionPaused:
		apply = func(s *subscription.Subscription) (bool, error) {
			if !s.AutoPay() {
				return false, nil
			}
			s.Pause()
			return true, nil
		}
	case paymentgateway.EventSubscriptionResumed:
		apply = func(s *subscription.Subscription) (bool, error) {
			if s.AutoPay() {
				return false, nil
			}
			if err := s.Resume(uc.renewalCap); err != nil {
				uc.logger.Warnw("keeping auto-pay off on resume", "user_id", s.UserID(), "error", err)
				return false, nil
			}
			return true, nil
		}
	default:
		uc.logger.Debugw("unhandled subscription event", "event", eventType)
		return nil
	}

	updated, changed, err := uc.mutator.Mutate(ctx, s.UserID(), apply)
	if err != nil {
		if errors.Is(err, subscription.ErrCorrelationMismatch) {
			uc.logger.Infow("subscription rebound before event was applied, ignoring",
				"event", eventType,
				"subscription_id", gsub.ID,
				"user_id", s.UserID(),
			)
			return nil
		}
		return fmt.Errorf("failed to apply %s: %w", eventType, err)
	}

	if !changed {
		uc.logger.Debugw("subscription event caused no change", "event", eventType, "user_id", s.UserID())
		return nil
	}
	uc.logger.Infow("subscription event applied",
		"event", eventType,
		"user_id", s.UserID(),
		"state", updated.State(),
		"auto_pay", updated.AutoPay(),
		"auto_renewal_count", updated.AutoRenewalCount(),
	)
	return nil
}
