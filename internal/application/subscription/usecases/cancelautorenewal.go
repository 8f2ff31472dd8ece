package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/logger"
)

// CancelAutoRenewalUseCase stops future charges but keeps the access already
// paid for. The gateway cancel is best effort; the local change always lands.
type CancelAutoRenewalUseCase struct {
	subs    subscription.Repository
	gateway paymentgateway.Gateway
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	logger  logger.Interface
}

func NewCancelAutoRenewalUseCase(
	subs subscription.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	logger logger.Interface,
) *CancelAutoRenewalUseCase {
	return &CancelAutoRenewalUseCase{subs: subs, gateway: gateway, mutator: mutator, status: status, logger: logger}
}

func (uc *CancelAutoRenewalUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, userID)
	if err != nil {
		return nil, err
	}

	detached, err := cancelRecurring(ctx, uc.gateway, s, uc.logger)
	if err != nil {
		uc.logger.Warnw("gateway cancel failed, disabling auto-renewal locally only",
			"user_id", userID,
			"subscription_id", s.Correlation().ID,
			"error", err,
		)
	}

	updated, _, err := uc.mutator.Mutate(ctx, userID, func(s *subscription.Subscription) (bool, error) {
		s.CancelAutoRenewal(detached)
		return true, nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("auto-renewal cancelled", "user_id", userID, "gateway_cancelled", detached)
	return uc.status.Describe(ctx, updated), nil
}
