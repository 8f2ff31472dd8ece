package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

type PauseSubscriptionUseCase struct {
	subs    subscription.Repository
	gateway paymentgateway.Gateway
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	logger  logger.Interface
}

func NewPauseSubscriptionUseCase(
	subs subscription.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	logger logger.Interface,
) *PauseSubscriptionUseCase {
	return &PauseSubscriptionUseCase{subs: subs, gateway: gateway, mutator: mutator, status: status, logger: logger}
}

func (uc *PauseSubscriptionUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, userID)
	if err != nil {
		return nil, err
	}
	if err := requireRecurring(s); err != nil {
		return nil, mapDomainError(err)
	}
	if !s.AutoPay() {
		return uc.status.Describe(ctx, s), nil
	}

	if err := uc.gateway.PauseSubscription(ctx, s.Correlation().ID); err != nil {
		uc.logger.Errorw("failed to pause gateway subscription", "user_id", userID, "error", err)
		return nil, apperrors.NewGatewayError("failed to pause subscription at payment gateway", err.Error())
	}

	updated, _, err := uc.mutator.Mutate(ctx, userID, func(s *subscription.Subscription) (bool, error) {
		s.Pause()
		return true, nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("subscription paused", "user_id", userID)
	return uc.status.Describe(ctx, updated), nil
}
