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

// CancelPlanUseCase drops the user's plan. Recurring billing must be
// cancelled at the gateway first; if that fails nothing changes locally.
type CancelPlanUseCase struct {
	subs    subscription.Repository
	gateway paymentgateway.Gateway
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	logger  logger.Interface
}

func NewCancelPlanUseCase(
	subs subscription.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	logger logger.Interface,
) *CancelPlanUseCase {
	return &CancelPlanUseCase{subs: subs, gateway: gateway, mutator: mutator, status: status, logger: logger}
}

func (uc *CancelPlanUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, userID)
	if err != nil {
		return nil, err
	}

	if _, err := cancelRecurring(ctx, uc.gateway, s, uc.logger); err != nil {
		uc.logger.Errorw("failed to cancel gateway subscription", "user_id", userID, "error", err)
		return nil, apperrors.NewGatewayError("failed to cancel subscription at payment gateway", err.Error())
	}

	updated, _, err := uc.mutator.Mutate(ctx, userID, func(s *subscription.Subscription) (bool, error) {
		s.CancelPlan()
		return true, nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("plan cancelled by user", "user_id", userID)
	return uc.status.Describe(ctx, updated), nil
}
