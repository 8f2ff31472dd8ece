package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

type SuspendUserPlanCommand struct {
	AdminID uint
	UserID  uint
	Reason  string
}

type SuspendUserPlanUseCase struct {
	subs    subscription.Repository
	gateway paymentgateway.Gateway
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	clock   biztime.Clock
	logger  logger.Interface
}

func NewSuspendUserPlanUseCase(
	subs subscription.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	clock biztime.Clock,
	logger logger.Interface,
) *SuspendUserPlanUseCase {
	return &SuspendUserPlanUseCase{subs: subs, gateway: gateway, mutator: mutator, status: status, clock: clock, logger: logger}
}

func (uc *SuspendUserPlanUseCase) Execute(ctx context.Context, cmd SuspendUserPlanCommand) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := cancelRecurring(ctx, uc.gateway, s, uc.logger); err != nil {
		uc.logger.Warnw("failed to cancel gateway subscription during suspension",
			"user_id", cmd.UserID,
			"subscription_id", s.Correlation().ID,
			"error", err,
		)
	}

	now := uc.clock.Now()
	updated, _, err := uc.mutator.Mutate(ctx, cmd.UserID, func(s *subscription.Subscription) (bool, error) {
		s.AdminSuspend(now)
		return true, nil
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("user plan suspended", "admin_id", cmd.AdminID, "user_id", cmd.UserID, "reason", cmd.Reason)
	return uc.status.Describe(ctx, updated), nil
}
