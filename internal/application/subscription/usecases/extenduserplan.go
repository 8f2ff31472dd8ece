package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

type ExtendUserPlanCommand struct {
	AdminID uint
	UserID  uint
	Days    int
}

type ExtendUserPlanUseCase struct {
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	clock   biztime.Clock
	logger  logger.Interface
}

func NewExtendUserPlanUseCase(
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	clock biztime.Clock,
	logger logger.Interface,
) *ExtendUserPlanUseCase {
	return &ExtendUserPlanUseCase{mutator: mutator, status: status, clock: clock, logger: logger}
}

func (uc *ExtendUserPlanUseCase) Execute(ctx context.Context, cmd ExtendUserPlanCommand) (*dto.SubscriptionStatusDTO, error) {
	now := uc.clock.Now()
	updated, _, err := uc.mutator.Mutate(ctx, cmd.UserID, func(s *subscription.Subscription) (bool, error) {
		return true, s.Extend(cmd.Days, now)
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("user plan extended", "admin_id", cmd.AdminID, "user_id", cmd.UserID, "days", cmd.Days, "expire", updated.Expire())
	return uc.status.Describe(ctx, updated), nil
}
