package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

type AddFreeAccessCommand struct {
	AdminID uint
	UserID  uint
	Days    int
	// PlanID is optional; zero keeps the current plan reference.
	PlanID uint
}

type AddFreeAccessUseCase struct {
	plans   plan.Repository
	mutator *services.Mutator
	status  *GetSubscriptionStatusUseCase
	clock   biztime.Clock
	logger  logger.Interface
}

func NewAddFreeAccessUseCase(
	plans plan.Repository,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	clock biztime.Clock,
	logger logger.Interface,
) *AddFreeAccessUseCase {
	return &AddFreeAccessUseCase{plans: plans, mutator: mutator, status: status, clock: clock, logger: logger}
}

func (uc *AddFreeAccessUseCase) Execute(ctx context.Context, cmd AddFreeAccessCommand) (*dto.SubscriptionStatusDTO, error) {
	if cmd.Days <= 0 {
		return nil, apperrors.NewValidationError("days must be positive")
	}

	var planID *uint
	if cmd.PlanID != 0 {
		p, err := loadPlan(ctx, uc.plans, cmd.PlanID)
		if err != nil {
			return nil, err
		}
		id := p.ID()
		planID = &id
	}

	now := uc.clock.Now()
	expire := now.AddDate(0, 0, cmd.Days)
	updated, _, err := uc.mutator.Mutate(ctx, cmd.UserID, func(s *subscription.Subscription) (bool, error) {
		return true, s.Grant(subscription.AdminGrant{PlanID: planID, At: now, Expire: expire, Free: true})
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("free access granted", "admin_id", cmd.AdminID, "user_id", cmd.UserID, "days", cmd.Days, "expire", expire)
	return uc.status.Describe(ctx, updated), nil
}
