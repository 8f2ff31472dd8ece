package usecases

import (
	"context"
	"errors"

	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/logger"
)

type GetSubscriptionStatusUseCase struct {
	subs     subscription.Repository
	plans    plan.Repository
	settings BillingSettings
	logger   logger.Interface
}

func NewGetSubscriptionStatusUseCase(
	subs subscription.Repository,
	plans plan.Repository,
	settings BillingSettings,
	logger logger.Interface,
) *GetSubscriptionStatusUseCase {
	return &GetSubscriptionStatusUseCase{subs: subs, plans: plans, settings: settings, logger: logger}
}

func (uc *GetSubscriptionStatusUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, userID)
	if err != nil {
		return nil, err
	}
	return uc.Describe(ctx, s), nil
}

// Describe builds the status view of an already loaded subscription.
func (uc *GetSubscriptionStatusUseCase) Describe(ctx context.Context, s *subscription.Subscription) *dto.SubscriptionStatusDTO {
	var current *plan.Plan
	if id := s.PlanID(); id != nil {
		p, err := uc.plans.GetByID(ctx, *id)
		switch {
		case err == nil:
			current = p
		case errors.Is(err, plan.ErrPlanNotFound):
			uc.logger.Warnw("subscription references a missing plan", "user_id", s.UserID(), "plan_id", *id)
		default:
			uc.logger.Errorw("failed to load plan for status", "user_id", s.UserID(), "error", err)
		}
	}
	return dto.ToSubscriptionStatusDTO(s, current, uc.settings.RenewalCap, uc.settings.Currency)
}
