package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// DeactivatePlanUseCase backs plan deletion. The row stays so subscriptions
// and ledger entries can still resolve it.
type DeactivatePlanUseCase struct {
	plans  plan.Repository
	view   planView
	clock  biztime.Clock
	logger logger.Interface
}

func NewDeactivatePlanUseCase(
	plans plan.Repository,
	renderer markdown.Renderer,
	currency string,
	clock biztime.Clock,
	logger logger.Interface,
) *DeactivatePlanUseCase {
	return &DeactivatePlanUseCase{
		plans:  plans,
		view:   planView{renderer: renderer, currency: currency, logger: logger},
		clock:  clock,
		logger: logger,
	}
}

func (uc *DeactivatePlanUseCase) Execute(ctx context.Context, planID uint) (*dto.PlanDTO, error) {
	p, err := uc.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, mapPlanError(err)
	}

	if !p.Deactivate(uc.clock.Now()) {
		uc.logger.Debugw("plan already inactive", "plan_id", planID)
		return uc.view.toDTO(p), nil
	}
	if err := uc.plans.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to persist deactivation", "plan_id", planID, "error", err)
		return nil, mapPlanError(err)
	}

	uc.logger.Infow("plan deactivated", "plan_id", planID)
	return uc.view.toDTO(p), nil
}
