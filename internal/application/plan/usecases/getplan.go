package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// GetPlanQuery loads one plan. Inactive plans are reported as not found
// unless IncludeInactive is set.
type GetPlanQuery struct {
	ID              uint
	IncludeInactive bool
}

type GetPlanUseCase struct {
	plans  plan.Repository
	view   planView
	logger logger.Interface
}

func NewGetPlanUseCase(plans plan.Repository, renderer markdown.Renderer, currency string, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{
		plans:  plans,
		view:   planView{renderer: renderer, currency: currency, logger: logger},
		logger: logger,
	}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, query GetPlanQuery) (*dto.PlanDTO, error) {
	p, err := uc.plans.GetByID(ctx, query.ID)
	if err != nil {
		return nil, mapPlanError(err)
	}
	if !p.IsActive() && !query.IncludeInactive {
		return nil, mapPlanError(plan.ErrPlanNotFound)
	}
	return uc.view.toDTO(p), nil
}
