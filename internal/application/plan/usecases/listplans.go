package usecases

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

type ListPlansQuery struct {
	IncludeInactive bool
}

type ListPlansUseCase struct {
	plans  plan.Repository
	view   planView
	logger logger.Interface
}

func NewListPlansUseCase(plans plan.Repository, renderer markdown.Renderer, currency string, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{
		plans:  plans,
		view:   planView{renderer: renderer, currency: currency, logger: logger},
		logger: logger,
	}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, query ListPlansQuery) ([]*dto.PlanDTO, error) {
	plans, err := uc.plans.List(ctx, !query.IncludeInactive)
	if err != nil {
		uc.logger.Errorw("failed to list plans", "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	out := make([]*dto.PlanDTO, 0, len(plans))
	for _, p := range plans {
		out = append(out, uc.view.toDTO(p))
	}
	return out, nil
}
