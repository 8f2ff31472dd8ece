package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// UpdatePlanCommand changes only the fields that are set.
type UpdatePlanCommand struct {
	ID            uint
	Title         *string
	Description   *string
	PriceMinor    *int64
	Interval      *string
	GatewayPlanID *string
	Active        *bool
}

type UpdatePlanUseCase struct {
	plans    plan.Repository
	renderer markdown.Renderer
	view     planView
	clock    biztime.Clock
	logger   logger.Interface
}

func NewUpdatePlanUseCase(
	plans plan.Repository,
	renderer markdown.Renderer,
	currency string,
	clock biztime.Clock,
	logger logger.Interface,
) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{
		plans:    plans,
		renderer: renderer,
		view:     planView{renderer: renderer, currency: currency, logger: logger},
		clock:    clock,
		logger:   logger,
	}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*dto.PlanDTO, error) {
	p, err := uc.plans.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, mapPlanError(err)
	}

	title := p.Title()
	if cmd.Title != nil {
		title = uc.renderer.PlainText(*cmd.Title)
		if existing, err := findByTitle(ctx, uc.plans, title); err != nil {
			return nil, err
		} else if existing != nil && existing.ID() != p.ID() {
			return nil, mapPlanError(plan.ErrDuplicateTitle)
		}
	}
	description := p.Description()
	if cmd.Description != nil {
		description = *cmd.Description
	}
	price := p.PriceMinor()
	if cmd.PriceMinor != nil {
		price = *cmd.PriceMinor
	}
	interval := p.Interval()
	if cmd.Interval != nil {
		parsed, err := plan.ParseInterval(*cmd.Interval)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		interval = parsed
	}
	gatewayPlanID := p.GatewayPlanID()
	if cmd.GatewayPlanID != nil {
		gatewayPlanID = *cmd.GatewayPlanID
	}
	active := p.IsActive()
	if cmd.Active != nil {
		active = *cmd.Active
	}

	if err := p.Update(title, description, price, interval, gatewayPlanID, active, uc.clock.Now()); err != nil {
		return nil, mapPlanError(err)
	}
	if err := uc.plans.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to update plan", "plan_id", p.ID(), "error", err)
		return nil, mapPlanError(err)
	}

	uc.logger.Infow("plan updated", "plan_id", p.ID(), "active", p.IsActive())
	return uc.view.toDTO(p), nil
}
