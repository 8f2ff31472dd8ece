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

type CreatePlanCommand struct {
	Title         string
	Description   string
	PriceMinor    int64
	Interval      string
	GatewayPlanID string
}

type CreatePlanUseCase struct {
	plans    plan.Repository
	renderer markdown.Renderer
	view     planView
	clock    biztime.Clock
	logger   logger.Interface
}

func NewCreatePlanUseCase(
	plans plan.Repository,
	renderer markdown.Renderer,
	currency string,
	clock biztime.Clock,
	logger logger.Interface,
) *CreatePlanUseCase {
	return &CreatePlanUseCase{
		plans:    plans,
		renderer: renderer,
		view:     planView{renderer: renderer, currency: currency, logger: logger},
		clock:    clock,
		logger:   logger,
	}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*dto.PlanDTO, error) {
	interval, err := plan.ParseInterval(cmd.Interval)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	title := uc.renderer.PlainText(cmd.Title)
	existing, err := findByTitle(ctx, uc.plans, title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, mapPlanError(plan.ErrDuplicateTitle)
	}

	p, err := plan.NewPlan(title, cmd.Description, cmd.PriceMinor, interval, cmd.GatewayPlanID, uc.clock.Now())
	if err != nil {
		return nil, mapPlanError(err)
	}
	if err := uc.plans.Create(ctx, p); err != nil {
		uc.logger.Errorw("failed to persist plan", "title", title, "error", err)
		return nil, mapPlanError(err)
	}

	uc.logger.Infow("plan created", "plan_id", p.ID(), "title", p.Title(), "price_minor", p.PriceMinor(), "interval", p.Interval())
	return uc.view.toDTO(p), nil
}
