package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// planView renders plans for API responses.
type planView struct {
	renderer markdown.Renderer
	currency string
	logger   logger.Interface
}

func (v planView) toDTO(p *plan.Plan) *dto.PlanDTO {
	html := ""
	if p.Description() != "" {
		rendered, err := v.renderer.ToHTMLSanitized(p.Description())
		if err != nil {
			v.logger.Warnw("failed to render plan description", "plan_id", p.ID(), "error", err)
		} else {
			html = rendered
		}
	}
	return dto.ToPlanDTO(p, html, v.currency)
}

// mapPlanError turns plan sentinels into application errors.
func mapPlanError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, plan.ErrPlanNotFound):
		return apperrors.NewNotFoundError("plan not found")
	case errors.Is(err, plan.ErrDuplicateTitle):
		return apperrors.NewConflictError("a plan with this title already exists")
	case errors.Is(err, plan.ErrTitleRequired),
		errors.Is(err, plan.ErrInvalidPrice),
		errors.Is(err, plan.ErrInvalidInterval):
		return apperrors.NewValidationError(err.Error())
	default:
		return err
	}
}

func findByTitle(ctx context.Context, repo plan.Repository, title string) (*plan.Plan, error) {
	p, err := repo.GetByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up plan by title: %w", err)
	}
	return p, nil
}
