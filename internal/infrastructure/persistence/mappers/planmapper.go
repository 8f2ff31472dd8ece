package mappers

import (
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
)

// PlanMapper converts between catalog rows and plans.
type PlanMapper interface {
	ToEntity(model *models.PlanModel) *plan.Plan
	ToModel(entity *plan.Plan) *models.PlanModel
	ToEntities(models []*models.PlanModel) []*plan.Plan
}

type planMapper struct{}

func NewPlanMapper() PlanMapper {
	return &planMapper{}
}

// ToEntity trusts stored rows; an unknown interval falls back to the default
// period length inside the domain.
func (m *planMapper) ToEntity(model *models.PlanModel) *plan.Plan {
	if model == nil {
		return nil
	}
	return plan.ReconstructPlan(
		model.ID,
		model.Title,
		model.Description,
		model.PriceMinor,
		plan.Interval(model.Interval),
		model.GatewayPlanID,
		model.Active,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *planMapper) ToModel(entity *plan.Plan) *models.PlanModel {
	if entity == nil {
		return nil
	}
	return &models.PlanModel{
		ID:            entity.ID(),
		Title:         entity.Title(),
		Description:   entity.Description(),
		PriceMinor:    entity.PriceMinor(),
		Interval:      entity.Interval().String(),
		GatewayPlanID: entity.GatewayPlanID(),
		Active:        entity.IsActive(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}
}

func (m *planMapper) ToEntities(rows []*models.PlanModel) []*plan.Plan {
	out := make([]*plan.Plan, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.ToEntity(row))
	}
	return out
}
