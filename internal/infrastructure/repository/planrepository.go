package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/infrastructure/persistence/mappers"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
	"github.com/examforge/examforge/internal/shared/db"
	"github.com/examforge/examforge/internal/shared/logger"
)

type PlanRepository struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(db *gorm.DB, logger logger.Interface) *PlanRepository {
	return &PlanRepository{
		db:     db,
		mapper: mappers.NewPlanMapper(),
		logger: logger,
	}
}

var _ plan.Repository = (*PlanRepository)(nil)

func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	tx := db.GetTxFromContext(ctx, r.db)

	taken, err := r.titleTaken(tx, p.Title(), 0)
	if err != nil {
		return err
	}
	if taken {
		return plan.ErrDuplicateTitle
	}

	model := r.mapper.ToModel(p)
	if err := tx.Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return plan.ErrDuplicateTitle
		}
		r.logger.Errorw("failed to create plan", "title", p.Title(), "error", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	tx := db.GetTxFromContext(ctx, r.db)

	taken, err := r.titleTaken(tx, p.Title(), p.ID())
	if err != nil {
		return err
	}
	if taken {
		return plan.ErrDuplicateTitle
	}

	model := r.mapper.ToModel(p)
	result := tx.Model(&models.PlanModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":           model.Title,
			"description":     model.Description,
			"price_minor":     model.PriceMinor,
			"interval":        model.Interval,
			"gateway_plan_id": model.GatewayPlanID,
			"active":          model.Active,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return plan.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, p.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (r *PlanRepository) titleTaken(tx *gorm.DB, title string, exceptID uint) (bool, error) {
	var count int64
	query := tx.Model(&models.PlanModel{}).Where("LOWER(title) = ?", strings.ToLower(title))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check plan title: %w", err)
	}
	return count > 0, nil
}

func (r *PlanRepository) getWhere(ctx context.Context, query string, args ...interface{}) (*plan.Plan, error) {
	var model models.PlanModel
	err := db.GetTxFromContext(ctx, r.db).Where(query, args...).Order("id ASC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	return r.getWhere(ctx, "id = ?", id)
}

func (r *PlanRepository) GetByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*plan.Plan, error) {
	if gatewayPlanID == "" {
		return nil, plan.ErrPlanNotFound
	}
	return r.getWhere(ctx, "gateway_plan_id = ?", gatewayPlanID)
}

func (r *PlanRepository) GetByTitle(ctx context.Context, title string) (*plan.Plan, error) {
	return r.getWhere(ctx, "LOWER(title) = ?", strings.ToLower(strings.TrimSpace(title)))
}

func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]*plan.Plan, error) {
	var rows []*models.PlanModel
	query := db.GetTxFromContext(ctx, r.db).Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return r.mapper.ToEntities(rows), nil
}
