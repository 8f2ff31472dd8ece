package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examforge/examforge/internal/domain/payment"
	vo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/infrastructure/persistence/mappers"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/db"
)

// LedgerRepository stores payment attempts. The unique gateway_payment_id
// index is what makes recording idempotent across concurrent deliveries.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var _ payment.LedgerRepository = (*LedgerRepository)(nil)

func (r *LedgerRepository) insertIfAbsent(tx *gorm.DB, model *models.PaymentModel) (bool, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "gateway_payment_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert payment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *LedgerRepository) RecordCompleted(ctx context.Context, e *payment.LedgerEntry) (bool, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	model := mappers.PaymentToModel(e)

	inserted, err := r.insertIfAbsent(tx, model)
	if err != nil {
		return false, err
	}
	if inserted {
		e.SetID(model.ID)
		return true, nil
	}

	// A failed attempt for the same payment id may be promoted exactly once.
	result := tx.Model(&models.PaymentModel{}).
		Where("gateway_payment_id = ? AND status = ?", model.GatewayPaymentID, vo.PaymentStatusFailed.String()).
		Updates(map[string]interface{}{
			"user_id":             model.UserID,
			"plan_id":             model.PlanID,
			"amount_minor":        model.AmountMinor,
			"currency":            model.Currency,
			"method":              model.Method,
			"gateway":             model.Gateway,
			"invoice_id":          model.InvoiceID,
			"status":              model.Status,
			"purchased_at":        model.PurchasedAt,
			"expire_at":           model.ExpireAt,
			"failure_reason":      "",
			"failure_description": "",
			"notes":               model.Notes,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to promote payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	stored, err := r.GetByGatewayPaymentID(ctx, model.GatewayPaymentID)
	if err != nil {
		return false, err
	}
	e.SetID(stored.ID())
	return true, nil
}

func (r *LedgerRepository) RecordFailed(ctx context.Context, e *payment.LedgerEntry) (bool, error) {
	model := mappers.PaymentToModel(e)
	inserted, err := r.insertIfAbsent(db.GetTxFromContext(ctx, r.db), model)
	if err != nil {
		return false, err
	}
	if inserted {
		e.SetID(model.ID)
	}
	return inserted, nil
}

func (r *LedgerRepository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*payment.LedgerEntry, error) {
	var model models.PaymentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("gateway_payment_id = ?", gatewayPaymentID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

// List returns entries newest first.
func (r *LedgerRepository) List(ctx context.Context, filter payment.ListFilter) ([]*payment.LedgerEntry, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PaymentModel{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	var rows []models.PaymentModel
	if err := query.Order("id DESC").Scopes(db.Paginate(filter.Page, pageSize)).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	entries := make([]*payment.LedgerEntry, 0, len(rows))
	for i := range rows {
		e, err := mappers.PaymentToDomain(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, nil
}
