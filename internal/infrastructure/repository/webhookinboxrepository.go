package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examforge/examforge/internal/domain/payment"
	"github.com/examforge/examforge/internal/infrastructure/persistence/mappers"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
	"github.com/examforge/examforge/internal/shared/db"
)

type WebhookInboxRepository struct {
	db *gorm.DB
}

func NewWebhookInboxRepository(db *gorm.DB) *WebhookInboxRepository {
	return &WebhookInboxRepository{db: db}
}

var _ payment.WebhookInbox = (*WebhookInboxRepository)(nil)

func (r *WebhookInboxRepository) Receive(ctx context.Context, e *payment.WebhookEvent) (*payment.WebhookEvent, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	model := mappers.WebhookEventToModel(e)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model).Error; err != nil {
		return nil, fmt.Errorf("failed to store webhook event: %w", err)
	}

	var stored models.WebhookEventModel
	if err := tx.Where("event_id = ?", e.EventID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return mappers.WebhookEventToDomain(&stored), nil
}

func (r *WebhookInboxRepository) MarkProcessed(ctx context.Context, eventID, outcome string, at time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEventModel{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed_at": at.UTC(),
			"outcome":      outcome,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event %s: %w", eventID, gorm.ErrRecordNotFound)
	}
	return nil
}

// Get returns one stored event.
func (r *WebhookInboxRepository) Get(ctx context.Context, eventID string) (*payment.WebhookEvent, error) {
	var model models.WebhookEventModel
	err := db.GetTxFromContext(ctx, r.db).Where("event_id = ?", eventID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("webhook event %s not received", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return mappers.WebhookEventToDomain(&model), nil
}
