package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/infrastructure/persistence/mappers"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
	"github.com/examforge/examforge/internal/shared/db"
	"github.com/examforge/examforge/internal/shared/logger"
)

// SubscriptionRepository persists subscriptions in the users table.
type SubscriptionRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, logger: logger}
}

var _ subscription.Repository = (*SubscriptionRepository)(nil)

func (r *SubscriptionRepository) findOne(ctx context.Context, query string, args ...interface{}) (*subscription.Subscription, error) {
	var model models.UserModel
	err := db.GetTxFromContext(ctx, r.db).
		Where(query, args...).
		Order("id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) Get(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *SubscriptionRepository) FindByCorrelation(ctx context.Context, correlation vo.Correlation) (*subscription.Subscription, error) {
	if correlation.IsZero() {
		return nil, subscription.ErrNotFound
	}
	return r.findOne(ctx, "correlation_kind = ? AND correlation_id = ?", string(correlation.Kind), correlation.ID)
}

func (r *SubscriptionRepository) FindByEmail(ctx context.Context, email string) (*subscription.Subscription, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, subscription.ErrNotFound
	}
	return r.findOne(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *SubscriptionRepository) FindByGatewayCustomer(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	if customerID == "" {
		return nil, subscription.ErrNotFound
	}
	return r.findOne(ctx, "gateway_customer_id = ?", customerID)
}

func (r *SubscriptionRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	var rows []models.UserModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_status = ? AND expire IS NOT NULL AND expire >= ? AND expire < ?",
			string(vo.StatusActive), from.UTC(), to.UTC()).
		Order("expire ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}
	return r.toDomainList(rows)
}

// Save performs a compare-and-swap on the version column.
func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	columns := mappers.SubscriptionColumns(s)
	columns["version"] = s.Version() + 1
	columns["updated_at"] = time.Now().UTC()

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.UserModel{}).
		Where("id = ? AND version = ?", s.UserID(), s.Version()).
		Updates(columns)
	if result.Error != nil {
		return fmt.Errorf("failed to save subscription: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.UserModel{}).Where("id = ?", s.UserID()).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check subscription: %w", err)
		}
		if count == 0 {
			return subscription.ErrNotFound
		}
		return subscription.ErrVersionConflict
	}

	s.SetVersion(s.Version() + 1)
	return nil
}

// ExpireDue flips overdue rows one by one. Each UPDATE carries the full
// predicate, so a row renewed between the scan and the update is left alone.
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) ([]*subscription.Subscription, error) {
	now = now.UTC()
	tx := db.GetTxFromContext(ctx, r.db)

	var candidates []models.UserModel
	err := tx.Where("subscription_status = ? AND auto_pay = ? AND expire IS NOT NULL AND expire < ?",
		string(vo.StatusActive), false, now).
		Order("id ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan due subscriptions: %w", err)
	}

	var expired []*subscription.Subscription
	for i := range candidates {
		row := &candidates[i]
		result := tx.Model(&models.UserModel{}).
			Where("id = ? AND subscription_status = ? AND auto_pay = ? AND expire IS NOT NULL AND expire < ?",
				row.ID, string(vo.StatusActive), false, now).
			Updates(map[string]interface{}{
				"subscription_status": string(vo.StatusExpired),
				"auto_renewal_count":  0,
				"auto_pay":            false,
				"version":             gorm.Expr("version + 1"),
				"updated_at":          now,
			})
		if result.Error != nil {
			r.logger.Errorw("failed to expire subscription", "user_id", row.ID, "error", result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}

		s, err := r.Get(ctx, row.ID)
		if err != nil {
			r.logger.Warnw("expired subscription could not be reloaded", "user_id", row.ID, "error", err)
			continue
		}
		expired = append(expired, s)
	}

	return expired, nil
}

func (r *SubscriptionRepository) ClearAbandoned(ctx context.Context, olderThan time.Time) (int, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("correlation_id IS NOT NULL AND correlation_id <> '' AND purchase_date IS NULL AND expire IS NULL AND pending_since IS NOT NULL AND pending_since < ?",
			olderThan.UTC()).
		Updates(map[string]interface{}{
			"correlation_kind": "",
			"correlation_id":   nil,
			"pending_plan_id":  nil,
			"pending_since":    nil,
			"plan_id":          nil,
			"gateway":          "",
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear abandoned checkouts: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *SubscriptionRepository) toDomainList(rows []models.UserModel) ([]*subscription.Subscription, error) {
	out := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		s, err := mappers.SubscriptionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
