package subscription

import (
	"context"
	"time"

	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
)

type Repository interface {
	Get(ctx context.Context, userID uint) (*Subscription, error)
	FindByCorrelation(ctx context.Context, correlation vo.Correlation) (*Subscription, error)
	FindByEmail(ctx context.Context, email string) (*Subscription, error)
	FindByGatewayCustomer(ctx context.Context, customerID string) (*Subscription, error)
	// FindExpiringBetween returns active subscriptions with from <= expire < to,
	// ordered by expire.
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*Subscription, error)

	// Save writes s if its version still matches the stored one and bumps the
	// version. A stale version yields ErrVersionConflict.
	Save(ctx context.Context, s *Subscription) error

	// ExpireDue expires every active subscription without auto-pay whose
	// expiry is before now. Each row is re-checked inside its UPDATE, and only
	// rows actually changed are returned.
	ExpireDue(ctx context.Context, now time.Time) ([]*Subscription, error)

	// ClearAbandoned clears checkouts started before olderThan that never
	// produced a purchase. The purchase check is part of the UPDATE itself.
	ClearAbandoned(ctx context.Context, olderThan time.Time) (int, error)
}
