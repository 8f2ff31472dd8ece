package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

// CleanupAbandonedUseCase clears checkouts that never produced a payment.
// Checkouts younger than grace are left alone so a user still on the payment
// page is not reset underneath.
type CleanupAbandonedUseCase struct {
	subs   subscription.Repository
	grace  time.Duration
	clock  biztime.Clock
	logger logger.Interface
}

func NewCleanupAbandonedUseCase(
	subs subscription.Repository,
	grace time.Duration,
	clock biztime.Clock,
	logger logger.Interface,
) *CleanupAbandonedUseCase {
	return &CleanupAbandonedUseCase{subs: subs, grace: grace, clock: clock, logger: logger}
}

func (uc *CleanupAbandonedUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.clock.Now().Add(-uc.grace)
	cleared, err := uc.subs.ClearAbandoned(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("abandoned checkout cleanup failed", "error", err)
		return 0, fmt.Errorf("failed to clear abandoned checkouts: %w", err)
	}
	if cleared > 0 {
		uc.logger.Infow("abandoned checkouts cleared", "count", cleared, "cutoff", cutoff)
	}
	return cleared, nil
}
