package usecases

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/application/notification"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

// ExpireSubscriptionsUseCase is the periodic expiry sweep. Each row is
// re-checked inside its own UPDATE, so running it twice or alongside webhook
// handling is safe.
type ExpireSubscriptionsUseCase struct {
	subs     subscription.Repository
	plans    plan.Repository
	notifier notification.Notifier
	clock    biztime.Clock
	logger   logger.Interface
}

func NewExpireSubscriptionsUseCase(
	subs subscription.Repository,
	plans plan.Repository,
	notifier notification.Notifier,
	clock biztime.Clock,
	logger logger.Interface,
) *ExpireSubscriptionsUseCase {
	return &ExpireSubscriptionsUseCase{subs: subs, plans: plans, notifier: notifier, clock: clock, logger: logger}
}

func (uc *ExpireSubscriptionsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	expired, err := uc.subs.ExpireDue(ctx, now)
	if err != nil {
		uc.logger.Errorw("expiry sweep failed", "error", err)
		return 0, fmt.Errorf("failed to expire subscriptions: %w", err)
	}

	for _, s := range expired {
		uc.logger.Infow("subscription expired", "user_id", s.UserID(), "expire", s.Expire())
		uc.notify(ctx, s)
	}

	if len(expired) > 0 {
		uc.logger.Infow("expiry sweep completed", "expired", len(expired))
	} else {
		uc.logger.Debugw("expiry sweep completed, nothing due")
	}
	return len(expired), nil
}

func (uc *ExpireSubscriptionsUseCase) notify(ctx context.Context, s *subscription.Subscription) {
	sub := s.Subscriber()
	if sub.Email == "" {
		return
	}

	msg := notification.ExpiryMessage{
		UserID: sub.UserID,
		Name:   sub.Name,
		Email:  sub.Email,
	}
	if s.Expire() != nil {
		msg.ExpiredAt = *s.Expire()
	}
	if id := s.PlanID(); id != nil {
		if p, err := uc.plans.GetByID(ctx, *id); err == nil {
			msg.PlanTitle = p.Title()
		}
	}
	uc.notifier.NotifyExpired(ctx, msg)
}
