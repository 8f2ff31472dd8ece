package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/domain/subscription"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

type ResumeSubscriptionUseCase struct {
	subs     subscription.Repository
	gateway  paymentgateway.Gateway
	mutator  *services.Mutator
	status   *GetSubscriptionStatusUseCase
	settings BillingSettings
	logger   logger.Interface
}

func NewResumeSubscriptionUseCase(
	subs subscription.Repository,
	gateway paymentgateway.Gateway,
	mutator *services.Mutator,
	status *GetSubscriptionStatusUseCase,
	settings BillingSettings,
	logger logger.Interface,
) *ResumeSubscriptionUseCase {
	return &ResumeSubscriptionUseCase{
		subs:     subs,
		gateway:  gateway,
		mutator:  mutator,
		status:   status,
		settings: settings,
		logger:   logger,
	}
}

func (uc *ResumeSubscriptionUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	s, err := loadSubscription(ctx, uc.subs, userID)
	if err != nil {
		return nil, err
	}
	if err := requireRecurring(s); err != nil {
		return nil, mapDomainError(err)
	}
	if s.AutoPay() {
		return uc.status.Describe(ctx, s), nil
	}

	// Check locally before asking the gateway to charge again.
	probe := subscription.Reconstruct(s.Snapshot())
	if err := probe.Resume(uc.settings.RenewalCap); err != nil {
		return nil, mapDomainError(err)
	}

	if err := uc.gateway.ResumeSubscription(ctx, s.Correlation().ID); err != nil {
		uc.logger.Errorw("failed to resume gateway subscription", "user_id", userID, "error", err)
		return nil, apperrors.NewGatewayError("failed to resume subscription at payment gateway", err.Error())
	}

	updated, _, err := uc.mutator.Mutate(ctx, userID, func(s *subscription.Subscription) (bool, error) {
		return true, s.Resume(uc.settings.RenewalCap)
	})
	if err != nil {
		return nil, mapDomainError(err)
	}

	uc.logger.Infow("subscription resumed", "user_id", userID)
	return uc.status.Describe(ctx, updated), nil
}
