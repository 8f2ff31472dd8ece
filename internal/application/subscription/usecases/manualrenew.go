package usecases

import (
	"context"

	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/shared/logger"
)

// ManualRenewUseCase starts a new checkout regardless of the current state.
// Access already paid for stays until the new payment lands; recurring
// billing still attached is cancelled on a best-effort basis.
type ManualRenewUseCase struct {
	subscribe *SubscribeUseCase
	logger    logger.Interface
}

func NewManualRenewUseCase(subscribe *SubscribeUseCase, logger logger.Interface) *ManualRenewUseCase {
	return &ManualRenewUseCase{subscribe: subscribe, logger: logger}
}

func (uc *ManualRenewUseCase) Execute(ctx context.Context, cmd SubscribeCommand) (*dto.CheckoutDTO, error) {
	uc.logger.Infow("manual renewal requested", "user_id", cmd.UserID, "plan_id", cmd.PlanID, "payment_type", cmd.PaymentType)
	return uc.subscribe.checkout(ctx, cmd, true)
}
