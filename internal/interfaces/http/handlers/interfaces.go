package handlers

import (
	"context"

	paymentdto "github.com/examforge/examforge/internal/application/payment/dto"
	paymentUsecases "github.com/examforge/examforge/internal/application/payment/usecases"
	plandto "github.com/examforge/examforge/internal/application/plan/dto"
	planUsecases "github.com/examforge/examforge/internal/application/plan/usecases"
	subdto "github.com/examforge/examforge/internal/application/subscription/dto"
	subUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
)

// Use case interfaces consumed by the handlers. The concrete use cases
// satisfy them; tests substitute stubs.

type webhookUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.HandleWebhookCommand) error
}

type checkoutUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.SubscribeCommand) (*subdto.CheckoutDTO, error)
}

type confirmCheckoutUseCase interface {
	Execute(ctx context.Context, cmd paymentUsecases.ConfirmCheckoutCommand) (*subdto.SubscriptionStatusDTO, error)
}

// userStatusUseCase covers every single-user action that answers with the
// resulting status: status, cancel, pause, resume, cancel auto-renewal.
type userStatusUseCase interface {
	Execute(ctx context.Context, userID uint) (*subdto.SubscriptionStatusDTO, error)
}

type listPaymentsUseCase interface {
	Execute(ctx context.Context, query paymentUsecases.ListPaymentsQuery) (*paymentdto.ListPaymentsResponse, error)
}

type listPlansUseCase interface {
	Execute(ctx context.Context, query planUsecases.ListPlansQuery) ([]*plandto.PlanDTO, error)
}

type getPlanUseCase interface {
	Execute(ctx context.Context, query planUsecases.GetPlanQuery) (*plandto.PlanDTO, error)
}

type deactivatePlanUseCase interface {
	Execute(ctx context.Context, planID uint) (*plandto.PlanDTO, error)
}

type createPlanUseCase interface {
	Execute(ctx context.Context, cmd planUsecases.CreatePlanCommand) (*plandto.PlanDTO, error)
}

type updatePlanUseCase interface {
	Execute(ctx context.Context, cmd planUsecases.UpdatePlanCommand) (*plandto.PlanDTO, error)
}

type listExpiringUsersUseCase interface {
	Execute(ctx context.Context, query subUsecases.ListExpiringUsersQuery) ([]*subdto.ExpiringDayDTO, error)
}

type changeUserPlanUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.ChangeUserPlanCommand) (*subdto.SubscriptionStatusDTO, error)
}

type addFreeAccessUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.AddFreeAccessCommand) (*subdto.SubscriptionStatusDTO, error)
}

type extendUserPlanUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.ExtendUserPlanCommand) (*subdto.SubscriptionStatusDTO, error)
}

type suspendUserPlanUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.SuspendUserPlanCommand) (*subdto.SubscriptionStatusDTO, error)
}
