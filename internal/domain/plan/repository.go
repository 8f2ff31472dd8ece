package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Update(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uint) (*Plan, error)
	GetByGatewayPlanID(ctx context.Context, gatewayPlanID string) (*Plan, error)
	GetByTitle(ctx context.Context, title string) (*Plan, error)
	// List returns plans ordered by id; activeOnly hides retired plans.
	List(ctx context.Context, activeOnly bool) ([]*Plan, error)
}
