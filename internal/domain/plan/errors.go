package plan

import "errors"

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanInactive     = errors.New("plan is not active")
	ErrInvalidInterval  = errors.New("invalid billing interval")
	ErrInvalidPrice     = errors.New("plan price must be positive")
	ErrTitleRequired    = errors.New("plan title is required")
	ErrDuplicateTitle   = errors.New("plan title already exists")
	ErrGatewayPlanUnset = errors.New("plan has no gateway plan id")
)
