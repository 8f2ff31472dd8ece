package payment

import "errors"

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrPaymentIDRequired  = errors.New("gateway payment id is required")
	ErrInvalidAmount      = errors.New("payment amount must be positive")
	ErrEventIDRequired    = errors.New("webhook event id is required")
	ErrUserRequired       = errors.New("payment must belong to a user")
)
