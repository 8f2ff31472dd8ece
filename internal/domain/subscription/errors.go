package subscription

import "errors"

var (
	ErrNotFound            = errors.New("subscription not found")
	ErrVersionConflict     = errors.New("subscription was modified concurrently")
	ErrCorrelationMismatch = errors.New("gateway object does not match the live correlation")
	ErrAlreadyActive       = errors.New("subscription is already active")
	ErrNotActive           = errors.New("subscription is not active")
	ErrNoExpiry            = errors.New("subscription has no expiry date")
	ErrInvalidExpiry       = errors.New("expiry must be after the activation time")
	ErrInvalidDays         = errors.New("days must be positive")
	ErrAutoPayNotAllowed   = errors.New("auto-pay cannot be enabled for this subscription")
	ErrNoRecurringBilling  = errors.New("subscription has no recurring billing attached")
)
