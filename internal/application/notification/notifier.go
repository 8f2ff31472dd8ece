// Package notification declares the outbound user notifications emitted by
// billing transitions. Delivery is fire-and-forget: a failed send never
// affects the transition that caused it.
package notification

import (
	"context"
	"time"
)

type WelcomeMessage struct {
	UserID      uint
	Name        string
	Email       string
	PlanTitle   string
	PaymentType string
	AmountMinor int64
	Currency    string
	Expire      time.Time
	AutoPay     bool
}

type ExpiryMessage struct {
	UserID    uint
	Name      string
	Email     string
	PlanTitle string
	ExpiredAt time.Time
}

// Notifier enqueues messages. Implementations must not block the caller.
type Notifier interface {
	NotifyWelcome(ctx context.Context, msg WelcomeMessage)
	NotifyExpired(ctx context.Context, msg ExpiryMessage)
}
