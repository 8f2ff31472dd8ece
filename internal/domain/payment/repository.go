package payment

import (
	"context"
	"time"
)

// ListFilter selects ledger entries. A zero UserID lists every user.
type ListFilter struct {
	UserID   uint
	Page     int
	PageSize int
}

type LedgerRepository interface {
	// RecordCompleted inserts a completed entry keyed by gateway payment id.
	// A failed entry with the same id is promoted in place. It returns false
	// when a completed entry already exists.
	RecordCompleted(ctx context.Context, e *LedgerEntry) (bool, error)
	// RecordFailed inserts a failed entry and returns false when the payment
	// id is already known.
	RecordFailed(ctx context.Context, e *LedgerEntry) (bool, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*LedgerEntry, error)
	List(ctx context.Context, filter ListFilter) ([]*LedgerEntry, int64, error)
}

type WebhookInbox interface {
	// Receive stores e unless it is already present and returns the stored
	// copy, so callers can see whether it was processed before.
	Receive(ctx context.Context, e *WebhookEvent) (*WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID, outcome string, at time.Time) error
}
