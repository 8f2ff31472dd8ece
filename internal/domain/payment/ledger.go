// Package payment models the payment ledger and the webhook inbox.
package payment

import (
	"strings"
	"time"

	vo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
)

// LedgerEntry is one payment attempt. Entries are immutable apart from the
// failed to completed promotion of the same gateway payment id.
type LedgerEntry struct {
	id                 uint
	userID             uint
	planID             *uint
	amountMinor        int64
	currency           string
	method             vo.PaymentMethod
	gateway            vo.PaymentGateway
	gatewayPaymentID   string
	invoiceID          string
	status             vo.PaymentStatus
	purchasedAt        time.Time
	expireAt           *time.Time
	failureReason      string
	failureDescription string
	notes              map[string]any
	createdAt          time.Time
}

// EntryParams carries the fields common to every ledger entry.
type EntryParams struct {
	UserID           uint
	PlanID           *uint
	AmountMinor      int64
	Currency         string
	Method           vo.PaymentMethod
	Gateway          vo.PaymentGateway
	GatewayPaymentID string
	InvoiceID        string
	PurchasedAt      time.Time
	Notes            map[string]any
}

func (p EntryParams) validate() error {
	if strings.TrimSpace(p.GatewayPaymentID) == "" {
		return ErrPaymentIDRequired
	}
	if p.UserID == 0 {
		return ErrUserRequired
	}
	return nil
}

func newEntry(p EntryParams, status vo.PaymentStatus, now time.Time) *LedgerEntry {
	method := p.Method
	if method == "" {
		method = vo.MethodUnknown
	}
	return &LedgerEntry{
		userID:           p.UserID,
		planID:           p.PlanID,
		amountMinor:      p.AmountMinor,
		currency:         strings.ToLower(p.Currency),
		method:           method,
		gateway:          p.Gateway,
		gatewayPaymentID: strings.TrimSpace(p.GatewayPaymentID),
		invoiceID:        p.InvoiceID,
		status:           status,
		purchasedAt:      p.PurchasedAt,
		notes:            p.Notes,
		createdAt:        now,
	}
}

// NewCompleted builds the entry for a captured payment that granted access
// until expireAt.
func NewCompleted(p EntryParams, expireAt time.Time, now time.Time) (*LedgerEntry, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if p.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	e := newEntry(p, vo.PaymentStatusCompleted, now)
	e.expireAt = &expireAt
	return e, nil
}

// NewFailed builds the entry for a failed attempt. Failed attempts carry no
// expiry and never affect the subscription.
func NewFailed(p EntryParams, reason, description string, now time.Time) (*LedgerEntry, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	e := newEntry(p, vo.PaymentStatusFailed, now)
	e.failureReason = reason
	e.failureDescription = description
	return e, nil
}

// ReconstructEntry is used by the persistence layer.
func ReconstructEntry(
	id, userID uint,
	planID *uint,
	amountMinor int64,
	currency string,
	method vo.PaymentMethod,
	gateway vo.PaymentGateway,
	gatewayPaymentID, invoiceID string,
	status vo.PaymentStatus,
	purchasedAt time.Time,
	expireAt *time.Time,
	failureReason, failureDescription string,
	notes map[string]any,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		id:                 id,
		userID:             userID,
		planID:             planID,
		amountMinor:        amountMinor,
		currency:           currency,
		method:             method,
		gateway:            gateway,
		gatewayPaymentID:   gatewayPaymentID,
		invoiceID:          invoiceID,
		status:             status,
		purchasedAt:        purchasedAt,
		expireAt:           expireAt,
		failureReason:      failureReason,
		failureDescription: failureDescription,
		notes:              notes,
		createdAt:          createdAt,
	}
}

func (e *LedgerEntry) ID() uint { return e.id }
func (e *LedgerEntry) UserID() uint { return e.userID }
func (e *LedgerEntry) PlanID() *uint { return e.planID }
func (e *LedgerEntry) AmountMinor() int64 { return e.amountMinor }
func (e *LedgerEntry) Currency() string { return e.currency }
func (e *LedgerEntry) Method() vo.PaymentMethod { return e.method }
func (e *LedgerEntry) Gateway() vo.PaymentGateway { return e.gateway }
func (e *LedgerEntry) GatewayPaymentID() string { return e.gatewayPaymentID }
func (e *LedgerEntry) InvoiceID() string { return e.invoiceID }
func (e *LedgerEntry) Status() vo.PaymentStatus { return e.status }
func (e *LedgerEntry) PurchasedAt() time.Time { return e.purchasedAt }
func (e *LedgerEntry) ExpireAt() *time.Time { return e.expireAt }
func (e *LedgerEntry) FailureReason() string { return e.failureReason }
func (e *LedgerEntry) FailureDescription() string { return e.failureDescription }
func (e *LedgerEntry) Notes() map[string]any { return e.notes }
func (e *LedgerEntry) CreatedAt() time.Time { return e.createdAt }

func (e *LedgerEntry) SetID(id uint) {
	e.id = id
}

func (e *LedgerEntry) IsCompleted() bool {
	return e.status == vo.PaymentStatusCompleted
}
