// Package paymentgateway describes the payment gateway as the billing core
// consumes it. Amounts are always in minor units.
package paymentgateway

import (
	"context"
	"time"
)

// Gateway is the outbound API of the payment provider. Every call is bounded by
// the adapter's timeout; a timeout is reported as an error.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	FetchPlan(ctx context.Context, planID string) (*Plan, error)
	CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	PauseSubscription(ctx context.Context, subscriptionID string) error
	ResumeSubscription(ctx context.Context, subscriptionID string) error
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// WebhookVerifier authenticates and decodes webhook deliveries.
type WebhookVerifier interface {
	// VerifyWebhookSignature returns ErrSignatureMismatch when signature does
	// not match body. It accepts everything when no secret is configured.
	VerifyWebhookSignature(body []byte, signature string) error
	ParseWebhookEvent(body []byte) (*Event, error)
}

// CheckoutVerifier authenticates the signature returned to the browser by a
// completed checkout.
type CheckoutVerifier interface {
	VerifyCheckoutSignature(sig CheckoutSignature) error
}

type CreateCustomerRequest struct {
	Name    string
	Email   string
	Contact string
	Notes   Notes
}

type CreateOrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       Notes
}

type CreateSubscriptionRequest struct {
	PlanID         string
	CustomerID     string
	TotalCount     int
	Quantity       int
	CustomerNotify bool
	Notes          Notes
}

type Customer struct {
	ID      string
	Name    string
	Email   string
	Contact string
}

type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Receipt     string
	Status      string
	Notes       Notes
}

type Plan struct {
	ID          string
	Period      string
	Interval    int
	ItemName    string
	AmountMinor int64
	Currency    string
}

// Subscription statuses reported by the gateway.
const (
	SubscriptionStatusCreated       = "created"
	SubscriptionStatusAuthenticated = "authenticated"
	SubscriptionStatusActive        = "active"
	SubscriptionStatusPaused        = "paused"
	SubscriptionStatusCancelled     = "cancelled"
)

type Subscription struct {
	ID           string
	PlanID       string
	CustomerID   string
	Status       string
	TotalCount   int
	PaidCount    int
	CurrentStart *time.Time
	CurrentEnd   *time.Time
	ShortURL     string
	Notes        Notes
}

// Payment statuses reported by the gateway.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusCaptured   = "captured"
	PaymentStatusFailed     = "failed"
)

type Payment struct {
	ID               string
	OrderID          string
	InvoiceID        string
	SubscriptionID   string
	CustomerID       string
	AmountMinor      int64
	Currency         string
	Status           string
	Method           string
	Description      string
	Email            string
	Contact          string
	ErrorCode        string
	ErrorDescription string
	CreatedAt        time.Time
	Notes            Notes
}

// IsSettled reports whether the payment was at least authorized by the issuer.
func (p *Payment) IsSettled() bool {
	return p.Status == PaymentStatusCaptured || p.Status == PaymentStatusAuthorized
}

// Webhook event types handled by the billing core.
const (
	EventPaymentCaptured       = "payment.captured"
	EventPaymentFailed         = "payment.failed"
	EventOrderPaid             = "order.paid"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionCharged   = "subscription.charged"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionPaused    = "subscription.paused"
	EventSubscriptionResumed   = "subscription.resumed"
)

// Event is a decoded webhook delivery. Entities absent from the payload are nil.
type Event struct {
	Type         string
	CreatedAt    time.Time
	Payment      *Payment
	Order        *Order
	Subscription *Subscription
}

// CheckoutSignature is what the browser checkout hands back. Exactly one of
// OrderID and SubscriptionID is set.
type CheckoutSignature struct {
	PaymentID      string
	OrderID        string
	SubscriptionID string
	Signature      string
}
