package dto

import "time"

// PlanSummaryDTO is the plan as embedded in subscription views.
type PlanSummaryDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	PriceMinor  int64  `json:"price_minor"`
	PriceLabel  string `json:"price_label"`
	Interval    string `json:"interval"`
	IntervalDay int    `json:"interval_days"`
}

// SubscriptionStatusDTO answers "what does this user currently have".
type SubscriptionStatusDTO struct {
	UserID             uint            `json:"user_id"`
	HasSubscription    bool            `json:"has_subscription"`
	State              string          `json:"state"`
	Status             string          `json:"status"`
	Plan               *PlanSummaryDTO `json:"plan,omitempty"`
	Expire             *time.Time      `json:"expire,omitempty"`
	AutoPay            bool            `json:"auto_pay"`
	AutoRenewalCount   int             `json:"auto_renewal_count"`
	CanAutoRenew       bool            `json:"can_auto_renew"`
	NeedsManualRenewal bool            `json:"needs_manual_renewal"`
	Gateway            string          `json:"gateway"`
	PaymentType        string          `json:"payment_type"`
	Free               bool            `json:"free"`
	PendingCheckout    bool            `json:"pending_checkout"`
	Message            string          `json:"message"`
}

// CheckoutDTO carries what the browser checkout needs to collect a payment.
type CheckoutDTO struct {
	KeyID          string `json:"key_id"`
	PaymentType    string `json:"payment_type"`
	OrderID        string `json:"order_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	ShortURL       string `json:"short_url,omitempty"`
	AmountMinor    int64  `json:"amount_minor"`
	Currency       string `json:"currency"`
	PlanID         uint   `json:"plan_id"`
	PlanTitle      string `json:"plan_title"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Contact        string `json:"contact,omitempty"`
}

// ExpiringUserDTO is one row of the expiry calendar.
type ExpiringUserDTO struct {
	UserID      uint      `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PlanID      *uint     `json:"plan_id,omitempty"`
	PlanTitle   string    `json:"plan_title,omitempty"`
	Expire      time.Time `json:"expire"`
	AutoPay     bool      `json:"auto_pay"`
	PaymentType string    `json:"payment_type"`
}

// ExpiringDayDTO groups users whose access ends on the same business day.
type ExpiringDayDTO struct {
	Date  string             `json:"date"`
	Count int                `json:"count"`
	Users []*ExpiringUserDTO `json:"users"`
}
