package razorpay

import (
	"time"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
)

// Wire shapes of the Razorpay REST API. Amounts are integers in paise and
// timestamps are unix seconds.

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type customerRequest struct {
	Name         string              `json:"name,omitempty"`
	Email        string              `json:"email,omitempty"`
	Contact      string              `json:"contact,omitempty"`
	FailExisting string              `json:"fail_existing"`
	Notes        paymentgateway.Notes `json:"notes,omitempty"`
}

type customerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type orderRequest struct {
	Amount   int64                `json:"amount"`
	Currency string               `json:"currency"`
	Receipt  string               `json:"receipt,omitempty"`
	Notes    paymentgateway.Notes `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string               `json:"id"`
	Amount   int64                `json:"amount"`
	Currency string               `json:"currency"`
	Receipt  string               `json:"receipt"`
	Status   string               `json:"status"`
	Notes    paymentgateway.Notes `json:"notes"`
}

func (o *orderResponse) toDomain() *paymentgateway.Order {
	return &paymentgateway.Order{
		ID:          o.ID,
		AmountMinor: o.Amount,
		Currency:    o.Currency,
		Receipt:     o.Receipt,
		Status:      o.Status,
		Notes:       o.Notes,
	}
}

type planResponse struct {
	ID       string `json:"id"`
	Period   string `json:"period"`
	Interval int    `json:"interval"`
	Item     struct {
		Name     string `json:"name"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"item"`
}

func (p *planResponse) toDomain() *paymentgateway.Plan {
	return &paymentgateway.Plan{
		ID:          p.ID,
		Period:      p.Period,
		Interval:    p.Interval,
		ItemName:    p.Item.Name,
		AmountMinor: p.Item.Amount,
		Currency:    p.Item.Currency,
	}
}

type subscriptionRequest struct {
	PlanID         string               `json:"plan_id"`
	CustomerID     string               `json:"customer_id,omitempty"`
	TotalCount     int                  `json:"total_count"`
	Quantity       int                  `json:"quantity"`
	CustomerNotify int                  `json:"customer_notify"`
	Notes          paymentgateway.Notes `json:"notes,omitempty"`
}

type subscriptionResponse struct {
	ID           string               `json:"id"`
	PlanID       string               `json:"plan_id"`
	CustomerID   string               `json:"customer_id"`
	Status       string               `json:"status"`
	TotalCount   int                  `json:"total_count"`
	PaidCount    int                  `json:"paid_count"`
	CurrentStart *int64               `json:"current_start"`
	CurrentEnd   *int64               `json:"current_end"`
	ShortURL     string               `json:"short_url"`
	Notes        paymentgateway.Notes `json:"notes"`
}

func (s *subscriptionResponse) toDomain() *paymentgateway.Subscription {
	return &paymentgateway.Subscription{
		ID:           s.ID,
		PlanID:       s.PlanID,
		CustomerID:   s.CustomerID,
		Status:       s.Status,
		TotalCount:   s.TotalCount,
		PaidCount:    s.PaidCount,
		CurrentStart: unixPtr(s.CurrentStart),
		CurrentEnd:   unixPtr(s.CurrentEnd),
		ShortURL:     s.ShortURL,
		Notes:        s.Notes,
	}
}

type paymentResponse struct {
	ID               string               `json:"id"`
	Amount           int64                `json:"amount"`
	Currency         string               `json:"currency"`
	Status           string               `json:"status"`
	OrderID          string               `json:"order_id"`
	InvoiceID        string               `json:"invoice_id"`
	SubscriptionID   string               `json:"subscription_id"`
	CustomerID       string               `json:"customer_id"`
	Method           string               `json:"method"`
	Description      string               `json:"description"`
	Email            string               `json:"email"`
	Contact          string               `json:"contact"`
	ErrorCode        string               `json:"error_code"`
	ErrorDescription string               `json:"error_description"`
	CreatedAt        int64                `json:"created_at"`
	Notes            paymentgateway.Notes `json:"notes"`
}

func (p *paymentResponse) toDomain() *paymentgateway.Payment {
	return &paymentgateway.Payment{
		ID:               p.ID,
		OrderID:          p.OrderID,
		InvoiceID:        p.InvoiceID,
		SubscriptionID:   p.SubscriptionID,
		CustomerID:       p.CustomerID,
		AmountMinor:      p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		Method:           p.Method,
		Description:      p.Description,
		Email:            p.Email,
		Contact:          p.Contact,
		ErrorCode:        p.ErrorCode,
		ErrorDescription: p.ErrorDescription,
		CreatedAt:        time.Unix(p.CreatedAt, 0).UTC(),
		Notes:            p.Notes,
	}
}

type webhookEnvelope struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity paymentResponse `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity orderResponse `json:"entity"`
		} `json:"order"`
		Subscription *struct {
			Entity subscriptionResponse `json:"entity"`
		} `json:"subscription"`
	} `json:"payload"`
}

func unixPtr(v *int64) *time.Time {
	if v == nil || *v == 0 {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}
