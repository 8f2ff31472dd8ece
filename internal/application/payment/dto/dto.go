package dto

import (
	"time"

	"github.com/examforge/examforge/internal/domain/payment"
	"github.com/examforge/examforge/internal/shared/utils"
)

type PaymentDTO struct {
	ID                 uint           `json:"id"`
	UserID             uint           `json:"user_id"`
	PlanID             *uint          `json:"plan_id,omitempty"`
	AmountMinor        int64          `json:"amount_minor"`
	AmountLabel        string         `json:"amount_label"`
	Currency           string         `json:"currency"`
	Method             string         `json:"method"`
	Gateway            string         `json:"gateway"`
	GatewayPaymentID   string         `json:"gateway_payment_id"`
	InvoiceID          string         `json:"invoice_id,omitempty"`
	Status             string         `json:"status"`
	PurchasedAt        time.Time      `json:"purchased_at"`
	ExpireAt           *time.Time     `json:"expire_at,omitempty"`
	FailureReason      string         `json:"failure_reason,omitempty"`
	FailureDescription string         `json:"failure_description,omitempty"`
	Notes              map[string]any `json:"notes,omitempty"`
}

type ListPaymentsResponse struct {
	Payments []*PaymentDTO `json:"payments"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func ToPaymentDTO(e *payment.LedgerEntry) *PaymentDTO {
	if e == nil {
		return nil
	}
	return &PaymentDTO{
		ID:                 e.ID(),
		UserID:             e.UserID(),
		PlanID:             e.PlanID(),
		AmountMinor:        e.AmountMinor(),
		AmountLabel:        utils.FormatMinorAmount(e.AmountMinor(), e.Currency()),
		Currency:           e.Currency(),
		Method:             e.Method().String(),
		Gateway:            e.Gateway().String(),
		GatewayPaymentID:   e.GatewayPaymentID(),
		InvoiceID:          e.InvoiceID(),
		Status:             e.Status().String(),
		PurchasedAt:        e.PurchasedAt(),
		ExpireAt:           e.ExpireAt(),
		FailureReason:      e.FailureReason(),
		FailureDescription: e.FailureDescription(),
		Notes:              e.Notes(),
	}
}

func ToPaymentDTOList(entries []*payment.LedgerEntry) []*PaymentDTO {
	out := make([]*PaymentDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToPaymentDTO(e))
	}
	return out
}
