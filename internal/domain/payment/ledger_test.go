package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
)

var at = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func validParams() EntryParams {
	planID := uint(2)
	return EntryParams{
		UserID:           5,
		PlanID:           &planID,
		AmountMinor:      49900,
		Currency:         "INR",
		Method:           vo.ParseMethod("upi"),
		Gateway:          vo.PaymentGatewayRazorpay,
		GatewayPaymentID: "pay_123",
		PurchasedAt:      at,
	}
}

func TestNewCompleted(t *testing.T) {
	expire := at.AddDate(0, 0, 30)
	e, err := NewCompleted(validParams(), expire, at)
	require.NoError(t, err)

	assert.True(t, e.IsCompleted())
	assert.Equal(t, "inr", e.Currency())
	assert.Equal(t, vo.MethodUPI, e.Method())
	assert.Equal(t, expire, *e.ExpireAt())
}

func TestNewCompleted_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *EntryParams)
		wantErr error
	}{
		{name: "missing payment id", mutate: func(p *EntryParams) { p.GatewayPaymentID = " " }, wantErr: ErrPaymentIDRequired},
		{name: "missing user", mutate: func(p *EntryParams) { p.UserID = 0 }, wantErr: ErrUserRequired},
		{name: "zero amount", mutate: func(p *EntryParams) { p.AmountMinor = 0 }, wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := NewCompleted(p, at.AddDate(0, 0, 30), at)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewFailed(t *testing.T) {
	p := validParams()
	p.Method = ""
	e, err := NewFailed(p, "BAD_REQUEST_ERROR", "Payment declined by bank", at)
	require.NoError(t, err)

	assert.Equal(t, vo.PaymentStatusFailed, e.Status())
	assert.Nil(t, e.ExpireAt())
	assert.Equal(t, vo.MethodUnknown, e.Method())
	assert.Equal(t, "Payment declined by bank", e.FailureDescription())
}

func TestNewWebhookEvent(t *testing.T) {
	_, err := NewWebhookEvent("  ", "payment.captured", "", at)
	assert.ErrorIs(t, err, ErrEventIDRequired)

	e, err := NewWebhookEvent("evt_1", "payment.captured", "abc", at)
	require.NoError(t, err)
	assert.False(t, e.IsProcessed())
}
