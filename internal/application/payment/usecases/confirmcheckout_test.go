package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	subscriptionUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
)

func (h *harness) startOneTime(t *testing.T, userID uint) string {
	t.Helper()
	checkout, err := h.subscribe.Execute(context.Background(), subscriptionUsecases.SubscribeCommand{
		UserID: userID, PlanID: h.gold.ID(), PaymentType: "one-time",
	})
	require.NoError(t, err)
	return checkout.OrderID
}

func TestConfirmCheckout_OneTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "c@example.com")
	orderID := h.startOneTime(t, 1)
	h.gateway.Payments["pay_1"] = capturedPayment("pay_1", orderID, 49900)

	status, err := h.confirm.Execute(ctx, ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID, Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, vo.StateActive.String(), status.State)
	require.NotNil(t, status.Plan)
	assert.Equal(t, h.gold.ID(), status.Plan.ID)

	// The webhook for the same payment arrives afterwards.
	h.deliver(t, "evt_late", &paymentgateway.Event{
		Type:    paymentgateway.EventPaymentCaptured,
		Payment: capturedPayment("pay_1", orderID, 49900),
	})
	assert.Equal(t, OutcomeDuplicate, h.outcome("evt_late"))
	assert.Len(t, h.ledger.Entries(), 1)
}

func TestConfirmCheckout_AfterWebhook(t *testing.T) {
	h := newHarness(t)
	h.addUser(1, "c@example.com")
	orderID := h.startOneTime(t, 1)
	h.deliver(t, "evt_1", &paymentgateway.Event{
		Type:    paymentgateway.EventPaymentCaptured,
		Payment: capturedPayment("pay_1", orderID, 49900),
	})
	fetches := h.gateway.FetchCalls

	status, err := h.confirm.Execute(context.Background(), ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID, Signature: "sig"})
	require.NoError(t, err)
	assert.Equal(t, vo.StateActive.String(), status.State)
	assert.Equal(t, fetches, h.gateway.FetchCalls)
}

func TestConfirmCheckout_Recurring(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "r@example.com")
	checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{UserID: 1, PlanID: h.gold.ID(), PaymentType: "recurring"})
	require.NoError(t, err)

	currentEnd := t0.AddDate(0, 1, 0)
	gsub := h.gateway.Subscriptions[checkout.SubscriptionID]
	gsub.Status = paymentgateway.SubscriptionStatusActive
	gsub.CurrentEnd = &currentEnd
	h.gateway.Payments["pay_r"] = capturedPayment("pay_r", "", 49900)

	status, err := h.confirm.Execute(ctx, ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_r", SubscriptionID: checkout.SubscriptionID, Signature: "sig"})
	require.NoError(t, err)

	assert.Equal(t, vo.StateActive.String(), status.State)
	assert.True(t, status.AutoPay)
	assert.Equal(t, currentEnd, *h.stored(1).Expire())
}

func TestConfirmCheckout_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, h *harness, orderID string)
		cmd     func(orderID string) ConfirmCheckoutCommand
		errType apperrors.ErrorType
	}{
		{
			name: "both ids",
			cmd: func(orderID string) ConfirmCheckoutCommand {
				return ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID, SubscriptionID: "sub_1"}
			},
			errType: apperrors.ErrorTypeValidation,
		},
		{
			name:  "bad signature",
			setup: func(_ *testing.T, h *harness, _ string) { h.verifier.SignatureOK = false },
			cmd: func(orderID string) ConfirmCheckoutCommand {
				return ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID}
			},
			errType: apperrors.ErrorTypeSignature,
		},
		{
			name: "different order",
			cmd: func(string) ConfirmCheckoutCommand {
				return ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: "order_other"}
			},
			errType: apperrors.ErrorTypeConflict,
		},
		{
			name: "payment not settled",
			setup: func(_ *testing.T, h *harness, orderID string) {
				p := capturedPayment("pay_1", orderID, 49900)
				p.Status = paymentgateway.PaymentStatusFailed
				h.gateway.Payments["pay_1"] = p
			},
			cmd: func(orderID string) ConfirmCheckoutCommand {
				return ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID}
			},
			errType: apperrors.ErrorTypeValidation,
		},
		{
			name: "payment of another user",
			setup: func(t *testing.T, h *harness, _ string) {
				h.addUser(2, "other@example.com")
				p := capturedPayment("pay_1", "", 49900)
				p.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "2"}
				_, err := h.capture.Execute(context.Background(), CapturePaymentCommand{Payment: p})
				require.NoError(t, err)
			},
			cmd: func(orderID string) ConfirmCheckoutCommand {
				return ConfirmCheckoutCommand{UserID: 1, PaymentID: "pay_1", OrderID: orderID}
			},
			errType: apperrors.ErrorTypeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.addUser(1, "c@example.com")
			orderID := h.startOneTime(t, 1)
			if tt.setup != nil {
				tt.setup(t, h, orderID)
			}
			before := h.stored(1).Snapshot()

			_, err := h.confirm.Execute(context.Background(), tt.cmd(orderID))

			require.Error(t, err)
			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.errType, appErr.Type)
			assert.Equal(t, before, h.stored(1).Snapshot())
		})
	}
}
