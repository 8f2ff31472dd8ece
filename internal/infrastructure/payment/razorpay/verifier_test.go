package razorpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
)

func TestVerifier_WebhookSignature(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	v := NewVerifier("whsec", "key_secret")

	assert.NoError(t, v.VerifyWebhookSignature(body, SignHex("whsec", body)))
	assert.ErrorIs(t, v.VerifyWebhookSignature(body, SignHex("other", body)), paymentgateway.ErrSignatureMismatch)
	assert.ErrorIs(t, v.VerifyWebhookSignature(body, "not-hex"), paymentgateway.ErrSignatureMismatch)
	assert.ErrorIs(t, v.VerifyWebhookSignature(body, ""), paymentgateway.ErrSignatureMismatch)

	open := NewVerifier("", "key_secret")
	assert.NoError(t, open.VerifyWebhookSignature(body, ""))
}

func TestVerifier_CheckoutSignature(t *testing.T) {
	v := NewVerifier("whsec", "key_secret")

	tests := []struct {
		name    string
		sig     paymentgateway.CheckoutSignature
		wantErr bool
	}{
		{
			name: "order",
			sig: paymentgateway.CheckoutSignature{
				PaymentID: "pay_1", OrderID: "order_1",
				Signature: SignHex("key_secret", []byte("order_1|pay_1")),
			},
		},
		{
			name: "subscription",
			sig: paymentgateway.CheckoutSignature{
				PaymentID: "pay_1", SubscriptionID: "sub_1",
				Signature: SignHex("key_secret", []byte("pay_1|sub_1")),
			},
		},
		{
			name: "subscription signed in order form",
			sig: paymentgateway.CheckoutSignature{
				PaymentID: "pay_1", SubscriptionID: "sub_1",
				Signature: SignHex("key_secret", []byte("sub_1|pay_1")),
			},
			wantErr: true,
		},
		{
			name: "signed with webhook secret",
			sig: paymentgateway.CheckoutSignature{
				PaymentID: "pay_1", OrderID: "order_1",
				Signature: SignHex("whsec", []byte("order_1|pay_1")),
			},
			wantErr: true,
		},
		{
			name: "both ids",
			sig: paymentgateway.CheckoutSignature{
				PaymentID: "pay_1", OrderID: "order_1", SubscriptionID: "sub_1",
				Signature: SignHex("key_secret", []byte("order_1|pay_1")),
			},
			wantErr: true,
		},
		{
			name: "missing payment id",
			sig: paymentgateway.CheckoutSignature{
				OrderID:   "order_1",
				Signature: SignHex("key_secret", []byte("order_1|")),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.VerifyCheckoutSignature(tt.sig)
			if tt.wantErr {
				assert.ErrorIs(t, err, paymentgateway.ErrSignatureMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerifier_ParseWebhookEvent(t *testing.T) {
	v := NewVerifier("", "")

	t.Run("payment with order", func(t *testing.T) {
		body := []byte(`{
			"entity": "event",
			"event": "payment.captured",
			"created_at": 1777600000,
			"payload": {
				"payment": {"entity": {"id": "pay_1", "amount": 49900, "currency": "INR", "status": "captured", "order_id": "order_1", "method": "card", "notes": []}},
				"order": {"entity": {"id": "order_1", "amount": 49900, "notes": {"user_id": "7", "plan_id": "1"}}}
			}
		}`)

		event, err := v.ParseWebhookEvent(body)
		require.NoError(t, err)
		assert.Equal(t, paymentgateway.EventPaymentCaptured, event.Type)
		require.NotNil(t, event.Payment)
		assert.Equal(t, "order_1", event.Payment.OrderID)
		require.NotNil(t, event.Order)
		assert.Equal(t, uint(7), event.Order.Notes.UserID())
		assert.Nil(t, event.Subscription)
	})

	t.Run("subscription charged", func(t *testing.T) {
		body := []byte(`{"event":"subscription.charged","payload":{"subscription":{"entity":{"id":"sub_1","status":"active","current_end":1780192000}},"payment":{"entity":{"id":"pay_2","amount":49900,"status":"captured"}}}}`)

		event, err := v.ParseWebhookEvent(body)
		require.NoError(t, err)
		require.NotNil(t, event.Subscription)
		require.NotNil(t, event.Subscription.CurrentEnd)
		require.NotNil(t, event.Payment)
		assert.Nil(t, event.Order)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, body := range []string{`not json`, `{"payload":{}}`, `{"event":"  "}`} {
			_, err := v.ParseWebhookEvent([]byte(body))
			assert.ErrorIs(t, err, paymentgateway.ErrMalformedEvent, body)
		}
	})
}
