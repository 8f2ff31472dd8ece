package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
)

// Verifier checks HMAC-SHA256 signatures. Webhooks are signed with the
// webhook secret, checkout callbacks with the API key secret.
type Verifier struct {
	webhookSecret string
	keySecret     string
}

func NewVerifier(webhookSecret, keySecret string) *Verifier {
	return &Verifier{webhookSecret: webhookSecret, keySecret: keySecret}
}

var (
	_ paymentgateway.WebhookVerifier  = (*Verifier)(nil)
	_ paymentgateway.CheckoutVerifier = (*Verifier)(nil)
)

// VerifyWebhookSignature accepts any body when no webhook secret is set.
func (v *Verifier) VerifyWebhookSignature(body []byte, signature string) error {
	if v.webhookSecret == "" {
		return nil
	}
	return verify(v.webhookSecret, body, signature)
}

// VerifyCheckoutSignature checks order_id|payment_id for orders and
// payment_id|subscription_id for subscriptions.
func (v *Verifier) VerifyCheckoutSignature(sig paymentgateway.CheckoutSignature) error {
	var message string
	switch {
	case sig.OrderID != "" && sig.SubscriptionID == "":
		message = sig.OrderID + "|" + sig.PaymentID
	case sig.SubscriptionID != "" && sig.OrderID == "":
		message = sig.PaymentID + "|" + sig.SubscriptionID
	default:
		return fmt.Errorf("%w: exactly one of order id and subscription id is required", paymentgateway.ErrSignatureMismatch)
	}
	if sig.PaymentID == "" {
		return fmt.Errorf("%w: payment id is required", paymentgateway.ErrSignatureMismatch)
	}
	return verify(v.keySecret, []byte(message), sig.Signature)
}

func verify(secret string, message []byte, signature string) error {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return paymentgateway.ErrSignatureMismatch
	}
	if !hmac.Equal(got, Sign(secret, message)) {
		return paymentgateway.ErrSignatureMismatch
	}
	return nil
}

// Sign returns the raw HMAC-SHA256 of message.
func Sign(secret string, message []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return mac.Sum(nil)
}

// SignHex is Sign encoded the way Razorpay sends signatures.
func SignHex(secret string, message []byte) string {
	return hex.EncodeToString(Sign(secret, message))
}

// ParseWebhookEvent decodes the event envelope and whichever entities the
// payload carries.
func (v *Verifier) ParseWebhookEvent(body []byte) (*paymentgateway.Event, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", paymentgateway.ErrMalformedEvent, err)
	}
	if strings.TrimSpace(env.Event) == "" {
		return nil, fmt.Errorf("%w: missing event type", paymentgateway.ErrMalformedEvent)
	}

	event := &paymentgateway.Event{
		Type:      env.Event,
		CreatedAt: time.Unix(env.CreatedAt, 0).UTC(),
	}
	if p := env.Payload.Payment; p != nil && p.Entity.ID != "" {
		event.Payment = p.Entity.toDomain()
	}
	if o := env.Payload.Order; o != nil && o.Entity.ID != "" {
		event.Order = o.Entity.toDomain()
	}
	if s := env.Payload.Subscription; s != nil && s.Entity.ID != "" {
		event.Subscription = s.Entity.toDomain()
	}
	return event, nil
}
