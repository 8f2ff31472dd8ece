package razorpay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/shared/config"
	"github.com/examforge/examforge/internal/shared/logger"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "key_secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &rec.Body))
		}
		requests = append(requests, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.RazorpayConfig{
		KeyID:          "rzp_test_key",
		KeySecret:      "key_secret",
		BaseURL:        srv.URL + "/v1/",
		TimeoutSeconds: 2,
	}, logger.NewDiscard())
	return client, &requests
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_CreateOrder(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"order_1","amount":49900,"currency":"INR","receipt":"rcpt_1","status":"created","notes":{"user_id":"7","plan_id":3}}`)
	})

	order, err := client.CreateOrder(context.Background(), paymentgateway.CreateOrderRequest{
		AmountMinor: 49900,
		Currency:    "inr",
		Receipt:     "rcpt_1",
		Notes:       paymentgateway.Notes{"user_id": "7"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(49900), order.AmountMinor)
	assert.Equal(t, uint(7), order.Notes.UserID())
	assert.Equal(t, uint(3), order.Notes.PlanID())

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v1/orders", req.Path)
	assert.Equal(t, "INR", req.Body["currency"])
	assert.Equal(t, float64(49900), req.Body["amount"])
}

func TestClient_CreateSubscription(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"sub_1","plan_id":"plan_gold","status":"created","total_count":2,"current_start":null,"current_end":null,"short_url":"https://rzp.io/i/x","notes":[]}`)
	})

	sub, err := client.CreateSubscription(context.Background(), paymentgateway.CreateSubscriptionRequest{
		PlanID:         "plan_gold",
		CustomerID:     "cust_1",
		TotalCount:     2,
		CustomerNotify: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "sub_1", sub.ID)
	assert.Nil(t, sub.CurrentEnd)
	assert.Empty(t, sub.Notes)

	body := (*requests)[0].Body
	assert.Equal(t, float64(1), body["quantity"])
	assert.Equal(t, float64(1), body["customer_notify"])
	assert.Equal(t, float64(2), body["total_count"])
	assert.Equal(t, "cust_1", body["customer_id"])
}

func TestClient_FetchSubscriptionAndPayment(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/subscriptions/sub_1":
			writeJSON(w, http.StatusOK, `{"id":"sub_1","status":"active","paid_count":1,"current_start":1777600000,"current_end":1780192000}`)
		case "/v1/payments/pay_1":
			writeJSON(w, http.StatusOK, `{"id":"pay_1","amount":49900,"currency":"INR","status":"captured","order_id":null,"subscription_id":"sub_1","method":"upi","email":"a@example.com","error_code":null,"created_at":1777600000,"notes":{"user_id":"7"}}`)
		default:
			writeJSON(w, http.StatusNotFound, `{}`)
		}
	})

	sub, err := client.FetchSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	require.NotNil(t, sub.CurrentEnd)
	assert.Equal(t, time.Unix(1780192000, 0).UTC(), *sub.CurrentEnd)
	assert.Equal(t, 1, sub.PaidCount)

	p, err := client.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, p.IsSettled())
	assert.Empty(t, p.OrderID)
	assert.Equal(t, "sub_1", p.SubscriptionID)
	assert.Equal(t, time.Unix(1777600000, 0).UTC(), p.CreatedAt)
}

func TestClient_SubscriptionActions(t *testing.T) {
	client, requests := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"sub_1"}`)
	})
	ctx := context.Background()

	require.NoError(t, client.CancelSubscription(ctx, "sub_1"))
	require.NoError(t, client.PauseSubscription(ctx, "sub_1"))
	require.NoError(t, client.ResumeSubscription(ctx, "sub_1"))

	require.Len(t, *requests, 3)
	assert.Equal(t, "/v1/subscriptions/sub_1/cancel", (*requests)[0].Path)
	assert.Equal(t, float64(0), (*requests)[0].Body["cancel_at_cycle_end"])
	assert.Equal(t, "/v1/subscriptions/sub_1/pause", (*requests)[1].Path)
	assert.Equal(t, "now", (*requests)[1].Body["pause_at"])
	assert.Equal(t, "/v1/subscriptions/sub_1/resume", (*requests)[2].Path)
}

func TestClient_Errors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error":{"code":"BAD_REQUEST_ERROR","description":"The id provided does not exist"}}`)
	})

	_, err := client.FetchOrder(context.Background(), "order_missing")
	require.Error(t, err)
	assert.True(t, paymentgateway.IsNotFound(err))

	var gwErr *paymentgateway.Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "BAD_REQUEST_ERROR", gwErr.Code)
	assert.Contains(t, err.Error(), "order_missing")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.FetchPlan(ctx, "plan_gold")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.False(t, paymentgateway.IsNotFound(err))
}
