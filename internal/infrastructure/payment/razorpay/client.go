// Package razorpay adapts the Razorpay REST API and webhook signatures to the
// paymentgateway interfaces.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/shared/config"
	"github.com/examforge/examforge/internal/shared/logger"
)

const (
	// maxResponseSize bounds every API response body (1MB)
	maxResponseSize = 1 << 20

	subscriptionQuantity = 1
)

// Client is a Razorpay API client authenticated with the key pair.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	logger     logger.Interface
}

// NewClient creates a client bounded by cfg's timeout.
func NewClient(cfg config.RazorpayConfig, logger logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		logger:    logger,
	}
}

var _ paymentgateway.Gateway = (*Client)(nil)

func (c *Client) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (*paymentgateway.Customer, error) {
	var resp customerResponse
	// fail_existing=0 returns the existing customer for a known email/contact.
	err := c.do(ctx, http.MethodPost, "/customers", customerRequest{
		Name:         req.Name,
		Email:        req.Email,
		Contact:      req.Contact,
		FailExisting: "0",
		Notes:        req.Notes,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &paymentgateway.Customer{
		ID:      resp.ID,
		Name:    resp.Name,
		Email:   resp.Email,
		Contact: resp.Contact,
	}, nil
}

func (c *Client) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.Order, error) {
	var resp orderResponse
	err := c.do(ctx, http.MethodPost, "/orders", orderRequest{
		Amount:   req.AmountMinor,
		Currency: strings.ToUpper(req.Currency),
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return resp.toDomain(), nil
}

func (c *Client) FetchOrder(ctx context.Context, orderID string) (*paymentgateway.Order, error) {
	var resp orderResponse
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	return resp.toDomain(), nil
}

func (c *Client) FetchPlan(ctx context.Context, planID string) (*paymentgateway.Plan, error) {
	var resp planResponse
	if err := c.do(ctx, http.MethodGet, "/plans/"+url.PathEscape(planID), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch plan %s: %w", planID, err)
	}
	return resp.toDomain(), nil
}

func (c *Client) CreateSubscription(ctx context.Context, req paymentgateway.CreateSubscriptionRequest) (*paymentgateway.Subscription, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = subscriptionQuantity
	}
	notify := 0
	if req.CustomerNotify {
		notify = 1
	}

	var resp subscriptionResponse
	err := c.do(ctx, http.MethodPost, "/subscriptions", subscriptionRequest{
		PlanID:         req.PlanID,
		CustomerID:     req.CustomerID,
		TotalCount:     req.TotalCount,
		Quantity:       quantity,
		CustomerNotify: notify,
		Notes:          req.Notes,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return resp.toDomain(), nil
}

func (c *Client) FetchSubscription(ctx context.Context, subscriptionID string) (*paymentgateway.Subscription, error) {
	var resp subscriptionResponse
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch subscription %s: %w", subscriptionID, err)
	}
	return resp.toDomain(), nil
}

// CancelSubscription cancels immediately rather than at the cycle end.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	body := map[string]int{"cancel_at_cycle_end": 0}
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/cancel", body, nil); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (c *Client) PauseSubscription(ctx context.Context, subscriptionID string) error {
	body := map[string]string{"pause_at": "now"}
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/pause", body, nil); err != nil {
		return fmt.Errorf("pause subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (c *Client) ResumeSubscription(ctx context.Context, subscriptionID string) error {
	body := map[string]string{"resume_at": "now"}
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+url.PathEscape(subscriptionID)+"/resume", body, nil); err != nil {
		return fmt.Errorf("resume subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*paymentgateway.Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	return resp.toDomain(), nil
}

// do sends one authenticated request. Non-2xx answers become
// *paymentgateway.Error carrying the gateway's error code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("razorpay request failed",
			"method", method,
			"path", path,
			"timeout", IsTimeout(err),
			"error", err,
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := &paymentgateway.Error{StatusCode: resp.StatusCode}
		var decoded errorResponse
		if json.Unmarshal(raw, &decoded) == nil {
			gwErr.Code = decoded.Error.Code
			gwErr.Description = decoded.Error.Description
		}
		c.logger.Warnw("razorpay returned an error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"code", gwErr.Code,
		)
		return gwErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsTimeout reports whether err came from the client timeout or a cancelled
// context.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
