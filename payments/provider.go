package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutParams is what the engine hands the external payment provider
// when a customer starts paying for an accepted order.
type CheckoutParams struct {
	OrderID    uint            `json:"order_id"`
	MealName   string          `json:"meal_name"`
	Amount     decimal.Decimal `json:"amount"`
	SuccessURL string          `json:"success_url"`
	CancelURL  string          `json:"cancel_url"`
}

// CheckoutSession is the provider's opaque session reference plus the
// redirect target for the customer's browser.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider creates hosted checkout sessions. Creating a session never
// mutates order state; the provider remains the source of truth until a
// confirmation arrives on the webhook.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}

// HTTPProvider talks to a checkout-session service over HTTP.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}
	return &session, nil
}
