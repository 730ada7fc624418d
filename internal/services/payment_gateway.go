package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CheckoutLineItem is one priced line forwarded to the hosted payment page.
// Amounts are minor currency units, as the gateway expects.
type CheckoutLineItem struct {
	Name            string `json:"name"`
	UnitAmountMinor int64  `json:"unit_amount"`
	Quantity        int    `json:"quantity"`
}

// CheckoutSessionParams describes the hosted checkout session to create. The
// order id rides in Metadata and comes back on the completion notification,
// which is how the listener correlates payments to orders.
type CheckoutSessionParams struct {
	CustomerEmail string             `json:"customer_email"`
	LineItems     []CheckoutLineItem `json:"line_items"`
	SuccessURL    string             `json:"success_url"`
	CancelURL     string             `json:"cancel_url"`
	Metadata      map[string]string  `json:"metadata"`
}

// CheckoutSession is the gateway's handle for a hosted payment page.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentGateway creates hosted checkout sessions with the external payment
// provider. Implementations must not retry on failure; callers surface
// gateway errors as retryable to the client.
type PaymentGateway interface {
	CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error)
}

type hostedCheckoutGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHostedCheckoutGateway creates a PaymentGateway speaking the provider's
// JSON checkout-session API.
func NewHostedCheckoutGateway(baseURL, apiKey string) PaymentGateway {
	return &hostedCheckoutGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *hostedCheckoutGateway) CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout session params: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: building session request: %v", ErrPaymentGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	// The gateway deduplicates retried submissions on this key.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: creating checkout session: %v", ErrPaymentGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: checkout session request returned status %d", ErrPaymentGateway, resp.StatusCode)
	}

	session := &CheckoutSession{}
	if err := json.NewDecoder(resp.Body).Decode(session); err != nil {
		return nil, fmt.Errorf("%w: decoding checkout session response: %v", ErrPaymentGateway, err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("%w: checkout session response missing redirect URL", ErrPaymentGateway)
	}
	return session, nil
}
