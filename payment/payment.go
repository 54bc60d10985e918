// Package payment talks to the external payment-authorization service.
// Checkout only cares about a boolean outcome for a given amount.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Authorizer is the collaborator contract consumed by checkout.
type Authorizer interface {
	Authorize(ctx context.Context, amount float64) (bool, error)
}

// Client calls the gateway over HTTP with a bounded timeout.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

type authorizeRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	AuthKey  string  `json:"authkey"`
}

type authorizeResponse struct {
	Approved bool `json:"approved"`
	Error    *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientFromEnv reads PAYMENT_API_URL and PAYMENT_AUTH_KEY.
func NewClientFromEnv() (*Client, error) {
	apiURL := os.Getenv("PAYMENT_API_URL")
	apiKey := os.Getenv("PAYMENT_AUTH_KEY")
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("payment configuration missing")
	}
	return NewClient(apiURL, apiKey), nil
}

func (c *Client) Authorize(ctx context.Context, amount float64) (bool, error) {
	payload, err := json.Marshal(authorizeRequest{
		Amount:   amount,
		Currency: "usd",
		AuthKey:  c.apiKey,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("payment gateway error (%d): %s", resp.StatusCode, string(body))
	}

	var out authorizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to parse payment response: %w", err)
	}
	if out.Error != nil {
		return false, fmt.Errorf("payment gateway: %s", out.Error.Message)
	}
	return out.Approved, nil
}

// ApproveAll authorizes every amount. Used for local runs and tests.
type ApproveAll struct{}

func (ApproveAll) Authorize(context.Context, float64) (bool, error) { return true, nil }

// FromEnv picks the gateway client, or ApproveAll when PAYMENT_MODE=simulate
// or no gateway is configured.
func FromEnv() Authorizer {
	if os.Getenv("PAYMENT_MODE") == "simulate" {
		return ApproveAll{}
	}
	client, err := NewClientFromEnv()
	if err != nil {
		return ApproveAll{}
	}
	return client
}
