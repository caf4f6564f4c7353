package api

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is a typed HTTP client for the prediction API, used by the CLI
// and by integration tooling.
type Client struct {
	base string
	rest *resty.Client
}

// NewClient creates a client against the given base URL.
func NewClient(base string, timeout time.Duration) *Client {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	return &Client{base: base, rest: r}
}

// Health checks the API health probe.
func (c *Client) Health() (map[string]string, error) {
	var out map[string]string
	resp, err := c.rest.R().
		SetResult(&out).
		Get(c.base + "/")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return out, nil
}

// Predict scores one transaction.
func (c *Client) Predict(transaction map[string]any) (*PredictionResponse, error) {
	var out PredictionResponse
	var apiErr errorResponse

	resp, err := c.rest.R().
		SetBody(transaction).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.base + "/predict")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		if apiErr.Detail != "" {
			return nil, fmt.Errorf("API error: status %d: %s", resp.StatusCode(), apiErr.Detail)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode())
	}
	return &out, nil
}

// PredictBatch scores a batch of transactions in one call.
func (c *Client) PredictBatch(transactions []map[string]any) (*BatchResponse, error) {
	var out BatchResponse
	var apiErr errorResponse

	resp, err := c.rest.R().
		SetBody(BatchRequest{Transactions: transactions}).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.base + "/predict/batch")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		if apiErr.Detail != "" {
			return nil, fmt.Errorf("API error: status %d: %s", resp.StatusCode(), apiErr.Detail)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode())
	}
	return &out, nil
}

// ModelInfo fetches metadata about the loaded model.
func (c *Client) ModelInfo() (*ModelInfoResponse, error) {
	var out ModelInfoResponse
	resp, err := c.rest.R().
		SetResult(&out).
		Get(c.base + "/model/info")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}
