// Package advice calls the external text-generation service that produces
// financial advice from an account's transactions.
package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/benx421/bankmt/internal/models"
)

const maxResponseBytes = 1 << 20

// ErrEmptyAdvice is returned when the service answers without advice text
var ErrEmptyAdvice = errors.New("advice service returned no advice")

type transactionPayload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type requestPayload struct {
	Transactions   []transactionPayload `json:"transactions"`
	AccountBalance float64              `json:"accountBalance"`
}

type responsePayload struct {
	Advice string `json:"advice"`
}

// Client posts advice requests to a JSON endpoint
type Client struct {
	http   *http.Client
	logger *slog.Logger
	url    string
	apiKey string
}

// NewClient creates a Client for url. apiKey is sent as a bearer token when set.
func NewClient(url, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: timeout},
		url:    url,
		apiKey: apiKey,
		logger: logger,
	}
}

// RequestAdvice sends the signed transaction amounts and balance and returns
// the advice text. Any transport failure, non-2xx status or empty answer is an error.
func (c *Client) RequestAdvice(ctx context.Context, req models.AdviceRequest) (string, error) {
	payload := requestPayload{
		Transactions:   make([]transactionPayload, 0, len(req.Transactions)),
		AccountBalance: req.Balance.InexactFloat64(),
	}
	for _, t := range req.Transactions {
		payload.Transactions = append(payload.Transactions, transactionPayload{
			Description: t.Description,
			Amount:      t.Amount.InexactFloat64(),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode advice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build advice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "bankmt-advice/1.0")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("advice request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	c.logger.Debug("advice service responded",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("advice service returned status %d", resp.StatusCode)
	}

	var out responsePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode advice response: %w", err)
	}
	if out.Advice == "" {
		return "", ErrEmptyAdvice
	}

	return out.Advice, nil
}
