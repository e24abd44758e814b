// Package payment implements the provider transaction-verification client.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/recvlabs/recv/internal/config"
	paymentdomain "github.com/recvlabs/recv/internal/payment/domain"
)

type Client struct {
	verifyURL string
	apiKey    string
	client    *http.Client
}

func NewClient(cfg config.Config) (*Client, error) {
	verifyURL := strings.TrimSpace(cfg.Payment.VerifyURL)
	if verifyURL == "" {
		return nil, errors.New("payment verify url is required")
	}

	return &Client{
		verifyURL: verifyURL,
		apiKey:    cfg.Payment.APIKey,
		client:    http.DefaultClient,
	}, nil
}

type verifyRequest struct {
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
}

// VerifyTransaction queries the provider's authoritative transaction-detail
// endpoint. Timeouts belong to the caller's context; retries belong to the
// webhook sender.
func (c *Client) VerifyTransaction(ctx context.Context, orderID string, amount int64) (paymentdomain.VerificationResult, error) {
	body, err := json.Marshal(verifyRequest{OrderID: orderID, Amount: amount})
	if err != nil {
		return paymentdomain.VerificationResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, bytes.NewReader(body))
	if err != nil {
		return paymentdomain.VerificationResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return paymentdomain.VerificationResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return paymentdomain.VerificationResult{}, fmt.Errorf("verification request failed: status %d", resp.StatusCode)
	}

	var result paymentdomain.VerificationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return paymentdomain.VerificationResult{}, err
	}

	return result, nil
}
