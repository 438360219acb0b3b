package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPGateway talks to the real payment provider over its JSON API.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPGateway(cfg Config) *HTTPGateway {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type authorizeRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	OrderID        string `json:"orderId"`
	CardNumber     string `json:"cardNumber"`
	ExpiryMonth    int    `json:"expiryMonth"`
	ExpiryYear     int    `json:"expiryYear"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholderName"`
}

type authorizeResponse struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
}

func (g *HTTPGateway) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	body, err := json.Marshal(authorizeRequest{
		Amount:         req.AmountCents,
		Currency:       req.Currency,
		OrderID:        req.Reference,
		CardNumber:     req.Card.Number,
		ExpiryMonth:    req.Card.ExpiryMonth,
		ExpiryYear:     req.Card.ExpiryYear,
		CVV:            req.Card.CVV,
		CardholderName: req.Card.CardholderName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal authorize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/authorize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("authorize call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out authorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode authorize response: %w", err)
	}
	return &AuthorizeResult{Approved: out.Approved, TransactionID: out.TransactionID, Reason: out.Reason}, nil
}

func (g *HTTPGateway) Refund(ctx context.Context, transactionID string, amountCents int64) error {
	body, err := json.Marshal(map[string]any{
		"transactionId": transactionID,
		"amount":        amountCents,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/v1/refund", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("refund call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}
	return nil
}

var _ Gateway = (*HTTPGateway)(nil)
