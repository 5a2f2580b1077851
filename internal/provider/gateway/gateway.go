// Package gateway implements provider.Gateway against the hosted payment
// gateway's HTTP verification API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BothSann/kdmv-sub002/internal/provider"
	"github.com/BothSann/kdmv-sub002/pkg/httpclient"
)

// Config holds gateway connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Name    string
}

// Gateway calls the payment gateway's verification endpoint through a
// circuit-breaker-protected HTTP client.
type Gateway struct {
	client *httpclient.CircuitBreakerClient
	cfg    Config
	logger *slog.Logger
}

// New creates a gateway client.
func New(client *httpclient.CircuitBreakerClient, cfg Config, logger *slog.Logger) *Gateway {
	return &Gateway{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the configured gateway name.
func (g *Gateway) Name() string {
	return g.cfg.Name
}

type verifyRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type verifyResponse struct {
	Reference string `json:"reference"`
	Verified  bool   `json:"verified"`
	Reason    string `json:"reason,omitempty"`
}

// Verify checks the transaction with the gateway. Breaker-open and transport
// failures are returned as errors; a reachable gateway that declines the
// transaction returns Verified=false with a reason.
func (g *Gateway) Verify(ctx context.Context, input *provider.VerifyInput) (*provider.VerifyResult, error) {
	payload, err := json.Marshal(verifyRequest{
		TransactionID: input.TransactionID,
		Amount:        input.Amount,
		Currency:      input.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal verify request: %w", err)
	}

	url := g.cfg.BaseURL + "/v1/transactions/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("gateway verify call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway verify returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	g.logger.DebugContext(ctx, "gateway verification result",
		slog.String("transaction_id", input.TransactionID),
		slog.Bool("verified", body.Verified),
	)

	return &provider.VerifyResult{
		ProviderRef:   body.Reference,
		Verified:      body.Verified,
		FailureReason: body.Reason,
	}, nil
}
