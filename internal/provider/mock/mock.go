// Package mock provides a payment gateway that always verifies. It is
// intended for development and testing.
package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/BothSann/kdmv-sub002/internal/provider"
)

// Gateway is a mock payment gateway that verifies every transaction.
type Gateway struct{}

// NewGateway creates a new mock gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "mock"
}

// Verify always succeeds.
func (g *Gateway) Verify(_ context.Context, _ *provider.VerifyInput) (*provider.VerifyResult, error) {
	return &provider.VerifyResult{
		ProviderRef: "mock_ref_" + uuid.New().String(),
		Verified:    true,
	}, nil
}
