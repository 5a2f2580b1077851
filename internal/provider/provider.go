// Package provider defines the seam to the external payment gateway. The
// storefront never charges cards itself; it verifies transactions the gateway
// has already processed.
package provider

import "context"

// VerifyInput identifies the transaction to verify with the gateway.
type VerifyInput struct {
	TransactionID string
	Amount        int64
	Currency      string
}

// VerifyResult holds the gateway's verdict on a transaction.
type VerifyResult struct {
	ProviderRef   string
	Verified      bool
	FailureReason string
}

// Gateway defines the interface for payment gateway integrations.
type Gateway interface {
	// Name returns the gateway name (e.g., "mock", "aba-payway").
	Name() string

	// Verify checks with the gateway that the transaction was processed for
	// the expected amount and currency.
	Verify(ctx context.Context, input *VerifyInput) (*VerifyResult, error)
}
