package repository

import (
	"context"

	"github.com/BothSann/kdmv-sub002/internal/domain"
)

// AddressRepository defines the interface for address persistence operations.
type AddressRepository interface {
	// Create inserts a new address into the store.
	Create(ctx context.Context, address *domain.Address) error

	// GetByID retrieves an address by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// ListByUserID returns all addresses for the given user, default first,
	// then newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)

	// Update modifies an existing address in the store.
	Update(ctx context.Context, address *domain.Address) error

	// Delete removes an address from the store by its identifier.
	Delete(ctx context.Context, id string) error

	// SetDefault marks the specified address as the default for the user,
	// unsetting any previous default atomically.
	SetDefault(ctx context.Context, userID, addressID string) error
}

// CartRepository defines the interface for shopping cart persistence.
type CartRepository interface {
	// AddLine inserts a cart line or, if a line for the same (user, variant)
	// pair already exists, increments its quantity atomically. Returns the
	// resulting line.
	AddLine(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error)

	// GetByUserID returns all cart lines for the given user, oldest first.
	GetByUserID(ctx context.Context, userID string) ([]domain.CartLine, error)

	// UpdateQuantity replaces the quantity of an existing line.
	UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error)

	// RemoveLine deletes a single line from the user's cart.
	RemoveLine(ctx context.Context, userID, variantID string) error

	// Clear deletes all lines from the user's cart.
	Clear(ctx context.Context, userID string) error
}

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUserID returns the user's orders, newest first, without items.
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error)

	// UpdateStatus moves the order from its expected current status to the
	// new one. A lost race, where the order is no longer in fromStatus, is
	// reported as not found. The reason is recorded for cancellations.
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus, reason string) error
}

// PaymentRepository defines the interface for payment transaction persistence.
type PaymentRepository interface {
	// GetByID retrieves a payment transaction.
	GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error)

	// GetView retrieves a payment joined with its order number, owning user,
	// and the order's items.
	GetView(ctx context.Context, id string) (*domain.PaymentView, error)

	// MarkCompleted transitions a pending transaction to completed with the
	// gateway reference and completion time.
	MarkCompleted(ctx context.Context, id, providerRef string) error

	// MarkFailed transitions a pending transaction to failed.
	MarkFailed(ctx context.Context, id string) error
}
