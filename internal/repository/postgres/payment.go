package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/pkg/database"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// PaymentRepository implements repository.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	pool database.DBTX
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool database.DBTX) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, order_id, status, amount, currency, provider_ref, completed_at, created_at, updated_at`

// GetByID retrieves a payment transaction.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (_ *domain.PaymentTransaction, err error) {
	query := `SELECT ` + paymentColumns + ` FROM payment_transactions WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPayment", query)
	defer func() { end(err) }()

	var p domain.PaymentTransaction
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OrderID,
		&p.Status,
		&p.Amount,
		&p.Currency,
		&p.ProviderRef,
		&p.CompletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	return &p, nil
}

// GetView retrieves a payment joined with its order number and owning user,
// plus the order's items. The owning user ID is returned for the service
// layer's ownership check; it is never serialized to clients.
func (r *PaymentRepository) GetView(ctx context.Context, id string) (_ *domain.PaymentView, err error) {
	query := `
		SELECT p.id, p.order_id, p.status, p.amount, p.currency, p.provider_ref, p.completed_at, p.created_at, p.updated_at,
		       o.order_number, o.user_id
		FROM payment_transactions p
		JOIN orders o ON o.id = p.order_id
		WHERE p.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetPaymentView", query)
	defer func() { end(err) }()

	var v domain.PaymentView
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&v.Payment.ID,
		&v.Payment.OrderID,
		&v.Payment.Status,
		&v.Payment.Amount,
		&v.Payment.Currency,
		&v.Payment.ProviderRef,
		&v.Payment.CompletedAt,
		&v.Payment.CreatedAt,
		&v.Payment.UpdatedAt,
		&v.OrderNumber,
		&v.OrderUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment view: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, variant_id, product_name, quantity, price
		FROM order_items
		WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, itemsQuery, v.Payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("list payment order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.VariantID,
			&item.ProductName,
			&item.Quantity,
			&item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan payment order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment order items: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}
	v.Items = items

	return &v, nil
}

// MarkCompleted transitions a pending transaction to completed. The status
// predicate makes the transition idempotent-safe under concurrent confirms.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, id, providerRef string) (err error) {
	query := `
		UPDATE payment_transactions
		SET status = $1, provider_ref = $2, completed_at = NOW(), updated_at = NOW()
		WHERE id = $3 AND status = $4`

	ctx, end := database.TraceQuery(ctx, "MarkPaymentCompleted", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, domain.PaymentStatusCompleted, providerRef, id, domain.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("payment", id)
	}

	return nil
}

// MarkFailed transitions a pending transaction to failed.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id string) (err error) {
	query := `
		UPDATE payment_transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	ctx, end := database.TraceQuery(ctx, "MarkPaymentFailed", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, domain.PaymentStatusFailed, id, domain.PaymentStatusPending)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("payment", id)
	}

	return nil
}
