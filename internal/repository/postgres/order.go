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

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Orders are created by the checkout flow; this repository covers the
// read and status-transition paths.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, order_number, status, subtotal_amount, shipping_amount, total_amount, currency, recipient_name, phone, street_address, apartment, country, province, canceled_reason, created_at, updated_at`

// GetByID retrieves an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetOrder", query)
	defer func() { end(err) }()

	var o domain.Order
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.SubtotalAmount,
		&o.ShippingAmount,
		&o.TotalAmount,
		&o.Currency,
		&o.RecipientName,
		&o.Phone,
		&o.StreetAddress,
		&o.Apartment,
		&o.Country,
		&o.Province,
		&o.CanceledReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListByUserID returns the user's orders, newest first, without items.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) (_ []domain.Order, err error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListOrders", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.OrderNumber,
			&o.Status,
			&o.SubtotalAmount,
			&o.ShippingAmount,
			&o.TotalAmount,
			&o.Currency,
			&o.RecipientName,
			&o.Phone,
			&o.StreetAddress,
			&o.Apartment,
			&o.Country,
			&o.Province,
			&o.CanceledReason,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, nil
}

// UpdateStatus changes the order status and records the cancellation reason.
// The status predicate keeps concurrent transitions from silently overwriting
// each other; a lost race matches zero rows and reports not found.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus, reason string) (err error) {
	query := `
		UPDATE orders
		SET status = $1, canceled_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateOrderStatus", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, toStatus, reason, id, fromStatus)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, variant_id, product_name, quantity, price
		FROM order_items
		WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
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
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}
