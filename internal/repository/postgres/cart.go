package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/pkg/database"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// CartRepository implements repository.CartRepository using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

const cartColumns = `id, user_id, variant_id, quantity, created_at, updated_at`

// AddLine inserts a cart line or increments the existing one in a single
// statement. The unique constraint on (user_id, variant_id) routes concurrent
// adds through the ON CONFLICT branch, so no increment is ever lost.
func (r *CartRepository) AddLine(ctx context.Context, userID, variantID string, quantity int) (_ *domain.CartLine, err error) {
	query := `
		INSERT INTO shopping_cart (id, user_id, variant_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT uq_shopping_cart_user_variant
		DO UPDATE SET quantity = shopping_cart.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING ` + cartColumns

	ctx, end := database.TraceQuery(ctx, "UpsertCartLine", query)
	defer func() { end(err) }()

	var line domain.CartLine
	err = r.pool.QueryRow(ctx, query, uuid.New().String(), userID, variantID, quantity).Scan(
		&line.ID,
		&line.UserID,
		&line.VariantID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cart line: %w", err)
	}

	return &line, nil
}

// GetByUserID returns all cart lines for the given user, oldest first.
func (r *CartRepository) GetByUserID(ctx context.Context, userID string) (_ []domain.CartLine, err error) {
	query := `
		SELECT ` + cartColumns + `
		FROM shopping_cart
		WHERE user_id = $1
		ORDER BY created_at ASC`

	ctx, end := database.TraceQuery(ctx, "ListCartLines", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.UserID,
			&line.VariantID,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}

	if lines == nil {
		lines = []domain.CartLine{}
	}

	return lines, nil
}

// UpdateQuantity replaces the quantity of an existing cart line.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (_ *domain.CartLine, err error) {
	query := `
		UPDATE shopping_cart
		SET quantity = $1, updated_at = NOW()
		WHERE user_id = $2 AND variant_id = $3
		RETURNING ` + cartColumns

	ctx, end := database.TraceQuery(ctx, "UpdateCartLine", query)
	defer func() { end(err) }()

	var line domain.CartLine
	err = r.pool.QueryRow(ctx, query, quantity, userID, variantID).Scan(
		&line.ID,
		&line.UserID,
		&line.VariantID,
		&line.Quantity,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("update cart line: %w", err)
	}

	return &line, nil
}

// RemoveLine deletes a single line from the user's cart.
func (r *CartRepository) RemoveLine(ctx context.Context, userID, variantID string) (err error) {
	query := `DELETE FROM shopping_cart WHERE user_id = $1 AND variant_id = $2`

	ctx, end := database.TraceQuery(ctx, "RemoveCartLine", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, userID, variantID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart line", variantID)
	}

	return nil
}

// Clear deletes all lines from the user's cart. Clearing an already empty
// cart is not an error.
func (r *CartRepository) Clear(ctx context.Context, userID string) (err error) {
	query := `DELETE FROM shopping_cart WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "ClearCart", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
