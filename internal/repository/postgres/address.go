package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/pkg/database"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

const addressColumns = `id, user_id, first_name, last_name, phone, street_address, apartment, country, province, is_default, created_at, updated_at`

// Create inserts a new address into the database.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) (err error) {
	query := `
		INSERT INTO customer_addresses (id, user_id, first_name, last_name, phone, street_address, apartment, country, province, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	ctx, end := database.TraceQuery(ctx, "CreateAddress", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.FirstName,
		a.LastName,
		a.Phone,
		a.StreetAddress,
		a.Apartment,
		a.Country,
		a.Province,
		a.IsDefault,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("another address is already the default")
		}
		return fmt.Errorf("insert address: %w", err)
	}

	return nil
}

// GetByID retrieves an address by its ID.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (_ *domain.Address, err error) {
	query := `SELECT ` + addressColumns + ` FROM customer_addresses WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetAddress", query)
	defer func() { end(err) }()

	var a domain.Address
	err = r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.FirstName,
		&a.LastName,
		&a.Phone,
		&a.StreetAddress,
		&a.Apartment,
		&a.Country,
		&a.Province,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}

	return &a, nil
}

// ListByUserID returns all addresses for the given user, default first, then
// newest first.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID string) (_ []domain.Address, err error) {
	query := `
		SELECT ` + addressColumns + `
		FROM customer_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListAddresses", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.FirstName,
			&a.LastName,
			&a.Phone,
			&a.StreetAddress,
			&a.Apartment,
			&a.Country,
			&a.Province,
			&a.IsDefault,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}

	if addresses == nil {
		addresses = []domain.Address{}
	}

	return addresses, nil
}

// Update modifies an existing address in the database.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) (err error) {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE customer_addresses
		SET first_name = $1, last_name = $2, phone = $3, street_address = $4,
		    apartment = $5, country = $6, province = $7, updated_at = $8
		WHERE id = $9`

	ctx, end := database.TraceQuery(ctx, "UpdateAddress", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query,
		a.FirstName,
		a.LastName,
		a.Phone,
		a.StreetAddress,
		a.Apartment,
		a.Country,
		a.Province,
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", a.ID)
	}

	return nil
}

// Delete removes an address from the database by its ID.
func (r *AddressRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM customer_addresses WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteAddress", query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", id)
	}

	return nil
}

// SetDefault marks the specified address as the default for the user,
// unsetting any previous default within one transaction. The partial unique
// index on (user_id) WHERE is_default backstops concurrent toggles.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, addressID string) (err error) {
	setQuery := `UPDATE customer_addresses SET is_default = true, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	ctx, end := database.TraceQuery(ctx, "SetDefaultAddress", setQuery)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Unset any existing default for this user.
	_, err = tx.Exec(ctx,
		`UPDATE customer_addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("unset default address: %w", err)
	}

	// Set the new default. The user_id predicate prevents cross-customer
	// tampering with a guessed address ID.
	ct, err := tx.Exec(ctx, setQuery, addressID, userID)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", addressID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
