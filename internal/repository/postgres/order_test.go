package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/pkg/database"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// --- Test Helpers ---

func newOrderRepo(t *testing.T) (*OrderRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewOrderRepository(mock), mock
}

func orderRows(id, userID, status string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{
		"id", "user_id", "order_number", "status", "subtotal_amount",
		"shipping_amount", "total_amount", "currency", "recipient_name", "phone",
		"street_address", "apartment", "country", "province", "canceled_reason",
		"created_at", "updated_at",
	}).AddRow(
		id, userID, "KH-2026-000042", status, int64(12500),
		int64(150), int64(12650), "USD", "Sok San", "012345678",
		"St 271, House 12", "", domain.CountryKH, "Phnom Penh", "",
		now, now,
	)
}

// --- GetByID Tests ---

func TestOrderRepository_GetByID_Success(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("order-001").
		WillReturnRows(orderRows("order-001", "user-001", domain.OrderStatusPending))

	itemRows := pgxmock.NewRows([]string{
		"id", "order_id", "variant_id", "product_name", "quantity", "price",
	}).
		AddRow("item-001", "order-001", "var-001", "Krama Scarf", 2, int64(6250))

	mock.ExpectQuery("SELECT (.+) FROM order_items").
		WithArgs("order-001").
		WillReturnRows(itemRows)

	o, err := repo.GetByID(context.Background(), "order-001")
	require.NoError(t, err)
	assert.Equal(t, "user-001", o.UserID)
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	o, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, o)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ListByUserID Tests ---

func TestOrderRepository_ListByUserID_Success(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM orders").
		WithArgs("user-001", 20, 0).
		WillReturnRows(orderRows("order-001", "user-001", domain.OrderStatusConfirmed))

	orders, err := repo.ListByUserID(context.Background(), "user-001", 20, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "KH-2026-000042", orders[0].OrderNumber)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- UpdateStatus Tests ---

func TestOrderRepository_UpdateStatus_Success(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusConfirmed, "", "order-001", domain.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), "order-001", domain.OrderStatusPending, domain.OrderStatusConfirmed, "")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newOrderRepo(t)

	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusCancelled, "out of stock", "missing", domain.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", domain.OrderStatusPending, domain.OrderStatusCancelled, "out of stock")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus_StatusChangedUnderneath(t *testing.T) {
	repo, mock := newOrderRepo(t)

	// The row exists but is no longer in the expected status, so the
	// predicated update matches nothing instead of overwriting it.
	mock.ExpectExec("UPDATE orders").
		WithArgs(domain.OrderStatusConfirmed, "", "order-001", domain.OrderStatusPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "order-001", domain.OrderStatusPending, domain.OrderStatusConfirmed, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
