package postgres

import (
	"context"
	"errors"
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

func newAddressRepo(t *testing.T) (*AddressRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewAddressRepository(mock), mock
}

func sampleAddress() *domain.Address {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Address{
		ID:            "addr-001",
		UserID:        "user-001",
		FirstName:     "Sok",
		LastName:      "San",
		Phone:         "012345678",
		StreetAddress: "St 271, House 12",
		Apartment:     "",
		Country:       domain.CountryKH,
		Province:      "Phnom Penh",
		IsDefault:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func addressRows(a *domain.Address) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "first_name", "last_name", "phone", "street_address",
		"apartment", "country", "province", "is_default", "created_at", "updated_at",
	}).AddRow(
		a.ID, a.UserID, a.FirstName, a.LastName, a.Phone, a.StreetAddress,
		a.Apartment, a.Country, a.Province, a.IsDefault, a.CreatedAt, a.UpdatedAt,
	)
}

// --- Create Tests ---

func TestAddressRepository_Create_Success(t *testing.T) {
	repo, mock := newAddressRepo(t)

	a := sampleAddress()

	mock.ExpectExec("INSERT INTO customer_addresses").
		WithArgs(
			a.ID, a.UserID, a.FirstName, a.LastName, a.Phone,
			a.StreetAddress, a.Apartment, a.Country, a.Province,
			a.IsDefault, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), a)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Create_DefaultConflict(t *testing.T) {
	repo, mock := newAddressRepo(t)

	a := sampleAddress()
	a.IsDefault = true

	mock.ExpectExec("INSERT INTO customer_addresses").
		WithArgs(
			a.ID, a.UserID, a.FirstName, a.LastName, a.Phone,
			a.StreetAddress, a.Apartment, a.Country, a.Province,
			a.IsDefault, a.CreatedAt, a.UpdatedAt,
		).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "uq_customer_addresses_default" (SQLSTATE 23505)`))

	err := repo.Create(context.Background(), a)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- GetByID Tests ---

func TestAddressRepository_GetByID_Success(t *testing.T) {
	repo, mock := newAddressRepo(t)

	a := sampleAddress()

	mock.ExpectQuery("SELECT (.+) FROM customer_addresses WHERE id").
		WithArgs(a.ID).
		WillReturnRows(addressRows(a))

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.UserID, got.UserID)
	assert.Equal(t, a.Phone, got.Phone)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM customer_addresses WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- ListByUserID Tests ---

func TestAddressRepository_ListByUserID_OrdersDefaultFirst(t *testing.T) {
	repo, mock := newAddressRepo(t)

	a := sampleAddress()
	b := sampleAddress()
	b.ID = "addr-002"
	b.IsDefault = true

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "first_name", "last_name", "phone", "street_address",
		"apartment", "country", "province", "is_default", "created_at", "updated_at",
	}).
		AddRow(b.ID, b.UserID, b.FirstName, b.LastName, b.Phone, b.StreetAddress,
			b.Apartment, b.Country, b.Province, b.IsDefault, b.CreatedAt, b.UpdatedAt).
		AddRow(a.ID, a.UserID, a.FirstName, a.LastName, a.Phone, a.StreetAddress,
			a.Apartment, a.Country, a.Province, a.IsDefault, a.CreatedAt, a.UpdatedAt)

	mock.ExpectQuery("SELECT (.+) FROM customer_addresses").
		WithArgs(a.UserID).
		WillReturnRows(rows)

	got, err := repo.ListByUserID(context.Background(), a.UserID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsDefault)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_ListByUserID_Empty(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM customer_addresses").
		WithArgs("user-001").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "first_name", "last_name", "phone", "street_address",
			"apartment", "country", "province", "is_default", "created_at", "updated_at",
		}))

	got, err := repo.ListByUserID(context.Background(), "user-001")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete Tests ---

func TestAddressRepository_Delete_Success(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectExec("DELETE FROM customer_addresses").
		WithArgs("addr-001").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "addr-001")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectExec("DELETE FROM customer_addresses").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- SetDefault Tests ---

func TestAddressRepository_SetDefault_Success(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE customer_addresses SET is_default = false").
		WithArgs("user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE customer_addresses SET is_default = true").
		WithArgs("addr-002", "user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.SetDefault(context.Background(), "user-001", "addr-002")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_SetDefault_TargetNotOwned(t *testing.T) {
	repo, mock := newAddressRepo(t)

	// The second update matches zero rows when the address belongs to someone
	// else, so the whole transaction rolls back and the previous default stays.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE customer_addresses SET is_default = false").
		WithArgs("user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE customer_addresses SET is_default = true").
		WithArgs("addr-foreign", "user-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.SetDefault(context.Background(), "user-001", "addr-foreign")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddressRepository_SetDefault_BeginError(t *testing.T) {
	repo, mock := newAddressRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.SetDefault(context.Background(), "user-001", "addr-002")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin transaction")

	assert.NoError(t, mock.ExpectationsWereMet())
}
