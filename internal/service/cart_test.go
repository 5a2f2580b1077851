package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// === Mock repository ===

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) AddLine(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error) {
	args := m.Called(ctx, userID, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartRepo) GetByUserID(ctx context.Context, userID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error) {
	args := m.Called(ctx, userID, variantID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartLine), args.Error(1)
}

func (m *mockCartRepo) RemoveLine(ctx context.Context, userID, variantID string) error {
	args := m.Called(ctx, userID, variantID)
	return args.Error(0)
}

func (m *mockCartRepo) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newCartService(repo *mockCartRepo) *CartService {
	return NewCartService(repo, newTestProducer(), newTestLogger())
}

const testVariantID = "3f1d9a60-1111-4f6e-9e7a-000000000001"

// === Get ===

func TestCartService_Get_EmptyCart(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("GetByUserID", mock.Anything, "user-001").Return([]domain.CartLine{}, nil)

	cart, err := svc.Get(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Equal(t, "user-001", cart.UserID)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.ItemCount())
}

func TestCartService_Get_WithLines(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("GetByUserID", mock.Anything, "user-001").Return([]domain.CartLine{
		{UserID: "user-001", VariantID: testVariantID, Quantity: 2},
		{UserID: "user-001", VariantID: "variant-2", Quantity: 1},
	}, nil)

	cart, err := svc.Get(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.ItemCount())
}

// === AddItem ===

func TestCartService_AddItem_NewLine(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("AddLine", mock.Anything, "user-001", testVariantID, 1).
		Return(&domain.CartLine{UserID: "user-001", VariantID: testVariantID, Quantity: 1}, nil)
	repo.On("GetByUserID", mock.Anything, "user-001").
		Return([]domain.CartLine{{UserID: "user-001", VariantID: testVariantID, Quantity: 1}}, nil)

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{VariantID: testVariantID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	repo.AssertExpectations(t)
}

func TestCartService_AddItem_MergesIntoExistingLine(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	// Variant already in the cart with quantity 1; adding 2 yields one line
	// with quantity 3.
	repo.On("AddLine", mock.Anything, "user-001", testVariantID, 2).
		Return(&domain.CartLine{UserID: "user-001", VariantID: testVariantID, Quantity: 3}, nil)
	repo.On("GetByUserID", mock.Anything, "user-001").
		Return([]domain.CartLine{{UserID: "user-001", VariantID: testVariantID, Quantity: 3}}, nil)

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{VariantID: testVariantID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	cart, err := svc.Get(context.Background(), "user-001")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCartService_AddItem_ZeroQuantity(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{VariantID: testVariantID, Quantity: 0})
	assert.Nil(t, line)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "AddLine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_AddItem_ExceedsMaxQuantity(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{VariantID: testVariantID, Quantity: MaxQuantityPerLine + 1})
	assert.Nil(t, line)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_MissingVariant(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{Quantity: 1})
	assert.Nil(t, line)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCartService_AddItem_RepositoryError(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("AddLine", mock.Anything, "user-001", testVariantID, 1).
		Return(nil, errors.New("connection refused"))

	line, err := svc.AddItem(context.Background(), "user-001", AddItemInput{VariantID: testVariantID, Quantity: 1})
	assert.Nil(t, line)
	assert.Error(t, err)
}

// === UpdateQuantity ===

func TestCartService_UpdateQuantity_Success(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("UpdateQuantity", mock.Anything, "user-001", testVariantID, 5).
		Return(&domain.CartLine{UserID: "user-001", VariantID: testVariantID, Quantity: 5}, nil)
	repo.On("GetByUserID", mock.Anything, "user-001").
		Return([]domain.CartLine{{UserID: "user-001", VariantID: testVariantID, Quantity: 5}}, nil)

	line, err := svc.UpdateQuantity(context.Background(), "user-001", testVariantID, UpdateQuantityInput{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, line.Quantity)
}

func TestCartService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("RemoveLine", mock.Anything, "user-001", testVariantID).Return(nil)
	repo.On("GetByUserID", mock.Anything, "user-001").Return([]domain.CartLine{}, nil)

	line, err := svc.UpdateQuantity(context.Background(), "user-001", testVariantID, UpdateQuantityInput{Quantity: 0})
	require.NoError(t, err)
	assert.Nil(t, line)
	repo.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertCalled(t, "RemoveLine", mock.Anything, "user-001", testVariantID)
}

func TestCartService_UpdateQuantity_LineNotFound(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("UpdateQuantity", mock.Anything, "user-001", testVariantID, 2).
		Return(nil, apperrors.ErrNotFound)

	line, err := svc.UpdateQuantity(context.Background(), "user-001", testVariantID, UpdateQuantityInput{Quantity: 2})
	assert.Nil(t, line)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// === RemoveItem ===

func TestCartService_RemoveItem_Success(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("RemoveLine", mock.Anything, "user-001", testVariantID).Return(nil)
	repo.On("GetByUserID", mock.Anything, "user-001").Return([]domain.CartLine{}, nil)

	err := svc.RemoveItem(context.Background(), "user-001", testVariantID)
	require.NoError(t, err)
}

func TestCartService_RemoveItem_NotFound(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("RemoveLine", mock.Anything, "user-001", testVariantID).Return(apperrors.ErrNotFound)

	err := svc.RemoveItem(context.Background(), "user-001", testVariantID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// === Clear ===

func TestCartService_Clear_Success(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	repo.On("Clear", mock.Anything, "user-001").Return(nil)

	err := svc.Clear(context.Background(), "user-001")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCartService_Clear_EmptyUserID(t *testing.T) {
	repo := new(mockCartRepo)
	svc := newCartService(repo)

	err := svc.Clear(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}
