package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/provider"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// === Mocks ===

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id string) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}

func (m *mockPaymentRepo) GetView(ctx context.Context, id string) (*domain.PaymentView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentView), args.Error(1)
}

func (m *mockPaymentRepo) MarkCompleted(ctx context.Context, id, providerRef string) error {
	args := m.Called(ctx, id, providerRef)
	return args.Error(0)
}

func (m *mockPaymentRepo) MarkFailed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Name() string {
	return "mock"
}

func (m *mockGateway) Verify(ctx context.Context, input *provider.VerifyInput) (*provider.VerifyResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.VerifyResult), args.Error(1)
}

func newPaymentService(payments *mockPaymentRepo, orders *mockOrderRepo, gw *mockGateway) *PaymentService {
	return NewPaymentService(payments, orders, gw, newTestProducer(), newTestLogger())
}

func pendingPayment() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:       "txn-001",
		OrderID:  "order-001",
		Status:   domain.PaymentStatusPending,
		Amount:   4500,
		Currency: "USD",
	}
}

func pendingPaymentView() *domain.PaymentView {
	return &domain.PaymentView{
		Payment:     *pendingPayment(),
		OrderNumber: "KH-2026-000042",
		OrderUserID: "user-001",
	}
}

// === GetWithOwnership ===

func TestPaymentService_GetWithOwnership_Owner(t *testing.T) {
	payments := new(mockPaymentRepo)
	svc := newPaymentService(payments, new(mockOrderRepo), new(mockGateway))

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)

	view, err := svc.GetWithOwnership(context.Background(), "txn-001", "user-001")
	require.NoError(t, err)
	assert.Equal(t, "KH-2026-000042", view.OrderNumber)
}

func TestPaymentService_GetWithOwnership_ForeignOrder(t *testing.T) {
	payments := new(mockPaymentRepo)
	svc := newPaymentService(payments, new(mockOrderRepo), new(mockGateway))

	payments.On("GetView", mock.Anything, "txn-001").Return(&domain.PaymentView{
		Payment:     *pendingPayment(),
		OrderUserID: "user-002",
	}, nil)

	view, err := svc.GetWithOwnership(context.Background(), "txn-001", "user-001")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPaymentService_GetWithOwnership_MissingTransaction(t *testing.T) {
	payments := new(mockPaymentRepo)
	svc := newPaymentService(payments, new(mockOrderRepo), new(mockGateway))

	payments.On("GetView", mock.Anything, "txn-404").Return(nil, apperrors.ErrNotFound)

	view, err := svc.GetWithOwnership(context.Background(), "txn-404", "user-001")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPaymentService_GetWithOwnership_EmptyID(t *testing.T) {
	payments := new(mockPaymentRepo)
	svc := newPaymentService(payments, new(mockOrderRepo), new(mockGateway))

	view, err := svc.GetWithOwnership(context.Background(), "", "user-001")
	assert.Nil(t, view)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	payments.AssertNotCalled(t, "GetView", mock.Anything, mock.Anything)
}

// === Confirm ===

func TestPaymentService_Confirm_Success(t *testing.T) {
	payments := new(mockPaymentRepo)
	orders := new(mockOrderRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, orders, gw)

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)
	gw.On("Verify", mock.Anything, &provider.VerifyInput{
		TransactionID: "txn-001",
		Amount:        4500,
		Currency:      "USD",
	}).Return(&provider.VerifyResult{Verified: true, ProviderRef: "ref-abc"}, nil)
	payments.On("MarkCompleted", mock.Anything, "txn-001", "ref-abc").Return(nil)
	orders.On("GetByID", mock.Anything, "order-001").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "order-001", domain.OrderStatusPending, domain.OrderStatusConfirmed, "").Return(nil)

	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, tx.Status)
	assert.Equal(t, "ref-abc", tx.ProviderRef)
	payments.AssertExpectations(t)
	orders.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestPaymentService_Confirm_Declined(t *testing.T) {
	payments := new(mockPaymentRepo)
	orders := new(mockOrderRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, orders, gw)

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)
	gw.On("Verify", mock.Anything, mock.AnythingOfType("*provider.VerifyInput")).
		Return(&provider.VerifyResult{Verified: false, FailureReason: "amount mismatch"}, nil)
	payments.On("MarkFailed", mock.Anything, "txn-001").Return(nil)

	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	payments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Confirm_ForeignOrder(t *testing.T) {
	payments := new(mockPaymentRepo)
	orders := new(mockOrderRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, orders, gw)

	view := pendingPaymentView()
	view.OrderUserID = "user-002"
	payments.On("GetView", mock.Anything, "txn-001").Return(view, nil)

	// A transaction on someone else's order reads as not found, and neither
	// the gateway nor the stored transaction is ever touched.
	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Confirm_AlreadyCompleted(t *testing.T) {
	payments := new(mockPaymentRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, new(mockOrderRepo), gw)

	completed := pendingPaymentView()
	completed.Payment.Status = domain.PaymentStatusCompleted
	payments.On("GetView", mock.Anything, "txn-001").Return(completed, nil)

	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestPaymentService_Confirm_GatewayError(t *testing.T) {
	payments := new(mockPaymentRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, new(mockOrderRepo), gw)

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)
	gw.On("Verify", mock.Anything, mock.AnythingOfType("*provider.VerifyInput")).
		Return(nil, errors.New("gateway timeout"))

	// The transaction stays pending so confirmation can be retried.
	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	assert.Nil(t, tx)
	assert.Error(t, err)
	payments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything)
}

func TestPaymentService_Confirm_LostRace(t *testing.T) {
	payments := new(mockPaymentRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, new(mockOrderRepo), gw)

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)
	gw.On("Verify", mock.Anything, mock.AnythingOfType("*provider.VerifyInput")).
		Return(&provider.VerifyResult{Verified: true, ProviderRef: "ref-abc"}, nil)
	payments.On("MarkCompleted", mock.Anything, "txn-001", "ref-abc").Return(apperrors.ErrNotFound)

	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	assert.Nil(t, tx)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestPaymentService_Confirm_OrderConfirmFailureDoesNotFailPayment(t *testing.T) {
	payments := new(mockPaymentRepo)
	orders := new(mockOrderRepo)
	gw := new(mockGateway)
	svc := newPaymentService(payments, orders, gw)

	payments.On("GetView", mock.Anything, "txn-001").Return(pendingPaymentView(), nil)
	gw.On("Verify", mock.Anything, mock.AnythingOfType("*provider.VerifyInput")).
		Return(&provider.VerifyResult{Verified: true, ProviderRef: "ref-abc"}, nil)
	payments.On("MarkCompleted", mock.Anything, "txn-001", "ref-abc").Return(nil)
	orders.On("GetByID", mock.Anything, "order-001").Return(nil, errors.New("connection refused"))

	tx, err := svc.Confirm(context.Background(), "txn-001", "user-001")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, tx.Status)
}
