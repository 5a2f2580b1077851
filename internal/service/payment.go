package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/event"
	"github.com/BothSann/kdmv-sub002/internal/provider"
	"github.com/BothSann/kdmv-sub002/internal/repository"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// PaymentService implements the business logic for payment transactions.
type PaymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	gateway  provider.Gateway
	producer *event.Producer
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	gateway provider.Gateway,
	producer *event.Producer,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
		producer: producer,
		logger:   logger,
	}
}

// GetWithOwnership returns the confirmation view of a payment: the
// transaction, its order number, and the order's items. A missing
// transaction and a transaction on someone else's order both come back as
// not found, so callers cannot discover whether a foreign order exists.
func (s *PaymentService) GetWithOwnership(ctx context.Context, transactionID, userID string) (*domain.PaymentView, error) {
	if transactionID == "" {
		return nil, apperrors.InvalidInput("transaction id is required")
	}

	view, err := s.payments.GetView(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.BelongsTo(view, userID) {
		return nil, apperrors.ErrNotFound
	}

	return view, nil
}

// Confirm verifies a pending transaction against the payment gateway and, on
// success, marks it completed and confirms the linked pending order. Only the
// owner of the linked order may confirm; as with GetWithOwnership, a foreign
// transaction is reported as not found before the gateway is contacted. The
// gateway call is protected by a circuit breaker; breaker-open and transport
// failures leave the transaction pending for a later retry.
func (s *PaymentService) Confirm(ctx context.Context, transactionID, userID string) (*domain.PaymentTransaction, error) {
	if transactionID == "" {
		return nil, apperrors.InvalidInput("transaction id is required")
	}

	view, err := s.payments.GetView(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !domain.BelongsTo(view, userID) {
		return nil, apperrors.ErrNotFound
	}

	tx := &view.Payment

	if tx.Status != domain.PaymentStatusPending {
		return nil, apperrors.Conflict(fmt.Sprintf("payment is already %s", tx.Status))
	}

	result, err := s.gateway.Verify(ctx, &provider.VerifyInput{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("verify payment with gateway: %w", err)
	}

	if !result.Verified {
		if err := s.payments.MarkFailed(ctx, tx.ID); err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}

		s.logger.WarnContext(ctx, "payment verification declined",
			slog.String("transaction_id", tx.ID),
			slog.String("reason", result.FailureReason),
		)

		return nil, apperrors.InvalidInput("payment could not be verified: " + result.FailureReason)
	}

	if err := s.payments.MarkCompleted(ctx, tx.ID, result.ProviderRef); err != nil {
		// A concurrent confirm may have completed it first.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Conflict("payment was already processed")
		}
		return nil, fmt.Errorf("mark payment completed: %w", err)
	}

	tx.Status = domain.PaymentStatusCompleted
	tx.ProviderRef = result.ProviderRef

	s.confirmLinkedOrder(ctx, tx)

	if err := s.producer.PublishPaymentConfirmed(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.confirmed event",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment confirmed",
		slog.String("transaction_id", tx.ID),
		slog.String("order_id", tx.OrderID),
		slog.String("provider_ref", result.ProviderRef),
	)

	return tx, nil
}

// confirmLinkedOrder moves the paid order from pending to confirmed. The
// payment is already completed at this point, so order-side failures are
// logged rather than surfaced; the status can be reconciled by staff.
func (s *PaymentService) confirmLinkedOrder(ctx context.Context, tx *domain.PaymentTransaction) {
	o, err := s.orders.GetByID(ctx, tx.OrderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load order for confirmation",
			slog.String("order_id", tx.OrderID),
			slog.String("error", err.Error()),
		)
		return
	}

	if !o.CanTransitionTo(domain.OrderStatusConfirmed) {
		s.logger.WarnContext(ctx, "paid order not in a confirmable state",
			slog.String("order_id", o.ID),
			slog.String("status", o.Status),
		)
		return
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status, domain.OrderStatusConfirmed, ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to confirm paid order",
			slog.String("order_id", o.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	fromStatus := o.Status
	o.Status = domain.OrderStatusConfirmed

	if err := s.producer.PublishOrderStatusChanged(ctx, o, fromStatus, ""); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", o.ID),
			slog.String("error", err.Error()),
		)
	}
}
