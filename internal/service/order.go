package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BothSann/kdmv-sub002/internal/auth"
	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/event"
	"github.com/BothSann/kdmv-sub002/internal/repository"
	apperrors "github.com/BothSann/kdmv-sub002/pkg/errors"
)

// Relationship of the requester to an order.
const (
	RelationshipOwner = "owner"
	RelationshipStaff = "staff"
)

// Order listing defaults.
const (
	DefaultOrderPageSize = 20
	MaxOrderPageSize     = 100
)

// OrderDetails pairs an order with the requester's relationship to it, so the
// caller can decide which fields and actions to expose.
type OrderDetails struct {
	Order        *domain.Order `json:"order"`
	Relationship string        `json:"relationship"`
}

// UpdateStatusInput holds the parameters for an admin status transition.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// OrderService implements the business logic for orders.
type OrderService struct {
	repo     repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// GetDetails returns an order for its owner or for back-office staff. For
// anyone else the order is reported as not found; a missing order and a
// foreign order are indistinguishable to the caller.
func (s *OrderService) GetDetails(ctx context.Context, orderID, userID, role string) (*OrderDetails, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case domain.BelongsTo(o, userID):
		return &OrderDetails{Order: o, Relationship: RelationshipOwner}, nil
	case role == auth.RoleStaff || role == auth.RoleAdmin:
		return &OrderDetails{Order: o, Relationship: RelationshipStaff}, nil
	default:
		return nil, apperrors.ErrNotFound
	}
}

// List returns the user's own orders, newest first.
func (s *OrderService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if limit <= 0 {
		limit = DefaultOrderPageSize
	}
	if limit > MaxOrderPageSize {
		limit = MaxOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUserID(ctx, userID, limit, offset)
}

// UpdateStatus performs an admin status transition, enforcing the order
// state machine: pending -> confirmed -> shipped -> delivered, with
// cancellation allowed from pending and confirmed only.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, input UpdateStatusInput) (*domain.Order, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}
	if !domain.IsValidStatus(input.Status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown status %q", input.Status))
	}
	if input.Status == domain.OrderStatusCancelled && input.Reason == "" {
		return nil, apperrors.InvalidInput("cancellation requires a reason")
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !o.CanTransitionTo(input.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot transition order from %s to %s", o.Status, input.Status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, input.Status, input.Reason); err != nil {
		// The predicated update matched nothing: another writer moved the
		// order between our read and write.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Conflict("order status changed concurrently")
		}
		return nil, err
	}

	fromStatus := o.Status
	o.Status = input.Status
	o.CanceledReason = input.Reason

	if err := s.producer.PublishOrderStatusChanged(ctx, o, fromStatus, input.Reason); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("from", fromStatus),
		slog.String("to", input.Status),
	)

	return o, nil
}
