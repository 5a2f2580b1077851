package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	pkgkafka "github.com/BothSann/kdmv-sub002/pkg/kafka"
	"github.com/BothSann/kdmv-sub002/pkg/logger"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCartUpdated        = "storefront.cart.updated"
	TopicCartCleared        = "storefront.cart.cleared"
	TopicOrderStatusChanged = "storefront.order.status_changed"
	TopicPaymentConfirmed   = "storefront.payment.confirmed"
)

// Aggregate type constants.
const (
	AggregateTypeCart    = "cart"
	AggregateTypeOrder   = "order"
	AggregateTypePayment = "payment"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID    string `json:"user_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	ItemCount int    `json:"item_count"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	UserID string `json:"user_id"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
	Reason      string `json:"reason,omitempty"`
}

// PaymentConfirmedData is the payload for a payment.confirmed event.
type PaymentConfirmedData struct {
	TransactionID string    `json:"transaction_id"`
	OrderID       string    `json:"order_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	ProviderRef   string    `json:"provider_ref"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event after a line changes.
func (p *Producer) PublishCartUpdated(ctx context.Context, line *domain.CartLine, itemCount int) error {
	data := CartUpdatedData{
		UserID:    line.UserID,
		VariantID: line.VariantID,
		Quantity:  line.Quantity,
		ItemCount: itemCount,
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, line.UserID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	event.WithRequestID(logger.RequestIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("user_id", line.UserID),
		slog.String("variant_id", line.VariantID),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, userID string) error {
	data := CartClearedData{UserID: userID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, userID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}
	event.WithRequestID(logger.RequestIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("user_id", userID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, o *domain.Order, fromStatus, reason string) error {
	data := OrderStatusChangedData{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		FromStatus:  fromStatus,
		ToStatus:    o.Status,
		Reason:      reason,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, o.ID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}
	event.WithRequestID(logger.RequestIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", o.ID),
		slog.String("from", fromStatus),
		slog.String("to", o.Status),
	)

	return nil
}

// PublishPaymentConfirmed publishes a payment.confirmed event.
func (p *Producer) PublishPaymentConfirmed(ctx context.Context, tx *domain.PaymentTransaction) error {
	completedAt := time.Now().UTC()
	if tx.CompletedAt != nil {
		completedAt = *tx.CompletedAt
	}

	data := PaymentConfirmedData{
		TransactionID: tx.ID,
		OrderID:       tx.OrderID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		ProviderRef:   tx.ProviderRef,
		CompletedAt:   completedAt,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentConfirmed, tx.ID, AggregateTypePayment, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create payment.confirmed event: %w", err)
	}
	event.WithRequestID(logger.RequestIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, TopicPaymentConfirmed, event); err != nil {
		return fmt.Errorf("publish payment.confirmed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.confirmed event",
		slog.String("transaction_id", tx.ID),
		slog.String("order_id", tx.OrderID),
	)

	return nil
}
