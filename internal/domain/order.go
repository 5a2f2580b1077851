package domain

import "time"

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order represents a customer order. Orders are created by the checkout flow
// with a snapshot of the shipping address; later address edits do not affect
// placed orders.
type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	OrderNumber    string      `json:"order_number"`
	Status         string      `json:"status"`
	Items          []OrderItem `json:"items"`
	SubtotalAmount int64       `json:"subtotal_amount"`
	ShippingAmount int64       `json:"shipping_amount"`
	TotalAmount    int64       `json:"total_amount"`
	Currency       string      `json:"currency"`
	RecipientName  string      `json:"recipient_name"`
	Phone          string      `json:"phone"`
	StreetAddress  string      `json:"street_address"`
	Apartment      string      `json:"apartment,omitempty"`
	Country        string      `json:"country"`
	Province       string      `json:"province"`
	CanceledReason string      `json:"canceled_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem is a purchased line within an order.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	VariantID   string `json:"variant_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// OwnerID returns the owning user's ID.
func (o *Order) OwnerID() string {
	return o.UserID
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are valid.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
		OrderStatusShipped:   {OrderStatusDelivered},
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
