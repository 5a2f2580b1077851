package domain

import "time"

// Payment status constants.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// PaymentTransaction represents a payment attempt against an order. The
// transaction row is created by the checkout flow; confirmation against the
// gateway moves it from pending to completed or failed.
type PaymentTransaction struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	ProviderRef string     `json:"provider_ref,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaymentView is the confirmation-page projection of a payment: the
// transaction joined with its order number, plus the purchased items. The
// owning user ID is carried for the ownership check and never serialized.
type PaymentView struct {
	Payment     PaymentTransaction `json:"payment"`
	OrderNumber string             `json:"order_number"`
	Items       []OrderItem        `json:"items"`
	OrderUserID string             `json:"-"`
}

// OwnerID returns the ID of the user owning the linked order.
func (v *PaymentView) OwnerID() string {
	return v.OrderUserID
}
