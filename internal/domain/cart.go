package domain

import "time"

// CartLine represents a single (user, variant) line in the shopping cart.
// At most one line exists per (user, variant) pair; repeated adds of the same
// variant increment the quantity in place.
type CartLine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VariantID string    `json:"variant_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnerID returns the owning user's ID.
func (l *CartLine) OwnerID() string {
	return l.UserID
}

// Cart is a user's full cart view.
type Cart struct {
	UserID string     `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}
