package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Status Transition Tests
// ============================================================================

func TestCanTransitionTo_HappyPath(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	assert.True(t, o.CanTransitionTo(OrderStatusConfirmed))

	o.Status = OrderStatusConfirmed
	assert.True(t, o.CanTransitionTo(OrderStatusShipped))

	o.Status = OrderStatusShipped
	assert.True(t, o.CanTransitionTo(OrderStatusDelivered))
}

func TestCanTransitionTo_Cancellation(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	assert.True(t, o.CanTransitionTo(OrderStatusCancelled))

	o.Status = OrderStatusConfirmed
	assert.True(t, o.CanTransitionTo(OrderStatusCancelled))

	o.Status = OrderStatusShipped
	assert.False(t, o.CanTransitionTo(OrderStatusCancelled))

	o.Status = OrderStatusDelivered
	assert.False(t, o.CanTransitionTo(OrderStatusCancelled))
}

func TestCanTransitionTo_NoSkipping(t *testing.T) {
	o := &Order{Status: OrderStatusPending}
	assert.False(t, o.CanTransitionTo(OrderStatusShipped))
	assert.False(t, o.CanTransitionTo(OrderStatusDelivered))
}

func TestCanTransitionTo_TerminalStates(t *testing.T) {
	for _, status := range []string{OrderStatusDelivered, OrderStatusCancelled} {
		o := &Order{Status: status}
		for _, target := range ValidStatuses() {
			assert.False(t, o.CanTransitionTo(target), "from %s to %s", status, target)
		}
	}
}

func TestCanTransitionTo_UnknownStatus(t *testing.T) {
	o := &Order{Status: "bogus"}
	assert.False(t, o.CanTransitionTo(OrderStatusConfirmed))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s))
	}
	assert.False(t, IsValidStatus("refunded"))
	assert.False(t, IsValidStatus(""))
}
