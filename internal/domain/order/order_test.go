package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	o, err := New("o1", "buyer", "seller", "l1", 499, "pi_123", ShippingAddress{City: "Pune"}, now)
	require.NoError(t, err)
	return o
}

func TestNewRejectsSelfPurchase(t *testing.T) {
	_, err := New("o1", "u1", "u1", "l1", 100, "pi", ShippingAddress{}, now)
	assert.ErrorIs(t, err, ErrBuyerIsSeller)
}

func TestEscrowLifecycle(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)

	require.NoError(t, o.ConfirmPayment("pay_1", now))
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)

	require.NoError(t, o.MarkShipped("seller", now))
	assert.Equal(t, StatusShipped, o.Status)

	require.NoError(t, o.ConfirmDelivery("buyer", now))
	assert.Equal(t, StatusCompleted, o.Status)
	assert.True(t, o.EscrowReleased)
}

func TestTransitionGuards(t *testing.T) {
	o := newTestOrder(t)

	// shipping before payment confirmation
	assert.ErrorIs(t, o.MarkShipped("seller", now), ErrInvalidState)

	require.NoError(t, o.ConfirmPayment("pay_1", now))

	// double payment confirmation
	assert.ErrorIs(t, o.ConfirmPayment("pay_2", now), ErrInvalidState)

	// wrong actors
	assert.ErrorIs(t, o.MarkShipped("buyer", now), ErrNotSeller)
	require.NoError(t, o.MarkShipped("seller", now))
	assert.ErrorIs(t, o.ConfirmDelivery("seller", now), ErrNotBuyer)
}

func TestInvolves(t *testing.T) {
	o := newTestOrder(t)
	assert.True(t, o.Involves("buyer"))
	assert.True(t, o.Involves("seller"))
	assert.False(t, o.Involves("stranger"))
}
