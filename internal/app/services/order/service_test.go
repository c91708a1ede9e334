package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlisting "threadly/internal/domain/listing"
	domainorder "threadly/internal/domain/order"
	"threadly/internal/infra/payments"
	"threadly/internal/infra/storage/memory"
)

type orderFixture struct {
	svc           *Service
	listings      *memory.ListingRepository
	notifications *memory.NotificationRepository
	payments      *payments.FakeProvider
	outbox        *memory.Outbox
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		listings:      memory.NewListingRepository(),
		notifications: memory.NewNotificationRepository(),
		payments:      payments.NewFakeProvider(),
		outbox:        memory.NewOutbox(),
	}
	f.svc = &Service{
		Orders:        memory.NewOrderRepository(),
		Listings:      f.listings,
		Notifications: f.notifications,
		Payments:      f.payments,
		Outbox:        f.outbox,
	}
	return f
}

func (f *orderFixture) addListing(t *testing.T, id, seller string, price float64) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(id),
		Seller:      seller,
		Title:       "Denim jacket",
		Description: "Barely worn",
		Category:    domainlisting.CategoryOuterwear,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionLikeNew,
		Price:       price,
		Status:      domainlisting.StatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), l))
}

func TestEscrowLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.addListing(t, "l1", "seller", 1200)

	created, err := f.svc.Create(ctx, CreateParams{Buyer: "buyer", Listing: "l1"})
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusPending, created.Order.Status)
	assert.NotEmpty(t, created.ClientSecret)
	assert.Equal(t, 1200.0, created.Order.Amount)

	o, err := f.svc.ConfirmPayment(ctx, "buyer", created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusConfirmed, o.Status)
	assert.Equal(t, domainorder.PaymentPaid, o.PaymentStatus)
	assert.True(t, f.payments.Captured(o.PaymentIntentID))

	l, err := f.listings.ByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusSold, l.Status, "confirmed payment takes the listing off the market")

	o, err = f.svc.MarkShipped(ctx, "seller", o.ID, "courier ref 42")
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusShipped, o.Status)

	o, err = f.svc.ConfirmDelivery(ctx, "buyer", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusCompleted, o.Status)
	assert.True(t, o.EscrowReleased)
	assert.True(t, f.payments.Released(o.PaymentIntentID))

	sellerInbox, err := f.notifications.ByRecipient(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, sellerInbox, 2, "purchase and delivery notifications")

	names := make([]string, 0)
	for _, rec := range f.outbox.Records() {
		names = append(names, rec.Name)
	}
	assert.ElementsMatch(t, []string{"order.created", "order.confirmed", "order.shipped", "order.completed"}, names)
}

func TestCannotBuyOwnListing(t *testing.T) {
	f := newOrderFixture(t)
	f.addListing(t, "l1", "seller", 500)

	_, err := f.svc.Create(context.Background(), CreateParams{Buyer: "seller", Listing: "l1"})
	assert.ErrorIs(t, err, domainorder.ErrBuyerIsSeller)
}

func TestSecondBuyerCannotConfirmSoldListing(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.addListing(t, "l1", "seller", 500)

	first, err := f.svc.Create(ctx, CreateParams{Buyer: "alice", Listing: "l1"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateParams{Buyer: "bob", Listing: "l1"})
	require.NoError(t, err, "holds may coexist while the listing is active")

	_, err = f.svc.ConfirmPayment(ctx, "alice", first.Order.ID)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayment(ctx, "bob", second.Order.ID)
	assert.ErrorIs(t, err, ErrListingUnavailable)
}

func TestActorGuards(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.addListing(t, "l1", "seller", 500)

	created, err := f.svc.Create(ctx, CreateParams{Buyer: "buyer", Listing: "l1"})
	require.NoError(t, err)
	orderID := created.Order.ID

	_, err = f.svc.ConfirmPayment(ctx, "someone", orderID)
	assert.ErrorIs(t, err, domainorder.ErrNotBuyer)

	_, err = f.svc.ConfirmPayment(ctx, "buyer", orderID)
	require.NoError(t, err)

	_, err = f.svc.MarkShipped(ctx, "buyer", orderID, "")
	assert.ErrorIs(t, err, domainorder.ErrNotSeller)

	_, err = f.svc.ConfirmDelivery(ctx, "seller", orderID)
	assert.ErrorIs(t, err, domainorder.ErrNotBuyer)

	_, err = f.svc.Get(ctx, "stranger", orderID)
	assert.ErrorIs(t, err, ErrNotInvolved)
}

func TestCancelBeforeShippingRefundsAndRelists(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.addListing(t, "l1", "seller", 500)

	created, err := f.svc.Create(ctx, CreateParams{Buyer: "buyer", Listing: "l1"})
	require.NoError(t, err)
	o, err := f.svc.ConfirmPayment(ctx, "buyer", created.Order.ID)
	require.NoError(t, err)

	o, err = f.svc.Cancel(ctx, "buyer", o.ID)
	require.NoError(t, err)
	assert.Equal(t, domainorder.StatusCancelled, o.Status)
	assert.Equal(t, domainorder.PaymentRefunded, o.PaymentStatus)

	l, err := f.listings.ByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusActive, l.Status, "cancelled purchase relists the item")

	// shipped orders can no longer be cancelled
	f.addListing(t, "l2", "seller", 700)
	created, err = f.svc.Create(ctx, CreateParams{Buyer: "buyer", Listing: "l2"})
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(ctx, "buyer", created.Order.ID)
	require.NoError(t, err)
	_, err = f.svc.MarkShipped(ctx, "seller", created.Order.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, "buyer", created.Order.ID)
	assert.ErrorIs(t, err, domainorder.ErrInvalidState)
}
