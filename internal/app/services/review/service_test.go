package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainorder "threadly/internal/domain/order"
	domainreview "threadly/internal/domain/review"
	domainuser "threadly/internal/domain/user"
	"threadly/internal/infra/storage/memory"
)

type reviewFixture struct {
	svc    *Service
	orders *memory.OrderRepository
	users  *memory.UserRepository
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		orders: memory.NewOrderRepository(),
		users:  memory.NewUserRepository(),
	}
	f.svc = &Service{
		Reviews:       memory.NewReviewRepository(),
		Orders:        f.orders,
		Users:         f.users,
		Notifications: memory.NewNotificationRepository(),
	}

	seller, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           "seller",
		Email:        "seller@example.com",
		Name:         "Seller",
		PasswordHash: "x",
		Role:         domainuser.RoleSeller,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), seller))
	return f
}

func (f *reviewFixture) addOrder(t *testing.T, id, buyer string, status domainorder.Status) {
	t.Helper()
	o, err := domainorder.New(id, buyer, "seller", "l1", 100, "pi_1", domainorder.ShippingAddress{}, time.Now())
	require.NoError(t, err)
	o.Status = status
	require.NoError(t, f.orders.Save(context.Background(), o))
}

func TestSubmitUpdatesSellerRating(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	f.addOrder(t, "o1", "alice", domainorder.StatusCompleted)
	f.addOrder(t, "o2", "bob", domainorder.StatusCompleted)

	_, err := f.svc.Submit(ctx, SubmitParams{Reviewer: "alice", OrderID: "o1", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, SubmitParams{Reviewer: "bob", OrderID: "o2", Rating: 4})
	require.NoError(t, err)

	seller, err := f.users.ByID(ctx, "seller")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, seller.SellerRating, 0.001)
	assert.Equal(t, 2, seller.TotalReviews)

	reviews, err := f.svc.BySeller(ctx, "seller")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestSubmitGuards(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	f.addOrder(t, "done", "alice", domainorder.StatusCompleted)
	f.addOrder(t, "open", "alice", domainorder.StatusShipped)

	_, err := f.svc.Submit(ctx, SubmitParams{Reviewer: "bob", OrderID: "done", Rating: 5})
	assert.ErrorIs(t, err, domainreview.ErrNotOrderBuyer)

	_, err = f.svc.Submit(ctx, SubmitParams{Reviewer: "alice", OrderID: "open", Rating: 5})
	assert.ErrorIs(t, err, domainreview.ErrOrderIncomplete)

	_, err = f.svc.Submit(ctx, SubmitParams{Reviewer: "alice", OrderID: "done", Rating: 6})
	assert.ErrorIs(t, err, domainreview.ErrInvalidRating)

	_, err = f.svc.Submit(ctx, SubmitParams{Reviewer: "alice", OrderID: "done", Rating: 5})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, SubmitParams{Reviewer: "alice", OrderID: "done", Rating: 3})
	assert.ErrorIs(t, err, domainreview.ErrAlreadyReviewed)
}
