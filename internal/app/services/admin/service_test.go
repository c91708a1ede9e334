package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authsvc "threadly/internal/app/services/auth"
	domainlisting "threadly/internal/domain/listing"
	domainorder "threadly/internal/domain/order"
	domainswap "threadly/internal/domain/swap"
	domainuser "threadly/internal/domain/user"
	"threadly/internal/infra/security"
	"threadly/internal/infra/storage/memory"
)

type adminFixture struct {
	svc      *Service
	users    *memory.UserRepository
	listings *memory.ListingRepository
	orders   *memory.OrderRepository
	swaps    *memory.SwapRepository
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	f := &adminFixture{
		users:    memory.NewUserRepository(),
		listings: memory.NewListingRepository(),
		orders:   memory.NewOrderRepository(),
		swaps:    memory.NewSwapRepository(),
	}
	f.svc = &Service{
		Users:    f.users,
		Listings: f.listings,
		Orders:   f.orders,
		Swaps:    f.swaps,
	}
	return f
}

func (f *adminFixture) addUser(t *testing.T, id, email string, createdAt time.Time) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		Name:         "User " + id,
		PasswordHash: "hash",
		CreatedAt:    createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
}

func (f *adminFixture) addListing(t *testing.T, id, seller string, status domainlisting.Status) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(id),
		Seller:      seller,
		Title:       "Item " + id,
		Description: "description",
		Category:    domainlisting.CategoryTops,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionGood,
		Price:       250,
		Status:      domainlisting.StatusActive,
	})
	require.NoError(t, err)
	l.Status = status
	require.NoError(t, f.listings.Save(context.Background(), l))
}

func (f *adminFixture) addOrder(t *testing.T, id string, amount float64, completed bool) {
	t.Helper()
	now := time.Now()
	o, err := domainorder.New(id, "buyer-"+id, "seller-"+id, "listing-"+id, amount, "pi_"+id, domainorder.ShippingAddress{}, now)
	require.NoError(t, err)
	if completed {
		require.NoError(t, o.ConfirmPayment("pay_"+id, now))
		require.NoError(t, o.MarkShipped("seller-"+id, now))
		require.NoError(t, o.ConfirmDelivery("buyer-"+id, now))
	}
	require.NoError(t, f.orders.Save(context.Background(), o))
}

func (f *adminFixture) addSwap(t *testing.T, id string, completed bool) {
	t.Helper()
	now := time.Now()
	sw, err := domainswap.New(id, "alice", "bob", "l1-"+id, "l2-"+id, "", now)
	require.NoError(t, err)
	if completed {
		require.NoError(t, sw.Accept("bob", now))
		require.NoError(t, sw.Complete("alice", now))
	}
	require.NoError(t, f.swaps.Save(context.Background(), sw))
}

func TestDashboardRollup(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"} {
		f.addUser(t, id, id+"@example.com", base.Add(time.Duration(i)*time.Hour))
	}
	f.addListing(t, "l1", "u1", domainlisting.StatusActive)
	f.addListing(t, "l2", "u1", domainlisting.StatusActive)
	f.addListing(t, "l3", "u2", domainlisting.StatusSold)
	f.addOrder(t, "o1", 500, true)
	f.addOrder(t, "o2", 300, true)
	f.addOrder(t, "o3", 999, false)
	f.addSwap(t, "s1", true)
	f.addSwap(t, "s2", false)

	d, err := f.svc.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(7), d.TotalUsers)
	assert.Equal(t, int64(3), d.TotalListings)
	assert.Equal(t, int64(2), d.ActiveListings)
	assert.Equal(t, int64(3), d.TotalOrders)
	assert.Equal(t, int64(2), d.CompletedOrders)
	assert.Equal(t, int64(2), d.TotalSwaps)
	assert.Equal(t, int64(1), d.CompletedSwaps)
	assert.Equal(t, 800.0, d.Revenue)

	require.Len(t, d.RecentOrders, 3)
	require.Len(t, d.RecentUsers, 5)
	// newest signup first
	assert.Equal(t, domainuser.ID("u7"), d.RecentUsers[0].ID)
	assert.Equal(t, domainuser.ID("u3"), d.RecentUsers[4].ID)
}

func TestAllUsersNewestFirst(t *testing.T) {
	f := newAdminFixture(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.addUser(t, "old", "old@example.com", base)
	f.addUser(t, "new", "new@example.com", base.Add(time.Hour))

	users, err := f.svc.AllUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domainuser.ID("new"), users[0].ID)
	assert.Equal(t, domainuser.ID("old"), users[1].ID)
}

func TestDeactivatedUserCannotLogIn(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	auth := &authsvc.Service{
		Users:     f.users,
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.NewTokenManager("test-secret", "test-refresh", time.Minute, time.Hour),
	}
	res, err := auth.Register(ctx, authsvc.RegisterParams{
		Email:    "mallory@example.com",
		Name:     "Mallory",
		Password: "correct horse",
	})
	require.NoError(t, err)

	u, err := f.svc.SetUserActive(ctx, res.User.ID, false)
	require.NoError(t, err)
	assert.False(t, u.Active)

	_, err = auth.Login(ctx, authsvc.LoginParams{Email: "mallory@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, authsvc.ErrAccountDeactivated)

	// reactivation restores access
	_, err = f.svc.SetUserActive(ctx, res.User.ID, true)
	require.NoError(t, err)
	_, err = auth.Login(ctx, authsvc.LoginParams{Email: "mallory@example.com", Password: "correct horse"})
	assert.NoError(t, err)
}

func TestSetUserActiveUnknownUser(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.SetUserActive(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestRemoveListingExpiresIt(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	f.addListing(t, "l1", "u1", domainlisting.StatusActive)

	l, err := f.svc.RemoveListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusExpired, l.Status)

	// the record survives for order and swap history
	kept, err := f.listings.ByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusExpired, kept.Status)
}

func TestAllListingsSeesEveryStatus(t *testing.T) {
	f := newAdminFixture(t)
	f.addListing(t, "l1", "u1", domainlisting.StatusActive)
	f.addListing(t, "l2", "u1", domainlisting.StatusDraft)
	f.addListing(t, "l3", "u2", domainlisting.StatusExpired)

	_, total, err := f.svc.AllListings(context.Background(), domainlisting.Query{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}
