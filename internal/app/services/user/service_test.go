package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	domainuser "threadly/internal/domain/user"
	"threadly/internal/infra/storage/memory"
)

type userFixture struct {
	svc           *Service
	users         *memory.UserRepository
	listings      *memory.ListingRepository
	notifications *memory.NotificationRepository
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:         memory.NewUserRepository(),
		listings:      memory.NewListingRepository(),
		notifications: memory.NewNotificationRepository(),
	}
	f.svc = &Service{
		Users:         f.users,
		Listings:      f.listings,
		Notifications: f.notifications,
	}
	return f
}

func (f *userFixture) addUser(t *testing.T, id string) {
	t.Helper()
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        id + "@example.com",
		Name:         "User " + id,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.NoError(t, f.users.Save(context.Background(), u))
}

func (f *userFixture) addListing(t *testing.T, id, seller string) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(id),
		Seller:      seller,
		Title:       "Item " + id,
		Description: "description",
		Category:    domainlisting.CategoryTops,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionGood,
		Price:       150,
		Status:      domainlisting.StatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), l))
}

func TestToggleWishlistRoundTrip(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	f.addUser(t, "bea")
	f.addListing(t, "coat", "sam")

	wishlisted, err := f.svc.ToggleWishlist(ctx, "bea", "coat")
	require.NoError(t, err)
	assert.True(t, wishlisted)

	items, err := f.svc.Wishlist(ctx, "bea")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domainlisting.ID("coat"), items[0].ID)

	// toggling again removes it
	wishlisted, err = f.svc.ToggleWishlist(ctx, "bea", "coat")
	require.NoError(t, err)
	assert.False(t, wishlisted)

	items, err = f.svc.Wishlist(ctx, "bea")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestToggleWishlistUnknownListing(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "bea")

	_, err := f.svc.ToggleWishlist(context.Background(), "bea", "ghost")
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)
}

func TestWishlistSkipsDeletedListings(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	f.addUser(t, "bea")
	f.addListing(t, "coat", "sam")
	f.addListing(t, "scarf", "sam")

	_, err := f.svc.ToggleWishlist(ctx, "bea", "coat")
	require.NoError(t, err)
	_, err = f.svc.ToggleWishlist(ctx, "bea", "scarf")
	require.NoError(t, err)

	require.NoError(t, f.listings.Delete(ctx, "coat"))

	items, err := f.svc.Wishlist(ctx, "bea")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domainlisting.ID("scarf"), items[0].ID)
}

func TestProfileHidesPrivateFields(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "bea")

	profile, err := f.svc.Profile(context.Background(), "bea")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("bea"), profile.ID)
	assert.Equal(t, "User bea", profile.Name)

	_, err = f.svc.Profile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}

func TestInboxMarkRead(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	f.addUser(t, "bea")

	for _, id := range []string{"n1", "n2", "n3"} {
		n := &domainnotification.Notification{
			ID:        id,
			Recipient: "bea",
			Type:      domainnotification.TypeOrderShipped,
			Message:   "your order moved",
			CreatedAt: time.Now(),
		}
		require.NoError(t, f.notifications.Create(ctx, n))
	}

	inbox, err := f.svc.Inbox(ctx, "bea")
	require.NoError(t, err)
	require.Len(t, inbox, 3)

	require.NoError(t, f.svc.MarkNotificationRead(ctx, "bea", "n1"))
	inbox, err = f.svc.Inbox(ctx, "bea")
	require.NoError(t, err)
	var unread int
	for _, n := range inbox {
		if !n.Read {
			unread++
		}
	}
	assert.Equal(t, 2, unread)

	// one user cannot mark another's notification
	err = f.svc.MarkNotificationRead(ctx, "mallory", "n2")
	assert.ErrorIs(t, err, domainnotification.ErrNotFound)

	require.NoError(t, f.svc.MarkInboxRead(ctx, "bea"))
	inbox, err = f.svc.Inbox(ctx, "bea")
	require.NoError(t, err)
	for _, n := range inbox {
		assert.True(t, n.Read)
	}
}
