package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingsvc "threadly/internal/app/services/listing"
	domainlisting "threadly/internal/domain/listing"
	"threadly/internal/infra/storage/memory"
)

func TestSweepExpiresStaleListingsAndNotifiesSellers(t *testing.T) {
	ctx := context.Background()
	listings := memory.NewListingRepository()
	notifications := memory.NewNotificationRepository()

	stale, err := domainlisting.New(domainlisting.CreateParams{
		ID:          "l-stale",
		Seller:      "seller-1",
		Title:       "Wool coat",
		Description: "Heavy winter coat",
		Category:    domainlisting.CategoryOuterwear,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionGood,
		Price:       1200,
		Status:      domainlisting.StatusActive,
		CreatedAt:   time.Now().Add(-90 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, listings.Save(ctx, stale))

	fresh, err := domainlisting.New(domainlisting.CreateParams{
		ID:          "l-fresh",
		Seller:      "seller-2",
		Title:       "Linen shirt",
		Description: "Barely worn",
		Category:    domainlisting.CategoryTops,
		Size:        domainlisting.SizeL,
		Condition:   domainlisting.ConditionLikeNew,
		Price:       400,
		Status:      domainlisting.StatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, listings.Save(ctx, fresh))

	sweeper := &ExpirySweeper{
		Listings:      &listingsvc.Service{Listings: listings},
		Notifications: notifications,
		TTL:           60 * 24 * time.Hour,
	}
	sweeper.sweep(ctx)

	got, err := listings.ByID(ctx, "l-stale")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusExpired, got.Status)

	got, err = listings.ByID(ctx, "l-fresh")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusActive, got.Status)

	inbox, err := notifications.ByRecipient(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Contains(t, inbox[0].Message, "Wool coat")

	inbox, err = notifications.ByRecipient(ctx, "seller-2")
	require.NoError(t, err)
	assert.Empty(t, inbox)
}
