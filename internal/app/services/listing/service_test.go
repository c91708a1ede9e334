package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadly/internal/app/policies"
	domainlisting "threadly/internal/domain/listing"
	"threadly/internal/infra/storage/memory"
)

type stubDescriber struct {
	result policies.ListingDescription
	err    error
}

func (d stubDescriber) Describe(context.Context, string, string, string, []string) (policies.ListingDescription, error) {
	return d.result, d.err
}

func validCreateParams(seller string) CreateParams {
	return CreateParams{
		Seller:      seller,
		Title:       "Vintage band tee",
		Description: "Soft and faded just right",
		Category:    domainlisting.CategoryTops,
		Size:        domainlisting.SizeL,
		Condition:   domainlisting.ConditionGood,
		Price:       450,
	}
}

func TestCreatePublishesActiveListing(t *testing.T) {
	outbox := memory.NewOutbox()
	svc := &Service{Listings: memory.NewListingRepository(), Outbox: outbox}

	l, err := svc.Create(context.Background(), validCreateParams("seller"))
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusActive, l.Status)
	assert.Equal(t, "Unbranded", l.Brand)
	assert.Contains(t, l.Slug, "vintage-band-tee-")
	assert.False(t, l.AIGenerated)

	records := outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "listing.published", records[0].Name)
}

func TestCreateWithDescriber(t *testing.T) {
	svc := &Service{
		Listings: memory.NewListingRepository(),
		Describer: stubDescriber{result: policies.ListingDescription{
			Description: "Machine-written prose",
			Tags:        []string{"vintage", "band"},
		}},
	}
	params := validCreateParams("seller")
	params.AutoDescribe = true

	l, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Machine-written prose", l.Description)
	assert.Equal(t, []string{"vintage", "band"}, l.Tags)
	assert.True(t, l.AIGenerated)
}

func TestCreateDescriberFailureFallsBack(t *testing.T) {
	svc := &Service{
		Listings:  memory.NewListingRepository(),
		Describer: stubDescriber{err: errors.New("model down")},
	}
	params := validCreateParams("seller")
	params.AutoDescribe = true

	l, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "Soft and faded just right", l.Description)
	assert.False(t, l.AIGenerated)
}

func TestUpdateGuards(t *testing.T) {
	svc := &Service{Listings: memory.NewListingRepository()}
	ctx := context.Background()
	l, err := svc.Create(ctx, validCreateParams("seller"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "stranger", l.ID, UpdateParams{})
	assert.ErrorIs(t, err, ErrNotOwner)

	newPrice := -1.0
	_, err = svc.Update(ctx, "seller", l.ID, UpdateParams{Price: &newPrice})
	assert.ErrorIs(t, err, domainlisting.ErrNegativePrice)

	goodPrice := 300.0
	updated, err := svc.Update(ctx, "seller", l.ID, UpdateParams{Price: &goodPrice})
	require.NoError(t, err)
	assert.Equal(t, 300.0, updated.Price)

	require.NoError(t, svc.Listings.UpdateStatus(ctx, l.ID, domainlisting.StatusSold))
	_, err = svc.Update(ctx, "seller", l.ID, UpdateParams{Price: &goodPrice})
	assert.ErrorIs(t, err, domainlisting.ErrNotActive)
}

func TestBrowseDefaultsToActive(t *testing.T) {
	svc := &Service{Listings: memory.NewListingRepository()}
	ctx := context.Background()

	active, err := svc.Create(ctx, validCreateParams("seller"))
	require.NoError(t, err)
	sold, err := svc.Create(ctx, validCreateParams("seller"))
	require.NoError(t, err)
	require.NoError(t, svc.Listings.UpdateStatus(ctx, sold.ID, domainlisting.StatusSold))

	result, total, err := svc.Browse(ctx, domainlisting.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, result, 1)
	assert.Equal(t, active.ID, result[0].ID)
}

func TestExpireStale(t *testing.T) {
	outbox := memory.NewOutbox()
	listings := memory.NewListingRepository()
	svc := &Service{Listings: listings, Outbox: outbox}
	ctx := context.Background()

	old, err := domainlisting.New(domainlisting.CreateParams{
		ID:          "old",
		Seller:      "seller",
		Title:       "Stale coat",
		Description: "desc",
		Category:    domainlisting.CategoryOuterwear,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionFair,
		Price:       100,
		Status:      domainlisting.StatusActive,
		CreatedAt:   time.Now().Add(-90 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, listings.Save(ctx, old))

	fresh, err := svc.Create(ctx, validCreateParams("seller"))
	require.NoError(t, err)

	expired, err := svc.ExpireStale(ctx, time.Now().Add(-60*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, domainlisting.ID("old"), expired[0].ID)

	got, err := listings.ByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusExpired, got.Status)

	got, err = listings.ByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domainlisting.StatusActive, got.Status)
}
