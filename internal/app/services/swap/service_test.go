package swap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainlisting "threadly/internal/domain/listing"
	domainswap "threadly/internal/domain/swap"
	"threadly/internal/infra/storage/memory"
)

type swapFixture struct {
	svc           *Service
	listings      *memory.ListingRepository
	notifications *memory.NotificationRepository
	outbox        *memory.Outbox
}

func newSwapFixture(t *testing.T) *swapFixture {
	t.Helper()
	f := &swapFixture{
		listings:      memory.NewListingRepository(),
		notifications: memory.NewNotificationRepository(),
		outbox:        memory.NewOutbox(),
	}
	f.svc = &Service{
		Swaps:         memory.NewSwapRepository(),
		Listings:      f.listings,
		Notifications: f.notifications,
		Outbox:        f.outbox,
	}
	return f
}

func (f *swapFixture) addListing(t *testing.T, id, seller string) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(id),
		Seller:      seller,
		Title:       "Item " + id,
		Description: "description",
		Category:    domainlisting.CategoryTops,
		Size:        domainlisting.SizeM,
		Condition:   domainlisting.ConditionGood,
		Price:       100,
		Status:      domainlisting.StatusActive,
	})
	require.NoError(t, err)
	require.NoError(t, f.listings.Save(context.Background(), l))
}

func (f *swapFixture) status(t *testing.T, id string) domainlisting.Status {
	t.Helper()
	l, err := f.listings.ByID(context.Background(), domainlisting.ID(id))
	require.NoError(t, err)
	return l.Status
}

func TestProposeAndAccept(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()
	f.addListing(t, "mine", "alice")
	f.addListing(t, "theirs", "bob")

	sw, err := f.svc.Propose(ctx, ProposeParams{
		Proposer:        "alice",
		ProposerListing: "mine",
		ReceiverListing: "theirs",
		Message:         "trade?",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", sw.Receiver)
	assert.Equal(t, domainswap.StatusProposed, sw.Status)

	// the receiver got a notification
	inbox, err := f.notifications.ByRecipient(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	sw, err = f.svc.Accept(ctx, "bob", sw.ID)
	require.NoError(t, err)
	assert.Equal(t, domainswap.StatusAccepted, sw.Status)
	assert.Equal(t, domainlisting.StatusSwapped, f.status(t, "mine"))
	assert.Equal(t, domainlisting.StatusSwapped, f.status(t, "theirs"))
}

func TestCounterReplacesReceiverListing(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()
	f.addListing(t, "mine", "alice")
	f.addListing(t, "theirs", "bob")
	f.addListing(t, "other", "bob")

	sw, err := f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "mine", ReceiverListing: "theirs"})
	require.NoError(t, err)

	sw, err = f.svc.Counter(ctx, CounterParams{Caller: "bob", SwapID: sw.ID, CounterListing: "other", Message: "this instead"})
	require.NoError(t, err)
	assert.Equal(t, domainswap.StatusCountered, sw.Status)

	sw, err = f.svc.AcceptCounter(ctx, "alice", sw.ID)
	require.NoError(t, err)
	assert.Equal(t, domainswap.StatusAccepted, sw.Status)

	assert.Equal(t, domainlisting.StatusSwapped, f.status(t, "mine"))
	assert.Equal(t, domainlisting.StatusSwapped, f.status(t, "other"))
	assert.Equal(t, domainlisting.StatusActive, f.status(t, "theirs"), "original stays listed once countered")
}

func TestProposeGuards(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()
	f.addListing(t, "mine", "alice")
	f.addListing(t, "theirs", "bob")

	_, err := f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "theirs", ReceiverListing: "mine"})
	assert.ErrorIs(t, err, ErrNotListingOwner)

	_, err = f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "mine", ReceiverListing: "mine"})
	assert.ErrorIs(t, err, domainswap.ErrSelfSwap)

	_, err = f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "mine", ReceiverListing: "theirs"})
	require.NoError(t, err)

	_, err = f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "mine", ReceiverListing: "theirs"})
	assert.ErrorIs(t, err, domainswap.ErrDuplicateSwap)
}

func TestOnlyReceiverMayRespond(t *testing.T) {
	f := newSwapFixture(t)
	ctx := context.Background()
	f.addListing(t, "mine", "alice")
	f.addListing(t, "theirs", "bob")

	sw, err := f.svc.Propose(ctx, ProposeParams{Proposer: "alice", ProposerListing: "mine", ReceiverListing: "theirs"})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, "alice", sw.ID)
	assert.ErrorIs(t, err, domainswap.ErrNotReceiver)

	_, err = f.svc.Cancel(ctx, "bob", sw.ID)
	assert.ErrorIs(t, err, domainswap.ErrNotProposer)

	sw, err = f.svc.Reject(ctx, "bob", sw.ID)
	require.NoError(t, err)
	assert.Equal(t, domainswap.StatusRejected, sw.Status)

	// rejected swaps leave listings on the market
	assert.Equal(t, domainlisting.StatusActive, f.status(t, "mine"))
	assert.Equal(t, domainlisting.StatusActive, f.status(t, "theirs"))
}
