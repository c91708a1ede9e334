package swap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSwap(t *testing.T) *Swap {
	t.Helper()
	s, err := New("s1", "alice", "bob", "la", "lb", "trade?", now)
	require.NoError(t, err)
	return s
}

func TestNewValidation(t *testing.T) {
	_, err := New("s1", "alice", "alice", "la", "lb", "", now)
	assert.ErrorIs(t, err, ErrSelfSwap)

	_, err = New("s1", "alice", "bob", "", "lb", "", now)
	assert.ErrorIs(t, err, ErrListingsRequired)
}

func TestAcceptFlow(t *testing.T) {
	s := newTestSwap(t)

	assert.ErrorIs(t, s.Accept("alice", now), ErrNotReceiver)
	require.NoError(t, s.Accept("bob", now))
	assert.Equal(t, StatusAccepted, s.Status)
	assert.Equal(t, []string{"la", "lb"}, s.TradedListings())

	// accepted swaps cannot be responded to again
	assert.ErrorIs(t, s.Reject("bob", now), ErrInvalidState)

	require.NoError(t, s.Complete("alice", now))
	assert.Equal(t, StatusCompleted, s.Status)
}

func TestCounterFlow(t *testing.T) {
	s := newTestSwap(t)

	assert.ErrorIs(t, s.Counter("bob", "", "", now), ErrCounterRequired)
	require.NoError(t, s.Counter("bob", "lc", "this instead?", now))
	assert.Equal(t, StatusCountered, s.Status)

	assert.ErrorIs(t, s.AcceptCounter("bob", now), ErrNotProposer)
	require.NoError(t, s.AcceptCounter("alice", now))
	assert.Equal(t, StatusAccepted, s.Status)
	assert.Equal(t, []string{"la", "lc"}, s.TradedListings(), "counter listing replaces the original ask")
}

func TestCancel(t *testing.T) {
	s := newTestSwap(t)

	assert.ErrorIs(t, s.Cancel("bob", now), ErrNotProposer)
	require.NoError(t, s.Cancel("alice", now))
	assert.Equal(t, StatusCancelled, s.Status)

	assert.ErrorIs(t, s.Cancel("alice", now), ErrInvalidState)
}

func TestCompleteRequiresAccepted(t *testing.T) {
	s := newTestSwap(t)
	assert.ErrorIs(t, s.Complete("alice", now), ErrInvalidState)
	assert.ErrorIs(t, s.Complete("mallory", now), ErrNotInvolved)
}
