package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceRegisterAndSnapshot(t *testing.T) {
	p := NewPresence()
	a := NewConn("alice", nil)
	b := NewConn("bob", nil)

	assert.Nil(t, p.Register("alice", a))
	assert.Nil(t, p.Register("bob", b))

	assert.True(t, p.IsOnline("alice"))
	assert.True(t, p.IsOnline("bob"))
	assert.ElementsMatch(t, []string{"alice", "bob"}, p.Snapshot())
	assert.Same(t, a, p.Get("alice"))
}

func TestPresenceLastWriteWins(t *testing.T) {
	p := NewPresence()
	first := NewConn("alice", nil)
	second := NewConn("alice", nil)

	p.Register("alice", first)
	displaced := p.Register("alice", second)

	assert.Same(t, first, displaced)
	assert.Same(t, second, p.Get("alice"))
	assert.Len(t, p.Snapshot(), 1, "one entry per user regardless of logins")
}

func TestPresenceUnregisterIgnoresStaleConn(t *testing.T) {
	p := NewPresence()
	first := NewConn("alice", nil)
	second := NewConn("alice", nil)

	p.Register("alice", first)
	p.Register("alice", second)

	// teardown of the replaced connection must not evict the live one
	p.Unregister("alice", first)
	assert.True(t, p.IsOnline("alice"))

	p.Unregister("alice", second)
	assert.False(t, p.IsOnline("alice"))
	assert.Empty(t, p.Snapshot())
}

func TestPresenceBroadcastAll(t *testing.T) {
	p := NewPresence()
	a := NewConn("alice", nil)
	b := NewConn("bob", nil)
	p.Register("alice", a)
	p.Register("bob", b)

	p.BroadcastAll([]byte(`{"event":"onlineUsers"}`))

	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}
