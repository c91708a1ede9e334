package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadly/internal/domain/chat"
	"threadly/internal/infra/storage/memory"
)

type staticResolver map[string]Identity

func (r staticResolver) Resolve(_ context.Context, userID string) (Identity, error) {
	if id, ok := r[userID]; ok {
		return id, nil
	}
	return Identity{}, errors.New("unknown user")
}

type failingMessageStore struct{}

func (failingMessageStore) Create(context.Context, *chat.Message) error { return errors.New("down") }
func (failingMessageStore) ByConversation(context.Context, string, int, int) ([]*chat.Message, error) {
	return nil, errors.New("down")
}
func (failingMessageStore) MarkReadBulk(context.Context, string, string) error {
	return errors.New("down")
}

type pipelineFixture struct {
	store    *memory.ChatStore
	pipeline *Pipeline
	rooms    *Rooms
	presence *Presence
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	store := memory.NewChatStore()
	rooms := NewRooms()
	presence := NewPresence()
	pipeline := NewPipeline(store, store.MessageStore(), staticResolver{
		"alice": {Name: "Alice", Avatar: "a.png"},
		"bob":   {Name: "Bob"},
	}, rooms, presence, nil)
	pipeline.NewID = newSequentialIDs()
	pipeline.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return &pipelineFixture{store: store, pipeline: pipeline, rooms: rooms, presence: presence}
}

func (f *pipelineFixture) addConversation(t *testing.T, id string, participants ...string) {
	t.Helper()
	conv, err := chat.NewConversation(chat.NewConversationParams{ID: id, Participants: participants})
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), conv))
}

func newSequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return string(rune('0' + n))
	}
}

func recv(t *testing.T, c *Conn) map[string]any {
	t.Helper()
	select {
	case data := <-c.send:
		var event map[string]any
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("expected a queued event")
		return nil
	}
}

func TestSendMessageBroadcastsToRoomIncludingSender(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "alice", "bob")

	alice := NewConn("alice", nil)
	bob := NewConn("bob", nil)
	f.presence.Register("alice", alice)
	f.presence.Register("bob", bob)
	f.rooms.Join("c1", alice)
	f.rooms.Join("c1", bob)

	f.pipeline.SendMessage(context.Background(), alice, "c1", "hello")

	for _, conn := range []*Conn{alice, bob} {
		event := recv(t, conn)
		assert.Equal(t, "newMessage", event["event"])
		msg := event["message"].(map[string]any)
		assert.Equal(t, "hello", msg["content"])
		assert.Equal(t, []any{"alice"}, msg["readBy"], "readBy starts as exactly the sender")
		sender := msg["sender"].(map[string]any)
		assert.Equal(t, "alice", sender["id"])
		assert.Equal(t, "Alice", sender["name"])
	}
	assert.Empty(t, bob.send, "exactly one event per subscriber")

	msgs, err := f.store.ByConversation(context.Background(), "c1", 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1, "exactly one message row persisted")
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, []string{"alice"}, msgs[0].ReadBy)

	conv, err := f.store.ByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello", conv.LastMessage)
}

func TestSendMessageNotifiesOnlineUnsubscribedParticipant(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "alice", "bob")

	alice := NewConn("alice", nil)
	bob := NewConn("bob", nil)
	f.presence.Register("alice", alice)
	f.presence.Register("bob", bob)
	f.rooms.Join("c1", alice) // bob is online but has not joined c1

	f.pipeline.SendMessage(context.Background(), alice, "c1", "hi")

	event := recv(t, bob)
	assert.Equal(t, "messageNotification", event["event"])
	assert.Equal(t, "c1", event["conversationId"])
	assert.Equal(t, "alice", event["sender"])
	assert.Equal(t, "hi", event["content"])
	assert.Empty(t, bob.send, "no newMessage for a non-subscriber")
}

func TestSendMessageOfflineParticipantGetsNothing(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "alice", "bob")

	alice := NewConn("alice", nil)
	f.presence.Register("alice", alice)
	f.rooms.Join("c1", alice)

	f.pipeline.SendMessage(context.Background(), alice, "c1", "anyone there?")

	event := recv(t, alice)
	assert.Equal(t, "newMessage", event["event"])

	msgs, err := f.store.ByConversation(context.Background(), "c1", 1, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "send succeeds even with the peer offline")
}

func TestSendMessagePersistenceFailureOnlyErrorsOriginator(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "alice", "bob")
	f.pipeline.Messages = failingMessageStore{}

	alice := NewConn("alice", nil)
	bob := NewConn("bob", nil)
	f.rooms.Join("c1", alice)
	f.rooms.Join("c1", bob)

	f.pipeline.SendMessage(context.Background(), alice, "c1", "hello")

	event := recv(t, alice)
	assert.Equal(t, "error", event["event"])
	assert.Equal(t, "Failed to send message", event["message"])
	assert.Empty(t, bob.send, "no partial broadcast on persistence failure")
}

func TestSendMessageResolverFailureStillBroadcasts(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "carol", "bob")

	carol := NewConn("carol", nil) // not in the resolver fixture
	f.rooms.Join("c1", carol)

	f.pipeline.SendMessage(context.Background(), carol, "c1", "hi")

	event := recv(t, carol)
	assert.Equal(t, "newMessage", event["event"])
	sender := event["message"].(map[string]any)["sender"].(map[string]any)
	assert.Equal(t, "carol", sender["id"])
	_, hasName := sender["name"]
	assert.False(t, hasName, "display fields omitted when resolution fails")
}

func TestMarkReadUpdatesPeersOnly(t *testing.T) {
	f := newPipelineFixture(t)
	f.addConversation(t, "c1", "alice", "bob")

	alice := NewConn("alice", nil)
	bob := NewConn("bob", nil)
	f.rooms.Join("c1", alice)
	f.rooms.Join("c1", bob)

	f.pipeline.SendMessage(context.Background(), alice, "c1", "one")
	f.pipeline.SendMessage(context.Background(), bob, "c1", "two")
	drain(alice)
	drain(bob)

	f.pipeline.MarkRead(context.Background(), bob, "c1")

	event := recv(t, alice)
	assert.Equal(t, "messagesRead", event["event"])
	assert.Equal(t, "c1", event["conversationId"])
	assert.Equal(t, "bob", event["userId"])
	assert.Empty(t, bob.send, "caller does not receive its own read receipt")

	msgs, err := f.store.ByConversation(context.Background(), "c1", 1, 10)
	require.NoError(t, err)
	for _, msg := range msgs {
		if msg.Sender == "alice" {
			assert.ElementsMatch(t, []string{"alice", "bob"}, msg.ReadBy)
		} else {
			assert.Equal(t, []string{"bob"}, msg.ReadBy, "own messages unaffected by markRead")
		}
	}

	// idempotent: repeating changes nothing
	f.pipeline.MarkRead(context.Background(), bob, "c1")
	msgs, err = f.store.ByConversation(context.Background(), "c1", 1, 10)
	require.NoError(t, err)
	for _, msg := range msgs {
		assert.LessOrEqual(t, len(msg.ReadBy), 2)
	}
}

func TestTypingExcludesOriginator(t *testing.T) {
	f := newPipelineFixture(t)

	alice := NewConn("alice", nil)
	bob := NewConn("bob", nil)
	f.rooms.Join("c1", alice)
	f.rooms.Join("c1", bob)

	f.pipeline.Typing(alice, "c1", false)
	event := recv(t, bob)
	assert.Equal(t, "userTyping", event["event"])
	assert.Equal(t, "alice", event["userId"])
	assert.Empty(t, alice.send)

	f.pipeline.Typing(alice, "c1", true)
	event = recv(t, bob)
	assert.Equal(t, "userStoppedTyping", event["event"])
	assert.Empty(t, alice.send)
}

func drain(c *Conn) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
