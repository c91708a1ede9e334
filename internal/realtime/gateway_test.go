package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadly/internal/domain/chat"
	"threadly/internal/infra/security"
	"threadly/internal/infra/storage/memory"
	"threadly/internal/realtime"
)

type noopResolver struct{}

func (noopResolver) Resolve(_ context.Context, userID string) (realtime.Identity, error) {
	return realtime.Identity{Name: userID}, nil
}

type gatewayFixture struct {
	server *httptest.Server
	tokens *security.TokenManager
	store  *memory.ChatStore
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewChatStore()
	tokens := security.NewTokenManager("test-secret", "test-refresh", time.Minute, time.Hour)
	rooms := realtime.NewRooms()
	presence := realtime.NewPresence()
	pipeline := realtime.NewPipeline(store, store.MessageStore(), noopResolver{}, rooms, presence, nil)
	gateway := realtime.NewGateway(tokens, pipeline, presence, rooms, nil)

	router := gin.New()
	router.GET("/ws", gateway.Handle)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &gatewayFixture{server: server, tokens: tokens, store: store}
}

func (f *gatewayFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.IssueAccessToken(userID)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

// readUntil skips events until one with the given name arrives.
func readUntil(t *testing.T, ws *websocket.Conn, name string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		event := readEvent(t, ws)
		if event["event"] == name {
			return event
		}
	}
	t.Fatalf("event %q never arrived", name)
	return nil
}

func send(t *testing.T, ws *websocket.Conn, frame map[string]any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(frame))
}

func onlineSet(event map[string]any) map[string]bool {
	set := make(map[string]bool)
	for _, u := range event["users"].([]any) {
		set[u.(string)] = true
	}
	return set
}

func TestHandshakeRejectsMissingAndBadTokens(t *testing.T) {
	f := newGatewayFixture(t)

	resp, err := http.Get(f.server.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=garbage"
	_, resp, err = websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOnlineUsersResyncOnConnectAndDisconnect(t *testing.T) {
	f := newGatewayFixture(t)

	alice := f.dial(t, "alice")
	event := readUntil(t, alice, "onlineUsers")
	assert.True(t, onlineSet(event)["alice"])

	bob := f.dial(t, "bob")
	event = readUntil(t, bob, "onlineUsers")
	set := onlineSet(event)
	assert.True(t, set["alice"])
	assert.True(t, set["bob"])

	// alice sees the resync triggered by bob's connect
	event = readUntil(t, alice, "onlineUsers")
	assert.True(t, onlineSet(event)["bob"])

	require.NoError(t, bob.Close())
	event = readUntil(t, alice, "onlineUsers")
	set = onlineSet(event)
	assert.True(t, set["alice"])
	assert.False(t, set["bob"], "disconnected user leaves the online set")
}

func TestMessageRoundTripOverWire(t *testing.T) {
	f := newGatewayFixture(t)
	conv, err := chat.NewConversation(chat.NewConversationParams{ID: "c1", Participants: []string{"alice", "bob"}})
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), conv))

	alice := f.dial(t, "alice")
	readUntil(t, alice, "onlineUsers")
	bob := f.dial(t, "bob")
	readUntil(t, bob, "onlineUsers")
	readUntil(t, alice, "onlineUsers")

	send(t, alice, map[string]any{"event": "joinConversation", "conversationId": "c1"})
	send(t, bob, map[string]any{"event": "joinConversation", "conversationId": "c1"})
	// Room joins are processed in-order per connection; the next frame from
	// alice is only handled after her join.
	time.Sleep(50 * time.Millisecond)

	send(t, alice, map[string]any{"event": "sendMessage", "conversationId": "c1", "content": "hello"})

	for _, ws := range []*websocket.Conn{alice, bob} {
		event := readUntil(t, ws, "newMessage")
		msg := event["message"].(map[string]any)
		assert.Equal(t, "hello", msg["content"])
		assert.Equal(t, []any{"alice"}, msg["readBy"])
	}

	msgs, err := f.store.ByConversation(context.Background(), "c1", 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestNotificationForOnlineUnsubscribedParticipant(t *testing.T) {
	f := newGatewayFixture(t)
	conv, err := chat.NewConversation(chat.NewConversationParams{ID: "c1", Participants: []string{"alice", "bob"}})
	require.NoError(t, err)
	require.NoError(t, f.store.Create(context.Background(), conv))

	alice := f.dial(t, "alice")
	readUntil(t, alice, "onlineUsers")
	bob := f.dial(t, "bob") // online, never joins c1
	readUntil(t, bob, "onlineUsers")

	send(t, alice, map[string]any{"event": "joinConversation", "conversationId": "c1"})
	time.Sleep(50 * time.Millisecond)
	send(t, alice, map[string]any{"event": "sendMessage", "conversationId": "c1", "content": "ping"})

	event := readUntil(t, bob, "messageNotification")
	assert.Equal(t, "c1", event["conversationId"])
	assert.Equal(t, "alice", event["sender"])
	assert.Equal(t, "ping", event["content"])
}

func TestMalformedFramesGetErrorEvents(t *testing.T) {
	f := newGatewayFixture(t)

	alice := f.dial(t, "alice")
	readUntil(t, alice, "onlineUsers")

	send(t, alice, map[string]any{"event": "selfDestruct"})
	event := readUntil(t, alice, "error")
	assert.Equal(t, "unknown event", event["message"])

	send(t, alice, map[string]any{"event": "sendMessage", "conversationId": "c1"})
	event = readUntil(t, alice, "error")
	assert.Equal(t, "content is required", event["message"])

	send(t, alice, map[string]any{"event": "markRead"})
	event = readUntil(t, alice, "error")
	assert.Equal(t, "conversationId is required", event["message"])
}
