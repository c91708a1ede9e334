package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CredentialVerifier decodes a bearer credential into a user id. Stateless;
// fails closed.
type CredentialVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// Gateway owns the lifecycle of each chat connection: it authenticates the
// handshake, maintains the presence table, routes inbound events to the
// pipeline and tears everything down on disconnect.
type Gateway struct {
	Verifier CredentialVerifier
	Pipeline *Pipeline
	Presence *Presence
	Rooms    *Rooms
	Logger   *slog.Logger

	upgrader websocket.Upgrader
}

func NewGateway(verifier CredentialVerifier, pipeline *Pipeline, presence *Presence, rooms *Rooms, logger *slog.Logger) *Gateway {
	return &Gateway{
		Verifier: verifier,
		Pipeline: pipeline,
		Presence: presence,
		Rooms:    rooms,
		Logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS policy is enforced by the HTTP layer in front of this
			// handler; the websocket endpoint itself accepts any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handle upgrades GET /ws to a websocket session. The bearer credential is
// verified before the upgrade completes, so an unauthenticated client never
// reaches the presence table.
func (g *Gateway) Handle(c *gin.Context) {
	token := handshakeToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	userID, err := g.Verifier.VerifyAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}

	conn := NewConn(userID, ws)
	conn.Start()
	g.attach(conn)
	defer g.detach(conn)

	g.readLoop(c.Request.Context(), conn, ws)
}

func (g *Gateway) attach(conn *Conn) {
	if previous := g.Presence.Register(conn.UserID, conn); previous != nil {
		g.Rooms.Drop(previous)
		previous.Close(websocket.ClosePolicyViolation, "session replaced")
	}
	if g.Logger != nil {
		g.Logger.Info("user connected", "user_id", conn.UserID)
	}
	// Full resync on every join: all clients get the complete online set.
	g.Presence.BroadcastAll(encodeOnlineUsers(g.Presence.Snapshot()))
}

func (g *Gateway) detach(conn *Conn) {
	g.Rooms.Drop(conn)
	g.Presence.Unregister(conn.UserID, conn)
	conn.Close(websocket.CloseNormalClosure, "session closed")
	if g.Logger != nil {
		g.Logger.Info("user disconnected", "user_id", conn.UserID)
	}
	g.Presence.BroadcastAll(encodeOnlineUsers(g.Presence.Snapshot()))
}

func (g *Gateway) readLoop(ctx context.Context, conn *Conn, ws *websocket.Conn) {
	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				if g.Logger != nil {
					g.Logger.Debug("read failed", "user_id", conn.UserID, "error", err)
				}
			}
			return
		}
		g.dispatch(ctx, conn, data)
	}
}

func (g *Gateway) dispatch(ctx context.Context, conn *Conn, data []byte) {
	frame, err := DecodeInbound(data)
	if err != nil {
		_ = conn.Send(encodeError(errorMessage(err)))
		return
	}

	switch frame.Event {
	case EventJoinConversation:
		g.Rooms.Join(frame.ConversationID, conn)
	case EventLeaveConversation:
		g.Rooms.Leave(frame.ConversationID, conn)
	case EventSendMessage:
		g.Pipeline.SendMessage(ctx, conn, frame.ConversationID, frame.Content)
	case EventTyping:
		g.Pipeline.Typing(conn, frame.ConversationID, false)
	case EventStopTyping:
		g.Pipeline.Typing(conn, frame.ConversationID, true)
	case EventMarkRead:
		g.Pipeline.MarkRead(ctx, conn, frame.ConversationID)
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownEvent):
		return "unknown event"
	case errors.Is(err, ErrConversationIDRequired):
		return "conversationId is required"
	case errors.Is(err, ErrContentRequired):
		return "content is required"
	default:
		return "invalid payload"
	}
}

// handshakeToken extracts the bearer credential from the query string or the
// Authorization header. Browsers cannot set headers on websocket requests,
// so the query form is the primary one.
func handshakeToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
