package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"threadly/internal/domain/chat"
)

// Identity carries the display fields resolved for a message sender.
type Identity struct {
	Name   string
	Avatar string
}

// IdentityResolver looks up display fields for client rendering.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}

// Pipeline validates, persists and fans out chat traffic. All four operations
// are fire-and-forget from the transport's perspective: the only caller-visible
// failure channel is an error event emitted back to the originating connection.
type Pipeline struct {
	Conversations chat.ConversationStore
	Messages      chat.MessageStore
	Identities    IdentityResolver
	Rooms         *Rooms
	Presence      *Presence
	Logger        *slog.Logger

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

func NewPipeline(conversations chat.ConversationStore, messages chat.MessageStore, identities IdentityResolver, rooms *Rooms, presence *Presence, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Conversations: conversations,
		Messages:      messages,
		Identities:    identities,
		Rooms:         rooms,
		Presence:      presence,
		Logger:        logger,
		Now:           time.Now,
		NewID:         uuid.NewString,
	}
}

// SendMessage persists the message, updates the conversation summary,
// broadcasts the resolved message to the room and side-notifies online
// participants who are not subscribed to it.
func (p *Pipeline) SendMessage(ctx context.Context, sender *Conn, conversationID, content string) {
	msg, err := chat.NewMessage(chat.NewMessageParams{
		ID:             p.NewID(),
		ConversationID: conversationID,
		Sender:         sender.UserID,
		Content:        content,
		CreatedAt:      p.Now(),
	})
	if err != nil {
		_ = sender.Send(encodeError("Failed to send message"))
		return
	}

	if err := p.Messages.Create(ctx, msg); err != nil {
		p.logError("message persist failed", err, "conversation_id", conversationID, "user_id", sender.UserID)
		_ = sender.Send(encodeError("Failed to send message"))
		return
	}

	// Summary update is best-effort: the message is already durable and will
	// be broadcast even if the denormalized cache lags behind.
	if err := p.Conversations.UpdateSummary(ctx, conversationID, msg.Content, msg.CreatedAt); err != nil {
		p.logError("conversation summary update failed", err, "conversation_id", conversationID)
	}

	view := MessageView{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         SenderView{ID: msg.Sender},
		Content:        msg.Content,
		ReadBy:         msg.ReadBy,
		CreatedAt:      msg.CreatedAt,
	}
	if identity, err := p.Identities.Resolve(ctx, msg.Sender); err != nil {
		p.logError("sender identity resolve failed", err, "user_id", msg.Sender)
	} else {
		view.Sender.Name = identity.Name
		view.Sender.Avatar = identity.Avatar
	}

	p.Rooms.Broadcast(conversationID, encodeNewMessage(view))

	p.notifyUnsubscribed(ctx, sender, conversationID, msg.Content)
}

// notifyUnsubscribed delivers a lightweight messageNotification to each
// participant who is online but has not joined the room. Best-effort; a
// missed notification is recovered when the participant opens the thread.
func (p *Pipeline) notifyUnsubscribed(ctx context.Context, sender *Conn, conversationID, content string) {
	conv, err := p.Conversations.ByID(ctx, conversationID)
	if err != nil {
		p.logError("conversation lookup failed", err, "conversation_id", conversationID)
		return
	}
	payload := encodeMessageNotification(conversationID, sender.UserID, content)
	for _, participant := range conv.OtherParticipants(sender.UserID) {
		conn := p.Presence.Get(participant)
		if conn == nil || p.Rooms.Contains(conversationID, conn) {
			continue
		}
		_ = conn.Send(payload)
	}
}

// MarkRead bulk-adds the caller to readBy on every peer message of the
// conversation, then tells the rest of the room. Fire-and-forget: failures
// are only logged.
func (p *Pipeline) MarkRead(ctx context.Context, caller *Conn, conversationID string) {
	if err := p.Messages.MarkReadBulk(ctx, conversationID, caller.UserID); err != nil {
		p.logError("mark read failed", err, "conversation_id", conversationID, "user_id", caller.UserID)
		return
	}
	p.Rooms.BroadcastExcept(conversationID, encodeMessagesRead(conversationID, caller.UserID), caller)
}

// Typing fans a typing indicator out to the room, excluding the originator.
// No persistence, no acknowledgement.
func (p *Pipeline) Typing(caller *Conn, conversationID string, stopped bool) {
	event := EventUserTyping
	if stopped {
		event = EventUserStoppedTyping
	}
	p.Rooms.BroadcastExcept(conversationID, encodeTyping(event, caller.UserID), caller)
}

func (p *Pipeline) logError(msg string, err error, attrs ...any) {
	if p.Logger == nil {
		return
	}
	p.Logger.Error(msg, append([]any{"error", err}, attrs...)...)
}
