package chat

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrContentRequired      = errors.New("chat: message content is required")
	ErrSenderRequired       = errors.New("chat: sender is required")
	ErrConversationRequired = errors.New("chat: conversation is required")
	ErrParticipantsRequired = errors.New("chat: two distinct participants are required")
	ErrSelfConversation     = errors.New("chat: cannot start a conversation with yourself")
	ErrNotParticipant       = errors.New("chat: not a conversation participant")
	ErrNotFound             = errors.New("chat: not found")
)

// Conversation is a thread between participants, optionally tied to a listing.
// LastMessage/LastMessageAt are a denormalized cache of the newest message and
// are never read as the source of truth for message content.
type Conversation struct {
	ID            string
	Participants  []string
	ListingID     string
	LastMessage   string
	LastMessageAt time.Time
	UnreadCount   map[string]int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is immutable once created except for ReadBy membership, which only grows.
type Message struct {
	ID             string
	ConversationID string
	Sender         string
	Content        string
	ReadBy         []string
	CreatedAt      time.Time
}

// ConversationStore is the durable conversation collaborator.
type ConversationStore interface {
	ByID(ctx context.Context, id string) (*Conversation, error)
	ByParticipant(ctx context.Context, userID string) ([]*Conversation, error)
	// FindByParticipantsAndListing returns the existing thread for the exact
	// participant pair and listing, or ErrNotFound. Lookup-or-create is not
	// atomic; a race between two first messages can create duplicates.
	FindByParticipantsAndListing(ctx context.Context, participants []string, listingID string) (*Conversation, error)
	Create(ctx context.Context, conv *Conversation) error
	UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time) error
}

// MessageStore is the durable append-only message log.
type MessageStore interface {
	Create(ctx context.Context, msg *Message) error
	ByConversation(ctx context.Context, conversationID string, page, limit int) ([]*Message, error)
	// MarkReadBulk adds userID to ReadBy on every message in the conversation
	// not sent by userID and not already read by them. Idempotent.
	MarkReadBulk(ctx context.Context, conversationID, userID string) error
}

type NewConversationParams struct {
	ID           string
	Participants []string
	ListingID    string
	CreatedAt    time.Time
}

func NewConversation(params NewConversationParams) (*Conversation, error) {
	if len(params.Participants) < 2 {
		return nil, ErrParticipantsRequired
	}
	seen := make(map[string]struct{}, len(params.Participants))
	for _, p := range params.Participants {
		if strings.TrimSpace(p) == "" {
			return nil, ErrParticipantsRequired
		}
		if _, dup := seen[p]; dup {
			return nil, ErrSelfConversation
		}
		seen[p] = struct{}{}
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Conversation{
		ID:            params.ID,
		Participants:  append([]string(nil), params.Participants...),
		ListingID:     params.ListingID,
		LastMessageAt: now,
		UnreadCount:   map[string]int{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// HasParticipant reports whether userID is stored on the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipants returns every participant except userID.
func (c *Conversation) OtherParticipants(userID string) []string {
	others := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != userID {
			others = append(others, p)
		}
	}
	return others
}

type NewMessageParams struct {
	ID             string
	ConversationID string
	Sender         string
	Content        string
	CreatedAt      time.Time
}

// NewMessage builds a message with ReadBy seeded to contain the sender.
func NewMessage(params NewMessageParams) (*Message, error) {
	if strings.TrimSpace(params.ConversationID) == "" {
		return nil, ErrConversationRequired
	}
	if strings.TrimSpace(params.Sender) == "" {
		return nil, ErrSenderRequired
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Message{
		ID:             params.ID,
		ConversationID: params.ConversationID,
		Sender:         params.Sender,
		Content:        content,
		ReadBy:         []string{params.Sender},
		CreatedAt:      now.UTC(),
	}, nil
}

// ReadBy reports whether userID has observed the message.
func (m *Message) IsReadBy(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
