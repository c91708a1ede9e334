package dto

import (
	"time"

	domainchat "threadly/internal/domain/chat"
)

type Conversation struct {
	ID            string    `json:"id"`
	Participants  []string  `json:"participants"`
	ListingID     string    `json:"listing_id,omitempty"`
	LastMessage   string    `json:"last_message,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

type ChatMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	ReadBy         []string  `json:"read_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func MapConversation(conv *domainchat.Conversation) Conversation {
	if conv == nil {
		return Conversation{}
	}
	return Conversation{
		ID:            conv.ID,
		Participants:  append([]string(nil), conv.Participants...),
		ListingID:     conv.ListingID,
		LastMessage:   conv.LastMessage,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
	}
}

func MapConversations(convs []*domainchat.Conversation) []Conversation {
	items := make([]Conversation, 0, len(convs))
	for _, conv := range convs {
		items = append(items, MapConversation(conv))
	}
	return items
}

func MapChatMessage(msg *domainchat.Message) ChatMessage {
	if msg == nil {
		return ChatMessage{}
	}
	return ChatMessage{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.Sender,
		Content:        msg.Content,
		ReadBy:         append([]string(nil), msg.ReadBy...),
		CreatedAt:      msg.CreatedAt,
	}
}

func MapChatMessages(msgs []*domainchat.Message) []ChatMessage {
	items := make([]ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		items = append(items, MapChatMessage(msg))
	}
	return items
}
