package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"threadly/internal/domain/chat"
)

// ChatStore keeps conversations and messages in memory. Not suitable for
// production; it backs dev-without-Mongo mode and tests.
type ChatStore struct {
	mu            sync.RWMutex
	conversations map[string]*chat.Conversation
	messages      map[string][]*chat.Message
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		conversations: make(map[string]*chat.Conversation),
		messages:      make(map[string][]*chat.Message),
	}
}

func (s *ChatStore) ByID(ctx context.Context, id string) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, chat.ErrNotFound
	}
	return cloneConversation(conv), nil
}

func (s *ChatStore) ByParticipant(ctx context.Context, userID string) ([]*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*chat.Conversation
	for _, conv := range s.conversations {
		if conv.HasParticipant(userID) {
			result = append(result, cloneConversation(conv))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageAt.After(result[j].LastMessageAt)
	})
	return result, nil
}

func (s *ChatStore) FindByParticipantsAndListing(ctx context.Context, participants []string, listingID string) (*chat.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conv := range s.conversations {
		if conv.ListingID != listingID {
			continue
		}
		if containsAll(conv.Participants, participants) {
			return cloneConversation(conv), nil
		}
	}
	return nil, chat.ErrNotFound
}

func (s *ChatStore) Create(ctx context.Context, conv *chat.Conversation) error {
	s.mu.Lock()
	s.conversations[conv.ID] = cloneConversation(conv)
	s.mu.Unlock()
	return nil
}

func (s *ChatStore) UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return chat.ErrNotFound
	}
	conv.LastMessage = lastMessage
	conv.LastMessageAt = at
	conv.UpdatedAt = at
	return nil
}

func (s *ChatStore) CreateMessage(ctx context.Context, msg *chat.Message) error {
	s.mu.Lock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], cloneMessage(msg))
	s.mu.Unlock()
	return nil
}

func (s *ChatStore) ByConversation(ctx context.Context, conversationID string, page, limit int) ([]*chat.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 30
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages[conversationID]
	// newest page first, returned oldest-to-newest within the page
	start := len(msgs) - page*limit
	end := len(msgs) - (page-1)*limit
	if end < 0 {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	result := make([]*chat.Message, 0, end-start)
	for _, m := range msgs[start:end] {
		result = append(result, cloneMessage(m))
	}
	return result, nil
}

func (s *ChatStore) MarkReadBulk(ctx context.Context, conversationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, msg := range s.messages[conversationID] {
		if msg.Sender == userID || msg.IsReadBy(userID) {
			continue
		}
		msg.ReadBy = append(msg.ReadBy, userID)
	}
	return nil
}

// messageStoreAdapter exposes CreateMessage under the Create name that
// chat.MessageStore expects; ChatStore.Create is taken by conversations.
type messageStoreAdapter struct {
	*ChatStore
}

func (a messageStoreAdapter) Create(ctx context.Context, msg *chat.Message) error {
	return a.CreateMessage(ctx, msg)
}

// Messages returns the chat.MessageStore view of this store.
func (s *ChatStore) MessageStore() chat.MessageStore {
	return messageStoreAdapter{s}
}

func cloneConversation(c *chat.Conversation) *chat.Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	return &out
}

func cloneMessage(m *chat.Message) *chat.Message {
	if m == nil {
		return nil
	}
	out := *m
	out.ReadBy = append([]string(nil), m.ReadBy...)
	return &out
}

func containsAll(haystack, needles []string) bool {
	if len(haystack) != len(needles) {
		return false
	}
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
