package chat

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainchat "threadly/internal/domain/chat"
	domainlisting "threadly/internal/domain/listing"
)

// Service is the REST side of messaging: thread listing and history. Live
// traffic goes through the websocket pipeline instead.
type Service struct {
	Conversations domainchat.ConversationStore
	Messages      domainchat.MessageStore
	Listings      domainlisting.Repository
	Logger        *slog.Logger
}

// GetOrCreate returns the thread between the caller and the listing's seller,
// creating it on first contact. Lookup and create are two steps; under a race
// both writers may create a thread and the older one simply wins future
// lookups.
func (s *Service) GetOrCreate(ctx context.Context, callerID string, listingID domainlisting.ID) (*domainchat.Conversation, error) {
	l, err := s.Listings.ByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Seller == callerID {
		return nil, domainchat.ErrSelfConversation
	}

	participants := []string{callerID, l.Seller}
	conv, err := s.Conversations.FindByParticipantsAndListing(ctx, participants, string(listingID))
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, domainchat.ErrNotFound) {
		return nil, err
	}

	conv, err = domainchat.NewConversation(domainchat.NewConversationParams{
		ID:           uuid.NewString(),
		Participants: participants,
		ListingID:    string(listingID),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Conversations.Create(ctx, conv); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("conversation started", "conversation_id", conv.ID, "listing_id", listingID)
	}
	return conv, nil
}

// MyConversations lists the caller's threads, most recent activity first.
func (s *Service) MyConversations(ctx context.Context, callerID string) ([]*domainchat.Conversation, error) {
	return s.Conversations.ByParticipant(ctx, callerID)
}

// History returns one page of messages and marks the caller caught up on the
// thread as a side effect, mirroring what opening a chat does in the client.
func (s *Service) History(ctx context.Context, callerID, conversationID string, page, limit int) ([]*domainchat.Message, error) {
	conv, err := s.Conversations.ByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, domainchat.ErrNotParticipant
	}

	msgs, err := s.Messages.ByConversation(ctx, conversationID, page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.Messages.MarkReadBulk(ctx, conversationID, callerID); err != nil && s.Logger != nil {
		s.Logger.Warn("history read receipt failed", "conversation_id", conversationID, "error", err)
	}
	return msgs, nil
}
