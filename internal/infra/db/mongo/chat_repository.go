package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "threadly/internal/domain/chat"
)

type ConversationRepository struct {
	col *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	col := db.Collection("conversations")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "participants", Value: 1}}},
		{Keys: bson.D{{Key: "last_message_at", Value: -1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ConversationRepository{col: col}
}

func (r *ConversationRepository) ByID(ctx context.Context, id string) (*domainchat.Conversation, error) {
	var doc conversationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) ByParticipant(ctx context.Context, userID string) ([]*domainchat.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainchat.Conversation
	for cur.Next(ctx) {
		var doc conversationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *ConversationRepository) FindByParticipantsAndListing(ctx context.Context, participants []string, listingID string) (*domainchat.Conversation, error) {
	filter := bson.M{
		"participants": bson.M{"$all": participants, "$size": len(participants)},
		"listing_id":   listingID,
	}
	var doc conversationDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domainchat.Conversation) error {
	_, err := r.col.InsertOne(ctx, newConversationDocument(conv))
	return err
}

func (r *ConversationRepository) UpdateSummary(ctx context.Context, id string, lastMessage string, at time.Time) error {
	update := bson.M{"$set": bson.M{
		"last_message":    lastMessage,
		"last_message_at": at.UnixMilli(),
		"updated_at":      at.UnixMilli(),
	}}
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrNotFound
	}
	return nil
}

type conversationDocument struct {
	ID            string         `bson:"_id"`
	Participants  []string       `bson:"participants"`
	ListingID     string         `bson:"listing_id"`
	LastMessage   string         `bson:"last_message"`
	LastMessageAt int64          `bson:"last_message_at"`
	UnreadCount   map[string]int `bson:"unread_count"`
	CreatedAt     int64          `bson:"created_at"`
	UpdatedAt     int64          `bson:"updated_at"`
}

func newConversationDocument(c *domainchat.Conversation) conversationDocument {
	return conversationDocument{
		ID:            c.ID,
		Participants:  c.Participants,
		ListingID:     c.ListingID,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt.UnixMilli(),
		UnreadCount:   c.UnreadCount,
		CreatedAt:     c.CreatedAt.UnixMilli(),
		UpdatedAt:     c.UpdatedAt.UnixMilli(),
	}
}

func (d conversationDocument) toAggregate() *domainchat.Conversation {
	unread := d.UnreadCount
	if unread == nil {
		unread = map[string]int{}
	}
	return &domainchat.Conversation{
		ID:            d.ID,
		Participants:  d.Participants,
		ListingID:     d.ListingID,
		LastMessage:   d.LastMessage,
		LastMessageAt: timestampToTime(d.LastMessageAt),
		UnreadCount:   unread,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}
}

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	col := db.Collection("messages")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MessageRepository{col: col}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domainchat.Message) error {
	_, err := r.col.InsertOne(ctx, newMessageDocument(msg))
	return err
}

// ByConversation pages newest-first but returns each page oldest-to-newest,
// ready for client rendering.
func (r *MessageRepository) ByConversation(ctx context.Context, conversationID string, page, limit int) ([]*domainchat.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 30
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var newestFirst []*domainchat.Message
	for cur.Next(ctx) {
		var doc messageDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, doc.toAggregate())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	result := make([]*domainchat.Message, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		result = append(result, newestFirst[i])
	}
	return result, nil
}

func (r *MessageRepository) MarkReadBulk(ctx context.Context, conversationID, userID string) error {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender":          bson.M{"$ne": userID},
		"read_by":         bson.M{"$ne": userID},
	}
	_, err := r.col.UpdateMany(ctx, filter, bson.M{"$addToSet": bson.M{"read_by": userID}})
	return err
}

type messageDocument struct {
	ID             string   `bson:"_id"`
	ConversationID string   `bson:"conversation_id"`
	Sender         string   `bson:"sender"`
	Content        string   `bson:"content"`
	ReadBy         []string `bson:"read_by"`
	CreatedAt      int64    `bson:"created_at"`
}

func newMessageDocument(m *domainchat.Message) messageDocument {
	return messageDocument{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         m.Sender,
		Content:        m.Content,
		ReadBy:         m.ReadBy,
		CreatedAt:      m.CreatedAt.UnixMilli(),
	}
}

func (d messageDocument) toAggregate() *domainchat.Message {
	return &domainchat.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		Sender:         d.Sender,
		Content:        d.Content,
		ReadBy:         d.ReadBy,
		CreatedAt:      timestampToTime(d.CreatedAt),
	}
}

var _ domainchat.ConversationStore = (*ConversationRepository)(nil)
var _ domainchat.MessageStore = (*MessageRepository)(nil)
