package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainswap "threadly/internal/domain/swap"
)

type SwapRepository struct {
	col *mongo.Collection
}

func NewSwapRepository(db *mongo.Database) *SwapRepository {
	col := db.Collection("swaps")
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "proposer", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "proposer_listing", Value: 1}, {Key: "receiver_listing", Value: 1}, {Key: "status", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &SwapRepository{col: col}
}

func (r *SwapRepository) ByID(ctx context.Context, id string) (*domainswap.Swap, error) {
	var doc swapDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainswap.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SwapRepository) ByParticipant(ctx context.Context, userID string) ([]*domainswap.Swap, error) {
	filter := bson.M{"$or": []bson.M{{"proposer": userID}, {"receiver": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var result []*domainswap.Swap
	for cur.Next(ctx) {
		var doc swapDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result = append(result, doc.toAggregate())
	}
	return result, cur.Err()
}

func (r *SwapRepository) FindOpen(ctx context.Context, proposerListing, receiverListing string) (*domainswap.Swap, error) {
	filter := bson.M{
		"proposer_listing": proposerListing,
		"receiver_listing": receiverListing,
		"status":           bson.M{"$in": []string{string(domainswap.StatusProposed), string(domainswap.StatusCountered)}},
	}
	var doc swapDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainswap.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *SwapRepository) Stats(ctx context.Context) (domainswap.Stats, error) {
	var stats domainswap.Stats
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	completed, err := r.col.CountDocuments(ctx, bson.M{"status": string(domainswap.StatusCompleted)})
	if err != nil {
		return stats, err
	}
	stats.Total = total
	stats.Completed = completed
	return stats, nil
}

func (r *SwapRepository) Save(ctx context.Context, s *domainswap.Swap) error {
	doc := newSwapDocument(s)
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type swapDocument struct {
	ID              string `bson:"_id"`
	Proposer        string `bson:"proposer"`
	Receiver        string `bson:"receiver"`
	ProposerListing string `bson:"proposer_listing"`
	ReceiverListing string `bson:"receiver_listing"`
	Status          string `bson:"status"`
	CounterListing  string `bson:"counter_listing"`
	Message         string `bson:"message"`
	CounterMessage  string `bson:"counter_message"`
	CreatedAt       int64  `bson:"created_at"`
	UpdatedAt       int64  `bson:"updated_at"`
}

func newSwapDocument(s *domainswap.Swap) swapDocument {
	return swapDocument{
		ID:              s.ID,
		Proposer:        s.Proposer,
		Receiver:        s.Receiver,
		ProposerListing: s.ProposerListing,
		ReceiverListing: s.ReceiverListing,
		Status:          string(s.Status),
		CounterListing:  s.CounterListing,
		Message:         s.Message,
		CounterMessage:  s.CounterMessage,
		CreatedAt:       s.CreatedAt.UnixMilli(),
		UpdatedAt:       s.UpdatedAt.UnixMilli(),
	}
}

func (d swapDocument) toAggregate() *domainswap.Swap {
	return &domainswap.Swap{
		ID:              d.ID,
		Proposer:        d.Proposer,
		Receiver:        d.Receiver,
		ProposerListing: d.ProposerListing,
		ReceiverListing: d.ReceiverListing,
		Status:          domainswap.Status(d.Status),
		CounterListing:  d.CounterListing,
		Message:         d.Message,
		CounterMessage:  d.CounterMessage,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
	}
}

var _ domainswap.Repository = (*SwapRepository)(nil)
